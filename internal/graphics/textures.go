package graphics

import (
	"context"
	"image/color"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"raycaster/internal/logger"
)

// DefaultMemoryLimit is the texture budget used when none is configured (1 GiB).
const DefaultMemoryLimit int64 = 1 << 30

var placeholderColor = color.RGBA{255, 0, 255, 255}

// dummy is returned for the empty texture name.
var dummy = NewTexture("", 1, 1)

type textureEntry struct {
	texture  *Texture
	lastUsed uint64
}

// TextureManager loads textures on first use and evicts the least recently
// used ones once the memory budget is exceeded. It is safe for concurrent use.
type TextureManager struct {
	mu      sync.Mutex
	dir     string
	entries map[string]*textureEntry
	usage   int64
	limit   int64
	tick    uint64
	log     logrus.FieldLogger
}

// TextureOption configures a TextureManager.
type TextureOption func(*TextureManager)

// WithMemoryLimit sets the memory budget in bytes. Non-positive values select DefaultMemoryLimit.
func WithMemoryLimit(bytes int64) TextureOption {
	return func(tm *TextureManager) {
		if bytes <= 0 {
			bytes = DefaultMemoryLimit
		}
		tm.limit = bytes
	}
}

func WithLogger(l logrus.FieldLogger) TextureOption {
	return func(tm *TextureManager) { tm.log = l }
}

// NewTextureManager returns a manager loading files from dir.
func NewTextureManager(dir string, opts ...TextureOption) *TextureManager {
	tm := &TextureManager{
		dir:     dir,
		entries: make(map[string]*textureEntry),
		limit:   DefaultMemoryLimit,
		log:     logger.Component("textures"),
	}
	for _, opt := range opts {
		opt(tm)
	}
	return tm
}

// GetTexture returns the named texture, loading it if needed. The empty name
// yields a shared transparent 1x1 texture; a file that cannot be loaded
// yields a magenta placeholder, which is cached like a real texture.
func (tm *TextureManager) GetTexture(name string) *Texture {
	if name == "" {
		return dummy
	}

	tm.mu.Lock()
	if e, ok := tm.entries[name]; ok {
		tm.tick++
		e.lastUsed = tm.tick
		tm.mu.Unlock()
		return e.texture
	}
	tm.mu.Unlock()

	tex, err := LoadTexture(filepath.Join(tm.dir, name))
	if err != nil {
		tm.log.WithError(err).WithField("texture", name).Warn("using placeholder texture")
		tex = placeholder(name)
	}
	tex.Name = name
	return tm.insert(name, tex)
}

// Preload loads names in parallel. Textures already cached are skipped. The
// first load error is returned; textures that loaded fine stay cached.
func (tm *TextureManager) Preload(ctx context.Context, names []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, name := range names {
		if name == "" || tm.IsLoaded(name) {
			continue
		}
		name := name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tex, err := LoadTexture(filepath.Join(tm.dir, name))
			if err != nil {
				return err
			}
			tex.Name = name
			tm.insert(name, tex)
			return nil
		})
	}
	return g.Wait()
}

// insert stores tex unless another goroutine got there first, and returns
// the cached texture.
func (tm *TextureManager) insert(name string, tex *Texture) *Texture {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.tick++
	if e, ok := tm.entries[name]; ok {
		e.lastUsed = tm.tick
		return e.texture
	}
	tm.entries[name] = &textureEntry{texture: tex, lastUsed: tm.tick}
	tm.usage += tex.MemorySize()
	tm.evictLocked(name)
	return tex
}

// evictLocked drops least recently used textures until usage fits the
// limit. keep is never evicted.
func (tm *TextureManager) evictLocked(keep string) {
	if tm.usage <= tm.limit {
		return
	}
	names := make([]string, 0, len(tm.entries))
	for name := range tm.entries {
		if name != keep {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return tm.entries[names[i]].lastUsed < tm.entries[names[j]].lastUsed
	})
	for _, name := range names {
		if tm.usage <= tm.limit {
			break
		}
		tm.usage -= tm.entries[name].texture.MemorySize()
		delete(tm.entries, name)
		tm.log.WithField("texture", name).Debug("evicted texture")
	}
}

// IsLoaded reports whether name is cached.
func (tm *TextureManager) IsLoaded(name string) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	_, ok := tm.entries[name]
	return ok
}

// Unload drops one texture from the cache.
func (tm *TextureManager) Unload(name string) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if e, ok := tm.entries[name]; ok {
		tm.usage -= e.texture.MemorySize()
		delete(tm.entries, name)
	}
}

// UnloadAll empties the cache.
func (tm *TextureManager) UnloadAll() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.entries = make(map[string]*textureEntry)
	tm.usage = 0
}

func (tm *TextureManager) LoadedCount() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.entries)
}

// MemoryUsage returns the bytes held by cached textures.
func (tm *TextureManager) MemoryUsage() int64 {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.usage
}

func (tm *TextureManager) MemoryLimit() int64 {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.limit
}

// SetMemoryLimit changes the budget and evicts immediately if it is exceeded.
func (tm *TextureManager) SetMemoryLimit(bytes int64) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if bytes <= 0 {
		bytes = DefaultMemoryLimit
	}
	tm.limit = bytes
	tm.evictLocked("")
}

// MemoryPercentage returns usage as a percentage of the limit.
func (tm *TextureManager) MemoryPercentage() float64 {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return float64(tm.usage) / float64(tm.limit) * 100
}

func placeholder(name string) *Texture {
	t := NewTexture(name, 2, 2)
	for i := range t.Pixels {
		t.Pixels[i] = placeholderColor
	}
	return t
}
