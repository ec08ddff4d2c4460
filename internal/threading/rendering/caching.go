package rendering

import "sync"

// Default cache limits. Evicting down to a target below the maximum keeps
// evictions small and frequent instead of large and rare.
const (
	DefaultColumnCacheMaxSize = 512
	columnCacheTargetRatio    = 0.75
)

// ColumnKey identifies one texture column as drawn on screen.
type ColumnKey struct {
	Texture string
	Column  int
	Shaded  bool
}

// ColumnCache keeps prepared texture columns (typically GPU images) so that
// each is built once. It is safe for concurrent use and evicts in insertion
// order once it reaches its maximum size.
type ColumnCache[V any] struct {
	cache      map[ColumnKey]V
	mutex      sync.RWMutex
	cacheOrder []ColumnKey
	maxSize    int
	targetSize int
	onEvict    func(V)

	hits, misses uint64
}

// NewColumnCache creates a cache holding at most maxSize columns; a
// non-positive size selects DefaultColumnCacheMaxSize. onEvict, if not nil,
// is called for every evicted value, e.g. to release a GPU image.
func NewColumnCache[V any](maxSize int, onEvict func(V)) *ColumnCache[V] {
	if maxSize <= 0 {
		maxSize = DefaultColumnCacheMaxSize
	}
	return &ColumnCache[V]{
		cache:      make(map[ColumnKey]V, maxSize),
		cacheOrder: make([]ColumnKey, 0, maxSize),
		maxSize:    maxSize,
		targetSize: max(1, int(float64(maxSize)*columnCacheTargetRatio)),
		onEvict:    onEvict,
	}
}

// GetOrCreate returns the cached value for key, calling create on a miss.
func (cc *ColumnCache[V]) GetOrCreate(key ColumnKey, create func() V) V {
	// First attempt: read lock only
	cc.mutex.RLock()
	if v, ok := cc.cache[key]; ok {
		cc.mutex.RUnlock()
		cc.mutex.Lock()
		cc.hits++
		cc.mutex.Unlock()
		return v
	}
	cc.mutex.RUnlock()

	v := create()

	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	// Check again in case another goroutine added it while we were creating
	if existing, ok := cc.cache[key]; ok {
		cc.hits++
		if cc.onEvict != nil {
			cc.onEvict(v)
		}
		return existing
	}
	cc.misses++

	if len(cc.cache) >= cc.maxSize {
		evictCount := len(cc.cacheOrder) - cc.targetSize
		for i := 0; i < evictCount; i++ {
			old := cc.cacheOrder[i]
			if cc.onEvict != nil {
				cc.onEvict(cc.cache[old])
			}
			delete(cc.cache, old)
		}
		cc.cacheOrder = append(cc.cacheOrder[:0:0], cc.cacheOrder[evictCount:]...)
	}

	cc.cache[key] = v
	cc.cacheOrder = append(cc.cacheOrder, key)
	return v
}

// Len returns the number of cached columns.
func (cc *ColumnCache[V]) Len() int {
	cc.mutex.RLock()
	defer cc.mutex.RUnlock()
	return len(cc.cache)
}

// Stats returns the hit and miss counts.
func (cc *ColumnCache[V]) Stats() (hits, misses uint64) {
	cc.mutex.RLock()
	defer cc.mutex.RUnlock()
	return cc.hits, cc.misses
}

// Clear drops every entry.
func (cc *ColumnCache[V]) Clear() {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()
	if cc.onEvict != nil {
		for _, v := range cc.cache {
			cc.onEvict(v)
		}
	}
	cc.cache = make(map[ColumnKey]V, cc.maxSize)
	cc.cacheOrder = cc.cacheOrder[:0]
}
