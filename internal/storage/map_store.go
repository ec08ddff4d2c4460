// Package storage archives maps in an embedded Badger database.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"raycaster/internal/logger"
	"raycaster/internal/threading/core"
	"raycaster/internal/world"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
)

const keyPrefix = "map/"

var (
	// ErrMapNotFound is returned for names that were never saved or were deleted.
	ErrMapNotFound = errors.New("map not found")
	// ErrStoreClosed is returned by every operation after Close.
	ErrStoreClosed = errors.New("map store is closed")
	// ErrInvalidName is returned for empty names and names containing '/'.
	ErrInvalidName = errors.New("invalid map name")
)

// Entry describes one archived map revision.
type Entry struct {
	Name     string
	Revision uuid.UUID
	SavedAt  time.Time
}

// record is the stored value before compression.
type record struct {
	Revision uuid.UUID       `json:"revision"`
	SavedAt  time.Time       `json:"savedAt"`
	Map      json.RawMessage `json:"map"`
}

// MapStore keeps named maps in a Badger database. Values are zstd
// compressed map JSON wrapped with a revision id.
type MapStore struct {
	db      *badger.DB
	dir     string
	enc     *zstd.Encoder
	dec     *zstd.Decoder
	log     logrus.FieldLogger
	mu      sync.RWMutex
	isReady bool
	now     func() time.Time
}

// Option configures a MapStore.
type Option func(*MapStore)

// WithLogger replaces the store's logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *MapStore) { s.log = l }
}

// Open opens (creating if needed) the archive in dir.
func Open(dir string, opts ...Option) (*MapStore, error) {
	dbOpts := badger.DefaultOptions(dir)
	dbOpts.Logger = nil // badger logs through its own logger otherwise

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open map archive %s: %w", dir, err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create compressor: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, fmt.Errorf("failed to create decompressor: %w", err)
	}

	s := &MapStore{
		db:      db,
		dir:     dir,
		enc:     enc,
		dec:     dec,
		log:     logger.Component("storage"),
		isReady: true,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log.WithField("dir", dir).Debug("map archive opened")
	return s, nil
}

// Close releases the database. Closing twice is a no-op.
func (s *MapStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isReady {
		return nil
	}
	s.isReady = false
	s.dec.Close()
	return errors.Join(s.enc.Close(), s.db.Close())
}

func validName(name string) error {
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Save stores m under name, replacing any previous revision, and returns
// the entry written.
func (s *MapStore) Save(name string, m *world.Map) (Entry, error) {
	if err := validName(name); err != nil {
		return Entry{}, err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode map %s: %w", name, err)
	}

	rec := record{Revision: uuid.New(), SavedAt: s.now().UTC(), Map: data}
	payload, err := json.Marshal(rec)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode record %s: %w", name, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isReady {
		return Entry{}, ErrStoreClosed
	}

	compressed := s.enc.EncodeAll(payload, nil)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+name), compressed)
	})
	if err != nil {
		return Entry{}, fmt.Errorf("failed to save map %s: %w", name, err)
	}

	s.log.WithFields(logrus.Fields{
		"map":      name,
		"revision": rec.Revision,
		"bytes":    len(compressed),
	}).Debug("map archived")
	return Entry{Name: name, Revision: rec.Revision, SavedAt: rec.SavedAt}, nil
}

func (s *MapStore) read(name string) (record, error) {
	if err := validName(name); err != nil {
		return record{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isReady {
		return record{}, ErrStoreClosed
	}

	var compressed []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + name))
		if err != nil {
			return err
		}
		compressed, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return record{}, fmt.Errorf("%w: %s", ErrMapNotFound, name)
	}
	if err != nil {
		return record{}, fmt.Errorf("failed to read map %s: %w", name, err)
	}

	return s.decode(name, compressed)
}

func (s *MapStore) decode(name string, compressed []byte) (record, error) {
	payload, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return record{}, fmt.Errorf("failed to decompress map %s: %w", name, err)
	}
	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return record{}, fmt.Errorf("failed to decode record %s: %w", name, err)
	}
	return rec, nil
}

// Load returns the latest revision of the named map.
func (s *MapStore) Load(name string) (*world.Map, error) {
	rec, err := s.read(name)
	if err != nil {
		return nil, err
	}
	m, err := world.ReadMap(bytes.NewReader(rec.Map))
	if err != nil {
		return nil, fmt.Errorf("archived map %s: %w", name, err)
	}
	return m, nil
}

// Stat returns the entry of the named map without decoding its grid.
func (s *MapStore) Stat(name string) (Entry, error) {
	rec, err := s.read(name)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Name: name, Revision: rec.Revision, SavedAt: rec.SavedAt}, nil
}

// Delete removes the named map.
func (s *MapStore) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isReady {
		return ErrStoreClosed
	}

	key := []byte(keyPrefix + name)
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrMapNotFound, name)
			}
			return err
		}
		return txn.Delete(key)
	})
}

// List returns every archived map sorted by name.
func (s *MapStore) List() ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isReady {
		return nil, ErrStoreClosed
	}

	var entries []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			name := strings.TrimPrefix(string(item.Key()), keyPrefix)
			compressed, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			rec, err := s.decode(name, compressed)
			if err != nil {
				return err
			}
			entries = append(entries, Entry{Name: name, Revision: rec.Revision, SavedAt: rec.SavedAt})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

type importResult struct {
	name string
	m    *world.Map
	err  error
}

// ImportDir archives every map file found directly in dir under its base
// name. Files are parsed in parallel; every file that parses is saved
// even when others fail. The joined errors of the failures are returned
// along with the number of maps saved.
func (s *MapStore) ImportDir(ctx context.Context, dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*"+world.MapFileExt))
	if err != nil {
		return 0, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(paths) == 0 {
		if _, err := os.Stat(dir); err != nil {
			return 0, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		return 0, nil
	}

	results := core.ParallelMapWithContext(ctx, paths, func(path string) importResult {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		m, err := world.LoadMapFile(path)
		return importResult{name: name, m: m, err: err}
	})
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	saved := 0
	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		if _, err := s.Save(r.name, r.m); err != nil {
			errs = append(errs, err)
			continue
		}
		saved++
	}

	s.log.WithFields(logrus.Fields{
		"dir":    dir,
		"saved":  saved,
		"failed": len(errs),
	}).Info("map directory imported")
	return saved, errors.Join(errs...)
}
