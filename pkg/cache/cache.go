// Package cache persists analysis results keyed by source content, so
// re-scanning an unchanged program skips the analysis entirely.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/tealscan/tealscan/pkg/report"
)

// Key derives the cache key for one analysis run: the source bytes, the
// version override in effect, and the detector set all participate, so any
// change to the inputs misses.
func Key(source []byte, version int, detectorNames []string) string {
	names := make([]string, len(detectorNames))
	copy(names, detectorNames)
	sort.Strings(names)

	h := sha256.New()
	h.Write(source)
	fmt.Fprintf(h, "|v%d|%s", version, strings.Join(names, ","))
	return hex.EncodeToString(h.Sum(nil))
}

// Store is a disk-backed result cache with a small in-memory LRU layer on
// top. One msgpack file per key under the store directory.
type Store struct {
	mu     sync.Mutex
	dir    string
	mem    map[string]*report.Result
	order  []string // LRU order, most recent last
	maxMem int
}

// Open creates the store directory if needed and returns a Store over it.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory %s: %w", dir, err)
	}
	return &Store{
		dir:    dir,
		mem:    make(map[string]*report.Result),
		maxMem: 128,
	}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".msgpack")
}

// Get returns the cached result for key, loading from disk on a memory
// miss. A corrupt or missing file is a plain miss, never an error: the
// caller falls back to analyzing.
func (s *Store) Get(key string) (*report.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.mem[key]; ok {
		s.touch(key)
		return r, true
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	var r report.Result
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return nil, false
	}
	s.insert(key, &r)
	return &r, true
}

// Put stores the result under key, in memory and on disk.
func (s *Store) Put(key string, r *report.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insert(key, r)

	data, err := msgpack.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode cached result: %w", err)
	}
	if err := os.WriteFile(s.path(key), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// Clear drops the in-memory layer and removes all cache files.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mem = make(map[string]*report.Result)
	s.order = nil

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".msgpack") {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return fmt.Errorf("failed to remove cache file %s: %w", e.Name(), err)
		}
	}
	return nil
}

// Len returns the number of entries held in memory.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mem)
}

// insert adds or refreshes a memory entry, evicting the least recently
// used entry past capacity. Evicted entries stay on disk.
func (s *Store) insert(key string, r *report.Result) {
	if _, ok := s.mem[key]; ok {
		s.mem[key] = r
		s.touch(key)
		return
	}
	s.mem[key] = r
	s.order = append(s.order, key)
	for len(s.order) > s.maxMem {
		evicted := s.order[0]
		s.order = s.order[1:]
		delete(s.mem, evicted)
	}
}

func (s *Store) touch(key string) {
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			s.order = append(s.order, key)
			return
		}
	}
}
