package cache

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize bounds the number of cached entries.
const DefaultSize = 1000

// LRUStore is an in-process Store bounded by an LRU cache. It keeps the
// same key scheme as a remote store would, so one can be swapped in
// behind the Store interface without touching callers.
type LRUStore struct {
	mu      sync.RWMutex
	entries *lru.Cache[string, []byte]
}

// NewLRUStore creates a bounded store. size <= 0 selects DefaultSize.
func NewLRUStore(size int) (*LRUStore, error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &LRUStore{entries: entries}, nil
}

// Get returns a copy of the stored value, if any.
func (s *LRUStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

// Set stores a copy of value under key, overwriting any previous entry.
func (s *LRUStore) Set(_ context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Add(key, stored)
	return nil
}

// Delete removes the entry for key if present.
func (s *LRUStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Remove(key)
	return nil
}

// Len reports the number of cached entries (for diagnostics).
func (s *LRUStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries.Len()
}
