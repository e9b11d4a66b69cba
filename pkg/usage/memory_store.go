package usage

import (
	"context"
	"sync"
)

// MemoryStore keeps counters in process memory. Suitable for tests and a
// single-node deployment; counts are lost on restart.
type MemoryStore struct {
	mu     sync.Mutex
	counts map[Key]int64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counts: make(map[Key]int64)}
}

// Read implements Store.
func (s *MemoryStore) Read(ctx context.Context, key Key) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[key], nil
}

// Increment implements Store.
func (s *MemoryStore) Increment(ctx context.Context, key Key, amount int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key] += amount
	return s.counts[key], nil
}

// Set overwrites a counter. Used by administrative resets and tests.
func (s *MemoryStore) Set(key Key, count int64) {
	s.mu.Lock()
	s.counts[key] = count
	s.mu.Unlock()
}
