// Package cache provides a small TTL cache for reference data that is
// expensive to re-fetch under a tight API quota (account and category
// listings). Response bodies themselves are never cached; callers store
// decoded values and invalidate on mutation.
package cache

import (
	"sync"
	"time"
)

// Store is a concurrency-safe TTL cache. A zero TTL disables caching
// entirely: Get never hits and Set is a no-op.
type Store[T any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]entry[T]

	now func() time.Time // injectable for tests
}

type entry[T any] struct {
	data      T
	expiresAt time.Time
}

func New[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		ttl:   ttl,
		items: make(map[string]entry[T]),
		now:   time.Now,
	}
}

// Get retrieves a live value from the cache.
func (s *Store[T]) Get(key string) (T, bool) {
	var zero T
	if s.ttl <= 0 {
		return zero, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[key]
	if !ok {
		return zero, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.items, key)
		return zero, false
	}
	return e.data, true
}

// Set stores a value under key for the store's TTL.
func (s *Store[T]) Set(key string, data T) {
	if s.ttl <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = entry[T]{data: data, expiresAt: s.now().Add(s.ttl)}
}

// Delete removes a key, typically after a mutation made it stale.
func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// Size returns the number of entries, expired ones included.
func (s *Store[T]) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
