package dashactyl

import (
	"strings"
	"sync"
)

// store is an identity-keyed entity cache. Users and servers are keyed by
// uuid, coupons by code. Keys are unique within one store; Upsert replaces
// the slot for an existing identity instead of adding a second entry.
type store[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
}

func newStore[T any]() *store[T] {
	return &store[T]{
		entries: make(map[string]T),
	}
}

// Upsert inserts or replaces the entry for key.
func (s *store[T]) Upsert(key string, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = v
}

// Get returns the entry for an exact key.
func (s *store[T]) Get(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.entries[key]
	return v, ok
}

// Match scans stored identity keys for one containing key. Partial uuids
// are accepted the way the panel dashboard accepts them.
func (s *store[T]) Match(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if key != "" {
		for k, v := range s.entries {
			if strings.Contains(k, key) {
				return v, true
			}
		}
	}

	var zero T
	return zero, false
}

// Find returns the first entry satisfying pred. It never hits the network.
func (s *store[T]) Find(pred func(T) bool) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.entries {
		if pred(v) {
			return v, true
		}
	}

	var zero T
	return zero, false
}

// Delete evicts the entry for key, if present.
func (s *store[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Len reports the number of cached entries.
func (s *store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// All returns a snapshot of the cached entries in unspecified order.
func (s *store[T]) All() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0, len(s.entries))
	for _, v := range s.entries {
		out = append(out, v)
	}
	return out
}
