// Package keylock provides per-key mutual exclusion. It serializes
// read-modify-write sequences against a single identity while letting
// operations on distinct identities proceed in parallel.
package keylock

import "sync"

// Map is a set of named mutexes. The zero value is not usable; call New.
type Map struct {
	mu    sync.Mutex
	locks map[string]*entry
}

// entry tracks one named mutex and how many holders/waiters reference it,
// so idle entries can be removed from the map.
type entry struct {
	mu   sync.Mutex
	refs int
}

// New creates an empty lock map.
func New() *Map {
	return &Map{
		locks: make(map[string]*entry),
	}
}

// Lock acquires the mutex named key, blocking while another caller holds
// it. The returned function releases the mutex and must be called exactly
// once.
func (m *Map) Lock(key string) (unlock func()) {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		m.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(m.locks, key)
		}
		m.mu.Unlock()
	}
}
