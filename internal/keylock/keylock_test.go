package keylock

import (
	"sync"
	"testing"
	"time"
)

func TestLockSerializesSameKey(t *testing.T) {
	m := New()

	const workers = 50
	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			unlock := m.Lock("a")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("expected counter %d, got %d", workers, counter)
	}
}

func TestLockDistinctKeysIndependent(t *testing.T) {
	m := New()

	unlockA := m.Lock("a")

	done := make(chan struct{})
	go func() {
		unlockB := m.Lock("b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a distinct key must not block")
	}

	unlockA()
}

func TestLockBlocksUntilUnlock(t *testing.T) {
	m := New()

	unlock := m.Lock("a")

	acquired := make(chan struct{})
	go func() {
		u := m.Lock("a")
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock must block while the first is held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Lock must proceed after unlock")
	}
}

func TestLockCleansUpIdleEntries(t *testing.T) {
	m := New()

	for i := 0; i < 10; i++ {
		unlock := m.Lock("a")
		unlock()
	}

	m.mu.Lock()
	n := len(m.locks)
	m.mu.Unlock()
	if n != 0 {
		t.Errorf("expected idle entries removed, %d remain", n)
	}
}
