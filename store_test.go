package dashactyl

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreUpsertReplaces(t *testing.T) {
	s := newStore[int]()

	s.Upsert("a", 1)
	s.Upsert("b", 2)
	s.Upsert("a", 3)

	assert.Equal(t, 2, s.Len())
	v, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestStoreMatchPartialKey(t *testing.T) {
	s := newStore[string]()
	s.Upsert("530d7e97-4a2b-4f6e", "wumpus")

	v, ok := s.Match("530d")
	require.True(t, ok)
	assert.Equal(t, "wumpus", v)

	v, ok = s.Match("4f6e")
	require.True(t, ok)
	assert.Equal(t, "wumpus", v)

	_, ok = s.Match("ffff")
	assert.False(t, ok)

	// An empty fragment matches nothing rather than everything.
	_, ok = s.Match("")
	assert.False(t, ok)
}

func TestStoreFindDelete(t *testing.T) {
	s := newStore[int]()
	for i := 0; i < 5; i++ {
		s.Upsert(fmt.Sprintf("k%d", i), i*10)
	}

	v, ok := s.Find(func(v int) bool { return v == 30 })
	require.True(t, ok)
	assert.Equal(t, 30, v)

	_, ok = s.Find(func(v int) bool { return v > 100 })
	assert.False(t, ok)

	s.Delete("k3")
	s.Delete("missing")
	assert.Equal(t, 4, s.Len())
	assert.Len(t, s.All(), 4)
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := newStore[int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", i)
			s.Upsert(key, i)
			s.Get(key)
			s.Match("k")
			s.Find(func(v int) bool { return v == i })
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len())
}
