package cache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadcast/roadcast/internal/cache"
)

type testKey struct {
	kind string
	name string
}

func (k testKey) String() string {
	return k.kind + ":" + k.name
}

func newTestCache(clock clockwork.Clock) *cache.Cache[testKey, string] {
	return cache.New[testKey, string](cache.Config{
		TTL:   10 * time.Minute,
		Clock: clock,
	})
}

func TestCache_GetWithinTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newTestCache(clock)

	c.Put(testKey{"current", "colombo"}, "sunny")
	clock.Advance(10*time.Minute - time.Millisecond)

	value, ok := c.Get(testKey{"current", "colombo"})
	require.True(t, ok)
	assert.Equal(t, "sunny", value)
}

func TestCache_GetAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newTestCache(clock)

	c.Put(testKey{"current", "colombo"}, "sunny")
	clock.Advance(10*time.Minute + time.Millisecond)

	_, ok := c.Get(testKey{"current", "colombo"})
	assert.False(t, ok)

	// The stale entry is still physically present.
	assert.Equal(t, 1, c.Stats().Size)
}

func TestCache_ExactlyAtTTLIsStale(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newTestCache(clock)

	c.Put(testKey{"current", "kandy"}, "rain")
	clock.Advance(10 * time.Minute)

	_, ok := c.Get(testKey{"current", "kandy"})
	assert.False(t, ok)
}

func TestCache_PutReplacesAndResetsAge(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newTestCache(clock)
	key := testKey{"forecast", "galle"}

	c.Put(key, "first")
	clock.Advance(8 * time.Minute)
	c.Put(key, "second")
	clock.Advance(8 * time.Minute)

	entry, ok := c.GetEntry(key)
	require.True(t, ok)
	assert.Equal(t, "second", entry.Value)
	assert.Equal(t, clock.Now().Add(-8*time.Minute), entry.FetchedAt)
}

func TestCache_KeysAreIndependent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newTestCache(clock)

	c.Put(testKey{"current", "jaffna"}, "fog")

	_, ok := c.Get(testKey{"forecast", "jaffna"})
	assert.False(t, ok)
	_, ok = c.Get(testKey{"current", "kandy"})
	assert.False(t, ok)
}

func TestCache_ClearAndStats(t *testing.T) {
	c := newTestCache(clockwork.NewFakeClock())

	c.Put(testKey{"current", "kandy"}, "a")
	c.Put(testKey{"comprehensive", "colombo"}, "b")

	stats := c.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, []string{"comprehensive:colombo", "current:kandy"}, stats.Keys)

	c.Clear()

	stats = c.Stats()
	assert.Equal(t, 0, stats.Size)
	assert.Empty(t, stats.Keys)
	_, ok := c.Get(testKey{"current", "kandy"})
	assert.False(t, ok)
}

func TestCache_Purge(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newTestCache(clock)

	c.Put(testKey{"current", "old"}, "a")
	clock.Advance(11 * time.Minute)
	c.Put(testKey{"current", "new"}, "b")

	assert.Equal(t, 1, c.Purge())
	assert.Equal(t, []string{"current:new"}, c.Stats().Keys)
}

func TestCache_Defaults(t *testing.T) {
	c := cache.New[string, int](cache.Config{})
	assert.Equal(t, cache.DefaultTTL, c.TTL())

	c.Put("a", 1)
	value, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, value)
	assert.Equal(t, []string{"a"}, c.Stats().Keys)
}

func TestCache_ConcurrentAccess(t *testing.T) {
	c := newTestCache(clockwork.NewRealClock())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c.Put(testKey{"current", "shared"}, fmt.Sprintf("writer-%d", i))
		}(i)
		go func() {
			defer wg.Done()
			if v, ok := c.Get(testKey{"current", "shared"}); ok {
				assert.Contains(t, v, "writer-")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.Stats().Size)
}
