// Package cache provides a generic key/value store whose entries expire a fixed
// time after they were written.
package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultTTL is the time-to-live used when none is configured.
const DefaultTTL = 10 * time.Minute

// Config holds configuration for a Cache.
type Config struct {
	// TTL is how long an entry stays valid after Put (default: 10 minutes).
	TTL time.Duration

	// Clock is the time source used to judge validity (default: real clock).
	Clock clockwork.Clock
}

// Stats describes the physical contents of the cache.
type Stats struct {
	Size int      `json:"size"`
	Keys []string `json:"keys"`
}

// Entry is a cached value together with the time it was stored.
type Entry[V any] struct {
	Value     V
	FetchedAt time.Time
}

// Cache is a concurrency-safe expiring cache. Validity is evaluated on read;
// there is no background eviction, so stale entries stay in memory until they
// are overwritten, purged or cleared, but are never returned.
type Cache[K comparable, V any] struct {
	ttl   time.Duration
	clock clockwork.Clock

	mu      sync.RWMutex
	entries map[K]Entry[V]
}

// New creates a new cache.
func New[K comparable, V any](cfg Config) *Cache[K, V] {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Cache[K, V]{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[K]Entry[V]),
	}
}

// TTL returns the configured time-to-live.
func (c *Cache[K, V]) TTL() time.Duration {
	return c.ttl
}

// Get returns the value stored at key if it was written less than TTL ago.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	entry, ok := c.GetEntry(key)
	return entry.Value, ok
}

// GetEntry is like Get but also returns the time the value was stored.
func (c *Cache[K, V]) GetEntry(key K) (Entry[V], bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || !c.valid(entry) {
		return Entry[V]{}, false
	}
	return entry, true
}

// Put stores value at key, replacing any previous entry.
func (c *Cache[K, V]) Put(key K, value V) {
	entry := Entry[V]{Value: value, FetchedAt: c.clock.Now()}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]Entry[V])
}

// Purge removes expired entries and returns how many were dropped.
func (c *Cache[K, V]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if !c.valid(entry) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Stats returns the number of stored entries and their keys in sorted order.
// Stale entries that have not been purged are included.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.RLock()
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, keyString(key))
	}
	c.mu.RUnlock()

	sort.Strings(keys)
	return Stats{Size: len(keys), Keys: keys}
}

func (c *Cache[K, V]) valid(entry Entry[V]) bool {
	return c.clock.Since(entry.FetchedAt) < c.ttl
}

func keyString(key any) string {
	if s, ok := key.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(key)
}
