// Package cache provides the time-boxed read cache shared by the credit
// ledger and the sales log. Mutating callers never patch cached values in
// place — they invalidate by key prefix and let the next read repopulate.
package cache

import (
	"strings"
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// Cache is a TTL-bounded keyed cache. Reads of expired entries behave as
// misses and evict the entry. Safe for concurrent use.
type Cache[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry[V]
	now     func() time.Time

	onHit, onMiss func()
}

// New returns a cache whose entries expire after ttl.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// SetClock replaces the time source, for tests.
func (c *Cache[V]) SetClock(now func() time.Time) { c.now = now }

// SetCounters registers hit/miss callbacks (e.g. Prometheus counters).
func (c *Cache[V]) SetCounters(hit, miss func()) {
	c.onHit, c.onMiss = hit, miss
}

// Put stores value under key with a fresh TTL.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expires: c.now().Add(c.ttl)}
}

// Get returns the cached value and whether it was present and fresh.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if ok && c.now().Before(e.expires) {
		if c.onHit != nil {
			c.onHit()
		}
		return e.value, true
	}
	if ok {
		delete(c.entries, key)
	}
	if c.onMiss != nil {
		c.onMiss()
	}
	var zero V
	return zero, false
}

// InvalidatePrefix removes every entry whose key starts with prefix.
func (c *Cache[V]) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// Len reports the number of entries, including not-yet-evicted expired ones.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
