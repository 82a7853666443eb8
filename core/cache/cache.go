package cache

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a size- and age-bounded loading cache. Values are loaded on
// demand, kept for the configured TTL, and the oldest entry is evicted when
// the cache outgrows its maximum size. The clock is injected so expiry can
// be tested without sleeping.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]entry[V]
	ttl     time.Duration
	maxSize int
	clock   func() time.Time
	sf      singleflight.Group
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// New creates a cache holding at most maxSize entries for at most ttl each.
// If clock is nil, time.Now is used.
func New[K comparable, V any](maxSize int, ttl time.Duration, clock func() time.Time) *Cache[K, V] {
	if clock == nil {
		clock = time.Now
	}
	if maxSize < 1 {
		maxSize = 1
	}
	return &Cache[K, V]{
		entries: make(map[K]entry[V]),
		ttl:     ttl,
		maxSize: maxSize,
		clock:   clock,
	}
}

// Get returns the cached value for key, loading it with load on a miss or
// after expiry. Concurrent loads for the same key are collapsed into one.
// Load failures are not cached.
func (c *Cache[K, V]) Get(key K, load func() (V, error)) (V, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	result, err, _ := c.sf.Do(fmt.Sprint(key), func() (any, error) {
		// Re-check after winning the singleflight: another caller may have
		// stored the value between our miss and this closure running.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}

		v, err := load()
		if err != nil {
			var zero V
			return zero, err
		}
		c.store(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return result.(V), nil
}

// Invalidate removes the entry for key, if present.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of live entries (including not-yet-expired ones).
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[K, V]) lookup(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.ttl > 0 && c.clock().Sub(e.storedAt) > c.ttl {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[K, V]) store(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}
	c.entries[key] = entry[V]{value: value, storedAt: c.clock()}
}

// evictOldestLocked removes the entry with the earliest store time.
// Linear scan; the cache is sized for thousands of entries, not millions.
func (c *Cache[K, V]) evictOldestLocked() {
	var (
		oldestKey K
		oldestAt  time.Time
		found     bool
	)
	for k, e := range c.entries {
		if !found || e.storedAt.Before(oldestAt) {
			oldestKey, oldestAt, found = k, e.storedAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
	}
}
