// Package cache provides a small bounded TTL cache used to memoize
// classifier results for repeated messages.
//
// The cache is injected into the language detector and intent classifier as
// an explicit dependency so it can be sized, cleared, and faked in tests.
// It is intentionally simple: a mutex-guarded map with lazy expiry and a hard
// entry cap enforced by evicting the entry closest to expiry.
package cache

import (
	"sync"
	"time"
)

const (
	// DefaultTTL is the entry lifetime when none is configured.
	DefaultTTL = 5 * time.Minute

	// DefaultMaxEntries bounds the cache size when none is configured.
	DefaultMaxEntries = 1000
)

type entry struct {
	value     string
	expiresAt time.Time
}

// TTLCache is a bounded string→string cache with per-entry expiry.
// It is safe for concurrent use from multiple goroutines.
type TTLCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	max     int
	entries map[string]entry

	// now is injectable for tests.
	now func() time.Time
}

// New returns a TTLCache holding at most maxEntries entries, each expiring
// ttl after insertion. Non-positive arguments fall back to the defaults.
func New(ttl time.Duration, maxEntries int) *TTLCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &TTLCache{
		ttl:     ttl,
		max:     maxEntries,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the cached value for key and whether it was present and fresh.
// Expired entries are removed on access.
func (c *TTLCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

// Set stores value under key. When the cache is full, the entry closest to
// expiry is evicted to make room.
func (c *TTLCache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.max {
		c.evictOldestLocked()
	}
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Clear removes all entries. Used when operators reload lexicons or message
// catalogs at runtime.
func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of entries currently held, including entries that
// have expired but not yet been evicted.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictOldestLocked removes the entry with the nearest expiry.
// Callers must hold c.mu.
func (c *TTLCache) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
		first     = true
	)
	for k, e := range c.entries {
		if first || e.expiresAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.expiresAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
