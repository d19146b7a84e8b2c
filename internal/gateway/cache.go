package gateway

import (
	"strings"
	"sync"
	"time"
)

// Cache is a process-wide read cache keyed by string. Keys follow a
// "concern:identifier" convention (e.g. "task:42", "tasks:list:p1") so
// that a mutation can invalidate every related read with one prefix.
//
// There is no ownership discipline: any caller may read or invalidate any
// key. That matches a single-user client process where the backend stays
// the sole source of truth.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// NewCache creates a cache whose entries stay fresh for ttl. A zero or
// negative ttl disables expiry.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached value for key and whether a fresh entry exists.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

// Set stores value under key with the cache's TTL.
func (c *Cache) Set(key string, value interface{}) {
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

// Invalidate removes every entry whose key starts with prefix and returns
// the number of entries removed.
func (c *Cache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries currently stored, counting expired
// entries that have not been read yet.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
