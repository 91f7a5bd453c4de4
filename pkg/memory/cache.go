package memory

import (
	"fmt"
	"sync"
	"time"
)

// Cache is a process-local TTL cache for small hot lookups.
type Cache struct {
	mu    sync.RWMutex
	items map[string]entry
	ttl   time.Duration
}

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// New creates a cache whose entries expire after ttl. A janitor goroutine
// sweeps expired entries at twice the TTL.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]entry),
		ttl:   ttl,
	}

	go c.janitor(2 * ttl)

	return c
}

// Get returns the cached value when present and not expired.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores a value under key for the cache TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// Delete removes a key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

func (c *Cache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for key, e := range c.items {
			if now.After(e.expiresAt) {
				delete(c.items, key)
			}
		}
		c.mu.Unlock()
	}
}

// Key builds a cache key from its parts.
func Key(parts ...interface{}) string {
	return fmt.Sprintf("%v", parts)
}
