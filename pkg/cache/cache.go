// Package cache holds the process-local read-through cache for table reads.
// Invalidation is synchronous within this process after writes; other
// processes sharing the backend see stale data until their own TTL expires,
// which is accepted behavior.
package cache

import (
	"sync"
	"time"
)

// Entry is a cached table snapshot with expiration.
type Entry[T any] struct {
	Value     T
	ExpiresAt time.Time
}

// Cache is a simple in-memory cache with TTL.
type Cache[T any] struct {
	mu    sync.RWMutex
	items map[string]*Entry[T]
}

// New creates a new cache.
func New[T any]() *Cache[T] {
	return &Cache[T]{items: map[string]*Entry[T]{}}
}

// Set stores a value with a given TTL.
func (c *Cache[T]) Set(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = &Entry[T]{
		Value:     value,
		ExpiresAt: time.Now().Add(ttl),
	}
}

// Get retrieves a value if it hasn't expired.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, exists := c.items[key]
	if !exists || time.Now().After(entry.ExpiresAt) {
		var zero T
		return zero, false
	}
	return entry.Value, true
}

// Delete removes a key.
func (c *Cache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes all items.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[string]*Entry[T]{}
}

// Invalidate removes all items matching a prefix.
func (c *Cache[T]) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.items, key)
		}
	}
}
