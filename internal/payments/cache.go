package payments

import (
	"strconv"
	"sync"
	"time"
)

// Cache is a process-local TTL cache for provider fetch results. Entries are
// replaced whole on refresh; a read past the TTL misses and the stale entry
// is dropped. Safe for concurrent use by HTTP handlers.
type Cache[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry[T]
	nowFn   func() time.Time
}

type cacheEntry[T any] struct {
	value     T
	fetchedAt time.Time
}

// NewCache creates a Cache whose entries expire ttl after they were stored.
func NewCache[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		ttl:     ttl,
		entries: make(map[string]cacheEntry[T]),
		nowFn:   time.Now,
	}
}

// Get returns the cached value for key if present and fresh.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if c.nowFn().Sub(entry.fetchedAt) > c.ttl {
		delete(c.entries, key)
		var zero T
		return zero, false
	}
	return entry.value, true
}

// Put stores value under key, replacing any previous entry and resetting its
// TTL clock.
func (c *Cache[T]) Put(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry[T]{value: value, fetchedAt: c.nowFn()}
}

// Clear drops every entry unconditionally.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry[T])
}

// cacheKey derives the payment cache key for a lower-bound timestamp.
// An absent bound uses a sentinel so unbounded and bounded enumerations
// never share an entry.
func cacheKey(from *int64) string {
	if from == nil {
		return "all"
	}
	return strconv.FormatInt(*from, 10)
}
