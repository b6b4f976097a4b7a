package categorizer

import (
	"sync"
)

// MemoryCache is an in-memory Cache. When a limit is set and reached, an
// arbitrary entry is evicted before inserting a new key.
type MemoryCache struct {
	mu    sync.RWMutex
	store map[string]string
	limit int
}

// NewMemoryCache creates an unbounded memory cache
func NewMemoryCache() *MemoryCache {
	return NewMemoryCacheWithLimit(0)
}

// NewMemoryCacheWithLimit creates a memory cache holding at most limit
// entries. A limit of 0 or less means unbounded.
func NewMemoryCacheWithLimit(limit int) *MemoryCache {
	return &MemoryCache{
		store: make(map[string]string),
		limit: limit,
	}
}

// Get retrieves a value from cache
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, found := c.store[key]
	return value, found
}

// Set stores a value in cache
func (c *MemoryCache) Set(key string, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && c.limit > 0 && len(c.store) >= c.limit {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}
	c.store[key] = value
}

// Clear removes all entries from cache
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]string)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.store)
}
