package data

import (
	"sync"

	"heropick/internal/tables"
)

// SetCache provides thread-safe in-memory caching of loaded table sets by map
type SetCache struct {
	mu   sync.RWMutex
	data map[string]*tables.Set
}

// NewSetCache creates a new cache
func NewSetCache() *SetCache {
	return &SetCache{
		data: make(map[string]*tables.Set),
	}
}

// Get retrieves a set from the cache
func (c *SetCache) Get(key string) (*tables.Set, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.data[key]
	return val, ok
}

// Set stores a set in the cache
func (c *SetCache) Set(key string, value *tables.Set) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

// Clear removes all cached sets
func (c *SetCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*tables.Set)
}
