// Package fifocache is a capacity-bounded cache that evicts the oldest
// inserted entry first.
package fifocache

import "sync"

// Cache is safe for concurrent use. Re-setting an existing key updates its
// value without changing its eviction position.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[K]V
	order    []K
	head     int
}

// New creates a cache holding at most capacity entries. capacity <= 0
// disables caching.
func New[K comparable, V any](capacity int) *Cache[K, V] {
	if capacity < 0 {
		capacity = 0
	}
	return &Cache[K, V]{
		capacity: capacity,
		items:    make(map[K]V, capacity),
		order:    make([]K, 0, capacity),
	}
}

// Get returns the cached value for key.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

// Set stores value under key, evicting the oldest entry when full.
// It reports whether an entry was evicted.
func (c *Cache[K, V]) Set(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity == 0 {
		return false
	}
	if _, ok := c.items[key]; ok {
		c.items[key] = value
		return false
	}

	evicted := false
	if len(c.order) < c.capacity {
		c.order = append(c.order, key)
	} else {
		// order is a ring once full; head is the oldest slot.
		delete(c.items, c.order[c.head])
		c.order[c.head] = key
		c.head = (c.head + 1) % c.capacity
		evicted = true
	}
	c.items[key] = value
	return evicted
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Capacity returns the maximum number of entries.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}
