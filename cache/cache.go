// Package cache provides the thread-safe caches the editor core keeps
// between edits: a generic LRU and a per-document validation result
// cache with explicit invalidation.
package cache

import (
	"container/list"
	"sync"
	"sync/atomic"
)

// LRU is a generic thread-safe least-recently-used cache.
type LRU[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*list.Element
	order    *list.List
	capacity int

	hits   atomic.Uint64
	misses atomic.Uint64
}

type lruEntry[K comparable, V any] struct {
	key   K
	value V
}

// NewLRU creates an LRU bounded to capacity entries. A non-positive
// capacity defaults to 64.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity <= 0 {
		capacity = 64
	}
	return &LRU[K, V]{
		entries:  make(map[K]*list.Element, capacity),
		order:    list.New(),
		capacity: capacity,
	}
}

// Get returns the cached value and whether it was present. A hit
// refreshes the entry's recency.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	c.hits.Add(1)
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry[K, V]).value, true
}

// Put stores a value, evicting the least recently used entry when full.
func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*lruEntry[K, V]).value = value
		c.order.MoveToFront(el)
		return
	}
	if len(c.entries) >= c.capacity {
		if back := c.order.Back(); back != nil {
			delete(c.entries, back.Value.(*lruEntry[K, V]).key)
			c.order.Remove(back)
		}
	}
	c.entries[key] = c.order.PushFront(&lruEntry[K, V]{key: key, value: value})
}

// Remove drops the entry for key, reporting whether one existed.
func (c *LRU[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return false
	}
	delete(c.entries, key)
	c.order.Remove(el)
	return true
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry. Hit and miss counters are kept.
func (c *LRU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[K]*list.Element, c.capacity)
	c.order.Init()
}

// Hits returns the number of cache hits.
func (c *LRU[K, V]) Hits() uint64 { return c.hits.Load() }

// Misses returns the number of cache misses.
func (c *LRU[K, V]) Misses() uint64 { return c.misses.Load() }
