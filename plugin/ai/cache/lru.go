// Package cache provides an in-process LRU cache with per-entry expiry.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU is a fixed-capacity cache that evicts the least recently used entry.
// It is safe for concurrent use.
type LRU[V any] struct {
	capacity   int
	defaultTTL time.Duration
	now        func() time.Time

	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List // front is most recently used
}

type entry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// NewLRU creates an LRU. Non-positive arguments fall back to 1000 entries and 5 minutes.
func NewLRU[V any](capacity int, defaultTTL time.Duration) *LRU[V] {
	if capacity <= 0 {
		capacity = 1000
	}
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &LRU[V]{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		now:        time.Now,
		items:      make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Get returns the value for key if present and not expired.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	el, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[V])
	if c.now().After(e.expiresAt) {
		c.remove(el)
		return zero, false
	}
	c.order.MoveToFront(el)
	return e.value, true
}

// Set stores value under key. A non-positive ttl uses the default.
func (c *LRU[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*entry[V])
		e.value = value
		e.expiresAt = c.now().Add(ttl)
		c.order.MoveToFront(el)
		return
	}

	for len(c.items) >= c.capacity {
		c.remove(c.order.Back())
	}
	c.items[key] = c.order.PushFront(&entry[V]{
		key:       key,
		value:     value,
		expiresAt: c.now().Add(ttl),
	})
}

// Len returns the number of entries, expired ones included until swept.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// CleanupExpired removes expired entries and returns how many were removed.
func (c *LRU[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if now.After(el.Value.(*entry[V]).expiresAt) {
			c.remove(el)
			removed++
		}
		el = prev
	}
	return removed
}

// remove must be called with the lock held.
func (c *LRU[V]) remove(el *list.Element) {
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.items, el.Value.(*entry[V]).key)
}
