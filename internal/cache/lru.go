// Package cache provides the settings cache layers for defaultdesk.
package cache

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"
)

var errKeyRequired = errors.New("key is required")

// Stats describes an LRU cache's occupancy and hit rate.
type Stats struct {
	Size      int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// LRUCache is an in-process least-recently-used cache with optional
// per-entry expiry. Keys are scoped to a namespace. It serves as the
// "memory" cache and as L1 of the two-phase cache.
type LRUCache struct {
	mu        sync.Mutex
	namespace string
	capacity  int
	entries   map[string]*list.Element
	recency   *list.List // front is most recently used
	stats     Stats
	now       func() time.Time
}

type lruEntry struct {
	key       string
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e *lruEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// NewLRUCache holds at most capacity entries; non-positive means 10000.
func NewLRUCache(namespace string, capacity int) *LRUCache {
	if capacity <= 0 {
		capacity = 10000
	}
	return &LRUCache{
		namespace: namespace,
		capacity:  capacity,
		entries:   make(map[string]*list.Element),
		recency:   list.New(),
		now:       time.Now,
	}
}

// Get returns nil, nil for absent and expired keys.
func (c *LRUCache) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errKeyRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[c.scoped(key)]
	if !ok {
		c.stats.Misses++
		return nil, nil
	}
	entry := elem.Value.(*lruEntry)
	if entry.expired(c.now()) {
		c.unlink(elem)
		c.stats.Misses++
		return nil, nil
	}

	c.recency.MoveToFront(elem)
	c.stats.Hits++
	return entry.value, nil
}

// Set stores value. A zero ttl keeps it until evicted.
func (c *LRUCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errKeyRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	scoped := c.scoped(key)
	if elem, ok := c.entries[scoped]; ok {
		entry := elem.Value.(*lruEntry)
		entry.value, entry.expiresAt = value, expiresAt
		c.recency.MoveToFront(elem)
		return nil
	}

	c.entries[scoped] = c.recency.PushFront(&lruEntry{key: scoped, value: value, expiresAt: expiresAt})
	for c.recency.Len() > c.capacity {
		c.unlink(c.recency.Back())
		c.stats.Evictions++
	}
	return nil
}

// Delete removes key if present.
func (c *LRUCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[c.scoped(key)]; ok {
		c.unlink(elem)
	}
	return nil
}

// Ping always succeeds.
func (c *LRUCache) Ping(context.Context) error {
	return nil
}

// Close drops every entry. The cache stays usable.
func (c *LRUCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*list.Element)
	c.recency.Init()
	return nil
}

// Stats returns a snapshot of the cache counters.
func (c *LRUCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.recency.Len()
	s.Capacity = c.capacity
	return s
}

func (c *LRUCache) scoped(key string) string {
	return c.namespace + ":" + key
}

func (c *LRUCache) unlink(elem *list.Element) {
	c.recency.Remove(elem)
	delete(c.entries, elem.Value.(*lruEntry).key)
}
