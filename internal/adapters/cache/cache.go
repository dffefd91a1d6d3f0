// Package cache provides an in-memory store for memoized resolution results.
package cache

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/nuray/setpoint/pkg/metrics"
)

// Cache stores encoded resolution results keyed by pool and normalized query.
type Cache interface {
	// Get returns the cached value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool)

	// Put records value under key, overwriting any previous entry.
	Put(ctx context.Context, key, value string)

	// Len returns the current number of entries.
	Len() int
}

// entry is a single cached resolution in the eviction list.
type entry struct {
	key   string
	value string
	next  *entry
}

func (e *entry) reset() {
	e.key = ""
	e.value = ""
	e.next = nil
}

// InMemoryCache implements Cache with optional bounded LIFO eviction.
// For bounded mode (maxSize > 0): a linked list tracks insertion order and
// the oldest entry is evicted when full. For unbounded mode (maxSize <= 0):
// a plain map with no eviction.
type InMemoryCache struct {
	mu        sync.RWMutex
	entries   map[string]*entry
	head      *entry
	maxSize   int
	size      atomic.Int64
	entryPool sync.Pool
}

// NewInMemoryCache creates a new in-memory cache with configuration options.
func NewInMemoryCache(opts ...Option) *InMemoryCache {
	c := &InMemoryCache{
		maxSize: 50000, // default max size
	}

	for _, opt := range opts {
		opt(c)
	}

	c.entries = make(map[string]*entry)

	if c.maxSize > 0 {
		c.entryPool = sync.Pool{
			New: func() interface{} {
				return &entry{}
			},
		}
	}

	return c
}

// Get returns the cached value for key and whether it was present.
func (c *InMemoryCache) Get(ctx context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	return e.value, true
}

// Put records value under key, overwriting any previous entry.
func (c *InMemoryCache) Put(ctx context.Context, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		return
	}

	if c.maxSize > 0 {
		// BOUNDED MODE: evict the oldest entry before adding a new one
		if len(c.entries) >= c.maxSize {
			c.evictOldest()
		}

		e := c.entryPool.Get().(*entry)
		e.key = key
		e.value = value
		e.next = c.head

		c.head = e
		c.entries[key] = e
	} else {
		// UNBOUNDED MODE: no eviction list needed
		c.entries[key] = &entry{key: key, value: value}
	}
	c.size.Add(1)
	metrics.UpdateCacheSize(int(c.size.Load()))
}

// evictOldest removes the least recently added entry (tail of list).
// Must be called with c.mu.Lock() held.
func (c *InMemoryCache) evictOldest() {
	if len(c.entries) == 0 || c.head == nil {
		return
	}

	var prev *entry
	current := c.head

	if current.next == nil {
		delete(c.entries, current.key)
		current.reset()
		c.entryPool.Put(current)
		c.head = nil
		c.size.Add(-1)
		return
	}

	for current.next != nil {
		prev = current
		current = current.next
	}

	if prev != nil {
		prev.next = nil
		delete(c.entries, current.key)
		current.reset()
		c.entryPool.Put(current)
		c.size.Add(-1)
	}
}

// Len returns the current number of entries.
func (c *InMemoryCache) Len() int {
	return int(c.size.Load())
}
