// Package cache provides an in-memory store for memoized resolution results.
package cache

// Option applies a configuration option to the InMemoryCache.
type Option func(*InMemoryCache)

// WithMaxSize sets the maximum number of entries to keep in memory.
// If maxSize > 0: bounded mode with oldest-entry eviction.
// If maxSize <= 0: unbounded mode (no eviction, no size limit).
func WithMaxSize(maxSize int) Option {
	return func(c *InMemoryCache) {
		c.maxSize = maxSize
	}
}
