package marketdata

import (
	"sync"
	"time"
)

// DefaultTTL is the freshness window shared by all resource kinds.
const DefaultTTL = 5 * time.Minute

// Entry is the last successful result for a resource kind.
type Entry[T any] struct {
	Data      T
	FetchedAt time.Time
}

// Cache remembers the last successful result for one resource kind and
// reports freshness. It never fails and never blocks beyond its mutex;
// entries are superseded, never deleted.
type Cache[T any] struct {
	mu    sync.RWMutex
	entry *Entry[T]
	ttl   time.Duration
}

// NewCache creates a cache with the given freshness window.
// A non-positive ttl falls back to DefaultTTL.
func NewCache[T any](ttl time.Duration) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[T]{ttl: ttl}
}

// Get returns the current entry, if any. Pure lookup, no side effect.
func (c *Cache[T]) Get() (Entry[T], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry == nil {
		var zero Entry[T]
		return zero, false
	}
	return *c.entry, true
}

// GetFresh returns the entry only if it is still fresh at now.
func (c *Cache[T]) GetFresh(now time.Time) (Entry[T], bool) {
	e, ok := c.Get()
	if !ok || !e.Fresh(now, c.ttl) {
		var zero Entry[T]
		return zero, false
	}
	return e, true
}

// Put overwrites the entry unconditionally.
func (c *Cache[T]) Put(data T, now time.Time) {
	c.mu.Lock()
	c.entry = &Entry[T]{Data: data, FetchedAt: now}
	c.mu.Unlock()
}

// TTL returns the freshness window.
func (c *Cache[T]) TTL() time.Duration {
	return c.ttl
}

// Fresh reports whether the entry is still within the freshness window.
func (e Entry[T]) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.FetchedAt) < ttl
}
