package querycache

import (
	"sync"
	"time"
)

// Entry is a cached query result with the time it was fetched from the store.
type Entry struct {
	Value     interface{}
	FetchedAt time.Time
}

// IsStale reports whether an entry fetched at fetchedAt has outlived ttl at
// the given instant. Pure so the staleness policy is testable in isolation.
func IsStale(now, fetchedAt time.Time, ttl time.Duration) bool {
	return now.Sub(fetchedAt) >= ttl
}

// Cache memoizes query results keyed by query signature. It exists to dedupe
// repeated reads within a short window; any mutation affecting a signature
// must invalidate it so the next read hits the authoritative store.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
}

func New(ttl time.Duration) *Cache {
	return &Cache{entries: make(map[string]Entry), ttl: ttl}
}

// Get returns the cached value for key if it is still fresh at now.
func (c *Cache) Get(key string, now time.Time) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || IsStale(now, e.FetchedAt, c.ttl) {
		return nil, false
	}
	return e.Value, true
}

func (c *Cache) Set(key string, value interface{}, now time.Time) {
	c.mu.Lock()
	c.entries[key] = Entry{Value: value, FetchedAt: now}
	c.mu.Unlock()
}

// Invalidate drops the given signatures.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.mu.Unlock()
}

// InvalidateAll drops every entry. Used after mutations whose blast radius
// is not cheap to compute (e.g. an item deletion visible in every browse).
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.mu.Unlock()
}
