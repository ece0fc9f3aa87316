// Package cache provides a small TTL cache for fetched market data and
// headlines. Entries are immutable once written, so concurrent readers need
// no copies.
package cache

import (
	"sync"
	"time"
)

// Freshness windows per data kind.
const (
	SnapshotTTL = 5 * time.Minute
	SeriesTTL   = 1 * time.Hour
	HeadlineTTL = 1 * time.Hour
)

const cleanupInterval = 10 * time.Minute

// TTL is a time-bounded key/value store. Safe for concurrent use.
type TTL[V any] struct {
	mu   sync.RWMutex
	data map[string]*entry[V]
	ttl  time.Duration
	now  func() time.Time

	hits   uint64
	misses uint64
}

type entry[V any] struct {
	value V
	at    time.Time
}

// New creates a cache and starts its background cleanup.
func New[V any](ttl time.Duration) *TTL[V] {
	c := NewWithClock[V](ttl, time.Now)
	go c.cleanupLoop()
	return c
}

// NewWithClock creates a cache without the cleanup goroutine, reading time
// from the given clock. Used by tests to control expiry.
func NewWithClock[V any](ttl time.Duration, now func() time.Time) *TTL[V] {
	return &TTL[V]{
		data: make(map[string]*entry[V]),
		ttl:  ttl,
		now:  now,
	}
}

// Get retrieves a value if present and fresh.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.data[key]
	if !ok || c.now().Sub(e.at) > c.ttl {
		c.misses++
		return zero, false
	}
	c.hits++
	return e.value, true
}

// Set stores a value with the current timestamp.
func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &entry[V]{value: value, at: c.now()}
}

// Stats reports cumulative hit and miss counts.
func (c *TTL[V]) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *TTL[V]) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *TTL[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.data {
		if now.Sub(e.at) > c.ttl {
			delete(c.data, key)
		}
	}
}
