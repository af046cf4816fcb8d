// Package cache provides the short-TTL in-process caches layered over the
// persistent store, plus the per-user invalidation registry that keeps
// derived state consistent with committed writes.
package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

var (
	globalHits   atomic.Int64
	globalMisses atomic.Int64
)

// Stats reports process-wide cache hit/miss counters.
func Stats() (hits, misses int64) {
	return globalHits.Load(), globalMisses.Load()
}

type entry[V any] struct {
	at    time.Time
	value V
}

// TTL is a key -> (timestamp, value) map behind a RWMutex. Readers stay on
// the shared lock; expired entries are removed under the exclusive lock.
type TTL[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]entry[V]
}

func NewTTL[K comparable, V any]() *TTL[K, V] {
	return &TTL[K, V]{entries: make(map[K]entry[V])}
}

// GetWithTTL returns the cached value if it is younger than ttl. An expired
// entry is removed and counted as a miss.
func (c *TTL[K, V]) GetWithTTL(key K, ttl time.Duration) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && time.Since(e.at) < ttl {
		globalHits.Add(1)
		return e.value, true
	}

	if ok {
		c.mu.Lock()
		// Recheck: a writer may have refreshed the entry between locks.
		if e2, still := c.entries[key]; still && time.Since(e2.at) >= ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}

	globalMisses.Add(1)
	var zero V
	return zero, false
}

// Insert stores value under key, stamped now.
func (c *TTL[K, V]) Insert(key K, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{at: time.Now(), value: value}
	c.mu.Unlock()
}

// Remove drops a single key.
func (c *TTL[K, V]) Remove(key K) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len is used by the metrics surface.
func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Invalidatable is any cache that can drop a per-user entry.
type Invalidatable interface {
	InvalidateUser(userID string)
}

// InvalidateUser satisfies Invalidatable for string-keyed caches.
func (c *TTL[K, V]) InvalidateUser(userID string) {
	if key, ok := any(userID).(K); ok {
		c.Remove(key)
	}
}

// UserCaches groups every per-user cache so mutating paths can clear them
// all with one call. Any write touching a user's units, bonds, contracts, or
// inventory must invalidate before returning.
type UserCaches struct {
	mu     sync.RWMutex
	caches []Invalidatable
}

func NewUserCaches() *UserCaches {
	return &UserCaches{}
}

func (uc *UserCaches) Register(c Invalidatable) {
	uc.mu.Lock()
	uc.caches = append(uc.caches, c)
	uc.mu.Unlock()
}

func (uc *UserCaches) InvalidateUser(userID string) {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	for _, c := range uc.caches {
		c.InvalidateUser(userID)
	}
}
