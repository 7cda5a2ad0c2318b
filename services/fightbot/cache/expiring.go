// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package cache provides the local expiring cache and the optional Redis
// tier used by the fightbot data store.
//
// The local tier is a per-instance-TTL map with no LRU: the keyspace is the
// fighter/division entity space, which is small, so unconditional time-based
// expiry is the only eviction policy.
package cache

import (
	"sync"
	"time"
)

// entry pairs a value with the time it was stored. The pair is written and
// read as one unit under the cache lock; readers never observe a value with
// a mismatched timestamp.
type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Expiring is a thread-safe key-value cache with a fixed TTL set at
// construction. An entry older than the TTL is logically absent: Get
// reports a miss and purges it.
//
// Thread Safety: Expiring is safe for concurrent use.
type Expiring[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	name    string

	now func() time.Time // test seam
}

// NewExpiring creates an Expiring cache. name labels the cache in metrics;
// ttl must be > 0.
//
// Example:
//
//	roster := cache.NewExpiring[map[string]store.Fighter]("roster", 24*time.Hour)
func NewExpiring[V any](name string, ttl time.Duration) *Expiring[V] {
	return &Expiring[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		name:    name,
		now:     time.Now,
	}
}

// Get returns the value stored under key if it is younger than the TTL.
// Expired entries are evicted on access and reported as misses.
func (c *Expiring[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		cacheMisses.WithLabelValues(c.name).Inc()
		var zero V
		return zero, false
	}

	if c.now().Sub(e.storedAt) >= c.ttl {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have
		// refreshed the entry since the read above.
		if cur, still := c.entries[key]; still && c.now().Sub(cur.storedAt) >= c.ttl {
			delete(c.entries, key)
			cacheEvictions.WithLabelValues(c.name).Inc()
		}
		c.mu.Unlock()
		cacheMisses.WithLabelValues(c.name).Inc()
		var zero V
		return zero, false
	}

	cacheHits.WithLabelValues(c.name).Inc()
	return e.value, true
}

// Set stores value under key with a fresh timestamp, replacing any
// previous entry.
func (c *Expiring[V]) Set(key string, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *Expiring[V]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry[V])
	c.mu.Unlock()
}

// Len returns the number of entries currently stored, expired or not.
func (c *Expiring[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TTL returns the cache's configured time-to-live.
func (c *Expiring[V]) TTL() time.Duration {
	return c.ttl
}
