// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package cache

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/metrics"
)

// DefaultMaxEntries bounds a cache created with maxEntries <= 0.
const DefaultMaxEntries = 10_000

// Entry represents a cached item with expiration
type Entry[V any] struct {
	Data      V
	ExpiresAt time.Time
}

// Cache provides a thread-safe in-memory cache with TTL support.
//
// Each cache has a name used as the "cache" label on the
// launchpad_cache_* Prometheus metrics.
type Cache[V any] struct {
	name       string
	mu         sync.RWMutex
	entries    map[string]Entry[V]
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	stats      Stats

	// Loads in flight per key and the invalidations seen while they ran.
	// A load only stores its result when neither its key version nor the
	// cache epoch moved.
	loading  map[string]int
	versions map[string]uint64
	epoch    uint64

	stopChan chan struct{}
	stopOnce sync.Once
}

// Stats tracks cache performance metrics
type Stats struct {
	mu          sync.RWMutex
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// New creates a thread-safe in-memory cache with automatic expiration.
//
// A background goroutine removes expired entries every ttl (at least once a
// minute, at most every 5 minutes) until Close is called. When the cache
// holds maxEntries entries, Set evicts the entry closest to expiry.
//
// Example:
//
//	recs := cache.New[[]Recommendation]("recommendations", 5*time.Minute, 0)
//	defer recs.Close()
//	recs.Set(userID, items)
//	if items, ok := recs.Get(userID); ok {
//	    // Use cached data
//	}
func New[V any](name string, ttl time.Duration, maxEntries int) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	c := &Cache[V]{
		name:       name,
		entries:    make(map[string]Entry[V]),
		loading:    make(map[string]int),
		versions:   make(map[string]uint64),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		stats: Stats{
			LastCleanup: time.Now(),
		},
		stopChan: make(chan struct{}),
	}

	go c.cleanupLoop(cleanupInterval(ttl))

	return c
}

func cleanupInterval(ttl time.Duration) time.Duration {
	switch {
	case ttl < time.Minute:
		return time.Minute
	case ttl > 5*time.Minute:
		return 5 * time.Minute
	default:
		return ttl
	}
}

// Name returns the metrics label of the cache.
func (c *Cache[V]) Name() string {
	return c.name
}

// TTL returns the default time-to-live.
func (c *Cache[V]) TTL() time.Duration {
	return c.ttl
}

// Get retrieves a value if present and not expired.
//
// Expired entries are deleted on access and counted as both a miss and an
// eviction.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	var zero V
	if !exists {
		c.recordMiss()
		return zero, false
	}

	if c.now().After(entry.ExpiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have refreshed it.
		if current, ok := c.entries[key]; ok && c.now().After(current.ExpiresAt) {
			delete(c.entries, key)
			c.recordEviction(1)
		}
		c.mu.Unlock()
		c.recordMiss()
		return zero, false
	}

	c.recordHit()
	return entry.Data, true
}

// Set stores a value with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	size := c.setLocked(key, value, ttl)
	c.mu.Unlock()

	c.recordSize(size)
}

// setLocked stores value and returns the new entry count. Callers hold c.mu.
func (c *Cache[V]) setLocked(key string, value V, ttl time.Duration) int64 {
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = Entry[V]{
		Data:      value,
		ExpiresAt: c.now().Add(ttl),
	}
	return int64(len(c.entries))
}

func (c *Cache[V]) recordSize(size int64) {
	c.stats.mu.Lock()
	c.stats.TotalKeys = size
	c.stats.mu.Unlock()
}

// evictOldestLocked removes the entry closest to expiry. Callers hold c.mu.
func (c *Cache[V]) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for key, entry := range c.entries {
		if !found || entry.ExpiresAt.Before(oldestAt) {
			oldestKey, oldestAt, found = key, entry.ExpiresAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
		c.recordEviction(1)
	}
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result. Errors are not cached. The boolean reports whether the value came
// from the cache.
//
// Concurrent misses for the same key may each call load; the last result
// wins. A load that overlaps Delete, DeletePrefix or Clear returns its value
// but does not cache it, so an invalidation is never undone by a result
// computed from older data.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, bool, error) {
	if value, ok := c.Get(key); ok {
		return value, true, nil
	}

	c.mu.Lock()
	c.loading[key]++
	version, epoch := c.versions[key], c.epoch
	c.mu.Unlock()

	value, err := load(ctx)

	c.mu.Lock()
	fresh := c.versions[key] == version && c.epoch == epoch
	if c.loading[key]--; c.loading[key] == 0 {
		delete(c.loading, key)
		delete(c.versions, key)
	}
	size := int64(-1)
	if err == nil && fresh {
		size = c.setLocked(key, value, c.ttl)
	}
	c.mu.Unlock()

	if err != nil {
		var zero V
		return zero, false, err
	}
	if size >= 0 {
		c.recordSize(size)
	}
	return value, false, nil
}

// bumpLocked marks in-flight loads of key as stale. Callers hold c.mu.
func (c *Cache[V]) bumpLocked(key string) {
	if c.loading[key] > 0 {
		c.versions[key]++
	}
}

// Delete removes an entry immediately.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	_, existed := c.entries[key]
	delete(c.entries, key)
	c.bumpLocked(key)
	c.mu.Unlock()

	if existed {
		c.recordEviction(1)
	}
}

// DeletePrefix removes every entry whose key starts with prefix and returns
// how many were removed.
//
// Example:
//
//	// A company published a job: drop that tenant's dashboards.
//	analytics.DeletePrefix("company:" + tenantID + ":")
func (c *Cache[V]) DeletePrefix(prefix string) int {
	c.mu.Lock()
	removed := 0
	for key := range c.loading {
		if strings.HasPrefix(key, prefix) {
			c.versions[key]++
		}
	}
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		c.recordEviction(int64(removed))
	}
	return removed
}

// Clear removes all entries from the cache in a single atomic operation.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	evictions := int64(len(c.entries))
	c.entries = make(map[string]Entry[V])
	c.epoch++
	c.mu.Unlock()

	c.recordEviction(evictions)
	c.stats.mu.Lock()
	c.stats.TotalKeys = 0
	c.stats.mu.Unlock()
}

// Len returns the number of stored entries, including expired ones not yet
// cleaned up.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetStats returns a snapshot of current cache performance statistics.
func (c *Cache[V]) GetStats() Stats {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()

	return Stats{
		Hits:        c.stats.Hits,
		Misses:      c.stats.Misses,
		Evictions:   c.stats.Evictions,
		TotalKeys:   c.stats.TotalKeys,
		LastCleanup: c.stats.LastCleanup,
	}
}

// HitRate returns the cache hit rate as a percentage
func (c *Cache[V]) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Close stops the background cleanup goroutine. It is safe to call more
// than once; the cache stays usable afterwards.
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}

// cleanupLoop periodically removes expired entries
func (c *Cache[V]) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes all expired entries
func (c *Cache[V]) cleanup() {
	now := c.now()
	c.mu.Lock()
	evictions := int64(0)
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			evictions++
		}
	}
	size := int64(len(c.entries))
	c.mu.Unlock()

	c.recordEviction(evictions)
	c.stats.mu.Lock()
	c.stats.TotalKeys = size
	c.stats.LastCleanup = now
	c.stats.mu.Unlock()
}

func (c *Cache[V]) recordHit() {
	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	metrics.RecordCacheLookup(c.name, true)
}

func (c *Cache[V]) recordMiss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
	metrics.RecordCacheLookup(c.name, false)
}

func (c *Cache[V]) recordEviction(n int64) {
	if n <= 0 {
		return
	}
	c.stats.mu.Lock()
	c.stats.Evictions += n
	c.stats.mu.Unlock()
	metrics.CacheEvictions.WithLabelValues(c.name).Add(float64(n))
}

// GenerateKey creates a cache key from a prefix and parameters.
func GenerateKey(prefix string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", prefix, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", prefix, hash[:16])
}
