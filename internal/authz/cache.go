// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package authz

import (
	"sync"
	"time"

	"github.com/tomtom215/launchpad/internal/metrics"
)

// maxCacheEntries bounds memory: paths contain ids, so the key space grows
// with the data.
const maxCacheEntries = 50_000

// enforcementCache caches authorization decisions.
type enforcementCache struct {
	ttl      time.Duration
	now      func() time.Time
	mu       sync.RWMutex
	items    map[string]cacheItem
	stopChan chan struct{}
	stopOnce sync.Once
}

type cacheItem struct {
	allowed   bool
	expiresAt time.Time
}

func newEnforcementCache(ttl time.Duration) *enforcementCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	c := &enforcementCache{
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]cacheItem),
		stopChan: make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

func (c *enforcementCache) get(role, object, action string) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[cacheKey(role, object, action)]
	if !ok || c.now().After(item.expiresAt) {
		return false, false
	}
	return item.allowed, true
}

func (c *enforcementCache) set(role, object, action string, allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) >= maxCacheEntries {
		metrics.CacheEvictions.WithLabelValues("authz").Add(float64(len(c.items)))
		c.items = make(map[string]cacheItem)
	}
	c.items[cacheKey(role, object, action)] = cacheItem{
		allowed:   allowed,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *enforcementCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *enforcementCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}

func (c *enforcementCache) cleanupLoop() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.removeExpired()
		}
	}
}

// stop is idempotent.
func (c *enforcementCache) stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
}
