// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package cache provides a thread-safe, typed in-memory cache with TTL support.

It sits in front of the two expensive read paths of the API: job
recommendations (per youth user) and analytics dashboards (per scope).

# Overview

The cache provides:
  - Thread-safe concurrent access (sync.RWMutex)
  - Time-to-live (TTL) expiration, checked lazily on Get and by a janitor
  - A size bound; when full, the entry closest to expiry is evicted
  - Prefix invalidation (DeletePrefix) for write paths
  - Prometheus hit/miss/eviction counters labeled by cache name

# Usage Example

	recs := cache.New[[]recommend.Recommendation]("recommendations", 5*time.Minute, 0)
	defer recs.Close()

	items, cached, err := recs.GetOrLoad(ctx, userID, func(ctx context.Context) ([]recommend.Recommendation, error) {
	    return scorer.Score(ctx, userID)
	})

	// Profile changed: drop the user's entry.
	recs.Delete(userID)

# Invalidation

Writers invalidate explicitly: saving a youth profile deletes that user's
recommendations, publishing or closing a job clears the recommendation
cache, and dashboard writes drop the affected scope via DeletePrefix.
*/
package cache
