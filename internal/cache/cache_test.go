// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// newTestCache returns a cache with a controllable clock.
func newTestCache[V any](t *testing.T, ttl time.Duration, maxEntries int) (*Cache[V], *time.Time) {
	t.Helper()
	c := New[V]("test", ttl, maxEntries)
	t.Cleanup(c.Close)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestCacheBasicOperations(t *testing.T) {
	c, _ := newTestCache[string](t, time.Minute, 0)

	c.Set("key1", "value1")
	value, exists := c.Get("key1")
	if !exists {
		t.Fatal("Expected key1 to exist")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	if _, exists = c.Get("key2"); exists {
		t.Error("Expected key2 to not exist")
	}

	stats := c.GetStats()
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 1 hit 1 miss", &stats)
	}
	if got := c.HitRate(); got != 50 {
		t.Errorf("HitRate() = %v, want 50", got)
	}
}

func TestCacheExpiration(t *testing.T) {
	c, now := newTestCache[int](t, time.Minute, 0)

	c.Set("key1", 1)
	c.SetWithTTL("key2", 2, 10*time.Minute)

	*now = now.Add(2 * time.Minute)

	if _, exists := c.Get("key1"); exists {
		t.Error("Expected key1 to be expired")
	}
	if v, exists := c.Get("key2"); !exists || v != 2 {
		t.Errorf("key2 = %v, %v; want 2, true", v, exists)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (expired entry removed on access)", c.Len())
	}
}

func TestCacheDeleteAndPrefix(t *testing.T) {
	c, _ := newTestCache[string](t, time.Minute, 0)

	c.Set("company:t1:overview", "a")
	c.Set("company:t1:jobs", "b")
	c.Set("company:t2:overview", "c")
	c.Set("youth:u1", "d")

	c.Delete("youth:u1")
	if _, ok := c.Get("youth:u1"); ok {
		t.Error("youth:u1 still present after Delete")
	}

	if removed := c.DeletePrefix("company:t1:"); removed != 2 {
		t.Errorf("DeletePrefix() = %d, want 2", removed)
	}
	if _, ok := c.Get("company:t2:overview"); !ok {
		t.Error("unrelated key removed by DeletePrefix")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
	if ev := c.GetStats().Evictions; ev != 4 {
		t.Errorf("Evictions = %d, want 4", ev)
	}
}

func TestCacheMaxEntriesEvictsClosestToExpiry(t *testing.T) {
	c, _ := newTestCache[int](t, time.Minute, 2)

	c.SetWithTTL("short", 1, time.Second)
	c.SetWithTTL("long", 2, time.Hour)
	c.Set("new", 3)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if _, ok := c.Get("short"); ok {
		t.Error("entry closest to expiry should have been evicted")
	}
	for _, key := range []string{"long", "new"} {
		if _, ok := c.Get(key); !ok {
			t.Errorf("%s missing", key)
		}
	}

	// Overwriting an existing key never evicts.
	c.Set("long", 20)
	if c.Len() != 2 {
		t.Errorf("Len() after overwrite = %d", c.Len())
	}
}

func TestCacheCleanup(t *testing.T) {
	c, now := newTestCache[int](t, time.Minute, 0)
	for i := 0; i < 5; i++ {
		c.Set(fmt.Sprintf("k%d", i), i)
	}
	c.SetWithTTL("keep", 9, time.Hour)

	*now = now.Add(5 * time.Minute)
	c.cleanup()

	stats := c.GetStats()
	if stats.TotalKeys != 1 || stats.Evictions != 5 {
		t.Errorf("stats = %+v, want 1 key 5 evictions", &stats)
	}
	if !stats.LastCleanup.Equal(*now) {
		t.Errorf("LastCleanup = %v, want %v", stats.LastCleanup, *now)
	}
}

func TestCacheGetOrLoad(t *testing.T) {
	c, _ := newTestCache[string](t, time.Minute, 0)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (string, error) {
		calls++
		return "loaded", nil
	}

	v, cached, err := c.GetOrLoad(ctx, "k", load)
	if err != nil || v != "loaded" || cached {
		t.Fatalf("first GetOrLoad = %q, %v, %v", v, cached, err)
	}
	v, cached, err = c.GetOrLoad(ctx, "k", load)
	if err != nil || v != "loaded" || !cached {
		t.Fatalf("second GetOrLoad = %q, %v, %v", v, cached, err)
	}
	if calls != 1 {
		t.Errorf("load called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	_, _, err = c.GetOrLoad(ctx, "bad", func(context.Context) (string, error) { return "", boom })
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("errors must not be cached")
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New[int]("concurrent", time.Minute, 100)
	defer c.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", (g*200+i)%150)
				c.Set(key, i)
				c.Get(key)
				if i%50 == 0 {
					c.DeletePrefix("k1")
				}
			}
		}(g)
	}
	wg.Wait()

	if c.Len() > 100 {
		t.Errorf("Len() = %d exceeds max entries", c.Len())
	}
}

func TestCacheCloseIdempotent(t *testing.T) {
	c := New[int]("close", time.Minute, 0)
	c.Close()
	c.Close()
	c.Set("still", 1)
	if _, ok := c.Get("still"); !ok {
		t.Error("cache should remain usable after Close")
	}
}

func TestGenerateKey(t *testing.T) {
	a := GenerateKey("dash", map[string]string{"tenant": "t1"})
	b := GenerateKey("dash", map[string]string{"tenant": "t1"})
	c := GenerateKey("dash", map[string]string{"tenant": "t2"})
	if a != b {
		t.Error("same params produced different keys")
	}
	if a == c {
		t.Error("different params produced the same key")
	}
	if len(a) != len("dash:")+32 {
		t.Errorf("unexpected key %q", a)
	}
}

func TestCleanupInterval(t *testing.T) {
	cases := map[time.Duration]time.Duration{
		time.Second:      time.Minute,
		2 * time.Minute:  2 * time.Minute,
		30 * time.Minute: 5 * time.Minute,
	}
	for ttl, want := range cases {
		if got := cleanupInterval(ttl); got != want {
			t.Errorf("cleanupInterval(%v) = %v, want %v", ttl, got, want)
		}
	}
}

func TestCacheGetOrLoadInvalidatedDuringLoad(t *testing.T) {
	tests := []struct {
		name       string
		invalidate func(c *Cache[string])
	}{
		{"delete", func(c *Cache[string]) { c.Delete("youth:1") }},
		{"delete prefix", func(c *Cache[string]) { c.DeletePrefix("youth:") }},
		{"clear", func(c *Cache[string]) { c.Clear() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCache[string](t, time.Minute, 0)
			ctx := context.Background()

			v, cached, err := c.GetOrLoad(ctx, "youth:1", func(context.Context) (string, error) {
				tt.invalidate(c)
				return "stale", nil
			})
			if err != nil || v != "stale" || cached {
				t.Fatalf("GetOrLoad = %q, %v, %v", v, cached, err)
			}
			if got, ok := c.Get("youth:1"); ok {
				t.Fatalf("stale value %q cached after invalidation", got)
			}

			// The next load runs undisturbed and is cached again.
			if _, _, err := c.GetOrLoad(ctx, "youth:1", func(context.Context) (string, error) { return "fresh", nil }); err != nil {
				t.Fatal(err)
			}
			if got, ok := c.Get("youth:1"); !ok || got != "fresh" {
				t.Errorf("Get = %q, %v, want fresh", got, ok)
			}
		})
	}
}

func TestCacheDeleteOtherKeyDuringLoad(t *testing.T) {
	c, _ := newTestCache[string](t, time.Minute, 0)

	_, _, err := c.GetOrLoad(context.Background(), "a", func(context.Context) (string, error) {
		c.Delete("b")
		return "value", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := c.Get("a"); !ok || got != "value" {
		t.Errorf("Get(a) = %q, %v; deleting another key must not discard the load", got, ok)
	}
}
