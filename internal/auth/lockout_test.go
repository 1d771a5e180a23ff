// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLockoutManager_LocksAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewLockoutManager(NewMemoryLockoutStore(), DefaultLockoutConfig())
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	var fired []LockoutEntry
	m.SetOnLockout(func(e LockoutEntry) { fired = append(fired, e) })

	for i := 1; i <= 4; i++ {
		locked, _, err := m.RecordFailedAttempt(ctx, "a@example.com", "10.0.0.1")
		if err != nil {
			t.Fatal(err)
		}
		if locked {
			t.Fatalf("locked after %d attempts, want 5", i)
		}
	}
	locked, remaining, err := m.RecordFailedAttempt(ctx, "a@example.com", "10.0.0.1")
	if err != nil || !locked {
		t.Fatalf("fifth attempt: locked=%v err=%v", locked, err)
	}
	if remaining != 15*time.Minute {
		t.Errorf("remaining = %v, want 15m", remaining)
	}
	if len(fired) != 1 || fired[0].Subject != "a@example.com" {
		t.Errorf("onLockout fired %v", fired)
	}

	locked, _, _ = m.CheckLocked(ctx, "a@example.com")
	if !locked {
		t.Error("CheckLocked() = false during lockout")
	}
	if other, _, _ := m.CheckLocked(ctx, "b@example.com"); other {
		t.Error("unrelated email is locked")
	}

	now = now.Add(16 * time.Minute)
	if locked, _, _ := m.CheckLocked(ctx, "a@example.com"); locked {
		t.Error("still locked after the lockout duration")
	}
}

// slowLockoutStore widens the gap between reading and saving an entry.
type slowLockoutStore struct {
	*MemoryLockoutStore
}

func (s slowLockoutStore) GetEntry(ctx context.Context, subject string) (*LockoutEntry, error) {
	e, err := s.MemoryLockoutStore.GetEntry(ctx, subject)
	time.Sleep(time.Millisecond)
	return e, err
}

func TestLockoutManager_ConcurrentFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		maxAttempts int
		workers     int
		wantCount   int
		wantLocked  int32
		wantFired   int32
	}{
		{"every failure counted", 100, 40, 40, 0, 0},
		{"locks exactly once", 5, 20, 0, 16, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store := slowLockoutStore{NewMemoryLockoutStore()}
			m := NewLockoutManager(store, LockoutConfig{MaxAttempts: tt.maxAttempts, LockoutDuration: time.Minute, Enabled: true})

			var fired, locked atomic.Int32
			m.SetOnLockout(func(LockoutEntry) { fired.Add(1) })

			var wg sync.WaitGroup
			for i := 0; i < tt.workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					l, _, err := m.RecordFailedAttempt(ctx, "a@example.com", "10.0.0.1")
					if err != nil {
						t.Error(err)
					}
					if l {
						locked.Add(1)
					}
				}()
			}
			wg.Wait()

			e, err := store.GetEntry(ctx, "a@example.com")
			if err != nil {
				t.Fatal(err)
			}
			if e.FailedAttempts != tt.wantCount {
				t.Errorf("FailedAttempts = %d, want %d", e.FailedAttempts, tt.wantCount)
			}
			if locked.Load() != tt.wantLocked || fired.Load() != tt.wantFired {
				t.Errorf("locked results = %d, lockouts = %d, want %d and %d",
					locked.Load(), fired.Load(), tt.wantLocked, tt.wantFired)
			}
			if n := m.subjects.len(); n != 0 {
				t.Errorf("%d subject locks left behind", n)
			}
		})
	}
}

func TestLockoutManager_SuccessResetsCount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewLockoutManager(NewMemoryLockoutStore(), DefaultLockoutConfig())

	for i := 0; i < 4; i++ {
		_, _, _ = m.RecordFailedAttempt(ctx, "a@example.com", "")
	}
	if err := m.RecordSuccessfulLogin(ctx, "a@example.com"); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		locked, _, _ := m.RecordFailedAttempt(ctx, "a@example.com", "")
		if locked {
			t.Fatalf("locked after reset and %d failures", i+1)
		}
	}
}

func TestLockoutManager_Disabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewLockoutManager(NewMemoryLockoutStore(), LockoutConfig{Enabled: false})
	for i := 0; i < 10; i++ {
		if locked, _, _ := m.RecordFailedAttempt(ctx, "a@example.com", ""); locked {
			t.Fatal("disabled manager locked an account")
		}
	}
}

func TestMemoryLockoutStore_CleanupExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryLockoutStore()
	_ = store.SaveEntry(ctx, &LockoutEntry{Subject: "stale", LastAttempt: time.Now().Add(-time.Hour)})
	_ = store.SaveEntry(ctx, &LockoutEntry{Subject: "fresh", LastAttempt: time.Now()})

	n, err := store.CleanupExpired(ctx, time.Now().Add(-30*time.Minute))
	if err != nil || n != 1 {
		t.Fatalf("CleanupExpired() = %d, %v; want 1", n, err)
	}
	if _, err := store.GetEntry(ctx, "fresh"); err != nil {
		t.Errorf("fresh entry removed: %v", err)
	}
}
