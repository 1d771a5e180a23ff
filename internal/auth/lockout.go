// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
)

// ErrAccountLocked is returned when authentication is blocked due to lockout.
var ErrAccountLocked = errors.New("account temporarily locked due to too many failed attempts")

// ErrLockoutNotFound is returned when a lockout entry doesn't exist.
var ErrLockoutNotFound = errors.New("lockout entry not found")

// LockoutConfig holds configuration for the account lockout system.
type LockoutConfig struct {
	// MaxAttempts is the number of consecutive failures before lockout.
	MaxAttempts int

	// LockoutDuration is how long the account stays locked.
	LockoutDuration time.Duration

	// Enabled controls whether lockout is active.
	Enabled bool
}

// DefaultLockoutConfig returns 5 attempts / 15 minutes.
func DefaultLockoutConfig() LockoutConfig {
	return LockoutConfig{
		MaxAttempts:     5,
		LockoutDuration: 15 * time.Minute,
		Enabled:         true,
	}
}

// LockoutEntry tracks failed login attempts for one email.
type LockoutEntry struct {
	Subject        string    `json:"subject"`
	FailedAttempts int       `json:"failed_attempts"`
	LastAttempt    time.Time `json:"last_attempt"`
	LockedUntil    time.Time `json:"locked_until"`
	LastFailedIP   string    `json:"last_failed_ip,omitempty"`
}

// IsLocked returns true if the entry is currently locked out.
func (e *LockoutEntry) IsLocked(now time.Time) bool {
	return now.Before(e.LockedUntil)
}

// LockoutStore defines the interface for lockout state persistence.
type LockoutStore interface {
	GetEntry(ctx context.Context, subject string) (*LockoutEntry, error)
	SaveEntry(ctx context.Context, entry *LockoutEntry) error
	DeleteEntry(ctx context.Context, subject string) error
	// CleanupExpired removes unlocked entries idle since before cutoff.
	CleanupExpired(ctx context.Context, cutoff time.Time) (int, error)
}

// LockoutManager counts consecutive failures per subject and locks the
// subject out once MaxAttempts is reached.
type LockoutManager struct {
	config LockoutConfig
	store  LockoutStore
	now    func() time.Time

	mu        sync.RWMutex
	onLockout func(entry LockoutEntry)

	subjects subjectLocks
}

// subjectLocks serializes the read-modify-write cycle of each subject's
// entry. Locks are dropped once no caller holds or waits for them.
type subjectLocks struct {
	mu    sync.Mutex
	locks map[string]*subjectLock
}

type subjectLock struct {
	mu   sync.Mutex
	refs int
}

func (l *subjectLocks) lock(subject string) (unlock func()) {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*subjectLock)
	}
	sl, ok := l.locks[subject]
	if !ok {
		sl = &subjectLock{}
		l.locks[subject] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()
		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, subject)
		}
		l.mu.Unlock()
	}
}

func (l *subjectLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// NewLockoutManager creates a new lockout manager.
func NewLockoutManager(store LockoutStore, config LockoutConfig) *LockoutManager {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = DefaultLockoutConfig().MaxAttempts
	}
	if config.LockoutDuration <= 0 {
		config.LockoutDuration = DefaultLockoutConfig().LockoutDuration
	}
	return &LockoutManager{
		config: config,
		store:  store,
		now:    time.Now,
	}
}

// SetOnLockout sets a callback run synchronously when a subject is locked.
func (m *LockoutManager) SetOnLockout(fn func(entry LockoutEntry)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onLockout = fn
}

// CheckLocked reports whether subject is locked and for how much longer.
func (m *LockoutManager) CheckLocked(ctx context.Context, subject string) (bool, time.Duration, error) {
	if !m.config.Enabled {
		return false, 0, nil
	}
	entry, err := m.store.GetEntry(ctx, subject)
	if errors.Is(err, ErrLockoutNotFound) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("check lockout: %w", err)
	}
	now := m.now()
	if !entry.IsLocked(now) {
		return false, 0, nil
	}
	return true, entry.LockedUntil.Sub(now), nil
}

// RecordFailedAttempt counts a failure and reports whether subject is now
// locked. Concurrent failures for one subject are applied one at a time.
func (m *LockoutManager) RecordFailedAttempt(ctx context.Context, subject, ip string) (bool, time.Duration, error) {
	if !m.config.Enabled {
		return false, 0, nil
	}

	unlock := m.subjects.lock(subject)
	locked, remaining, entry, err := m.recordFailure(ctx, subject, ip)
	unlock()
	if err != nil || entry == nil {
		return locked, remaining, err
	}

	metrics.AuthLockouts.Inc()
	logging.Warn().
		Str("subject", subject).
		Str("ip", ip).
		Dur("duration", m.config.LockoutDuration).
		Msg("Account locked")

	m.mu.RLock()
	onLockout := m.onLockout
	m.mu.RUnlock()
	if onLockout != nil {
		onLockout(*entry)
	}

	return true, m.config.LockoutDuration, nil
}

// recordFailure updates the stored entry. It returns the entry only when
// this failure caused the lockout.
func (m *LockoutManager) recordFailure(ctx context.Context, subject, ip string) (bool, time.Duration, *LockoutEntry, error) {
	entry, err := m.store.GetEntry(ctx, subject)
	if err != nil && !errors.Is(err, ErrLockoutNotFound) {
		return false, 0, nil, fmt.Errorf("get entry: %w", err)
	}
	if entry == nil {
		entry = &LockoutEntry{Subject: subject}
	}

	now := m.now()
	if entry.IsLocked(now) {
		return true, entry.LockedUntil.Sub(now), nil, nil
	}

	entry.FailedAttempts++
	entry.LastAttempt = now
	entry.LastFailedIP = ip

	if entry.FailedAttempts < m.config.MaxAttempts {
		if err := m.store.SaveEntry(ctx, entry); err != nil {
			return false, 0, nil, fmt.Errorf("save entry: %w", err)
		}
		return false, 0, nil, nil
	}

	entry.LockedUntil = now.Add(m.config.LockoutDuration)
	entry.FailedAttempts = 0
	if err := m.store.SaveEntry(ctx, entry); err != nil {
		return false, 0, nil, fmt.Errorf("save locked entry: %w", err)
	}
	return true, m.config.LockoutDuration, entry, nil
}

// RecordSuccessfulLogin clears the failure count for subject.
func (m *LockoutManager) RecordSuccessfulLogin(ctx context.Context, subject string) error {
	if !m.config.Enabled {
		return nil
	}
	unlock := m.subjects.lock(subject)
	defer unlock()
	if err := m.store.DeleteEntry(ctx, subject); err != nil && !errors.Is(err, ErrLockoutNotFound) {
		return fmt.Errorf("clear lockout: %w", err)
	}
	return nil
}

// Cleanup drops stale unlocked entries. It is run by the session janitor.
func (m *LockoutManager) Cleanup(ctx context.Context) (int, error) {
	return m.store.CleanupExpired(ctx, m.now().Add(-m.config.LockoutDuration))
}

// MemoryLockoutStore implements LockoutStore using in-memory storage.
type MemoryLockoutStore struct {
	mu      sync.RWMutex
	entries map[string]*LockoutEntry
}

// NewMemoryLockoutStore creates a new in-memory lockout store.
func NewMemoryLockoutStore() *MemoryLockoutStore {
	return &MemoryLockoutStore{
		entries: make(map[string]*LockoutEntry),
	}
}

func (s *MemoryLockoutStore) GetEntry(ctx context.Context, subject string) (*LockoutEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[subject]
	if !ok {
		return nil, ErrLockoutNotFound
	}
	out := *entry
	return &out, nil
}

func (s *MemoryLockoutStore) SaveEntry(ctx context.Context, entry *LockoutEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *entry
	s.entries[entry.Subject] = &stored
	return nil
}

func (s *MemoryLockoutStore) DeleteEntry(ctx context.Context, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[subject]; !ok {
		return ErrLockoutNotFound
	}
	delete(s.entries, subject)
	return nil
}

func (s *MemoryLockoutStore) CleanupExpired(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	count := 0
	for subject, entry := range s.entries {
		if !entry.IsLocked(now) && entry.LastAttempt.Before(cutoff) {
			delete(s.entries, subject)
			count++
		}
	}
	return count, nil
}
