// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/launchpad/internal/models"
)

var (
	// ErrSessionNotFound is returned when a session does not exist or was revoked.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when a session exists but has expired.
	ErrSessionExpired = errors.New("session expired")
)

// Session is server-side login state. A JWT is only honoured while its
// session exists, which is what makes logout and suspension immediate.
type Session struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	Email          string      `json:"email"`
	Role           models.Role `json:"role"`
	TenantID       string      `json:"tenant_id,omitempty"`
	Provider       string      `json:"provider"`
	IPAddress      string      `json:"ip_address,omitempty"`
	UserAgent      string      `json:"user_agent,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	ExpiresAt      time.Time   `json:"expires_at"`
	LastAccessedAt time.Time   `json:"last_accessed_at"`
}

// IsExpired checks if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Subject converts the session into the request subject.
func (s *Session) Subject() *Subject {
	return &Subject{
		UserID:    s.UserID,
		Email:     s.Email,
		Role:      s.Role,
		TenantID:  s.TenantID,
		SessionID: s.ID,
		Provider:  s.Provider,
		ExpiresAt: s.ExpiresAt,
	}
}

// NewSession creates a session for user lasting duration.
func NewSession(user *models.User, provider string, duration time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		Email:          user.Email,
		Role:           user.Role,
		TenantID:       user.TenantID,
		Provider:       provider,
		CreatedAt:      now,
		ExpiresAt:      now.Add(duration),
		LastAccessedAt: now,
	}
}

// SessionStore persists sessions.
type SessionStore interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// Get returns ErrSessionNotFound or ErrSessionExpired when unusable.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByUserID revokes every session of a user and returns how many.
	DeleteByUserID(ctx context.Context, userID string) (int, error)

	// GetByUserID lists a user's unexpired sessions.
	GetByUserID(ctx context.Context, userID string) ([]*Session, error)

	// Touch records activity on a session.
	Touch(ctx context.Context, id string) error

	// CleanupExpired removes expired sessions and returns how many.
	CleanupExpired(ctx context.Context) (int, error)
}

// MemorySessionStore keeps sessions in a map. Sessions are lost on restart.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemorySessionStore creates an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*Session),
	}
}

func (s *MemorySessionStore) Create(ctx context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *session
	s.sessions[session.ID] = &stored
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	out := *session
	return &out, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemorySessionStore) DeleteByUserID(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, id)
			count++
		}
	}
	return count, nil
}

func (s *MemorySessionStore) GetByUserID(ctx context.Context, userID string) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []*Session
	for _, session := range s.sessions {
		if session.UserID == userID && !session.IsExpired() {
			out := *session
			sessions = append(sessions, &out)
		}
	}
	return sessions, nil
}

func (s *MemorySessionStore) Touch(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = time.Now()
	return nil
}

func (s *MemorySessionStore) CleanupExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for id, session := range s.sessions {
		if session.IsExpired() {
			delete(s.sessions, id)
			count++
		}
	}
	return count, nil
}
