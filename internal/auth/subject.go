// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/launchpad/internal/models"
)

// Standard authentication errors
var (
	// ErrNoCredentials indicates no credentials were provided.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates credentials were invalid.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates credentials have expired.
	ErrExpiredCredentials = errors.New("credentials expired")

	// ErrAccountSuspended is returned for logins by suspended users.
	ErrAccountSuspended = errors.New("account suspended")

	// ErrRegistrationRole is returned when self-registering as superadmin.
	ErrRegistrationRole = errors.New("role cannot self-register")
)

// Subject is the authenticated caller attached to a request context.
type Subject struct {
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	TenantID  string      `json:"tenant_id,omitempty"`
	SessionID string      `json:"session_id"`
	Provider  string      `json:"provider"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Is reports whether the subject has one of roles.
func (s *Subject) Is(roles ...models.Role) bool {
	if s == nil {
		return false
	}
	for _, r := range roles {
		if s.Role == r {
			return true
		}
	}
	return false
}

// IsSuperadmin is shorthand for Is(models.RoleSuperadmin).
func (s *Subject) IsSuperadmin() bool {
	return s.Is(models.RoleSuperadmin)
}

// CanManageTenant reports whether the subject may write data owned by tenantID.
func (s *Subject) CanManageTenant(tenantID string) bool {
	if s == nil {
		return false
	}
	if s.IsSuperadmin() {
		return true
	}
	return tenantID != "" && s.TenantID == tenantID
}

type subjectKey struct{}

// WithSubject returns a context carrying s.
func WithSubject(ctx context.Context, s *Subject) context.Context {
	return context.WithValue(ctx, subjectKey{}, s)
}

// SubjectFromContext returns the subject or nil when unauthenticated.
func SubjectFromContext(ctx context.Context) *Subject {
	s, _ := ctx.Value(subjectKey{}).(*Subject)
	return s
}
