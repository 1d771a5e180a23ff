// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
	"github.com/tomtom215/launchpad/internal/models"
)

// Providers recorded on sessions.
const (
	ProviderPassword = "password"
	ProviderOIDC     = "oidc"
)

// UserStore is the slice of the database the auth service needs.
type UserStore interface {
	CreateAccount(ctx context.Context, user *models.User, tenant *models.Tenant) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string) error
}

// ClientInfo identifies where a login came from.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// RegisterInput is a self-registration request.
type RegisterInput struct {
	Email            string
	Password         string
	Name             string
	Role             models.Role
	OrganizationName string
}

// LoginResult is returned by every successful login.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
	SessionID string       `json:"-"`
}

// Service implements registration, password and SSO login, logout and
// request authentication on top of JWTs backed by server-side sessions.
type Service struct {
	users      UserStore
	jwt        *JWTManager
	sessions   SessionStore
	lockout    *LockoutManager
	policy     PasswordPolicy
	bcryptCost int
	oidc       *OIDCProvider
}

// NewService wires the auth service. lockout may be nil to disable lockout.
func NewService(users UserStore, jwtManager *JWTManager, sessions SessionStore, lockout *LockoutManager, bcryptCost int) *Service {
	if lockout == nil {
		lockout = NewLockoutManager(NewMemoryLockoutStore(), LockoutConfig{Enabled: false})
	}
	return &Service{
		users:      users,
		jwt:        jwtManager,
		sessions:   sessions,
		lockout:    lockout,
		policy:     DefaultPasswordPolicy(),
		bcryptCost: bcryptCost,
	}
}

// SetOIDC enables single sign-on.
func (s *Service) SetOIDC(p *OIDCProvider) {
	s.oidc = p
}

// OIDC returns the SSO provider or nil when SSO is disabled.
func (s *Service) OIDC() *OIDCProvider {
	return s.oidc
}

// Lockout exposes the lockout manager for audit hooks.
func (s *Service) Lockout() *LockoutManager {
	return s.lockout
}

// HashPassword hashes with the configured cost.
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

// Register creates a youth, company or institution account. Company and
// institution accounts get a new tenant named OrganizationName. A taken
// email returns database.ErrConflict.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !in.Role.Valid() || in.Role == models.RoleSuperadmin {
		return nil, fmt.Errorf("%w: %q", ErrRegistrationRole, in.Role)
	}
	email := database.NormalizeEmail(in.Email)
	if err := s.policy.Validate(in.Password, email); err != nil {
		return nil, err
	}

	var tenant *models.Tenant
	if in.Role.NeedsTenant() {
		name := strings.TrimSpace(in.OrganizationName)
		if name == "" {
			return nil, errors.New("organization_name is required for company and institution accounts")
		}
		tenant = &models.Tenant{Name: name, Kind: in.Role.TenantKind()}
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Role:         in.Role,
		Status:       models.UserActive,
	}
	if err := s.users.CreateAccount(ctx, user, tenant); err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("Account registered")
	return user, nil
}

// Login checks email and password. Failures are counted per email; the
// account is locked after the configured number of consecutive failures.
func (s *Service) Login(ctx context.Context, email, password string, client ClientInfo) (res *LoginResult, err error) {
	defer func() { metrics.RecordAuthAttempt(ProviderPassword, err == nil) }()

	email = database.NormalizeEmail(email)

	locked, remaining, err := s.lockout.CheckLocked(ctx, email)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, fmt.Errorf("%w: retry in %s", ErrAccountLocked, remaining.Round(time.Second))
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	if user == nil {
		burnCompare(password)
		return nil, s.failLogin(ctx, email, client)
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, s.failLogin(ctx, email, client)
	}
	if !user.IsActive() {
		return nil, ErrAccountSuspended
	}

	if err := s.lockout.RecordSuccessfulLogin(ctx, email); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to clear lockout state")
	}
	return s.IssueSession(ctx, user, ProviderPassword, client)
}

func (s *Service) failLogin(ctx context.Context, email string, client ClientInfo) error {
	locked, remaining, err := s.lockout.RecordFailedAttempt(ctx, email, client.IPAddress)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to record failed login")
	}
	if locked {
		return fmt.Errorf("%w: retry in %s", ErrAccountLocked, remaining.Round(time.Second))
	}
	return ErrInvalidCredentials
}

// IssueSession creates a session for user and signs a token bound to it.
func (s *Service) IssueSession(ctx context.Context, user *models.User, provider string, client ClientInfo) (*LoginResult, error) {
	session := NewSession(user, provider, s.jwt.Timeout())
	session.IPAddress = client.IPAddress
	session.UserAgent = client.UserAgent

	token, expiresAt, err := s.jwt.GenerateToken(user, session.ID)
	if err != nil {
		return nil, err
	}
	session.ExpiresAt = expiresAt
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", user.ID).Msg("Failed to record last login")
	}
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
		SessionID: session.ID,
	}, nil
}

// LoginWithOIDC signs in the user matching identity's email. Unknown
// emails get an institution account in the provider's tenant. created
// reports whether an account was made.
func (s *Service) LoginWithOIDC(ctx context.Context, identity *OIDCIdentity, client ClientInfo) (res *LoginResult, created bool, err error) {
	defer func() { metrics.RecordAuthAttempt(ProviderOIDC, err == nil) }()

	if s.oidc == nil {
		return nil, false, errors.New("oidc is not enabled")
	}

	user, err := s.users.GetUserByEmail(ctx, identity.Email)
	switch {
	case errors.Is(err, database.ErrNotFound):
		if s.oidc.TenantID() == "" {
			return nil, false, fmt.Errorf("%w: no tenant configured for new SSO users", ErrInvalidCredentials)
		}
		name := identity.Name
		if name == "" {
			name = identity.Email
		}
		user = &models.User{
			TenantID: s.oidc.TenantID(),
			Email:    identity.Email,
			Name:     name,
			Role:     models.RoleInstitution,
			Status:   models.UserActive,
		}
		if err := s.users.CreateAccount(ctx, user, nil); err != nil {
			return nil, false, fmt.Errorf("create SSO account: %w", err)
		}
		created = true
	case err != nil:
		return nil, false, err
	}

	if !user.IsActive() {
		return nil, false, ErrAccountSuspended
	}
	res, err = s.IssueSession(ctx, user, ProviderOIDC, client)
	return res, created, err
}

// Authenticate resolves a bearer token into a subject. The token's session
// must still exist.
func (s *Service) Authenticate(ctx context.Context, token string) (*Subject, error) {
	if token == "" {
		return nil, ErrNoCredentials
	}
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) {
			return nil, ErrExpiredCredentials
		}
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, ErrInvalidCredentials
	}
	if err := s.sessions.Touch(ctx, session.ID); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("Failed to touch session")
	}
	return session.Subject(), nil
}

// Logout revokes one session.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// RevokeUser ends every session of userID, e.g. on suspension.
func (s *Service) RevokeUser(ctx context.Context, userID string) (int, error) {
	return s.sessions.DeleteByUserID(ctx, userID)
}

// Cleanup drops expired sessions and stale lockout entries.
func (s *Service) Cleanup(ctx context.Context) error {
	n, err := s.sessions.CleanupExpired(ctx)
	if err != nil {
		return fmt.Errorf("cleanup sessions: %w", err)
	}
	m, err := s.lockout.Cleanup(ctx)
	if err != nil {
		return fmt.Errorf("cleanup lockouts: %w", err)
	}
	if n+m > 0 {
		logging.Debug().Int("sessions", n).Int("lockouts", m).Msg("Auth cleanup")
	}
	return nil
}
