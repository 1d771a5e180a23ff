// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/launchpad/internal/audit"
	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/logging"
)

// demoPassword is shared by every seeded demo account.
const demoPassword = "launchpad-demo-2026"

const oidcDiscoveryTimeout = 15 * time.Second

// AuthComponents holds the authentication stack and the resources it owns.
type AuthComponents struct {
	service  *auth.Service
	sessions *auth.SessionStoreFactory
}

// Close releases the session store.
func (c *AuthComponents) Close() {
	if c == nil || c.sessions == nil {
		return
	}
	closeQuietly("session store", c.sessions.Close)
}

// initAuth builds the JWT manager, session store, lockout manager and the
// optional OIDC provider. Lockouts are recorded in the audit trail.
func initAuth(ctx context.Context, cfg *config.Config, db *database.DB, auditLogger *audit.Logger) (*AuthComponents, error) {
	jwtManager, err := auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.SessionTimeout)
	if err != nil {
		return nil, fmt.Errorf("create JWT manager: %w", err)
	}

	factory, err := auth.NewSessionStoreFactory(auth.SessionStoreType(cfg.Security.SessionStore), cfg.Security.SessionStorePath)
	if err != nil {
		return nil, fmt.Errorf("create session store: %w", err)
	}
	components := &AuthComponents{sessions: factory}

	var lockout *auth.LockoutManager
	if cfg.Security.Lockout.Enabled {
		lockout = auth.NewLockoutManager(auth.NewMemoryLockoutStore(), auth.LockoutConfig{
			Enabled:         true,
			MaxAttempts:     cfg.Security.Lockout.MaxAttempts,
			LockoutDuration: cfg.Security.Lockout.Duration,
		})
		lockout.SetOnLockout(func(entry auth.LockoutEntry) {
			auditLogger.LogAuthLockout(context.Background(), entry.Subject,
				audit.Source{IPAddress: entry.LastFailedIP},
				entry.LockedUntil.Sub(entry.LastAttempt), entry.FailedAttempts)
		})
	}

	components.service = auth.NewService(db, jwtManager, factory.CreateStore(), lockout, cfg.Security.BcryptCost)

	if cfg.Security.OIDC.Enabled {
		discoverCtx, cancel := context.WithTimeout(ctx, oidcDiscoveryTimeout)
		provider, err := auth.NewOIDCProvider(discoverCtx, cfg.Security.OIDC)
		cancel()
		if err != nil {
			components.Close()
			return nil, fmt.Errorf("initialize OIDC provider: %w", err)
		}
		components.service.SetOIDC(provider)
		logging.Info().Str("issuer", cfg.Security.OIDC.IssuerURL).Msg("OIDC login enabled")
	}

	logging.Info().
		Str("session_store", cfg.Security.SessionStore).
		Bool("lockout", lockout != nil).
		Dur("session_timeout", cfg.Security.SessionTimeout).
		Msg("Authentication initialized")
	return components, nil
}

// ensureSuperadmin creates the platform superadmin from ADMIN_EMAIL and
// ADMIN_PASSWORD when no account with that email exists yet. An existing
// account is left untouched.
func ensureSuperadmin(ctx context.Context, cfg *config.Config, db *database.DB) error {
	email := database.NormalizeEmail(cfg.Security.AdminEmail)
	if email == "" || cfg.Security.AdminPassword == "" {
		return nil
	}
	if _, err := db.GetUserByEmail(ctx, email); err == nil {
		return nil
	}

	hash, err := auth.HashPassword(cfg.Security.AdminPassword, cfg.Security.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash superadmin password: %w", err)
	}
	if _, err := db.EnsureSuperadmin(ctx, email, hash); err != nil {
		return fmt.Errorf("create superadmin: %w", err)
	}
	return nil
}
