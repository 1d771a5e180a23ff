// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package auth provides authentication for the Launchpad API.

Key Components:

  - Service: registration, password login, SSO login, logout, token
    authentication and session revocation
  - JWTManager: HS256 token generation and validation
  - SessionStore: server-side sessions (memory or BadgerDB). A token is only
    accepted while the session named by its jti exists, so logout and
    account suspension take effect immediately.
  - LockoutManager: locks an email after consecutive failed logins
    (default 5 failures, 15 minutes)
  - PasswordPolicy: 8..128 characters, common password and email checks;
    hashes with bcrypt
  - OIDCProvider: authorization code flow (with optional PKCE) via the
    zitadel relying party, for institution single sign-on
  - Middleware: Authenticate, Optional and RequireRole HTTP middleware

Tokens are read from the Authorization header ("Bearer <jwt>") or from the
"token" cookie set at login.

Usage:

	jwtManager, _ := auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.SessionTimeout)
	svc := auth.NewService(db, jwtManager, sessions, lockout, cfg.Security.BcryptCost)
	mw := auth.NewMiddleware(svc)

	r.Group(func(r chi.Router) {
	    r.Use(mw.Authenticate)
	    r.With(auth.RequireRole(models.RoleYouth)).Get("/api/v1/profile", h.GetProfile)
	})

The authenticated caller is available to handlers via SubjectFromContext.
Role-to-route permissions are enforced separately by package authz.
*/
package auth
