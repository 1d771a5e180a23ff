// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/models"
)

// CookieName is the cookie login sets alongside the JSON token.
const CookieName = "token"

// Middleware authenticates requests with the auth Service.
type Middleware struct {
	svc *Service
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(svc *Service) *Middleware {
	return &Middleware{svc: svc}
}

// TokenFromRequest returns the bearer token, falling back to the cookie.
// WebSocket clients that cannot set headers may pass ?token=.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}
	return ""
}

// Authenticate rejects requests without a valid token and stores the
// Subject in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := m.svc.Authenticate(r.Context(), TokenFromRequest(r))
		if err != nil {
			msg := "authentication required"
			switch {
			case errors.Is(err, ErrExpiredCredentials):
				msg = "session expired"
			case errors.Is(err, ErrInvalidCredentials):
				msg = "invalid token"
			case !errors.Is(err, ErrNoCredentials):
				logging.Ctx(r.Context()).Error().Err(err).Msg("Authentication error")
			}
			WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", msg)
			return
		}
		ctx := WithSubject(r.Context(), subject)
		ctx = logging.ContextWithUserID(ctx, subject.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Optional attaches a Subject when a valid token is present and otherwise
// lets the request through anonymously.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token != "" {
			if subject, err := m.svc.Authenticate(r.Context(), token); err == nil {
				r = r.WithContext(WithSubject(r.Context(), subject))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole allows only subjects holding one of roles. It must run after
// Authenticate.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := SubjectFromContext(r.Context())
			if subject == nil {
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}
			if !subject.Is(roles...) {
				WriteError(w, http.StatusForbidden, "FORBIDDEN", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError writes the standard error envelope. Middleware that runs before
// the API handlers uses it.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error:    &models.APIError{Code: code, Message: message},
	})
}
