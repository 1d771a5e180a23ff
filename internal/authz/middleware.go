// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package authz

import (
	"net/http"

	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/logging"
)

// DenyFunc observes requests rejected by the enforcer.
type DenyFunc func(r *http.Request, subject *auth.Subject, action string)

// Middleware authorizes requests using the subject's role.
type Middleware struct {
	enforcer *Enforcer
	onDeny   DenyFunc
}

// NewMiddleware creates a new authorization middleware.
func NewMiddleware(enforcer *Enforcer) *Middleware {
	return &Middleware{enforcer: enforcer}
}

// OnDeny registers a hook called for every denied request. The audit trail
// uses it to record authz.denied events.
func (m *Middleware) OnDeny(fn DenyFunc) {
	m.onDeny = fn
}

// AuthorizeRequest maps the HTTP method to an action and checks it
// against the request path. It must run after auth.Middleware.Authenticate.
func (m *Middleware) AuthorizeRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject := auth.SubjectFromContext(r.Context())
		if subject == nil {
			auth.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}

		action := methodToAction(r.Method)
		allowed, err := m.enforcer.Enforce(string(subject.Role), r.URL.Path, action)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization error")
			auth.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "authorization failed")
			return
		}
		if !allowed {
			logging.Ctx(r.Context()).Debug().
				Str("role", string(subject.Role)).
				Str("path", r.URL.Path).
				Str("action", action).
				Msg("Access denied")
			if m.onDeny != nil {
				m.onDeny(r, subject, action)
			}
			auth.WriteError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// methodToAction maps HTTP methods to Casbin actions.
func methodToAction(method string) string {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return ActionWrite
	case http.MethodDelete:
		return ActionDelete
	default:
		return ActionRead
	}
}
