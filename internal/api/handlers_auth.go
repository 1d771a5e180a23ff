// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/launchpad/internal/audit"
	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/models"
)

// Register creates a youth, company or institution account
//
// @Summary Register an account
// @Description Company and institution accounts also create a tenant named organization_name
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Account details"
// @Success 201 {object} models.APIResponse{data=models.User}
// @Failure 400 {object} models.APIResponse "Validation failed"
// @Failure 409 {object} models.APIResponse "Email already registered"
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	role := models.Role(req.Role)
	if role.NeedsTenant() && strings.TrimSpace(req.OrganizationName) == "" {
		respondFieldError(w, "organization_name", "organization_name is required for company and institution accounts")
		return
	}

	user, err := h.auth.Register(r.Context(), auth.RegisterInput{
		Email:            req.Email,
		Password:         req.Password,
		Name:             req.Name,
		Role:             role,
		OrganizationName: req.OrganizationName,
	})
	switch {
	case err == nil:
		respondData(w, http.StatusCreated, user)
	case errors.Is(err, auth.ErrWeakPassword):
		respondFieldError(w, "password", err.Error())
	case errors.Is(err, auth.ErrRegistrationRole):
		respondFieldError(w, "role", "role cannot self-register")
	case errors.Is(err, database.ErrConflict):
		respondError(w, http.StatusConflict, ErrCodeConflict, "email already registered", nil)
	default:
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "registration failed", err)
	}
}

// Login authenticates with email and password
//
// @Summary Log in
// @Description Returns a JWT and sets the token cookie. Accounts lock after repeated failures.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Credentials"
// @Success 200 {object} models.APIResponse{data=auth.LoginResult}
// @Failure 401 {object} models.APIResponse "Invalid credentials"
// @Failure 403 {object} models.APIResponse "Account suspended"
// @Failure 429 {object} models.APIResponse "Account locked"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	src := audit.SourceFromRequest(r)

	res, err := h.auth.Login(r.Context(), req.Email, req.Password, clientInfo(r))
	if err != nil {
		status, code, msg, reason := loginFailure(err)
		if reason == "" {
			respondError(w, status, code, msg, err)
			return
		}
		if h.audit != nil {
			h.audit.LogAuthFailure(r.Context(), database.NormalizeEmail(req.Email), src, reason)
		}
		respondError(w, status, code, msg, nil)
		return
	}

	h.setSessionCookie(w, res.Token, res.ExpiresAt)
	if h.audit != nil {
		h.audit.LogAuthSuccess(r.Context(), audit.ActorFromUser(res.User), src, auth.ProviderPassword)
	}
	respondOK(w, res)
}

// loginFailure maps a login error to a response. An empty reason means an
// internal error that is not a failed attempt.
func loginFailure(err error) (status int, code, msg, reason string) {
	switch {
	case errors.Is(err, auth.ErrAccountLocked):
		return http.StatusTooManyRequests, ErrCodeRateLimited, "account temporarily locked, try again later", "account locked"
	case errors.Is(err, auth.ErrAccountSuspended):
		return http.StatusForbidden, ErrCodeForbidden, "account suspended", "account suspended"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrCodeUnauthorized, "invalid email or password", "invalid credentials"
	default:
		return http.StatusInternalServerError, ErrCodeInternal, "login failed", ""
	}
}

// Logout revokes the caller's session
//
// @Summary Log out
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if err := h.auth.Logout(r.Context(), s.SessionID); err != nil && !errors.Is(err, auth.ErrSessionNotFound) {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "logout failed", err)
		return
	}
	h.clearSessionCookie(w)
	if h.audit != nil {
		h.audit.LogLogout(r.Context(), actorFor(s), audit.SourceFromRequest(r))
	}
	respondOK(w, map[string]bool{"logged_out": true})
}

// Me returns the caller's account
//
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.User}
// @Router /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	user, err := h.db.GetUserByID(r.Context(), s.UserID)
	if err != nil {
		respondStoreError(w, r, err, "user")
		return
	}
	respondOK(w, map[string]interface{}{
		"user":       user,
		"provider":   s.Provider,
		"expires_at": s.ExpiresAt,
	})
}

// OIDCLogin redirects to the identity provider
//
// @Summary Start SSO login
// @Tags Auth
// @Success 302 "Redirect to identity provider"
// @Failure 503 {object} models.APIResponse "SSO not enabled"
// @Router /auth/oidc/login [get]
func (h *Handler) OIDCLogin(w http.ResponseWriter, r *http.Request) {
	provider := h.auth.OIDC()
	if provider == nil {
		unavailable(w, "single sign-on")
		return
	}
	url, err := provider.AuthURL(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to start login", err)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// OIDCCallback completes SSO login
//
// @Summary SSO callback
// @Description Exchanges the authorization code. First-time users join the configured institution tenant.
// @Tags Auth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "State"
// @Success 200 {object} models.APIResponse{data=auth.LoginResult}
// @Success 302 "Redirect to the public URL"
// @Failure 400 {object} models.APIResponse "Unknown or expired state"
// @Failure 401 {object} models.APIResponse "Login rejected"
// @Router /auth/oidc/callback [get]
func (h *Handler) OIDCCallback(w http.ResponseWriter, r *http.Request) {
	provider := h.auth.OIDC()
	if provider == nil {
		unavailable(w, "single sign-on")
		return
	}
	q := r.URL.Query()
	src := audit.SourceFromRequest(r)
	if e := q.Get("error"); e != "" {
		logging.Ctx(r.Context()).Warn().Str("error", sanitizeLogValue(e)).Msg("Identity provider returned an error")
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "login was not completed", nil)
		return
	}
	if q.Get("code") == "" || q.Get("state") == "" {
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "code and state are required", nil)
		return
	}

	identity, err := provider.Exchange(r.Context(), q.Get("code"), q.Get("state"))
	if err != nil {
		if errors.Is(err, auth.ErrInvalidState) {
			respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid or expired login state", nil)
			return
		}
		if h.audit != nil {
			h.audit.LogAuthFailure(r.Context(), "", src, "oidc exchange failed")
		}
		respondError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "login rejected", err)
		return
	}

	res, created, err := h.auth.LoginWithOIDC(r.Context(), identity, clientInfo(r))
	if err != nil {
		status, code, msg, reason := loginFailure(err)
		if reason != "" && h.audit != nil {
			h.audit.LogAuthFailure(r.Context(), identity.Email, src, reason)
		}
		respondError(w, status, code, msg, err)
		return
	}
	if created {
		logging.Ctx(r.Context()).Info().Str("user_id", res.User.ID).Msg("SSO account created")
	}
	h.setSessionCookie(w, res.Token, res.ExpiresAt)
	if h.audit != nil {
		h.audit.LogAuthSuccess(r.Context(), audit.ActorFromUser(res.User), src, auth.ProviderOIDC)
	}

	if h.cfg != nil && h.cfg.Server.PublicURL != "" {
		http.Redirect(w, r, h.cfg.Server.PublicURL, http.StatusFound)
		return
	}
	respondOK(w, res)
}

func (h *Handler) secureCookies() bool {
	return h.cfg != nil && h.cfg.Server.Environment == "production"
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}
