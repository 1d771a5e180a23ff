// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
)

// ErrInvalidState is returned when a callback's state is unknown, expired or reused.
var ErrInvalidState = errors.New("invalid or expired OIDC state")

// oidcStateTTL bounds how long a user may take at the identity provider.
const oidcStateTTL = 10 * time.Minute

// OIDCIdentity is what the identity provider told us about the user.
type OIDCIdentity struct {
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
}

// OIDCProvider runs the authorization code flow against one issuer using
// the certified zitadel relying party.
type OIDCProvider struct {
	rp       rp.RelyingParty
	pkce     bool
	tenantID string
	states   *oidcStateStore
}

// NewOIDCProvider performs discovery against cfg.IssuerURL. ctx bounds the
// discovery request only.
func NewOIDCProvider(ctx context.Context, cfg config.OIDCConfig) (*OIDCProvider, error) {
	if cfg.IssuerURL == "" || cfg.ClientID == "" || cfg.RedirectURL == "" {
		return nil, errors.New("oidc: issuer_url, client_id and redirect_url are required")
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, oidc.ScopeProfile, oidc.ScopeEmail}
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx,
		cfg.IssuerURL,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.RedirectURL,
		scopes,
		rp.WithHTTPClient(&http.Client{Timeout: 15 * time.Second}),
	)
	if err != nil {
		return nil, fmt.Errorf("create relying party: %w", err)
	}

	return &OIDCProvider{
		rp:       relyingParty,
		pkce:     cfg.PKCEEnabled,
		tenantID: cfg.TenantID,
		states:   newOIDCStateStore(oidcStateTTL),
	}, nil
}

// TenantID is the institution tenant first-time SSO users join.
func (p *OIDCProvider) TenantID() string {
	return p.tenantID
}

// AuthURL starts a login and returns the provider URL to redirect to.
func (p *OIDCProvider) AuthURL(ctx context.Context) (string, error) {
	state, err := generateSecureRandom(32)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}

	var opts []rp.AuthURLOpt
	var verifier string
	if p.pkce {
		verifier, err = generateSecureRandom(32)
		if err != nil {
			return "", fmt.Errorf("generate code verifier: %w", err)
		}
		opts = append(opts, rp.WithCodeChallenge(oidc.NewSHACodeChallenge(verifier)))
	}

	p.states.put(state, verifier)
	return rp.AuthURL(state, p.rp, opts...), nil
}

// Exchange validates state, swaps code for tokens and returns the identity
// from the verified ID token.
func (p *OIDCProvider) Exchange(ctx context.Context, code, state string) (*OIDCIdentity, error) {
	verifier, ok := p.states.take(state)
	if !ok {
		return nil, ErrInvalidState
	}

	var opts []rp.CodeExchangeOpt
	if verifier != "" {
		opts = append(opts, rp.WithCodeVerifier(verifier))
	}

	tokens, err := rp.CodeExchange[*oidc.IDTokenClaims](ctx, code, p.rp, opts...)
	if err != nil {
		logging.Error().Err(err).Msg("OIDC token exchange failed")
		return nil, fmt.Errorf("%w: token exchange: %v", ErrInvalidCredentials, err)
	}
	if tokens.IDTokenClaims == nil {
		return nil, fmt.Errorf("%w: no ID token", ErrInvalidCredentials)
	}

	claims := tokens.IDTokenClaims
	identity := &OIDCIdentity{
		Subject:       claims.Subject,
		Email:         strings.ToLower(strings.TrimSpace(claims.Email)),
		Name:          claims.Name,
		EmailVerified: bool(claims.EmailVerified),
	}
	if identity.Email == "" {
		return nil, fmt.Errorf("%w: ID token has no email claim", ErrInvalidCredentials)
	}
	if identity.Name == "" {
		identity.Name = claims.PreferredUsername
	}
	return identity, nil
}

func generateSecureRandom(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// oidcStateStore holds single-use login states and their PKCE verifiers.
type oidcStateStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]oidcState
}

type oidcState struct {
	verifier  string
	expiresAt time.Time
}

func newOIDCStateStore(ttl time.Duration) *oidcStateStore {
	return &oidcStateStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]oidcState),
	}
}

func (s *oidcStateStore) put(state, verifier string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, v := range s.entries {
		if now.After(v.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[state] = oidcState{verifier: verifier, expiresAt: now.Add(s.ttl)}
}

// take returns the verifier for state and forgets it.
func (s *oidcStateStore) take(state string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[state]
	if !ok {
		return "", false
	}
	delete(s.entries, state)
	if s.now().After(entry.expiresAt) {
		return "", false
	}
	return entry.verifier, true
}
