// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateAPI,
		c.validateSecurity,
		c.validateLogging,
		c.validateRecommend,
		c.validateNotify,
		c.validateUploads,
		c.validateEvents,
		c.validateImporter,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.PublicURL != "" {
		if err := validateBaseURL(c.Server.PublicURL); err != nil {
			return fmt.Errorf("PUBLIC_URL is invalid: %w", err)
		}
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE must be >= API_DEFAULT_PAGE_SIZE")
	}
	return nil
}

// validateSecurity validates authentication, session and CORS settings.
func (c *Config) validateSecurity() error {
	if err := c.validateJWTSecret(); err != nil {
		return err
	}
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	switch c.Security.SessionStore {
	case "memory":
	case "badger":
		if c.Security.SessionStorePath == "" {
			return fmt.Errorf("SESSION_STORE_PATH is required when SESSION_STORE=badger")
		}
	default:
		return fmt.Errorf("SESSION_STORE must be one of: memory, badger")
	}
	if c.Security.AdminPassword != "" && containsPlaceholder(c.Security.AdminPassword) {
		return fmt.Errorf("ADMIN_PASSWORD contains a placeholder value - set a secure password")
	}
	if c.Security.Lockout.Enabled {
		if c.Security.Lockout.MaxAttempts < 1 {
			return fmt.Errorf("LOCKOUT_MAX_ATTEMPTS must be at least 1")
		}
		if c.Security.Lockout.Duration <= 0 {
			return fmt.Errorf("LOCKOUT_DURATION must be positive")
		}
	}
	if err := c.validateCORS(); err != nil {
		return err
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	return c.validateOIDC()
}

func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// validateCORS rejects wildcard origins in production, where
// credentials are sent with every request.
func (c *Config) validateCORS() error {
	if c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production. " +
			"Set specific origins: CORS_ORIGINS=https://yourdomain.com")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if CORS configuration has security concerns
// that should be logged at startup
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.hasWildcardCORS()
}

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) validateOIDC() error {
	o := c.Security.OIDC
	if !o.Enabled {
		return nil
	}
	if o.IssuerURL == "" {
		return fmt.Errorf("OIDC_ISSUER_URL is required when OIDC_ENABLED=true")
	}
	if err := validateHTTPURL(o.IssuerURL); err != nil {
		return fmt.Errorf("OIDC_ISSUER_URL is invalid: %w", err)
	}
	if o.ClientID == "" {
		return fmt.Errorf("OIDC_CLIENT_ID is required when OIDC_ENABLED=true")
	}
	if o.RedirectURL == "" {
		return fmt.Errorf("OIDC_REDIRECT_URL is required when OIDC_ENABLED=true")
	}
	if err := validateHTTPURL(o.RedirectURL); err != nil {
		return fmt.Errorf("OIDC_REDIRECT_URL is invalid: %w", err)
	}
	if o.TenantID == "" {
		return fmt.Errorf("OIDC_TENANT_ID is required when OIDC_ENABLED=true")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateRecommend checks scorer weights and multipliers. Weights are
// relative, so only their sign and sum matter.
func (c *Config) validateRecommend() error {
	r := c.Recommend
	w := r.Weights
	weights := map[string]float64{
		"skills":     w.Skills,
		"location":   w.Location,
		"experience": w.Experience,
		"education":  w.Education,
		"job_type":   w.JobType,
		"salary":     w.Salary,
		"recency":    w.Recency,
	}
	var sum float64
	for name, v := range weights {
		if v < 0 {
			return fmt.Errorf("recommend weight %q must not be negative", name)
		}
		sum += v
	}
	if sum <= 0 {
		return fmt.Errorf("recommend weights must have a positive sum")
	}
	if r.MissingRequiredPenalty <= 0 || r.MissingRequiredPenalty > 1 {
		return fmt.Errorf("RECOMMEND_MISSING_PENALTY must be in (0, 1]")
	}
	if r.FullMatchBonus < 1 {
		return fmt.Errorf("RECOMMEND_FULL_MATCH_BONUS must be >= 1")
	}
	if r.RecencyWindow <= 0 {
		return fmt.Errorf("RECOMMEND_RECENCY_WINDOW must be positive")
	}
	if r.DefaultLimit < 1 || r.MaxLimit < r.DefaultLimit {
		return fmt.Errorf("recommend limits must satisfy 1 <= default_limit <= max_limit")
	}
	if r.MaxCandidates < 1 {
		return fmt.Errorf("RECOMMEND_MAX_CANDIDATES must be at least 1")
	}
	return nil
}

func (c *Config) validateNotify() error {
	n := c.Notify
	if n.SMTP.Host != "" {
		if n.SMTP.Port < 1 || n.SMTP.Port > 65535 {
			return fmt.Errorf("SMTP_PORT must be between 1 and 65535")
		}
		if n.SMTP.From == "" {
			return fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
		}
	}
	if n.Webhook.URL != "" {
		u, err := url.Parse(n.Webhook.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("NOTIFY_WEBHOOK_URL must be an absolute http(s) URL")
		}
		if c.IsProduction() && u.Scheme != "https" {
			return fmt.Errorf("NOTIFY_WEBHOOK_URL must use https in production")
		}
	}
	if n.MaxRetries < 0 {
		return fmt.Errorf("NOTIFY_MAX_RETRIES must not be negative")
	}
	if n.Parallelism < 1 {
		return fmt.Errorf("NOTIFY_PARALLELISM must be at least 1")
	}
	if n.Digest.Enabled {
		if n.Digest.Interval < time.Minute {
			return fmt.Errorf("DIGEST_INTERVAL must be at least 1m")
		}
		if n.Digest.Hour < -1 || n.Digest.Hour > 23 {
			return fmt.Errorf("DIGEST_HOUR must be between 0 and 23, or -1")
		}
		if n.Digest.MinScore < 0 || n.Digest.MinScore > 100 {
			return fmt.Errorf("DIGEST_MIN_SCORE must be between 0 and 100")
		}
		if n.Digest.MaxJobs < 1 {
			return fmt.Errorf("DIGEST_MAX_JOBS must be at least 1")
		}
	}
	return nil
}

func (c *Config) validateUploads() error {
	u := c.Uploads
	if u.MaxSizeBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE must be positive")
	}
	switch u.Backend {
	case "local":
		if u.Dir == "" {
			return fmt.Errorf("UPLOAD_DIR is required when UPLOAD_BACKEND=local")
		}
	case "http":
		if u.UpstreamURL == "" {
			return fmt.Errorf("UPLOAD_UPSTREAM_URL is required when UPLOAD_BACKEND=http")
		}
		if err := validateBaseURL(u.UpstreamURL); err != nil {
			return fmt.Errorf("UPLOAD_UPSTREAM_URL is invalid: %w", err)
		}
		if u.RatePerSec <= 0 || u.Burst < 1 {
			return fmt.Errorf("upload rate limit must be positive")
		}
	default:
		return fmt.Errorf("UPLOAD_BACKEND must be one of: local, http")
	}
	return nil
}

func (c *Config) validateEvents() error {
	e := c.Events
	switch e.Transport {
	case "memory":
		return nil
	case "nats":
	default:
		return fmt.Errorf("EVENTS_TRANSPORT must be one of: memory, nats")
	}
	if !e.EmbeddedServer && e.NATSURL == "" {
		return fmt.Errorf("NATS_URL is required when EVENTS_TRANSPORT=nats without an embedded server")
	}
	if e.NATSURL != "" {
		u, err := url.Parse(e.NATSURL)
		if err != nil || (u.Scheme != "nats" && u.Scheme != "tls") {
			return fmt.Errorf("NATS_URL must use nats:// or tls:// scheme")
		}
	}
	if e.EmbeddedServer && e.StoreDir == "" {
		return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
	}
	if e.StreamName == "" {
		return fmt.Errorf("events stream_name is required")
	}
	return nil
}

func (c *Config) validateImporter() error {
	if c.Importer.BatchSize < 1 || c.Importer.BatchSize > 10000 {
		return fmt.Errorf("IMPORT_BATCH_SIZE must be between 1 and 10000")
	}
	return nil
}

// validateHTTPURL validates an absolute http(s) URL. Paths are allowed.
func validateHTTPURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

// validateBaseURL is validateHTTPURL without query or fragment.
func validateBaseURL(rawURL string) error {
	if err := validateHTTPURL(rawURL); err != nil {
		return err
	}
	u, _ := url.Parse(rawURL)
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("query and fragment are not allowed")
	}
	return nil
}

// placeholderPatterns indicate a value copied from an example file.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
	"TODO",
	"FIXME",
	"XXX",
	"EXAMPLE",
}

func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}
