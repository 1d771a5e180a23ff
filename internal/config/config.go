// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package config loads Launchpad configuration.
//
// Loading order (later wins):
//  1. struct defaults (defaultConfig)
//  2. optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. .env file in the working directory, exported into the environment
//  4. environment variables mapped through envTransformFunc
//
// Load validates the merged result before returning it.
package config

import (
	"time"
)

// Config is the root configuration.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	Notify    NotifyConfig    `koanf:"notify"`
	Uploads   UploadsConfig   `koanf:"uploads"`
	Events    EventsConfig    `koanf:"events"`
	Audit     AuditConfig     `koanf:"audit"`
	Importer  ImporterConfig  `koanf:"importer"`
}

// DatabaseConfig configures the embedded DuckDB store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads is the DuckDB worker thread count; 0 means runtime.NumCPU().
	Threads int `koanf:"threads"`
	// SeedDemoData inserts a small demo tenant, jobs and courses on an empty database.
	SeedDemoData bool `koanf:"seed_demo_data"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
	// PublicURL is used when building links in emails and OIDC redirects.
	PublicURL string `koanf:"public_url"`
}

// APIConfig holds pagination limits.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds authentication and authorization settings.
type SecurityConfig struct {
	JWTSecret       string        `koanf:"jwt_secret"`
	SessionTimeout  time.Duration `koanf:"session_timeout"`
	BcryptCost      int           `koanf:"bcrypt_cost"`
	AdminEmail      string        `koanf:"admin_email"`
	AdminPassword   string        `koanf:"admin_password"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	// RateLimitDisabled switches off httprate limits (tests, local load runs).
	RateLimitDisabled bool     `koanf:"rate_limit_disabled"`
	CORSOrigins       []string `koanf:"cors_origins"`
	TrustedProxies    []string `koanf:"trusted_proxies"`

	// SessionStore is "memory" or "badger".
	SessionStore     string `koanf:"session_store"`
	SessionStorePath string `koanf:"session_store_path"`

	Lockout LockoutConfig `koanf:"lockout"`
	Casbin  CasbinConfig  `koanf:"casbin"`
	OIDC    OIDCConfig    `koanf:"oidc"`
}

// LockoutConfig controls account lockout after failed logins.
type LockoutConfig struct {
	Enabled     bool          `koanf:"enabled"`
	MaxAttempts int           `koanf:"max_attempts"`
	Duration    time.Duration `koanf:"duration"`
}

// CasbinConfig configures the RBAC enforcer.
type CasbinConfig struct {
	// ModelPath and PolicyPath override the embedded defaults when set.
	ModelPath    string        `koanf:"model_path"`
	PolicyPath   string        `koanf:"policy_path"`
	CacheEnabled bool          `koanf:"cache_enabled"`
	CacheTTL     time.Duration `koanf:"cache_ttl"`
}

// OIDCConfig enables single sign-on for institution staff.
type OIDCConfig struct {
	Enabled      bool     `koanf:"enabled"`
	IssuerURL    string   `koanf:"issuer_url"`
	ClientID     string   `koanf:"client_id"`
	ClientSecret string   `koanf:"client_secret"`
	RedirectURL  string   `koanf:"redirect_url"`
	Scopes       []string `koanf:"scopes"`
	PKCEEnabled  bool     `koanf:"pkce_enabled"`
	// TenantID is the institution tenant that first-time SSO users join.
	TenantID string `koanf:"tenant_id"`
}

// LoggingConfig is passed to logging.Init.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RecommendConfig tunes the job recommendation scorer.
type RecommendConfig struct {
	Weights                RecommendWeights `koanf:"weights"`
	MissingRequiredPenalty float64          `koanf:"missing_required_penalty"`
	FullMatchBonus         float64          `koanf:"full_match_bonus"`
	RecencyWindow          time.Duration    `koanf:"recency_window"`
	DefaultLimit           int              `koanf:"default_limit"`
	MaxLimit               int              `koanf:"max_limit"`
	CacheTTL               time.Duration    `koanf:"cache_ttl"`
	// MaxCandidates caps how many published jobs are scored per request.
	MaxCandidates int `koanf:"max_candidates"`
}

// RecommendWeights are relative; they are normalized at scoring time.
type RecommendWeights struct {
	Skills     float64 `koanf:"skills"`
	Location   float64 `koanf:"location"`
	Experience float64 `koanf:"experience"`
	Education  float64 `koanf:"education"`
	JobType    float64 `koanf:"job_type"`
	Salary     float64 `koanf:"salary"`
	Recency    float64 `koanf:"recency"`
}

// NotifyConfig configures notification delivery.
type NotifyConfig struct {
	SMTP    SMTPConfig    `koanf:"smtp"`
	Webhook WebhookConfig `koanf:"webhook"`
	Digest  DigestConfig  `koanf:"digest"`

	MaxRetries  int           `koanf:"max_retries"`
	BaseDelay   time.Duration `koanf:"base_delay"`
	MaxDelay    time.Duration `koanf:"max_delay"`
	Parallelism int           `koanf:"parallelism"`
}

// SMTPConfig configures the email channel. An empty Host disables email.
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
	FromName string `koanf:"from_name"`
	UseTLS   bool   `koanf:"use_tls"`
}

// WebhookConfig configures the outbound webhook channel.
type WebhookConfig struct {
	// URL receives every webhook delivery; empty disables the channel.
	URL string `koanf:"url"`
	// Secret signs payloads with HMAC-SHA256 in X-Launchpad-Signature.
	Secret     string        `koanf:"secret"`
	Timeout    time.Duration `koanf:"timeout"`
	RatePerSec float64       `koanf:"rate_per_sec"`
}

// DigestConfig schedules the job recommendation digest.
type DigestConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
	// Hour (0-23, local time) anchors the first run; -1 starts the
	// interval at boot.
	Hour     int     `koanf:"hour"`
	MinScore float64 `koanf:"min_score"`
	MaxJobs  int     `koanf:"max_jobs"`
}

// UploadsConfig configures file upload proxying.
type UploadsConfig struct {
	// Backend is "local" or "http".
	Backend      string `koanf:"backend"`
	Dir          string `koanf:"dir"`
	MaxSizeBytes int64  `koanf:"max_size_bytes"`

	// Upstream object store used when Backend is "http".
	UpstreamURL   string        `koanf:"upstream_url"`
	UpstreamToken string        `koanf:"upstream_token"`
	Timeout       time.Duration `koanf:"timeout"`
	RatePerSec    float64       `koanf:"rate_per_sec"`
	Burst         int           `koanf:"burst"`
}

// EventsConfig selects the domain event transport.
type EventsConfig struct {
	// Transport is "memory" or "nats"; nats requires the nats build tag.
	Transport      string        `koanf:"transport"`
	NATSURL        string        `koanf:"nats_url"`
	EmbeddedServer bool          `koanf:"embedded_server"`
	StoreDir       string        `koanf:"store_dir"`
	StreamName     string        `koanf:"stream_name"`
	DurableName    string        `koanf:"durable_name"`
	CloseTimeout   time.Duration `koanf:"close_timeout"`
	RetryCount     int           `koanf:"retry_count"`
	RetryInterval  time.Duration `koanf:"retry_interval"`
}

// AuditConfig controls the security audit trail.
type AuditConfig struct {
	Enabled         bool          `koanf:"enabled"`
	RetentionDays   int           `koanf:"retention_days"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	BufferSize      int           `koanf:"buffer_size"`
}

// ImporterConfig configures SQLite job imports.
type ImporterConfig struct {
	BatchSize int `koanf:"batch_size"`
	// ProgressPath is the Badger directory used to resume interrupted imports.
	ProgressPath string `koanf:"progress_path"`
	// AllowedDir restricts db_path values submitted through the API.
	AllowedDir string `koanf:"allowed_dir"`
}

// Load reads configuration from defaults, file, .env and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
