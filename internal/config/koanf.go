// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/launchpad/config.yaml",
	"/etc/launchpad/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPath is loaded before environment variables are read.
var DotEnvPath = ".env"

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:      "/data/launchpad.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
		},
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
			PublicURL:   "http://localhost:8080",
		},
		API: APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		Security: SecurityConfig{
			SessionTimeout:   24 * time.Hour,
			BcryptCost:       12,
			RateLimitReqs:    100,
			RateLimitWindow:  time.Minute,
			CORSOrigins:      []string{"http://localhost:3000"},
			TrustedProxies:   []string{},
			SessionStore:     "badger",
			SessionStorePath: "/data/sessions",
			Lockout: LockoutConfig{
				Enabled:     true,
				MaxAttempts: 5,
				Duration:    15 * time.Minute,
			},
			Casbin: CasbinConfig{
				CacheEnabled: true,
				CacheTTL:     5 * time.Minute,
			},
			OIDC: OIDCConfig{
				Scopes:      []string{"openid", "profile", "email"},
				PKCEEnabled: true,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Recommend: RecommendConfig{
			Weights: RecommendWeights{
				Skills:     0.35,
				Location:   0.15,
				Experience: 0.15,
				Education:  0.10,
				JobType:    0.10,
				Salary:     0.05,
				Recency:    0.10,
			},
			MissingRequiredPenalty: 0.85,
			FullMatchBonus:         1.1,
			RecencyWindow:          30 * 24 * time.Hour,
			DefaultLimit:           10,
			MaxLimit:               50,
			CacheTTL:               5 * time.Minute,
			MaxCandidates:          2000,
		},
		Notify: NotifyConfig{
			SMTP: SMTPConfig{
				Port:     587,
				FromName: "Launchpad",
				UseTLS:   true,
			},
			Webhook: WebhookConfig{
				Timeout:    10 * time.Second,
				RatePerSec: 5,
			},
			Digest: DigestConfig{
				Enabled:  true,
				Interval: 24 * time.Hour,
				Hour:     8,
				MinScore: 60,
				MaxJobs:  5,
			},
			MaxRetries:  3,
			BaseDelay:   time.Second,
			MaxDelay:    30 * time.Second,
			Parallelism: 8,
		},
		Uploads: UploadsConfig{
			Backend:      "local",
			Dir:          "/data/uploads",
			MaxSizeBytes: 10 << 20,
			Timeout:      30 * time.Second,
			RatePerSec:   20,
			Burst:        40,
		},
		Events: EventsConfig{
			Transport:      "memory",
			NATSURL:        "nats://127.0.0.1:4222",
			EmbeddedServer: false,
			StoreDir:       "/data/nats",
			StreamName:     "LAUNCHPAD",
			DurableName:    "launchpad-notify",
			CloseTimeout:   30 * time.Second,
			RetryCount:     3,
			RetryInterval:  100 * time.Millisecond,
		},
		Audit: AuditConfig{
			Enabled:         true,
			RetentionDays:   90,
			CleanupInterval: 24 * time.Hour,
			BufferSize:      1000,
		},
		Importer: ImporterConfig{
			BatchSize:    500,
			ProgressPath: "/data/import-progress",
			AllowedDir:   "/data/imports",
		},
	}
}

// LoadWithKoanf merges defaults, config file, .env and environment.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := loadDotEnv(DotEnvPath); err != nil {
		return nil, err
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadDotEnv exports variables from path without overriding ones already set.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths accept comma-separated strings from the environment.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
	"security.oidc.scopes",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps flat environment names to koanf paths. Unmapped
// variables are ignored so the host environment cannot leak into config.
var envMappings = map[string]string{
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"seed_demo_data":    "database.seed_demo_data",

	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",
	"public_url":   "server.public_url",

	"api_default_page_size": "api.default_page_size",
	"api_max_page_size":     "api.max_page_size",

	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"bcrypt_cost":         "security.bcrypt_cost",
	"admin_email":         "security.admin_email",
	"admin_password":      "security.admin_password",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"trusted_proxies":     "security.trusted_proxies",
	"session_store":       "security.session_store",
	"session_store_path":  "security.session_store_path",

	"lockout_enabled":      "security.lockout.enabled",
	"lockout_max_attempts": "security.lockout.max_attempts",
	"lockout_duration":     "security.lockout.duration",

	"casbin_model_path":    "security.casbin.model_path",
	"casbin_policy_path":   "security.casbin.policy_path",
	"casbin_cache_enabled": "security.casbin.cache_enabled",
	"casbin_cache_ttl":     "security.casbin.cache_ttl",

	"oidc_enabled":       "security.oidc.enabled",
	"oidc_issuer_url":    "security.oidc.issuer_url",
	"oidc_client_id":     "security.oidc.client_id",
	"oidc_client_secret": "security.oidc.client_secret",
	"oidc_redirect_url":  "security.oidc.redirect_url",
	"oidc_scopes":        "security.oidc.scopes",
	"oidc_pkce_enabled":  "security.oidc.pkce_enabled",
	"oidc_tenant_id":     "security.oidc.tenant_id",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"recommend_weight_skills":     "recommend.weights.skills",
	"recommend_weight_location":   "recommend.weights.location",
	"recommend_weight_experience": "recommend.weights.experience",
	"recommend_weight_education":  "recommend.weights.education",
	"recommend_weight_job_type":   "recommend.weights.job_type",
	"recommend_weight_salary":     "recommend.weights.salary",
	"recommend_weight_recency":    "recommend.weights.recency",
	"recommend_missing_penalty":   "recommend.missing_required_penalty",
	"recommend_full_match_bonus":  "recommend.full_match_bonus",
	"recommend_recency_window":    "recommend.recency_window",
	"recommend_cache_ttl":         "recommend.cache_ttl",
	"recommend_max_candidates":    "recommend.max_candidates",

	"smtp_host":      "notify.smtp.host",
	"smtp_port":      "notify.smtp.port",
	"smtp_username":  "notify.smtp.username",
	"smtp_password":  "notify.smtp.password",
	"smtp_from":      "notify.smtp.from",
	"smtp_from_name": "notify.smtp.from_name",
	"smtp_use_tls":   "notify.smtp.use_tls",

	"notify_webhook_url":    "notify.webhook.url",
	"notify_webhook_secret": "notify.webhook.secret",
	"notify_max_retries":    "notify.max_retries",
	"notify_parallelism":    "notify.parallelism",

	"digest_enabled":   "notify.digest.enabled",
	"digest_interval":  "notify.digest.interval",
	"digest_hour":      "notify.digest.hour",
	"digest_min_score": "notify.digest.min_score",
	"digest_max_jobs":  "notify.digest.max_jobs",

	"upload_backend":        "uploads.backend",
	"upload_dir":            "uploads.dir",
	"upload_max_size":       "uploads.max_size_bytes",
	"upload_upstream_url":   "uploads.upstream_url",
	"upload_upstream_token": "uploads.upstream_token",

	"events_transport": "events.transport",
	"nats_url":         "events.nats_url",
	"nats_embedded":    "events.embedded_server",
	"nats_store_dir":   "events.store_dir",

	"audit_enabled":        "audit.enabled",
	"audit_retention_days": "audit.retention_days",

	"import_batch_size":    "importer.batch_size",
	"import_progress_path": "importer.progress_path",
	"import_allowed_dir":   "importer.allowed_dir",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
