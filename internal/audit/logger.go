// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package audit

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
	"github.com/tomtom215/launchpad/internal/middleware"
	"github.com/tomtom215/launchpad/internal/models"
)

// Config holds configuration for the audit logger.
type Config struct {
	Enabled bool
	// MinSeverity drops events below this level.
	MinSeverity     Severity
	RetentionDays   int
	CleanupInterval time.Duration
	BufferSize      int
	// LogToStdout mirrors each event into the application log.
	LogToStdout bool
}

// DefaultConfig returns the defaults: 90 days retention, daily cleanup.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		MinSeverity:     SeverityInfo,
		RetentionDays:   90,
		CleanupInterval: 24 * time.Hour,
		BufferSize:      1000,
	}
}

// ConfigFrom maps the application settings onto a logger Config,
// keeping defaults for unset values.
func ConfigFrom(cfg config.AuditConfig) *Config {
	c := DefaultConfig()
	c.Enabled = cfg.Enabled
	if cfg.RetentionDays > 0 {
		c.RetentionDays = cfg.RetentionDays
	}
	if cfg.CleanupInterval > 0 {
		c.CleanupInterval = cfg.CleanupInterval
	}
	if cfg.BufferSize > 0 {
		c.BufferSize = cfg.BufferSize
	}
	return c
}

// Logger writes audit events asynchronously. Log never blocks: when the
// buffer is full the event is dropped and counted.
type Logger struct {
	config    *Config
	store     Store
	eventChan chan *Event
	stopChan  chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	now       func() time.Time
}

// NewLogger creates an audit logger and starts its writer goroutine.
func NewLogger(store Store, cfg *Config) *Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}

	l := &Logger{
		config:    cfg,
		store:     store,
		eventChan: make(chan *Event, cfg.BufferSize),
		stopChan:  make(chan struct{}),
		now:       time.Now,
	}

	l.wg.Add(1)
	go l.asyncWriter()

	return l
}

func (l *Logger) asyncWriter() {
	defer l.wg.Done()

	for {
		select {
		case <-l.stopChan:
			for {
				select {
				case event := <-l.eventChan:
					l.writeEvent(event)
				default:
					return
				}
			}
		case event := <-l.eventChan:
			l.writeEvent(event)
		}
	}
}

func (l *Logger) writeEvent(event *Event) {
	if l.config.LogToStdout {
		if data, err := json.Marshal(event); err == nil {
			logging.Info().RawJSON("event", data).Msg("Audit event")
		}
	}

	if l.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := l.store.Save(ctx, event); err != nil {
		logging.Error().Err(err).Str("event_id", event.ID).Str("type", string(event.Type)).Msg("Failed to save audit event")
	}
}

// Log records an audit event. A nil Logger is a no-op.
func (l *Logger) Log(event *Event) {
	if l == nil || !l.config.Enabled || event == nil {
		return
	}
	if severityOrder[event.Severity] < severityOrder[l.config.MinSeverity] {
		return
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now().UTC()
	}

	select {
	case l.eventChan <- event:
	default:
		metrics.AuditEventsDropped.Inc()
		logging.Warn().Str("event_id", event.ID).Str("type", string(event.Type)).Msg("Audit event buffer full, dropping event")
	}
}

// Close drains buffered events and stops the writer. Safe to call twice.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.stopOnce.Do(func() { close(l.stopChan) })
	l.wg.Wait()
	return nil
}

// Cleanup deletes events older than the retention window.
func (l *Logger) Cleanup(ctx context.Context) (int64, error) {
	cutoff := l.now().AddDate(0, 0, -l.config.RetentionDays)
	return l.store.Delete(ctx, cutoff)
}

// RunRetention runs Cleanup every CleanupInterval until ctx is canceled.
func (l *Logger) RunRetention(ctx context.Context) error {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			count, err := l.Cleanup(ctx)
			if err != nil {
				logging.Error().Err(err).Msg("Audit cleanup error")
				continue
			}
			if count > 0 {
				logging.Info().Int64("count", count).Int("retention_days", l.config.RetentionDays).Msg("Cleaned up old audit events")
			}
		}
	}
}

// Query retrieves events matching the filter.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	return l.store.Query(ctx, filter)
}

// Count returns the number of events matching the filter.
func (l *Logger) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return l.store.Count(ctx, filter)
}

// LogAuthSuccess records a successful login.
func (l *Logger) LogAuthSuccess(ctx context.Context, actor Actor, source Source, method string) {
	l.Log(&Event{
		Type:        EventTypeAuthSuccess,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Source:      source,
		Action:      "authenticate",
		Description: "User authenticated",
		Metadata:    mustJSON(map[string]string{"method": method}),
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogAuthFailure records a failed login for the submitted email.
func (l *Logger) LogAuthFailure(ctx context.Context, email string, source Source, reason string) {
	l.Log(&Event{
		Type:        EventTypeAuthFailure,
		Severity:    SeverityWarning,
		Outcome:     OutcomeFailure,
		Actor:       Actor{Type: ActorAnonymous, Name: email},
		Source:      source,
		Action:      "authenticate",
		Description: "Authentication failed: " + reason,
		Metadata:    mustJSON(map[string]string{"reason": reason}),
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogAuthLockout records an account lockout after repeated failures.
func (l *Logger) LogAuthLockout(ctx context.Context, email string, source Source, duration time.Duration, attempts int) {
	l.Log(&Event{
		Type:        EventTypeAuthLockout,
		Severity:    SeverityCritical,
		Outcome:     OutcomeFailure,
		Actor:       Actor{Type: ActorAnonymous, Name: email},
		Source:      source,
		Action:      "lockout",
		Description: "Account locked after repeated failed logins",
		Metadata: mustJSON(map[string]interface{}{
			"duration_seconds": duration.Seconds(),
			"failed_attempts":  attempts,
		}),
		RequestID: logging.RequestIDFromContext(ctx),
	})
}

// LogLogout records a logout.
func (l *Logger) LogLogout(ctx context.Context, actor Actor, source Source) {
	l.Log(&Event{
		Type:        EventTypeLogout,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Source:      source,
		Action:      "logout",
		Description: "User logged out",
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogAuthzDenied records a request rejected by the policy enforcer.
func (l *Logger) LogAuthzDenied(ctx context.Context, actor Actor, source Source, path, action string) {
	l.Log(&Event{
		Type:        EventTypeAuthzDenied,
		Severity:    SeverityWarning,
		Outcome:     OutcomeFailure,
		Actor:       actor,
		Source:      source,
		Target:      &Target{ID: path, Type: "route"},
		Action:      "authorize",
		Description: "Authorization denied for " + action + " on " + path,
		Metadata:    mustJSON(map[string]string{"path": path, "requested_action": action}),
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogUserStatusChange records an admin suspending or reactivating a user.
func (l *Logger) LogUserStatusChange(ctx context.Context, actor Actor, source Source, user *models.User, from, to models.UserStatus) {
	l.Log(&Event{
		Type:        EventTypeUserStatusChanged,
		Severity:    SeverityWarning,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Source:      source,
		Target:      &Target{ID: user.ID, Type: "user", Name: user.Email},
		Action:      string(to),
		Description: "User status changed from " + string(from) + " to " + string(to),
		Metadata:    mustJSON(map[string]string{"from": string(from), "to": string(to)}),
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogTenantVerified records a tenant verification decision.
func (l *Logger) LogTenantVerified(ctx context.Context, actor Actor, source Source, tenant *models.Tenant) {
	action, desc := "verify", "Tenant verified: "
	if !tenant.Verified {
		action, desc = "unverify", "Tenant verification revoked: "
	}
	l.Log(&Event{
		Type:        EventTypeTenantVerified,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Source:      source,
		Target:      &Target{ID: tenant.ID, Type: "tenant", Name: tenant.Name},
		Action:      action,
		Description: desc + tenant.Name,
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogJobDeleted records a job posting removal.
func (l *Logger) LogJobDeleted(ctx context.Context, actor Actor, source Source, job *models.Job) {
	l.Log(&Event{
		Type:        EventTypeJobDeleted,
		Severity:    SeverityWarning,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Source:      source,
		Target:      &Target{ID: job.ID, Type: "job", Name: job.Title},
		Action:      "delete",
		Description: "Job deleted: " + job.Title,
		Metadata:    mustJSON(map[string]string{"tenant_id": job.TenantID}),
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogBroadcast records an admin broadcast and its reach.
func (l *Logger) LogBroadcast(ctx context.Context, actor Actor, source Source, title string, roles []models.Role, recipients int) {
	l.Log(&Event{
		Type:        EventTypeBroadcast,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Source:      source,
		Action:      "broadcast",
		Description: "Broadcast sent: " + title,
		Metadata: mustJSON(map[string]interface{}{
			"roles":      roles,
			"recipients": recipients,
		}),
		RequestID: logging.RequestIDFromContext(ctx),
	})
}

// ImportSummary is the subset of an import run recorded in the trail.
type ImportSummary struct {
	Source     string `json:"source"`
	TenantID   string `json:"tenant_id"`
	Imported   int64  `json:"imported"`
	Duplicates int64  `json:"duplicates"`
	Skipped    int64  `json:"skipped"`
	Errors     int64  `json:"errors"`
	DryRun     bool   `json:"dry_run"`
	Error      string `json:"error,omitempty"`
}

// LogImport records a finished job import run.
func (l *Logger) LogImport(ctx context.Context, actor Actor, summary ImportSummary) {
	outcome, severity := OutcomeSuccess, SeverityInfo
	if summary.Error != "" {
		outcome, severity = OutcomeFailure, SeverityError
	}
	l.Log(&Event{
		Type:        EventTypeDataImport,
		Severity:    severity,
		Outcome:     outcome,
		Actor:       actor,
		Source:      Source{IPAddress: "internal"},
		Target:      &Target{ID: summary.TenantID, Type: "tenant"},
		Action:      "import",
		Description: "Job import from " + summary.Source,
		Metadata:    mustJSON(summary),
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// LogAdminAction records any other administrative action.
func (l *Logger) LogAdminAction(ctx context.Context, actor Actor, source Source, action, description string, metadata map[string]interface{}) {
	l.Log(&Event{
		Type:        EventTypeAdminAction,
		Severity:    SeverityWarning,
		Outcome:     OutcomeSuccess,
		Actor:       actor,
		Source:      source,
		Action:      action,
		Description: description,
		Metadata:    mustJSON(metadata),
		RequestID:   logging.RequestIDFromContext(ctx),
	})
}

// mustJSON converts v to JSON, returning an empty object on error.
func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

// SourceFromRequest takes the client address resolved by the ClientIP
// middleware, falling back to the connection's remote host.
func SourceFromRequest(r *http.Request) Source {
	ip := middleware.ClientIPFromContext(r.Context())
	if ip == "" {
		ip = r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		}
	}
	return Source{IPAddress: ip, UserAgent: r.UserAgent()}
}

// ActorFromUser builds an Actor from an authenticated user.
func ActorFromUser(u *models.User) Actor {
	if u == nil {
		return Actor{Type: ActorAnonymous}
	}
	return Actor{
		ID:       u.ID,
		Type:     ActorUser,
		Name:     u.Email,
		Role:     string(u.Role),
		TenantID: u.TenantID,
	}
}

// SystemActor returns the Actor for background jobs.
func SystemActor() Actor {
	return Actor{ID: "system", Type: ActorSystem, Name: "Launchpad"}
}
