// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package audit

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
)

// ErrEventNotFound is returned by Store.Get for unknown ids.
var ErrEventNotFound = errors.New("audit event not found")

// EventType categorizes audit events.
type EventType string

const (
	// Authentication
	EventTypeAuthSuccess EventType = "auth.success"
	EventTypeAuthFailure EventType = "auth.failure"
	EventTypeAuthLockout EventType = "auth.lockout"
	EventTypeLogout      EventType = "auth.logout"

	// Authorization
	EventTypeAuthzDenied EventType = "authz.denied"

	// Accounts and tenants
	EventTypeUserStatusChanged EventType = "user.status_changed"
	EventTypeTenantVerified    EventType = "tenant.verified"

	// Content moderation
	EventTypeJobDeleted EventType = "job.deleted"

	EventTypeBroadcast   EventType = "notification.broadcast"
	EventTypeDataImport  EventType = "data.import"
	EventTypeAdminAction EventType = "admin.action"
)

// AllEventTypes lists every type the logger emits.
var AllEventTypes = []EventType{
	EventTypeAuthSuccess,
	EventTypeAuthFailure,
	EventTypeAuthLockout,
	EventTypeLogout,
	EventTypeAuthzDenied,
	EventTypeUserStatusChanged,
	EventTypeTenantVerified,
	EventTypeJobDeleted,
	EventTypeBroadcast,
	EventTypeDataImport,
	EventTypeAdminAction,
}

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	for _, known := range AllEventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Severity indicates the severity level of an audit event.
type Severity string

const (
	SeverityDebug    Severity = "debug"
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

var severityOrder = map[Severity]int{
	SeverityDebug:    0,
	SeverityInfo:     1,
	SeverityWarning:  2,
	SeverityError:    3,
	SeverityCritical: 4,
}

// Outcome indicates whether an action succeeded or failed.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Actor types.
const (
	ActorUser      = "user"
	ActorAnonymous = "anonymous"
	ActorSystem    = "system"
)

// Event is a single entry in the audit trail.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Severity  Severity  `json:"severity"`
	Outcome   Outcome   `json:"outcome"`
	Actor     Actor     `json:"actor"`
	Target    *Target   `json:"target,omitempty"`
	Source    Source    `json:"source"`

	// Action is the verb, e.g. "authenticate" or "suspend".
	Action      string          `json:"action"`
	Description string          `json:"description"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`

	RequestID     string `json:"request_id,omitempty"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Actor is who performed an action. For failed logins ID is empty and
// Name carries the submitted email.
type Actor struct {
	ID       string `json:"id,omitempty"`
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"`
	TenantID string `json:"tenant_id,omitempty"`
}

// Target is the object of an action.
type Target struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
}

// Source is where a request originated.
type Source struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Store persists audit events.
type Store interface {
	Save(ctx context.Context, event *Event) error
	Get(ctx context.Context, id string) (*Event, error)
	Query(ctx context.Context, filter QueryFilter) ([]Event, error)
	Count(ctx context.Context, filter QueryFilter) (int64, error)
	// Delete removes events older than the cutoff and returns how many.
	Delete(ctx context.Context, olderThan time.Time) (int64, error)
}

// QueryFilter narrows an audit query. Zero values match everything.
type QueryFilter struct {
	Types    []EventType `json:"types,omitempty"`
	Outcomes []Outcome   `json:"outcomes,omitempty"`
	ActorID  string      `json:"actor_id,omitempty"`
	TargetID string      `json:"target_id,omitempty"`
	TenantID string      `json:"tenant_id,omitempty"`
	Since    *time.Time  `json:"since,omitempty"`
	Until    *time.Time  `json:"until,omitempty"`

	// Limit caps the result size; 0 means DefaultQueryLimit.
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Query limits.
const (
	DefaultQueryLimit = 50
	MaxQueryLimit     = 500
)

// EffectiveLimit clamps Limit into [1, MaxQueryLimit].
func (f QueryFilter) EffectiveLimit() int {
	switch {
	case f.Limit <= 0:
		return DefaultQueryLimit
	case f.Limit > MaxQueryLimit:
		return MaxQueryLimit
	default:
		return f.Limit
	}
}

// Stats summarizes the contents of a store.
type Stats struct {
	TotalEvents     int64            `json:"total_events"`
	EventsByType    map[string]int64 `json:"events_by_type"`
	EventsByOutcome map[string]int64 `json:"events_by_outcome"`
	OldestEvent     *time.Time       `json:"oldest_event,omitempty"`
	NewestEvent     *time.Time       `json:"newest_event,omitempty"`
}
