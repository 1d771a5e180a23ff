// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/logging"
)

// DuckDBStore implements Store on the application's DuckDB connection.
type DuckDBStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewDuckDBStore wraps db. Call CreateTable before first use.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS audit_events (
		id TEXT PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
		type TEXT NOT NULL,
		severity TEXT NOT NULL,
		outcome TEXT NOT NULL,
		actor_id TEXT,
		actor_type TEXT NOT NULL,
		actor_name TEXT,
		actor_role TEXT,
		tenant_id TEXT,
		target_id TEXT,
		target_type TEXT,
		target_name TEXT,
		source_ip TEXT NOT NULL,
		source_user_agent TEXT,
		action TEXT NOT NULL,
		description TEXT NOT NULL,
		metadata JSON,
		request_id TEXT,
		correlation_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_type ON audit_events(type)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_actor_id ON audit_events(actor_id)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_tenant_id ON audit_events(tenant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_target_id ON audit_events(target_id)`,
}

// CreateTable creates the audit_events table and its indexes.
func (s *DuckDBStore) CreateTable(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute audit schema statement: %w", err)
		}
	}
	logging.Debug().Msg("Audit events table created/verified")
	return nil
}

const insertEventQuery = `
	INSERT INTO audit_events (
		id, timestamp, type, severity, outcome,
		actor_id, actor_type, actor_name, actor_role, tenant_id,
		target_id, target_type, target_name,
		source_ip, source_user_agent,
		action, description, metadata,
		request_id, correlation_id, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Save persists an audit event.
func (s *DuckDBStore) Save(ctx context.Context, event *Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var targetID, targetType, targetName *string
	if event.Target != nil {
		targetID, targetType, targetName = &event.Target.ID, &event.Target.Type, &event.Target.Name
	}

	_, err := s.db.ExecContext(ctx, insertEventQuery,
		event.ID,
		event.Timestamp.UTC(),
		string(event.Type),
		string(event.Severity),
		string(event.Outcome),
		nullable(event.Actor.ID),
		event.Actor.Type,
		nullable(event.Actor.Name),
		nullable(event.Actor.Role),
		nullable(event.Actor.TenantID),
		targetID,
		targetType,
		targetName,
		event.Source.IPAddress,
		nullable(event.Source.UserAgent),
		event.Action,
		event.Description,
		nullable(string(event.Metadata)),
		nullable(event.RequestID),
		nullable(event.CorrelationID),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save audit event: %w", err)
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// JSON columns are cast to VARCHAR for scanning.
const selectEventColumns = `
	SELECT
		id, timestamp, type, severity, outcome,
		actor_id, actor_type, actor_name, actor_role, tenant_id,
		target_id, target_type, target_name,
		source_ip, source_user_agent,
		action, description,
		CAST(metadata AS VARCHAR) AS metadata,
		request_id, correlation_id
	FROM audit_events`

// Get retrieves an event by ID.
func (s *DuckDBStore) Get(ctx context.Context, id string) (*Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectEventColumns+" WHERE id = ?", id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, id)
		}
		return nil, fmt.Errorf("failed to get audit event: %w", err)
	}
	return event, nil
}

// Query returns matching events, newest first.
func (s *DuckDBStore) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := buildFilterConditions(filter)
	query := selectEventColumns + where +
		fmt.Sprintf(" ORDER BY timestamp DESC, id LIMIT %d OFFSET %d", filter.EffectiveLimit(), max(filter.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0, 16)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to scan audit event row")
			continue
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}
	return events, nil
}

// Count returns the number of events matching the filter, ignoring paging.
func (s *DuckDBStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := buildFilterConditions(filter)
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_events"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}
	return count, nil
}

// Delete removes events older than the given time.
func (s *DuckDBStore) Delete(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM audit_events WHERE timestamp < ?`, olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete old audit events: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted count: %w", err)
	}
	return count, nil
}

// GetStats returns totals per type and outcome.
func (s *DuckDBStore) GetStats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{}
	var oldest, newest sql.NullTime
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), MIN(timestamp), MAX(timestamp) FROM audit_events",
	).Scan(&stats.TotalEvents, &oldest, &newest)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit totals: %w", err)
	}
	if oldest.Valid {
		stats.OldestEvent = &oldest.Time
	}
	if newest.Valid {
		stats.NewestEvent = &newest.Time
	}

	if stats.EventsByType, err = s.countByColumn(ctx, "type"); err != nil {
		return nil, err
	}
	if stats.EventsByOutcome, err = s.countByColumn(ctx, "outcome"); err != nil {
		return nil, err
	}
	return stats, nil
}

// countByColumn runs a GROUP BY over a fixed, trusted column name.
func (s *DuckDBStore) countByColumn(ctx context.Context, column string) (map[string]int64, error) {
	result := make(map[string]int64)
	query := fmt.Sprintf("SELECT %s, COUNT(*) FROM audit_events GROUP BY %s", column, column)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s counts: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan %s count: %w", column, err)
		}
		result[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s counts: %w", column, err)
	}
	return result, nil
}

// buildFilterConditions renders filter as a WHERE clause (with leading
// space) and its positional arguments.
func buildFilterConditions(filter QueryFilter) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)

	if cond := buildSliceCondition("type", filter.Types, &args); cond != "" {
		conditions = append(conditions, cond)
	}
	if cond := buildSliceCondition("outcome", filter.Outcomes, &args); cond != "" {
		conditions = append(conditions, cond)
	}

	for _, eq := range []struct{ column, value string }{
		{"actor_id", filter.ActorID},
		{"target_id", filter.TargetID},
		{"tenant_id", filter.TenantID},
	} {
		if eq.value != "" {
			conditions = append(conditions, eq.column+" = ?")
			args = append(args, eq.value)
		}
	}

	if filter.Since != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.Since.UTC())
	}
	if filter.Until != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, filter.Until.UTC())
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func buildSliceCondition[T ~string](column string, values []T, args *[]interface{}) string {
	if len(values) == 0 {
		return ""
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		*args = append(*args, string(v))
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ","))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var (
		event                                  Event
		eventType, severity, outcome           string
		actorID, actorName, actorRole, tenant  sql.NullString
		targetID, targetType, targetName       sql.NullString
		userAgent, metadata, requestID, corrID sql.NullString
	)

	err := row.Scan(
		&event.ID, &event.Timestamp, &eventType, &severity, &outcome,
		&actorID, &event.Actor.Type, &actorName, &actorRole, &tenant,
		&targetID, &targetType, &targetName,
		&event.Source.IPAddress, &userAgent,
		&event.Action, &event.Description, &metadata,
		&requestID, &corrID,
	)
	if err != nil {
		return nil, err
	}

	event.Type = EventType(eventType)
	event.Severity = Severity(severity)
	event.Outcome = Outcome(outcome)
	event.Actor.ID = actorID.String
	event.Actor.Name = actorName.String
	event.Actor.Role = actorRole.String
	event.Actor.TenantID = tenant.String
	event.Source.UserAgent = userAgent.String
	event.RequestID = requestID.String
	event.CorrelationID = corrID.String
	if targetID.Valid {
		event.Target = &Target{ID: targetID.String, Type: targetType.String, Name: targetName.String}
	}
	if metadata.Valid && metadata.String != "" {
		event.Metadata = json.RawMessage(metadata.String)
	}
	return &event, nil
}
