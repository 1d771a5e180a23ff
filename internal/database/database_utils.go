// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// ensureContext adds a 30 second timeout when ctx has no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), 30*time.Second)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, 30*time.Second)
	}
	return ctx, func() {}
}

// Checkpoint forces a WAL checkpoint
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// GetDatabasePath returns the path to the database file
func (db *DB) GetDatabasePath() string {
	return db.cfg.Path
}

func newID() string {
	return uuid.NewString()
}

// skillSep joins skills inside string_agg. Skills never contain control
// characters (see validation.IsValidSkill).
const skillSep = "\x1f"

// skillAggSQL returns a correlated subquery that aggregates skills for the
// outer row. where is appended to the subquery's WHERE clause.
func skillAggSQL(table, fkCol, outerCol, where string) string {
	q := fmt.Sprintf("(SELECT string_agg(skill, chr(31) ORDER BY skill) FROM %s s WHERE s.%s = %s", table, fkCol, outerCol)
	if where != "" {
		q += " AND " + where
	}
	return q + ")"
}

func splitSkills(ns sql.NullString) []string {
	if !ns.Valid || ns.String == "" {
		return []string{}
	}
	return strings.Split(ns.String, skillSep)
}

func marshalList[T any](v []T) string {
	if v == nil {
		return "[]"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalList[T any](s string) []T {
	out := []T{}
	if s == "" {
		return out
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return []T{}
	}
	return out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	v := n.Time.UTC()
	return &v
}

// buildInClause creates a parameterized IN clause for SQL queries.
func buildInClause[T ~string](items []T) (string, []interface{}) {
	placeholders := make([]string, len(items))
	args := make([]interface{}, len(items))
	for i, item := range items {
		placeholders[i] = "?"
		args[i] = string(item)
	}
	return strings.Join(placeholders, ","), args
}

// whereBuilder accumulates AND-ed conditions and their arguments.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

func (w *whereBuilder) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// likePattern escapes LIKE wildcards and wraps s in %.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}

// clampPage applies defaults to limit and offset.
func clampPage(limit, offset, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// replaceSkills rewrites the skill rows for one owner inside tx.
func replaceSkills(ctx context.Context, tx *sql.Tx, table, fkCol, ownerID string, skills []string, extraCol string, extraVal interface{}) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, fkCol), ownerID); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	for _, s := range skills {
		var err error
		if extraCol == "" {
			_, err = tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (%s, skill) VALUES (?, ?) ON CONFLICT DO NOTHING", table, fkCol), ownerID, s)
		} else {
			_, err = tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %s (%s, skill, %s) VALUES (?, ?, ?) ON CONFLICT DO NOTHING", table, fkCol, extraCol), ownerID, s, extraVal)
		}
		if err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}
