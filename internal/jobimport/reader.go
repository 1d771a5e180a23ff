// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package jobimport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	// Pure Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

// requiredColumns must exist in the source jobs table.
var requiredColumns = []string{"url", "title", "description", "company", "job_id", "location", "status", "created_at"}

// Reader reads job rows from a SQLite job-tracker database.
type Reader struct {
	db     *sql.DB
	dbPath string
}

// NewReader opens dbPath read-only and checks the jobs table layout.
func NewReader(dbPath string) (*Reader, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		return nil, fmt.Errorf("source database: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("source database %s is a directory", dbPath)
	}

	dsn := "file:" + (&url.URL{Path: dbPath}).EscapedPath() + "?mode=ro&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := verifySchema(db); err != nil {
		db.Close() //nolint:errcheck // best-effort cleanup on error path
		return nil, fmt.Errorf("verify schema: %w", err)
	}
	return &Reader{db: db, dbPath: dbPath}, nil
}

func verifySchema(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info('jobs')`)
	if err != nil {
		return err
	}
	defer rows.Close()

	have := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		have[strings.ToLower(name)] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(have) == 0 {
		return errors.New("table jobs not found")
	}
	var missing []string
	for _, c := range requiredColumns {
		if !have[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("table jobs is missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Close closes the database.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Path returns the source path.
func (r *Reader) Path() string { return r.dbPath }

func statusClause(status string, args []interface{}) (string, []interface{}) {
	if status == "" {
		return "", args
	}
	return " AND status = ?", append(args, status)
}

// CountRecords counts rows after afterRowID, optionally filtered by status.
func (r *Reader) CountRecords(ctx context.Context, status string, afterRowID int64) (int64, error) {
	where, args := statusClause(status, []interface{}{afterRowID})
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs WHERE rowid > ?`+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return n, nil
}

// ReadBatch returns up to limit rows after afterRowID in rowid order.
func (r *Reader) ReadBatch(ctx context.Context, status string, afterRowID int64, limit int) ([]Record, error) {
	where, args := statusClause(status, []interface{}{afterRowID})
	args = append(args, limit)
	rows, err := r.db.QueryContext(ctx, `
		SELECT rowid, url, title, description, company, job_id, location, status, created_at
		FROM jobs
		WHERE rowid > ?`+where+`
		ORDER BY rowid
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("read jobs: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var u, title, desc, company, jobID, loc, st, ts sql.NullString
		if err := rows.Scan(&rec.RowID, &u, &title, &desc, &company, &jobID, &loc, &st, &ts); err != nil {
			return nil, fmt.Errorf("scan job row: %w", err)
		}
		rec.URL = strings.TrimSpace(u.String)
		rec.Title = title.String
		rec.Description = desc.String
		rec.Company = company.String
		rec.JobID = jobID.String
		rec.Location = loc.String
		rec.Status = st.String
		rec.CreatedAt = parseTimestamp(ts.String)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// StatusCounts returns row counts per source status.
func (r *Reader) StatusCounts(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT COALESCE(status, ''), COUNT(*) FROM jobs GROUP BY 1`)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var s string
		var n int64
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp accepts the text formats SQLite tools commonly write.
// Unparseable values yield the zero time.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
