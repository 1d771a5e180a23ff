// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/launchpad/internal/models"
)

const applicationSelect = `SELECT a.id, a.job_id, a.user_id, a.tenant_id, a.cover_letter, a.resume_upload_id, a.status,
	a.notes, a.created_at, a.updated_at, COALESCE(j.title, ''), COALESCE(u.name, '')
	FROM applications a
	LEFT JOIN jobs j ON j.id = a.job_id
	LEFT JOIN users u ON u.id = a.user_id`

func scanApplication(row rowScanner) (*models.Application, error) {
	var a models.Application
	var resume sql.NullString
	var status string
	if err := row.Scan(&a.ID, &a.JobID, &a.UserID, &a.TenantID, &a.CoverLetter, &resume, &status,
		&a.Notes, &a.CreatedAt, &a.UpdatedAt, &a.JobTitle, &a.ApplicantName); err != nil {
		return nil, err
	}
	a.ResumeUploadID = resume.String
	a.Status = models.ApplicationStatus(status)
	return &a, nil
}

// CreateApplication inserts a submitted application. A second application
// for the same (job, user) returns ErrConflict. Callers check the job is open.
func (db *DB) CreateApplication(ctx context.Context, a *models.Application) (err error) {
	start := time.Now()
	defer func() { observe("insert", "applications", start, err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var exists bool
	if err := db.conn.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM applications WHERE job_id = ? AND user_id = ?)`,
		a.JobID, a.UserID).Scan(&exists); err != nil {
		return fmt.Errorf("check application: %w", err)
	}
	if exists {
		return ErrConflict
	}

	now := db.now()
	if a.ID == "" {
		a.ID = newID()
	}
	a.Status = models.AppSubmitted
	a.CreatedAt, a.UpdatedAt = now, now

	_, err = db.conn.ExecContext(ctx, `INSERT INTO applications (id, job_id, user_id, tenant_id, cover_letter, resume_upload_id,
			status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.JobID, a.UserID, a.TenantID, a.CoverLetter, nullString(a.ResumeUploadID), string(a.Status), a.Notes,
		a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// GetApplication returns ErrNotFound for unknown ids.
func (db *DB) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	a, err := scanApplication(db.conn.QueryRowContext(ctx, applicationSelect+` WHERE a.id = ?`, id))
	return a, notFoundIfNoRows(err)
}

// ListApplications returns a page of applications, newest first.
func (db *DB) ListApplications(ctx context.Context, f models.ApplicationFilter) (*models.Page[models.Application], error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var w whereBuilder
	if f.UserID != "" {
		w.add("a.user_id = ?", f.UserID)
	}
	if f.TenantID != "" {
		w.add("a.tenant_id = ?", f.TenantID)
	}
	if f.JobID != "" {
		w.add("a.job_id = ?", f.JobID)
	}
	if f.Status != "" {
		w.add("a.status = ?", string(f.Status))
	}
	limit, offset := clampPage(f.Limit, f.Offset, 20, 100)

	page := &models.Page[models.Application]{Items: []models.Application{}}
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications a`+w.sql(), w.args...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}
	args := append(append([]interface{}{}, w.args...), limit, offset)
	rows, err := db.conn.QueryContext(ctx, applicationSelect+w.sql()+` ORDER BY a.created_at DESC, a.id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		page.Items = append(page.Items, *a)
	}
	return page, rows.Err()
}

// TransitionApplication moves an application from its current status to
// next if the current status still equals from. A concurrent change returns
// ErrConflict. The transition is recorded in application_status_history.
func (db *DB) TransitionApplication(ctx context.Context, id string, from, next models.ApplicationStatus, actorID, notes string) (*models.Application, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := db.now()
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		q := `UPDATE applications SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
		args := []interface{}{string(next), now, id, string(from)}
		if notes != "" {
			q = `UPDATE applications SET status = ?, updated_at = ?, notes = ? WHERE id = ? AND status = ?`
			args = []interface{}{string(next), now, notes, id, string(from)}
		}
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("update application: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrConflict
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO application_status_history (id, application_id, from_status, to_status, actor_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`, newID(), id, string(from), string(next), actorID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return db.GetApplication(ctx, id)
}

// AppliedJobIDs returns the ids of every job userID has applied to.
func (db *DB) AppliedJobIDs(ctx context.Context, userID string) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT job_id FROM applications WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("applied jobs: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ResumeSharedWithTenant reports whether uploadID is attached to an
// application addressed to tenantID.
func (db *DB) ResumeSharedWithTenant(ctx context.Context, uploadID, tenantID string) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var ok bool
	err := db.conn.QueryRowContext(ctx, `SELECT EXISTS(
			SELECT 1 FROM applications WHERE tenant_id = ? AND resume_upload_id = ?
		)`, tenantID, uploadID).Scan(&ok)
	return ok, err
}
