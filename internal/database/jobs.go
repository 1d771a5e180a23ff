// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/launchpad/internal/models"
)

var jobSelect = `SELECT j.id, j.tenant_id, COALESCE(t.name, ''), j.posted_by, j.title, j.description, j.location,
	j.remote, j.job_type, j.min_experience_years, j.education_level, j.salary_min, j.salary_max, j.currency,
	j.deadline, j.status, j.source_url, j.published_at, j.created_at, j.updated_at, ` +
	skillAggSQL("job_skills", "job_id", "j.id", "s.required") + `, ` +
	skillAggSQL("job_skills", "job_id", "j.id", "NOT s.required") + `
	FROM jobs j LEFT JOIN tenants t ON t.id = j.tenant_id`

func scanJob(row rowScanner) (*models.Job, error) {
	var j models.Job
	var jobType, edu, status string
	var salMin, salMax sql.NullFloat64
	var deadline, published sql.NullTime
	var req, pref sql.NullString
	if err := row.Scan(&j.ID, &j.TenantID, &j.CompanyName, &j.PostedBy, &j.Title, &j.Description, &j.Location,
		&j.Remote, &jobType, &j.MinExperienceYears, &edu, &salMin, &salMax, &j.Currency,
		&deadline, &status, &j.SourceURL, &published, &j.CreatedAt, &j.UpdatedAt, &req, &pref); err != nil {
		return nil, err
	}
	j.JobType = models.JobType(jobType)
	j.EducationLevel = models.EducationLevel(edu)
	j.Status = models.JobStatus(status)
	j.SalaryMin, j.SalaryMax = floatPtr(salMin), floatPtr(salMax)
	j.Deadline, j.PublishedAt = timePtr(deadline), timePtr(published)
	j.RequiredSkills, j.PreferredSkills = splitSkills(req), splitSkills(pref)
	return &j, nil
}

func scanJobs(rows *sql.Rows) ([]models.Job, error) {
	defer rows.Close()
	out := []models.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func insertJobTx(ctx context.Context, tx *sql.Tx, j *models.Job) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO jobs (id, tenant_id, posted_by, title, description, location, remote,
			job_type, min_experience_years, education_level, salary_min, salary_max, currency, deadline, status,
			source_url, published_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.TenantID, j.PostedBy, j.Title, j.Description, j.Location, j.Remote,
		string(j.JobType), j.MinExperienceYears, string(j.EducationLevel), nullFloat(j.SalaryMin), nullFloat(j.SalaryMax),
		j.Currency, nullTime(j.Deadline), string(j.Status), j.SourceURL, nullTime(j.PublishedAt), j.CreatedAt, j.UpdatedAt); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return writeJobSkills(ctx, tx, j)
}

func writeJobSkills(ctx context.Context, tx *sql.Tx, j *models.Job) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM job_skills WHERE job_id = ?`, j.ID); err != nil {
		return fmt.Errorf("clear job skills: %w", err)
	}
	// Required wins when a skill is listed in both.
	for _, s := range j.RequiredSkills {
		if _, err := tx.ExecContext(ctx, `INSERT INTO job_skills (job_id, skill, required) VALUES (?, ?, true) ON CONFLICT DO NOTHING`, j.ID, s); err != nil {
			return fmt.Errorf("insert job skill: %w", err)
		}
	}
	for _, s := range j.PreferredSkills {
		if _, err := tx.ExecContext(ctx, `INSERT INTO job_skills (job_id, skill, required) VALUES (?, ?, false) ON CONFLICT DO NOTHING`, j.ID, s); err != nil {
			return fmt.Errorf("insert job skill: %w", err)
		}
	}
	return nil
}

// CreateJob inserts j. A published job gets PublishedAt set to now.
func (db *DB) CreateJob(ctx context.Context, j *models.Job) (err error) {
	start := time.Now()
	defer func() { observe("insert", "jobs", start, err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := db.now()
	if j.ID == "" {
		j.ID = newID()
	}
	if j.Status == "" {
		j.Status = models.JobDraft
	}
	j.CreatedAt, j.UpdatedAt = now, now
	if j.Status == models.JobPublished && j.PublishedAt == nil {
		j.PublishedAt = &now
	}
	return db.withTx(ctx, func(tx *sql.Tx) error { return insertJobTx(ctx, tx, j) })
}

// InsertJobs inserts a batch of jobs in one transaction.
func (db *DB) InsertJobs(ctx context.Context, jobs []*models.Job) (err error) {
	start := time.Now()
	defer func() { observe("insert_batch", "jobs", start, err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := db.now()
	for _, j := range jobs {
		if j.ID == "" {
			j.ID = newID()
		}
		if j.CreatedAt.IsZero() {
			j.CreatedAt = now
		}
		j.UpdatedAt = now
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, j := range jobs {
			if err := insertJobTx(ctx, tx, j); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetJob returns the job with id regardless of status.
func (db *DB) GetJob(ctx context.Context, id string) (*models.Job, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	j, err := scanJob(db.conn.QueryRowContext(ctx, jobSelect+` WHERE j.id = ?`, id))
	err = notFoundIfNoRows(err)
	observe("select", "jobs", start, err)
	return j, err
}

// UpdateJob rewrites the editable fields of j. Status and PublishedAt are
// managed by PublishJob and CloseJob.
func (db *DB) UpdateJob(ctx context.Context, j *models.Job) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	j.UpdatedAt = db.now()
	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE jobs SET title = ?, description = ?, location = ?, remote = ?, job_type = ?,
				min_experience_years = ?, education_level = ?, salary_min = ?, salary_max = ?, currency = ?, deadline = ?,
				updated_at = ?
			WHERE id = ?`,
			j.Title, j.Description, j.Location, j.Remote, string(j.JobType), j.MinExperienceYears, string(j.EducationLevel),
			nullFloat(j.SalaryMin), nullFloat(j.SalaryMax), j.Currency, nullTime(j.Deadline), j.UpdatedAt, j.ID)
		if err != nil {
			return fmt.Errorf("update job: %w", err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		return writeJobSkills(ctx, tx, j)
	})
}

// PublishJob moves a draft to published. PublishedAt is set only the first
// time. Closed jobs return ErrInvalidState.
func (db *DB) PublishJob(ctx context.Context, id string) (*models.Job, error) {
	j, err := db.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	switch j.Status {
	case models.JobPublished:
		return j, nil
	case models.JobClosed:
		return nil, ErrInvalidState
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := db.now()
	if _, err := db.conn.ExecContext(ctx, `UPDATE jobs SET status = 'published', published_at = COALESCE(published_at, ?), updated_at = ? WHERE id = ?`,
		now, now, id); err != nil {
		return nil, fmt.Errorf("publish job: %w", err)
	}
	return db.GetJob(ctx, id)
}

// CloseJob moves a job to closed. Closing is terminal.
func (db *DB) CloseJob(ctx context.Context, id string) (*models.Job, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `UPDATE jobs SET status = 'closed', updated_at = ? WHERE id = ?`, db.now(), id)
	if err != nil {
		return nil, fmt.Errorf("close job: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return db.GetJob(ctx, id)
}

// DeleteJob removes a job with its skills, bookmarks and applications.
func (db *DB) DeleteJob(ctx context.Context, id string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete job: %w", err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		for _, q := range []string{
			`DELETE FROM job_skills WHERE job_id = ?`,
			`DELETE FROM saved_jobs WHERE job_id = ?`,
			`DELETE FROM application_status_history WHERE application_id IN (SELECT id FROM applications WHERE job_id = ?)`,
			`DELETE FROM applications WHERE job_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return fmt.Errorf("delete job dependents: %w", err)
			}
		}
		return nil
	})
}

func (db *DB) jobWhere(f models.JobFilter) whereBuilder {
	var w whereBuilder
	statuses := f.Statuses
	if len(statuses) == 0 {
		statuses = []models.JobStatus{models.JobPublished}
	}
	in, args := buildInClause(statuses)
	w.add("j.status IN ("+in+")", args...)
	if !f.IncludeExpired {
		w.add("(j.deadline IS NULL OR j.deadline >= ?)", db.now())
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		w.add(`(j.title ILIKE ? ESCAPE '\' OR j.description ILIKE ? ESCAPE '\')`, likePattern(q), likePattern(q))
	}
	if loc := strings.TrimSpace(f.Location); loc != "" {
		w.add(`j.location ILIKE ? ESCAPE '\'`, likePattern(loc))
	}
	if f.JobType != "" {
		w.add("j.job_type = ?", string(f.JobType))
	}
	if f.Remote != nil {
		w.add("j.remote = ?", *f.Remote)
	}
	if spellings := models.SkillSpellings(f.Skill); len(spellings) > 0 {
		in, args := buildInClause(spellings)
		w.add("EXISTS (SELECT 1 FROM job_skills s WHERE s.job_id = j.id AND s.skill IN ("+in+"))", args...)
	}
	if f.TenantID != "" {
		w.add("j.tenant_id = ?", f.TenantID)
	}
	return w
}

// ListJobs returns a page of jobs matching f, most recently published first.
func (db *DB) ListJobs(ctx context.Context, f models.JobFilter) (*models.Page[models.Job], error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	w := db.jobWhere(f)
	limit, offset := clampPage(f.Limit, f.Offset, 20, 100)

	page := &models.Page[models.Job]{}
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs j`+w.sql(), w.args...).Scan(&page.Total); err != nil {
		observe("select", "jobs", start, err)
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	args := append(append([]interface{}{}, w.args...), limit, offset)
	rows, err := db.conn.QueryContext(ctx, jobSelect+w.sql()+
		` ORDER BY j.published_at DESC NULLS LAST, j.created_at DESC, j.id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		observe("select", "jobs", start, err)
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	page.Items, err = scanJobs(rows)
	observe("select", "jobs", start, err)
	return page, err
}

// ListOpenJobs returns up to max published, unexpired jobs for scoring,
// excluding ids in exclude.
func (db *DB) ListOpenJobs(ctx context.Context, max int, exclude []string) ([]models.Job, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	w := db.jobWhere(models.JobFilter{})
	if len(exclude) > 0 {
		in, args := buildInClause(exclude)
		w.add("j.id NOT IN ("+in+")", args...)
	}
	args := append(append([]interface{}{}, w.args...), max)
	rows, err := db.conn.QueryContext(ctx, jobSelect+w.sql()+` ORDER BY j.published_at DESC, j.id LIMIT ?`, args...)
	if err != nil {
		observe("select_candidates", "jobs", start, err)
		return nil, fmt.Errorf("list open jobs: %w", err)
	}
	jobs, err := scanJobs(rows)
	observe("select_candidates", "jobs", start, err)
	return jobs, err
}

// ExistingSourceURLs returns which of urls already exist for tenantID.
func (db *DB) ExistingSourceURLs(ctx context.Context, tenantID string, urls []string) (map[string]bool, error) {
	out := make(map[string]bool, len(urls))
	if len(urls) == 0 {
		return out, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	in, args := buildInClause(urls)
	rows, err := db.conn.QueryContext(ctx, `SELECT source_url FROM jobs WHERE tenant_id = ? AND source_url IN (`+in+`)`,
		append([]interface{}{tenantID}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("existing source urls: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		out[u] = true
	}
	return out, rows.Err()
}

// SaveJob bookmarks a job. Saving twice is a no-op.
func (db *DB) SaveJob(ctx context.Context, userID, jobID string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `INSERT INTO saved_jobs (user_id, job_id, created_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
		userID, jobID, db.now())
	if err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

// UnsaveJob removes a bookmark. Missing bookmarks return ErrNotFound.
func (db *DB) UnsaveJob(ctx context.Context, userID, jobID string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `DELETE FROM saved_jobs WHERE user_id = ? AND job_id = ?`, userID, jobID)
	if err != nil {
		return fmt.Errorf("unsave job: %w", err)
	}
	return requireAffected(res)
}

// ListSavedJobs returns a user's bookmarks with the job attached, newest first.
func (db *DB) ListSavedJobs(ctx context.Context, userID string) ([]models.SavedJob, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT job_id, created_at FROM saved_jobs WHERE user_id = ? ORDER BY created_at DESC, job_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved jobs: %w", err)
	}
	var saved []models.SavedJob
	for rows.Next() {
		s := models.SavedJob{UserID: userID}
		if err := rows.Scan(&s.JobID, &s.CreatedAt); err != nil {
			closeQuietly(rows)
			return nil, err
		}
		saved = append(saved, s)
	}
	rowsErr := rows.Err()
	closeWithLog(rows, "saved_jobs rows")
	if rowsErr != nil {
		return nil, rowsErr
	}

	out := make([]models.SavedJob, 0, len(saved))
	for _, s := range saved {
		j, err := db.GetJob(ctx, s.JobID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		s.Job = j
		out = append(out, s)
	}
	return out, nil
}
