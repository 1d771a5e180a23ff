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
	"time"

	"github.com/tomtom215/launchpad/internal/models"
)

const enrollmentSelect = `SELECT e.id, e.course_id, e.user_id, e.status, e.progress, e.enrolled_at, e.completed_at,
	COALESCE(c.title, ''), COALESCE(u.name, ''),
	(SELECT string_agg(lc.lesson_id, chr(31) ORDER BY lc.lesson_id) FROM lesson_completions lc WHERE lc.enrollment_id = e.id)
	FROM enrollments e
	LEFT JOIN courses c ON c.id = e.course_id
	LEFT JOIN users u ON u.id = e.user_id`

func scanEnrollment(row rowScanner) (*models.Enrollment, error) {
	var e models.Enrollment
	var status string
	var completedAt sql.NullTime
	var lessons sql.NullString
	if err := row.Scan(&e.ID, &e.CourseID, &e.UserID, &status, &e.Progress, &e.EnrolledAt, &completedAt,
		&e.CourseTitle, &e.UserName, &lessons); err != nil {
		return nil, err
	}
	e.Status = models.EnrollmentStatus(status)
	e.CompletedAt = timePtr(completedAt)
	e.CompletedLessons = splitSkills(lessons)
	return &e, nil
}

func (db *DB) queryEnrollments(ctx context.Context, q string, args ...interface{}) ([]models.Enrollment, error) {
	rows, err := db.conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()
	out := []models.Enrollment{}
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// GetEnrollment returns the enrollment of userID in courseID.
func (db *DB) GetEnrollment(ctx context.Context, courseID, userID string) (*models.Enrollment, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	e, err := scanEnrollment(db.conn.QueryRowContext(ctx, enrollmentSelect+` WHERE e.course_id = ? AND e.user_id = ?`,
		courseID, userID))
	return e, notFoundIfNoRows(err)
}

// Enroll enrolls userID in a published course. A dropped enrollment is
// reactivated with its completed lessons kept. An active or completed
// enrollment returns ErrConflict.
func (db *DB) Enroll(ctx context.Context, courseID, userID string) (*models.Enrollment, error) {
	course, err := db.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.Status != models.CoursePublished {
		return nil, ErrInvalidState
	}

	existing, err := db.GetEnrollment(ctx, courseID, userID)
	switch {
	case err == nil && existing.Status != models.EnrollmentDropped:
		return nil, ErrConflict
	case err != nil && !errors.Is(err, ErrNotFound):
		return nil, err
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	now := db.now()
	if existing != nil {
		_, err = db.conn.ExecContext(ctx, `UPDATE enrollments SET status = 'active', enrolled_at = ? WHERE id = ?`, now, existing.ID)
	} else {
		_, err = db.conn.ExecContext(ctx, `INSERT INTO enrollments (id, course_id, user_id, status, progress, enrolled_at)
			VALUES (?, ?, ?, 'active', 0, ?)`, newID(), courseID, userID, now)
		if isConstraintViolation(err) {
			err = ErrConflict
		}
	}
	observe("insert", "enrollments", start, err)
	if err != nil {
		return nil, err
	}
	return db.GetEnrollment(ctx, courseID, userID)
}

// DropEnrollment marks an active enrollment dropped. Completed enrollments
// return ErrInvalidState.
func (db *DB) DropEnrollment(ctx context.Context, courseID, userID string) error {
	e, err := db.GetEnrollment(ctx, courseID, userID)
	if err != nil {
		return err
	}
	switch e.Status {
	case models.EnrollmentDropped:
		return nil
	case models.EnrollmentCompleted:
		return ErrInvalidState
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err = db.conn.ExecContext(ctx, `UPDATE enrollments SET status = 'dropped' WHERE id = ?`, e.ID)
	return err
}

// CompleteLesson records lessonID as done for userID's active enrollment
// and recomputes progress. completedNow is true only on the call that takes
// the enrollment to 100%; that call also merges the course skills into the
// user's profile.
func (db *DB) CompleteLesson(ctx context.Context, courseID, lessonID, userID string) (e *models.Enrollment, completedNow bool, err error) {
	if _, err := db.GetLesson(ctx, courseID, lessonID); err != nil {
		return nil, false, err
	}
	e, err = db.GetEnrollment(ctx, courseID, userID)
	if err != nil {
		return nil, false, err
	}
	switch e.Status {
	case models.EnrollmentCompleted:
		return e, false, nil
	case models.EnrollmentDropped:
		return nil, false, ErrInvalidState
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	now := db.now()
	err = db.withTx(ctx, func(tx *sql.Tx) error {
		completedNow = false
		if _, err := tx.ExecContext(ctx, `INSERT INTO lesson_completions (enrollment_id, lesson_id, completed_at)
			VALUES (?, ?, ?) ON CONFLICT DO NOTHING`, e.ID, lessonID, now); err != nil {
			return fmt.Errorf("insert completion: %w", err)
		}
		var done, total int
		if err := tx.QueryRowContext(ctx, `SELECT
				(SELECT COUNT(*) FROM lesson_completions lc JOIN lessons l ON l.id = lc.lesson_id
					WHERE lc.enrollment_id = ? AND l.course_id = ?),
				(SELECT COUNT(*) FROM lessons WHERE course_id = ?)`, e.ID, courseID, courseID).Scan(&done, &total); err != nil {
			return fmt.Errorf("count lessons: %w", err)
		}
		if total == 0 {
			return ErrNoLessons
		}
		progress := models.CourseProgress(done, total)
		if total > 0 && done >= total {
			completedNow = true
			if _, err := tx.ExecContext(ctx, `UPDATE enrollments SET progress = 100, status = 'completed', completed_at = ? WHERE id = ?`,
				now, e.ID); err != nil {
				return fmt.Errorf("complete enrollment: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO profile_skills (user_id, skill)
				SELECT CAST(? AS VARCHAR), skill FROM course_skills WHERE course_id = ? ON CONFLICT DO NOTHING`, userID, courseID); err != nil {
				return fmt.Errorf("merge course skills: %w", err)
			}
			return nil
		}
		_, err := tx.ExecContext(ctx, `UPDATE enrollments SET progress = ? WHERE id = ?`, progress, e.ID)
		return err
	})
	observe("update", "enrollments", start, err)
	if err != nil {
		return nil, false, err
	}
	e, err = db.GetEnrollment(ctx, courseID, userID)
	return e, completedNow, err
}

// ListUserEnrollments returns every enrollment of userID, newest first.
func (db *DB) ListUserEnrollments(ctx context.Context, userID string) ([]models.Enrollment, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.queryEnrollments(ctx, enrollmentSelect+` WHERE e.user_id = ? ORDER BY e.enrolled_at DESC, e.id`, userID)
}

// ListCourseEnrollments returns a page of enrollments in courseID.
func (db *DB) ListCourseEnrollments(ctx context.Context, courseID string, limit, offset int) (*models.Page[models.Enrollment], error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	limit, offset = clampPage(limit, offset, 20, 100)
	page := &models.Page[models.Enrollment]{}
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments WHERE course_id = ?`, courseID).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("count enrollments: %w", err)
	}
	var err error
	page.Items, err = db.queryEnrollments(ctx, enrollmentSelect+` WHERE e.course_id = ? ORDER BY e.enrolled_at DESC, e.id LIMIT ? OFFSET ?`,
		courseID, limit, offset)
	if err != nil {
		return nil, err
	}
	return page, nil
}
