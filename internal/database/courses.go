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

	"github.com/tomtom215/launchpad/internal/models"
)

var courseSelect = `SELECT c.id, c.tenant_id, c.created_by, c.title, c.description, c.level, c.duration_hours,
	c.status, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM lessons l WHERE l.course_id = c.id), ` +
	skillAggSQL("course_skills", "course_id", "c.id", "") + `
	FROM courses c`

func scanCourse(row rowScanner) (*models.Course, error) {
	var c models.Course
	var level, status string
	var skills sql.NullString
	if err := row.Scan(&c.ID, &c.TenantID, &c.CreatedBy, &c.Title, &c.Description, &level, &c.DurationHours,
		&status, &c.CreatedAt, &c.UpdatedAt, &c.LessonCount, &skills); err != nil {
		return nil, err
	}
	c.Level = models.CourseLevel(level)
	c.Status = models.CourseStatus(status)
	c.Skills = splitSkills(skills)
	return &c, nil
}

func scanCourses(rows *sql.Rows) ([]models.Course, error) {
	defer rows.Close()
	out := []models.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// CreateCourse inserts c with its skills and lessons. A published course
// needs at least one lesson.
func (db *DB) CreateCourse(ctx context.Context, c *models.Course) (err error) {
	start := time.Now()
	defer func() { observe("insert", "courses", start, err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := db.now()
	if c.ID == "" {
		c.ID = newID()
	}
	if c.Status == "" {
		c.Status = models.CourseDraft
	}
	if c.Status == models.CoursePublished && len(c.Lessons) == 0 {
		return ErrNoLessons
	}
	c.CreatedAt, c.UpdatedAt = now, now

	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO courses (id, tenant_id, created_by, title, description, level,
				duration_hours, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.TenantID, c.CreatedBy, c.Title, c.Description, string(c.Level), c.DurationHours, string(c.Status),
			c.CreatedAt, c.UpdatedAt); err != nil {
			return fmt.Errorf("insert course: %w", err)
		}
		for i := range c.Lessons {
			l := &c.Lessons[i]
			if l.ID == "" {
				l.ID = newID()
			}
			l.CourseID, l.Position = c.ID, i+1
			if _, err := tx.ExecContext(ctx, `INSERT INTO lessons (id, course_id, position, title, content, duration_minutes)
				VALUES (?, ?, ?, ?, ?, ?)`, l.ID, l.CourseID, l.Position, l.Title, l.Content, l.DurationMinutes); err != nil {
				return fmt.Errorf("insert lesson: %w", err)
			}
		}
		c.LessonCount = len(c.Lessons)
		return replaceSkills(ctx, tx, "course_skills", "course_id", c.ID, c.Skills, "", nil)
	})
}

// GetCourse returns the course without lessons.
func (db *DB) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	c, err := scanCourse(db.conn.QueryRowContext(ctx, courseSelect+` WHERE c.id = ?`, id))
	return c, notFoundIfNoRows(err)
}

// GetCourseWithLessons returns the course and its lessons in order.
func (db *DB) GetCourseWithLessons(ctx context.Context, id string) (*models.Course, error) {
	c, err := db.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Lessons, err = db.ListLessons(ctx, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCourse rewrites the editable fields of c. Status is left alone.
func (db *DB) UpdateCourse(ctx context.Context, c *models.Course) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	c.UpdatedAt = db.now()
	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE courses SET title = ?, description = ?, level = ?, duration_hours = ?,
				updated_at = ?
			WHERE id = ?`, c.Title, c.Description, string(c.Level), c.DurationHours, c.UpdatedAt, c.ID)
		if err != nil {
			return fmt.Errorf("update course: %w", err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		return replaceSkills(ctx, tx, "course_skills", "course_id", c.ID, c.Skills, "", nil)
	})
}

// SetCourseStatus moves a course to status. Archived courses can only be
// republished; draft is never re-entered. Publishing needs a lesson.
func (db *DB) SetCourseStatus(ctx context.Context, id string, status models.CourseStatus) (*models.Course, error) {
	c, err := db.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == status {
		return c, nil
	}
	if status == models.CourseDraft {
		return nil, ErrInvalidState
	}
	if status == models.CoursePublished && c.LessonCount == 0 {
		return nil, ErrNoLessons
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, `UPDATE courses SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), db.now(), id); err != nil {
		return nil, fmt.Errorf("set course status: %w", err)
	}
	return db.GetCourse(ctx, id)
}

// DeleteCourse removes a course, its lessons, skills and enrollments.
func (db *DB) DeleteCourse(ctx context.Context, id string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		for _, q := range []string{
			`DELETE FROM course_skills WHERE course_id = ?`,
			`DELETE FROM lessons WHERE course_id = ?`,
			`DELETE FROM lesson_completions WHERE enrollment_id IN (SELECT id FROM enrollments WHERE course_id = ?)`,
			`DELETE FROM enrollments WHERE course_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return fmt.Errorf("delete course dependents: %w", err)
			}
		}
		return nil
	})
}

func courseWhere(f models.CourseFilter) whereBuilder {
	var w whereBuilder
	statuses := f.Statuses
	if len(statuses) == 0 {
		statuses = []models.CourseStatus{models.CoursePublished}
	}
	in, args := buildInClause(statuses)
	w.add("c.status IN ("+in+")", args...)
	if q := strings.TrimSpace(f.Query); q != "" {
		w.add(`(c.title ILIKE ? ESCAPE '\' OR c.description ILIKE ? ESCAPE '\')`, likePattern(q), likePattern(q))
	}
	if skill := strings.ToLower(strings.TrimSpace(f.Skill)); skill != "" {
		w.add("EXISTS (SELECT 1 FROM course_skills s WHERE s.course_id = c.id AND s.skill = ?)", skill)
	}
	if len(f.AnySkill) > 0 {
		in, args := buildInClause(f.AnySkill)
		w.add("EXISTS (SELECT 1 FROM course_skills s WHERE s.course_id = c.id AND s.skill IN ("+in+"))", args...)
	}
	if f.Level != "" {
		w.add("c.level = ?", string(f.Level))
	}
	if f.TenantID != "" {
		w.add("c.tenant_id = ?", f.TenantID)
	}
	return w
}

// ListCourses returns a page of courses matching f, newest first.
func (db *DB) ListCourses(ctx context.Context, f models.CourseFilter) (*models.Page[models.Course], error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	w := courseWhere(f)
	limit, offset := clampPage(f.Limit, f.Offset, 20, 100)

	page := &models.Page[models.Course]{}
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses c`+w.sql(), w.args...).Scan(&page.Total); err != nil {
		observe("select", "courses", start, err)
		return nil, fmt.Errorf("count courses: %w", err)
	}
	args := append(append([]interface{}{}, w.args...), limit, offset)
	rows, err := db.conn.QueryContext(ctx, courseSelect+w.sql()+` ORDER BY c.created_at DESC, c.id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		observe("select", "courses", start, err)
		return nil, fmt.Errorf("list courses: %w", err)
	}
	page.Items, err = scanCourses(rows)
	observe("select", "courses", start, err)
	return page, err
}

// ListLessons returns the lessons of a course ordered by position.
func (db *DB) ListLessons(ctx context.Context, courseID string) ([]models.Lesson, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT id, course_id, position, title, content, duration_minutes
		FROM lessons WHERE course_id = ? ORDER BY position, id`, courseID)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()
	out := []models.Lesson{}
	for rows.Next() {
		var l models.Lesson
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Position, &l.Title, &l.Content, &l.DurationMinutes); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetLesson returns ErrNotFound unless the lesson belongs to courseID.
func (db *DB) GetLesson(ctx context.Context, courseID, lessonID string) (*models.Lesson, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var l models.Lesson
	err := db.conn.QueryRowContext(ctx, `SELECT id, course_id, position, title, content, duration_minutes
		FROM lessons WHERE id = ? AND course_id = ?`, lessonID, courseID).
		Scan(&l.ID, &l.CourseID, &l.Position, &l.Title, &l.Content, &l.DurationMinutes)
	if err != nil {
		return nil, notFoundIfNoRows(err)
	}
	return &l, nil
}

// CreateLesson appends a lesson. A zero Position places it after the last one.
func (db *DB) CreateLesson(ctx context.Context, l *models.Lesson) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if l.ID == "" {
		l.ID = newID()
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if l.Position <= 0 {
			if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) + 1 FROM lessons WHERE course_id = ?`,
				l.CourseID).Scan(&l.Position); err != nil {
				return fmt.Errorf("next lesson position: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO lessons (id, course_id, position, title, content, duration_minutes)
			VALUES (?, ?, ?, ?, ?, ?)`, l.ID, l.CourseID, l.Position, l.Title, l.Content, l.DurationMinutes); err != nil {
			return fmt.Errorf("insert lesson: %w", err)
		}
		_, err := tx.ExecContext(ctx, `UPDATE courses SET updated_at = ? WHERE id = ?`, db.now(), l.CourseID)
		return err
	})
}

// UpdateLesson rewrites a lesson of courseID.
func (db *DB) UpdateLesson(ctx context.Context, l *models.Lesson) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `UPDATE lessons SET position = ?, title = ?, content = ?, duration_minutes = ?
		WHERE id = ? AND course_id = ?`, l.Position, l.Title, l.Content, l.DurationMinutes, l.ID, l.CourseID)
	if err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return requireAffected(res)
}

// DeleteLesson removes a lesson and its completions. Progress of existing
// enrollments is recomputed on their next completion. The last lesson of a
// published course cannot be removed.
func (db *DB) DeleteLesson(ctx context.Context, courseID, lessonID string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM lessons WHERE id = ? AND course_id = ?`, lessonID, courseID)
		if err != nil {
			return fmt.Errorf("delete lesson: %w", err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		var left int
		var status string
		if err := tx.QueryRowContext(ctx, `SELECT c.status, (SELECT COUNT(*) FROM lessons WHERE course_id = c.id)
			FROM courses c WHERE c.id = ?`, courseID).Scan(&status, &left); err != nil {
			return fmt.Errorf("count lessons: %w", err)
		}
		if left == 0 && models.CourseStatus(status) == models.CoursePublished {
			return ErrNoLessons
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM lesson_completions WHERE lesson_id = ?`, lessonID)
		return err
	})
}

// CoursesTeaching returns up to limit published courses teaching any of
// skills, ordered by how many of them they teach.
func (db *DB) CoursesTeaching(ctx context.Context, skills []string, limit int) ([]models.Course, error) {
	if len(skills) == 0 || limit <= 0 {
		return []models.Course{}, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	in, args := buildInClause(skills)
	q := courseSelect + ` WHERE c.status = 'published'
			AND EXISTS (SELECT 1 FROM course_skills s WHERE s.course_id = c.id AND s.skill IN (` + in + `))
		ORDER BY (SELECT COUNT(*) FROM course_skills s WHERE s.course_id = c.id AND s.skill IN (` + in + `)) DESC,
			c.created_at DESC, c.id
		LIMIT ?`
	qargs := append(append(append([]interface{}{}, args...), args...), limit)
	rows, err := db.conn.QueryContext(ctx, q, qargs...)
	if err != nil {
		return nil, fmt.Errorf("courses teaching: %w", err)
	}
	return scanCourses(rows)
}
