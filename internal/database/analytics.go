// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package database

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/launchpad/internal/models"
)

// analyticsDays is the window of the per-day series.
const analyticsDays = 30

func (db *DB) countBy(ctx context.Context, query string, args ...interface{}) ([]models.CountByKey, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.CountByKey{}
	for rows.Next() {
		var c models.CountByKey
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (db *DB) scalarInt(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// dailySeries runs a (day, count) query and fills missing days with zero.
// The series ends today (UTC) and covers analyticsDays days.
func (db *DB) dailySeries(ctx context.Context, query string, args ...interface{}) ([]models.DailyCount, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	got := make(map[string]int)
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		got[day] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	today := db.now().Truncate(24 * time.Hour)
	out := make([]models.DailyCount, 0, analyticsDays)
	for i := analyticsDays - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i).Format("2006-01-02")
		out = append(out, models.DailyCount{Date: d, Count: got[d]})
	}
	return out, nil
}

// seriesStart is the first instant covered by dailySeries.
func (db *DB) seriesStart() time.Time {
	return db.now().Truncate(24*time.Hour).AddDate(0, 0, -(analyticsDays - 1))
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// withStatuses returns counts for every status in order, zero-filled.
func withStatuses[T ~string](counts []models.CountByKey, statuses []T) []models.CountByKey {
	m := make(map[string]int, len(counts))
	for _, c := range counts {
		m[c.Key] = c.Count
	}
	out := make([]models.CountByKey, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, models.CountByKey{Key: string(s), Count: m[string(s)]})
	}
	return out
}

// YouthDashboard aggregates userID's activity. ProfileCompleteness and
// TopRecommendationScore are filled in by the caller.
func (db *DB) YouthDashboard(ctx context.Context, userID string) (d *models.YouthDashboard, err error) {
	start := time.Now()
	defer func() { observe("analytics_youth", "applications", start, err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	d = &models.YouthDashboard{}
	byStatus, err := db.countBy(ctx, `SELECT status, COUNT(*) FROM applications WHERE user_id = ? GROUP BY status`, userID)
	if err != nil {
		return nil, fmt.Errorf("applications by status: %w", err)
	}
	d.ApplicationsByStatus = withStatuses(byStatus, models.AllApplicationStatuses)
	for _, c := range byStatus {
		d.TotalApplications += c.Count
	}

	var avg float64
	if err := db.conn.QueryRowContext(ctx, `SELECT
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COALESCE(AVG(progress) FILTER (WHERE status <> 'dropped'), 0)
		FROM enrollments WHERE user_id = ?`, userID).Scan(&d.ActiveEnrollments, &d.CompletedEnrollments, &avg); err != nil {
		return nil, fmt.Errorf("enrollments: %w", err)
	}
	d.AverageCourseProgress = round1(avg)

	if d.SavedJobs, err = db.scalarInt(ctx, `SELECT COUNT(*) FROM saved_jobs WHERE user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("saved jobs: %w", err)
	}
	if d.UnreadNotifications, err = db.scalarInt(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read_at IS NULL`, userID); err != nil {
		return nil, fmt.Errorf("unread notifications: %w", err)
	}
	return d, nil
}

// CompanyDashboard aggregates a company tenant's hiring activity.
func (db *DB) CompanyDashboard(ctx context.Context, tenantID string) (d *models.CompanyDashboard, err error) {
	start := time.Now()
	defer func() { observe("analytics_company", "applications", start, err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	d = &models.CompanyDashboard{}
	jobs, err := db.countBy(ctx, `SELECT status, COUNT(*) FROM jobs WHERE tenant_id = ? GROUP BY status`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("jobs by status: %w", err)
	}
	d.JobsByStatus = withStatuses(jobs, []models.JobStatus{models.JobDraft, models.JobPublished, models.JobClosed})

	funnel, err := db.countBy(ctx, `SELECT status, COUNT(*) FROM applications WHERE tenant_id = ? GROUP BY status`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("application funnel: %w", err)
	}
	d.Funnel = withStatuses(funnel, models.AllApplicationStatuses)
	for _, c := range funnel {
		d.TotalApplications += c.Count
	}

	rows, err := db.conn.QueryContext(ctx, `SELECT j.id, j.title, COUNT(a.id) AS n
		FROM jobs j LEFT JOIN applications a ON a.job_id = j.id
		WHERE j.tenant_id = ?
		GROUP BY j.id, j.title
		ORDER BY n DESC, j.title, j.id
		LIMIT 10`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("applications per job: %w", err)
	}
	d.ApplicationsPerJob = []models.JobApplicationCount{}
	for rows.Next() {
		var c models.JobApplicationCount
		if err := rows.Scan(&c.JobID, &c.Title, &c.Applications); err != nil {
			closeQuietly(rows)
			return nil, err
		}
		d.ApplicationsPerJob = append(d.ApplicationsPerJob, c)
	}
	rowsErr := rows.Err()
	closeWithLog(rows, "applications per job rows")
	if rowsErr != nil {
		return nil, rowsErr
	}

	var avgDays float64
	if err := db.conn.QueryRowContext(ctx, `SELECT COALESCE(AVG(date_diff('second', a.created_at, h.created_at)) / 86400.0, 0)
		FROM applications a
		JOIN application_status_history h ON h.application_id = a.id AND h.to_status = 'hired'
		WHERE a.tenant_id = ?`, tenantID).Scan(&avgDays); err != nil {
		return nil, fmt.Errorf("days to hire: %w", err)
	}
	d.AvgDaysToHire = round1(avgDays)

	d.ApplicationsPerDay, err = db.dailySeries(ctx, `SELECT strftime(created_at, '%Y-%m-%d') AS day, COUNT(*)
		FROM applications WHERE tenant_id = ? AND created_at >= ? GROUP BY day`, tenantID, db.seriesStart())
	if err != nil {
		return nil, fmt.Errorf("applications per day: %w", err)
	}
	return d, nil
}

// InstitutionDashboard aggregates an institution tenant's courses.
func (db *DB) InstitutionDashboard(ctx context.Context, tenantID string) (d *models.InstitutionDashboard, err error) {
	start := time.Now()
	defer func() { observe("analytics_institution", "enrollments", start, err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	d = &models.InstitutionDashboard{}
	courses, err := db.countBy(ctx, `SELECT status, COUNT(*) FROM courses WHERE tenant_id = ? GROUP BY status`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("courses by status: %w", err)
	}
	d.CoursesByStatus = withStatuses(courses, []models.CourseStatus{models.CourseDraft, models.CoursePublished, models.CourseArchived})

	var completed int
	var avg float64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(*) FILTER (WHERE e.status = 'completed'),
			COALESCE(AVG(e.progress), 0)
		FROM enrollments e JOIN courses c ON c.id = e.course_id
		WHERE c.tenant_id = ?`, tenantID).Scan(&d.TotalEnrollments, &completed, &avg); err != nil {
		return nil, fmt.Errorf("enrollment totals: %w", err)
	}
	if d.TotalEnrollments > 0 {
		d.CompletionRate = round1(float64(completed) * 100 / float64(d.TotalEnrollments))
	}
	d.AverageProgress = round1(avg)

	rows, err := db.conn.QueryContext(ctx, `SELECT c.id, c.title, COUNT(e.id) AS n,
			COUNT(e.id) FILTER (WHERE e.status = 'completed')
		FROM courses c LEFT JOIN enrollments e ON e.course_id = c.id
		WHERE c.tenant_id = ?
		GROUP BY c.id, c.title
		ORDER BY n DESC, c.title, c.id
		LIMIT 10`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("per course: %w", err)
	}
	d.PerCourse = []models.CourseEnrollmentStats{}
	for rows.Next() {
		var s models.CourseEnrollmentStats
		if err := rows.Scan(&s.CourseID, &s.Title, &s.Enrollments, &s.Completions); err != nil {
			closeQuietly(rows)
			return nil, err
		}
		if s.Enrollments > 0 {
			s.CompletionRate = round1(float64(s.Completions) * 100 / float64(s.Enrollments))
		}
		d.PerCourse = append(d.PerCourse, s)
	}
	rowsErr := rows.Err()
	closeWithLog(rows, "per course rows")
	if rowsErr != nil {
		return nil, rowsErr
	}

	d.EnrollmentsPerDay, err = db.dailySeries(ctx, `SELECT strftime(e.enrolled_at, '%Y-%m-%d') AS day, COUNT(*)
		FROM enrollments e JOIN courses c ON c.id = e.course_id
		WHERE c.tenant_id = ? AND e.enrolled_at >= ? GROUP BY day`, tenantID, db.seriesStart())
	if err != nil {
		return nil, fmt.Errorf("enrollments per day: %w", err)
	}
	return d, nil
}

// topSkillsLimit bounds the skill lists on the platform dashboard.
const topSkillsLimit = 10

// PlatformDashboard aggregates the whole platform.
func (db *DB) PlatformDashboard(ctx context.Context) (d *models.PlatformDashboard, err error) {
	start := time.Now()
	defer func() { observe("analytics_platform", "users", start, err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	d = &models.PlatformDashboard{}
	users, err := db.countBy(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("users by role: %w", err)
	}
	d.UsersByRole = withStatuses(users, models.AllRoles)

	tenants, err := db.countBy(ctx, `SELECT kind, COUNT(*) FROM tenants GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("tenants by kind: %w", err)
	}
	d.TenantsByKind = withStatuses(tenants, []models.TenantKind{models.TenantCompany, models.TenantInstitution})

	jobs, err := db.countBy(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("jobs by status: %w", err)
	}
	d.JobsByStatus = withStatuses(jobs, []models.JobStatus{models.JobDraft, models.JobPublished, models.JobClosed})

	apps, err := db.countBy(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("applications by status: %w", err)
	}
	d.ApplicationsByStatus = withStatuses(apps, models.AllApplicationStatuses)

	if d.TotalEnrollments, err = db.scalarInt(ctx, `SELECT COUNT(*) FROM enrollments`); err != nil {
		return nil, fmt.Errorf("enrollments: %w", err)
	}
	if d.MessagesSent, err = db.scalarInt(ctx, `SELECT COUNT(*) FROM messages`); err != nil {
		return nil, fmt.Errorf("messages: %w", err)
	}

	d.SignupsPerDay, err = db.dailySeries(ctx, `SELECT strftime(created_at, '%Y-%m-%d') AS day, COUNT(*)
		FROM users WHERE created_at >= ? GROUP BY day`, db.seriesStart())
	if err != nil {
		return nil, fmt.Errorf("signups per day: %w", err)
	}

	demand, err := db.countBy(ctx, `SELECT s.skill, COUNT(*) AS n
		FROM job_skills s JOIN jobs j ON j.id = s.job_id
		WHERE s.required AND j.status = 'published'
		GROUP BY s.skill ORDER BY n DESC, s.skill`)
	if err != nil {
		return nil, fmt.Errorf("demanded skills: %w", err)
	}
	supply, err := db.countBy(ctx, `SELECT s.skill, COUNT(*) AS n
		FROM profile_skills s JOIN users u ON u.id = s.user_id
		WHERE u.role = 'youth'
		GROUP BY s.skill ORDER BY n DESC, s.skill`)
	if err != nil {
		return nil, fmt.Errorf("supplied skills: %w", err)
	}
	d.TopDemandedSkills = headCounts(demand, topSkillsLimit)
	d.TopSuppliedSkills = headCounts(supply, topSkillsLimit)
	d.SkillGaps = SkillGaps(demand, supply, topSkillsLimit)
	return d, nil
}

func headCounts(c []models.CountByKey, n int) []models.CountByKey {
	if len(c) > n {
		return c[:n]
	}
	return c
}

// SkillGaps lists demanded skills whose demand exceeds youth supply,
// largest gap first.
func SkillGaps(demand, supply []models.CountByKey, limit int) []models.SkillGap {
	have := make(map[string]int, len(supply))
	for _, s := range supply {
		have[s.Key] = s.Count
	}
	gaps := []models.SkillGap{}
	for _, d := range demand {
		g := models.SkillGap{Skill: d.Key, Demand: d.Count, Supply: have[d.Key]}
		g.Gap = g.Demand - g.Supply
		if g.Gap > 0 {
			gaps = append(gaps, g)
		}
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].Gap != gaps[j].Gap {
			return gaps[i].Gap > gaps[j].Gap
		}
		return gaps[i].Skill < gaps[j].Skill
	})
	if len(gaps) > limit {
		gaps = gaps[:limit]
	}
	return gaps
}
