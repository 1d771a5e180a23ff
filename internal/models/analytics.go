// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package models

// CountByKey is a labelled count used by every dashboard.
type CountByKey struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// DailyCount is a per-day bucket. Date is YYYY-MM-DD.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// YouthDashboard summarizes one youth user's activity.
type YouthDashboard struct {
	ApplicationsByStatus   []CountByKey `json:"applications_by_status"`
	TotalApplications      int          `json:"total_applications"`
	ActiveEnrollments      int          `json:"active_enrollments"`
	CompletedEnrollments   int          `json:"completed_enrollments"`
	AverageCourseProgress  float64      `json:"average_course_progress"`
	ProfileCompleteness    float64      `json:"profile_completeness"`
	SavedJobs              int          `json:"saved_jobs"`
	TopRecommendationScore float64      `json:"top_recommendation_score"`
	UnreadNotifications    int          `json:"unread_notifications"`
}

// JobApplicationCount is applications received by a job.
type JobApplicationCount struct {
	JobID        string `json:"job_id"`
	Title        string `json:"title"`
	Applications int    `json:"applications"`
}

// CompanyDashboard summarizes a company tenant's hiring.
type CompanyDashboard struct {
	JobsByStatus       []CountByKey          `json:"jobs_by_status"`
	TotalApplications  int                   `json:"total_applications"`
	ApplicationsPerJob []JobApplicationCount `json:"applications_per_job"`
	Funnel             []CountByKey          `json:"funnel"`
	AvgDaysToHire      float64               `json:"avg_days_to_hire"`
	ApplicationsPerDay []DailyCount          `json:"applications_per_day"`
}

// CourseEnrollmentStats is enrollment figures for one course.
type CourseEnrollmentStats struct {
	CourseID       string  `json:"course_id"`
	Title          string  `json:"title"`
	Enrollments    int     `json:"enrollments"`
	Completions    int     `json:"completions"`
	CompletionRate float64 `json:"completion_rate"`
}

// InstitutionDashboard summarizes an institution tenant's courses.
type InstitutionDashboard struct {
	CoursesByStatus   []CountByKey            `json:"courses_by_status"`
	TotalEnrollments  int                     `json:"total_enrollments"`
	CompletionRate    float64                 `json:"completion_rate"`
	PerCourse         []CourseEnrollmentStats `json:"per_course"`
	EnrollmentsPerDay []DailyCount            `json:"enrollments_per_day"`
	AverageProgress   float64                 `json:"average_progress"`
}

// SkillGap compares demand for a skill with youth supply.
type SkillGap struct {
	Skill  string `json:"skill"`
	Demand int    `json:"demand"`
	Supply int    `json:"supply"`
	Gap    int    `json:"gap"`
}

// PlatformDashboard is the superadmin overview.
type PlatformDashboard struct {
	UsersByRole          []CountByKey `json:"users_by_role"`
	TenantsByKind        []CountByKey `json:"tenants_by_kind"`
	JobsByStatus         []CountByKey `json:"jobs_by_status"`
	ApplicationsByStatus []CountByKey `json:"applications_by_status"`
	TotalEnrollments     int          `json:"total_enrollments"`
	MessagesSent         int          `json:"messages_sent"`
	SignupsPerDay        []DailyCount `json:"signups_per_day"`
	TopDemandedSkills    []CountByKey `json:"top_demanded_skills"`
	TopSuppliedSkills    []CountByKey `json:"top_supplied_skills"`
	SkillGaps            []SkillGap   `json:"skill_gaps"`
}
