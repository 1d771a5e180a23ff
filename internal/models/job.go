// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package models

import (
	"time"
)

// JobType is the engagement type of a posting.
type JobType string

const (
	JobFullTime       JobType = "full_time"
	JobPartTime       JobType = "part_time"
	JobInternship     JobType = "internship"
	JobApprenticeship JobType = "apprenticeship"
	JobVolunteer      JobType = "volunteer"
	JobFreelance      JobType = "freelance"
)

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	switch t {
	case JobFullTime, JobPartTime, JobInternship, JobApprenticeship, JobVolunteer, JobFreelance:
		return true
	}
	return false
}

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobDraft     JobStatus = "draft"
	JobPublished JobStatus = "published"
	JobClosed    JobStatus = "closed"
)

// Valid reports whether s is a known job status.
func (s JobStatus) Valid() bool {
	return s == JobDraft || s == JobPublished || s == JobClosed
}

// Job is a posting owned by a company tenant.
type Job struct {
	ID                 string         `json:"id"`
	TenantID           string         `json:"tenant_id"`
	CompanyName        string         `json:"company_name,omitempty"`
	PostedBy           string         `json:"posted_by"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Location           string         `json:"location"`
	Remote             bool           `json:"remote"`
	JobType            JobType        `json:"job_type"`
	RequiredSkills     []string       `json:"required_skills"`
	PreferredSkills    []string       `json:"preferred_skills"`
	MinExperienceYears float64        `json:"min_experience_years"`
	EducationLevel     EducationLevel `json:"education_level"`
	SalaryMin          *float64       `json:"salary_min,omitempty"`
	SalaryMax          *float64       `json:"salary_max,omitempty"`
	Currency           string         `json:"currency,omitempty"`
	Deadline           *time.Time     `json:"deadline,omitempty"`
	Status             JobStatus      `json:"status"`
	SourceURL          string         `json:"source_url,omitempty"`
	PublishedAt        *time.Time     `json:"published_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// IsOpen reports whether the job accepts applications at now.
func (j *Job) IsOpen(now time.Time) bool {
	if j.Status != JobPublished {
		return false
	}
	return j.Deadline == nil || !now.After(*j.Deadline)
}

// JobFilter selects jobs for listings.
type JobFilter struct {
	Query    string
	Location string
	JobType  JobType
	Remote   *bool
	Skill    string
	TenantID string
	// Statuses empty means published only.
	Statuses []JobStatus
	// IncludeExpired keeps jobs past their deadline.
	IncludeExpired bool
	Limit          int
	Offset         int
}

// SavedJob is a youth bookmark.
type SavedJob struct {
	UserID    string    `json:"user_id"`
	JobID     string    `json:"job_id"`
	CreatedAt time.Time `json:"created_at"`
	Job       *Job      `json:"job,omitempty"`
}
