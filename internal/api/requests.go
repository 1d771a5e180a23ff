// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"time"

	"github.com/tomtom215/launchpad/internal/models"
)

// Request bodies. Validation tags use go-playground/validator syntax plus
// the custom tags registered by the validation package (signuprole,
// jobtype, edulevel, skill).

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email            string `json:"email" validate:"required,email,max=254"`
	Password         string `json:"password" validate:"required,min=8,max=128"`
	Name             string `json:"name" validate:"required,min=1,max=100"`
	Role             string `json:"role" validate:"required,signuprole"`
	OrganizationName string `json:"organization_name" validate:"omitempty,max=200"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// ProfileRequest is the body of PUT /profile.
type ProfileRequest struct {
	Headline          string   `json:"headline" validate:"max=200"`
	Bio               string   `json:"bio" validate:"max=2000"`
	Location          string   `json:"location" validate:"max=200"`
	Skills            []string `json:"skills" validate:"max=50,dive,skill"`
	ExperienceYears   float64  `json:"experience_years" validate:"gte=0,lte=60"`
	EducationLevel    string   `json:"education_level" validate:"omitempty,edulevel"`
	PreferredJobTypes []string `json:"preferred_job_types" validate:"max=6,dive,jobtype"`
	DesiredSalaryMin  *float64 `json:"desired_salary_min" validate:"omitempty,gte=0"`
	Interests         []string `json:"interests" validate:"max=20,dive,min=1,max=64"`
	ResumeUploadID    string   `json:"resume_upload_id" validate:"omitempty,max=64"`
	OpenToRemote      bool     `json:"open_to_remote"`
}

// TenantRequest is the body of PUT /tenants/{id}.
type TenantRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Website     string `json:"website" validate:"omitempty,http_url,max=500"`
	Description string `json:"description" validate:"max=5000"`
	Location    string `json:"location" validate:"max=200"`
}

// UserStatusRequest is the body of PUT /admin/users/{id}/status.
type UserStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended"`
}

// VerifyTenantRequest is the optional body of POST /admin/tenants/{id}/verify.
type VerifyTenantRequest struct {
	Verified *bool `json:"verified"`
}

// BroadcastRequest is the body of POST /admin/notifications/broadcast.
// An empty Role reaches every active user.
type BroadcastRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
	Body  string `json:"body" validate:"required,min=1,max=2000"`
	Link  string `json:"link" validate:"omitempty,max=500"`
	Role  string `json:"role" validate:"omitempty,role"`
}

// JobRequest is the body of POST /jobs and PUT /jobs/{id}.
type JobRequest struct {
	Title              string     `json:"title" validate:"required,min=3,max=200"`
	Description        string     `json:"description" validate:"required,min=10,max=20000"`
	Location           string     `json:"location" validate:"max=200"`
	Remote             bool       `json:"remote"`
	JobType            string     `json:"job_type" validate:"required,jobtype"`
	RequiredSkills     []string   `json:"required_skills" validate:"max=30,dive,skill"`
	PreferredSkills    []string   `json:"preferred_skills" validate:"max=30,dive,skill"`
	MinExperienceYears float64    `json:"min_experience_years" validate:"gte=0,lte=50"`
	EducationLevel     string     `json:"education_level" validate:"omitempty,edulevel"`
	SalaryMin          *float64   `json:"salary_min" validate:"omitempty,gte=0"`
	SalaryMax          *float64   `json:"salary_max" validate:"omitempty,gte=0"`
	Currency           string     `json:"currency" validate:"omitempty,len=3,alpha"`
	Deadline           *time.Time `json:"deadline"`
	// Status is draft (default) or published; ignored on update.
	Status string `json:"status" validate:"omitempty,oneof=draft published"`
}

// ApplyRequest is the body of POST /jobs/{id}/apply.
type ApplyRequest struct {
	CoverLetter    string `json:"cover_letter" validate:"max=5000"`
	ResumeUploadID string `json:"resume_upload_id" validate:"omitempty,max=64"`
}

// ApplicationStatusRequest is the body of PATCH /applications/{id}/status.
type ApplicationStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"max=2000"`
}

// CourseRequest is the body of POST /courses and PUT /courses/{id}.
type CourseRequest struct {
	Title         string   `json:"title" validate:"required,min=3,max=200"`
	Description   string   `json:"description" validate:"max=20000"`
	Skills        []string `json:"skills" validate:"max=30,dive,skill"`
	Level         string   `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	DurationHours float64  `json:"duration_hours" validate:"gte=0,lte=2000"`
}

// LessonRequest is the body of lesson create and update.
type LessonRequest struct {
	Title           string `json:"title" validate:"required,min=1,max=200"`
	Content         string `json:"content" validate:"max=100000"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0,lte=1440"`
	// Position 0 appends on create and keeps the current slot on update.
	Position int `json:"position" validate:"gte=0"`
}

// StartConversationRequest is the body of POST /conversations.
type StartConversationRequest struct {
	RecipientID string `json:"recipient_id" validate:"required,max=64"`
	Body        string `json:"body" validate:"required"`
}

// MessageRequest is the body of POST /conversations/{id}/messages.
type MessageRequest struct {
	Body string `json:"body" validate:"required"`
}

// PreferenceToggle is one entry of PUT /notifications/preferences.
type PreferenceToggle struct {
	Type    string `json:"type" validate:"required"`
	Channel string `json:"channel" validate:"required"`
	Enabled bool   `json:"enabled"`
}

// PreferencesRequest is the body of PUT /notifications/preferences.
type PreferencesRequest struct {
	Preferences []PreferenceToggle `json:"preferences" validate:"required,min=1,max=50,dive"`
}

// PreferencePatchRequest is the body of PATCH /notifications/preferences/{type}/{channel}.
type PreferencePatchRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// toJob copies the editable fields onto j.
func (req *JobRequest) toJob(j *models.Job) {
	j.Title = req.Title
	j.Description = req.Description
	j.Location = req.Location
	j.Remote = req.Remote
	j.JobType = models.JobType(req.JobType)
	j.RequiredSkills = models.NormalizeSkills(req.RequiredSkills)
	j.PreferredSkills = models.NormalizeSkills(req.PreferredSkills)
	j.MinExperienceYears = req.MinExperienceYears
	j.EducationLevel = models.EducationLevel(req.EducationLevel)
	if j.EducationLevel == "" {
		j.EducationLevel = models.EducationNone
	}
	j.SalaryMin = req.SalaryMin
	j.SalaryMax = req.SalaryMax
	j.Currency = req.Currency
	j.Deadline = req.Deadline
}

// toCourse copies the editable fields onto c.
func (req *CourseRequest) toCourse(c *models.Course) {
	c.Title = req.Title
	c.Description = req.Description
	c.Skills = models.NormalizeSkills(req.Skills)
	c.Level = models.CourseLevel(req.Level)
	c.DurationHours = req.DurationHours
}
