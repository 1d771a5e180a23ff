// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package models

import (
	"time"
)

// ApplicationStatus is a state in the hiring pipeline.
type ApplicationStatus string

const (
	AppSubmitted   ApplicationStatus = "submitted"
	AppReviewing   ApplicationStatus = "reviewing"
	AppShortlisted ApplicationStatus = "shortlisted"
	AppInterview   ApplicationStatus = "interview"
	AppOffered     ApplicationStatus = "offered"
	AppHired       ApplicationStatus = "hired"
	AppRejected    ApplicationStatus = "rejected"
	AppWithdrawn   ApplicationStatus = "withdrawn"
)

// ApplicationPipeline is the forward order used by funnels.
var ApplicationPipeline = []ApplicationStatus{
	AppSubmitted, AppReviewing, AppShortlisted, AppInterview, AppOffered, AppHired,
}

// AllApplicationStatuses includes the terminal side exits.
var AllApplicationStatuses = append(append([]ApplicationStatus{}, ApplicationPipeline...), AppRejected, AppWithdrawn)

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	for _, v := range AllApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s ApplicationStatus) IsTerminal() bool {
	return s == AppHired || s == AppRejected || s == AppWithdrawn
}

func (s ApplicationStatus) pipelineIndex() int {
	for i, v := range ApplicationPipeline {
		if v == s {
			return i
		}
	}
	return -1
}

// CanTransition reports whether actor may move an application from s to next.
// Companies move strictly forward along the pipeline or reject; applicants may
// only withdraw. Superadmins follow the company rules.
func (s ApplicationStatus) CanTransition(next ApplicationStatus, actor Role) bool {
	if s.IsTerminal() || s == next || !next.Valid() {
		return false
	}
	switch actor {
	case RoleYouth:
		return next == AppWithdrawn
	case RoleCompany, RoleSuperadmin:
		if next == AppRejected {
			return true
		}
		from, to := s.pipelineIndex(), next.pipelineIndex()
		return from >= 0 && to > from
	}
	return false
}

// Application is a youth's application to a job.
type Application struct {
	ID             string            `json:"id"`
	JobID          string            `json:"job_id"`
	UserID         string            `json:"user_id"`
	TenantID       string            `json:"tenant_id"`
	CoverLetter    string            `json:"cover_letter,omitempty"`
	ResumeUploadID string            `json:"resume_upload_id,omitempty"`
	Status         ApplicationStatus `json:"status"`
	Notes          string            `json:"notes,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	JobTitle      string `json:"job_title,omitempty"`
	ApplicantName string `json:"applicant_name,omitempty"`
}

// ApplicationFilter selects applications for listings.
type ApplicationFilter struct {
	UserID   string
	TenantID string
	JobID    string
	Status   ApplicationStatus
	Limit    int
	Offset   int
}
