// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package models

import (
	"sort"
	"strings"
	"time"
)

// Role is a user's platform role.
type Role string

const (
	RoleYouth       Role = "youth"
	RoleCompany     Role = "company"
	RoleInstitution Role = "institution"
	RoleSuperadmin  Role = "superadmin"
)

// AllRoles in display order.
var AllRoles = []Role{RoleYouth, RoleCompany, RoleInstitution, RoleSuperadmin}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleYouth, RoleCompany, RoleInstitution, RoleSuperadmin:
		return true
	}
	return false
}

// NeedsTenant reports whether users with this role belong to a tenant.
func (r Role) NeedsTenant() bool {
	return r == RoleCompany || r == RoleInstitution
}

// TenantKind returns the tenant kind a role's organization has.
func (r Role) TenantKind() TenantKind {
	switch r {
	case RoleCompany:
		return TenantCompany
	case RoleInstitution:
		return TenantInstitution
	}
	return ""
}

// UserStatus is active or suspended.
type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserSuspended
}

// TenantKind distinguishes employers from training providers.
type TenantKind string

const (
	TenantCompany     TenantKind = "company"
	TenantInstitution TenantKind = "institution"
)

// Tenant is an organization that owns jobs or courses.
type Tenant struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Kind        TenantKind `json:"kind"`
	Website     string     `json:"website,omitempty"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Verified    bool       `json:"verified"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// User is an account. PasswordHash never leaves the server.
type User struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenant_id,omitempty"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Role         Role       `json:"role"`
	Status       UserStatus `json:"status"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsActive reports whether the user may log in and write.
func (u *User) IsActive() bool {
	return u.Status == UserActive
}

// UserFilter selects users for the admin listing.
type UserFilter struct {
	Role   Role
	Status UserStatus
	Query  string
	Limit  int
	Offset int
}

// EducationLevel is ordered; see EducationRank.
type EducationLevel string

const (
	EducationNone       EducationLevel = "none"
	EducationSecondary  EducationLevel = "secondary"
	EducationVocational EducationLevel = "vocational"
	EducationBachelor   EducationLevel = "bachelor"
	EducationMaster     EducationLevel = "master"
	EducationDoctorate  EducationLevel = "doctorate"
)

var educationRanks = map[EducationLevel]int{
	EducationNone:       0,
	EducationSecondary:  1,
	EducationVocational: 2,
	EducationBachelor:   3,
	EducationMaster:     4,
	EducationDoctorate:  5,
}

// Valid reports whether e is a known level. Empty is not valid.
func (e EducationLevel) Valid() bool {
	_, ok := educationRanks[e]
	return ok
}

// Rank returns the position on the education ladder; unknown is 0.
func (e EducationLevel) Rank() int {
	return educationRanks[e]
}

// YouthProfile holds the matching inputs for a youth user.
type YouthProfile struct {
	UserID            string         `json:"user_id"`
	Headline          string         `json:"headline,omitempty"`
	Bio               string         `json:"bio,omitempty"`
	Location          string         `json:"location,omitempty"`
	Skills            []string       `json:"skills"`
	ExperienceYears   float64        `json:"experience_years"`
	EducationLevel    EducationLevel `json:"education_level"`
	PreferredJobTypes []JobType      `json:"preferred_job_types"`
	DesiredSalaryMin  *float64       `json:"desired_salary_min,omitempty"`
	Interests         []string       `json:"interests"`
	ResumeUploadID    string         `json:"resume_upload_id,omitempty"`
	OpenToRemote      bool           `json:"open_to_remote"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Completeness returns the share of profile sections filled, 0..100.
func (p *YouthProfile) Completeness() float64 {
	checks := []bool{
		p.Headline != "",
		p.Bio != "",
		p.Location != "",
		len(p.Skills) > 0,
		p.EducationLevel != "" && p.EducationLevel != EducationNone,
		len(p.PreferredJobTypes) > 0,
		len(p.Interests) > 0,
		p.ResumeUploadID != "",
	}
	filled := 0
	for _, ok := range checks {
		if ok {
			filled++
		}
	}
	return float64(filled) * 100 / float64(len(checks))
}

// NormalizeSkills trims, lowercases, dedupes and sorts skills.
// Empty entries are dropped. The result is never nil.
func NormalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.Join(strings.Fields(s), " "))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
