// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package models

import (
	"math"
	"time"
)

// CourseLevel is the difficulty of a course.
type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
)

// Valid reports whether l is a known level.
func (l CourseLevel) Valid() bool {
	return l == LevelBeginner || l == LevelIntermediate || l == LevelAdvanced
}

// CourseStatus is the lifecycle state of a course.
type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
)

// Course is a learning path owned by an institution tenant.
type Course struct {
	ID            string       `json:"id"`
	TenantID      string       `json:"tenant_id"`
	CreatedBy     string       `json:"created_by"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Skills        []string     `json:"skills"`
	Level         CourseLevel  `json:"level"`
	DurationHours float64      `json:"duration_hours"`
	Status        CourseStatus `json:"status"`
	LessonCount   int          `json:"lesson_count"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	Lessons []Lesson `json:"lessons,omitempty"`
}

// CourseFilter selects courses for listings.
type CourseFilter struct {
	Query    string
	Skill    string
	Level    CourseLevel
	TenantID string
	// Statuses empty means published only.
	Statuses []CourseStatus
	// AnySkill matches courses teaching at least one of these skills.
	AnySkill []string
	Limit    int
	Offset   int
}

// Lesson is one ordered unit of a course.
type Lesson struct {
	ID              string `json:"id"`
	CourseID        string `json:"course_id"`
	Position        int    `json:"position"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	DurationMinutes int    `json:"duration_minutes"`
}

// EnrollmentStatus is the state of an enrollment.
type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
	EnrollmentDropped   EnrollmentStatus = "dropped"
)

// Enrollment links a youth to a course.
type Enrollment struct {
	ID               string           `json:"id"`
	CourseID         string           `json:"course_id"`
	UserID           string           `json:"user_id"`
	Status           EnrollmentStatus `json:"status"`
	CompletedLessons []string         `json:"completed_lessons"`
	Progress         int              `json:"progress"`
	EnrolledAt       time.Time        `json:"enrolled_at"`
	CompletedAt      *time.Time       `json:"completed_at,omitempty"`

	CourseTitle string `json:"course_title,omitempty"`
	UserName    string `json:"user_name,omitempty"`
}

// CourseProgress returns completed/total as a rounded percentage.
// Zero lessons yields 0.
func CourseProgress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return int(math.Round(float64(completed) * 100 / float64(total)))
}
