// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package models

// ScoreBreakdown holds each factor in [0,1] before weighting.
type ScoreBreakdown struct {
	Skills     float64 `json:"skills"`
	Location   float64 `json:"location"`
	Experience float64 `json:"experience"`
	Education  float64 `json:"education"`
	JobType    float64 `json:"job_type"`
	Salary     float64 `json:"salary"`
	Recency    float64 `json:"recency"`
}

// CourseSuggestion is a course that teaches a missing skill.
type CourseSuggestion struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	TenantID      string   `json:"tenant_id"`
	Level         string   `json:"level"`
	TeachesSkills []string `json:"teaches_skills"`
}

// Recommendation is one scored job.
type Recommendation struct {
	Job              *Job               `json:"job"`
	Score            float64            `json:"score"`
	Breakdown        ScoreBreakdown     `json:"breakdown"`
	MatchedSkills    []string           `json:"matched_skills"`
	MissingSkills    []string           `json:"missing_skills"`
	Reasons          []string           `json:"reasons"`
	SuggestedCourses []CourseSuggestion `json:"suggested_courses"`
}

// RecommendationResponse is the payload of the recommendations endpoint.
type RecommendationResponse struct {
	UserID          string           `json:"user_id"`
	Recommendations []Recommendation `json:"recommendations"`
	Evaluated       int              `json:"evaluated"`
	Excluded        int              `json:"excluded"`
}
