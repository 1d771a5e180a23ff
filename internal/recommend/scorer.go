// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package recommend

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/models"
)

// Weights are the relative factor weights. They do not need to sum to 1.
type Weights struct {
	Skills     float64
	Location   float64
	Experience float64
	Education  float64
	JobType    float64
	Salary     float64
	Recency    float64
}

// DefaultWeights returns the default factor weights.
func DefaultWeights() Weights {
	return Weights{
		Skills:     0.35,
		Location:   0.15,
		Experience: 0.15,
		Education:  0.10,
		JobType:    0.10,
		Salary:     0.05,
		Recency:    0.10,
	}
}

// Sum returns the total weight.
//
//nolint:gocritic // value receiver keeps Weights immutable
func (w Weights) Sum() float64 {
	return w.Skills + w.Location + w.Experience + w.Education + w.JobType + w.Salary + w.Recency
}

// Validate rejects negative weights and a zero sum.
//
//nolint:gocritic // value receiver keeps Weights immutable
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"skills": w.Skills, "location": w.Location, "experience": w.Experience,
		"education": w.Education, "job_type": w.JobType, "salary": w.Salary,
		"recency": w.Recency,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("weight %s must be non-negative, got %v", name, v)
		}
	}
	if w.Sum() <= 0 {
		return fmt.Errorf("weights must have a positive sum")
	}
	return nil
}

// weighted returns Σ(w_i * f_i) / Σ(w_i).
//
//nolint:gocritic // value receiver keeps Weights immutable
func (w Weights) weighted(b models.ScoreBreakdown) float64 {
	return (w.Skills*b.Skills +
		w.Location*b.Location +
		w.Experience*b.Experience +
		w.Education*b.Education +
		w.JobType*b.JobType +
		w.Salary*b.Salary +
		w.Recency*b.Recency) / w.Sum()
}

// Scorer scores a single job against a youth profile. It holds no mutable
// state and is safe for concurrent use.
type Scorer struct {
	weights       Weights
	penalty       float64
	bonus         float64
	recencyWindow time.Duration
}

// NewScorer builds a scorer from configuration, filling zero values with
// defaults.
func NewScorer(cfg config.RecommendConfig) (*Scorer, error) {
	w := Weights(cfg.Weights)
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	s := &Scorer{
		weights:       w,
		penalty:       cfg.MissingRequiredPenalty,
		bonus:         cfg.FullMatchBonus,
		recencyWindow: cfg.RecencyWindow,
	}
	if s.penalty <= 0 || s.penalty > 1 {
		s.penalty = 0.85
	}
	if s.bonus < 1 {
		s.bonus = 1.1
	}
	if s.recencyWindow <= 0 {
		s.recencyWindow = 30 * 24 * time.Hour
	}
	return s, nil
}

// Score returns the recommendation for job without course suggestions.
func (s *Scorer) Score(profile *models.YouthProfile, job *models.Job, now time.Time) models.Recommendation {
	skills := skillsFactor(newSkillSet(profile.Skills), job.RequiredSkills, job.PreferredSkills)

	b := models.ScoreBreakdown{
		Skills:     skills.score,
		Location:   locationFactor(profile, job),
		Experience: experienceFactor(profile.ExperienceYears, job.MinExperienceYears),
		Education:  educationFactor(profile.EducationLevel, job.EducationLevel),
		JobType:    jobTypeFactor(profile.PreferredJobTypes, job.JobType),
		Salary:     salaryFactor(profile.DesiredSalaryMin, job.SalaryMin, job.SalaryMax),
		Recency:    recencyFactor(job.PublishedAt, now, s.recencyWindow),
	}

	score := 100 * s.weights.weighted(b)
	if missing := len(skills.missingRequired); missing > 0 {
		score *= math.Pow(s.penalty, float64(missing))
	} else if skills.requiredTotal > 0 {
		score *= s.bonus
	}
	score = math.Max(0, math.Min(100, score))

	rec := models.Recommendation{
		Job:              job,
		Score:            math.Round(score*10) / 10,
		Breakdown:        roundBreakdown(b),
		MatchedSkills:    nonNil(skills.matched),
		MissingSkills:    nonNil(skills.missingRequired),
		SuggestedCourses: []models.CourseSuggestion{},
	}
	rec.Reasons = reasons(profile, job, b, skills)
	return rec
}

func roundBreakdown(b models.ScoreBreakdown) models.ScoreBreakdown {
	r := func(f float64) float64 { return math.Round(f*1000) / 1000 }
	return models.ScoreBreakdown{
		Skills:     r(b.Skills),
		Location:   r(b.Location),
		Experience: r(b.Experience),
		Education:  r(b.Education),
		JobType:    r(b.JobType),
		Salary:     r(b.Salary),
		Recency:    r(b.Recency),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// reasons explains the strongest factors in plain language.
//
//nolint:gocritic // breakdown passed by value
func reasons(p *models.YouthProfile, j *models.Job, b models.ScoreBreakdown, m skillMatch) []string {
	out := []string{}
	switch {
	case m.requiredTotal > 0 && len(m.missingRequired) == 0:
		out = append(out, fmt.Sprintf("You have all %d required skills", m.requiredTotal))
	case m.requiredTotal > 0:
		out = append(out, fmt.Sprintf("You have %d of %d required skills",
			m.requiredTotal-len(m.missingRequired), m.requiredTotal))
	case len(m.matched) > 0:
		out = append(out, fmt.Sprintf("Matches %d of your skills", len(m.matched)))
	}

	switch {
	case j.Remote && p.OpenToRemote:
		out = append(out, "Remote position")
	case b.Location == 1:
		out = append(out, "Located in "+j.Location)
	case b.Location == regionMatch:
		out = append(out, "In your region")
	}

	if j.MinExperienceYears > 0 && b.Experience == 1 {
		out = append(out, "You meet the experience requirement")
	}
	if j.EducationLevel != "" && j.EducationLevel != models.EducationNone && b.Education == 1 {
		out = append(out, "You meet the education requirement")
	}
	if len(p.PreferredJobTypes) > 0 && b.JobType == 1 {
		out = append(out, "Matches your preferred job type")
	}
	if p.DesiredSalaryMin != nil && b.Salary == 1 {
		out = append(out, "Pays at or above your desired salary")
	}
	if b.Recency >= 0.9 {
		out = append(out, "Recently posted")
	}
	return out
}
