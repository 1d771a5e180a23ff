// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package recommend

import (
	"strings"
	"time"

	"github.com/tomtom215/launchpad/internal/models"
)

// neutral is the factor value when one side gives no signal.
const neutral = 0.5

// regionMatch is the location factor for the same region, different city.
const regionMatch = 0.6

// skillMatch is the result of comparing profile skills against a job.
type skillMatch struct {
	score           float64
	matched         []string
	missingRequired []string
	requiredTotal   int
}

// skillsFactor weighs required skills twice as much as preferred ones:
// (2*matchedRequired + matchedPreferred) / (2*|required| + |preferred|).
// A job with no skills listed scores neutral.
func skillsFactor(have skillSet, required, preferred []string) skillMatch {
	required = dedupeCanonical(required)
	preferred = dedupeCanonical(preferred)
	// A skill listed as both required and preferred counts once, as required.
	preferred = without(preferred, required)

	m := skillMatch{requiredTotal: len(required)}
	if len(required)+len(preferred) == 0 {
		m.score = neutral
		return m
	}

	matchedRequired := 0
	for _, s := range required {
		if have.has(s) {
			matchedRequired++
			m.matched = append(m.matched, s)
		} else {
			m.missingRequired = append(m.missingRequired, s)
		}
	}
	matchedPreferred := 0
	for _, s := range preferred {
		if have.has(s) {
			matchedPreferred++
			m.matched = append(m.matched, s)
		}
	}

	m.score = float64(2*matchedRequired+matchedPreferred) /
		float64(2*len(required)+len(preferred))
	return m
}

func dedupeCanonical(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		c := CanonicalSkill(s)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func without(list, remove []string) []string {
	if len(remove) == 0 {
		return list
	}
	drop := make(map[string]struct{}, len(remove))
	for _, s := range remove {
		drop[s] = struct{}{}
	}
	out := list[:0:0]
	for _, s := range list {
		if _, ok := drop[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// locationFactor scores where the job is against where the user is.
func locationFactor(p *models.YouthProfile, j *models.Job) float64 {
	if j.Remote && p.OpenToRemote {
		return 1
	}
	userLoc := normalizeLocation(p.Location)
	if userLoc == "" {
		return neutral
	}
	jobLoc := normalizeLocation(j.Location)
	switch {
	case jobLoc == "":
		return neutral
	case jobLoc == userLoc:
		return 1
	case region(jobLoc) != "" && region(jobLoc) == region(userLoc):
		return regionMatch
	case j.Remote:
		return neutral
	}
	return 0
}

func normalizeLocation(s string) string {
	parts := strings.Split(strings.ToLower(s), ",")
	for i := range parts {
		parts[i] = strings.Join(strings.Fields(parts[i]), " ")
	}
	return strings.Trim(strings.Join(parts, ","), ",")
}

// region is the last comma-separated segment, usually the country.
func region(loc string) string {
	if i := strings.LastIndexByte(loc, ','); i >= 0 {
		return strings.TrimSpace(loc[i+1:])
	}
	return loc
}

func experienceFactor(have, required float64) float64 {
	if required <= 0 || have >= required {
		return 1
	}
	if have <= 0 {
		return 0
	}
	return have / required
}

func educationFactor(have, required models.EducationLevel) float64 {
	if required == "" || required == models.EducationNone {
		return 1
	}
	gap := required.Rank() - have.Rank()
	switch {
	case gap <= 0:
		return 1
	case gap == 1:
		return neutral
	}
	return 0
}

func jobTypeFactor(preferred []models.JobType, t models.JobType) float64 {
	if len(preferred) == 0 {
		return neutral
	}
	for _, p := range preferred {
		if p == t {
			return 1
		}
	}
	return 0
}

// salaryFactor compares the best offered figure with the desired minimum.
func salaryFactor(desired, min, max *float64) float64 {
	if desired == nil || *desired <= 0 {
		return neutral
	}
	var offered float64
	switch {
	case max != nil:
		offered = *max
	case min != nil:
		offered = *min
	default:
		return neutral
	}
	if offered >= *desired {
		return 1
	}
	if offered <= 0 {
		return 0
	}
	return offered / *desired
}

// recencyFactor decays linearly from 1 at publish time to 0 at window.
func recencyFactor(publishedAt *time.Time, now time.Time, window time.Duration) float64 {
	if publishedAt == nil || window <= 0 {
		return 0
	}
	age := now.Sub(*publishedAt)
	if age <= 0 {
		return 1
	}
	if age >= window {
		return 0
	}
	return 1 - float64(age)/float64(window)
}
