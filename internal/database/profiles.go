// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/launchpad/internal/models"
)

var profileSelect = `SELECT user_id, headline, bio, location, experience_years, education_level,
	preferred_job_types, desired_salary_min, interests, resume_upload_id, open_to_remote, updated_at, ` +
	skillAggSQL("profile_skills", "user_id", "p.user_id", "") + `
	FROM youth_profiles p`

func scanProfile(row rowScanner) (*models.YouthProfile, error) {
	var p models.YouthProfile
	var edu, jobTypes, interests string
	var salary sql.NullFloat64
	var resume, skills sql.NullString
	if err := row.Scan(&p.UserID, &p.Headline, &p.Bio, &p.Location, &p.ExperienceYears, &edu,
		&jobTypes, &salary, &interests, &resume, &p.OpenToRemote, &p.UpdatedAt, &skills); err != nil {
		return nil, err
	}
	p.EducationLevel = models.EducationLevel(edu)
	p.PreferredJobTypes = unmarshalList[models.JobType](jobTypes)
	p.Interests = unmarshalList[string](interests)
	p.DesiredSalaryMin = floatPtr(salary)
	p.ResumeUploadID = resume.String
	p.Skills = splitSkills(skills)
	return &p, nil
}

// GetProfile returns the youth profile for userID, or ErrNotFound.
func (db *DB) GetProfile(ctx context.Context, userID string) (*models.YouthProfile, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	p, err := scanProfile(db.conn.QueryRowContext(ctx, profileSelect+` WHERE p.user_id = ?`, userID))
	err = notFoundIfNoRows(err)
	observe("select", "youth_profiles", start, err)
	return p, err
}

// UpsertProfile writes all profile fields and replaces the skill set.
// Skills must already be normalized.
func (db *DB) UpsertProfile(ctx context.Context, p *models.YouthProfile) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	p.UpdatedAt = db.now()
	return db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO youth_profiles (user_id, headline, bio, location, experience_years,
				education_level, preferred_job_types, desired_salary_min, interests, resume_upload_id, open_to_remote, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id) DO UPDATE SET
				headline = excluded.headline,
				bio = excluded.bio,
				location = excluded.location,
				experience_years = excluded.experience_years,
				education_level = excluded.education_level,
				preferred_job_types = excluded.preferred_job_types,
				desired_salary_min = excluded.desired_salary_min,
				interests = excluded.interests,
				resume_upload_id = excluded.resume_upload_id,
				open_to_remote = excluded.open_to_remote,
				updated_at = excluded.updated_at`,
			p.UserID, p.Headline, p.Bio, p.Location, p.ExperienceYears, string(p.EducationLevel),
			marshalList(p.PreferredJobTypes), nullFloat(p.DesiredSalaryMin), marshalList(p.Interests),
			nullString(p.ResumeUploadID), p.OpenToRemote, p.UpdatedAt); err != nil {
			return fmt.Errorf("upsert profile: %w", err)
		}
		return replaceSkills(ctx, tx, "profile_skills", "user_id", p.UserID, p.Skills, "", nil)
	})
}

// AddProfileSkills merges skills into a profile without removing any.
func (db *DB) AddProfileSkills(ctx context.Context, userID string, skills []string) error {
	if len(skills) == 0 {
		return nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, s := range skills {
			if _, err := tx.ExecContext(ctx, `INSERT INTO profile_skills (user_id, skill) VALUES (?, ?) ON CONFLICT DO NOTHING`, userID, s); err != nil {
				return fmt.Errorf("add profile skill: %w", err)
			}
		}
		_, err := tx.ExecContext(ctx, `UPDATE youth_profiles SET updated_at = ? WHERE user_id = ?`, db.now(), userID)
		return err
	})
}

