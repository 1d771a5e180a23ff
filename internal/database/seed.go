// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/models"
)

// EnsureSuperadmin creates the bootstrap superadmin when no user with email
// exists. It returns true when an account was created.
func (db *DB) EnsureSuperadmin(ctx context.Context, email, passwordHash string) (bool, error) {
	_, err := db.GetUserByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	u := &models.User{Email: email, PasswordHash: passwordHash, Name: "Administrator", Role: models.RoleSuperadmin}
	if err := db.CreateAccount(ctx, u, nil); err != nil {
		if errors.Is(err, ErrConflict) {
			return false, nil
		}
		return false, err
	}
	logging.Info().Str("email", u.Email).Msg("Created bootstrap superadmin")
	return true, nil
}

// SeedDemoData populates an empty database with one company, one
// institution, one youth and a handful of jobs and courses. All demo
// accounts share passwordHash. It does nothing when any non-superadmin user
// exists.
func (db *DB) SeedDemoData(ctx context.Context, passwordHash string) error {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role <> 'superadmin'`).Scan(&n); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return nil
	}

	company := &models.User{Email: "hiring@acme.example", PasswordHash: passwordHash, Name: "Acme Hiring", Role: models.RoleCompany}
	if err := db.CreateAccount(ctx, company, &models.Tenant{Name: "Acme Digital", Kind: models.TenantCompany,
		Location: "Nairobi, Kenya", Verified: true}); err != nil {
		return fmt.Errorf("seed company: %w", err)
	}
	inst := &models.User{Email: "courses@skills.example", PasswordHash: passwordHash, Name: "Skills Academy", Role: models.RoleInstitution}
	if err := db.CreateAccount(ctx, inst, &models.Tenant{Name: "Skills Academy", Kind: models.TenantInstitution,
		Location: "Kampala, Uganda", Verified: true}); err != nil {
		return fmt.Errorf("seed institution: %w", err)
	}
	youth := &models.User{Email: "amina@youth.example", PasswordHash: passwordHash, Name: "Amina Youth", Role: models.RoleYouth}
	if err := db.CreateAccount(ctx, youth, nil); err != nil {
		return fmt.Errorf("seed youth: %w", err)
	}

	salary := 45000.0
	if err := db.UpsertProfile(ctx, &models.YouthProfile{
		UserID:            youth.ID,
		Headline:          "Aspiring web developer",
		Location:          "Nairobi, Kenya",
		Skills:            models.NormalizeSkills([]string{"HTML", "CSS", "JavaScript", "Communication"}),
		ExperienceYears:   1,
		EducationLevel:    models.EducationSecondary,
		PreferredJobTypes: []models.JobType{models.JobInternship, models.JobFullTime},
		DesiredSalaryMin:  &salary,
		Interests:         []string{"web", "design"},
		OpenToRemote:      true,
	}); err != nil {
		return fmt.Errorf("seed profile: %w", err)
	}

	now := db.now()
	jobs := []*models.Job{
		{Title: "Junior Frontend Developer", Location: "Nairobi, Kenya", JobType: models.JobFullTime,
			RequiredSkills: []string{"css", "html", "javascript"}, PreferredSkills: []string{"react"},
			MinExperienceYears: 1, EducationLevel: models.EducationSecondary},
		{Title: "Data Entry Intern", Location: "Mombasa, Kenya", JobType: models.JobInternship,
			RequiredSkills: []string{"excel"}, PreferredSkills: []string{"communication"},
			EducationLevel: models.EducationNone},
		{Title: "Remote Support Agent", Location: "Remote", Remote: true, JobType: models.JobPartTime,
			RequiredSkills: []string{"communication"}, PreferredSkills: []string{"customer service"},
			EducationLevel: models.EducationSecondary},
	}
	for _, j := range jobs {
		j.ID = newID()
		j.TenantID, j.PostedBy = company.TenantID, company.ID
		j.Status = models.JobPublished
		j.Currency = "KES"
		j.PublishedAt = &now
		j.CreatedAt, j.UpdatedAt = now, now
	}
	if err := db.InsertJobs(ctx, jobs); err != nil {
		return fmt.Errorf("seed jobs: %w", err)
	}

	course := &models.Course{TenantID: inst.TenantID, CreatedBy: inst.ID, Title: "React Fundamentals",
		Description: "Components, state and hooks.", Skills: []string{"react"}, Level: models.LevelBeginner,
		DurationHours: 6, Status: models.CoursePublished}
	for _, title := range []string{"Thinking in components", "State and props", "Hooks"} {
		course.Lessons = append(course.Lessons, models.Lesson{Title: title, DurationMinutes: 45})
	}
	if err := db.CreateCourse(ctx, course); err != nil {
		return fmt.Errorf("seed course: %w", err)
	}

	logging.Info().Int("jobs", len(jobs)).Msg("Seeded demo data")
	return nil
}
