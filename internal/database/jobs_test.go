// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/launchpad/internal/models"
)

func TestJobLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	company := createOrgUser(t, db, "hr@acme.example", models.RoleCompany)

	j := &models.Job{
		TenantID:        company.TenantID,
		PostedBy:        company.ID,
		Title:           "Go Intern",
		JobType:         models.JobInternship,
		RequiredSkills:  []string{"go", "sql"},
		PreferredSkills: []string{"docker", "go"},
		EducationLevel:  models.EducationSecondary,
		Status:          models.JobDraft,
	}
	if err := db.CreateJob(ctx, j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if j.PublishedAt != nil {
		t.Fatal("draft job has PublishedAt")
	}

	got, err := db.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if len(got.RequiredSkills) != 2 || len(got.PreferredSkills) != 1 || got.PreferredSkills[0] != "docker" {
		t.Errorf("skills = %v / %v; required must win over preferred", got.RequiredSkills, got.PreferredSkills)
	}
	if got.CompanyName == "" {
		t.Error("CompanyName not joined")
	}

	published, err := db.PublishJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("PublishJob: %v", err)
	}
	if published.Status != models.JobPublished || published.PublishedAt == nil || !published.PublishedAt.Equal(testNow) {
		t.Fatalf("published = %+v", published)
	}

	later := testNow.Add(time.Hour)
	db.SetClock(func() time.Time { return later })
	again, err := db.PublishJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("PublishJob again: %v", err)
	}
	if !again.PublishedAt.Equal(testNow) {
		t.Errorf("PublishedAt moved to %v on republish", again.PublishedAt)
	}

	if _, err := db.CloseJob(ctx, j.ID); err != nil {
		t.Fatalf("CloseJob: %v", err)
	}
	if _, err := db.PublishJob(ctx, j.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("PublishJob after close = %v, want ErrInvalidState", err)
	}

	if err := db.DeleteJob(ctx, j.ID); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if _, err := db.GetJob(ctx, j.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetJob after delete = %v, want ErrNotFound", err)
	}
}

func TestListJobs_Filters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	company := createOrgUser(t, db, "hr@acme.example", models.RoleCompany)

	createPublishedJob(t, db, company, "Frontend Developer", "javascript")
	createPublishedJob(t, db, company, "Backend Developer", "golang")

	expired := testNow.Add(-24 * time.Hour)
	old := &models.Job{TenantID: company.TenantID, PostedBy: company.ID, Title: "Expired 100% role",
		JobType: models.JobFullTime, EducationLevel: models.EducationNone, Status: models.JobPublished, Deadline: &expired}
	if err := db.CreateJob(ctx, old); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	draft := &models.Job{TenantID: company.TenantID, PostedBy: company.ID, Title: "Draft Developer",
		JobType: models.JobFullTime, EducationLevel: models.EducationNone, Status: models.JobDraft}
	if err := db.CreateJob(ctx, draft); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	tests := []struct {
		name   string
		filter models.JobFilter
		want   int
	}{
		{"published and unexpired", models.JobFilter{}, 2},
		{"query", models.JobFilter{Query: "front"}, 1},
		{"skill matches stored synonym", models.JobFilter{Skill: "GO"}, 1},
		{"skill synonym", models.JobFilter{Skill: "js"}, 1},
		{"unknown skill", models.JobFilter{Skill: "welding"}, 0},
		{"tenant", models.JobFilter{TenantID: company.TenantID}, 2},
		{"literal percent", models.JobFilter{Query: "100%", IncludeExpired: true}, 1},
		{"all statuses", models.JobFilter{TenantID: company.TenantID, IncludeExpired: true,
			Statuses: []models.JobStatus{models.JobDraft, models.JobPublished, models.JobClosed}}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := db.ListJobs(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListJobs: %v", err)
			}
			if page.Total != tt.want || len(page.Items) != tt.want {
				t.Errorf("total=%d items=%d, want %d", page.Total, len(page.Items), tt.want)
			}
		})
	}
}

func TestSavedJobs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	company := createOrgUser(t, db, "hr@acme.example", models.RoleCompany)
	youth := createYouth(t, db, "y@example.com")
	j := createPublishedJob(t, db, company, "Cashier")

	for i := 0; i < 2; i++ {
		if err := db.SaveJob(ctx, youth.ID, j.ID); err != nil {
			t.Fatalf("SaveJob #%d: %v", i, err)
		}
	}
	saved, err := db.ListSavedJobs(ctx, youth.ID)
	if err != nil {
		t.Fatalf("ListSavedJobs: %v", err)
	}
	if len(saved) != 1 || saved[0].Job == nil || saved[0].Job.ID != j.ID {
		t.Fatalf("saved = %+v", saved)
	}
	if err := db.UnsaveJob(ctx, youth.ID, j.ID); err != nil {
		t.Fatalf("UnsaveJob: %v", err)
	}
	if err := db.UnsaveJob(ctx, youth.ID, j.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("UnsaveJob twice = %v, want ErrNotFound", err)
	}
}

func TestApplications(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	company := createOrgUser(t, db, "hr@acme.example", models.RoleCompany)
	youth := createYouth(t, db, "y@example.com")
	j := createPublishedJob(t, db, company, "Barista")

	app := &models.Application{JobID: j.ID, UserID: youth.ID, TenantID: j.TenantID, CoverLetter: "hi"}
	if err := db.CreateApplication(ctx, app); err != nil {
		t.Fatalf("CreateApplication: %v", err)
	}
	dup := &models.Application{JobID: j.ID, UserID: youth.ID, TenantID: j.TenantID}
	if err := db.CreateApplication(ctx, dup); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate application = %v, want ErrConflict", err)
	}

	got, err := db.TransitionApplication(ctx, app.ID, models.AppSubmitted, models.AppReviewing, company.ID, "looks good")
	if err != nil {
		t.Fatalf("TransitionApplication: %v", err)
	}
	if got.Status != models.AppReviewing || got.Notes != "looks good" || got.JobTitle != "Barista" {
		t.Errorf("after transition = %+v", got)
	}

	// Stale from-status loses.
	if _, err := db.TransitionApplication(ctx, app.ID, models.AppSubmitted, models.AppRejected, company.ID, ""); !errors.Is(err, ErrConflict) {
		t.Errorf("stale transition = %v, want ErrConflict", err)
	}

	page, err := db.ListApplications(ctx, models.ApplicationFilter{TenantID: company.TenantID})
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if page.Total != 1 || page.Items[0].ApplicantName == "" {
		t.Errorf("page = %+v", page)
	}

	ids, err := db.AppliedJobIDs(ctx, youth.ID)
	if err != nil || len(ids) != 1 || ids[0] != j.ID {
		t.Errorf("AppliedJobIDs = %v, %v", ids, err)
	}
}

func TestListOpenJobs_Excludes(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	company := createOrgUser(t, db, "hr@acme.example", models.RoleCompany)
	a := createPublishedJob(t, db, company, "A")
	createPublishedJob(t, db, company, "B")

	jobs, err := db.ListOpenJobs(ctx, 10, []string{a.ID})
	if err != nil {
		t.Fatalf("ListOpenJobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Title != "B" {
		t.Errorf("jobs = %+v", jobs)
	}
}
