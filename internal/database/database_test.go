// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/models"
)

// testDBSemaphore serializes DuckDB usage across tests. Concurrent CGO
// calls from many in-memory databases can hang under CI pressure.
var testDBSemaphore = make(chan struct{}, 1)

var testDBMutex sync.Mutex

// testNow is the pinned clock for store tests.
var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory database with a pinned clock. The
// semaphore is held until the test completes.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	type result struct {
		db  *DB
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		testDBMutex.Lock()
		db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"})
		testDBMutex.Unlock()
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		res.db.SetClock(func() time.Time { return testNow })
		t.Cleanup(func() { _ = res.db.Close() })
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s")
		return nil
	}
}

func createYouth(t *testing.T, db *DB, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "hash", Name: "Youth " + email, Role: models.RoleYouth}
	if err := db.CreateAccount(context.Background(), u, nil); err != nil {
		t.Fatalf("CreateAccount(%s): %v", email, err)
	}
	return u
}

func createOrgUser(t *testing.T, db *DB, email string, role models.Role) *models.User {
	t.Helper()
	u := &models.User{Email: email, PasswordHash: "hash", Name: "Org " + email, Role: role}
	tenant := &models.Tenant{Name: "Tenant " + email, Kind: role.TenantKind()}
	if err := db.CreateAccount(context.Background(), u, tenant); err != nil {
		t.Fatalf("CreateAccount(%s): %v", email, err)
	}
	return u
}

func createPublishedJob(t *testing.T, db *DB, company *models.User, title string, required ...string) *models.Job {
	t.Helper()
	j := &models.Job{
		TenantID:       company.TenantID,
		PostedBy:       company.ID,
		Title:          title,
		Location:       "Nairobi, Kenya",
		JobType:        models.JobFullTime,
		RequiredSkills: required,
		EducationLevel: models.EducationNone,
		Status:         models.JobPublished,
	}
	if err := db.CreateJob(context.Background(), j); err != nil {
		t.Fatalf("CreateJob(%s): %v", title, err)
	}
	return j
}

func TestNew_AppliesAllMigrations(t *testing.T) {
	db := setupTestDB(t)

	version, err := db.GetCurrentSchemaVersion(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentSchemaVersion: %v", err)
	}
	if want := schemaMigrations[len(schemaMigrations)-1].Version; version != want {
		t.Errorf("schema version = %d, want %d", version, want)
	}

	history, err := db.GetMigrationHistory(context.Background())
	if err != nil {
		t.Fatalf("GetMigrationHistory: %v", err)
	}
	if len(history) != len(schemaMigrations) {
		t.Errorf("history has %d entries, want %d", len(history), len(schemaMigrations))
	}
}

func TestSplitStatements(t *testing.T) {
	t.Parallel()

	got := splitStatements("CREATE TABLE a (x INT);\n\n CREATE TABLE b (y INT);  \n")
	if len(got) != 2 {
		t.Fatalf("got %d statements, want 2: %q", len(got), got)
	}
}

func TestClampPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                  string
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{"defaults", 0, 0, 20, 0},
		{"capped", 1000, 5, 100, 5},
		{"negative offset", 10, -3, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, o := clampPage(tt.limit, tt.offset, 20, 100)
			if l != tt.wantLimit || o != tt.wantOffset {
				t.Errorf("clampPage(%d, %d) = %d, %d; want %d, %d", tt.limit, tt.offset, l, o, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestLikePattern_EscapesWildcards(t *testing.T) {
	t.Parallel()

	if got := likePattern(" 50%_off "); got != `%50\%\_off%` {
		t.Errorf("likePattern = %q", got)
	}
}

func TestCreateAccount_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	createYouth(t, db, "dup@example.com")
	err := db.CreateAccount(ctx, &models.User{Email: " DUP@example.com ", Name: "x", Role: models.RoleYouth}, nil)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("CreateAccount duplicate = %v, want ErrConflict", err)
	}
}

func TestCreateAccount_TenantAndProfile(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	company := createOrgUser(t, db, "hr@acme.example", models.RoleCompany)
	if company.TenantID == "" {
		t.Fatal("company user has no tenant")
	}
	tenant, err := db.GetTenant(ctx, company.TenantID)
	if err != nil {
		t.Fatalf("GetTenant: %v", err)
	}
	if tenant.Kind != models.TenantCompany {
		t.Errorf("tenant kind = %q", tenant.Kind)
	}

	youth := createYouth(t, db, "kid@example.com")
	p, err := db.GetProfile(ctx, youth.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if len(p.Skills) != 0 || p.EducationLevel != models.EducationNone {
		t.Errorf("unexpected empty profile: %+v", p)
	}

	got, err := db.GetUserByEmail(ctx, "KID@example.com")
	if err != nil || got.ID != youth.ID {
		t.Errorf("GetUserByEmail = %v, %v", got, err)
	}
}

func TestUpsertProfile_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	youth := createYouth(t, db, "p@example.com")

	salary := 1200.0
	in := &models.YouthProfile{
		UserID:            youth.ID,
		Headline:          "Designer",
		Location:          "Accra, Ghana",
		Skills:            []string{"figma", "ui design"},
		ExperienceYears:   2,
		EducationLevel:    models.EducationBachelor,
		PreferredJobTypes: []models.JobType{models.JobFreelance},
		DesiredSalaryMin:  &salary,
		Interests:         []string{"art"},
		OpenToRemote:      true,
	}
	if err := db.UpsertProfile(ctx, in); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
	if err := db.AddProfileSkills(ctx, youth.ID, []string{"figma", "sketch"}); err != nil {
		t.Fatalf("AddProfileSkills: %v", err)
	}

	got, err := db.GetProfile(ctx, youth.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	wantSkills := []string{"figma", "sketch", "ui design"}
	if len(got.Skills) != len(wantSkills) {
		t.Fatalf("skills = %v, want %v", got.Skills, wantSkills)
	}
	for i := range wantSkills {
		if got.Skills[i] != wantSkills[i] {
			t.Errorf("skills[%d] = %q, want %q", i, got.Skills[i], wantSkills[i])
		}
	}
	if got.DesiredSalaryMin == nil || *got.DesiredSalaryMin != salary {
		t.Errorf("salary = %v", got.DesiredSalaryMin)
	}
	if len(got.PreferredJobTypes) != 1 || got.PreferredJobTypes[0] != models.JobFreelance {
		t.Errorf("job types = %v", got.PreferredJobTypes)
	}
	if !got.OpenToRemote || got.EducationLevel != models.EducationBachelor {
		t.Errorf("profile = %+v", got)
	}
}
