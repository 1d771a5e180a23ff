// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/authz"
	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/models"
	ws "github.com/tomtom215/launchpad/internal/websocket"
)

const testSecret = "test_secret_with_at_least_32_characters_for_testing"

// testDBSemaphore serializes DuckDB usage across API tests.
var testDBSemaphore = make(chan struct{}, 1)

// testEnv is a fully wired router over an in-memory database.
type testEnv struct {
	t       *testing.T
	db      *database.DB
	handler *Handler
	server  http.Handler
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{
		API: config.APIConfig{DefaultPageSize: 20, MaxPageSize: 100},
		Security: config.SecurityConfig{
			JWTSecret:         testSecret,
			SessionTimeout:    time.Hour,
			RateLimitDisabled: true,
			CORSOrigins:       []string{"http://localhost:5173"},
		},
		Server: config.ServerConfig{Environment: "test"},
	}

	jwtManager, err := auth.NewJWTManager(testSecret, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	authSvc := auth.NewService(db, jwtManager, auth.NewMemorySessionStore(), nil, bcrypt.MinCost)

	enforcer, err := authz.NewEnforcer(config.CasbinConfig{})
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	t.Cleanup(enforcer.Close)

	handler := NewHandler(db, cfg, authSvc, ws.NewHub())
	t.Cleanup(handler.Close)
	router := NewRouter(handler, auth.NewMiddleware(authSvc), authz.NewMiddleware(enforcer))

	return &testEnv{t: t, db: db, handler: handler, server: router.Setup()}
}

// envelope is the decoded response body.
type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

// expect asserts the status code and decodes the envelope.
func (e *testEnv) expect(rec *httptest.ResponseRecorder, status int) *envelope {
	e.t.Helper()
	if rec.Code != status {
		e.t.Fatalf("status = %d, want %d; body: %s", rec.Code, status, rec.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		e.t.Fatalf("decode envelope: %v; body: %s", err, rec.Body.String())
	}
	return &env
}

// decodeData unmarshals the envelope data into dst.
func (e *testEnv) decodeData(env *envelope, dst interface{}) {
	e.t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		e.t.Fatalf("decode data: %v; data: %s", err, env.Data)
	}
}

// account is a signed-in test user.
type account struct {
	user  models.User
	token string
}

// signUp registers and logs in. orgName is required for company and
// institution roles.
func (e *testEnv) signUp(email string, role models.Role, orgName string) account {
	e.t.Helper()
	const password = "correct-horse-battery-9"
	e.expect(e.do(http.MethodPost, "/api/v1/auth/register", "", RegisterRequest{
		Email:            email,
		Password:         password,
		Name:             "Test " + string(role),
		Role:             string(role),
		OrganizationName: orgName,
	}), http.StatusCreated)
	return e.login(email, password)
}

func (e *testEnv) login(email, password string) account {
	e.t.Helper()
	env := e.expect(e.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: email, Password: password}), http.StatusOK)
	var res auth.LoginResult
	e.decodeData(env, &res)
	if res.Token == "" || res.User == nil {
		e.t.Fatalf("login returned no token or user: %s", env.Data)
	}
	return account{user: *res.User, token: res.Token}
}

// publishedJob creates and publishes a job as company.
func (e *testEnv) publishedJob(company account, title string, skills ...string) models.Job {
	e.t.Helper()
	env := e.expect(e.do(http.MethodPost, "/api/v1/jobs", company.token, JobRequest{
		Title:          title,
		Description:    "A friendly first job for motivated young people.",
		Location:       "Nairobi",
		JobType:        string(models.JobFullTime),
		RequiredSkills: skills,
		Status:         "published",
	}), http.StatusCreated)
	var job models.Job
	e.decodeData(env, &job)
	return job
}

// superadmin creates an admin account directly; admins cannot self-register.
func (e *testEnv) superadmin(email string) account {
	e.t.Helper()
	const password = "admin-horse-battery-7"
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		e.t.Fatal(err)
	}
	u := &models.User{Email: email, PasswordHash: hash, Name: "Admin", Role: models.RoleSuperadmin}
	if err := e.db.CreateAccount(context.Background(), u, nil); err != nil {
		e.t.Fatalf("CreateAccount: %v", err)
	}
	return e.login(email, password)
}
