// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/models"
)

func TestTokenFromRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  string
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, "abc"},
		{"non-bearer scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, ""},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: "xyz"}) }, "xyz"},
		{"header wins over cookie", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer abc")
			r.AddCookie(&http.Cookie{Name: CookieName, Value: "xyz"})
		}, "abc"},
		{"query ignored for plain requests", func(r *http.Request) {
			r.URL.RawQuery = "token=q"
		}, ""},
		{"query for websocket upgrade", func(r *http.Request) {
			r.URL.RawQuery = "token=q"
			r.Header.Set("Upgrade", "websocket")
		}, "q"},
		{"none", func(r *http.Request) {}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(r)
			if got := TokenFromRequest(r); got != tt.want {
				t.Errorf("TokenFromRequest() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	_, _ = svc.Register(ctx, RegisterInput{Email: "amina@example.com", Password: "river-stone-42", Role: models.RoleYouth})
	login, err := svc.Login(ctx, "amina@example.com", "river-stone-42", ClientInfo{})
	if err != nil {
		t.Fatal(err)
	}

	var seen *Subject
	handler := NewMiddleware(svc).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	r.Header.Set("Authorization", "Bearer "+login.Token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if seen == nil || seen.Email != "amina@example.com" {
		t.Errorf("subject = %+v", seen)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want 401", w.Code)
	}
	var body models.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "error" || body.Error == nil || body.Error.Code != "UNAUTHORIZED" {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestMiddleware_Optional(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	var called bool
	handler := NewMiddleware(svc).Optional(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if SubjectFromContext(r.Context()) != nil {
			t.Error("subject set for an invalid token")
		}
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(httptest.NewRecorder(), r)
	if !called {
		t.Error("Optional blocked an anonymous request")
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := RequireRole(models.RoleCompany, models.RoleSuperadmin)(ok)

	tests := []struct {
		name    string
		subject *Subject
		want    int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"youth", &Subject{Role: models.RoleYouth}, http.StatusForbidden},
		{"company", &Subject{Role: models.RoleCompany}, http.StatusOK},
		{"superadmin", &Subject{Role: models.RoleSuperadmin}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader("{}"))
			if tt.subject != nil {
				r = r.WithContext(WithSubject(r.Context(), tt.subject))
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestSubject_CanManageTenant(t *testing.T) {
	t.Parallel()

	company := &Subject{Role: models.RoleCompany, TenantID: "t1"}
	admin := &Subject{Role: models.RoleSuperadmin}
	youth := &Subject{Role: models.RoleYouth}

	if !company.CanManageTenant("t1") || company.CanManageTenant("t2") {
		t.Error("company tenant check wrong")
	}
	if !admin.CanManageTenant("anything") {
		t.Error("superadmin must manage every tenant")
	}
	if youth.CanManageTenant("") {
		t.Error("empty tenant id must not match an empty subject tenant")
	}
	var nilSubject *Subject
	if nilSubject.CanManageTenant("t1") || nilSubject.Is(models.RoleYouth) {
		t.Error("nil subject must have no rights")
	}
}
