// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/middleware"
	"github.com/tomtom215/launchpad/internal/models"
)

func newTestLogger(t *testing.T, cfg *Config) (*Logger, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore(100)
	l := NewLogger(store, cfg)
	t.Cleanup(func() { _ = l.Close() })
	return l, store
}

func TestLogger_Log(t *testing.T) {
	t.Parallel()

	l, store := newTestLogger(t, &Config{Enabled: true, MinSeverity: SeverityInfo, BufferSize: 10})

	l.Log(&Event{
		Type:        EventTypeAuthSuccess,
		Severity:    SeverityInfo,
		Outcome:     OutcomeSuccess,
		Actor:       Actor{ID: "user1", Type: ActorUser, Name: "amina@example.org"},
		Source:      Source{IPAddress: "192.0.2.10"},
		Action:      "authenticate",
		Description: "User authenticated",
	})
	_ = l.Close()

	events, err := store.Query(context.Background(), QueryFilter{})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	got := events[0]
	if got.ID == "" {
		t.Error("expected generated ID")
	}
	if got.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	if got.Actor.ID != "user1" {
		t.Errorf("actor ID = %q, want user1", got.Actor.ID)
	}
}

func TestLogger_Filtering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      *Config
		severity Severity
		want     int
	}{
		{"disabled", &Config{Enabled: false, MinSeverity: SeverityInfo}, SeverityCritical, 0},
		{"below minimum", &Config{Enabled: true, MinSeverity: SeverityWarning}, SeverityInfo, 0},
		{"at minimum", &Config{Enabled: true, MinSeverity: SeverityWarning}, SeverityWarning, 1},
		{"above minimum", &Config{Enabled: true, MinSeverity: SeverityInfo}, SeverityCritical, 1},
		{"debug dropped by default", DefaultConfig(), SeverityDebug, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			l, store := newTestLogger(t, tt.cfg)
			l.Log(&Event{Type: EventTypeAdminAction, Severity: tt.severity, Outcome: OutcomeSuccess})
			_ = l.Close()
			if store.Len() != tt.want {
				t.Errorf("stored %d events, want %d", store.Len(), tt.want)
			}
		})
	}
}

func TestLogger_NilSafe(t *testing.T) {
	t.Parallel()

	var l *Logger
	l.Log(&Event{Type: EventTypeAuthSuccess})
	l.LogLogout(context.Background(), SystemActor(), Source{})
	if err := l.Close(); err != nil {
		t.Errorf("Close on nil logger: %v", err)
	}
}

func TestLogger_CloseTwice(t *testing.T) {
	t.Parallel()

	l := NewLogger(NewMemoryStore(10), nil)
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestLogger_HelperMethods(t *testing.T) {
	t.Parallel()

	l, store := newTestLogger(t, DefaultConfig())
	ctx := logging.ContextWithRequestID(context.Background(), "req-42")
	admin := ActorFromUser(&models.User{ID: "a1", Email: "admin@example.org", Role: models.RoleSuperadmin})
	src := Source{IPAddress: "198.51.100.7", UserAgent: "test"}

	l.LogAuthSuccess(ctx, admin, src, "password")
	l.LogAuthFailure(ctx, "nobody@example.org", src, "invalid credentials")
	l.LogAuthLockout(ctx, "nobody@example.org", src, 15*time.Minute, 5)
	l.LogLogout(ctx, admin, src)
	l.LogAuthzDenied(ctx, admin, src, "/api/v1/admin/users", "write")
	l.LogUserStatusChange(ctx, admin, src, &models.User{ID: "u9", Email: "kofi@example.org"}, models.UserActive, models.UserSuspended)
	l.LogTenantVerified(ctx, admin, src, &models.Tenant{ID: "t1", Name: "Bean Co", Verified: true})
	l.LogJobDeleted(ctx, admin, src, &models.Job{ID: "j1", TenantID: "t1", Title: "Barista"})
	l.LogBroadcast(ctx, admin, src, "Maintenance", []models.Role{models.RoleYouth}, 12)
	l.LogImport(ctx, admin, ImportSummary{Source: "jobs.db", TenantID: "t1", Imported: 3})
	l.LogAdminAction(ctx, admin, src, "seed", "Seeded demo data", map[string]interface{}{"rows": 10})
	_ = l.Close()

	if store.Len() != 11 {
		t.Fatalf("stored %d events, want 11", store.Len())
	}

	events, _ := store.Query(context.Background(), QueryFilter{Limit: 100})
	seen := make(map[EventType]Event)
	for _, e := range events {
		seen[e.Type] = e
		if e.RequestID != "req-42" {
			t.Errorf("%s: request ID = %q, want req-42", e.Type, e.RequestID)
		}
	}
	for _, typ := range AllEventTypes {
		if _, ok := seen[typ]; !ok {
			t.Errorf("no %s event recorded", typ)
		}
	}

	failure := seen[EventTypeAuthFailure]
	if failure.Outcome != OutcomeFailure || failure.Actor.Type != ActorAnonymous || failure.Actor.Name != "nobody@example.org" {
		t.Errorf("unexpected auth failure event: %+v", failure)
	}

	status := seen[EventTypeUserStatusChanged]
	if status.Target == nil || status.Target.ID != "u9" || status.Action != "suspended" {
		t.Errorf("unexpected status change event: %+v", status)
	}

	var meta map[string]interface{}
	if err := json.Unmarshal(seen[EventTypeBroadcast].Metadata, &meta); err != nil {
		t.Fatalf("broadcast metadata: %v", err)
	}
	if meta["recipients"] != float64(12) {
		t.Errorf("recipients = %v, want 12", meta["recipients"])
	}

	if imp := seen[EventTypeDataImport]; imp.Outcome != OutcomeSuccess || imp.Actor.Role != string(models.RoleSuperadmin) {
		t.Errorf("unexpected import event: %+v", imp)
	}
}

func TestLogger_LogImportFailure(t *testing.T) {
	t.Parallel()

	l, store := newTestLogger(t, DefaultConfig())
	l.LogImport(context.Background(), SystemActor(), ImportSummary{Source: "jobs.db", TenantID: "t1", Error: "schema mismatch"})
	_ = l.Close()

	events, _ := store.Query(context.Background(), QueryFilter{})
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Outcome != OutcomeFailure || events[0].Severity != SeverityError {
		t.Errorf("outcome=%s severity=%s, want failure/error", events[0].Outcome, events[0].Severity)
	}
}

func TestLogger_Cleanup(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(100)
	l := NewLogger(store, &Config{Enabled: true, RetentionDays: 90, CleanupInterval: time.Hour, BufferSize: 1})
	defer l.Close()

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	_ = store.Save(ctx, &Event{ID: "old", Timestamp: now.AddDate(0, 0, -91)})
	_ = store.Save(ctx, &Event{ID: "edge", Timestamp: now.AddDate(0, 0, -89)})
	_ = store.Save(ctx, &Event{ID: "new", Timestamp: now.Add(-time.Hour)})

	deleted, err := l.Cleanup(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("deleted %d, want 1", deleted)
	}
	if _, err := store.Get(ctx, "old"); err == nil {
		t.Error("expected old event to be removed")
	}
}

func TestLogger_RunRetentionStops(t *testing.T) {
	t.Parallel()

	l, _ := newTestLogger(t, &Config{Enabled: true, RetentionDays: 1, CleanupInterval: time.Millisecond, BufferSize: 1})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.RunRetention(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("RunRetention returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("RunRetention did not stop")
	}
}

func TestConfigFrom(t *testing.T) {
	t.Parallel()

	c := ConfigFrom(config.AuditConfig{Enabled: true, RetentionDays: 30})
	if !c.Enabled || c.RetentionDays != 30 {
		t.Errorf("unexpected config %+v", c)
	}
	if c.CleanupInterval != 24*time.Hour || c.BufferSize != 1000 {
		t.Errorf("defaults not kept: %+v", c)
	}
}

func TestSourceFromRequest(t *testing.T) {
	t.Parallel()

	t.Run("remote address", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.5:51234"
		req.Header.Set("User-Agent", "curl/8")
		req.Header.Set("X-Forwarded-For", "10.0.0.1")

		src := SourceFromRequest(req)
		if src.IPAddress != "203.0.113.5" {
			t.Errorf("IP = %q, want 203.0.113.5", src.IPAddress)
		}
		if src.UserAgent != "curl/8" {
			t.Errorf("UserAgent = %q", src.UserAgent)
		}
	})

	t.Run("resolved client ip", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(middleware.ContextWithClientIP(req.Context(), "198.51.100.1"))

		if got := SourceFromRequest(req).IPAddress; got != "198.51.100.1" {
			t.Errorf("IP = %q, want 198.51.100.1", got)
		}
	})
}

func TestActorFromUser(t *testing.T) {
	t.Parallel()

	a := ActorFromUser(&models.User{ID: "u1", TenantID: "t1", Email: "hr@bean.example", Role: models.RoleCompany})
	want := Actor{ID: "u1", Type: ActorUser, Name: "hr@bean.example", Role: string(models.RoleCompany), TenantID: "t1"}
	if a != want {
		t.Errorf("ActorFromUser = %+v, want %+v", a, want)
	}
	if ActorFromUser(nil).Type != ActorAnonymous {
		t.Error("nil user should be anonymous")
	}
}

func TestMemoryStore_Query(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(100)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	for i, e := range []Event{
		{Type: EventTypeAuthSuccess, Outcome: OutcomeSuccess, Actor: Actor{ID: "u1", TenantID: "t1"}},
		{Type: EventTypeAuthFailure, Outcome: OutcomeFailure, Actor: Actor{Name: "x@example.org"}},
		{Type: EventTypeJobDeleted, Outcome: OutcomeSuccess, Actor: Actor{ID: "u1", TenantID: "t1"}, Target: &Target{ID: "j1", Type: "job"}},
		{Type: EventTypeAuthSuccess, Outcome: OutcomeSuccess, Actor: Actor{ID: "u2", TenantID: "t2"}},
	} {
		e.ID = string(rune('a' + i))
		e.Timestamp = base.Add(time.Duration(i) * time.Hour)
		_ = store.Save(ctx, &e)
	}

	since := base.Add(90 * time.Minute)
	tests := []struct {
		name    string
		filter  QueryFilter
		wantIDs []string
	}{
		{"all newest first", QueryFilter{}, []string{"d", "c", "b", "a"}},
		{"by type", QueryFilter{Types: []EventType{EventTypeAuthSuccess}}, []string{"d", "a"}},
		{"by actor", QueryFilter{ActorID: "u1"}, []string{"c", "a"}},
		{"by tenant", QueryFilter{TenantID: "t2"}, []string{"d"}},
		{"by target", QueryFilter{TargetID: "j1"}, []string{"c"}},
		{"by outcome", QueryFilter{Outcomes: []Outcome{OutcomeFailure}}, []string{"b"}},
		{"since", QueryFilter{Since: &since}, []string{"d", "c"}},
		{"paged", QueryFilter{Limit: 2, Offset: 1}, []string{"c", "b"}},
		{"offset past end", QueryFilter{Offset: 10}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			events, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(events) != len(tt.wantIDs) {
				t.Fatalf("got %d events, want %d", len(events), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if events[i].ID != id {
					t.Errorf("events[%d] = %s, want %s", i, events[i].ID, id)
				}
			}
		})
	}

	count, _ := store.Count(ctx, QueryFilter{Types: []EventType{EventTypeAuthSuccess}, Limit: 1})
	if count != 2 {
		t.Errorf("Count ignores paging: got %d, want 2", count)
	}
}

func TestMemoryStore_EvictsOldest(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(10)
	ctx := context.Background()
	for i := 0; i < 11; i++ {
		_ = store.Save(ctx, &Event{ID: string(rune('a' + i))})
	}
	if store.Len() != 10 {
		t.Errorf("Len = %d, want 10", store.Len())
	}
	if _, err := store.Get(ctx, "a"); err == nil {
		t.Error("oldest event should have been evicted")
	}
}

func TestMemoryStore_GetStats(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(10)
	ctx := context.Background()
	now := time.Now().UTC()
	_ = store.Save(ctx, &Event{ID: "1", Type: EventTypeAuthSuccess, Outcome: OutcomeSuccess, Timestamp: now.Add(-time.Hour)})
	_ = store.Save(ctx, &Event{ID: "2", Type: EventTypeAuthFailure, Outcome: OutcomeFailure, Timestamp: now})

	stats, err := store.GetStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalEvents != 2 || stats.EventsByOutcome["failure"] != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
	if !stats.OldestEvent.Equal(now.Add(-time.Hour)) || !stats.NewestEvent.Equal(now) {
		t.Errorf("time range = %v..%v", stats.OldestEvent, stats.NewestEvent)
	}
}

func TestQueryFilter_EffectiveLimit(t *testing.T) {
	t.Parallel()

	for in, want := range map[int]int{0: DefaultQueryLimit, -1: DefaultQueryLimit, 10: 10, 10000: MaxQueryLimit} {
		if got := (QueryFilter{Limit: in}).EffectiveLimit(); got != want {
			t.Errorf("EffectiveLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestEventType_Valid(t *testing.T) {
	t.Parallel()

	if !EventTypeTenantVerified.Valid() {
		t.Error("tenant.verified should be valid")
	}
	if EventType("detection.alert").Valid() {
		t.Error("unknown type should be invalid")
	}
}
