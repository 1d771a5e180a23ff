// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/models"
)

func TestDigest_RunOnce(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	lastY1 := now.Add(-6 * time.Hour)

	store := newFakeStore()
	store.addUser("y1", models.RoleYouth, models.UserActive)
	store.addUser("y2", models.RoleYouth, models.UserActive)
	store.addUser("y3", models.RoleYouth, models.UserActive)
	store.addUser("c1", models.RoleCompany, models.UserActive)
	store.lastDigest["y1"] = lastY1
	for _, ch := range models.AllNotificationChannels {
		store.prefs[prefKey{"y3", models.NotifyJobRecommendation, ch}] = false
	}

	rec := &fakeRecommender{byUser: map[string][]models.Recommendation{
		"y1": {
			{Job: &models.Job{ID: "j1", Title: "Barista", CompanyName: "Bean Co"}, Score: 82.4},
			{Job: &models.Job{ID: "j2", Title: "Data Clerk"}, Score: 71},
		},
		"y3": {{Job: &models.Job{ID: "j9", Title: "Ignored"}, Score: 99}},
	}}
	n := &recordingNotifier{}
	d := NewDigest(store, rec, n, config.DigestConfig{Enabled: true, Interval: 24 * time.Hour, MinScore: 60, MaxJobs: 3})
	d.now = func() time.Time { return now }

	res, err := d.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	want := DigestResult{Considered: 2, Sent: 1, Empty: 1}
	if res != want {
		t.Errorf("RunOnce() = %+v, want %+v", res, want)
	}

	c := singleCall(t, n)
	if strings.Join(c.userIDs, ",") != "y1" {
		t.Fatalf("digest recipients = %v", c.userIDs)
	}
	if c.notice.Title != "2 new jobs match your profile" {
		t.Errorf("title = %q", c.notice.Title)
	}
	wantBody := "- Barista at Bean Co (match 82%)\n- Data Clerk (match 71%)"
	if c.notice.Body != wantBody {
		t.Errorf("body = %q, want %q", c.notice.Body, wantBody)
	}

	if got := store.lastDigest["y1"]; !got.Equal(now) {
		t.Errorf("y1 last digest = %v, want %v", got, now)
	}
	if _, ok := store.lastDigest["y2"]; ok {
		t.Error("empty digest was recorded for y2")
	}

	since := map[string]time.Time{}
	for _, r := range rec.requests {
		if r.PublishedSince == nil {
			t.Fatalf("request for %s has no PublishedSince", r.UserID)
		}
		since[r.UserID] = *r.PublishedSince
		if r.Limit != 3 || r.MinScore != 60 {
			t.Errorf("request = %+v", r)
		}
	}
	if _, ok := since["y3"]; ok {
		t.Error("y3 opted out but was ranked")
	}
	if !since["y1"].Equal(lastY1) {
		t.Errorf("y1 since = %v, want %v", since["y1"], lastY1)
	}
	if !since["y2"].Equal(now.Add(-24 * time.Hour)) {
		t.Errorf("y2 since = %v, want one interval ago", since["y2"])
	}
}

func TestDigestNotice_Single(t *testing.T) {
	t.Parallel()

	n := digestNotice([]models.Recommendation{{Job: &models.Job{ID: "j1", Title: "Barista"}, Score: 65}})
	if n.Title != "1 new job matches your profile" {
		t.Errorf("title = %q", n.Title)
	}
	if n.Type != models.NotifyJobRecommendation || n.Link != "/jobs/recommendations" {
		t.Errorf("notice = %+v", n)
	}
	if ids, _ := n.Data["job_ids"].([]string); len(ids) != 1 || ids[0] != "j1" {
		t.Errorf("job_ids = %v", n.Data["job_ids"])
	}
}

func TestDigest_ServeDisabledWaitsForShutdown(t *testing.T) {
	t.Parallel()

	d := NewDigest(newFakeStore(), &fakeRecommender{}, &recordingNotifier{}, config.DigestConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Serve(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestDigest_FirstRun(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		hour int
		want time.Time
	}{
		{"later today", 18, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)},
		{"already passed", 8, time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)},
		{"earlier this hour", 9, time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)},
		{"midnight", 0, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)},
		{"unanchored", -1, now.Add(24 * time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			d := NewDigest(newFakeStore(), &fakeRecommender{}, &recordingNotifier{},
				config.DigestConfig{Enabled: true, Interval: 24 * time.Hour, Hour: tt.hour})
			if got := d.firstRun(now); !got.Equal(tt.want) {
				t.Errorf("firstRun() = %v, want %v", got, tt.want)
			}
		})
	}
}
