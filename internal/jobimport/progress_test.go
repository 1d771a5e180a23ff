// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package jobimport

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestBadgerProgress(t *testing.T) {
	t.Parallel()

	p, err := OpenBadgerProgress("")
	if err != nil {
		t.Fatalf("OpenBadgerProgress() error = %v", err)
	}
	defer p.Close()
	ctx := context.Background()
	key := ProgressKey("/data/jobs.db", "acme")

	got, err := p.Load(ctx, key)
	if err != nil || got != nil {
		t.Fatalf("Load() empty = %+v, %v", got, err)
	}

	in := &Stats{Source: "/data/jobs.db", TenantID: "acme", Processed: 40, LastRowID: 41, StartTime: time.Unix(1700000000, 0).UTC()}
	if err := p.Save(ctx, key, in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err = p.Load(ctx, key)
	if err != nil || got == nil {
		t.Fatalf("Load() = %+v, %v", got, err)
	}
	if got.LastRowID != 41 || got.Processed != 40 || !got.StartTime.Equal(in.StartTime) {
		t.Errorf("Load() = %+v", got)
	}

	if other, _ := p.Load(ctx, ProgressKey("/data/jobs.db", "globex")); other != nil {
		t.Error("progress leaked across tenants")
	}

	if err := p.Clear(ctx, key); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if err := p.Clear(ctx, key); err != nil {
		t.Fatalf("second Clear() error = %v", err)
	}
	if got, _ := p.Load(ctx, key); got != nil {
		t.Errorf("Load() after Clear = %+v", got)
	}
}

func TestProgressKey(t *testing.T) {
	t.Parallel()

	a := ProgressKey("/data/jobs.db", "acme")
	if !strings.HasPrefix(a, progressPrefix+"acme:") {
		t.Errorf("ProgressKey() = %q", a)
	}
	if a == ProgressKey("/data/other.db", "acme") {
		t.Error("different sources share a key")
	}
}

func TestStatsToSummary(t *testing.T) {
	t.Parallel()

	if s := (&Stats{}).ToSummary(false); s.Status != "idle" {
		t.Errorf("idle status = %s", s.Status)
	}
	start := time.Now().Add(-10 * time.Second)
	running := (&Stats{StartTime: start, TotalRecords: 100, Processed: 50}).ToSummary(true)
	if running.Status != "running" || running.Progress != 50 || running.EstimatedRemain <= 0 {
		t.Errorf("running summary = %+v", running)
	}
	failed := (&Stats{StartTime: start, EndTime: time.Now(), Error: "boom"}).ToSummary(false)
	if failed.Status != "failed" {
		t.Errorf("failed status = %s", failed.Status)
	}
}
