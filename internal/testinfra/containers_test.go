// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

//go:build integration

package testinfra

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestNATSContainer_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	nc, err := NewNATSContainer(ctx)
	if err != nil {
		t.Fatalf("NewNATSContainer() error = %v", err)
	}
	defer CleanupContainer(t, ctx, nc.Container)

	if !strings.HasPrefix(nc.URL, "nats://") {
		t.Errorf("URL = %q, want nats:// scheme", nc.URL)
	}
	state, err := nc.State(ctx)
	if err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if state.Status != "running" {
		t.Errorf("State = %q, want running", state.Status)
	}
}

func TestMailpitContainer_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mp, err := NewMailpitContainer(ctx)
	if err != nil {
		t.Fatalf("NewMailpitContainer() error = %v", err)
	}
	defer CleanupContainer(t, ctx, mp.Container)

	msgs, err := mp.Messages(ctx)
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("fresh mailbox has %d messages", len(msgs))
	}
}

func TestMockWebhookServer(t *testing.T) {
	m := NewMockWebhookServer(t)
	m.SetResponseStatus(http.StatusAccepted)

	resp, err := http.Post(m.URL()+"/hooks/launchpad", "application/json", bytes.NewBufferString(`{"type":"job.published"}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("status = %d, want 202", resp.StatusCode)
	}
	if !m.WaitForCaptures(1, time.Second) {
		t.Fatal("no capture recorded")
	}
	got := m.Captures()[0]
	if got.Path != "/hooks/launchpad" || string(got.Body) != `{"type":"job.published"}` {
		t.Errorf("capture = %+v", got)
	}
}

func TestIsDockerAvailable(t *testing.T) {
	t.Logf("Docker available: %v", IsDockerAvailable())
}
