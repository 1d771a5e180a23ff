// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got %q", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamps enabled by default")
	}
}

func TestInit_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Info().Str("job_id", "j-1").Msg("job published")

	out := buf.String()
	for _, want := range []string{`"message":"job published"`, `"level":"info"`, `"job_id":"j-1"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"disabled", zerolog.Disabled},
		{"  debug ", zerolog.DebugLevel},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCtx_AddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { Init(DefaultConfig()) })

	ctx := ContextWithRequestID(context.Background(), "req-123")
	ctx = ContextWithCorrelationID(ctx, "corr-9")
	ctx = ContextWithUserID(ctx, "user-7")

	Ctx(ctx).Info().Msg("hello")

	out := buf.String()
	for _, want := range []string{`"request_id":"req-123"`, `"correlation_id":"corr-9"`, `"user_id":"user-7"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}

func TestContextGetters_Empty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if RequestIDFromContext(ctx) != "" || CorrelationIDFromContext(ctx) != "" || UserIDFromContext(ctx) != "" {
		t.Error("expected empty ids on bare context")
	}
	if len(GenerateRequestID()) != 36 {
		t.Error("request id should be a UUID")
	}
	if len(GenerateCorrelationID()) != 8 {
		t.Error("correlation id should be 8 chars")
	}
}

func TestRedaction(t *testing.T) {
	t.Parallel()

	if got := RedactEmail("amina@example.org"); got != "a***@example.org" {
		t.Errorf("RedactEmail = %q", got)
	}
	if got := RedactEmail("broken"); got != "***" {
		t.Errorf("RedactEmail(no at) = %q", got)
	}
	if got := RedactToken("eyJhbGciOiJIUzI1NiJ9.x.y"); got != "eyJhbG..." {
		t.Errorf("RedactToken = %q", got)
	}
	if got := RedactToken("abc"); got != "***" {
		t.Errorf("RedactToken(short) = %q", got)
	}
	if got := SanitizeValue("line1\nline2", 100); got != "line1 line2" {
		t.Errorf("SanitizeValue newline = %q", got)
	}
	if got := SanitizeValue("abcdef", 3); got != "abc..." {
		t.Errorf("SanitizeValue truncate = %q", got)
	}
}
