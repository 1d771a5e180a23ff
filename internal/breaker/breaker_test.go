// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package breaker

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func TestExecute_ReturnsTypedResult(t *testing.T) {
	b := New("test-typed", Settings{})
	got, err := Execute(b, nil, func() (int, error) { return 42, nil })
	if err != nil || got != 42 {
		t.Fatalf("Execute = %d, %v", got, err)
	}
}

func TestExecute_OpensAfterFailures(t *testing.T) {
	b := New("test-open", Settings{MinRequests: 3, FailureRatio: 0.5, Timeout: time.Hour})

	for i := 0; i < 3; i++ {
		if _, err := Execute(b, nil, func() (struct{}, error) { return struct{}{}, errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("call %d err = %v", i, err)
		}
	}
	if b.State() != "open" {
		t.Fatalf("state = %s, want open", b.State())
	}
	_, err := Execute(b, nil, func() (struct{}, error) { return struct{}{}, nil })
	if !IsRejection(err) {
		t.Errorf("err = %v, want rejection", err)
	}
}

func TestExecute_IgnoredErrorsDoNotTrip(t *testing.T) {
	b := New("test-ignore", Settings{MinRequests: 2, FailureRatio: 0.5})
	ignore := func(err error) bool { return errors.Is(err, errBoom) }

	for i := 0; i < 5; i++ {
		if _, err := Execute(b, ignore, func() (int, error) { return 0, errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("err = %v, want passthrough", err)
		}
	}
	if b.State() != "closed" {
		t.Errorf("state = %s, want closed", b.State())
	}
}
