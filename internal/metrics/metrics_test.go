// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/jobs", "200"))
	RecordAPIRequest("GET", "/api/v1/jobs", "200", 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/v1/jobs", "200"))
	if after-before != 1 {
		t.Errorf("api_requests_total delta = %v, want 1", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	start := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - start; got != 1 {
		t.Errorf("active requests delta = %v, want 1", got)
	}
	TrackActiveRequest(false)
}

func TestRecordCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(CacheHits.WithLabelValues("test"))
	misses := testutil.ToFloat64(CacheMisses.WithLabelValues("test"))
	RecordCacheLookup("test", true)
	RecordCacheLookup("test", false)
	RecordCacheLookup("test", false)
	if d := testutil.ToFloat64(CacheHits.WithLabelValues("test")) - hits; d != 1 {
		t.Errorf("hits delta = %v", d)
	}
	if d := testutil.ToFloat64(CacheMisses.WithLabelValues("test")) - misses; d != 2 {
		t.Errorf("misses delta = %v", d)
	}
}

func TestRecordAuthAttempt(t *testing.T) {
	tests := []struct {
		success bool
		outcome string
	}{
		{true, "success"},
		{false, "failure"},
	}
	for _, tt := range tests {
		t.Run(tt.outcome, func(t *testing.T) {
			c := AuthAttempts.WithLabelValues("password", tt.outcome)
			before := testutil.ToFloat64(c)
			RecordAuthAttempt("password", tt.success)
			if d := testutil.ToFloat64(c) - before; d != 1 {
				t.Errorf("delta = %v", d)
			}
		})
	}
}

func TestBreakerStateValue(t *testing.T) {
	tests := map[string]float64{"closed": 0, "half-open": 1, "open": 2, "bogus": -1}
	for state, want := range tests {
		if got := BreakerStateValue(state); got != want {
			t.Errorf("BreakerStateValue(%q) = %v, want %v", state, got, want)
		}
	}
}

func TestRecordBreakerTransition(t *testing.T) {
	RecordBreakerTransition("test-breaker", "closed", "open")
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("test-breaker")); got != 2 {
		t.Errorf("state gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("test-breaker", "closed", "open")); got < 1 {
		t.Errorf("transitions = %v", got)
	}
}

func TestRecordDelivery_SkippedHasNoDuration(t *testing.T) {
	before := testutil.CollectAndCount(NotificationDeliveryDuration)
	RecordDelivery("skiptest", "skipped", time.Second)
	if after := testutil.CollectAndCount(NotificationDeliveryDuration); after != before {
		t.Errorf("skipped delivery created a duration series: %d -> %d", before, after)
	}
}
