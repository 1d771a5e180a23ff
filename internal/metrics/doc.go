// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto and
exposed at /metrics in the Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

API:
  - api_requests_total{method, endpoint, status_code}
  - api_request_duration_seconds{method, endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Database:
  - duckdb_query_duration_seconds{operation, table}
  - duckdb_query_errors_total{operation, table}

Domain:
  - recommendation_scoring_duration_seconds, recommendation_candidates
  - notification_deliveries_total{channel, outcome}
  - notification_delivery_duration_seconds{channel}
  - notification_digest_runs_total{outcome}
  - upload_bytes_total{backend}, uploads_total{kind, outcome}
  - events_published_total{topic}, events_consumed_total{topic, outcome}
  - auth_attempts_total{method, outcome}, auth_lockouts_total
  - authz_decisions_total{decision}
  - job_import_rows_total{outcome}
  - audit_events_dropped_total

Infrastructure:
  - cache_hits_total{cache}, cache_misses_total{cache}, cache_evictions_total{cache}
  - websocket_connections, websocket_messages_sent_total, websocket_messages_dropped_total
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name, result},
    circuit_breaker_state_transitions_total{name, from_state, to_state}
  - app_info{version, go_version}, app_uptime_seconds

# Usage

	start := time.Now()
	defer func() {
	    metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(status), time.Since(start))
	}()

Label values must be bounded. Route patterns, never raw paths, are used for
the endpoint label.
*/
package metrics
