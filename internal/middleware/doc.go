// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package middleware provides the infrastructure layers of the HTTP stack.

All middleware uses the chi signature func(http.Handler) http.Handler and
is mounted by the api package router:

	r.Use(middleware.RequestID)
	r.Use(middleware.ClientIP(cfg.Security.TrustedProxies))
	r.Use(middleware.PrometheusMetrics)
	r.Use(perf.Middleware)
	r.Use(middleware.Compression)

Components:

  - RequestID: reuses a well-formed X-Request-ID or generates a UUID, and
    seeds the logging context with request and correlation IDs
  - ClientIP: resolves the caller address, trusting forwarding headers only
    from configured proxy prefixes; read it with ClientIPFromContext
  - PrometheusMetrics: request counters and latency histograms labeled by
    chi route pattern
  - PerformanceMonitor: an in-memory sliding window with percentiles, served
    at GET /api/v1/admin/performance
  - Compression: gzip for clients that accept it

Response wrappers forward http.Flusher and http.Hijacker so the WebSocket
endpoint works behind every layer.
*/
package middleware
