// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package audit records security-relevant actions on the platform.
//
// # Event Types
//
//   - auth.success, auth.failure, auth.lockout, auth.logout
//   - authz.denied: a request rejected by the Casbin enforcer
//   - user.status_changed: an admin suspended or reactivated a user
//   - tenant.verified: an admin verified or unverified a company or institution
//   - job.deleted: a posting removed by its company or an admin
//   - notification.broadcast: an admin broadcast, with recipient count
//   - data.import: a finished SQLite job import run
//   - admin.action: anything else an admin does
//
// # Writing
//
// Logger.Log is non-blocking. Events go through a buffered channel to a
// single writer goroutine; when the buffer is full the event is dropped
// and audit_events_dropped_total is incremented. Close drains
// the buffer before returning.
//
// # Storage
//
// DuckDBStore shares the application's DuckDB connection and owns the
// audit_events table. MemoryStore is used in tests and when audit
// persistence is disabled.
//
// # Retention
//
// RunRetention deletes events older than RetentionDays (default 90) every
// CleanupInterval (default 24h). It runs as a supervised service.
//
// # Querying
//
// GET /api/v1/admin/audit filters by type, actor, target and time range
// with limit/offset paging. Results are newest first.
package audit
