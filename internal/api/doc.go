// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package api provides the HTTP REST API for Launchpad.

# Routing

Routes are served by chi. Router.Setup builds the tree:

  - /api/v1/health: liveness, readiness and component checks
  - /api/v1/auth: registration, password login, OIDC single sign-on
  - /api/v1/jobs, /api/v1/courses: public catalogue reads (auth optional)
  - everything else under /api/v1: authenticated, then authorized by the
    Casbin enforcer in internal/authz
  - /api/jobs/recommendations: unversioned alias of the recommendations route
  - /metrics and /swagger/*

Casbin decides which role may call which route. Tenant ownership (a company
editing only its own jobs, an institution only its own courses) is checked
inside the handlers.

# Response Format

Every JSON response uses the models.APIResponse envelope:

	{"status":"success","data":{...},"metadata":{"timestamp":"...","query_time_ms":3}}
	{"status":"error","error":{"code":"NOT_FOUND","message":"job not found"},"metadata":{...}}

List endpoints add total, limit and offset to the metadata.

# Rate Limiting

go-chi/httprate limits are keyed by the client address resolved by
middleware.ClientIP. Login, registration, uploads, writes and the WebSocket
upgrade have tighter limits than the API default. A tripped limit answers
429 with code RATE_LIMITED.

# Realtime

GET /api/v1/ws upgrades to a WebSocket bound to the signed-in user. The hub
pushes "message", "notification" and "unread_count" frames.
*/
package api
