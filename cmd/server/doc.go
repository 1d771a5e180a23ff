// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package main is the entry point for the Launchpad server.

Launchpad connects young job seekers with companies and training
institutions. Companies post jobs, institutions publish courses, youth
build a skills profile and receive ranked job recommendations with the
courses that close their skill gaps.

# Application Architecture

Services run under a Suture v4 supervisor tree:

	RootSupervisor ("launchpad")
	├── DataSupervisor ("data-layer")
	│   ├── audit-retention (daily deletion of old audit events)
	│   └── session-cleanup (expired sessions and lockout entries)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── event-bus (Watermill over gochannel or NATS JetStream)
	│   ├── websocket-hub
	│   ├── notify-dispatcher (in-app, email and webhook delivery)
	│   └── notify-digest (optional weekly job digest)
	└── APISupervisor ("api-layer")
	    └── http-server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml, .env and environment
 2. Logging: zerolog, console or JSON
 3. Database: DuckDB with schema migrations, optional demo data
 4. Audit trail: DuckDB-backed async logger
 5. Authentication: JWT sessions (memory or BadgerDB), lockout, optional OIDC
 6. Authorization: Casbin RBAC on every protected route
 7. Event bus, recommendation engine, notifications
 8. Uploads and the SQLite job importer
 9. HTTP server with Swagger UI at /swagger/

# Commands

	launchpad                 # run the server
	launchpad import-jobs     # import jobs from a SQLite tracker and exit

# Build Tags

	go build ./cmd/server               # in-process event bus
	go build -tags nats ./cmd/server    # NATS JetStream event transport

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests, the dispatcher and event bus stop, and the audit
logger flushes its buffer before the database is closed.

# Example Usage

	export JWT_SECRET=$(openssl rand -base64 48)
	export ADMIN_EMAIL=admin@example.org
	export ADMIN_PASSWORD='a long admin passphrase'
	export SEED_DEMO_DATA=true
	./launchpad
*/
package main
