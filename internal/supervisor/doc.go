// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package supervisor runs Launchpad's long-lived services under suture v4.

# Tree

	launchpad
	├── data-layer
	│   ├── audit-retention
	│   └── session-cleanup
	├── messaging-layer
	│   ├── event-bus
	│   ├── websocket-hub
	│   ├── notify-dispatcher
	│   └── notify-digest (when notify.digest.enabled)
	└── api-layer
	    └── http-server

Each layer counts failures on its own, so a dispatcher crash loop backs off
without touching the HTTP server. Supervisor events are logged through the
zerolog-backed slog handler from the logging package.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{})
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
	return tree.Serve(ctx)

Service adapters live in the services subpackage.
*/
package supervisor
