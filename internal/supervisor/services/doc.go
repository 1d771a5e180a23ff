// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package services adapts Launchpad components to suture.Service.

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Adapters

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancel
  - WebSocketHubService: websocket.Hub.RunWithContext
  - EventBusService: events.Bus Start, then Shutdown on cancel
  - PeriodicService: runs a task on a fixed interval (session cleanup)
  - FuncService: any blocking func(ctx) error (audit retention)

notify.Dispatcher and notify.Digest implement Serve and String themselves
and are added to the tree directly.

Returning an error from Serve asks the supervisor to restart the service;
returning ctx.Err() after cancellation is a clean stop.
*/
package services
