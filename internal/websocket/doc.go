// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package websocket pushes realtime updates to signed-in users.

A Hub keeps every connection indexed by user ID. Producers address users,
not connections:

	hub := websocket.NewHub()
	go hub.RunWithContext(ctx)

	hub.SendToUser(userID, websocket.MessageTypeNotification, n)
	hub.SendToUsers(participants, websocket.MessageTypeMessage, msg)

Each Client runs a read pump (pings, disconnect detection) and a write pump
(messages and keepalive pings). A client whose 256-message buffer fills is
disconnected rather than allowed to stall the hub.

Message types:

  - notification: a new in-app notification
  - message: a new direct message in one of the user's conversations
  - unread_count: updated unread notification count
  - system: broadcast notices
  - ping / pong: application-level keepalive

The HTTP handler authenticates the request first and then calls ServeUser;
the hub itself trusts the user ID it is given.
*/
package websocket
