// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package notify delivers notifications over in-app, email and webhook
// channels.
//
// Flow:
//
//	domain event -> EventHandlers -> Dispatcher.Notify -> queue -> workers -> Channel.Send
//
// Notify resolves each recipient, skips unknown or inactive users, checks
// the (type, channel) preference and queues one delivery per enabled
// channel. All deliveries for one user share a notification ID, which is
// also sent as the webhook delivery ID.
//
// Workers retry transient failures (connection errors, timeouts, 429 and
// 5xx responses, SMTP 4xx replies) with exponential backoff from BaseDelay
// up to MaxDelay, at most MaxRetries times. Permanent failures are logged
// and counted in notification_deliveries_total.
//
// Channels:
//
//   - in_app: stored in the database and pushed over the websocket hub
//     together with the new unread count.
//   - email: plain-text SMTP. Disabled when no SMTP host is configured.
//   - webhook: JSON POST signed with HMAC-SHA256 over "timestamp.body" in
//     X-Launchpad-Signature, rate limited and behind a circuit breaker.
//     Disabled when no URL is configured.
//
// Digest sends each youth at most one job_recommendation notice per
// interval covering jobs published since their previous digest.
package notify
