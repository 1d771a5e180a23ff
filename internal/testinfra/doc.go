// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package testinfra provides containers and mock receivers for integration
// tests. Everything here is behind the integration build tag.
//
// # Containers
//
// NewNATSContainer starts a JetStream-enabled NATS server for the nats
// event transport; NewMailpitContainer starts an SMTP capture server for
// the email notification channel:
//
//	func TestEmailDelivery(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    mp, err := testinfra.NewMailpitContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, mp.Container)
//	    // point config.NotifyConfig SMTP at mp.SMTPHost:mp.SMTPPort
//	}
//
// Tests are skipped when Docker is unavailable. The first run pulls the
// images.
//
// # Webhook receiver
//
// MockWebhookServer records webhook deliveries for signature and payload
// assertions.
package testinfra
