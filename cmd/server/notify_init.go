// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package main

import (
	"fmt"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/events"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/notify"
	"github.com/tomtom215/launchpad/internal/recommend"
	ws "github.com/tomtom215/launchpad/internal/websocket"
)

// NotifyComponents holds the notification services added to the
// messaging layer.
type NotifyComponents struct {
	dispatcher *notify.Dispatcher
	// digest is nil when the weekly digest is disabled.
	digest *notify.Digest
}

// initNotify registers the delivery channels, creates the dispatcher and
// subscribes the domain event handlers on bus.
func initNotify(cfg *config.Config, db *database.DB, hub *ws.Hub, engine *recommend.Engine, bus *events.Bus) (*NotifyComponents, error) {
	channels := []notify.Channel{notify.NewInAppChannel(db, hub)}
	names := []string{"in_app"}

	// The constructors return nil pointers when unconfigured; keep them
	// out of the variadic list so the registry never sees a typed nil.
	if email := notify.NewEmailChannel(cfg.Notify.SMTP, cfg.Server.PublicURL); email != nil {
		channels = append(channels, email)
		names = append(names, "email")
	}
	if webhook := notify.NewWebhookChannel(cfg.Notify.Webhook); webhook != nil {
		channels = append(channels, webhook)
		names = append(names, "webhook")
	}

	dispatcher := notify.NewDispatcher(db, notify.NewRegistry(channels...), cfg.Notify)
	if err := notify.NewEventHandlers(dispatcher, db).Register(bus); err != nil {
		dispatcher.Close()
		return nil, fmt.Errorf("register notification handlers: %w", err)
	}

	components := &NotifyComponents{dispatcher: dispatcher}
	if cfg.Notify.Digest.Enabled {
		components.digest = notify.NewDigest(db, engine, dispatcher, cfg.Notify.Digest)
	}

	logging.Info().
		Strs("channels", names).
		Bool("digest", components.digest != nil).
		Msg("Notifications initialized")
	return components, nil
}

// Close releases the dispatcher's background resources.
func (c *NotifyComponents) Close() {
	c.dispatcher.Close()
}
