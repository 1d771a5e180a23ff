// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

//go:build !nats

package events

import (
	"errors"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/launchpad/internal/config"
)

// ErrNATSNotCompiled is returned when the nats transport is configured in a
// binary built without the nats tag.
var ErrNATSNotCompiled = errors.New("nats transport requires building with -tags nats")

func newNATSTransport(config.EventsConfig, watermill.LoggerAdapter) (transport, error) {
	return nil, ErrNATSNotCompiled
}
