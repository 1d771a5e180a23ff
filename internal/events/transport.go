// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/launchpad/internal/config"
)

// Transport names.
const (
	TransportMemory = "memory"
	TransportNATS   = "nats"
)

// transport provides the publisher and per-handler subscribers.
type transport interface {
	Publisher() message.Publisher
	// Subscriber returns the subscriber for the named handler. Handlers
	// with different names each receive every message.
	Subscriber(handler string) (message.Subscriber, error)
	Close() error
}

func newTransport(cfg config.EventsConfig, logger watermill.LoggerAdapter) (transport, error) {
	switch cfg.Transport {
	case "", TransportMemory:
		return newMemoryTransport(logger), nil
	case TransportNATS:
		return newNATSTransport(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown event transport %q", cfg.Transport)
	}
}

// memoryTransport is a single in-process gochannel. GoChannel fans each
// message out to every subscriber of the topic.
type memoryTransport struct {
	ch *gochannel.GoChannel
}

func newMemoryTransport(logger watermill.LoggerAdapter) *memoryTransport {
	return &memoryTransport{
		ch: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
		}, logger),
	}
}

func (t *memoryTransport) Publisher() message.Publisher { return t.ch }

func (t *memoryTransport) Subscriber(string) (message.Subscriber, error) { return t.ch, nil }

func (t *memoryTransport) Close() error { return t.ch.Close() }
