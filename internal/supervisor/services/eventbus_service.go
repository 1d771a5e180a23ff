// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package services

import (
	"context"
	"fmt"
	"time"
)

// EventBusRunner is implemented by events.Bus. Handlers must be
// subscribed before the service starts.
type EventBusRunner interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context)
}

// EventBusService starts the watermill router and shuts it down, draining
// in-flight handlers, when the tree stops.
type EventBusService struct {
	bus             EventBusRunner
	shutdownTimeout time.Duration
	name            string
}

// NewEventBusService wraps bus. shutdownTimeout 0 means 10s.
func NewEventBusService(bus EventBusRunner, shutdownTimeout time.Duration) *EventBusService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &EventBusService{
		bus:             bus,
		shutdownTimeout: shutdownTimeout,
		name:            "event-bus",
	}
}

func (s *EventBusService) Serve(ctx context.Context) error {
	if err := s.bus.Start(ctx); err != nil {
		return fmt.Errorf("event bus start failed: %w", err)
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	s.bus.Shutdown(shutdownCtx)

	return ctx.Err()
}

func (s *EventBusService) String() string {
	return s.name
}
