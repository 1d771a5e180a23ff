// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/launchpad/internal/breaker"
	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
)

// Handler consumes one event. A returned error nacks the message and the
// router retries it with backoff.
type Handler func(ctx context.Context, e Event) error

// Publisher is the publishing half of the bus.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

var (
	// ErrBusStarted is returned by Subscribe once the router is running.
	ErrBusStarted = errors.New("event bus already started")
	// ErrBusClosed is returned by Publish after Shutdown.
	ErrBusClosed = errors.New("event bus closed")
)

// Bus publishes domain events and routes them to registered handlers.
type Bus struct {
	cfg       config.EventsConfig
	transport transport
	router    *message.Router
	breaker   *breaker.Breaker
	wmLogger  watermill.LoggerAdapter
	logger    zerolog.Logger

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	done    chan error
}

// NewBus creates a bus on the configured transport.
func NewBus(cfg config.EventsConfig) (*Bus, error) {
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 30 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 100 * time.Millisecond
	}
	if cfg.StreamName == "" {
		cfg.StreamName = "LAUNCHPAD"
	}
	if cfg.DurableName == "" {
		cfg.DurableName = "launchpad-notify"
	}

	wmLogger := NewLoggerAdapter()
	tr, err := newTransport(cfg, wmLogger)
	if err != nil {
		return nil, err
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, wmLogger)
	if err != nil {
		_ = tr.Close()
		return nil, fmt.Errorf("create watermill router: %w", err)
	}
	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      cfg.RetryCount,
			InitialInterval: cfg.RetryInterval,
			MaxInterval:     10 * cfg.RetryInterval,
			Multiplier:      2,
			Logger:          wmLogger,
		}.Middleware,
	)

	return &Bus{
		cfg:       cfg,
		transport: tr,
		router:    router,
		breaker:   breaker.New("events-publish", breaker.Settings{}),
		wmLogger:  wmLogger,
		logger:    logging.WithComponent("events"),
	}, nil
}

// Subscribe registers h for topic under a unique handler name. All
// subscriptions must be made before Start.
func (b *Bus) Subscribe(name, topic string, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return ErrBusStarted
	}

	sub, err := b.transport.Subscriber(name)
	if err != nil {
		return err
	}
	b.router.AddConsumerHandler(name, topic, sub, func(msg *message.Message) error {
		var e Event
		if err := json.Unmarshal(msg.Payload, &e); err != nil {
			// Malformed messages are acked; redelivery cannot fix them.
			b.logger.Error().Err(err).Str("handler", name).Str("message_id", msg.UUID).Msg("Dropping malformed event")
			metrics.EventsConsumed.WithLabelValues(topic, "malformed").Inc()
			return nil
		}
		if err := h(msg.Context(), e); err != nil {
			metrics.EventsConsumed.WithLabelValues(topic, "error").Inc()
			return fmt.Errorf("%s: %w", name, err)
		}
		metrics.EventsConsumed.WithLabelValues(topic, "ok").Inc()
		return nil
	})
	return nil
}

// Publish sends e on the topic named by e.Type.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrBusClosed
	}
	if e.Type == "" {
		return errors.New("event type is required")
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(e.ID, data)
	msg.Metadata.Set("event_type", e.Type)
	if e.ActorID != "" {
		msg.Metadata.Set("actor_id", e.ActorID)
	}
	msg.SetContext(ctx)

	_, err = breaker.Execute(b.breaker, nil, func() (struct{}, error) {
		return struct{}{}, b.transport.Publisher().Publish(e.Type, msg)
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	metrics.EventsPublished.WithLabelValues(e.Type).Inc()
	return nil
}

// Emit builds an event from payload and publishes it. Failures are logged
// and returned; callers on request paths usually ignore them.
func (b *Bus) Emit(ctx context.Context, topic, actorID string, payload interface{}) error {
	e, err := NewEvent(topic, actorID, payload)
	if err == nil {
		err = b.Publish(ctx, e)
	}
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("topic", topic).Msg("Event not published")
	}
	return err
}

// Start runs the router in the background and returns once it is
// consuming, or with the router's startup error.
func (b *Bus) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return nil
	}
	if b.closed {
		b.mu.Unlock()
		return ErrBusClosed
	}
	b.started = true
	runCtx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.done = make(chan error, 1)
	b.mu.Unlock()

	go func() {
		b.done <- b.router.Run(runCtx)
	}()

	select {
	case <-b.router.Running():
		b.logger.Info().Str("transport", b.transportName()).Msg("Event bus running")
		return nil
	case err := <-b.done:
		cancel()
		if err == nil {
			err = errors.New("event router stopped during startup")
		}
		return err
	case <-ctx.Done():
		cancel()
		return ctx.Err()
	}
}

// Running is closed once handlers are consuming.
func (b *Bus) Running() <-chan struct{} {
	return b.router.Running()
}

// IsRunning reports whether Start succeeded and Shutdown has not run.
func (b *Bus) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started || b.closed {
		return false
	}
	select {
	case <-b.router.Running():
		return true
	default:
		return false
	}
}

// Shutdown stops the router and releases the transport. Safe to call more
// than once.
func (b *Bus) Shutdown(ctx context.Context) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	cancel, done := b.cancel, b.done
	b.mu.Unlock()

	if err := b.router.Close(); err != nil {
		b.logger.Warn().Err(err).Msg("Event router close")
	}
	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			b.logger.Warn().Msg("Event router did not stop before deadline")
		}
	}
	if err := b.transport.Close(); err != nil {
		b.logger.Warn().Err(err).Msg("Event transport close")
	}
}

func (b *Bus) transportName() string {
	if b.cfg.Transport == "" {
		return TransportMemory
	}
	return b.cfg.Transport
}
