// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

var (
	_ suture.Service = (*HTTPServerService)(nil)
	_ suture.Service = (*WebSocketHubService)(nil)
	_ suture.Service = (*EventBusService)(nil)
	_ suture.Service = (*PeriodicService)(nil)
	_ suture.Service = (*FuncService)(nil)
)

// fakeHTTPServer blocks in ListenAndServe until Shutdown.
type fakeHTTPServer struct {
	listenErr error
	stopped   chan struct{}
	shutdowns atomic.Int32
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{stopped: make(chan struct{})}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stopped
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(context.Context) error {
	if f.shutdowns.Add(1) == 1 {
		close(f.stopped)
	}
	return nil
}

func serveAsync(ctx context.Context, svc suture.Service) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- svc.Serve(ctx) }()
	return ch
}

func waitErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
		return nil
	}
}

func TestHTTPServerService(t *testing.T) {
	t.Parallel()

	t.Run("graceful shutdown", func(t *testing.T) {
		t.Parallel()
		srv := newFakeHTTPServer()
		svc := NewHTTPServerService(srv, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		ch := serveAsync(ctx, svc)
		cancel()

		if err := waitErr(t, ch); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
		if srv.shutdowns.Load() != 1 {
			t.Errorf("Shutdown called %d times", srv.shutdowns.Load())
		}
	})

	t.Run("listen failure is returned", func(t *testing.T) {
		t.Parallel()
		srv := newFakeHTTPServer()
		srv.listenErr = errors.New("address already in use")
		svc := NewHTTPServerService(srv, 0)

		err := waitErr(t, serveAsync(context.Background(), svc))
		if err == nil || !errors.Is(err, srv.listenErr) {
			t.Errorf("err = %v", err)
		}
	})

	if got := NewHTTPServerService(newFakeHTTPServer(), 0); got.shutdownTimeout != 10*time.Second || got.String() != "http-server" {
		t.Errorf("defaults = %v, %q", got.shutdownTimeout, got.String())
	}
}

type fakeHub struct{ runs atomic.Int32 }

func (h *fakeHub) RunWithContext(ctx context.Context) error {
	h.runs.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestWebSocketHubService(t *testing.T) {
	t.Parallel()

	hub := &fakeHub{}
	svc := NewWebSocketHubService(hub)
	ctx, cancel := context.WithCancel(context.Background())
	ch := serveAsync(ctx, svc)
	cancel()

	if err := waitErr(t, ch); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if hub.runs.Load() != 1 || svc.String() != "websocket-hub" {
		t.Errorf("runs = %d, name %q", hub.runs.Load(), svc.String())
	}
}

type fakeBus struct {
	startErr error
	started  atomic.Bool
	shutdown atomic.Bool
}

func (b *fakeBus) Start(context.Context) error {
	if b.startErr != nil {
		return b.startErr
	}
	b.started.Store(true)
	return nil
}

func (b *fakeBus) Shutdown(context.Context) { b.shutdown.Store(true) }

func TestEventBusService(t *testing.T) {
	t.Parallel()

	t.Run("start then shutdown", func(t *testing.T) {
		t.Parallel()
		bus := &fakeBus{}
		ctx, cancel := context.WithCancel(context.Background())
		ch := serveAsync(ctx, NewEventBusService(bus, time.Second))

		deadline := time.Now().Add(time.Second)
		for !bus.started.Load() && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		cancel()

		if err := waitErr(t, ch); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v", err)
		}
		if !bus.started.Load() || !bus.shutdown.Load() {
			t.Errorf("started=%v shutdown=%v", bus.started.Load(), bus.shutdown.Load())
		}
	})

	t.Run("start failure", func(t *testing.T) {
		t.Parallel()
		bus := &fakeBus{startErr: errors.New("nats: no servers available")}
		err := waitErr(t, serveAsync(context.Background(), NewEventBusService(bus, 0)))
		if !errors.Is(err, bus.startErr) {
			t.Errorf("err = %v", err)
		}
		if bus.shutdown.Load() {
			t.Error("Shutdown called after failed start")
		}
	})
}

func TestPeriodicService(t *testing.T) {
	t.Parallel()
	logger := zerolog.New(io.Discard)

	t.Run("runs on start and on every tick", func(t *testing.T) {
		t.Parallel()
		var runs atomic.Int32
		svc := NewPeriodicService("session-cleanup", func(context.Context) error {
			runs.Add(1)
			return nil
		}, PeriodicConfig{Interval: 20 * time.Millisecond, RunOnStart: true}, logger)

		ctx, cancel := context.WithCancel(context.Background())
		ch := serveAsync(ctx, svc)
		deadline := time.Now().Add(time.Second)
		for runs.Load() < 3 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		cancel()

		if err := waitErr(t, ch); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v", err)
		}
		if runs.Load() < 3 {
			t.Errorf("runs = %d, want >= 3", runs.Load())
		}
	})

	t.Run("failures do not stop the loop", func(t *testing.T) {
		t.Parallel()
		var runs atomic.Int32
		svc := NewPeriodicService("flaky", func(context.Context) error {
			runs.Add(1)
			return errors.New("database is locked")
		}, PeriodicConfig{Interval: 10 * time.Millisecond}, logger)

		ctx, cancel := context.WithCancel(context.Background())
		ch := serveAsync(ctx, svc)
		deadline := time.Now().Add(time.Second)
		for runs.Load() < 2 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		cancel()
		if err := waitErr(t, ch); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v", err)
		}
		if runs.Load() < 2 {
			t.Errorf("runs = %d", runs.Load())
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		svc := NewPeriodicService("x", func(context.Context) error { return nil }, PeriodicConfig{}, logger)
		if svc.config.Interval != time.Hour || svc.config.Timeout != time.Hour || svc.String() != "x" {
			t.Errorf("config = %+v", svc.config)
		}
	})
}

func TestFuncService(t *testing.T) {
	t.Parallel()

	want := errors.New("retention query failed")
	svc := NewFuncService("audit-retention", func(context.Context) error { return want })
	if err := svc.Serve(context.Background()); !errors.Is(err, want) {
		t.Errorf("err = %v", err)
	}
	if svc.String() != "audit-retention" {
		t.Errorf("name = %q", svc.String())
	}
}
