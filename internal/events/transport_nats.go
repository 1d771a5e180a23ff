// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

//go:build nats

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/launchpad/internal/config"
)

// natsTransport publishes to a JetStream stream covering AllTopics. Each
// handler gets its own durable consumer so every handler sees every event.
type natsTransport struct {
	cfg      config.EventsConfig
	url      string
	logger   watermill.LoggerAdapter
	embedded *server.Server
	pub      message.Publisher
	subs     []message.Subscriber
}

func newNATSTransport(cfg config.EventsConfig, logger watermill.LoggerAdapter) (transport, error) {
	t := &natsTransport{cfg: cfg, url: cfg.NATSURL, logger: logger}

	if cfg.EmbeddedServer {
		ns, err := startEmbeddedServer(cfg.StoreDir)
		if err != nil {
			return nil, err
		}
		t.embedded = ns
		t.url = ns.ClientURL()
	}
	if t.url == "" {
		t.url = natsgo.DefaultURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := t.ensureStream(ctx); err != nil {
		t.shutdownServer()
		return nil, err
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         t.url,
		NatsOptions: t.natsOptions("publisher"),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		t.shutdownServer()
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}
	t.pub = pub
	return t, nil
}

func startEmbeddedServer(storeDir string) (*server.Server, error) {
	ns, err := server.NewServer(&server.Options{
		ServerName: "launchpad-events",
		Host:       "127.0.0.1",
		Port:       server.RANDOM_PORT,
		JetStream:  true,
		StoreDir:   storeDir,
		MaxPayload: 1024 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}
	ns.ConfigureLogger()
	go ns.Start()

	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, errors.New("NATS server not ready within timeout")
	}
	return ns, nil
}

func (t *natsTransport) ensureStream(ctx context.Context) error {
	nc, err := natsgo.Connect(t.url, natsgo.Name("launchpad-stream-init"))
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		return fmt.Errorf("create jetstream context: %w", err)
	}

	streamCfg := jetstream.StreamConfig{
		Name:       t.cfg.StreamName,
		Subjects:   AllTopics,
		Retention:  jetstream.LimitsPolicy,
		MaxAge:     7 * 24 * time.Hour,
		Duplicates: 2 * time.Minute,
		Storage:    jetstream.FileStorage,
		Discard:    jetstream.DiscardOld,
	}
	if _, err := js.Stream(ctx, t.cfg.StreamName); err == nil {
		if _, err := js.UpdateStream(ctx, streamCfg); err != nil {
			return fmt.Errorf("update stream: %w", err)
		}
		return nil
	}
	if _, err := js.CreateStream(ctx, streamCfg); err != nil {
		return fmt.Errorf("create stream: %w", err)
	}
	return nil
}

func (t *natsTransport) natsOptions(role string) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("launchpad-" + role),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				t.logger.Error("NATS disconnected", err, watermill.LogFields{"role": role})
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			t.logger.Info("NATS reconnected", watermill.LogFields{"role": role, "url": nc.ConnectedUrl()})
		}),
	}
}

func (t *natsTransport) Publisher() message.Publisher { return t.pub }

func (t *natsTransport) Subscriber(handler string) (message.Subscriber, error) {
	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              t.url,
		QueueGroupPrefix: t.cfg.DurableName + "-" + handler,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     t.cfg.CloseTimeout,
		NatsOptions:      t.natsOptions("subscriber-" + handler),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			AckAsync:      false,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.MaxDeliver(5),
				natsgo.MaxAckPending(256),
				natsgo.AckWait(30 * time.Second),
				natsgo.DeliverNew(),
				natsgo.BindStream(t.cfg.StreamName),
			},
			DurablePrefix: t.cfg.DurableName + "-" + handler,
		},
	}, t.logger)
	if err != nil {
		return nil, fmt.Errorf("create nats subscriber for %s: %w", handler, err)
	}
	t.subs = append(t.subs, sub)
	return sub, nil
}

func (t *natsTransport) Close() error {
	var errs []error
	for _, s := range t.subs {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if t.pub != nil {
		if err := t.pub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	t.shutdownServer()
	return errors.Join(errs...)
}

func (t *natsTransport) shutdownServer() {
	if t.embedded == nil {
		return
	}
	t.embedded.Shutdown()
	t.embedded.WaitForShutdown()
	t.embedded = nil
}
