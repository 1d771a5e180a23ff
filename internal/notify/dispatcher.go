// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/launchpad/internal/cache"
	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
	"github.com/tomtom215/launchpad/internal/models"
)

// Store resolves recipients and their channel preferences.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	IsChannelEnabled(ctx context.Context, userID string, t models.NotificationType, c models.NotificationChannel) (bool, error)
}

// Notifier fans a notice out to users.
type Notifier interface {
	Notify(ctx context.Context, userIDs []string, n Notice) (int, error)
}

// Notice is the channel-independent content of a notification.
type Notice struct {
	// Key names the source event. Each (Key, user) pair is queued at most
	// once within fanoutTTL, so a redelivered event only reaches the users
	// the earlier attempt missed. Empty disables the check.
	Key   string
	Type  models.NotificationType
	Title string
	Body  string
	Link  string
	Data  map[string]interface{}
}

type job struct {
	channel  Channel
	delivery Delivery
}

const (
	queueSize = 1024
	fanoutTTL = time.Hour
)

// Dispatcher resolves recipients, applies preferences and delivers through
// a bounded worker pool with exponential backoff on transient errors.
type Dispatcher struct {
	store       Store
	registry    *Registry
	queue       chan job
	maxRetries  int
	baseDelay   time.Duration
	maxDelay    time.Duration
	parallelism int
	logger      zerolog.Logger
	now         func() time.Time
	fanned      *cache.Cache[struct{}]

	mu      sync.Mutex
	running bool
}

// NewDispatcher creates a dispatcher. Deliveries queue until Serve runs.
func NewDispatcher(store Store, registry *Registry, cfg config.NotifyConfig) *Dispatcher {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 4
	}
	return &Dispatcher{
		store:       store,
		registry:    registry,
		queue:       make(chan job, queueSize),
		maxRetries:  cfg.MaxRetries,
		baseDelay:   cfg.BaseDelay,
		maxDelay:    cfg.MaxDelay,
		parallelism: cfg.Parallelism,
		logger:      logging.WithComponent("notify"),
		now:         time.Now,
		fanned:      cache.New[struct{}]("notify-fanout", fanoutTTL, 0),
	}
}

// Close stops the fan-out bookkeeping janitor.
func (d *Dispatcher) Close() {
	d.fanned.Close()
}

// Channels returns the registered channel names.
func (d *Dispatcher) Channels() []models.NotificationChannel {
	return d.registry.List()
}

// Notify queues n for every active user in userIDs on each channel they
// have enabled. It returns the number of queued deliveries. Unknown and
// inactive users are skipped.
func (d *Dispatcher) Notify(ctx context.Context, userIDs []string, n Notice) (int, error) {
	base := models.Notification{
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		Link:      n.Link,
		Data:      n.Data,
		CreatedAt: d.now().UTC(),
	}

	queued := 0
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}

		user, err := d.store.GetUserByID(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return queued, err
		}
		if !user.IsActive() {
			continue
		}

		fanKey := ""
		if n.Key != "" {
			fanKey = n.Key + "|" + id
			if _, done := d.fanned.Get(fanKey); done {
				continue
			}
		}

		// One ID per user, shared by all of that user's channels.
		notification := base
		notification.ID = uuid.New().String()

		// Resolve every channel before queuing so a store error leaves
		// this user untouched.
		var jobs []job
		for _, name := range d.registry.List() {
			ch, _ := d.registry.Get(name)
			enabled, err := d.store.IsChannelEnabled(ctx, id, n.Type, name)
			if err != nil {
				return queued, err
			}
			if !enabled {
				metrics.RecordDelivery(string(name), "skipped", 0)
				continue
			}
			jobs = append(jobs, job{channel: ch, delivery: Delivery{
				Recipient:    Recipient{UserID: user.ID, Email: user.Email, Name: user.Name},
				Notification: notification,
			}})
		}

		for _, j := range jobs {
			select {
			case d.queue <- j:
				queued++
			case <-ctx.Done():
				return queued, ctx.Err()
			}
		}
		if fanKey != "" {
			d.fanned.Set(fanKey, struct{}{})
		}
	}
	return queued, nil
}

// Serve runs the worker pool until ctx is canceled. Queued deliveries that
// have not started are dropped on shutdown.
func (d *Dispatcher) Serve(ctx context.Context) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return errors.New("dispatcher already running")
	}
	d.running = true
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	var wg sync.WaitGroup
	for i := 0; i < d.parallelism; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j := <-d.queue:
					d.deliver(ctx, j)
				}
			}
		}()
	}
	wg.Wait()
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (d *Dispatcher) String() string { return "notify-dispatcher" }

// QueueLen reports deliveries waiting for a worker.
func (d *Dispatcher) QueueLen() int { return len(d.queue) }

func (d *Dispatcher) deliver(ctx context.Context, j job) {
	channel := string(j.channel.Name())
	for attempt := 0; ; attempt++ {
		j.delivery.Attempt = attempt
		start := time.Now()
		err := j.channel.Send(ctx, &j.delivery)
		if err == nil {
			metrics.RecordDelivery(channel, "delivered", time.Since(start))
			return
		}

		if !IsTransient(err) || attempt >= d.maxRetries || ctx.Err() != nil {
			metrics.RecordDelivery(channel, "failed", time.Since(start))
			d.logger.Warn().Err(err).
				Str("channel", channel).
				Str("user_id", j.delivery.Recipient.UserID).
				Str("notification_id", j.delivery.Notification.ID).
				Str("code", ErrorCode(err)).
				Int("attempts", attempt+1).
				Msg("notification delivery failed")
			return
		}

		metrics.RecordDelivery(channel, "retry", time.Since(start))
		timer := time.NewTimer(d.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// backoff returns baseDelay * 2^attempt, capped at maxDelay.
func (d *Dispatcher) backoff(attempt int) time.Duration {
	delay := d.baseDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= d.maxDelay {
			return d.maxDelay
		}
	}
	if delay > d.maxDelay {
		return d.maxDelay
	}
	return delay
}
