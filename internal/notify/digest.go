// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/models"
	"github.com/tomtom215/launchpad/internal/recommend"
)

// DigestStore tracks who gets a digest and when they last got one.
type DigestStore interface {
	ListUserIDsByRole(ctx context.Context, role models.Role) ([]string, error)
	IsChannelEnabled(ctx context.Context, userID string, t models.NotificationType, c models.NotificationChannel) (bool, error)
	LastDigestAt(ctx context.Context, userID string) (*time.Time, error)
	RecordDigest(ctx context.Context, userID string, at time.Time) error
}

// Recommender ranks jobs for a user.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*models.RecommendationResponse, bool, error)
}

// DigestResult summarizes one digest run.
type DigestResult struct {
	Considered int
	Sent       int
	Empty      int
	Failed     int
}

// Digest periodically sends each youth one notification listing new jobs
// that score at or above the threshold since their previous digest.
type Digest struct {
	store    DigestStore
	rec      Recommender
	notifier Notifier
	cfg      config.DigestConfig
	now      func() time.Time
	logger   zerolog.Logger
}

// NewDigest creates the digest scheduler.
func NewDigest(store DigestStore, rec Recommender, notifier Notifier, cfg config.DigestConfig) *Digest {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = 5
	}
	return &Digest{
		store:    store,
		rec:      rec,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
		logger:   logging.WithComponent("notify-digest"),
	}
}

// Serve runs a digest every Interval until ctx is canceled. A disabled
// digest just waits for shutdown.
func (d *Digest) Serve(ctx context.Context) error {
	if !d.cfg.Enabled {
		<-ctx.Done()
		return ctx.Err()
	}
	next := d.firstRun(d.now())
	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()
	d.logger.Info().Time("next_run", next).Dur("interval", d.cfg.Interval).Msg("digest scheduled")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			next = next.Add(d.cfg.Interval)
			timer.Reset(time.Until(next))
			res, err := d.RunOnce(ctx)
			if err != nil {
				d.logger.Error().Err(err).Msg("digest run failed")
				continue
			}
			d.logger.Info().
				Int("considered", res.Considered).
				Int("sent", res.Sent).
				Int("empty", res.Empty).
				Int("failed", res.Failed).
				Msg("digest run completed")
		}
	}
}

// firstRun returns the next occurrence of the configured hour after now,
// or now+Interval when no hour is set.
func (d *Digest) firstRun(now time.Time) time.Time {
	if d.cfg.Hour < 0 || d.cfg.Hour > 23 {
		return now.Add(d.cfg.Interval)
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), d.cfg.Hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// String implements fmt.Stringer for supervisor logs.
func (d *Digest) String() string { return "notify-digest" }

// RunOnce sends digests to every eligible youth. Per-user failures are
// counted and logged; only listing users fails the run.
func (d *Digest) RunOnce(ctx context.Context) (DigestResult, error) {
	var res DigestResult
	now := d.now().UTC()

	ids, err := d.store.ListUserIDsByRole(ctx, models.RoleYouth)
	if err != nil {
		return res, fmt.Errorf("list youth: %w", err)
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		sent, err := d.digestFor(ctx, id, now, &res)
		if err != nil {
			res.Failed++
			d.logger.Warn().Err(err).Str("user_id", id).Msg("digest for user failed")
			continue
		}
		if sent {
			res.Sent++
		}
	}
	return res, nil
}

func (d *Digest) digestFor(ctx context.Context, userID string, now time.Time, res *DigestResult) (bool, error) {
	wanted := false
	for _, ch := range models.AllNotificationChannels {
		enabled, err := d.store.IsChannelEnabled(ctx, userID, models.NotifyJobRecommendation, ch)
		if err != nil {
			return false, err
		}
		if enabled {
			wanted = true
			break
		}
	}
	if !wanted {
		return false, nil
	}
	res.Considered++

	last, err := d.store.LastDigestAt(ctx, userID)
	if err != nil {
		return false, err
	}
	since := now.Add(-d.cfg.Interval)
	if last != nil {
		since = *last
	}

	resp, _, err := d.rec.Recommend(ctx, recommend.Request{
		UserID:         userID,
		Limit:          d.cfg.MaxJobs,
		MinScore:       d.cfg.MinScore,
		PublishedSince: &since,
	})
	if err != nil {
		return false, err
	}
	if len(resp.Recommendations) == 0 {
		res.Empty++
		return false, nil
	}

	if _, err := d.notifier.Notify(ctx, []string{userID}, digestNotice(resp.Recommendations)); err != nil {
		return false, err
	}
	if err := d.store.RecordDigest(ctx, userID, now); err != nil {
		return true, err
	}
	return true, nil
}

func digestNotice(recs []models.Recommendation) Notice {
	title := "1 new job matches your profile"
	if len(recs) > 1 {
		title = fmt.Sprintf("%d new jobs match your profile", len(recs))
	}
	var body strings.Builder
	jobIDs := make([]string, 0, len(recs))
	for _, r := range recs {
		if r.Job == nil {
			continue
		}
		jobIDs = append(jobIDs, r.Job.ID)
		fmt.Fprintf(&body, "- %s", r.Job.Title)
		if r.Job.CompanyName != "" {
			fmt.Fprintf(&body, " at %s", r.Job.CompanyName)
		}
		fmt.Fprintf(&body, " (match %.0f%%)\n", r.Score)
	}
	return Notice{
		Type:  models.NotifyJobRecommendation,
		Title: title,
		Body:  strings.TrimRight(body.String(), "\n"),
		Link:  "/jobs/recommendations",
		Data:  map[string]interface{}{"job_ids": jobIDs},
	}
}
