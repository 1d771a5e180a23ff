// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Task is one run of a periodic job.
type Task func(ctx context.Context) error

// PeriodicConfig schedules a PeriodicService.
type PeriodicConfig struct {
	// Interval between runs; 0 means one hour.
	Interval time.Duration
	// RunOnStart runs the task once before the first tick.
	RunOnStart bool
	// Timeout bounds each run; 0 means Interval.
	Timeout time.Duration
}

// PeriodicService runs a task on a ticker. A failed run is logged and
// retried at the next tick; it never restarts the service.
type PeriodicService struct {
	name   string
	task   Task
	config PeriodicConfig
	logger zerolog.Logger
}

// NewPeriodicService creates a named periodic service.
func NewPeriodicService(name string, task Task, cfg PeriodicConfig, logger zerolog.Logger) *PeriodicService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	return &PeriodicService{
		name:   name,
		task:   task,
		config: cfg,
		logger: logger.With().Str("service", name).Logger(),
	}
}

func (s *PeriodicService) Serve(ctx context.Context) error {
	s.logger.Debug().Dur("interval", s.config.Interval).Msg("Periodic service starting")

	if s.config.RunOnStart {
		s.run(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *PeriodicService) run(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	if err := s.task(runCtx); err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("Periodic task failed")
		}
		return
	}
	s.logger.Debug().Dur("duration", time.Since(start)).Msg("Periodic task complete")
}

func (s *PeriodicService) String() string {
	return s.name
}

// FuncService adapts a blocking loop such as audit.Logger.RunRetention.
type FuncService struct {
	name string
	run  func(ctx context.Context) error
}

func NewFuncService(name string, run func(ctx context.Context) error) *FuncService {
	return &FuncService{name: name, run: run}
}

func (s *FuncService) Serve(ctx context.Context) error {
	return s.run(ctx)
}

func (s *FuncService) String() string {
	return s.name
}
