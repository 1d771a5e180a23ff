// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	_ "github.com/tomtom215/launchpad/docs" // swagger spec for /swagger/*
	"github.com/tomtom215/launchpad/internal/api"
	"github.com/tomtom215/launchpad/internal/audit"
	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/authz"
	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/events"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/middleware"
	"github.com/tomtom215/launchpad/internal/recommend"
	"github.com/tomtom215/launchpad/internal/supervisor"
	"github.com/tomtom215/launchpad/internal/supervisor/services"
	"github.com/tomtom215/launchpad/internal/uploads"
	ws "github.com/tomtom215/launchpad/internal/websocket"
)

const (
	httpShutdownTimeout    = 10 * time.Second
	sessionCleanupInterval = 15 * time.Minute
	perfMonitorWindow      = 1000
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		logging.Error().Err(err).Msg("Launchpad exited with error")
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "launchpad",
		Short:         "Youth employability platform: jobs, courses and recommendations",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context())
		},
	}
	root.AddCommand(newImportCommand())
	return root
}

// bootstrap loads configuration, initializes logging and opens the database.
// Every command starts here.
func bootstrap(ctx context.Context) (*config.Config, *database.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize database: %w", err)
	}
	logging.Info().Str("db_path", cfg.Database.Path).Msg("Database initialized")

	if err := ensureSuperadmin(ctx, cfg, db); err != nil {
		closeQuietly("database", db.Close)
		return nil, nil, err
	}

	if cfg.Database.SeedDemoData {
		hash, err := auth.HashPassword(demoPassword, cfg.Security.BcryptCost)
		if err == nil {
			err = db.SeedDemoData(ctx, hash)
		}
		if err != nil {
			closeQuietly("database", db.Close)
			return nil, nil, fmt.Errorf("seed demo data: %w", err)
		}
		logging.Info().Msg("Demo data seeded (SEED_DEMO_DATA=true)")
	}

	return cfg, db, nil
}

//nolint:gocyclo // sequential wiring of every component
func runServer(ctx context.Context) error {
	cfg, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer closeQuietly("database", db.Close)

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("events_transport", cfg.Events.Transport).
		Str("session_store", cfg.Security.SessionStore).
		Msg("Starting Launchpad with supervisor tree")

	auditLogger, err := initAudit(ctx, cfg, db)
	if err != nil {
		return err
	}
	defer closeQuietly("audit logger", auditLogger.Close)

	authComponents, err := initAuth(ctx, cfg, db, auditLogger)
	if err != nil {
		return err
	}
	defer authComponents.Close()

	enforcer, err := authz.NewEnforcer(cfg.Security.Casbin)
	if err != nil {
		return fmt.Errorf("initialize casbin enforcer: %w", err)
	}
	defer enforcer.Close()
	authzMW := authz.NewMiddleware(enforcer)
	authzMW.OnDeny(func(r *http.Request, s *auth.Subject, action string) {
		auditLogger.LogAuthzDenied(r.Context(), actorFromSubject(s), audit.SourceFromRequest(r), r.URL.Path, action)
	})

	hub := ws.NewHub()

	bus, err := events.NewBus(cfg.Events)
	if err != nil {
		return fmt.Errorf("initialize event bus: %w", err)
	}

	engine, err := recommend.NewEngine(db, cfg.Recommend)
	if err != nil {
		return fmt.Errorf("initialize recommendation engine: %w", err)
	}
	defer engine.Close()
	// New postings change every youth's candidate set.
	err = bus.Subscribe("recommend-invalidate", events.TopicJobPublished, func(context.Context, events.Event) error {
		engine.InvalidateAll()
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribe recommendation invalidation: %w", err)
	}

	notifyComponents, err := initNotify(cfg, db, hub, engine, bus)
	if err != nil {
		return err
	}
	defer notifyComponents.Close()

	uploadSvc, err := uploads.NewServiceFromConfig(db, cfg.Uploads)
	if err != nil {
		return fmt.Errorf("initialize uploads: %w", err)
	}

	importComponents, err := initImporter(cfg, db)
	if err != nil {
		return err
	}
	defer importComponents.Close()

	handler := api.NewHandler(db, cfg, authComponents.service, hub)
	defer handler.Close()
	handler.SetAudit(auditLogger)
	handler.SetRecommender(engine)
	handler.SetEvents(bus)
	handler.SetNotifier(notifyComponents.dispatcher)
	handler.SetUploads(uploadSvc)
	handler.SetImporter(importComponents.importer)
	handler.SetPerformanceMonitor(middleware.NewPerformanceMonitor(perfMonitorWindow))

	router := api.NewRouter(handler, auth.NewMiddleware(authComponents.service), authzMW)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	// Data layer
	if cfg.Audit.Enabled {
		tree.AddDataService(services.NewFuncService("audit-retention", auditLogger.RunRetention))
	}
	tree.AddDataService(services.NewPeriodicService("session-cleanup", authComponents.service.Cleanup,
		services.PeriodicConfig{Interval: sessionCleanupInterval}, logging.WithComponent("session-cleanup")))

	// Messaging layer
	tree.AddMessagingService(services.NewEventBusService(bus, cfg.Events.CloseTimeout))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(notifyComponents.dispatcher)
	if notifyComponents.digest != nil {
		tree.AddMessagingService(notifyComponents.digest)
	}

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, httpShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	if importComponents.importer.IsRunning() {
		if err := importComponents.importer.Stop(); err != nil {
			logging.Warn().Err(err).Msg("Failed to stop running import")
		}
	}

	logging.Info().Msg("Launchpad stopped gracefully")
	return nil
}

// initAudit creates the audit logger. Events are persisted in DuckDB when
// auditing is enabled and kept in a small ring otherwise.
func initAudit(ctx context.Context, cfg *config.Config, db *database.DB) (*audit.Logger, error) {
	if !cfg.Audit.Enabled {
		logging.Info().Msg("Audit trail disabled (AUDIT_ENABLED=false)")
		return audit.NewLogger(audit.NewMemoryStore(100), audit.ConfigFrom(cfg.Audit)), nil
	}

	store := audit.NewDuckDBStore(db.Conn())
	if err := store.CreateTable(ctx); err != nil {
		return nil, fmt.Errorf("create audit table: %w", err)
	}

	auditCfg := audit.ConfigFrom(cfg.Audit)
	logging.Info().
		Int("retention_days", auditCfg.RetentionDays).
		Dur("cleanup_interval", auditCfg.CleanupInterval).
		Msg("Audit trail enabled")
	return audit.NewLogger(store, auditCfg), nil
}

func actorFromSubject(s *auth.Subject) audit.Actor {
	if s == nil {
		return audit.Actor{Type: audit.ActorAnonymous}
	}
	return audit.Actor{
		ID:       s.UserID,
		Type:     audit.ActorUser,
		Name:     s.Email,
		Role:     string(s.Role),
		TenantID: s.TenantID,
	}
}

func closeQuietly(what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logging.Error().Err(err).Str("component", what).Msg("Error during close")
	}
}
