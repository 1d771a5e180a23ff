// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"context"
	"net/http"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/tomtom215/launchpad/internal/audit"
	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/cache"
	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/jobimport"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/middleware"
	"github.com/tomtom215/launchpad/internal/models"
	"github.com/tomtom215/launchpad/internal/notify"
	"github.com/tomtom215/launchpad/internal/recommend"
	"github.com/tomtom215/launchpad/internal/uploads"
	ws "github.com/tomtom215/launchpad/internal/websocket"
)

// Version is reported by the health endpoints. Set with -ldflags.
var Version = "dev"

// dashboardCacheTTL is how long an analytics roll-up is served from memory.
const dashboardCacheTTL = time.Minute

// EventEmitter publishes domain events. *events.Bus implements it.
type EventEmitter interface {
	Emit(ctx context.Context, topic, actorID string, payload interface{}) error
}

// Recommender scores published jobs for a youth user.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*models.RecommendationResponse, bool, error)
	Invalidate(userID string)
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files by area:
//   - handlers_health.go: health probes
//   - handlers_auth.go: registration, login, logout, SSO
//   - handlers_profile.go: youth profile and tenant pages
//   - handlers_jobs.go, handlers_applications.go: job board and hiring
//   - handlers_recommend.go: job recommendations
//   - handlers_courses.go: courses, lessons and enrollments
//   - handlers_messaging.go: conversations and the WebSocket endpoint
//   - handlers_notifications.go: inbox and preferences
//   - handlers_analytics.go: dashboards
//   - handlers_uploads.go: file uploads
//   - handlers_admin.go: superadmin tools
type Handler struct {
	db       *database.DB
	cfg      *config.Config
	auth     *auth.Service
	hub      *ws.Hub
	upgrader *gorillaws.Upgrader

	recommender Recommender
	events      EventEmitter
	notifier    notify.Notifier
	uploads     *uploads.Service
	importer    *jobimport.Importer
	audit       *audit.Logger
	perfMon     *middleware.PerformanceMonitor

	dashboards *cache.Cache[interface{}]
	startTime  time.Time
}

// NewHandler creates the API handler. Optional collaborators are attached
// with the Set methods before the router is built; endpoints whose
// collaborator is missing answer 503.
//
// Example:
//
//	handler := api.NewHandler(db, cfg, authSvc, hub)
//	handler.SetRecommender(engine)
//	router := api.NewRouter(handler, authMW, authzMW)
//	http.ListenAndServe(":8080", router.Setup())
func NewHandler(db *database.DB, cfg *config.Config, authSvc *auth.Service, hub *ws.Hub) *Handler {
	var origins []string
	if cfg != nil {
		origins = cfg.Security.CORSOrigins
	}
	return &Handler{
		db:         db,
		cfg:        cfg,
		auth:       authSvc,
		hub:        hub,
		upgrader:   ws.Upgrader(origins),
		dashboards: cache.New[interface{}]("dashboards", dashboardCacheTTL, 1000),
		startTime:  time.Now(),
	}
}

// SetRecommender attaches the recommendation engine.
func (h *Handler) SetRecommender(r Recommender) {
	h.recommender = r
}

// SetEvents attaches the event bus. Without it no domain events are emitted.
func (h *Handler) SetEvents(e EventEmitter) {
	h.events = e
}

// SetNotifier attaches the notification dispatcher used by broadcasts.
func (h *Handler) SetNotifier(n notify.Notifier) {
	h.notifier = n
}

// SetUploads attaches the upload service.
func (h *Handler) SetUploads(s *uploads.Service) {
	h.uploads = s
}

// SetImporter attaches the job importer and records finished runs in the
// audit trail.
func (h *Handler) SetImporter(imp *jobimport.Importer) {
	h.importer = imp
	imp.OnFinish(func(s *jobimport.Stats) {
		if h.audit == nil {
			return
		}
		summary := audit.ImportSummary{
			Source:     s.Source,
			TenantID:   s.TenantID,
			Imported:   s.Imported,
			Duplicates: s.Duplicates,
			Skipped:    s.Skipped,
			Errors:     s.Errors,
			DryRun:     s.DryRun,
			Error:      s.Error,
		}
		h.audit.LogImport(context.Background(), audit.Actor{ID: s.StartedBy, Type: audit.ActorUser}, summary)
	})
}

// SetAudit attaches the audit logger.
func (h *Handler) SetAudit(l *audit.Logger) {
	h.audit = l
}

// SetPerformanceMonitor attaches the request timing monitor shown on the
// admin performance endpoint.
func (h *Handler) SetPerformanceMonitor(pm *middleware.PerformanceMonitor) {
	h.perfMon = pm
}

// Close releases handler-owned caches.
func (h *Handler) Close() {
	h.dashboards.Close()
}

// subject returns the authenticated caller. Routes that reach handlers
// calling it are behind auth.Middleware.Authenticate.
func subject(r *http.Request) *auth.Subject {
	return auth.SubjectFromContext(r.Context())
}

// actorFor builds the audit actor for the caller.
func actorFor(s *auth.Subject) audit.Actor {
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

// emit publishes an event when a bus is attached. Publish failures are
// logged and never fail the request; the write already happened.
func (h *Handler) emit(r *http.Request, topic, actorID string, payload interface{}) {
	if h.events == nil {
		return
	}
	if err := h.events.Emit(r.Context(), topic, actorID, payload); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Str("topic", topic).Msg("Failed to publish event")
	}
}

// clientInfo describes the caller for session records.
func clientInfo(r *http.Request) auth.ClientInfo {
	src := audit.SourceFromRequest(r)
	return auth.ClientInfo{IPAddress: src.IPAddress, UserAgent: src.UserAgent}
}

// unavailable answers 503 for an endpoint whose collaborator is not configured.
func unavailable(w http.ResponseWriter, what string) {
	respondError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, what+" is not enabled", nil)
}
