// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/authz"
	"github.com/tomtom215/launchpad/internal/middleware"
	"github.com/tomtom215/launchpad/internal/models"
)

// Router builds the chi route tree.
type Router struct {
	handler        *Handler
	authMW         *auth.Middleware
	authzMW        *authz.Middleware
	chiMiddleware  *ChiMiddleware
	trustedProxies []string
}

// NewRouter creates a router. authzMW may be nil, in which case only
// authentication and the handlers' own role checks apply.
func NewRouter(handler *Handler, authMW *auth.Middleware, authzMW *authz.Middleware) *Router {
	chiCfg := DefaultChiMiddlewareConfig()
	var trusted []string
	if handler.cfg != nil {
		chiCfg = ChiMiddlewareConfigFromSecurity(handler.cfg.Security)
		trusted = handler.cfg.Security.TrustedProxies
	}
	return &Router{
		handler:        handler,
		authMW:         authMW,
		authzMW:        authzMW,
		chiMiddleware:  NewChiMiddleware(chiCfg),
		trustedProxies: trusted,
	}
}

// authorize runs the Casbin check when an enforcer is configured.
func (router *Router) authorize(next http.Handler) http.Handler {
	if router.authzMW == nil {
		return next
	}
	return router.authzMW.AuthorizeRequest(next)
}

// signedIn is the middleware pair for every protected group.
func (router *Router) signedIn(r chi.Router) {
	r.Use(router.authMW.Authenticate)
	r.Use(router.authorize)
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, ErrCodeBadRequest, "method not allowed", nil)
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// Global middleware, outermost first.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.ClientIP(router.trustedProxies))
	r.Use(router.chiMiddleware.CORS()) // must be global to answer OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)
	if h.perfMon != nil {
		r.Use(h.perfMon.Middleware)
	}
	r.Use(middleware.Compression)

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	// Health
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	// Authentication
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitAuth())
		r.Use(APISecurityHeaders())

		r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.Get("/oidc/login", h.OIDCLogin)
		r.Get("/oidc/callback", h.OIDCCallback)

		r.Group(func(r chi.Router) {
			r.Use(router.authMW.Authenticate)
			r.Get("/me", h.Me)
			r.Post("/logout", h.Logout)
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())

		// Public catalogue. A session, when present, lets owners see drafts.
		r.Group(func(r chi.Router) {
			r.Use(router.authMW.Optional)
			r.Get("/jobs", h.ListJobs)
			r.Get("/jobs/{id}", h.GetJob)
			r.Get("/courses", h.ListCourses)
			r.Get("/courses/{id}", h.GetCourse)
			r.Get("/courses/{id}/lessons", h.ListLessons)
			r.Get("/courses/{id}/lessons/{lessonID}", h.GetLesson)
		})

		r.Group(func(r chi.Router) {
			router.signedIn(r)

			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.UpdateProfile)
			r.Get("/tenants/{id}", h.GetTenant)
			r.Put("/tenants/{id}", h.UpdateTenant)

			// Job board
			r.Get("/jobs/recommendations", h.JobRecommendations)
			r.Get("/jobs/saved", h.ListSavedJobs)
			r.Get("/companies/jobs", h.CompanyJobs)
			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitWrite())
				r.Post("/jobs", h.CreateJob)
				r.Put("/jobs/{id}", h.UpdateJob)
				r.Delete("/jobs/{id}", h.DeleteJob)
				r.Post("/jobs/{id}/publish", h.PublishJob)
				r.Post("/jobs/{id}/close", h.CloseJob)
				r.Post("/jobs/{id}/save", h.SaveJob)
				r.Delete("/jobs/{id}/save", h.UnsaveJob)
				r.Post("/jobs/{id}/apply", h.Apply)
			})

			// Applications
			r.Get("/applications", h.ListApplications)
			r.Get("/applications/{id}", h.GetApplication)
			r.Patch("/applications/{id}/status", h.UpdateApplicationStatus)

			// Courses
			r.Get("/enrollments", h.ListEnrollments)
			r.Get("/courses/{id}/enrollments", h.CourseEnrollments)
			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitWrite())
				r.Post("/courses", h.CreateCourse)
				r.Put("/courses/{id}", h.UpdateCourse)
				r.Delete("/courses/{id}", h.DeleteCourse)
				r.Post("/courses/{id}/publish", h.PublishCourse)
				r.Post("/courses/{id}/archive", h.ArchiveCourse)
				r.Post("/courses/{id}/lessons", h.CreateLesson)
				r.Put("/courses/{id}/lessons/{lessonID}", h.UpdateLesson)
				r.Delete("/courses/{id}/lessons/{lessonID}", h.DeleteLesson)
				r.Post("/courses/{id}/lessons/{lessonID}/complete", h.CompleteLesson)
				r.Post("/courses/{id}/enroll", h.Enroll)
				r.Delete("/courses/{id}/enroll", h.DropEnrollment)
			})

			// Messaging
			r.Get("/conversations", h.ListConversations)
			r.Post("/conversations", h.StartConversation)
			r.Get("/conversations/{id}/messages", h.ListMessages)
			r.Post("/conversations/{id}/messages", h.PostMessage)
			r.Post("/conversations/{id}/read", h.MarkConversationRead)
			r.With(router.chiMiddleware.RateLimitWebSocket()).Get("/ws", h.WebSocket)

			// Notifications
			r.Get("/notifications", h.ListNotifications)
			r.Get("/notifications/unread-count", h.UnreadCount)
			r.Post("/notifications/read-all", h.MarkAllNotificationsRead)
			r.Post("/notifications/{id}/read", h.MarkNotificationRead)
			r.Delete("/notifications/{id}", h.DeleteNotification)
			r.Get("/notifications/preferences", h.GetPreferences)
			r.Put("/notifications/preferences", h.UpdatePreferences)
			r.Patch("/notifications/preferences/{type}/{channel}", h.PatchPreference)

			// Uploads
			r.With(router.chiMiddleware.RateLimitUpload()).Post("/uploads", h.UploadFile)
			r.Get("/uploads/{id}", h.DownloadUpload)
			r.Delete("/uploads/{id}", h.DeleteUpload)

			// Dashboards
			r.Route("/analytics", func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitAnalytics())
				r.Get("/youth", h.YouthAnalytics)
				r.Get("/company", h.CompanyAnalytics)
				r.Get("/institution", h.InstitutionAnalytics)
				r.Get("/platform", h.PlatformAnalytics)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireRole(models.RoleSuperadmin))
				r.Get("/users", h.AdminListUsers)
				r.Patch("/users/{id}/status", h.AdminSetUserStatus)
				r.Get("/tenants", h.AdminListTenants)
				r.Post("/tenants/{id}/verify", h.AdminVerifyTenant)
				r.Post("/notifications/broadcast", h.AdminBroadcast)
				r.Get("/audit", h.AdminAuditLog)
				r.Post("/import/jobs", h.AdminStartImport)
				r.Delete("/import/jobs", h.AdminStopImport)
				r.Get("/import/status", h.AdminImportStatus)
				r.Get("/performance", h.AdminPerformance)
			})
		})
	})

	// Unversioned alias kept for existing clients.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		router.signedIn(r)
		r.Get("/api/jobs/recommendations", h.JobRecommendations)
	})

	// Observability
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
