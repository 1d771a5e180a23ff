// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/launchpad/internal/models"
)

// runningChecker is implemented by components that report liveness, such
// as the event bus.
type runningChecker interface {
	IsRunning() bool
}

// Health handles health check requests
//
// @Summary Get system health status
// @Description Returns database connectivity, event bus state, connected WebSocket clients and uptime
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthStatus} "Health status retrieved successfully"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := "healthy"

	if h.pingDB(r.Context()) {
		checks["database"] = "ok"
	} else {
		checks["database"] = "unavailable"
		status = "degraded"
	}

	if rc, ok := h.events.(runningChecker); ok {
		if rc.IsRunning() {
			checks["events"] = "ok"
		} else {
			checks["events"] = "stopped"
			status = "degraded"
		}
	}
	if h.hub != nil {
		checks["websocket_clients"] = strconv.Itoa(h.hub.GetClientCount())
	}
	if h.uploads != nil {
		checks["uploads_backend"] = h.uploads.Backend()
	}

	respondOK(w, models.HealthStatus{
		Status:    status,
		Version:   Version,
		Uptime:    time.Since(h.startTime).Seconds(),
		Checks:    checks,
		Timestamp: time.Now().UTC(),
	})
}

// HealthLive is the Kubernetes liveness probe. It never touches dependencies.
//
// @Summary Liveness probe
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]interface{}{
		"status": "alive",
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady is the readiness probe: 503 until the database answers.
//
// @Summary Readiness probe
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse "Database not reachable"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.pingDB(r.Context()) {
		respondError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "database not ready", nil)
		return
	}
	respondOK(w, map[string]string{"status": "ready"})
}

func (h *Handler) pingDB(ctx context.Context) bool {
	if h.db == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.db.Ping(ctx) == nil
}
