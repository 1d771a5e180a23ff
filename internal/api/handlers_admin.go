// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/launchpad/internal/audit"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/jobimport"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/middleware"
	"github.com/tomtom215/launchpad/internal/models"
	"github.com/tomtom215/launchpad/internal/notify"
)

// AdminListUsers lists accounts
//
// @Summary List users
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role"
// @Param status query string false "active or suspended"
// @Param q query string false "Email or name contains"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.APIResponse{data=[]models.User}
// @Router /admin/users [get]
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	p, ferr := h.parsePage(r)
	if ferr != nil {
		ferr.respond(w)
		return
	}
	q := r.URL.Query()
	f := models.UserFilter{
		Role:   models.Role(q.Get("role")),
		Status: models.UserStatus(q.Get("status")),
		Query:  strings.TrimSpace(q.Get("q")),
		Limit:  p.Limit,
		Offset: p.Offset,
	}
	if f.Role != "" && !f.Role.Valid() {
		respondFieldError(w, "role", "unknown role")
		return
	}
	if f.Status != "" && f.Status != models.UserActive && f.Status != models.UserSuspended {
		respondFieldError(w, "status", "status must be active or suspended")
		return
	}
	page, err := h.db.ListUsers(r.Context(), f)
	if err != nil {
		respondStoreError(w, r, err, "users")
		return
	}
	respondPage(w, page, p)
}

// AdminSetUserStatus suspends or reactivates an account. Suspension ends
// every session of the user.
//
// @Summary Set user status
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body UserStatusRequest true "Status"
// @Success 200 {object} models.APIResponse{data=models.User}
// @Router /admin/users/{id}/status [patch]
func (h *Handler) AdminSetUserStatus(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	var req UserStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if id == s.UserID {
		respondError(w, http.StatusConflict, ErrCodeConflict, "you cannot change your own status", nil)
		return
	}
	user, err := h.db.GetUserByID(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "user")
		return
	}
	from, to := user.Status, models.UserStatus(req.Status)
	if from != to {
		if err := h.db.UpdateUserStatus(r.Context(), id, to); err != nil {
			respondStoreError(w, r, err, "user")
			return
		}
		user.Status = to
		if to == models.UserSuspended && h.auth != nil {
			n, err := h.auth.RevokeUser(r.Context(), id)
			if err != nil {
				logging.Ctx(r.Context()).Error().Err(err).Str("user_id", id).Msg("Failed to revoke sessions of suspended user")
			} else {
				logging.Ctx(r.Context()).Info().Str("user_id", id).Int("sessions", n).Msg("Sessions revoked")
			}
		}
		if h.audit != nil {
			h.audit.LogUserStatusChange(r.Context(), actorFor(s), audit.SourceFromRequest(r), user, from, to)
		}
	}
	respondOK(w, user)
}

// AdminListTenants lists companies and institutions
//
// @Summary List tenants
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param kind query string false "company or institution"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.APIResponse{data=[]models.Tenant}
// @Router /admin/tenants [get]
func (h *Handler) AdminListTenants(w http.ResponseWriter, r *http.Request) {
	p, ferr := h.parsePage(r)
	if ferr != nil {
		ferr.respond(w)
		return
	}
	kind := models.TenantKind(r.URL.Query().Get("kind"))
	if kind != "" && kind != models.TenantCompany && kind != models.TenantInstitution {
		respondFieldError(w, "kind", "kind must be company or institution")
		return
	}
	page, err := h.db.ListTenants(r.Context(), kind, p.Limit, p.Offset)
	if err != nil {
		respondStoreError(w, r, err, "tenants")
		return
	}
	respondPage(w, page, p)
}

// AdminVerifyTenant sets the verified badge of a tenant
//
// @Summary Verify tenant
// @Description An empty body verifies; {"verified": false} revokes.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param body body VerifyTenantRequest false "Decision"
// @Success 200 {object} models.APIResponse{data=models.Tenant}
// @Router /admin/tenants/{id}/verify [post]
func (h *Handler) AdminVerifyTenant(w http.ResponseWriter, r *http.Request) {
	verified := true
	if r.ContentLength != 0 {
		var req VerifyTenantRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Verified != nil {
			verified = *req.Verified
		}
	}
	id := chi.URLParam(r, "id")
	if err := h.db.SetTenantVerified(r.Context(), id, verified); err != nil {
		respondStoreError(w, r, err, "tenant")
		return
	}
	t, err := h.db.GetTenant(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "tenant")
		return
	}
	if h.audit != nil {
		h.audit.LogTenantVerified(r.Context(), actorFor(subject(r)), audit.SourceFromRequest(r), t)
	}
	respondOK(w, t)
}

// AdminBroadcast sends a system notice to one role or to every active user
//
// @Summary Broadcast notice
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BroadcastRequest true "Notice"
// @Success 202 {object} models.APIResponse
// @Router /admin/notifications/broadcast [post]
func (h *Handler) AdminBroadcast(w http.ResponseWriter, r *http.Request) {
	if h.notifier == nil {
		unavailable(w, "notifications")
		return
	}
	var req BroadcastRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	role := models.Role(req.Role)
	ids, err := h.db.ListUserIDsByRole(r.Context(), role)
	if err != nil {
		respondStoreError(w, r, err, "users")
		return
	}
	n, err := h.notifier.Notify(r.Context(), ids, notify.Notice{
		Type:  models.NotifySystem,
		Title: strings.TrimSpace(req.Title),
		Body:  strings.TrimSpace(req.Body),
		Link:  req.Link,
	})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Int("queued", n).Msg("Broadcast interrupted")
		respondErrorDetails(w, http.StatusInternalServerError, ErrCodeInternal, "broadcast was only partially queued",
			map[string]interface{}{"queued": n})
		return
	}

	var roles []models.Role
	if role != "" {
		roles = []models.Role{role}
	}
	if h.audit != nil {
		h.audit.LogBroadcast(r.Context(), actorFor(subject(r)), audit.SourceFromRequest(r), req.Title, roles, len(ids))
	}
	respondData(w, http.StatusAccepted, map[string]interface{}{"recipients": len(ids), "queued": n})
}

// AdminAuditLog queries the audit trail, newest first
//
// @Summary Audit log
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param type query string false "Comma-separated event types"
// @Param actor_id query string false "Actor user ID"
// @Param target_id query string false "Target ID"
// @Param since query string false "RFC3339"
// @Param until query string false "RFC3339"
// @Param limit query int false "Page size (max 500)"
// @Param offset query int false "Offset"
// @Success 200 {object} models.APIResponse{data=[]audit.Event}
// @Router /admin/audit [get]
func (h *Handler) AdminAuditLog(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		unavailable(w, "audit")
		return
	}
	p, ferr := parsePageWith(r, audit.DefaultQueryLimit, audit.MaxQueryLimit)
	if ferr != nil {
		ferr.respond(w)
		return
	}
	q := r.URL.Query()
	f := audit.QueryFilter{
		ActorID:  q.Get("actor_id"),
		TargetID: q.Get("target_id"),
		TenantID: q.Get("tenant_id"),
		Limit:    p.Limit,
		Offset:   p.Offset,
	}
	for _, t := range parseCommaSeparated(q.Get("type")) {
		f.Types = append(f.Types, audit.EventType(t))
	}
	if f.Since, ferr = parseTimeParam(r, "since"); ferr != nil {
		ferr.respond(w)
		return
	}
	if f.Until, ferr = parseTimeParam(r, "until"); ferr != nil {
		ferr.respond(w)
		return
	}

	list, err := h.audit.Query(r.Context(), f)
	if err != nil {
		respondStoreError(w, r, err, "audit events")
		return
	}
	total, err := h.audit.Count(r.Context(), f)
	if err != nil {
		respondStoreError(w, r, err, "audit events")
		return
	}
	if list == nil {
		list = []audit.Event{}
	}
	respondPage(w, &models.Page[audit.Event]{Items: list, Total: int(total)}, p)
}

// AdminStartImport starts a background job import from a SQLite tracker file
//
// @Summary Start job import
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body jobimport.Options true "Import options"
// @Success 202 {object} models.APIResponse{data=jobimport.Summary}
// @Failure 409 {object} models.APIResponse "Import already running"
// @Router /admin/import/jobs [post]
func (h *Handler) AdminStartImport(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		unavailable(w, "job import")
		return
	}
	var opts jobimport.Options
	if !decodeJSON(w, r, &opts) {
		return
	}
	s := subject(r)
	opts.PostedBy = s.UserID

	err := h.importer.Start(r.Context(), opts)
	switch {
	case errors.Is(err, jobimport.ErrImportRunning):
		respondError(w, http.StatusConflict, ErrCodeConflict, "an import is already running", nil)
		return
	case errors.Is(err, jobimport.ErrPathNotAllowed):
		respondFieldError(w, "db_path", err.Error())
		return
	case errors.Is(err, jobimport.ErrInvalidTenant):
		respondFieldError(w, "tenant_id", "tenant_id must name a company tenant")
		return
	case errors.Is(err, database.ErrNotFound):
		respondFieldError(w, "tenant_id", "tenant not found")
		return
	case err != nil:
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to start import", err)
		return
	}
	if h.audit != nil {
		h.audit.LogAdminAction(r.Context(), actorFor(s), audit.SourceFromRequest(r), "import.start",
			"Job import started", map[string]interface{}{"tenant_id": opts.TenantID, "dry_run": opts.DryRun})
	}
	respondData(w, http.StatusAccepted, h.importer.Summary())
}

// AdminImportStatus reports the running or last import
//
// @Summary Job import status
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=jobimport.Summary}
// @Router /admin/import/status [get]
func (h *Handler) AdminImportStatus(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		unavailable(w, "job import")
		return
	}
	respondOK(w, h.importer.Summary())
}

// AdminStopImport cancels the running import. Committed rows are kept and
// the next run resumes after them.
//
// @Summary Stop job import
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=jobimport.Summary}
// @Router /admin/import/jobs [delete]
func (h *Handler) AdminStopImport(w http.ResponseWriter, r *http.Request) {
	if h.importer == nil {
		unavailable(w, "job import")
		return
	}
	if err := h.importer.Stop(); err != nil {
		if errors.Is(err, jobimport.ErrNotRunning) {
			respondError(w, http.StatusConflict, ErrCodeConflict, "no import is running", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to stop import", err)
		return
	}
	respondOK(w, h.importer.Summary())
}

// AdminPerformance returns per-endpoint latency percentiles
//
// @Summary Endpoint performance
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=[]middleware.EndpointStats}
// @Router /admin/performance [get]
func (h *Handler) AdminPerformance(w http.ResponseWriter, r *http.Request) {
	if h.perfMon == nil {
		unavailable(w, "performance monitoring")
		return
	}
	stats := h.perfMon.GetStats()
	if stats == nil {
		stats = []middleware.EndpointStats{}
	}
	respondOK(w, stats)
}
