// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/launchpad/internal/audit"
	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/events"
	"github.com/tomtom215/launchpad/internal/models"
)

// jobFilterFromQuery reads the listing filters shared by the public and
// company job lists.
func jobFilterFromQuery(r *http.Request, p pageParams) (models.JobFilter, *fieldError) {
	q := r.URL.Query()
	f := models.JobFilter{
		Query:    strings.TrimSpace(q.Get("q")),
		Location: strings.TrimSpace(q.Get("location")),
		Skill:    q.Get("skill"),
		TenantID: q.Get("tenant_id"),
		Limit:    p.Limit,
		Offset:   p.Offset,
	}
	if t := q.Get("job_type"); t != "" {
		f.JobType = models.JobType(t)
		if !f.JobType.Valid() {
			return f, &fieldError{"job_type", "unknown job_type"}
		}
	}
	remote, ferr := parseBoolParam(r, "remote")
	if ferr != nil {
		return f, ferr
	}
	f.Remote = remote
	return f, nil
}

// ListJobs lists published, non-expired jobs
//
// @Summary List jobs
// @Description Public listing sorted by publish date, newest first
// @Tags Jobs
// @Produce json
// @Param q query string false "Search title and description"
// @Param location query string false "Location substring"
// @Param job_type query string false "full_time, part_time, internship, apprenticeship, volunteer or freelance"
// @Param remote query bool false "Remote only"
// @Param skill query string false "Required or preferred skill"
// @Param tenant_id query string false "Company tenant"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} models.APIResponse{data=[]models.Job}
// @Failure 400 {object} models.APIResponse
// @Router /jobs [get]
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	p, ferr := h.parsePage(r)
	if ferr != nil {
		ferr.respond(w)
		return
	}
	f, ferr := jobFilterFromQuery(r, p)
	if ferr != nil {
		ferr.respond(w)
		return
	}
	page, err := h.db.ListJobs(r.Context(), f)
	if err != nil {
		respondStoreError(w, r, err, "jobs")
		return
	}
	respondPage(w, page, p)
}

// GetJob returns one job. Drafts are visible only to the owning company.
//
// @Summary Get job
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} models.APIResponse{data=models.Job}
// @Failure 404 {object} models.APIResponse
// @Router /jobs/{id} [get]
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	j, err := h.db.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, "job")
		return
	}
	if j.Status == models.JobDraft && !auth.SubjectFromContext(r.Context()).CanManageTenant(j.TenantID) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "job not found", nil)
		return
	}
	respondOK(w, j)
}

// validateSalary enforces salary_max >= salary_min.
func validateSalary(req *JobRequest) *fieldError {
	if req.SalaryMin != nil && req.SalaryMax != nil && *req.SalaryMax < *req.SalaryMin {
		return &fieldError{"salary_max", "salary_max must be greater than or equal to salary_min"}
	}
	return nil
}

// CreateJob posts a job for the caller's company
//
// @Summary Create job
// @Tags Jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body JobRequest true "Job"
// @Success 201 {object} models.APIResponse{data=models.Job}
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Router /jobs [post]
func (h *Handler) CreateJob(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	if !s.Is(models.RoleCompany) || s.TenantID == "" {
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "only company accounts can post jobs", nil)
		return
	}
	var req JobRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if ferr := validateSalary(&req); ferr != nil {
		ferr.respond(w)
		return
	}

	j := &models.Job{TenantID: s.TenantID, PostedBy: s.UserID, Status: models.JobDraft}
	req.toJob(j)
	if req.Status == string(models.JobPublished) {
		j.Status = models.JobPublished
	}
	if err := h.db.CreateJob(r.Context(), j); err != nil {
		respondStoreError(w, r, err, "job")
		return
	}
	if j.Status == models.JobPublished {
		h.invalidateAllRecommendations()
		h.emit(r, events.TopicJobPublished, s.UserID, events.JobPublished{JobID: j.ID, TenantID: j.TenantID, Title: j.Title})
	}
	respondData(w, http.StatusCreated, j)
}

// loadManagedJob loads a job the caller may edit, writing the error
// response when it cannot.
func (h *Handler) loadManagedJob(w http.ResponseWriter, r *http.Request) (*models.Job, bool) {
	j, err := h.db.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, "job")
		return nil, false
	}
	if !subject(r).CanManageTenant(j.TenantID) {
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "job belongs to another company", nil)
		return nil, false
	}
	return j, true
}

// UpdateJob edits a job. Closed jobs cannot be edited.
//
// @Summary Update job
// @Tags Jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param body body JobRequest true "Job"
// @Success 200 {object} models.APIResponse{data=models.Job}
// @Failure 409 {object} models.APIResponse "Job is closed"
// @Router /jobs/{id} [put]
func (h *Handler) UpdateJob(w http.ResponseWriter, r *http.Request) {
	j, ok := h.loadManagedJob(w, r)
	if !ok {
		return
	}
	var req JobRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if ferr := validateSalary(&req); ferr != nil {
		ferr.respond(w)
		return
	}
	if j.Status == models.JobClosed {
		respondErrorDetails(w, http.StatusConflict, ErrCodeConflict, "closed jobs cannot be edited",
			map[string]interface{}{"status": j.Status})
		return
	}
	req.toJob(j)
	if err := h.db.UpdateJob(r.Context(), j); err != nil {
		respondStoreError(w, r, err, "job")
		return
	}
	respondOK(w, j)
}

// DeleteJob removes a job with its applications
//
// @Summary Delete job
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} models.APIResponse
// @Router /jobs/{id} [delete]
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	j, ok := h.loadManagedJob(w, r)
	if !ok {
		return
	}
	if err := h.db.DeleteJob(r.Context(), j.ID); err != nil {
		respondStoreError(w, r, err, "job")
		return
	}
	h.invalidateAllRecommendations()
	if h.audit != nil {
		h.audit.LogJobDeleted(r.Context(), actorFor(subject(r)), audit.SourceFromRequest(r), j)
	}
	respondOK(w, map[string]string{"deleted": j.ID})
}

// PublishJob makes a draft visible
//
// @Summary Publish job
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} models.APIResponse{data=models.Job}
// @Failure 409 {object} models.APIResponse "Job is closed"
// @Router /jobs/{id}/publish [post]
func (h *Handler) PublishJob(w http.ResponseWriter, r *http.Request) {
	j, ok := h.loadManagedJob(w, r)
	if !ok {
		return
	}
	wasDraft := j.Status == models.JobDraft
	published, err := h.db.PublishJob(r.Context(), j.ID)
	if err != nil {
		respondStoreError(w, r, err, "job")
		return
	}
	if wasDraft {
		h.invalidateAllRecommendations()
		h.emit(r, events.TopicJobPublished, subject(r).UserID,
			events.JobPublished{JobID: published.ID, TenantID: published.TenantID, Title: published.Title})
	}
	respondOK(w, published)
}

// CloseJob stops a job accepting applications. Closing is terminal.
//
// @Summary Close job
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} models.APIResponse{data=models.Job}
// @Router /jobs/{id}/close [post]
func (h *Handler) CloseJob(w http.ResponseWriter, r *http.Request) {
	j, ok := h.loadManagedJob(w, r)
	if !ok {
		return
	}
	if j.Status == models.JobClosed {
		respondOK(w, j)
		return
	}
	closed, err := h.db.CloseJob(r.Context(), j.ID)
	if err != nil {
		respondStoreError(w, r, err, "job")
		return
	}
	h.invalidateAllRecommendations()
	respondOK(w, closed)
}

// SaveJob bookmarks a published job
//
// @Summary Save job
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} models.APIResponse
// @Router /jobs/{id}/save [post]
func (h *Handler) SaveJob(w http.ResponseWriter, r *http.Request) {
	j, err := h.db.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, "job")
		return
	}
	if j.Status == models.JobDraft {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "job not found", nil)
		return
	}
	if err := h.db.SaveJob(r.Context(), subject(r).UserID, j.ID); err != nil {
		respondStoreError(w, r, err, "saved job")
		return
	}
	respondOK(w, map[string]interface{}{"job_id": j.ID, "saved": true})
}

// UnsaveJob removes a bookmark
//
// @Summary Unsave job
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /jobs/{id}/save [delete]
func (h *Handler) UnsaveJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.db.UnsaveJob(r.Context(), subject(r).UserID, id); err != nil {
		respondStoreError(w, r, err, "saved job")
		return
	}
	respondOK(w, map[string]interface{}{"job_id": id, "saved": false})
}

// ListSavedJobs returns the caller's bookmarks
//
// @Summary Saved jobs
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=[]models.SavedJob}
// @Router /jobs/saved [get]
func (h *Handler) ListSavedJobs(w http.ResponseWriter, r *http.Request) {
	saved, err := h.db.ListSavedJobs(r.Context(), subject(r).UserID)
	if err != nil {
		respondStoreError(w, r, err, "saved jobs")
		return
	}
	if saved == nil {
		saved = []models.SavedJob{}
	}
	respondOK(w, saved)
}

// CompanyJobs lists the caller's company jobs in every status
//
// @Summary Own company jobs
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param status query string false "draft, published or closed"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.APIResponse{data=[]models.Job}
// @Router /companies/jobs [get]
func (h *Handler) CompanyJobs(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	tenantID := s.TenantID
	if s.IsSuperadmin() {
		tenantID = r.URL.Query().Get("tenant_id")
	}
	if tenantID == "" {
		respondFieldError(w, "tenant_id", "tenant_id is required")
		return
	}
	p, ferr := h.parsePage(r)
	if ferr != nil {
		ferr.respond(w)
		return
	}
	f, ferr := jobFilterFromQuery(r, p)
	if ferr != nil {
		ferr.respond(w)
		return
	}
	f.TenantID = tenantID
	f.IncludeExpired = true
	f.Statuses = []models.JobStatus{models.JobDraft, models.JobPublished, models.JobClosed}
	if st := r.URL.Query().Get("status"); st != "" {
		status := models.JobStatus(st)
		if !status.Valid() {
			respondFieldError(w, "status", "unknown status")
			return
		}
		f.Statuses = []models.JobStatus{status}
	}
	page, err := h.db.ListJobs(r.Context(), f)
	if err != nil {
		respondStoreError(w, r, err, "jobs")
		return
	}
	respondPage(w, page, p)
}
