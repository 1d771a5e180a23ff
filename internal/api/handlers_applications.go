// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/launchpad/internal/auth"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/events"
	"github.com/tomtom215/launchpad/internal/models"
)

// Apply submits an application to a published job
//
// @Summary Apply to job
// @Description Without resume_upload_id the resume on the profile is attached
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param body body ApplyRequest true "Application"
// @Success 201 {object} models.APIResponse{data=models.Application}
// @Failure 409 {object} models.APIResponse "Already applied or job closed"
// @Router /jobs/{id}/apply [post]
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s := subject(r)
	ctx := r.Context()

	j, err := h.db.GetJob(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, "job")
		return
	}
	if j.Status == models.JobDraft {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "job not found", nil)
		return
	}
	if !j.IsOpen(h.db.Now()) {
		respondErrorDetails(w, http.StatusConflict, ErrCodeConflict, "job is not accepting applications",
			map[string]interface{}{"status": j.Status, "deadline": j.Deadline})
		return
	}

	resumeID := req.ResumeUploadID
	if resumeID != "" {
		u, err := h.db.GetUpload(ctx, resumeID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			respondStoreError(w, r, err, "upload")
			return
		}
		if u == nil || u.OwnerID != s.UserID || u.Kind != models.UploadResume {
			respondFieldError(w, "resume_upload_id", "resume_upload_id must reference one of your resume uploads")
			return
		}
	} else if p, err := h.db.GetProfile(ctx, s.UserID); err == nil {
		resumeID = p.ResumeUploadID
	}

	a := &models.Application{
		JobID:          j.ID,
		UserID:         s.UserID,
		TenantID:       j.TenantID,
		CoverLetter:    req.CoverLetter,
		ResumeUploadID: resumeID,
	}
	if err := h.db.CreateApplication(ctx, a); err != nil {
		if errors.Is(err, database.ErrConflict) {
			respondError(w, http.StatusConflict, ErrCodeConflict, "you have already applied to this job", nil)
			return
		}
		respondStoreError(w, r, err, "application")
		return
	}
	a.JobTitle = j.Title

	if h.recommender != nil {
		h.recommender.Invalidate(s.UserID)
	}
	name := s.Email
	if u, err := h.db.GetUserByID(ctx, s.UserID); err == nil {
		name = u.Name
	}
	a.ApplicantName = name
	h.emit(r, events.TopicApplicationSubmitted, s.UserID, events.ApplicationSubmitted{
		ApplicationID: a.ID,
		JobID:         j.ID,
		JobTitle:      j.Title,
		TenantID:      j.TenantID,
		ApplicantID:   s.UserID,
		ApplicantName: name,
	})
	respondData(w, http.StatusCreated, a)
}

// ListApplications lists applications visible to the caller
//
// @Summary List applications
// @Description Youth see their own applications; companies see applications to their jobs
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param job_id query string false "Job"
// @Param status query string false "Application status"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} models.APIResponse{data=[]models.Application}
// @Router /applications [get]
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	p, ferr := h.parsePage(r)
	if ferr != nil {
		ferr.respond(w)
		return
	}
	q := r.URL.Query()
	f := models.ApplicationFilter{JobID: q.Get("job_id"), Limit: p.Limit, Offset: p.Offset}
	if st := q.Get("status"); st != "" {
		f.Status = models.ApplicationStatus(st)
		if !f.Status.Valid() {
			respondFieldError(w, "status", "unknown status")
			return
		}
	}

	switch s.Role {
	case models.RoleYouth:
		f.UserID = s.UserID
	case models.RoleCompany:
		f.TenantID = s.TenantID
	case models.RoleSuperadmin:
		f.TenantID = q.Get("tenant_id")
		f.UserID = q.Get("user_id")
	default:
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "applications are not available for this role", nil)
		return
	}

	page, err := h.db.ListApplications(r.Context(), f)
	if err != nil {
		respondStoreError(w, r, err, "applications")
		return
	}
	respondPage(w, page, p)
}

// canSeeApplication reports whether s is the applicant, a member of the
// hiring tenant or a superadmin.
func canSeeApplication(s *auth.Subject, a *models.Application) bool {
	return s.UserID == a.UserID || s.CanManageTenant(a.TenantID)
}

// GetApplication returns one application
//
// @Summary Get application
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Success 200 {object} models.APIResponse{data=models.Application}
// @Failure 404 {object} models.APIResponse
// @Router /applications/{id} [get]
func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	a, err := h.db.GetApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, "application")
		return
	}
	if !canSeeApplication(subject(r), a) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "application not found", nil)
		return
	}
	respondOK(w, a)
}

// UpdateApplicationStatus moves an application through the hiring pipeline
//
// @Summary Change application status
// @Description Companies move forward or reject; applicants may withdraw. Terminal: hired, rejected, withdrawn.
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID"
// @Param body body ApplicationStatusRequest true "New status"
// @Success 200 {object} models.APIResponse{data=models.Application}
// @Failure 409 {object} models.APIResponse "Transition not allowed; details carry the current status"
// @Router /applications/{id}/status [patch]
func (h *Handler) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req ApplicationStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	next := models.ApplicationStatus(req.Status)
	if !next.Valid() {
		respondFieldError(w, "status", "unknown status")
		return
	}
	s := subject(r)
	ctx := r.Context()

	a, err := h.db.GetApplication(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, "application")
		return
	}
	if !canSeeApplication(s, a) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "application not found", nil)
		return
	}

	// The applicant may only withdraw, whatever their role.
	actor := s.Role
	if s.UserID == a.UserID {
		actor = models.RoleYouth
	}
	if !a.Status.CanTransition(next, actor) {
		respondTransitionConflict(w, a.Status, next)
		return
	}

	updated, err := h.db.TransitionApplication(ctx, a.ID, a.Status, next, s.UserID, req.Notes)
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			current := a.Status
			if fresh, gerr := h.db.GetApplication(ctx, a.ID); gerr == nil {
				current = fresh.Status
			}
			respondTransitionConflict(w, current, next)
			return
		}
		respondStoreError(w, r, err, "application")
		return
	}

	h.emit(r, events.TopicApplicationStatusChanged, s.UserID, events.ApplicationStatusChanged{
		ApplicationID: updated.ID,
		JobID:         updated.JobID,
		JobTitle:      updated.JobTitle,
		TenantID:      updated.TenantID,
		ApplicantID:   updated.UserID,
		From:          string(a.Status),
		To:            string(next),
	})
	respondOK(w, updated)
}

func respondTransitionConflict(w http.ResponseWriter, current, requested models.ApplicationStatus) {
	respondErrorDetails(w, http.StatusConflict, ErrCodeConflict, "status transition not allowed",
		map[string]interface{}{
			"current_status":   current,
			"requested_status": requested,
		})
}
