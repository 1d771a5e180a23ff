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

	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/models"
)

// profileResponse adds the derived completeness score.
type profileResponse struct {
	*models.YouthProfile
	Completeness float64 `json:"completeness"`
}

// GetProfile returns the caller's youth profile
//
// @Summary Get own profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.YouthProfile}
// @Router /profile [get]
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	s := subject(r)
	p, err := h.db.GetProfile(r.Context(), s.UserID)
	if errors.Is(err, database.ErrNotFound) {
		p = &models.YouthProfile{UserID: s.UserID, EducationLevel: models.EducationNone, Skills: []string{}}
	} else if err != nil {
		respondStoreError(w, r, err, "profile")
		return
	}
	respondOK(w, profileResponse{YouthProfile: p, Completeness: p.Completeness()})
}

// UpdateProfile replaces the caller's youth profile
//
// @Summary Update own profile
// @Description Skills are trimmed, lowercased, deduplicated and sorted. Recommendations are recomputed on next request.
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ProfileRequest true "Profile"
// @Success 200 {object} models.APIResponse{data=models.YouthProfile}
// @Failure 400 {object} models.APIResponse "Validation failed"
// @Router /profile [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s := subject(r)

	if req.ResumeUploadID != "" {
		u, err := h.db.GetUpload(r.Context(), req.ResumeUploadID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			respondStoreError(w, r, err, "upload")
			return
		}
		if u == nil || u.OwnerID != s.UserID || u.Kind != models.UploadResume {
			respondFieldError(w, "resume_upload_id", "resume_upload_id must reference one of your resume uploads")
			return
		}
	}

	jobTypes := make([]models.JobType, 0, len(req.PreferredJobTypes))
	for _, t := range req.PreferredJobTypes {
		jobTypes = append(jobTypes, models.JobType(t))
	}
	edu := models.EducationLevel(req.EducationLevel)
	if edu == "" {
		edu = models.EducationNone
	}
	interests := make([]string, 0, len(req.Interests))
	for _, i := range req.Interests {
		if i = strings.TrimSpace(i); i != "" {
			interests = append(interests, i)
		}
	}

	p := &models.YouthProfile{
		UserID:            s.UserID,
		Headline:          strings.TrimSpace(req.Headline),
		Bio:               strings.TrimSpace(req.Bio),
		Location:          strings.TrimSpace(req.Location),
		Skills:            models.NormalizeSkills(req.Skills),
		ExperienceYears:   req.ExperienceYears,
		EducationLevel:    edu,
		PreferredJobTypes: jobTypes,
		DesiredSalaryMin:  req.DesiredSalaryMin,
		Interests:         interests,
		ResumeUploadID:    req.ResumeUploadID,
		OpenToRemote:      req.OpenToRemote,
	}
	if err := h.db.UpsertProfile(r.Context(), p); err != nil {
		respondStoreError(w, r, err, "profile")
		return
	}
	if h.recommender != nil {
		h.recommender.Invalidate(s.UserID)
	}
	respondOK(w, profileResponse{YouthProfile: p, Completeness: p.Completeness()})
}

// GetTenant returns a company or institution page
//
// @Summary Get tenant
// @Tags Tenants
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Success 200 {object} models.APIResponse{data=models.Tenant}
// @Failure 404 {object} models.APIResponse
// @Router /tenants/{id} [get]
func (h *Handler) GetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := h.db.GetTenant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, "tenant")
		return
	}
	respondOK(w, t)
}

// UpdateTenant edits a tenant page. Members of the tenant and superadmins only.
//
// @Summary Update tenant
// @Tags Tenants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Tenant ID"
// @Param body body TenantRequest true "Tenant"
// @Success 200 {object} models.APIResponse{data=models.Tenant}
// @Failure 403 {object} models.APIResponse
// @Router /tenants/{id} [put]
func (h *Handler) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !subject(r).CanManageTenant(id) {
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "you can only edit your own organization", nil)
		return
	}
	var req TenantRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.db.GetTenant(r.Context(), id)
	if err != nil {
		respondStoreError(w, r, err, "tenant")
		return
	}
	t.Name = strings.TrimSpace(req.Name)
	t.Website = req.Website
	t.Description = req.Description
	t.Location = strings.TrimSpace(req.Location)
	if err := h.db.UpdateTenant(r.Context(), t); err != nil {
		respondStoreError(w, r, err, "tenant")
		return
	}
	respondOK(w, t)
}
