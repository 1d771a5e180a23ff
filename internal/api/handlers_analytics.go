// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/models"
	"github.com/tomtom215/launchpad/internal/recommend"
)

// dashboardScope resolves whose dashboard is requested. Members get their
// own scope; a superadmin names it with the query parameter.
func dashboardScope(w http.ResponseWriter, r *http.Request, role models.Role, own, param string) (string, bool) {
	s := subject(r)
	switch {
	case s.IsSuperadmin():
		scope := r.URL.Query().Get(param)
		if scope == "" {
			respondFieldError(w, param, param+" is required for superadmin")
			return "", false
		}
		return scope, true
	case s.Is(role) && own != "":
		return own, true
	default:
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "dashboard not available for your role", nil)
		return "", false
	}
}

// serveDashboard answers from the one-minute roll-up cache.
func (h *Handler) serveDashboard(w http.ResponseWriter, r *http.Request, key string, load func(context.Context) (interface{}, error)) {
	start := time.Now()
	d, cached, err := h.dashboards.GetOrLoad(r.Context(), key, load)
	if err != nil {
		respondStoreError(w, r, err, "dashboard")
		return
	}
	respondTimed(w, d, start, cached)
}

// YouthAnalytics returns the youth dashboard
//
// @Summary Youth dashboard
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param user_id query string false "Youth user (superadmin only)"
// @Success 200 {object} models.APIResponse{data=models.YouthDashboard}
// @Router /analytics/youth [get]
func (h *Handler) YouthAnalytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := dashboardScope(w, r, models.RoleYouth, subject(r).UserID, "user_id")
	if !ok {
		return
	}
	h.serveDashboard(w, r, "youth:"+userID, func(ctx context.Context) (interface{}, error) {
		d, err := h.db.YouthDashboard(ctx, userID)
		if err != nil {
			return nil, err
		}
		p, err := h.db.GetProfile(ctx, userID)
		switch {
		case err == nil:
			d.ProfileCompleteness = p.Completeness()
		case !errors.Is(err, database.ErrNotFound):
			return nil, err
		}
		d.TopRecommendationScore = h.topRecommendationScore(ctx, userID)
		return d, nil
	})
}

// topRecommendationScore is 0 when the engine is off or fails; the rest of
// the dashboard is still useful.
func (h *Handler) topRecommendationScore(ctx context.Context, userID string) float64 {
	if h.recommender == nil {
		return 0
	}
	res, _, err := h.recommender.Recommend(ctx, recommend.Request{UserID: userID, Limit: 1})
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("user_id", userID).Msg("No recommendation score for dashboard")
		return 0
	}
	if len(res.Recommendations) == 0 {
		return 0
	}
	return res.Recommendations[0].Score
}

// CompanyAnalytics returns the hiring dashboard of a company
//
// @Summary Company dashboard
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param tenant_id query string false "Company tenant (superadmin only)"
// @Success 200 {object} models.APIResponse{data=models.CompanyDashboard}
// @Router /analytics/company [get]
func (h *Handler) CompanyAnalytics(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := dashboardScope(w, r, models.RoleCompany, subject(r).TenantID, "tenant_id")
	if !ok {
		return
	}
	h.serveDashboard(w, r, "company:"+tenantID, func(ctx context.Context) (interface{}, error) {
		return h.db.CompanyDashboard(ctx, tenantID)
	})
}

// InstitutionAnalytics returns the learning dashboard of an institution
//
// @Summary Institution dashboard
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Param tenant_id query string false "Institution tenant (superadmin only)"
// @Success 200 {object} models.APIResponse{data=models.InstitutionDashboard}
// @Router /analytics/institution [get]
func (h *Handler) InstitutionAnalytics(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := dashboardScope(w, r, models.RoleInstitution, subject(r).TenantID, "tenant_id")
	if !ok {
		return
	}
	h.serveDashboard(w, r, "institution:"+tenantID, func(ctx context.Context) (interface{}, error) {
		return h.db.InstitutionDashboard(ctx, tenantID)
	})
}

// PlatformAnalytics returns platform-wide totals and the skill gap
//
// @Summary Platform dashboard
// @Tags Analytics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.PlatformDashboard}
// @Failure 403 {object} models.APIResponse
// @Router /analytics/platform [get]
func (h *Handler) PlatformAnalytics(w http.ResponseWriter, r *http.Request) {
	if !subject(r).IsSuperadmin() {
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "superadmin only", nil)
		return
	}
	h.serveDashboard(w, r, "platform", func(ctx context.Context) (interface{}, error) {
		return h.db.PlatformDashboard(ctx)
	})
}
