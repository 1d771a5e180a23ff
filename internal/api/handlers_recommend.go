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
	"github.com/tomtom215/launchpad/internal/recommend"
)

// recommendTimeout bounds one ranking computation.
const recommendTimeout = 10 * time.Second

// JobRecommendations ranks open jobs for the caller
//
// @Summary Job recommendations
// @Description Scores published jobs against the youth profile (0-100). Jobs already applied to, closed or past deadline are excluded. Served at both /api/jobs/recommendations and /api/v1/jobs/recommendations.
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Number of results (default 10, max 50)"
// @Param min_score query number false "Minimum score 0-100 (default 0)"
// @Success 200 {object} models.APIResponse{data=models.RecommendationResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 503 {object} models.APIResponse "Recommender not configured"
// @Router /jobs/recommendations [get]
func (h *Handler) JobRecommendations(w http.ResponseWriter, r *http.Request) {
	if h.recommender == nil {
		unavailable(w, "recommendations")
		return
	}
	s := subject(r)
	if !s.Is(models.RoleYouth, models.RoleSuperadmin) {
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "recommendations are available to youth accounts", nil)
		return
	}
	start := time.Now()

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondFieldError(w, "limit", "limit must be a positive integer")
			return
		}
		limit = n
	}
	minScore, ferr := parseFloatParam(r, "min_score", 0, 0, 100)
	if ferr != nil {
		ferr.respond(w)
		return
	}

	userID := s.UserID
	if s.IsSuperadmin() {
		if u := r.URL.Query().Get("user_id"); u != "" {
			userID = u
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), recommendTimeout)
	defer cancel()

	resp, cached, err := h.recommender.Recommend(ctx, recommend.Request{
		UserID:   userID,
		Limit:    limit,
		MinScore: minScore,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to compute recommendations", err)
		return
	}
	respondTimed(w, resp, start, cached)
}

// bulkInvalidator is implemented by recommenders that can drop every
// cached ranking.
type bulkInvalidator interface {
	InvalidateAll()
}

// invalidateAllRecommendations is called when the set of open jobs changes.
func (h *Handler) invalidateAllRecommendations() {
	if bi, ok := h.recommender.(bulkInvalidator); ok {
		bi.InvalidateAll()
	}
}
