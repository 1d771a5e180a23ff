// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/launchpad/internal/cache"
	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
	"github.com/tomtom215/launchpad/internal/models"
)

// MaxSuggestedCourses caps course suggestions per recommendation.
const MaxSuggestedCourses = 3

// suggestionPool is how many courses are fetched once per request to fill
// suggestions for all returned jobs.
const suggestionPool = 50

// Store is the data the engine reads. *database.DB implements it.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*models.YouthProfile, error)
	AppliedJobIDs(ctx context.Context, userID string) ([]string, error)
	ListOpenJobs(ctx context.Context, max int, exclude []string) ([]models.Job, error)
	CoursesTeaching(ctx context.Context, skills []string, limit int) ([]models.Course, error)
}

// Request selects recommendations for one youth user.
type Request struct {
	UserID   string
	Limit    int
	MinScore float64
	// PublishedSince keeps only jobs published after this instant (digests).
	PublishedSince *time.Time
}

// ranking is the cached, fully scored candidate list of one user.
type ranking struct {
	items     []models.Recommendation
	evaluated int
	excluded  int
}

// Engine ranks open jobs for youth users and caches rankings per user.
type Engine struct {
	store  Store
	scorer *Scorer
	cfg    config.RecommendConfig
	cache  *cache.Cache[*ranking]
	logger zerolog.Logger
	now    func() time.Time
}

// NewEngine creates a recommendation engine.
func NewEngine(store Store, cfg config.RecommendConfig) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("recommend: store is required")
	}
	scorer, err := NewScorer(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = 50
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 2000
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	return &Engine{
		store:  store,
		scorer: scorer,
		cfg:    cfg,
		cache:  cache.New[*ranking]("recommendations", cfg.CacheTTL, 0),
		logger: logging.WithComponent("recommend"),
		now:    time.Now,
	}, nil
}

// Close stops the cache janitor.
func (e *Engine) Close() {
	e.cache.Close()
}

// Invalidate drops the cached ranking of one user. Call it when the
// user's profile changes or the user applies to a job.
func (e *Engine) Invalidate(userID string) {
	e.cache.Delete(userID)
}

// InvalidateAll drops every cached ranking, e.g. after a job is published
// or closed.
func (e *Engine) InvalidateAll() {
	e.cache.Clear()
}

// clampLimit applies the default and maximum limits.
func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		return e.cfg.DefaultLimit
	}
	if limit > e.cfg.MaxLimit {
		return e.cfg.MaxLimit
	}
	return limit
}

// Recommend returns the top jobs for req.UserID. The boolean reports
// whether the ranking came from the cache.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*models.RecommendationResponse, bool, error) {
	if req.UserID == "" {
		return nil, false, fmt.Errorf("recommend: user id is required")
	}
	limit := e.clampLimit(req.Limit)
	logger := e.logger.With().Str("user_id", req.UserID).Logger()

	r, cached, err := e.cache.GetOrLoad(ctx, req.UserID, func(ctx context.Context) (*ranking, error) {
		return e.rank(ctx, req.UserID)
	})
	if err != nil {
		return nil, false, err
	}

	items := make([]models.Recommendation, 0, limit)
	for i := range r.items {
		if len(items) == limit {
			break
		}
		rec := r.items[i]
		if rec.Score < req.MinScore {
			continue
		}
		if req.PublishedSince != nil && (rec.Job.PublishedAt == nil || !rec.Job.PublishedAt.After(*req.PublishedSince)) {
			continue
		}
		items = append(items, rec)
	}

	if err := e.attachCourses(ctx, items); err != nil {
		// Suggestions are optional; the ranking is still valid.
		logger.Warn().Err(err).Msg("failed to load course suggestions")
	}

	logger.Debug().
		Bool("cached", cached).
		Int("evaluated", r.evaluated).
		Int("returned", len(items)).
		Msg("recommendation complete")

	return &models.RecommendationResponse{
		UserID:          req.UserID,
		Recommendations: items,
		Evaluated:       r.evaluated,
		Excluded:        r.excluded,
	}, cached, nil
}

// rank scores every open job the user has not applied to.
func (e *Engine) rank(ctx context.Context, userID string) (*ranking, error) {
	start := time.Now()

	profile, err := e.store.GetProfile(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		profile = &models.YouthProfile{UserID: userID}
	} else if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}

	applied, err := e.store.AppliedJobIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get applied jobs: %w", err)
	}

	jobs, err := e.store.ListOpenJobs(ctx, e.cfg.MaxCandidates, applied)
	if err != nil {
		return nil, fmt.Errorf("get candidates: %w", err)
	}

	now := e.now()
	items := make([]models.Recommendation, 0, len(jobs))
	for i := range jobs {
		// ListOpenJobs filters by status and deadline in SQL; recheck in
		// case a deadline passed between query and scoring.
		if !jobs[i].IsOpen(now) {
			continue
		}
		items = append(items, e.scorer.Score(profile, &jobs[i], now))
	}
	sortRecommendations(items)

	metrics.RecordRecommendation(time.Since(start), len(jobs))
	return &ranking{items: items, evaluated: len(jobs), excluded: len(applied)}, nil
}

// sortRecommendations orders by score desc, then published_at desc, then id.
func sortRecommendations(items []models.Recommendation) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		pa, pb := publishedUnix(a.Job), publishedUnix(b.Job)
		if pa != pb {
			return pa > pb
		}
		return a.Job.ID < b.Job.ID
	})
}

func publishedUnix(j *models.Job) int64 {
	if j.PublishedAt == nil {
		return 0
	}
	return j.PublishedAt.UnixNano()
}

// attachCourses fills SuggestedCourses with published courses teaching a
// missing required skill, using a single query for the whole page.
func (e *Engine) attachCourses(ctx context.Context, items []models.Recommendation) error {
	var missing []string
	seen := make(map[string]struct{})
	for i := range items {
		for _, s := range items[i].MissingSkills {
			if _, ok := seen[s]; !ok {
				seen[s] = struct{}{}
				missing = append(missing, s)
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}

	courses, err := e.store.CoursesTeaching(ctx, missing, suggestionPool)
	if err != nil {
		return err
	}

	for i := range items {
		items[i].SuggestedCourses = suggestCourses(items[i].MissingSkills, courses)
	}
	return nil
}

// suggestCourses picks up to MaxSuggestedCourses courses, in the given
// order, that teach at least one of missing.
func suggestCourses(missing []string, courses []models.Course) []models.CourseSuggestion {
	out := []models.CourseSuggestion{}
	if len(missing) == 0 {
		return out
	}
	want := newSkillSet(missing)
	for i := range courses {
		c := &courses[i]
		var teaches []string
		for _, s := range c.Skills {
			if want.has(s) {
				teaches = append(teaches, CanonicalSkill(s))
			}
		}
		if len(teaches) == 0 {
			continue
		}
		out = append(out, models.CourseSuggestion{
			ID:            c.ID,
			Title:         c.Title,
			TenantID:      c.TenantID,
			Level:         string(c.Level),
			TeachesSkills: teaches,
		})
		if len(out) == MaxSuggestedCourses {
			break
		}
	}
	return out
}
