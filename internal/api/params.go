// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxOffset       = 1_000_000
)

// pageParams is a validated limit/offset pair.
type pageParams struct {
	Limit  int
	Offset int
}

// parsePage reads limit and offset. Limits above max are clamped; values
// that are not non-negative integers return an error naming the field.
func (h *Handler) parsePage(r *http.Request) (pageParams, *fieldError) {
	def, max := defaultPageSize, maxPageSize
	if h.cfg != nil {
		if h.cfg.API.DefaultPageSize > 0 {
			def = h.cfg.API.DefaultPageSize
		}
		if h.cfg.API.MaxPageSize > 0 {
			max = h.cfg.API.MaxPageSize
		}
	}
	return parsePageWith(r, def, max)
}

func parsePageWith(r *http.Request, def, max int) (pageParams, *fieldError) {
	p := pageParams{Limit: def}
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, &fieldError{"limit", "limit must be a positive integer"}
		}
		p.Limit = min(n, max)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > maxOffset {
			return p, &fieldError{"offset", "offset must be between 0 and 1000000"}
		}
		p.Offset = n
	}
	return p, nil
}

// fieldError is a query parameter that failed to parse.
type fieldError struct {
	Field   string
	Message string
}

func (e *fieldError) respond(w http.ResponseWriter) {
	respondFieldError(w, e.Field, e.Message)
}

// parseBoolParam returns nil when key is absent.
func parseBoolParam(r *http.Request, key string) (*bool, *fieldError) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, &fieldError{key, key + " must be true or false"}
	}
	return &b, nil
}

// parseTimeParam accepts RFC3339 timestamps; nil when key is absent.
func parseTimeParam(r *http.Request, key string) (*time.Time, *fieldError) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, &fieldError{key, key + " must be an RFC3339 timestamp"}
	}
	return &t, nil
}

// parseFloatParam returns def when key is absent.
func parseFloatParam(r *http.Request, key string, def, lo, hi float64) (float64, *fieldError) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < lo || f > hi {
		return def, &fieldError{key, key + " must be a number between " +
			strconv.FormatFloat(lo, 'f', -1, 64) + " and " + strconv.FormatFloat(hi, 'f', -1, 64)}
	}
	return f, nil
}

// parseCommaSeparated splits a list parameter, dropping empty entries.
func parseCommaSeparated(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
