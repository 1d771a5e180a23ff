// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/models"
	"github.com/tomtom215/launchpad/internal/validation"
)

// Error codes carried in the error envelope.
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	ErrCodeUnsupportedMedia = "UNSUPPORTED_MEDIA_TYPE"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeDatabase         = "DATABASE_ERROR"
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
	ErrCodeUnavailable      = "SERVICE_UNAVAILABLE"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// sanitizeLogValue escapes control characters so client input cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// respondJSON writes response with status. API responses are per-user and
// never cached by intermediaries.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData writes a success envelope.
func respondData(w http.ResponseWriter, status int, data interface{}) {
	respondJSON(w, status, &models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
	})
}

// respondOK is respondData with 200.
func respondOK(w http.ResponseWriter, data interface{}) {
	respondData(w, http.StatusOK, data)
}

// respondTimed adds query time and cache status to the metadata.
func respondTimed(w http.ResponseWriter, data interface{}, start time.Time, cached bool) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      cached,
		},
	})
}

// respondPage writes page.Items with pagination metadata.
func respondPage[T any](w http.ResponseWriter, page *models.Page[T], p pageParams) {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   items,
		Metadata: models.Metadata{
			Timestamp:  time.Now().UTC(),
			Pagination: models.NewPagination(p.Limit, p.Offset, page.Total),
		},
	})
}

// respondError writes the error envelope. err, when given, is logged and
// never sent to the client.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		event := logging.Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Error()
		}
		event.Str("code", code).Str("error", sanitizeLogValue(err.Error())).Msg("API error")
	}
	respondErrorDetails(w, status, code, message, nil)
}

// respondErrorDetails writes the error envelope with structured details.
func respondErrorDetails(w http.ResponseWriter, status int, code, message string, details map[string]interface{}) {
	respondJSON(w, status, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now().UTC()},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondStoreError maps database sentinels onto HTTP statuses. what names
// the entity in the not-found message.
func respondStoreError(w http.ResponseWriter, r *http.Request, err error, what string) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, ErrCodeNotFound, what+" not found", nil)
	case errors.Is(err, database.ErrConflict):
		respondError(w, http.StatusConflict, ErrCodeConflict, what+" conflicts with an existing record", nil)
	case errors.Is(err, database.ErrNoLessons):
		respondError(w, http.StatusConflict, ErrCodeConflict, "course needs at least one lesson", nil)
	case errors.Is(err, database.ErrInvalidState):
		respondError(w, http.StatusConflict, ErrCodeConflict, what+" is not in a state that allows this action", nil)
	case errors.Is(err, database.ErrForbidden):
		respondError(w, http.StatusForbidden, ErrCodeForbidden, "access denied", nil)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("entity", what).Msg("Database operation failed")
		respondError(w, http.StatusInternalServerError, ErrCodeDatabase, "database error", nil)
	}
}

// respondValidation writes a VALIDATION_ERROR for a failed struct check.
func respondValidation(w http.ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondErrorDetails(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
}

// respondFieldError writes a VALIDATION_ERROR for one field checked by hand.
func respondFieldError(w http.ResponseWriter, field, message string) {
	respondErrorDetails(w, http.StatusBadRequest, ErrCodeValidation, message, map[string]interface{}{"field": field})
}

// decodeJSON reads a size-limited JSON body into dst and validates it.
// It writes the error response and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large", nil)
			return false
		}
		respondError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body", nil)
		return false
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		respondValidation(w, verr)
		return false
	}
	return true
}
