// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/models"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) *models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v; body: %s", err, rec.Body.String())
	}
	return &resp
}

func TestRespondStoreError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", database.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"wrapped not found", fmt.Errorf("job j1: %w", database.ErrNotFound), http.StatusNotFound, ErrCodeNotFound},
		{"conflict", database.ErrConflict, http.StatusConflict, ErrCodeConflict},
		{"invalid state", database.ErrInvalidState, http.StatusConflict, ErrCodeConflict},
		{"forbidden", database.ErrForbidden, http.StatusForbidden, ErrCodeForbidden},
		{"other", errors.New("connection reset"), http.StatusInternalServerError, ErrCodeDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			respondStoreError(rec, httptest.NewRequest("GET", "/", nil), tt.err, "job")

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			resp := decodeEnvelope(t, rec)
			if resp.Status != "error" || resp.Error == nil || resp.Error.Code != tt.wantCode {
				t.Errorf("envelope = %+v", resp)
			}
			if strings.Contains(rec.Body.String(), "connection reset") {
				t.Error("internal error text leaked to client")
			}
		})
	}
}

func TestRespondData_Envelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respondData(rec, http.StatusCreated, map[string]string{"id": "j1"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	resp := decodeEnvelope(t, rec)
	if resp.Status != "success" || resp.Error != nil || resp.Metadata.Timestamp.IsZero() {
		t.Errorf("envelope = %+v", resp)
	}
}

func TestRespondPage_EmptyItemsIsArray(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	respondPage(rec, &models.Page[models.Job]{Total: 0}, pageParams{Limit: 20})

	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("body = %s, want empty array", rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	if resp.Metadata.Pagination == nil || resp.Metadata.Pagination.Limit != 20 {
		t.Errorf("pagination = %+v", resp.Metadata.Pagination)
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantOK     bool
		wantStatus int
		wantField  string
	}{
		{"valid", `{"email":"ama@example.org","password":"pw"}`, true, http.StatusOK, ""},
		{"malformed", `{"email":`, false, http.StatusBadRequest, ""},
		{"missing field", `{"email":"ama@example.org"}`, false, http.StatusBadRequest, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))

			var dst LoginRequest
			ok := decodeJSON(rec, req, &dst)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v; body: %s", ok, tt.wantOK, rec.Body.String())
			}
			if ok {
				return
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantField != "" {
				resp := decodeEnvelope(t, rec)
				if resp.Error.Code != ErrCodeValidation || resp.Error.Details["field"] != tt.wantField {
					t.Errorf("error = %+v", resp.Error)
				}
			}
		})
	}
}
