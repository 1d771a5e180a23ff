// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package jobimport

import (
	"time"
)

// Record is one row of the source jobs table.
type Record struct {
	RowID       int64
	URL         string
	Title       string
	Description string
	Company     string
	JobID       string
	Location    string
	Status      string
	CreatedAt   time.Time
}

// Options describe one import run.
type Options struct {
	DBPath   string `json:"db_path" validate:"required"`
	TenantID string `json:"tenant_id" validate:"required"`
	// PostedBy is recorded as the author of every imported job.
	PostedBy string `json:"-"`
	// StatusFilter limits the import to source rows with this status.
	StatusFilter string `json:"status_filter,omitempty"`
	DryRun       bool   `json:"dry_run"`
	// Fresh ignores saved progress and starts from the first row.
	Fresh     bool `json:"fresh,omitempty"`
	BatchSize int  `json:"-"`
}

// Stats holds statistics about an import run.
type Stats struct {
	Source    string `json:"source"`
	TenantID  string `json:"tenant_id"`
	StartedBy string `json:"started_by,omitempty"`

	// TotalRecords is the number of rows the run will look at.
	TotalRecords int64 `json:"total_records"`
	Processed    int64 `json:"processed"`
	Imported     int64 `json:"imported"`
	// Duplicates were skipped because their source URL already exists.
	Duplicates int64 `json:"duplicates"`
	// Skipped rows failed validation (no title, closed in the source, ...).
	Skipped int64 `json:"skipped"`
	Errors  int64 `json:"errors"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time,omitempty"`

	// LastRowID is the rowid of the last committed source row.
	LastRowID int64  `json:"last_row_id"`
	DryRun    bool   `json:"dry_run"`
	Error     string `json:"error,omitempty"`
}

// Duration returns how long the run took, or has taken so far.
func (s *Stats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// Progress returns the run progress as a percentage (0-100).
func (s *Stats) Progress() float64 {
	if s.TotalRecords == 0 {
		return 0
	}
	return float64(s.Processed) / float64(s.TotalRecords) * 100
}

// RowsPerSecond returns the processing rate.
func (s *Stats) RowsPerSecond() float64 {
	d := s.Duration().Seconds()
	if d == 0 {
		return 0
	}
	return float64(s.Processed) / d
}

// Summary is the status document served by the admin API.
type Summary struct {
	Status          string    `json:"status"`
	Progress        float64   `json:"progress"`
	Source          string    `json:"source,omitempty"`
	TenantID        string    `json:"tenant_id,omitempty"`
	TotalRecords    int64     `json:"total_records"`
	Processed       int64     `json:"processed"`
	Imported        int64     `json:"imported"`
	Duplicates      int64     `json:"duplicates"`
	Skipped         int64     `json:"skipped"`
	Errors          int64     `json:"errors"`
	RowsPerSec      float64   `json:"rows_per_second"`
	ElapsedSeconds  float64   `json:"elapsed_seconds"`
	EstimatedRemain float64   `json:"estimated_remaining_seconds"`
	StartTime       time.Time `json:"start_time,omitempty"`
	LastRowID       int64     `json:"last_row_id"`
	DryRun          bool      `json:"dry_run"`
	Error           string    `json:"error,omitempty"`
}

// ToSummary converts Stats to a Summary with calculated fields.
func (s *Stats) ToSummary(running bool) *Summary {
	sum := &Summary{
		Progress:     s.Progress(),
		Source:       s.Source,
		TenantID:     s.TenantID,
		TotalRecords: s.TotalRecords,
		Processed:    s.Processed,
		Imported:     s.Imported,
		Duplicates:   s.Duplicates,
		Skipped:      s.Skipped,
		Errors:       s.Errors,
		StartTime:    s.StartTime,
		LastRowID:    s.LastRowID,
		DryRun:       s.DryRun,
		Error:        s.Error,
	}
	if !s.StartTime.IsZero() {
		sum.RowsPerSec = s.RowsPerSecond()
		sum.ElapsedSeconds = s.Duration().Seconds()
	}

	switch {
	case running:
		sum.Status = "running"
	case s.StartTime.IsZero():
		sum.Status = "idle"
	case s.Error != "":
		sum.Status = "failed"
	default:
		sum.Status = "completed"
	}

	if running && sum.RowsPerSec > 0 {
		sum.EstimatedRemain = float64(s.TotalRecords-s.Processed) / sum.RowsPerSec
	}
	return sum
}
