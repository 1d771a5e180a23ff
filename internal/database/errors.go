// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package database

import (
	"database/sql"
	"errors"
	"io"

	"github.com/tomtom215/launchpad/internal/logging"
)

var (
	// ErrNotFound is returned when a row does not exist or is not visible
	// to the caller's tenant.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned for uniqueness violations, invalid state
	// transitions and exhausted transaction retries.
	ErrConflict = errors.New("conflict")

	// ErrForbidden is returned when a write targets another tenant's data.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState is returned when an operation is not allowed in the
	// entity's current state (e.g. applying to a closed job).
	ErrInvalidState = errors.New("invalid state")

	// ErrNoLessons is returned when a course without lessons would be
	// published, left published or completed.
	ErrNoLessons = errors.New("course has no lessons")
)

// isExpected reports whether err is a domain outcome rather than a failure.
func isExpected(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrNoLessons) ||
		errors.Is(err, sql.ErrNoRows)
}

// notFoundIfNoRows maps sql.ErrNoRows to ErrNotFound.
func notFoundIfNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// closeWithLog closes a resource and logs any error
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
