// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tomtom215/launchpad/internal/config"
)

// Backend names.
const (
	BackendLocal = "local"
	BackendHTTP  = "http"
)

// Sentinel errors.
var (
	ErrTooLarge        = errors.New("upload exceeds the size limit")
	ErrUnsupportedType = errors.New("content type not allowed for this kind")
	ErrObjectNotFound  = errors.New("stored object not found")
	ErrInvalidKey      = errors.New("invalid storage key")
	ErrUpstream        = errors.New("upload upstream unavailable")
)

// Backend stores opaque objects by key.
type Backend interface {
	Name() string
	// Put writes r under key. size is -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Open returns ErrObjectNotFound for unknown keys.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
}

// NewBackend builds the configured backend.
func NewBackend(cfg config.UploadsConfig) (Backend, error) {
	switch cfg.Backend {
	case "", BackendLocal:
		return NewLocalBackend(cfg.Dir)
	case BackendHTTP:
		return NewHTTPBackend(cfg)
	default:
		return nil, fmt.Errorf("unknown upload backend %q", cfg.Backend)
	}
}

// validKey accepts the ids the service generates: letters, digits and dashes.
func validKey(key string) bool {
	if key == "" || len(key) > 128 {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
		default:
			return false
		}
	}
	return true
}
