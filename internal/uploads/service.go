// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package uploads

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
	"github.com/tomtom215/launchpad/internal/models"
)

// DefaultMaxSize applies when the configured limit is zero.
const DefaultMaxSize int64 = 10 << 20

// sniffLen matches mimetype's default read limit; OOXML detection needs
// more than the first 512 bytes.
const sniffLen = 3072

var allowedTypes = map[models.UploadKind][]string{
	models.UploadResume: {
		"application/pdf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/msword",
		"text/plain",
	},
	models.UploadAvatar: {"image/png", "image/jpeg", "image/gif", "image/webp"},
	models.UploadLogo:   {"image/png", "image/jpeg", "image/gif", "image/webp"},
	models.UploadCourseMaterial: {
		"application/pdf",
		"application/zip",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"text/plain",
		"image/png",
		"image/jpeg",
		"video/mp4",
		"audio/mpeg",
	},
}

// AllowedTypes returns the media types accepted for kind.
func AllowedTypes(kind models.UploadKind) []string {
	return append([]string(nil), allowedTypes[kind]...)
}

// Store persists upload metadata.
type Store interface {
	CreateUpload(ctx context.Context, u *models.Upload) error
	GetUpload(ctx context.Context, id string) (*models.Upload, error)
	DeleteUpload(ctx context.Context, id string) error
}

// Service validates, stores and streams uploads.
type Service struct {
	store   Store
	backend Backend
	maxSize int64
	logger  zerolog.Logger
}

// NewService wires a metadata store to a backend.
func NewService(store Store, backend Backend, maxSize int64) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Service{
		store:   store,
		backend: backend,
		maxSize: maxSize,
		logger:  logging.WithComponent("uploads"),
	}
}

// NewServiceFromConfig builds the backend from cfg.
func NewServiceFromConfig(store Store, cfg config.UploadsConfig) (*Service, error) {
	backend, err := NewBackend(cfg)
	if err != nil {
		return nil, err
	}
	return NewService(store, backend, cfg.MaxSizeBytes), nil
}

// MaxSize is the per-file byte limit.
func (s *Service) MaxSize() int64 { return s.maxSize }

// Backend returns the storage backend name.
func (s *Service) Backend() string { return s.backend.Name() }

// Save sniffs, stores and records one file.
func (s *Service) Save(ctx context.Context, ownerID string, kind models.UploadKind, filename string, r io.Reader) (*models.Upload, error) {
	start := time.Now()
	u, err := s.save(ctx, ownerID, kind, filename, r)
	outcome := "ok"
	switch {
	case errors.Is(err, ErrTooLarge):
		outcome = "too_large"
	case errors.Is(err, ErrUnsupportedType):
		outcome = "rejected"
	case err != nil:
		outcome = "error"
	}
	metrics.UploadsTotal.WithLabelValues(string(kind), outcome).Inc()
	if err == nil {
		metrics.UploadBytes.WithLabelValues(s.backend.Name()).Add(float64(u.Size))
		s.logger.Info().Str("upload_id", u.ID).Str("kind", string(kind)).Int64("size", u.Size).
			Dur("duration", time.Since(start)).Msg("upload stored")
	}
	return u, err
}

func (s *Service) save(ctx context.Context, ownerID string, kind models.UploadKind, filename string, r io.Reader) (*models.Upload, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrUnsupportedType, kind)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrUnsupportedType)
	}
	if int64(n) > s.maxSize {
		return nil, ErrTooLarge
	}

	contentType := mimetype.Detect(head).String()
	if !typeAllowed(kind, contentType) {
		return nil, fmt.Errorf("%w: %s for %s", ErrUnsupportedType, contentType, kind)
	}

	id := uuid.New().String()
	counter := &limitedHashReader{r: io.MultiReader(bytes.NewReader(head), r), max: s.maxSize, h: sha256.New()}
	if err := s.backend.Put(ctx, id, counter, -1, contentType); err != nil {
		_ = s.backend.Delete(context.WithoutCancel(ctx), id)
		if counter.exceeded {
			return nil, ErrTooLarge
		}
		return nil, fmt.Errorf("store upload: %w", err)
	}
	if counter.exceeded {
		_ = s.backend.Delete(context.WithoutCancel(ctx), id)
		return nil, ErrTooLarge
	}

	u := &models.Upload{
		ID:          id,
		OwnerID:     ownerID,
		Kind:        kind,
		Filename:    cleanFilename(filename),
		ContentType: contentType,
		Size:        counter.n,
		SHA256:      hex.EncodeToString(counter.h.Sum(nil)),
		StorageKey:  id,
	}
	if err := s.store.CreateUpload(ctx, u); err != nil {
		_ = s.backend.Delete(context.WithoutCancel(ctx), id)
		return nil, fmt.Errorf("record upload: %w", err)
	}
	return u, nil
}

// Get returns the metadata for id.
func (s *Service) Get(ctx context.Context, id string) (*models.Upload, error) {
	return s.store.GetUpload(ctx, id)
}

// Open returns the metadata and a reader for the stored bytes.
func (s *Service) Open(ctx context.Context, u *models.Upload) (io.ReadCloser, error) {
	return s.backend.Open(ctx, u.StorageKey)
}

// Delete removes the stored bytes and the metadata row.
func (s *Service) Delete(ctx context.Context, u *models.Upload) error {
	if err := s.backend.Delete(ctx, u.StorageKey); err != nil {
		return fmt.Errorf("delete stored object: %w", err)
	}
	return s.store.DeleteUpload(ctx, u.ID)
}

func typeAllowed(kind models.UploadKind, contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, t := range allowedTypes[kind] {
		if t == mediaType {
			return true
		}
	}
	return false
}

// cleanFilename keeps the base name and drops control characters.
const maxFilenameBytes = 255

func cleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return "upload"
	}
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' {
			return -1
		}
		return r
	}, name)
	if len(name) > maxFilenameBytes {
		cut := maxFilenameBytes
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = name[:cut]
	}
	if name == "" {
		return "upload"
	}
	return name
}

// limitedHashReader hashes and counts what passes through and fails with
// ErrTooLarge once more than max bytes were read.
type limitedHashReader struct {
	r        io.Reader
	max      int64
	n        int64
	h        hash.Hash
	exceeded bool
}

func (l *limitedHashReader) Read(p []byte) (int, error) {
	if l.exceeded {
		return 0, ErrTooLarge
	}
	n, err := l.r.Read(p)
	if n > 0 {
		if l.n+int64(n) > l.max {
			l.exceeded = true
			return 0, ErrTooLarge
		}
		l.n += int64(n)
		_, _ = l.h.Write(p[:n])
	}
	return n, err
}
