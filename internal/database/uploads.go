// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/launchpad/internal/models"
)

// CreateUpload stores upload metadata. The bytes live in the storage backend.
func (db *DB) CreateUpload(ctx context.Context, u *models.Upload) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if u.ID == "" {
		u.ID = newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = db.now()
	}
	_, err := db.conn.ExecContext(ctx, `INSERT INTO uploads (id, owner_id, kind, filename, content_type, size, sha256, storage_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.OwnerID, string(u.Kind), u.Filename, u.ContentType, u.Size, u.SHA256, u.StorageKey, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	return nil
}

// GetUpload returns ErrNotFound for unknown ids.
func (db *DB) GetUpload(ctx context.Context, id string) (*models.Upload, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var u models.Upload
	var kind string
	err := db.conn.QueryRowContext(ctx, `SELECT id, owner_id, kind, filename, content_type, size, sha256, storage_key, created_at
		FROM uploads WHERE id = ?`, id).
		Scan(&u.ID, &u.OwnerID, &kind, &u.Filename, &u.ContentType, &u.Size, &u.SHA256, &u.StorageKey, &u.CreatedAt)
	if err != nil {
		return nil, notFoundIfNoRows(err)
	}
	u.Kind = models.UploadKind(kind)
	return &u, nil
}

// DeleteUpload removes the metadata row.
func (db *DB) DeleteUpload(ctx context.Context, id string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `DELETE FROM uploads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	return requireAffected(res)
}
