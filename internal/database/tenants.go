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

const tenantColumns = `id, name, kind, website, description, location, verified, created_at, updated_at`

func scanTenant(row rowScanner) (*models.Tenant, error) {
	var t models.Tenant
	var kind string
	if err := row.Scan(&t.ID, &t.Name, &kind, &t.Website, &t.Description, &t.Location,
		&t.Verified, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Kind = models.TenantKind(kind)
	return &t, nil
}

// GetTenant returns ErrNotFound for unknown ids.
func (db *DB) GetTenant(ctx context.Context, id string) (*models.Tenant, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	t, err := scanTenant(db.conn.QueryRowContext(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = ?`, id))
	return t, notFoundIfNoRows(err)
}

// UpdateTenant updates the editable tenant fields. Kind and Verified are
// not touched.
func (db *DB) UpdateTenant(ctx context.Context, t *models.Tenant) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	t.UpdatedAt = db.now()
	res, err := db.conn.ExecContext(ctx, `UPDATE tenants SET name = ?, website = ?, description = ?, location = ?, updated_at = ? WHERE id = ?`,
		t.Name, t.Website, t.Description, t.Location, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}
	return requireAffected(res)
}

// SetTenantVerified marks a tenant verified or unverified.
func (db *DB) SetTenantVerified(ctx context.Context, id string, verified bool) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `UPDATE tenants SET verified = ?, updated_at = ? WHERE id = ?`, verified, db.now(), id)
	if err != nil {
		return fmt.Errorf("verify tenant: %w", err)
	}
	return requireAffected(res)
}

// ListTenants returns tenants of kind (all when empty), ordered by name.
func (db *DB) ListTenants(ctx context.Context, kind models.TenantKind, limit, offset int) (*models.Page[models.Tenant], error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var w whereBuilder
	if kind != "" {
		w.add("kind = ?", string(kind))
	}
	limit, offset = clampPage(limit, offset, 20, 100)

	page := &models.Page[models.Tenant]{Items: []models.Tenant{}}
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM tenants`+w.sql(), w.args...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("count tenants: %w", err)
	}
	args := append(append([]interface{}{}, w.args...), limit, offset)
	rows, err := db.conn.QueryContext(ctx, `SELECT `+tenantColumns+` FROM tenants`+w.sql()+` ORDER BY name, id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		page.Items = append(page.Items, *t)
	}
	return page, rows.Err()
}
