// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/launchpad/internal/models"
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const userColumns = `id, tenant_id, email, password_hash, name, role, status, last_login_at, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var tenantID sql.NullString
	var lastLogin sql.NullTime
	var role, status string
	if err := row.Scan(&u.ID, &tenantID, &u.Email, &u.PasswordHash, &u.Name, &role, &status,
		&lastLogin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.TenantID = tenantID.String
	u.Role = models.Role(role)
	u.Status = models.UserStatus(status)
	u.LastLoginAt = timePtr(lastLogin)
	return &u, nil
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateAccount inserts a user and, when tenant is non-nil, its tenant in one
// transaction. IDs and timestamps are assigned here. A duplicate email returns
// ErrConflict.
func (db *DB) CreateAccount(ctx context.Context, user *models.User, tenant *models.Tenant) (err error) {
	start := time.Now()
	defer func() { observe("insert", "users", start, err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := db.now()
	user.Email = NormalizeEmail(user.Email)
	if user.ID == "" {
		user.ID = newID()
	}
	if user.Status == "" {
		user.Status = models.UserActive
	}
	user.CreatedAt, user.UpdatedAt = now, now

	if tenant != nil {
		if tenant.ID == "" {
			tenant.ID = newID()
		}
		tenant.CreatedAt, tenant.UpdatedAt = now, now
		user.TenantID = tenant.ID
	}

	var exists bool
	if err := db.conn.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, user.Email).Scan(&exists); err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return ErrConflict
	}

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		if tenant != nil {
			if _, err := tx.ExecContext(ctx, `INSERT INTO tenants (id, name, kind, website, description, location, verified, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				tenant.ID, tenant.Name, string(tenant.Kind), tenant.Website, tenant.Description, tenant.Location,
				tenant.Verified, tenant.CreatedAt, tenant.UpdatedAt); err != nil {
				return fmt.Errorf("insert tenant: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			user.ID, nullString(user.TenantID), user.Email, user.PasswordHash, user.Name, string(user.Role),
			string(user.Status), nullTime(user.LastLoginAt), user.CreatedAt, user.UpdatedAt); err != nil {
			if isConstraintViolation(err) {
				return ErrConflict
			}
			return fmt.Errorf("insert user: %w", err)
		}
		if user.Role == models.RoleYouth {
			if _, err := tx.ExecContext(ctx, `INSERT INTO youth_profiles (user_id, updated_at) VALUES (?, ?)`, user.ID, now); err != nil {
				return fmt.Errorf("insert profile: %w", err)
			}
		}
		return nil
	})
	return err
}

// GetUserByID returns ErrNotFound when no user has id.
func (db *DB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	u, err := scanUser(db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	err = notFoundIfNoRows(err)
	observe("select", "users", start, err)
	return u, err
}

// GetUserByEmail looks up a user by normalized email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	u, err := scanUser(db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, NormalizeEmail(email)))
	err = notFoundIfNoRows(err)
	observe("select", "users", start, err)
	return u, err
}

// ListUsers returns users matching f, newest first.
func (db *DB) ListUsers(ctx context.Context, f models.UserFilter) (*models.Page[models.User], error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var w whereBuilder
	if f.Role != "" {
		w.add("role = ?", string(f.Role))
	}
	if f.Status != "" {
		w.add("status = ?", string(f.Status))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		w.add(`(name ILIKE ? ESCAPE '\' OR email ILIKE ? ESCAPE '\')`, likePattern(q), likePattern(q))
	}
	limit, offset := clampPage(f.Limit, f.Offset, 20, 100)

	page := &models.Page[models.User]{Items: []models.User{}}
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+w.sql(), w.args...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	args := append(append([]interface{}{}, w.args...), limit, offset)
	rows, err := db.conn.QueryContext(ctx, `SELECT `+userColumns+` FROM users`+w.sql()+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		page.Items = append(page.Items, *u)
	}
	return page, rows.Err()
}

// ListUserIDsByRole returns active user ids, optionally restricted to role.
func (db *DB) ListUserIDsByRole(ctx context.Context, role models.Role) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	q := `SELECT id FROM users WHERE status = 'active'`
	args := []interface{}{}
	if role != "" {
		q += ` AND role = ?`
		args = append(args, string(role))
	}
	rows, err := db.conn.QueryContext(ctx, q+` ORDER BY id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListTenantMemberIDs returns active users of a tenant.
func (db *DB) ListTenantMemberIDs(ctx context.Context, tenantID string) ([]string, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT id FROM users WHERE tenant_id = ? AND status = 'active' ORDER BY id`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list tenant members: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateUserStatus sets a user's status.
func (db *DB) UpdateUserStatus(ctx context.Context, id string, status models.UserStatus) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `UPDATE users SET status = ?, updated_at = ? WHERE id = ?`, string(status), db.now(), id)
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	return requireAffected(res)
}

// UpdatePasswordHash replaces a user's password hash.
func (db *DB) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`, hash, db.now(), id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireAffected(res)
}

// TouchLastLogin records a successful login.
func (db *DB) TouchLastLogin(ctx context.Context, id string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, db.now(), id)
	return err
}

// UserNames maps ids to display names. Unknown ids are omitted.
func (db *DB) UserNames(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	in, args := buildInClause(ids)
	rows, err := db.conn.QueryContext(ctx, `SELECT id, name FROM users WHERE id IN (`+in+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("user names: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = name
	}
	return out, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
