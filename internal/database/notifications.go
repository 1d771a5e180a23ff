// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/models"
)

// CreateNotification stores an in-app notification.
func (db *DB) CreateNotification(ctx context.Context, n *models.Notification) (err error) {
	start := time.Now()
	defer func() { observe("insert", "notifications", start, err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if n.ID == "" {
		n.ID = newID()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = db.now()
	}
	data := "{}"
	if len(n.Data) > 0 {
		b, err := json.Marshal(n.Data)
		if err != nil {
			return fmt.Errorf("marshal notification data: %w", err)
		}
		data = string(b)
	}
	_, err = db.conn.ExecContext(ctx, `INSERT INTO notifications (id, user_id, type, title, body, link, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, n.ID, n.UserID, string(n.Type), n.Title, n.Body, n.Link, data, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns a page of userID's notifications, newest first.
func (db *DB) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit, offset int) (*models.Page[models.Notification], error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var w whereBuilder
	w.add("user_id = ?", userID)
	if unreadOnly {
		w.add("read_at IS NULL")
	}
	limit, offset = clampPage(limit, offset, 20, 100)

	page := &models.Page[models.Notification]{Items: []models.Notification{}}
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications`+w.sql(), w.args...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("count notifications: %w", err)
	}
	args := append(append([]interface{}{}, w.args...), limit, offset)
	rows, err := db.conn.QueryContext(ctx, `SELECT id, user_id, type, title, body, link, data, read_at, created_at
		FROM notifications`+w.sql()+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var n models.Notification
		var typ, data string
		var readAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &typ, &n.Title, &n.Body, &n.Link, &data, &readAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = models.NotificationType(typ)
		n.ReadAt = timePtr(readAt)
		if data != "" && data != "{}" {
			_ = json.Unmarshal([]byte(data), &n.Data)
		}
		page.Items = append(page.Items, n)
	}
	return page, rows.Err()
}

// UnreadNotificationCount returns the number of unread notifications.
func (db *DB) UnreadNotificationCount(ctx context.Context, userID string) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND read_at IS NULL`, userID).Scan(&n)
	return n, err
}

// MarkNotificationRead marks one of userID's notifications read. Marking an
// already-read notification is a no-op; other users' ids are ErrNotFound.
func (db *DB) MarkNotificationRead(ctx context.Context, userID, id string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `UPDATE notifications SET read_at = COALESCE(read_at, ?) WHERE id = ? AND user_id = ?`,
		db.now(), id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return requireAffected(res)
}

// MarkAllNotificationsRead returns how many notifications changed.
func (db *DB) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `UPDATE notifications SET read_at = ? WHERE user_id = ? AND read_at IS NULL`, db.now(), userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return res.RowsAffected()
}

// DeleteNotification deletes one of userID's notifications.
func (db *DB) DeleteNotification(ctx context.Context, userID, id string) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `DELETE FROM notifications WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return requireAffected(res)
}

// GetPreferences returns only the stored preference rows for userID.
// Use models.PreferenceMatrix to apply defaults.
func (db *DB) GetPreferences(ctx context.Context, userID string) ([]models.NotificationPreference, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT type, channel, enabled FROM notification_preferences WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	defer rows.Close()
	var out []models.NotificationPreference
	for rows.Next() {
		p := models.NotificationPreference{UserID: userID}
		var typ, ch string
		if err := rows.Scan(&typ, &ch, &p.Enabled); err != nil {
			return nil, err
		}
		p.Type, p.Channel = models.NotificationType(typ), models.NotificationChannel(ch)
		out = append(out, p)
	}
	return out, rows.Err()
}

// SetPreferences upserts the given toggles for userID.
func (db *DB) SetPreferences(ctx context.Context, userID string, prefs []models.NotificationPreference) error {
	if len(prefs) == 0 {
		return nil
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	now := db.now()
	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, p := range prefs {
			if _, err := tx.ExecContext(ctx, `INSERT INTO notification_preferences (user_id, type, channel, enabled, updated_at)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT (user_id, type, channel) DO UPDATE SET enabled = excluded.enabled, updated_at = excluded.updated_at`,
				userID, string(p.Type), string(p.Channel), p.Enabled, now); err != nil {
				return fmt.Errorf("set preference: %w", err)
			}
		}
		return nil
	})
}

// IsChannelEnabled resolves one preference, falling back to the default.
func (db *DB) IsChannelEnabled(ctx context.Context, userID string, t models.NotificationType, c models.NotificationChannel) (bool, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var enabled bool
	err := db.conn.QueryRowContext(ctx, `SELECT enabled FROM notification_preferences WHERE user_id = ? AND type = ? AND channel = ?`,
		userID, string(t), string(c)).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultPreference(t, c), nil
	}
	if err != nil {
		return false, fmt.Errorf("get preference: %w", err)
	}
	return enabled, nil
}

// LastDigestAt returns when userID last received a digest, or nil.
func (db *DB) LastDigestAt(ctx context.Context, userID string) (*time.Time, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var t time.Time
	err := db.conn.QueryRowContext(ctx, `SELECT last_sent_at FROM digest_runs WHERE user_id = ?`, userID).Scan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

// RecordDigest stores the time of userID's latest digest.
func (db *DB) RecordDigest(ctx context.Context, userID string, at time.Time) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx, `INSERT INTO digest_runs (user_id, last_sent_at) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET last_sent_at = excluded.last_sent_at`, userID, at.UTC())
	return err
}
