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

	"github.com/tomtom215/launchpad/internal/models"
)

func scanConversation(row rowScanner) (*models.Conversation, error) {
	var c models.Conversation
	if err := row.Scan(&c.ID, &c.ParticipantA, &c.ParticipantB, &c.LastMessageAt, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetConversation returns ErrNotFound for unknown ids.
func (db *DB) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	c, err := scanConversation(db.conn.QueryRowContext(ctx,
		`SELECT id, participant_a, participant_b, last_message_at, created_at FROM conversations WHERE id = ?`, id))
	return c, notFoundIfNoRows(err)
}

// GetOrCreateConversation returns the single conversation between two users,
// creating it on first contact.
func (db *DB) GetOrCreateConversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	a, b := models.OrderedPair(userA, userB)
	lookup := func() (*models.Conversation, error) {
		c, err := scanConversation(db.conn.QueryRowContext(ctx, `SELECT id, participant_a, participant_b, last_message_at, created_at
			FROM conversations WHERE participant_a = ? AND participant_b = ?`, a, b))
		return c, notFoundIfNoRows(err)
	}

	c, err := lookup()
	if err == nil || !errors.Is(err, ErrNotFound) {
		return c, err
	}

	now := db.now()
	c = &models.Conversation{ID: newID(), ParticipantA: a, ParticipantB: b, LastMessageAt: now, CreatedAt: now}
	_, err = db.conn.ExecContext(ctx, `INSERT INTO conversations (id, participant_a, participant_b, last_message_at, created_at)
		VALUES (?, ?, ?, ?, ?)`, c.ID, c.ParticipantA, c.ParticipantB, c.LastMessageAt, c.CreatedAt)
	if err != nil {
		// Lost a race with the other participant.
		if isConstraintViolation(err) {
			return lookup()
		}
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	return c, nil
}

// PostMessage appends a message and bumps the conversation's last_message_at.
func (db *DB) PostMessage(ctx context.Context, conversationID, senderID, body string) (msg *models.Message, err error) {
	start := time.Now()
	defer func() { observe("insert", "messages", start, err) }()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	msg = &models.Message{ID: newID(), ConversationID: conversationID, SenderID: senderID, Body: body, CreatedAt: db.now()}
	err = db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO messages (id, conversation_id, sender_id, body, created_at) VALUES (?, ?, ?, ?, ?)`,
			msg.ID, msg.ConversationID, msg.SenderID, msg.Body, msg.CreatedAt); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		res, err := tx.ExecContext(ctx, `UPDATE conversations SET last_message_at = ? WHERE id = ?`, msg.CreatedAt, conversationID)
		if err != nil {
			return fmt.Errorf("touch conversation: %w", err)
		}
		return requireAffected(res)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// ListConversations returns userID's conversations, most recent first, with
// the other participant, a preview of the last message and the unread count.
func (db *DB) ListConversations(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `SELECT c.id, c.participant_a, c.participant_b, c.last_message_at, c.created_at,
			o.id, COALESCE(o.name, ''), COALESCE(o.role, ''),
			COALESCE((SELECT m.body FROM messages m WHERE m.conversation_id = c.id ORDER BY m.created_at DESC, m.id DESC LIMIT 1), ''),
			(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id AND m.sender_id <> ? AND m.read_at IS NULL)
		FROM conversations c
		LEFT JOIN users o ON o.id = CASE WHEN c.participant_a = ? THEN c.participant_b ELSE c.participant_a END
		WHERE c.participant_a = ? OR c.participant_b = ?
		ORDER BY c.last_message_at DESC, c.id`, userID, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	out := []models.ConversationSummary{}
	for rows.Next() {
		var s models.ConversationSummary
		var otherID sql.NullString
		var role string
		if err := rows.Scan(&s.ID, &s.ParticipantA, &s.ParticipantB, &s.LastMessageAt, &s.CreatedAt,
			&otherID, &s.OtherUserName, &role, &s.LastMessage, &s.UnreadCount); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		s.OtherUserID = s.Other(userID)
		s.OtherUserRole = models.Role(role)
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListMessages returns up to limit messages older than before (all when
// before is nil), in chronological order.
func (db *DB) ListMessages(ctx context.Context, conversationID string, before *time.Time, limit int) ([]models.Message, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	limit, _ = clampPage(limit, 0, 50, 200)
	var w whereBuilder
	w.add("conversation_id = ?", conversationID)
	if before != nil {
		w.add("created_at < ?", before.UTC())
	}
	rows, err := db.conn.QueryContext(ctx, `SELECT id, conversation_id, sender_id, body, read_at, created_at FROM messages`+
		w.sql()+` ORDER BY created_at DESC, id DESC LIMIT ?`, append(w.args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		var m models.Message
		var readAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Body, &readAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.ReadAt = timePtr(readAt)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// MarkConversationRead marks every message not sent by readerID as read and
// returns how many changed.
func (db *DB) MarkConversationRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, `UPDATE messages SET read_at = ?
		WHERE conversation_id = ? AND sender_id <> ? AND read_at IS NULL`, db.now(), conversationID, readerID)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	return res.RowsAffected()
}
