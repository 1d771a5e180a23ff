// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/launchpad/internal/logging"
)

// Key layout:
//
//	session:<id>                  -> JSON Session
//	session_user:<userID>:<id>    -> <id>
//
// Both keys carry the session's remaining lifetime as a Badger TTL, so
// expired sessions disappear even if CleanupExpired never runs.
const (
	sessionKeyPrefix     = "session:"
	sessionUserKeyPrefix = "session_user:"
)

// BadgerSessionStore persists sessions in BadgerDB so they survive restarts.
type BadgerSessionStore struct {
	db *badger.DB
}

// NewBadgerSessionStore wraps an open Badger database. The caller owns db.
func NewBadgerSessionStore(db *badger.DB) *BadgerSessionStore {
	return &BadgerSessionStore{db: db}
}

func sessionKey(id string) []byte {
	return []byte(sessionKeyPrefix + id)
}

func sessionUserKey(userID, id string) []byte {
	return []byte(sessionUserKeyPrefix + userID + ":" + id)
}

func (s *BadgerSessionStore) Create(ctx context.Context, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionExpired
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.SetEntry(badger.NewEntry(sessionKey(session.ID), data).WithTTL(ttl)); err != nil {
			return fmt.Errorf("set session: %w", err)
		}
		idx := badger.NewEntry(sessionUserKey(session.UserID, session.ID), []byte(session.ID)).WithTTL(ttl)
		if err := txn.SetEntry(idx); err != nil {
			return fmt.Errorf("set user mapping: %w", err)
		}
		return nil
	})
}

func (s *BadgerSessionStore) get(txn *badger.Txn, id string) (*Session, error) {
	item, err := txn.Get(sessionKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var session Session
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &session)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

func (s *BadgerSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	var session *Session
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		session, err = s.get(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}
	return session, nil
}

func (s *BadgerSessionStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		session, err := s.get(txn, id)
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := txn.Delete(sessionKey(id)); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		if err := txn.Delete(sessionUserKey(session.UserID, id)); err != nil {
			return fmt.Errorf("delete user mapping: %w", err)
		}
		return nil
	})
}

// userSessionIDs lists the session ids indexed under userID.
func (s *BadgerSessionStore) userSessionIDs(userID string) ([]string, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(sessionUserKeyPrefix + userID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			ids = append(ids, string(key[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}
	return ids, nil
}

func (s *BadgerSessionStore) DeleteByUserID(ctx context.Context, userID string) (int, error) {
	ids, err := s.userSessionIDs(userID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			logging.Warn().Err(err).Str("session_id", id).Msg("Failed to revoke session")
			continue
		}
		count++
	}
	return count, nil
}

func (s *BadgerSessionStore) GetByUserID(ctx context.Context, userID string) ([]*Session, error) {
	ids, err := s.userSessionIDs(userID)
	if err != nil {
		return nil, err
	}
	var sessions []*Session
	for _, id := range ids {
		session, err := s.Get(ctx, id)
		if err != nil {
			continue // expired or deleted concurrently
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (s *BadgerSessionStore) Touch(ctx context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		session, err := s.get(txn, id)
		if err != nil {
			return err
		}
		ttl := time.Until(session.ExpiresAt)
		if ttl <= 0 {
			return ErrSessionExpired
		}
		session.LastAccessedAt = time.Now()
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		return txn.SetEntry(badger.NewEntry(sessionKey(id), data).WithTTL(ttl))
	})
}

// CleanupExpired removes sessions whose ExpiresAt passed but whose Badger
// TTL has not fired yet (clock skew, Touch races). Returns how many.
func (s *BadgerSessionStore) CleanupExpired(ctx context.Context) (int, error) {
	var expired []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(sessionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var session Session
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			}); err != nil {
				continue
			}
			if session.IsExpired() {
				expired = append(expired, session.ID)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan sessions: %w", err)
	}

	count := 0
	for _, id := range expired {
		if err := s.Delete(ctx, id); err == nil {
			count++
		}
	}
	return count, nil
}
