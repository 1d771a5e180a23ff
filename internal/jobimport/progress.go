// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package jobimport

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// progressPrefix namespaces import progress keys in Badger.
const progressPrefix = "import:jobs:"

// ProgressTracker persists Stats per (source, tenant) pair.
type ProgressTracker interface {
	Save(ctx context.Context, key string, stats *Stats) error
	// Load returns nil, nil when nothing was saved.
	Load(ctx context.Context, key string) (*Stats, error)
	Clear(ctx context.Context, key string) error
}

// ProgressKey derives the tracker key for a source path and tenant.
func ProgressKey(dbPath, tenantID string) string {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		abs = dbPath
	}
	sum := sha256.Sum256([]byte(abs))
	return progressPrefix + tenantID + ":" + hex.EncodeToString(sum[:8])
}

// BadgerProgress implements ProgressTracker on BadgerDB so imports resume
// across restarts.
type BadgerProgress struct {
	db *badger.DB
}

// NewBadgerProgress uses an open Badger database.
func NewBadgerProgress(db *badger.DB) *BadgerProgress {
	return &BadgerProgress{db: db}
}

// OpenBadgerProgress opens (or creates) a Badger database at dir.
// The caller closes it with Close.
func OpenBadgerProgress(dir string) (*BadgerProgress, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open import progress store: %w", err)
	}
	return &BadgerProgress{db: db}, nil
}

// Close closes the underlying database.
func (p *BadgerProgress) Close() error {
	return p.db.Close()
}

// Save persists stats under key.
func (p *BadgerProgress) Save(_ context.Context, key string, stats *Stats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Load retrieves the stats saved under key.
func (p *BadgerProgress) Load(_ context.Context, key string) (*Stats, error) {
	var stats *Stats
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			stats = &Stats{}
			return json.Unmarshal(val, stats)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return stats, nil
}

// Clear removes the stats saved under key.
func (p *BadgerProgress) Clear(_ context.Context, key string) error {
	return p.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// InMemoryProgress implements ProgressTracker without persistence.
type InMemoryProgress struct {
	mu    sync.Mutex
	stats map[string]Stats
}

// NewInMemoryProgress creates an empty tracker.
func NewInMemoryProgress() *InMemoryProgress {
	return &InMemoryProgress{stats: make(map[string]Stats)}
}

// Save stores a copy of stats.
func (p *InMemoryProgress) Save(_ context.Context, key string, stats *Stats) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats[key] = *stats
	return nil
}

// Load returns a copy of the stored stats.
func (p *InMemoryProgress) Load(_ context.Context, key string) (*Stats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.stats[key]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Clear removes the stored stats.
func (p *InMemoryProgress) Clear(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.stats, key)
	return nil
}
