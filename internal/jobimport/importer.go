// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package jobimport

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/logging"
	"github.com/tomtom215/launchpad/internal/metrics"
	"github.com/tomtom215/launchpad/internal/models"
)

// DefaultBatchSize applies when neither the options nor the config set one.
const DefaultBatchSize = 500

// Sentinel errors.
var (
	ErrImportRunning  = errors.New("import already in progress")
	ErrNotRunning     = errors.New("no import in progress")
	ErrPathNotAllowed = errors.New("db_path is outside the allowed import directory")
	ErrInvalidTenant  = errors.New("imports target a company tenant")
	ErrCanceled       = errors.New("import canceled")
)

// Store is where imported jobs go.
type Store interface {
	GetTenant(ctx context.Context, id string) (*models.Tenant, error)
	ExistingSourceURLs(ctx context.Context, tenantID string, urls []string) (map[string]bool, error)
	InsertJobs(ctx context.Context, jobs []*models.Job) error
}

// Importer runs one import at a time.
type Importer struct {
	store    Store
	progress ProgressTracker
	cfg      config.ImporterConfig
	mapper   *Mapper
	logger   zerolog.Logger

	mu      sync.RWMutex
	running bool
	stats   *Stats
	cancel  context.CancelFunc
	done    chan struct{}

	onFinish func(*Stats)
}

// NewImporter creates an importer. progress may be nil.
func NewImporter(store Store, progress ProgressTracker, cfg config.ImporterConfig) *Importer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Importer{
		store:    store,
		progress: progress,
		cfg:      cfg,
		mapper:   NewMapper(nil),
		logger:   logging.WithComponent("jobimport"),
	}
}

// OnFinish registers fn to receive the final stats of every background run
// started with Start, successful or not.
func (i *Importer) OnFinish(fn func(*Stats)) {
	i.mu.Lock()
	i.onFinish = fn
	i.mu.Unlock()
}

// ResolvePath cleans p and, when an allowed directory is configured,
// rejects paths outside it.
func (i *Importer) ResolvePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", errors.New("db_path is required")
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve db_path: %w", err)
	}
	if i.cfg.AllowedDir == "" {
		return abs, nil
	}
	root, err := filepath.Abs(i.cfg.AllowedDir)
	if err != nil {
		return "", fmt.Errorf("resolve allowed dir: %w", err)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathNotAllowed
	}
	return abs, nil
}

// Start launches Run in the background. It returns once the run has been
// accepted; errors from the run itself are reported through Stats.
func (i *Importer) Start(ctx context.Context, opts Options) error {
	path, err := i.ResolvePath(opts.DBPath)
	if err != nil {
		return err
	}
	opts.DBPath = path
	if err := i.checkTenant(ctx, opts.TenantID); err != nil {
		return err
	}
	runCtx, err := i.begin(context.WithoutCancel(ctx), opts)
	if err != nil {
		return err
	}
	go func() {
		stats, err := i.run(runCtx, opts)
		if err != nil {
			i.logger.Error().Err(err).Str("source", opts.DBPath).Msg("job import failed")
		}
		i.mu.RLock()
		fn := i.onFinish
		i.mu.RUnlock()
		if fn != nil && stats != nil {
			fn(stats)
		}
	}()
	return nil
}

// Run imports synchronously and returns the final stats. Stats are
// returned on failure too, with the rows committed before the error.
func (i *Importer) Run(ctx context.Context, opts Options) (*Stats, error) {
	path, err := i.ResolvePath(opts.DBPath)
	if err != nil {
		return nil, err
	}
	opts.DBPath = path
	if err := i.checkTenant(ctx, opts.TenantID); err != nil {
		return nil, err
	}
	runCtx, err := i.begin(ctx, opts)
	if err != nil {
		return nil, err
	}
	return i.run(runCtx, opts)
}

func (i *Importer) checkTenant(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenant_id is required", ErrInvalidTenant)
	}
	t, err := i.store.GetTenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("tenant %s: %w", tenantID, err)
	}
	if t.Kind != models.TenantCompany {
		return ErrInvalidTenant
	}
	return nil
}

// begin marks the importer running and returns the run context.
func (i *Importer) begin(ctx context.Context, opts Options) (context.Context, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.running {
		return nil, ErrImportRunning
	}
	runCtx, cancel := context.WithCancel(ctx)
	i.running = true
	i.cancel = cancel
	i.done = make(chan struct{})
	i.stats = &Stats{
		Source:    opts.DBPath,
		TenantID:  opts.TenantID,
		StartedBy: opts.PostedBy,
		StartTime: time.Now(),
		DryRun:    opts.DryRun,
	}
	return runCtx, nil
}

func (i *Importer) run(ctx context.Context, opts Options) (stats *Stats, err error) {
	defer func() {
		i.mu.Lock()
		i.running = false
		i.stats.EndTime = time.Now()
		if err != nil {
			i.stats.Error = err.Error()
		}
		final := *i.stats
		stats = &final
		i.cancel()
		close(i.done)
		i.mu.Unlock()
	}()

	reader, err := NewReader(opts.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			i.logger.Warn().Err(closeErr).Msg("error closing source database")
		}
	}()

	key := ProgressKey(opts.DBPath, opts.TenantID)
	startRow := i.resumePoint(ctx, key, opts)

	total, err := reader.CountRecords(ctx, opts.StatusFilter, startRow)
	if err != nil {
		return nil, err
	}
	i.mu.Lock()
	i.stats.TotalRecords = total
	i.stats.LastRowID = startRow
	i.mu.Unlock()

	i.logger.Info().
		Str("source", opts.DBPath).
		Str("tenant_id", opts.TenantID).
		Int64("records", total).
		Int64("start_row", startRow).
		Bool("dry_run", opts.DryRun).
		Msg("starting job import")

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = i.cfg.BatchSize
	}
	if err := i.processAllBatches(ctx, reader, opts, key, startRow, batchSize); err != nil {
		return nil, err
	}

	done := i.Stats()
	i.logger.Info().
		Int64("imported", done.Imported).
		Int64("duplicates", done.Duplicates).
		Int64("skipped", done.Skipped).
		Dur("duration", done.Duration()).
		Msg("job import completed")
	return done, nil
}

// resumePoint returns the rowid to continue after.
func (i *Importer) resumePoint(ctx context.Context, key string, opts Options) int64 {
	if i.progress == nil {
		return 0
	}
	if opts.Fresh {
		if err := i.progress.Clear(ctx, key); err != nil {
			i.logger.Warn().Err(err).Msg("failed to clear import progress")
		}
		return 0
	}
	prev, err := i.progress.Load(ctx, key)
	if err != nil {
		i.logger.Warn().Err(err).Msg("failed to load import progress")
		return 0
	}
	if prev == nil {
		return 0
	}
	i.logger.Info().Int64("last_row_id", prev.LastRowID).Msg("resuming job import")
	return prev.LastRowID
}

func (i *Importer) processAllBatches(ctx context.Context, reader *Reader, opts Options, key string, afterRow int64, batchSize int) error {
	for {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return ErrCanceled
			}
			return err
		}

		records, err := reader.ReadBatch(ctx, opts.StatusFilter, afterRow, batchSize)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}

		imported, duplicates, skipped, err := i.processBatch(ctx, records, opts)
		if err != nil {
			i.mu.Lock()
			i.stats.Errors += int64(len(records))
			i.mu.Unlock()
			return fmt.Errorf("insert batch after row %d: %w", afterRow, err)
		}
		afterRow = records[len(records)-1].RowID

		i.mu.Lock()
		i.stats.Processed += int64(len(records))
		i.stats.Imported += int64(imported)
		i.stats.Duplicates += int64(duplicates)
		i.stats.Skipped += int64(skipped)
		i.stats.LastRowID = afterRow
		snapshot := *i.stats
		i.mu.Unlock()

		metrics.ImportRows.WithLabelValues("imported").Add(float64(imported))
		metrics.ImportRows.WithLabelValues("duplicate").Add(float64(duplicates))
		metrics.ImportRows.WithLabelValues("skipped").Add(float64(skipped))

		if i.progress != nil && !opts.DryRun {
			if err := i.progress.Save(ctx, key, &snapshot); err != nil {
				i.logger.Warn().Err(err).Msg("failed to save import progress")
			}
		}

		i.logger.Debug().
			Float64("progress_percent", snapshot.Progress()).
			Int64("processed", snapshot.Processed).
			Int64("total_records", snapshot.TotalRecords).
			Msg("job import progress")
	}
}

// processBatch maps, dedupes and inserts one batch.
func (i *Importer) processBatch(ctx context.Context, records []Record, opts Options) (imported, duplicates, skipped int, err error) {
	valid, skipped := i.mapper.FilterValidRecords(records)
	if len(valid) == 0 {
		return 0, 0, skipped, nil
	}

	jobs := make([]*models.Job, 0, len(valid))
	urls := make([]string, 0, len(valid))
	seen := make(map[string]bool, len(valid))
	for idx := range valid {
		job := i.mapper.ToJob(&valid[idx], opts.TenantID, opts.PostedBy)
		if job.SourceURL != "" {
			if seen[job.SourceURL] {
				duplicates++
				continue
			}
			seen[job.SourceURL] = true
			urls = append(urls, job.SourceURL)
		}
		jobs = append(jobs, job)
	}

	existing, err := i.store.ExistingSourceURLs(ctx, opts.TenantID, urls)
	if err != nil {
		return 0, 0, 0, err
	}
	fresh := jobs[:0]
	for _, j := range jobs {
		if j.SourceURL != "" && existing[j.SourceURL] {
			duplicates++
			continue
		}
		fresh = append(fresh, j)
	}

	if opts.DryRun || len(fresh) == 0 {
		return len(fresh), duplicates, skipped, nil
	}
	if err := i.store.InsertJobs(ctx, fresh); err != nil {
		return 0, 0, 0, err
	}
	return len(fresh), duplicates, skipped, nil
}

// Stop cancels the running import and waits for it to finish.
func (i *Importer) Stop() error {
	i.mu.Lock()
	if !i.running {
		i.mu.Unlock()
		return ErrNotRunning
	}
	cancel, done := i.cancel, i.done
	i.mu.Unlock()

	cancel()
	<-done
	return nil
}

// Stats returns a copy of the current or last run's stats.
func (i *Importer) Stats() *Stats {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.stats == nil {
		return &Stats{}
	}
	s := *i.stats
	return &s
}

// Summary reports the current or last run for the status endpoint.
func (i *Importer) Summary() *Summary {
	i.mu.RLock()
	running := i.running
	i.mu.RUnlock()
	return i.Stats().ToSummary(running)
}

// IsRunning reports whether an import is in progress.
func (i *Importer) IsRunning() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.running
}

// Wait blocks until the current run, if any, finishes.
func (i *Importer) Wait() {
	i.mu.RLock()
	done := i.done
	i.mu.RUnlock()
	if done != nil {
		<-done
	}
}
