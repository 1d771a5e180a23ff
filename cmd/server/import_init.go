// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/launchpad/internal/config"
	"github.com/tomtom215/launchpad/internal/database"
	"github.com/tomtom215/launchpad/internal/jobimport"
	"github.com/tomtom215/launchpad/internal/logging"
)

// cliImportActor is recorded as the author of jobs imported from the
// command line.
const cliImportActor = "system:cli-import"

// ImportComponents holds the job importer and its progress store.
type ImportComponents struct {
	importer *jobimport.Importer
	// badger is nil when progress is kept in memory.
	badger *jobimport.BadgerProgress
}

// Close closes the Badger progress store.
func (c *ImportComponents) Close() {
	if c == nil || c.badger == nil {
		return
	}
	closeQuietly("import progress", c.badger.Close)
}

// initImporter creates the SQLite job importer. Progress is kept in Badger
// when IMPORTER_PROGRESS_PATH is set so an interrupted run resumes after
// the last committed row.
func initImporter(cfg *config.Config, db *database.DB) (*ImportComponents, error) {
	components := &ImportComponents{}

	var progress jobimport.ProgressTracker
	if cfg.Importer.ProgressPath != "" {
		bp, err := jobimport.OpenBadgerProgress(cfg.Importer.ProgressPath)
		if err != nil {
			return nil, fmt.Errorf("open import progress store: %w", err)
		}
		components.badger = bp
		progress = bp
		logging.Info().Str("path", cfg.Importer.ProgressPath).Msg("Import progress persisted in BadgerDB")
	} else {
		progress = jobimport.NewInMemoryProgress()
	}

	components.importer = jobimport.NewImporter(db, progress, cfg.Importer)
	return components, nil
}

type importFlags struct {
	dbPath       string
	tenantID     string
	statusFilter string
	dryRun       bool
	fresh        bool
}

// newImportCommand runs one import in the foreground and exits. It shares
// the configuration and database of the server.
func newImportCommand() *cobra.Command {
	var flags importFlags
	cmd := &cobra.Command{
		Use:   "import-jobs",
		Short: "Import job postings from a SQLite job tracker",
		Example: "  launchpad import-jobs --db ./tracker.db --tenant 7f1c...\n" +
			"  launchpad import-jobs --db ./tracker.db --tenant 7f1c... --status open --dry-run",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd, flags)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&flags.dbPath, "db", "", "path to the SQLite database to import")
	fs.StringVar(&flags.tenantID, "tenant", "", "company tenant that owns the imported jobs")
	fs.StringVar(&flags.statusFilter, "status", "", "only import source rows with this status")
	fs.BoolVar(&flags.dryRun, "dry-run", false, "validate and count rows without writing jobs")
	fs.BoolVar(&flags.fresh, "fresh", false, "ignore saved progress and start from the first row")
	_ = cmd.MarkFlagRequired("db")
	_ = cmd.MarkFlagRequired("tenant")

	return cmd
}

func runImport(cmd *cobra.Command, flags importFlags) error {
	ctx := cmd.Context()

	cfg, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer closeQuietly("database", db.Close)

	components, err := initImporter(cfg, db)
	if err != nil {
		return err
	}
	defer components.Close()

	stats, err := components.importer.Run(ctx, jobimport.Options{
		DBPath:       flags.dbPath,
		TenantID:     flags.tenantID,
		PostedBy:     cliImportActor,
		StatusFilter: flags.statusFilter,
		DryRun:       flags.dryRun,
		Fresh:        flags.fresh,
	})
	if stats != nil {
		logging.Info().
			Str("source", stats.Source).
			Int64("imported", stats.Imported).
			Int64("duplicates", stats.Duplicates).
			Int64("skipped", stats.Skipped).
			Int64("errors", stats.Errors).
			Bool("dry_run", stats.DryRun).
			Dur("duration", stats.Duration()).
			Msg("Job import finished")
		fmt.Fprintf(cmd.OutOrStdout(), "imported=%d duplicates=%d skipped=%d errors=%d\n",
			stats.Imported, stats.Duplicates, stats.Skipped, stats.Errors)
	}
	if err != nil {
		return fmt.Errorf("import jobs: %w", err)
	}
	return nil
}
