// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package jobimport loads job postings from a job-tracker SQLite database
// into a tenant's job board as drafts.
//
// # Source Schema
//
// The source is the capture database written by common job-search tools:
//
//	CREATE TABLE jobs (
//	    url         TEXT,
//	    title       TEXT,
//	    description TEXT,
//	    company     TEXT,
//	    job_id      TEXT,
//	    location    TEXT,
//	    status      TEXT,
//	    created_at  TEXT
//	);
//
// Rows are read in rowid order with modernc.org/sqlite (pure Go, no cgo),
// opened read-only.
//
// # Pipeline
//
//	SQLite jobs table
//	       ↓
//	Reader.ReadBatch (rowid > last_row_id, optional status filter)
//	       ↓
//	Mapper.ToJob (title cleanup, job type and remote detection,
//	              skill extraction with recommend.DefaultVocabulary)
//	       ↓
//	dedupe by source URL (within the batch and against the tenant's jobs)
//	       ↓
//	Store.InsertJobs (one transaction per batch)
//
// # Resumption
//
// After every committed batch the importer stores its Stats, including
// LastRowID, in Badger under a key derived from the source path and tenant.
// A later run for the same pair starts after that row, so re-running an
// import only picks up rows added since. Options.Fresh ignores saved
// progress. Dry runs never save progress.
//
// # Concurrency
//
// One import runs at a time per Importer. Start runs it in the background
// for the admin API; Run blocks for the CLI.
package jobimport
