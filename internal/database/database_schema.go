// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
database_schema.go - Database Schema

Tables are created by numbered migrations (see migrations.go) so an existing
database file picks up new tables and columns on upgrade. createTables only
bootstraps the schema_migrations bookkeeping table.

Tables:
  - tenants, users, youth_profiles, profile_skills
  - jobs, job_skills, saved_jobs
  - applications, application_status_history
  - courses, course_skills, lessons, enrollments, lesson_completions
  - conversations, messages
  - notifications, notification_preferences, digest_runs
  - uploads

There are no FOREIGN KEY constraints: DuckDB rewrites updated rows of
referenced tables as delete+insert, which trips FK checks. Deletes cascade in
Go (see DeleteJob, DeleteCourse).

Index Strategy:
Only columns that are never updated are indexed (owner ids, parent ids).
Unique constraints back the one-per-pair invariants (application per job and
user, enrollment per course and user, conversation per participant pair).
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the migration bookkeeping table.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, schemaMigrationsTable); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	return nil
}

// schemaMigrations is append-only. Never edit a released migration.
var schemaMigrations = []Migration{
	{
		Version:     1,
		Name:        "create_accounts",
		Description: "Tenants, users and youth profiles",
		SQL: `
CREATE TABLE IF NOT EXISTS tenants (
	id VARCHAR PRIMARY KEY,
	name VARCHAR NOT NULL,
	kind VARCHAR NOT NULL,
	website VARCHAR NOT NULL DEFAULT '',
	description VARCHAR NOT NULL DEFAULT '',
	location VARCHAR NOT NULL DEFAULT '',
	verified BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS users (
	id VARCHAR PRIMARY KEY,
	tenant_id VARCHAR,
	email VARCHAR NOT NULL UNIQUE,
	password_hash VARCHAR NOT NULL DEFAULT '',
	name VARCHAR NOT NULL,
	role VARCHAR NOT NULL,
	status VARCHAR NOT NULL DEFAULT 'active',
	last_login_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS youth_profiles (
	user_id VARCHAR PRIMARY KEY,
	headline VARCHAR NOT NULL DEFAULT '',
	bio VARCHAR NOT NULL DEFAULT '',
	location VARCHAR NOT NULL DEFAULT '',
	experience_years DOUBLE NOT NULL DEFAULT 0,
	education_level VARCHAR NOT NULL DEFAULT 'none',
	preferred_job_types VARCHAR NOT NULL DEFAULT '[]',
	desired_salary_min DOUBLE,
	interests VARCHAR NOT NULL DEFAULT '[]',
	resume_upload_id VARCHAR,
	open_to_remote BOOLEAN NOT NULL DEFAULT false,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS profile_skills (
	user_id VARCHAR NOT NULL,
	skill VARCHAR NOT NULL,
	PRIMARY KEY (user_id, skill)
);`,
	},
	{
		Version:     2,
		Name:        "create_job_board",
		Description: "Jobs, job skills, saved jobs and applications",
		SQL: `
CREATE TABLE IF NOT EXISTS jobs (
	id VARCHAR PRIMARY KEY,
	tenant_id VARCHAR NOT NULL,
	posted_by VARCHAR NOT NULL,
	title VARCHAR NOT NULL,
	description VARCHAR NOT NULL DEFAULT '',
	location VARCHAR NOT NULL DEFAULT '',
	remote BOOLEAN NOT NULL DEFAULT false,
	job_type VARCHAR NOT NULL,
	min_experience_years DOUBLE NOT NULL DEFAULT 0,
	education_level VARCHAR NOT NULL DEFAULT 'none',
	salary_min DOUBLE,
	salary_max DOUBLE,
	currency VARCHAR NOT NULL DEFAULT '',
	deadline TIMESTAMP,
	status VARCHAR NOT NULL DEFAULT 'draft',
	source_url VARCHAR NOT NULL DEFAULT '',
	published_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS job_skills (
	job_id VARCHAR NOT NULL,
	skill VARCHAR NOT NULL,
	required BOOLEAN NOT NULL,
	PRIMARY KEY (job_id, skill)
);
CREATE TABLE IF NOT EXISTS saved_jobs (
	user_id VARCHAR NOT NULL,
	job_id VARCHAR NOT NULL,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, job_id)
);
CREATE TABLE IF NOT EXISTS applications (
	id VARCHAR PRIMARY KEY,
	job_id VARCHAR NOT NULL,
	user_id VARCHAR NOT NULL,
	tenant_id VARCHAR NOT NULL,
	cover_letter VARCHAR NOT NULL DEFAULT '',
	resume_upload_id VARCHAR,
	status VARCHAR NOT NULL,
	notes VARCHAR NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	UNIQUE (job_id, user_id)
);
CREATE TABLE IF NOT EXISTS application_status_history (
	id VARCHAR PRIMARY KEY,
	application_id VARCHAR NOT NULL,
	from_status VARCHAR NOT NULL,
	to_status VARCHAR NOT NULL,
	actor_id VARCHAR NOT NULL,
	created_at TIMESTAMP NOT NULL
);`,
	},
	{
		Version:     3,
		Name:        "create_courses",
		Description: "Courses, lessons and enrollments",
		SQL: `
CREATE TABLE IF NOT EXISTS courses (
	id VARCHAR PRIMARY KEY,
	tenant_id VARCHAR NOT NULL,
	created_by VARCHAR NOT NULL,
	title VARCHAR NOT NULL,
	description VARCHAR NOT NULL DEFAULT '',
	level VARCHAR NOT NULL,
	duration_hours DOUBLE NOT NULL DEFAULT 0,
	status VARCHAR NOT NULL DEFAULT 'draft',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS course_skills (
	course_id VARCHAR NOT NULL,
	skill VARCHAR NOT NULL,
	PRIMARY KEY (course_id, skill)
);
CREATE TABLE IF NOT EXISTS lessons (
	id VARCHAR PRIMARY KEY,
	course_id VARCHAR NOT NULL,
	position INTEGER NOT NULL,
	title VARCHAR NOT NULL,
	content VARCHAR NOT NULL DEFAULT '',
	duration_minutes INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS enrollments (
	id VARCHAR PRIMARY KEY,
	course_id VARCHAR NOT NULL,
	user_id VARCHAR NOT NULL,
	status VARCHAR NOT NULL,
	progress INTEGER NOT NULL DEFAULT 0,
	enrolled_at TIMESTAMP NOT NULL,
	completed_at TIMESTAMP,
	UNIQUE (course_id, user_id)
);
CREATE TABLE IF NOT EXISTS lesson_completions (
	enrollment_id VARCHAR NOT NULL,
	lesson_id VARCHAR NOT NULL,
	completed_at TIMESTAMP NOT NULL,
	PRIMARY KEY (enrollment_id, lesson_id)
);`,
	},
	{
		Version:     4,
		Name:        "create_messaging",
		Description: "Direct conversations and messages",
		SQL: `
CREATE TABLE IF NOT EXISTS conversations (
	id VARCHAR PRIMARY KEY,
	participant_a VARCHAR NOT NULL,
	participant_b VARCHAR NOT NULL,
	last_message_at TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL,
	UNIQUE (participant_a, participant_b)
);
CREATE TABLE IF NOT EXISTS messages (
	id VARCHAR PRIMARY KEY,
	conversation_id VARCHAR NOT NULL,
	sender_id VARCHAR NOT NULL,
	body VARCHAR NOT NULL,
	read_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL
);`,
	},
	{
		Version:     5,
		Name:        "create_notifications",
		Description: "Notifications, preference toggles and digest bookkeeping",
		SQL: `
CREATE TABLE IF NOT EXISTS notifications (
	id VARCHAR PRIMARY KEY,
	user_id VARCHAR NOT NULL,
	type VARCHAR NOT NULL,
	title VARCHAR NOT NULL,
	body VARCHAR NOT NULL DEFAULT '',
	link VARCHAR NOT NULL DEFAULT '',
	data VARCHAR NOT NULL DEFAULT '{}',
	read_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS notification_preferences (
	user_id VARCHAR NOT NULL,
	type VARCHAR NOT NULL,
	channel VARCHAR NOT NULL,
	enabled BOOLEAN NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (user_id, type, channel)
);
CREATE TABLE IF NOT EXISTS digest_runs (
	user_id VARCHAR PRIMARY KEY,
	last_sent_at TIMESTAMP NOT NULL
);`,
	},
	{
		Version:     6,
		Name:        "create_uploads",
		Description: "Upload metadata",
		SQL: `
CREATE TABLE IF NOT EXISTS uploads (
	id VARCHAR PRIMARY KEY,
	owner_id VARCHAR NOT NULL,
	kind VARCHAR NOT NULL,
	filename VARCHAR NOT NULL,
	content_type VARCHAR NOT NULL,
	size BIGINT NOT NULL,
	sha256 VARCHAR NOT NULL,
	storage_key VARCHAR NOT NULL,
	created_at TIMESTAMP NOT NULL
);`,
	},
}

// indexQueries are idempotent and run on every start.
var indexQueries = []string{
	`CREATE INDEX IF NOT EXISTS idx_users_tenant ON users(tenant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_tenant ON jobs(tenant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_user ON applications(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_applications_tenant ON applications(tenant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_app_history_app ON application_status_history(application_id)`,
	`CREATE INDEX IF NOT EXISTS idx_courses_tenant ON courses(tenant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_lessons_course ON lessons(course_id)`,
	`CREATE INDEX IF NOT EXISTS idx_enrollments_user ON enrollments(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_uploads_owner ON uploads(owner_id)`,
}

// createIndexes creates secondary indexes.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, q := range indexQueries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", q, err)
		}
	}
	return nil
}
