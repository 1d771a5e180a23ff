// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package models defines the data structures shared across Launchpad.

Models are plain structs with JSON tags. They carry no persistence logic;
internal/database maps them to DuckDB rows and internal/api encodes them in
the standard response envelope.

Model Categories:

 1. Accounts: Tenant, User, YouthProfile, Role and the education ladder
 2. Job board: Job, SavedJob, Application and the application state machine
 3. Learning: Course, Lesson, Enrollment
 4. Messaging: Conversation, Message, ConversationSummary
 5. Notifications: Notification, NotificationPreference and channel defaults
 6. Recommendations: Recommendation, ScoreBreakdown
 7. Analytics: per-dashboard roll-up structs
 8. API: APIResponse, Metadata, APIError, Pagination

Enum-like string types expose Valid() so handlers and the validator share a
single definition of the allowed values.
*/
package models
