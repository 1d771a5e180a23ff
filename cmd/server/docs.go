// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// @title Launchpad API
// @version 1.0
// @description Youth employability platform: job board, applications, courses, messaging and skill-based job recommendations.
// @description
// @description ## Roles
// @description
// @description - **youth**: builds a profile, applies to jobs, enrolls in courses, receives recommendations
// @description - **company**: posts jobs and reviews applications for its tenant
// @description - **institution**: publishes courses and follows enrollments
// @description - **superadmin**: manages users, tenants, broadcasts, imports and the audit trail
// @description
// @description ## Authentication
// @description
// @description Obtain a token from `/api/v1/auth/login` and send it as `Authorization: Bearer <token>`.
// @description Login also sets an HTTP-only `token` cookie for browser clients.
// @description
// @description ## Error Responses
// @description
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "metadata": {"timestamp": "2026-03-01T12:00:00Z"},
// @description   "error": {"code": "VALIDATION_ERROR", "message": "...", "details": {}}
// @description }
// @description ```
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/launchpad/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT in the form "Bearer <token>". Obtain via /api/v1/auth/login.
//
// @tag.name Core
// @tag.description Health and readiness probes
//
// @tag.name Auth
// @tag.description Registration, login, logout, OIDC and the current user
//
// @tag.name Jobs
// @tag.description Job postings, saved jobs and recommendations
//
// @tag.name Profile
// @tag.description Youth profile with skills and preferences
//
// @tag.name Tenants
// @tag.description Company and institution organisations
//
// @tag.name Applications
// @tag.description Job applications and their status workflow
//
// @tag.name Courses
// @tag.description Courses, lessons, enrollments and progress
//
// @tag.name Messaging
// @tag.description Conversations, messages and the WebSocket stream
//
// @tag.name Notifications
// @tag.description In-app notifications and delivery preferences
//
// @tag.name Analytics
// @tag.description Role dashboards
//
// @tag.name Uploads
// @tag.description Resumes, avatars and course material
//
// @tag.name Admin
// @tag.description Superadmin operations: users, tenants, broadcasts, imports, audit

package main
