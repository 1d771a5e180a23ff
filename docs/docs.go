// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package docs holds the OpenAPI document served at /swagger/doc.json.
//
// Regenerate after changing handler annotations:
//
//	swag init -g cmd/server/docs.go -d ./,./internal/api -o docs --parseInternal
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "GitHub Repository",
            "url": "https://github.com/tomtom215/launchpad/issues"
        },
        "license": {
            "name": "AGPL-3.0-or-later",
            "url": "https://www.gnu.org/licenses/agpl-3.0.html"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/health": {
            "get": {
                "tags": ["Core"],
                "summary": "Service health",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Health status retrieved successfully", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/health/live": {
            "get": {
                "tags": ["Core"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/health/ready": {
            "get": {
                "tags": ["Core"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "503": {"description": "Database unavailable", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Create an account",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "Account details", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in with email and password",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "403": {"description": "Account suspended", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "429": {"description": "Account locked or rate limited", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Revoke the current session",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/auth/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/jobs": {
            "get": {
                "tags": ["Jobs"],
                "summary": "List published jobs",
                "parameters": [
                    {"type": "string", "description": "Full-text search on title and description", "name": "q", "in": "query"},
                    {"type": "string", "description": "Required skill", "name": "skill", "in": "query"},
                    {"type": "string", "description": "Location substring", "name": "location", "in": "query"},
                    {"type": "string", "description": "Job type", "name": "job_type", "in": "query"},
                    {"type": "boolean", "description": "Remote only", "name": "remote", "in": "query"},
                    {"type": "integer", "description": "Page size (default 20, max 100)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Offset", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Jobs"],
                "summary": "Create a draft job",
                "consumes": ["application/json"],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "403": {"description": "Not a company", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/jobs/recommendations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Jobs"],
                "summary": "Ranked job recommendations for the current youth",
                "parameters": [
                    {"type": "integer", "description": "Number of results (default 10, max 50)", "name": "limit", "in": "query"},
                    {"type": "number", "description": "Minimum score 0-100 (default 0)", "name": "min_score", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "400": {"description": "Invalid parameters", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "403": {"description": "Not a youth", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "503": {"description": "Recommendations not enabled", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/jobs/{id}/apply": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Applications"],
                "summary": "Apply to a published job",
                "parameters": [
                    {"type": "string", "description": "Job ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "409": {"description": "Already applied or job closed", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/applications/{id}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "tags": ["Applications"],
                "summary": "Move an application through its workflow",
                "parameters": [
                    {"type": "string", "description": "Application ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "409": {"description": "Transition not allowed", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List published courses",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/courses/{id}/enroll": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Courses"],
                "summary": "Enroll in a published course",
                "parameters": [
                    {"type": "string", "description": "Course ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "409": {"description": "Already enrolled or course not published", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/conversations": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Messaging"],
                "summary": "List the caller's conversations",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/notifications": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Notifications"],
                "summary": "List notifications",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/uploads": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Uploads"],
                "summary": "Upload a resume, avatar or course material",
                "consumes": ["multipart/form-data"],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "413": {"description": "File too large", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "415": {"description": "Unsupported type", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            }
        },
        "/admin/audit": {
            "get": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "Query the audit trail",
                "parameters": [
                    {"type": "string", "description": "Comma-separated event types", "name": "type", "in": "query"},
                    {"type": "string", "description": "Actor user ID", "name": "actor_id", "in": "query"},
                    {"type": "integer", "description": "Page size (default 50, max 500)", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        },
        "/admin/import/jobs": {
            "post": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "Start a SQLite job import",
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/models.APIResponse"}},
                    "409": {"description": "Import already running", "schema": {"$ref": "#/definitions/models.APIResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["Admin"],
                "summary": "Stop the running import",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.APIResponse"}}}
            }
        }
    },
    "definitions": {
        "api.LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "maxLength": 254},
                "password": {"type": "string", "maxLength": 128}
            }
        },
        "api.RegisterRequest": {
            "type": "object",
            "required": ["email", "name", "password", "role"],
            "properties": {
                "email": {"type": "string", "maxLength": 254},
                "name": {"type": "string", "maxLength": 100, "minLength": 1},
                "organization_name": {"type": "string", "maxLength": 200},
                "password": {"type": "string", "maxLength": 128, "minLength": 8},
                "role": {"type": "string", "enum": ["youth", "company", "institution"]}
            }
        },
        "models.APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "details": {"type": "object"},
                "message": {"type": "string"}
            }
        },
        "models.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/models.APIError"},
                "metadata": {"$ref": "#/definitions/models.Metadata"},
                "status": {"type": "string"}
            }
        },
        "models.Metadata": {
            "type": "object",
            "properties": {
                "cached": {"type": "boolean"},
                "pagination": {"$ref": "#/definitions/models.Pagination"},
                "query_time_ms": {"type": "integer"},
                "timestamp": {"type": "string"}
            }
        },
        "models.Pagination": {
            "type": "object",
            "properties": {
                "has_more": {"type": "boolean"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "total": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT in the form \"Bearer <token>\". Obtain via /api/v1/auth/login.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Launchpad API",
	Description:      "Youth employability platform: job board, applications, courses, messaging and skill-based job recommendations.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
