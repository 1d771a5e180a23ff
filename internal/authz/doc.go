// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package authz provides route authorization using Casbin.
//
//	Request -> auth.Authenticate -> authz.AuthorizeRequest -> Handler
//
// # RBAC Model
//
//	[request_definition]
//	r = sub, obj, act
//
//	[policy_definition]
//	p = sub, obj, act
//
//	[role_definition]
//	g = _, _
//
//	[policy_effect]
//	e = some(where (p.eft == allow))
//
//	[matchers]
//	m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
//
// The request subject is the caller's role. Every role inherits
// "authenticated"; superadmin is additionally granted /api/* for all
// actions. Actions are derived from the HTTP method: GET/HEAD/OPTIONS read,
// POST/PUT/PATCH write, DELETE delete.
//
// The policy only says which role may call which route. Whether a company
// user may edit a particular job (tenant ownership) is decided by the
// handlers.
//
// Both model.conf and policy.csv are embedded; config.CasbinConfig paths
// override them. Decisions are cached for CacheTTL.
package authz
