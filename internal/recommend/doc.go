// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

// Package recommend ranks open jobs for a youth profile with a rule-based,
// weighted multi-factor scorer.
//
// # Factors
//
// Every factor is in [0,1]:
//
//   - skills: (2*matchedRequired + matchedPreferred) / (2*|required| + |preferred|),
//     0.5 when the job lists no skills. Skills are compared after
//     CanonicalSkill (lowercase plus a synonym table: js -> javascript,
//     golang -> go, ...).
//   - location: 1 for a remote job when the user is open to remote or for
//     the same location, 0.6 for the same region (last comma-separated
//     segment), 0.5 when either side is unknown or the job is remote, else 0.
//   - experience: 1 when the requirement is met, else have/required.
//   - education: 1 when met, 0.5 one level below, else 0.
//   - job_type: 1 when preferred, 0.5 without preferences, else 0.
//   - salary: offered (max, else min) against the desired minimum.
//   - recency: linear decay to 0 over RecencyWindow.
//
// # Score
//
//	score = 100 * Σ(w_i * f_i) / Σ(w_i)
//
// Each missing required skill multiplies the score by
// MissingRequiredPenalty; full required coverage multiplies it by
// FullMatchBonus. The result is clamped to [0,100] and rounded to one
// decimal. Ties are ordered by published_at desc, then job id.
//
// # Caching
//
// Engine caches the full ranking per user for CacheTTL. Limit, min_score
// and the digest "published since" filter are applied on read, so one
// ranking serves every query shape. Callers invalidate on profile changes,
// applications and job status changes.
//
// # Skill extraction
//
// Vocabulary.Extract finds known skills in free text; the job importer uses
// it to derive required skills from imported descriptions.
package recommend
