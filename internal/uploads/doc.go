// Launchpad - Youth Employability Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

/*
Package uploads stores user files (resumes, avatars, logos, course material)
behind a pluggable backend and keeps their metadata in the database.

Backends:
  - local: one file per upload under the configured directory, written to a
    temporary file and renamed into place.
  - http: streams bytes to an upstream object store with PUT/GET/DELETE on
    {base}/{key}. Requests carry a bearer token, wait on a token-bucket rate
    limiter and run through a circuit breaker so a failing upstream is shed
    quickly instead of tying up request goroutines.

Service.Save sniffs the first 3 KiB with gabriel-vasile/mimetype, checks
the result against the kind's allow-list, then streams the rest to the
backend while hashing (SHA-256) and counting. Bodies over the size limit
abort the write and return ErrTooLarge; partially written objects are
removed.

Access control (owner, superadmin, company viewing an applicant's resume)
is the caller's job; this package only stores and streams.
*/
package uploads
