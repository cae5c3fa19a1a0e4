// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

/*
Package sqlstore implements the storage driver on a relational database.

Three adapters share one schema and one set of queries:

  - duckdb: embedded, file or :memory: (default)
  - postgres: lib/pq, selected automatically for postgres:// DSNs
  - sqlite: mattn/go-sqlite3, embedded

Queries are written with $n placeholders and upserts use
INSERT ... ON CONFLICT ... DO UPDATE, which all three engines accept. The
sqlite adapter rewrites $n to ?n before execution.

Records are stored as JSON documents in a data column keyed by
(username, record_key); only columns needed for lookups (oidc_sub,
created_at) are broken out.

The relational driver has no key/value primitives, so it does not implement
storage.RawKV. Email lookups fall back to scanning user profiles and reset
tokens are unavailable on this backend.
*/
package sqlstore
