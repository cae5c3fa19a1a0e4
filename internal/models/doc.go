// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

/*
Package models defines the records persisted by the Cinevault storage layer.

Every record is independently addressable by a deterministic key; no record
owns another. The storage drivers serialize these types with goccy/go-json, so
the JSON tags below are the on-disk (and on-wire) field names shared by every
backend.

Record Categories:

1. Per-title records, keyed by (userName, source+id):
  - PlayRecord: playback progress for a title
  - Favorite: existence means "favorited"
  - SkipConfig: intro/outro skip ranges

2. Per-user records:
  - DanmakuFilterConfig: one document per user
  - Search history: an ordered []string (most-recent-first)

3. Accounts:
  - UserInfoV2: extended account profile (role, tags, OIDC subject, email)
  - UserListPage: one page of UserInfoV2 plus the total count

4. Process-wide:
  - AdminConfig: site settings including email delivery configuration
*/
package models
