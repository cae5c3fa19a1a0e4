// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package sqlstore

// Table names.
const (
	tablePlayRecords  = "play_records"
	tableFavorites    = "favorites"
	tableSkipConfigs  = "skip_configs"
	tableSearch       = "search_history"
	tableDanmaku      = "danmaku_filters"
	tableUsersV1      = "users_v1"
	tableUsersV2      = "users_v2"
	tableAdminConfig  = "admin_config"
	tableGlobalValues = "global_values"
)

// perUserTables hold rows owned by a single username.
var perUserTables = []string{
	tablePlayRecords,
	tableFavorites,
	tableSkipConfigs,
	tableSearch,
	tableDanmaku,
	tableUsersV1,
	tableUsersV2,
}

// allTables is every table ClearAllData empties.
var allTables = append(append([]string{}, perUserTables...), tableAdminConfig, tableGlobalValues)

// schema is portable across duckdb, postgres and sqlite.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS play_records (
		username   TEXT NOT NULL,
		record_key TEXT NOT NULL,
		data       TEXT NOT NULL,
		PRIMARY KEY (username, record_key)
	)`,
	`CREATE TABLE IF NOT EXISTS favorites (
		username   TEXT NOT NULL,
		record_key TEXT NOT NULL,
		data       TEXT NOT NULL,
		PRIMARY KEY (username, record_key)
	)`,
	`CREATE TABLE IF NOT EXISTS skip_configs (
		username   TEXT NOT NULL,
		record_key TEXT NOT NULL,
		data       TEXT NOT NULL,
		PRIMARY KEY (username, record_key)
	)`,
	`CREATE TABLE IF NOT EXISTS search_history (
		username TEXT PRIMARY KEY,
		data     TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS danmaku_filters (
		username TEXT PRIMARY KEY,
		data     TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users_v1 (
		username      TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users_v2 (
		username      TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL DEFAULT '',
		oidc_sub      TEXT NOT NULL DEFAULT '',
		created_at    BIGINT NOT NULL,
		profile       TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admin_config (
		id   INTEGER PRIMARY KEY,
		data TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS global_values (
		name  TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}
