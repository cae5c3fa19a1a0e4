// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package sqlstore

import (
	"fmt"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2" // registers "duckdb"
	_ "github.com/lib/pq"              // registers "postgres"
	_ "github.com/mattn/go-sqlite3"    // registers "sqlite3"
)

// Adapter selects the SQL engine.
type Adapter string

// Supported adapters.
const (
	AdapterAuto     Adapter = "auto"
	AdapterDuckDB   Adapter = "duckdb"
	AdapterPostgres Adapter = "postgres"
	AdapterSQLite   Adapter = "sqlite"
)

// dialect captures the per-engine differences.
type dialect struct {
	adapter    Adapter
	driverName string

	// numbered rewrites $n placeholders into the engine's syntax.
	numbered bool
}

// ResolveAdapter turns AdapterAuto into a concrete adapter: postgres when dsn
// is a postgres URL, duckdb otherwise.
func ResolveAdapter(adapter Adapter, dsn string) (Adapter, error) {
	switch adapter {
	case AdapterDuckDB, AdapterPostgres, AdapterSQLite:
		return adapter, nil
	case AdapterAuto, "":
		if IsPostgresDSN(dsn) {
			return AdapterPostgres, nil
		}
		return AdapterDuckDB, nil
	default:
		return "", fmt.Errorf("unknown relational adapter %q", adapter)
	}
}

// IsPostgresDSN reports whether dsn is a postgres:// or postgresql:// URL.
func IsPostgresDSN(dsn string) bool {
	lower := strings.ToLower(dsn)
	return strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://")
}

func dialectFor(adapter Adapter) dialect {
	switch adapter {
	case AdapterPostgres:
		return dialect{adapter: adapter, driverName: "postgres"}
	case AdapterSQLite:
		return dialect{adapter: adapter, driverName: "sqlite3", numbered: true}
	default:
		return dialect{adapter: AdapterDuckDB, driverName: "duckdb"}
	}
}

// rebind rewrites $n placeholders to ?n for engines that need it.
func (d dialect) rebind(query string) string {
	if !d.numbered || !strings.Contains(query, "$") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			b.WriteByte('?')
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
