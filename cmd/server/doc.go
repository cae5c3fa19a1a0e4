// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

/*
Package main is the entry point for the Cinevault storage server.

Cinevault keeps per-user media tracking data (play records, favorites,
search history, skip configs, danmaku filters) and account records behind a
single storage facade. The server process opens the configured storage
driver, runs its maintenance loops and exposes an operational HTTP surface.

# Application Architecture

	RootSupervisor ("cinevault")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── badger-gc (local badger engine only)
	│   └── expiry-sweep (backends with client-side expiry)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (/healthz, /readyz, /metrics)

Startup order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Storage: factory.Provider opens the driver once and wraps it in a Manager
 4. Supervisor Tree: Suture v4 process supervision
 5. HTTP Server: Chi router with correlation IDs, request metrics, CORS and rate limiting

# Configuration

	Priority: Environment variables > Config file > Defaults

	STORAGE_TYPE=local           # local, remote, proxy, relational (or an alias: redis, upstash, postgres, ...)
	BADGER_PATH=/data/cinevault  # local badger directory
	REDIS_URL=redis://host:6379  # remote redis/kvrocks
	NATS_URL=nats://host:4222    # remote NATS KV (REMOTE_PROTOCOL=nats)
	UPSTASH_URL / UPSTASH_TOKEN  # REST proxy
	DATABASE_URL / DUCKDB_PATH   # relational
	HTTP_PORT=3858
	HTTP_RATE_LIMIT=120          # requests per HTTP_RATE_WINDOW per client IP, 0 disables
	CORS_ORIGINS=                # comma-separated origins allowed to read the ops endpoints
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signal Handling

SIGINT and SIGTERM cancel the supervisor context. The HTTP server drains
within HTTP_SHUTDOWN_TIMEOUT, then the storage driver is closed.
*/
package main
