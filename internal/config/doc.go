// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

/*
Package config provides centralized configuration management for Cinevault.

Configuration is loaded with Koanf v2 from three layers, later layers
overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml,
    /etc/cinevault/config.yaml, /etc/cinevault/config.yml
 3. Environment variables, mapped explicitly by envTransformFunc. Variables
    without a mapping are ignored.

# Storage Selection

STORAGE_TYPE selects the backend kind:

  - local: in-process engine, LOCAL_ENGINE=memory|badger (BADGER_PATH)
  - remote: network key-value server, REMOTE_PROTOCOL=redis|nats
    (REDIS_URL or REDIS_ADDR, NATS_URL or NATS_EMBEDDED)
  - proxy: REST key-value proxy (UPSTASH_URL, UPSTASH_TOKEN)
  - relational: SQL database, DATABASE_ADAPTER=auto|duckdb|postgres|sqlite
    (DATABASE_URL, DUCKDB_PATH)

Deployment names such as redis, kvrocks, upstash or postgres are accepted as
aliases and resolved to a kind plus secondary selection.

# Other Sections

  - server: ops HTTP listener (HTTP_HOST, HTTP_PORT, HTTP_RATE_LIMIT,
    HTTP_RATE_WINDOW, CORS_ORIGINS as a comma-separated list)
  - logging: zerolog level, format and caller (LOG_LEVEL, LOG_FORMAT, LOG_CALLER)
  - maintenance: background service intervals (BADGER_GC_INTERVAL, SWEEP_INTERVAL)

# Validation

Validate applies the go-playground/validator tags on the config structs and
then checks the settings required by the selected backend.
*/
package config
