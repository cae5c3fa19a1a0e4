// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	driver, err := factory.Open(ctx, &cfg.Storage)
type Config struct {
	Storage     StorageConfig     `koanf:"storage"`
	Server      ServerConfig      `koanf:"server"`
	Logging     LoggingConfig     `koanf:"logging"`
	Maintenance MaintenanceConfig `koanf:"maintenance"`
}

// Storage kinds. The kind is the single selection point for the driver
// factory; everything below it only tunes the selected driver.
const (
	StorageLocal      = "local"
	StorageRemote     = "remote"
	StorageProxy      = "proxy"
	StorageRelational = "relational"
)

// Local engines.
const (
	EngineMemory = "memory"
	EngineBadger = "badger"
)

// Remote protocols.
const (
	ProtocolRedis = "redis"
	ProtocolNATS  = "nats"
)

// StorageConfig selects and configures the persistence backend.
//
// Environment Variables:
//   - STORAGE_TYPE: local, remote, proxy, relational (default: local).
//     Deployment aliases are accepted: localstorage, redis, kvrocks, nats,
//     upstash, postgres, duckdb, sqlite, d1.
//   - BCRYPT_COST: cost for new password hashes (default: 10)
//   - RESET_TOKEN_TTL: lifetime of password reset tokens (default: 15m)
type StorageConfig struct {
	Kind string `koanf:"kind" validate:"oneof=local remote proxy relational"`

	Local      LocalStorageConfig      `koanf:"local"`
	Remote     RemoteStorageConfig     `koanf:"remote"`
	Proxy      ProxyStorageConfig      `koanf:"proxy"`
	Relational RelationalStorageConfig `koanf:"relational"`

	BcryptCost    int           `koanf:"bcrypt_cost" validate:"min=4,max=31"`
	ResetTokenTTL time.Duration `koanf:"reset_token_ttl" validate:"gt=0"`
}

// LocalStorageConfig configures the in-process backends.
type LocalStorageConfig struct {
	// Engine is memory or badger. Default: badger
	Engine string `koanf:"engine" validate:"oneof=memory badger"`

	// Path is the badger directory. Default: /data/cinevault
	Path string `koanf:"path"`

	// InMemory runs badger without touching disk.
	InMemory bool `koanf:"in_memory"`

	SyncWrites bool `koanf:"sync_writes"`
}

// RemoteStorageConfig configures a network key-value server.
type RemoteStorageConfig struct {
	// Protocol is redis or nats. Default: redis
	Protocol string `koanf:"protocol" validate:"oneof=redis nats"`

	// Redis-compatible server (Redis, KVrocks, Valkey, ...).
	URL       string `koanf:"url"`
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db" validate:"gte=0"`
	KeyPrefix string `koanf:"key_prefix"`

	NATS NATSStorageConfig `koanf:"nats"`
}

// NATSStorageConfig configures the JetStream key-value backend.
type NATSStorageConfig struct {
	URL      string `koanf:"url"`
	Bucket   string `koanf:"bucket"`
	Embedded bool   `koanf:"embedded"`
	StoreDir string `koanf:"store_dir"`
}

// ProxyStorageConfig configures the REST key-value proxy.
type ProxyStorageConfig struct {
	URL   string `koanf:"url"`
	Token string `koanf:"token"`

	Timeout           time.Duration `koanf:"timeout" validate:"gte=0"`
	MaxElapsed        time.Duration `koanf:"max_elapsed" validate:"gte=0"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int           `koanf:"burst" validate:"gte=0"`
}

// RelationalStorageConfig configures the SQL backend.
type RelationalStorageConfig struct {
	// Adapter is auto, duckdb, postgres or sqlite. With auto, a postgres
	// DSN selects postgres and anything else the embedded duckdb engine.
	Adapter string `koanf:"adapter" validate:"oneof=auto duckdb postgres sqlite"`

	// DSN is the connection string (DATABASE_URL).
	DSN string `koanf:"dsn"`

	// Path of the embedded database file. Default: /data/cinevault.duckdb
	Path string `koanf:"path"`

	MaxOpenConns int `koanf:"max_open_conns" validate:"gte=0"`
}

// ServerConfig holds ops HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// CORSOrigins lists origins allowed to read the ops endpoints (CORS_ORIGINS,
	// comma-separated). Empty disables CORS headers.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitRequests per RateLimitWindow per client IP. Zero disables limiting.
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"gte=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gte=0"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level" validate:"oneof=trace debug info warn error"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// MaintenanceConfig controls the background services run by the supervisor.
// A zero interval disables the service.
type MaintenanceConfig struct {
	BadgerGCInterval     time.Duration `koanf:"badger_gc_interval" validate:"gte=0"`
	BadgerGCDiscardRatio float64       `koanf:"badger_gc_discard_ratio" validate:"gt=0,lt=1"`
	SweepInterval        time.Duration `koanf:"sweep_interval" validate:"gte=0"`
}

// Load reads configuration from all sources and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
