// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinevault/config.yaml",
	"/etc/cinevault/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Kind: StorageLocal,
			Local: LocalStorageConfig{
				Engine: EngineBadger,
				Path:   "/data/cinevault",
			},
			Remote: RemoteStorageConfig{
				Protocol: ProtocolRedis,
				Addr:     "127.0.0.1:6379",
				NATS: NATSStorageConfig{
					URL:      "nats://127.0.0.1:4222",
					Bucket:   "cinevault",
					StoreDir: "/data/nats/jetstream",
				},
			},
			Proxy: ProxyStorageConfig{
				Timeout:    5 * time.Second,
				MaxElapsed: 3 * time.Second,
				Burst:      10,
			},
			Relational: RelationalStorageConfig{
				Adapter:      "auto",
				Path:         "/data/cinevault.duckdb",
				MaxOpenConns: 10,
			},
			BcryptCost:    10,
			ResetTokenTTL: 15 * time.Minute,
		},
		Server: ServerConfig{
			Port:              3858,
			Host:              "0.0.0.0",
			Timeout:           30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			RateLimitRequests: 120,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Maintenance: MaintenanceConfig{
			BadgerGCInterval:     10 * time.Minute,
			BadgerGCDiscardRatio: 0.5,
			SweepInterval:        time.Minute,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// STORAGE_TYPE -> storage.kind
	// DATABASE_URL -> storage.relational.dsn
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.Storage.resolveKindAlias()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// kindAliases maps deployment-specific storage type names onto a kind and,
// where the alias implies one, the secondary selection.
var kindAliases = map[string]struct {
	kind, sub string
}{
	"localstorage": {StorageLocal, ""},
	"memory":       {StorageLocal, EngineMemory},
	"badger":       {StorageLocal, EngineBadger},
	"redis":        {StorageRemote, ProtocolRedis},
	"kvrocks":      {StorageRemote, ProtocolRedis},
	"nats":         {StorageRemote, ProtocolNATS},
	"upstash":      {StorageProxy, ""},
	"d1":           {StorageRelational, ""},
	"duckdb":       {StorageRelational, "duckdb"},
	"postgres":     {StorageRelational, "postgres"},
	"sqlite":       {StorageRelational, "sqlite"},
}

// resolveKindAlias rewrites an alias in Kind to its canonical kind.
func (s *StorageConfig) resolveKindAlias() {
	s.Kind = strings.ToLower(strings.TrimSpace(s.Kind))
	alias, ok := kindAliases[s.Kind]
	if !ok {
		return
	}
	s.Kind = alias.kind
	if alias.sub == "" {
		return
	}
	switch alias.kind {
	case StorageLocal:
		s.Local.Engine = alias.sub
	case StorageRemote:
		s.Remote.Protocol = alias.sub
	case StorageRelational:
		s.Relational.Adapter = alias.sub
	}
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - STORAGE_TYPE -> storage.kind
//   - REDIS_URL -> storage.remote.url
//   - DATABASE_URL -> storage.relational.dsn
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Storage selection
		"storage_type":    "storage.kind",
		"bcrypt_cost":     "storage.bcrypt_cost",
		"reset_token_ttl": "storage.reset_token_ttl",

		// Local engines
		"local_engine":       "storage.local.engine",
		"badger_path":        "storage.local.path",
		"badger_in_memory":   "storage.local.in_memory",
		"badger_sync_writes": "storage.local.sync_writes",

		// Redis-compatible server
		"remote_protocol":  "storage.remote.protocol",
		"redis_url":        "storage.remote.url",
		"kvrocks_url":      "storage.remote.url",
		"redis_addr":       "storage.remote.addr",
		"redis_password":   "storage.remote.password",
		"redis_db":         "storage.remote.db",
		"redis_key_prefix": "storage.remote.key_prefix",

		// NATS JetStream key-value
		"nats_url":       "storage.remote.nats.url",
		"nats_bucket":    "storage.remote.nats.bucket",
		"nats_embedded":  "storage.remote.nats.embedded",
		"nats_store_dir": "storage.remote.nats.store_dir",

		// REST proxy
		"upstash_url":       "storage.proxy.url",
		"upstash_token":     "storage.proxy.token",
		"proxy_timeout":     "storage.proxy.timeout",
		"proxy_max_elapsed": "storage.proxy.max_elapsed",
		"proxy_rate_limit":  "storage.proxy.requests_per_second",
		"proxy_rate_burst":  "storage.proxy.burst",

		// Relational
		"database_adapter":   "storage.relational.adapter",
		"database_url":       "storage.relational.dsn",
		"duckdb_path":        "storage.relational.path",
		"database_max_conns": "storage.relational.max_open_conns",

		// Server mappings
		"http_port":             "server.port",
		"http_host":             "server.host",
		"http_timeout":          "server.timeout",
		"http_shutdown_timeout": "server.shutdown_timeout",
		"cors_origins":          "server.cors_origins",
		"http_rate_limit":       "server.rate_limit_requests",
		"http_rate_window":      "server.rate_limit_window",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Maintenance mappings
		"badger_gc_interval":      "maintenance.badger_gc_interval",
		"badger_gc_discard_ratio": "maintenance.badger_gc_discard_ratio",
		"sweep_interval":          "maintenance.sweep_interval",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
