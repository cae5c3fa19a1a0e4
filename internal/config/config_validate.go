// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/cinevault/internal/validation"
)

// Validate checks that required configuration is present and valid.
// Field ranges and enumerations come from the validate struct tags; the
// checks below cover settings that only matter for the selected backend.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return fmt.Errorf("invalid configuration: %w", verr)
	}

	return c.Storage.validate()
}

func (s *StorageConfig) validate() error {
	switch s.Kind {
	case StorageLocal:
		return s.validateLocal()
	case StorageRemote:
		return s.validateRemote()
	case StorageProxy:
		return s.validateProxy()
	case StorageRelational:
		return s.validateRelational()
	default:
		return fmt.Errorf("STORAGE_TYPE must be one of local, remote, proxy, relational, got: %q", s.Kind)
	}
}

func (s *StorageConfig) validateLocal() error {
	if s.Local.Engine == EngineBadger && !s.Local.InMemory && s.Local.Path == "" {
		return fmt.Errorf("BADGER_PATH is required when LOCAL_ENGINE=badger")
	}
	return nil
}

func (s *StorageConfig) validateRemote() error {
	r := s.Remote
	if r.Protocol == ProtocolNATS {
		if r.NATS.Bucket == "" {
			return fmt.Errorf("NATS_BUCKET is required when REMOTE_PROTOCOL=nats")
		}
		if r.NATS.Embedded {
			if r.NATS.StoreDir == "" {
				return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
			}
			return nil
		}
		if err := validateNATSURL(r.NATS.URL); err != nil {
			return fmt.Errorf("NATS_URL is invalid: %w", err)
		}
		return nil
	}

	if r.URL == "" && r.Addr == "" {
		return fmt.Errorf("REDIS_URL or REDIS_ADDR is required when STORAGE_TYPE=remote")
	}
	if r.URL != "" {
		if err := validateRedisURL(r.URL); err != nil {
			return fmt.Errorf("REDIS_URL is invalid: %w", err)
		}
	}
	return nil
}

func (s *StorageConfig) validateProxy() error {
	if s.Proxy.URL == "" {
		return fmt.Errorf("UPSTASH_URL is required when STORAGE_TYPE=proxy")
	}
	if err := validateHTTPURL(s.Proxy.URL, "UPSTASH_URL"); err != nil {
		return fmt.Errorf("UPSTASH_URL is invalid: %w", err)
	}
	if strings.TrimSpace(s.Proxy.Token) == "" {
		return fmt.Errorf("UPSTASH_TOKEN is required when STORAGE_TYPE=proxy")
	}
	return nil
}

func (s *StorageConfig) validateRelational() error {
	rel := s.Relational
	if rel.Adapter == "postgres" && rel.DSN == "" {
		return fmt.Errorf("DATABASE_URL is required when DATABASE_ADAPTER=postgres")
	}
	if rel.Adapter == "auto" && rel.DSN == "" && rel.Path == "" {
		return fmt.Errorf("DATABASE_URL or DUCKDB_PATH is required when STORAGE_TYPE=relational")
	}
	return nil
}
