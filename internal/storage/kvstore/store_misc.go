// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/cinevault/internal/models"
)

// GetAdminConfig implements storage.AdminConfigStore.
func (s *Store) GetAdminConfig(ctx context.Context) (*models.AdminConfig, error) {
	var cfg models.AdminConfig
	ok, err := s.getJSON(ctx, adminConfigKey, &cfg)
	if err != nil || !ok {
		return nil, err
	}
	return &cfg, nil
}

// SetAdminConfig implements storage.AdminConfigStore.
func (s *Store) SetAdminConfig(ctx context.Context, cfg *models.AdminConfig) error {
	return s.setJSON(ctx, adminConfigKey, cfg)
}

// GetGlobalValue implements storage.GlobalValueStore.
func (s *Store) GetGlobalValue(ctx context.Context, key string) (string, bool, error) {
	return s.RawGet(ctx, globalKey(key))
}

// SetGlobalValue implements storage.GlobalValueStore.
func (s *Store) SetGlobalValue(ctx context.Context, key, value string) error {
	return s.RawSet(ctx, globalKey(key), value, 0)
}

// DeleteGlobalValue implements storage.GlobalValueStore.
func (s *Store) DeleteGlobalValue(ctx context.Context, key string) error {
	return s.RawDelete(ctx, globalKey(key))
}

// ClearAllData implements storage.DataClearer.
func (s *Store) ClearAllData(ctx context.Context) error {
	if f, ok := s.backend.(Flusher); ok {
		if err := f.Flush(ctx); err != nil {
			return fmt.Errorf("flush %s: %w", s.backend.Name(), err)
		}
		return nil
	}
	keys, err := s.keys(ctx, "")
	if err != nil {
		return err
	}
	return s.delete(ctx, keys...)
}

// RawGet implements storage.RawKV.
func (s *Store) RawGet(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return string(raw), ok, nil
}

// RawSet implements storage.RawKV.
func (s *Store) RawSet(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.backend.Set(ctx, key, []byte(value), ttl); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// RawDelete implements storage.RawKV.
func (s *Store) RawDelete(ctx context.Context, key string) error {
	return s.delete(ctx, key)
}

// Sweep removes expired entries on backends that expire lazily. Other
// backends report zero.
func (s *Store) Sweep(ctx context.Context) (int, error) {
	if sw, ok := s.backend.(Sweeper); ok {
		return sw.Sweep(ctx)
	}
	return 0, nil
}

// RawTake implements storage.AtomicTaker.
func (s *AtomicStore) RawTake(ctx context.Context, key string) (string, bool, error) {
	raw, ok, err := s.taker.Take(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("take %s: %w", key, err)
	}
	return string(raw), ok, nil
}
