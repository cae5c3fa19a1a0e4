// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tomtom215/cinevault/internal/models"
)

// adminConfigID is the primary key of the single admin_config row.
const adminConfigID = 1

// GetAdminConfig implements storage.AdminConfigStore.
func (s *Store) GetAdminConfig(ctx context.Context) (*models.AdminConfig, error) {
	var data string
	found, err := s.queryRow(ctx, "get_admin_config",
		`SELECT data FROM admin_config WHERE id = $1`, []interface{}{adminConfigID}, &data)
	if err != nil || !found {
		return nil, err
	}
	var cfg models.AdminConfig
	if err := decode(data, &cfg); err != nil {
		return nil, fmt.Errorf("admin config: %w", err)
	}
	return &cfg, nil
}

// SetAdminConfig implements storage.AdminConfigStore.
func (s *Store) SetAdminConfig(ctx context.Context, cfg *models.AdminConfig) error {
	data, err := encode(cfg)
	if err != nil {
		return err
	}
	return s.exec(ctx, "put_admin_config",
		`INSERT INTO admin_config (id, data) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data`, adminConfigID, data)
}

// GetGlobalValue implements storage.GlobalValueStore.
func (s *Store) GetGlobalValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	found, err := s.queryRow(ctx, "get_global",
		`SELECT value FROM global_values WHERE name = $1`, []interface{}{key}, &value)
	return value, found, err
}

// SetGlobalValue implements storage.GlobalValueStore.
func (s *Store) SetGlobalValue(ctx context.Context, key, value string) error {
	return s.exec(ctx, "put_global",
		`INSERT INTO global_values (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value`, key, value)
}

// DeleteGlobalValue implements storage.GlobalValueStore.
func (s *Store) DeleteGlobalValue(ctx context.Context, key string) error {
	return s.exec(ctx, "delete_global", `DELETE FROM global_values WHERE name = $1`, key)
}

// ClearAllData implements storage.DataClearer.
func (s *Store) ClearAllData(ctx context.Context) error {
	return s.inTx(ctx, "clear_all", func(tx *sql.Tx) error {
		for _, table := range allTables {
			//nolint:gosec // table is a package constant
			if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}
		return nil
	})
}
