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

// getRecord loads one per-title document.
func getRecord[T any](ctx context.Context, s *Store, table, userName, key string) (*T, error) {
	var data string
	//nolint:gosec // table is a package constant
	q := fmt.Sprintf(`SELECT data FROM %s WHERE username = $1 AND record_key = $2`, table)
	found, err := s.queryRow(ctx, "get_"+table, q, []interface{}{userName, key}, &data)
	if err != nil || !found {
		return nil, err
	}
	var v T
	if err := decode(data, &v); err != nil {
		return nil, fmt.Errorf("%s %s/%s: %w", table, userName, key, err)
	}
	return &v, nil
}

// allRecords loads every per-title document of a user keyed by record key.
func allRecords[T any](ctx context.Context, s *Store, table, userName string) (map[string]*T, error) {
	out := make(map[string]*T)
	//nolint:gosec // table is a package constant
	q := fmt.Sprintf(`SELECT record_key, data FROM %s WHERE username = $1`, table)
	err := s.query(ctx, "list_"+table, q, []interface{}{userName}, func(rows *sql.Rows) error {
		var key, data string
		if err := rows.Scan(&key, &data); err != nil {
			return err
		}
		var v T
		if err := decode(data, &v); err != nil {
			return fmt.Errorf("%s %s/%s: %w", table, userName, key, err)
		}
		out[key] = &v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) putRecord(ctx context.Context, table, userName, key string, v interface{}) error {
	data, err := encode(v)
	if err != nil {
		return err
	}
	//nolint:gosec // table is a package constant
	q := fmt.Sprintf(`INSERT INTO %s (username, record_key, data) VALUES ($1, $2, $3)
		ON CONFLICT (username, record_key) DO UPDATE SET data = excluded.data`, table)
	return s.exec(ctx, "put_"+table, q, userName, key, data)
}

func (s *Store) deleteRecord(ctx context.Context, table, userName, key string) error {
	//nolint:gosec // table is a package constant
	q := fmt.Sprintf(`DELETE FROM %s WHERE username = $1 AND record_key = $2`, table)
	return s.exec(ctx, "delete_"+table, q, userName, key)
}

// GetPlayRecord implements storage.Driver.
func (s *Store) GetPlayRecord(ctx context.Context, userName, key string) (*models.PlayRecord, error) {
	return getRecord[models.PlayRecord](ctx, s, tablePlayRecords, userName, key)
}

// SetPlayRecord implements storage.Driver.
func (s *Store) SetPlayRecord(ctx context.Context, userName, key string, record *models.PlayRecord) error {
	return s.putRecord(ctx, tablePlayRecords, userName, key, record)
}

// GetAllPlayRecords implements storage.Driver.
func (s *Store) GetAllPlayRecords(ctx context.Context, userName string) (map[string]*models.PlayRecord, error) {
	return allRecords[models.PlayRecord](ctx, s, tablePlayRecords, userName)
}

// DeletePlayRecord implements storage.Driver.
func (s *Store) DeletePlayRecord(ctx context.Context, userName, key string) error {
	return s.deleteRecord(ctx, tablePlayRecords, userName, key)
}

// GetFavorite implements storage.Driver.
func (s *Store) GetFavorite(ctx context.Context, userName, key string) (*models.Favorite, error) {
	return getRecord[models.Favorite](ctx, s, tableFavorites, userName, key)
}

// SetFavorite implements storage.Driver.
func (s *Store) SetFavorite(ctx context.Context, userName, key string, favorite *models.Favorite) error {
	return s.putRecord(ctx, tableFavorites, userName, key, favorite)
}

// GetAllFavorites implements storage.Driver.
func (s *Store) GetAllFavorites(ctx context.Context, userName string) (map[string]*models.Favorite, error) {
	return allRecords[models.Favorite](ctx, s, tableFavorites, userName)
}

// DeleteFavorite implements storage.Driver.
func (s *Store) DeleteFavorite(ctx context.Context, userName, key string) error {
	return s.deleteRecord(ctx, tableFavorites, userName, key)
}

// GetSkipConfig implements storage.SkipConfigStore.
func (s *Store) GetSkipConfig(ctx context.Context, userName, key string) (*models.SkipConfig, error) {
	return getRecord[models.SkipConfig](ctx, s, tableSkipConfigs, userName, key)
}

// SetSkipConfig implements storage.SkipConfigStore.
func (s *Store) SetSkipConfig(ctx context.Context, userName, key string, cfg *models.SkipConfig) error {
	return s.putRecord(ctx, tableSkipConfigs, userName, key, cfg)
}

// DeleteSkipConfig implements storage.SkipConfigStore.
func (s *Store) DeleteSkipConfig(ctx context.Context, userName, key string) error {
	return s.deleteRecord(ctx, tableSkipConfigs, userName, key)
}

// GetAllSkipConfigs implements storage.SkipConfigStore.
func (s *Store) GetAllSkipConfigs(ctx context.Context, userName string) (map[string]*models.SkipConfig, error) {
	return allRecords[models.SkipConfig](ctx, s, tableSkipConfigs, userName)
}

// getUserDoc loads a single-row-per-user JSON document.
func (s *Store) getUserDoc(ctx context.Context, table, userName string, dst interface{}) (bool, error) {
	var data string
	//nolint:gosec // table is a package constant
	q := fmt.Sprintf(`SELECT data FROM %s WHERE username = $1`, table)
	found, err := s.queryRow(ctx, "get_"+table, q, []interface{}{userName}, &data)
	if err != nil || !found {
		return false, err
	}
	if err := decode(data, dst); err != nil {
		return false, fmt.Errorf("%s %s: %w", table, userName, err)
	}
	return true, nil
}

func (s *Store) putUserDoc(ctx context.Context, table, userName string, v interface{}) error {
	data, err := encode(v)
	if err != nil {
		return err
	}
	//nolint:gosec // table is a package constant
	q := fmt.Sprintf(`INSERT INTO %s (username, data) VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET data = excluded.data`, table)
	return s.exec(ctx, "put_"+table, q, userName, data)
}

func (s *Store) deleteUserDoc(ctx context.Context, table, userName string) error {
	//nolint:gosec // table is a package constant
	return s.exec(ctx, "delete_"+table, fmt.Sprintf(`DELETE FROM %s WHERE username = $1`, table), userName)
}

// GetSearchHistory implements storage.Driver.
func (s *Store) GetSearchHistory(ctx context.Context, userName string) ([]string, error) {
	var history []string
	if _, err := s.getUserDoc(ctx, tableSearch, userName, &history); err != nil {
		return nil, err
	}
	if history == nil {
		history = []string{}
	}
	return history, nil
}

// AddSearchHistory implements storage.Driver. Empty keywords are ignored.
func (s *Store) AddSearchHistory(ctx context.Context, userName, keyword string) error {
	if keyword == "" {
		return nil
	}
	history, err := s.GetSearchHistory(ctx, userName)
	if err != nil {
		return err
	}
	return s.putUserDoc(ctx, tableSearch, userName, models.PushSearchKeyword(history, keyword))
}

// DeleteSearchHistory implements storage.Driver.
func (s *Store) DeleteSearchHistory(ctx context.Context, userName, keyword string) error {
	if keyword == "" {
		return s.deleteUserDoc(ctx, tableSearch, userName)
	}
	history, err := s.GetSearchHistory(ctx, userName)
	if err != nil {
		return err
	}
	kept := models.RemoveSearchKeyword(history, keyword)
	if len(kept) == len(history) {
		return nil
	}
	return s.putUserDoc(ctx, tableSearch, userName, kept)
}

// GetDanmakuFilterConfig implements storage.DanmakuFilterStore.
func (s *Store) GetDanmakuFilterConfig(ctx context.Context, userName string) (*models.DanmakuFilterConfig, error) {
	var cfg models.DanmakuFilterConfig
	found, err := s.getUserDoc(ctx, tableDanmaku, userName, &cfg)
	if err != nil || !found {
		return nil, err
	}
	return &cfg, nil
}

// SetDanmakuFilterConfig implements storage.DanmakuFilterStore.
func (s *Store) SetDanmakuFilterConfig(ctx context.Context, userName string, cfg *models.DanmakuFilterConfig) error {
	return s.putUserDoc(ctx, tableDanmaku, userName, cfg)
}

// DeleteDanmakuFilterConfig implements storage.DanmakuFilterStore.
func (s *Store) DeleteDanmakuFilterConfig(ctx context.Context, userName string) error {
	return s.deleteUserDoc(ctx, tableDanmaku, userName)
}
