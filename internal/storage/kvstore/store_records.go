// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package kvstore

import (
	"context"

	"github.com/tomtom215/cinevault/internal/models"
)

// GetPlayRecord implements storage.Driver.
func (s *Store) GetPlayRecord(ctx context.Context, userName, key string) (*models.PlayRecord, error) {
	var rec models.PlayRecord
	ok, err := s.getJSON(ctx, playRecordPrefix(userName)+key, &rec)
	if err != nil || !ok {
		return nil, err
	}
	return &rec, nil
}

// SetPlayRecord implements storage.Driver.
func (s *Store) SetPlayRecord(ctx context.Context, userName, key string, record *models.PlayRecord) error {
	return s.setJSON(ctx, playRecordPrefix(userName)+key, record)
}

// GetAllPlayRecords implements storage.Driver.
func (s *Store) GetAllPlayRecords(ctx context.Context, userName string) (map[string]*models.PlayRecord, error) {
	return getAll[models.PlayRecord](ctx, s, playRecordPrefix(userName))
}

// DeletePlayRecord implements storage.Driver.
func (s *Store) DeletePlayRecord(ctx context.Context, userName, key string) error {
	return s.delete(ctx, playRecordPrefix(userName)+key)
}

// GetFavorite implements storage.Driver.
func (s *Store) GetFavorite(ctx context.Context, userName, key string) (*models.Favorite, error) {
	var fav models.Favorite
	ok, err := s.getJSON(ctx, favoritePrefix(userName)+key, &fav)
	if err != nil || !ok {
		return nil, err
	}
	return &fav, nil
}

// SetFavorite implements storage.Driver.
func (s *Store) SetFavorite(ctx context.Context, userName, key string, favorite *models.Favorite) error {
	return s.setJSON(ctx, favoritePrefix(userName)+key, favorite)
}

// GetAllFavorites implements storage.Driver.
func (s *Store) GetAllFavorites(ctx context.Context, userName string) (map[string]*models.Favorite, error) {
	return getAll[models.Favorite](ctx, s, favoritePrefix(userName))
}

// DeleteFavorite implements storage.Driver.
func (s *Store) DeleteFavorite(ctx context.Context, userName, key string) error {
	return s.delete(ctx, favoritePrefix(userName)+key)
}

// GetSkipConfig implements storage.SkipConfigStore.
func (s *Store) GetSkipConfig(ctx context.Context, userName, key string) (*models.SkipConfig, error) {
	var cfg models.SkipConfig
	ok, err := s.getJSON(ctx, skipConfigPrefix(userName)+key, &cfg)
	if err != nil || !ok {
		return nil, err
	}
	return &cfg, nil
}

// SetSkipConfig implements storage.SkipConfigStore.
func (s *Store) SetSkipConfig(ctx context.Context, userName, key string, cfg *models.SkipConfig) error {
	return s.setJSON(ctx, skipConfigPrefix(userName)+key, cfg)
}

// DeleteSkipConfig implements storage.SkipConfigStore.
func (s *Store) DeleteSkipConfig(ctx context.Context, userName, key string) error {
	return s.delete(ctx, skipConfigPrefix(userName)+key)
}

// GetAllSkipConfigs implements storage.SkipConfigStore.
func (s *Store) GetAllSkipConfigs(ctx context.Context, userName string) (map[string]*models.SkipConfig, error) {
	return getAll[models.SkipConfig](ctx, s, skipConfigPrefix(userName))
}

// GetSearchHistory implements storage.Driver.
func (s *Store) GetSearchHistory(ctx context.Context, userName string) ([]string, error) {
	var history []string
	if _, err := s.getJSON(ctx, searchHistoryKey(userName), &history); err != nil {
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
	return s.setJSON(ctx, searchHistoryKey(userName), models.PushSearchKeyword(history, keyword))
}

// DeleteSearchHistory implements storage.Driver.
func (s *Store) DeleteSearchHistory(ctx context.Context, userName, keyword string) error {
	if keyword == "" {
		return s.delete(ctx, searchHistoryKey(userName))
	}
	history, err := s.GetSearchHistory(ctx, userName)
	if err != nil {
		return err
	}
	kept := models.RemoveSearchKeyword(history, keyword)
	if len(kept) == len(history) {
		return nil
	}
	return s.setJSON(ctx, searchHistoryKey(userName), kept)
}

// GetDanmakuFilterConfig implements storage.DanmakuFilterStore.
func (s *Store) GetDanmakuFilterConfig(ctx context.Context, userName string) (*models.DanmakuFilterConfig, error) {
	var cfg models.DanmakuFilterConfig
	ok, err := s.getJSON(ctx, danmakuKey(userName), &cfg)
	if err != nil || !ok {
		return nil, err
	}
	return &cfg, nil
}

// SetDanmakuFilterConfig implements storage.DanmakuFilterStore.
func (s *Store) SetDanmakuFilterConfig(ctx context.Context, userName string, cfg *models.DanmakuFilterConfig) error {
	return s.setJSON(ctx, danmakuKey(userName), cfg)
}

// DeleteDanmakuFilterConfig implements storage.DanmakuFilterStore.
func (s *Store) DeleteDanmakuFilterConfig(ctx context.Context, userName string) error {
	return s.delete(ctx, danmakuKey(userName))
}
