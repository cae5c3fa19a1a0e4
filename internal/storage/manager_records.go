// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package storage

import (
	"context"
	"time"

	"github.com/tomtom215/cinevault/internal/models"
)

// GetPlayRecord returns the play record for (source, id), or nil.
func (m *Manager) GetPlayRecord(ctx context.Context, userName, source, id string) (rec *models.PlayRecord, err error) {
	defer m.track("GetPlayRecord", time.Now(), &err)
	return m.driver.GetPlayRecord(ctx, userName, Key(source, id))
}

// SavePlayRecord stores record under (source, id), replacing any previous one.
func (m *Manager) SavePlayRecord(ctx context.Context, userName, source, id string, record *models.PlayRecord) (err error) {
	defer m.track("SavePlayRecord", time.Now(), &err)
	return m.driver.SetPlayRecord(ctx, userName, Key(source, id), record)
}

// GetAllPlayRecords returns every play record of the user keyed by Key(source, id).
func (m *Manager) GetAllPlayRecords(ctx context.Context, userName string) (recs map[string]*models.PlayRecord, err error) {
	defer m.track("GetAllPlayRecords", time.Now(), &err)
	return m.driver.GetAllPlayRecords(ctx, userName)
}

// DeletePlayRecord removes the play record for (source, id).
func (m *Manager) DeletePlayRecord(ctx context.Context, userName, source, id string) (err error) {
	defer m.track("DeletePlayRecord", time.Now(), &err)
	return m.driver.DeletePlayRecord(ctx, userName, Key(source, id))
}

// GetFavorite returns the favorite for (source, id), or nil.
func (m *Manager) GetFavorite(ctx context.Context, userName, source, id string) (fav *models.Favorite, err error) {
	defer m.track("GetFavorite", time.Now(), &err)
	return m.driver.GetFavorite(ctx, userName, Key(source, id))
}

// SaveFavorite stores favorite under (source, id).
func (m *Manager) SaveFavorite(ctx context.Context, userName, source, id string, favorite *models.Favorite) (err error) {
	defer m.track("SaveFavorite", time.Now(), &err)
	return m.driver.SetFavorite(ctx, userName, Key(source, id), favorite)
}

// GetAllFavorites returns every favorite of the user keyed by Key(source, id).
func (m *Manager) GetAllFavorites(ctx context.Context, userName string) (favs map[string]*models.Favorite, err error) {
	defer m.track("GetAllFavorites", time.Now(), &err)
	return m.driver.GetAllFavorites(ctx, userName)
}

// DeleteFavorite removes the favorite for (source, id).
func (m *Manager) DeleteFavorite(ctx context.Context, userName, source, id string) (err error) {
	defer m.track("DeleteFavorite", time.Now(), &err)
	return m.driver.DeleteFavorite(ctx, userName, Key(source, id))
}

// IsFavorited reports whether a favorite exists for (source, id).
func (m *Manager) IsFavorited(ctx context.Context, userName, source, id string) (ok bool, err error) {
	defer m.track("IsFavorited", time.Now(), &err)
	fav, err := m.driver.GetFavorite(ctx, userName, Key(source, id))
	if err != nil {
		return false, err
	}
	return fav != nil, nil
}

// GetSearchHistory returns the user's keywords, most recent first.
func (m *Manager) GetSearchHistory(ctx context.Context, userName string) (keywords []string, err error) {
	defer m.track("GetSearchHistory", time.Now(), &err)
	return m.driver.GetSearchHistory(ctx, userName)
}

// AddSearchHistory moves keyword to the front of the user's history.
func (m *Manager) AddSearchHistory(ctx context.Context, userName, keyword string) (err error) {
	defer m.track("AddSearchHistory", time.Now(), &err)
	return m.driver.AddSearchHistory(ctx, userName, keyword)
}

// DeleteSearchHistory removes keyword, or the whole history when keyword is empty.
func (m *Manager) DeleteSearchHistory(ctx context.Context, userName, keyword string) (err error) {
	defer m.track("DeleteSearchHistory", time.Now(), &err)
	return m.driver.DeleteSearchHistory(ctx, userName, keyword)
}

// GetSkipConfig returns the skip config for (source, id), or nil.
func (m *Manager) GetSkipConfig(ctx context.Context, userName, source, id string) (cfg *models.SkipConfig, err error) {
	if m.skip == nil {
		m.unsupported("GetSkipConfig")
		return nil, nil
	}
	defer m.track("GetSkipConfig", time.Now(), &err)
	return m.skip.GetSkipConfig(ctx, userName, Key(source, id))
}

// SetSkipConfig stores cfg under (source, id).
func (m *Manager) SetSkipConfig(ctx context.Context, userName, source, id string, cfg *models.SkipConfig) (err error) {
	if m.skip == nil {
		m.unsupported("SetSkipConfig")
		return nil
	}
	defer m.track("SetSkipConfig", time.Now(), &err)
	return m.skip.SetSkipConfig(ctx, userName, Key(source, id), cfg)
}

// DeleteSkipConfig removes the skip config for (source, id).
func (m *Manager) DeleteSkipConfig(ctx context.Context, userName, source, id string) (err error) {
	if m.skip == nil {
		m.unsupported("DeleteSkipConfig")
		return nil
	}
	defer m.track("DeleteSkipConfig", time.Now(), &err)
	return m.skip.DeleteSkipConfig(ctx, userName, Key(source, id))
}

// GetAllSkipConfigs returns every skip config of the user keyed by Key(source, id).
func (m *Manager) GetAllSkipConfigs(ctx context.Context, userName string) (cfgs map[string]*models.SkipConfig, err error) {
	if m.skip == nil {
		m.unsupported("GetAllSkipConfigs")
		return map[string]*models.SkipConfig{}, nil
	}
	defer m.track("GetAllSkipConfigs", time.Now(), &err)
	return m.skip.GetAllSkipConfigs(ctx, userName)
}

// GetDanmakuFilterConfig returns the user's danmaku filter document, or nil.
func (m *Manager) GetDanmakuFilterConfig(ctx context.Context, userName string) (cfg *models.DanmakuFilterConfig, err error) {
	if m.danmaku == nil {
		m.unsupported("GetDanmakuFilterConfig")
		return nil, nil
	}
	defer m.track("GetDanmakuFilterConfig", time.Now(), &err)
	return m.danmaku.GetDanmakuFilterConfig(ctx, userName)
}

// SetDanmakuFilterConfig replaces the user's danmaku filter document.
func (m *Manager) SetDanmakuFilterConfig(ctx context.Context, userName string, cfg *models.DanmakuFilterConfig) (err error) {
	if m.danmaku == nil {
		m.unsupported("SetDanmakuFilterConfig")
		return nil
	}
	defer m.track("SetDanmakuFilterConfig", time.Now(), &err)
	return m.danmaku.SetDanmakuFilterConfig(ctx, userName, cfg)
}

// DeleteDanmakuFilterConfig removes the user's danmaku filter document.
func (m *Manager) DeleteDanmakuFilterConfig(ctx context.Context, userName string) (err error) {
	if m.danmaku == nil {
		m.unsupported("DeleteDanmakuFilterConfig")
		return nil
	}
	defer m.track("DeleteDanmakuFilterConfig", time.Now(), &err)
	return m.danmaku.DeleteDanmakuFilterConfig(ctx, userName)
}
