// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/cinevault/internal/models"
)

// GetAdminConfig returns the process-wide settings document, or nil.
func (m *Manager) GetAdminConfig(ctx context.Context) (cfg *models.AdminConfig, err error) {
	if m.admin == nil {
		m.unsupported("GetAdminConfig")
		return nil, nil
	}
	defer m.track("GetAdminConfig", time.Now(), &err)
	return m.admin.GetAdminConfig(ctx)
}

// SaveAdminConfig replaces the process-wide settings document.
func (m *Manager) SaveAdminConfig(ctx context.Context, cfg *models.AdminConfig) (err error) {
	if m.admin == nil {
		m.unsupported("SaveAdminConfig")
		return nil
	}
	defer m.track("SaveAdminConfig", time.Now(), &err)
	return m.admin.SetAdminConfig(ctx, cfg)
}

// ClearAllData wipes every record in the backend. Unlike the other optional
// operations it fails with ErrUnsupported when the driver cannot do it.
func (m *Manager) ClearAllData(ctx context.Context) (err error) {
	defer m.track("ClearAllData", time.Now(), &err)
	if m.clearer == nil {
		return fmt.Errorf("ClearAllData on %s backend: %w", m.kind, ErrUnsupported)
	}
	if err = m.clearer.ClearAllData(ctx); err != nil {
		return err
	}
	m.logger.Warn().Str("backend", m.kind).Msg("all storage data cleared")
	return nil
}

// GetGlobalValue returns a global value and whether it exists.
func (m *Manager) GetGlobalValue(ctx context.Context, key string) (value string, ok bool, err error) {
	if m.globals == nil {
		m.unsupported("GetGlobalValue")
		return "", false, nil
	}
	defer m.track("GetGlobalValue", time.Now(), &err)
	return m.globals.GetGlobalValue(ctx, key)
}

// SetGlobalValue stores a global value.
func (m *Manager) SetGlobalValue(ctx context.Context, key, value string) (err error) {
	if m.globals == nil {
		m.unsupported("SetGlobalValue")
		return nil
	}
	defer m.track("SetGlobalValue", time.Now(), &err)
	return m.globals.SetGlobalValue(ctx, key, value)
}

// DeleteGlobalValue removes a global value.
func (m *Manager) DeleteGlobalValue(ctx context.Context, key string) (err error) {
	if m.globals == nil {
		m.unsupported("DeleteGlobalValue")
		return nil
	}
	defer m.track("DeleteGlobalValue", time.Now(), &err)
	return m.globals.DeleteGlobalValue(ctx, key)
}
