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

// NewUserV2 describes a V2 account to create.
type NewUserV2 struct {
	Username    string      `validate:"required"`
	Password    string      // May be empty for accounts bound to an OIDC subject
	Role        models.Role `validate:"omitempty,role"`
	Tags        []string
	OidcSub     string
	EnabledApis []string
}

// UserStoreV2 is the extended account system.
type UserStoreV2 interface {
	CreateUserV2(ctx context.Context, user NewUserV2) error
	VerifyUserV2(ctx context.Context, userName, password string) (bool, error)

	// GetUserInfoV2 returns nil when the user does not exist.
	GetUserInfoV2(ctx context.Context, userName string) (*models.UserInfoV2, error)

	// UpdateUserInfoV2 replaces the profile fields of an existing user.
	// Password and CreatedAt are preserved. Returns ErrUserNotFound when absent.
	UpdateUserInfoV2(ctx context.Context, userName string, info *models.UserInfoV2) error

	ChangePasswordV2(ctx context.Context, userName, newPassword string) error
	CheckUserExistV2(ctx context.Context, userName string) (bool, error)

	// GetUserListV2 returns one page ordered by creation time. When
	// ownerUsername names an existing user, that user is pinned first.
	GetUserListV2(ctx context.Context, offset, limit int, ownerUsername string) (*models.UserListPage, error)

	DeleteUserV2(ctx context.Context, userName string) error
}

// OidcUserLookup resolves the account bound to an external identity subject.
type OidcUserLookup interface {
	GetUserByOidcSub(ctx context.Context, oidcSub string) (string, bool, error)
}

// UserDirectory enumerates accounts.
type UserDirectory interface {
	GetAllUsers(ctx context.Context) ([]string, error)
	GetUsersByTag(ctx context.Context, tag string) ([]string, error)
}

// ConfigMigrator imports configuration-declared users into the V2 system.
type ConfigMigrator interface {
	MigrateUsersFromConfig(ctx context.Context, cfg *models.AdminConfig) error
}

// RecordMigrator moves a user's legacy single-document records into the
// per-record layout.
type RecordMigrator interface {
	MigratePlayRecords(ctx context.Context, userName string) error
	MigrateFavorites(ctx context.Context, userName string) error
	MigrateSkipConfigs(ctx context.Context, userName string) error
}

// AdminConfigStore persists the process-wide settings document.
type AdminConfigStore interface {
	GetAdminConfig(ctx context.Context) (*models.AdminConfig, error)
	SetAdminConfig(ctx context.Context, cfg *models.AdminConfig) error
}

// SkipConfigStore persists per-title skip ranges.
type SkipConfigStore interface {
	GetSkipConfig(ctx context.Context, userName, key string) (*models.SkipConfig, error)
	SetSkipConfig(ctx context.Context, userName, key string, cfg *models.SkipConfig) error
	DeleteSkipConfig(ctx context.Context, userName, key string) error
	GetAllSkipConfigs(ctx context.Context, userName string) (map[string]*models.SkipConfig, error)
}

// DanmakuFilterStore persists the per-user danmaku filter document.
type DanmakuFilterStore interface {
	GetDanmakuFilterConfig(ctx context.Context, userName string) (*models.DanmakuFilterConfig, error)
	SetDanmakuFilterConfig(ctx context.Context, userName string, cfg *models.DanmakuFilterConfig) error
	DeleteDanmakuFilterConfig(ctx context.Context, userName string) error
}

// DataClearer wipes every record the driver owns.
type DataClearer interface {
	ClearAllData(ctx context.Context) error
}

// GlobalValueStore persists namespace-free string pairs.
type GlobalValueStore interface {
	GetGlobalValue(ctx context.Context, key string) (string, bool, error)
	SetGlobalValue(ctx context.Context, key, value string) error
	DeleteGlobalValue(ctx context.Context, key string) error
}

// RawKV exposes the backend's plain key/value primitives. A ttl of zero means
// the entry never expires. Expired entries read as absent.
type RawKV interface {
	RawGet(ctx context.Context, key string) (string, bool, error)
	RawSet(ctx context.Context, key, value string, ttl time.Duration) error
	RawDelete(ctx context.Context, key string) error
}

// AtomicTaker is implemented by RawKV backends that can read and remove a key
// in a single backend operation.
type AtomicTaker interface {
	RawTake(ctx context.Context, key string) (string, bool, error)
}

// Capabilities reports which optional interfaces the active driver implements.
type Capabilities struct {
	UserStoreV2     bool `json:"user_store_v2"`
	OidcLookup      bool `json:"oidc_lookup"`
	UserDirectory   bool `json:"user_directory"`
	ConfigMigration bool `json:"config_migration"`
	RecordMigration bool `json:"record_migration"`
	AdminConfig     bool `json:"admin_config"`
	SkipConfig      bool `json:"skip_config"`
	DanmakuFilter   bool `json:"danmaku_filter"`
	ClearAllData    bool `json:"clear_all_data"`
	GlobalValues    bool `json:"global_values"`
	RawKV           bool `json:"raw_kv"`
	AtomicTake      bool `json:"atomic_take"`
}

// Names lists the present capabilities in a stable order.
func (c Capabilities) Names() []string {
	var names []string
	add := func(present bool, name string) {
		if present {
			names = append(names, name)
		}
	}
	add(c.UserStoreV2, "user_store_v2")
	add(c.OidcLookup, "oidc_lookup")
	add(c.UserDirectory, "user_directory")
	add(c.ConfigMigration, "config_migration")
	add(c.RecordMigration, "record_migration")
	add(c.AdminConfig, "admin_config")
	add(c.SkipConfig, "skip_config")
	add(c.DanmakuFilter, "danmaku_filter")
	add(c.ClearAllData, "clear_all_data")
	add(c.GlobalValues, "global_values")
	add(c.RawKV, "raw_kv")
	add(c.AtomicTake, "atomic_take")
	return names
}
