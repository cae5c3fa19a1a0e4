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

type listParams struct {
	Offset int `validate:"min=0"`
	Limit  int `validate:"min=1"`
}

type profileParams struct {
	Role models.Role `validate:"omitempty,role"`
}

// VerifyUser checks a legacy account password.
func (m *Manager) VerifyUser(ctx context.Context, userName, password string) (ok bool, err error) {
	defer m.track("VerifyUser", time.Now(), &err)
	return m.driver.VerifyUser(ctx, userName, password)
}

// CheckUserExist reports whether a legacy account exists.
func (m *Manager) CheckUserExist(ctx context.Context, userName string) (ok bool, err error) {
	defer m.track("CheckUserExist", time.Now(), &err)
	return m.driver.CheckUserExist(ctx, userName)
}

// ChangePassword sets a legacy account password, creating the account if needed.
func (m *Manager) ChangePassword(ctx context.Context, userName, newPassword string) (err error) {
	defer m.track("ChangePassword", time.Now(), &err)
	defer func() { m.accountEvent("password_changed", userName, err) }()
	return m.driver.ChangePassword(ctx, userName, newPassword)
}

// DeleteUser removes a legacy account and every record the user owns.
func (m *Manager) DeleteUser(ctx context.Context, userName string) (err error) {
	defer m.track("DeleteUser", time.Now(), &err)
	defer func() { m.accountEvent("user_deleted", userName, err) }()
	return m.driver.DeleteUser(ctx, userName)
}

// CreateUserV2 creates an extended account. An empty role defaults to user.
func (m *Manager) CreateUserV2(ctx context.Context, user NewUserV2) (err error) {
	if err := validate("CreateUserV2", &user); err != nil {
		return err
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if m.userV2 == nil {
		m.unsupported("CreateUserV2")
		return nil
	}
	defer m.track("CreateUserV2", time.Now(), &err)
	defer func() { m.accountEvent("user_created", user.Username, err) }()
	return m.userV2.CreateUserV2(ctx, user)
}

// VerifyUserV2 checks an extended account password.
func (m *Manager) VerifyUserV2(ctx context.Context, userName, password string) (ok bool, err error) {
	if m.userV2 == nil {
		m.unsupported("VerifyUserV2")
		return false, nil
	}
	defer m.track("VerifyUserV2", time.Now(), &err)
	return m.userV2.VerifyUserV2(ctx, userName, password)
}

// GetUserInfoV2 returns the extended profile, or nil.
func (m *Manager) GetUserInfoV2(ctx context.Context, userName string) (info *models.UserInfoV2, err error) {
	if m.userV2 == nil {
		m.unsupported("GetUserInfoV2")
		return nil, nil
	}
	defer m.track("GetUserInfoV2", time.Now(), &err)
	return m.userV2.GetUserInfoV2(ctx, userName)
}

// UpdateUserInfoV2 replaces the profile fields of an existing account.
func (m *Manager) UpdateUserInfoV2(ctx context.Context, userName string, info *models.UserInfoV2) (err error) {
	if info != nil {
		if err := validate("UpdateUserInfoV2", &profileParams{Role: info.Role}); err != nil {
			return err
		}
	}
	if m.userV2 == nil {
		m.unsupported("UpdateUserInfoV2")
		return nil
	}
	defer m.track("UpdateUserInfoV2", time.Now(), &err)
	return m.userV2.UpdateUserInfoV2(ctx, userName, info)
}

// ChangePasswordV2 sets an extended account password.
func (m *Manager) ChangePasswordV2(ctx context.Context, userName, newPassword string) (err error) {
	if m.userV2 == nil {
		m.unsupported("ChangePasswordV2")
		return nil
	}
	defer m.track("ChangePasswordV2", time.Now(), &err)
	defer func() { m.accountEvent("password_changed", userName, err) }()
	return m.userV2.ChangePasswordV2(ctx, userName, newPassword)
}

// CheckUserExistV2 reports whether an extended account exists.
func (m *Manager) CheckUserExistV2(ctx context.Context, userName string) (ok bool, err error) {
	if m.userV2 == nil {
		m.unsupported("CheckUserExistV2")
		return false, nil
	}
	defer m.track("CheckUserExistV2", time.Now(), &err)
	return m.userV2.CheckUserExistV2(ctx, userName)
}

// GetUserByOidcSub returns the account bound to an OIDC subject.
func (m *Manager) GetUserByOidcSub(ctx context.Context, oidcSub string) (userName string, ok bool, err error) {
	if m.oidc == nil {
		m.unsupported("GetUserByOidcSub")
		return "", false, nil
	}
	defer m.track("GetUserByOidcSub", time.Now(), &err)
	return m.oidc.GetUserByOidcSub(ctx, oidcSub)
}

// GetUserListV2 returns one page of extended accounts plus the total count.
// offset must be >= 0 and limit > 0.
func (m *Manager) GetUserListV2(ctx context.Context, offset, limit int, ownerUsername string) (page *models.UserListPage, err error) {
	if err := validate("GetUserListV2", &listParams{Offset: offset, Limit: limit}); err != nil {
		return nil, err
	}
	if m.userV2 == nil {
		m.unsupported("GetUserListV2")
		return &models.UserListPage{Users: []models.UserInfoV2{}}, nil
	}
	defer m.track("GetUserListV2", time.Now(), &err)
	return m.userV2.GetUserListV2(ctx, offset, limit, ownerUsername)
}

// DeleteUserV2 removes an extended account and every record the user owns.
func (m *Manager) DeleteUserV2(ctx context.Context, userName string) (err error) {
	if m.userV2 == nil {
		m.unsupported("DeleteUserV2")
		return nil
	}
	defer m.track("DeleteUserV2", time.Now(), &err)
	defer func() { m.accountEvent("user_deleted", userName, err) }()
	return m.userV2.DeleteUserV2(ctx, userName)
}

// GetAllUsers lists every known username.
func (m *Manager) GetAllUsers(ctx context.Context) (users []string, err error) {
	if m.dir == nil {
		m.unsupported("GetAllUsers")
		return []string{}, nil
	}
	defer m.track("GetAllUsers", time.Now(), &err)
	return m.dir.GetAllUsers(ctx)
}

// GetUsersByTag lists the usernames carrying tag.
func (m *Manager) GetUsersByTag(ctx context.Context, tag string) (users []string, err error) {
	if m.dir == nil {
		m.unsupported("GetUsersByTag")
		return []string{}, nil
	}
	defer m.track("GetUsersByTag", time.Now(), &err)
	return m.dir.GetUsersByTag(ctx, tag)
}

// MigrateUsersFromConfig imports config-declared users into the extended account system.
func (m *Manager) MigrateUsersFromConfig(ctx context.Context, cfg *models.AdminConfig) (err error) {
	if m.cfgMig == nil {
		m.unsupported("MigrateUsersFromConfig")
		return nil
	}
	defer m.track("MigrateUsersFromConfig", time.Now(), &err)
	return m.cfgMig.MigrateUsersFromConfig(ctx, cfg)
}

// MigratePlayRecords moves the user's legacy play record document into per-record keys.
func (m *Manager) MigratePlayRecords(ctx context.Context, userName string) (err error) {
	if m.recMig == nil {
		m.unsupported("MigratePlayRecords")
		return nil
	}
	defer m.track("MigratePlayRecords", time.Now(), &err)
	return m.recMig.MigratePlayRecords(ctx, userName)
}

// MigrateFavorites moves the user's legacy favorites document into per-record keys.
func (m *Manager) MigrateFavorites(ctx context.Context, userName string) (err error) {
	if m.recMig == nil {
		m.unsupported("MigrateFavorites")
		return nil
	}
	defer m.track("MigrateFavorites", time.Now(), &err)
	return m.recMig.MigrateFavorites(ctx, userName)
}

// MigrateSkipConfigs moves the user's legacy skip config document into per-record keys.
func (m *Manager) MigrateSkipConfigs(ctx context.Context, userName string) (err error) {
	if m.recMig == nil {
		m.unsupported("MigrateSkipConfigs")
		return nil
	}
	defer m.track("MigrateSkipConfigs", time.Now(), &err)
	return m.recMig.MigrateSkipConfigs(ctx, userName)
}
