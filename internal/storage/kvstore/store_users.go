// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package kvstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/cinevault/internal/models"
	"github.com/tomtom215/cinevault/internal/storage"
)

// userRecord is the stored form of a V2 account.
type userRecord struct {
	models.UserInfoV2
	PasswordHash string `json:"password_hash,omitempty"`
}

func (s *Store) loadUser(ctx context.Context, userName string) (*userRecord, error) {
	var rec userRecord
	ok, err := s.getJSON(ctx, userInfoKey(userName), &rec)
	if err != nil || !ok {
		return nil, err
	}
	rec.Username = userName
	return &rec, nil
}

// VerifyUser implements storage.Driver.
func (s *Store) VerifyUser(ctx context.Context, userName, password string) (bool, error) {
	hash, ok, err := s.backend.Get(ctx, passwordKey(userName))
	if err != nil {
		return false, fmt.Errorf("get password for %q: %w", userName, err)
	}
	return ok && checkPassword(string(hash), password), nil
}

// CheckUserExist implements storage.Driver.
func (s *Store) CheckUserExist(ctx context.Context, userName string) (bool, error) {
	return s.exists(ctx, passwordKey(userName))
}

// ChangePassword implements storage.Driver.
func (s *Store) ChangePassword(ctx context.Context, userName, newPassword string) error {
	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.backend.Set(ctx, passwordKey(userName), []byte(hash), 0); err != nil {
		return fmt.Errorf("set password for %q: %w", userName, err)
	}
	return nil
}

// DeleteUser implements storage.Driver. It removes the account in both
// account systems along with every record the user owns.
func (s *Store) DeleteUser(ctx context.Context, userName string) error {
	return s.purgeUser(ctx, userName)
}

// CreateUserV2 implements storage.UserStoreV2.
func (s *Store) CreateUserV2(ctx context.Context, user storage.NewUserV2) error {
	exists, err := s.exists(ctx, userInfoKey(user.Username))
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("create user %q: %w", user.Username, storage.ErrUserExists)
	}

	rec := userRecord{UserInfoV2: models.UserInfoV2{
		Username:    user.Username,
		Role:        user.Role,
		Tags:        user.Tags,
		OidcSub:     user.OidcSub,
		EnabledApis: user.EnabledApis,
		CreatedAt:   s.nowMillis(),
	}}
	if rec.Role == "" {
		rec.Role = models.RoleUser
	}
	if user.Password != "" {
		if rec.PasswordHash, err = s.hashPassword(user.Password); err != nil {
			return err
		}
	}

	if err := s.setJSON(ctx, userInfoKey(user.Username), &rec); err != nil {
		return err
	}
	if user.OidcSub != "" {
		if err := s.backend.Set(ctx, oidcKey(user.OidcSub), []byte(user.Username), 0); err != nil {
			return fmt.Errorf("index oidc subject: %w", err)
		}
	}
	return nil
}

// VerifyUserV2 implements storage.UserStoreV2.
func (s *Store) VerifyUserV2(ctx context.Context, userName, password string) (bool, error) {
	rec, err := s.loadUser(ctx, userName)
	if err != nil || rec == nil {
		return false, err
	}
	return checkPassword(rec.PasswordHash, password), nil
}

// GetUserInfoV2 implements storage.UserStoreV2.
func (s *Store) GetUserInfoV2(ctx context.Context, userName string) (*models.UserInfoV2, error) {
	rec, err := s.loadUser(ctx, userName)
	if err != nil || rec == nil {
		return nil, err
	}
	return &rec.UserInfoV2, nil
}

// UpdateUserInfoV2 implements storage.UserStoreV2.
func (s *Store) UpdateUserInfoV2(ctx context.Context, userName string, info *models.UserInfoV2) error {
	if info == nil {
		return fmt.Errorf("update user %q: %w: nil profile", userName, storage.ErrInvalidInput)
	}
	rec, err := s.loadUser(ctx, userName)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("update user %q: %w", userName, storage.ErrUserNotFound)
	}

	previousSub := rec.OidcSub
	updated := info.Clone()
	updated.Username = userName
	updated.CreatedAt = rec.CreatedAt
	if updated.Role == "" {
		updated.Role = rec.Role
	}
	rec.UserInfoV2 = *updated

	if err := s.setJSON(ctx, userInfoKey(userName), rec); err != nil {
		return err
	}
	return s.reindexOidc(ctx, userName, previousSub, rec.OidcSub)
}

func (s *Store) reindexOidc(ctx context.Context, userName, previous, current string) error {
	if previous == current {
		return nil
	}
	if previous != "" {
		owner, ok, err := s.backend.Get(ctx, oidcKey(previous))
		if err != nil {
			return fmt.Errorf("get oidc subject: %w", err)
		}
		if ok && string(owner) == userName {
			if err := s.delete(ctx, oidcKey(previous)); err != nil {
				return err
			}
		}
	}
	if current != "" {
		if err := s.backend.Set(ctx, oidcKey(current), []byte(userName), 0); err != nil {
			return fmt.Errorf("index oidc subject: %w", err)
		}
	}
	return nil
}

// ChangePasswordV2 implements storage.UserStoreV2.
func (s *Store) ChangePasswordV2(ctx context.Context, userName, newPassword string) error {
	rec, err := s.loadUser(ctx, userName)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("change password for %q: %w", userName, storage.ErrUserNotFound)
	}
	if rec.PasswordHash, err = s.hashPassword(newPassword); err != nil {
		return err
	}
	return s.setJSON(ctx, userInfoKey(userName), rec)
}

// CheckUserExistV2 implements storage.UserStoreV2.
func (s *Store) CheckUserExistV2(ctx context.Context, userName string) (bool, error) {
	return s.exists(ctx, userInfoKey(userName))
}

// GetUserListV2 implements storage.UserStoreV2.
func (s *Store) GetUserListV2(ctx context.Context, offset, limit int, ownerUsername string) (*models.UserListPage, error) {
	users, err := s.allUsersV2(ctx)
	if err != nil {
		return nil, err
	}
	return models.PageUsers(users, offset, limit, ownerUsername), nil
}

// DeleteUserV2 implements storage.UserStoreV2.
func (s *Store) DeleteUserV2(ctx context.Context, userName string) error {
	return s.purgeUser(ctx, userName)
}

func (s *Store) purgeUser(ctx context.Context, userName string) error {
	rec, err := s.loadUser(ctx, userName)
	if err != nil {
		return err
	}
	if rec != nil {
		if err := s.reindexOidc(ctx, userName, rec.OidcSub, ""); err != nil {
			return err
		}
	}

	keys, err := s.keys(ctx, userPrefix(userName))
	if err != nil {
		return err
	}
	keys = append(keys, passwordKey(userName), userInfoKey(userName))
	if err := s.delete(ctx, keys...); err != nil {
		return err
	}
	s.logger.Debug().Int("keys", len(keys)).Msg("user data purged")
	return nil
}

// GetUserByOidcSub implements storage.OidcUserLookup.
func (s *Store) GetUserByOidcSub(ctx context.Context, oidcSub string) (string, bool, error) {
	if oidcSub == "" {
		return "", false, nil
	}
	raw, ok, err := s.backend.Get(ctx, oidcKey(oidcSub))
	if err != nil {
		return "", false, fmt.Errorf("get oidc subject: %w", err)
	}
	return string(raw), ok, nil
}

// GetAllUsers implements storage.UserDirectory. It lists accounts from both
// account systems, sorted by name.
func (s *Store) GetAllUsers(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	for _, prefix := range []string{passwordPrefix, userInfoPrefix} {
		keys, err := s.keys(ctx, prefix)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			seen[unescapeUser(strings.TrimPrefix(k, prefix))] = struct{}{}
		}
	}

	users := make([]string, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Strings(users)
	return users, nil
}

// GetUsersByTag implements storage.UserDirectory.
func (s *Store) GetUsersByTag(ctx context.Context, tag string) ([]string, error) {
	all, err := s.allUsersV2(ctx)
	if err != nil {
		return nil, err
	}
	users := []string{}
	for i := range all {
		if all[i].HasTag(tag) {
			users = append(users, all[i].Username)
		}
	}
	sort.Strings(users)
	return users, nil
}

func (s *Store) allUsersV2(ctx context.Context) ([]models.UserInfoV2, error) {
	records, err := getAll[userRecord](ctx, s, userInfoPrefix)
	if err != nil {
		return nil, err
	}
	users := make([]models.UserInfoV2, 0, len(records))
	for escaped, rec := range records {
		info := rec.UserInfoV2
		info.Username = unescapeUser(escaped)
		users = append(users, info)
	}
	return users, nil
}
