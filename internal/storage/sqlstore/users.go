// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/tomtom215/cinevault/internal/models"
	"github.com/tomtom215/cinevault/internal/storage"
)

// userRow is a users_v2 row.
type userRow struct {
	info         models.UserInfoV2
	passwordHash string
}

func (s *Store) loadUser(ctx context.Context, userName string) (*userRow, error) {
	var hash, profile string
	found, err := s.queryRow(ctx, "get_user_v2",
		`SELECT password_hash, profile FROM users_v2 WHERE username = $1`,
		[]interface{}{userName}, &hash, &profile)
	if err != nil || !found {
		return nil, err
	}
	row := &userRow{passwordHash: hash}
	if err := decode(profile, &row.info); err != nil {
		return nil, fmt.Errorf("user %q: %w", userName, err)
	}
	row.info.Username = userName
	return row, nil
}

func (s *Store) saveUser(ctx context.Context, row *userRow) error {
	profile, err := encode(&row.info)
	if err != nil {
		return err
	}
	return s.exec(ctx, "put_user_v2",
		`INSERT INTO users_v2 (username, password_hash, oidc_sub, created_at, profile)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (username) DO UPDATE SET
			password_hash = excluded.password_hash,
			oidc_sub = excluded.oidc_sub,
			profile = excluded.profile`,
		row.info.Username, row.passwordHash, row.info.OidcSub, row.info.CreatedAt, profile)
}

// VerifyUser implements storage.Driver.
func (s *Store) VerifyUser(ctx context.Context, userName, password string) (bool, error) {
	var hash string
	found, err := s.queryRow(ctx, "get_user_v1",
		`SELECT password_hash FROM users_v1 WHERE username = $1`, []interface{}{userName}, &hash)
	if err != nil || !found {
		return false, err
	}
	return checkPassword(hash, password), nil
}

// CheckUserExist implements storage.Driver.
func (s *Store) CheckUserExist(ctx context.Context, userName string) (bool, error) {
	var one int
	return s.queryRow(ctx, "exists_user_v1",
		`SELECT 1 FROM users_v1 WHERE username = $1`, []interface{}{userName}, &one)
}

// ChangePassword implements storage.Driver.
func (s *Store) ChangePassword(ctx context.Context, userName, newPassword string) error {
	hash, err := s.hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.exec(ctx, "put_user_v1",
		`INSERT INTO users_v1 (username, password_hash) VALUES ($1, $2)
		ON CONFLICT (username) DO UPDATE SET password_hash = excluded.password_hash`,
		userName, hash)
}

// DeleteUser implements storage.Driver. It removes the account in both
// account systems along with every record the user owns.
func (s *Store) DeleteUser(ctx context.Context, userName string) error {
	return s.purgeUser(ctx, userName)
}

func (s *Store) purgeUser(ctx context.Context, userName string) error {
	return s.inTx(ctx, "purge_user", func(tx *sql.Tx) error {
		for _, table := range perUserTables {
			//nolint:gosec // table is a package constant
			q := s.dialect.rebind(fmt.Sprintf(`DELETE FROM %s WHERE username = $1`, table))
			if _, err := tx.ExecContext(ctx, q, userName); err != nil {
				return fmt.Errorf("purge %s for %q: %w", table, userName, err)
			}
		}
		return nil
	})
}

// CreateUserV2 implements storage.UserStoreV2.
func (s *Store) CreateUserV2(ctx context.Context, user storage.NewUserV2) error {
	exists, err := s.CheckUserExistV2(ctx, user.Username)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("create user %q: %w", user.Username, storage.ErrUserExists)
	}

	row := &userRow{info: models.UserInfoV2{
		Username:    user.Username,
		Role:        user.Role,
		Tags:        user.Tags,
		OidcSub:     user.OidcSub,
		EnabledApis: user.EnabledApis,
		CreatedAt:   s.clock.Now().UnixMilli(),
	}}
	if row.info.Role == "" {
		row.info.Role = models.RoleUser
	}
	if user.Password != "" {
		if row.passwordHash, err = s.hashPassword(user.Password); err != nil {
			return err
		}
	}
	return s.saveUser(ctx, row)
}

// VerifyUserV2 implements storage.UserStoreV2.
func (s *Store) VerifyUserV2(ctx context.Context, userName, password string) (bool, error) {
	row, err := s.loadUser(ctx, userName)
	if err != nil || row == nil {
		return false, err
	}
	return checkPassword(row.passwordHash, password), nil
}

// GetUserInfoV2 implements storage.UserStoreV2.
func (s *Store) GetUserInfoV2(ctx context.Context, userName string) (*models.UserInfoV2, error) {
	row, err := s.loadUser(ctx, userName)
	if err != nil || row == nil {
		return nil, err
	}
	return &row.info, nil
}

// UpdateUserInfoV2 implements storage.UserStoreV2.
func (s *Store) UpdateUserInfoV2(ctx context.Context, userName string, info *models.UserInfoV2) error {
	if info == nil {
		return fmt.Errorf("update user %q: %w: nil profile", userName, storage.ErrInvalidInput)
	}
	row, err := s.loadUser(ctx, userName)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("update user %q: %w", userName, storage.ErrUserNotFound)
	}

	updated := info.Clone()
	updated.Username = userName
	updated.CreatedAt = row.info.CreatedAt
	if updated.Role == "" {
		updated.Role = row.info.Role
	}
	row.info = *updated
	return s.saveUser(ctx, row)
}

// ChangePasswordV2 implements storage.UserStoreV2.
func (s *Store) ChangePasswordV2(ctx context.Context, userName, newPassword string) error {
	row, err := s.loadUser(ctx, userName)
	if err != nil {
		return err
	}
	if row == nil {
		return fmt.Errorf("change password for %q: %w", userName, storage.ErrUserNotFound)
	}
	if row.passwordHash, err = s.hashPassword(newPassword); err != nil {
		return err
	}
	return s.saveUser(ctx, row)
}

// CheckUserExistV2 implements storage.UserStoreV2.
func (s *Store) CheckUserExistV2(ctx context.Context, userName string) (bool, error) {
	var one int
	return s.queryRow(ctx, "exists_user_v2",
		`SELECT 1 FROM users_v2 WHERE username = $1`, []interface{}{userName}, &one)
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

// GetUserByOidcSub implements storage.OidcUserLookup.
func (s *Store) GetUserByOidcSub(ctx context.Context, oidcSub string) (string, bool, error) {
	if oidcSub == "" {
		return "", false, nil
	}
	var userName string
	found, err := s.queryRow(ctx, "get_user_by_oidc",
		`SELECT username FROM users_v2 WHERE oidc_sub = $1 ORDER BY created_at LIMIT 1`,
		[]interface{}{oidcSub}, &userName)
	return userName, found, err
}

// GetAllUsers implements storage.UserDirectory. It lists accounts from both
// account systems, sorted by name.
func (s *Store) GetAllUsers(ctx context.Context) ([]string, error) {
	users := []string{}
	err := s.query(ctx, "list_users",
		`SELECT username FROM users_v1 UNION SELECT username FROM users_v2`, nil,
		func(rows *sql.Rows) error {
			var u string
			if err := rows.Scan(&u); err != nil {
				return err
			}
			users = append(users, u)
			return nil
		})
	if err != nil {
		return nil, err
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
	var users []models.UserInfoV2
	err := s.query(ctx, "list_users_v2", `SELECT username, profile FROM users_v2`, nil,
		func(rows *sql.Rows) error {
			var name, profile string
			if err := rows.Scan(&name, &profile); err != nil {
				return err
			}
			var info models.UserInfoV2
			if err := decode(profile, &info); err != nil {
				return fmt.Errorf("user %q: %w", name, err)
			}
			info.Username = name
			users = append(users, info)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// MigrateUsersFromConfig implements storage.ConfigMigrator. Users declared in
// the admin config that have a legacy password but no V2 row get one, reusing
// the legacy hash.
func (s *Store) MigrateUsersFromConfig(ctx context.Context, cfg *models.AdminConfig) error {
	if cfg == nil {
		return nil
	}
	created := 0
	for _, u := range cfg.UserConfig.Users {
		if u.Username == "" {
			continue
		}
		exists, err := s.CheckUserExistV2(ctx, u.Username)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		var hash string
		found, err := s.queryRow(ctx, "get_user_v1",
			`SELECT password_hash FROM users_v1 WHERE username = $1`, []interface{}{u.Username}, &hash)
		if err != nil {
			return err
		}
		if !found {
			continue
		}

		row := &userRow{
			info: models.UserInfoV2{
				Username:    u.Username,
				Role:        u.Role,
				Banned:      u.Banned,
				Tags:        u.Tags,
				EnabledApis: u.EnabledApis,
				CreatedAt:   s.clock.Now().UnixMilli(),
			},
			passwordHash: hash,
		}
		if !row.info.Role.Valid() {
			row.info.Role = models.RoleUser
		}
		if err := s.saveUser(ctx, row); err != nil {
			return err
		}
		created++
	}
	if created > 0 {
		s.logger.Info().Int("users", created).Msg("config users migrated to V2")
	}
	return nil
}
