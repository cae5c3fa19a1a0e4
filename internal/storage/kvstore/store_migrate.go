// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package kvstore

import (
	"context"
	"fmt"

	"github.com/tomtom215/cinevault/internal/models"
)

// MigratePlayRecords implements storage.RecordMigrator.
func (s *Store) MigratePlayRecords(ctx context.Context, userName string) error {
	return migrateLegacy[models.PlayRecord](ctx, s, userName, legacyPlayRecordsSeg, playRecordPrefix(userName))
}

// MigrateFavorites implements storage.RecordMigrator.
func (s *Store) MigrateFavorites(ctx context.Context, userName string) error {
	return migrateLegacy[models.Favorite](ctx, s, userName, legacyFavoritesSeg, favoritePrefix(userName))
}

// MigrateSkipConfigs implements storage.RecordMigrator.
func (s *Store) MigrateSkipConfigs(ctx context.Context, userName string) error {
	return migrateLegacy[models.SkipConfig](ctx, s, userName, legacySkipConfigsSeg, skipConfigPrefix(userName))
}

// migrateLegacy copies each entry of a legacy single-document map into its
// own key, skipping keys that already hold a record, then deletes the
// legacy document. A missing legacy document is not an error.
func migrateLegacy[T any](ctx context.Context, s *Store, userName, seg, prefix string) error {
	legacy := legacyKey(userName, seg)
	var doc map[string]*T
	ok, err := s.getJSON(ctx, legacy, &doc)
	if err != nil || !ok {
		return err
	}

	migrated := 0
	for key, rec := range doc {
		if rec == nil {
			continue
		}
		exists, err := s.exists(ctx, prefix+key)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := s.setJSON(ctx, prefix+key, rec); err != nil {
			return err
		}
		migrated++
	}

	if err := s.delete(ctx, legacy); err != nil {
		return err
	}
	s.logger.Info().
		Str("kind", seg).
		Int("migrated", migrated).
		Int("legacy_entries", len(doc)).
		Msg("legacy records migrated")
	return nil
}

// MigrateUsersFromConfig implements storage.ConfigMigrator. Users declared in
// the admin config that have a legacy password but no V2 record get a V2
// record carrying the config's role, tags, ban flag and API list. The legacy
// hash is reused so existing passwords keep working.
func (s *Store) MigrateUsersFromConfig(ctx context.Context, cfg *models.AdminConfig) error {
	if cfg == nil {
		return nil
	}
	created := 0
	for _, u := range cfg.UserConfig.Users {
		if u.Username == "" {
			continue
		}
		exists, err := s.exists(ctx, userInfoKey(u.Username))
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		hash, ok, err := s.backend.Get(ctx, passwordKey(u.Username))
		if err != nil {
			return fmt.Errorf("get password for %q: %w", u.Username, err)
		}
		if !ok {
			continue
		}

		rec := userRecord{
			UserInfoV2: models.UserInfoV2{
				Username:    u.Username,
				Role:        u.Role,
				Banned:      u.Banned,
				Tags:        u.Tags,
				EnabledApis: u.EnabledApis,
				CreatedAt:   s.nowMillis(),
			},
			PasswordHash: string(hash),
		}
		if !rec.Role.Valid() {
			rec.Role = models.RoleUser
		}
		if err := s.setJSON(ctx, userInfoKey(u.Username), &rec); err != nil {
			return err
		}
		created++
	}
	if created > 0 {
		s.logger.Info().Int("users", created).Msg("config users migrated to V2")
	}
	return nil
}
