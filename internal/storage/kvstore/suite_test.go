// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package kvstore

import (
	"context"
	"errors"
	"sort"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/cinevault/internal/models"
	"github.com/tomtom215/cinevault/internal/storage"
)

// testBackendContract checks the primitive Backend semantics every backend
// must share.
func testBackendContract(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		_, ok, err := b.Get(ctx, "missing")
		if err != nil || ok {
			t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
		}
	})

	t.Run("set get delete", func(t *testing.T) {
		if err := b.Set(ctx, "contract:a", []byte(`{"x":1}`), 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
		v, ok, err := b.Get(ctx, "contract:a")
		if err != nil || !ok || string(v) != `{"x":1}` {
			t.Fatalf("Get = %q, %v, %v", v, ok, err)
		}
		if err := b.Delete(ctx, "contract:a", "contract:never-existed"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, ok, _ := b.Get(ctx, "contract:a"); ok {
			t.Fatal("key still present after Delete")
		}
	})

	t.Run("keys by prefix", func(t *testing.T) {
		for _, k := range []string{"p:1", "p:2", "p*glob", "q:1"} {
			if err := b.Set(ctx, k, []byte("v"), 0); err != nil {
				t.Fatalf("Set(%s): %v", k, err)
			}
		}
		keys, err := b.Keys(ctx, "p:")
		if err != nil {
			t.Fatalf("Keys: %v", err)
		}
		sort.Strings(keys)
		if len(keys) != 2 || keys[0] != "p:1" || keys[1] != "p:2" {
			t.Fatalf("Keys(p:) = %v", keys)
		}
		keys, err = b.Keys(ctx, "p*")
		if err != nil {
			t.Fatalf("Keys: %v", err)
		}
		if len(keys) != 1 || keys[0] != "p*glob" {
			t.Fatalf("Keys(p*) must treat * literally, got %v", keys)
		}
		if err := b.Delete(ctx, "p:1", "p:2", "p*glob", "q:1"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
	})

	if taker, ok := b.(Taker); ok {
		t.Run("take", func(t *testing.T) {
			if err := b.Set(ctx, "take:1", []byte("bob"), 0); err != nil {
				t.Fatalf("Set: %v", err)
			}
			v, ok, err := taker.Take(ctx, "take:1")
			if err != nil || !ok || string(v) != "bob" {
				t.Fatalf("Take = %q, %v, %v", v, ok, err)
			}
			if _, ok, err := taker.Take(ctx, "take:1"); err != nil || ok {
				t.Fatalf("second Take = %v, %v; want absent", ok, err)
			}
		})
	}
}

// testStoreContract exercises the full driver surface on top of a backend.
func testStoreContract(t *testing.T, newStore func(t *testing.T) *Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("play record lifecycle", func(t *testing.T) {
		s := newStore(t)
		key := storage.Key("src1", "42")
		rec := &models.PlayRecord{Title: "Dune", SourceName: "src1", Index: 1, TotalEpisodes: 1, PlayTime: 120, TotalTime: 9000, SaveTime: 1700000000000}

		if err := s.SetPlayRecord(ctx, "alice", key, rec); err != nil {
			t.Fatalf("SetPlayRecord: %v", err)
		}
		got, err := s.GetPlayRecord(ctx, "alice", key)
		if err != nil || got == nil || *got != *rec {
			t.Fatalf("GetPlayRecord = %+v, %v", got, err)
		}
		all, err := s.GetAllPlayRecords(ctx, "alice")
		if err != nil || len(all) != 1 || all["src1+42"].PlayTime != 120 {
			t.Fatalf("GetAllPlayRecords = %v, %v", all, err)
		}
		if err := s.DeletePlayRecord(ctx, "alice", key); err != nil {
			t.Fatalf("DeletePlayRecord: %v", err)
		}
		if got, _ := s.GetPlayRecord(ctx, "alice", key); got != nil {
			t.Fatal("record still present after delete")
		}
	})

	t.Run("users are partitioned", func(t *testing.T) {
		s := newStore(t)
		key := storage.Key("src", "1")
		_ = s.SetFavorite(ctx, "a", key, &models.Favorite{Title: "A"})
		_ = s.SetFavorite(ctx, "a:fav", key, &models.Favorite{Title: "B"})

		favs, err := s.GetAllFavorites(ctx, "a")
		if err != nil {
			t.Fatalf("GetAllFavorites: %v", err)
		}
		if len(favs) != 1 || favs[key].Title != "A" {
			t.Fatalf("user a sees %v", favs)
		}
		if err := s.DeleteUser(ctx, "a"); err != nil {
			t.Fatalf("DeleteUser: %v", err)
		}
		if fav, _ := s.GetFavorite(ctx, "a:fav", key); fav == nil {
			t.Fatal("deleting user a removed data of user a:fav")
		}
	})

	t.Run("search history", func(t *testing.T) {
		s := newStore(t)
		for _, k := range []string{"alien", "dune", "alien", ""} {
			if err := s.AddSearchHistory(ctx, "alice", k); err != nil {
				t.Fatalf("AddSearchHistory: %v", err)
			}
		}
		h, err := s.GetSearchHistory(ctx, "alice")
		if err != nil || len(h) != 2 || h[0] != "alien" || h[1] != "dune" {
			t.Fatalf("history = %v, %v", h, err)
		}
		_ = s.DeleteSearchHistory(ctx, "alice", "dune")
		h, _ = s.GetSearchHistory(ctx, "alice")
		if len(h) != 1 || h[0] != "alien" {
			t.Fatalf("after delete = %v", h)
		}
		_ = s.DeleteSearchHistory(ctx, "alice", "")
		h, _ = s.GetSearchHistory(ctx, "alice")
		if h == nil || len(h) != 0 {
			t.Fatalf("after clear = %#v", h)
		}
	})

	t.Run("legacy accounts", func(t *testing.T) {
		s := newStore(t)
		if ok, _ := s.CheckUserExist(ctx, "dave"); ok {
			t.Fatal("dave should not exist yet")
		}
		if err := s.ChangePassword(ctx, "dave", "s3cret"); err != nil {
			t.Fatalf("ChangePassword: %v", err)
		}
		if ok, _ := s.CheckUserExist(ctx, "dave"); !ok {
			t.Fatal("ChangePassword should create the account")
		}
		if ok, _ := s.VerifyUser(ctx, "dave", "s3cret"); !ok {
			t.Fatal("VerifyUser rejected the right password")
		}
		if ok, _ := s.VerifyUser(ctx, "dave", "wrong"); ok {
			t.Fatal("VerifyUser accepted a wrong password")
		}
	})

	t.Run("v2 accounts", func(t *testing.T) {
		s := newStore(t)
		err := s.CreateUserV2(ctx, storage.NewUserV2{Username: "erin", Password: "pw", Role: models.RoleAdmin, Tags: []string{"vip"}, OidcSub: "sub-1"})
		if err != nil {
			t.Fatalf("CreateUserV2: %v", err)
		}
		if err := s.CreateUserV2(ctx, storage.NewUserV2{Username: "erin"}); !errors.Is(err, storage.ErrUserExists) {
			t.Fatalf("duplicate CreateUserV2 err = %v, want ErrUserExists", err)
		}
		if ok, _ := s.VerifyUserV2(ctx, "erin", "pw"); !ok {
			t.Fatal("VerifyUserV2 rejected the right password")
		}
		if u, ok, _ := s.GetUserByOidcSub(ctx, "sub-1"); !ok || u != "erin" {
			t.Fatalf("GetUserByOidcSub = %q, %v", u, ok)
		}

		info, err := s.GetUserInfoV2(ctx, "erin")
		if err != nil || info == nil || info.Role != models.RoleAdmin || !info.HasTag("vip") {
			t.Fatalf("GetUserInfoV2 = %+v, %v", info, err)
		}
		created := info.CreatedAt
		info.Banned = true
		info.OidcSub = "sub-2"
		info.CreatedAt = 1
		if err := s.UpdateUserInfoV2(ctx, "erin", info); err != nil {
			t.Fatalf("UpdateUserInfoV2: %v", err)
		}
		info, _ = s.GetUserInfoV2(ctx, "erin")
		if !info.Banned || info.CreatedAt != created {
			t.Fatalf("after update = %+v", info)
		}
		if _, ok, _ := s.GetUserByOidcSub(ctx, "sub-1"); ok {
			t.Fatal("old oidc subject still indexed")
		}
		if ok, _ := s.VerifyUserV2(ctx, "erin", "pw"); !ok {
			t.Fatal("update must preserve the password")
		}
		if err := s.UpdateUserInfoV2(ctx, "nobody", &models.UserInfoV2{}); !errors.Is(err, storage.ErrUserNotFound) {
			t.Fatalf("update missing user err = %v", err)
		}

		if err := s.ChangePasswordV2(ctx, "erin", "pw2"); err != nil {
			t.Fatalf("ChangePasswordV2: %v", err)
		}
		if ok, _ := s.VerifyUserV2(ctx, "erin", "pw2"); !ok {
			t.Fatal("new password rejected")
		}

		_ = s.CreateUserV2(ctx, storage.NewUserV2{Username: "frank", Password: "pw", Tags: []string{"vip"}})
		page, err := s.GetUserListV2(ctx, 0, 10, "frank")
		if err != nil || page.Total != 2 || page.Users[0].Username != "frank" {
			t.Fatalf("GetUserListV2 = %+v, %v", page, err)
		}
		tagged, _ := s.GetUsersByTag(ctx, "vip")
		if len(tagged) != 2 {
			t.Fatalf("GetUsersByTag = %v", tagged)
		}

		if err := s.DeleteUserV2(ctx, "erin"); err != nil {
			t.Fatalf("DeleteUserV2: %v", err)
		}
		if ok, _ := s.CheckUserExistV2(ctx, "erin"); ok {
			t.Fatal("erin still exists")
		}
		if _, ok, _ := s.GetUserByOidcSub(ctx, "sub-2"); ok {
			t.Fatal("oidc index survived user deletion")
		}
	})

	t.Run("directory spans both account systems", func(t *testing.T) {
		s := newStore(t)
		_ = s.ChangePassword(ctx, "v1only", "pw")
		_ = s.CreateUserV2(ctx, storage.NewUserV2{Username: "v2only", Password: "pw"})
		users, err := s.GetAllUsers(ctx)
		if err != nil || len(users) != 2 || users[0] != "v1only" || users[1] != "v2only" {
			t.Fatalf("GetAllUsers = %v, %v", users, err)
		}
	})

	t.Run("migrations", func(t *testing.T) {
		s := newStore(t)
		legacy := map[string]*models.PlayRecord{
			"src+1": {Title: "old", PlayTime: 10},
			"src+2": {Title: "kept", PlayTime: 20},
		}
		if err := s.setJSON(ctx, legacyKey("gina", legacyPlayRecordsSeg), legacy); err != nil {
			t.Fatal(err)
		}
		_ = s.SetPlayRecord(ctx, "gina", "src+2", &models.PlayRecord{Title: "newer", PlayTime: 99})

		if err := s.MigratePlayRecords(ctx, "gina"); err != nil {
			t.Fatalf("MigratePlayRecords: %v", err)
		}
		all, _ := s.GetAllPlayRecords(ctx, "gina")
		if len(all) != 2 || all["src+1"].Title != "old" || all["src+2"].Title != "newer" {
			t.Fatalf("after migration = %v", all)
		}
		if ok, _ := s.exists(ctx, legacyKey("gina", legacyPlayRecordsSeg)); ok {
			t.Fatal("legacy document not removed")
		}
		if err := s.MigrateFavorites(ctx, "gina"); err != nil {
			t.Fatalf("MigrateFavorites without legacy data: %v", err)
		}

		_ = s.ChangePassword(ctx, "hank", "pw")
		cfg := &models.AdminConfig{UserConfig: models.UserConfig{Users: []models.AdminUser{
			{Username: "hank", Role: models.RoleAdmin, Tags: []string{"staff"}},
			{Username: "nopass"},
		}}}
		if err := s.MigrateUsersFromConfig(ctx, cfg); err != nil {
			t.Fatalf("MigrateUsersFromConfig: %v", err)
		}
		info, _ := s.GetUserInfoV2(ctx, "hank")
		if info == nil || info.Role != models.RoleAdmin || !info.HasTag("staff") {
			t.Fatalf("migrated hank = %+v", info)
		}
		if ok, _ := s.VerifyUserV2(ctx, "hank", "pw"); !ok {
			t.Fatal("migrated user should keep the legacy password")
		}
		if ok, _ := s.CheckUserExistV2(ctx, "nopass"); ok {
			t.Fatal("user without legacy password must not be migrated")
		}
	})

	t.Run("admin config and globals", func(t *testing.T) {
		s := newStore(t)
		if cfg, err := s.GetAdminConfig(ctx); err != nil || cfg != nil {
			t.Fatalf("empty GetAdminConfig = %v, %v", cfg, err)
		}
		cfg := &models.AdminConfig{SiteConfig: models.SiteConfig{SiteName: "Cinevault"}}
		_ = s.SetAdminConfig(ctx, cfg)
		got, _ := s.GetAdminConfig(ctx)
		if got == nil || got.SiteConfig.SiteName != "Cinevault" {
			t.Fatalf("GetAdminConfig = %+v", got)
		}

		_ = s.SetGlobalValue(ctx, "announcement", "hello")
		if v, ok, _ := s.GetGlobalValue(ctx, "announcement"); !ok || v != "hello" {
			t.Fatalf("GetGlobalValue = %q, %v", v, ok)
		}
		_ = s.DeleteGlobalValue(ctx, "announcement")
		if _, ok, _ := s.GetGlobalValue(ctx, "announcement"); ok {
			t.Fatal("global value survived delete")
		}
	})

	t.Run("clear all data", func(t *testing.T) {
		s := newStore(t)
		_ = s.SetPlayRecord(ctx, "alice", "s+1", &models.PlayRecord{})
		_ = s.RawSet(ctx, "email_index:a@example.com", "alice", 0)
		if err := s.ClearAllData(ctx); err != nil {
			t.Fatalf("ClearAllData: %v", err)
		}
		keys, err := s.Backend().Keys(ctx, "")
		if err != nil || len(keys) != 0 {
			t.Fatalf("keys after clear = %v, %v", keys, err)
		}
	})
}

// fastStoreOptions keeps bcrypt cheap in tests.
func fastStoreOptions() []Option {
	return []Option{WithBcryptCost(bcrypt.MinCost)}
}
