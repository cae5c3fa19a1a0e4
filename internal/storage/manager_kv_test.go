// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package storage_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/cinevault/internal/logging"
	"github.com/tomtom215/cinevault/internal/models"
	"github.com/tomtom215/cinevault/internal/storage"
	"github.com/tomtom215/cinevault/internal/storage/kvstore"
)

func newKVDriver(c clock.Clock) storage.Driver {
	return kvstore.NewDriver(kvstore.NewMemory(c),
		kvstore.WithBcryptCost(bcrypt.MinCost),
		kvstore.WithClock(c))
}

func newKVManager(t *testing.T, c clock.Clock, opts ...storage.Option) (*storage.Manager, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	opts = append([]storage.Option{storage.WithLogger(logging.NewTestLogger(&buf))}, opts...)
	m := storage.NewManager(newKVDriver(c), opts...)
	t.Cleanup(func() { _ = m.Close() })
	return m, &buf
}

// profileOnlyDriver exposes the V2 account system without RawKV.
type profileOnlyDriver struct {
	storage.Driver
	storage.UserStoreV2
}

// nonAtomicDriver exposes RawKV without AtomicTaker.
type nonAtomicDriver struct {
	storage.Driver
	storage.RawKV
}

func TestManager_KVCapabilities(t *testing.T) {
	m, _ := newKVManager(t, clock.NewMock())

	if m.Kind() != "memory" {
		t.Errorf("Kind = %q, want memory", m.Kind())
	}
	c := m.Capabilities()
	if !c.UserStoreV2 || !c.RawKV || !c.AtomicTake || !c.ClearAllData || !c.SkipConfig {
		t.Fatalf("missing capabilities: %+v", c)
	}
	if err := m.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestManager_AliceWatchesAndFavorites(t *testing.T) {
	ctx := context.Background()
	m, _ := newKVManager(t, clock.NewMock())

	if err := m.SavePlayRecord(ctx, "alice", "src1", "42", &models.PlayRecord{Title: "T", PlayTime: 120}); err != nil {
		t.Fatalf("SavePlayRecord: %v", err)
	}
	all, err := m.GetAllPlayRecords(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAllPlayRecords: %v", err)
	}
	if len(all) != 1 || all["src1+42"] == nil || all["src1+42"].PlayTime != 120 {
		t.Fatalf("records = %+v", all)
	}

	if ok, _ := m.IsFavorited(ctx, "alice", "src1", "42"); ok {
		t.Fatal("not favorited yet")
	}
	_ = m.SaveFavorite(ctx, "alice", "src1", "42", &models.Favorite{Title: "T"})
	if ok, _ := m.IsFavorited(ctx, "alice", "src1", "42"); !ok {
		t.Fatal("should be favorited")
	}

	_ = m.SetSkipConfig(ctx, "alice", "src1", "42", &models.SkipConfig{Enable: true, IntroTime: 90})
	skips, _ := m.GetAllSkipConfigs(ctx, "alice")
	if skips["src1+42"] == nil || skips["src1+42"].IntroTime != 90 {
		t.Fatalf("skip configs = %+v", skips)
	}
}

func TestManager_EmailBoundTwiceResolvesToLastUser(t *testing.T) {
	ctx := context.Background()
	m, _ := newKVManager(t, clock.NewMock())

	for _, u := range []string{"bob", "carol"} {
		if err := m.CreateUserV2(ctx, storage.NewUserV2{Username: u, Password: "pw"}); err != nil {
			t.Fatalf("CreateUserV2(%s): %v", u, err)
		}
	}

	if err := m.BindEmail(ctx, "bob", "shared@example.com"); err != nil {
		t.Fatalf("BindEmail(bob): %v", err)
	}
	if err := m.BindEmail(ctx, "carol", "shared@example.com"); err != nil {
		t.Fatalf("BindEmail(carol): %v", err)
	}

	u, ok, err := m.GetUserByEmail(ctx, "shared@example.com")
	if err != nil || !ok || u != "carol" {
		t.Fatalf("GetUserByEmail = %q, %v, %v; want carol", u, ok, err)
	}

	// bob's profile keeps the address; only the index moved.
	info, _ := m.GetUserInfoV2(ctx, "bob")
	if info.Email != "shared@example.com" {
		t.Errorf("bob profile email = %q", info.Email)
	}
}

func TestManager_EmailBindingAndLookup(t *testing.T) {
	ctx := context.Background()
	m, _ := newKVManager(t, clock.NewMock())

	for _, u := range []string{"bob", "carol"} {
		if err := m.CreateUserV2(ctx, storage.NewUserV2{Username: u, Password: "pw"}); err != nil {
			t.Fatalf("CreateUserV2(%s): %v", u, err)
		}
	}

	if err := m.BindEmail(ctx, "bob", "bob@example.com"); err != nil {
		t.Fatalf("BindEmail: %v", err)
	}
	if u, ok, err := m.GetUserByEmail(ctx, "bob@example.com"); err != nil || !ok || u != "bob" {
		t.Fatalf("GetUserByEmail = %q, %v, %v", u, ok, err)
	}
	info, _ := m.GetUserInfoV2(ctx, "bob")
	if info.Email != "bob@example.com" {
		t.Fatalf("profile email = %q", info.Email)
	}

	// Rebinding drops the stale index entry.
	_ = m.BindEmail(ctx, "bob", "robert@example.com")
	if _, ok, _ := m.GetUserByEmail(ctx, "bob@example.com"); ok {
		t.Fatal("old email should no longer resolve")
	}
	if u, ok, _ := m.GetUserByEmail(ctx, "robert@example.com"); !ok || u != "bob" {
		t.Fatalf("new email resolved to %q, %v", u, ok)
	}

	// A profile email written without the index is found by the scan.
	carol, _ := m.GetUserInfoV2(ctx, "carol")
	carol.Email = "carol@example.com"
	if err := m.UpdateUserInfoV2(ctx, "carol", carol); err != nil {
		t.Fatalf("UpdateUserInfoV2: %v", err)
	}
	if u, ok, _ := m.GetUserByEmail(ctx, "carol@example.com"); !ok || u != "carol" {
		t.Fatalf("scan fallback resolved %q, %v", u, ok)
	}

	if _, ok, _ := m.GetUserByEmail(ctx, "CAROL@example.com"); ok {
		t.Fatal("email match must be exact")
	}
	if err := m.BindEmail(ctx, "nobody", "x@example.com"); !errors.Is(err, storage.ErrUserNotFound) {
		t.Fatalf("BindEmail(missing) err = %v", err)
	}

	if err := m.SetEmailNotifications(ctx, "carol", true); err != nil {
		t.Fatalf("SetEmailNotifications: %v", err)
	}
	carol, _ = m.GetUserInfoV2(ctx, "carol")
	if !carol.EmailNotifications {
		t.Fatal("notifications flag not stored")
	}
}

func TestManager_EmailLookupWithoutRawKV(t *testing.T) {
	ctx := context.Background()
	full := newKVDriver(clock.NewMock())
	d := profileOnlyDriver{Driver: full, UserStoreV2: full.(storage.UserStoreV2)}
	m := storage.NewManager(d, storage.WithLogger(logging.NewTestLogger(&bytes.Buffer{})))

	if m.Capabilities().RawKV {
		t.Fatal("wrapper should hide RawKV")
	}
	_ = m.CreateUserV2(ctx, storage.NewUserV2{Username: "carol"})
	if err := m.BindEmail(ctx, "carol", "carol@example.com"); err != nil {
		t.Fatalf("BindEmail: %v", err)
	}
	if u, ok, err := m.GetUserByEmail(ctx, "carol@example.com"); err != nil || !ok || u != "carol" {
		t.Fatalf("GetUserByEmail = %q, %v, %v", u, ok, err)
	}
}

func TestManager_ResetTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	m, logs := newKVManager(t, mock)

	token := storage.NewResetToken()
	if err := m.SetResetToken(ctx, token, "alice"); err != nil {
		t.Fatalf("SetResetToken: %v", err)
	}
	if u, ok, _ := m.VerifyResetToken(ctx, token); !ok || u != "alice" {
		t.Fatalf("VerifyResetToken = %q, %v", u, ok)
	}

	mock.Add(storage.ResetTokenTTL + time.Second)
	if _, ok, _ := m.VerifyResetToken(ctx, token); ok {
		t.Fatal("token should expire after the TTL")
	}

	_ = m.SetResetToken(ctx, token, "alice")
	_ = m.DeleteResetToken(ctx, token)
	if _, ok, _ := m.VerifyResetToken(ctx, token); ok {
		t.Fatal("deleted token still verifies")
	}

	if strings.Contains(logs.String(), token) {
		t.Fatal("raw token leaked into logs")
	}
}

func TestManager_ResetTokenCustomTTL(t *testing.T) {
	ctx := context.Background()
	mock := clock.NewMock()
	m, _ := newKVManager(t, mock, storage.WithResetTokenTTL(time.Minute))

	_ = m.SetResetToken(ctx, "t", "alice")
	mock.Add(61 * time.Second)
	if _, ok, _ := m.VerifyResetToken(ctx, "t"); ok {
		t.Fatal("token outlived custom TTL")
	}
}

func TestManager_ConsumeResetToken(t *testing.T) {
	ctx := context.Background()

	t.Run("atomic", func(t *testing.T) {
		m, _ := newKVManager(t, clock.NewMock())
		_ = m.SetResetToken(ctx, "tok", "alice")

		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if u, ok, err := m.ConsumeResetToken(ctx, "tok"); err == nil && ok && u == "alice" {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		if wins.Load() != 1 {
			t.Fatalf("token consumed %d times, want 1", wins.Load())
		}
	})

	t.Run("read then delete", func(t *testing.T) {
		full := newKVDriver(clock.NewMock())
		d := nonAtomicDriver{Driver: full, RawKV: full.(storage.RawKV)}
		m := storage.NewManager(d, storage.WithLogger(logging.NewTestLogger(&bytes.Buffer{})))
		if m.Capabilities().AtomicTake {
			t.Fatal("wrapper should hide AtomicTaker")
		}

		_ = m.SetResetToken(ctx, "tok", "alice")
		if u, ok, err := m.ConsumeResetToken(ctx, "tok"); err != nil || !ok || u != "alice" {
			t.Fatalf("first consume = %q, %v, %v", u, ok, err)
		}
		if _, ok, _ := m.ConsumeResetToken(ctx, "tok"); ok {
			t.Fatal("second consume should find nothing")
		}
	})
}

func TestManager_AccountLifecycle(t *testing.T) {
	ctx := context.Background()
	m, _ := newKVManager(t, clock.NewMock())

	err := m.CreateUserV2(ctx, storage.NewUserV2{Username: "dave", Password: "pw", Tags: []string{"vip"}, OidcSub: "sub-dave"})
	if err != nil {
		t.Fatalf("CreateUserV2: %v", err)
	}
	info, _ := m.GetUserInfoV2(ctx, "dave")
	if info == nil || info.Role != models.RoleUser {
		t.Fatalf("role should default to user: %+v", info)
	}
	if err := m.CreateUserV2(ctx, storage.NewUserV2{Username: "dave"}); !errors.Is(err, storage.ErrUserExists) {
		t.Fatalf("duplicate create err = %v", err)
	}
	if ok, _ := m.VerifyUserV2(ctx, "dave", "pw"); !ok {
		t.Fatal("VerifyUserV2 failed")
	}
	if u, ok, _ := m.GetUserByOidcSub(ctx, "sub-dave"); !ok || u != "dave" {
		t.Fatalf("GetUserByOidcSub = %q, %v", u, ok)
	}
	if users, _ := m.GetUsersByTag(ctx, "vip"); len(users) != 1 || users[0] != "dave" {
		t.Fatalf("GetUsersByTag = %v", users)
	}

	_ = m.SavePlayRecord(ctx, "dave", "s", "1", &models.PlayRecord{})
	if err := m.DeleteUserV2(ctx, "dave"); err != nil {
		t.Fatalf("DeleteUserV2: %v", err)
	}
	if ok, _ := m.CheckUserExistV2(ctx, "dave"); ok {
		t.Fatal("user still exists")
	}
	if recs, _ := m.GetAllPlayRecords(ctx, "dave"); len(recs) != 0 {
		t.Fatalf("records survived deletion: %v", recs)
	}
	if _, ok, _ := m.GetUserByOidcSub(ctx, "sub-dave"); ok {
		t.Fatal("oidc binding survived deletion")
	}
}

func TestManager_ClearAllData(t *testing.T) {
	ctx := context.Background()
	m, logs := newKVManager(t, clock.NewMock())

	_ = m.SavePlayRecord(ctx, "alice", "s", "1", &models.PlayRecord{})
	_ = m.SetGlobalValue(ctx, "motd", "hello")
	if err := m.ClearAllData(ctx); err != nil {
		t.Fatalf("ClearAllData: %v", err)
	}
	if recs, _ := m.GetAllPlayRecords(ctx, "alice"); len(recs) != 0 {
		t.Fatalf("records survived: %v", recs)
	}
	if _, ok, _ := m.GetGlobalValue(ctx, "motd"); ok {
		t.Fatal("global survived")
	}
	if !strings.Contains(logs.String(), "all storage data cleared") {
		t.Fatal("ClearAllData should log a warning")
	}
}
