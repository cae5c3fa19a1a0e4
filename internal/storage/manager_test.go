// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package storage

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/cinevault/internal/logging"
	"github.com/tomtom215/cinevault/internal/models"
)

// minimalDriver implements only the mandatory Driver surface.
type minimalDriver struct {
	mu        sync.Mutex
	records   map[string]*models.PlayRecord
	favorites map[string]*models.Favorite
	passwords map[string]string
	history   map[string][]string
	closed    bool
}

func newMinimalDriver() *minimalDriver {
	return &minimalDriver{
		records:   map[string]*models.PlayRecord{},
		favorites: map[string]*models.Favorite{},
		passwords: map[string]string{},
		history:   map[string][]string{},
	}
}

func (d *minimalDriver) GetPlayRecord(_ context.Context, u, k string) (*models.PlayRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.records[u+"/"+k], nil
}

func (d *minimalDriver) SetPlayRecord(_ context.Context, u, k string, r *models.PlayRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.records[u+"/"+k] = r
	return nil
}

func (d *minimalDriver) GetAllPlayRecords(_ context.Context, u string) (map[string]*models.PlayRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := map[string]*models.PlayRecord{}
	for k, v := range d.records {
		if user, key, ok := cutUser(k); ok && user == u {
			out[key] = v
		}
	}
	return out, nil
}

func (d *minimalDriver) DeletePlayRecord(_ context.Context, u, k string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.records, u+"/"+k)
	return nil
}

func (d *minimalDriver) GetFavorite(_ context.Context, u, k string) (*models.Favorite, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.favorites[u+"/"+k], nil
}

func (d *minimalDriver) SetFavorite(_ context.Context, u, k string, f *models.Favorite) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.favorites[u+"/"+k] = f
	return nil
}

func (d *minimalDriver) GetAllFavorites(_ context.Context, u string) (map[string]*models.Favorite, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := map[string]*models.Favorite{}
	for k, v := range d.favorites {
		if user, key, ok := cutUser(k); ok && user == u {
			out[key] = v
		}
	}
	return out, nil
}

func (d *minimalDriver) DeleteFavorite(_ context.Context, u, k string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.favorites, u+"/"+k)
	return nil
}

func (d *minimalDriver) VerifyUser(_ context.Context, u, p string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	stored, ok := d.passwords[u]
	return ok && stored == p, nil
}

func (d *minimalDriver) CheckUserExist(_ context.Context, u string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.passwords[u]
	return ok, nil
}

func (d *minimalDriver) ChangePassword(_ context.Context, u, p string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.passwords[u] = p
	return nil
}

func (d *minimalDriver) DeleteUser(_ context.Context, u string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.passwords, u)
	return nil
}

func (d *minimalDriver) GetSearchHistory(_ context.Context, u string) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string{}, d.history[u]...), nil
}

func (d *minimalDriver) AddSearchHistory(_ context.Context, u, kw string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history[u] = models.PushSearchKeyword(d.history[u], kw)
	return nil
}

func (d *minimalDriver) DeleteSearchHistory(_ context.Context, u, kw string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history[u] = models.RemoveSearchKeyword(d.history[u], kw)
	return nil
}

func (d *minimalDriver) Close() error {
	d.closed = true
	return nil
}

func cutUser(composite string) (user, key string, ok bool) {
	for i := 0; i < len(composite); i++ {
		if composite[i] == '/' {
			return composite[:i], composite[i+1:], true
		}
	}
	return "", "", false
}

var errBackendDown = errors.New("backend down")

// failingDriver returns errBackendDown from reads and the raw key space.
type failingDriver struct {
	*minimalDriver
}

func (failingDriver) GetPlayRecord(context.Context, string, string) (*models.PlayRecord, error) {
	return nil, errBackendDown
}

func (failingDriver) VerifyUser(context.Context, string, string) (bool, error) {
	return false, errBackendDown
}

func (failingDriver) RawGet(context.Context, string) (string, bool, error) {
	return "", false, errBackendDown
}

func (failingDriver) RawSet(context.Context, string, string, time.Duration) error {
	return errBackendDown
}

func (failingDriver) RawDelete(context.Context, string) error {
	return errBackendDown
}

func newTestManager(d Driver) *Manager {
	return NewManager(d, WithLogger(logging.NewTestLogger(io.Discard)))
}

func TestNewManager_ProbesCapabilities(t *testing.T) {
	m := newTestManager(newMinimalDriver())

	if m.Kind() != "unknown" {
		t.Errorf("Kind = %q, want unknown", m.Kind())
	}
	if names := m.Capabilities().Names(); len(names) != 0 {
		t.Errorf("minimal driver should report no capabilities, got %v", names)
	}
}

func TestManager_MissingCapabilityDefaults(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(newMinimalDriver())

	if info, err := m.GetUserInfoV2(ctx, "alice"); info != nil || err != nil {
		t.Errorf("GetUserInfoV2 = %v, %v", info, err)
	}
	if ok, err := m.VerifyUserV2(ctx, "alice", "pw"); ok || err != nil {
		t.Errorf("VerifyUserV2 = %v, %v", ok, err)
	}
	if ok, err := m.CheckUserExistV2(ctx, "alice"); ok || err != nil {
		t.Errorf("CheckUserExistV2 = %v, %v", ok, err)
	}
	if err := m.CreateUserV2(ctx, NewUserV2{Username: "alice"}); err != nil {
		t.Errorf("CreateUserV2 = %v", err)
	}
	page, err := m.GetUserListV2(ctx, 0, 10, "")
	if err != nil || page == nil || page.Total != 0 || page.Users == nil {
		t.Errorf("GetUserListV2 = %+v, %v", page, err)
	}
	if users, err := m.GetAllUsers(ctx); err != nil || users == nil || len(users) != 0 {
		t.Errorf("GetAllUsers = %v, %v", users, err)
	}
	if users, err := m.GetUsersByTag(ctx, "vip"); err != nil || len(users) != 0 {
		t.Errorf("GetUsersByTag = %v, %v", users, err)
	}
	if _, ok, err := m.GetUserByOidcSub(ctx, "sub"); ok || err != nil {
		t.Errorf("GetUserByOidcSub = %v, %v", ok, err)
	}
	if cfg, err := m.GetAdminConfig(ctx); cfg != nil || err != nil {
		t.Errorf("GetAdminConfig = %v, %v", cfg, err)
	}
	if err := m.SaveAdminConfig(ctx, &models.AdminConfig{}); err != nil {
		t.Errorf("SaveAdminConfig = %v", err)
	}
	if cfg, err := m.GetSkipConfig(ctx, "alice", "s", "1"); cfg != nil || err != nil {
		t.Errorf("GetSkipConfig = %v, %v", cfg, err)
	}
	if err := m.SetSkipConfig(ctx, "alice", "s", "1", &models.SkipConfig{}); err != nil {
		t.Errorf("SetSkipConfig = %v", err)
	}
	if cfgs, err := m.GetAllSkipConfigs(ctx, "alice"); err != nil || cfgs == nil || len(cfgs) != 0 {
		t.Errorf("GetAllSkipConfigs = %v, %v", cfgs, err)
	}
	if cfg, err := m.GetDanmakuFilterConfig(ctx, "alice"); cfg != nil || err != nil {
		t.Errorf("GetDanmakuFilterConfig = %v, %v", cfg, err)
	}
	if _, ok, err := m.GetGlobalValue(ctx, "k"); ok || err != nil {
		t.Errorf("GetGlobalValue = %v, %v", ok, err)
	}
	if err := m.SetGlobalValue(ctx, "k", "v"); err != nil {
		t.Errorf("SetGlobalValue = %v", err)
	}
	if err := m.MigratePlayRecords(ctx, "alice"); err != nil {
		t.Errorf("MigratePlayRecords = %v", err)
	}
	if err := m.MigrateUsersFromConfig(ctx, &models.AdminConfig{}); err != nil {
		t.Errorf("MigrateUsersFromConfig = %v", err)
	}
	if err := m.SetResetToken(ctx, "tok", "alice"); err != nil {
		t.Errorf("SetResetToken = %v", err)
	}
	if _, ok, err := m.VerifyResetToken(ctx, "tok"); ok || err != nil {
		t.Errorf("VerifyResetToken = %v, %v", ok, err)
	}
	if _, ok, err := m.ConsumeResetToken(ctx, "tok"); ok || err != nil {
		t.Errorf("ConsumeResetToken = %v, %v", ok, err)
	}
	if err := m.BindEmail(ctx, "alice", "a@example.com"); err != nil {
		t.Errorf("BindEmail = %v", err)
	}
	if _, ok, err := m.GetUserByEmail(ctx, "a@example.com"); ok || err != nil {
		t.Errorf("GetUserByEmail = %v, %v", ok, err)
	}
	if err := m.Ping(ctx); err != nil {
		t.Errorf("Ping without Pinger = %v", err)
	}
}

func TestManager_ClearAllDataUnsupported(t *testing.T) {
	m := newTestManager(newMinimalDriver())
	err := m.ClearAllData(context.Background())
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("ClearAllData err = %v, want ErrUnsupported", err)
	}
}

func TestManager_MandatoryOperations(t *testing.T) {
	ctx := context.Background()
	d := newMinimalDriver()
	m := newTestManager(d)

	if err := m.SavePlayRecord(ctx, "alice", "src1", "42", &models.PlayRecord{PlayTime: 120}); err != nil {
		t.Fatalf("SavePlayRecord: %v", err)
	}
	all, err := m.GetAllPlayRecords(ctx, "alice")
	if err != nil {
		t.Fatalf("GetAllPlayRecords: %v", err)
	}
	if rec := all["src1+42"]; rec == nil || rec.PlayTime != 120 {
		t.Fatalf("record under src1+42 = %+v", all)
	}

	if ok, _ := m.IsFavorited(ctx, "alice", "src1", "42"); ok {
		t.Fatal("IsFavorited before SaveFavorite")
	}
	_ = m.SaveFavorite(ctx, "alice", "src1", "42", &models.Favorite{Title: "T"})
	if ok, _ := m.IsFavorited(ctx, "alice", "src1", "42"); !ok {
		t.Fatal("IsFavorited after SaveFavorite")
	}
	_ = m.DeleteFavorite(ctx, "alice", "src1", "42")
	if ok, _ := m.IsFavorited(ctx, "alice", "src1", "42"); ok {
		t.Fatal("IsFavorited after DeleteFavorite")
	}

	_ = m.ChangePassword(ctx, "bob", "pw")
	if ok, _ := m.VerifyUser(ctx, "bob", "pw"); !ok {
		t.Fatal("VerifyUser after ChangePassword")
	}

	_ = m.Close()
	if !d.closed {
		t.Fatal("Close was not forwarded")
	}
}

func TestManager_InputValidation(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(newMinimalDriver())

	tests := []struct {
		name string
		call func() error
	}{
		{"negative offset", func() error { _, err := m.GetUserListV2(ctx, -1, 10, ""); return err }},
		{"zero limit", func() error { _, err := m.GetUserListV2(ctx, 0, 0, ""); return err }},
		{"missing username", func() error { return m.CreateUserV2(ctx, NewUserV2{}) }},
		{"unknown role", func() error { return m.CreateUserV2(ctx, NewUserV2{Username: "x", Role: "superuser"}) }},
		{"profile role", func() error {
			return m.UpdateUserInfoV2(ctx, "x", &models.UserInfoV2{Username: "x", Role: "root"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestCapabilities_Names(t *testing.T) {
	c := Capabilities{UserStoreV2: true, RawKV: true, AtomicTake: true}
	names := c.Names()
	want := []string{"user_store_v2", "raw_kv", "atomic_take"}
	if len(names) != len(want) {
		t.Fatalf("Names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestManager_BackendErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(failingDriver{newMinimalDriver()})

	if rec, err := m.GetPlayRecord(ctx, "alice", "src", "1"); rec != nil || !errors.Is(err, errBackendDown) {
		t.Errorf("GetPlayRecord = %v, %v; want errBackendDown", rec, err)
	}
	if ok, err := m.VerifyUser(ctx, "alice", "pw"); ok || !errors.Is(err, errBackendDown) {
		t.Errorf("VerifyUser = %v, %v; want errBackendDown", ok, err)
	}
	if u, ok, err := m.GetUserByEmail(ctx, "alice@example.com"); u != "" || ok || !errors.Is(err, errBackendDown) {
		t.Errorf("GetUserByEmail = %q, %v, %v; want errBackendDown", u, ok, err)
	}
	if err := m.BindEmail(ctx, "alice", "alice@example.com"); !errors.Is(err, errBackendDown) {
		t.Errorf("BindEmail = %v; want errBackendDown", err)
	}
}
