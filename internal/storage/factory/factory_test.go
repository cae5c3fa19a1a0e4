// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package factory

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/tomtom215/cinevault/internal/config"
	"github.com/tomtom215/cinevault/internal/models"
	"github.com/tomtom215/cinevault/internal/storage"
)

func memoryConfig() config.StorageConfig {
	return config.StorageConfig{
		Kind:       config.StorageLocal,
		Local:      config.LocalStorageConfig{Engine: config.EngineMemory},
		BcryptCost: 4,
	}
}

// exercise writes and reads one play record through the facade.
func exercise(t *testing.T, d storage.Driver) {
	t.Helper()
	ctx := context.Background()
	m := storage.NewManager(d)

	rec := &models.PlayRecord{Title: "Arrival", SourceName: "src1", Index: 3}
	if err := m.SavePlayRecord(ctx, "alice", "src1", "42", rec); err != nil {
		t.Fatalf("SavePlayRecord: %v", err)
	}
	got, err := m.GetPlayRecord(ctx, "alice", "src1", "42")
	if err != nil || got == nil {
		t.Fatalf("GetPlayRecord = %v, %v", got, err)
	}
	if got.Title != "Arrival" {
		t.Errorf("Title = %q, want Arrival", got.Title)
	}
}

func TestOpen_Kinds(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name       string
		cfg        config.StorageConfig
		wantKind   string
		wantAtomic bool
		wantRawKV  bool
	}{
		{
			name:       "memory",
			cfg:        memoryConfig(),
			wantKind:   "memory",
			wantAtomic: true,
			wantRawKV:  true,
		},
		{
			name: "badger",
			cfg: config.StorageConfig{
				Kind:  config.StorageLocal,
				Local: config.LocalStorageConfig{Engine: config.EngineBadger, InMemory: true},
			},
			wantKind:   "badger",
			wantAtomic: true,
			wantRawKV:  true,
		},
		{
			name: "redis",
			cfg: config.StorageConfig{
				Kind:   config.StorageRemote,
				Remote: config.RemoteStorageConfig{Protocol: config.ProtocolRedis, Addr: mr.Addr(), KeyPrefix: "cv:"},
			},
			wantKind:   "redis",
			wantAtomic: true,
			wantRawKV:  true,
		},
		{
			name: "duckdb",
			cfg: config.StorageConfig{
				Kind:       config.StorageRelational,
				Relational: config.RelationalStorageConfig{Adapter: "auto", Path: ":memory:"},
			},
			wantKind: "duckdb",
		},
		{
			name: "sqlite",
			cfg: config.StorageConfig{
				Kind:       config.StorageRelational,
				Relational: config.RelationalStorageConfig{Adapter: "sqlite", Path: filepath.Join(t.TempDir(), "cv.db")},
			},
			wantKind: "sqlite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.BcryptCost = 4
			d, err := Open(context.Background(), &tt.cfg)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			t.Cleanup(func() { _ = d.Close() })

			m := storage.NewManager(d)
			if m.Kind() != tt.wantKind {
				t.Errorf("Kind() = %q, want %q", m.Kind(), tt.wantKind)
			}
			caps := m.Capabilities()
			if caps.AtomicTake != tt.wantAtomic {
				t.Errorf("AtomicTake = %v, want %v", caps.AtomicTake, tt.wantAtomic)
			}
			if caps.RawKV != tt.wantRawKV {
				t.Errorf("RawKV = %v, want %v", caps.RawKV, tt.wantRawKV)
			}
			if !caps.UserStoreV2 {
				t.Error("every bundled driver should support V2 accounts")
			}
			exercise(t, d)
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		wantErr string
	}{
		{
			name:    "unknown kind",
			cfg:     config.StorageConfig{Kind: "floppy"},
			wantErr: "unknown storage kind",
		},
		{
			name:    "unknown engine",
			cfg:     config.StorageConfig{Kind: config.StorageLocal, Local: config.LocalStorageConfig{Engine: "bolt"}},
			wantErr: "unknown local engine",
		},
		{
			name: "unreachable redis",
			cfg: config.StorageConfig{
				Kind:   config.StorageRemote,
				Remote: config.RemoteStorageConfig{Protocol: config.ProtocolRedis, Addr: "127.0.0.1:1"},
			},
			wantErr: "remote storage unreachable",
		},
		{
			name: "postgres without dsn",
			cfg: config.StorageConfig{
				Kind:       config.StorageRelational,
				Relational: config.RelationalStorageConfig{Adapter: "postgres"},
			},
			wantErr: "failed to open relational storage",
		},
		{
			name:    "proxy without url",
			cfg:     config.StorageConfig{Kind: config.StorageProxy},
			wantErr: "failed to create proxy storage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Open(context.Background(), &tt.cfg)
			if err == nil {
				_ = d.Close()
				t.Fatal("Open() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Open() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestProvider_Memoizes(t *testing.T) {
	p := NewProvider(memoryConfig())
	t.Cleanup(func() { _ = p.Shutdown() })
	ctx := context.Background()

	var wg sync.WaitGroup
	drivers := make([]storage.Driver, 8)
	for i := range drivers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := p.Driver(ctx)
			if err != nil {
				t.Errorf("Driver() error = %v", err)
			}
			drivers[i] = d
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(drivers); i++ {
		if drivers[i] != drivers[0] {
			t.Fatal("Driver() returned different instances")
		}
	}

	m1, err := p.Manager(ctx)
	if err != nil {
		t.Fatalf("Manager() error = %v", err)
	}
	m2, _ := p.Manager(ctx)
	if m1 != m2 {
		t.Error("Manager() returned different instances")
	}
	if m1.Driver() != drivers[0] {
		t.Error("Manager wraps a different driver")
	}
}

func TestProvider_MemoizesError(t *testing.T) {
	p := NewProvider(config.StorageConfig{Kind: "floppy"})
	ctx := context.Background()

	_, err1 := p.Driver(ctx)
	_, err2 := p.Manager(ctx)
	if err1 == nil || err2 == nil {
		t.Fatal("expected construction error")
	}
	if err1 != err2 {
		t.Errorf("errors differ: %v vs %v", err1, err2)
	}
	if err := p.Shutdown(); err != nil {
		t.Errorf("Shutdown() after failed construction = %v", err)
	}
}

func TestProvider_Shutdown(t *testing.T) {
	p := NewProvider(memoryConfig())
	ctx := context.Background()

	m, err := p.Manager(ctx)
	if err != nil {
		t.Fatalf("Manager() error = %v", err)
	}
	if err := p.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if err := p.Shutdown(); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
	if _, err := m.GetPlayRecord(ctx, "alice", "src1", "42"); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("GetPlayRecord after Shutdown error = %v, want ErrClosed", err)
	}
}

func TestProvider_ShutdownBeforeUse(t *testing.T) {
	p := NewProvider(memoryConfig())
	if err := p.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if _, err := p.Driver(context.Background()); !errors.Is(err, storage.ErrClosed) {
		t.Errorf("Driver() after Shutdown error = %v, want ErrClosed", err)
	}
}
