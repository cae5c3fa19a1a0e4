// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package kvstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/cinevault/internal/logging"
	"github.com/tomtom215/cinevault/internal/storage"
)

// Store is the storage driver for key-value backends.
type Store struct {
	backend    Backend
	bcryptCost int
	clock      clock.Clock
	logger     zerolog.Logger
}

// AtomicStore is a Store whose backend supports atomic take; it additionally
// implements storage.AtomicTaker.
type AtomicStore struct {
	*Store
	taker Taker
}

// Compile-time interface checks.
var (
	_ storage.Driver             = (*Store)(nil)
	_ storage.UserStoreV2        = (*Store)(nil)
	_ storage.OidcUserLookup     = (*Store)(nil)
	_ storage.UserDirectory      = (*Store)(nil)
	_ storage.ConfigMigrator     = (*Store)(nil)
	_ storage.RecordMigrator     = (*Store)(nil)
	_ storage.AdminConfigStore   = (*Store)(nil)
	_ storage.SkipConfigStore    = (*Store)(nil)
	_ storage.DanmakuFilterStore = (*Store)(nil)
	_ storage.DataClearer        = (*Store)(nil)
	_ storage.GlobalValueStore   = (*Store)(nil)
	_ storage.RawKV              = (*Store)(nil)
	_ storage.Pinger             = (*Store)(nil)
	_ storage.Kinded             = (*Store)(nil)
	_ storage.AtomicTaker        = (*AtomicStore)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithBcryptCost sets the bcrypt cost used for new password hashes.
func WithBcryptCost(cost int) Option {
	return func(s *Store) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// WithClock sets the clock used for CreatedAt timestamps.
func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// New creates a Store on top of backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:    backend,
		bcryptCost: bcrypt.DefaultCost,
		clock:      clock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.WithBackend("kvstore", backend.Name())
	return s
}

// NewDriver creates a Store and, when the backend supports atomic take,
// returns it as an *AtomicStore so the storage manager can detect it.
func NewDriver(backend Backend, opts ...Option) storage.Driver {
	s := New(backend, opts...)
	if t, ok := backend.(Taker); ok {
		return &AtomicStore{Store: s, taker: t}
	}
	return s
}

// Kind returns the backend name.
func (s *Store) Kind() string {
	return s.backend.Name()
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Ping checks backend reachability when the backend supports it.
func (s *Store) Ping(ctx context.Context) error {
	if p, ok := s.backend.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// getJSON decodes the value at key into dst. It reports false when absent.
func (s *Store) getJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) setJSON(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, raw, 0); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.backend.Delete(ctx, keys...); err != nil {
		return fmt.Errorf("delete %s: %w", keys[0], err)
	}
	return nil
}

func (s *Store) keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := s.backend.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list %s*: %w", prefix, err)
	}
	return keys, nil
}

func (s *Store) exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	return ok, nil
}

// getAll loads every JSON value under prefix into a map keyed by the
// remainder of the key. Values deleted between listing and reading are skipped.
func getAll[T any](ctx context.Context, s *Store, prefix string) (map[string]*T, error) {
	keys, err := s.keys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*T, len(keys))
	for _, k := range keys {
		v := new(T)
		ok, err := s.getJSON(ctx, k, v)
		if err != nil {
			return nil, err
		}
		if ok {
			out[strings.TrimPrefix(k, prefix)] = v
		}
	}
	return out, nil
}

func (s *Store) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (s *Store) nowMillis() int64 {
	return s.clock.Now().UnixMilli()
}
