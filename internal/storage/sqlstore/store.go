// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/cinevault/internal/logging"
	"github.com/tomtom215/cinevault/internal/metrics"
	"github.com/tomtom215/cinevault/internal/storage"
)

// Config configures the relational driver.
type Config struct {
	// Adapter selects the engine. Default: auto.
	Adapter Adapter

	// DSN is the connection string for postgres, or a database path for the
	// embedded engines. When empty the embedded engines use Path.
	DSN string

	// Path of the embedded database file. Empty or ":memory:" keeps the
	// database in memory.
	Path string

	// MaxOpenConns caps the pool. sqlite is always limited to one connection.
	MaxOpenConns int

	// BcryptCost for new password hashes. Default: bcrypt.DefaultCost.
	BcryptCost int

	// Clock for CreatedAt timestamps. Default: wall clock.
	Clock clock.Clock
}

// Store is the storage driver for relational databases.
type Store struct {
	db         *sql.DB
	dialect    dialect
	bcryptCost int
	clock      clock.Clock
	logger     zerolog.Logger
}

// Compile-time interface checks.
var (
	_ storage.Driver             = (*Store)(nil)
	_ storage.UserStoreV2        = (*Store)(nil)
	_ storage.OidcUserLookup     = (*Store)(nil)
	_ storage.UserDirectory      = (*Store)(nil)
	_ storage.ConfigMigrator     = (*Store)(nil)
	_ storage.AdminConfigStore   = (*Store)(nil)
	_ storage.SkipConfigStore    = (*Store)(nil)
	_ storage.DanmakuFilterStore = (*Store)(nil)
	_ storage.DataClearer        = (*Store)(nil)
	_ storage.GlobalValueStore   = (*Store)(nil)
	_ storage.Pinger             = (*Store)(nil)
	_ storage.Kinded             = (*Store)(nil)
)

// Open connects to the database, verifies the connection and creates the
// schema when missing.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	adapter, err := ResolveAdapter(cfg.Adapter, cfg.DSN)
	if err != nil {
		return nil, err
	}
	d := dialectFor(adapter)

	source, err := dataSource(adapter, cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driverName, source)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", adapter, err)
	}
	configurePool(db, adapter, cfg.MaxOpenConns)

	s := &Store{
		db:         db,
		dialect:    d,
		bcryptCost: bcrypt.DefaultCost,
		clock:      cfg.Clock,
		logger:     logging.WithBackend("sqlstore", string(adapter)),
	}
	if cfg.BcryptCost >= bcrypt.MinCost && cfg.BcryptCost <= bcrypt.MaxCost {
		s.bcryptCost = cfg.BcryptCost
	}
	if s.clock == nil {
		s.clock = clock.New()
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("failed to ping %s database: %w", adapter, err)
	}
	if err := s.initSchema(ctx); err != nil {
		closeQuietly(db)
		return nil, err
	}

	s.logger.Info().Msg("relational storage ready")
	return s, nil
}

func dataSource(adapter Adapter, cfg Config) (string, error) {
	if adapter == AdapterPostgres {
		if cfg.DSN == "" {
			return "", errors.New("postgres adapter requires a DSN")
		}
		return cfg.DSN, nil
	}

	path := cfg.DSN
	if path == "" {
		path = cfg.Path
	}
	if path == "" || path == ":memory:" {
		return ":memory:", nil
	}

	// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}
	return path, nil
}

func configurePool(db *sql.DB, adapter Adapter, maxOpen int) {
	if adapter == AdapterSQLite {
		// Each sqlite :memory: connection is a separate database, and a single
		// writer avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		return
	}
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(5 * time.Minute)
}

func closeQuietly(db *sql.DB) {
	if err := db.Close(); err != nil {
		logging.Debug().Err(err).Msg("close after failed open")
	}
}

func (s *Store) initSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Kind returns the adapter name.
func (s *Store) Kind() string {
	return string(s.dialect.adapter)
}

// Ping implements storage.Pinger.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements storage.Driver.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying connection pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// exec runs a statement and records query metrics under op.
func (s *Store) exec(ctx context.Context, op, query string, args ...interface{}) (err error) {
	defer s.observe(op, time.Now(), &err)
	_, err = s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
	return err
}

// queryRow scans a single row into dest. It reports false for sql.ErrNoRows.
func (s *Store) queryRow(ctx context.Context, op, query string, args []interface{}, dest ...interface{}) (found bool, err error) {
	defer s.observe(op, time.Now(), &err)
	err = s.db.QueryRowContext(ctx, s.dialect.rebind(query), args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// query runs a multi-row query and calls scan for every row.
func (s *Store) query(ctx context.Context, op, query string, args []interface{}, scan func(*sql.Rows) error) (err error) {
	defer s.observe(op, time.Now(), &err)
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err = scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// inTx runs fn inside a transaction, rolling back on error.
func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) (err error) {
	defer s.observe(op, time.Now(), &err)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn().Err(rbErr).Str("op", op).Msg("rollback failed")
		}
		return err
	}
	return tx.Commit()
}

func (s *Store) observe(op string, start time.Time, errp *error) {
	metrics.RecordSQLQuery(string(s.dialect.adapter), op, time.Since(start), *errp)
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

func encode(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return string(data), nil
}

func decode(data string, dst interface{}) error {
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
