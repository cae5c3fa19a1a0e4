// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/cinevault/internal/logging"
	"github.com/tomtom215/cinevault/internal/metrics"
	"github.com/tomtom215/cinevault/internal/validation"
)

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = 900 * time.Second

// emailScanLimit bounds the user list scanned when the email index misses.
const emailScanLimit = 1000

// Manager is the facade in front of a single Driver. Optional capabilities are
// resolved once by NewManager; see the package documentation for the defaults
// returned when one is missing.
type Manager struct {
	driver Driver
	kind   string

	userV2   UserStoreV2
	oidc     OidcUserLookup
	dir      UserDirectory
	cfgMig   ConfigMigrator
	recMig   RecordMigrator
	admin    AdminConfigStore
	skip     SkipConfigStore
	danmaku  DanmakuFilterStore
	clearer  DataClearer
	globals  GlobalValueStore
	raw      RawKV
	taker    AtomicTaker
	pinger   Pinger
	caps     Capabilities
	resetTTL time.Duration

	logger   zerolog.Logger
	accounts *logging.AccountLogger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for dispatch diagnostics and account events.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithResetTokenTTL overrides ResetTokenTTL.
func WithResetTokenTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.resetTTL = ttl
		}
	}
}

// NewManager wraps driver and probes its optional capabilities.
func NewManager(driver Driver, opts ...Option) *Manager {
	m := &Manager{
		driver:   driver,
		kind:     "unknown",
		resetTTL: ResetTokenTTL,
		logger:   logging.WithComponent("storage"),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.accounts = logging.NewAccountLogger(m.logger)

	if k, ok := driver.(Kinded); ok {
		m.kind = k.Kind()
	}

	m.userV2, m.caps.UserStoreV2 = driver.(UserStoreV2)
	m.oidc, m.caps.OidcLookup = driver.(OidcUserLookup)
	m.dir, m.caps.UserDirectory = driver.(UserDirectory)
	m.cfgMig, m.caps.ConfigMigration = driver.(ConfigMigrator)
	m.recMig, m.caps.RecordMigration = driver.(RecordMigrator)
	m.admin, m.caps.AdminConfig = driver.(AdminConfigStore)
	m.skip, m.caps.SkipConfig = driver.(SkipConfigStore)
	m.danmaku, m.caps.DanmakuFilter = driver.(DanmakuFilterStore)
	m.clearer, m.caps.ClearAllData = driver.(DataClearer)
	m.globals, m.caps.GlobalValues = driver.(GlobalValueStore)
	m.raw, m.caps.RawKV = driver.(RawKV)
	if m.raw != nil {
		m.taker, m.caps.AtomicTake = driver.(AtomicTaker)
	}
	m.pinger, _ = driver.(Pinger)

	m.logger.Info().
		Str("backend", m.kind).
		Strs("capabilities", m.caps.Names()).
		Msg("storage manager ready")

	return m
}

// Kind names the backend technology, or "unknown".
func (m *Manager) Kind() string {
	return m.kind
}

// Capabilities reports which optional capabilities the driver provides.
func (m *Manager) Capabilities() Capabilities {
	return m.caps
}

// Driver returns the wrapped driver.
func (m *Manager) Driver() Driver {
	return m.driver
}

// Ping checks that the backend is reachable. Drivers that cannot be pinged
// are assumed healthy.
func (m *Manager) Ping(ctx context.Context) (err error) {
	if m.pinger == nil {
		return nil
	}
	defer m.track("Ping", time.Now(), &err)
	return m.pinger.Ping(ctx)
}

// Close closes the driver.
func (m *Manager) Close() error {
	return m.driver.Close()
}

func (m *Manager) track(op string, start time.Time, errp *error) {
	outcome := metrics.OutcomeSuccess
	if *errp != nil {
		outcome = metrics.OutcomeError
		m.logger.Debug().Err(*errp).Str("op", op).Str("backend", m.kind).Msg("storage operation failed")
	}
	metrics.RecordStorageOperation(op, outcome, time.Since(start))
}

func (m *Manager) unsupported(op string) {
	metrics.RecordStorageOperation(op, metrics.OutcomeUnsupported, 0)
	m.logger.Debug().Str("op", op).Str("backend", m.kind).Msg("capability not supported, returning default")
}

func (m *Manager) accountEvent(event, userName string, err error) {
	m.accounts.LogEvent(&logging.AccountEvent{
		Event:    event,
		Username: userName,
		Backend:  m.kind,
		Success:  err == nil,
		Error:    err,
	})
}

func validate(op string, s interface{}) error {
	if verr := validation.ValidateStruct(s); verr != nil {
		return fmt.Errorf("%s: %w: %s", op, ErrInvalidInput, verr.Error())
	}
	return nil
}
