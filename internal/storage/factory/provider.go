// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package factory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/cinevault/internal/config"
	"github.com/tomtom215/cinevault/internal/logging"
	"github.com/tomtom215/cinevault/internal/storage"
)

// Provider owns the single storage driver of a process. The zero value is
// not usable; create one with NewProvider.
type Provider struct {
	cfg  config.StorageConfig
	opts []Option

	once    sync.Once
	driver  storage.Driver
	manager *storage.Manager
	err     error

	closeOnce sync.Once
	closeErr  error
}

// NewProvider returns a Provider that opens the driver described by cfg on
// first use.
func NewProvider(cfg config.StorageConfig, opts ...Option) *Provider {
	return &Provider{cfg: cfg, opts: opts}
}

// Driver returns the driver, constructing it on the first call. A failed
// construction is remembered and returned by every later call.
func (p *Provider) Driver(ctx context.Context) (storage.Driver, error) {
	p.once.Do(func() {
		p.driver, p.err = Open(ctx, &p.cfg, p.opts...)
		if p.err != nil {
			return
		}
		p.manager = storage.NewManager(p.driver,
			storage.WithLogger(logging.WithComponent("storage")),
			storage.WithResetTokenTTL(p.cfg.ResetTokenTTL),
		)
		logging.Info().
			Str("kind", p.manager.Kind()).
			Strs("capabilities", p.manager.Capabilities().Names()).
			Msg("storage driver initialized")
	})
	return p.driver, p.err
}

// Manager returns the facade over the driver.
func (p *Provider) Manager(ctx context.Context) (*storage.Manager, error) {
	if _, err := p.Driver(ctx); err != nil {
		return nil, err
	}
	return p.manager, nil
}

// Shutdown closes the driver if it was constructed. It is safe to call more
// than once.
func (p *Provider) Shutdown() error {
	p.closeOnce.Do(func() {
		// Driver calls after Shutdown report ErrClosed.
		p.once.Do(func() { p.err = fmt.Errorf("storage provider: %w", storage.ErrClosed) })
		if p.driver == nil {
			return
		}
		p.closeErr = p.driver.Close()
		if p.closeErr == nil {
			logging.Info().Str("kind", p.manager.Kind()).Msg("storage driver closed")
		}
	})
	return p.closeErr
}
