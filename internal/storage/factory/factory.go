// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package factory

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/tomtom215/cinevault/internal/config"
	"github.com/tomtom215/cinevault/internal/logging"
	"github.com/tomtom215/cinevault/internal/storage"
	"github.com/tomtom215/cinevault/internal/storage/kvstore"
	"github.com/tomtom215/cinevault/internal/storage/sqlstore"
)

// connectTimeout bounds the reachability check of network backends.
const connectTimeout = 5 * time.Second

// Option configures driver construction.
type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock sets the clock used for timestamps and lazy expiry. Tests use a
// mock clock; production uses the wall clock.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// Open constructs the driver selected by cfg.Kind.
func Open(ctx context.Context, cfg *config.StorageConfig, opts ...Option) (storage.Driver, error) {
	o := options{clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}

	logger := logging.WithComponent("storage-factory")

	switch cfg.Kind {
	case config.StorageLocal:
		backend, err := openLocal(cfg.Local, o)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("engine", backend.Name()).Msg("opened local storage")
		return newKVDriver(backend, cfg, o), nil

	case config.StorageRemote:
		backend, err := openRemote(ctx, cfg.Remote, o)
		if err != nil {
			return nil, err
		}
		if err := ping(ctx, backend); err != nil {
			closeQuietly(backend)
			return nil, fmt.Errorf("remote storage unreachable: %w", err)
		}
		logger.Info().Str("protocol", backend.Name()).Msg("connected to remote storage")
		return newKVDriver(backend, cfg, o), nil

	case config.StorageProxy:
		backend, err := kvstore.NewProxy(kvstore.ProxyConfig{
			URL:               cfg.Proxy.URL,
			Token:             cfg.Proxy.Token,
			Timeout:           cfg.Proxy.Timeout,
			MaxElapsed:        cfg.Proxy.MaxElapsed,
			RequestsPerSecond: cfg.Proxy.RequestsPerSecond,
			Burst:             cfg.Proxy.Burst,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create proxy storage: %w", err)
		}
		if err := ping(ctx, backend); err != nil {
			closeQuietly(backend)
			return nil, fmt.Errorf("proxy storage unreachable: %w", err)
		}
		logger.Info().Msg("connected to proxy storage")
		return newKVDriver(backend, cfg, o), nil

	case config.StorageRelational:
		store, err := sqlstore.Open(ctx, sqlstore.Config{
			Adapter:      sqlstore.Adapter(cfg.Relational.Adapter),
			DSN:          cfg.Relational.DSN,
			Path:         cfg.Relational.Path,
			MaxOpenConns: cfg.Relational.MaxOpenConns,
			BcryptCost:   cfg.BcryptCost,
			Clock:        o.clock,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open relational storage: %w", err)
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage kind %q", cfg.Kind)
	}
}

func openLocal(cfg config.LocalStorageConfig, o options) (kvstore.Backend, error) {
	switch cfg.Engine {
	case config.EngineMemory:
		return kvstore.NewMemory(o.clock), nil
	case config.EngineBadger, "":
		b, err := kvstore.OpenBadger(kvstore.BadgerConfig{
			Path:       cfg.Path,
			InMemory:   cfg.InMemory,
			SyncWrites: cfg.SyncWrites,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open badger storage: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown local engine %q", cfg.Engine)
	}
}

func openRemote(ctx context.Context, cfg config.RemoteStorageConfig, o options) (kvstore.Backend, error) {
	switch cfg.Protocol {
	case config.ProtocolRedis, "":
		r, err := kvstore.NewRedis(kvstore.RedisConfig{
			URL:       cfg.URL,
			Addr:      cfg.Addr,
			Password:  cfg.Password,
			DB:        cfg.DB,
			KeyPrefix: cfg.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis storage: %w", err)
		}
		return r, nil
	case config.ProtocolNATS:
		n, err := kvstore.OpenNATS(ctx, kvstore.NATSConfig{
			URL:      cfg.NATS.URL,
			Bucket:   cfg.NATS.Bucket,
			Embedded: cfg.NATS.Embedded,
			StoreDir: cfg.NATS.StoreDir,
			Clock:    o.clock,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open nats storage: %w", err)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("unknown remote protocol %q", cfg.Protocol)
	}
}

func newKVDriver(backend kvstore.Backend, cfg *config.StorageConfig, o options) storage.Driver {
	return kvstore.NewDriver(backend,
		kvstore.WithBcryptCost(cfg.BcryptCost),
		kvstore.WithClock(o.clock),
	)
}

func ping(ctx context.Context, backend kvstore.Backend) error {
	p, ok := backend.(kvstore.Pinger)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	return p.Ping(ctx)
}

func closeQuietly(backend kvstore.Backend) {
	if err := backend.Close(); err != nil {
		logging.Warn().Err(err).Str("backend", backend.Name()).Msg("failed to close storage backend")
	}
}
