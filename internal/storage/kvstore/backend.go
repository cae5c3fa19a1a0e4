// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package kvstore

import (
	"context"
	"time"

	"github.com/tomtom215/cinevault/internal/metrics"
)

// Backend is the primitive key-value surface a Store is built on.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Get returns the value at key. Missing and expired keys report ok=false.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value at key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// Keys lists every live key starting with prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	Close() error
}

// Flusher is implemented by backends that can drop all data in one call.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Taker is implemented by backends that can read and delete a key atomically.
type Taker interface {
	Take(ctx context.Context, key string) (value []byte, ok bool, err error)
}

// Pinger is implemented by backends with a reachability check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Sweeper is implemented by backends that expire entries lazily. Sweep
// removes expired entries and returns how many were removed.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// observe records one backend command. It is deferred with a pointer to the
// named error result.
func observe(backend, command string, start time.Time, errp *error) {
	metrics.RecordKVCommand(backend, command, time.Since(start), *errp)
}
