// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

//go:build !nats

package kvstore

import (
	"context"
	"errors"

	"github.com/benbjohnson/clock"
)

// NATSSupported reports whether this binary was built with the nats tag.
const NATSSupported = false

// ErrNATSNotCompiled is returned by OpenNATS in builds without the nats tag.
var ErrNATSNotCompiled = errors.New("nats backend not compiled in (build with -tags nats)")

// NATSConfig configures the JetStream key-value backend.
type NATSConfig struct {
	URL      string
	Bucket   string
	Embedded bool
	StoreDir string
	Clock    clock.Clock
}

// NATS is unavailable in this build.
type NATS struct {
	Backend
}

// OpenNATS always fails in builds without the nats tag.
func OpenNATS(_ context.Context, _ NATSConfig) (*NATS, error) {
	return nil, ErrNATSNotCompiled
}
