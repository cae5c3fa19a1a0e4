// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package storage

import "errors"

// Storage errors. Absent records are never reported through these; reads
// return a nil record (or ok=false) instead.
var (
	// ErrUnsupported is returned when a destructive operation is requested
	// from a driver that cannot perform it.
	ErrUnsupported = errors.New("operation unsupported by this storage backend")

	// ErrUserNotFound is returned by writes that require an existing V2 user.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when creating a V2 user that already exists.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidInput is returned when arguments violate the documented
	// input constraints (role, offset, limit).
	ErrInvalidInput = errors.New("invalid input")

	// ErrClosed is returned by drivers used after Close.
	ErrClosed = errors.New("storage closed")
)
