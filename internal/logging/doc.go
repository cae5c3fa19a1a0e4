// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

/*
Package logging provides the zerolog-based logger shared by every Cinevault
package.

# Quick Start

	logging.Init(logging.Config{Level: "info", Format: "json"})

	logging.Info().Str("backend", "redis").Msg("storage opened")
	logging.Err(err).Msg("flush failed")
	logging.Ctx(ctx).Debug().Msg("storage call")

Always terminate event chains with Msg or Send; an unterminated event is
never written.

# Components

Packages derive child loggers with WithComponent. The storage manager,
the key-value backends and the maintenance services each tag their output
this way.

# slog Bridge

SlogHandler adapts zerolog to log/slog for libraries that only accept an
*slog.Logger, such as the supervisor event hook.

# Account Events

AccountLogger records credential and identity changes (user creation,
password changes, email binding, reset tokens). Usernames, email addresses
and tokens are masked before they are written.
*/
package logging
