// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// AccountEvent describes a change to an account's credentials or identity.
type AccountEvent struct {
	// Event is the kind of change, e.g. "user_created" or "reset_token_issued".
	Event    string
	Username string
	Email    string
	// Token is a reset token; it is always masked.
	Token   string
	Backend string
	Success bool
	Error   error
}

// AccountLogger writes account events with sensitive values masked.
type AccountLogger struct {
	logger zerolog.Logger
}

// NewAccountLogger creates an AccountLogger on top of logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAccountLogger(logger zerolog.Logger) *AccountLogger {
	return &AccountLogger{logger: logger.With().Str("component", "accounts").Logger()}
}

// LogEvent writes ev at info level, or warn level when it failed.
func (l *AccountLogger) LogEvent(ev *AccountEvent) {
	e := l.logger.Info()
	status := "success"
	if !ev.Success {
		e = l.logger.Warn()
		status = "failed"
	}
	e = e.Str("event", ev.Event).Str("status", status)

	if ev.Username != "" {
		e = e.Str("username", SanitizeUsername(ev.Username))
	}
	if ev.Email != "" {
		e = e.Str("email", SanitizeEmail(ev.Email))
	}
	if ev.Token != "" {
		e = e.Str("token", SanitizeToken(ev.Token))
	}
	if ev.Backend != "" {
		e = e.Str("backend", ev.Backend)
	}
	if ev.Error != nil {
		e = e.Err(ev.Error)
	}
	e.Msg("account event")
}

// SanitizeToken keeps the first and last 4 characters of a long token.
//
//	"0f3c9a7d5e2b4c1a8f6e" -> "0f3c...8f6e"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeUsername keeps the first 2 characters.
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}
	if len(username) <= 2 {
		return "***"
	}
	return username[:2] + "***"
}

// SanitizeEmail masks the local part of an address.
//
//	"john.doe@example.com" -> "jo***@example.com"
func SanitizeEmail(email string) string {
	if email == "" {
		return ""
	}
	at := strings.Index(email, "@")
	if at <= 0 {
		return "***"
	}
	local, domain := email[:at], email[at:]
	if len(local) <= 2 {
		return "***" + domain
	}
	return local[:2] + "***" + domain
}
