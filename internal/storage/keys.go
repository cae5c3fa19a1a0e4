// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package storage

import (
	"strings"

	"github.com/google/uuid"
)

// KeySeparator joins source and id in per-title keys.
// It must not appear inside source or id values.
const KeySeparator = "+"

// Auxiliary key namespaces written through RawKV.
const (
	EmailIndexPrefix = "email_index:"
	ResetTokenPrefix = "reset_token:"
)

// Key builds the storage key for a (source, id) pair.
// This is the only definition of the per-title key format; play records,
// favorites and skip configs all go through it.
func Key(source, id string) string {
	return source + KeySeparator + id
}

// SplitKey reverses Key. It splits at the first separator and reports false
// when the key contains none.
func SplitKey(key string) (source, id string, ok bool) {
	return strings.Cut(key, KeySeparator)
}

// EmailIndexKey is the reverse-index key mapping an email to a username.
func EmailIndexKey(email string) string {
	return EmailIndexPrefix + email
}

// ResetTokenKey is the key holding the username bound to a reset token.
func ResetTokenKey(token string) string {
	return ResetTokenPrefix + token
}

// NewResetToken returns a random, URL-safe password reset token.
func NewResetToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
