// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/cinevault/internal/logging"
	"github.com/tomtom215/cinevault/internal/metrics"
)

// BindEmail records email on the user's profile and in the email index.
//
// Without UserStoreV2 only the index is written. Without RawKV only the
// profile is written. A previous index entry that still points at this user
// is removed. Conflicts between users are the caller's responsibility.
func (m *Manager) BindEmail(ctx context.Context, userName, email string) (err error) {
	defer m.track("BindEmail", time.Now(), &err)
	defer func() {
		m.accounts.LogEvent(&logging.AccountEvent{
			Event: "email_bound", Username: userName, Email: email,
			Backend: m.kind, Success: err == nil, Error: err,
		})
	}()

	var previous string
	if m.userV2 != nil {
		info, getErr := m.userV2.GetUserInfoV2(ctx, userName)
		if getErr != nil {
			return getErr
		}
		if info == nil {
			return fmt.Errorf("bind email for %q: %w", userName, ErrUserNotFound)
		}
		previous = info.Email
		info.Email = email
		if err = m.userV2.UpdateUserInfoV2(ctx, userName, info); err != nil {
			return err
		}
	}

	if m.raw == nil {
		return nil
	}

	if previous != "" && previous != email {
		owner, ok, getErr := m.raw.RawGet(ctx, EmailIndexKey(previous))
		if getErr != nil {
			return getErr
		}
		if ok && owner == userName {
			if err = m.raw.RawDelete(ctx, EmailIndexKey(previous)); err != nil {
				return err
			}
		}
	}

	if email == "" {
		return nil
	}
	return m.raw.RawSet(ctx, EmailIndexKey(email), userName, 0)
}

// SetEmailNotifications toggles the user's email notification flag.
func (m *Manager) SetEmailNotifications(ctx context.Context, userName string, enabled bool) (err error) {
	if m.userV2 == nil {
		m.unsupported("SetEmailNotifications")
		return nil
	}
	defer m.track("SetEmailNotifications", time.Now(), &err)

	info, err := m.userV2.GetUserInfoV2(ctx, userName)
	if err != nil {
		return err
	}
	if info == nil {
		return fmt.Errorf("set email notifications for %q: %w", userName, ErrUserNotFound)
	}
	info.EmailNotifications = enabled
	return m.userV2.UpdateUserInfoV2(ctx, userName, info)
}

// GetUserByEmail resolves the account bound to email. The email index is
// consulted first; on a miss, or when the backend has no index, the first
// 1000 extended accounts are scanned for an exact match.
func (m *Manager) GetUserByEmail(ctx context.Context, email string) (userName string, ok bool, err error) {
	defer m.track("GetUserByEmail", time.Now(), &err)
	if email == "" {
		return "", false, nil
	}

	if m.raw != nil {
		userName, ok, err = m.raw.RawGet(ctx, EmailIndexKey(email))
		if err != nil || ok {
			return userName, ok, err
		}
		metrics.RecordStorageFallback("GetUserByEmail", "index_miss")
	} else {
		metrics.RecordStorageFallback("GetUserByEmail", "no_raw_kv")
	}

	if m.userV2 == nil {
		return "", false, nil
	}
	page, err := m.userV2.GetUserListV2(ctx, 0, emailScanLimit, "")
	if err != nil {
		return "", false, err
	}
	for i := range page.Users {
		if page.Users[i].Email == email {
			return page.Users[i].Username, true, nil
		}
	}
	return "", false, nil
}

// SetResetToken binds token to userName for the reset token TTL.
func (m *Manager) SetResetToken(ctx context.Context, token, userName string) (err error) {
	if m.raw == nil {
		m.unsupported("SetResetToken")
		return nil
	}
	defer m.track("SetResetToken", time.Now(), &err)
	defer func() {
		m.accounts.LogEvent(&logging.AccountEvent{
			Event: "reset_token_issued", Username: userName, Token: token,
			Backend: m.kind, Success: err == nil, Error: err,
		})
	}()
	return m.raw.RawSet(ctx, ResetTokenKey(token), userName, m.resetTTL)
}

// VerifyResetToken returns the user bound to token. Expired tokens read as absent.
func (m *Manager) VerifyResetToken(ctx context.Context, token string) (userName string, ok bool, err error) {
	if m.raw == nil {
		m.unsupported("VerifyResetToken")
		return "", false, nil
	}
	defer m.track("VerifyResetToken", time.Now(), &err)
	return m.raw.RawGet(ctx, ResetTokenKey(token))
}

// DeleteResetToken invalidates token.
func (m *Manager) DeleteResetToken(ctx context.Context, token string) (err error) {
	if m.raw == nil {
		m.unsupported("DeleteResetToken")
		return nil
	}
	defer m.track("DeleteResetToken", time.Now(), &err)
	return m.raw.RawDelete(ctx, ResetTokenKey(token))
}

// ConsumeResetToken verifies and invalidates token in one call. Backends
// implementing AtomicTaker guarantee that at most one caller receives the
// user; others fall back to a read followed by a delete.
func (m *Manager) ConsumeResetToken(ctx context.Context, token string) (userName string, ok bool, err error) {
	if m.raw == nil {
		m.unsupported("ConsumeResetToken")
		return "", false, nil
	}
	defer m.track("ConsumeResetToken", time.Now(), &err)
	defer func() {
		if ok || err != nil {
			m.accounts.LogEvent(&logging.AccountEvent{
				Event: "reset_token_consumed", Username: userName, Token: token,
				Backend: m.kind, Success: err == nil, Error: err,
			})
		}
	}()

	key := ResetTokenKey(token)
	if m.taker != nil {
		return m.taker.RawTake(ctx, key)
	}
	userName, ok, err = m.raw.RawGet(ctx, key)
	if err != nil || !ok {
		return userName, ok, err
	}
	if err = m.raw.RawDelete(ctx, key); err != nil {
		return "", false, err
	}
	return userName, true, nil
}
