// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package storage

import (
	"context"

	"github.com/tomtom215/cinevault/internal/models"
)

// Driver is the storage contract every backend must implement.
//
// Reads return (nil, nil) for absent records. Writes replace the stored value
// entirely. The key argument of per-title methods is produced by Key.
type Driver interface {
	// Play records
	GetPlayRecord(ctx context.Context, userName, key string) (*models.PlayRecord, error)
	SetPlayRecord(ctx context.Context, userName, key string, record *models.PlayRecord) error
	GetAllPlayRecords(ctx context.Context, userName string) (map[string]*models.PlayRecord, error)
	DeletePlayRecord(ctx context.Context, userName, key string) error

	// Favorites
	GetFavorite(ctx context.Context, userName, key string) (*models.Favorite, error)
	SetFavorite(ctx context.Context, userName, key string, favorite *models.Favorite) error
	GetAllFavorites(ctx context.Context, userName string) (map[string]*models.Favorite, error)
	DeleteFavorite(ctx context.Context, userName, key string) error

	// Legacy (V1) accounts. ChangePassword creates the account when absent.
	VerifyUser(ctx context.Context, userName, password string) (bool, error)
	CheckUserExist(ctx context.Context, userName string) (bool, error)
	ChangePassword(ctx context.Context, userName, newPassword string) error
	DeleteUser(ctx context.Context, userName string) error

	// Search history, most-recent-first. An empty keyword clears the history.
	GetSearchHistory(ctx context.Context, userName string) ([]string, error)
	AddSearchHistory(ctx context.Context, userName, keyword string) error
	DeleteSearchHistory(ctx context.Context, userName, keyword string) error

	// Close releases backend connections. The driver is unusable afterwards.
	Close() error
}

// Kinded is implemented by drivers that can name their backend technology
// (for logs and health output).
type Kinded interface {
	Kind() string
}

// Pinger is implemented by drivers that can cheaply check backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
