// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package services

import (
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/cinevault/internal/config"
	"github.com/tomtom215/cinevault/internal/storage"
	"github.com/tomtom215/cinevault/internal/storage/kvstore"
)

// StorageMaintenance returns the housekeeping services the driver's backend
// needs: value log GC for badger and an expiry sweep for backends that only
// expire on read. Drivers without such a backend get none.
func StorageMaintenance(driver storage.Driver, cfg config.MaintenanceConfig, opts ...ServiceOption) []suture.Service {
	holder, ok := driver.(interface{ Backend() kvstore.Backend })
	if !ok {
		return nil
	}
	backend := holder.Backend()

	var svcs []suture.Service
	if gc, ok := backend.(ValueLogCollector); ok && cfg.BadgerGCInterval > 0 {
		svcs = append(svcs, NewBadgerGCService(gc, cfg.BadgerGCInterval, cfg.BadgerGCDiscardRatio, opts...))
	}
	if _, lazy := backend.(kvstore.Sweeper); lazy && cfg.SweepInterval > 0 {
		if sw, ok := driver.(ExpirySweeper); ok {
			svcs = append(svcs, NewExpirySweepService(sw, backend.Name(), cfg.SweepInterval, opts...))
		}
	}
	return svcs
}
