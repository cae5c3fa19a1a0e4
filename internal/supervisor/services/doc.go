// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

/*
Package services provides suture.Service wrappers for Cinevault components.

Each wrapper implements suture.Service and fmt.Stringer:

  - HTTPServerService: ops HTTP server with graceful shutdown
  - BadgerGCService: periodic badger value log GC
  - ExpirySweepService: periodic removal of expired entries on backends
    that expire lazily (memory, nats)

StorageMaintenance picks the maintenance services a storage driver needs.
Returning an error from Serve makes the supervisor restart the service; the
maintenance loops log failed passes and keep running instead.
*/
package services
