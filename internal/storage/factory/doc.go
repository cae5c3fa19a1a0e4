// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

/*
Package factory builds the storage driver selected by configuration.

Open constructs one driver from a config.StorageConfig:

	kind        secondary              driver
	local       engine=memory          kvstore on kvstore.Memory
	local       engine=badger          kvstore on kvstore.Badger
	remote      protocol=redis         kvstore on kvstore.Redis
	remote      protocol=nats          kvstore on kvstore.NATS (build tag nats)
	proxy                              kvstore on kvstore.Proxy
	relational  adapter=auto|duckdb|postgres|sqlite   sqlstore.Store

Provider wraps Open in a process-wide lazy instance. The first call to
Driver constructs the driver; later calls return the same instance or the
same construction error. The server builds one Provider at startup and
passes the resulting storage.Manager to its consumers.
*/
package factory
