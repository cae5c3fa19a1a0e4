// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

// Package testinfra provides container-backed test infrastructure for the
// storage integration tests.
//
// The helpers use testcontainers-go to run the real servers behind the
// remote and relational storage kinds:
//
//	func TestRedisIntegration(t *testing.T) {
//	    redis := testinfra.StartRedis(t)
//
//	    backend, err := kvstore.NewRedis(kvstore.RedisConfig{Addr: redis.Addr})
//	    // ...
//	}
//
// Postgres works the same way through StartPostgres, whose DSN can be
// handed straight to sqlstore.Config.
//
// # Build Tag
//
// Everything except this file is compiled only with the integration tag:
//
//	go test -tags integration ./internal/storage/...
//
// Tests are skipped when the Docker daemon is unreachable. The first run
// pulls the images; later runs use the local cache.
package testinfra
