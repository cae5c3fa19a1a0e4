// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultPostgresImage is used by NewPostgresContainer.
	DefaultPostgresImage = "postgres:16-alpine"

	postgresPort     = "5432/tcp"
	postgresUser     = "cinevault"
	postgresPassword = "cinevault"
	postgresDB       = "cinevault"
)

// PostgresContainer is a running PostgreSQL server with an empty database.
type PostgresContainer struct {
	testcontainers.Container
	// DSN is a postgres:// URL for lib/pq with TLS disabled.
	DSN string
}

// NewPostgresContainer starts PostgreSQL and waits until the server has
// finished its init cycle.
func NewPostgresContainer(ctx context.Context, opts ...ContainerOption) (*PostgresContainer, error) {
	o := applyOptions(DefaultPostgresImage, opts)

	req := testcontainers.ContainerRequest{
		Image:        o.image,
		ExposedPorts: []string{postgresPort},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDB,
		},
		// The entrypoint starts a temporary server for init scripts first,
		// so the ready line is logged twice.
		WaitingFor: wait.ForAll(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithPollInterval(200*time.Millisecond),
			wait.ForListeningPort(postgresPort),
		).WithStartupTimeout(o.startTimeout),
	}

	container, addr, err := startContainer(ctx, req, o, postgresPort)
	if err != nil {
		return nil, err
	}

	return &PostgresContainer{
		Container: container,
		DSN: fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
			postgresUser, postgresPassword, addr, postgresDB),
	}, nil
}

// StartPostgres starts PostgreSQL for the duration of the test, skipping
// the test when Docker is unavailable.
func StartPostgres(t *testing.T, opts ...ContainerOption) *PostgresContainer {
	t.Helper()
	SkipIfNoDocker(t)

	opts = append([]ContainerOption{WithLogger(NewContainerLogger(t))}, opts...)
	c, err := NewPostgresContainer(context.Background(), opts...)
	if err != nil {
		t.Fatalf("start postgres: %v", err)
	}
	CleanupContainer(t, c.Container)
	return c
}
