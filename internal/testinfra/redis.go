// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

//go:build integration

package testinfra

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultRedisImage is used by NewRedisContainer. Kvrocks speaks the
	// same protocol and can be swapped in with WithImage.
	DefaultRedisImage = "redis:7-alpine"

	redisPort = "6379/tcp"
)

// RedisContainer is a running Redis server.
type RedisContainer struct {
	testcontainers.Container
	// Addr is host:port, suitable for RedisConfig.Addr.
	Addr string
	// URL is a redis:// URL for the same server.
	URL string
}

// NewRedisContainer starts a Redis container and waits until it accepts
// connections.
func NewRedisContainer(ctx context.Context, opts ...ContainerOption) (*RedisContainer, error) {
	o := applyOptions(DefaultRedisImage, opts)

	req := testcontainers.ContainerRequest{
		Image:        o.image,
		ExposedPorts: []string{redisPort},
		WaitingFor: wait.ForAll(
			wait.ForLog("Ready to accept connections"),
			wait.ForListeningPort(redisPort),
		).WithStartupTimeout(o.startTimeout),
	}

	container, addr, err := startContainer(ctx, req, o, redisPort)
	if err != nil {
		return nil, err
	}

	return &RedisContainer{
		Container: container,
		Addr:      addr,
		URL:       "redis://" + addr + "/0",
	}, nil
}

// StartRedis starts Redis for the duration of the test, skipping the test
// when Docker is unavailable.
func StartRedis(t *testing.T, opts ...ContainerOption) *RedisContainer {
	t.Helper()
	SkipIfNoDocker(t)

	opts = append([]ContainerOption{WithLogger(NewContainerLogger(t))}, opts...)
	c, err := NewRedisContainer(context.Background(), opts...)
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	CleanupContainer(t, c.Container)
	return c
}
