// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/cinevault/internal/api"
	"github.com/tomtom215/cinevault/internal/config"
	"github.com/tomtom215/cinevault/internal/logging"
	"github.com/tomtom215/cinevault/internal/storage/factory"
	"github.com/tomtom215/cinevault/internal/supervisor"
	"github.com/tomtom215/cinevault/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
		Service:   "cinevault",
	})

	logging.Info().
		Str("storage_kind", cfg.Storage.Kind).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting Cinevault")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider := factory.NewProvider(cfg.Storage)
	defer func() {
		if err := provider.Shutdown(); err != nil {
			logging.Error().Err(err).Msg("Error closing storage")
		}
	}()

	// Storage is opened eagerly so a bad configuration fails at startup
	// instead of on the first request.
	openCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	manager, err := provider.Manager(openCtx)
	cancel()
	if err != nil {
		return err
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}

	for _, svc := range services.StorageMaintenance(manager.Driver(), cfg.Maintenance) {
		tree.AddMaintenanceService(svc)
		logging.Info().Str("service", fmt.Sprint(svc)).Msg("Maintenance service added")
	}

	router := api.NewRouter(api.NewHandler(manager, nil), nil, &api.RouterConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		RateLimitRequests:  cfg.Server.RateLimitRequests,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	return nil
}
