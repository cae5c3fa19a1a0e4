// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

/*
Package supervisor provides process supervision for Cinevault using suture v4.

The tree keeps storage maintenance loops and the HTTP server in separate
child supervisors so a crashing maintenance loop never takes the API down:

	RootSupervisor ("cinevault")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── BadgerGCService
	│   └── ExpirySweepService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}

	for _, svc := range services.StorageMaintenance(driver, cfg.Maintenance) {
	    tree.AddMaintenanceService(svc)
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor tree error")
	}

# Configuration

TreeConfig controls restart behavior. DefaultTreeConfig matches suture's
defaults:

  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

# Service Interface

All services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Returning an error restarts the service. Returning suture.ErrDoNotRestart
stops it for good. Services must return promptly once ctx is canceled.

Storage drivers themselves are not supervised. They are opened once by
factory.Provider and closed after the tree has stopped.

If services do not stop within the timeout, UnstoppedServiceReport lists
them.
*/
package supervisor
