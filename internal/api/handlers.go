// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/tomtom215/cinevault/internal/logging"
	"github.com/tomtom215/cinevault/internal/models"
	"github.com/tomtom215/cinevault/internal/storage"
)

// readyTimeout bounds the storage ping of a readiness probe.
const readyTimeout = 2 * time.Second

// StorageStatus is the part of *storage.Manager the handlers need.
type StorageStatus interface {
	Kind() string
	Capabilities() storage.Capabilities
	Ping(ctx context.Context) error
}

// Handler serves the ops endpoints.
type Handler struct {
	storage   StorageStatus
	clock     clock.Clock
	startTime time.Time
}

// NewHandler creates a Handler reporting on st.
func NewHandler(st StorageStatus, c clock.Clock) *Handler {
	if c == nil {
		c = clock.New()
	}
	return &Handler{storage: st, clock: c, startTime: c.Now()}
}

// HealthLive reports that the process is alive, regardless of storage.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":          true,
			"uptime_seconds": h.clock.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{Timestamp: h.clock.Now()},
	})
}

// HealthReady pings the storage backend. It answers 503 when the ping fails.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	start := h.clock.Now()
	err := h.storage.Ping(ctx)
	health := models.StorageHealth{
		Kind:         h.storage.Kind(),
		Ready:        err == nil,
		Capabilities: h.storage.Capabilities().Names(),
		LatencyMS:    h.clock.Since(start).Milliseconds(),
		Uptime:       h.clock.Since(h.startTime).Seconds(),
	}
	if health.Capabilities == nil {
		health.Capabilities = []string{}
	}

	if err != nil {
		health.Error = err.Error()
		logging.Ctx(r.Context()).Warn().Err(err).Str("kind", health.Kind).Msg("storage not ready")
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status:   "error",
			Data:     health,
			Metadata: models.Metadata{Timestamp: h.clock.Now()},
			Error: &models.APIError{
				Code:    "STORAGE_UNAVAILABLE",
				Message: "storage backend did not answer",
			},
		})
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     health,
		Metadata: models.Metadata{Timestamp: h.clock.Now()},
	})
}
