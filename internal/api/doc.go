// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

/*
Package api serves the ops HTTP endpoints of the storage server.

Routes:

	GET /healthz   liveness; 200 while the process runs
	GET /readyz    storage readiness: kind, capabilities, ping result; 503 when
	               the backend does not answer
	GET /metrics   Prometheus exposition

Every request gets a correlation ID (X-Request-ID is honored when present)
and is counted in cinevault_api_requests_total by route pattern. RouterConfig
adds per-IP rate limiting (go-chi/httprate) and CORS (go-chi/cors).
*/
package api
