// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation outcomes recorded on StorageOperations.
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeUnsupported = "unsupported"
)

var (
	// Storage facade metrics
	StorageOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinevault_storage_operations_total",
			Help: "Total number of storage facade operations by outcome",
		},
		[]string{"operation", "outcome"}, // outcome: success, error, unsupported
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinevault_storage_operation_duration_seconds",
			Help:    "Duration of storage facade operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StorageFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinevault_storage_fallbacks_total",
			Help: "Times an operation used its slow fallback path",
		},
		[]string{"operation", "reason"}, // reason: no_raw_kv, index_miss
	)

	// Key-value backend metrics
	KVCommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinevault_kv_command_duration_seconds",
			Help:    "Duration of primitive key-value backend commands",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"backend", "command"},
	)

	KVCommandErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinevault_kv_command_errors_total",
			Help: "Total number of failed key-value backend commands",
		},
		[]string{"backend", "command"},
	)

	KVExpiredSwept = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinevault_kv_expired_swept_total",
			Help: "Expired entries removed by the background sweeper",
		},
		[]string{"backend"},
	)

	BadgerGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinevault_badger_value_log_gc_runs_total",
			Help: "Badger value log GC passes by result",
		},
		[]string{"result"}, // result: rewritten, nothing, error
	)

	// Relational backend metrics
	SQLQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinevault_sql_query_duration_seconds",
			Help:    "Duration of relational backend queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"dialect", "operation"},
	)

	SQLQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinevault_sql_query_errors_total",
			Help: "Total number of failed relational backend queries",
		},
		[]string{"dialect", "operation"},
	)

	// Proxy transport metrics
	ProxyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinevault_proxy_requests_total",
			Help: "REST proxy requests by HTTP status class",
		},
		[]string{"command", "status"},
	)

	ProxyRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinevault_proxy_retries_total",
			Help: "Total number of retried REST proxy requests",
		},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinevault_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinevault_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Ops HTTP server metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinevault_http_requests_total",
			Help: "Total number of ops HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)

// RecordStorageOperation records one facade call.
func RecordStorageOperation(operation, outcome string, duration time.Duration) {
	StorageOperations.WithLabelValues(operation, outcome).Inc()
	if outcome != OutcomeUnsupported {
		StorageOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// RecordStorageFallback records use of a slow fallback path.
func RecordStorageFallback(operation, reason string) {
	StorageFallbacks.WithLabelValues(operation, reason).Inc()
}

// RecordKVCommand records a primitive backend command.
func RecordKVCommand(backend, command string, duration time.Duration, err error) {
	KVCommandDuration.WithLabelValues(backend, command).Observe(duration.Seconds())
	if err != nil {
		KVCommandErrors.WithLabelValues(backend, command).Inc()
	}
}

// RecordExpiredSwept adds n swept entries for backend.
func RecordExpiredSwept(backend string, n int) {
	if n > 0 {
		KVExpiredSwept.WithLabelValues(backend).Add(float64(n))
	}
}

// RecordBadgerGC records one value log GC pass.
func RecordBadgerGC(result string) {
	BadgerGCRuns.WithLabelValues(result).Inc()
}

// RecordSQLQuery records a relational backend query.
func RecordSQLQuery(dialect, operation string, duration time.Duration, err error) {
	SQLQueryDuration.WithLabelValues(dialect, operation).Observe(duration.Seconds())
	if err != nil {
		SQLQueryErrors.WithLabelValues(dialect, operation).Inc()
	}
}

// RecordProxyRequest records one REST proxy round trip. status is the HTTP
// status code, or 0 when no response was received.
func RecordProxyRequest(command string, status int) {
	ProxyRequests.WithLabelValues(command, statusClass(status)).Inc()
}

// RecordProxyRetry counts a retried proxy request.
func RecordProxyRetry() {
	ProxyRetries.Inc()
}

// SetCircuitBreakerState publishes the numeric state of a breaker.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCircuitBreakerTransition counts a breaker state change.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}

// RecordAPIRequest records an ops HTTP request.
func RecordAPIRequest(method, route string, status int) {
	APIRequestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status <= 0:
		return "none"
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
