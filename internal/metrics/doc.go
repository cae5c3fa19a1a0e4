// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

/*
Package metrics defines the Prometheus collectors exported by Cinevault.

All collectors are registered on the default registry through promauto and
are served by the ops server at /metrics.

# Storage Facade

  - cinevault_storage_operations_total{operation,outcome}
  - cinevault_storage_operation_duration_seconds{operation}
  - cinevault_storage_fallbacks_total{operation,reason}

An "unsupported" outcome means the active backend lacks the capability and the
documented default was returned. No duration is observed for those calls.

# Backends

  - cinevault_kv_command_duration_seconds{backend,command}
  - cinevault_kv_command_errors_total{backend,command}
  - cinevault_kv_expired_swept_total{backend}
  - cinevault_badger_value_log_gc_runs_total{result}
  - cinevault_sql_query_duration_seconds{dialect,operation}
  - cinevault_sql_query_errors_total{dialect,operation}
  - cinevault_proxy_requests_total{command,status}
  - cinevault_proxy_retries_total
  - cinevault_circuit_breaker_state{name}
  - cinevault_circuit_breaker_state_transitions_total{name,from,to}

# Example

	start := time.Now()
	err := backend.Set(ctx, key, value, 0)
	metrics.RecordKVCommand("redis", "set", time.Since(start), err)
*/
package metrics
