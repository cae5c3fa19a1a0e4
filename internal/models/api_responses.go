// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package models

import (
	"time"
)

// APIResponse is the envelope of every ops endpoint response.
//
// Status is "success" or "error"; Error is set only for errors.
//
//	{
//	  "status": "success",
//	  "data": {"kind": "badger", "ready": true},
//	  "metadata": {"timestamp": "2026-01-28T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries the response timestamp.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
}

// APIError is a machine-readable error code plus a message.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// StorageHealth describes the active storage driver.
type StorageHealth struct {
	Kind         string   `json:"kind"`
	Ready        bool     `json:"ready"`
	Capabilities []string `json:"capabilities"`
	Error        string   `json:"error,omitempty"`
	LatencyMS    int64    `json:"latency_ms"`
	Uptime       float64  `json:"uptime_seconds"`
}
