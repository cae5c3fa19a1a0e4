// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package models

// PushSearchKeyword returns history with keyword moved (or added) to the
// front, truncated to SearchHistoryLimit. history is not modified.
func PushSearchKeyword(history []string, keyword string) []string {
	out := make([]string, 0, SearchHistoryLimit)
	out = append(out, keyword)
	for _, k := range history {
		if len(out) == SearchHistoryLimit {
			break
		}
		if k != keyword {
			out = append(out, k)
		}
	}
	return out
}

// RemoveSearchKeyword returns history without keyword.
func RemoveSearchKeyword(history []string, keyword string) []string {
	out := make([]string, 0, len(history))
	for _, k := range history {
		if k != keyword {
			out = append(out, k)
		}
	}
	return out
}
