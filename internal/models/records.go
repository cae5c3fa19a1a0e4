// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package models

// SearchHistoryLimit is the maximum number of keywords kept per user.
const SearchHistoryLimit = 20

// PlayRecord is the playback progress of one title for one user.
// PlayTime and TotalTime are in seconds; SaveTime is unix milliseconds.
type PlayRecord struct {
	Title         string `json:"title"`
	SourceName    string `json:"source_name"`
	Cover         string `json:"cover"`
	Year          string `json:"year"`
	Index         int    `json:"index"`          // Current episode (1-based)
	TotalEpisodes int    `json:"total_episodes"` // Episode count of the title
	PlayTime      int    `json:"play_time"`
	TotalTime     int    `json:"total_time"`
	SaveTime      int64  `json:"save_time"`
	SearchTitle   string `json:"search_title,omitempty"`
}

// Favorite marks a title as saved by a user.
// The existence of a Favorite at a key is what "favorited" means.
type Favorite struct {
	Title         string `json:"title"`
	SourceName    string `json:"source_name"`
	Cover         string `json:"cover"`
	Year          string `json:"year"`
	TotalEpisodes int    `json:"total_episodes"`
	SaveTime      int64  `json:"save_time"`
	SearchTitle   string `json:"search_title,omitempty"`
	Origin        string `json:"origin,omitempty"` // "vod" or "live"
}

// SkipConfig holds intro/outro skip ranges for one title, in seconds.
type SkipConfig struct {
	Enable    bool `json:"enable"`
	IntroTime int  `json:"intro_time"`
	OutroTime int  `json:"outro_time"`
}

// Danmaku filter rule types.
const (
	DanmakuFilterNormal = "normal"
	DanmakuFilterRegex  = "regex"
)

// DanmakuFilterRule is a single keyword or pattern hidden from the danmaku overlay.
type DanmakuFilterRule struct {
	ID      string `json:"id,omitempty"`
	Keyword string `json:"keyword"`
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}

// DanmakuFilterConfig is the per-user danmaku filter document.
type DanmakuFilterConfig struct {
	Rules []DanmakuFilterRule `json:"rules"`
}
