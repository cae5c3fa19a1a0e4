// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package kvstore

import (
	"net/url"
	"strings"
)

const (
	userDataPrefix   = "u:"
	passwordPrefix   = "pwd:"
	userInfoPrefix   = "user:"
	oidcPrefix       = "oidc:"
	globalPrefix     = "global:"
	adminConfigKey   = "admin:config"
	playRecordSeg    = "pr:"
	favoriteSeg      = "fav:"
	skipConfigSeg    = "skip:"
	searchHistorySeg = "sh"
	danmakuSeg       = "danmaku"

	legacyPlayRecordsSeg = "playrecords"
	legacyFavoritesSeg   = "favorites"
	legacySkipConfigsSeg = "skipconfigs"
)

var userEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

func escapeUser(userName string) string {
	return userEscaper.Replace(userName)
}

func unescapeUser(escaped string) string {
	s, err := url.PathUnescape(escaped)
	if err != nil {
		return escaped
	}
	return s
}

// userPrefix is the prefix of every per-user data key.
func userPrefix(userName string) string {
	return userDataPrefix + escapeUser(userName) + ":"
}

func playRecordPrefix(userName string) string { return userPrefix(userName) + playRecordSeg }
func favoritePrefix(userName string) string   { return userPrefix(userName) + favoriteSeg }
func skipConfigPrefix(userName string) string { return userPrefix(userName) + skipConfigSeg }

func searchHistoryKey(userName string) string { return userPrefix(userName) + searchHistorySeg }
func danmakuKey(userName string) string       { return userPrefix(userName) + danmakuSeg }

func legacyKey(userName, seg string) string { return userPrefix(userName) + seg }

func passwordKey(userName string) string { return passwordPrefix + escapeUser(userName) }
func userInfoKey(userName string) string { return userInfoPrefix + escapeUser(userName) }
func oidcKey(sub string) string          { return oidcPrefix + sub }
func globalKey(key string) string        { return globalPrefix + key }
