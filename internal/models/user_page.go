// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package models

import "sort"

// PageUsers orders users by CreatedAt then Username, moves ownerUsername (if
// present) to the front, and returns the [offset, offset+limit) window.
// Total is the number of users before windowing. users is reordered in place.
func PageUsers(users []UserInfoV2, offset, limit int, ownerUsername string) *UserListPage {
	sort.SliceStable(users, func(i, j int) bool {
		if ownerUsername != "" {
			oi, oj := users[i].Username == ownerUsername, users[j].Username == ownerUsername
			if oi != oj {
				return oi
			}
		}
		if users[i].CreatedAt != users[j].CreatedAt {
			return users[i].CreatedAt < users[j].CreatedAt
		}
		return users[i].Username < users[j].Username
	})

	page := &UserListPage{Users: []UserInfoV2{}, Total: len(users)}
	if offset >= len(users) || limit <= 0 {
		return page
	}
	end := offset + limit
	if end > len(users) {
		end = len(users)
	}
	page.Users = append(page.Users, users[offset:end]...)
	return page
}
