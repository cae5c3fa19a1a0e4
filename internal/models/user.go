// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package models

// Role is the V2 account role.
type Role string

// Account roles, highest privilege first.
const (
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// UserInfoV2 is the extended account profile.
//
// Password hashes are never part of this struct; drivers keep them in their
// own storage representation and only expose verification.
type UserInfoV2 struct {
	Username           string            `json:"username"`
	Role               Role              `json:"role"`
	Banned             bool              `json:"banned"`
	Tags               []string          `json:"tags,omitempty"`
	OidcSub            string            `json:"oidc_sub,omitempty"`
	EnabledApis        []string          `json:"enabled_apis,omitempty"`
	CreatedAt          int64             `json:"created_at"` // unix milliseconds
	Email              string            `json:"email,omitempty"`
	EmailNotifications bool              `json:"email_notifications"`
	Profile            map[string]string `json:"profile,omitempty"`
}

// HasTag reports whether the user carries the given tag.
func (u *UserInfoV2) HasTag(tag string) bool {
	for _, t := range u.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can merge fields without aliasing
// slices or maps held by a driver.
func (u *UserInfoV2) Clone() *UserInfoV2 {
	if u == nil {
		return nil
	}
	c := *u
	if u.Tags != nil {
		c.Tags = append([]string(nil), u.Tags...)
	}
	if u.EnabledApis != nil {
		c.EnabledApis = append([]string(nil), u.EnabledApis...)
	}
	if u.Profile != nil {
		c.Profile = make(map[string]string, len(u.Profile))
		for k, v := range u.Profile {
			c.Profile[k] = v
		}
	}
	return &c
}

// UserListPage is one page of V2 users plus the total number of V2 users.
type UserListPage struct {
	Users []UserInfoV2 `json:"users"`
	Total int          `json:"total"`
}
