// Cinevault - Personal Media Tracking Storage
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinevault

package models

// AdminConfig is the single process-wide settings document.
type AdminConfig struct {
	SiteConfig  SiteConfig  `json:"site_config"`
	UserConfig  UserConfig  `json:"user_config"`
	EmailConfig EmailConfig `json:"email_config"`

	// SourceConfig lists the enabled video sources by key.
	SourceConfig []SourceEntry `json:"source_config,omitempty"`
}

// SiteConfig holds branding and search behaviour.
type SiteConfig struct {
	SiteName          string `json:"site_name"`
	Announcement      string `json:"announcement,omitempty"`
	SearchMaxPage     int    `json:"search_max_page"`
	SiteInterfaceTTL  int    `json:"site_interface_cache_time"` // seconds
	DisableYellow     bool   `json:"disable_yellow_filter"`
	FluidSearch       bool   `json:"fluid_search"`
	AllowRegistration bool   `json:"allow_registration"`
}

// UserConfig lists users declared by configuration (pre-V2 deployments).
type UserConfig struct {
	Users []AdminUser `json:"users"`
}

// AdminUser is a configuration-declared account.
type AdminUser struct {
	Username    string   `json:"username"`
	Role        Role     `json:"role"`
	Banned      bool     `json:"banned,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	EnabledApis []string `json:"enabled_apis,omitempty"`
}

// SourceEntry is one configured video source.
type SourceEntry struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	API      string `json:"api"`
	Detail   string `json:"detail,omitempty"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Email delivery types.
const (
	EmailTypeSMTP   = "smtp"
	EmailTypeResend = "resend"
)

// EmailConfig is the stored email delivery configuration.
// The storage layer only persists it; sending mail is another subsystem's job.
type EmailConfig struct {
	Enabled      bool   `json:"enabled"`
	Type         string `json:"type,omitempty"`
	SMTPHost     string `json:"smtp_host,omitempty"`
	SMTPPort     int    `json:"smtp_port,omitempty"`
	SMTPSecure   bool   `json:"smtp_secure,omitempty"`
	SMTPUser     string `json:"smtp_user,omitempty"`
	SMTPPass     string `json:"smtp_pass,omitempty"`
	SenderName   string `json:"sender_name,omitempty"`
	SenderEmail  string `json:"sender_email,omitempty"`
	ResendAPIKey string `json:"resend_api_key,omitempty"`
}
