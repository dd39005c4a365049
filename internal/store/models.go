// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

// User is a back-office account.
type User struct {
	ID           int64        `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never expose in JSON
	Name         string       `json:"name"`
	Role         string       `json:"role"`
	AvatarPath   string       `json:"avatar_path"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	LastLoginAt  sql.NullTime `json:"last_login_at,omitempty"`
}

// AdminIPSetting is the singleton toggle for the admin IP allow-list guard.
type AdminIPSetting struct {
	ID        int64
	Enabled   bool
	UpdatedAt time.Time
}

// AdminIPWhitelistEntry is one allow-listed source address.
type AdminIPWhitelistEntry struct {
	ID        int64     `json:"id"`
	IP        string    `json:"ip"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// AdminIPAuditEntry records a change to the guard configuration,
// kept separate from the content audit log.
type AdminIPAuditEntry struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	IP        string    `json:"ip"`
	Label     string    `json:"label"`
	ActorID   int64     `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditEntry is one append-only row of the content audit log.
type AuditEntry struct {
	ID          int64          `json:"id"`
	ContentType string         `json:"content_type"`
	ContentID   int64          `json:"content_id"`
	Action      string         `json:"action"`
	ActorID     int64          `json:"actor_id"`
	ActorName   string         `json:"actor_name"`
	BeforeData  sql.NullString `json:"before_data"`
	AfterData   sql.NullString `json:"after_data"`
	IPAddress   string         `json:"ip_address"`
	UserAgent   string         `json:"user_agent"`
	CreatedAt   time.Time      `json:"created_at"`
}

// Event is an operator-channel log entry fed by slog WARN+ records.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string // JSON string
	IPAddress string
	CreatedAt time.Time
}

// Post is a news/announcement entry on the public site.
type Post struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Body       string    `json:"body"`
	BodyFormat string    `json:"body_format"`
	Lang       string    `json:"lang"`
	Category   string    `json:"category"`
	AuthorID   int64     `json:"author_id"`
	ImagePath  string    `json:"image_path"`
	SortOrder  int64     `json:"sort_order"`
	Views      int64     `json:"views"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Product is an equipment catalog entry.
type Product struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Lang          string    `json:"lang"`
	Category      string    `json:"category"`
	ImagePath     string    `json:"image_path"`
	SpecSheetPath string    `json:"spec_sheet_path"`
	SortOrder     int64     `json:"sort_order"`
	Views         int64     `json:"views"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CatalogItem is a downloadable catalog document (PDF).
type CatalogItem struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Lang      string    `json:"lang"`
	FilePath  string    `json:"file_path"`
	SortOrder int64     `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Certification is a company certification displayed on the public site.
type Certification struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	Lang      string       `json:"lang"`
	ImagePath string       `json:"image_path"`
	IssuedAt  sql.NullTime `json:"issued_at"`
	SortOrder int64        `json:"sort_order"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// RecruitPost is a job opening. Soft-deleted via IsActive rather than
// removed, so past postings remain referencable.
type RecruitPost struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Lang         string    `json:"lang"`
	PositionType string    `json:"position_type"`
	IsActive     bool      `json:"is_active"`
	AuthorID     int64     `json:"author_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GalleryItem is a public gallery image with a generated thumbnail.
type GalleryItem struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Lang      string    `json:"lang"`
	ImagePath string    `json:"image_path"`
	ThumbPath string    `json:"thumb_path"`
	SortOrder int64     `json:"sort_order"`
	Views     int64     `json:"views"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ViewHit is one deduplication ledger row for public view counting.
type ViewHit struct {
	ID           int64
	ResourceType string
	ResourceID   int64
	IP           string
	UAHash       string
	SeenAt       time.Time
}

// TrafficEntry is one anonymized public page view.
type TrafficEntry struct {
	ID             int64
	Path           string
	IP             string
	CountryCode    string
	Browser        string
	OS             string
	DeviceType     string
	ReferrerDomain string
	CreatedAt      time.Time
}
