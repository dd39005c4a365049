// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service contains business logic that sits between the HTTP
// handlers and the store: audit logging, view counting, traffic capture,
// and media uploads.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/corpcms-go/internal/store"
	"github.com/olegiv/corpcms-go/internal/util"
)

// Actor identifies who performed an audited mutation.
type Actor struct {
	ID   int64
	Name string
}

// AuditService appends rows to the content audit log. Logging is strictly
// best-effort: a failed insert is reported through slog and swallowed, so
// the business mutation it describes never fails or rolls back because of
// the audit trail.
type AuditService struct {
	queries *store.Queries
}

// NewAuditService creates an audit service.
func NewAuditService(queries *store.Queries) *AuditService {
	return &AuditService{queries: queries}
}

// Log records one mutation. before and after are snapshots of the affected
// row; either may be nil (nil before for CREATE, nil after for DELETE).
// r supplies the actor's IP and user agent and may be nil for internal
// mutations.
func (s *AuditService) Log(ctx context.Context, contentType string, contentID int64, action string, actor Actor, before, after any, r *http.Request) {
	var ip, userAgent string
	if r != nil {
		ip = util.ClientIP(r)
		userAgent = r.UserAgent()
	}

	err := s.queries.CreateAuditEntry(ctx, store.CreateAuditEntryParams{
		ContentType: contentType,
		ContentID:   contentID,
		Action:      action,
		ActorID:     actor.ID,
		ActorName:   actor.Name,
		BeforeData:  marshalSnapshot(contentType, "before", before),
		AfterData:   marshalSnapshot(contentType, "after", after),
		IPAddress:   ip,
		UserAgent:   userAgent,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		slog.Error("audit log write failed",
			"category", "audit",
			"content_type", contentType,
			"content_id", contentID,
			"action", action,
			"error", err)
	}
}

// marshalSnapshot serializes a row snapshot for storage. A marshal failure
// is logged and stored as NULL rather than aborting the audit row.
func marshalSnapshot(contentType, which string, v any) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("audit snapshot marshal failed",
			"category", "audit",
			"content_type", contentType,
			"snapshot", which,
			"error", err)
		return sql.NullString{}
	}
	return sql.NullString{String: string(data), Valid: true}
}
