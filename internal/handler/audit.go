// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/corpcms-go/internal/store"
)

// ListAuditEntries handles GET /api/audit. Optional content_type query
// parameter narrows the trail to a single resource kind.
func (h *Handler) ListAuditEntries(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 50, 200)
	contentType := r.URL.Query().Get("content_type")

	entries, err := h.queries.ListAuditEntries(r.Context(), store.ListAuditEntriesParams{
		ContentType: contentType,
		Limit:       int64(perPage),
		Offset:      int64((page - 1) * perPage),
	})
	if err != nil {
		slog.Error("audit list failed", "error", err)
		WriteInternalError(w, "Failed to list audit entries")
		return
	}
	total, err := h.queries.CountAuditEntries(r.Context(), contentType)
	if err != nil {
		slog.Error("audit count failed", "error", err)
		WriteInternalError(w, "Failed to list audit entries")
		return
	}

	WriteSuccess(w, entries, &Meta{Total: total, Page: page, PerPage: perPage})
}

// TrafficAnalytics handles GET /api/admin/analytics. The days query
// parameter bounds the window (default 7, max 90).
func (h *Handler) TrafficAnalytics(w http.ResponseWriter, r *http.Request) {
	days := parseIntParam(r, "days", 7, 1, 90)

	summary, err := h.traffic.Summarize(r.Context(), time.Now().AddDate(0, 0, -days), 10)
	if err != nil {
		slog.Error("traffic summary failed", "error", err)
		WriteInternalError(w, "Failed to build analytics")
		return
	}

	WriteSuccess(w, summary, nil)
}
