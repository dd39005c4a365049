// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"time"

	"github.com/olegiv/corpcms-go/internal/version"
)

// HealthStatus is the health check payload.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}

// Health handles GET /health. The database ping is the only dependency
// check; a failing store makes the whole service unhealthy.
func (h *Handler) Health(versionInfo *version.Info) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := HealthStatus{
			Status:    "ok",
			Timestamp: time.Now(),
		}
		if versionInfo != nil {
			status.Version = versionInfo.Version
		}

		if err := h.db.PingContext(r.Context()); err != nil {
			status.Status = "degraded"
			WriteJSON(w, http.StatusServiceUnavailable, status)
			return
		}

		WriteJSON(w, http.StatusOK, status)
	}
}
