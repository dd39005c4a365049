// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/corpcms-go/internal/model"
	"github.com/olegiv/corpcms-go/internal/store"
	"github.com/olegiv/corpcms-go/internal/util"
)

// IPSettingsView is the guard settings payload.
type IPSettingsView struct {
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
	Entries   int64     `json:"entries"`
}

// GetIPSettings handles GET /api/admin/ip-settings.
func (h *Handler) GetIPSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.queries.GetIPSettings(r.Context())
	if err != nil {
		slog.Error("ip settings lookup failed", "error", err)
		WriteInternalError(w, "Failed to load settings")
		return
	}
	count, err := h.queries.CountIPWhitelist(r.Context())
	if err != nil {
		slog.Error("ip whitelist count failed", "error", err)
		WriteInternalError(w, "Failed to load settings")
		return
	}

	WriteSuccess(w, IPSettingsView{
		Enabled:   settings.Enabled,
		UpdatedAt: settings.UpdatedAt,
		Entries:   count,
	}, nil)
}

// UpdateIPSettingsRequest toggles the guard.
type UpdateIPSettingsRequest struct {
	Enabled bool `json:"enabled"`
}

// UpdateIPSettings handles PATCH /api/admin/ip-settings. Enabling with an
// empty whitelist is refused: it would lock every admin out at once.
func (h *Handler) UpdateIPSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateIPSettingsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	count, err := h.queries.CountIPWhitelist(r.Context())
	if err != nil {
		slog.Error("ip whitelist count failed", "error", err)
		WriteInternalError(w, "Failed to update settings")
		return
	}
	if req.Enabled && count == 0 {
		WriteValidationError(w, map[string]string{
			"enabled": "Cannot enable the guard with an empty whitelist",
		})
		return
	}

	now := time.Now()
	err = h.queries.UpdateIPSettings(r.Context(), store.UpdateIPSettingsParams{
		Enabled:   req.Enabled,
		UpdatedAt: now,
	})
	if err != nil {
		slog.Error("ip settings update failed", "error", err)
		WriteInternalError(w, "Failed to update settings")
		return
	}

	action := model.IPAuditDisable
	if req.Enabled {
		action = model.IPAuditEnable
	}
	h.logIPAudit(r, action, "", "")
	h.invalidateGuard(r)

	slog.Warn("ip guard toggled",
		"category", "ipacl", "enabled", req.Enabled)

	WriteSuccess(w, IPSettingsView{Enabled: req.Enabled, UpdatedAt: now, Entries: count}, nil)
}

// ListIPWhitelist handles GET /api/admin/ip-whitelist.
func (h *Handler) ListIPWhitelist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.queries.ListIPWhitelist(r.Context())
	if err != nil {
		slog.Error("ip whitelist list failed", "error", err)
		WriteInternalError(w, "Failed to list whitelist")
		return
	}
	WriteSuccess(w, entries, &Meta{Total: int64(len(entries))})
}

// WhitelistEntryRequest is the payload for whitelist create/update.
type WhitelistEntryRequest struct {
	IP    string `json:"ip"`
	Label string `json:"label"`
}

func (req *WhitelistEntryRequest) normalize() map[string]string {
	req.IP = util.NormalizeIP(req.IP)
	req.Label = strings.TrimSpace(req.Label)
	if req.IP == "" {
		return map[string]string{"ip": "A valid IPv4 or IPv6 address is required"}
	}
	return nil
}

// CreateIPWhitelistEntry handles POST /api/admin/ip-whitelist.
func (h *Handler) CreateIPWhitelistEntry(w http.ResponseWriter, r *http.Request) {
	var req WhitelistEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.normalize(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	entry, err := h.queries.CreateIPWhitelistEntry(r.Context(), store.CreateIPWhitelistEntryParams{
		IP:        req.IP,
		Label:     req.Label,
		CreatedAt: time.Now(),
	})
	if err != nil {
		if isUniqueViolation(err) {
			WriteValidationError(w, map[string]string{"ip": "Address already whitelisted"})
			return
		}
		slog.Error("ip whitelist create failed", "error", err)
		WriteInternalError(w, "Failed to create entry")
		return
	}

	h.logIPAudit(r, model.IPAuditAddEntry, entry.IP, entry.Label)
	h.invalidateGuard(r)

	WriteCreated(w, entry)
}

// UpdateIPWhitelistEntry handles PUT /api/admin/ip-whitelist/{id}.
func (h *Handler) UpdateIPWhitelistEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := requireEntityByID(w, r, "whitelist entry", func(id int64) (store.AdminIPWhitelistEntry, error) {
		return h.queries.GetIPWhitelistEntry(r.Context(), id)
	})
	if !ok {
		return
	}

	var req WhitelistEntryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.normalize(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	err := h.queries.UpdateIPWhitelistEntry(r.Context(), store.UpdateIPWhitelistEntryParams{
		IP:    req.IP,
		Label: req.Label,
		ID:    entry.ID,
	})
	if err != nil {
		if isUniqueViolation(err) {
			WriteValidationError(w, map[string]string{"ip": "Address already whitelisted"})
			return
		}
		slog.Error("ip whitelist update failed", "error", err, "entry_id", entry.ID)
		WriteInternalError(w, "Failed to update entry")
		return
	}

	entry.IP = req.IP
	entry.Label = req.Label
	h.logIPAudit(r, model.IPAuditUpdateEntry, entry.IP, entry.Label)
	h.invalidateGuard(r)

	WriteSuccess(w, entry, nil)
}

// DeleteIPWhitelistEntry handles DELETE /api/admin/ip-whitelist/{id}.
// While the guard is enabled the final entry cannot be removed; an empty
// whitelist with the guard on is a total lockout.
func (h *Handler) DeleteIPWhitelistEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := requireEntityByID(w, r, "whitelist entry", func(id int64) (store.AdminIPWhitelistEntry, error) {
		return h.queries.GetIPWhitelistEntry(r.Context(), id)
	})
	if !ok {
		return
	}

	settings, err := h.queries.GetIPSettings(r.Context())
	if err != nil {
		slog.Error("ip settings lookup failed", "error", err)
		WriteInternalError(w, "Failed to delete entry")
		return
	}
	if settings.Enabled {
		count, err := h.queries.CountIPWhitelist(r.Context())
		if err != nil {
			slog.Error("ip whitelist count failed", "error", err)
			WriteInternalError(w, "Failed to delete entry")
			return
		}
		if count <= 1 {
			WriteValidationError(w, map[string]string{
				"id": "Cannot delete the last whitelist entry while the guard is enabled",
			})
			return
		}
	}

	if err := h.queries.DeleteIPWhitelistEntry(r.Context(), entry.ID); err != nil {
		slog.Error("ip whitelist delete failed", "error", err, "entry_id", entry.ID)
		WriteInternalError(w, "Failed to delete entry")
		return
	}

	h.logIPAudit(r, model.IPAuditDeleteEntry, entry.IP, entry.Label)
	h.invalidateGuard(r)

	slog.Warn("ip whitelist entry removed",
		"category", "ipacl", "ip", entry.IP)

	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}

// MyIPView reports the caller's address as the guard would see it.
type MyIPView struct {
	IP          string `json:"ip"`
	Whitelisted bool   `json:"whitelisted"`
}

// MyIP handles GET /api/admin/ip-my. Admins use it to whitelist their own
// address before enabling the guard.
func (h *Handler) MyIP(w http.ResponseWriter, r *http.Request) {
	ip := util.ClientIP(r)
	if ip == "" {
		WriteBadRequest(w, "Client address could not be determined", nil)
		return
	}

	whitelisted, err := h.queries.IsIPWhitelisted(r.Context(), ip)
	if err != nil {
		slog.Error("ip whitelist lookup failed", "error", err, "ip", ip)
		WriteInternalError(w, "Failed to check address")
		return
	}

	WriteSuccess(w, MyIPView{IP: ip, Whitelisted: whitelisted}, nil)
}

// ListIPAudit handles GET /api/admin/ip-audit.
func (h *Handler) ListIPAudit(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 50, 200)

	entries, err := h.queries.ListIPAudit(r.Context(), int64(perPage), int64((page-1)*perPage))
	if err != nil {
		slog.Error("ip audit list failed", "error", err)
		WriteInternalError(w, "Failed to list audit entries")
		return
	}

	WriteSuccess(w, entries, &Meta{Page: page, PerPage: perPage})
}

func (h *Handler) logIPAudit(r *http.Request, action, ip, label string) {
	actor := actorFromRequest(r)
	err := h.queries.CreateIPAuditEntry(r.Context(), store.CreateIPAuditEntryParams{
		Action:    action,
		IP:        ip,
		Label:     label,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		CreatedAt: time.Now(),
	})
	if err != nil {
		slog.Error("ip audit write failed", "error", err, "action", action)
	}
}

func (h *Handler) invalidateGuard(r *http.Request) {
	if h.ipGuard != nil {
		h.ipGuard.Invalidate(r.Context())
	}
}
