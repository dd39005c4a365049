// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/corpcms-go/internal/model"
	"github.com/olegiv/corpcms-go/internal/store"
)

// ListCatalogItems handles GET /api/catalog/list.
func (h *Handler) ListCatalogItems(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 20, 100)
	lang := r.URL.Query().Get("lang")

	items, err := h.queries.ListCatalogItems(r.Context(), lang, int64(perPage), int64((page-1)*perPage))
	if err != nil {
		slog.Error("catalog list failed", "error", err)
		WriteInternalError(w, "Failed to list catalog")
		return
	}
	total, err := h.queries.CountCatalogItems(r.Context(), lang)
	if err != nil {
		slog.Error("catalog count failed", "error", err)
		WriteInternalError(w, "Failed to list catalog")
		return
	}

	WriteSuccess(w, items, &Meta{Total: total, Page: page, PerPage: perPage})
}

// GetCatalogItem handles GET /api/catalog/detail/{id}.
func (h *Handler) GetCatalogItem(w http.ResponseWriter, r *http.Request) {
	item, ok := requireEntityByID(w, r, "catalog item", func(id int64) (store.CatalogItem, error) {
		return h.queries.GetCatalogItemByID(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, item, nil)
}

// CreateCatalogItem handles POST /api/catalog/create (multipart: document
// metadata fields plus a "file" PDF part).
func (h *Handler) CreateCatalogItem(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.FormValue("title"))
	lang := r.FormValue("lang")
	errs := make(map[string]string)
	if title == "" {
		errs["title"] = "Title is required"
	}
	if lang == "" {
		errs["lang"] = "Language is required"
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errs["file"] = "Catalog document is required"
	}
	if len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}
	defer file.Close()

	uploaded, err := h.media.SaveDocument(file, header, "catalog")
	if err != nil {
		WriteValidationError(w, map[string]string{"file": err.Error()})
		return
	}

	now := time.Now()
	item, err := h.queries.CreateCatalogItem(r.Context(), store.CreateCatalogItemParams{
		Title:     title,
		Lang:      lang,
		FilePath:  uploaded.Path,
		SortOrder: parseFormInt64(r, "sort_order"),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		h.media.Remove(uploaded.Path)
		slog.Error("catalog create failed", "error", err)
		WriteInternalError(w, "Failed to create catalog item")
		return
	}

	h.audit.Log(r.Context(), model.ContentTypeCatalog, item.ID, model.AuditActionCreate,
		actorFromRequest(r), nil, item, r)

	WriteCreated(w, item)
}

// UpdateCatalogItem handles PUT /api/catalog/update/{id} (multipart; the
// "file" part is optional and replaces the stored document).
func (h *Handler) UpdateCatalogItem(w http.ResponseWriter, r *http.Request) {
	item, ok := requireEntityByID(w, r, "catalog item", func(id int64) (store.CatalogItem, error) {
		return h.queries.GetCatalogItemByID(r.Context(), id)
	})
	if !ok {
		return
	}

	before := item
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		item.Title = title
	}
	if lang := r.FormValue("lang"); lang != "" {
		item.Lang = lang
	}
	if r.FormValue("sort_order") != "" {
		item.SortOrder = parseFormInt64(r, "sort_order")
	}

	oldFile := ""
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		uploaded, err := h.media.SaveDocument(file, header, "catalog")
		if err != nil {
			WriteValidationError(w, map[string]string{"file": err.Error()})
			return
		}
		oldFile = item.FilePath
		item.FilePath = uploaded.Path
	}

	err := h.queries.UpdateCatalogItem(r.Context(), store.UpdateCatalogItemParams{
		Title:     item.Title,
		Lang:      item.Lang,
		FilePath:  item.FilePath,
		SortOrder: item.SortOrder,
		UpdatedAt: time.Now(),
		ID:        item.ID,
	})
	if err != nil {
		slog.Error("catalog update failed", "error", err, "item_id", item.ID)
		WriteInternalError(w, "Failed to update catalog item")
		return
	}

	if oldFile != "" {
		h.media.Remove(oldFile)
	}

	h.audit.Log(r.Context(), model.ContentTypeCatalog, item.ID, model.AuditActionUpdate,
		actorFromRequest(r), before, item, r)

	WriteSuccess(w, item, nil)
}

// DeleteCatalogItem handles DELETE /api/catalog/delete/{id}.
func (h *Handler) DeleteCatalogItem(w http.ResponseWriter, r *http.Request) {
	item, ok := requireEntityByID(w, r, "catalog item", func(id int64) (store.CatalogItem, error) {
		return h.queries.GetCatalogItemByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteCatalogItem(r.Context(), item.ID); err != nil {
		slog.Error("catalog delete failed", "error", err, "item_id", item.ID)
		WriteInternalError(w, "Failed to delete catalog item")
		return
	}

	h.media.Remove(item.FilePath)

	h.audit.Log(r.Context(), model.ContentTypeCatalog, item.ID, model.AuditActionDelete,
		actorFromRequest(r), item, nil, r)

	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}

func parseFormInt64(r *http.Request, field string) int64 {
	v, err := strconv.ParseInt(r.FormValue(field), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
