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
)

// ListGalleryItems handles GET /api/gallery/list.
func (h *Handler) ListGalleryItems(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 20, 100)
	lang := r.URL.Query().Get("lang")

	items, err := h.queries.ListGalleryItems(r.Context(), lang,
		int64(perPage), int64((page-1)*perPage))
	if err != nil {
		slog.Error("gallery list failed", "error", err)
		WriteInternalError(w, "Failed to list gallery")
		return
	}
	total, err := h.queries.CountGalleryItems(r.Context(), lang)
	if err != nil {
		slog.Error("gallery count failed", "error", err)
		WriteInternalError(w, "Failed to list gallery")
		return
	}

	WriteSuccess(w, items, &Meta{Total: total, Page: page, PerPage: perPage})
}

// GetGalleryItem handles GET /api/gallery/detail/{id}.
func (h *Handler) GetGalleryItem(w http.ResponseWriter, r *http.Request) {
	item, ok := requireEntityByID(w, r, "gallery item", func(id int64) (store.GalleryItem, error) {
		return h.queries.GetGalleryItemByID(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, item, nil)
}

func galleryFieldsFromForm(r *http.Request) (title, lang string, sortOrder int64, errs map[string]string) {
	errs = make(map[string]string)
	title = strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		errs["title"] = "Title is required"
	}
	lang = r.FormValue("lang")
	if lang == "" {
		errs["lang"] = "Language is required"
	}
	sortOrder = parseFormInt64(r, "sort_order")
	if len(errs) == 0 {
		errs = nil
	}
	return title, lang, sortOrder, errs
}

// CreateGalleryItem handles POST /api/gallery/create. Expects a multipart
// form with an "image" part plus title, lang and sort_order fields.
func (h *Handler) CreateGalleryItem(w http.ResponseWriter, r *http.Request) {
	title, lang, sortOrder, errs := galleryFieldsFromForm(r)

	file, header, err := r.FormFile("image")
	if err != nil {
		if errs == nil {
			errs = make(map[string]string)
		}
		errs["image"] = "Image file is required"
	}
	if errs != nil {
		WriteValidationError(w, errs)
		return
	}
	defer file.Close()

	uploaded, err := h.media.SaveImage(file, header, "gallery")
	if err != nil {
		WriteBadRequest(w, err.Error(), nil)
		return
	}

	now := time.Now()
	item, err := h.queries.CreateGalleryItem(r.Context(), store.CreateGalleryItemParams{
		Title:     title,
		Lang:      lang,
		ImagePath: uploaded.Path,
		ThumbPath: uploaded.ThumbPath,
		SortOrder: sortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		h.media.Remove(uploaded.Path, uploaded.ThumbPath)
		slog.Error("gallery create failed", "error", err)
		WriteInternalError(w, "Failed to create gallery item")
		return
	}

	h.audit.Log(r.Context(), model.ContentTypeGallery, item.ID, model.AuditActionCreate,
		actorFromRequest(r), nil, item, r)

	WriteCreated(w, item)
}

// UpdateGalleryItem handles PUT /api/gallery/update/{id}. The image part is
// optional; when present it replaces the stored file.
func (h *Handler) UpdateGalleryItem(w http.ResponseWriter, r *http.Request) {
	item, ok := requireEntityByID(w, r, "gallery item", func(id int64) (store.GalleryItem, error) {
		return h.queries.GetGalleryItemByID(r.Context(), id)
	})
	if !ok {
		return
	}

	title, lang, sortOrder, errs := galleryFieldsFromForm(r)
	if errs != nil {
		WriteValidationError(w, errs)
		return
	}

	before := item
	imagePath := item.ImagePath
	thumbPath := item.ThumbPath
	var newFiles, oldFiles []string

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		uploaded, err := h.media.SaveImage(file, header, "gallery")
		if err != nil {
			WriteBadRequest(w, err.Error(), nil)
			return
		}
		newFiles = []string{uploaded.Path, uploaded.ThumbPath}
		oldFiles = []string{item.ImagePath, item.ThumbPath}
		imagePath = uploaded.Path
		thumbPath = uploaded.ThumbPath
	}

	err := h.queries.UpdateGalleryItem(r.Context(), store.UpdateGalleryItemParams{
		Title:     title,
		Lang:      lang,
		ImagePath: imagePath,
		ThumbPath: thumbPath,
		SortOrder: sortOrder,
		UpdatedAt: time.Now(),
		ID:        item.ID,
	})
	if err != nil {
		h.media.Remove(newFiles...)
		slog.Error("gallery update failed", "error", err, "item_id", item.ID)
		WriteInternalError(w, "Failed to update gallery item")
		return
	}
	h.media.Remove(oldFiles...)

	updated, err := h.queries.GetGalleryItemByID(r.Context(), item.ID)
	if err != nil {
		slog.Error("gallery reload failed", "error", err, "item_id", item.ID)
		WriteInternalError(w, "Failed to update gallery item")
		return
	}

	h.audit.Log(r.Context(), model.ContentTypeGallery, item.ID, model.AuditActionUpdate,
		actorFromRequest(r), before, updated, r)

	WriteSuccess(w, updated, nil)
}

// DeleteGalleryItem handles DELETE /api/gallery/delete/{id}.
func (h *Handler) DeleteGalleryItem(w http.ResponseWriter, r *http.Request) {
	item, ok := requireEntityByID(w, r, "gallery item", func(id int64) (store.GalleryItem, error) {
		return h.queries.GetGalleryItemByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteGalleryItem(r.Context(), item.ID); err != nil {
		slog.Error("gallery delete failed", "error", err, "item_id", item.ID)
		WriteInternalError(w, "Failed to delete gallery item")
		return
	}
	h.media.Remove(item.ImagePath, item.ThumbPath)

	h.audit.Log(r.Context(), model.ContentTypeGallery, item.ID, model.AuditActionDelete,
		actorFromRequest(r), item, nil, r)

	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}

// CountGalleryView handles POST /api/gallery/view/{id}.
func (h *Handler) CountGalleryView(w http.ResponseWriter, r *http.Request) {
	h.countView(w, r, model.ContentTypeGallery, func(id int64) (int64, error) {
		item, err := h.queries.GetGalleryItemByID(r.Context(), id)
		return item.ID, err
	})
}
