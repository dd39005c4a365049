// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/corpcms-go/internal/model"
	"github.com/olegiv/corpcms-go/internal/service"
	"github.com/olegiv/corpcms-go/internal/store"
	"github.com/olegiv/corpcms-go/internal/util"
)

// ListProducts handles GET /api/products/list.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter, page, perPage := contentFilterFromQuery(r)

	products, err := h.queries.ListProducts(r.Context(), filter)
	if err != nil {
		slog.Error("product list failed", "error", err)
		WriteInternalError(w, "Failed to list products")
		return
	}
	total, err := h.queries.CountProducts(r.Context(), filter)
	if err != nil {
		slog.Error("product count failed", "error", err)
		WriteInternalError(w, "Failed to list products")
		return
	}

	WriteSuccess(w, products, &Meta{Total: total, Page: page, PerPage: perPage})
}

// GetProduct handles GET /api/products/detail/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := requireEntityByID(w, r, "product", func(id int64) (store.Product, error) {
		return h.queries.GetProductByID(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, product, nil)
}

// ProductRequest is the create/update payload for a product.
type ProductRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Lang        string `json:"lang"`
	Category    string `json:"category"`
	SortOrder   int64  `json:"sort_order"`
}

func (req *ProductRequest) validate() map[string]string {
	errs := make(map[string]string)
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		errs["name"] = "Name is required"
	}
	if req.Slug == "" {
		req.Slug = util.Slugify(req.Name)
	}
	if !util.IsValidSlug(req.Slug) {
		errs["slug"] = "Slug may contain lowercase letters, digits, and dashes"
	}
	if req.Lang == "" {
		errs["lang"] = "Language is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// CreateProduct handles POST /api/products/create.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.validate(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	now := time.Now()
	product, err := h.queries.CreateProduct(r.Context(), store.CreateProductParams{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: service.SanitizeHTML(req.Description),
		Lang:        req.Lang,
		Category:    req.Category,
		SortOrder:   req.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if isUniqueViolation(err) {
			WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
			return
		}
		slog.Error("product create failed", "error", err)
		WriteInternalError(w, "Failed to create product")
		return
	}

	h.audit.Log(r.Context(), model.ContentTypeProduct, product.ID, model.AuditActionCreate,
		actorFromRequest(r), nil, product, r)

	WriteCreated(w, product)
}

// UpdateProduct handles PUT /api/products/update/{id}.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := requireEntityByID(w, r, "product", func(id int64) (store.Product, error) {
		return h.queries.GetProductByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req ProductRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.validate(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	before := product
	err := h.queries.UpdateProduct(r.Context(), store.UpdateProductParams{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   service.SanitizeHTML(req.Description),
		Lang:          req.Lang,
		Category:      req.Category,
		ImagePath:     product.ImagePath,
		SpecSheetPath: product.SpecSheetPath,
		SortOrder:     req.SortOrder,
		UpdatedAt:     time.Now(),
		ID:            product.ID,
	})
	if err != nil {
		if isUniqueViolation(err) {
			WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
			return
		}
		slog.Error("product update failed", "error", err, "product_id", product.ID)
		WriteInternalError(w, "Failed to update product")
		return
	}

	updated, err := h.queries.GetProductByID(r.Context(), product.ID)
	if err != nil {
		slog.Error("product reload failed", "error", err, "product_id", product.ID)
		WriteInternalError(w, "Failed to update product")
		return
	}

	h.audit.Log(r.Context(), model.ContentTypeProduct, product.ID, model.AuditActionUpdate,
		actorFromRequest(r), before, updated, r)

	WriteSuccess(w, updated, nil)
}

// SetProductFiles handles PUT /api/products/files/{id} (multipart). Either
// or both of "image" and "spec_sheet" parts may be present.
func (h *Handler) SetProductFiles(w http.ResponseWriter, r *http.Request) {
	product, ok := requireEntityByID(w, r, "product", func(id int64) (store.Product, error) {
		return h.queries.GetProductByID(r.Context(), id)
	})
	if !ok {
		return
	}

	before := product
	var newFiles, oldFiles []string

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		uploaded, err := h.media.SaveImage(file, header, "products")
		if err != nil {
			WriteValidationError(w, map[string]string{"image": err.Error()})
			return
		}
		newFiles = append(newFiles, uploaded.Path, uploaded.ThumbPath)
		if product.ImagePath != "" {
			oldFiles = append(oldFiles, product.ImagePath)
		}
		product.ImagePath = uploaded.Path
	}

	if file, header, err := r.FormFile("spec_sheet"); err == nil {
		defer file.Close()
		uploaded, err := h.media.SaveDocument(file, header, "products")
		if err != nil {
			h.media.Remove(newFiles...)
			WriteValidationError(w, map[string]string{"spec_sheet": err.Error()})
			return
		}
		newFiles = append(newFiles, uploaded.Path)
		if product.SpecSheetPath != "" {
			oldFiles = append(oldFiles, product.SpecSheetPath)
		}
		product.SpecSheetPath = uploaded.Path
	}

	if len(newFiles) == 0 {
		WriteBadRequest(w, "No files provided", nil)
		return
	}

	err := h.queries.UpdateProduct(r.Context(), store.UpdateProductParams{
		Name:          product.Name,
		Slug:          product.Slug,
		Description:   product.Description,
		Lang:          product.Lang,
		Category:      product.Category,
		ImagePath:     product.ImagePath,
		SpecSheetPath: product.SpecSheetPath,
		SortOrder:     product.SortOrder,
		UpdatedAt:     time.Now(),
		ID:            product.ID,
	})
	if err != nil {
		h.media.Remove(newFiles...)
		slog.Error("product files update failed", "error", err, "product_id", product.ID)
		WriteInternalError(w, "Failed to update product files")
		return
	}

	h.media.Remove(oldFiles...)

	h.audit.Log(r.Context(), model.ContentTypeProduct, product.ID, model.AuditActionUpdate,
		actorFromRequest(r), before, product, r)

	WriteSuccess(w, product, nil)
}

// DeleteProduct handles DELETE /api/products/delete/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := requireEntityByID(w, r, "product", func(id int64) (store.Product, error) {
		return h.queries.GetProductByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteProduct(r.Context(), product.ID); err != nil {
		slog.Error("product delete failed", "error", err, "product_id", product.ID)
		WriteInternalError(w, "Failed to delete product")
		return
	}

	h.media.Remove(product.ImagePath, product.SpecSheetPath)

	h.audit.Log(r.Context(), model.ContentTypeProduct, product.ID, model.AuditActionDelete,
		actorFromRequest(r), product, nil, r)

	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}

// CountProductView handles POST /api/products/view/{id}.
func (h *Handler) CountProductView(w http.ResponseWriter, r *http.Request) {
	h.countView(w, r, model.ContentTypeProduct, func(id int64) (int64, error) {
		product, err := h.queries.GetProductByID(r.Context(), id)
		return product.ID, err
	})
}
