// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/corpcms-go/internal/model"
	"github.com/olegiv/corpcms-go/internal/store"
)

// ListCertifications handles GET /api/certifications/list.
func (h *Handler) ListCertifications(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 20, 100)
	lang := r.URL.Query().Get("lang")

	certs, err := h.queries.ListCertifications(r.Context(), lang, int64(perPage), int64((page-1)*perPage))
	if err != nil {
		slog.Error("certification list failed", "error", err)
		WriteInternalError(w, "Failed to list certifications")
		return
	}
	total, err := h.queries.CountCertifications(r.Context(), lang)
	if err != nil {
		slog.Error("certification count failed", "error", err)
		WriteInternalError(w, "Failed to list certifications")
		return
	}

	WriteSuccess(w, certs, &Meta{Total: total, Page: page, PerPage: perPage})
}

// GetCertification handles GET /api/certifications/detail/{id}.
func (h *Handler) GetCertification(w http.ResponseWriter, r *http.Request) {
	cert, ok := requireEntityByID(w, r, "certification", func(id int64) (store.Certification, error) {
		return h.queries.GetCertificationByID(r.Context(), id)
	})
	if !ok {
		return
	}
	WriteSuccess(w, cert, nil)
}

// certificationFromForm reads shared multipart fields. issued_at accepts
// a date in 2006-01-02 form and may be empty.
func certificationFromForm(r *http.Request) (title, lang string, issuedAt sql.NullTime, errs map[string]string) {
	errs = make(map[string]string)
	title = strings.TrimSpace(r.FormValue("title"))
	lang = r.FormValue("lang")
	if title == "" {
		errs["title"] = "Title is required"
	}
	if lang == "" {
		errs["lang"] = "Language is required"
	}
	if raw := r.FormValue("issued_at"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			errs["issued_at"] = "Date must be YYYY-MM-DD"
		} else {
			issuedAt = sql.NullTime{Time: t, Valid: true}
		}
	}
	if len(errs) == 0 {
		errs = nil
	}
	return title, lang, issuedAt, errs
}

// CreateCertification handles POST /api/certifications/create (multipart
// with a required "image" part for the certificate scan).
func (h *Handler) CreateCertification(w http.ResponseWriter, r *http.Request) {
	title, lang, issuedAt, errs := certificationFromForm(r)

	file, header, err := r.FormFile("image")
	if err != nil {
		if errs == nil {
			errs = make(map[string]string)
		}
		errs["image"] = "Certificate image is required"
	}
	if errs != nil {
		WriteValidationError(w, errs)
		return
	}
	defer file.Close()

	uploaded, err := h.media.SaveImage(file, header, "certifications")
	if err != nil {
		WriteValidationError(w, map[string]string{"image": err.Error()})
		return
	}

	now := time.Now()
	cert, err := h.queries.CreateCertification(r.Context(), store.CreateCertificationParams{
		Title:     title,
		Lang:      lang,
		ImagePath: uploaded.Path,
		IssuedAt:  issuedAt,
		SortOrder: parseFormInt64(r, "sort_order"),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		h.media.Remove(uploaded.Path, uploaded.ThumbPath)
		slog.Error("certification create failed", "error", err)
		WriteInternalError(w, "Failed to create certification")
		return
	}

	h.audit.Log(r.Context(), model.ContentTypeCertification, cert.ID, model.AuditActionCreate,
		actorFromRequest(r), nil, cert, r)

	WriteCreated(w, cert)
}

// UpdateCertification handles PUT /api/certifications/update/{id}.
func (h *Handler) UpdateCertification(w http.ResponseWriter, r *http.Request) {
	cert, ok := requireEntityByID(w, r, "certification", func(id int64) (store.Certification, error) {
		return h.queries.GetCertificationByID(r.Context(), id)
	})
	if !ok {
		return
	}

	before := cert
	title, lang, issuedAt, errs := certificationFromForm(r)
	if errs != nil {
		WriteValidationError(w, errs)
		return
	}
	cert.Title = title
	cert.Lang = lang
	cert.IssuedAt = issuedAt
	if r.FormValue("sort_order") != "" {
		cert.SortOrder = parseFormInt64(r, "sort_order")
	}

	oldImage := ""
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		uploaded, err := h.media.SaveImage(file, header, "certifications")
		if err != nil {
			WriteValidationError(w, map[string]string{"image": err.Error()})
			return
		}
		oldImage = cert.ImagePath
		cert.ImagePath = uploaded.Path
	}

	err := h.queries.UpdateCertification(r.Context(), store.UpdateCertificationParams{
		Title:     cert.Title,
		Lang:      cert.Lang,
		ImagePath: cert.ImagePath,
		IssuedAt:  cert.IssuedAt,
		SortOrder: cert.SortOrder,
		UpdatedAt: time.Now(),
		ID:        cert.ID,
	})
	if err != nil {
		slog.Error("certification update failed", "error", err, "cert_id", cert.ID)
		WriteInternalError(w, "Failed to update certification")
		return
	}

	if oldImage != "" {
		h.media.Remove(oldImage)
	}

	h.audit.Log(r.Context(), model.ContentTypeCertification, cert.ID, model.AuditActionUpdate,
		actorFromRequest(r), before, cert, r)

	WriteSuccess(w, cert, nil)
}

// DeleteCertification handles DELETE /api/certifications/delete/{id}.
func (h *Handler) DeleteCertification(w http.ResponseWriter, r *http.Request) {
	cert, ok := requireEntityByID(w, r, "certification", func(id int64) (store.Certification, error) {
		return h.queries.GetCertificationByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeleteCertification(r.Context(), cert.ID); err != nil {
		slog.Error("certification delete failed", "error", err, "cert_id", cert.ID)
		WriteInternalError(w, "Failed to delete certification")
		return
	}

	h.media.Remove(cert.ImagePath)

	h.audit.Log(r.Context(), model.ContentTypeCertification, cert.ID, model.AuditActionDelete,
		actorFromRequest(r), cert, nil, r)

	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}
