// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/corpcms-go/internal/middleware"
	"github.com/olegiv/corpcms-go/internal/model"
	"github.com/olegiv/corpcms-go/internal/service"
	"github.com/olegiv/corpcms-go/internal/store"
)

// Recruit position types.
const (
	PositionTypeFullTime = "full_time"
	PositionTypePartTime = "part_time"
	PositionTypeContract = "contract"
)

func isValidPositionType(t string) bool {
	return t == PositionTypeFullTime || t == PositionTypePartTime || t == PositionTypeContract
}

// ListRecruitPosts handles GET /api/recruit/list. Anonymous callers only
// see active openings; staff may pass all=1 to include deactivated ones.
func (h *Handler) ListRecruitPosts(w http.ResponseWriter, r *http.Request) {
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 20, 100)

	activeOnly := true
	if r.URL.Query().Get("all") == "1" {
		if claims := middleware.GetClaims(r); claims != nil && model.IsStaffRole(claims.Role) {
			activeOnly = false
		}
	}

	filter := store.RecruitFilter{
		Lang:         r.URL.Query().Get("lang"),
		PositionType: r.URL.Query().Get("position_type"),
		ActiveOnly:   activeOnly,
		Limit:        int64(perPage),
		Offset:       int64((page - 1) * perPage),
	}

	posts, err := h.queries.ListRecruitPosts(r.Context(), filter)
	if err != nil {
		slog.Error("recruit list failed", "error", err)
		WriteInternalError(w, "Failed to list openings")
		return
	}
	total, err := h.queries.CountRecruitPosts(r.Context(), filter)
	if err != nil {
		slog.Error("recruit count failed", "error", err)
		WriteInternalError(w, "Failed to list openings")
		return
	}

	WriteSuccess(w, posts, &Meta{Total: total, Page: page, PerPage: perPage})
}

// GetRecruitPost handles GET /api/recruit/detail/{id}.
func (h *Handler) GetRecruitPost(w http.ResponseWriter, r *http.Request) {
	post, ok := requireEntityByID(w, r, "opening", func(id int64) (store.RecruitPost, error) {
		return h.queries.GetRecruitPostByID(r.Context(), id)
	})
	if !ok {
		return
	}

	// Deactivated openings are invisible to the public.
	if !post.IsActive {
		if claims := middleware.GetClaims(r); claims == nil || !model.IsStaffRole(claims.Role) {
			WriteNotFound(w, "opening not found")
			return
		}
	}

	WriteSuccess(w, post, nil)
}

// RecruitRequest is the create/update payload for a job opening.
type RecruitRequest struct {
	Title        string `json:"title"`
	Body         string `json:"body"`
	Lang         string `json:"lang"`
	PositionType string `json:"position_type"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

func (req *RecruitRequest) validate() map[string]string {
	errs := make(map[string]string)
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		errs["title"] = "Title is required"
	}
	if req.Lang == "" {
		errs["lang"] = "Language is required"
	}
	if !isValidPositionType(req.PositionType) {
		errs["position_type"] = "Unknown position type"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// CreateRecruitPost handles POST /api/recruit/create.
func (h *Handler) CreateRecruitPost(w http.ResponseWriter, r *http.Request) {
	var req RecruitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.validate(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	claims := middleware.GetClaims(r)
	if claims == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	now := time.Now()
	post, err := h.queries.CreateRecruitPost(r.Context(), store.CreateRecruitPostParams{
		Title:        req.Title,
		Body:         service.SanitizeHTML(req.Body),
		Lang:         req.Lang,
		PositionType: req.PositionType,
		AuthorID:     claims.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		slog.Error("recruit create failed", "error", err)
		WriteInternalError(w, "Failed to create opening")
		return
	}

	h.audit.Log(r.Context(), model.ContentTypeRecruit, post.ID, model.AuditActionCreate,
		actorFromRequest(r), nil, post, r)

	WriteCreated(w, post)
}

// UpdateRecruitPost handles PUT /api/recruit/update/{id}.
func (h *Handler) UpdateRecruitPost(w http.ResponseWriter, r *http.Request) {
	post, ok := requireEntityByID(w, r, "opening", func(id int64) (store.RecruitPost, error) {
		return h.queries.GetRecruitPostByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req RecruitRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.validate(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	before := post
	isActive := post.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	err := h.queries.UpdateRecruitPost(r.Context(), store.UpdateRecruitPostParams{
		Title:        req.Title,
		Body:         service.SanitizeHTML(req.Body),
		Lang:         req.Lang,
		PositionType: req.PositionType,
		IsActive:     isActive,
		UpdatedAt:    time.Now(),
		ID:           post.ID,
	})
	if err != nil {
		slog.Error("recruit update failed", "error", err, "post_id", post.ID)
		WriteInternalError(w, "Failed to update opening")
		return
	}

	updated, err := h.queries.GetRecruitPostByID(r.Context(), post.ID)
	if err != nil {
		slog.Error("recruit reload failed", "error", err, "post_id", post.ID)
		WriteInternalError(w, "Failed to update opening")
		return
	}

	h.audit.Log(r.Context(), model.ContentTypeRecruit, post.ID, model.AuditActionUpdate,
		actorFromRequest(r), before, updated, r)

	WriteSuccess(w, updated, nil)
}

// DeleteRecruitPost handles DELETE /api/recruit/delete/{id}. Openings are
// soft-deleted: the row stays for the audit trail, the listing hides it.
func (h *Handler) DeleteRecruitPost(w http.ResponseWriter, r *http.Request) {
	post, ok := requireEntityByID(w, r, "opening", func(id int64) (store.RecruitPost, error) {
		return h.queries.GetRecruitPostByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeactivateRecruitPost(r.Context(), post.ID, time.Now()); err != nil {
		slog.Error("recruit deactivate failed", "error", err, "post_id", post.ID)
		WriteInternalError(w, "Failed to delete opening")
		return
	}

	after := post
	after.IsActive = false
	h.audit.Log(r.Context(), model.ContentTypeRecruit, post.ID, model.AuditActionDelete,
		actorFromRequest(r), post, after, r)

	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}
