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
	"github.com/olegiv/corpcms-go/internal/util"
)

// contentFilterFromQuery builds the shared list filter from query
// parameters.
func contentFilterFromQuery(r *http.Request) (store.ContentFilter, int, int) {
	page := ParsePageParam(r)
	perPage := ParsePerPageParam(r, 20, 100)

	return store.ContentFilter{
		Lang:     r.URL.Query().Get("lang"),
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		Limit:    int64(perPage),
		Offset:   int64((page - 1) * perPage),
	}, page, perPage
}

// ListPosts handles GET /api/posts/list.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	filter, page, perPage := contentFilterFromQuery(r)

	posts, err := h.queries.ListPosts(r.Context(), filter)
	if err != nil {
		slog.Error("post list failed", "error", err)
		WriteInternalError(w, "Failed to list posts")
		return
	}
	total, err := h.queries.CountPosts(r.Context(), filter)
	if err != nil {
		slog.Error("post count failed", "error", err)
		WriteInternalError(w, "Failed to list posts")
		return
	}

	WriteSuccess(w, posts, &Meta{Total: total, Page: page, PerPage: perPage})
}

// postView is the detail payload: the stored row plus the body rendered
// to HTML according to its format.
type postView struct {
	store.Post
	BodyHTML string `json:"body_html"`
}

// GetPost handles GET /api/posts/detail/{id}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, ok := requireEntityByID(w, r, "post", func(id int64) (store.Post, error) {
		return h.queries.GetPostByID(r.Context(), id)
	})
	if !ok {
		return
	}

	bodyHTML, err := service.RenderBody(post.Body, post.BodyFormat)
	if err != nil {
		slog.Error("post body render failed", "error", err, "post_id", post.ID)
		WriteInternalError(w, "Failed to render post")
		return
	}

	WriteSuccess(w, postView{Post: post, BodyHTML: bodyHTML}, nil)
}

// PostRequest is the create/update payload for a post.
type PostRequest struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Body       string `json:"body"`
	BodyFormat string `json:"body_format"`
	Lang       string `json:"lang"`
	Category   string `json:"category"`
	SortOrder  int64  `json:"sort_order"`
}

func (req *PostRequest) validate() map[string]string {
	errs := make(map[string]string)
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		errs["title"] = "Title is required"
	}
	if req.Slug == "" {
		req.Slug = util.Slugify(req.Title)
	}
	if !util.IsValidSlug(req.Slug) {
		errs["slug"] = "Slug may contain lowercase letters, digits, and dashes"
	}
	if req.BodyFormat == "" {
		req.BodyFormat = service.BodyFormatHTML
	}
	if !service.IsValidBodyFormat(req.BodyFormat) {
		errs["body_format"] = "Unknown body format"
	}
	if req.Lang == "" {
		errs["lang"] = "Language is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// CreatePost handles POST /api/posts/create.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.validate(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	body := service.SanitizeHTML(req.Body)

	claims := middleware.GetClaims(r)
	if claims == nil {
		WriteUnauthorized(w, "Authentication required")
		return
	}

	now := time.Now()
	post, err := h.queries.CreatePost(r.Context(), store.CreatePostParams{
		Title:      req.Title,
		Slug:       req.Slug,
		Body:       body,
		BodyFormat: req.BodyFormat,
		Lang:       req.Lang,
		Category:   req.Category,
		AuthorID:   claims.UserID,
		SortOrder:  req.SortOrder,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		if isUniqueViolation(err) {
			WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
			return
		}
		slog.Error("post create failed", "error", err)
		WriteInternalError(w, "Failed to create post")
		return
	}

	h.audit.Log(r.Context(), model.ContentTypePost, post.ID, model.AuditActionCreate,
		actorFromRequest(r), nil, post, r)

	WriteCreated(w, post)
}

// UpdatePost handles PUT /api/posts/update/{id}.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	post, ok := requireEntityByID(w, r, "post", func(id int64) (store.Post, error) {
		return h.queries.GetPostByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req PostRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.validate(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	before := post
	now := time.Now()
	err := h.queries.UpdatePost(r.Context(), store.UpdatePostParams{
		Title:      req.Title,
		Slug:       req.Slug,
		Body:       service.SanitizeHTML(req.Body),
		BodyFormat: req.BodyFormat,
		Lang:       req.Lang,
		Category:   req.Category,
		ImagePath:  post.ImagePath,
		SortOrder:  req.SortOrder,
		UpdatedAt:  now,
		ID:         post.ID,
	})
	if err != nil {
		if isUniqueViolation(err) {
			WriteValidationError(w, map[string]string{"slug": "Slug already exists"})
			return
		}
		slog.Error("post update failed", "error", err, "post_id", post.ID)
		WriteInternalError(w, "Failed to update post")
		return
	}

	updated, err := h.queries.GetPostByID(r.Context(), post.ID)
	if err != nil {
		slog.Error("post reload failed", "error", err, "post_id", post.ID)
		WriteInternalError(w, "Failed to update post")
		return
	}

	h.audit.Log(r.Context(), model.ContentTypePost, post.ID, model.AuditActionUpdate,
		actorFromRequest(r), before, updated, r)

	WriteSuccess(w, updated, nil)
}

// SetPostImage handles PUT /api/posts/image/{id} (multipart).
func (h *Handler) SetPostImage(w http.ResponseWriter, r *http.Request) {
	post, ok := requireEntityByID(w, r, "post", func(id int64) (store.Post, error) {
		return h.queries.GetPostByID(r.Context(), id)
	})
	if !ok {
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		WriteBadRequest(w, "Missing image file", nil)
		return
	}
	defer file.Close()

	uploaded, err := h.media.SaveImage(file, header, "posts")
	if err != nil {
		WriteValidationError(w, map[string]string{"image": err.Error()})
		return
	}

	before := post
	err = h.queries.UpdatePost(r.Context(), store.UpdatePostParams{
		Title:      post.Title,
		Slug:       post.Slug,
		Body:       post.Body,
		BodyFormat: post.BodyFormat,
		Lang:       post.Lang,
		Category:   post.Category,
		ImagePath:  uploaded.Path,
		SortOrder:  post.SortOrder,
		UpdatedAt:  time.Now(),
		ID:         post.ID,
	})
	if err != nil {
		h.media.Remove(uploaded.Path, uploaded.ThumbPath)
		slog.Error("post image update failed", "error", err, "post_id", post.ID)
		WriteInternalError(w, "Failed to update post image")
		return
	}

	if before.ImagePath != "" {
		h.media.Remove(before.ImagePath)
	}

	post.ImagePath = uploaded.Path
	h.audit.Log(r.Context(), model.ContentTypePost, post.ID, model.AuditActionUpdate,
		actorFromRequest(r), before, post, r)

	WriteSuccess(w, post, nil)
}

// DeletePost handles DELETE /api/posts/delete/{id}. The row is
// authoritative; the image unlink is best-effort.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	post, ok := requireEntityByID(w, r, "post", func(id int64) (store.Post, error) {
		return h.queries.GetPostByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if err := h.queries.DeletePost(r.Context(), post.ID); err != nil {
		slog.Error("post delete failed", "error", err, "post_id", post.ID)
		WriteInternalError(w, "Failed to delete post")
		return
	}

	if post.ImagePath != "" {
		h.media.Remove(post.ImagePath)
	}

	h.audit.Log(r.Context(), model.ContentTypePost, post.ID, model.AuditActionDelete,
		actorFromRequest(r), post, nil, r)

	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}

// CountPostView handles POST /api/posts/view/{id}.
func (h *Handler) CountPostView(w http.ResponseWriter, r *http.Request) {
	h.countView(w, r, model.ContentTypePost, func(id int64) (int64, error) {
		post, err := h.queries.GetPostByID(r.Context(), id)
		return post.ID, err
	})
}

// countView verifies the resource exists, then records the view through
// the dedup service. The response does not reveal whether the view counted.
func (h *Handler) countView(w http.ResponseWriter, r *http.Request, resourceType string, fetch func(id int64) (int64, error)) {
	id, ok := requireEntityByID(w, r, resourceType, fetch)
	if !ok {
		return
	}

	var role string
	if claims := middleware.GetClaims(r); claims != nil {
		role = claims.Role
	}
	h.views.RecordView(r.Context(), resourceType, id, role, r)

	WriteSuccess(w, map[string]bool{"ok": true}, nil)
}
