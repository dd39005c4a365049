// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the JSON API handlers for the corporate site
// and its admin back office.
package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/corpcms-go/internal/auth"
	"github.com/olegiv/corpcms-go/internal/middleware"
	"github.com/olegiv/corpcms-go/internal/service"
	"github.com/olegiv/corpcms-go/internal/store"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db      *sql.DB
	queries *store.Queries
	issuer  *auth.Issuer
	audit   *service.AuditService
	views   *service.ViewService
	media   *service.MediaService
	traffic *service.TrafficService
	shield  *middleware.LoginProtection
	ipGuard *middleware.IPGuard
}

// Deps collects the services the handlers depend on.
type Deps struct {
	DB      *sql.DB
	Issuer  *auth.Issuer
	Audit   *service.AuditService
	Views   *service.ViewService
	Media   *service.MediaService
	Traffic *service.TrafficService
	Shield  *middleware.LoginProtection
	IPGuard *middleware.IPGuard
}

// NewHandler creates an API handler.
func NewHandler(deps Deps) *Handler {
	return &Handler{
		db:      deps.DB,
		queries: store.New(deps.DB),
		issuer:  deps.Issuer,
		audit:   deps.Audit,
		views:   deps.Views,
		media:   deps.Media,
		traffic: deps.Traffic,
		shield:  deps.Shield,
		ipGuard: deps.IPGuard,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination metadata.
type Meta struct {
	Total   int64 `json:"total,omitempty"`
	Page    int   `json:"page,omitempty"`
	PerPage int   `json:"per_page,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message, Details: details},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with
// per-field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// ParseIDParam parses the {id} chi URL parameter as a positive int64.
func ParseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// ParsePageParam parses the "page" query parameter, defaulting to 1.
func ParsePageParam(r *http.Request) int {
	return parseIntParam(r, "page", 1, 1, 0)
}

// ParsePerPageParam parses the "per_page" query parameter, clamped to
// [1, maxPerPage].
func ParsePerPageParam(r *http.Request, defaultPerPage, maxPerPage int) int {
	return parseIntParam(r, "per_page", defaultPerPage, 1, maxPerPage)
}

func parseIntParam(r *http.Request, param string, defaultVal, minVal, maxVal int) int {
	str := r.URL.Query().Get(param)
	if str == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return defaultVal
	}
	if minVal > 0 && val < minVal {
		return defaultVal
	}
	if maxVal > 0 && val > maxVal {
		return defaultVal
	}
	return val
}

// decodeBody decodes a JSON request body into dst, rejecting unknown
// fields. A false return means the error response was already written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// requireEntityByID parses {id} and fetches the entity, writing the
// appropriate error response on failure.
func requireEntityByID[T any](w http.ResponseWriter, r *http.Request, entityName string, fetch func(id int64) (T, error)) (T, bool) {
	var zero T

	id, err := ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid "+entityName+" ID", nil)
		return zero, false
	}

	entity, err := fetch(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteNotFound(w, entityName+" not found")
		} else {
			WriteInternalError(w, "Failed to retrieve "+entityName)
		}
		return zero, false
	}

	return entity, true
}

// actorFromRequest builds the audit actor from verified claims.
func actorFromRequest(r *http.Request) service.Actor {
	claims := middleware.GetClaims(r)
	if claims == nil {
		return service.Actor{}
	}
	return service.Actor{ID: claims.UserID, Name: claims.Email}
}
