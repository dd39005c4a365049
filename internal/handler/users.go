// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/olegiv/corpcms-go/internal/auth"
	"github.com/olegiv/corpcms-go/internal/middleware"
	"github.com/olegiv/corpcms-go/internal/model"
	"github.com/olegiv/corpcms-go/internal/store"
)

const minPasswordLength = 10

// UserView is the user payload exposed by the API.
type UserView struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	AvatarPath  string     `json:"avatar_path,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func userView(u store.User) UserView {
	v := UserView{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		AvatarPath: u.AvatarPath,
		CreatedAt:  u.CreatedAt,
	}
	if u.LastLoginAt.Valid {
		t := u.LastLoginAt.Time
		v.LastLoginAt = &t
	}
	return v
}

// ListUsers handles GET /api/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		slog.Error("user list failed", "error", err)
		WriteInternalError(w, "Failed to list users")
		return
	}

	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, userView(u))
	}
	WriteSuccess(w, views, &Meta{Total: int64(len(views))})
}

// CreateUserRequest is the payload for creating a staff account.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (req *CreateUserRequest) validate() map[string]string {
	errs := make(map[string]string)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		errs["email"] = "Valid email is required"
	}
	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = "Name is required"
	}
	if !model.IsValidRole(req.Role) {
		errs["role"] = "Unknown role"
	}
	if len(req.Password) < minPasswordLength {
		errs["password"] = "Password too short"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// CreateUser handles POST /api/users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := req.validate(); errs != nil {
		WriteValidationError(w, errs)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("password hash failed", "error", err)
		WriteInternalError(w, "Failed to create user")
		return
	}

	now := time.Now()
	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if isUniqueViolation(err) {
			WriteValidationError(w, map[string]string{"email": "Email already in use"})
			return
		}
		slog.Error("user create failed", "error", err)
		WriteInternalError(w, "Failed to create user")
		return
	}

	h.audit.Log(r.Context(), model.ContentTypeUser, user.ID, model.AuditActionCreate,
		actorFromRequest(r), nil, userView(user), r)

	WriteCreated(w, userView(user))
}

// ChangeRoleRequest is the payload for PUT /api/users/{id}/role.
type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// ChangeUserRole handles PUT /api/users/{id}/role.
func (h *Handler) ChangeUserRole(w http.ResponseWriter, r *http.Request) {
	user, ok := requireEntityByID(w, r, "user", func(id int64) (store.User, error) {
		return h.queries.GetUserByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req ChangeRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !model.IsValidRole(req.Role) {
		WriteValidationError(w, map[string]string{"role": "Unknown role"})
		return
	}

	// A superadmin demoting their own account could lock everyone out.
	if claims := middleware.GetClaims(r); claims != nil &&
		claims.UserID == user.ID && req.Role != model.RoleSuperadmin {
		WriteValidationError(w, map[string]string{"role": "Cannot demote your own account"})
		return
	}

	before := userView(user)
	err := h.queries.UpdateUserRole(r.Context(), store.UpdateUserRoleParams{
		Role:      req.Role,
		UpdatedAt: time.Now(),
		ID:        user.ID,
	})
	if err != nil {
		slog.Error("role update failed", "error", err, "user_id", user.ID)
		WriteInternalError(w, "Failed to update role")
		return
	}

	user.Role = req.Role
	h.audit.Log(r.Context(), model.ContentTypeUser, user.ID, model.AuditActionUpdate,
		actorFromRequest(r), before, userView(user), r)

	slog.Warn("user role changed",
		"category", "user", "user_id", user.ID, "role", req.Role)

	WriteSuccess(w, userView(user), nil)
}

// ResetPasswordRequest is the payload for PUT /api/users/{id}/reset-password.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// ResetUserPassword handles PUT /api/users/{id}/reset-password.
func (h *Handler) ResetUserPassword(w http.ResponseWriter, r *http.Request) {
	user, ok := requireEntityByID(w, r, "user", func(id int64) (store.User, error) {
		return h.queries.GetUserByID(r.Context(), id)
	})
	if !ok {
		return
	}

	var req ResetPasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Password) < minPasswordLength {
		WriteValidationError(w, map[string]string{"password": "Password too short"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("password hash failed", "error", err)
		WriteInternalError(w, "Failed to reset password")
		return
	}

	err = h.queries.UpdateUserPassword(r.Context(), store.UpdateUserPasswordParams{
		PasswordHash: hash,
		UpdatedAt:    time.Now(),
		ID:           user.ID,
	})
	if err != nil {
		slog.Error("password reset failed", "error", err, "user_id", user.ID)
		WriteInternalError(w, "Failed to reset password")
		return
	}

	// Password values never enter the audit trail.
	h.audit.Log(r.Context(), model.ContentTypeUser, user.ID, model.AuditActionUpdate,
		actorFromRequest(r), nil, map[string]string{"changed": "password"}, r)

	slog.Warn("user password reset",
		"category", "user", "user_id", user.ID)

	WriteSuccess(w, userView(user), nil)
}

// SetUserAvatar handles PUT /api/users/{id}/avatar (multipart).
func (h *Handler) SetUserAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := requireEntityByID(w, r, "user", func(id int64) (store.User, error) {
		return h.queries.GetUserByID(r.Context(), id)
	})
	if !ok {
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		WriteBadRequest(w, "Missing avatar file", nil)
		return
	}
	defer file.Close()

	uploaded, err := h.media.SaveImage(file, header, "avatars")
	if err != nil {
		WriteValidationError(w, map[string]string{"avatar": err.Error()})
		return
	}

	before := userView(user)
	err = h.queries.UpdateUserAvatar(r.Context(), store.UpdateUserAvatarParams{
		AvatarPath: uploaded.Path,
		UpdatedAt:  time.Now(),
		ID:         user.ID,
	})
	if err != nil {
		h.media.Remove(uploaded.Path, uploaded.ThumbPath)
		slog.Error("avatar update failed", "error", err, "user_id", user.ID)
		WriteInternalError(w, "Failed to update avatar")
		return
	}

	if before.AvatarPath != "" {
		h.media.Remove(before.AvatarPath)
	}

	user.AvatarPath = uploaded.Path
	h.audit.Log(r.Context(), model.ContentTypeUser, user.ID, model.AuditActionUpdate,
		actorFromRequest(r), before, userView(user), r)

	WriteSuccess(w, userView(user), nil)
}

// DeleteUser handles DELETE /api/users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user, ok := requireEntityByID(w, r, "user", func(id int64) (store.User, error) {
		return h.queries.GetUserByID(r.Context(), id)
	})
	if !ok {
		return
	}

	if claims := middleware.GetClaims(r); claims != nil && claims.UserID == user.ID {
		WriteValidationError(w, map[string]string{"id": "Cannot delete your own account"})
		return
	}

	if err := h.queries.DeleteUser(r.Context(), user.ID); err != nil {
		slog.Error("user delete failed", "error", err, "user_id", user.ID)
		WriteInternalError(w, "Failed to delete user")
		return
	}

	if user.AvatarPath != "" {
		h.media.Remove(user.AvatarPath)
	}

	h.audit.Log(r.Context(), model.ContentTypeUser, user.ID, model.AuditActionDelete,
		actorFromRequest(r), userView(user), nil, r)

	slog.Warn("user deleted",
		"category", "user", "user_id", user.ID)

	WriteSuccess(w, map[string]bool{"deleted": true}, nil)
}

// isUniqueViolation reports whether err is a unique constraint failure.
// Both sqlite and mysql surface the constraint name in the message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "Duplicate entry")
}
