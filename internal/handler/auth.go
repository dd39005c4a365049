// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/corpcms-go/internal/auth"
	"github.com/olegiv/corpcms-go/internal/store"
	"github.com/olegiv/corpcms-go/internal/util"
)

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the user identity the client
// needs to populate its session state.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		WriteValidationError(w, map[string]string{
			"email":    "Email and password are required",
			"password": "Email and password are required",
		})
		return
	}

	clientIP := util.ClientIP(r)

	if h.shield != nil {
		if locked, remaining := h.shield.IsAccountLocked(req.Email); locked {
			slog.Warn("login attempt on locked account",
				"category", "auth", "ip", clientIP)
			WriteError(w, http.StatusTooManyRequests, "account_locked",
				fmt.Sprintf("Account locked, try again in %s", remaining.Round(time.Second)), nil)
			return
		}
	}

	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("login lookup failed", "error", err)
			WriteInternalError(w, "Login failed")
			return
		}
		// Burn a lockout attempt for unknown accounts too, and answer
		// identically so emails cannot be probed.
		h.recordFailure(req.Email, clientIP)
		WriteUnauthorized(w, "Invalid email or password")
		return
	}

	ok, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		slog.Error("password verification failed", "error", err, "user_id", user.ID)
		WriteInternalError(w, "Login failed")
		return
	}
	if !ok {
		h.recordFailure(req.Email, clientIP)
		WriteUnauthorized(w, "Invalid email or password")
		return
	}

	token, expiresAt, err := h.issuer.Issue(user)
	if err != nil {
		slog.Error("token issue failed", "error", err, "user_id", user.ID)
		WriteInternalError(w, "Login failed")
		return
	}

	if h.shield != nil {
		h.shield.RecordSuccessfulLogin(req.Email)
	}

	err = h.queries.UpdateUserLastLogin(r.Context(), store.UpdateUserLastLoginParams{
		LastLoginAt: sql.NullTime{Time: time.Now(), Valid: true},
		ID:          user.ID,
	})
	if err != nil {
		slog.Error("last login update failed", "error", err, "user_id", user.ID)
	}

	slog.Info("user logged in",
		"category", "auth", "user_id", user.ID, "ip", clientIP)

	WriteSuccess(w, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		ID:        user.ID,
		Name:      user.Name,
		Role:      user.Role,
		Avatar:    user.AvatarPath,
	}, nil)
}

func (h *Handler) recordFailure(email, clientIP string) {
	if h.shield == nil {
		return
	}
	h.shield.RecordFailedAttempt(email)
	slog.Warn("login failed: invalid credentials",
		"category", "auth", "ip", clientIP,
		"attempts_left", h.shield.RemainingAttempts(email))
}

// RefreshResponse carries the renewed token.
type RefreshResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Refresh handles POST /api/auth/refresh. The bearer token must still be
// valid; an expired token cannot be refreshed.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		WriteUnauthorized(w, "Missing bearer token")
		return
	}

	token, expiresAt, err := h.issuer.Refresh(parts[1])
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			WriteError(w, http.StatusUnauthorized, "token_expired", "Token has expired", nil)
			return
		}
		WriteUnauthorized(w, "Invalid token")
		return
	}

	WriteSuccess(w, RefreshResponse{Token: token, ExpiresAt: expiresAt}, nil)
}
