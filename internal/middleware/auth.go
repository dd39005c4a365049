// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, the admin IP guard, and rate limiting.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/olegiv/corpcms-go/internal/auth"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyClaims is the context key for verified token claims.
const ContextKeyClaims ContextKey = "claims"

// APIError represents a JSON error response for the API.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

// BearerAuth creates middleware that requires a valid bearer token. The
// verified claims are stored in the request context.
func BearerAuth(issuer *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, errWritten := verifyBearer(w, r, issuer, true)
			if errWritten {
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalBearerAuth adds claims to the context when a valid token is
// present but never rejects the request. Used on public routes where staff
// detection matters for view counting.
func OptionalBearerAuth(issuer *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := verifyBearer(w, r, issuer, false)
			if claims != nil {
				ctx := context.WithValue(r.Context(), ContextKeyClaims, claims)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// verifyBearer parses and verifies the Authorization header. When required
// is true and verification fails, a JSON error is written and the second
// return value is true.
func verifyBearer(w http.ResponseWriter, r *http.Request, issuer *auth.Issuer, required bool) (*auth.Claims, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if required {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Missing Authorization header", nil)
			return nil, true
		}
		return nil, false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		if required {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header format. Use: Bearer <token>", nil)
			return nil, true
		}
		return nil, false
	}

	claims, err := issuer.Verify(parts[1])
	if err != nil {
		if required {
			if errors.Is(err, auth.ErrExpiredToken) {
				WriteAPIError(w, http.StatusUnauthorized, "token_expired", "Token has expired", nil)
			} else {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid token", nil)
			}
			return nil, true
		}
		return nil, false
	}

	return claims, false
}

// GetClaims retrieves verified token claims from the request context.
// Returns nil if the request is unauthenticated.
func GetClaims(r *http.Request) *auth.Claims {
	claims, ok := r.Context().Value(ContextKeyClaims).(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// RequireAction creates middleware that enforces the role policy for one
// action. Must run after BearerAuth.
func RequireAction(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r)
			if claims == nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
				return
			}

			if !auth.Allows(claims.Role, action) {
				WriteAPIError(w, http.StatusForbidden, "forbidden", "Insufficient role for this operation", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
