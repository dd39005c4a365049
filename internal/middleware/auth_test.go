// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/olegiv/corpcms-go/internal/auth"
	"github.com/olegiv/corpcms-go/internal/model"
	"github.com/olegiv/corpcms-go/internal/store"
)

const testSecret = "middleware-test-secret-0123456789"

// okHandler writes 200 OK.
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func testToken(t *testing.T, issuer *auth.Issuer, role string) string {
	t.Helper()

	token, _, err := issuer.Issue(store.User{
		ID:    1,
		Email: "editor@example.com",
		Role:  role,
	})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) APIError {
	t.Helper()

	var apiErr APIError
	if err := json.NewDecoder(rec.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return apiErr
}

func TestBearerAuth(t *testing.T) {
	issuer := auth.NewIssuer(testSecret, time.Hour)
	handler := BearerAuth(issuer)(okHandler)

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		if got := decodeAPIError(t, rec).Error.Code; got != "unauthorized" {
			t.Errorf("expected code unauthorized, got %q", got)
		}
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil)
		req.Header.Set("Authorization", "Basic abc123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		expiredIssuer := auth.NewIssuerWithClock(testSecret, time.Hour, func() time.Time { return past })
		token := testToken(t, expiredIssuer, model.RoleEditor)

		req := httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		if got := decodeAPIError(t, rec).Error.Code; got != "token_expired" {
			t.Errorf("expected code token_expired, got %q", got)
		}
	})

	t.Run("valid token passes claims through", func(t *testing.T) {
		token := testToken(t, issuer, model.RoleEditor)

		var seen *auth.Claims
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetClaims(r)
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/admin/posts", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		BearerAuth(issuer)(inner).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if seen == nil {
			t.Fatal("expected claims in context")
		}
		if seen.UserID != 1 || seen.Role != model.RoleEditor {
			t.Errorf("unexpected claims: %+v", seen)
		}
	})
}

func TestOptionalBearerAuth(t *testing.T) {
	issuer := auth.NewIssuer(testSecret, time.Hour)

	t.Run("no header still passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		rec := httptest.NewRecorder()
		OptionalBearerAuth(issuer)(okHandler).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("invalid token still passes without claims", func(t *testing.T) {
		var seen *auth.Claims
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetClaims(r)
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.Header.Set("Authorization", "Bearer junk")
		rec := httptest.NewRecorder()
		OptionalBearerAuth(issuer)(inner).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if seen != nil {
			t.Errorf("expected no claims, got %+v", seen)
		}
	})

	t.Run("valid token attaches claims", func(t *testing.T) {
		token := testToken(t, issuer, model.RoleAdmin)

		var seen *auth.Claims
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = GetClaims(r)
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		OptionalBearerAuth(issuer)(inner).ServeHTTP(rec, req)

		if seen == nil || seen.Role != model.RoleAdmin {
			t.Errorf("expected admin claims, got %+v", seen)
		}
	})
}

func TestRequireAction(t *testing.T) {
	issuer := auth.NewIssuer(testSecret, time.Hour)

	run := func(role, action string) *httptest.ResponseRecorder {
		token := testToken(t, issuer, role)
		handler := BearerAuth(issuer)(RequireAction(action)(okHandler))

		req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/2", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("allowed action", func(t *testing.T) {
		if rec := run(model.RoleEditor, auth.ActionContentCreate); rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("denied action", func(t *testing.T) {
		rec := run(model.RoleEditor, auth.ActionUsersCreate)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", rec.Code)
		}
		if got := decodeAPIError(t, rec).Error.Code; got != "forbidden" {
			t.Errorf("expected code forbidden, got %q", got)
		}
	})

	t.Run("superadmin allowed everything", func(t *testing.T) {
		for _, action := range []string{auth.ActionContentCreate, auth.ActionUsersCreate, auth.ActionIPManage} {
			if rec := run(model.RoleSuperadmin, action); rec.Code != http.StatusOK {
				t.Errorf("action %s: expected 200, got %d", action, rec.Code)
			}
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
		rec := httptest.NewRecorder()
		RequireAction(auth.ActionUsersCreate)(okHandler).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}
