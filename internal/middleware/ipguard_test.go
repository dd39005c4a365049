// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/olegiv/corpcms-go/internal/cache"
	"github.com/olegiv/corpcms-go/internal/store"
)

func testQueries(t *testing.T) *store.Queries {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "corpcms-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	db, err := store.NewDB("sqlite", tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to open db: %v", err)
	}
	if err := store.Migrate(db, "sqlite"); err != nil {
		db.Close()
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(tmpFile.Name())
	})

	return store.New(db)
}

func newTestGuard(t *testing.T) (*IPGuard, *store.Queries) {
	t.Helper()

	q := testQueries(t)
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{
		DefaultTTL:      time.Minute,
		MaxSize:         100,
		CleanupInterval: time.Minute,
	})
	t.Cleanup(func() { c.Close() })

	return NewIPGuard(q, c), q
}

func enableGuard(t *testing.T, q *store.Queries, ips ...string) {
	t.Helper()

	ctx := context.Background()
	now := time.Now()
	for _, ip := range ips {
		_, err := q.CreateIPWhitelistEntry(ctx, store.CreateIPWhitelistEntryParams{
			IP:        ip,
			Label:     "test",
			CreatedAt: now,
		})
		if err != nil {
			t.Fatalf("CreateIPWhitelistEntry: %v", err)
		}
	}
	if err := q.UpdateIPSettings(ctx, store.UpdateIPSettingsParams{Enabled: true, UpdatedAt: now}); err != nil {
		t.Fatalf("UpdateIPSettings: %v", err)
	}
}

func guardRequest(guard *IPGuard, path, remoteAddr string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remoteAddr
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	guard.Middleware(okHandler).ServeHTTP(rec, req)
	return rec
}

func TestIPGuard_DisabledAllowsAll(t *testing.T) {
	guard, _ := newTestGuard(t)

	rec := guardRequest(guard, "/api/admin/posts", "203.0.113.9:1234", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with guard disabled, got %d", rec.Code)
	}
}

func TestIPGuard_EnabledFiltersByIP(t *testing.T) {
	guard, q := newTestGuard(t)
	enableGuard(t, q, "198.51.100.7")

	t.Run("whitelisted ip allowed", func(t *testing.T) {
		rec := guardRequest(guard, "/api/admin/posts", "198.51.100.7:4567", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("unknown ip gets 404 not 403", func(t *testing.T) {
		rec := guardRequest(guard, "/api/admin/posts", "203.0.113.9:4567", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
		if got := decodeAPIError(t, rec).Error.Code; got != "not_found" {
			t.Errorf("expected code not_found, got %q", got)
		}
	})
}

func TestIPGuard_HeaderPriority(t *testing.T) {
	guard, q := newTestGuard(t)
	enableGuard(t, q, "198.51.100.7")

	t.Run("x-real-ip wins over remote addr", func(t *testing.T) {
		rec := guardRequest(guard, "/api/admin/posts", "203.0.113.9:4567",
			map[string]string{"X-Real-IP": "198.51.100.7"})
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 via X-Real-IP, got %d", rec.Code)
		}
	})

	t.Run("first forwarded-for hop used", func(t *testing.T) {
		rec := guardRequest(guard, "/api/admin/posts", "203.0.113.9:4567",
			map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.1"})
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 via X-Forwarded-For, got %d", rec.Code)
		}
	})
}

func TestIPGuard_MappedIPv6Normalized(t *testing.T) {
	guard, q := newTestGuard(t)
	enableGuard(t, q, "198.51.100.7")

	rec := guardRequest(guard, "/api/admin/posts", "203.0.113.9:4567",
		map[string]string{"X-Real-IP": "::ffff:198.51.100.7"})
	if rec.Code != http.StatusOK {
		t.Errorf("expected mapped IPv4 to normalize and match, got %d", rec.Code)
	}
}

func TestIPGuard_FailsClosedOnGarbageIP(t *testing.T) {
	guard, q := newTestGuard(t)
	enableGuard(t, q, "198.51.100.7")

	rec := guardRequest(guard, "/api/admin/posts", "203.0.113.9:4567",
		map[string]string{"X-Real-IP": "not-an-ip"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for undeterminable ip, got %d", rec.Code)
	}
}

func TestIPGuard_ManagementRoutesExempt(t *testing.T) {
	guard, q := newTestGuard(t)
	enableGuard(t, q, "198.51.100.7")

	paths := []string{
		"/api/admin/ip-settings",
		"/api/admin/ip-whitelist",
		"/api/admin/ip-whitelist/3",
		"/api/admin/ip-my",
	}
	for _, path := range paths {
		rec := guardRequest(guard, path, "203.0.113.9:4567", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected exemption, got %d", path, rec.Code)
		}
	}
}

func TestIPGuard_NonAPIPathGetsPlain404(t *testing.T) {
	guard, q := newTestGuard(t)
	enableGuard(t, q, "198.51.100.7")

	rec := guardRequest(guard, "/admin", "203.0.113.9:4567", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct == "application/json" {
		t.Errorf("expected plain 404 body outside /api/, got %q", ct)
	}
}

func TestIPGuard_InvalidateRefreshesVerdict(t *testing.T) {
	guard, q := newTestGuard(t)
	enableGuard(t, q, "198.51.100.7")

	// Cache the deny verdict.
	if rec := guardRequest(guard, "/api/admin/posts", "203.0.113.9:4567", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	ctx := context.Background()
	if _, err := q.CreateIPWhitelistEntry(ctx, store.CreateIPWhitelistEntryParams{
		IP:        "203.0.113.9",
		Label:     "added later",
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("CreateIPWhitelistEntry: %v", err)
	}
	guard.Invalidate(ctx)

	if rec := guardRequest(guard, "/api/admin/posts", "203.0.113.9:4567", nil); rec.Code != http.StatusOK {
		t.Errorf("expected 200 after invalidation, got %d", rec.Code)
	}
}
