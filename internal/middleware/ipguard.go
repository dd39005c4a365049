// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/corpcms-go/internal/cache"
	"github.com/olegiv/corpcms-go/internal/store"
	"github.com/olegiv/corpcms-go/internal/util"
)

const (
	ipGuardSettingsKey = "ipguard:enabled"
	ipGuardAllowPrefix = "ipguard:allow:"
	ipGuardCacheTTL    = 30 * time.Second
)

// IPGuard restricts admin routes to allow-listed source addresses. A denied
// request receives 404 rather than 403 so the admin surface is
// indistinguishable from a missing route.
type IPGuard struct {
	queries *store.Queries
	cache   cache.Cache
	exempt  []string
}

// NewIPGuard creates an IP guard backed by the given store. The cache keeps
// the enabled flag and per-IP verdicts for a short interval so the guard
// does not hit the database on every admin request.
func NewIPGuard(queries *store.Queries, c cache.Cache) *IPGuard {
	return &IPGuard{
		queries: queries,
		cache:   c,
		exempt: []string{
			"/api/admin/ip-settings",
			"/api/admin/ip-whitelist",
			"/api/admin/ip-my",
		},
	}
}

// Invalidate drops cached guard state. Called after any settings or
// whitelist mutation so changes take effect immediately.
func (g *IPGuard) Invalidate(ctx context.Context) {
	_ = g.cache.Delete(ctx, ipGuardSettingsKey)
	if mc, ok := g.cache.(*cache.MemoryCache); ok {
		_ = mc.DeleteByPrefix(ctx, ipGuardAllowPrefix)
	} else {
		_ = g.cache.Clear(ctx)
	}
}

// Middleware enforces the allow-list. The management endpoints are exempt so
// a misconfigured whitelist can always be repaired; their handlers enforce
// the role policy instead.
func (g *IPGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.isExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		enabled, err := g.enabled(r)
		if err != nil {
			slog.Error("ip guard: settings lookup failed", "error", err)
			g.deny(w, r)
			return
		}
		if !enabled {
			next.ServeHTTP(w, r)
			return
		}

		ip := util.ClientIP(r)
		if ip == "" {
			// Undeterminable source address fails closed.
			slog.Warn("ip guard: blocked request with undeterminable ip",
				"category", "ipacl", "path", r.URL.Path)
			g.deny(w, r)
			return
		}

		allowed, err := g.allowed(r, ip)
		if err != nil {
			slog.Error("ip guard: whitelist lookup failed", "error", err, "ip", ip)
			g.deny(w, r)
			return
		}
		if !allowed {
			slog.Warn("ip guard: blocked non-whitelisted ip",
				"category", "ipacl", "ip", ip, "path", r.URL.Path)
			g.deny(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *IPGuard) isExempt(path string) bool {
	for _, p := range g.exempt {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func (g *IPGuard) enabled(r *http.Request) (bool, error) {
	ctx := r.Context()
	if data, err := g.cache.Get(ctx, ipGuardSettingsKey); err == nil && len(data) == 1 {
		return data[0] == '1', nil
	}

	settings, err := g.queries.GetIPSettings(ctx)
	if err != nil {
		return false, err
	}

	b := []byte{'0'}
	if settings.Enabled {
		b[0] = '1'
	}
	_ = g.cache.Set(ctx, ipGuardSettingsKey, b, ipGuardCacheTTL)
	return settings.Enabled, nil
}

func (g *IPGuard) allowed(r *http.Request, ip string) (bool, error) {
	ctx := r.Context()
	key := ipGuardAllowPrefix + ip
	if data, err := g.cache.Get(ctx, key); err == nil && len(data) == 1 {
		return data[0] == '1', nil
	}

	allowed, err := g.queries.IsIPWhitelisted(ctx, ip)
	if err != nil {
		return false, err
	}

	b := []byte{'0'}
	if allowed {
		b[0] = '1'
	}
	_ = g.cache.Set(ctx, key, b, ipGuardCacheTTL)
	return allowed, nil
}

// deny answers 404 so blocked callers cannot distinguish the guard from a
// missing route.
func (g *IPGuard) deny(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		WriteAPIError(w, http.StatusNotFound, "not_found", "Resource not found", nil)
		return
	}
	http.NotFound(w, r)
}
