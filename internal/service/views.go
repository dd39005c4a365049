// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/corpcms-go/internal/cache"
	"github.com/olegiv/corpcms-go/internal/model"
	"github.com/olegiv/corpcms-go/internal/store"
	"github.com/olegiv/corpcms-go/internal/util"
)

// DedupWindow is how long a visitor fingerprint suppresses repeat counting
// for the same resource.
const DedupWindow = 24 * time.Hour

// ViewService increments public view counters with per-visitor
// deduplication. A visitor is the pair (client IP, hashed user agent); the
// same visitor views a resource at most once per DedupWindow. Staff
// accounts and crawler user agents never count.
type ViewService struct {
	queries *store.Queries
	cache   cache.Cache
}

// NewViewService creates a view counting service. The cache front-runs the
// dedup ledger so repeat views within the window skip the database.
func NewViewService(queries *store.Queries, c cache.Cache) *ViewService {
	return &ViewService{queries: queries, cache: c}
}

// RecordView counts one view of the given resource if the visitor has not
// been counted within the window. viewerRole is the authenticated role, or
// empty for anonymous visitors. Counting failures are logged, never
// surfaced: view counters must not break public page delivery.
func (s *ViewService) RecordView(ctx context.Context, resourceType string, resourceID int64, viewerRole string, r *http.Request) {
	if model.IsStaffRole(viewerRole) {
		return
	}

	rawUA := r.UserAgent()
	if ua := useragent.Parse(rawUA); ua.Bot {
		return
	}

	ip := util.ClientIP(r)
	if ip == "" {
		return
	}
	uaHash := hashUserAgent(rawUA)

	cacheKey := fmt.Sprintf("view:%s:%d:%s:%s", resourceType, resourceID, ip, uaHash)
	if _, err := s.cache.Get(ctx, cacheKey); err == nil {
		return
	}

	now := time.Now()
	seen, err := s.queries.CountRecentViewHits(ctx, store.CountRecentViewHitsParams{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IP:           ip,
		UAHash:       uaHash,
		Since:        now.Add(-DedupWindow),
	})
	if err != nil {
		slog.Error("view dedup lookup failed",
			"resource_type", resourceType, "resource_id", resourceID, "error", err)
		return
	}
	if seen > 0 {
		_ = s.cache.Set(ctx, cacheKey, []byte{'1'}, DedupWindow)
		return
	}

	if err := s.queries.CreateViewHit(ctx, store.CreateViewHitParams{
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IP:           ip,
		UAHash:       uaHash,
		SeenAt:       now,
	}); err != nil {
		slog.Error("view hit insert failed",
			"resource_type", resourceType, "resource_id", resourceID, "error", err)
		return
	}

	if err := s.increment(ctx, resourceType, resourceID); err != nil {
		slog.Error("view counter increment failed",
			"resource_type", resourceType, "resource_id", resourceID, "error", err)
		return
	}

	_ = s.cache.Set(ctx, cacheKey, []byte{'1'}, DedupWindow)
}

func (s *ViewService) increment(ctx context.Context, resourceType string, resourceID int64) error {
	switch resourceType {
	case model.ContentTypePost:
		return s.queries.IncrementPostViews(ctx, resourceID)
	case model.ContentTypeProduct:
		return s.queries.IncrementProductViews(ctx, resourceID)
	case model.ContentTypeGallery:
		return s.queries.IncrementGalleryItemViews(ctx, resourceID)
	default:
		return fmt.Errorf("resource type %q has no view counter", resourceType)
	}
}

func hashUserAgent(ua string) string {
	sum := sha256.Sum256([]byte(ua))
	return hex.EncodeToString(sum[:8])
}
