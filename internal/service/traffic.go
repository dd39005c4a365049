// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/corpcms-go/internal/geoip"
	"github.com/olegiv/corpcms-go/internal/store"
	"github.com/olegiv/corpcms-go/internal/util"
)

// TrafficService records public page views for the analytics dashboard.
// Capture runs off the request path so analytics never adds latency or
// failure modes to page delivery.
type TrafficService struct {
	queries  *store.Queries
	resolver *geoip.Resolver
}

// NewTrafficService creates a traffic capture service. resolver may be a
// disabled resolver when no GeoIP database is configured.
func NewTrafficService(queries *store.Queries, resolver *geoip.Resolver) *TrafficService {
	return &TrafficService{queries: queries, resolver: resolver}
}

// Record captures one page view asynchronously. The write uses a detached
// context so it survives the request ending.
func (s *TrafficService) Record(r *http.Request) {
	// Snapshot request fields before leaving the request goroutine.
	path := r.URL.Path
	ip := util.ClientIP(r)
	rawUA := r.UserAgent()
	referrer := r.Referer()
	now := time.Now()

	go func() {
		ua := useragent.Parse(rawUA)

		entry := store.CreateTrafficEntryParams{
			Path:           path,
			IP:             ip,
			CountryCode:    s.resolver.Country(ip),
			Browser:        ua.Name,
			OS:             ua.OS,
			DeviceType:     deviceType(ua),
			ReferrerDomain: referrerDomain(referrer),
			CreatedAt:      now,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.queries.CreateTrafficEntry(ctx, entry); err != nil {
			slog.Error("traffic entry insert failed", "path", path, "error", err)
		}
	}()
}

// Summary aggregates traffic since the given time.
type Summary struct {
	Total     int64                `json:"total"`
	Countries []store.TrafficCount `json:"countries"`
	Browsers  []store.TrafficCount `json:"browsers"`
	Paths     []store.TrafficCount `json:"paths"`
	Referrers []store.TrafficCount `json:"referrers"`
}

// Summarize builds the analytics dashboard payload: total hits plus top
// groupings by country, browser, path, and referrer domain.
func (s *TrafficService) Summarize(ctx context.Context, since time.Time, limit int64) (*Summary, error) {
	total, err := s.queries.CountTrafficSince(ctx, since)
	if err != nil {
		return nil, err
	}
	countries, err := s.queries.TrafficByCountry(ctx, since, limit)
	if err != nil {
		return nil, err
	}
	browsers, err := s.queries.TrafficByBrowser(ctx, since, limit)
	if err != nil {
		return nil, err
	}
	paths, err := s.queries.TrafficByPath(ctx, since, limit)
	if err != nil {
		return nil, err
	}
	referrers, err := s.queries.TrafficByReferrer(ctx, since, limit)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Total:     total,
		Countries: countries,
		Browsers:  browsers,
		Paths:     paths,
		Referrers: referrers,
	}, nil
}

func deviceType(ua useragent.UserAgent) string {
	switch {
	case ua.Bot:
		return "bot"
	case ua.Mobile:
		return "mobile"
	case ua.Tablet:
		return "tablet"
	default:
		return "desktop"
	}
}

// referrerDomain extracts the host from a Referer header, dropping any
// www. prefix. Unparseable or empty referrers yield an empty string.
func referrerDomain(referrer string) string {
	if referrer == "" {
		return ""
	}
	u, err := url.Parse(referrer)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
