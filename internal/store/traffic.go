// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// CreateTrafficEntryParams holds the fields for CreateTrafficEntry.
type CreateTrafficEntryParams struct {
	Path           string
	IP             string
	CountryCode    string
	Browser        string
	OS             string
	DeviceType     string
	ReferrerDomain string
	CreatedAt      time.Time
}

// CreateTrafficEntry records one public page view.
func (q *Queries) CreateTrafficEntry(ctx context.Context, arg CreateTrafficEntryParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO traffic_log (path, ip, country_code, browser, os, device_type,
		    referrer_domain, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Path, arg.IP, arg.CountryCode, arg.Browser, arg.OS, arg.DeviceType,
		arg.ReferrerDomain, arg.CreatedAt)
	return err
}

// TrafficCount is one bucket of an aggregated traffic report.
type TrafficCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// CountTrafficSince returns the total page views recorded after the cutoff.
func (q *Queries) CountTrafficSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM traffic_log WHERE created_at > ?`, since).Scan(&n)
	return n, err
}

// trafficGroupBy runs one GROUP BY report over the traffic table. The column
// name comes from a fixed caller-side set, never from user input.
func (q *Queries) trafficGroupBy(ctx context.Context, column string, since time.Time, limit int64) ([]TrafficCount, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+column+`, COUNT(*) AS n FROM traffic_log
		 WHERE created_at > ? AND `+column+` != ''
		 GROUP BY `+column+` ORDER BY n DESC LIMIT ?`, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []TrafficCount
	for rows.Next() {
		var c TrafficCount
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// TrafficByCountry returns the top countries by page views after the cutoff.
func (q *Queries) TrafficByCountry(ctx context.Context, since time.Time, limit int64) ([]TrafficCount, error) {
	return q.trafficGroupBy(ctx, "country_code", since, limit)
}

// TrafficByBrowser returns the top browsers by page views after the cutoff.
func (q *Queries) TrafficByBrowser(ctx context.Context, since time.Time, limit int64) ([]TrafficCount, error) {
	return q.trafficGroupBy(ctx, "browser", since, limit)
}

// TrafficByPath returns the most viewed paths after the cutoff.
func (q *Queries) TrafficByPath(ctx context.Context, since time.Time, limit int64) ([]TrafficCount, error) {
	return q.trafficGroupBy(ctx, "path", since, limit)
}

// TrafficByReferrer returns the top referrer domains after the cutoff.
func (q *Queries) TrafficByReferrer(ctx context.Context, since time.Time, limit int64) ([]TrafficCount, error) {
	return q.trafficGroupBy(ctx, "referrer_domain", since, limit)
}

// DeleteOldTraffic drops page views older than the cutoff and returns how
// many were removed.
func (q *Queries) DeleteOldTraffic(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM traffic_log WHERE created_at <= ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
