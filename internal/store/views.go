// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// CreateViewHitParams holds the fields for CreateViewHit.
type CreateViewHitParams struct {
	ResourceType string
	ResourceID   int64
	IP           string
	UAHash       string
	SeenAt       time.Time
}

// CreateViewHit records one deduplication ledger entry for a counted view.
func (q *Queries) CreateViewHit(ctx context.Context, arg CreateViewHitParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO view_hits (resource_type, resource_id, ip, ua_hash, seen_at)
		 VALUES (?, ?, ?, ?, ?)`,
		arg.ResourceType, arg.ResourceID, arg.IP, arg.UAHash, arg.SeenAt)
	return err
}

// CountRecentViewHitsParams holds the fields for CountRecentViewHits.
type CountRecentViewHitsParams struct {
	ResourceType string
	ResourceID   int64
	IP           string
	UAHash       string
	Since        time.Time
}

// CountRecentViewHits returns how many ledger entries match the visitor
// fingerprint within the dedup window.
func (q *Queries) CountRecentViewHits(ctx context.Context, arg CountRecentViewHitsParams) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM view_hits
		 WHERE resource_type = ? AND resource_id = ? AND ip = ? AND ua_hash = ?
		   AND seen_at > ?`,
		arg.ResourceType, arg.ResourceID, arg.IP, arg.UAHash, arg.Since).Scan(&n)
	return n, err
}

// DeleteOldViewHits drops ledger entries older than the cutoff and returns
// how many were removed.
func (q *Queries) DeleteOldViewHits(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM view_hits WHERE seen_at <= ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
