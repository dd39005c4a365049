// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"
)

// GetIPSettings returns the singleton guard toggle row.
func (q *Queries) GetIPSettings(ctx context.Context) (AdminIPSetting, error) {
	var s AdminIPSetting
	err := q.db.QueryRowContext(ctx,
		`SELECT id, enabled, updated_at FROM admin_ip_settings WHERE id = 1`).
		Scan(&s.ID, &s.Enabled, &s.UpdatedAt)
	return s, err
}

// UpdateIPSettingsParams holds the fields for UpdateIPSettings.
type UpdateIPSettingsParams struct {
	Enabled   bool
	UpdatedAt time.Time
}

// UpdateIPSettings toggles the guard.
func (q *Queries) UpdateIPSettings(ctx context.Context, arg UpdateIPSettingsParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE admin_ip_settings SET enabled = ?, updated_at = ? WHERE id = 1`,
		arg.Enabled, arg.UpdatedAt)
	return err
}

// ListIPWhitelist returns all allow-list entries, newest last.
func (q *Queries) ListIPWhitelist(ctx context.Context) ([]AdminIPWhitelistEntry, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, ip, label, created_at FROM admin_ip_whitelist ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AdminIPWhitelistEntry
	for rows.Next() {
		var e AdminIPWhitelistEntry
		if err := rows.Scan(&e.ID, &e.IP, &e.Label, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetIPWhitelistEntry returns one allow-list entry by id.
func (q *Queries) GetIPWhitelistEntry(ctx context.Context, id int64) (AdminIPWhitelistEntry, error) {
	var e AdminIPWhitelistEntry
	err := q.db.QueryRowContext(ctx,
		`SELECT id, ip, label, created_at FROM admin_ip_whitelist WHERE id = ?`, id).
		Scan(&e.ID, &e.IP, &e.Label, &e.CreatedAt)
	return e, err
}

// CountIPWhitelist returns the number of allow-list entries.
func (q *Queries) CountIPWhitelist(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_ip_whitelist`).Scan(&n)
	return n, err
}

// IsIPWhitelisted reports whether ip has an allow-list entry.
func (q *Queries) IsIPWhitelisted(ctx context.Context, ip string) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM admin_ip_whitelist WHERE ip = ?`, ip).Scan(&n)
	return n > 0, err
}

// CreateIPWhitelistEntryParams holds the fields for CreateIPWhitelistEntry.
type CreateIPWhitelistEntryParams struct {
	IP        string
	Label     string
	CreatedAt time.Time
}

// CreateIPWhitelistEntry adds an allow-list entry and returns it.
func (q *Queries) CreateIPWhitelistEntry(ctx context.Context, arg CreateIPWhitelistEntryParams) (AdminIPWhitelistEntry, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO admin_ip_whitelist (ip, label, created_at) VALUES (?, ?, ?)`,
		arg.IP, arg.Label, arg.CreatedAt)
	if err != nil {
		return AdminIPWhitelistEntry{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return AdminIPWhitelistEntry{}, err
	}
	return q.GetIPWhitelistEntry(ctx, id)
}

// UpdateIPWhitelistEntryParams holds the fields for UpdateIPWhitelistEntry.
type UpdateIPWhitelistEntryParams struct {
	IP    string
	Label string
	ID    int64
}

// UpdateIPWhitelistEntry rewrites an allow-list entry.
func (q *Queries) UpdateIPWhitelistEntry(ctx context.Context, arg UpdateIPWhitelistEntryParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE admin_ip_whitelist SET ip = ?, label = ? WHERE id = ?`,
		arg.IP, arg.Label, arg.ID)
	return err
}

// DeleteIPWhitelistEntry removes an allow-list entry.
func (q *Queries) DeleteIPWhitelistEntry(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM admin_ip_whitelist WHERE id = ?`, id)
	return err
}

// CreateIPAuditEntryParams holds the fields for CreateIPAuditEntry.
type CreateIPAuditEntryParams struct {
	Action    string
	IP        string
	Label     string
	ActorID   int64
	ActorName string
	CreatedAt time.Time
}

// CreateIPAuditEntry appends one row to the guard's own audit trail.
func (q *Queries) CreateIPAuditEntry(ctx context.Context, arg CreateIPAuditEntryParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO admin_ip_audit (action, ip, label, actor_id, actor_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Action, arg.IP, arg.Label, arg.ActorID, arg.ActorName, arg.CreatedAt)
	return err
}

// ListIPAudit returns guard audit rows, newest first.
func (q *Queries) ListIPAudit(ctx context.Context, limit, offset int64) ([]AdminIPAuditEntry, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, action, ip, label, actor_id, actor_name, created_at
		 FROM admin_ip_audit ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AdminIPAuditEntry
	for rows.Next() {
		var e AdminIPAuditEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.IP, &e.Label, &e.ActorID, &e.ActorName, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
