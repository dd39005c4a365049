// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// CreateAuditEntryParams holds the fields for CreateAuditEntry.
type CreateAuditEntryParams struct {
	ContentType string
	ContentID   int64
	Action      string
	ActorID     int64
	ActorName   string
	BeforeData  sql.NullString
	AfterData   sql.NullString
	IPAddress   string
	UserAgent   string
	CreatedAt   time.Time
}

// CreateAuditEntry appends one row to the content audit log. The table is
// append-only; no update or delete statements exist for it.
func (q *Queries) CreateAuditEntry(ctx context.Context, arg CreateAuditEntryParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO audit_log (content_type, content_id, action, actor_id, actor_name,
		    before_data, after_data, ip_address, user_agent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.ContentType, arg.ContentID, arg.Action, arg.ActorID, arg.ActorName,
		arg.BeforeData, arg.AfterData, arg.IPAddress, arg.UserAgent, arg.CreatedAt)
	return err
}

// ListAuditEntriesParams holds the filters for ListAuditEntries.
type ListAuditEntriesParams struct {
	ContentType string // empty matches all
	Limit       int64
	Offset      int64
}

// ListAuditEntries returns audit rows, newest first.
func (q *Queries) ListAuditEntries(ctx context.Context, arg ListAuditEntriesParams) ([]AuditEntry, error) {
	query := `SELECT id, content_type, content_id, action, actor_id, actor_name,
	    before_data, after_data, ip_address, user_agent, created_at FROM audit_log`
	args := []any{}
	if arg.ContentType != "" {
		query += ` WHERE content_type = ?`
		args = append(args, arg.ContentType)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.ContentType, &e.ContentID, &e.Action, &e.ActorID,
			&e.ActorName, &e.BeforeData, &e.AfterData, &e.IPAddress, &e.UserAgent, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountAuditEntries returns the number of audit rows matching contentType
// (empty matches all).
func (q *Queries) CountAuditEntries(ctx context.Context, contentType string) (int64, error) {
	var n int64
	var err error
	if contentType == "" {
		err = q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&n)
	} else {
		err = q.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM audit_log WHERE content_type = ?`, contentType).Scan(&n)
	}
	return n, err
}

// CreateEventParams holds the fields for CreateEvent.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	Metadata  string
	IPAddress string
	CreatedAt time.Time
}

// CreateEvent appends an operator-channel event row.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO events (level, category, message, user_id, metadata, ip_address, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.Level, arg.Category, arg.Message, arg.UserID, arg.Metadata, arg.IPAddress, arg.CreatedAt)
	return err
}

// ListEventsParams holds the filters for ListEvents.
type ListEventsParams struct {
	Level  string // empty matches all
	Limit  int64
	Offset int64
}

// ListEvents returns operator-channel events, newest first.
func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]Event, error) {
	query := `SELECT id, level, category, message, user_id, metadata, ip_address, created_at FROM events`
	args := []any{}
	if arg.Level != "" {
		query += ` WHERE level = ?`
		args = append(args, arg.Level)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID,
			&e.Metadata, &e.IPAddress, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
