// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const catalogItemColumns = `id, title, lang, file_path, sort_order, created_at, updated_at`

func scanCatalogItem(row *sql.Row) (CatalogItem, error) {
	var c CatalogItem
	err := row.Scan(&c.ID, &c.Title, &c.Lang, &c.FilePath, &c.SortOrder,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CreateCatalogItemParams holds the fields for CreateCatalogItem.
type CreateCatalogItemParams struct {
	Title     string
	Lang      string
	FilePath  string
	SortOrder int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateCatalogItem inserts a new catalog document and returns it.
func (q *Queries) CreateCatalogItem(ctx context.Context, arg CreateCatalogItemParams) (CatalogItem, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO catalog_items (title, lang, file_path, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Lang, arg.FilePath, arg.SortOrder, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return CatalogItem{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return CatalogItem{}, err
	}
	return q.GetCatalogItemByID(ctx, id)
}

// GetCatalogItemByID returns a catalog document by primary key.
func (q *Queries) GetCatalogItemByID(ctx context.Context, id int64) (CatalogItem, error) {
	return scanCatalogItem(q.db.QueryRowContext(ctx,
		`SELECT `+catalogItemColumns+` FROM catalog_items WHERE id = ?`, id))
}

// UpdateCatalogItemParams holds the fields for UpdateCatalogItem.
type UpdateCatalogItemParams struct {
	Title     string
	Lang      string
	FilePath  string
	SortOrder int64
	UpdatedAt time.Time
	ID        int64
}

// UpdateCatalogItem rewrites a catalog document row.
func (q *Queries) UpdateCatalogItem(ctx context.Context, arg UpdateCatalogItemParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE catalog_items SET title = ?, lang = ?, file_path = ?, sort_order = ?,
		    updated_at = ?
		 WHERE id = ?`,
		arg.Title, arg.Lang, arg.FilePath, arg.SortOrder, arg.UpdatedAt, arg.ID)
	return err
}

// DeleteCatalogItem removes a catalog document row.
func (q *Queries) DeleteCatalogItem(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM catalog_items WHERE id = ?`, id)
	return err
}

// ListCatalogItems returns catalog documents for a language (all when empty),
// ordered by explicit sort key then recency.
func (q *Queries) ListCatalogItems(ctx context.Context, lang string, limit, offset int64) ([]CatalogItem, error) {
	where := ""
	args := []any{}
	if lang != "" {
		where = " WHERE lang = ?"
		args = append(args, lang)
	}
	args = append(args, limit, offset)
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+catalogItemColumns+` FROM catalog_items`+where+
			` ORDER BY sort_order ASC, created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CatalogItem
	for rows.Next() {
		var c CatalogItem
		if err := rows.Scan(&c.ID, &c.Title, &c.Lang, &c.FilePath, &c.SortOrder,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// CountCatalogItems returns the number of catalog documents for a language.
func (q *Queries) CountCatalogItems(ctx context.Context, lang string) (int64, error) {
	where := ""
	args := []any{}
	if lang != "" {
		where = " WHERE lang = ?"
		args = append(args, lang)
	}
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_items`+where, args...).Scan(&n)
	return n, err
}
