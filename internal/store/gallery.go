// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const galleryColumns = `id, title, lang, image_path, thumb_path, sort_order, views,
	created_at, updated_at`

func scanGalleryItem(row *sql.Row) (GalleryItem, error) {
	var g GalleryItem
	err := row.Scan(&g.ID, &g.Title, &g.Lang, &g.ImagePath, &g.ThumbPath, &g.SortOrder,
		&g.Views, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

// CreateGalleryItemParams holds the fields for CreateGalleryItem.
type CreateGalleryItemParams struct {
	Title     string
	Lang      string
	ImagePath string
	ThumbPath string
	SortOrder int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateGalleryItem inserts a new gallery image and returns it.
func (q *Queries) CreateGalleryItem(ctx context.Context, arg CreateGalleryItemParams) (GalleryItem, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO gallery_items (title, lang, image_path, thumb_path, sort_order,
		    created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Lang, arg.ImagePath, arg.ThumbPath, arg.SortOrder,
		arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return GalleryItem{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return GalleryItem{}, err
	}
	return q.GetGalleryItemByID(ctx, id)
}

// GetGalleryItemByID returns a gallery image by primary key.
func (q *Queries) GetGalleryItemByID(ctx context.Context, id int64) (GalleryItem, error) {
	return scanGalleryItem(q.db.QueryRowContext(ctx,
		`SELECT `+galleryColumns+` FROM gallery_items WHERE id = ?`, id))
}

// UpdateGalleryItemParams holds the fields for UpdateGalleryItem.
type UpdateGalleryItemParams struct {
	Title     string
	Lang      string
	ImagePath string
	ThumbPath string
	SortOrder int64
	UpdatedAt time.Time
	ID        int64
}

// UpdateGalleryItem rewrites a gallery image row.
func (q *Queries) UpdateGalleryItem(ctx context.Context, arg UpdateGalleryItemParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE gallery_items SET title = ?, lang = ?, image_path = ?, thumb_path = ?,
		    sort_order = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Title, arg.Lang, arg.ImagePath, arg.ThumbPath, arg.SortOrder,
		arg.UpdatedAt, arg.ID)
	return err
}

// DeleteGalleryItem removes a gallery image row.
func (q *Queries) DeleteGalleryItem(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM gallery_items WHERE id = ?`, id)
	return err
}

// ListGalleryItems returns gallery images for a language (all when empty),
// ordered by explicit sort key then recency.
func (q *Queries) ListGalleryItems(ctx context.Context, lang string, limit, offset int64) ([]GalleryItem, error) {
	where := ""
	args := []any{}
	if lang != "" {
		where = " WHERE lang = ?"
		args = append(args, lang)
	}
	args = append(args, limit, offset)
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+galleryColumns+` FROM gallery_items`+where+
			` ORDER BY sort_order ASC, created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []GalleryItem
	for rows.Next() {
		var g GalleryItem
		if err := rows.Scan(&g.ID, &g.Title, &g.Lang, &g.ImagePath, &g.ThumbPath,
			&g.SortOrder, &g.Views, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

// CountGalleryItems returns the number of gallery images for a language.
func (q *Queries) CountGalleryItems(ctx context.Context, lang string) (int64, error) {
	where := ""
	args := []any{}
	if lang != "" {
		where = " WHERE lang = ?"
		args = append(args, lang)
	}
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM gallery_items`+where, args...).Scan(&n)
	return n, err
}

// IncrementGalleryItemViews bumps a gallery image's view counter.
func (q *Queries) IncrementGalleryItemViews(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE gallery_items SET views = views + 1 WHERE id = ?`, id)
	return err
}
