// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const productColumns = `id, name, slug, description, lang, category, image_path,
	spec_sheet_path, sort_order, views, created_at, updated_at`

func scanProduct(row *sql.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Lang, &p.Category,
		&p.ImagePath, &p.SpecSheetPath, &p.SortOrder, &p.Views, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreateProductParams holds the fields for CreateProduct.
type CreateProductParams struct {
	Name          string
	Slug          string
	Description   string
	Lang          string
	Category      string
	ImagePath     string
	SpecSheetPath string
	SortOrder     int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateProduct inserts a new product and returns it.
func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO products (name, slug, description, lang, category, image_path,
		    spec_sheet_path, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.Slug, arg.Description, arg.Lang, arg.Category, arg.ImagePath,
		arg.SpecSheetPath, arg.SortOrder, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Product{}, err
	}
	return q.GetProductByID(ctx, id)
}

// GetProductByID returns a product by primary key.
func (q *Queries) GetProductByID(ctx context.Context, id int64) (Product, error) {
	return scanProduct(q.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id))
}

// UpdateProductParams holds the fields for UpdateProduct.
type UpdateProductParams struct {
	Name          string
	Slug          string
	Description   string
	Lang          string
	Category      string
	ImagePath     string
	SpecSheetPath string
	SortOrder     int64
	UpdatedAt     time.Time
	ID            int64
}

// UpdateProduct rewrites a product row.
func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE products SET name = ?, slug = ?, description = ?, lang = ?, category = ?,
		    image_path = ?, spec_sheet_path = ?, sort_order = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Name, arg.Slug, arg.Description, arg.Lang, arg.Category, arg.ImagePath,
		arg.SpecSheetPath, arg.SortOrder, arg.UpdatedAt, arg.ID)
	return err
}

// DeleteProduct removes a product row.
func (q *Queries) DeleteProduct(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	return err
}

// ListProducts returns products matching the filter, ordered by explicit
// sort key then recency.
func (q *Queries) ListProducts(ctx context.Context, f ContentFilter) ([]Product, error) {
	where, args := f.where("name")
	args = append(args, f.Limit, f.Offset)
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products`+where+
			` ORDER BY sort_order ASC, created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Lang, &p.Category,
			&p.ImagePath, &p.SpecSheetPath, &p.SortOrder, &p.Views,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CountProducts returns the number of products matching the filter.
func (q *Queries) CountProducts(ctx context.Context, f ContentFilter) (int64, error) {
	where, args := f.where("name")
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&n)
	return n, err
}

// IncrementProductViews bumps a product's view counter.
func (q *Queries) IncrementProductViews(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE products SET views = views + 1 WHERE id = ?`, id)
	return err
}
