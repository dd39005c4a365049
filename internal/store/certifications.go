// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const certificationColumns = `id, title, lang, image_path, issued_at, sort_order,
	created_at, updated_at`

func scanCertification(row *sql.Row) (Certification, error) {
	var c Certification
	err := row.Scan(&c.ID, &c.Title, &c.Lang, &c.ImagePath, &c.IssuedAt, &c.SortOrder,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CreateCertificationParams holds the fields for CreateCertification.
type CreateCertificationParams struct {
	Title     string
	Lang      string
	ImagePath string
	IssuedAt  sql.NullTime
	SortOrder int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateCertification inserts a new certification and returns it.
func (q *Queries) CreateCertification(ctx context.Context, arg CreateCertificationParams) (Certification, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO certifications (title, lang, image_path, issued_at, sort_order,
		    created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Lang, arg.ImagePath, arg.IssuedAt, arg.SortOrder,
		arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Certification{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Certification{}, err
	}
	return q.GetCertificationByID(ctx, id)
}

// GetCertificationByID returns a certification by primary key.
func (q *Queries) GetCertificationByID(ctx context.Context, id int64) (Certification, error) {
	return scanCertification(q.db.QueryRowContext(ctx,
		`SELECT `+certificationColumns+` FROM certifications WHERE id = ?`, id))
}

// UpdateCertificationParams holds the fields for UpdateCertification.
type UpdateCertificationParams struct {
	Title     string
	Lang      string
	ImagePath string
	IssuedAt  sql.NullTime
	SortOrder int64
	UpdatedAt time.Time
	ID        int64
}

// UpdateCertification rewrites a certification row.
func (q *Queries) UpdateCertification(ctx context.Context, arg UpdateCertificationParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE certifications SET title = ?, lang = ?, image_path = ?, issued_at = ?,
		    sort_order = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Title, arg.Lang, arg.ImagePath, arg.IssuedAt, arg.SortOrder,
		arg.UpdatedAt, arg.ID)
	return err
}

// DeleteCertification removes a certification row.
func (q *Queries) DeleteCertification(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM certifications WHERE id = ?`, id)
	return err
}

// ListCertifications returns certifications for a language (all when empty),
// ordered by explicit sort key then recency.
func (q *Queries) ListCertifications(ctx context.Context, lang string, limit, offset int64) ([]Certification, error) {
	where := ""
	args := []any{}
	if lang != "" {
		where = " WHERE lang = ?"
		args = append(args, lang)
	}
	args = append(args, limit, offset)
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+certificationColumns+` FROM certifications`+where+
			` ORDER BY sort_order ASC, created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var certs []Certification
	for rows.Next() {
		var c Certification
		if err := rows.Scan(&c.ID, &c.Title, &c.Lang, &c.ImagePath, &c.IssuedAt,
			&c.SortOrder, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}

// CountCertifications returns the number of certifications for a language.
func (q *Queries) CountCertifications(ctx context.Context, lang string) (int64, error) {
	where := ""
	args := []any{}
	if lang != "" {
		where = " WHERE lang = ?"
		args = append(args, lang)
	}
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM certifications`+where, args...).Scan(&n)
	return n, err
}
