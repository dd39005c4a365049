// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const recruitColumns = `id, title, body, lang, position_type, is_active, author_id,
	created_at, updated_at`

func scanRecruitPost(row *sql.Row) (RecruitPost, error) {
	var p RecruitPost
	err := row.Scan(&p.ID, &p.Title, &p.Body, &p.Lang, &p.PositionType, &p.IsActive,
		&p.AuthorID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreateRecruitPostParams holds the fields for CreateRecruitPost.
type CreateRecruitPostParams struct {
	Title        string
	Body         string
	Lang         string
	PositionType string
	AuthorID     int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateRecruitPost inserts a new job opening (active by default) and returns it.
func (q *Queries) CreateRecruitPost(ctx context.Context, arg CreateRecruitPostParams) (RecruitPost, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO recruit_posts (title, body, lang, position_type, is_active, author_id,
		    created_at, updated_at)
		 VALUES (?, ?, ?, ?, 1, ?, ?, ?)`,
		arg.Title, arg.Body, arg.Lang, arg.PositionType, arg.AuthorID,
		arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return RecruitPost{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return RecruitPost{}, err
	}
	return q.GetRecruitPostByID(ctx, id)
}

// GetRecruitPostByID returns a job opening by primary key, active or not.
func (q *Queries) GetRecruitPostByID(ctx context.Context, id int64) (RecruitPost, error) {
	return scanRecruitPost(q.db.QueryRowContext(ctx,
		`SELECT `+recruitColumns+` FROM recruit_posts WHERE id = ?`, id))
}

// UpdateRecruitPostParams holds the fields for UpdateRecruitPost.
type UpdateRecruitPostParams struct {
	Title        string
	Body         string
	Lang         string
	PositionType string
	IsActive     bool
	UpdatedAt    time.Time
	ID           int64
}

// UpdateRecruitPost rewrites a job opening row.
func (q *Queries) UpdateRecruitPost(ctx context.Context, arg UpdateRecruitPostParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE recruit_posts SET title = ?, body = ?, lang = ?, position_type = ?,
		    is_active = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Title, arg.Body, arg.Lang, arg.PositionType, arg.IsActive,
		arg.UpdatedAt, arg.ID)
	return err
}

// DeactivateRecruitPost retires a job opening. The row is kept so past
// postings stay referencable.
func (q *Queries) DeactivateRecruitPost(ctx context.Context, id int64, now time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE recruit_posts SET is_active = 0, updated_at = ? WHERE id = ?`, now, id)
	return err
}

// RecruitFilter holds the list filters for job openings.
type RecruitFilter struct {
	Lang         string
	PositionType string
	ActiveOnly   bool
	Limit        int64
	Offset       int64
}

func (f RecruitFilter) where() (string, []any) {
	clause := ""
	var args []any
	add := func(cond string, a ...any) {
		if clause == "" {
			clause = " WHERE " + cond
		} else {
			clause += " AND " + cond
		}
		args = append(args, a...)
	}
	if f.Lang != "" {
		add("lang = ?", f.Lang)
	}
	if f.PositionType != "" {
		add("position_type = ?", f.PositionType)
	}
	if f.ActiveOnly {
		add("is_active = 1")
	}
	return clause, args
}

// ListRecruitPosts returns job openings matching the filter, newest first.
func (q *Queries) ListRecruitPosts(ctx context.Context, f RecruitFilter) ([]RecruitPost, error) {
	where, args := f.where()
	args = append(args, f.Limit, f.Offset)
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+recruitColumns+` FROM recruit_posts`+where+
			` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []RecruitPost
	for rows.Next() {
		var p RecruitPost
		if err := rows.Scan(&p.ID, &p.Title, &p.Body, &p.Lang, &p.PositionType,
			&p.IsActive, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CountRecruitPosts returns the number of job openings matching the filter.
func (q *Queries) CountRecruitPosts(ctx context.Context, f RecruitFilter) (int64, error) {
	where, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recruit_posts`+where, args...).Scan(&n)
	return n, err
}
