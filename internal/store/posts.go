// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const postColumns = `id, title, slug, body, body_format, lang, category, author_id,
	image_path, sort_order, views, created_at, updated_at`

func scanPost(row *sql.Row) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Body, &p.BodyFormat, &p.Lang, &p.Category,
		&p.AuthorID, &p.ImagePath, &p.SortOrder, &p.Views, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreatePostParams holds the fields for CreatePost.
type CreatePostParams struct {
	Title      string
	Slug       string
	Body       string
	BodyFormat string
	Lang       string
	Category   string
	AuthorID   int64
	ImagePath  string
	SortOrder  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreatePost inserts a new post and returns it.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (Post, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO posts (title, slug, body, body_format, lang, category, author_id,
		    image_path, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Slug, arg.Body, arg.BodyFormat, arg.Lang, arg.Category,
		arg.AuthorID, arg.ImagePath, arg.SortOrder, arg.CreatedAt, arg.UpdatedAt)
	if err != nil {
		return Post{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Post{}, err
	}
	return q.GetPostByID(ctx, id)
}

// GetPostByID returns a post by primary key.
func (q *Queries) GetPostByID(ctx context.Context, id int64) (Post, error) {
	return scanPost(q.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
}

// UpdatePostParams holds the fields for UpdatePost.
type UpdatePostParams struct {
	Title      string
	Slug       string
	Body       string
	BodyFormat string
	Lang       string
	Category   string
	ImagePath  string
	SortOrder  int64
	UpdatedAt  time.Time
	ID         int64
}

// UpdatePost rewrites a post row.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, slug = ?, body = ?, body_format = ?, lang = ?,
		    category = ?, image_path = ?, sort_order = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Title, arg.Slug, arg.Body, arg.BodyFormat, arg.Lang, arg.Category,
		arg.ImagePath, arg.SortOrder, arg.UpdatedAt, arg.ID)
	return err
}

// DeletePost removes a post row.
func (q *Queries) DeletePost(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	return err
}

// ContentFilter holds the shared list filters for content resources:
// language, category, and a title substring search.
type ContentFilter struct {
	Lang     string
	Category string
	Search   string
	Limit    int64
	Offset   int64
}

// where builds the WHERE clause for a ContentFilter against the given
// title column name.
func (f ContentFilter) where(titleCol string) (string, []any) {
	clause := ""
	var args []any
	add := func(cond string, arg any) {
		if clause == "" {
			clause = " WHERE " + cond
		} else {
			clause += " AND " + cond
		}
		args = append(args, arg)
	}
	if f.Lang != "" {
		add("lang = ?", f.Lang)
	}
	if f.Category != "" {
		add("category = ?", f.Category)
	}
	if f.Search != "" {
		add(titleCol+" LIKE ?", "%"+f.Search+"%")
	}
	return clause, args
}

// ListPosts returns posts matching the filter, ordered by explicit sort key
// then recency.
func (q *Queries) ListPosts(ctx context.Context, f ContentFilter) ([]Post, error) {
	where, args := f.where("title")
	args = append(args, f.Limit, f.Offset)
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts`+where+
			` ORDER BY sort_order ASC, created_at DESC, id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Body, &p.BodyFormat, &p.Lang,
			&p.Category, &p.AuthorID, &p.ImagePath, &p.SortOrder, &p.Views,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CountPosts returns the number of posts matching the filter.
func (q *Queries) CountPosts(ctx context.Context, f ContentFilter) (int64, error) {
	where, args := f.where("title")
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+where, args...).Scan(&n)
	return n, err
}

// IncrementPostViews bumps a post's view counter.
func (q *Queries) IncrementPostViews(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE posts SET views = views + 1 WHERE id = ?`, id)
	return err
}
