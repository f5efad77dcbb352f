// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"khabarcms/internal/models"
	"khabarcms/internal/query"
)

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// postColumnList lists the columns selected in post queries.
var postColumnList = []string{
	"id", "title", "content", "category", "image_url", "thumbnail_url",
	"is_pinned", "is_hidden", "date", "created_at", "updated_at",
}

var postColumns = strings.Join(postColumnList, ", ")

// scanPost scans a post row from the result set.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Title, &p.Content, &p.Category, &p.ImageURL, &p.ThumbnailURL,
		&p.IsPinned, &p.IsHidden, &p.Date, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new post and returns it with the generated ID and timestamps.
func (s *PostStore) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (title, content, category, image_url, thumbnail_url,
		                   is_pinned, is_hidden, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+postColumns,
		p.Title, p.Content, p.Category, p.ImageURL, p.ThumbnailURL,
		p.IsPinned, p.IsHidden, p.Date,
	)
	created, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// List returns the posts matching filter, pinned first and newest first.
func (s *PostStore) List(ctx context.Context, filter query.PostFilter) ([]models.Post, error) {
	q, args := filter.Select("posts", postColumnList...)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	items := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// Update applies the set fields of patch to the post and returns the post as
// stored afterwards. Returns nil if the post does not exist.
func (s *PostStore) Update(ctx context.Context, id uuid.UUID, patch *models.PostPatch) (*models.Post, error) {
	if patch.Empty() {
		return s.FindByID(ctx, id)
	}

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("posts")

	var set []string
	if patch.Title != nil {
		set = append(set, ub.Assign("title", *patch.Title))
	}
	if patch.Content != nil {
		set = append(set, ub.Assign("content", *patch.Content))
	}
	if patch.Category != nil {
		set = append(set, ub.Assign("category", *patch.Category))
	}
	if patch.ImageURL != nil {
		set = append(set, ub.Assign("image_url", *patch.ImageURL))
	}
	if patch.ThumbnailURL != nil {
		set = append(set, ub.Assign("thumbnail_url", *patch.ThumbnailURL))
	}
	if patch.IsPinned != nil {
		set = append(set, ub.Assign("is_pinned", *patch.IsPinned))
	}
	if patch.IsHidden != nil {
		set = append(set, ub.Assign("is_hidden", *patch.IsHidden))
	}
	if patch.Date != nil {
		set = append(set, ub.Assign("date", *patch.Date))
	}
	set = append(set, "updated_at = NOW()")

	ub.Set(set...)
	ub.Where(ub.Equal("id", id))
	q, args := ub.Build()

	p, err := scanPost(s.db.QueryRowContext(ctx, q+" RETURNING "+postColumns, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

// Delete removes a post by ID. Deleting a missing ID is not an error.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
