// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"khabarcms/internal/access"
	"khabarcms/internal/attachment"
	"khabarcms/internal/models"
	"khabarcms/internal/query"
)

// PostInput carries the fields of a new post. IsPinned accepts a bool or a
// string; only true and "true" pin the post.
type PostInput struct {
	Title    string `json:"title" validate:"required,max=300"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category" validate:"required,max=100"`
	IsPinned any    `json:"isPinned"`
	Date     string `json:"date"`
}

// normalized returns a copy with the text fields trimmed.
// Title and content are checked trimmed but stored as sent; category and
// date are stored trimmed.
func (in PostInput) normalized() PostInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.Category = strings.TrimSpace(in.Category)
	in.Date = strings.TrimSpace(in.Date)
	return in
}

// PostUpdate carries the fields an update changes. Nil fields are left
// untouched. IsPinned and IsHidden are coerced like PostInput.IsPinned.
// ImageURL and ThumbnailURL set media directly; an empty value clears it.
type PostUpdate struct {
	Title        *string          `json:"title"`
	Content      *string          `json:"content"`
	Category     *string          `json:"category"`
	Date         *string          `json:"date"`
	IsPinned     any              `json:"isPinned"`
	IsHidden     any              `json:"isHidden"`
	ImageURL     *models.ImageURL `json:"imageUrl"`
	ThumbnailURL *string          `json:"thumbnailUrl"`
}

// ValidatePost checks the required fields of in without touching storage.
// Handlers call it before accepting uploads.
func ValidatePost(in PostInput) error {
	return check(in.normalized())
}

// ValidateUpdate checks u without touching storage. Handlers call it before
// accepting uploads.
func ValidateUpdate(u PostUpdate) error {
	_, err := u.patch()
	return err
}

// patch converts u into a store patch, rejecting blank required fields.
func (u PostUpdate) patch() (*models.PostPatch, error) {
	p := &models.PostPatch{}

	required := []struct {
		field string
		src   *string
		dst   **string
	}{
		{"title", u.Title, &p.Title},
		{"content", u.Content, &p.Content},
		{"category", u.Category, &p.Category},
	}
	for _, r := range required {
		if r.src == nil {
			continue
		}
		v := strings.TrimSpace(*r.src)
		if v == "" {
			return nil, &ValidationError{Field: r.field, Message: "cannot be empty"}
		}
		if n := maxLen[r.field]; n > 0 && len([]rune(v)) > n {
			return nil, tooLong(r.field, n)
		}
		if r.field == "category" {
			*r.dst = &v
		} else {
			s := *r.src
			*r.dst = &s
		}
	}

	if u.Date != nil {
		d := strings.TrimSpace(*u.Date)
		p.Date = &d
	}
	if u.IsPinned != nil {
		b := coerceBool(u.IsPinned)
		p.IsPinned = &b
	}
	if u.IsHidden != nil {
		b := coerceBool(u.IsHidden)
		p.IsHidden = &b
	}
	if u.ImageURL != nil {
		img := *u.ImageURL
		p.ImageURL = &img
	}
	if u.ThumbnailURL != nil {
		t := strings.TrimSpace(*u.ThumbnailURL)
		p.ThumbnailURL = &t
	}
	return p, nil
}

// CreatePost validates in, applies the resolved attachments and stores the
// post. The date defaults to the current day.
func (s *Service) CreatePost(ctx context.Context, caller access.Caller, in PostInput, media attachment.Result) (*models.Post, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}

	n := in.normalized()
	if err := check(n); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:    in.Title,
		Content:  in.Content,
		Category: n.Category,
		IsPinned: coerceBool(in.IsPinned),
		Date:     n.Date,
	}
	if post.Date == "" {
		post.Date = models.DateOf(s.now())
	}
	if media.ImageURL != nil {
		post.ImageURL = *media.ImageURL
	}
	if media.ThumbnailURL != nil {
		post.ThumbnailURL = *media.ThumbnailURL
	}

	created, err := s.posts.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.cache.Clear(ctx)

	slog.Info("post created", "id", created.ID, "category", created.Category, "by", caller.Name)
	return created, nil
}

// UpdatePost applies in and any newly resolved attachments to the post with
// id. Uploads override media sent in the body. A thumbnail-only upload
// leaves the image untouched.
func (s *Service) UpdatePost(ctx context.Context, caller access.Caller, id uuid.UUID, in PostUpdate, media attachment.Result) (*models.Post, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}

	patch, err := in.patch()
	if err != nil {
		return nil, err
	}
	media.ApplyTo(patch)

	updated, err := s.posts.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	s.cache.Clear(ctx)

	slog.Info("post updated", "id", id, "by", caller.Name)
	return updated, nil
}

// DeletePost removes the post with id. Deleting a missing post succeeds.
func (s *Service) DeletePost(ctx context.Context, caller access.Caller, id uuid.UUID) error {
	if err := caller.Require(); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	s.cache.Clear(ctx)

	slog.Info("post deleted", "id", id, "by", caller.Name)
	return nil
}

// ListPosts returns the posts matching filter, pinned first then newest.
// The cache generation is read before the store so a write that lands in
// between keeps the listing out of the cache.
func (s *Service) ListPosts(ctx context.Context, filter query.PostFilter) ([]models.Post, error) {
	key := filter.Key()
	gen, cacheable := s.cache.Generation(ctx)
	if cacheable {
		if posts, ok := s.cache.Get(ctx, key); ok {
			return posts, nil
		}
	}

	posts, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if cacheable {
		s.cache.Set(ctx, key, gen, posts)
	}
	return posts, nil
}

// GetPost returns the post with id or ErrNotFound.
func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if post == nil {
		return nil, ErrNotFound
	}
	return post, nil
}
