// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the day format stored in Post.Date (en-GB, e.g. 17/10/2026).
const DateLayout = "02/01/2006"

// Post is a content item: an article, a photo set, or an audio/video entry.
// Category is a free-text label matched case-insensitively against
// categories at query time; it is not a foreign key.
type Post struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Category     string    `json:"category"`
	ImageURL     ImageURL  `json:"imageUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	IsPinned     bool      `json:"isPinned"`
	IsHidden     bool      `json:"isHidden"`
	Date         string    `json:"date"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DateOf formats t as a Post.Date value.
func DateOf(t time.Time) string {
	return t.Format(DateLayout)
}

// PostPatch holds the fields an update changes. Nil fields are left as they are.
type PostPatch struct {
	Title        *string
	Content      *string
	Category     *string
	IsPinned     *bool
	IsHidden     *bool
	Date         *string
	ImageURL     *ImageURL
	ThumbnailURL *string
}

// Empty reports whether the patch changes nothing.
func (p *PostPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Category == nil &&
		p.IsPinned == nil && p.IsHidden == nil && p.Date == nil &&
		p.ImageURL == nil && p.ThumbnailURL == nil
}

// Apply copies the set fields of the patch onto post.
func (p *PostPatch) Apply(post *Post) {
	if p.Title != nil {
		post.Title = *p.Title
	}
	if p.Content != nil {
		post.Content = *p.Content
	}
	if p.Category != nil {
		post.Category = *p.Category
	}
	if p.IsPinned != nil {
		post.IsPinned = *p.IsPinned
	}
	if p.IsHidden != nil {
		post.IsHidden = *p.IsHidden
	}
	if p.Date != nil {
		post.Date = *p.Date
	}
	if p.ImageURL != nil {
		post.ImageURL = *p.ImageURL
	}
	if p.ThumbnailURL != nil {
		post.ThumbnailURL = *p.ThumbnailURL
	}
}
