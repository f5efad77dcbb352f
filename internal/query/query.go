// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package query translates a post list request (category filter and free-text
// search) into a filter with two renderings: a SQL SELECT for the Postgres
// store and an in-process predicate for the memory store. Both share the same
// fixed ordering: pinned posts first, newest first within each group.
package query

import (
	"sort"
	"strings"

	"github.com/huandu/go-sqlbuilder"

	"khabarcms/internal/models"
)

// AllCategories is the category filter value meaning "no filter".
const AllCategories = "all"

// orderBy is the absolute list ordering. Callers cannot override it.
var orderBy = []string{"is_pinned DESC", "created_at DESC"}

// likeEscaper escapes LIKE metacharacters so search text matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostFilter is a normalized list request.
type PostFilter struct {
	// Category matches Post.Category exactly, ignoring case. Empty means any.
	Category string
	// Search matches a substring of title, content or category, ignoring
	// case. Empty means no search.
	Search string
}

// NewPostFilter builds a filter from the raw "type" and "search" request
// parameters. A type of "all" or "" disables the category filter.
func NewPostFilter(typ, search string) PostFilter {
	f := PostFilter{Search: search}
	if typ != "" && typ != AllCategories {
		f.Category = typ
	}
	return f
}

// IsZero reports whether the filter matches every post.
func (f PostFilter) IsZero() bool {
	return f.Category == "" && f.Search == ""
}

// Key returns a stable identifier for the filter, used as a cache key.
// Filters that match the same posts share a key.
func (f PostFilter) Key() string {
	return "type=" + strings.ToLower(f.Category) + "&search=" + strings.ToLower(f.Search)
}

// Match reports whether post satisfies the filter.
func (f PostFilter) Match(post *models.Post) bool {
	if f.Category != "" && strings.ToLower(post.Category) != strings.ToLower(f.Category) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(post.Title), needle) &&
			!strings.Contains(strings.ToLower(post.Content), needle) &&
			!strings.Contains(strings.ToLower(post.Category), needle) {
			return false
		}
	}
	return true
}

// Select builds the Postgres query listing posts that match the filter,
// returning the SQL text and its positional arguments.
func (f PostFilter) Select(table string, columns ...string) (string, []any) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...).From(table)

	if f.Category != "" {
		sb.Where(sb.Equal("LOWER(category)", strings.ToLower(f.Category)))
	}
	if f.Search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(f.Search)) + "%"
		sb.Where(sb.Or(
			sb.Like("LOWER(title)", pattern),
			sb.Like("LOWER(content)", pattern),
			sb.Like("LOWER(category)", pattern),
		))
	}

	sb.OrderBy(orderBy...)
	return sb.Build()
}

// Less reports whether a sorts before b: pinned before unpinned, then the
// most recently created first.
func Less(a, b *models.Post) bool {
	if a.IsPinned != b.IsPinned {
		return a.IsPinned
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// Sort orders posts in place using Less. Equal posts keep their order.
func Sort(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return Less(&posts[i], &posts[j])
	})
}
