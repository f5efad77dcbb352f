// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content implements the post and category operations behind the
// HTTP API. Reads are open to everyone; every mutation takes the caller
// explicitly and is refused with access.ErrUnauthorized unless the caller
// is authenticated.
package content

import (
	"context"
	"time"

	"github.com/google/uuid"

	"khabarcms/internal/models"
	"khabarcms/internal/query"
)

// PostRepository persists posts. Implemented by store.PostStore and
// memstore.PostStore.
type PostRepository interface {
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	List(ctx context.Context, filter query.PostFilter) ([]models.Post, error)
	Update(ctx context.Context, id uuid.UUID, patch *models.PostPatch) (*models.Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListCache caches post listings by filter key. Implementations must treat
// their own failures as misses.
//
// Clear advances the generation. Set stores a listing only while the
// generation still equals gen, so a listing read before a write cannot be
// cached after it.
type ListCache interface {
	Generation(ctx context.Context) (gen uint64, ok bool)
	Get(ctx context.Context, key string) ([]models.Post, bool)
	Set(ctx context.Context, key string, gen uint64, posts []models.Post)
	Clear(ctx context.Context)
}

// Service coordinates the repositories, the list cache and access checks.
type Service struct {
	posts      PostRepository
	categories CategoryRepository
	cache      ListCache
	now        func() time.Time
}

// NewService creates a Service. cache may be nil.
func NewService(posts PostRepository, categories CategoryRepository, cache ListCache) *Service {
	if cache == nil {
		cache = nopCache{}
	}
	return &Service{
		posts:      posts,
		categories: categories,
		cache:      cache,
		now:        time.Now,
	}
}

type nopCache struct{}

func (nopCache) Generation(context.Context) (uint64, bool)          { return 0, false }
func (nopCache) Get(context.Context, string) ([]models.Post, bool)  { return nil, false }
func (nopCache) Set(context.Context, string, uint64, []models.Post) {}
func (nopCache) Clear(context.Context)                              {}
