// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package memstore provides in-memory post and category stores with the
// same behaviour as the PostgreSQL stores. It backs the server when
// STORE_DRIVER=memory and the service tests.
package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"khabarcms/internal/models"
	"khabarcms/internal/query"
	"khabarcms/internal/store"
)

// clock hands out strictly increasing timestamps so that creation order is
// always recoverable from CreatedAt.
type clock struct {
	mu   sync.Mutex
	last time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := time.Now().UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

// PostStore keeps posts in memory.
type PostStore struct {
	mu    sync.RWMutex
	clock clock
	order []uuid.UUID
	posts map[uuid.UUID]models.Post
}

// NewPostStore returns an empty PostStore.
func NewPostStore() *PostStore {
	return &PostStore{posts: make(map[uuid.UUID]models.Post)}
}

// Create stores a copy of p with a fresh ID and timestamps.
func (s *PostStore) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := *p
	created.ID = uuid.New()
	created.CreatedAt = s.clock.now()
	created.UpdatedAt = created.CreatedAt

	s.posts[created.ID] = created
	s.order = append(s.order, created.ID)
	return &created, nil
}

// FindByID returns the post with id, or nil if there is none.
func (s *PostStore) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// List returns the posts matching filter, pinned first and newest first.
func (s *PostStore) List(_ context.Context, filter query.PostFilter) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []models.Post{}
	for _, id := range s.order {
		p := s.posts[id]
		if filter.Match(&p) {
			items = append(items, p)
		}
	}
	query.Sort(items)
	return items, nil
}

// Update applies patch to the post with id. Returns nil if there is none.
func (s *PostStore) Update(_ context.Context, id uuid.UUID, patch *models.PostPatch) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	if patch.Empty() {
		return &p, nil
	}
	patch.Apply(&p)
	p.UpdatedAt = s.clock.now()
	s.posts[id] = p
	return &p, nil
}

// Delete removes the post with id. A missing id is not an error.
func (s *PostStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return nil
	}
	delete(s.posts, id)
	s.order = remove(s.order, id)
	return nil
}

// CategoryStore keeps categories in memory.
type CategoryStore struct {
	mu         sync.RWMutex
	clock      clock
	order      []uuid.UUID
	categories map[uuid.UUID]models.Category
}

// NewCategoryStore returns an empty CategoryStore.
func NewCategoryStore() *CategoryStore {
	return &CategoryStore{categories: make(map[uuid.UUID]models.Category)}
}

// List returns all categories in creation order.
func (s *CategoryStore) List(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.Category, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, s.categories[id])
	}
	return items, nil
}

// Create stores c. Returns store.ErrDuplicate if NameEn is already taken.
func (s *CategoryStore) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.NameEn == c.NameEn {
			return nil, fmt.Errorf("create category %q: %w", c.NameEn, store.ErrDuplicate)
		}
	}

	created := *c
	created.ID = uuid.New()
	created.NameUr = strings.TrimSpace(created.NameUr)
	created.CreatedAt = s.clock.now()
	created.UpdatedAt = created.CreatedAt

	s.categories[created.ID] = created
	s.order = append(s.order, created.ID)
	return &created, nil
}

// Delete removes the category with id. A missing id is not an error.
func (s *CategoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return nil
	}
	delete(s.categories, id)
	s.order = remove(s.order, id)
	return nil
}

func remove(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
