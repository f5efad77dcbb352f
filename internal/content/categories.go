// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"khabarcms/internal/access"
	"khabarcms/internal/models"
	"khabarcms/internal/slug"
	"khabarcms/internal/store"
)

// CategoryInput carries the names of a new category.
type CategoryInput struct {
	NameEn string `json:"nameEn" validate:"required,max=100"`
	NameUr string `json:"nameUr" validate:"required,max=100"`
}

// ListCategories returns every category.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	items, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return items, nil
}

// AddCategory normalizes the English name to a slug, trims the Urdu name and
// stores the category. A taken slug yields ErrConflict.
func (s *Service) AddCategory(ctx context.Context, caller access.Caller, in CategoryInput) (*models.Category, error) {
	if err := caller.Require(); err != nil {
		return nil, err
	}

	n := CategoryInput{
		NameEn: slug.Category(in.NameEn),
		NameUr: strings.TrimSpace(in.NameUr),
	}
	if err := check(n); err != nil {
		return nil, err
	}

	created, err := s.categories.Create(ctx, &models.Category{NameEn: n.NameEn, NameUr: n.NameUr})
	if errors.Is(err, store.ErrDuplicate) {
		return nil, fmt.Errorf("category %q: %w", n.NameEn, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("add category: %w", err)
	}

	slog.Info("category added", "name", created.NameEn, "by", caller.Name)
	return created, nil
}

// DeleteCategory removes the category with id. Posts filed under it keep
// their category text.
func (s *Service) DeleteCategory(ctx context.Context, caller access.Caller, id uuid.UUID) error {
	if err := caller.Require(); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	slog.Info("category deleted", "id", id, "by", caller.Name)
	return nil
}
