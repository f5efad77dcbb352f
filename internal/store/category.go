// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"khabarcms/internal/models"
)

var categoryColumnList = []string{"id", "name_en", "name_ur", "created_at", "updated_at"}

var categoryColumns = strings.Join(categoryColumnList, ", ")

// CategoryStore keeps categories in PostgreSQL. name_en is unique.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a CategoryStore on db.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func categoryDest(c *models.Category) []any {
	return []any{&c.ID, &c.NameEn, &c.NameUr, &c.CreatedAt, &c.UpdatedAt}
}

// List returns every category, oldest first.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(categoryColumnList...).From("categories").OrderBy("created_at", "id").Asc()
	q, args := sb.Build()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(categoryDest(&c)...); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Create inserts c and returns the stored row. A taken name_en yields
// ErrDuplicate.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("categories").Cols("name_en", "name_ur").Values(c.NameEn, c.NameUr)
	q, args := ib.Build()

	var created models.Category
	err := s.db.QueryRowContext(ctx, q+" RETURNING "+categoryColumns, args...).Scan(categoryDest(&created)...)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("create category %q: %w", c.NameEn, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &created, nil
}

// Delete removes the category with id. A missing id is not an error.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	del := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	del.DeleteFrom("categories").Where(del.Equal("id", id))
	q, args := del.Build()

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
