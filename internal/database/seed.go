// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// DefaultCategories are created on first start so the operator console has
// something to file posts under.
var DefaultCategories = []struct{ NameEn, NameUr string }{
	{"articles", "مضامین"},
	{"photos", "تصاویر"},
	{"audio", "آڈیو"},
	{"video", "ویڈیو"},
}

// Seed populates an empty categories table with DefaultCategories.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	for _, c := range DefaultCategories {
		_, err := db.ExecContext(ctx, `
			INSERT INTO categories (name_en, name_ur)
			VALUES ($1, $2)
			ON CONFLICT (name_en) DO NOTHING
		`, c.NameEn, c.NameUr)
		if err != nil {
			return fmt.Errorf("seed insert category %s: %w", c.NameEn, err)
		}
	}

	slog.Info("database seeded with default categories", "count", len(DefaultCategories))
	return nil
}
