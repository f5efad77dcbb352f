package store

import (
	"context"
	"database/sql"
	"testing"

	"khabarcms/internal/database"
	"khabarcms/internal/database/dbtest"
)

// testDB returns a migrated database, or skips when PostgreSQL is down.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db := dbtest.Open(t)
	if err := database.Migrate(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// cleanPosts deletes posts filed under the given categories.
func cleanPosts(t *testing.T, db *sql.DB, categories ...string) {
	t.Helper()
	for _, c := range categories {
		if _, err := db.ExecContext(context.Background(), "DELETE FROM posts WHERE LOWER(category) = LOWER($1)", c); err != nil {
			t.Logf("clean posts %q: %v", c, err)
		}
	}
}

// cleanCategories deletes categories by slug.
func cleanCategories(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, n := range names {
		if _, err := db.ExecContext(context.Background(), "DELETE FROM categories WHERE name_en = $1", n); err != nil {
			t.Logf("clean category %q: %v", n, err)
		}
	}
}
