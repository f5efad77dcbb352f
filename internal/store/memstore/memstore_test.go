package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"khabarcms/internal/models"
	"khabarcms/internal/query"
	"khabarcms/internal/store"
)

func TestPostStoreLifecycle(t *testing.T) {
	s := NewPostStore()
	ctx := context.Background()

	created, err := s.Create(ctx, &models.Post{Title: "a", Content: "b", Category: "news"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == uuid.Nil || created.CreatedAt.IsZero() {
		t.Fatalf("expected ID and timestamps, got %+v", created)
	}

	title := "changed"
	updated, err := s.Update(ctx, created.ID, &models.PostPatch{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "changed" || updated.Content != "b" {
		t.Errorf("patch not applied: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("updatedAt should advance")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("createdAt must not change")
	}

	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if p, _ := s.FindByID(ctx, created.ID); p != nil {
		t.Error("post still present")
	}
	if p, _ := s.Update(ctx, created.ID, &models.PostPatch{Title: &title}); p != nil {
		t.Error("update of a deleted post should return nil")
	}
}

func TestPostStoreListOrdering(t *testing.T) {
	s := NewPostStore()
	ctx := context.Background()

	for _, p := range []models.Post{
		{Title: "one", Category: "Photos"},
		{Title: "two", Category: "photos", IsPinned: true},
		{Title: "three", Category: "video"},
		{Title: "four", Category: "photos"},
	} {
		p := p
		if _, err := s.Create(ctx, &p); err != nil {
			t.Fatal(err)
		}
	}

	items, _ := s.List(ctx, query.PostFilter{})
	want := []string{"two", "four", "three", "one"}
	for i, p := range items {
		if p.Title != want[i] {
			t.Errorf("position %d: got %q, want %q", i, p.Title, want[i])
		}
	}

	photos, _ := s.List(ctx, query.NewPostFilter("PHOTOS", ""))
	if len(photos) != 3 {
		t.Errorf("photos: got %d, want 3", len(photos))
	}
}

func TestPostStoreReturnsCopies(t *testing.T) {
	s := NewPostStore()
	ctx := context.Background()

	created, _ := s.Create(ctx, &models.Post{Title: "orig"})
	created.Title = "mutated"

	found, _ := s.FindByID(ctx, created.ID)
	if found.Title != "orig" {
		t.Errorf("store aliased caller's value: %q", found.Title)
	}
}

func TestCategoryStore(t *testing.T) {
	s := NewCategoryStore()
	ctx := context.Background()

	a, err := s.Create(ctx, &models.Category{NameEn: "articles", NameUr: "مضامین"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(ctx, &models.Category{NameEn: "photos", NameUr: "تصاویر"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = s.Create(ctx, &models.Category{NameEn: "articles", NameUr: "x"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	items, _ := s.List(ctx)
	if len(items) != 2 || items[0].NameEn != "articles" || items[1].NameEn != "photos" {
		t.Errorf("list: got %+v", items)
	}

	if err := s.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if items, _ := s.List(ctx); len(items) != 1 || items[0].NameEn != "photos" {
		t.Errorf("after delete: got %+v", items)
	}
}
