package content

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"khabarcms/internal/access"
	"khabarcms/internal/attachment"
	"khabarcms/internal/models"
	"khabarcms/internal/query"
	"khabarcms/internal/store/memstore"
)

var operator = access.Operator("admin")

// recordingCache is a ListCache that counts calls.
type recordingCache struct {
	entries map[string][]models.Post
	gen     uint64
	gets    int
	hits    int
	clears  int
	skipped int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: map[string][]models.Post{}}
}

func (c *recordingCache) Generation(context.Context) (uint64, bool) {
	return c.gen, true
}

func (c *recordingCache) Get(_ context.Context, key string) ([]models.Post, bool) {
	c.gets++
	p, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return p, ok
}

func (c *recordingCache) Set(_ context.Context, key string, gen uint64, posts []models.Post) {
	if gen != c.gen {
		c.skipped++
		return
	}
	c.entries[key] = posts
}

func (c *recordingCache) Clear(context.Context) {
	c.clears++
	c.gen++
	c.entries = map[string][]models.Post{}
}

// interleavedPosts runs after once, right after the first List has read the
// store and before its result reaches the cache.
type interleavedPosts struct {
	PostRepository
	after func()
}

func (r *interleavedPosts) List(ctx context.Context, filter query.PostFilter) ([]models.Post, error) {
	posts, err := r.PostRepository.List(ctx, filter)
	if r.after != nil {
		after := r.after
		r.after = nil
		after()
	}
	return posts, err
}

func newTestService(t *testing.T) (*Service, *recordingCache) {
	t.Helper()
	cache := newRecordingCache()
	svc := NewService(memstore.NewPostStore(), memstore.NewCategoryStore(), cache)
	svc.now = func() time.Time { return time.Date(2026, time.October, 17, 9, 0, 0, 0, time.UTC) }
	return svc, cache
}

func strPtr(s string) *string { return &s }

func resolved(set attachment.Set) attachment.Result {
	return attachment.NewResolver(func(key string) string { return "/assets/uploads/" + key }).Resolve(set)
}

func TestCreatePostDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, operator, PostInput{
		Title: "Hello", Content: "World", Category: "  news  ",
	}, attachment.Result{})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.Category != "news" {
		t.Errorf("category: got %q, want trimmed", post.Category)
	}
	if post.Date != "17/10/2026" {
		t.Errorf("date: got %q", post.Date)
	}
	if post.IsPinned || post.IsHidden {
		t.Errorf("flags should default false: %+v", post)
	}
	if !post.ImageURL.IsZero() || post.ThumbnailURL != "" {
		t.Errorf("no media expected: %+v", post)
	}
}

func TestCreatePostPinnedCoercion(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{true, true},
		{"true", true},
		{false, false},
		{"false", false},
		{"TRUE", false},
		{"1", false},
		{1, false},
		{nil, false},
	}
	for _, tt := range tests {
		svc, _ := newTestService(t)
		post, err := svc.CreatePost(context.Background(), operator, PostInput{
			Title: "t", Content: "c", Category: "x", IsPinned: tt.in,
		}, attachment.Result{})
		if err != nil {
			t.Fatalf("CreatePost(%v): %v", tt.in, err)
		}
		if post.IsPinned != tt.want {
			t.Errorf("isPinned %#v: got %v, want %v", tt.in, post.IsPinned, tt.want)
		}
	}
}

func TestCreatePostValidation(t *testing.T) {
	svc, _ := newTestService(t)
	tests := []struct {
		name  string
		in    PostInput
		field string
	}{
		{"missing title", PostInput{Content: "c", Category: "x"}, "title"},
		{"blank content", PostInput{Title: "t", Content: "   ", Category: "x"}, "content"},
		{"missing category", PostInput{Title: "t", Content: "c"}, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(context.Background(), operator, tt.in, attachment.Result{})
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field: got %q, want %q", ve.Field, tt.field)
			}
		})
	}

	posts, _ := svc.ListPosts(context.Background(), query.PostFilter{})
	if len(posts) != 0 {
		t.Errorf("invalid input must not persist, got %d posts", len(posts))
	}
}

func TestMutationsRequireAuthentication(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	anon := access.Anonymous()

	if _, err := svc.CreatePost(ctx, anon, PostInput{Title: "t", Content: "c", Category: "x"}, attachment.Result{}); !errors.Is(err, access.ErrUnauthorized) {
		t.Errorf("CreatePost: got %v", err)
	}
	if _, err := svc.UpdatePost(ctx, anon, uuid.New(), PostUpdate{}, attachment.Result{}); !errors.Is(err, access.ErrUnauthorized) {
		t.Errorf("UpdatePost: got %v", err)
	}
	if err := svc.DeletePost(ctx, anon, uuid.New()); !errors.Is(err, access.ErrUnauthorized) {
		t.Errorf("DeletePost: got %v", err)
	}
	if _, err := svc.AddCategory(ctx, anon, CategoryInput{NameEn: "a", NameUr: "b"}); !errors.Is(err, access.ErrUnauthorized) {
		t.Errorf("AddCategory: got %v", err)
	}
	if err := svc.DeleteCategory(ctx, anon, uuid.New()); !errors.Is(err, access.ErrUnauthorized) {
		t.Errorf("DeleteCategory: got %v", err)
	}

	// Reads stay open.
	if _, err := svc.ListPosts(ctx, query.PostFilter{}); err != nil {
		t.Errorf("ListPosts: %v", err)
	}
	if _, err := svc.ListCategories(ctx); err != nil {
		t.Errorf("ListCategories: %v", err)
	}
}

func TestUpdatePostMediaTransitions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, operator, PostInput{Title: "t", Content: "c", Category: "photos"},
		resolved(attachment.Set{attachment.RoleFile: {{Key: "a.jpg"}}}))
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if post.ImageURL.Kind() != models.ImageSingle {
		t.Fatalf("kind: got %v", post.ImageURL.Kind())
	}

	// Thumbnail only: image untouched.
	post, err = svc.UpdatePost(ctx, operator, post.ID, PostUpdate{},
		resolved(attachment.Set{attachment.RoleThumbnail: {{Key: "t.png"}}}))
	if err != nil {
		t.Fatalf("UpdatePost thumbnail: %v", err)
	}
	if post.ImageURL.Path() != "/assets/uploads/a.jpg" {
		t.Errorf("image changed by thumbnail upload: %v", post.ImageURL.Paths())
	}
	if post.ThumbnailURL != "/assets/uploads/t.png" {
		t.Errorf("thumbnail: got %q", post.ThumbnailURL)
	}

	// Gallery replaces the single image.
	post, err = svc.UpdatePost(ctx, operator, post.ID, PostUpdate{},
		resolved(attachment.Set{attachment.RoleGallery: {{Key: "g1.jpg"}, {Key: "g2.jpg"}}}))
	if err != nil {
		t.Fatalf("UpdatePost gallery: %v", err)
	}
	if post.ImageURL.Kind() != models.ImageGallery || len(post.ImageURL.Paths()) != 2 {
		t.Errorf("expected 2-image gallery, got %v", post.ImageURL.Paths())
	}

	// And a single file switches back to scalar form.
	post, err = svc.UpdatePost(ctx, operator, post.ID, PostUpdate{},
		resolved(attachment.Set{attachment.RoleFile: {{Key: "b.mp4"}}}))
	if err != nil {
		t.Fatalf("UpdatePost file: %v", err)
	}
	if post.ImageURL.Kind() != models.ImageSingle || post.ImageURL.Path() != "/assets/uploads/b.mp4" {
		t.Errorf("expected single b.mp4, got %v", post.ImageURL.Paths())
	}
	if post.ThumbnailURL != "/assets/uploads/t.png" {
		t.Errorf("thumbnail lost: %q", post.ThumbnailURL)
	}
}

func TestUpdatePostFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	post, _ := svc.CreatePost(ctx, operator, PostInput{Title: "t", Content: "c", Category: "news"}, attachment.Result{})

	updated, err := svc.UpdatePost(ctx, operator, post.ID, PostUpdate{
		Category: strPtr("  sport "),
		IsPinned: "true",
		IsHidden: true,
	}, attachment.Result{})
	if err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if updated.Category != "sport" || !updated.IsPinned || !updated.IsHidden {
		t.Errorf("got %+v", updated)
	}
	if updated.Title != "t" || updated.Content != "c" {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	_, err = svc.UpdatePost(ctx, operator, post.ID, PostUpdate{Title: strPtr("  ")}, attachment.Result{})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "title" {
		t.Errorf("blank title: got %v", err)
	}

	_, err = svc.UpdatePost(ctx, operator, uuid.New(), PostUpdate{Title: strPtr("x")}, attachment.Result{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id: got %v, want ErrNotFound", err)
	}
}

func TestUpdatePostMediaFromInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	post, _ := svc.CreatePost(ctx, operator, PostInput{Title: "t", Content: "c", Category: "photos"},
		resolved(attachment.Set{
			attachment.RoleFile:      {{Key: "a.jpg"}},
			attachment.RoleThumbnail: {{Key: "t.png"}},
		}))

	other := models.SingleImage("/assets/uploads/other.jpg")
	updated, err := svc.UpdatePost(ctx, operator, post.ID, PostUpdate{
		ImageURL:     &other,
		ThumbnailURL: strPtr(""),
	}, attachment.Result{})
	if err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if updated.ImageURL.Path() != "/assets/uploads/other.jpg" || updated.ThumbnailURL != "" {
		t.Errorf("got image %v thumbnail %q", updated.ImageURL.Paths(), updated.ThumbnailURL)
	}

	// Uploads win over the body.
	none := models.NoImage()
	updated, err = svc.UpdatePost(ctx, operator, post.ID, PostUpdate{ImageURL: &none},
		resolved(attachment.Set{attachment.RoleFile: {{Key: "b.jpg"}}}))
	if err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if updated.ImageURL.Path() != "/assets/uploads/b.jpg" {
		t.Errorf("upload should override body media, got %v", updated.ImageURL.Paths())
	}

	updated, _ = svc.UpdatePost(ctx, operator, post.ID, PostUpdate{ImageURL: &none}, attachment.Result{})
	if !updated.ImageURL.IsZero() {
		t.Errorf("image not cleared: %v", updated.ImageURL.Paths())
	}
}

func TestDeletePostIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	post, _ := svc.CreatePost(ctx, operator, PostInput{Title: "t", Content: "c", Category: "x"}, attachment.Result{})
	if err := svc.DeletePost(ctx, operator, post.ID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if err := svc.DeletePost(ctx, operator, post.ID); err != nil {
		t.Fatalf("second DeletePost: %v", err)
	}
	if _, err := svc.GetPost(ctx, post.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPost after delete: got %v", err)
	}
}

func TestListPostsUsesCache(t *testing.T) {
	svc, cache := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreatePost(ctx, operator, PostInput{Title: "t", Content: "c", Category: "x"}, attachment.Result{}); err != nil {
		t.Fatal(err)
	}
	clearsAfterCreate := cache.clears
	if clearsAfterCreate != 1 {
		t.Errorf("create should clear the cache once, got %d", clearsAfterCreate)
	}

	f := query.NewPostFilter("X", "")
	first, _ := svc.ListPosts(ctx, f)
	second, _ := svc.ListPosts(ctx, query.NewPostFilter("x", ""))
	if cache.hits != 1 {
		t.Errorf("second equivalent list should hit the cache, hits=%d", cache.hits)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Errorf("results: %d and %d", len(first), len(second))
	}

	if err := svc.DeletePost(ctx, operator, first[0].ID); err != nil {
		t.Fatal(err)
	}
	after, _ := svc.ListPosts(ctx, f)
	if len(after) != 0 {
		t.Errorf("list after delete served stale data: %d posts", len(after))
	}
}

func TestListPostsDoesNotCacheAcrossWrite(t *testing.T) {
	cache := newRecordingCache()
	repo := &interleavedPosts{PostRepository: memstore.NewPostStore()}
	svc := NewService(repo, memstore.NewCategoryStore(), cache)
	ctx := context.Background()

	repo.after = func() {
		if _, err := svc.CreatePost(ctx, operator, PostInput{Title: "t", Content: "c", Category: "x"}, attachment.Result{}); err != nil {
			t.Errorf("CreatePost: %v", err)
		}
	}

	first, err := svc.ListPosts(ctx, query.PostFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 0 {
		t.Fatalf("first list read before the write: got %d posts", len(first))
	}
	if cache.skipped != 1 {
		t.Errorf("listing read before the write should not be cached, skipped=%d", cache.skipped)
	}

	second, err := svc.ListPosts(ctx, query.PostFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(second) != 1 {
		t.Errorf("list after create: got %d posts, want 1", len(second))
	}
}

func TestCategories(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cat, err := svc.AddCategory(ctx, operator, CategoryInput{NameEn: "  Video Reports ", NameUr: "  ویڈیو رپورٹس "})
	if err != nil {
		t.Fatalf("AddCategory: %v", err)
	}
	if cat.NameEn != "video-reports" {
		t.Errorf("nameEn: got %q", cat.NameEn)
	}
	if cat.NameUr != "ویڈیو رپورٹس" {
		t.Errorf("nameUr: got %q", cat.NameUr)
	}

	_, err = svc.AddCategory(ctx, operator, CategoryInput{NameEn: "VIDEO   reports", NameUr: "x"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate: got %v, want ErrConflict", err)
	}

	_, err = svc.AddCategory(ctx, operator, CategoryInput{NameEn: "   ", NameUr: "x"})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "nameEn" {
		t.Errorf("blank nameEn: got %v", err)
	}
	_, err = svc.AddCategory(ctx, operator, CategoryInput{NameEn: "audio"})
	if !errors.As(err, &ve) || ve.Field != "nameUr" {
		t.Errorf("missing nameUr: got %v", err)
	}

	// Deleting a category leaves posts filed under it alone.
	post, _ := svc.CreatePost(ctx, operator, PostInput{Title: "t", Content: "c", Category: "video-reports"}, attachment.Result{})
	if err := svc.DeleteCategory(ctx, operator, cat.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	got, err := svc.GetPost(ctx, post.ID)
	if err != nil || got.Category != "video-reports" {
		t.Errorf("post affected by category delete: %v %+v", err, got)
	}
	items, _ := svc.ListCategories(ctx)
	if len(items) != 0 {
		t.Errorf("categories left: %d", len(items))
	}
}

func TestValidatePost(t *testing.T) {
	if err := ValidatePost(PostInput{Title: "t", Content: "c", Category: "x"}); err != nil {
		t.Errorf("valid input: %v", err)
	}
	if err := ValidatePost(PostInput{Title: "t", Content: "c"}); err == nil {
		t.Error("expected error for missing category")
	}
}

func TestValidateUpdate(t *testing.T) {
	if err := ValidateUpdate(PostUpdate{}); err != nil {
		t.Errorf("empty update: %v", err)
	}
	if err := ValidateUpdate(PostUpdate{Category: strPtr(" ")}); err == nil {
		t.Error("expected error for blank category")
	}

	var ve *ValidationError
	err := ValidateUpdate(PostUpdate{Title: strPtr(strings.Repeat("t", 301))})
	if !errors.As(err, &ve) || ve.Field != "title" || ve.Message != "is too long (max 300 characters)" {
		t.Errorf("long title: got %v", err)
	}
	if err := ValidateUpdate(PostUpdate{Title: strPtr(strings.Repeat("ی", 300))}); err != nil {
		t.Errorf("300 runes should fit: %v", err)
	}
}

func TestLengthLimits(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		field string
	}{
		{"title", ValidatePost(PostInput{Title: strings.Repeat("a", 301), Content: "c", Category: "x"}), "title"},
		{"category", ValidatePost(PostInput{Title: "t", Content: "c", Category: strings.Repeat("a", 101)}), "category"},
		{"long content", ValidatePost(PostInput{Title: "t", Content: strings.Repeat("a", 100000), Category: "x"}), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.field == "" {
				if tt.err != nil {
					t.Errorf("unexpected error: %v", tt.err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(tt.err, &ve) || ve.Field != tt.field || !strings.HasPrefix(ve.Message, "is too long") {
				t.Errorf("got %v", tt.err)
			}
		})
	}

	svc, _ := newTestService(t)
	_, err := svc.AddCategory(context.Background(), operator, CategoryInput{NameEn: strings.Repeat("a", 101), NameUr: "x"})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "nameEn" || ve.Message != "is too long (max 100 characters)" {
		t.Errorf("long category name: got %v", err)
	}
}
