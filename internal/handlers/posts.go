// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/render"

	"khabarcms/internal/content"
	"khabarcms/internal/middleware"
	"khabarcms/internal/query"
)

// Posts groups the post API handlers.
type Posts struct {
	svc    *content.Service
	intake *Intake
}

// NewPosts creates the post handlers.
func NewPosts(svc *content.Service, intake *Intake) *Posts {
	return &Posts{svc: svc, intake: intake}
}

// List handles GET /api/posts?type=&search=.
func (p *Posts) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	posts, err := p.svc.ListPosts(r.Context(), query.NewPostFilter(q.Get("type"), q.Get("search")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, posts)
}

// Get handles GET /api/posts/{id}.
func (p *Posts) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, content.ErrNotFound)
		return
	}
	post, err := p.svc.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, post)
}

// Create handles POST /api/posts. Fields are validated before any upload
// is stored.
func (p *Posts) Create(w http.ResponseWriter, r *http.Request) {
	f, err := p.intake.parse(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	in := content.PostInput{
		Title:    f.str("title"),
		Content:  f.str("content"),
		Category: f.str("category"),
		IsPinned: f.fields["isPinned"],
		Date:     f.str("date"),
	}
	if err := content.ValidatePost(in); err != nil {
		writeError(w, r, err)
		return
	}

	set, err := p.intake.store(r.Context(), f.files)
	if err != nil {
		writeError(w, r, err)
		return
	}

	post, err := p.svc.CreatePost(r.Context(), middleware.CallerFromCtx(r.Context()), in, p.intake.resolver.Resolve(set))
	if err != nil {
		p.intake.discard(r.Context(), set)
		writeError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, post)
}

// Update handles PUT and PATCH /api/posts/{id}. Both accept any subset of
// fields. Uploaded files win over imageUrl and thumbnailUrl in the body.
func (p *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeError(w, r, content.ErrNotFound)
		return
	}

	f, err := p.intake.parse(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	img, err := f.media("imageUrl")
	if err != nil {
		writeError(w, r, err)
		return
	}
	in := content.PostUpdate{
		Title:        f.strPtr("title"),
		Content:      f.strPtr("content"),
		Category:     f.strPtr("category"),
		Date:         f.strPtr("date"),
		IsPinned:     f.fields["isPinned"],
		IsHidden:     f.fields["isHidden"],
		ImageURL:     img,
		ThumbnailURL: f.strPtr("thumbnailUrl"),
	}
	if err := content.ValidateUpdate(in); err != nil {
		writeError(w, r, err)
		return
	}

	set, err := p.intake.store(r.Context(), f.files)
	if err != nil {
		writeError(w, r, err)
		return
	}

	post, err := p.svc.UpdatePost(r.Context(), middleware.CallerFromCtx(r.Context()), id, in, p.intake.resolver.Resolve(set))
	if err != nil {
		p.intake.discard(r.Context(), set)
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, post)
}

// Delete handles DELETE /api/posts/{id}. It succeeds whether or not the post
// existed.
func (p *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	if id, ok := idParam(r); ok {
		if err := p.svc.DeletePost(r.Context(), middleware.CallerFromCtx(r.Context()), id); err != nil {
			writeError(w, r, err)
			return
		}
	}
	render.JSON(w, r, messageResponse{Message: "Post deleted successfully"})
}
