// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/render"

	"khabarcms/internal/content"
	"khabarcms/internal/middleware"
)

// Categories groups the category API handlers.
type Categories struct {
	svc      *content.Service
	maxBytes int64
}

// NewCategories creates the category handlers.
func NewCategories(svc *content.Service) *Categories {
	return &Categories{svc: svc, maxBytes: 1 << 20}
}

// List handles GET /api/categories.
func (c *Categories) List(w http.ResponseWriter, r *http.Request) {
	items, err := c.svc.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, items)
}

// Create handles POST /api/categories with nameEn and nameUr as JSON or
// form fields.
func (c *Categories) Create(w http.ResponseWriter, r *http.Request) {
	f, err := (&Intake{maxBytes: c.maxBytes}).parse(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(f.files) > 0 {
		writeError(w, r, &content.ValidationError{Field: "body", Message: "does not accept files"})
		return
	}

	cat, err := c.svc.AddCategory(r.Context(), middleware.CallerFromCtx(r.Context()), content.CategoryInput{
		NameEn: f.str("nameEn"),
		NameUr: f.str("nameUr"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, cat)
}

// Delete handles DELETE /api/categories/{id}.
func (c *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	if id, ok := idParam(r); ok {
		if err := c.svc.DeleteCategory(r.Context(), middleware.CallerFromCtx(r.Context()), id); err != nil {
			writeError(w, r, err)
			return
		}
	}
	render.JSON(w, r, messageResponse{Message: "Category Removed"})
}
