// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP handlers for the posts, categories,
// operator login and operator page endpoints.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"khabarcms/internal/access"
	"khabarcms/internal/content"
)

// errorResponse is the body of every failed API request.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// messageResponse is the body of delete confirmations and not-found replies.
type messageResponse struct {
	Message string `json:"message"`
}

// writeError maps a service error onto a status code and JSON body. Internal
// error text is logged, never returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *content.ValidationError
	switch {
	case errors.As(err, &ve):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, content.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, messageResponse{Message: "Not found"})
	case errors.Is(err, content.ErrConflict):
		render.Status(r, http.StatusConflict)
		render.JSON(w, r, errorResponse{Error: "category already exists"})
	case errors.Is(err, access.ErrUnauthorized):
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, errorResponse{Error: "Unauthorized"})
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "Internal Server Error"})
	}
}

// idParam parses the {id} URL parameter. ok is false for malformed ids,
// which can never match a stored record.
func idParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}
