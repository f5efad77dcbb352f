// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains. Reads of
// posts and categories are public; mutations, the operator pages and the
// 2FA enrolment code sit behind the operator gate.
package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"

	"khabarcms/internal/attachment"
	"khabarcms/internal/handlers"
	"khabarcms/internal/middleware"
)

// Deps holds everything the router wires together.
type Deps struct {
	Sessions     middleware.SessionReader
	Posts        *handlers.Posts
	Categories   *handlers.Categories
	Auth         *handlers.Auth
	Pages        *handlers.Pages
	LoginLimiter *middleware.RateLimiter

	// UploadDir is served at UploadURLPrefix and /uploads when set.
	UploadDir       string
	UploadURLPrefix string

	// CORSOrigins restricts cross-origin callers; empty reflects any origin.
	CORSOrigins []string
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(corsHandler(d.CORSOrigins))
	r.Use(middleware.LoadSession(d.Sessions))

	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.With(d.LoginLimiter.Middleware).Post("/login", d.Auth.Login)
		r.Get("/logout", d.Auth.Logout)
		r.With(middleware.RequireOperator).Get("/2fa/qr", d.Auth.TOTPQRCode)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", d.Posts.List)
			r.Get("/{id}", d.Posts.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireOperator)
				r.Post("/", d.Posts.Create)
				r.Put("/{id}", d.Posts.Update)
				r.Patch("/{id}", d.Posts.Update)
				r.Delete("/{id}", d.Posts.Delete)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", d.Categories.List)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireOperator)
				r.Post("/", d.Categories.Create)
				r.Delete("/{id}", d.Categories.Delete)
			})
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"message": "Not found"})
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOperator)
		for _, page := range handlers.OperatorPages {
			r.Get("/"+page, d.Pages.File(page))
		}
	})

	if d.UploadDir != "" {
		uploads := http.Dir(d.UploadDir)
		prefix := "/" + strings.Trim(d.UploadURLPrefix, "/")
		r.Handle(prefix+"/*", http.StripPrefix(prefix+"/", serveUploads(uploads)))
		if prefix != "/uploads" {
			r.Handle("/uploads/*", http.StripPrefix("/uploads/", serveUploads(uploads)))
		}
	}

	r.Handle("/*", d.Pages.Static())

	return r
}

// serveUploads serves stored uploads. Files without a media extension are
// sent as opaque downloads so they never render on the site origin.
func serveUploads(dir http.FileSystem) http.Handler {
	files := http.FileServer(dir)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !attachment.IsMedia(r.URL.Path) {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Header().Set("Content-Disposition", "attachment")
		}
		files.ServeHTTP(w, r)
	})
}

// corsHandler allows credentialed cross-origin requests from origins, or
// from any origin when origins is empty.
func corsHandler(origins []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(origins) == 0 {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
	} else {
		opts.AllowedOrigins = origins
	}
	return cors.Handler(opts)
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}
