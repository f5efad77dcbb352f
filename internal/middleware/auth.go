// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"khabarcms/internal/access"
	"khabarcms/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the session data.
	SessionKey contextKey = "session"
)

// SessionReader loads the session attached to a request, if any.
type SessionReader interface {
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
}

// LoadSession retrieves the session and stores it in the request context.
// It does not enforce authentication; a lookup failure is treated as an
// anonymous request.
func LoadSession(store SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			data, err := store.Get(r.Context(), r)
			if err != nil {
				slog.Warn("session lookup failed", "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if data != nil {
				r = r.WithContext(context.WithValue(r.Context(), SessionKey, data))
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireOperator refuses requests without a session: 401 JSON under /api/,
// a redirect to the login page everywhere else. Must run after LoadSession.
func RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := CallerFromCtx(r.Context()).Require(); err != nil {
			deny(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func deny(w http.ResponseWriter, r *http.Request) {
	d := access.Deny(r.URL.Path)
	if d.Location != "" {
		http.Redirect(w, r, d.Location, d.Status)
		return
	}
	render.Status(r, d.Status)
	render.JSON(w, r, map[string]string{"error": "Unauthorized"})
}

// SessionFromCtx extracts the session data from the request context.
// Returns nil if no session is loaded.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}

// CallerFromCtx returns the caller for the request: an operator when a
// session is loaded, anonymous otherwise.
func CallerFromCtx(ctx context.Context) access.Caller {
	if sess := SessionFromCtx(ctx); sess.IsAuthenticated() {
		return access.Operator(sess.Username)
	}
	return access.Anonymous()
}
