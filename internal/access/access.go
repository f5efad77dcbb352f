// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package access decides whether a caller may mutate content or open an
// operator page. Reads never consult it. Every mutating operation receives
// the caller as an explicit value, so the decision does not depend on
// ambient request state.
package access

import (
	"errors"
	"net/http"
	"strings"
)

// LoginPath is where unauthenticated browsers are sent.
const LoginPath = "/login.html"

// ErrUnauthorized is returned when an anonymous caller attempts a mutation.
var ErrUnauthorized = errors.New("unauthorized")

// Caller identifies who is making a request.
type Caller struct {
	Authenticated bool
	Name          string
}

// Anonymous returns a caller with no session.
func Anonymous() Caller {
	return Caller{}
}

// Operator returns an authenticated caller.
func Operator(name string) Caller {
	return Caller{Authenticated: true, Name: name}
}

// Require returns ErrUnauthorized unless the caller is authenticated.
func (c Caller) Require() error {
	if !c.Authenticated {
		return ErrUnauthorized
	}
	return nil
}

// Denial describes how a refused request is answered.
type Denial struct {
	// Status is 401 for API paths and 303 for pages.
	Status int
	// Location is the redirect target; empty for API paths.
	Location string
}

// Deny returns the denial for path: a 401 for anything under /api/ and a
// redirect to the login page otherwise.
func Deny(path string) Denial {
	if IsAPI(path) {
		return Denial{Status: http.StatusUnauthorized}
	}
	return Denial{Status: http.StatusSeeOther, Location: LoginPath}
}

// IsAPI reports whether path belongs to the JSON API.
func IsAPI(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
