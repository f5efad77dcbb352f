// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"
)

// OperatorPages lists the console pages that require a session.
var OperatorPages = []string{
	"admin-panel.html",
	"admin-index.html",
	"admin-category.html",
	"admin-form.html",
}

// Pages serves files from the public directory.
type Pages struct {
	dir string
}

// NewPages creates a page server rooted at dir.
func NewPages(dir string) *Pages {
	return &Pages{dir: dir}
}

// File returns a handler that serves one named file from the public
// directory.
func (p *Pages) File(name string) http.HandlerFunc {
	file := filepath.Join(p.dir, name)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFile(w, r, file)
	}
}

// Static serves the rest of the public directory. Operator pages are only
// reachable through File behind the gate, so any other path resolving to
// one of them is answered with 404.
func (p *Pages) Static() http.Handler {
	files := http.FileServer(http.Dir(p.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isOperatorPage(r.URL.Path) {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func isOperatorPage(urlPath string) bool {
	name := path.Base(path.Clean("/" + urlPath))
	for _, page := range OperatorPages {
		if strings.EqualFold(name, page) {
			return true
		}
	}
	return false
}
