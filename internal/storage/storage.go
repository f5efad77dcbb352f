// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage keeps uploaded post media. The filesystem backend writes
// into a directory served as static files; the S3 backend writes to a
// public bucket on any S3-compatible service (path-style, as required by
// CEPH/Hetzner).
package storage

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

// Backend stores blobs under generated keys and reports where they are
// publicly reachable.
type Backend interface {
	// Save writes body under key. size may be -1 if unknown.
	Save(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// PublicPath returns the path or URL clients use to fetch key.
	PublicPath(key string) string
}

// ErrInvalidKey is returned for keys that are empty or contain path elements.
var ErrInvalidKey = errors.New("invalid storage key")

// checkKey rejects keys that could escape the storage root.
func checkKey(key string) error {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || filepath.Base(key) != key {
		return ErrInvalidKey
	}
	return nil
}
