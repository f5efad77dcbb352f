// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FS stores blobs as files in a single directory.
type FS struct {
	dir       string
	urlPrefix string
}

// NewFS creates dir if needed and returns a backend that serves its files
// under urlPrefix.
func NewFS(dir, urlPrefix string) (*FS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	slog.Info("upload storage ready", "backend", "fs", "dir", dir)
	return &FS{dir: dir, urlPrefix: "/" + strings.Trim(urlPrefix, "/")}, nil
}

// Dir returns the directory files are written to.
func (f *FS) Dir() string {
	return f.dir
}

// Save writes body to a new file named key. An existing key is an error.
func (f *FS) Save(ctx context.Context, key, _ string, body io.Reader, _ int64) error {
	if err := checkKey(key); err != nil {
		return err
	}
	path := filepath.Join(f.dir, key)

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("fs save %s: %w", key, err)
	}

	_, err = io.Copy(out, readerWithContext(ctx, body))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("fs write %s: %w", key, err)
	}
	return nil
}

// Delete removes the file named key.
func (f *FS) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(f.dir, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("fs delete %s: %w", key, err)
	}
	return nil
}

// PublicPath returns urlPrefix/key.
func (f *FS) PublicPath(key string) string {
	return f.urlPrefix + "/" + key
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// readerWithContext stops a copy once ctx is done.
func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
