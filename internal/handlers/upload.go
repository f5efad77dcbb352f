// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"khabarcms/internal/attachment"
	"khabarcms/internal/content"
	"khabarcms/internal/models"
	"khabarcms/internal/storage"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling file parts to disk.
const multipartMemory = 32 << 20

// sniffLen is the number of bytes http.DetectContentType looks at.
const sniffLen = 512

// form is a parsed request body: text fields plus uploaded files by role.
type form struct {
	fields map[string]any
	files  map[attachment.Role][]*multipart.FileHeader
}

// has reports whether the body carried key.
func (f *form) has(key string) bool {
	_, ok := f.fields[key]
	return ok
}

// str returns key as a string. Non-string JSON values are formatted.
func (f *form) str(key string) string {
	switch v := f.fields[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// strPtr returns key as a *string, or nil if it was not sent.
func (f *form) strPtr(key string) *string {
	if !f.has(key) {
		return nil
	}
	s := f.str(key)
	return &s
}

// media returns key as post media, or nil if it was not sent. Form bodies
// carry one path; JSON bodies may also send a list of paths or null.
func (f *form) media(key string) (*models.ImageURL, error) {
	v, ok := f.fields[key]
	if !ok {
		return nil, nil
	}

	var img models.ImageURL
	if s, ok := v.(string); ok {
		img = models.SingleImage(strings.TrimSpace(s))
		return &img, nil
	}
	raw, err := json.Marshal(v)
	if err == nil {
		err = img.UnmarshalJSON(raw)
	}
	if err != nil {
		return nil, &content.ValidationError{Field: key, Message: "must be a path or a list of paths"}
	}
	return &img, nil
}

// Intake parses post bodies, enforces upload limits and stores files.
type Intake struct {
	blobs    storage.Backend
	resolver *attachment.Resolver
	maxBytes int64
}

// NewIntake creates an Intake writing to blobs. maxBytes caps the whole
// request body.
func NewIntake(blobs storage.Backend, maxBytes int64) *Intake {
	return &Intake{
		blobs:    blobs,
		resolver: attachment.NewResolver(blobs.PublicPath),
		maxBytes: maxBytes,
	}
}

// parse reads a multipart, urlencoded or JSON body.
func (in *Intake) parse(w http.ResponseWriter, r *http.Request) (*form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, in.maxBytes)
	f := &form{
		fields: map[string]any{},
		files:  map[attachment.Role][]*multipart.FileHeader{},
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case mediaType == "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, bodyError(err)
		}
		for key, vals := range r.MultipartForm.Value {
			if len(vals) > 0 {
				f.fields[key] = vals[0]
			}
		}
		for key, headers := range r.MultipartForm.File {
			role := attachment.Role(key)
			if role.Limit() == 0 {
				return nil, &content.ValidationError{Field: key, Message: "unexpected file field"}
			}
			if len(headers) > role.Limit() {
				return nil, &content.ValidationError{
					Field:   key,
					Message: fmt.Sprintf("accepts at most %d files", role.Limit()),
				}
			}
			f.files[role] = headers
		}

	case mediaType == "application/json":
		if err := render.DecodeJSON(r.Body, &f.fields); err != nil && !errors.Is(err, io.EOF) {
			return nil, bodyError(err)
		}

	default:
		if err := r.ParseForm(); err != nil {
			return nil, bodyError(err)
		}
		for key, vals := range r.PostForm {
			if len(vals) > 0 {
				f.fields[key] = vals[0]
			}
		}
	}
	return f, nil
}

// bodyError turns a body parsing failure into a validation error.
func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &content.ValidationError{Field: "body", Message: fmt.Sprintf("exceeds %d bytes", tooLarge.Limit)}
	}
	return &content.ValidationError{Field: "body", Message: "could not be parsed"}
}

// store saves every uploaded file under a fresh key. If any save fails the
// files already stored are removed.
func (in *Intake) store(ctx context.Context, files map[attachment.Role][]*multipart.FileHeader) (attachment.Set, error) {
	set := attachment.Set{}
	for _, role := range attachment.Roles {
		for _, fh := range files[role] {
			stored, err := in.save(ctx, fh)
			if err != nil {
				in.discard(ctx, set)
				return nil, err
			}
			set.Add(role, stored)
		}
	}
	return set, nil
}

func (in *Intake) save(ctx context.Context, fh *multipart.FileHeader) (attachment.Stored, error) {
	src, err := fh.Open()
	if err != nil {
		return attachment.Stored{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer src.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		head := make([]byte, sniffLen)
		n, _ := io.ReadFull(src, head)
		contentType = http.DetectContentType(head[:n])
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return attachment.Stored{}, fmt.Errorf("rewind upload %s: %w", fh.Filename, err)
		}
	}

	key := attachment.NewKey(fh.Filename)
	if !attachment.IsMedia(key) {
		contentType = "application/octet-stream"
	}
	if err := in.blobs.Save(ctx, key, contentType, src, fh.Size); err != nil {
		return attachment.Stored{}, fmt.Errorf("store upload %s: %w", fh.Filename, err)
	}

	slog.Debug("upload stored", "key", key, "name", fh.Filename, "size", fh.Size, "type", contentType)
	return attachment.Stored{
		Key:          key,
		OriginalName: fh.Filename,
		ContentType:  contentType,
		Size:         fh.Size,
	}, nil
}

// discard removes stored files best-effort. Failures are logged and leave
// orphans behind.
func (in *Intake) discard(ctx context.Context, set attachment.Set) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range set.Keys() {
		if err := in.blobs.Delete(ctx, key); err != nil {
			slog.Warn("orphaned upload", "key", key, "error", err)
		}
	}
}
