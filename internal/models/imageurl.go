// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ImageKind tells which shape a post's primary media takes.
type ImageKind int

const (
	ImageNone ImageKind = iota
	ImageSingle
	ImageGallery
)

// String returns a short label, used in logs.
func (k ImageKind) String() string {
	switch k {
	case ImageSingle:
		return "single"
	case ImageGallery:
		return "gallery"
	default:
		return "none"
	}
}

// ImageURL is a post's primary media: nothing, one path (article, audio,
// video) or an ordered gallery of paths (photo set).
//
// On the wire it keeps the shape clients already expect: "" for none, a
// plain string for a single asset and an array for a gallery. The same JSON
// is stored in the posts.image_url JSONB column.
type ImageURL struct {
	kind  ImageKind
	paths []string
}

// NoImage returns the empty media value.
func NoImage() ImageURL {
	return ImageURL{}
}

// SingleImage returns media holding one primary asset path.
func SingleImage(path string) ImageURL {
	if path == "" {
		return ImageURL{}
	}
	return ImageURL{kind: ImageSingle, paths: []string{path}}
}

// GalleryImages returns media holding an ordered set of paths. A gallery is
// kept as a gallery even with a single entry.
func GalleryImages(paths []string) ImageURL {
	if len(paths) == 0 {
		return ImageURL{}
	}
	cp := make([]string, len(paths))
	copy(cp, paths)
	return ImageURL{kind: ImageGallery, paths: cp}
}

// Kind reports the media shape.
func (u ImageURL) Kind() ImageKind {
	return u.kind
}

// IsZero reports whether the post carries no primary media.
func (u ImageURL) IsZero() bool {
	return u.kind == ImageNone
}

// Path returns the single asset path, or "" for other shapes.
func (u ImageURL) Path() string {
	if u.kind != ImageSingle {
		return ""
	}
	return u.paths[0]
}

// Paths returns every path in order, whatever the shape.
func (u ImageURL) Paths() []string {
	cp := make([]string, len(u.paths))
	copy(cp, u.paths)
	return cp
}

// Equal compares shape and paths.
func (u ImageURL) Equal(o ImageURL) bool {
	if u.kind != o.kind || len(u.paths) != len(o.paths) {
		return false
	}
	for i := range u.paths {
		if u.paths[i] != o.paths[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes none as "", single as a string and gallery as an array.
func (u ImageURL) MarshalJSON() ([]byte, error) {
	switch u.kind {
	case ImageSingle:
		return json.Marshal(u.paths[0])
	case ImageGallery:
		return json.Marshal(u.paths)
	default:
		return []byte(`""`), nil
	}
}

// UnmarshalJSON accepts null, a string or an array of strings.
func (u *ImageURL) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*u = NoImage()
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("image url: %w", err)
		}
		*u = SingleImage(s)
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("image url: %w", err)
		}
		*u = GalleryImages(list)
	default:
		return fmt.Errorf("image url: unexpected JSON %s", data)
	}
	return nil
}

// Value implements driver.Valuer for the JSONB column.
func (u ImageURL) Value() (driver.Value, error) {
	b, err := u.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for the JSONB column.
func (u *ImageURL) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*u = NoImage()
		return nil
	case []byte:
		return u.UnmarshalJSON(v)
	case string:
		return u.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("image url: cannot scan %T", src)
	}
}
