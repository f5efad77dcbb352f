// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package attachment maps uploaded files, tagged by the form field (role)
// they arrived in, onto a post's media fields. It never touches file bytes:
// every upload it sees has already been written to blob storage.
package attachment

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"khabarcms/internal/models"
)

// Role is the semantic slot an uploaded file fills on a post.
type Role string

const (
	// RoleFile is the single primary asset of an article, audio or video post.
	RoleFile Role = "file"
	// RoleGallery holds the ordered images of a photo post.
	RoleGallery Role = "files"
	// RoleThumbnail is the post's preview image.
	RoleThumbnail Role = "thumbnail"
)

// MaxGallery is the most files a gallery may hold.
const MaxGallery = 10

// Roles lists every upload role in the order the intake reads them.
var Roles = []Role{RoleFile, RoleGallery, RoleThumbnail}

// Limit returns how many files a role accepts, or 0 for unknown roles.
func (r Role) Limit() int {
	switch r {
	case RoleFile, RoleThumbnail:
		return 1
	case RoleGallery:
		return MaxGallery
	default:
		return 0
	}
}

// Stored references a blob already written to durable storage.
type Stored struct {
	Key          string // generated storage key, unique per upload
	OriginalName string
	ContentType  string
	Size         int64
}

// Set groups stored uploads by role, each list in upload order.
type Set map[Role][]Stored

// Add appends a stored upload under role.
func (s Set) Add(role Role, f Stored) {
	s[role] = append(s[role], f)
}

// Empty reports whether no role holds an upload.
func (s Set) Empty() bool {
	for _, files := range s {
		if len(files) > 0 {
			return false
		}
	}
	return true
}

// Keys returns the storage key of every upload in the set.
func (s Set) Keys() []string {
	var keys []string
	for _, role := range Roles {
		for _, f := range s[role] {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// mediaExts lists the extensions served inline from the upload prefix.
var mediaExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".avif": true,
	".mp3": true, ".m4a": true, ".aac": true, ".ogg": true, ".oga": true, ".opus": true, ".wav": true, ".flac": true,
	".mp4": true, ".m4v": true, ".mov": true, ".webm": true, ".ogv": true,
}

// FallbackExt replaces extensions outside the media list.
const FallbackExt = ".bin"

// IsMedia reports whether name has an image, audio or video extension.
func IsMedia(name string) bool {
	return mediaExts[strings.ToLower(path.Ext(name))]
}

// NewKey generates a unique storage key for an upload. Media extensions
// are kept; anything else is stored as FallbackExt.
func NewKey(originalName string) string {
	ext := filepath.Ext(originalName)
	if ext != "" && !IsMedia(ext) {
		ext = FallbackExt
	}
	return uuid.NewString() + ext
}

// PathFunc returns the public path a stored key is served from.
type PathFunc func(key string) string

// Result is what a set of uploads resolves to. A nil field means the
// uploads say nothing about it and the post keeps its current value.
type Result struct {
	ImageURL     *models.ImageURL
	ThumbnailURL *string
}

// ApplyTo copies the resolved fields onto patch.
func (r Result) ApplyTo(patch *models.PostPatch) {
	if r.ImageURL != nil {
		patch.ImageURL = r.ImageURL
	}
	if r.ThumbnailURL != nil {
		patch.ThumbnailURL = r.ThumbnailURL
	}
}

// Resolver turns stored uploads into post media paths.
type Resolver struct {
	path PathFunc
}

// NewResolver returns a Resolver that builds public paths with path.
func NewResolver(path PathFunc) *Resolver {
	return &Resolver{path: path}
}

// Resolve applies the role rules: a gallery wins over a single file and
// yields an ordered list (at most MaxGallery entries); a single file yields
// one path; a thumbnail is resolved independently of both.
func (r *Resolver) Resolve(set Set) Result {
	var res Result

	if gallery := set[RoleGallery]; len(gallery) > 0 {
		if len(gallery) > MaxGallery {
			gallery = gallery[:MaxGallery]
		}
		paths := make([]string, 0, len(gallery))
		for _, f := range gallery {
			paths = append(paths, r.path(f.Key))
		}
		img := models.GalleryImages(paths)
		res.ImageURL = &img
	} else if files := set[RoleFile]; len(files) > 0 {
		img := models.SingleImage(r.path(files[0].Key))
		res.ImageURL = &img
	}

	if thumbs := set[RoleThumbnail]; len(thumbs) > 0 {
		p := r.path(thumbs[0].Key)
		res.ThumbnailURL = &p
	}

	return res
}
