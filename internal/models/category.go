// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a bilingual label used to group posts. NameEn is the
// URL-safe English slug and is unique; NameUr is the Urdu display name,
// stored as entered (trimmed).
type Category struct {
	ID        uuid.UUID `json:"id"`
	NameEn    string    `json:"nameEn"`
	NameUr    string    `json:"nameUr"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
