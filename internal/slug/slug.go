// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug normalizes English category names into URL-safe slugs.
package slug

import (
	"regexp"
	"strings"
)

// whitespace matches runs of ASCII and Unicode space separators.
var whitespace = regexp.MustCompile(`[\s\p{Zs}]+`)

// Category lowercases and trims a name, then collapses each internal run of
// whitespace into a single hyphen. Other characters are kept as they are, so
// "My-Cat" and "  My Cat  " both become "my-cat".
// Example: "Photo  Essays" → "photo-essays"
func Category(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	return whitespace.ReplaceAllString(result, "-")
}
