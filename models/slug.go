package models

import (
	"strings"

	"github.com/goliatone/go-slug"
)

// NormalizeSlug turns free text into a URL-safe key.
func NormalizeSlug(value string) (string, error) {
	return slug.Normalize(strings.TrimSpace(value))
}

// IsValidSlug reports whether value is already a URL-safe key.
func IsValidSlug(value string) bool {
	return slug.IsValid(value)
}
