// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns article titles into URL- and file-safe slugs, used
// for the GitHub mirror file names.
package slug

import (
	"regexp"
	"strings"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// maxSlugLen keeps mirror file names manageable.
const maxSlugLen = 80

// Generate creates a slug from an article title.
// Example: "Remote Work in 2026!" → "remote-work-in-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > maxSlugLen {
		result = result[:maxSlugLen]
		// Cut at the last hyphen so no word is chopped in half.
		if i := strings.LastIndex(result, "-"); i > 0 {
			result = result[:i]
		}
	}
	return result
}

// Filename builds a markdown file name for a title, falling back to the
// given default when the title slugs to nothing (e.g. all punctuation).
func Filename(title, fallback string) string {
	s := Generate(title)
	if s == "" {
		s = fallback
	}
	return s + ".md"
}
