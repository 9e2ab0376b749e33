// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"fmt"
	"regexp"
)

// imageRefParts captures the alt text and URL of an image reference.
var imageRefParts = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]*)\)`)

// ImageRef is one markdown image reference in reading order.
type ImageRef struct {
	Description string
	URL         string
}

// ImageRefs returns every image reference in the source, in reading order.
func ImageRefs(source string) []ImageRef {
	matches := imageRefParts.FindAllStringSubmatch(source, -1)
	refs := make([]ImageRef, 0, len(matches))
	for _, m := range matches {
		refs = append(refs, ImageRef{Description: m[1], URL: m[2]})
	}
	return refs
}

// ReplaceImageRef rewrites exactly the index-th image reference (zero-based,
// reading order) with the given description and URL, leaving every other
// reference byte-identical. The occurrence position in the markdown is the
// contract here, not any external image list, so the two cannot drift apart
// through this operation.
func ReplaceImageRef(source string, index int, description, url string) (string, error) {
	refs := imageRefParts.FindAllStringIndex(source, -1)
	if index < 0 || index >= len(refs) {
		return "", fmt.Errorf("image index %d out of range (%d references)", index, len(refs))
	}
	start, end := refs[index][0], refs[index][1]
	return source[:start] + fmt.Sprintf("![%s](%s)", description, url) + source[end:], nil
}

// FirstImageURL returns the URL of the first image reference, or "" if the
// article has no inline images. Used to pick the featured image candidate.
func FirstImageURL(source string) (url, description string) {
	m := imageRefParts.FindStringSubmatch(source)
	if m == nil {
		return "", ""
	}
	return m[2], m[1]
}
