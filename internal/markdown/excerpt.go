// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"regexp"
	"strings"
)

const (
	// minSentenceLen is the shortest sentence accepted as an excerpt.
	minSentenceLen = 20

	// excerptFallbackLen is the character budget when no sentence qualifies.
	excerptFallbackLen = 160

	// genericExcerpt is returned when the input yields no usable text.
	genericExcerpt = "Read this article for practical insights and fresh ideas on the topic."
)

var (
	// stockPhotoURL matches dangling stock-photo URLs that escaped image
	// syntax (broken generation output).
	stockPhotoURL = regexp.MustCompile(`https?://(?:[a-z0-9.-]*\.)?(?:pexels|unsplash|pixabay)\.com[^\s)]*`)

	// mdLink captures link text so the syntax can be dropped but the text kept.
	mdLink = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)

	// mdHeading matches heading markers at line start.
	mdHeading = regexp.MustCompile(`(?m)^#{1,6}\s*`)

	// mdEmphasis matches bold/italic/code punctuation.
	mdEmphasis = regexp.MustCompile("[*_`~]+")

	// bareURL matches any leftover URL.
	bareURL = regexp.MustCompile(`https?://\S+`)

	// sentenceEnd splits cleaned text into sentences.
	sentenceEnd = regexp.MustCompile(`[.!?]+\s+`)

	// whitespace collapses runs of whitespace into one space.
	whitespace = regexp.MustCompile(`\s+`)
)

// Excerpt derives a clean plain-text excerpt from article markdown,
// independent of the HTML transform. The result is always non-empty and
// never starts with a raw URL. Deterministic, no I/O.
func Excerpt(source string) string {
	text := imageRef.ReplaceAllString(source, "")
	text = stockPhotoURL.ReplaceAllString(text, "")

	// Drop caption and heading lines before flattening.
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if captionLine.MatchString(line) || mdHeading.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")
	text = mdLink.ReplaceAllString(text, "$1")
	text = mdEmphasis.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, ">", "")
	text = strings.ReplaceAll(text, "- ", "")
	text = strings.TrimSpace(whitespace.ReplaceAllString(text, " "))

	if text == "" {
		return genericExcerpt
	}

	// First qualifying sentence wins.
	for _, s := range sentenceEnd.Split(text+" ", -1) {
		s = strings.TrimSpace(s)
		if len(s) < minSentenceLen {
			continue
		}
		if bareURL.MatchString(s) {
			continue
		}
		return trimToWord(strings.TrimRight(s, ".!?")) + "."
	}

	// No sentence qualified: take the first 160 characters trimmed to a
	// whole word.
	text = bareURL.ReplaceAllString(text, "")
	text = strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
	if text == "" {
		return genericExcerpt
	}
	text = strings.TrimSpace(trimToWord(text))
	if text == "" {
		return genericExcerpt
	}
	if !strings.HasSuffix(text, ".") {
		text += "."
	}
	return text
}

// trimToWord caps s at the excerpt budget, cutting at the last whole word.
func trimToWord(s string) string {
	if len(s) <= excerptFallbackLen {
		return s
	}
	s = s[:excerptFallbackLen]
	if i := strings.LastIndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	return s
}
