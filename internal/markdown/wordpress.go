// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts blog article markdown into HTML. ToWordPress
// produces classic-editor-compatible HTML for the WordPress REST API:
// inline images are stripped (the featured image is attached out-of-band)
// and the leading H1 is removed so the CMS's own title field is not
// duplicated. Preview renders markdown for the editor preview pane.
package markdown

import (
	"bytes"
	"regexp"
	"strings"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	// imageRef matches a markdown image reference anywhere in a line.
	imageRef = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)

	// captionLine matches the photo-credit lines the generator emits under
	// each inline image.
	captionLine = regexp.MustCompile(`(?i)^\s*\*?(photo|image|picture)\s+(by|credit|source|via)\b.*$|^\s*\*?(source|credit)\s*:.*$`)

	// anchorTag matches rendered anchor opening tags so a target can be added.
	anchorTag = regexp.MustCompile(`<a href=`)
)

// wp is the goldmark instance used for the WordPress transform. GFM gives
// tables, strikethrough and bare-URL autolinks; headings, lists, emphasis
// and paragraphs follow standard markdown rules.
var wp = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// preview renders markdown for the editor preview pane, with syntax
// highlighting for fenced code blocks and raw-HTML pass-through.
var preview = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Typographer,
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
	),
)

// ToWordPress converts article markdown into HTML suitable for the
// WordPress classic editor. The result contains no markdown image syntax
// and no top-level heading. Deterministic, no I/O.
func ToWordPress(source string) string {
	cleaned := stripImagesAndTitle(source)

	var buf bytes.Buffer
	if err := wp.Convert([]byte(cleaned), &buf); err != nil {
		// goldmark only fails on writer errors; a bytes.Buffer never does.
		// Fall back to the cleaned text wrapped in a paragraph.
		return "<p>" + cleaned + "</p>"
	}

	out := buf.String()
	// WordPress posts open external links in a new tab.
	out = anchorTag.ReplaceAllString(out, `<a target="_blank" rel="noopener" href=`)
	return out
}

// Preview renders markdown for the editor preview pane.
func Preview(source string) (string, error) {
	var buf bytes.Buffer
	if err := preview.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// stripImagesAndTitle removes every image reference, any adjacent photo
// credit caption, and the first top-level heading from the markdown.
func stripImagesAndTitle(source string) string {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	droppedImage := false
	droppedTitle := false

	for _, line := range lines {
		stripped := imageRef.ReplaceAllString(line, "")

		// A line that was only an image reference disappears entirely.
		if stripped != line && strings.TrimSpace(stripped) == "" {
			droppedImage = true
			continue
		}

		// Caption lines directly following an image are credits, drop them.
		if droppedImage && captionLine.MatchString(stripped) {
			droppedImage = false
			continue
		}
		if strings.TrimSpace(stripped) != "" {
			droppedImage = false
		}

		// Remove the first H1 — WordPress renders the title itself.
		trimmed := strings.TrimSpace(stripped)
		if !droppedTitle && strings.HasPrefix(trimmed, "# ") {
			droppedTitle = true
			continue
		}

		out = append(out, stripped)
	}

	return strings.Join(out, "\n")
}
