// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package markdown

import (
	"strings"
	"testing"
)

const sampleArticle = `# Ten Ways to Automate Your Business

Automation saves hours every week. Small teams benefit the most.

![A robot arm](https://images.pexels.com/photos/123/robot.jpeg)
Photo by Jane Doe on Pexels

## Getting Started

Start with the tasks you repeat **every day**. Tools like [Zapier](https://zapier.com) help.

- Identify repetitive work
- Pick one tool
- Measure the time saved

### Going Further

Read more at https://example.com/guide for *deeper* material.
`

func TestToWordPressStripsImagesAndTitle(t *testing.T) {
	html := ToWordPress(sampleArticle)

	if strings.Contains(html, "![") {
		t.Error("output still contains markdown image syntax")
	}
	if strings.Contains(html, "<h1") {
		t.Error("output still contains an H1 heading")
	}
	if strings.Contains(html, "Ten Ways to Automate") {
		t.Error("title text leaked into the body HTML")
	}
	if strings.Contains(html, "Photo by Jane Doe") {
		t.Error("photo credit caption leaked into the body HTML")
	}
}

func TestToWordPressConvertsStructure(t *testing.T) {
	html := ToWordPress(sampleArticle)

	if !strings.Contains(html, "<h2") || !strings.Contains(html, "Getting Started") {
		t.Error("expected an h2 for ## heading")
	}
	if !strings.Contains(html, "<h3") {
		t.Error("expected an h3 for ### heading")
	}
	if !strings.Contains(html, "<ul>") || strings.Count(html, "<ul>") != 1 {
		t.Errorf("expected exactly one <ul> for the contiguous list run, got %d", strings.Count(html, "<ul>"))
	}
	if strings.Count(html, "<li>") != 3 {
		t.Errorf("expected 3 list items, got %d", strings.Count(html, "<li>"))
	}
	if !strings.Contains(html, "<strong>every day</strong>") {
		t.Error("expected bold conversion")
	}
	if !strings.Contains(html, "<em>deeper</em>") {
		t.Error("expected italic conversion")
	}
}

func TestToWordPressLinksOpenInNewTab(t *testing.T) {
	html := ToWordPress(sampleArticle)

	if !strings.Contains(html, `<a target="_blank" rel="noopener" href="https://zapier.com"`) {
		t.Errorf("markdown link missing new-tab attributes:\n%s", html)
	}
	// GFM autolink turns the bare URL into an anchor too.
	if !strings.Contains(html, `href="https://example.com/guide"`) {
		t.Error("bare URL was not autolinked")
	}
	if strings.Contains(html, `<a href=`) {
		t.Error("found an anchor without the new-tab attributes")
	}
}

func TestToWordPressInlineImageInsideSentence(t *testing.T) {
	src := "Look at this ![chart](https://example.com/c.png) closely.\n"
	html := ToWordPress(src)
	if strings.Contains(html, "![") {
		t.Error("inline image syntax survived")
	}
	if !strings.Contains(html, "Look at this") || !strings.Contains(html, "closely.") {
		t.Error("surrounding sentence text was lost")
	}
}

func TestToWordPressKeepsLaterH1(t *testing.T) {
	src := "# First Title\n\nBody text here.\n\n# Shouting Heading\n\nMore text.\n"
	html := ToWordPress(src)
	if !strings.Contains(html, "Shouting Heading") {
		t.Error("only the first H1 should be stripped")
	}
}

func TestPreviewRendersHighlightedCode(t *testing.T) {
	src := "```go\nfmt.Println(\"hi\")\n```\n"
	html, err := Preview(src)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.Contains(html, "<pre") {
		t.Error("expected a highlighted code block")
	}
}

func TestImageRefsAndReplace(t *testing.T) {
	src := "intro\n![one](https://a/1.jpg)\nmid\n![two](https://a/2.jpg)\n![three](https://a/3.jpg)\n"

	refs := ImageRefs(src)
	if len(refs) != 3 {
		t.Fatalf("ImageRefs: got %d, want 3", len(refs))
	}
	if refs[1].URL != "https://a/2.jpg" || refs[1].Description != "two" {
		t.Errorf("refs[1]: got %+v", refs[1])
	}

	out, err := ReplaceImageRef(src, 1, "new desc", "https://b/new.jpg")
	if err != nil {
		t.Fatalf("ReplaceImageRef: %v", err)
	}
	if !strings.Contains(out, "![new desc](https://b/new.jpg)") {
		t.Error("replacement not applied")
	}
	if !strings.Contains(out, "![one](https://a/1.jpg)") || !strings.Contains(out, "![three](https://a/3.jpg)") {
		t.Error("untouched references changed")
	}

	if _, err := ReplaceImageRef(src, 3, "x", "y"); err == nil {
		t.Error("expected out-of-range error")
	}
}

func TestFirstImageURL(t *testing.T) {
	url, desc := FirstImageURL(sampleArticle)
	if url != "https://images.pexels.com/photos/123/robot.jpeg" {
		t.Errorf("url: got %q", url)
	}
	if desc != "A robot arm" {
		t.Errorf("description: got %q", desc)
	}

	if url, _ := FirstImageURL("no images here"); url != "" {
		t.Errorf("expected empty url, got %q", url)
	}
}
