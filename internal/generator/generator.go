// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package generator turns a seed keyword into publishable article material:
// topic suggestions, a long-form markdown article with stock photos woven
// in, SEO tags and a meta description. All AI calls go through the provider
// registry; stock photos come from Pexels.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"blogforge/internal/ai"
	"blogforge/internal/cache"
	"blogforge/internal/models"
	"blogforge/internal/pexels"
)

const (
	maxTopics        = 10
	maxArticlePhotos = 3
)

// Generator produces topics, articles and SEO metadata.
type Generator struct {
	ai     *ai.Registry
	photos *pexels.Client
	topics *cache.TopicCache // nil when Valkey is unavailable
}

// New creates a Generator. topics may be nil; topic suggestions are then
// generated fresh on every call.
func New(registry *ai.Registry, photos *pexels.Client, topics *cache.TopicCache) *Generator {
	return &Generator{ai: registry, photos: photos, topics: topics}
}

// Topics suggests blog topics for a seed keyword. Results are cached per
// keyword because this is the most repeated AI call in the app.
func (g *Generator) Topics(ctx context.Context, keyword string) ([]string, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("generator: empty keyword")
	}

	if g.topics != nil {
		if cached, ok := g.topics.Get(ctx, keyword); ok {
			return cached, nil
		}
	}

	systemPrompt := `You are a blog content strategist. Given a seed keyword, suggest 10 specific,
engaging blog post topics around it. Topics should be concrete article titles, not vague themes.
Respond with a JSON object in EXACTLY this shape: {"topics": ["topic one", "topic two", ...]}.
No other text.`

	temp := 0.8
	raw, err := g.ai.Complete(ctx, systemPrompt, "Keyword: "+keyword, ai.Options{
		JSONResponse: true,
		MaxTokens:    600,
		Temperature:  &temp,
	})
	if err != nil {
		return nil, fmt.Errorf("generator topics: %w", err)
	}

	topics := parseStringList(raw, "topics")
	if len(topics) == 0 {
		return nil, fmt.Errorf("generator topics: no topics in AI response")
	}
	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}

	if g.topics != nil {
		g.topics.Set(ctx, keyword, topics)
	}
	return topics, nil
}

// Article generates a long-form markdown article for a chosen topic and
// weaves in up to three stock photos with credit lines. Photo search
// failures degrade to an article without images.
func (g *Generator) Article(ctx context.Context, keyword, topic string) (string, string, []models.BlogImage, error) {
	systemPrompt := `You are an expert long-form blog writer. Write a complete article on the given topic.

Rules:
- Output ONLY the article as clean Markdown.
- Start with a single "# " heading line containing the article title.
- Use ## and ### for subheadings; 1200-1800 words across well-structured sections.
- Use standard Markdown syntax: **bold**, *italic*, - lists, [links](url).
- Do NOT include any image syntax; images are added separately.
- Do NOT wrap the output in code fences.`

	userPrompt := fmt.Sprintf("Keyword: %s\nTopic: %s", keyword, topic)
	raw, err := g.ai.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", "", nil, fmt.Errorf("generator article: %w", err)
	}

	content := stripCodeFence(raw)
	title := firstHeading(content)
	if title == "" {
		title = topic
		content = "# " + title + "\n\n" + content
	}

	images := g.searchPhotos(ctx, keyword)
	content, images = weaveImages(content, images)

	return title, content, images, nil
}

// Tags generates 6-8 specific tag names for an article. Never fails: AI
// errors or unparseable responses fall back to title-derived tags.
func (g *Generator) Tags(ctx context.Context, title, content string) []string {
	systemPrompt := `You are a content categorization expert. Generate 6-8 specific tags for the
given blog article. Tags should be short (1-3 words), lowercase, and useful for blog taxonomy.
Prefer specific terms over generic ones. Respond with a JSON object in EXACTLY this shape:
{"tags": ["tag one", "tag two", ...]}. No other text.`

	userPrompt := fmt.Sprintf("Title: %s\n\nContent:\n%s", title, truncate(content, 2000))

	temp := 0.3
	raw, err := g.ai.Complete(ctx, systemPrompt, userPrompt, ai.Options{
		JSONResponse: true,
		MaxTokens:    200,
		Temperature:  &temp,
	})
	if err != nil {
		slog.Warn("tag generation failed, using fallback tags", "error", err)
		return FallbackTags(title)
	}

	tags := parseStringList(raw, "tags")
	if len(tags) == 0 {
		slog.Warn("tag generation returned nothing usable, using fallback tags")
		return FallbackTags(title)
	}

	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) > 8 {
		cleaned = cleaned[:8]
	}
	if len(cleaned) == 0 {
		return FallbackTags(title)
	}
	return cleaned
}

// MetaDescription generates an SEO meta description (max ~155 chars).
// Falls back to the article excerpt on AI failure.
func (g *Generator) MetaDescription(ctx context.Context, title, content string, fallback func(string) string) string {
	systemPrompt := `You are an SEO expert. Write a compelling meta description for the given blog
article in at most 155 characters. Output ONLY the description text, nothing else.`

	userPrompt := fmt.Sprintf("Title: %s\n\nContent:\n%s", title, truncate(content, 2000))
	raw, err := g.ai.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		slog.Warn("meta description generation failed, using excerpt", "error", err)
		return fallback(content)
	}

	desc := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
	if desc == "" {
		return fallback(content)
	}
	if len(desc) > 160 {
		desc = desc[:160]
		if i := strings.LastIndex(desc, " "); i > 0 {
			desc = desc[:i]
		}
	}
	return desc
}

// WordCount counts words in markdown content. Recomputed on every save.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// searchPhotos fetches stock photos for the keyword, degrading to none.
func (g *Generator) searchPhotos(ctx context.Context, keyword string) []models.BlogImage {
	if g.photos == nil {
		return nil
	}
	photos, err := g.photos.Search(ctx, keyword, maxArticlePhotos)
	if err != nil {
		slog.Warn("photo search failed, generating article without images", "keyword", keyword, "error", err)
		return nil
	}

	images := make([]models.BlogImage, 0, len(photos))
	for _, p := range photos {
		desc := strings.TrimSpace(p.Alt)
		if desc == "" {
			desc = keyword
		}
		images = append(images, models.BlogImage{
			ID:           strconv.Itoa(p.ID),
			URL:          p.Src.Large,
			ThumbURL:     p.Src.Medium,
			Description:  desc,
			Photographer: p.Photographer,
			DownloadURL:  p.URL,
		})
	}
	return images
}

// weaveImages inserts image references into the article: the first image
// after the opening paragraph, the rest ahead of evenly spaced ## headings.
// Returns the new content and the images actually placed, in reading order.
func weaveImages(content string, images []models.BlogImage) (string, []models.BlogImage) {
	if len(images) == 0 {
		return content, nil
	}

	lines := strings.Split(content, "\n")

	// Slot 0: after the first non-empty paragraph following the H1.
	// Later slots: directly before ## headings, spread across the article.
	var headings []int
	firstParaEnd := -1
	seenText := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			headings = append(headings, i)
			continue
		}
		if firstParaEnd == -1 {
			if seenText && trimmed == "" {
				firstParaEnd = i
			} else if trimmed != "" && !strings.HasPrefix(trimmed, "# ") {
				seenText = true
			}
		}
	}
	if firstParaEnd == -1 {
		firstParaEnd = len(lines)
	}

	type insertion struct {
		line int
		img  models.BlogImage
	}
	inserts := []insertion{{line: firstParaEnd, img: images[0]}}
	placed := []models.BlogImage{images[0]}

	rest := images[1:]
	if len(rest) > 0 && len(headings) > 1 {
		// Skip the first heading (too close to the lead image).
		candidates := headings[1:]
		step := len(candidates) / len(rest)
		if step == 0 {
			step = 1
		}
		for i, img := range rest {
			idx := i * step
			if idx >= len(candidates) {
				break
			}
			inserts = append(inserts, insertion{line: candidates[idx], img: img})
			placed = append(placed, img)
		}
	}

	var sb strings.Builder
	for i, line := range lines {
		for _, ins := range inserts {
			if ins.line == i {
				sb.WriteString("\n")
				sb.WriteString(imageBlock(ins.img))
				sb.WriteString("\n")
			}
		}
		sb.WriteString(line)
		if i < len(lines)-1 {
			sb.WriteString("\n")
		}
	}
	// Insertions that point past the last line.
	for _, ins := range inserts {
		if ins.line >= len(lines) {
			sb.WriteString("\n\n")
			sb.WriteString(imageBlock(ins.img))
		}
	}

	return sb.String(), placed
}

// imageBlock renders one markdown image reference with its credit line.
func imageBlock(img models.BlogImage) string {
	block := fmt.Sprintf("![%s](%s)", img.Description, img.URL)
	if img.Photographer != "" {
		block += fmt.Sprintf("\n\n*Photo by %s on Pexels*", img.Photographer)
	}
	return block
}

// FallbackTags derives tags from the title when the AI is unavailable:
// meaningful title words plus generic filler terms, at most six.
func FallbackTags(title string) []string {
	stop := map[string]bool{
		"the": true, "and": true, "for": true, "with": true, "your": true,
		"that": true, "this": true, "from": true, "how": true, "what": true,
		"why": true, "guide": true, "tips": true,
	}

	var tags []string
	seen := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(title)) {
		w = strings.Trim(w, `.,:;!?"'()`)
		if len(w) <= 3 || stop[w] || seen[w] {
			continue
		}
		seen[w] = true
		tags = append(tags, w)
		if len(tags) == 4 {
			break
		}
	}

	for _, filler := range []string{"blogging", "tips", "guide", "online"} {
		if len(tags) >= 6 {
			break
		}
		if !seen[filler] {
			seen[filler] = true
			tags = append(tags, filler)
		}
	}
	return tags
}

// parseStringList extracts a list of strings from an AI JSON response.
// Accepts {"<key>": [...]}, a bare JSON array, or a fenced variant of either.
func parseStringList(raw, key string) []string {
	raw = stripCodeFence(raw)

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil {
		if inner, ok := wrapped[key]; ok {
			raw = string(inner)
		}
	}

	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}

	var out []string
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it != "" {
			out = append(out, it)
		}
	}
	return out
}

// stripCodeFence removes a surrounding markdown code fence, which some
// models add despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.Index(s, "\n"); i != -1 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "```"); i != -1 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// firstHeading returns the text of the first "# " heading, or "".
func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// truncate cuts a string to maxLen characters, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
