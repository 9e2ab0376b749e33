// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package wordpress

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// tagConcurrency bounds the parallel tag search/create calls.
const tagConcurrency = 4

// synonymGroups cluster related category names: a suggested name matches a
// live category when both fall in the same group.
var synonymGroups = [][]string{
	{"technology", "tech", "ai", "artificial intelligence", "automation", "software"},
	{"business", "entrepreneur", "entrepreneurship", "startup", "startups"},
	{"marketing", "seo", "content marketing", "social media"},
	{"finance", "money", "investing", "passive income"},
	{"personal", "productivity", "self improvement", "lifestyle"},
}

// contentHeuristics map content keywords to category name candidates, used
// when no suggested name matches anything live.
var contentHeuristics = []struct {
	keywords   []string
	categories []string
}{
	{[]string{"ai", "artificial intelligence", "automation", "machine learning"}, []string{"technology", "tech", "ai"}},
	{[]string{"income", "money", "business", "revenue", "profit"}, []string{"business", "finance", "money"}},
	{[]string{"travel", "nomad", "remote work", "abroad"}, []string{"travel", "lifestyle", "personal"}},
}

// ResolveCategories maps AI-suggested category names onto the live category
// list: exact match first, then synonym groups, then substring either
// direction. Results are deduplicated by ID preserving suggestion order.
// When nothing matches, content-keyword heuristics run against the live
// list, and as a last resort the first live category is used. A nil result
// means the site has no categories at all; publish proceeds regardless.
func ResolveCategories(suggested []string, live []Category, title, content string) []int {
	if len(live) == 0 {
		return nil
	}

	var ids []int
	seen := make(map[int]bool)
	add := func(id int) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	for _, name := range suggested {
		if cat := matchCategory(name, live); cat != nil {
			add(cat.ID)
		}
	}
	if len(ids) > 0 {
		return ids
	}

	// Nothing matched; pick from the live list by content keywords.
	haystack := strings.ToLower(title + " " + content)
	for _, h := range contentHeuristics {
		if !containsAny(haystack, h.keywords) {
			continue
		}
		for _, candidate := range h.categories {
			if cat := matchCategory(candidate, live); cat != nil {
				add(cat.ID)
				return ids
			}
		}
	}

	add(live[0].ID)
	return ids
}

// matchCategory finds the live category for a suggested name, or nil.
func matchCategory(name string, live []Category) *Category {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil
	}

	for i := range live {
		if strings.ToLower(live[i].Name) == name {
			return &live[i]
		}
	}

	for _, group := range synonymGroups {
		if !inGroup(group, name) {
			continue
		}
		for i := range live {
			if inGroup(group, strings.ToLower(live[i].Name)) {
				return &live[i]
			}
		}
	}

	for i := range live {
		liveName := strings.ToLower(live[i].Name)
		if strings.Contains(liveName, name) || strings.Contains(name, liveName) {
			return &live[i]
		}
	}
	return nil
}

func inGroup(group []string, name string) bool {
	for _, g := range group {
		if g == name {
			return true
		}
	}
	return false
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// ResolveTags turns tag names into WordPress tag IDs with a bounded
// concurrent fan-out: each name is searched and, if absent, created; each
// task fails independently without affecting the others. The merged IDs are
// validated against the live tag list afterwards, since locally-resolved
// IDs may have been deleted server-side in the meantime. Degrades to an
// empty list; never returns an error.
func (c *Client) ResolveTags(ctx context.Context, names []string) []int {
	if len(names) == 0 {
		return nil
	}

	resolved := make([]int, len(names))
	var wg sync.WaitGroup
	sem := make(chan struct{}, tagConcurrency)

	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			id, err := c.resolveTag(ctx, name)
			if err != nil {
				slog.Warn("tag resolution failed", "tag", name, "error", err)
				return
			}
			resolved[i] = id
		}(i, name)
	}
	wg.Wait()

	var ids []int
	seen := make(map[int]bool)
	for _, id := range resolved {
		if id > 0 && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	return c.validateTagIDs(ctx, ids)
}

// resolveTag finds or creates one tag and returns its ID.
func (c *Client) resolveTag(ctx context.Context, name string) (int, error) {
	name = strings.TrimSpace(name)

	found, err := c.SearchTag(ctx, name)
	if err == nil {
		for _, t := range found {
			if strings.EqualFold(t.Name, name) {
				return t.ID, nil
			}
		}
	} else {
		slog.Warn("tag search failed, trying create", "tag", name, "error", err)
	}

	tag, err := c.CreateTag(ctx, name)
	if err != nil {
		return 0, err
	}
	return tag.ID, nil
}

// validateTagIDs drops IDs that are not present in the live tag list. If
// the list cannot be fetched the locally-resolved IDs are kept as-is.
func (c *Client) validateTagIDs(ctx context.Context, ids []int) []int {
	live, err := c.Tags(ctx)
	if err != nil {
		slog.Warn("tag list fetch failed, keeping resolved ids", "error", err)
		return ids
	}

	liveSet := make(map[int]bool, len(live))
	for _, t := range live {
		liveSet[t.ID] = true
	}

	var valid []int
	for _, id := range ids {
		if liveSet[id] {
			valid = append(valid, id)
		}
	}
	return valid
}
