// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// BlogStatus represents the publishing state of a blog article.
// The transition is one-way: a published blog never returns to draft.
type BlogStatus string

const (
	BlogStatusDraft     BlogStatus = "draft"
	BlogStatusPublished BlogStatus = "published"
)

// BlogImage is one entry in a blog's ordered image sequence. An image's
// position in the sequence mirrors the position of its markdown reference
// in the article body; the image-replace operation keeps the two in step.
type BlogImage struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbURL     string `json:"thumb_url,omitempty"`
	Description  string `json:"description,omitempty"`
	Photographer string `json:"photographer,omitempty"`
	DownloadURL  string `json:"download_url,omitempty"`
}

// Blog represents one article, from keyword seed through published state.
type Blog struct {
	ID        uuid.UUID   `json:"id"`
	Keyword   string      `json:"keyword"`
	Title     string      `json:"title"`
	Content   string      `json:"content"` // markdown source
	WordCount int         `json:"word_count"`
	Images    []BlogImage `json:"images"`
	Status    BlogStatus  `json:"status"`

	// Publication attributes — null until the first successful publish,
	// mutable on republish.
	WordPressURL    *string    `json:"wordpress_url,omitempty"`
	WordPressPostID *int       `json:"wordpress_post_id,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CategoryID      *int       `json:"category_id,omitempty"`
	TagIDs          []int      `json:"tag_ids,omitempty"`
	MetaDescription *string    `json:"meta_description,omitempty"`

	// GitHub backup attributes — independent of publish state.
	GithubFilePath   *string `json:"github_file_path,omitempty"`
	GithubCommitSHA  *string `json:"github_commit_sha,omitempty"`
	BackedUpToGithub bool    `json:"backed_up_to_github"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPublished returns true if the blog has been published at least once.
func (b *Blog) IsPublished() bool {
	return b.Status == BlogStatusPublished
}

// PublicationResult carries the fields written back to a blog after a
// successful WordPress publish. Persisted in a single atomic update so
// concurrent readers never observe a half-published blog.
type PublicationResult struct {
	WordPressURL    string
	WordPressPostID int
	PublishedAt     time.Time
	CategoryID      *int
	TagIDs          []int
	MetaDescription string
}
