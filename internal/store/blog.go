// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store contains the data access layer. Each entity gets its own
// store struct with explicit SQL; partial updates are expressed as
// dedicated statements per concern so unrelated fields are never clobbered.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"blogforge/internal/models"
)

// BlogStore handles all blog-related database operations.
type BlogStore struct {
	db *sql.DB
}

// NewBlogStore creates a new BlogStore with the given database connection.
func NewBlogStore(db *sql.DB) *BlogStore {
	return &BlogStore{db: db}
}

const blogColumns = `id, keyword, title, content, word_count, images, status,
       wordpress_url, wordpress_post_id, published_at, category_id, tag_ids,
       meta_description, github_file_path, github_commit_sha,
       backed_up_to_github, created_at, updated_at`

// scanBlog reads one blog row, decoding the JSONB image and tag columns.
func scanBlog(row interface{ Scan(...any) error }) (*models.Blog, error) {
	b := &models.Blog{}
	var images []byte
	var tagIDs []byte
	err := row.Scan(
		&b.ID, &b.Keyword, &b.Title, &b.Content, &b.WordCount, &images, &b.Status,
		&b.WordPressURL, &b.WordPressPostID, &b.PublishedAt, &b.CategoryID, &tagIDs,
		&b.MetaDescription, &b.GithubFilePath, &b.GithubCommitSHA,
		&b.BackedUpToGithub, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &b.Images); err != nil {
			return nil, fmt.Errorf("decode blog images: %w", err)
		}
	}
	if len(tagIDs) > 0 {
		if err := json.Unmarshal(tagIDs, &b.TagIDs); err != nil {
			return nil, fmt.Errorf("decode blog tag ids: %w", err)
		}
	}
	return b, nil
}

// List returns all blogs ordered by creation date descending.
func (s *BlogStore) List() ([]models.Blog, error) {
	rows, err := s.db.Query(`SELECT ` + blogColumns + ` FROM blogs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	var items []models.Blog
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blog: %w", err)
		}
		items = append(items, *b)
	}
	return items, rows.Err()
}

// FindByID retrieves a blog by its UUID. Returns nil if not found.
func (s *BlogStore) FindByID(id uuid.UUID) (*models.Blog, error) {
	b, err := scanBlog(s.db.QueryRow(`SELECT `+blogColumns+` FROM blogs WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find blog by id: %w", err)
	}
	return b, nil
}

// Create inserts a new blog and returns it with the generated ID.
func (s *BlogStore) Create(b *models.Blog) (*models.Blog, error) {
	images, err := json.Marshal(b.Images)
	if err != nil {
		return nil, fmt.Errorf("encode blog images: %w", err)
	}

	created, err := scanBlog(s.db.QueryRow(`
		INSERT INTO blogs (keyword, title, content, word_count, images, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+blogColumns,
		b.Keyword, b.Title, b.Content, b.WordCount, images, models.BlogStatusDraft,
	))
	if err != nil {
		return nil, fmt.Errorf("create blog: %w", err)
	}
	return created, nil
}

// UpdateContent overwrites the article markdown and derived word count.
// Publication, image and backup fields are untouched.
func (s *BlogStore) UpdateContent(id uuid.UUID, title, content string, wordCount int) error {
	_, err := s.db.Exec(`
		UPDATE blogs SET title = $1, content = $2, word_count = $3, updated_at = NOW()
		WHERE id = $4`,
		title, content, wordCount, id,
	)
	if err != nil {
		return fmt.Errorf("update blog content: %w", err)
	}
	return nil
}

// UpdateImages overwrites the image sequence and the article markdown in one
// statement, keeping the markdown image references and the images list in
// step with each other.
func (s *BlogStore) UpdateImages(id uuid.UUID, content string, images []models.BlogImage) error {
	encoded, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("encode blog images: %w", err)
	}
	_, err = s.db.Exec(`
		UPDATE blogs SET content = $1, images = $2, updated_at = NOW()
		WHERE id = $3`,
		content, encoded, id,
	)
	if err != nil {
		return fmt.Errorf("update blog images: %w", err)
	}
	return nil
}

// UpdatePublication records a successful publish. The write is a single
// UPDATE so concurrent readers never observe a partially-published blog.
func (s *BlogStore) UpdatePublication(id uuid.UUID, res models.PublicationResult) error {
	tagIDs, err := json.Marshal(res.TagIDs)
	if err != nil {
		return fmt.Errorf("encode blog tag ids: %w", err)
	}
	_, err = s.db.Exec(`
		UPDATE blogs SET
			status = $1, wordpress_url = $2, wordpress_post_id = $3,
			published_at = $4, category_id = $5, tag_ids = $6,
			meta_description = $7, updated_at = NOW()
		WHERE id = $8`,
		models.BlogStatusPublished, res.WordPressURL, res.WordPressPostID,
		res.PublishedAt, res.CategoryID, tagIDs, res.MetaDescription, id,
	)
	if err != nil {
		return fmt.Errorf("update blog publication: %w", err)
	}
	return nil
}

// UpdateBackup records a successful GitHub mirror of the blog.
func (s *BlogStore) UpdateBackup(id uuid.UUID, filePath, commitSHA string) error {
	_, err := s.db.Exec(`
		UPDATE blogs SET
			github_file_path = $1, github_commit_sha = $2,
			backed_up_to_github = TRUE, updated_at = NOW()
		WHERE id = $3`,
		filePath, commitSHA, id,
	)
	if err != nil {
		return fmt.Errorf("update blog backup: %w", err)
	}
	return nil
}

// Delete removes a blog by ID. Blogs are never deleted automatically; this
// backs the explicit delete endpoint only.
func (s *BlogStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	return nil
}

// Count returns the number of stored blogs.
func (s *BlogStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM blogs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count blogs: %w", err)
	}
	return count, nil
}
