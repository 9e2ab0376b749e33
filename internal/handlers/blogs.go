// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"blogforge/internal/generator"
	"blogforge/internal/markdown"
	"blogforge/internal/models"
)

// Topics suggests blog topics for a seed keyword.
// POST /api/topics {"keyword": "..."}
func (a *API) Topics(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keyword string `json:"keyword"`
	}
	if err := readJSON(r, &req); err != nil || strings.TrimSpace(req.Keyword) == "" {
		writeError(w, http.StatusBadRequest, "keyword is required")
		return
	}

	topics, err := a.generator.Topics(r.Context(), req.Keyword)
	if err != nil {
		slog.Error("topic generation failed", "keyword", req.Keyword, "error", err)
		writeError(w, http.StatusBadGateway, "topic generation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

// CreateBlog generates an article for a chosen topic and stores it.
// POST /api/blogs {"keyword": "...", "topic": "..."}
func (a *API) CreateBlog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keyword string `json:"keyword"`
		Topic   string `json:"topic"`
	}
	if err := readJSON(r, &req); err != nil ||
		strings.TrimSpace(req.Keyword) == "" || strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, "keyword and topic are required")
		return
	}

	title, content, images, err := a.generator.Article(r.Context(), req.Keyword, req.Topic)
	if err != nil {
		slog.Error("article generation failed", "topic", req.Topic, "error", err)
		writeError(w, http.StatusBadGateway, "article generation failed")
		return
	}

	blog, err := a.blogs.Create(&models.Blog{
		Keyword:   req.Keyword,
		Title:     title,
		Content:   content,
		WordCount: generator.WordCount(content),
		Images:    images,
	})
	if err != nil {
		slog.Error("blog insert failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save blog")
		return
	}
	writeJSON(w, http.StatusCreated, blog)
}

// ListBlogs returns all blogs, newest first.
// GET /api/blogs
func (a *API) ListBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := a.blogs.List()
	if err != nil {
		slog.Error("blog list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list blogs")
		return
	}
	if blogs == nil {
		blogs = []models.Blog{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"blogs": blogs})
}

// GetBlog returns one blog by ID.
// GET /api/blogs/{id}
func (a *API) GetBlog(w http.ResponseWriter, r *http.Request) {
	blog, ok := a.loadBlog(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, blog)
}

// UpdateBlog edits a blog's title and markdown content. The word count is
// recomputed on every save.
// PUT /api/blogs/{id} {"title": "...", "content": "..."}
func (a *API) UpdateBlog(w http.ResponseWriter, r *http.Request) {
	blog, ok := a.loadBlog(w, r)
	if !ok {
		return
	}

	var req struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	title := blog.Title
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		title = strings.TrimSpace(*req.Title)
	}
	content := blog.Content
	if req.Content != nil {
		content = *req.Content
	}

	wordCount := generator.WordCount(content)
	if err := a.blogs.UpdateContent(blog.ID, title, content, wordCount); err != nil {
		slog.Error("blog update failed", "blog_id", blog.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update blog")
		return
	}

	blog.Title = title
	blog.Content = content
	blog.WordCount = wordCount
	writeJSON(w, http.StatusOK, blog)
}

// DeleteBlog removes a blog. Blogs are only ever deleted through this
// endpoint, never automatically.
// DELETE /api/blogs/{id}
func (a *API) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	blog, ok := a.loadBlog(w, r)
	if !ok {
		return
	}
	if err := a.blogs.Delete(blog.ID); err != nil {
		slog.Error("blog delete failed", "blog_id", blog.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete blog")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PreviewBlog renders the article markdown to HTML for the editor.
// GET /api/blogs/{id}/preview
func (a *API) PreviewBlog(w http.ResponseWriter, r *http.Request) {
	blog, ok := a.loadBlog(w, r)
	if !ok {
		return
	}

	html, err := markdown.Preview(blog.Content)
	if err != nil {
		slog.Error("preview render failed", "blog_id", blog.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render preview")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"html": html})
}

// loadBlog resolves the {id} parameter to a blog, writing the error
// response itself when the ID is malformed or unknown.
func (a *API) loadBlog(w http.ResponseWriter, r *http.Request) (*models.Blog, bool) {
	id, ok := blogID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid blog id")
		return nil, false
	}

	blog, err := a.blogs.FindByID(id)
	if err != nil {
		slog.Error("blog lookup failed", "blog_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load blog")
		return nil, false
	}
	if blog == nil {
		writeError(w, http.StatusNotFound, "blog not found")
		return nil, false
	}
	return blog, true
}
