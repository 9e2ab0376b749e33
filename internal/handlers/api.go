// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON API. Each handler group gets its
// dependencies injected through the API struct; the dependencies are
// narrow interfaces so handlers are testable against stubs.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogforge/internal/models"
	"blogforge/internal/wordpress"
)

// BlogStore is the blog persistence surface the handlers need.
type BlogStore interface {
	List() ([]models.Blog, error)
	FindByID(id uuid.UUID) (*models.Blog, error)
	Create(b *models.Blog) (*models.Blog, error)
	UpdateContent(id uuid.UUID, title, content string, wordCount int) error
	UpdateImages(id uuid.UUID, content string, images []models.BlogImage) error
	UpdateBackup(id uuid.UUID, filePath, commitSHA string) error
	Delete(id uuid.UUID) error
}

// SettingsStore is the settings persistence surface the handlers need.
type SettingsStore interface {
	All() (models.Settings, error)
	SetMany(settings map[string]string) error
}

// Publisher runs the WordPress publish pipeline for one blog.
type Publisher interface {
	Publish(ctx context.Context, blogID uuid.UUID, req wordpress.Request) (*wordpress.Result, error)
}

// ContentGenerator produces topics and articles.
type ContentGenerator interface {
	Topics(ctx context.Context, keyword string) ([]string, error)
	Article(ctx context.Context, keyword, topic string) (title, content string, images []models.BlogImage, err error)
}

// Mirrorer copies a blog to the GitHub mirror repository.
type Mirrorer interface {
	MirrorBlog(ctx context.Context, blog *models.Blog) (filePath, commitSHA string, err error)
}

// ImageSource finds or generates replacement images for a blog.
type ImageSource interface {
	Replace(ctx context.Context, blog *models.Blog, index int, query string, generate bool) (content string, images []models.BlogImage, err error)
}

// API bundles the handler dependencies. mirror and images may be nil when
// the corresponding integrations are not configured.
type API struct {
	blogs     BlogStore
	settings  SettingsStore
	generator ContentGenerator
	publisher Publisher
	mirror    Mirrorer
	images    ImageSource
}

// New creates the API handler set.
func New(blogs BlogStore, settings SettingsStore, gen ContentGenerator, pub Publisher, mirror Mirrorer, images ImageSource) *API {
	return &API{
		blogs:     blogs,
		settings:  settings,
		generator: gen,
		publisher: pub,
		mirror:    mirror,
		images:    images,
	}
}

// Health reports service liveness.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// blogID parses the {id} URL parameter.
func blogID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// readJSON decodes the request body into dst.
func readJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
