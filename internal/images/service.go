// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package images replaces article images in place: a fresh stock photo
// from Pexels, or a DALL-E-generated image hosted on the app's own object
// storage. The markdown reference and the stored image list are rewritten
// together so their order never drifts through this path.
package images

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"blogforge/internal/ai"
	"blogforge/internal/markdown"
	"blogforge/internal/models"
	"blogforge/internal/pexels"
	"blogforge/internal/storage"
)

// Service finds or generates replacement images.
type Service struct {
	photos  *pexels.Client
	ai      *ai.Registry
	storage *storage.Client // nil disables AI generation
}

// NewService creates the image replacement service. storage may be nil.
func NewService(photos *pexels.Client, registry *ai.Registry, store *storage.Client) *Service {
	return &Service{photos: photos, ai: registry, storage: store}
}

// Replace swaps the index-th image reference (reading order) of the blog
// and the matching entry of its image list. Returns the new content and
// image list; the caller persists both in one statement.
func (s *Service) Replace(ctx context.Context, blog *models.Blog, index int, query string, generate bool) (string, []models.BlogImage, error) {
	refs := markdown.ImageRefs(blog.Content)
	if index < 0 || index >= len(refs) {
		return "", nil, fmt.Errorf("image index %d out of range (%d references)", index, len(refs))
	}

	var (
		img models.BlogImage
		err error
	)
	if generate {
		img, err = s.generateImage(ctx, query)
	} else {
		img, err = s.stockImage(ctx, blog, query)
	}
	if err != nil {
		return "", nil, err
	}

	content, err := markdown.ReplaceImageRef(blog.Content, index, img.Description, img.URL)
	if err != nil {
		return "", nil, err
	}

	images := make([]models.BlogImage, len(blog.Images))
	copy(images, blog.Images)
	if index < len(images) {
		images[index] = img
	} else {
		// The image list drifted behind the markdown references; extend it
		// rather than dropping the replacement on the floor.
		slog.Warn("image list shorter than markdown references", "blog_id", blog.ID, "index", index)
		images = append(images, img)
	}

	return content, images, nil
}

// stockImage searches Pexels and picks the first photo the blog is not
// already using.
func (s *Service) stockImage(ctx context.Context, blog *models.Blog, query string) (models.BlogImage, error) {
	if s.photos == nil {
		return models.BlogImage{}, fmt.Errorf("stock photo search is not configured")
	}

	photos, err := s.photos.Search(ctx, query, 5)
	if err != nil {
		return models.BlogImage{}, fmt.Errorf("photo search: %w", err)
	}
	if len(photos) == 0 {
		return models.BlogImage{}, fmt.Errorf("no photos found for %q", query)
	}

	inUse := make(map[string]bool, len(blog.Images))
	for _, existing := range blog.Images {
		inUse[existing.URL] = true
	}

	chosen := photos[0]
	for _, p := range photos {
		if !inUse[p.Src.Large] {
			chosen = p
			break
		}
	}

	desc := chosen.Alt
	if desc == "" {
		desc = query
	}
	return models.BlogImage{
		ID:           strconv.Itoa(chosen.ID),
		URL:          chosen.Src.Large,
		ThumbURL:     chosen.Src.Medium,
		Description:  desc,
		Photographer: chosen.Photographer,
		DownloadURL:  chosen.URL,
	}, nil
}

// generateImage produces an image with the active AI provider and hosts
// it on object storage, with a JPEG thumbnail alongside.
func (s *Service) generateImage(ctx context.Context, prompt string) (models.BlogImage, error) {
	if s.storage == nil {
		return models.BlogImage{}, fmt.Errorf("object storage is not configured; cannot host generated images")
	}
	if s.ai == nil || !s.ai.SupportsImageGeneration() {
		return models.BlogImage{}, fmt.Errorf("active AI provider does not support image generation")
	}

	data, contentType, err := s.ai.GenerateImage(ctx, prompt)
	if err != nil {
		return models.BlogImage{}, fmt.Errorf("image generation: %w", err)
	}

	ext := ".png"
	switch contentType {
	case "image/jpeg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	}

	now := time.Now()
	fileID := uuid.New().String()
	key := fmt.Sprintf("images/%d/%02d/%s%s", now.Year(), now.Month(), fileID, ext)
	if err := s.storage.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return models.BlogImage{}, fmt.Errorf("host generated image: %w", err)
	}

	thumbURL := s.storage.FileURL(key)
	if thumb, err := generateThumbnail(bytes.NewReader(data), thumbMaxWidth); err != nil {
		slog.Warn("thumbnail generation failed", "error", err)
	} else if thumb != nil {
		thumbKey := fmt.Sprintf("images/%d/%02d/%s_thumb.jpg", now.Year(), now.Month(), fileID)
		if err := s.storage.Upload(ctx, thumbKey, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err != nil {
			slog.Warn("thumbnail upload failed", "error", err)
		} else {
			thumbURL = s.storage.FileURL(thumbKey)
		}
	}

	url := s.storage.FileURL(key)
	return models.BlogImage{
		ID:          fileID,
		URL:         url,
		ThumbURL:    thumbURL,
		Description: prompt,
		DownloadURL: url,
	}, nil
}
