// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package wordpress

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const (
	maxImageBytes   = 10 << 20 // 10 MB
	downloadTimeout = 30 * time.Second
	uploadTimeout   = 60 * time.Second
)

// UploadFeaturedImage downloads an image and re-uploads it as WordPress
// media, returning the media ID. Single attempt, never an error: every
// failure (timeout, oversized payload, bad status) is logged and yields
// nil, so a dead image URL cannot block the rest of the publish.
func (c *Client) UploadFeaturedImage(ctx context.Context, imageURL, altText string) *int {
	if imageURL == "" {
		return nil
	}

	data, contentType, err := downloadImage(ctx, imageURL)
	if err != nil {
		slog.Warn("featured image download failed", "url", imageURL, "error", err)
		return nil
	}

	uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	id, err := c.uploadMedia(uploadCtx, imageFilename(imageURL, contentType), contentType, data, altText)
	if err != nil {
		slog.Warn("featured image upload failed", "url", imageURL, "error", err)
		return nil
	}

	slog.Info("featured image uploaded", "media_id", id)
	return &id
}

// downloadImage fetches the image bytes with a size cap and bounded timeout.
func downloadImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("download status %d", resp.StatusCode)
	}
	if resp.ContentLength > maxImageBytes {
		return nil, "", fmt.Errorf("image too large: %d bytes", resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// imageFilename derives an upload filename from the source URL, falling
// back to an extension matching the content type.
func imageFilename(imageURL, contentType string) string {
	if u, err := url.Parse(imageURL); err == nil {
		if name := path.Base(u.Path); name != "" && name != "/" && name != "." && strings.Contains(name, ".") {
			return name
		}
	}

	ext := ".jpg"
	switch contentType {
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	case "image/gif":
		ext = ".gif"
	}
	return "featured" + ext
}
