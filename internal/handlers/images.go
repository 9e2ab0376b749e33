// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ReplaceImage swaps the image at a position in the article: a fresh stock
// photo by default, or an AI-generated one when "generate" is set. The
// index addresses the n-th markdown image reference in reading order, and
// the stored image list is rewritten in the same statement so the two stay
// in step.
// POST /api/blogs/{id}/images/{index} {"query": "...", "generate": false}
func (a *API) ReplaceImage(w http.ResponseWriter, r *http.Request) {
	if a.images == nil {
		writeError(w, http.StatusServiceUnavailable, "image replacement is not configured")
		return
	}

	blog, ok := a.loadBlog(w, r)
	if !ok {
		return
	}

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, "invalid image index")
		return
	}

	var req struct {
		Query    string `json:"query"`
		Generate bool   `json:"generate"`
	}
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Query == "" {
		req.Query = blog.Keyword
	}

	content, images, err := a.images.Replace(r.Context(), blog, index, req.Query, req.Generate)
	if err != nil {
		slog.Error("image replace failed", "blog_id", blog.ID, "index", index, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if err := a.blogs.UpdateImages(blog.ID, content, images); err != nil {
		slog.Error("image replace not persisted", "blog_id", blog.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save images")
		return
	}

	blog.Content = content
	blog.Images = images
	writeJSON(w, http.StatusOK, blog)
}
