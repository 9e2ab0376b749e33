// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"time"

	"blogforge/internal/wordpress"
)

// publishRequest is the client payload for a publish call. All fields are
// optional; blanks fall back to stored settings and AI generation.
type publishRequest struct {
	WordPressURL    string   `json:"wordpressUrl"`
	Username        string   `json:"username"`
	Password        string   `json:"password"`
	CategoryID      *int     `json:"categoryId"`
	Tags            []string `json:"tags"`
	MetaDescription string   `json:"metaDescription"`
}

// publishResponse is the success payload.
type publishResponse struct {
	Success         bool      `json:"success"`
	WordPressURL    string    `json:"wordpressUrl"`
	PublishedAt     time.Time `json:"publishedAt"`
	CategoryID      *int      `json:"categoryId,omitempty"`
	TagIDs          []int     `json:"tagIds,omitempty"`
	MetaDescription string    `json:"metaDescription,omitempty"`
}

// PublishBlog runs the full WordPress publish pipeline for one blog.
// POST /api/blogs/{id}/publish
//
// Failure mapping: 404 when the blog does not exist, 401 with
// needsCredentials for anything only new credentials can fix, 502 for
// upstream failures after the retry budget is spent.
func (a *API) PublishBlog(w http.ResponseWriter, r *http.Request) {
	id, ok := blogID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid blog id")
		return
	}

	var req publishRequest
	if r.ContentLength > 0 {
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := a.publisher.Publish(r.Context(), id, wordpress.Request{
		WordPressURL:    req.WordPressURL,
		Username:        req.Username,
		Password:        req.Password,
		CategoryID:      req.CategoryID,
		Tags:            req.Tags,
		MetaDescription: req.MetaDescription,
	})
	if err != nil {
		switch {
		case errors.Is(err, wordpress.ErrBlogNotFound):
			writeError(w, http.StatusNotFound, "blog not found")
		case wordpress.IsCredentialError(err):
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error":            "wordpress rejected the credentials",
				"needsCredentials": true,
			})
		default:
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":   "publishing failed",
				"details": err.Error(),
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, publishResponse{
		Success:         true,
		WordPressURL:    result.WordPressURL,
		PublishedAt:     result.PublishedAt,
		CategoryID:      result.CategoryID,
		TagIDs:          result.TagIDs,
		MetaDescription: result.MetaDescription,
	})
}
