// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
)

// BackupBlog mirrors one blog to the configured GitHub repository on
// demand (published blogs are mirrored automatically after publish).
// POST /api/blogs/{id}/backup
func (a *API) BackupBlog(w http.ResponseWriter, r *http.Request) {
	if a.mirror == nil {
		writeError(w, http.StatusServiceUnavailable, "github mirroring is not configured")
		return
	}

	blog, ok := a.loadBlog(w, r)
	if !ok {
		return
	}

	filePath, commitSHA, err := a.mirror.MirrorBlog(r.Context(), blog)
	if err != nil {
		slog.Error("blog backup failed", "blog_id", blog.ID, "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":   "github backup failed",
			"details": err.Error(),
		})
		return
	}

	if err := a.blogs.UpdateBackup(blog.ID, filePath, commitSHA); err != nil {
		slog.Error("blog backup not recorded", "blog_id", blog.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"filePath":  filePath,
		"commitSha": commitSHA,
	})
}
