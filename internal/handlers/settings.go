// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"blogforge/internal/models"
)

// GetWordPressSettings returns the stored destination. The application
// password is write-only: the response only says whether one is stored.
// GET /api/settings/wordpress
func (a *API) GetWordPressSettings(w http.ResponseWriter, r *http.Request) {
	all, err := a.settings.All()
	if err != nil {
		slog.Error("settings load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"url":         all[models.SettingWordPressURL],
		"username":    all[models.SettingWordPressUser],
		"hasPassword": all[models.SettingWordPressPassword] != "",
	})
}

// PutWordPressSettings updates the stored destination. An empty password
// keeps the current one, so clients can edit the URL without re-entering
// the secret.
// PUT /api/settings/wordpress {"url": "...", "username": "...", "password": "..."}
func (a *API) PutWordPressSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL      string `json:"url"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" || strings.TrimSpace(req.Username) == "" {
		writeError(w, http.StatusBadRequest, "url and username are required")
		return
	}

	update := map[string]string{
		models.SettingWordPressURL:  strings.TrimRight(strings.TrimSpace(req.URL), "/"),
		models.SettingWordPressUser: strings.TrimSpace(req.Username),
	}
	if req.Password != "" {
		update[models.SettingWordPressPassword] = req.Password
	}

	if err := a.settings.SetMany(update); err != nil {
		slog.Error("settings update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": true})
}
