// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Settings is a convenience map of key/value configuration pairs.
type Settings map[string]string

// Setting keys for the stored WordPress destination.
const (
	SettingWordPressURL      = "wordpress_url"
	SettingWordPressUser     = "wordpress_username"
	SettingWordPressPassword = "wordpress_app_password"
)

// WordPressCredentials is the target CMS destination for a publish.
// Password is a WordPress application password, never a login password,
// and must never be rendered back to a client.
type WordPressCredentials struct {
	URL      string `json:"wordpress_url"`
	Username string `json:"username"`
	Password string `json:"-"`
}

// Valid reports whether all three fields are present.
func (c WordPressCredentials) Valid() bool {
	return c.URL != "" && c.Username != "" && c.Password != ""
}
