// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package wordpress talks to a WordPress site's REST API and drives the
// publish pipeline: authentication, taxonomy resolution, featured-image
// upload and the post-create call with its retry loop.
package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"blogforge/internal/models"
)

const (
	authAttempts    = 3
	taxonomyTimeout = 15 * time.Second
	authTimeout     = 10 * time.Second
)

// APIError is a non-2xx response from the WordPress REST API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wordpress API error (status %d): %s", e.StatusCode, e.Body)
}

// IsAuthError reports whether err is a 401 or 403 API response. These are
// never retried: more attempts with the same credentials cannot succeed.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// Category is a WordPress category term.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Tag is a WordPress tag term.
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Post is the payload for creating a WordPress post.
type Post struct {
	Title         string `json:"title"`
	Content       string `json:"content"`
	Excerpt       string `json:"excerpt,omitempty"`
	Status        string `json:"status"`
	Categories    []int  `json:"categories,omitempty"`
	Tags          []int  `json:"tags,omitempty"`
	FeaturedMedia *int   `json:"featured_media,omitempty"`
}

// PostResult is the subset of the created-post response the pipeline needs.
type PostResult struct {
	ID   int    `json:"id"`
	Link string `json:"link"`
}

// Client is a Basic-Auth wrapper over one WordPress site's REST API.
// Every call carries its own timeout; nothing may hang indefinitely.
type Client struct {
	apiURL   string
	username string
	password string
	http     *http.Client
}

// NewClient creates a client for the site in creds. The base URL may be
// given with or without a trailing slash.
func NewClient(creds models.WordPressCredentials) *Client {
	base := strings.TrimRight(creds.URL, "/")
	return &Client{
		apiURL:   base + "/wp-json/wp/v2",
		username: creds.Username,
		password: creds.Password,
		// No client-level timeout: the post-create attempts use growing
		// per-call deadlines that a global timeout would cut short.
		http: &http.Client{},
	}
}

// Authenticate probes GET /users/me up to three times with a linear backoff
// (1s, 2s). Any success means the credentials work; three failures are
// treated as invalid credentials by the publisher.
func (c *Client) Authenticate(ctx context.Context) error {
	attempt := 0
	backoff := retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return time.Duration(attempt) * time.Second, false
	})

	err := retry.Do(ctx, retry.WithMaxRetries(authAttempts-1, backoff), func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, authTimeout)
		defer cancel()

		if err := c.doJSON(callCtx, http.MethodGet, "/users/me", nil, nil); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("wordpress auth probe: %w", err)
	}
	return nil
}

// Categories fetches the live category list.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, taxonomyTimeout)
	defer cancel()

	var cats []Category
	if err := c.doJSON(ctx, http.MethodGet, "/categories?per_page=100", nil, &cats); err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	return cats, nil
}

// Tags fetches the live tag list.
func (c *Client) Tags(ctx context.Context) ([]Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, taxonomyTimeout)
	defer cancel()

	var tags []Tag
	if err := c.doJSON(ctx, http.MethodGet, "/tags?per_page=100", nil, &tags); err != nil {
		return nil, fmt.Errorf("fetch tags: %w", err)
	}
	return tags, nil
}

// SearchTag looks up tags matching a name. WordPress search is fuzzy; the
// caller checks for an exact (case-insensitive) name match.
func (c *Client) SearchTag(ctx context.Context, name string) ([]Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, taxonomyTimeout)
	defer cancel()

	var tags []Tag
	path := "/tags?search=" + url.QueryEscape(name)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &tags); err != nil {
		return nil, fmt.Errorf("search tag %q: %w", name, err)
	}
	return tags, nil
}

// wpTermError is the error body WordPress returns for taxonomy conflicts.
type wpTermError struct {
	Code string `json:"code"`
	Data struct {
		TermID int `json:"term_id"`
	} `json:"data"`
}

// CreateTag creates a tag, resolving a term_exists conflict to the
// existing term's ID.
func (c *Client) CreateTag(ctx context.Context, name string) (*Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, taxonomyTimeout)
	defer cancel()

	var tag Tag
	err := c.doJSON(ctx, http.MethodPost, "/tags", map[string]string{"name": name}, &tag)
	if err == nil {
		return &tag, nil
	}

	if id, ok := existingTermID(err); ok {
		return &Tag{ID: id, Name: name}, nil
	}
	return nil, fmt.Errorf("create tag %q: %w", name, err)
}

// CreateCategory creates a category, resolving term_exists conflicts the
// same way as CreateTag.
func (c *Client) CreateCategory(ctx context.Context, name string) (*Category, error) {
	ctx, cancel := context.WithTimeout(ctx, taxonomyTimeout)
	defer cancel()

	var cat Category
	err := c.doJSON(ctx, http.MethodPost, "/categories", map[string]string{"name": name}, &cat)
	if err == nil {
		return &cat, nil
	}

	if id, ok := existingTermID(err); ok {
		return &Category{ID: id, Name: name}, nil
	}
	return nil, fmt.Errorf("create category %q: %w", name, err)
}

// existingTermID extracts the existing term ID from a term_exists error.
func existingTermID(err error) (int, bool) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		return 0, false
	}
	var termErr wpTermError
	if jsonErr := json.Unmarshal([]byte(apiErr.Body), &termErr); jsonErr != nil {
		return 0, false
	}
	if termErr.Code == "term_exists" && termErr.Data.TermID > 0 {
		return termErr.Data.TermID, true
	}
	return 0, false
}

// CreatePost publishes a post. The caller controls the deadline through
// ctx; this call does not retry on its own.
func (c *Client) CreatePost(ctx context.Context, post Post) (*PostResult, error) {
	var result PostResult
	if err := c.doJSON(ctx, http.MethodPost, "/posts", post, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// doJSON performs one authenticated API call. body (if non-nil) is sent as
// JSON; out (if non-nil) receives the decoded response. Non-2xx responses
// come back as *APIError.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// uploadMedia sends image bytes to /media as a multipart form and returns
// the new media ID.
func (c *Client) uploadMedia(ctx context.Context, filename, contentType string, data []byte, altText string) (int, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return 0, fmt.Errorf("build media form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return 0, fmt.Errorf("write media form: %w", err)
	}
	_ = form.WriteField("alt_text", altText)
	if err := form.Close(); err != nil {
		return 0, fmt.Errorf("close media form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/media", &buf)
	if err != nil {
		return 0, fmt.Errorf("build media request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var media struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return 0, fmt.Errorf("decode media response: %w", err)
	}
	if media.ID == 0 {
		return 0, fmt.Errorf("media upload returned no id")
	}
	return media.ID, nil
}
