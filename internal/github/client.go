// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package github mirrors published articles and source backups into a
// GitHub repository through the contents API. Mirroring is always
// best-effort: callers log failures and move on.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"blogforge/internal/models"
	"blogforge/internal/slug"
)

const requestTimeout = 30 * time.Second

// Client commits files to one repository branch.
type Client struct {
	baseURL string
	token   string
	owner   string
	repo    string
	branch  string
	http    *http.Client
}

// New creates a GitHub client. baseURL is overridable for tests; pass ""
// for api.github.com. branch defaults to "main".
func New(baseURL, token, owner, repo, branch string) *Client {
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	if branch == "" {
		branch = "main"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		owner:   owner,
		repo:    repo,
		branch:  branch,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

// MirrorBlog commits a published blog as posts/<slug>.md with a small
// front-matter header. Returns the file path and the commit SHA.
func (c *Client) MirrorBlog(ctx context.Context, blog *models.Blog) (string, string, error) {
	path := "posts/" + slug.Filename(blog.Title, blog.ID.String())

	var sb strings.Builder
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "title: %q\n", blog.Title)
	fmt.Fprintf(&sb, "keyword: %q\n", blog.Keyword)
	if blog.PublishedAt != nil {
		fmt.Fprintf(&sb, "published_at: %s\n", blog.PublishedAt.Format(time.RFC3339))
	}
	if blog.WordPressURL != nil {
		fmt.Fprintf(&sb, "wordpress_url: %s\n", *blog.WordPressURL)
	}
	sb.WriteString("---\n\n")
	sb.WriteString(blog.Content)

	commitSHA, err := c.UploadFile(ctx, path, "Mirror post: "+blog.Title, []byte(sb.String()))
	if err != nil {
		return "", "", err
	}
	return path, commitSHA, nil
}

// UploadFile creates or updates one file and returns the commit SHA. An
// existing file's blob SHA is looked up first, as the contents API
// requires it for updates.
func (c *Client) UploadFile(ctx context.Context, path, message string, data []byte) (string, error) {
	existingSHA, err := c.fileSHA(ctx, path)
	if err != nil {
		return "", err
	}

	body := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(data),
		"branch":  c.branch,
	}
	if existingSHA != "" {
		body["sha"] = existingSHA
	}

	var result struct {
		Commit struct {
			SHA string `json:"sha"`
		} `json:"commit"`
	}
	if err := c.do(ctx, http.MethodPut, c.contentsURL(path), body, &result); err != nil {
		return "", fmt.Errorf("github upload %s: %w", path, err)
	}
	if result.Commit.SHA == "" {
		return "", fmt.Errorf("github upload %s: no commit sha in response", path)
	}
	return result.Commit.SHA, nil
}

// fileSHA returns the blob SHA of an existing file, or "" if absent.
func (c *Client) fileSHA(ctx context.Context, path string) (string, error) {
	var file struct {
		SHA string `json:"sha"`
	}
	err := c.do(ctx, http.MethodGet, c.contentsURL(path)+"?ref="+url.QueryEscape(c.branch), nil, &file)
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) && apiErr.status == http.StatusNotFound {
			return "", nil
		}
		return "", fmt.Errorf("github lookup %s: %w", path, err)
	}
	return file.SHA, nil
}

func (c *Client) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, c.owner, c.repo, path)
}

type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("github API error (status %d): %s", e.status, e.body)
}

// do performs one authenticated API call with JSON in and out.
func (c *Client) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = strings.NewReader(string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
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
		return &apiError{status: resp.StatusCode, body: string(raw)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
