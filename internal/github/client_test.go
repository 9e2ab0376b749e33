// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"blogforge/internal/models"
)

// fakeRepo emulates the contents API for a single repository.
type fakeRepo struct {
	files   map[string]string // path -> decoded content
	shas    map[string]string // path -> blob sha
	lastPut map[string]any
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{files: map[string]string{}, shas: map[string]string{}}
}

func (f *fakeRepo) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const prefix = "/repos/acme/blog-mirror/contents/"
		if !strings.HasPrefix(r.URL.Path, prefix) {
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		path := strings.TrimPrefix(r.URL.Path, prefix)

		switch r.Method {
		case http.MethodGet:
			sha, ok := f.shas[path]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"message":"Not Found"}`))
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"sha": sha})

		case http.MethodPut:
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			f.lastPut = body

			decoded, err := base64.StdEncoding.DecodeString(body["content"].(string))
			if err != nil {
				t.Errorf("content is not valid base64: %v", err)
			}
			f.files[path] = string(decoded)
			f.shas[path] = "blob-" + path
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"content":{"sha":"blob-x"},"commit":{"sha":"commit-123"}}`))
		}
	}
}

func newTestClient(t *testing.T, repo *fakeRepo) (*Client, *httptest.Server) {
	srv := httptest.NewServer(repo.handler(t))
	return New(srv.URL, "gh-token", "acme", "blog-mirror", "main"), srv
}

func TestMirrorBlogCreatesFile(t *testing.T) {
	repo := newFakeRepo()
	client, srv := newTestClient(t, repo)
	defer srv.Close()

	publishedAt := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	wpURL := "https://blog.example.com/remote-work"
	blog := &models.Blog{
		ID:           uuid.New(),
		Keyword:      "remote work",
		Title:        "Remote Work in Practice",
		Content:      "# Remote Work in Practice\n\nBody.",
		PublishedAt:  &publishedAt,
		WordPressURL: &wpURL,
	}

	path, sha, err := client.MirrorBlog(context.Background(), blog)
	if err != nil {
		t.Fatalf("MirrorBlog: %v", err)
	}
	if path != "posts/remote-work-in-practice.md" {
		t.Errorf("path: got %q", path)
	}
	if sha != "commit-123" {
		t.Errorf("sha: got %q", sha)
	}

	content := repo.files[path]
	if !strings.HasPrefix(content, "---\n") {
		t.Error("mirrored file should start with front matter")
	}
	if !strings.Contains(content, "wordpress_url: "+wpURL) {
		t.Error("front matter missing wordpress_url")
	}
	if !strings.Contains(content, "# Remote Work in Practice") {
		t.Error("mirrored file missing article body")
	}
}

func TestUploadFileUpdateSendsExistingSHA(t *testing.T) {
	repo := newFakeRepo()
	repo.shas["posts/old.md"] = "blob-old"
	client, srv := newTestClient(t, repo)
	defer srv.Close()

	if _, err := client.UploadFile(context.Background(), "posts/old.md", "update", []byte("new body")); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if repo.lastPut["sha"] != "blob-old" {
		t.Errorf("update should carry the existing blob sha, got %v", repo.lastPut["sha"])
	}
	if repo.lastPut["branch"] != "main" {
		t.Errorf("branch: got %v", repo.lastPut["branch"])
	}
}

func TestUploadFileCreateOmitsSHA(t *testing.T) {
	repo := newFakeRepo()
	client, srv := newTestClient(t, repo)
	defer srv.Close()

	if _, err := client.UploadFile(context.Background(), "posts/new.md", "create", []byte("body")); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if _, ok := repo.lastPut["sha"]; ok {
		t.Error("create should not send a blob sha")
	}
}

func TestUploadFileAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"commit":{"sha":"c"}}`))
	}))
	defer srv.Close()

	client := New(srv.URL, "gh-token", "acme", "blog-mirror", "")
	if _, err := client.UploadFile(context.Background(), "f.md", "m", []byte("x")); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if gotAuth != "Bearer gh-token" {
		t.Errorf("Authorization: got %q", gotAuth)
	}
}

func TestUploadFileServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, "t", "o", "r", "main")
	if _, err := client.UploadFile(context.Background(), "f.md", "m", []byte("x")); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
