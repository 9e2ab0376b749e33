// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"blogforge/internal/ai"
	"blogforge/internal/markdown"
	"blogforge/internal/models"
	"blogforge/internal/pexels"
	"blogforge/internal/storage"
)

func testBlog() *models.Blog {
	return &models.Blog{
		ID:      uuid.New(),
		Keyword: "urban gardening",
		Title:   "Urban Gardening",
		Content: "# Urban Gardening\n\nIntro paragraph.\n\n" +
			"![balcony herbs](https://images.example.com/old-1.jpg)\n\n" +
			"## Getting Started\n\nMore text.\n\n" +
			"![tomato plants](https://images.example.com/old-2.jpg)\n",
		Images: []models.BlogImage{
			{ID: "1", URL: "https://images.example.com/old-1.jpg", Description: "balcony herbs"},
			{ID: "2", URL: "https://images.example.com/old-2.jpg", Description: "tomato plants"},
		},
	}
}

func photoJSON(id int, large, alt string) string {
	return fmt.Sprintf(`{"id":%d,"url":"https://pexels.example.com/photo/%d","photographer":"Ana","alt":%q,"src":{"large":%q,"medium":%q}}`,
		id, id, alt, large, large+"?w=400")
}

func newPhotoClient(t *testing.T, photos ...string) *pexels.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"photos":[%s]}`, strings.Join(photos, ","))
	}))
	t.Cleanup(srv.Close)
	return pexels.New(srv.URL, pexels.NewKeyRing([]string{"key"}))
}

func TestReplaceStockUpdatesContentAndImages(t *testing.T) {
	photos := newPhotoClient(t,
		photoJSON(10, "https://images.example.com/fresh.jpg", "raised garden beds"),
	)
	svc := NewService(photos, nil, nil)

	blog := testBlog()
	content, imgs, err := svc.Replace(context.Background(), blog, 1, "garden beds", false)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}

	refs := markdown.ImageRefs(content)
	if len(refs) != 2 {
		t.Fatalf("got %d image refs, want 2", len(refs))
	}
	if refs[0].URL != "https://images.example.com/old-1.jpg" {
		t.Errorf("first ref changed: %s", refs[0].URL)
	}
	if refs[1].URL != "https://images.example.com/fresh.jpg" {
		t.Errorf("second ref = %s, want fresh.jpg", refs[1].URL)
	}
	if refs[1].Description != "raised garden beds" {
		t.Errorf("second ref description = %q", refs[1].Description)
	}

	if len(imgs) != 2 {
		t.Fatalf("got %d images, want 2", len(imgs))
	}
	if imgs[0].ID != "1" {
		t.Errorf("first image replaced unexpectedly: %+v", imgs[0])
	}
	if imgs[1].URL != "https://images.example.com/fresh.jpg" || imgs[1].Photographer != "Ana" {
		t.Errorf("second image not replaced: %+v", imgs[1])
	}
	if blog.Images[1].URL != "https://images.example.com/old-2.jpg" {
		t.Error("Replace mutated the caller's image slice")
	}
}

func TestReplaceStockSkipsPhotosAlreadyInUse(t *testing.T) {
	photos := newPhotoClient(t,
		photoJSON(10, "https://images.example.com/old-1.jpg", "already used"),
		photoJSON(11, "https://images.example.com/unused.jpg", "brand new"),
	)
	svc := NewService(photos, nil, nil)

	_, imgs, err := svc.Replace(context.Background(), testBlog(), 0, "herbs", false)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if imgs[0].URL != "https://images.example.com/unused.jpg" {
		t.Errorf("picked %s, want the photo not already in the article", imgs[0].URL)
	}
}

func TestReplaceIndexOutOfRange(t *testing.T) {
	svc := NewService(newPhotoClient(t), nil, nil)
	if _, _, err := svc.Replace(context.Background(), testBlog(), 5, "herbs", false); err == nil {
		t.Fatal("expected error for out-of-range index")
	}
}

func TestReplaceStockNoResults(t *testing.T) {
	svc := NewService(newPhotoClient(t), nil, nil)
	if _, _, err := svc.Replace(context.Background(), testBlog(), 0, "herbs", false); err == nil {
		t.Fatal("expected error when search returns no photos")
	}
}

// imageProvider is a test AI provider that returns canned image bytes.
type imageProvider struct {
	data []byte
	err  error
}

func (p *imageProvider) Generate(ctx context.Context, system, user string) (string, error) {
	return "", nil
}

func (p *imageProvider) Complete(ctx context.Context, system, user string, opts ai.Options) (string, error) {
	return "", nil
}

func (p *imageProvider) Name() string { return "fake" }

func (p *imageProvider) GenerateImage(ctx context.Context, prompt string) ([]byte, string, error) {
	return p.data, "image/png", p.err
}

func newImageRegistry(data []byte, err error) *ai.Registry {
	r := ai.NewRegistry("fake", nil)
	r.Register("fake", &imageProvider{data: data, err: err})
	return r
}

// encodePNG renders a solid PNG of the given size.
func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// fakeBucket records S3 PUTs and accepts them all.
type fakeBucket struct {
	mu   sync.Mutex
	keys []string
}

func (b *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPut {
		b.mu.Lock()
		b.keys = append(b.keys, r.URL.Path)
		b.mu.Unlock()
	}
	w.WriteHeader(http.StatusOK)
}

func newTestStorage(t *testing.T, bucket *fakeBucket) *storage.Client {
	t.Helper()
	srv := httptest.NewServer(bucket)
	t.Cleanup(srv.Close)
	client, err := storage.New(srv.URL, "us-east-1", "access", "secret", "media", "https://cdn.example.com")
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	return client
}

func TestReplaceGenerateUploadsImageAndThumbnail(t *testing.T) {
	bucket := &fakeBucket{}
	svc := NewService(nil, newImageRegistry(encodePNG(t, 800, 600), nil), newTestStorage(t, bucket))

	content, imgs, err := svc.Replace(context.Background(), testBlog(), 0, "watercolor of a rooftop garden", true)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}

	bucket.mu.Lock()
	keys := append([]string(nil), bucket.keys...)
	bucket.mu.Unlock()
	if len(keys) != 2 {
		t.Fatalf("got %d uploads, want image + thumbnail: %v", len(keys), keys)
	}
	if !strings.HasSuffix(keys[0], ".png") {
		t.Errorf("image key = %s, want .png", keys[0])
	}
	if !strings.HasSuffix(keys[1], "_thumb.jpg") {
		t.Errorf("thumbnail key = %s, want _thumb.jpg", keys[1])
	}

	img := imgs[0]
	if !strings.HasPrefix(img.URL, "https://cdn.example.com/images/") {
		t.Errorf("image URL = %s, want cdn-hosted", img.URL)
	}
	if !strings.HasSuffix(img.ThumbURL, "_thumb.jpg") {
		t.Errorf("thumb URL = %s", img.ThumbURL)
	}
	if img.Description != "watercolor of a rooftop garden" {
		t.Errorf("description = %q, want the prompt", img.Description)
	}

	refs := markdown.ImageRefs(content)
	if refs[0].URL != img.URL {
		t.Errorf("content ref %s does not match image %s", refs[0].URL, img.URL)
	}
}

func TestReplaceGenerateSmallImageSkipsThumbnail(t *testing.T) {
	bucket := &fakeBucket{}
	svc := NewService(nil, newImageRegistry(encodePNG(t, 200, 150), nil), newTestStorage(t, bucket))

	_, imgs, err := svc.Replace(context.Background(), testBlog(), 0, "tiny sketch", true)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}

	bucket.mu.Lock()
	uploads := len(bucket.keys)
	bucket.mu.Unlock()
	if uploads != 1 {
		t.Fatalf("got %d uploads, want 1 (no thumbnail for small images)", uploads)
	}
	if imgs[0].ThumbURL != imgs[0].URL {
		t.Errorf("thumb URL = %s, want same as image URL", imgs[0].ThumbURL)
	}
}

func TestReplaceGenerateWithoutStorage(t *testing.T) {
	svc := NewService(nil, newImageRegistry(encodePNG(t, 200, 150), nil), nil)
	if _, _, err := svc.Replace(context.Background(), testBlog(), 0, "sketch", true); err == nil {
		t.Fatal("expected error when storage is not configured")
	}
}

func TestReplaceGenerateProviderFailure(t *testing.T) {
	bucket := &fakeBucket{}
	svc := NewService(nil, newImageRegistry(nil, fmt.Errorf("model overloaded")), newTestStorage(t, bucket))
	if _, _, err := svc.Replace(context.Background(), testBlog(), 0, "sketch", true); err == nil {
		t.Fatal("expected error when generation fails")
	}
}

func TestGenerateThumbnailScalesDown(t *testing.T) {
	data := encodePNG(t, 800, 600)
	thumb, err := generateThumbnail(bytes.NewReader(data), thumbMaxWidth)
	if err != nil {
		t.Fatalf("generateThumbnail: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("decode thumbnail: %v", err)
	}
	if cfg.Width != thumbMaxWidth {
		t.Errorf("thumbnail width = %d, want %d", cfg.Width, thumbMaxWidth)
	}
	if cfg.Height != 300 {
		t.Errorf("thumbnail height = %d, want 300", cfg.Height)
	}
}

func TestGenerateThumbnailSkipsSmallImages(t *testing.T) {
	data := encodePNG(t, 300, 200)
	thumb, err := generateThumbnail(bytes.NewReader(data), thumbMaxWidth)
	if err != nil {
		t.Fatalf("generateThumbnail: %v", err)
	}
	if thumb != nil {
		t.Error("expected nil thumbnail for an image already under the width cap")
	}
}
