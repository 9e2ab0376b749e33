package store

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"blogforge/internal/models"
)

func testKeyword() string {
	return "test-keyword-" + uuid.NewString()[:8]
}

func TestBlogStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewBlogStore(db)

	kw := testKeyword()
	t.Cleanup(func() { cleanBlogs(t, db, kw) })

	created, err := s.Create(&models.Blog{
		Keyword:   kw,
		Title:     "Test Article",
		Content:   "# Test Article\n\nBody.\n\n![cover](https://images.example.com/cover.jpg)\n",
		WordCount: 3,
		Images: []models.BlogImage{
			{ID: "1", URL: "https://images.example.com/cover.jpg", Description: "cover", Photographer: "Ana"},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if created.Status != models.BlogStatusDraft {
		t.Errorf("status: got %q, want draft", created.Status)
	}
	if created.PublishedAt != nil {
		t.Error("expected nil published_at for a new blog")
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("created blog not found")
	}
	if found.Title != "Test Article" || found.WordCount != 3 {
		t.Errorf("found %+v", found)
	}
	if len(found.Images) != 1 || found.Images[0].Photographer != "Ana" {
		t.Errorf("images did not round-trip: %+v", found.Images)
	}
}

func TestBlogStoreFindMissingReturnsNil(t *testing.T) {
	db := testDB(t)
	s := NewBlogStore(db)

	found, err := s.FindByID(uuid.New())
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found != nil {
		t.Errorf("expected nil for unknown ID, got %+v", found)
	}
}

func TestBlogStoreUpdateContent(t *testing.T) {
	db := testDB(t)
	s := NewBlogStore(db)

	kw := testKeyword()
	t.Cleanup(func() { cleanBlogs(t, db, kw) })

	created, err := s.Create(&models.Blog{Keyword: kw, Title: "Old", Content: "old", WordCount: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.UpdateContent(created.ID, "New Title", "brand new content", 3); err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Title != "New Title" || found.Content != "brand new content" || found.WordCount != 3 {
		t.Errorf("update not applied: %+v", found)
	}
}

func TestBlogStoreUpdatePublication(t *testing.T) {
	db := testDB(t)
	s := NewBlogStore(db)

	kw := testKeyword()
	t.Cleanup(func() { cleanBlogs(t, db, kw) })

	created, err := s.Create(&models.Blog{Keyword: kw, Title: "To Publish", Content: "body", WordCount: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	catID := 5
	res := models.PublicationResult{
		WordPressURL:    "https://blog.example.com/post-1",
		WordPressPostID: 321,
		PublishedAt:     time.Now(),
		CategoryID:      &catID,
		TagIDs:          []int{7, 9},
		MetaDescription: "A test post.",
	}
	if err := s.UpdatePublication(created.ID, res); err != nil {
		t.Fatalf("UpdatePublication: %v", err)
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Status != models.BlogStatusPublished {
		t.Errorf("status = %q, want published", found.Status)
	}
	if found.WordPressURL == nil || *found.WordPressURL != res.WordPressURL {
		t.Errorf("wordpress_url = %v", found.WordPressURL)
	}
	if found.WordPressPostID == nil || *found.WordPressPostID != 321 {
		t.Errorf("wordpress_post_id = %v", found.WordPressPostID)
	}
	if found.CategoryID == nil || *found.CategoryID != 5 {
		t.Errorf("category_id = %v", found.CategoryID)
	}
	if len(found.TagIDs) != 2 {
		t.Errorf("tag_ids = %v", found.TagIDs)
	}
	if found.PublishedAt == nil {
		t.Error("published_at not set")
	}
}

func TestBlogStoreUpdateBackup(t *testing.T) {
	db := testDB(t)
	s := NewBlogStore(db)

	kw := testKeyword()
	t.Cleanup(func() { cleanBlogs(t, db, kw) })

	created, err := s.Create(&models.Blog{Keyword: kw, Title: "To Mirror", Content: "body", WordCount: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.UpdateBackup(created.ID, "posts/to-mirror.md", "abc123"); err != nil {
		t.Fatalf("UpdateBackup: %v", err)
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !found.BackedUpToGithub {
		t.Error("backed_up_to_github not set")
	}
	if found.GithubFilePath == nil || *found.GithubFilePath != "posts/to-mirror.md" {
		t.Errorf("github_file_path = %v", found.GithubFilePath)
	}
	if found.GithubCommitSHA == nil || *found.GithubCommitSHA != "abc123" {
		t.Errorf("github_commit_sha = %v", found.GithubCommitSHA)
	}
}

func TestBlogStoreUpdateImagesKeepsContentInStep(t *testing.T) {
	db := testDB(t)
	s := NewBlogStore(db)

	kw := testKeyword()
	t.Cleanup(func() { cleanBlogs(t, db, kw) })

	created, err := s.Create(&models.Blog{
		Keyword: kw, Title: "With Images", WordCount: 1,
		Content: "![old](https://images.example.com/old.jpg)",
		Images:  []models.BlogImage{{ID: "1", URL: "https://images.example.com/old.jpg"}},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newContent := "![new](https://images.example.com/new.jpg)"
	newImages := []models.BlogImage{{ID: "2", URL: "https://images.example.com/new.jpg"}}
	if err := s.UpdateImages(created.ID, newContent, newImages); err != nil {
		t.Fatalf("UpdateImages: %v", err)
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Content != newContent {
		t.Errorf("content = %q", found.Content)
	}
	if len(found.Images) != 1 || found.Images[0].ID != "2" {
		t.Errorf("images = %+v", found.Images)
	}
}

func TestBlogStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewBlogStore(db)

	kw := testKeyword()
	t.Cleanup(func() { cleanBlogs(t, db, kw) })

	created, err := s.Create(&models.Blog{Keyword: kw, Title: "Doomed", Content: "x", WordCount: 1})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Delete(created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID after delete: %v", err)
	}
	if found != nil {
		t.Error("blog still present after delete")
	}
}
