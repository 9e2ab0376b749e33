// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package wordpress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"blogforge/internal/markdown"
	"blogforge/internal/models"
)

const (
	maxPostAttempts = 8

	basePostTimeout = 30 * time.Second
	postTimeoutStep = 15 * time.Second
	maxPostTimeout  = 135 * time.Second

	basePostDelay = 3 * time.Second
	maxPostDelay  = 60 * time.Second
)

var (
	// ErrBlogNotFound means the publish request named a blog that does not exist.
	ErrBlogNotFound = errors.New("blog not found")

	// ErrNoCredentials means neither the request nor the stored settings
	// carry a usable WordPress destination.
	ErrNoCredentials = errors.New("wordpress credentials not configured")
)

// CredentialError wraps failures only a credential change can fix: a failed
// auth probe or a 401/403 from the post-create call.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string { return e.Err.Error() }
func (e *CredentialError) Unwrap() error { return e.Err }

// IsCredentialError reports whether a publish failure should prompt the
// client for new credentials.
func IsCredentialError(err error) bool {
	var credErr *CredentialError
	return errors.As(err, &credErr) || errors.Is(err, ErrNoCredentials)
}

// BlogSource loads blogs and records publish and backup outcomes.
type BlogSource interface {
	FindByID(id uuid.UUID) (*models.Blog, error)
	UpdatePublication(id uuid.UUID, res models.PublicationResult) error
	UpdateBackup(id uuid.UUID, filePath, commitSHA string) error
}

// CredentialSource provides the stored WordPress destination.
type CredentialSource interface {
	WordPressCredentials() (models.WordPressCredentials, error)
}

// ContentAI generates tag names and meta descriptions. Both degrade
// internally and never fail.
type ContentAI interface {
	Tags(ctx context.Context, title, content string) []string
	MetaDescription(ctx context.Context, title, content string, fallback func(string) string) string
}

// Mirrorer copies a published blog to an external repository.
type Mirrorer interface {
	MirrorBlog(ctx context.Context, blog *models.Blog) (filePath, commitSHA string, err error)
}

// Request carries per-publish overrides. Zero-value fields fall back to
// stored settings (credentials) or AI generation (tags, meta description).
type Request struct {
	WordPressURL    string
	Username        string
	Password        string
	CategoryID      *int
	Tags            []string
	MetaDescription string
}

// Result is the success payload of one publish.
type Result struct {
	WordPressURL    string
	PostID          int
	PublishedAt     time.Time
	CategoryID      *int
	TagIDs          []int
	MetaDescription string
	FeaturedMediaID *int
}

// publishState tags the steps of the publish pipeline. Each state has one
// handler that returns the next state or a terminal error, which keeps the
// degrade-vs-abort policy testable per step.
type publishState int

const (
	stateLoadBlog publishState = iota
	stateAuthenticate
	stateGenerateTags
	stateResolveTaxonomy
	stateTransformContent
	stateUploadFeaturedImage
	stateCreatePost
	statePersistResult
	stateDone
)

// publishRun accumulates the data flowing between states of one publish.
type publishRun struct {
	blogID uuid.UUID
	req    Request

	blog       *models.Blog
	client     *Client
	tagNames   []string
	categoryID *int
	tagIDs     []int
	html       string
	excerpt    string
	metaDesc   string
	mediaID    *int
	post       *PostResult
	published  time.Time
}

// Publisher drives the publish state machine.
type Publisher struct {
	blogs  BlogSource
	creds  CredentialSource
	ai     ContentAI
	mirror Mirrorer // nil when GitHub mirroring is not configured

	// backoff builds the CreatePost retry schedule; injectable so retry
	// behaviour is testable without sleeping.
	backoff func() retry.Backoff
}

// NewPublisher creates a Publisher. mirror may be nil.
func NewPublisher(blogs BlogSource, creds CredentialSource, contentAI ContentAI, mirror Mirrorer) *Publisher {
	return &Publisher{
		blogs:   blogs,
		creds:   creds,
		ai:      contentAI,
		mirror:  mirror,
		backoff: CreatePostBackoff,
	}
}

// Publish runs the full pipeline for one blog and returns the publication
// result, or a terminal error (ErrBlogNotFound, a CredentialError, or the
// exhausted post-create failure).
func (p *Publisher) Publish(ctx context.Context, blogID uuid.UUID, req Request) (*Result, error) {
	run := &publishRun{blogID: blogID, req: req}

	for st := stateLoadBlog; st != stateDone; {
		next, err := p.step(ctx, st, run)
		if err != nil {
			slog.Error("publish failed", "blog_id", blogID, "state", st, "error", err)
			return nil, err
		}
		st = next
	}

	return &Result{
		WordPressURL:    run.post.Link,
		PostID:          run.post.ID,
		PublishedAt:     run.published,
		CategoryID:      run.categoryID,
		TagIDs:          run.tagIDs,
		MetaDescription: run.metaDesc,
		FeaturedMediaID: run.mediaID,
	}, nil
}

// step dispatches one state. Degrade-and-continue states never return an
// error; the fatal ones (load, auth, create, persist) do.
func (p *Publisher) step(ctx context.Context, st publishState, run *publishRun) (publishState, error) {
	switch st {
	case stateLoadBlog:
		return p.loadBlog(run)
	case stateAuthenticate:
		return p.authenticate(ctx, run)
	case stateGenerateTags:
		return p.generateTags(ctx, run)
	case stateResolveTaxonomy:
		return p.resolveTaxonomy(ctx, run)
	case stateTransformContent:
		return p.transformContent(ctx, run)
	case stateUploadFeaturedImage:
		return p.uploadFeaturedImage(ctx, run)
	case stateCreatePost:
		return p.createPost(ctx, run)
	case statePersistResult:
		return p.persistResult(run)
	default:
		return stateDone, fmt.Errorf("publish: unknown state %d", st)
	}
}

func (p *Publisher) loadBlog(run *publishRun) (publishState, error) {
	blog, err := p.blogs.FindByID(run.blogID)
	if err != nil {
		return stateDone, fmt.Errorf("load blog: %w", err)
	}
	if blog == nil {
		return stateDone, ErrBlogNotFound
	}
	run.blog = blog
	return stateAuthenticate, nil
}

func (p *Publisher) authenticate(ctx context.Context, run *publishRun) (publishState, error) {
	creds := models.WordPressCredentials{
		URL:      run.req.WordPressURL,
		Username: run.req.Username,
		Password: run.req.Password,
	}
	if !creds.Valid() {
		stored, err := p.creds.WordPressCredentials()
		if err != nil {
			return stateDone, fmt.Errorf("load stored credentials: %w", err)
		}
		creds = stored
	}
	if !creds.Valid() {
		return stateDone, ErrNoCredentials
	}

	run.client = NewClient(creds)
	if err := run.client.Authenticate(ctx); err != nil {
		return stateDone, &CredentialError{Err: err}
	}
	return stateGenerateTags, nil
}

func (p *Publisher) generateTags(ctx context.Context, run *publishRun) (publishState, error) {
	if len(run.req.Tags) > 0 {
		run.tagNames = run.req.Tags
	} else {
		run.tagNames = p.ai.Tags(ctx, run.blog.Title, run.blog.Content)
	}
	return stateResolveTaxonomy, nil
}

func (p *Publisher) resolveTaxonomy(ctx context.Context, run *publishRun) (publishState, error) {
	if run.req.CategoryID != nil {
		run.categoryID = run.req.CategoryID
	} else {
		live, err := run.client.Categories(ctx)
		if err != nil {
			slog.Warn("category fetch failed, publishing uncategorized", "error", err)
		} else if ids := ResolveCategories(run.tagNames, live, run.blog.Title, run.blog.Content); len(ids) > 0 {
			run.categoryID = &ids[0]
		}
	}

	run.tagIDs = run.client.ResolveTags(ctx, run.tagNames)
	return stateTransformContent, nil
}

func (p *Publisher) transformContent(ctx context.Context, run *publishRun) (publishState, error) {
	run.html = markdown.ToWordPress(run.blog.Content)
	run.excerpt = markdown.Excerpt(run.blog.Content)

	if run.req.MetaDescription != "" {
		run.metaDesc = run.req.MetaDescription
	} else {
		run.metaDesc = p.ai.MetaDescription(ctx, run.blog.Title, run.blog.Content, markdown.Excerpt)
	}
	return stateUploadFeaturedImage, nil
}

func (p *Publisher) uploadFeaturedImage(ctx context.Context, run *publishRun) (publishState, error) {
	imageURL, description := markdown.FirstImageURL(run.blog.Content)
	if description == "" {
		description = run.blog.Title
	}
	run.mediaID = run.client.UploadFeaturedImage(ctx, imageURL, description)
	return stateCreatePost, nil
}

func (p *Publisher) createPost(ctx context.Context, run *publishRun) (publishState, error) {
	post := Post{
		Title:         run.blog.Title,
		Content:       run.html,
		Excerpt:       run.excerpt,
		Status:        "publish",
		Tags:          run.tagIDs,
		FeaturedMedia: run.mediaID,
	}
	if run.categoryID != nil {
		post.Categories = []int{*run.categoryID}
	}

	attempt := 0
	err := retry.Do(ctx, retry.WithMaxRetries(maxPostAttempts-1, p.backoff()), func(ctx context.Context) error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, CreatePostTimeout(attempt))
		defer cancel()

		result, err := run.client.CreatePost(callCtx, post)
		if err != nil {
			if IsAuthError(err) {
				// Credential problems abort the loop outright.
				return &CredentialError{Err: err}
			}
			slog.Warn("post create attempt failed", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		run.post = result
		return nil
	})
	if err != nil {
		var credErr *CredentialError
		if errors.As(err, &credErr) {
			return stateDone, credErr
		}
		return stateDone, fmt.Errorf("create post exhausted %d attempts: %w", attempt, err)
	}
	return statePersistResult, nil
}

func (p *Publisher) persistResult(run *publishRun) (publishState, error) {
	run.published = time.Now()

	res := models.PublicationResult{
		WordPressURL:    run.post.Link,
		WordPressPostID: run.post.ID,
		PublishedAt:     run.published,
		CategoryID:      run.categoryID,
		TagIDs:          run.tagIDs,
		MetaDescription: run.metaDesc,
	}
	if err := p.blogs.UpdatePublication(run.blog.ID, res); err != nil {
		return stateDone, fmt.Errorf("persist publication: %w", err)
	}

	p.mirrorAsync(run.blog)
	return stateDone, nil
}

// mirrorAsync kicks off the best-effort GitHub mirror of a published blog.
// It runs detached from the request: the publish response never waits on
// it and its failure is only logged.
func (p *Publisher) mirrorAsync(blog *models.Blog) {
	if p.mirror == nil {
		return
	}

	copied := *blog
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		filePath, commitSHA, err := p.mirror.MirrorBlog(ctx, &copied)
		if err != nil {
			slog.Warn("github mirror failed", "blog_id", copied.ID, "error", err)
			return
		}
		if err := p.blogs.UpdateBackup(copied.ID, filePath, commitSHA); err != nil {
			slog.Warn("github mirror not recorded", "blog_id", copied.ID, "error", err)
		}
	}()
}

// CreatePostTimeout returns the per-attempt deadline for post creation:
// 30s for the first attempt, growing 15s per attempt, capped at 135s.
// Later attempts get more room because slow WordPress hosts that time out
// on attempt one often complete given a longer window.
func CreatePostTimeout(attempt int) time.Duration {
	d := basePostTimeout + time.Duration(attempt-1)*postTimeoutStep
	if d > maxPostTimeout {
		return maxPostTimeout
	}
	return d
}

// CreatePostDelay returns the pause before retry attempt n (n >= 2):
// 3000ms growing by a factor of 1.5 per attempt, capped at 60s.
func CreatePostDelay(attempt int) time.Duration {
	d := time.Duration(float64(basePostDelay) * math.Pow(1.5, float64(attempt-1)))
	if d > maxPostDelay {
		return maxPostDelay
	}
	return d
}

// CreatePostBackoff builds the retry.Backoff implementing CreatePostDelay.
func CreatePostBackoff() retry.Backoff {
	attempt := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		attempt++
		return CreatePostDelay(attempt), false
	})
}
