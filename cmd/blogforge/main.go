// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the BlogForge server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blogforge/internal/ai"
	"blogforge/internal/backup"
	"blogforge/internal/cache"
	"blogforge/internal/config"
	"blogforge/internal/database"
	"blogforge/internal/generator"
	"blogforge/internal/github"
	"blogforge/internal/handlers"
	"blogforge/internal/images"
	"blogforge/internal/middleware"
	"blogforge/internal/models"
	"blogforge/internal/pexels"
	"blogforge/internal/router"
	"blogforge/internal/storage"
	"blogforge/internal/store"
	"blogforge/internal/wordpress"
)

func main() {
	// Structured logger — text output, debug level.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Connect to Valkey (Redis-compatible cache for topic suggestions).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()
	topicCache := cache.NewTopicCache(valkeyClient, cache.DefaultTopicTTL)

	// Initialize data stores.
	blogStore := store.NewBlogStore(db)
	settingStore := store.NewSettingStore(db)

	// Connect to S3-compatible object storage (optional — the app works
	// without it, AI image replacement is then unavailable).
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if storageClient != nil {
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured — AI image hosting disabled")
	}

	// Initialize the AI provider registry with all configured providers.
	aiRegistry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai":  {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"mistral": {APIKey: cfg.MistralKey, Model: cfg.MistralModel, BaseURL: cfg.MistralBaseURL},
	})

	slog.Info("ai providers initialized",
		"active", aiRegistry.ActiveName(),
		"available", aiRegistry.Available(),
	)

	// Pexels stock photo client with round-robin key rotation.
	var photoClient *pexels.Client
	if len(cfg.PexelsKeys) > 0 {
		photoClient = pexels.New("", pexels.NewKeyRing(cfg.PexelsKeys))
	} else {
		slog.Warn("pexels not configured — articles will have no stock photos")
	}

	// Content generator: topics, articles, tags, meta descriptions.
	gen := generator.New(aiRegistry, photoClient, topicCache)

	// GitHub mirror (optional).
	var mirror *github.Client
	if cfg.GithubConfigured() {
		mirror = github.New("", cfg.GithubToken, cfg.GithubOwner, cfg.GithubRepo, cfg.GithubBranch)
		slog.Info("github mirror configured", "owner", cfg.GithubOwner, "repo", cfg.GithubRepo)
	}

	// Credential source for publishing: stored settings, with the demo
	// destination as last resort when demo mode is on.
	var creds wordpress.CredentialSource = settingStore
	if cfg.DemoMode {
		slog.Warn("demo mode enabled — publishes without credentials go to the demo site")
		creds = demoCredentials{
			store: settingStore,
			demo: models.WordPressCredentials{
				URL:      cfg.DemoWordPressURL,
				Username: cfg.DemoWordPressUser,
				Password: cfg.DemoWordPressPass,
			},
		}
	}

	// The publish pipeline. Mirrorer must stay nil (not a typed nil) when
	// GitHub is unconfigured.
	var publisher *wordpress.Publisher
	if mirror != nil {
		publisher = wordpress.NewPublisher(blogStore, creds, gen, mirror)
	} else {
		publisher = wordpress.NewPublisher(blogStore, creds, gen, nil)
	}

	// Image replacement service (stock photos and AI generation).
	imageService := images.NewService(photoClient, aiRegistry, storageClient)

	// Periodic source backup to the GitHub mirror.
	if mirror != nil && len(cfg.BackupPaths) > 0 {
		backup.New(mirror, cfg.BackupPaths, backup.DefaultInterval).Start(context.Background())
	}

	// Create handler groups with their dependencies.
	var mirrorDep handlers.Mirrorer
	if mirror != nil {
		mirrorDep = mirror
	}
	api := handlers.New(blogStore, settingStore, gen, publisher, mirrorDep, imageService)

	// Rate limit the API to keep a single client from draining AI quota.
	limiter := middleware.NewRateLimiter(60, time.Minute)
	defer limiter.Stop()

	r := router.New(api, limiter)

	// WriteTimeout must accommodate the publish pipeline, which can retry
	// a slow WordPress host for several minutes.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// demoCredentials serves stored settings first and falls back to the demo
// WordPress destination when nothing is stored.
type demoCredentials struct {
	store *store.SettingStore
	demo  models.WordPressCredentials
}

func (d demoCredentials) WordPressCredentials() (models.WordPressCredentials, error) {
	stored, err := d.store.WordPressCredentials()
	if err == nil && stored.Valid() {
		return stored, nil
	}
	if err != nil {
		slog.Warn("stored credentials unavailable, using demo destination", "error", err)
	}
	return d.demo, nil
}
