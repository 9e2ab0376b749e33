// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chain for the
// content generation API.
package router

import (
	"github.com/go-chi/chi/v5"

	"blogforge/internal/handlers"
	"blogforge/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. limiter may be nil to disable rate limiting.
func New(api *handlers.API, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	// Health check — no rate limit.
	r.Get("/health", api.Health)

	r.Route("/api", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}

		// Topic suggestions for a seed keyword.
		r.Post("/topics", api.Topics)

		// Blogs: generation, editing and the publish pipeline.
		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", api.ListBlogs)
			r.Post("/", api.CreateBlog)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", api.GetBlog)
				r.Put("/", api.UpdateBlog)
				r.Delete("/", api.DeleteBlog)
				r.Get("/preview", api.PreviewBlog)
				r.Post("/images/{index}", api.ReplaceImage)
				r.Post("/publish", api.PublishBlog)
				r.Post("/backup", api.BackupBlog)
			})
		})

		// WordPress destination settings.
		r.Route("/settings", func(r chi.Router) {
			r.Get("/wordpress", api.GetWordPressSettings)
			r.Put("/wordpress", api.PutWordPressSettings)
		})
	})

	return r
}
