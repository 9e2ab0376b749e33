// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package backup mirrors configured source files to GitHub on a timer.
// Backups are strictly best-effort: a failed upload is logged and retried
// on the next tick, and nothing in the request path ever waits on one.
package backup

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DefaultInterval is how often the scheduler mirrors the source files.
const DefaultInterval = 24 * time.Hour

// Uploader commits one file to the backup repository.
type Uploader interface {
	UploadFile(ctx context.Context, path, message string, data []byte) (string, error)
}

// Scheduler periodically mirrors a fixed set of local files.
type Scheduler struct {
	uploader Uploader
	files    []string
	interval time.Duration
}

// New creates a scheduler for the given local file paths. interval <= 0
// uses DefaultInterval.
func New(uploader Uploader, files []string, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{uploader: uploader, files: files, interval: interval}
}

// Start launches the backup loop in its own goroutine. An initial run
// happens after the first tick, not at startup, so boot stays fast. The
// loop exits when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	if s.uploader == nil || len(s.files) == 0 {
		slog.Info("source backup disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce mirrors every configured file, logging per-file failures.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, file := range s.files {
		if err := s.backupFile(ctx, file); err != nil {
			slog.Warn("source backup failed", "file", file, "error", err)
		}
	}
	slog.Info("source backup pass finished", "files", len(s.files))
}

func (s *Scheduler) backupFile(ctx context.Context, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	remote := "backup/" + filepath.Base(file)
	_, err = s.uploader.UploadFile(ctx, remote, "Source backup: "+filepath.Base(file), data)
	return err
}
