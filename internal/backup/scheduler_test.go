// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recordingUploader struct {
	mu      sync.Mutex
	uploads map[string][]byte
	failOn  string
}

func newRecordingUploader() *recordingUploader {
	return &recordingUploader{uploads: map[string][]byte{}}
}

func (u *recordingUploader) UploadFile(ctx context.Context, path, message string, data []byte) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if path == u.failOn {
		return "", errors.New("upload refused")
	}
	u.uploads[path] = data
	return "sha", nil
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunOnceMirrorsFiles(t *testing.T) {
	a := writeTemp(t, "main.go", "package main")
	b := writeTemp(t, "config.yml", "key: value")

	up := newRecordingUploader()
	New(up, []string{a, b}, time.Hour).RunOnce(context.Background())

	if string(up.uploads["backup/main.go"]) != "package main" {
		t.Errorf("main.go not mirrored: %v", up.uploads)
	}
	if string(up.uploads["backup/config.yml"]) != "key: value" {
		t.Errorf("config.yml not mirrored: %v", up.uploads)
	}
}

func TestRunOnceContinuesPastFailures(t *testing.T) {
	a := writeTemp(t, "one.txt", "1")
	b := writeTemp(t, "two.txt", "2")

	up := newRecordingUploader()
	up.failOn = "backup/one.txt"
	New(up, []string{a, b}, time.Hour).RunOnce(context.Background())

	if _, ok := up.uploads["backup/two.txt"]; !ok {
		t.Error("a failed upload must not stop the remaining files")
	}
}

func TestRunOnceSkipsMissingFiles(t *testing.T) {
	b := writeTemp(t, "real.txt", "hi")

	up := newRecordingUploader()
	New(up, []string{"/does/not/exist", b}, time.Hour).RunOnce(context.Background())

	if len(up.uploads) != 1 {
		t.Errorf("uploads: got %d, want 1", len(up.uploads))
	}
}

func TestStartRunsOnTicks(t *testing.T) {
	a := writeTemp(t, "tick.txt", "t")
	up := newRecordingUploader()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	New(up, []string{a}, 10*time.Millisecond).Start(ctx)

	deadline := time.After(2 * time.Second)
	for {
		up.mu.Lock()
		_, ok := up.uploads["backup/tick.txt"]
		up.mu.Unlock()
		if ok {
			return
		}
		select {
		case <-deadline:
			t.Fatal("scheduler never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
