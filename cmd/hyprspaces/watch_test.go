package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyprspaces/hyprspaces/internal/util"
)

func TestConfigWatcherCoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paired.yaml")
	if err := os.WriteFile(path, []byte(validConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	watcher, err := newConfigWatcher(path, util.NewLoggerWithWriter(util.LevelError, io.Discard), 100*time.Millisecond)
	if err != nil {
		t.Fatalf("newConfigWatcher: %v", err)
	}
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	requests := make(chan string, 4)
	go watcher.Run(ctx, requests)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte(validConfig), 0o644); err != nil {
			t.Fatalf("rewrite config: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644); err != nil {
		t.Fatalf("write sibling: %v", err)
	}

	select {
	case reason := <-requests:
		if reason != reasonConfigUpdate {
			t.Fatalf("unexpected reason %q", reason)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no reload request after writes")
	}
	select {
	case reason := <-requests:
		t.Fatalf("burst produced a second request %q", reason)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestConfigWatcherStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paired.yaml")
	watcher, err := newConfigWatcher(path, nil, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("newConfigWatcher: %v", err)
	}
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		watcher.Run(ctx, make(chan string, 1))
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
