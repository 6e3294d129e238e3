package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hyprspaces/hyprspaces/internal/util"
)

const (
	configDebounce     = 250 * time.Millisecond
	reasonConfigUpdate = "config file updated"
)

// configWatcher turns bursts of editor writes to the config file into a
// single reload request. It watches the parent directory so atomic
// rename-into-place saves are seen.
type configWatcher struct {
	watcher *fsnotify.Watcher
	target  string
	window  time.Duration
	logger  *util.Logger
}

func newConfigWatcher(path string, logger *util.Logger, window time.Duration) (*configWatcher, error) {
	full, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	full = filepath.Clean(full)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	if err := watcher.Add(filepath.Dir(full)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}
	return &configWatcher{watcher: watcher, target: full, window: window, logger: logger}, nil
}

// Run forwards debounced change notifications to requests until ctx is done
// or the watcher is closed. A request is dropped when one is already queued.
func (w *configWatcher) Run(ctx context.Context, requests chan<- string) {
	timer := time.NewTimer(w.window)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Tracef("config %s: %s", event.Op, event.Name)
			timer.Reset(w.window)
		case <-timer.C:
			select {
			case requests <- reasonConfigUpdate:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnf("config watcher error: %v", err)
		}
	}
}

func (w *configWatcher) Close() error {
	return w.watcher.Close()
}
