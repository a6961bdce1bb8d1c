// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport provides the byte-oriented endpoints a menu talks to.
package transport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// DEVICE HOT-PLUG
// =============================================================================

// errWatcherClosed is returned if fsnotify shuts its channels unexpectedly.
var errWatcherClosed = errors.New("device watcher closed")

// WaitForDevice blocks until path exists or ctx is done.
//
// USB serial adapters disappear from /dev when unplugged and come back under
// the same name. The parent directory is watched with fsnotify so a
// reconnecting session does not have to poll.
func WaitForDevice(ctx context.Context, path string) error {
	path = filepath.Clean(path)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create device watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	// The device may have appeared between the first Stat and Add.
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return errWatcherClosed
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				return nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return errWatcherClosed
			}
			return fmt.Errorf("device watcher failed: %w", err)
		}
	}
}
