// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for palaver.
package config

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CONFIG WATCHER
// =============================================================================

// Watcher reloads the config file when it changes on disk and hands the
// result to a callback. Editors write config files in bursts (temp file,
// rename, chmod), so events are debounced before reloading.
type Watcher struct {
	path     string
	debounce time.Duration
	onReload func(*Config)
	logger   *log.Logger

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	last    time.Time
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewWatcher creates a watcher for the config file at path. onReload is
// called with each successfully reloaded config; invalid intermediate
// states are logged and skipped.
func NewWatcher(path string, debounce time.Duration, logger *log.Logger, onReload func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     path,
		debounce: debounce,
		onReload: onReload,
		logger:   logger,
		watcher:  fsw,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching for config file changes.
func (w *Watcher) Watch() error {
	// Watch the directory, not the file: atomic saves replace the file
	// by rename, which drops a watch placed on the file itself
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	go w.processEvents()
	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) processEvents() {
	target := filepath.Clean(w.path)
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reloadDebounced()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Printf("config watch error: %v", err)
		}
	}
}

func (w *Watcher) reloadDebounced() {
	w.mu.Lock()
	if time.Since(w.last) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.last = time.Now()
	w.mu.Unlock()

	cfg, err := LoadFromPath(w.path)
	if err != nil {
		w.logger.Printf("config reload skipped: %v", err)
		return
	}
	w.onReload(cfg)
}
