// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// runtime.go - Shared wiring for the TUI and CLI chat commands.
//
// Both entry points need the same stack: config, session database,
// dispatcher, store, controller. Building it in one place keeps the
// precedence rules (CLI flag > environment > config file) identical
// everywhere.

package cli

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/morganforge/palaver/internal/config"
	"github.com/morganforge/palaver/internal/dispatch"
	"github.com/morganforge/palaver/internal/model"
	"github.com/morganforge/palaver/internal/session"
	"github.com/morganforge/palaver/internal/storage"
)

// Runtime bundles the wired application stack.
type Runtime struct {
	Config     *config.Config
	Adapter    *storage.SQLiteStore
	Store      *session.Store
	Controller *session.Controller
	Logger     *log.Logger

	// Theme is the effective theme mode after the persisted preference
	// is applied over the config value.
	Theme string

	logFile *os.File
}

// NewRuntime loads configuration, opens the session database, and wires
// the session stack. CLI args override config values.
func NewRuntime(args Args) (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		// A bad config file falls back to defaults; keep going but
		// surface the problem once.
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	if args.Model != "" {
		if !model.KnownModel(args.Model) {
			return nil, fmt.Errorf("unknown model %q (see palaver help)", args.Model)
		}
		cfg.DefaultModel = args.Model
	}
	if args.StoragePath != "" {
		cfg.StoragePath = args.StoragePath
	}

	logger, logFile := newLogger()

	var adapter *storage.SQLiteStore
	if cfg.StoragePath != "" {
		adapter, err = storage.Open(cfg.StoragePath)
	} else {
		adapter, err = storage.OpenDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("opening session storage: %w", err)
	}

	dispatcher := dispatch.NewDispatcher(dispatch.Config{
		Latency: dispatch.FixedLatency(time.Duration(cfg.ReplyDelayMS) * time.Millisecond),
	})

	store := session.NewStore(adapter, logger, cfg.DefaultModel, cfg.Parameters)
	controller := session.NewController(store, dispatcher, logger)

	// CLI model flag rebinds the restored active conversation too
	if args.Model != "" {
		controller.SetModel(args.Model)
	}

	theme := cfg.Theme
	if saved, err := adapter.LoadTheme(); err == nil {
		theme = saved
	} else if !errors.Is(err, storage.ErrNotFound) {
		logger.Printf("loading theme preference failed: %v", err)
	}

	rt := &Runtime{
		Config:     cfg,
		Adapter:    adapter,
		Store:      store,
		Controller: controller,
		Logger:     logger,
		Theme:      theme,
		logFile:    logFile,
	}
	return rt, nil
}

// Close releases the session database and the log file.
func (r *Runtime) Close() {
	if err := r.Adapter.Close(); err != nil {
		r.Logger.Printf("closing session storage failed: %v", err)
	}
	if r.logFile != nil {
		r.logFile.Close()
	}
}

// newLogger opens ~/.palaver/palaver.log for append. Logging is
// best-effort: when the file cannot be opened, messages are discarded
// rather than polluting the TUI's terminal.
func newLogger() (*log.Logger, *os.File) {
	dir, err := config.ConfigDir()
	if err != nil {
		return log.New(io.Discard, "", 0), nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return log.New(io.Discard, "", 0), nil
	}
	f, err := os.OpenFile(filepath.Join(dir, "palaver.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return log.New(io.Discard, "", 0), nil
	}
	return log.New(f, "palaver ", log.LstdFlags), f
}
