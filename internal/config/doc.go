// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for palaver.
//
// Configuration is TOML with sensible defaults, environment variable
// overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.palaver/config.toml
//   - Built-in defaults
//
// # Key Types
//
//   - Config: the complete palaver configuration
//   - Watcher: fsnotify-based live reload of the config file
//
// # Environment Overrides
//
//   - PALAVER_MODEL: overrides default_model
//   - PALAVER_THEME: overrides theme
//   - PALAVER_STORAGE_PATH: overrides storage_path
//   - PALAVER_REPLY_DELAY_MS: overrides reply_delay_ms
package config
