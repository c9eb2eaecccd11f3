// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for palaver.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/morganforge/palaver/internal/model"
	"github.com/morganforge/palaver/internal/storage"
	"github.com/morganforge/palaver/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete palaver configuration.
type Config struct {
	// DefaultModel is the catalog id new conversations are bound to
	DefaultModel string `toml:"default_model"`

	// Theme is the UI theme: "dark" or "light". The persisted theme
	// preference in the session store wins over this value.
	Theme string `toml:"theme"`

	// StoragePath is the path to the session database
	// (empty = ~/.palaver/palaver.db)
	StoragePath string `toml:"storage_path"`

	// ReplyDelayMS is the simulated reply latency in milliseconds.
	// 0 disables the delay; useful for scripting.
	ReplyDelayMS int `toml:"reply_delay_ms"`

	// Parameters are the stock generation parameters for new
	// conversations
	Parameters model.Parameters `toml:"parameters"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		DefaultModel: model.DefaultModelID,
		Theme:        storage.ThemeDark,
		StoragePath:  "",
		ReplyDelayMS: 1500,
		Parameters:   model.DefaultParameters(),
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the palaver configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".palaver"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file, falling back
// to defaults when none exists. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full
// validation. A missing file is not an error; defaults are used.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# palaver configuration file\n")
	buf.WriteString("# Generated by palaver - edit with care\n")
	buf.WriteString("\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if !model.KnownModel(c.DefaultModel) {
		errs = append(errs, ValidationError{
			Field:   "default_model",
			Message: fmt.Sprintf("unknown model '%s'", c.DefaultModel),
		})
	}

	if c.Theme != storage.ThemeDark && c.Theme != storage.ThemeLight {
		errs = append(errs, ValidationError{
			Field:   "theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light", c.Theme),
		})
	}

	if c.ReplyDelayMS < 0 {
		errs = append(errs, ValidationError{
			Field:   "reply_delay_ms",
			Message: "must be non-negative",
		})
	}

	if c.Parameters.Temperature < 0 || c.Parameters.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "parameters.temperature",
			Message: fmt.Sprintf("must be between 0 and 2, got %v", c.Parameters.Temperature),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.DefaultModel == "" {
		c.DefaultModel = defaults.DefaultModel
	}
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
	if c.Parameters == (model.Parameters{}) {
		c.Parameters = defaults.Parameters
	}
	c.Parameters = c.Parameters.Clamp()
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if m := os.Getenv("PALAVER_MODEL"); m != "" {
		c.DefaultModel = m
	}
	if theme := os.Getenv("PALAVER_THEME"); theme != "" {
		c.Theme = strings.ToLower(theme)
	}
	if path := os.Getenv("PALAVER_STORAGE_PATH"); path != "" {
		c.StoragePath = path
	}
	if delay := os.Getenv("PALAVER_REPLY_DELAY_MS"); delay != "" {
		if ms, err := strconv.Atoi(delay); err == nil && ms >= 0 {
			c.ReplyDelayMS = ms
		}
	}
}
