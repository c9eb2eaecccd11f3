// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable session persistence for palaver.
package storage

import (
	"errors"

	"github.com/morganforge/palaver/internal/model"
)

// =============================================================================
// PERSISTED KEYS
// =============================================================================

// The store holds exactly two logical keys. Sessions and theme preference
// are saved independently so toggling the theme never rewrites chat state.
const (
	KeySessions = "sessions"
	KeyTheme    = "theme-preference"
)

// Theme preference values.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when a key has never been written.
	ErrNotFound = errors.New("storage: key not found")

	// ErrCorrupt is returned when a stored blob cannot be decoded.
	// Callers recover by discarding the blob and starting fresh; the
	// failure is logged, never surfaced to the user.
	ErrCorrupt = errors.New("storage: stored state is corrupt")

	// ErrInvalidTheme is returned when saving a theme value other than
	// "dark" or "light".
	ErrInvalidTheme = errors.New("storage: invalid theme preference")
)

// =============================================================================
// ADAPTER CONTRACT
// =============================================================================

// Adapter is the persistence contract consumed by the session layer.
// Implementations must serialize the complete conversation list on every
// save (total writes, never diffs) so that interrupted runs cannot leave
// partial state behind.
type Adapter interface {
	// LoadSessions reads the full conversation list. Returns ErrNotFound
	// on first run and ErrCorrupt when the stored blob fails to decode.
	LoadSessions() ([]*model.Conversation, error)

	// SaveSessions writes the complete conversation list atomically.
	SaveSessions(conversations []*model.Conversation) error

	// LoadTheme reads the theme preference ("dark" or "light").
	// Returns ErrNotFound when no preference has been saved.
	LoadTheme() (string, error)

	// SaveTheme writes the theme preference.
	SaveTheme(theme string) error

	// Close releases the underlying store.
	Close() error
}
