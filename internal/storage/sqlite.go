// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable session persistence for palaver.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/morganforge/palaver/internal/model"
)

// =============================================================================
// SQLITE STORE
// =============================================================================

// schema is the single key-value table backing both persisted keys.
const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// SQLiteStore is the SQLite-backed Adapter implementation.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the store at path. The parent directory is
// created if missing.
func Open(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// OpenDefault opens the store at its default location under the user's
// config directory (~/.palaver/palaver.db).
func OpenDefault() (*SQLiteStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(homeDir, ".palaver", "palaver.db"))
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the on-disk location of the store.
func (s *SQLiteStore) Path() string {
	return s.path
}

// =============================================================================
// KEY-VALUE PRIMITIVES
// =============================================================================

// get reads a raw value. Returns ErrNotFound when the key is absent.
func (s *SQLiteStore) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, nil
}

// set writes a raw value. The upsert runs in a single statement, so a
// reader never observes a missing or half-written key.
func (s *SQLiteStore) set(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

// =============================================================================
// SESSIONS
// =============================================================================

// LoadSessions reads the full conversation list. Timestamps are stored as
// RFC 3339 strings inside the JSON blob and decode back to time values.
func (s *SQLiteStore) LoadSessions() ([]*model.Conversation, error) {
	raw, err := s.get(KeySessions)
	if err != nil {
		return nil, err
	}

	var conversations []*model.Conversation
	if err := json.Unmarshal([]byte(raw), &conversations); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return conversations, nil
}

// SaveSessions serializes the complete conversation list under the
// sessions key. Always a full-state write: partial saves could strand a
// restart between two worlds.
func (s *SQLiteStore) SaveSessions(conversations []*model.Conversation) error {
	if conversations == nil {
		conversations = []*model.Conversation{}
	}
	data, err := json.Marshal(conversations)
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}
	return s.set(KeySessions, string(data))
}

// =============================================================================
// THEME PREFERENCE
// =============================================================================

// LoadTheme reads the persisted theme preference.
func (s *SQLiteStore) LoadTheme() (string, error) {
	theme, err := s.get(KeyTheme)
	if err != nil {
		return "", err
	}
	if theme != ThemeDark && theme != ThemeLight {
		return "", fmt.Errorf("%w: %q", ErrCorrupt, theme)
	}
	return theme, nil
}

// SaveTheme writes the theme preference.
func (s *SQLiteStore) SaveTheme(theme string) error {
	if theme != ThemeDark && theme != ThemeLight {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	return s.set(KeyTheme, theme)
}
