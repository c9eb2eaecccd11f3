// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable session persistence for palaver.
//
// State lives in a local key-value store with two independent keys: the
// serialized conversation list and the theme preference. The backing store
// is SQLite, so writes are atomic and a crash between a mutation and its
// save can never leave partial state on disk.
//
// # Key Types
//
//   - Adapter: the persistence contract consumed by the session layer
//   - SQLiteStore: SQLite-backed Adapter implementation
//
// # Usage
//
// Open a store and round-trip state:
//
//	store, err := storage.Open(path)
//	err = store.SaveSessions(conversations)
//	conversations, err = store.LoadSessions()
//
// Load failures are non-fatal by design: ErrNotFound means a first run,
// ErrCorrupt means the blob could not be decoded. Callers recover from
// both by starting from an empty default state.
package storage
