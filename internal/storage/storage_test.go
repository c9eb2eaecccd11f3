// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable session persistence for palaver.
package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morganforge/palaver/internal/model"
)

// openTestStore opens a store under a per-test temp directory.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "palaver.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// =============================================================================
// SESSIONS ROUND-TRIP
// =============================================================================

func TestSQLiteStore_LoadSessions_NotFoundOnFirstRun(t *testing.T) {
	store := openTestStore(t)

	_, err := store.LoadSessions()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_SessionsRoundTrip(t *testing.T) {
	store := openTestStore(t)

	first := model.NewConversation("gpt-4o", model.DefaultParameters())
	first.Title = "Explain quicksort please"
	first.Append(model.NewUserMessage("Explain quicksort please"))
	first.Append(model.NewAssistantMessage("Here you go.", "GPT-4o", model.TokenUsage{Input: 6, Output: 120}))

	second := model.NewConversation("llama-3-70b", model.Parameters{Temperature: 1.2, MaxTokens: 512, TopP: 0.9})

	saved := []*model.Conversation{second, first}
	require.NoError(t, store.SaveSessions(saved))

	loaded, err := store.LoadSessions()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// Ordering preserved
	assert.Equal(t, second.ID, loaded[0].ID)
	assert.Equal(t, first.ID, loaded[1].ID)

	// Scalar fields preserved
	got := loaded[1]
	assert.Equal(t, first.Title, got.Title)
	assert.Equal(t, first.Model, got.Model)
	assert.Equal(t, first.Parameters, got.Parameters)

	// Timestamps survive the interchange encoding
	assert.True(t, first.CreatedAt.Equal(got.CreatedAt), "CreatedAt changed in round-trip")
	assert.True(t, first.UpdatedAt.Equal(got.UpdatedAt), "UpdatedAt changed in round-trip")

	// Nested messages preserved in order with token counts
	require.Len(t, got.Messages, 2)
	assert.Equal(t, first.Messages[0].ID, got.Messages[0].ID)
	assert.Equal(t, model.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "Explain quicksort please", got.Messages[0].Content)
	assert.True(t, first.Messages[0].Timestamp.Equal(got.Messages[0].Timestamp))

	require.NotNil(t, got.Messages[1].Tokens)
	assert.Equal(t, 126, got.Messages[1].Tokens.Total())
	assert.Equal(t, "GPT-4o", got.Messages[1].Model)
}

func TestSQLiteStore_SaveSessions_OverwritesCompletely(t *testing.T) {
	store := openTestStore(t)

	a := model.NewConversation("gpt-4o", model.DefaultParameters())
	b := model.NewConversation("gpt-4o", model.DefaultParameters())
	require.NoError(t, store.SaveSessions([]*model.Conversation{a, b}))

	// A later save with fewer conversations must fully replace the blob.
	require.NoError(t, store.SaveSessions([]*model.Conversation{b}))

	loaded, err := store.LoadSessions()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, b.ID, loaded[0].ID)
}

func TestSQLiteStore_SaveSessions_NilBecomesEmptyList(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveSessions(nil))

	loaded, err := store.LoadSessions()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestSQLiteStore_LoadSessions_CorruptBlob(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.set(KeySessions, "{not json"))

	_, err := store.LoadSessions()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestSQLiteStore_LoadSessions_CorruptTimestamp(t *testing.T) {
	store := openTestStore(t)

	// Structurally valid JSON with a malformed timestamp still decodes as
	// corrupt rather than producing a half-broken state.
	blob := `[{"id":"1","title":"x","createdAt":"not-a-date","updatedAt":"also-bad","messages":[],"model":"gpt-4o","parameters":{}}]`
	require.NoError(t, store.set(KeySessions, blob))

	_, err := store.LoadSessions()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestSQLiteStore_SessionsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palaver.db")

	store, err := Open(path)
	require.NoError(t, err)

	conv := model.NewConversation("perplexity-sonar", model.DefaultParameters())
	conv.Append(model.NewUserMessage("persist me"))
	require.NoError(t, store.SaveSessions([]*model.Conversation{conv}))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.LoadSessions()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, conv.ID, loaded[0].ID)
	assert.Equal(t, "persist me", loaded[0].Messages[0].Content)
}

// =============================================================================
// THEME PREFERENCE
// =============================================================================

func TestSQLiteStore_Theme(t *testing.T) {
	store := openTestStore(t)

	_, err := store.LoadTheme()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SaveTheme(ThemeDark))
	theme, err := store.LoadTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	require.NoError(t, store.SaveTheme(ThemeLight))
	theme, err = store.LoadTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)
}

func TestSQLiteStore_SaveTheme_RejectsUnknownValues(t *testing.T) {
	store := openTestStore(t)

	err := store.SaveTheme("solarized")
	assert.ErrorIs(t, err, ErrInvalidTheme)
}

func TestSQLiteStore_ThemeIndependentOfSessions(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveTheme(ThemeDark))

	conv := model.NewConversation("gpt-4o", model.DefaultParameters())
	require.NoError(t, store.SaveSessions([]*model.Conversation{conv}))

	// Rewriting sessions must not disturb the theme key, and vice versa.
	theme, err := store.LoadTheme()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	require.NoError(t, store.SaveTheme(ThemeLight))
	loaded, err := store.LoadSessions()
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

// Guard against time zone drift in the interchange format: a timestamp
// saved in one location must load as the same instant elsewhere.
func TestSQLiteStore_TimestampsAreInstants(t *testing.T) {
	store := openTestStore(t)

	conv := model.NewConversation("gpt-4o", model.DefaultParameters())
	conv.CreatedAt = time.Date(2025, 3, 9, 12, 30, 0, 0, time.FixedZone("UTC+9", 9*3600))
	conv.UpdatedAt = conv.CreatedAt
	require.NoError(t, store.SaveSessions([]*model.Conversation{conv}))

	loaded, err := store.LoadSessions()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.True(t, conv.CreatedAt.Equal(loaded[0].CreatedAt))
}

func TestErrors_AreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrNotFound, ErrCorrupt))
	assert.False(t, errors.Is(ErrCorrupt, ErrNotFound))
}
