// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session is the conversation lifecycle core of palaver.
package session

import (
	"io"
	"log"
	"sync"
	"testing"

	"github.com/morganforge/palaver/internal/model"
	"github.com/morganforge/palaver/internal/storage"
)

// =============================================================================
// TEST ADAPTER
// =============================================================================

// memAdapter is an in-memory storage.Adapter that counts saves and can
// simulate a first run or a corrupt blob.
type memAdapter struct {
	mu       sync.Mutex
	sessions []*model.Conversation
	theme    string
	loadErr  error
	saves    int
}

func (a *memAdapter) LoadSessions() ([]*model.Conversation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.loadErr != nil {
		return nil, a.loadErr
	}
	if a.sessions == nil {
		return nil, storage.ErrNotFound
	}
	return a.sessions, nil
}

func (a *memAdapter) SaveSessions(conversations []*model.Conversation) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions = make([]*model.Conversation, len(conversations))
	for i, conv := range conversations {
		a.sessions[i] = conv.Clone()
	}
	a.saves++
	return nil
}

func (a *memAdapter) LoadTheme() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.theme == "" {
		return "", storage.ErrNotFound
	}
	return a.theme, nil
}

func (a *memAdapter) SaveTheme(theme string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.theme = theme
	return nil
}

func (a *memAdapter) Close() error { return nil }

func (a *memAdapter) saveCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saves
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestStore(t *testing.T) (*Store, *memAdapter) {
	t.Helper()
	adapter := &memAdapter{}
	return NewStore(adapter, testLogger(), model.DefaultModelID, model.DefaultParameters()), adapter
}

// =============================================================================
// CONSTRUCTION TESTS
// =============================================================================

func TestNewStore_FirstRunSeedsDefaultConversation(t *testing.T) {
	s, adapter := newTestStore(t)

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	active := s.Active()
	if active.Title != model.DefaultTitle {
		t.Errorf("Title = %q, want %q", active.Title, model.DefaultTitle)
	}
	if active.Model != model.DefaultModelID {
		t.Errorf("Model = %q, want %q", active.Model, model.DefaultModelID)
	}
	if adapter.saveCount() == 0 {
		t.Error("seeded conversation was not persisted")
	}
}

func TestNewStore_CorruptStateSeedsFresh(t *testing.T) {
	adapter := &memAdapter{loadErr: storage.ErrCorrupt}
	s := NewStore(adapter, testLogger(), model.DefaultModelID, model.DefaultParameters())

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	if s.ActiveID() == "" {
		t.Error("active id not set after corrupt load")
	}
}

func TestNewStore_RestoresPersistedState(t *testing.T) {
	first := model.NewConversation("claude-3-5-sonnet", model.DefaultParameters())
	first.Title = "Explain quicksort please"
	first.Append(model.NewUserMessage("Explain quicksort please"))
	second := model.NewConversation("gpt-4o", model.DefaultParameters())

	adapter := &memAdapter{sessions: []*model.Conversation{first, second}}
	s := NewStore(adapter, testLogger(), model.DefaultModelID, model.DefaultParameters())

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if got := s.ActiveID(); got != first.ID {
		t.Errorf("ActiveID() = %q, want most recent %q", got, first.ID)
	}
	active := s.Active()
	if active.Title != "Explain quicksort please" {
		t.Errorf("Title = %q", active.Title)
	}
	if active.MessageCount() != 1 {
		t.Errorf("MessageCount() = %d, want 1", active.MessageCount())
	}
}

// =============================================================================
// CREATE / REMOVE TESTS
// =============================================================================

func TestCreate_PrependsAndActivates(t *testing.T) {
	s, _ := newTestStore(t)
	seed := s.ActiveID()

	conv := s.Create("llama-3-70b", model.DefaultParameters())

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if got := s.ActiveID(); got != conv.ID {
		t.Errorf("ActiveID() = %q, want new conversation %q", got, conv.ID)
	}
	snap := s.Snapshot()
	if snap[0].ID != conv.ID || snap[1].ID != seed {
		t.Error("new conversation is not first in the snapshot")
	}
}

func TestRemove_ActiveFallsToFirstRemaining(t *testing.T) {
	s, _ := newTestStore(t)
	oldest := s.ActiveID()
	middle := s.Create(model.DefaultModelID, model.DefaultParameters())
	newest := s.Create(model.DefaultModelID, model.DefaultParameters())

	if !s.Remove(newest.ID, model.DefaultModelID, model.DefaultParameters()) {
		t.Fatal("Remove() = false for existing conversation")
	}

	if got := s.ActiveID(); got != middle.ID {
		t.Errorf("ActiveID() = %q, want first remaining %q", got, middle.ID)
	}
	if s.Contains(newest.ID) {
		t.Error("removed conversation still present")
	}
	if !s.Contains(oldest) {
		t.Error("unrelated conversation went missing")
	}
}

func TestRemove_InactiveKeepsActive(t *testing.T) {
	s, _ := newTestStore(t)
	oldest := s.ActiveID()
	newest := s.Create(model.DefaultModelID, model.DefaultParameters())

	s.Remove(oldest, model.DefaultModelID, model.DefaultParameters())

	if got := s.ActiveID(); got != newest.ID {
		t.Errorf("ActiveID() = %q, want unchanged %q", got, newest.ID)
	}
}

func TestRemove_LastConversationCreatesFreshDefault(t *testing.T) {
	s, _ := newTestStore(t)
	only := s.ActiveID()

	s.Remove(only, "perplexity-sonar", model.DefaultParameters())

	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	active := s.Active()
	if active.ID == only {
		t.Error("replacement conversation reused the removed id")
	}
	if active.Title != model.DefaultTitle {
		t.Errorf("Title = %q, want %q", active.Title, model.DefaultTitle)
	}
	if active.Model != "perplexity-sonar" {
		t.Errorf("Model = %q, want the caller's current selection", active.Model)
	}
	if !active.IsEmpty() {
		t.Error("replacement conversation should start empty")
	}
}

func TestRemove_UnknownIDIsNoop(t *testing.T) {
	s, adapter := newTestStore(t)
	before := adapter.saveCount()

	if s.Remove("no-such-id", model.DefaultModelID, model.DefaultParameters()) {
		t.Error("Remove() = true for unknown id")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
	if adapter.saveCount() != before {
		t.Error("no-op remove triggered a persistence write")
	}
}

// =============================================================================
// UPDATE / SWITCH TESTS
// =============================================================================

func TestUpdate_AppliesPatchAndSaves(t *testing.T) {
	s, adapter := newTestStore(t)
	id := s.ActiveID()
	before := adapter.saveCount()

	title := "Explain quicksort please"
	modelID := "gemini-1-5-pro"
	if !s.Update(id, Patch{Title: &title, Model: &modelID}) {
		t.Fatal("Update() = false for existing conversation")
	}

	conv, _ := s.Get(id)
	if conv.Title != title {
		t.Errorf("Title = %q, want %q", conv.Title, title)
	}
	if conv.Model != modelID {
		t.Errorf("Model = %q, want %q", conv.Model, modelID)
	}
	if adapter.saveCount() != before+1 {
		t.Errorf("saves = %d, want %d", adapter.saveCount(), before+1)
	}
}

func TestUpdate_UnknownIDSkipsSave(t *testing.T) {
	s, adapter := newTestStore(t)
	before := adapter.saveCount()

	title := "ghost"
	if s.Update("no-such-id", Patch{Title: &title}) {
		t.Error("Update() = true for unknown id")
	}
	if adapter.saveCount() != before {
		t.Error("no-op update triggered a persistence write")
	}
}

func TestAppendMessage_UnknownIDReportsDiscard(t *testing.T) {
	s, adapter := newTestStore(t)
	before := adapter.saveCount()

	if s.AppendMessage("no-such-id", model.NewUserMessage("hello")) {
		t.Error("AppendMessage() = true for unknown id")
	}
	if adapter.saveCount() != before {
		t.Error("discarded append triggered a persistence write")
	}
}

func TestSwitchActive_UnknownIDKeepsCurrent(t *testing.T) {
	s, _ := newTestStore(t)
	current := s.ActiveID()

	if s.SwitchActive("no-such-id") {
		t.Error("SwitchActive() = true for unknown id")
	}
	if got := s.ActiveID(); got != current {
		t.Errorf("ActiveID() = %q, want unchanged %q", got, current)
	}
}

// =============================================================================
// INVARIANT TESTS
// =============================================================================

// TestInvariants_ArbitraryMutationSequence hammers the store with an
// interleaved create/remove/switch sequence and checks that the set is
// never empty and the active id always resolves.
func TestInvariants_ArbitraryMutationSequence(t *testing.T) {
	s, _ := newTestStore(t)
	params := model.DefaultParameters()

	ids := []string{s.ActiveID()}
	for i := 0; i < 20; i++ {
		switch i % 4 {
		case 0, 1:
			ids = append(ids, s.Create(model.DefaultModelID, params).ID)
		case 2:
			s.Remove(ids[len(ids)/2], model.DefaultModelID, params)
		case 3:
			s.SwitchActive(ids[0])
			s.Remove(s.ActiveID(), model.DefaultModelID, params)
		}

		if s.Len() == 0 {
			t.Fatalf("step %d: conversation set went empty", i)
		}
		if !s.Contains(s.ActiveID()) {
			t.Fatalf("step %d: active id %q does not resolve", i, s.ActiveID())
		}
	}
}

func TestSnapshot_IsIsolatedFromStore(t *testing.T) {
	s, _ := newTestStore(t)
	id := s.ActiveID()

	snap := s.Snapshot()
	snap[0].Title = "mutated"
	snap[0].Messages = append(snap[0].Messages, model.NewUserMessage("sneaky"))

	conv, _ := s.Get(id)
	if conv.Title == "mutated" {
		t.Error("snapshot mutation leaked into the store")
	}
	if conv.MessageCount() != 0 {
		t.Error("snapshot message append leaked into the store")
	}
}
