// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session is the conversation lifecycle core of palaver.
package session

import (
	"errors"
	"log"
	"sync"

	"github.com/morganforge/palaver/internal/model"
	"github.com/morganforge/palaver/internal/storage"
)

// =============================================================================
// STORE TYPE
// =============================================================================

// Store owns the conversation set and the active conversation id.
//
// The set is ordered most-recent-first: new conversations are prepended,
// so index 0 is always the newest. Two invariants hold across every
// operation: the set is never empty, and the active id always resolves
// to a member of the set. Every mutation is followed by a full-state
// save through the adapter.
type Store struct {
	mu       sync.Mutex
	adapter  storage.Adapter
	logger   *log.Logger
	convs    []*model.Conversation
	activeID string
}

// Patch describes a partial conversation update. Nil fields are left
// untouched; a non-nil Messages replaces the message list wholesale.
type Patch struct {
	Title      *string
	Messages   []model.Message
	Model      *string
	Parameters *model.Parameters
}

// NewStore loads persisted conversations through the adapter and
// guarantees a usable state: a first run (nothing persisted), a corrupt
// blob, or an empty persisted list all seed a fresh default conversation.
// Corruption is logged and discarded, never surfaced.
func NewStore(adapter storage.Adapter, logger *log.Logger, modelID string, params model.Parameters) *Store {
	s := &Store{
		adapter: adapter,
		logger:  logger,
	}

	convs, err := adapter.LoadSessions()
	switch {
	case err == nil:
		s.convs = convs
	case errors.Is(err, storage.ErrNotFound):
		// first run
	case errors.Is(err, storage.ErrCorrupt):
		logger.Printf("discarding corrupt session state: %v", err)
	default:
		logger.Printf("loading sessions failed: %v", err)
	}

	if len(s.convs) == 0 {
		s.convs = []*model.Conversation{model.NewConversation(modelID, params)}
		s.saveLocked()
	}
	s.activeID = s.convs[0].ID
	return s
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Create prepends a fresh conversation bound to the given model and
// parameters, makes it active, saves, and returns a snapshot of it.
func (s *Store) Create(modelID string, params model.Parameters) *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := model.NewConversation(modelID, params)
	s.convs = append([]*model.Conversation{conv}, s.convs...)
	s.activeID = conv.ID
	s.saveLocked()
	return conv.Clone()
}

// Remove deletes the conversation with the given id. Unknown ids are a
// silent no-op. When the removed conversation was active, the first
// remaining conversation becomes active; removing the last conversation
// creates a fresh one bound to the given model and parameters, so the
// set is never empty. Returns true if a conversation was removed.
func (s *Store) Remove(id, modelID string, params model.Parameters) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return false
	}
	s.convs = append(s.convs[:idx], s.convs[idx+1:]...)

	if len(s.convs) == 0 {
		conv := model.NewConversation(modelID, params)
		s.convs = []*model.Conversation{conv}
		s.activeID = conv.ID
	} else if s.activeID == id {
		s.activeID = s.convs[0].ID
	}
	s.saveLocked()
	return true
}

// Update applies a patch to the conversation with the given id and
// refreshes its UpdatedAt. Unknown ids are a silent no-op without a
// persistence write. Returns true if the conversation was updated.
func (s *Store) Update(id string, patch Patch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return false
	}
	conv := s.convs[idx]
	if patch.Title != nil {
		conv.Title = *patch.Title
	}
	if patch.Messages != nil {
		conv.Messages = patch.Messages
	}
	if patch.Model != nil {
		conv.Model = *patch.Model
	}
	if patch.Parameters != nil {
		conv.Parameters = *patch.Parameters
	}
	conv.Touch()
	s.saveLocked()
	return true
}

// AppendMessage appends a message to the conversation with the given id
// and saves. Unknown ids are a silent no-op without a save; the caller
// uses the return value to tell a landed reply from a discarded one.
func (s *Store) AppendMessage(id string, msg model.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return false
	}
	s.convs[idx].Append(msg)
	s.saveLocked()
	return true
}

// SwitchActive makes the conversation with the given id active.
// Unknown ids are a silent no-op; the previous active id stands.
func (s *Store) SwitchActive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(id) < 0 {
		return false
	}
	s.activeID = id
	s.saveLocked()
	return true
}

// =============================================================================
// READS
// =============================================================================

// ActiveID returns the id of the active conversation.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Active returns a snapshot of the active conversation.
func (s *Store) Active() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convs[s.indexLocked(s.activeID)].Clone()
}

// Get returns a snapshot of the conversation with the given id.
func (s *Store) Get(id string) (*model.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, false
	}
	return s.convs[idx].Clone(), true
}

// Contains reports whether a conversation with the given id exists.
func (s *Store) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexLocked(id) >= 0
}

// Snapshot returns clones of all conversations, most recent first.
func (s *Store) Snapshot() []*model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Conversation, len(s.convs))
	for i, conv := range s.convs {
		out[i] = conv.Clone()
	}
	return out
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.convs)
}

// =============================================================================
// INTERNAL
// =============================================================================

// indexLocked returns the index of the conversation with the given id,
// or -1. Caller holds the lock.
func (s *Store) indexLocked(id string) int {
	for i, conv := range s.convs {
		if conv.ID == id {
			return i
		}
	}
	return -1
}

// saveLocked writes the full conversation list through the adapter.
// A failed write is logged and the in-memory state stands; the next
// mutation retries with the complete state anyway. Caller holds the lock.
func (s *Store) saveLocked() {
	if err := s.adapter.SaveSessions(s.convs); err != nil {
		s.logger.Printf("persisting sessions failed: %v", err)
	}
}
