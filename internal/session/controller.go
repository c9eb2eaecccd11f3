// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session is the conversation lifecycle core of palaver.
package session

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/morganforge/palaver/internal/dispatch"
	"github.com/morganforge/palaver/internal/model"
)

// =============================================================================
// REPLY EVENT
// =============================================================================

// Reply is the resolution of a send: either an assistant message that
// landed in its originating conversation, or a discard notice when that
// conversation was deleted while the reply was in flight.
type Reply struct {
	// ConversationID is the conversation the send originated from
	ConversationID string

	// Message is the appended assistant message (zero when discarded)
	Message model.Message

	// Discarded is true when the reply was dropped instead of appended
	Discarded bool
}

// =============================================================================
// CONTROLLER TYPE
// =============================================================================

// Controller orchestrates the active conversation: sending, title
// derivation, model and parameter selection, and reply resolution.
//
// Each send captures the id of the conversation it originated from.
// While a reply for a conversation is pending, further sends to that
// conversation are refused; other conversations are unaffected. The
// reply is appended to the originating conversation regardless of which
// conversation is active at resolution time, and is discarded if the
// originating conversation no longer exists.
type Controller struct {
	mu         sync.Mutex
	store      *Store
	dispatcher *dispatch.Dispatcher
	logger     *log.Logger

	modelID string
	params  model.Parameters
	draft   string

	// pending maps a conversation id to the cancel function of its
	// in-flight dispatch
	pending map[string]context.CancelFunc
}

// NewController creates a controller over the given store. The model
// and parameter selection are primed from the active conversation.
func NewController(store *Store, dispatcher *dispatch.Dispatcher, logger *log.Logger) *Controller {
	active := store.Active()
	return &Controller{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		modelID:    model.GetModel(active.Model).ID,
		params:     active.Parameters,
		pending:    make(map[string]context.CancelFunc),
	}
}

// =============================================================================
// SENDING
// =============================================================================

// SendMessage commits the given text as a user message on the active
// conversation and starts reply resolution in the background. The
// returned channel delivers exactly one Reply.
//
// Whitespace-only text is refused, as is a send while a reply for the
// active conversation is still pending; both return (nil, false) and
// leave every conversation and the persisted state untouched.
func (c *Controller) SendMessage(text string) (<-chan Reply, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	convID := c.store.ActiveID()
	if _, busy := c.pending[convID]; busy {
		return nil, false
	}

	conv, ok := c.store.Get(convID)
	if !ok {
		return nil, false
	}

	patch := Patch{
		Messages:   append(conv.Messages, model.NewUserMessage(trimmed)),
		Model:      &c.modelID,
		Parameters: &c.params,
	}
	if conv.IsEmpty() {
		title := model.DeriveTitle(trimmed)
		patch.Title = &title
	}
	c.store.Update(convID, patch)
	c.draft = ""

	ctx, cancel := context.WithCancel(context.Background())
	c.pending[convID] = cancel

	ch := make(chan Reply, 1)
	go c.resolve(ctx, convID, trimmed, c.modelID, ch)
	return ch, true
}

// resolve waits out the dispatch and lands (or discards) the reply.
func (c *Controller) resolve(ctx context.Context, convID, prompt, modelID string, ch chan<- Reply) {
	draft, err := c.dispatcher.Dispatch(ctx, prompt, modelID)

	c.mu.Lock()
	if cancel, ok := c.pending[convID]; ok {
		cancel()
		delete(c.pending, convID)
	}
	c.mu.Unlock()

	if err != nil {
		// cancelled: the originating conversation was deleted mid-flight
		ch <- Reply{ConversationID: convID, Discarded: true}
		return
	}

	msg := model.NewAssistantMessage(draft.Content, draft.ModelName, draft.Tokens)
	if !c.store.AppendMessage(convID, msg) {
		ch <- Reply{ConversationID: convID, Discarded: true}
		return
	}
	ch <- Reply{ConversationID: convID, Message: msg}
}

// Pending reports whether a reply is in flight for the conversation
// with the given id.
func (c *Controller) Pending(convID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[convID]
	return ok
}

// PendingActive reports whether a reply is in flight for the active
// conversation. Drives the waiting indicator.
func (c *Controller) PendingActive() bool {
	return c.Pending(c.store.ActiveID())
}

// =============================================================================
// CONVERSATION LIFECYCLE
// =============================================================================

// NewConversation creates a fresh conversation bound to the current
// model and parameter selection, makes it active, and clears the draft.
// Any reply pending for the previous conversation keeps resolving; it
// will land in its own conversation, not the new one.
func (c *Controller) NewConversation() *model.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.draft = ""
	return c.store.Create(c.modelID, c.params)
}

// DeleteConversation removes the conversation with the given id,
// cancelling any reply pending for it so the reply is discarded rather
// than appended to a ghost. Deleting the active conversation shifts
// focus per the store's replacement rule and re-primes the model and
// parameter selection from the new active conversation.
func (c *Controller) DeleteConversation(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cancel, ok := c.pending[id]; ok {
		cancel()
		delete(c.pending, id)
	}

	wasActive := c.store.ActiveID() == id
	if !c.store.Remove(id, c.modelID, c.params) {
		return false
	}
	if wasActive {
		c.draft = ""
		c.primeFromActiveLocked()
	}
	return true
}

// SwitchConversation makes the conversation with the given id active
// and loads its bound model and parameters into the selection. Unknown
// ids are a silent no-op.
func (c *Controller) SwitchConversation(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.store.SwitchActive(id) {
		return false
	}
	c.primeFromActiveLocked()
	return true
}

// primeFromActiveLocked reloads the model and parameter selection from
// the active conversation. Caller holds the lock.
func (c *Controller) primeFromActiveLocked() {
	active := c.store.Active()
	c.modelID = model.GetModel(active.Model).ID
	c.params = active.Parameters
}

// =============================================================================
// SELECTION
// =============================================================================

// SetModel changes the model selection and rebinds the active
// conversation to it. Unknown ids resolve to the default model.
func (c *Controller) SetModel(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.modelID = model.GetModel(id).ID
	c.store.Update(c.store.ActiveID(), Patch{Model: &c.modelID})
}

// SetParameters clamps and applies a new parameter snapshot to the
// selection and the active conversation.
func (c *Controller) SetParameters(params model.Parameters) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.params = params.Clamp()
	c.store.Update(c.store.ActiveID(), Patch{Parameters: &c.params})
}

// Model returns the current model selection.
func (c *Controller) Model() model.ModelInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.GetModel(c.modelID)
}

// Parameters returns the current parameter selection.
func (c *Controller) Parameters() model.Parameters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}

// =============================================================================
// DRAFT
// =============================================================================

// Draft returns the composition buffer.
func (c *Controller) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetDraft replaces the composition buffer. The draft is in-memory
// only; it is never persisted.
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = text
}

// =============================================================================
// READS
// =============================================================================

// Active returns a snapshot of the active conversation.
func (c *Controller) Active() *model.Conversation {
	return c.store.Active()
}

// Conversations returns snapshots of all conversations, most recent
// first.
func (c *Controller) Conversations() []*model.Conversation {
	return c.store.Snapshot()
}
