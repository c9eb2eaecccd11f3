// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTitle is the title of a conversation before its first message.
const DefaultTitle = "New Chat"

// Title derivation limits: at most TitleMaxWords words, truncated to
// TitleMaxRunes characters with an ellipsis marker.
const (
	TitleMaxWords = 6
	TitleMaxRunes = 30
	TitleEllipsis = "..."
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds a titled, ordered sequence of messages bound to one
// model and one parameter snapshot. Conversations are owned exclusively by
// the session store; UpdatedAt is refreshed on every mutation.
type Conversation struct {
	// Identity
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Messages in chronological (insertion) order
	Messages []Message `json:"messages"`

	// Model is the id of the bound catalog entry
	Model string `json:"model"`

	// Parameters is this conversation's own snapshot
	Parameters Parameters `json:"parameters"`
}

// NewConversation creates a fresh conversation bound to the given model and
// parameters. The id is random: clock-derived ids collide under rapid
// successive creates.
func NewConversation(modelID string, params Parameters) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:         uuid.NewString(),
		Title:      DefaultTitle,
		CreatedAt:  now,
		UpdatedAt:  now,
		Messages:   make([]Message, 0),
		Model:      modelID,
		Parameters: params,
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the conversation and refreshes UpdatedAt.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
}

// Touch refreshes UpdatedAt.
func (c *Conversation) Touch() {
	c.UpdatedAt = time.Now()
}

// LastMessage returns the most recent message and true, or false if empty.
func (c *Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// FirstUserMessage returns the earliest user message and true, or false if
// none exists.
func (c *Conversation) FirstUserMessage() (Message, bool) {
	for _, msg := range c.Messages {
		if msg.Role == RoleUser {
			return msg, true
		}
	}
	return Message{}, false
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Clone creates a deep copy of the conversation. Snapshots handed to the
// presentation layer are clones so UI code can never mutate owned state.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	return &clone
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// DeriveTitle produces a display title from a conversation's first user
// message: the first TitleMaxWords whitespace-separated words joined by
// single spaces, truncated to TitleMaxRunes characters plus an ellipsis
// marker when longer. Inputs already within both limits pass through
// unchanged, so the derivation is idempotent.
func DeriveTitle(firstMessage string) string {
	words := strings.Fields(strings.TrimSpace(firstMessage))
	if len(words) > TitleMaxWords {
		words = words[:TitleMaxWords]
	}
	title := strings.Join(words, " ")

	runes := []rune(title)
	if len(runes) > TitleMaxRunes {
		return string(runes[:TitleMaxRunes]) + TitleEllipsis
	}
	return title
}
