// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing chat conversations, messages, generation parameters, and
// the static catalog of simulated model backends.
//
// # Key Types
//
//   - Conversation: Container for a chat session with messages and metadata
//   - Message: Single message with role, content, timestamp, and token counts
//   - Parameters: Tunable generation knobs copied by value per conversation
//   - ModelInfo: Catalog entry describing one reply-generation backend
//   - Role: Message role enumeration (user, assistant)
//
// # Usage
//
// Create a new conversation bound to a model:
//
//	conv := model.NewConversation("gpt-4o", model.DefaultParameters())
//	conv.Append(model.NewUserMessage("Hello!"))
//
// Look up a model (unknown ids resolve to the default):
//
//	info := model.GetModel("gpt-4o")
//	fmt.Printf("Model: %s (%s)\n", info.Name, info.Provider)
package model
