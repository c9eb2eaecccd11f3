// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session is the conversation lifecycle core of palaver.
//
// It owns the set of conversations, the active conversation id, and the
// pending-reply bookkeeping. The presentation layer (TUI, REPL, session
// commands) only reads snapshots and dispatches intents; every mutation
// flows through here and is followed by a full-state persistence write,
// so a restart never loses committed messages.
//
// # Key Types
//
//   - Store: CRUD over the conversation set, invariant enforcement,
//     persistence sequencing ("mutate, then save")
//   - Controller: orchestrates the active conversation - sends, title
//     derivation, model/parameter binding, reply resolution
//   - Reply: a resolved (or discarded) assistant reply event
//
// # Invariants
//
// The conversation set is never empty: removing the last conversation
// atomically creates a fresh default one. The active id always resolves
// to an existing conversation. Pending replies are tracked per
// conversation id, and a reply always lands in the conversation that
// originated it - or is discarded if that conversation was deleted while
// the reply was in flight.
package session
