// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch produces simulated model replies.
//
// Each catalog model id maps to a templated response body that echoes the
// prompt; unknown ids fall back to the default model's template. Reply
// generation itself is a pure function of its inputs. Latency is a
// separate injected strategy, so a real provider client can replace the
// simulation without touching any caller.
//
// # Key Types
//
//   - Dispatcher: binds templates, latency, and a client-side rate limit
//   - ReplyDraft: the generated body plus token accounting
//   - Latency: pluggable wait strategy (FixedLatency by default)
//
// # Usage
//
//	d := dispatch.NewDispatcher(dispatch.DefaultConfig())
//	draft, err := d.Dispatch(ctx, "Explain quicksort please", "gpt-4o")
package dispatch
