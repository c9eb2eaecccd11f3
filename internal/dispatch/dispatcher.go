// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch produces simulated model replies.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/morganforge/palaver/internal/model"
)

// DefaultLatency is the simulated round-trip time for a reply.
const DefaultLatency = 1500 * time.Millisecond

// DefaultOutputTokens is the fixed placeholder output count reported for
// every simulated reply.
const DefaultOutputTokens = 120

// =============================================================================
// LATENCY STRATEGY
// =============================================================================

// Latency is the wait strategy applied between a send and its reply.
// It is the seam where a real network call would be substituted: replace
// the strategy, not the callers.
type Latency interface {
	// Wait blocks for the simulated duration or until ctx is done.
	Wait(ctx context.Context) error
}

// FixedLatency waits a constant duration.
type FixedLatency time.Duration

// Wait implements Latency.
func (l FixedLatency) Wait(ctx context.Context) error {
	if l <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(time.Duration(l))
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================
// REPLY DRAFT
// =============================================================================

// ReplyDraft is a generated reply before it becomes a conversation message.
type ReplyDraft struct {
	// ModelID is the catalog id that produced the reply (after fallback)
	ModelID string

	// ModelName is the display name recorded on the assistant message
	ModelName string

	// Content is the reply body
	Content string

	// Tokens is the input/output accounting for the exchange
	Tokens model.TokenUsage
}

// =============================================================================
// DISPATCHER
// =============================================================================

// Config holds dispatcher construction options.
type Config struct {
	// Latency is the wait strategy (default: FixedLatency(DefaultLatency))
	Latency Latency

	// Limit caps dispatches per second, modeling provider-side
	// throttling (default: no limit)
	Limit rate.Limit

	// Burst is the rate limiter burst size (default: 1)
	Burst int
}

// DefaultConfig returns the stock dispatcher configuration.
func DefaultConfig() Config {
	return Config{
		Latency: FixedLatency(DefaultLatency),
		Limit:   rate.Inf,
		Burst:   1,
	}
}

// Dispatcher maps (model id, prompt) pairs to simulated replies.
type Dispatcher struct {
	latency Latency
	limiter *rate.Limiter
}

// NewDispatcher creates a dispatcher from cfg, filling zero fields with
// defaults.
func NewDispatcher(cfg Config) *Dispatcher {
	if cfg.Latency == nil {
		cfg.Latency = FixedLatency(DefaultLatency)
	}
	if cfg.Limit == 0 {
		cfg.Limit = rate.Inf
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Dispatcher{
		latency: cfg.Latency,
		limiter: rate.NewLimiter(cfg.Limit, cfg.Burst),
	}
}

// GenerateReply produces the reply draft for a prompt. Pure function of
// its inputs: same catalog, same prompt, same draft. Unknown model ids
// fall back to the default model's template.
func (d *Dispatcher) GenerateReply(prompt, modelID string) ReplyDraft {
	info := model.GetModel(modelID)

	template, ok := responseTemplates[info.ID]
	if !ok {
		// Every catalog entry carries a template; reaching this branch
		// means the catalog and template table drifted apart.
		template = responseTemplates[model.DefaultModelID]
	}

	return ReplyDraft{
		ModelID:   info.ID,
		ModelName: info.Name,
		Content:   fmt.Sprintf(template, prompt),
		Tokens: model.TokenUsage{
			Input:  EstimateInputTokens(prompt),
			Output: DefaultOutputTokens,
		},
	}
}

// Dispatch waits out the rate limit and simulated latency, then returns
// the generated draft. Honors ctx cancellation between send and
// resolution so a deleted conversation's reply can be abandoned.
func (d *Dispatcher) Dispatch(ctx context.Context, prompt, modelID string) (ReplyDraft, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return ReplyDraft{}, err
	}
	if err := d.latency.Wait(ctx); err != nil {
		return ReplyDraft{}, err
	}
	return d.GenerateReply(prompt, modelID), nil
}

// EstimateInputTokens gives a rough token estimate for a prompt.
// Uses the approximation of ~4 characters per token, rounded up.
func EstimateInputTokens(prompt string) int {
	return (len(prompt) + 3) / 4
}
