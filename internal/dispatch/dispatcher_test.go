// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatch produces simulated model replies.
package dispatch

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/morganforge/palaver/internal/model"
)

// =============================================================================
// REPLY GENERATION TESTS
// =============================================================================

func TestGenerateReply_EchoesPromptPerModel(t *testing.T) {
	d := NewDispatcher(Config{Latency: FixedLatency(0)})

	tests := []struct {
		modelID      string
		wantName     string
		wantContains string
	}{
		{"gpt-4o", "GPT-4o", "I'm GPT-4o from OpenAI"},
		{"claude-3-5-sonnet", "Claude 3.5 Sonnet", "Anthropic"},
		{"gemini-1-5-pro", "Gemini 1.5 Pro", "Google Search integration"},
		{"copilot-gpt-4", "Copilot", "Bing Search"},
		{"perplexity-sonar", "Perplexity AI", "verified citations"},
		{"llama-3-70b", "Llama 3 70B", "open-source language model"},
	}

	for _, tc := range tests {
		t.Run(tc.modelID, func(t *testing.T) {
			draft := d.GenerateReply("sorting networks", tc.modelID)

			if draft.ModelID != tc.modelID {
				t.Errorf("ModelID = %q, want %q", draft.ModelID, tc.modelID)
			}
			if draft.ModelName != tc.wantName {
				t.Errorf("ModelName = %q, want %q", draft.ModelName, tc.wantName)
			}
			if !strings.Contains(draft.Content, `"sorting networks"`) {
				t.Errorf("reply does not echo the prompt: %q", draft.Content)
			}
			if !strings.Contains(draft.Content, tc.wantContains) {
				t.Errorf("reply missing %q", tc.wantContains)
			}
		})
	}
}

func TestGenerateReply_UnknownModelFallsBack(t *testing.T) {
	d := NewDispatcher(Config{Latency: FixedLatency(0)})

	draft := d.GenerateReply("hello", "made-up-model")

	if draft.ModelID != model.DefaultModelID {
		t.Errorf("ModelID = %q, want default %q", draft.ModelID, model.DefaultModelID)
	}
	if !strings.Contains(draft.Content, "I'm GPT-4o from OpenAI") {
		t.Errorf("fallback reply should use the default template, got %q", draft.Content)
	}
}

func TestGenerateReply_Deterministic(t *testing.T) {
	d := NewDispatcher(Config{Latency: FixedLatency(0)})

	a := d.GenerateReply("same prompt", "claude-3-5-sonnet")
	b := d.GenerateReply("same prompt", "claude-3-5-sonnet")

	if a != b {
		t.Errorf("GenerateReply is not deterministic: %+v vs %+v", a, b)
	}
}

func TestEveryCatalogModelHasTemplate(t *testing.T) {
	for _, info := range model.ListModels() {
		if _, ok := responseTemplates[info.ID]; !ok {
			t.Errorf("catalog model %q has no response template", info.ID)
		}
	}
}

// =============================================================================
// TOKEN ESTIMATION TESTS
// =============================================================================

func TestEstimateInputTokens(t *testing.T) {
	tests := []struct {
		prompt string
		want   int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 24), 6},
		{"Explain quicksort please", 6}, // 24 characters
	}

	for _, tc := range tests {
		if got := EstimateInputTokens(tc.prompt); got != tc.want {
			t.Errorf("EstimateInputTokens(%q) = %d, want %d", tc.prompt, got, tc.want)
		}
	}
}

func TestGenerateReply_TokenAccounting(t *testing.T) {
	d := NewDispatcher(Config{Latency: FixedLatency(0)})

	draft := d.GenerateReply("Explain quicksort please", "gpt-4o")

	if draft.Tokens.Input != 6 {
		t.Errorf("Tokens.Input = %d, want 6", draft.Tokens.Input)
	}
	if draft.Tokens.Output != DefaultOutputTokens {
		t.Errorf("Tokens.Output = %d, want %d", draft.Tokens.Output, DefaultOutputTokens)
	}
}

// =============================================================================
// LATENCY AND CANCELLATION TESTS
// =============================================================================

func TestDispatch_ZeroLatencyResolvesImmediately(t *testing.T) {
	d := NewDispatcher(Config{Latency: FixedLatency(0)})

	start := time.Now()
	draft, err := d.Dispatch(context.Background(), "hi", "gpt-4o")
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("zero-latency dispatch took %v", elapsed)
	}
	if draft.Content == "" {
		t.Error("Dispatch() returned empty draft")
	}
}

func TestDispatch_HonorsCancellation(t *testing.T) {
	d := NewDispatcher(Config{Latency: FixedLatency(time.Minute)})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := d.Dispatch(ctx, "hi", "gpt-4o")
		errCh <- err
	}()

	cancel()

	select {
	case err := <-errCh:
		if err == nil {
			t.Error("Dispatch() should fail when the context is cancelled")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Dispatch() did not observe cancellation")
	}
}

func TestFixedLatency_WaitsRoughlyTheConfiguredTime(t *testing.T) {
	start := time.Now()
	if err := FixedLatency(20 * time.Millisecond).Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Wait() returned after %v, want at least 20ms", elapsed)
	}
}
