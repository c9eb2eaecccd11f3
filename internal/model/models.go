// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"fmt"
	"strings"
)

// =============================================================================
// MODEL INFO TYPE
// =============================================================================

// ModelInfo describes one interchangeable reply-generation backend.
// Entries are defined at process start and never mutated.
type ModelInfo struct {
	// ID is the model identifier used for dispatch and persistence
	ID string `json:"id"`

	// Name is the human-readable display name
	Name string `json:"name"`

	// Provider identifies who provides the model
	Provider string `json:"provider"`

	// Description is a brief explanation of the model's strengths
	Description string `json:"description"`

	// MaxTokens is the maximum context window size
	MaxTokens int `json:"max_tokens"`

	// Color is the accent color key used by the UI theme
	Color string `json:"color"`

	// Features is the ordered list of capability tags
	Features []string `json:"features"`
}

// DefaultModelID is the model substituted for unknown or empty ids.
// The UI must always have a displayable model, so lookups never fail.
const DefaultModelID = "gpt-4o"

// =============================================================================
// MODEL CATALOG
// =============================================================================

// Catalog is the ordered registry of known models.
var Catalog = []ModelInfo{
	{
		ID:          "gpt-4o",
		Name:        "GPT-4o",
		Provider:    "OpenAI",
		Description: "Most capable GPT model with vision and reasoning",
		MaxTokens:   128000,
		Color:       "green",
		Features:    []string{"Text", "Vision", "Code", "Function Calling"},
	},
	{
		ID:          "claude-3-5-sonnet",
		Name:        "Claude 3.5 Sonnet",
		Provider:    "Anthropic",
		Description: "Superior reasoning and analysis capabilities",
		MaxTokens:   200000,
		Color:       "orange",
		Features:    []string{"Text", "Vision", "Analysis", "Safety"},
	},
	{
		ID:          "gemini-1-5-pro",
		Name:        "Gemini 1.5 Pro",
		Provider:    "Google",
		Description: "Multimodal model with Google Search integration",
		MaxTokens:   128000,
		Color:       "blue",
		Features:    []string{"Text", "Vision", "Audio", "Search"},
	},
	{
		ID:          "copilot-gpt-4",
		Name:        "Copilot",
		Provider:    "Microsoft",
		Description: "GPT-4 with Bing Search and Office integration",
		MaxTokens:   64000,
		Color:       "purple",
		Features:    []string{"Text", "Search", "Office", "Code"},
	},
	{
		ID:          "perplexity-sonar",
		Name:        "Perplexity AI",
		Provider:    "Perplexity",
		Description: "Research-focused with real-time citations",
		MaxTokens:   32000,
		Color:       "teal",
		Features:    []string{"Research", "Citations", "Web Search"},
	},
	{
		ID:          "llama-3-70b",
		Name:        "Llama 3 70B",
		Provider:    "Meta",
		Description: "Open-source model with strong performance",
		MaxTokens:   8192,
		Color:       "indigo",
		Features:    []string{"Text", "Code", "Open Source"},
	},
}

// =============================================================================
// MODEL LOOKUP FUNCTIONS
// =============================================================================

// ListModels returns the catalog in declaration order.
// The returned slice is a copy; callers may not mutate catalog entries.
func ListModels() []ModelInfo {
	out := make([]ModelInfo, len(Catalog))
	copy(out, Catalog)
	return out
}

// GetModel looks up a model by id. Unknown ids resolve to the default
// model rather than failing.
func GetModel(id string) ModelInfo {
	for _, info := range Catalog {
		if info.ID == id {
			return info
		}
	}
	return mustGet(DefaultModelID)
}

// KnownModel reports whether id names a catalog entry.
func KnownModel(id string) bool {
	for _, info := range Catalog {
		if info.ID == id {
			return true
		}
	}
	return false
}

// mustGet returns the catalog entry for id. The default model is always
// present, so a miss here is a programming defect.
func mustGet(id string) ModelInfo {
	for _, info := range Catalog {
		if info.ID == id {
			return info
		}
	}
	panic(fmt.Sprintf("model: catalog entry %q missing", id))
}

// =============================================================================
// MODEL INFO METHODS
// =============================================================================

// FeaturesString returns a comma-separated list of capability tags.
func (m ModelInfo) FeaturesString() string {
	if len(m.Features) == 0 {
		return "General purpose"
	}
	return strings.Join(m.Features, ", ")
}

// ContextString returns a formatted context window string.
func (m ModelInfo) ContextString() string {
	if m.MaxTokens >= 1000 {
		return fmt.Sprintf("%dK tokens", m.MaxTokens/1000)
	}
	return fmt.Sprintf("%d tokens", m.MaxTokens)
}

// ProviderTag returns a short uppercase tag for sidebar display,
// derived from the first segment of the model id.
func (m ModelInfo) ProviderTag() string {
	seg, _, _ := strings.Cut(m.ID, "-")
	return strings.ToUpper(seg)
}
