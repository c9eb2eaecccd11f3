// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

// =============================================================================
// GENERATION PARAMETERS
// =============================================================================

// Parameters holds the tunable generation knobs attached to a conversation.
// It is a value object: each conversation owns its own copy, so adjusting
// one conversation's parameters never affects another.
type Parameters struct {
	// Temperature controls sampling randomness (0-2 typical range)
	Temperature float64 `json:"temperature" toml:"temperature"`

	// MaxTokens is the reply token ceiling
	MaxTokens int `json:"maxTokens" toml:"max_tokens"`

	// TopP is the nucleus sampling cutoff
	TopP float64 `json:"topP" toml:"top_p"`

	// FrequencyPenalty discourages token repetition
	FrequencyPenalty float64 `json:"frequencyPenalty" toml:"frequency_penalty"`

	// PresencePenalty discourages topic repetition
	PresencePenalty float64 `json:"presencePenalty" toml:"presence_penalty"`
}

// DefaultParameters returns the stock generation parameters.
func DefaultParameters() Parameters {
	return Parameters{
		Temperature:      0.7,
		MaxTokens:        2048,
		TopP:             1.0,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
	}
}

// Clamp returns a copy with out-of-range values pulled back into their
// valid ranges. Used when merging values from config or UI input.
func (p Parameters) Clamp() Parameters {
	if p.Temperature < 0 {
		p.Temperature = 0
	}
	if p.Temperature > 2 {
		p.Temperature = 2
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = DefaultParameters().MaxTokens
	}
	if p.TopP <= 0 || p.TopP > 1 {
		p.TopP = 1
	}
	return p
}
