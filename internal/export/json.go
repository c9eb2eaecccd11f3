// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/morganforge/palaver/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports conversations to machine-readable JSON. The
// document wraps the conversation with an export envelope so consumers
// can tell exported files from raw persisted state.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// jsonDocument is the export envelope.
type jsonDocument struct {
	Generator    string              `json:"generator"`
	ExportedAt   time.Time           `json:"exportedAt"`
	ModelName    string              `json:"modelName"`
	TotalTokens  int                 `json:"totalTokens"`
	Conversation *model.Conversation `json:"conversation"`
}

// Export converts a conversation to indented JSON.
func (e *JSONExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	doc := jsonDocument{
		Generator:    "palaver",
		ExportedAt:   time.Now(),
		ModelName:    model.GetModel(conv.Model).Name,
		TotalTokens:  conversationTokens(conv),
		Conversation: conv,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode conversation: %w", err)
	}
	return append(data, '\n'), nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
