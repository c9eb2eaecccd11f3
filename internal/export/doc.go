// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export provides conversation export functionality for palaver.
//
// Conversations can be exported to Markdown (with YAML frontmatter),
// machine-readable JSON, or standalone HTML with embedded styling for
// both themes. Exports are written atomically so an interrupted export
// never leaves a truncated file.
//
// # Key Types
//
//   - Exporter: format-specific conversion contract
//   - Options: output directory, metadata, timestamps, HTML theme
//
// # Usage
//
//	exp, err := export.ForFormat("markdown", nil)
//	if err != nil { ... }
//	path, err := export.ExportToFile(conv, exp, nil)
package export
