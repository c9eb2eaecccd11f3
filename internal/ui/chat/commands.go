// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/palaver/internal/export"
	"github.com/morganforge/palaver/internal/model"
)

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// parseCommand splits a slash-command line into name and argument.
// Returns ok=false for ordinary message text.
func parseCommand(text string) (name, arg string, ok bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return "", "", false
	}
	name, arg, _ = strings.Cut(strings.TrimPrefix(trimmed, "/"), " ")
	return strings.ToLower(name), strings.TrimSpace(arg), name != ""
}

// runSlashCommand executes a slash command. Returns handled=false when
// the text is not a command, so it is sent as a message instead.
func (m *Model) runSlashCommand(text string) (tea.Cmd, bool) {
	name, arg, ok := parseCommand(text)
	if !ok {
		return nil, false
	}

	switch name {
	case "help":
		m.showHelp = !m.showHelp
		return nil, true

	case "new":
		m.controller.NewConversation()
		m.refreshViewport(true)
		return nil, true

	case "delete":
		m.controller.DeleteConversation(m.controller.Active().ID)
		m.refreshViewport(true)
		return m.setStatus("conversation deleted"), true

	case "model":
		if arg == "" {
			m.showPicker = true
			m.pickerIndex = m.currentPickerIndex()
			return nil, true
		}
		if !model.KnownModel(arg) {
			return m.setStatus(fmt.Sprintf("unknown model %q", arg)), true
		}
		m.controller.SetModel(arg)
		return m.setStatus("model: " + m.controller.Model().Name), true

	case "theme":
		m.toggleTheme()
		m.refreshViewport(false)
		return m.setStatus("theme: " + m.theme.Mode), true

	case "export":
		if arg == "" {
			arg = "markdown"
		}
		return m.exportActive(arg), true

	case "quit", "q":
		m.quitting = true
		return tea.Quit, true

	default:
		return m.setStatus(fmt.Sprintf("unknown command /%s", name)), true
	}
}

// exportActive exports the active conversation in the given format.
func (m *Model) exportActive(format string) tea.Cmd {
	conv := m.controller.Active()
	if conv.IsEmpty() {
		return m.setStatus("nothing to export")
	}

	opts := export.DefaultOptions()
	opts.Theme = m.theme.Mode
	exp, err := export.ForFormat(format, opts)
	if err != nil {
		return m.setStatus(err.Error())
	}
	path, err := export.ExportToFile(conv, exp, opts)
	if err != nil {
		m.logger.Printf("export failed: %v", err)
		return m.setStatus("export failed")
	}
	return m.setStatus("exported to " + path)
}
