// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/palaver/internal/ui/styles"
)

// statusDuration is how long a transient status line stays visible.
const statusDuration = 3 * time.Second

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case replyMsg:
		// The controller already appended (or discarded) the reply;
		// refresh the transcript if the originating conversation is the
		// one on screen.
		if !msg.Discarded && msg.ConversationID == m.controller.Active().ID {
			m.refreshViewport(true)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case statusClearMsg:
		m.status = ""
		return m, nil

	case ConfigReloadedMsg:
		// The config file's theme applies only when it actually changed;
		// a preference toggled in the UI is not overridden by unrelated
		// config edits.
		if msg.Theme != m.theme.Mode {
			m.theme = styles.NewTheme(msg.Theme)
			m.theme.SetSize(m.width, m.height)
			m.applyTheme()
			m.refreshViewport(false)
			return m, m.setStatus("theme: " + m.theme.Mode)
		}
		return m, nil
	}

	return m, nil
}

// =============================================================================
// RESIZE
// =============================================================================

func (m *Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	// Narrow terminals drop the sidebar
	if m.theme.GetLayoutMode() == styles.LayoutNarrow {
		m.showSidebar = false
	}

	contentHeight := m.height - headerHeight - inputHeight - statusHeight
	if contentHeight < 1 {
		contentHeight = 1
	}
	if !m.ready {
		m.viewport = newViewport(m.transcriptWidth(), contentHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.transcriptWidth()
		m.viewport.Height = contentHeight
	}
	m.input.Width = m.width - 6
	m.refreshViewport(true)
	return m, nil
}

// =============================================================================
// KEYS
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showPicker {
		return m.handlePickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.controller.SetDraft(m.input.Value())
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.handleSubmit()

	case key.Matches(msg, m.keys.NewChat):
		m.controller.NewConversation()
		m.input.SetValue("")
		m.refreshViewport(true)
		return m, nil

	case key.Matches(msg, m.keys.DeleteChat):
		m.controller.DeleteConversation(m.controller.Active().ID)
		m.input.SetValue(m.controller.Draft())
		m.refreshViewport(true)
		return m, m.setStatus("conversation deleted")

	case key.Matches(msg, m.keys.NextChat):
		return m.switchRelative(1)

	case key.Matches(msg, m.keys.PrevChat):
		return m.switchRelative(-1)

	case key.Matches(msg, m.keys.ModelPicker):
		m.showPicker = true
		m.pickerIndex = m.currentPickerIndex()
		return m, nil

	case key.Matches(msg, m.keys.ThemeToggle):
		m.toggleTheme()
		m.refreshViewport(false)
		return m, m.setStatus("theme: " + m.theme.Mode)

	case key.Matches(msg, m.keys.Sidebar):
		m.showSidebar = !m.showSidebar
		m.viewport.Width = m.transcriptWidth()
		m.refreshViewport(false)
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleSubmit() (tea.Model, tea.Cmd) {
	text := m.input.Value()

	if cmd, handled := m.runSlashCommand(text); handled {
		m.input.SetValue("")
		return m, cmd
	}

	if strings.TrimSpace(text) == "" {
		return m, nil
	}
	if m.controller.PendingActive() {
		return m, m.setStatus("waiting for the current reply")
	}

	ch, ok := m.controller.SendMessage(text)
	if !ok {
		return m, nil
	}
	m.input.SetValue("")
	m.refreshViewport(true)
	return m, awaitReply(ch)
}

func (m *Model) switchRelative(delta int) (tea.Model, tea.Cmd) {
	convs := m.controller.Conversations()
	if len(convs) < 2 {
		return m, nil
	}
	activeID := m.controller.Active().ID
	idx := 0
	for i, conv := range convs {
		if conv.ID == activeID {
			idx = i
			break
		}
	}
	next := (idx + delta + len(convs)) % len(convs)

	m.controller.SetDraft(m.input.Value())
	m.controller.SwitchConversation(convs[next].ID)
	m.input.SetValue(m.controller.Draft())
	m.refreshViewport(true)
	return m, nil
}

// =============================================================================
// MODEL PICKER
// =============================================================================

func (m *Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	models := pickerModels()
	switch msg.String() {
	case "up", "k":
		if m.pickerIndex > 0 {
			m.pickerIndex--
		}
	case "down", "j":
		if m.pickerIndex < len(models)-1 {
			m.pickerIndex++
		}
	case "enter":
		m.controller.SetModel(models[m.pickerIndex].ID)
		m.showPicker = false
		return m, m.setStatus("model: " + models[m.pickerIndex].Name)
	case "esc", "ctrl+p":
		m.showPicker = false
	case "ctrl+c", "ctrl+q":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) currentPickerIndex() int {
	current := m.controller.Model().ID
	for i, info := range pickerModels() {
		if info.ID == current {
			return i
		}
	}
	return 0
}

// =============================================================================
// STATUS
// =============================================================================

// setStatus shows a transient status line and schedules its clearing.
func (m *Model) setStatus(text string) tea.Cmd {
	m.status = text
	return tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return statusClearMsg{}
	})
}
