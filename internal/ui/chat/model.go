// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"log"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/palaver/internal/model"
	"github.com/morganforge/palaver/internal/session"
	"github.com/morganforge/palaver/internal/storage"
	"github.com/morganforge/palaver/internal/ui/styles"
)

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// replyMsg delivers a resolved (or discarded) assistant reply.
type replyMsg session.Reply

// statusClearMsg clears a transient status line.
type statusClearMsg struct{}

// ConfigReloadedMsg announces that the config file changed on disk.
// Sent from outside the program by the config watcher.
type ConfigReloadedMsg struct {
	Theme string
}

// =============================================================================
// MODEL
// =============================================================================

// Options configures a new chat model.
type Options struct {
	Controller *session.Controller
	Adapter    storage.Adapter
	Theme      *styles.Theme
	Logger     *log.Logger
	Version    string
}

// Model is the Bubble Tea model for the chat interface. Conversation
// state lives in the session controller; the model only holds view
// state and snapshots.
type Model struct {
	controller *session.Controller
	adapter    storage.Adapter
	theme      *styles.Theme
	logger     *log.Logger
	version    string

	keys     KeyMap
	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model

	width  int
	height int
	ready  bool

	showSidebar bool
	showPicker  bool
	showHelp    bool
	pickerIndex int

	// status is a transient one-line notice shown in the status bar
	status string

	quitting bool
}

// New creates a chat model over the given controller.
func New(opts Options) *Model {
	input := textinput.New()
	input.Placeholder = "Type your message..."
	input.Prompt = "> "
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		controller:  opts.Controller,
		adapter:     opts.Adapter,
		theme:       opts.Theme,
		logger:      opts.Logger,
		version:     opts.Version,
		keys:        DefaultKeyMap(),
		input:       input,
		spin:        sp,
		showSidebar: true,
	}
	m.applyTheme()
	m.input.SetValue(opts.Controller.Draft())
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

// applyTheme pushes the current theme into the themed sub-components.
func (m *Model) applyTheme() {
	m.input.PromptStyle = m.theme.InputPrompt
	m.input.TextStyle = m.theme.InputText
	m.input.PlaceholderStyle = m.theme.InputPlaceholder
	m.spin.Style = m.theme.Spinner
}

// toggleTheme flips the theme and persists the preference.
func (m *Model) toggleTheme() {
	m.theme = m.theme.Toggle()
	m.applyTheme()
	if err := m.adapter.SaveTheme(m.theme.Mode); err != nil {
		m.logger.Printf("persisting theme preference failed: %v", err)
	}
}

// awaitReply returns a command that waits for the controller to resolve
// a send. The conversation the reply belongs to is carried in the
// message, not inferred from the active conversation.
func awaitReply(ch <-chan session.Reply) tea.Cmd {
	return func() tea.Msg {
		return replyMsg(<-ch)
	}
}

// pickerModels returns the catalog in picker order.
func pickerModels() []model.ModelInfo {
	return model.ListModels()
}
