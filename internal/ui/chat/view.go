// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/morganforge/palaver/internal/model"
	"github.com/morganforge/palaver/internal/ui/styles"
	"github.com/morganforge/palaver/internal/util"
)

// Fixed row heights of the chrome around the transcript.
const (
	headerHeight = 2
	inputHeight  = 3
	statusHeight = 1

	sidebarWidth = 28
)

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// transcriptWidth is the viewport width after the sidebar.
func (m *Model) transcriptWidth() int {
	if m.showSidebar && m.theme.GetLayoutMode() != styles.LayoutNarrow {
		return m.width - sidebarWidth
	}
	return m.width
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	if m.showPicker {
		return m.renderPicker()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	transcript := m.viewport.View()
	if m.showSidebar && m.theme.GetLayoutMode() != styles.LayoutNarrow {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), transcript))
	} else {
		b.WriteString(transcript)
	}
	b.WriteString("\n")

	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	if m.showHelp {
		return b.String() + "\n" + m.renderHelp()
	}
	return b.String()
}

// =============================================================================
// HEADER
// =============================================================================

func (m *Model) renderHeader() string {
	active := m.controller.Active()
	title := m.theme.HeaderTitle.Render(util.TruncateWidth(active.Title, m.width-20))
	brand := m.theme.Header.Render("palaver")
	line := lipgloss.JoinHorizontal(lipgloss.Center, brand, " ", title)
	return lipgloss.NewStyle().Width(m.width).Render(line)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m *Model) renderSidebar() string {
	active := m.controller.Active()
	var rows []string
	rows = append(rows, m.theme.SidebarTitle.Render("Conversations"))

	for _, conv := range m.controller.Conversations() {
		title := util.TruncateWidth(conv.Title, sidebarWidth-6)
		marker := "  "
		if m.controller.Pending(conv.ID) {
			marker = m.theme.SidebarPendingMarker.Render("* ")
		}
		line := marker + title
		if conv.ID == active.ID {
			rows = append(rows, m.theme.SidebarItemActive.Render(line))
		} else {
			rows = append(rows, m.theme.SidebarItem.Render(line))
		}
		meta := fmt.Sprintf("%d msgs", conv.MessageCount())
		rows = append(rows, "  "+m.theme.SidebarMeta.Render(meta))
	}

	body := strings.Join(rows, "\n")
	return m.theme.Sidebar.
		Width(sidebarWidth - 2).
		Height(m.viewport.Height).
		Render(body)
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshViewport re-renders the active conversation into the viewport.
func (m *Model) refreshViewport(gotoBottom bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderTranscript() string {
	conv := m.controller.Active()
	width := m.transcriptWidth() - 8
	if width < 20 {
		width = 20
	}

	if conv.IsEmpty() {
		info := m.controller.Model()
		welcome := fmt.Sprintf("Start chatting with %s\n\n%s\nContext: %s",
			info.Name, info.Description, info.ContextString())
		return m.theme.ThinkingText.Render(welcome)
	}

	var blocks []string
	for _, msg := range conv.Messages {
		blocks = append(blocks, m.renderMessage(msg, width))
	}
	if m.controller.Pending(conv.ID) {
		blocks = append(blocks, m.spin.View()+m.theme.ThinkingText.Render(" thinking..."))
	}
	return strings.Join(blocks, "\n\n")
}

func (m *Model) renderMessage(msg model.Message, width int) string {
	meta := m.theme.MessageMeta.Render(
		fmt.Sprintf("%s  %s", msg.Role.DisplayName(), msg.Timestamp.Format("15:04")))

	switch msg.Role {
	case model.RoleUser:
		bubble := m.theme.UserBubble.Width(width).Render(msg.Content)
		return lipgloss.JoinVertical(lipgloss.Right, meta, bubble)
	default:
		if msg.Model != "" {
			meta = m.theme.MessageMeta.Render(
				fmt.Sprintf("%s  %s", msg.Model, msg.Timestamp.Format("15:04")))
		}
		bubble := m.theme.AssistantBubble.Width(width).Render(msg.Content)
		parts := []string{meta, bubble}
		if msg.Tokens != nil {
			parts = append(parts, m.theme.TokenBadge.Render(
				fmt.Sprintf("%d in / %d out tokens", msg.Tokens.Input, msg.Tokens.Output)))
		}
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}
}

// =============================================================================
// INPUT AND STATUS
// =============================================================================

func (m *Model) renderInput() string {
	return m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
}

func (m *Model) renderStatusBar() string {
	info := m.controller.Model()
	badge := lipgloss.NewStyle().
		Foreground(m.theme.ModelAccent(info.Color)).
		Bold(true).
		Render(info.Name)

	left := badge
	if m.status != "" {
		left += m.theme.ShortcutDesc.Render("  " + m.status)
	}

	var hints []string
	for _, b := range m.keys.ShortHelp() {
		hints = append(hints,
			m.theme.ShortcutKey.Render(b.Help().Key)+" "+m.theme.ShortcutDesc.Render(b.Help().Desc))
	}
	right := strings.Join(hints, "  ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Width(m.width).Render(
		left + strings.Repeat(" ", gap) + right)
}

// =============================================================================
// OVERLAYS
// =============================================================================

func (m *Model) renderPicker() string {
	var rows []string
	rows = append(rows, m.theme.HeaderTitle.Render("Select Model"), "")

	for i, info := range pickerModels() {
		accent := lipgloss.NewStyle().Foreground(m.theme.ModelAccent(info.Color)).Render("●")
		line := fmt.Sprintf("%s %s  %s", accent, info.Name,
			m.theme.PickerDesc.Render(info.ProviderTag()+" · "+info.ContextString()))
		if i == m.pickerIndex {
			rows = append(rows, m.theme.PickerItemSelected.Render(line))
		} else {
			rows = append(rows, m.theme.PickerItem.Render(line))
		}
		rows = append(rows, "   "+m.theme.PickerDesc.Render(info.Description))
	}
	rows = append(rows, "", m.theme.ShortcutDesc.Render("enter select · esc cancel"))

	box := m.theme.PickerBox.Render(strings.Join(rows, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) renderHelp() string {
	var rows []string
	for _, group := range m.keys.FullHelp() {
		var cols []string
		for _, b := range group {
			cols = append(cols,
				m.theme.ShortcutKey.Render(util.PadRight(b.Help().Key, 8))+
					m.theme.ShortcutDesc.Render(b.Help().Desc))
		}
		rows = append(rows, strings.Join(cols, "   "))
	}
	return m.theme.Container.Render(strings.Join(rows, "\n"))
}
