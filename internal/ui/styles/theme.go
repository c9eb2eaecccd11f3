// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the palaver TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/morganforge/palaver/internal/storage"
)

// Theme holds all the styled components for the application.
// The mode follows the persisted theme preference; terminal capability
// detection only informs color degradation, not the palette choice.
type Theme struct {
	// Mode is "dark" or "light"
	Mode string

	// Terminal capabilities
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// SIDEBAR STYLES
	// ==========================================================================

	Sidebar              lipgloss.Style
	SidebarItem          lipgloss.Style
	SidebarItemActive    lipgloss.Style
	SidebarTitle         lipgloss.Style
	SidebarMeta          lipgloss.Style
	SidebarPendingMarker lipgloss.Style

	// ==========================================================================
	// MESSAGE BUBBLE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	MessageMeta     lipgloss.Style
	TokenBadge      lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	ModelBadge   lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// MODEL PICKER STYLES
	// ==========================================================================

	PickerBox          lipgloss.Style
	PickerItem         lipgloss.Style
	PickerItemSelected lipgloss.Style
	PickerDesc         lipgloss.Style

	// ==========================================================================
	// SPINNER AND LOADING STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style

	// ==========================================================================
	// ERROR STYLES
	// ==========================================================================

	ErrorBox   lipgloss.Style
	ErrorTitle lipgloss.Style
}

// NewTheme creates a theme in the given mode ("dark" or "light").
func NewTheme(mode string) *Theme {
	if mode != storage.ThemeLight {
		mode = storage.ThemeDark
	}

	colorProfile := termenv.ColorProfile()
	t := &Theme{
		Mode:         mode,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// Toggle returns a theme in the opposite mode.
func (t *Theme) Toggle() *Theme {
	if t.Mode == storage.ThemeDark {
		return NewTheme(storage.ThemeLight)
	}
	return NewTheme(storage.ThemeDark)
}

// IsDark reports whether the theme is in dark mode.
func (t *Theme) IsDark() bool {
	return t.Mode == storage.ThemeDark
}

// pick resolves an adaptive color against the theme mode. Lip Gloss
// adaptive colors follow the terminal's detected background; palaver's
// theme is an explicit user preference, so the resolution is forced.
func (t *Theme) pick(c lipgloss.AdaptiveColor) lipgloss.Color {
	if t.IsDark() {
		return lipgloss.Color(c.Dark)
	}
	return lipgloss.Color(c.Light)
}

// ModelAccent returns the resolved accent color for a catalog color key.
func (t *Theme) ModelAccent(key string) lipgloss.Color {
	return t.pick(ModelAccent(key))
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// App container
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	// Header
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.pick(Cyan)).
		Background(t.pick(SurfaceDim)).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.pick(Purple))

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(t.pick(TextSecondary)).
		Italic(true)

	// Sidebar
	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(t.pick(Overlay)).
		Padding(0, 1)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(t.pick(TextPrimary)).
		Padding(0, 1)

	t.SidebarItemActive = lipgloss.NewStyle().
		Background(t.pick(Purple)).
		Foreground(t.pick(TextInverse)).
		Bold(true).
		Padding(0, 1)

	t.SidebarTitle = lipgloss.NewStyle().
		Foreground(t.pick(Cyan)).
		Bold(true)

	t.SidebarMeta = lipgloss.NewStyle().
		Foreground(t.pick(TextMuted)).
		Italic(true)

	t.SidebarPendingMarker = lipgloss.NewStyle().
		Foreground(t.pick(Amber)).
		Bold(true)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(t.pick(UserBubbleFg)).
		Background(t.pick(UserBubbleBg)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.pick(UserBubbleBorder)).
		Padding(0, 2).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(t.pick(AssistantBubbleFg)).
		Background(t.pick(AssistantBubbleBg)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.pick(AssistantBubbleBorder)).
		Padding(0, 2).
		MarginRight(4)

	t.MessageMeta = lipgloss.NewStyle().
		Foreground(t.pick(TextMuted))

	t.TokenBadge = lipgloss.NewStyle().
		Foreground(t.pick(TextMuted)).
		Italic(true)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(t.pick(Overlay)).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(t.pick(Cyan)).
		Bold(true)

	t.InputText = lipgloss.NewStyle().
		Foreground(t.pick(TextPrimary))

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(t.pick(TextMuted)).
		Italic(true)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(t.pick(SurfaceDim)).
		Foreground(t.pick(TextSecondary)).
		Padding(0, 1)

	t.ModelBadge = lipgloss.NewStyle().
		Foreground(t.pick(Emerald)).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(t.pick(Cyan)).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(t.pick(TextMuted))

	// Model picker
	t.PickerBox = lipgloss.NewStyle().
		Background(t.pick(Surface)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.pick(Purple)).
		Padding(1, 2)

	t.PickerItem = lipgloss.NewStyle().
		Foreground(t.pick(TextPrimary)).
		Padding(0, 1)

	t.PickerItemSelected = lipgloss.NewStyle().
		Background(t.pick(Purple)).
		Foreground(t.pick(TextInverse)).
		Bold(true).
		Padding(0, 1)

	t.PickerDesc = lipgloss.NewStyle().
		Foreground(t.pick(TextMuted))

	// Spinner and loading
	t.Spinner = lipgloss.NewStyle().
		Foreground(t.pick(Purple))

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(t.pick(TextSecondary))

	// Errors
	t.ErrorBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(t.pick(Rose)).
		Padding(1, 2)

	t.ErrorTitle = lipgloss.NewStyle().
		Foreground(t.pick(Rose)).
		Bold(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
