// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles defines the shared color palette and the lipgloss theme
// used by every terminal view.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// Theme
// =============================================================================

// Theme holds the pre-built lipgloss styles for the chat and preview views.
// Build one with NewTheme at startup and pass it down; styles are immutable
// after construction.
type Theme struct {
	// Chrome.
	Header    lipgloss.Style
	StatusBar lipgloss.Style
	StatusKey lipgloss.Style
	Help      lipgloss.Style

	// Conversation.
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style
	Thinking        lipgloss.Style
	ErrorBox        lipgloss.Style

	// Preview pane.
	PreviewUserBubble lipgloss.Style
	PreviewBotBubble  lipgloss.Style
	PreviewFrame      lipgloss.Style

	// Input.
	Prompt lipgloss.Style

	// Graphs.
	GraphTitle lipgloss.Style
	GraphBar   lipgloss.Style
	GraphAxis  lipgloss.Style
	GraphValue lipgloss.Style

	// Profile is the detected terminal color capability.
	Profile termenv.Profile
}

// NewTheme builds the theme for the current terminal. themePref comes from
// config ("auto", "dark", "light") and overrides background detection; color
// depth always follows what the terminal reports.
func NewTheme(themePref string) *Theme {
	profile := termenv.ColorProfile()

	// USABILITY: an explicit preference beats the (often wrong over SSH or
	// inside multiplexers) background probe.
	switch themePref {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}

	t := &Theme{Profile: profile}

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		Padding(0, 1)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceRaised).
		Padding(0, 1)

	t.StatusKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Help = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		Padding(0, 1)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		Background(AssistantBubbleBg).
		Padding(0, 1)

	t.UserLabel = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.Thinking = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.ErrorBox = lipgloss.NewStyle().
		Foreground(Rose).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(0, 1)

	t.PreviewUserBubble = lipgloss.NewStyle().
		Foreground(PreviewUserFg).
		Background(PreviewUserBg).
		Padding(0, 1)

	t.PreviewBotBubble = lipgloss.NewStyle().
		Foreground(PreviewBotFg).
		Background(PreviewBotBg).
		Padding(0, 1)

	t.PreviewFrame = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)

	t.Prompt = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.GraphTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	t.GraphBar = lipgloss.NewStyle().
		Foreground(Cyan)

	t.GraphAxis = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.GraphValue = lipgloss.NewStyle().
		Foreground(TextSecondary)

	return t
}
