// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components holds reusable render helpers shared by the chat and
// preview views: markdown, syntax-highlighted code fences, and chart art.
package components

import "github.com/charmbracelet/glamour"

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// Markdown wraps a glamour renderer pinned to one wrap width. Rebuilt on
// terminal resize; cheap enough to throw away.
type Markdown struct {
	renderer *glamour.TermRenderer
}

// NewMarkdown builds a renderer that word-wraps at the given width. A nil
// inner renderer (init failure) degrades to plain text.
func NewMarkdown(width int) *Markdown {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return &Markdown{}
	}
	return &Markdown{renderer: r}
}

// Render renders markdown for terminal display. Returns the input unchanged
// when rendering fails; a reply must never disappear over formatting.
func (m *Markdown) Render(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}
