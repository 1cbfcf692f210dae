// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/bot360/bot360-tui/internal/model"
	"github.com/bot360/bot360-tui/internal/ui/components"
)

func newViewport(width, height int) viewport.Model {
	vp := viewport.New(width, height)
	vp.MouseWheelEnabled = true
	return vp
}

// View renders the full conversation screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.theme.Header.Render("Bot360"))
	b.WriteByte('\n')
	b.WriteString(m.viewport.View())
	b.WriteByte('\n')
	b.WriteString(m.bannerView())
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(m.theme.Help.Render("enter send · esc cancel · ctrl+c quit"))
	return b.String()
}

func (m Model) bannerView() string {
	if m.banner == "" {
		if m.state == StateStreaming {
			return m.theme.Thinking.Render(m.spin.View() + " streaming")
		}
		return ""
	}
	if m.bannerIsErr {
		return m.theme.ErrorBox.Render(m.banner)
	}
	return m.theme.StatusBar.Render(m.banner)
}

// refreshViewport rebuilds the transcript and pins the view to the newest
// turn. Called through the repaint gate during streaming.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
	m.gate.Painted()
}

func (m *Model) renderTranscript() string {
	width := m.viewport.Width - 2
	if width < 20 {
		width = 20
	}
	bubbleWidth := width * 4 / 5

	var b strings.Builder
	for i, msg := range m.conv.Messages() {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch msg.Role {
		case model.RoleUser:
			b.WriteString(m.theme.UserLabel.Render("You"))
			b.WriteByte('\n')
			b.WriteString(m.theme.UserBubble.Width(min(bubbleWidth, lipgloss.Width(msg.Text())+2)).Render(msg.Text()))
		case model.RoleAssistant:
			b.WriteString(m.theme.AssistantLabel.Render("Bot360"))
			b.WriteByte('\n')
			b.WriteString(m.renderAssistant(msg, width))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Model) renderAssistant(msg *model.Message, width int) string {
	var b strings.Builder

	switch {
	case msg.Thinking:
		b.WriteString(m.theme.Thinking.Render(m.spin.View() + " " + msg.ThinkingNote))
	case msg.Text() == "":
		b.WriteString(m.theme.Thinking.Render("..."))
	case m.cfg.Chat.Markdown:
		b.WriteString(strings.TrimRight(m.markdown.Render(msg.Text()), "\n"))
	default:
		b.WriteString(components.HighlightFences(msg.Text()))
	}

	for _, g := range m.graphs.Get(msg.ID) {
		b.WriteByte('\n')
		b.WriteString(m.theme.PreviewFrame.Render(components.RenderGraph(g, width-4, m.theme)))
	}
	return b.String()
}
