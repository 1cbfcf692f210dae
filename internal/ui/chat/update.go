// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bot360/bot360-tui/internal/api"
	"github.com/bot360/bot360-tui/internal/model"
	"github.com/bot360/bot360-tui/internal/ui/components"
	"github.com/bot360/bot360-tui/internal/util"
)

// transportFailureText is shown in place of a reply when the request
// itself failed. Backend-reported errors render their own message; raw
// transport errors are not user-actionable.
const transportFailureText = "Sorry, something went wrong."

// historySavedMsg reports the outcome of the background archive write.
type historySavedMsg struct {
	Err error
}

// Update is the message dispatcher of the conversation view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case assistantOpenMsg:
		m.conv.OpenAssistant(msg.AssistantID)
		m.refreshViewport()
		return m, nil
	case StreamEventMsg:
		return m.handleStreamEvent(msg)
	case StreamDoneMsg:
		return m.handleStreamDone(msg)
	case repaintTickMsg:
		if m.state != StateStreaming {
			return m, nil
		}
		if m.gate.ShouldPaint() {
			m.refreshViewport()
		}
		return m, repaintTick(m.gate.TickInterval())
	case ConfigReloadedMsg:
		if msg.Cfg == nil {
			return m, nil
		}
		m.cfg = msg.Cfg
		m.gate = newRepaintGate(msg.Cfg.Chat.RepaintFPS)
		m.refreshViewport()
		return m, nil
	case historySavedMsg:
		if msg.Err != nil {
			m.setBanner(fmt.Sprintf("History save failed: %v", msg.Err), true)
		}
		return m, nil
	case spinner.TickMsg:
		if m.state != StateStreaming {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	contentWidth := msg.Width - 2
	if contentWidth < 20 {
		contentWidth = 20
	}
	m.markdown = components.NewMarkdown(contentWidth)

	// Header, banner, input, and help each take a line.
	viewportHeight := msg.Height - 4
	if viewportHeight < 3 {
		viewportHeight = 3
	}
	if !m.ready {
		m.viewport = newViewport(msg.Width, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = viewportHeight
	}
	m.input.Width = msg.Width - 4

	m.refreshViewport()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.stopStream()
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if m.state == StateStreaming {
			// The in-flight context is cancelled; the goroutine's
			// StreamDoneMsg performs the actual teardown.
			m.stopStream()
			m.setBanner("Canceled.", false)
		}
		return m, nil

	case "enter":
		return m.handleSubmit()
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if m.state == StateStreaming {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	// The user turn and the reserved assistant id exist before any
	// network work, so every later event has an address.
	_, assistantID := m.conv.StartTurn(text)
	m.input.Reset()
	m.banner = ""

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.streamingID = assistantID
	m.events = startStream(ctx, m.client, assistantID, outboundMessages(m.conv, assistantID))
	m.state = StateStreaming

	m.refreshViewport()
	return m, tea.Batch(
		openAssistant(assistantID),
		waitForStream(m.events, assistantID),
		repaintTick(m.gate.TickInterval()),
		m.spin.Tick,
	)
}

func (m Model) handleStreamEvent(msg StreamEventMsg) (tea.Model, tea.Cmd) {
	if msg.AssistantID != m.streamingID {
		// Leftover delivery from an abandoned stream; its channel is not
		// re-armed, and the producer stops at its cancelled context.
		return m, nil
	}

	ev := msg.Event
	switch ev.Kind() {
	case api.KindThinking:
		m.conv.ApplyThinking(msg.AssistantID, ev.Description)
	case api.KindToken:
		m.conv.ApplyToken(msg.AssistantID, ev.Content)
	case api.KindGraph:
		g, err := ev.Graph()
		if err != nil {
			log.Printf("chat: dropping graph payload: %v", err)
			break
		}
		m.graphs.Attach(msg.AssistantID, g)
	case api.KindError:
		m.conv.ApplyError(msg.AssistantID, renderStreamError(ev.ErrorText()))
	}

	m.gate.MarkDirty()
	if m.gate.ShouldPaint() {
		m.refreshViewport()
	}
	return m, waitForStream(m.events, m.streamingID)
}

func (m Model) handleStreamDone(msg StreamDoneMsg) (tea.Model, tea.Cmd) {
	if msg.AssistantID != m.streamingID {
		return m, nil
	}

	switch {
	case msg.Err == nil:
		// Clean end of stream, or a terminal error event already applied.
	case errors.Is(msg.Err, context.Canceled):
		// User abort: the partial reply stays as-is.
	case errors.Is(msg.Err, api.ErrSessionExpired):
		m.conv.ApplyError(msg.AssistantID, transportFailureText)
		m.setBanner("Session expired. Run `bot360 login` to sign in again.", true)
	default:
		m.conv.ApplyError(msg.AssistantID, transportFailureText)
		m.setBanner(fmt.Sprintf("Request failed: %v", msg.Err), true)
	}
	m.conv.Close(msg.AssistantID)

	m.stopStream()
	m.state = StateIdle
	m.streamingID = 0
	m.refreshViewport()

	if msg.Err == nil && m.history != nil {
		return m, m.archiveCmd()
	}
	return m, nil
}

// stopStream cancels the in-flight request context if any.
func (m *Model) stopStream() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

func (m *Model) setBanner(text string, isErr bool) {
	m.banner = text
	m.bannerIsErr = isErr
}

// archiveCmd saves the finished conversation snapshot off the update loop.
func (m Model) archiveCmd() tea.Cmd {
	history := m.history
	conv := m.conv
	graphs := m.graphs
	title := archiveTitle(conv)
	return func() tea.Msg {
		_, err := history.Save(context.Background(), title, conv, graphs)
		return historySavedMsg{Err: err}
	}
}

// archiveTitle derives the history row title from the first user turn.
func archiveTitle(conv *model.Conversation) string {
	for _, msg := range conv.Messages() {
		if msg.Role == model.RoleUser && msg.Text() != "" {
			return util.TruncateRunes(msg.Text(), 60)
		}
	}
	return "Conversation"
}

// renderStreamError formats a backend-reported error for the transcript.
func renderStreamError(text string) string {
	if strings.TrimSpace(text) == "" {
		return transportFailureText
	}
	return "Error: " + util.TruncateRunes(text, 500)
}
