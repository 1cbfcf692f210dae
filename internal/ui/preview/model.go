// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package preview implements the widget-preview view: a messenger-style
// pane that replays assistant answers word by word, the way the embedded
// web widget types them out for visitors.
package preview

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bot360/bot360-tui/internal/api"
	"github.com/bot360/bot360-tui/internal/config"
	"github.com/bot360/bot360-tui/internal/preview"
	"github.com/bot360/bot360-tui/internal/ui/styles"
)

// failureText replaces the pending bubble when the preview request fails.
const failureText = "Sorry, something went wrong."

// Model is the Bubble Tea model of the preview view.
type Model struct {
	client *api.Client
	cfg    *config.Config
	theme  *styles.Theme

	// modelUUID selects which saved assistant configuration answers; empty
	// means the account default.
	modelUUID string

	player *preview.Player

	viewport viewport.Model
	input    textinput.Model

	// chunks carries raw reply text from the request goroutine; cancel
	// aborts the request. Replaced on every send.
	chunks chan tea.Msg
	cancel context.CancelFunc

	ticking   bool
	streaming bool
	width     int
	height    int
	ready     bool
	banner    string
	quitting  bool

	// exchange increments per send so deliveries from an abandoned
	// request can be told apart from the live one.
	exchange int
}

// New builds the preview view for the given assistant configuration.
func New(client *api.Client, cfg *config.Config, theme *styles.Theme, modelUUID string) Model {
	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.Prompt = "> "
	input.PromptStyle = theme.Prompt
	input.CharLimit = 4000
	input.Focus()

	return Model{
		client:    client,
		cfg:       cfg,
		theme:     theme,
		modelUUID: modelUUID,
		player:    preview.NewPlayer(cfg.Preview.QueueSize),
	}
}

// Init starts the input cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Player exposes the reveal state, for tests.
func (m Model) Player() *preview.Player {
	return m.player
}

// =============================================================================
// MESSAGES AND COMMANDS
// =============================================================================

// chunkMsg delivers one raw text chunk from the preview stream.
type chunkMsg struct {
	Exchange int
	Text     string
}

// doneMsg signals the end of the preview request. Err is the transport
// failure, if any.
type doneMsg struct {
	Exchange int
	Err      error
}

// revealTickMsg paces the word-by-word reveal.
type revealTickMsg struct {
	Time time.Time
}

// startRequest launches the preview request on a goroutine. Chunks flow
// through the returned channel until the request ends or its context is
// cancelled; the goroutine closes the channel when it exits.
func startRequest(ctx context.Context, client *api.Client, exchange int, req api.PreviewRequest) chan tea.Msg {
	ch := make(chan tea.Msg, 64)
	go func() {
		defer close(ch)
		err := client.PreviewStream(ctx, req, func(chunk string) {
			// Sends yield to cancellation so a rapid next send, which
			// abandons this channel, cannot strand the goroutine on a
			// full buffer.
			select {
			case ch <- chunkMsg{Exchange: exchange, Text: chunk}:
			case <-ctx.Done():
			}
		})
		select {
		case ch <- doneMsg{Exchange: exchange, Err: err}:
		case <-ctx.Done():
		}
	}()
	return ch
}

// waitForChunk delivers the next message from the request channel. A
// closed channel without a delivered doneMsg only happens on a cancelled
// request; the end of the exchange is synthesized so the view cannot stay
// in streaming state.
func waitForChunk(ch <-chan tea.Msg, exchange int) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return doneMsg{Exchange: exchange, Err: context.Canceled}
		}
		return msg
	}
}

func revealTick(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return revealTickMsg{Time: t}
	})
}

// =============================================================================
// UPDATE
// =============================================================================

// Update is the message dispatcher of the preview view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case chunkMsg:
		if msg.Exchange != m.exchange {
			return m, nil
		}
		m.player.Feed(msg.Text)
		return m, waitForChunk(m.chunks, m.exchange)
	case doneMsg:
		return m.handleDone(msg)
	case revealTickMsg:
		return m.handleTick()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	viewportHeight := msg.Height - 4
	if viewportHeight < 3 {
		viewportHeight = 3
	}
	if !m.ready {
		m.viewport = viewport.New(msg.Width, viewportHeight)
		m.viewport.MouseWheelEnabled = true
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
		m.stopRequest()
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if m.streaming || m.player.Revealing() {
			m.stopRequest()
			m.player.Flush()
			m.banner = "Canceled."
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
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	// A rapid second send abandons the previous request; the player
	// finalizes the unfinished bubble itself.
	m.stopRequest()
	m.exchange++
	m.player.StartExchange(text)
	m.input.Reset()
	m.banner = ""

	req := api.PreviewRequest{
		Messages:  m.outboundMessages(),
		ModelUUID: m.modelUUID,
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.chunks = startRequest(ctx, m.client, m.exchange, req)
	m.streaming = true
	m.refreshViewport()

	cmds := []tea.Cmd{waitForChunk(m.chunks, m.exchange)}
	if !m.ticking {
		m.ticking = true
		cmds = append(cmds, revealTick(m.cfg.WordDelay()))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleDone(msg doneMsg) (tea.Model, tea.Cmd) {
	if msg.Exchange != m.exchange {
		return m, nil
	}
	m.streaming = false
	m.stopRequest()

	switch {
	case msg.Err == nil:
		m.player.Flush()
	case msg.Err == context.Canceled:
		m.player.Flush()
	default:
		m.player.Fail(failureText)
		m.refreshViewport()
	}
	return m, nil
}

// handleTick reveals at most one word per cadence interval. The timer is
// cooperative: it keeps running while a reveal is pending and stops itself
// once the queue drains with nothing in flight.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	changed := m.player.Tick()
	if changed {
		m.refreshViewport()
	}

	if m.player.Revealing() || m.streaming {
		return m, revealTick(m.cfg.WordDelay())
	}
	// Last tick: repaint once more so the finalized bubble loses its
	// typing cursor.
	m.ticking = false
	m.refreshViewport()
	return m, nil
}

func (m *Model) stopRequest() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// outboundMessages flattens the finished preview bubbles into the request
// shape, including the user turn just appended and skipping the pending
// bot bubble.
func (m *Model) outboundMessages() []api.ChatMessage {
	var out []api.ChatMessage
	for _, msg := range m.player.Messages() {
		if msg.Pending {
			continue
		}
		role := "user"
		if msg.Sender == preview.SenderBot {
			role = "assistant"
		}
		out = append(out, api.ChatMessage{Role: role, Content: msg.Text})
	}
	return out
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the messenger pane.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.theme.Header.Render("Bot360 · Widget Preview"))
	b.WriteByte('\n')
	b.WriteString(m.viewport.View())
	b.WriteByte('\n')
	if m.banner != "" {
		b.WriteString(m.theme.StatusBar.Render(m.banner))
	}
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	b.WriteString(m.theme.Help.Render("enter send · esc cancel · ctrl+c quit"))
	return b.String()
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderBubbles())
	m.viewport.GotoBottom()
}

// renderBubbles lays messages out messenger-style: visitor bubbles on the
// right, bot bubbles on the left.
func (m *Model) renderBubbles() string {
	width := m.viewport.Width - 2
	if width < 20 {
		width = 20
	}
	bubbleWidth := width * 3 / 4

	var b strings.Builder
	for i, msg := range m.player.Messages() {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch msg.Sender {
		case preview.SenderUser:
			bubble := m.theme.PreviewUserBubble.MaxWidth(bubbleWidth).Render(msg.Text)
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, bubble))
		case preview.SenderBot:
			text := msg.Text
			if msg.Pending && text == "" {
				text = "..."
			} else if msg.Pending {
				text += " ▍"
			}
			b.WriteString(m.theme.PreviewBotBubble.MaxWidth(bubbleWidth).Render(text))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
