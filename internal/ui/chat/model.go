// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bot360/bot360-tui/internal/api"
	"github.com/bot360/bot360-tui/internal/config"
	"github.com/bot360/bot360-tui/internal/model"
	"github.com/bot360/bot360-tui/internal/storage"
	"github.com/bot360/bot360-tui/internal/ui/components"
	"github.com/bot360/bot360-tui/internal/ui/styles"
)

// State is the view's top-level mode.
type State int

const (
	// StateIdle means the input is focused and no stream is active.
	StateIdle State = iota
	// StateStreaming means an assistant reply is in flight.
	StateStreaming
)

// Model is the Bubble Tea model of the conversation view.
type Model struct {
	client *api.Client
	cfg    *config.Config
	theme  *styles.Theme

	conv   *model.Conversation
	graphs *model.GraphStore

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model
	markdown *components.Markdown
	gate     *repaintGate

	// events carries messages from the active stream goroutine; cancel
	// aborts it. Both are replaced on every send.
	events chan tea.Msg
	cancel context.CancelFunc

	// streamingID is the assistant turn the active stream addresses.
	streamingID int

	history *storage.History

	state  State
	width  int
	height int
	ready  bool

	// banner is a transient status or error line under the transcript.
	banner      string
	bannerIsErr bool

	quitting bool
}

// New builds the conversation view. history may be nil when archiving is
// disabled.
func New(client *api.Client, cfg *config.Config, theme *styles.Theme, history *storage.History) Model {
	input := textinput.New()
	input.Placeholder = "Message Bot360..."
	input.Prompt = "> "
	input.PromptStyle = theme.Prompt
	input.CharLimit = 4000
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(styles.Purple)

	return Model{
		client:   client,
		cfg:      cfg,
		theme:    theme,
		conv:     model.NewConversation(),
		graphs:   model.NewGraphStore(),
		input:    input,
		spin:     spin,
		markdown: components.NewMarkdown(80),
		gate:     newRepaintGate(cfg.Chat.RepaintFPS),
		history:  history,
		state:    StateIdle,
	}
}

// Init starts the input cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Conversation exposes the turn list, for archiving and tests.
func (m Model) Conversation() *model.Conversation {
	return m.conv
}

// Graphs exposes the attachment store, for archiving and tests.
func (m Model) Graphs() *model.GraphStore {
	return m.graphs
}
