// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bot360/bot360-tui/internal/api"
	"github.com/bot360/bot360-tui/internal/model"
)

// =============================================================================
// COMMANDS
// =============================================================================

// startStream launches the chat request on a goroutine and returns the
// channel the update loop drains. The goroutine owns the request lifetime
// and closes the channel when it exits.
func startStream(ctx context.Context, client *api.Client, assistantID int, messages []api.ChatMessage) chan tea.Msg {
	// Buffered so a burst of frames never blocks the reader goroutine on
	// a slow paint.
	ch := make(chan tea.Msg, 64)
	go func() {
		defer close(ch)
		err := client.ChatStream(ctx, messages, func(ev api.StreamEvent) {
			// Every send yields to cancellation: after cancel the update
			// loop may have stopped draining this channel, and frames
			// already buffered by the reader keep arriving. A full buffer
			// must never park this goroutine for the process lifetime.
			select {
			case ch <- StreamEventMsg{AssistantID: assistantID, Event: ev}:
			case <-ctx.Done():
			}
		})
		select {
		case ch <- StreamDoneMsg{AssistantID: assistantID, Err: err}:
		case <-ctx.Done():
			// The channel close below stands in for the dropped done
			// message; waitForStream synthesizes the teardown.
		}
	}()
	return ch
}

// waitForStream delivers the next message from the stream channel. The
// update loop re-issues it after every delivery. A closed channel means
// the producer exited without a deliverable StreamDoneMsg, which only
// happens on a cancelled stream; the teardown is synthesized so the view
// cannot stay in streaming state.
func waitForStream(ch <-chan tea.Msg, assistantID int) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return StreamDoneMsg{AssistantID: assistantID, Err: context.Canceled}
		}
		return msg
	}
}

// openAssistant emits the placeholder append as a command, so it is
// processed on the cycle after the user turn was painted.
func openAssistant(assistantID int) tea.Cmd {
	return func() tea.Msg {
		return assistantOpenMsg{AssistantID: assistantID}
	}
}

// repaintTick schedules the next capped-rate transcript rebuild.
func repaintTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return repaintTickMsg{Time: t}
	})
}

// outboundMessages flattens the conversation into the request shape. The
// still-empty placeholder for the reply being requested is skipped.
func outboundMessages(conv *model.Conversation, pendingID int) []api.ChatMessage {
	var out []api.ChatMessage
	for _, msg := range conv.Messages() {
		if msg.ID == pendingID {
			continue
		}
		out = append(out, api.ChatMessage{
			Role:    string(msg.Role),
			Content: msg.Text(),
		})
	}
	return out
}
