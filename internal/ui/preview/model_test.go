// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package preview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bot360/bot360-tui/internal/api"
	"github.com/bot360/bot360-tui/internal/config"
	"github.com/bot360/bot360-tui/internal/preview"
	"github.com/bot360/bot360-tui/internal/session"
	"github.com/bot360/bot360-tui/internal/ui/styles"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	return New(nil, config.Default(), styles.NewTheme("dark"), "")
}

func applyUpdate(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, _ := m.Update(msg)
	next, ok := updated.(Model)
	require.True(t, ok)
	return next
}

// startedModel opens an exchange without going through the network path.
func startedModel(t *testing.T) Model {
	t.Helper()
	m := newTestModel(t)
	m.exchange++
	m.player.StartExchange("hi")
	m.streaming = true
	return m
}

func TestChunksFeedThePlayer(t *testing.T) {
	m := startedModel(t)

	m = applyUpdate(t, m, chunkMsg{Exchange: m.exchange, Text: "hello wor"})
	m = applyUpdate(t, m, chunkMsg{Exchange: m.exchange, Text: "ld again "})
	m = applyUpdate(t, m, doneMsg{Exchange: m.exchange})

	for m.player.Revealing() {
		m = applyUpdate(t, m, revealTickMsg{})
	}

	msgs := m.player.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello world again", msgs[1].Text)
	assert.False(t, msgs[1].Pending)
}

func TestStaleChunksAreIgnored(t *testing.T) {
	m := startedModel(t)

	m = applyUpdate(t, m, chunkMsg{Exchange: m.exchange - 1, Text: "ghost text "})
	m = applyUpdate(t, m, doneMsg{Exchange: m.exchange})
	for m.player.Revealing() {
		m = applyUpdate(t, m, revealTickMsg{})
	}

	msgs := m.player.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "", msgs[1].Text)
}

func TestTransportFailureReplacesBubble(t *testing.T) {
	m := startedModel(t)

	m = applyUpdate(t, m, chunkMsg{Exchange: m.exchange, Text: "partial "})
	m = applyUpdate(t, m, doneMsg{Exchange: m.exchange, Err: assert.AnError})

	msgs := m.player.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, failureText, msgs[1].Text)
	assert.False(t, m.streaming)
}

func TestStaleDoneDoesNotEndLiveExchange(t *testing.T) {
	m := startedModel(t)

	m = applyUpdate(t, m, doneMsg{Exchange: m.exchange - 1, Err: assert.AnError})
	assert.True(t, m.streaming)
	assert.NotEqual(t, failureText, m.player.Messages()[1].Text)
}

func TestOutboundMessagesSkipPendingBubble(t *testing.T) {
	m := newTestModel(t)
	m.player.StartExchange("first")
	m.player.Feed("reply ")
	m.player.Flush()
	for m.player.Revealing() {
		m.player.Tick()
	}
	m.player.Tick() // finalize
	m.player.StartExchange("second")

	out := m.outboundMessages()
	require.Len(t, out, 3)
	assert.Equal(t, api.ChatMessage{Role: "user", Content: "first"}, out[0])
	assert.Equal(t, api.ChatMessage{Role: "assistant", Content: "reply"}, out[1])
	assert.Equal(t, api.ChatMessage{Role: "user", Content: "second"}, out[2])
}

func TestTickStopsAfterReveal(t *testing.T) {
	m := startedModel(t)
	m.ticking = true

	m = applyUpdate(t, m, chunkMsg{Exchange: m.exchange, Text: "one two "})
	m = applyUpdate(t, m, doneMsg{Exchange: m.exchange})

	m = applyUpdate(t, m, revealTickMsg{})
	assert.True(t, m.ticking)
	m = applyUpdate(t, m, revealTickMsg{})
	// Queue drained and stream finished: the next tick retires itself.
	m = applyUpdate(t, m, revealTickMsg{})
	assert.False(t, m.ticking)
	assert.True(t, m.player.Done())
}

// A rapid next send abandons the previous request's channel; the producer
// goroutine must notice the cancelled context and exit instead of parking
// on a send nobody will ever drain.
func TestAbandonedRequestStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("words for the reveal queue ", 500)))
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}))
	t.Cleanup(srv.Close)

	store, err := session.NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.SetPair("acc", "ref"))
	client := api.New(srv.URL, store,
		api.WithHTTPClient(srv.Client()),
		api.WithStreamingClient(srv.Client()))

	ctx, cancel := context.WithCancel(context.Background())
	ch := startRequest(ctx, client, 1, api.PreviewRequest{
		Messages: []api.ChatMessage{{Role: "user", Content: "hi"}},
	})

	time.Sleep(100 * time.Millisecond)
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("producer still running after cancel")
		}
	}
}

// A closed channel without a delivered doneMsg ends the live exchange, so
// an abandoned request can never leave the view streaming forever.
func TestClosedRequestChannelEndsExchange(t *testing.T) {
	m := startedModel(t)

	ch := make(chan tea.Msg)
	close(ch)
	msg := waitForChunk(ch, m.exchange)()
	m = applyUpdate(t, m, msg)

	assert.False(t, m.streaming)
	assert.True(t, m.player.Done())
}

func TestSenderRolesRoundTrip(t *testing.T) {
	m := newTestModel(t)
	m.player.StartExchange("ping")
	msgs := m.player.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, preview.SenderUser, msgs[0].Sender)
	assert.Equal(t, preview.SenderBot, msgs[1].Sender)
}
