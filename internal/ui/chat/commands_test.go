// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bot360/bot360-tui/internal/api"
	"github.com/bot360/bot360-tui/internal/session"
)

func newStreamClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := session.NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.SetPair("acc", "ref"))

	return api.New(srv.URL, store,
		api.WithHTTPClient(srv.Client()),
		api.WithStreamingClient(srv.Client()))
}

// A cancelled stream whose channel nobody drains must not strand the
// producer goroutine: frames already buffered by the reader keep being
// dispatched after cancel, and with the 64-slot buffer full each send has
// to yield to the dead context instead of parking forever.
func TestAbandonedStreamStopsOnCancel(t *testing.T) {
	const frames = 200
	client := newStreamClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < frames; i++ {
			w.Write([]byte(`{"type":"token","content":"x"}` + "\n"))
		}
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	ch := startStream(ctx, client, 2, []api.ChatMessage{{Role: "user", Content: "hi"}})

	// No consumer: the producer fills the buffer and waits.
	time.Sleep(100 * time.Millisecond)
	cancel()

	// The producer must now exit and close the channel, delivering at
	// most the buffered backlog rather than the full stream.
	received := 0
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				assert.Less(t, received, frames)
				return
			}
			received++
		case <-deadline:
			t.Fatalf("producer still running after cancel; %d messages drained", received)
		}
	}
}

// When the producer exits without getting its StreamDoneMsg through (a
// cancelled stream with a full buffer), the channel close stands in for
// it so the view cannot stay in streaming state.
func TestClosedStreamChannelSynthesizesTeardown(t *testing.T) {
	ch := make(chan tea.Msg)
	close(ch)

	msg := waitForStream(ch, 4)()
	done, ok := msg.(StreamDoneMsg)
	require.True(t, ok)
	assert.Equal(t, 4, done.AssistantID)
	assert.ErrorIs(t, done.Err, context.Canceled)
}
