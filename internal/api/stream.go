// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
)

const chatStreamPath = "/api/analytics/stream/"

// EventHandler receives one classified stream event. Handlers run on the
// stream goroutine, one at a time, strictly in arrival order; each call
// returns before the next frame is read.
type EventHandler func(ev StreamEvent)

// ChatStream sends the conversation to the streaming chat endpoint and
// dispatches decoded events to handler until the stream ends, the context
// is cancelled, or a terminal error event arrives.
//
// A 401 triggers the one-shot refresh-and-replay: the whole send is
// reconstructed, so a replayed stream starts from its first frame.
// Malformed frames are logged and dropped without disturbing subsequent
// frames. Events with an unrecognized type and no error field are ignored.
//
// The returned error covers transport and protocol failures of the
// request itself; a terminal error event is delivered through handler and
// returns nil here.
func (c *Client) ChatStream(ctx context.Context, messages []ChatMessage, handler EventHandler) error {
	if err := validateMessages(messages); err != nil {
		return err
	}

	resp, err := c.doProtected(ctx, c.streaming, func(ctx context.Context) (*http.Request, error) {
		return c.newJSONRequest(ctx, http.MethodPost, chatStreamPath, map[string]any{
			"messages": messages,
		})
	})
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}
	defer resp.Body.Close()

	frames := NewFrameReader(resp.Body)
	for {
		frame, err := frames.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// Context cancellation surfaces here as a read failure;
			// report the cancellation itself in that case.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		ev, perr := ParseEvent(frame)
		if perr != nil {
			log.Printf("api: dropping frame: %v", perr)
			continue
		}

		if ev.Kind() == KindError {
			// Terminal: no further frames are processed.
			handler(ev)
			return nil
		}
		handler(ev)
	}
}

func validateMessages(messages []ChatMessage) error {
	if len(messages) == 0 {
		return ErrEmptyMessage
	}
	last := messages[len(messages)-1]
	if strings.TrimSpace(last.Content) == "" {
		return ErrEmptyMessage
	}
	return nil
}
