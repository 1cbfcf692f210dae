// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"
)

const previewChatPath = "/api/analytics/wa-chat/"

// PreviewRequest drives the WhatsApp-preview endpoints. The message array
// has the same shape as the chat stream; ModelUUID selects which saved
// assistant configuration answers.
type PreviewRequest struct {
	Messages  []ChatMessage `json:"messages"`
	ModelUUID string        `json:"model_uuid,omitempty"`
}

// PreviewChat asks the preview endpoint for a complete reply in one
// round trip. Used when the configuration disables streamed responses.
func (c *Client) PreviewChat(ctx context.Context, req PreviewRequest) (string, error) {
	if err := validateMessages(req.Messages); err != nil {
		return "", err
	}

	var result struct {
		Message string `json:"message"`
	}
	if err := c.postJSON(ctx, previewChatPath, req, &result); err != nil {
		return "", err
	}
	return result.Message, nil
}

// PreviewStream requests a streamed preview reply. Unlike the chat
// stream, the body is raw text, not framed JSON; chunks are forwarded to
// emit as they arrive. Chunk boundaries are realigned so a UTF-8 sequence
// split by the transport is never emitted half-decoded.
func (c *Client) PreviewStream(ctx context.Context, req PreviewRequest, emit func(chunk string)) error {
	if err := validateMessages(req.Messages); err != nil {
		return err
	}

	resp, err := c.doProtected(ctx, c.streaming, func(ctx context.Context) (*http.Request, error) {
		return c.newJSONRequest(ctx, http.MethodPost, previewChatPath, req)
	})
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errorFromResponse(resp)
	}
	defer resp.Body.Close()

	var tail []byte
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			chunk := append(tail, buf[:n]...)
			complete, rest := splitCompleteUTF8(chunk)
			// Copy: rest aliases chunk, which the next append reuses.
			tail = append([]byte(nil), rest...)
			if len(complete) > 0 {
				emit(string(complete))
			}
		}
		if err == io.EOF {
			if len(tail) > 0 {
				// Invalid trailing bytes still reach the caller
				// rather than vanishing.
				emit(string(tail))
			}
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("preview stream read failed: %w", err)
		}
	}
}

// splitCompleteUTF8 splits b into a prefix of whole UTF-8 sequences and a
// trailing incomplete sequence, if any. At most utf8.UTFMax-1 bytes are
// held back.
func splitCompleteUTF8(b []byte) (complete, rest []byte) {
	for i := len(b) - 1; i >= 0 && len(b)-i < utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if r, _ := utf8.DecodeRune(b[i:]); r == utf8.RuneError && !utf8.FullRune(b[i:]) {
				return b[:i], b[i:]
			}
			break
		}
	}
	return b, nil
}
