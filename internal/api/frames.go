// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// =============================================================================
// FRAME READER
// =============================================================================

// ErrFrameTooLarge indicates a frame exceeded the size guard, which only
// happens when the backend stops emitting newlines entirely.
var ErrFrameTooLarge = errors.New("stream frame exceeds size limit")

// maxFrameSize bounds a single frame. Graph payloads are the largest
// legitimate frames and stay well under this.
const maxFrameSize = 1 << 20

// FrameReader splits one streaming response body into newline-delimited
// frames. The transport may cut chunks anywhere, including inside a
// multi-byte UTF-8 sequence; reading bytes and only converting a complete
// frame to a string makes the split invisible. A trailing frame without a
// final newline is emitted at EOF.
//
// A FrameReader is tied to a single body and is not restartable.
type FrameReader struct {
	r       *bufio.Reader
	partial bytes.Buffer
	done    bool
}

// NewFrameReader wraps a response body.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReader(r)}
}

// Next returns the next non-blank frame without its trailing newline.
// Blank frames (empty or whitespace-only lines) are skipped, matching the
// backend's habit of flushing bare newlines as keep-alives. Returns io.EOF
// when the stream is exhausted.
func (f *FrameReader) Next() (string, error) {
	for {
		frame, err := f.nextLine()
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(frame) == "" {
			continue
		}
		return frame, nil
	}
}

func (f *FrameReader) nextLine() (string, error) {
	if f.done {
		return "", io.EOF
	}
	for {
		chunk, err := f.r.ReadSlice('\n')
		f.partial.Write(chunk)

		if f.partial.Len() > maxFrameSize {
			f.done = true
			return "", ErrFrameTooLarge
		}

		switch {
		case err == nil:
			return f.takeFrame(), nil
		case errors.Is(err, bufio.ErrBufferFull):
			// Frame longer than the bufio window, keep accumulating.
			continue
		case errors.Is(err, io.EOF):
			f.done = true
			if f.partial.Len() > 0 {
				// Flush the unterminated remainder as a final frame.
				return f.takeFrame(), nil
			}
			return "", io.EOF
		default:
			f.done = true
			return "", fmt.Errorf("stream read failed: %w", err)
		}
	}
}

// takeFrame drains the accumulated bytes, stripping the frame delimiter
// and an optional carriage return.
func (f *FrameReader) takeFrame() string {
	s := f.partial.String()
	f.partial.Reset()
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s
}
