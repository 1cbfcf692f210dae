// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultThinkingNote is shown while the assistant has announced intent
// but the event carried no description.
const DefaultThinkingNote = "Thinking..."

// Message is a single conversation turn.
//
// User turns are immutable once appended. Assistant turns start as an
// empty placeholder and mutate in place as stream events arrive; the
// accumulator guarantees the display text is the exact concatenation of
// token contents in arrival order.
type Message struct {
	ID        int
	Role      Role
	CreatedAt time.Time

	// Thinking is set while the assistant has announced work but not
	// yet produced token content. Note holds the announcement text.
	Thinking     bool
	ThinkingNote string

	text string
	acc  strings.Builder
}

// NewUserMessage creates an immutable user turn.
func NewUserMessage(id int, text string) *Message {
	return &Message{
		ID:        id,
		Role:      RoleUser,
		CreatedAt: time.Now(),
		text:      text,
	}
}

// NewAssistantMessage creates an empty assistant placeholder.
func NewAssistantMessage(id int) *Message {
	return &Message{
		ID:        id,
		Role:      RoleAssistant,
		CreatedAt: time.Now(),
	}
}

// Text returns the current display text.
func (m *Message) Text() string {
	return m.text
}

// appendToken adds a streamed delta and makes the accumulated text the
// display text, ending any thinking state.
func (m *Message) appendToken(content string) {
	m.acc.WriteString(content)
	m.Thinking = false
	m.ThinkingNote = ""
	m.text = m.acc.String()
}

// setThinking marks the turn as working and clears its visible text.
func (m *Message) setThinking(note string) {
	if note == "" {
		note = DefaultThinkingNote
	}
	m.Thinking = true
	m.ThinkingNote = note
	m.text = ""
}

// setText replaces the display text outright. Error renderings use this;
// the accumulator is reset so a later (buggy) token cannot resurrect the
// overwritten text.
func (m *Message) setText(text string) {
	m.acc.Reset()
	m.Thinking = false
	m.ThinkingNote = ""
	m.text = text
}
