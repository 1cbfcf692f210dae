// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Conversation maintains the ordered turn list for one chat session.
//
// Methods are not synchronized: the TUI applies every mutation on the
// Bubble Tea update loop, one stream event at a time, which is the only
// writer.
type Conversation struct {
	turns  []*Message
	byID   map[int]*Message
	nextID int

	// pendingAssistant is the reserved-but-not-yet-appended assistant
	// id from the latest StartTurn. The placeholder is appended one
	// paint cycle after the user turn so the user's message renders
	// alone first.
	pendingAssistant int
	// openAssistant is the id of the assistant turn currently receiving
	// stream updates, 0 when none.
	openAssistant int
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{
		byID:   make(map[int]*Message),
		nextID: 1,
	}
}

// StartTurn appends the user turn immediately and reserves the paired
// assistant id (user = N, assistant = N+1) before any network call.
// The assistant placeholder itself is appended by OpenAssistant.
func (c *Conversation) StartTurn(userText string) (userID, assistantID int) {
	userID = c.nextID
	assistantID = c.nextID + 1
	c.nextID += 2

	user := NewUserMessage(userID, userText)
	c.turns = append(c.turns, user)
	c.byID[userID] = user

	c.pendingAssistant = assistantID
	return userID, assistantID
}

// OpenAssistant appends the empty assistant placeholder for a previously
// reserved id. Appending twice, or appending an id that was never
// reserved, is a no-op: a stale deferred paint message from an abandoned
// send must not grow the list.
func (c *Conversation) OpenAssistant(assistantID int) {
	if assistantID != c.pendingAssistant {
		return
	}
	c.pendingAssistant = 0

	assistant := NewAssistantMessage(assistantID)
	c.turns = append(c.turns, assistant)
	c.byID[assistantID] = assistant
	c.openAssistant = assistantID
}

// ApplyThinking records a thinking announcement on the addressed assistant
// turn. Unknown ids are ignored: events from a stream whose view has been
// torn down are a no-op, not an error.
func (c *Conversation) ApplyThinking(assistantID int, note string) {
	if m := c.assistant(assistantID); m != nil {
		m.setThinking(note)
	}
}

// ApplyToken appends a streamed text delta to the addressed assistant
// turn. Deltas are applied strictly in call order; the turn's text is
// always their exact concatenation.
func (c *Conversation) ApplyToken(assistantID int, content string) {
	if m := c.assistant(assistantID); m != nil {
		m.appendToken(content)
	}
}

// ApplyError replaces the addressed assistant turn's text with an error
// rendering and closes the turn. Later events for the same id are dropped.
func (c *Conversation) ApplyError(assistantID int, rendered string) {
	if m := c.assistant(assistantID); m != nil {
		m.setText(rendered)
		c.Close(assistantID)
	}
}

// Close marks the assistant turn as no longer receiving stream updates.
// Called on stream completion; closure is not separate message state, the
// conversation just stops routing events to the id.
func (c *Conversation) Close(assistantID int) {
	if c.openAssistant == assistantID {
		c.openAssistant = 0
	}
}

// assistant resolves an id to an assistant turn that is still open for
// updates. User turns never receive stream events.
func (c *Conversation) assistant(id int) *Message {
	if c.openAssistant != id {
		return nil
	}
	m := c.byID[id]
	if m == nil || m.Role != RoleAssistant {
		return nil
	}
	return m
}

// Get returns the turn with the given id, or nil.
func (c *Conversation) Get(id int) *Message {
	return c.byID[id]
}

// Messages returns the ordered turn list. Callers must not mutate turns.
func (c *Conversation) Messages() []*Message {
	return c.turns
}

// Len returns the number of appended turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// OpenID returns the id of the assistant turn currently receiving stream
// updates, or 0.
func (c *Conversation) OpenID() int {
	return c.openAssistant
}
