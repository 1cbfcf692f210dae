// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package preview

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Sender identifies a preview bubble's author.
type Sender int

const (
	SenderUser Sender = iota
	SenderBot
)

// Message is one bubble of the preview conversation. This list is
// independent of the main chat view's turns.
type Message struct {
	Sender Sender
	Text   string
	// Pending marks the bot bubble still being revealed.
	Pending bool
}

// Player paces the reveal of bot replies. All methods run on the UI
// update loop; the network producer hands chunks over as messages, so no
// locking is needed.
//
// Words are split on Unicode whitespace runs and rejoined with single
// spaces. This deliberately collapses consecutive spaces: the reveal is a
// typing simulation, not a byte-faithful transcript, and word boundaries
// are the pacing unit. Each word is NFC-normalized before display so
// combining sequences split across chunks render identically either way.
type Player struct {
	messages []Message

	queue    []string
	maxQueue int
	partial  strings.Builder
	flushed  bool
}

// NewPlayer creates a player whose reveal queue holds up to queueSize
// words before overflow coalescing kicks in.
func NewPlayer(queueSize int) *Player {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Player{maxQueue: queueSize}
}

// StartExchange appends the user's bubble and opens an empty pending bot
// bubble. Any unfinished previous reveal is finalized first so a rapid
// second send cannot interleave two replies.
func (p *Player) StartExchange(userText string) {
	p.finalize()
	p.queue = p.queue[:0]
	p.partial.Reset()
	p.flushed = false

	p.messages = append(p.messages,
		Message{Sender: SenderUser, Text: userText},
		Message{Sender: SenderBot, Pending: true},
	)
}

// Feed accepts a raw text chunk from the network. Complete words are
// queued for the reveal; a trailing partial word is buffered until more
// text or Flush arrives. Never blocks.
func (p *Player) Feed(chunk string) {
	if p.flushed || chunk == "" {
		return
	}

	text := p.partial.String() + chunk
	p.partial.Reset()

	// A trailing non-whitespace run may continue in the next chunk.
	words := strings.FieldsFunc(text, unicode.IsSpace)
	lastRune, _ := utf8.DecodeLastRuneInString(text)
	if !unicode.IsSpace(lastRune) && len(words) > 0 {
		p.partial.WriteString(words[len(words)-1])
		words = words[:len(words)-1]
	}

	for _, w := range words {
		p.enqueue(norm.NFC.String(w))
	}
}

// Flush marks the stream as ended and queues the buffered partial word,
// so no trailing content is silently dropped.
func (p *Player) Flush() {
	if p.flushed {
		return
	}
	p.flushed = true
	if p.partial.Len() > 0 {
		p.enqueue(norm.NFC.String(p.partial.String()))
		p.partial.Reset()
	}
}

// enqueue bounds memory: once the queue is full, overflow words merge
// into the last entry so the reveal catches up in bigger steps instead of
// dropping text.
func (p *Player) enqueue(word string) {
	if len(p.queue) >= p.maxQueue {
		p.queue[len(p.queue)-1] += " " + word
		return
	}
	p.queue = append(p.queue, word)
}

// Tick reveals one queued word into the pending bot bubble. Returns true
// when the display changed, so the UI knows whether to repaint and keep
// ticking.
func (p *Player) Tick() bool {
	if len(p.queue) == 0 {
		if p.flushed {
			p.finalize()
		}
		return false
	}

	word := p.queue[0]
	p.queue = p.queue[1:]

	last := p.openBubble()
	if last == nil {
		return false
	}
	if last.Text != "" {
		last.Text += " "
	}
	last.Text += word

	if len(p.queue) == 0 && p.flushed {
		p.finalize()
	}
	return true
}

// Fail replaces the pending bubble with an error text and ends the
// reveal. Used for transport failures on the preview request.
func (p *Player) Fail(text string) {
	if last := p.openBubble(); last != nil {
		last.Text = text
	}
	p.flushed = true
	p.queue = p.queue[:0]
	p.partial.Reset()
	p.finalize()
}

// Done reports whether the current reveal has fully played out.
func (p *Player) Done() bool {
	return p.flushed && len(p.queue) == 0 && p.partial.Len() == 0
}

// Revealing reports whether ticks are still needed.
func (p *Player) Revealing() bool {
	return len(p.queue) > 0 || !p.flushed
}

// Messages returns the bubble list for rendering.
func (p *Player) Messages() []Message {
	return p.messages
}

// Reset clears the whole preview conversation.
func (p *Player) Reset() {
	p.messages = nil
	p.queue = nil
	p.partial.Reset()
	p.flushed = false
}

func (p *Player) openBubble() *Message {
	if len(p.messages) == 0 {
		return nil
	}
	last := &p.messages[len(p.messages)-1]
	if last.Sender != SenderBot || !last.Pending {
		return nil
	}
	return last
}

func (p *Player) finalize() {
	if last := p.openBubble(); last != nil {
		last.Pending = false
	}
}
