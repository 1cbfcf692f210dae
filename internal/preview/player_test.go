// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(p *Player) string {
	for p.Tick() {
	}
	msgs := p.Messages()
	return msgs[len(msgs)-1].Text
}

func TestStartExchangeOpensBubblePair(t *testing.T) {
	p := NewPlayer(16)
	p.StartExchange("hello")

	msgs := p.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, SenderUser, msgs[0].Sender)
	assert.Equal(t, "hello", msgs[0].Text)
	assert.Equal(t, SenderBot, msgs[1].Sender)
	assert.True(t, msgs[1].Pending)
	assert.Equal(t, "", msgs[1].Text)
}

func TestRevealOneWordPerTick(t *testing.T) {
	p := NewPlayer(16)
	p.StartExchange("q")
	p.Feed("Hi there, how can I help? ")
	p.Flush()

	assert.True(t, p.Tick())
	assert.Equal(t, "Hi", p.Messages()[1].Text)
	assert.True(t, p.Tick())
	assert.Equal(t, "Hi there,", p.Messages()[1].Text)

	assert.Equal(t, "Hi there, how can I help?", drain(p))
	assert.True(t, p.Done())
	assert.False(t, p.Messages()[1].Pending)
}

func TestPartialWordHeldAcrossChunks(t *testing.T) {
	p := NewPlayer(16)
	p.StartExchange("q")

	// "wonderful" split mid-word across chunks must reveal as one word.
	p.Feed("a wonde")
	p.Feed("rful day")
	p.Flush()

	assert.Equal(t, "a wonderful day", drain(p))
}

func TestFlushEmitsTrailingPartialWord(t *testing.T) {
	p := NewPlayer(16)
	p.StartExchange("q")
	p.Feed("done")
	// Nothing revealable until flush: "done" might continue.
	assert.False(t, p.Tick())

	p.Flush()
	assert.Equal(t, "done", drain(p))
}

func TestConsecutiveWhitespaceCollapses(t *testing.T) {
	p := NewPlayer(16)
	p.StartExchange("q")
	p.Feed("one   two\n\nthree\t four ")
	p.Flush()

	assert.Equal(t, "one two three four", drain(p))
}

func TestMultibyteWordSplitAcrossChunks(t *testing.T) {
	p := NewPlayer(16)
	p.StartExchange("q")
	// Split inside a multi-word CJK+emoji payload.
	p.Feed("你好 wor")
	p.Feed("ld 🌍 ")
	p.Flush()

	assert.Equal(t, "你好 world 🌍", drain(p))
}

func TestQueueOverflowCoalescesInsteadOfDropping(t *testing.T) {
	p := NewPlayer(2)
	p.StartExchange("q")
	p.Feed("a b c d e ")
	p.Flush()

	// Bounded queue, but every word still reaches the bubble.
	assert.Equal(t, "a b c d e", drain(p))
}

func TestFailReplacesPendingBubble(t *testing.T) {
	p := NewPlayer(16)
	p.StartExchange("q")
	p.Feed("partial reply ")
	p.Fail("Sorry, something went wrong. Please try again later.")

	msgs := p.Messages()
	assert.Equal(t, "Sorry, something went wrong. Please try again later.", msgs[1].Text)
	assert.False(t, msgs[1].Pending)
	assert.True(t, p.Done())
	assert.False(t, p.Tick())
}

func TestRapidSecondSendFinalizesPreviousReveal(t *testing.T) {
	p := NewPlayer(16)
	p.StartExchange("first")
	p.Feed("never revealed ")

	p.StartExchange("second")
	p.Feed("fresh ")
	p.Flush()

	msgs := p.Messages()
	require.Len(t, msgs, 4)
	// First bot bubble closed empty; queued words from it were discarded.
	assert.False(t, msgs[1].Pending)
	assert.Equal(t, "", msgs[1].Text)

	assert.Equal(t, "fresh", drain(p))
	assert.Equal(t, "fresh", p.Messages()[3].Text)
}

func TestFeedAfterFlushIgnored(t *testing.T) {
	p := NewPlayer(16)
	p.StartExchange("q")
	p.Feed("end ")
	p.Flush()
	p.Feed("late ")

	assert.Equal(t, "end", drain(p))
}

func TestTickWithoutExchangeIsNoOp(t *testing.T) {
	p := NewPlayer(16)
	assert.False(t, p.Tick())
	p.Feed("x ")
	assert.False(t, p.Revealing() && p.Tick())
}
