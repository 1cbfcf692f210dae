// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTurnAssignsPairedIDs(t *testing.T) {
	c := NewConversation()

	u1, a1 := c.StartTurn("first")
	assert.Equal(t, 1, u1)
	assert.Equal(t, 2, a1)
	c.OpenAssistant(a1)
	c.Close(a1)

	u2, a2 := c.StartTurn("second")
	assert.Equal(t, 3, u2)
	assert.Equal(t, 4, a2)

	// User turn is visible immediately, assistant only after OpenAssistant.
	assert.Equal(t, 3, c.Len())
	c.OpenAssistant(a2)
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, RoleAssistant, c.Messages()[3].Role)
}

func TestOpenAssistantIgnoresStaleOrUnknownIDs(t *testing.T) {
	c := NewConversation()
	_, a := c.StartTurn("hi")

	c.OpenAssistant(999) // never reserved
	assert.Equal(t, 1, c.Len())

	c.OpenAssistant(a)
	assert.Equal(t, 2, c.Len())

	c.OpenAssistant(a) // duplicate deferred paint message
	assert.Equal(t, 2, c.Len())
}

func TestTokenOrdering(t *testing.T) {
	c := NewConversation()
	_, a := c.StartTurn("q")
	c.OpenAssistant(a)

	for _, tok := range []string{"a ", "b ", "c "} {
		c.ApplyToken(a, tok)
	}
	assert.Equal(t, "a b c ", c.Get(a).Text())
}

func TestThinkingThenTokenTransition(t *testing.T) {
	c := NewConversation()
	_, a := c.StartTurn("where is my order")
	c.OpenAssistant(a)

	c.ApplyThinking(a, "Looking up order")
	m := c.Get(a)
	assert.True(t, m.Thinking)
	assert.Equal(t, "Looking up order", m.ThinkingNote)
	assert.Equal(t, "", m.Text())

	c.ApplyToken(a, "Found it")
	assert.False(t, m.Thinking)
	assert.Equal(t, "Found it", m.Text())
}

func TestThinkingDefaultNote(t *testing.T) {
	c := NewConversation()
	_, a := c.StartTurn("q")
	c.OpenAssistant(a)

	c.ApplyThinking(a, "")
	assert.Equal(t, DefaultThinkingNote, c.Get(a).ThinkingNote)
}

func TestErrorClosesTurn(t *testing.T) {
	c := NewConversation()
	_, a := c.StartTurn("q")
	c.OpenAssistant(a)

	c.ApplyToken(a, "partial")
	c.ApplyError(a, "Error: boom")
	assert.Equal(t, "Error: boom", c.Get(a).Text())

	// Events after the terminal error never apply.
	c.ApplyToken(a, "more")
	assert.Equal(t, "Error: boom", c.Get(a).Text())
}

func TestEventsForClosedOrForeignIDsAreNoOps(t *testing.T) {
	c := NewConversation()
	u, a := c.StartTurn("q")
	c.OpenAssistant(a)

	// User turns never receive stream events.
	c.ApplyToken(u, "x")
	assert.Equal(t, "q", c.Get(u).Text())

	c.Close(a)
	c.ApplyToken(a, "late")
	assert.Equal(t, "", c.Get(a).Text())
	c.ApplyThinking(a, "late think")
	assert.False(t, c.Get(a).Thinking)
}

func TestRetriedStreamStartsClean(t *testing.T) {
	// A replayed send uses a fresh assistant id; the abandoned first
	// attempt can no longer write anywhere.
	c := NewConversation()
	_, a1 := c.StartTurn("q")
	c.OpenAssistant(a1)
	c.ApplyToken(a1, "stale")
	c.Close(a1)

	_, a2 := c.StartTurn("q")
	c.OpenAssistant(a2)
	c.ApplyToken(a1, "ghost")
	c.ApplyToken(a2, "fresh")

	assert.Equal(t, "stale", c.Get(a1).Text())
	assert.Equal(t, "fresh", c.Get(a2).Text())
}

func TestMutationTouchesOnlyAddressedTurn(t *testing.T) {
	c := NewConversation()
	u1, a1 := c.StartTurn("one")
	c.OpenAssistant(a1)
	c.ApplyToken(a1, "reply one")
	c.Close(a1)

	_, a2 := c.StartTurn("two")
	c.OpenAssistant(a2)
	c.ApplyToken(a2, "reply two")

	assert.Equal(t, "one", c.Get(u1).Text())
	assert.Equal(t, "reply one", c.Get(a1).Text())
	assert.Equal(t, "reply two", c.Get(a2).Text())
}

func TestGraphStoreIsolation(t *testing.T) {
	s := NewGraphStore()
	bar := Graph{Kind: GraphBar, Series: &SeriesData{XLabel: "day", YLabel: "orders"}}

	s.Attach(2, bar)
	s.Attach(4, bar)

	assert.Len(t, s.Get(2), 1)
	assert.Len(t, s.Get(4), 1)
	assert.Empty(t, s.Get(6))
	assert.NotNil(t, s.Get(6))
}

func TestGraphStorePreservesArrivalOrder(t *testing.T) {
	s := NewGraphStore()
	s.Attach(2, Graph{Kind: GraphBar})
	s.Attach(2, Graph{Kind: GraphLine})
	s.Attach(2, Graph{Kind: GraphDoughnut})

	got := s.Get(2)
	require.Len(t, got, 3)
	assert.Equal(t, GraphBar, got[0].Kind)
	assert.Equal(t, GraphLine, got[1].Kind)
	assert.Equal(t, GraphDoughnut, got[2].Kind)
}

func TestAxisValueAcceptsStringsAndNumbers(t *testing.T) {
	var d SeriesData
	raw := `{"x_label":"month","y_label":"sales","x_coordinates":["Jan",2,3.5],"y_coordinates":[10,20,30]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	assert.Equal(t, []AxisValue{"Jan", "2", "3.5"}, d.XCoordinates)
}

func TestGraphPointsTruncatesRaggedArrays(t *testing.T) {
	g := Graph{Kind: GraphLine, Series: &SeriesData{
		XCoordinates: []AxisValue{"a", "b", "c"},
		YCoordinates: []float64{1, 2},
	}}
	pts := g.Points()
	require.Len(t, pts, 2)
	assert.Equal(t, Point{Label: "b", Value: 2}, pts[1])

	doughnut := Graph{Kind: GraphDoughnut, Slices: &SliceData{
		Labels: []string{"x", "y"},
		Values: []float64{5, 6},
	}}
	assert.Len(t, doughnut.Points(), 2)
}
