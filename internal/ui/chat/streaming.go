// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "time"

// =============================================================================
// REPAINT GATE
// =============================================================================
// Tokens can arrive faster than a terminal can usefully redraw. Events are
// applied to the conversation immediately so no ordering is ever lost, but
// the transcript is rebuilt at a capped frame rate: arrival marks the gate
// dirty, and the periodic tick paints when the gate allows it.
//
// Not synchronized: like the conversation it guards, the gate is only
// touched on the update loop.

type repaintGate struct {
	dirty     bool
	lastPaint time.Time
	interval  time.Duration
}

// newRepaintGate builds a gate for the given maximum frames per second.
func newRepaintGate(fps int) *repaintGate {
	if fps <= 0 || fps > 60 {
		fps = 30
	}
	return &repaintGate{
		interval:  time.Second / time.Duration(fps),
		lastPaint: time.Now(),
	}
}

// MarkDirty records that view state changed since the last paint.
func (g *repaintGate) MarkDirty() {
	g.dirty = true
}

// ShouldPaint reports whether a rebuild is due: something changed and the
// frame interval has elapsed.
func (g *repaintGate) ShouldPaint() bool {
	return g.dirty && time.Since(g.lastPaint) >= g.interval
}

// Painted resets the gate after a rebuild.
func (g *repaintGate) Painted() {
	g.dirty = false
	g.lastPaint = time.Now()
}

// Dirty reports whether changes are waiting.
func (g *repaintGate) Dirty() bool {
	return g.dirty
}

// TickInterval returns the cadence the repaint tick should run at.
func (g *repaintGate) TickInterval() time.Duration {
	return g.interval
}
