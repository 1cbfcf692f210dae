// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/bot360/bot360-tui/internal/api"
	"github.com/bot360/bot360-tui/internal/config"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================
// Every stream message carries the assistant turn id it addresses. The
// conversation routes on that id, so events from an abandoned stream land
// on a closed turn and vanish instead of corrupting the next reply.

// StreamEventMsg delivers one decoded stream event to the update loop.
type StreamEventMsg struct {
	AssistantID int
	Event       api.StreamEvent
}

// StreamDoneMsg signals that the stream goroutine has finished. Err is the
// transport or protocol failure of the request itself; a terminal error
// event arrives as a StreamEventMsg instead and leaves Err nil.
type StreamDoneMsg struct {
	AssistantID int
	Err         error
}

// assistantOpenMsg appends the reserved assistant placeholder. It is
// emitted as a command so it lands one paint cycle after the user turn,
// letting the user's message render alone first.
type assistantOpenMsg struct {
	AssistantID int
}

// repaintTickMsg drives the capped-rate transcript rebuild during
// streaming; token arrival alone never forces a paint.
type repaintTickMsg struct {
	Time time.Time
}

// ConfigReloadedMsg delivers a freshly loaded configuration from the file
// watcher. It is routed through the program so the swap happens on the
// update loop; the watcher goroutine never writes state the views read.
type ConfigReloadedMsg struct {
	Cfg *config.Config
}
