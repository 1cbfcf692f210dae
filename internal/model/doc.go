// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model holds the client-side conversation state for the streaming
// chat view.
//
// A Conversation is an ordered list of turns with locally assigned integer
// ids: submitting user text reserves a pair (user id N, assistant id N+1)
// before any network call, so stream events can address the assistant turn
// explicitly by id rather than through a shared "current message" variable.
// The assistant turn's text is always the exact arrival-order concatenation
// of the token deltas applied to it.
//
// GraphStore keeps chart payloads produced mid-stream, keyed by the
// assistant message id that produced them, in arrival order.
package model
