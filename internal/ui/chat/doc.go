// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive conversation view.
//
// The view owns a model.Conversation and model.GraphStore and applies
// stream events to them one at a time on the Bubble Tea update loop.
// Network work runs on a goroutine that forwards events over a channel;
// the update loop is the only writer of view state.
package chat
