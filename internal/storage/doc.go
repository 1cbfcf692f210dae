// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists chat history locally.
//
// Conversations, their turns, and any graph payloads attached to
// assistant turns are saved to a SQLite database at ~/.bot360/history.db
// (pure-Go driver, no cgo). Saving is on demand from the chat view;
// nothing is written unless history is enabled in the configuration.
package storage
