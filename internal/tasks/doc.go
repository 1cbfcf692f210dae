// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks tracks long-running backend jobs the client only observes
// by polling: test-suite runs and knowledge-base indexing.
//
// A Job wraps one polling loop with status, progress, and cancellation;
// the Tracker owns the set of live jobs and emits notifications the TUI
// status line consumes. Jobs run on their own goroutines but mutate only
// their own state, published through small locked accessors.
package tasks
