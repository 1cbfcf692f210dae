// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for the bot360-tui client.
//
// It contains the crash-safe file writer used by the credential store,
// configuration, and history layers, plus width-aware string truncation
// for terminal layout.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth: display-width truncation (CJK aware)
//
// # Usage
//
//	// Persist credentials without risk of a torn write
//	err := util.AtomicWriteFile(path, data, 0600)
//
//	// Fit a title into a status bar cell
//	title := util.TruncateWidth(longTitle, 40)
package util
