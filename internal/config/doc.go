// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config manages bot360-tui configuration.
//
// Configuration lives in a TOML file at ~/.bot360/config.toml and covers
// the backend server address, request timeouts, chat and preview pacing,
// polling cadence for long-running backend jobs, theme selection, and
// local history persistence.
//
// Values resolve in order: defaults, then the TOML file, then BOT360_*
// environment variable overrides. The file is written with 0600
// permissions. A Watcher can hot-reload the file while the TUI runs.
package config
