// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session persists the authentication token pair for the bot360
// backend.
//
// The backend issues a short-lived access token and a longer-lived refresh
// token. The store keeps both in a single credentials file under the user's
// home directory, written atomically with owner-only permissions, plus an
// in-memory cache so every protected request does not hit the disk.
//
// Only the login, registration, and refresh flows write tokens; everything
// else reads them through Tokens().
package session
