// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the bot360 backend.
//
// It covers authentication (JWT access/refresh pair with transparent
// one-shot refresh-and-replay on 401), the streaming chat protocol
// (newline-delimited JSON events carrying token deltas, thinking
// announcements, graph payloads, and terminal errors), the WhatsApp
// preview endpoints, and the assistant-configuration, knowledge-base,
// and test-suite resources.
//
// The streaming protocol is the heart of the package: FrameReader turns a
// chunked response body into complete frames regardless of how the
// transport splits them, and ChatStream classifies each decoded event and
// hands it to the caller strictly in arrival order.
package api
