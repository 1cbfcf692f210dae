// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package preview implements the WhatsApp-preview typing simulation.
//
// The preview pane replays an assistant reply word by word at a fixed
// cadence, regardless of how fast the network delivered it. Player is the
// pacing state machine: producers feed raw text chunks as they arrive,
// complete words queue up, and the UI's timer pops one word per tick into
// the open preview bubble. Pacing is purely visual; feeding never blocks.
package preview
