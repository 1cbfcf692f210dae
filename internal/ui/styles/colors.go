// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// Color Palette
// =============================================================================
// Adaptive pairs: Light value renders on light terminals, Dark on dark ones.

var (
	// Brand accents.
	Purple  = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
	Cyan    = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}
	Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
	Rose    = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}
	Amber   = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

	// Text.
	TextPrimary   = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#F3F4F6"}
	TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	TextMuted     = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}

	// Surfaces.
	Surface       = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#111827"}
	SurfaceRaised = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1F2937"}
	Border        = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"}

	// Chat bubbles.
	UserBubbleBg      = lipgloss.AdaptiveColor{Light: "#DBEAFE", Dark: "#1E3A5F"}
	UserBubbleFg      = lipgloss.AdaptiveColor{Light: "#1E40AF", Dark: "#BFDBFE"}
	AssistantBubbleBg = lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#1F2937"}
	AssistantBubbleFg = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#E5E7EB"}

	// Preview pane bubbles follow the messenger look the web widget uses:
	// visitor messages on a green bubble, bot replies on a neutral one.
	PreviewUserBg = lipgloss.AdaptiveColor{Light: "#DCF8C6", Dark: "#2A4A2E"}
	PreviewUserFg = lipgloss.AdaptiveColor{Light: "#1B4332", Dark: "#B7E4C7"}
	PreviewBotBg  = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#262D34"}
	PreviewBotFg  = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"}
)
