// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bot360/bot360-tui/internal/model"
	"github.com/bot360/bot360-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme("dark")
}

func TestRenderGraphBar(t *testing.T) {
	g := model.Graph{
		Kind: model.GraphBar,
		Series: &model.SeriesData{
			XLabel:       "Day",
			YLabel:       "Chats",
			XCoordinates: []model.AxisValue{"Mon", "Tue", "Wed"},
			YCoordinates: []float64{10, 40, 25},
		},
	}
	out := RenderGraph(g, 80, testTheme())
	require.NotEmpty(t, out)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	// One row per point plus the axis legend.
	assert.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, out, "Mon")
	assert.Contains(t, out, "Tue")
	assert.Contains(t, out, "Wed")
	assert.Contains(t, out, "Day / Chats")
	// The largest value draws the longest bar.
	assert.Contains(t, out, "40")
}

func TestRenderGraphDoughnutPercentages(t *testing.T) {
	g := model.Graph{
		Kind: model.GraphDoughnut,
		Slices: &model.SliceData{
			Labels: []string{"resolved", "escalated"},
			Values: []float64{75, 25},
		},
	}
	out := RenderGraph(g, 80, testTheme())
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "25.0%")
}

func TestRenderGraphEmptyPayload(t *testing.T) {
	out := RenderGraph(model.Graph{Kind: model.GraphLine}, 80, testTheme())
	assert.Contains(t, out, "empty chart")
}

func TestRenderGraphLineAxisLabels(t *testing.T) {
	g := model.Graph{
		Kind: model.GraphLine,
		Series: &model.SeriesData{
			XCoordinates: []model.AxisValue{"Jan", "Feb", "Mar", "Apr"},
			YCoordinates: []float64{5, 2, 9, 7},
		},
	}
	out := RenderGraph(g, 80, testTheme())
	assert.Contains(t, out, "Jan")
	assert.Contains(t, out, "Apr")
	// Min and max appear on the y axis.
	assert.Contains(t, out, "9")
	assert.Contains(t, out, "2")
}

func TestHorizontalBarBounds(t *testing.T) {
	assert.Equal(t, "", horizontalBar(0, 10))
	assert.Equal(t, strings.Repeat("█", 10), horizontalBar(1, 10))
	assert.Equal(t, strings.Repeat("█", 10), horizontalBar(2.5, 10))
	// Fractional values get an eighth-block tail.
	half := horizontalBar(0.5, 10)
	assert.Equal(t, strings.Repeat("█", 5), half)
}

func TestHighlightFencesPassthrough(t *testing.T) {
	plain := "no code here"
	assert.Equal(t, plain, HighlightFences(plain))
}

func TestHighlightFencesUnterminated(t *testing.T) {
	// Mid-stream fence: body not yet closed stays untouched.
	text := "intro\n```go\nfunc main() {"
	assert.Equal(t, text, HighlightFences(text))
}

func TestHighlightFencesClosedBlock(t *testing.T) {
	text := "before\n```go\npackage main\n```\nafter"
	out := HighlightFences(text)
	assert.Contains(t, out, "before")
	assert.Contains(t, out, "after")
	// Highlighting interleaves escape codes, so check the tokens.
	assert.Contains(t, out, "package")
	assert.Contains(t, out, "main")
	assert.NotContains(t, out, "```")
}
