// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/bot360/bot360-tui/internal/model"
	"github.com/bot360/bot360-tui/internal/ui/styles"
)

// =============================================================================
// GRAPH RENDERING
// =============================================================================
// Charts arrive mid-stream as structured payloads; the terminal renders them
// as unicode block art under the assistant bubble that produced them.

const (
	// Maximum width of the value column of a bar chart.
	maxBarWidth = 40
	// Height of line and area plots in rows.
	plotHeight = 8
	// Label column is truncated to keep narrow terminals usable.
	maxLabelWidth = 16
)

var barBlocks = []rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉', '█'}

// RenderGraph renders one chart payload for the given terminal width.
// Empty or unrenderable payloads yield a one-line placeholder rather than
// an error; a dropped chart must never break the transcript.
func RenderGraph(g model.Graph, width int, theme *styles.Theme) string {
	pts := g.Points()
	if len(pts) == 0 {
		return theme.GraphAxis.Render("(empty chart)")
	}

	var b strings.Builder
	if title := graphTitle(g); title != "" {
		b.WriteString(theme.GraphTitle.Render(title))
		b.WriteByte('\n')
	}

	switch g.Kind {
	case model.GraphBar:
		renderBars(&b, pts, width, theme)
	case model.GraphLine, model.GraphArea:
		renderPlot(&b, pts, width, g.Kind == model.GraphArea, theme)
	case model.GraphDoughnut:
		renderSlices(&b, pts, theme)
	default:
		renderBars(&b, pts, width, theme)
	}

	if legend := graphLegend(g); legend != "" {
		b.WriteByte('\n')
		b.WriteString(theme.GraphAxis.Render(legend))
	}
	return b.String()
}

func graphTitle(g model.Graph) string {
	switch {
	case g.Series != nil && g.Series.Description != "":
		return g.Series.Description
	case g.Slices != nil && g.Slices.Description != "":
		return g.Slices.Description
	}
	return ""
}

func graphLegend(g model.Graph) string {
	switch {
	case g.Series != nil:
		if g.Series.Legend != "" {
			return g.Series.Legend
		}
		if g.Series.XLabel != "" || g.Series.YLabel != "" {
			return strings.TrimSpace(g.Series.XLabel + " / " + g.Series.YLabel)
		}
	case g.Slices != nil:
		return g.Slices.Legend
	}
	return ""
}

// -----------------------------------------------------------------------------
// Bar charts
// -----------------------------------------------------------------------------

func renderBars(b *strings.Builder, pts []model.Point, width int, theme *styles.Theme) {
	labelW := labelColumnWidth(pts)
	barW := width - labelW - 12
	if barW > maxBarWidth {
		barW = maxBarWidth
	}
	if barW < 4 {
		barW = 4
	}

	max := maxValue(pts)
	for _, p := range pts {
		frac := 0.0
		if max > 0 && p.Value > 0 {
			frac = p.Value / max
		}
		bar := horizontalBar(frac, barW)
		label := runewidth.FillLeft(runewidth.Truncate(p.Label, labelW, "…"), labelW)
		fmt.Fprintf(b, "%s %s %s\n",
			theme.GraphAxis.Render(label),
			theme.GraphBar.Render(bar),
			theme.GraphValue.Render(formatValue(p.Value)))
	}
}

// horizontalBar draws a bar of fractional width using eighth blocks, so
// adjacent values that round to the same cell count still differ visibly.
func horizontalBar(frac float64, width int) string {
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	eighths := int(math.Round(frac * float64(width) * 8))
	full := eighths / 8
	rem := eighths % 8

	var sb strings.Builder
	sb.Grow(width)
	for i := 0; i < full; i++ {
		sb.WriteRune('█')
	}
	if rem > 0 && full < width {
		sb.WriteRune(barBlocks[rem])
	}
	return sb.String()
}

// -----------------------------------------------------------------------------
// Line and area plots
// -----------------------------------------------------------------------------

func renderPlot(b *strings.Builder, pts []model.Point, width int, filled bool, theme *styles.Theme) {
	cols := len(pts)
	if avail := width - 10; cols > avail && avail > 1 {
		cols = avail
	}

	min, max := valueRange(pts)
	span := max - min
	if span == 0 {
		span = 1
	}

	// Each point maps to a row; columns beyond the width are dropped from
	// the right since newest-last is the common shape of these series.
	grid := make([][]rune, plotHeight)
	for r := range grid {
		grid[r] = make([]rune, cols)
		for c := range grid[r] {
			grid[r][c] = ' '
		}
	}
	for c := 0; c < cols; c++ {
		row := int(math.Round((pts[c].Value - min) / span * float64(plotHeight-1)))
		top := plotHeight - 1 - row
		grid[top][c] = '●'
		if filled {
			for r := top + 1; r < plotHeight; r++ {
				grid[r][c] = '│'
			}
		}
	}

	for r, line := range grid {
		axisMark := " "
		switch r {
		case 0:
			axisMark = formatValue(max)
		case plotHeight - 1:
			axisMark = formatValue(min)
		}
		fmt.Fprintf(b, "%s %s\n",
			theme.GraphValue.Render(runewidth.FillLeft(axisMark, 8)),
			theme.GraphBar.Render(string(line)))
	}

	if cols > 0 {
		first := runewidth.Truncate(pts[0].Label, maxLabelWidth, "…")
		last := runewidth.Truncate(pts[cols-1].Label, maxLabelWidth, "…")
		pad := cols - runewidth.StringWidth(first) - runewidth.StringWidth(last)
		if pad < 1 {
			pad = 1
		}
		fmt.Fprintf(b, "%s %s%s%s\n",
			strings.Repeat(" ", 8),
			theme.GraphAxis.Render(first),
			strings.Repeat(" ", pad),
			theme.GraphAxis.Render(last))
	}
}

// -----------------------------------------------------------------------------
// Doughnut charts
// -----------------------------------------------------------------------------

// renderSlices renders a doughnut as a percentage breakdown. A terminal has
// no business drawing rings; proportions carry the same information.
func renderSlices(b *strings.Builder, pts []model.Point, theme *styles.Theme) {
	total := 0.0
	for _, p := range pts {
		if p.Value > 0 {
			total += p.Value
		}
	}
	labelW := labelColumnWidth(pts)
	for _, p := range pts {
		pct := 0.0
		if total > 0 && p.Value > 0 {
			pct = p.Value / total
		}
		bar := horizontalBar(pct, 20)
		label := runewidth.FillLeft(runewidth.Truncate(p.Label, labelW, "…"), labelW)
		fmt.Fprintf(b, "%s %s %s\n",
			theme.GraphAxis.Render(label),
			theme.GraphBar.Render(bar),
			theme.GraphValue.Render(fmt.Sprintf("%5.1f%% (%s)", pct*100, formatValue(p.Value))))
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func labelColumnWidth(pts []model.Point) int {
	w := 0
	for _, p := range pts {
		if lw := runewidth.StringWidth(p.Label); lw > w {
			w = lw
		}
	}
	if w > maxLabelWidth {
		w = maxLabelWidth
	}
	return w
}

func maxValue(pts []model.Point) float64 {
	max := 0.0
	for _, p := range pts {
		if p.Value > max {
			max = p.Value
		}
	}
	return max
}

func valueRange(pts []model.Point) (min, max float64) {
	min, max = pts[0].Value, pts[0].Value
	for _, p := range pts[1:] {
		if p.Value < min {
			min = p.Value
		}
		if p.Value > max {
			max = p.Value
		}
	}
	return min, max
}

// formatValue renders a number compactly: integers without decimals, large
// values with a magnitude suffix.
func formatValue(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case abs >= 1e4:
		return fmt.Sprintf("%.1fK", v/1e3)
	case v == math.Trunc(v):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
