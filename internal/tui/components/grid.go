package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
	"github.com/alexisbeaulieu97/xyzplot/internal/model"
)

const (
	maxRowLabel = 16
	maxColLabel = 10
	minColWidth = 3
)

var (
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	partialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// Cell glyphs.
const (
	GlyphDone    = "●"
	GlyphPartial = "◐"
	GlyphPending = "·"
)

// Grid renders one z slice of a result folder: X values across, Y values down, one glyph
// per cell summarizing its batch.
type Grid struct {
	xLabels []string
	yLabels []string
	done    [][]int
	batch   int
}

// NewGrid builds the grid for z position zPos (an index into meta.ZSlots, clamped).
func NewGrid(meta *manifest.Metadata, summary model.GridSummary, zPos int) Grid {
	g := Grid{xLabels: meta.ValuesX, yLabels: meta.ValuesY, batch: meta.BatchSize}
	g.done = make([][]int, len(meta.ValuesX))
	for x := range g.done {
		g.done[x] = make([]int, len(meta.ValuesY))
	}
	if len(meta.ZSlots) == 0 {
		return g
	}
	zPos = max(0, min(zPos, len(meta.ZSlots)-1))
	slot := meta.ZSlots[zPos]

	for _, cell := range summary.Cells {
		if cell.Z != slot || cell.Status != model.CellDone {
			continue
		}
		if cell.X < len(g.done) && cell.Y < len(meta.ValuesY) {
			g.done[cell.X][cell.Y]++
		}
	}
	return g
}

// Cell returns how many images of cell (x, y) are saved, out of the batch size.
func (g Grid) Cell(x, y int) (done, total int) {
	return g.done[x][y], g.batch
}

// Glyph returns the symbol for cell (x, y) without styling.
func (g Grid) Glyph(x, y int) string {
	done, total := g.Cell(x, y)
	switch {
	case total > 0 && done >= total:
		return GlyphDone
	case done > 0:
		return GlyphPartial
	default:
		return GlyphPending
	}
}

// View renders the grid as a table.
func (g Grid) View() string {
	rowWidth := 0
	for _, label := range g.yLabels {
		rowWidth = max(rowWidth, lipgloss.Width(truncate(label, maxRowLabel)))
	}
	widths := make([]int, len(g.xLabels))
	for x, label := range g.xLabels {
		widths[x] = max(minColWidth, lipgloss.Width(truncate(label, maxColLabel)))
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", rowWidth))
	for x, label := range g.xLabels {
		b.WriteString(" ")
		b.WriteString(headerStyle.Render(pad(truncate(label, maxColLabel), widths[x])))
	}

	for y, label := range g.yLabels {
		b.WriteString("\n")
		b.WriteString(headerStyle.Render(pad(truncate(label, maxRowLabel), rowWidth)))
		for x := range g.xLabels {
			b.WriteString(" ")
			glyph := g.Glyph(x, y)
			b.WriteString(styleFor(glyph).Render(glyph))
			b.WriteString(strings.Repeat(" ", widths[x]-1))
		}
	}
	return b.String()
}

func styleFor(glyph string) lipgloss.Style {
	switch glyph {
	case GlyphDone:
		return doneStyle
	case GlyphPartial:
		return partialStyle
	default:
		return pendingStyle
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
