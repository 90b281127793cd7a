package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/xyzplot/internal/grid"
	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
	"github.com/alexisbeaulieu97/xyzplot/internal/model"
)

func summaryOf(cells ...model.CellResult) model.GridSummary {
	var s model.GridSummary
	for _, c := range cells {
		s.Add(c)
	}
	return s
}

func done(x, y, z, b int) model.CellResult {
	return model.CellResult{X: x, Y: y, Z: z, Batch: b, Status: model.CellDone}
}

func TestGridCountsBatchPerCell(t *testing.T) {
	t.Parallel()

	meta := &manifest.Metadata{
		ValuesX:   []string{"4", "7"},
		ValuesY:   []string{"10", "20"},
		ZSlots:    []int{grid.NoZ},
		BatchSize: 2,
	}
	summary := summaryOf(
		done(0, 0, grid.NoZ, 0), done(0, 0, grid.NoZ, 1),
		done(1, 1, grid.NoZ, 0),
		model.CellResult{X: 1, Y: 0, Z: grid.NoZ, Status: model.CellPending},
	)

	g := NewGrid(meta, summary, 0)
	d, total := g.Cell(0, 0)
	require.Equal(t, 2, d)
	require.Equal(t, 2, total)
	require.Equal(t, GlyphDone, g.Glyph(0, 0))
	require.Equal(t, GlyphPartial, g.Glyph(1, 1))
	require.Equal(t, GlyphPending, g.Glyph(1, 0))
	require.Equal(t, GlyphPending, g.Glyph(0, 1))
}

func TestGridSelectsZSlot(t *testing.T) {
	t.Parallel()

	meta := &manifest.Metadata{
		ValuesX:   []string{"a"},
		ValuesY:   []string{"b"},
		ValuesZ:   []string{"z3", "z5"},
		ZSlots:    []int{3, 5},
		BatchSize: 1,
	}
	summary := summaryOf(done(0, 0, 5, 0))

	require.Equal(t, GlyphPending, NewGrid(meta, summary, 0).Glyph(0, 0))
	require.Equal(t, GlyphDone, NewGrid(meta, summary, 1).Glyph(0, 0))
	require.Equal(t, GlyphDone, NewGrid(meta, summary, 9).Glyph(0, 0), "position is clamped")
}

func TestGridView(t *testing.T) {
	t.Parallel()

	meta := &manifest.Metadata{
		ValuesX:   []string{"euler", "a sampler with a long name"},
		ValuesY:   []string{"10", "20", "30"},
		ZSlots:    []int{grid.NoZ},
		BatchSize: 1,
	}
	view := NewGrid(meta, summaryOf(done(0, 2, grid.NoZ, 0)), 0).View()

	lines := strings.Split(view, "\n")
	require.Len(t, lines, 4)
	require.Contains(t, lines[0], "euler")
	require.Contains(t, lines[0], "a sampler…")
	require.Contains(t, lines[3], "30")
	require.Contains(t, lines[3], GlyphDone)
	require.Contains(t, lines[1], GlyphPending)
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "short", truncate("short", 10))
	require.Equal(t, "abcd…", truncate("abcdefgh", 5))
	require.Equal(t, "héll…", truncate("héllo wörld", 5))
}
