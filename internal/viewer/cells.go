// Package viewer reads result folders back: the viewer node summary, per-cell completion
// status and the composited grid preview.
package viewer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/alexisbeaulieu97/xyzplot/internal/grid"
	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
)

// altExtensions are tried after grid.Extension for folders written by other tools.
var altExtensions = []string{".jpg", ".png", ".webp"}

// cellFile returns the path of the image for c inside dir, or "" if none exists yet.
func cellFile(dir string, c grid.Coordinate) string {
	base := c.Filename()
	path := filepath.Join(dir, base)
	if isFile(path) {
		return path
	}
	stem := strings.TrimSuffix(base, grid.Extension)
	for _, ext := range altExtensions {
		for _, candidate := range []string{stem + ext, stem + strings.ToUpper(ext)} {
			path = filepath.Join(dir, candidate)
			if isFile(path) {
				return path
			}
		}
	}
	return ""
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// coordinate maps grid positions to the coordinate stored on disk. zPos indexes
// meta.ZSlots.
func coordinate(meta *manifest.Metadata, x, y, zPos, batch int) grid.Coordinate {
	z := grid.NoZ
	if meta.HasZ() {
		z = meta.ZSlots[zPos]
	}
	return grid.Coordinate{X: x, Y: y, Z: z, Batch: batch}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
