package viewer

import (
	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
	"github.com/alexisbeaulieu97/xyzplot/internal/model"
)

// Status reports, for every expected image of the grid, whether it is on disk. A missing
// file is pending, never an error.
func Status(folderPath string, meta *manifest.Metadata) model.GridSummary {
	var summary model.GridSummary
	for x := range meta.ValuesX {
		for y := range meta.ValuesY {
			for zPos := range meta.ZSlots {
				for b := 0; b < meta.BatchSize; b++ {
					c := coordinate(meta, x, y, zPos, b)
					status := model.CellPending
					if cellFile(folderPath, c) != "" {
						status = model.CellDone
					}
					summary.Add(model.CellResult{
						X:        c.X,
						Y:        c.Y,
						Z:        c.Z,
						Batch:    c.Batch,
						Filename: c.Filename(),
						Status:   status,
					})
				}
			}
		}
	}
	return summary
}
