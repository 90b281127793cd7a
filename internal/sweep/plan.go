// Package sweep resolves the raw plot-node inputs into a validated sweep plan and
// enumerates its cells. The dispatcher and the manifest builder both consume the same
// enumeration, so submitted jobs and manifest entries describe one coordinate space.
package sweep

import (
	"fmt"

	"github.com/alexisbeaulieu97/xyzplot/internal/axis"
	"github.com/alexisbeaulieu97/xyzplot/internal/grid"
	"github.com/alexisbeaulieu97/xyzplot/internal/naming"
)

// Axis is one bound sweep dimension.
type Axis struct {
	Ref    axis.Reference
	Values []string
}

// Plan is a validated sweep: two or three axes and the image batch size per cell.
type Plan struct {
	X         Axis
	Y         Axis
	Z         *Axis
	BatchSize int
}

// Cell is one combination of axis values. Z is grid.NoZ when the plan has no Z axis.
type Cell struct {
	X      int
	Y      int
	Z      int
	XValue string
	YValue string
	ZValue string
}

// Binding pins one widget to one value.
type Binding struct {
	Ref   axis.Reference
	Value string
}

// HasZ reports whether the plan sweeps a third axis.
func (p *Plan) HasZ() bool {
	return p.Z != nil && len(p.Z.Values) > 0
}

// ZValues returns the Z axis values, or an empty list for a 2D sweep.
func (p *Plan) ZValues() []string {
	if !p.HasZ() {
		return []string{}
	}
	return p.Z.Values
}

// ZRef returns the active Z reference, or nil for a 2D sweep.
func (p *Plan) ZRef() *axis.Reference {
	if !p.HasZ() {
		return nil
	}
	ref := p.Z.Ref
	return &ref
}

// NamingAxes exposes the bound references for folder-name templates.
func (p *Plan) NamingAxes() naming.Axes {
	x, y := p.X.Ref, p.Y.Ref
	return naming.Axes{X: &x, Y: &y, Z: p.ZRef()}
}

// CellCount is len(X) * len(Y) * (len(Z) or 1).
func (p *Plan) CellCount() int {
	n := len(p.X.Values) * len(p.Y.Values)
	if p.HasZ() {
		n *= len(p.Z.Values)
	}
	return n
}

// Cells enumerates the cartesian product with X outermost and Z innermost.
func (p *Plan) Cells() []Cell {
	cells := make([]Cell, 0, p.CellCount())
	zValues := p.ZValues()
	for ix, vx := range p.X.Values {
		for iy, vy := range p.Y.Values {
			if len(zValues) == 0 {
				cells = append(cells, Cell{X: ix, Y: iy, Z: grid.NoZ, XValue: vx, YValue: vy})
				continue
			}
			for iz, vz := range zValues {
				cells = append(cells, Cell{X: ix, Y: iy, Z: iz, XValue: vx, YValue: vy, ZValue: vz})
			}
		}
	}
	return cells
}

// Bindings lists the widget values to pin for a cell, X first.
func (p *Plan) Bindings(c Cell) []Binding {
	bindings := []Binding{
		{Ref: p.X.Ref, Value: c.XValue},
		{Ref: p.Y.Ref, Value: c.YValue},
	}
	if p.HasZ() {
		bindings = append(bindings, Binding{Ref: p.Z.Ref, Value: c.ZValue})
	}
	return bindings
}

// Coordinate addresses image batch of the cell.
func (c Cell) Coordinate(batch int) grid.Coordinate {
	return grid.Coordinate{X: c.X, Y: c.Y, Z: c.Z, Batch: batch}
}

func (c Cell) String() string {
	if c.Z >= 0 {
		return fmt.Sprintf("x%d/y%d/z%d", c.X, c.Y, c.Z)
	}
	return fmt.Sprintf("x%d/y%d", c.X, c.Y)
}
