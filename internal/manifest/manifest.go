// Package manifest builds, writes and reads the result.json file that describes a sweep
// folder: the axis values, the annotations naming the swept widgets, and the nested
// x → y → [z →] image tree consumed by viewers.
package manifest

import (
	"strings"
	"time"

	"github.com/alexisbeaulieu97/xyzplot/internal/axis"
	"github.com/alexisbeaulieu97/xyzplot/internal/grid"
	"github.com/alexisbeaulieu97/xyzplot/internal/sweep"
)

const (
	// Format tags every manifest written by this module.
	Format = "artify_xyz_plot_v1"
	// FileName is the manifest file inside a result folder.
	FileName = "result.json"
	// WorkflowFileName is the optional workflow snapshot next to the manifest.
	WorkflowFileName = "workflow.json"

	NodeTypeAxis  = "axis"
	NodeTypeImage = "img"
)

// Values holds the axis value lists in sweep order. Z is empty for 2D sweeps.
type Values struct {
	X []string `json:"x"`
	Y []string `json:"y"`
	Z []string `json:"z"`
}

// Annotation names the widget swept along one axis.
type Annotation struct {
	Axis string `json:"axis"`
	Key  string `json:"key"`
	Type string `json:"type"`
}

// Node is an entry of the result tree. Axis nodes carry Value and Children; image
// leaves carry UUID, Filename and Src.
type Node struct {
	Type     string `json:"type"`
	Value    string `json:"value,omitempty"`
	Children []Node `json:"children,omitempty"`
	UUID     string `json:"uuid,omitempty"`
	Filename string `json:"filename,omitempty"`
	Src      string `json:"src,omitempty"`
}

// WorkflowRef points at the workflow snapshot saved beside the manifest.
type WorkflowRef struct {
	Filename string `json:"filename"`
}

// Manifest is the document stored as result.json.
type Manifest struct {
	Format      string       `json:"format"`
	FolderName  string       `json:"folder_name"`
	CreatedAt   int64        `json:"created_at"`
	RunID       string       `json:"run_id,omitempty"`
	Values      Values       `json:"values"`
	BatchSize   int          `json:"batch_size"`
	Annotations []Annotation `json:"annotations"`
	Result      []Node       `json:"result"`
	Workflow    *WorkflowRef `json:"workflow,omitempty"`
}

// BuildOptions describe the sweep a manifest is built for.
type BuildOptions struct {
	Folder    string
	Plan      *sweep.Plan
	CreatedAt time.Time
	RunID     string
	// Workflow records that a workflow snapshot accompanies the manifest.
	Workflow bool
}

// Build assembles the manifest from the plan's cell enumeration. Every cell contributes
// BatchSize image leaves addressed exactly as the dispatcher will render them.
func Build(opts BuildOptions) *Manifest {
	plan := opts.Plan
	m := &Manifest{
		Format:      Format,
		FolderName:  opts.Folder,
		CreatedAt:   opts.CreatedAt.Unix(),
		RunID:       opts.RunID,
		Values:      Values{X: plan.X.Values, Y: plan.Y.Values, Z: plan.ZValues()},
		BatchSize:   plan.BatchSize,
		Annotations: Annotations(plan),
		Result:      buildTree(opts.Folder, plan),
	}
	if opts.Workflow {
		m.Workflow = &WorkflowRef{Filename: WorkflowFileName}
	}
	return m
}

func buildTree(folder string, plan *sweep.Plan) []Node {
	zValues := plan.ZValues()

	tree := make([]Node, len(plan.X.Values))
	for ix, vx := range plan.X.Values {
		row := make([]Node, len(plan.Y.Values))
		for iy, vy := range plan.Y.Values {
			row[iy] = Node{Type: NodeTypeAxis, Value: vy}
			if len(zValues) > 0 {
				row[iy].Children = make([]Node, len(zValues))
				for iz, vz := range zValues {
					row[iy].Children[iz] = Node{Type: NodeTypeAxis, Value: vz}
				}
			}
		}
		tree[ix] = Node{Type: NodeTypeAxis, Value: vx, Children: row}
	}

	for _, cell := range plan.Cells() {
		parent := &tree[cell.X].Children[cell.Y]
		if cell.Z >= 0 {
			parent = &parent.Children[cell.Z]
		}
		for b := 0; b < plan.BatchSize; b++ {
			parent.Children = append(parent.Children, leaf(folder, cell.Coordinate(b)))
		}
	}
	return tree
}

func leaf(folder string, c grid.Coordinate) Node {
	filename := c.Filename()
	return Node{
		Type:     NodeTypeImage,
		UUID:     c.UUID(folder),
		Filename: filename,
		Src:      grid.PreviewURL(folder, filename),
	}
}

// Annotations lists one entry per active axis.
func Annotations(plan *sweep.Plan) []Annotation {
	annotations := []Annotation{
		annotation("X", plan.X.Ref),
		annotation("Y", plan.Y.Ref),
	}
	if z := plan.ZRef(); z != nil {
		annotations = append(annotations, annotation("Z", *z))
	}
	return annotations
}

func annotation(name string, ref axis.Reference) Annotation {
	return Annotation{
		Axis: name,
		Key:  strings.TrimSpace("#" + ref.NodeID() + " " + ref.NodeTitle()),
		Type: ref.WidgetName(),
	}
}
