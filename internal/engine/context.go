package engine

import (
	"image"
	"strings"

	"github.com/alexisbeaulieu97/xyzplot/internal/graph"
	"github.com/alexisbeaulieu97/xyzplot/internal/sweep"
)

// Phase is the role a plot node invocation plays.
type Phase int

const (
	// PhasePlan is the user-initiated run that fans the sweep out.
	PhasePlan Phase = iota
	// PhaseComplete is a fanned-out copy saving the images of one cell.
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhasePlan:
		return "plan"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Hidden is the host-provided context of an invocation.
type Hidden struct {
	// Prompt is the full execution graph the node runs in.
	Prompt graph.Document
	// UniqueID is this node's id inside Prompt.
	UniqueID string
	// ExtraPNGInfo may hold the design-time workflow under "workflow".
	ExtraPNGInfo map[string]any
	// ClientID is forwarded on every submission when set.
	ClientID string
}

// HasGraph reports whether the invocation can fan out: it needs both a non-empty graph
// and its own id inside it.
func (h Hidden) HasGraph() bool {
	return len(h.Prompt) > 0 && strings.TrimSpace(h.UniqueID) != ""
}

// Workflow returns the workflow snapshot, if the host supplied one.
func (h Hidden) Workflow() (any, bool) {
	if h.ExtraPNGInfo == nil {
		return nil, false
	}
	workflow, ok := h.ExtraPNGInfo["workflow"]
	return workflow, ok
}

// Invocation is one execution of the plot node.
type Invocation struct {
	Inputs sweep.Inputs
	// Images is the rendered batch; its length is the sweep's batch size.
	Images []image.Image
	// BatchSize stands in for len(Images) when planning without a rendered batch, as the
	// offline planner does.
	BatchSize int
	Hidden    Hidden
}

func (inv Invocation) batchSize() int {
	if len(inv.Images) > 0 || inv.BatchSize <= 0 {
		return len(inv.Images)
	}
	return inv.BatchSize
}
