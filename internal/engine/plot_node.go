// Package engine runs the plot node. A user-initiated invocation plans the sweep, writes
// the manifest and submits one graph copy per cell; each copy comes back as a COMPLETE
// invocation that saves its images into the grid.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/alexisbeaulieu97/xyzplot/internal/graph"
	"github.com/alexisbeaulieu97/xyzplot/internal/logger"
	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
	"github.com/alexisbeaulieu97/xyzplot/internal/model"
	"github.com/alexisbeaulieu97/xyzplot/internal/naming"
	"github.com/alexisbeaulieu97/xyzplot/internal/store"
	"github.com/alexisbeaulieu97/xyzplot/internal/sweep"
	"github.com/alexisbeaulieu97/xyzplot/internal/tracing"
	"github.com/alexisbeaulieu97/xyzplot/internal/transport"
	xyzerrors "github.com/alexisbeaulieu97/xyzplot/pkg/errors"
)

// Options wire a PlotNode to its collaborators.
type Options struct {
	Store     *store.Store
	Submitter transport.Submitter
	Tracer    trace.Tracer
	Logger    *logger.Logger
	Now       func() time.Time
	NewRunID  func() string
}

// PlotNode executes plot node invocations.
type PlotNode struct {
	store     *store.Store
	submitter transport.Submitter
	tracer    trace.Tracer
	log       *logger.Logger
	now       func() time.Time
	newRunID  func() string
}

// NewPlotNode validates the options and fills defaults.
func NewPlotNode(opts Options) (*PlotNode, error) {
	if opts.Store == nil {
		return nil, errors.New("result store is required")
	}
	if opts.Submitter == nil {
		return nil, errors.New("submitter is required")
	}
	node := &PlotNode{
		store:     opts.Store,
		submitter: opts.Submitter,
		tracer:    opts.Tracer,
		log:       opts.Logger.Component("engine"),
		now:       opts.Now,
		newRunID:  opts.NewRunID,
	}
	if node.tracer == nil {
		node.tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if node.now == nil {
		node.now = time.Now
	}
	if node.newRunID == nil {
		node.newRunID = func() string { return uuid.NewString() }
	}
	return node, nil
}

// Classify determines the phase of an invocation. A COMPLETE invocation is one whose own
// node in the graph carries a cell assignment.
func Classify(inv Invocation) (Phase, graph.CellAssignment, error) {
	if !inv.Hidden.HasGraph() {
		return PhasePlan, graph.CellAssignment{}, nil
	}
	node, _, err := inv.Hidden.Prompt.Lookup(inv.Hidden.UniqueID)
	if err != nil {
		return PhasePlan, graph.CellAssignment{}, err
	}
	assignment, ok, err := node.CellAssignment()
	if err != nil {
		return PhasePlan, graph.CellAssignment{}, xyzerrors.NewValidationError(graph.CellAssignmentKey, "cell assignment is malformed", err)
	}
	if ok {
		return PhaseComplete, assignment, nil
	}
	return PhasePlan, graph.CellAssignment{}, nil
}

// Execute runs one invocation.
func (n *PlotNode) Execute(ctx context.Context, inv Invocation) (*model.PlotOutput, error) {
	phase, assignment, err := Classify(inv)
	if err != nil {
		return nil, err
	}
	if phase == PhaseComplete {
		return n.complete(inv, assignment)
	}
	return n.plan(ctx, inv)
}

func (n *PlotNode) complete(inv Invocation, assignment graph.CellAssignment) (*model.PlotOutput, error) {
	folder := naming.SanitizeFolderName(inv.Inputs.OutputFolderName)
	if assignment.OutputFolderName != "" {
		folder = naming.SanitizeFolderName(assignment.OutputFolderName)
	}

	log := n.log.WithFields(map[string]any{
		"folder": folder,
		"phase":  PhaseComplete.String(),
		"x":      assignment.XIndex,
		"y":      assignment.YIndex,
		"z":      assignment.ZIndex,
	})

	names, err := n.store.SaveImages(folder, inv.Images, assignment.XIndex, assignment.YIndex, assignment.ZIndex)
	if err != nil {
		return nil, xyzerrors.NewExecutionError(inv.Hidden.UniqueID, err)
	}
	log.WithField("images", len(names)).Info("saved cell images")

	return &model.PlotOutput{Data: n.plotData(folder)}, nil
}

func (n *PlotNode) plan(ctx context.Context, inv Invocation) (*model.PlotOutput, error) {
	plan, err := sweep.Resolve(inv.Inputs, inv.batchSize())
	if err != nil {
		return nil, err
	}

	runID := n.newRunID()
	folder := naming.ExpandTemplate(inv.Inputs.OutputFolderName, plan.NamingAxes(), n.now())

	ctx, span := n.tracer.Start(ctx, tracing.SpanPlan, trace.WithAttributes(planAttributes(folder, runID, inv.Hidden.UniqueID, plan.CellCount())...))
	defer span.End()

	log := n.log.WithFields(map[string]any{
		"run_id":      runID,
		"folder":      folder,
		"source_node": inv.Hidden.UniqueID,
		"phase":       PhasePlan.String(),
	})

	if err := n.writeResultFolder(folder, runID, plan, inv.Hidden, log); err != nil {
		err = xyzerrors.NewExecutionError(inv.Hidden.UniqueID, err)
		recordError(span, err)
		return nil, err
	}

	data := n.plotData(folder)
	data.BatchSize = model.IntPtr(plan.BatchSize)

	if !inv.Hidden.HasGraph() {
		log.Info("no graph context; manifest written without submitting")
		data.QueuedJobs = model.IntPtr(0)
		return &model.PlotOutput{Data: data, UI: &model.PlotUI{PlotFolder: []string{folder}, QueuedJobs: []int{0}}}, nil
	}

	queued, err := n.dispatch(ctx, fanout{
		plan:   plan,
		folder: folder,
		hidden: inv.Hidden,
		ref:    data.FolderRef(),
		log:    log,
	})
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	log.WithField("queued_jobs", queued).Info("sweep queued")
	data.QueuedJobs = model.IntPtr(queued)
	return &model.PlotOutput{Data: data, UI: &model.PlotUI{PlotFolder: []string{folder}, QueuedJobs: []int{queued}}}, nil
}

// writeResultFolder archives any previous folder, then writes the workflow snapshot and the
// manifest. It runs before the first submission.
func (n *PlotNode) writeResultFolder(folder, runID string, plan *sweep.Plan, hidden Hidden, log *logger.Logger) error {
	path, archived, err := n.store.Prepare(folder)
	if err != nil {
		return err
	}
	if archived != "" {
		log.WithField("archived_to", archived).Debug("previous results archived")
	}

	workflow, hasWorkflow := hidden.Workflow()
	if hasWorkflow {
		if err := n.store.WriteWorkflow(folder, workflow); err != nil {
			return err
		}
	}

	m := manifest.Build(manifest.BuildOptions{
		Folder:    folder,
		Plan:      plan,
		CreatedAt: n.now(),
		RunID:     runID,
		Workflow:  hasWorkflow,
	})
	if err := manifest.Write(path, m); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	log.WithField("cells", plan.CellCount()).Debug("manifest written")
	return nil
}

func (n *PlotNode) plotData(folder string) model.PlotData {
	return model.PlotData{
		FolderName: folder,
		FolderPath: n.store.FolderPath(folder),
		ResultPath: n.store.ResultPath(folder),
	}
}
