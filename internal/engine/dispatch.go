package engine

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/alexisbeaulieu97/xyzplot/internal/graph"
	"github.com/alexisbeaulieu97/xyzplot/internal/logger"
	"github.com/alexisbeaulieu97/xyzplot/internal/model"
	"github.com/alexisbeaulieu97/xyzplot/internal/sweep"
	"github.com/alexisbeaulieu97/xyzplot/internal/tracing"
	"github.com/alexisbeaulieu97/xyzplot/internal/transport"
)

type fanout struct {
	plan   *sweep.Plan
	folder string
	hidden Hidden
	ref    model.PlotData
	log    *logger.Logger
}

// dispatch submits one graph copy per cell in plan order, then a refresh of the viewers
// attached to the plot node. Submission stops at the first failure; cells already queued
// stay queued and the manifest is left in place. The viewer refresh does not count as a
// queued job.
func (n *PlotNode) dispatch(ctx context.Context, d fanout) (int, error) {
	source := d.hidden.UniqueID
	queued := 0

	for _, cell := range d.plan.Cells() {
		doc, err := cellDocument(d, cell)
		if err != nil {
			return queued, err
		}
		err = n.submit(ctx, cell.String(), transport.Submission{
			Prompt:                  doc,
			PartialExecutionTargets: []string{source},
			ClientID:                d.hidden.ClientID,
		})
		if err != nil {
			return queued, err
		}
		queued++
		d.log.WithField("cell", cell.String()).Debug("cell queued")
	}

	viewers := d.hidden.Prompt.FindViewers(source)
	if len(viewers) == 0 {
		return queued, nil
	}

	refresh := d.hidden.Prompt.Clone()
	if err := refresh.PointViewersAt(viewers, d.ref); err != nil {
		return queued, err
	}
	err := n.submit(ctx, "viewers", transport.Submission{
		Prompt:                  refresh,
		PartialExecutionTargets: viewers,
		ClientID:                d.hidden.ClientID,
	})
	if err != nil {
		return queued, err
	}
	d.log.WithField("viewers", strings.Join(viewers, ",")).Debug("viewer refresh queued")
	return queued, nil
}

// cellDocument copies the graph with the cell's axis values applied and its assignment
// stamped onto the plot node. The source graph is never modified.
func cellDocument(d fanout, cell sweep.Cell) (graph.Document, error) {
	doc := d.hidden.Prompt.Clone()
	for _, binding := range d.plan.Bindings(cell) {
		if err := doc.SetAxisValue(binding.Ref, binding.Value); err != nil {
			return nil, err
		}
	}
	err := doc.StampCellAssignment(d.hidden.UniqueID, graph.CellAssignment{
		SourceUniqueID:   d.hidden.UniqueID,
		OutputFolderName: d.folder,
		XIndex:           cell.X,
		YIndex:           cell.Y,
		ZIndex:           cell.Z,
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (n *PlotNode) submit(ctx context.Context, label string, submission transport.Submission) error {
	ctx, span := n.tracer.Start(ctx, tracing.SpanSubmit, trace.WithAttributes(
		attribute.String(tracing.AttrCell, label),
		attribute.StringSlice(tracing.AttrTargets, submission.PartialExecutionTargets),
	))
	defer span.End()

	if err := n.submitter.Submit(ctx, submission); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func planAttributes(folder, runID, source string, cells int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(tracing.AttrFolder, folder),
		attribute.String(tracing.AttrRunID, runID),
		attribute.String(tracing.AttrSourceNode, source),
		attribute.Int(tracing.AttrCellCount, cells),
	}
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
