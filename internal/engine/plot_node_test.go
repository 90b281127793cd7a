package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/alexisbeaulieu97/xyzplot/internal/graph"
	"github.com/alexisbeaulieu97/xyzplot/internal/logger"
	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
	"github.com/alexisbeaulieu97/xyzplot/internal/store"
	"github.com/alexisbeaulieu97/xyzplot/internal/sweep"
	"github.com/alexisbeaulieu97/xyzplot/internal/tracing"
	"github.com/alexisbeaulieu97/xyzplot/internal/transport"
	xyzerrors "github.com/alexisbeaulieu97/xyzplot/pkg/errors"
)

const promptJSON = `{
  "3": {
    "class_type": "KSampler",
    "inputs": {"seed": 156680208700286, "steps": 20, "cfg": 8, "sampler_name": "euler", "model": ["4", 0]},
    "_meta": {"title": "KSampler"}
  },
  "4": {"class_type": "CheckpointLoaderSimple", "inputs": {"ckpt_name": "v1-5.safetensors"}},
  "12": {"class_type": "ArtifyXYZPlot", "inputs": {"images": ["3", 0], "value_x": "a;b"}},
  "15": {"class_type": "ArtifyXYZViewer", "inputs": {"xyz_plot": ["12", 0]}}
}`

var fixedNow = time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC)

type harness struct {
	node     *PlotNode
	store    *store.Store
	recorder *transport.Recorder
	spans    *tracetest.InMemoryExporter
}

func newHarness(t *testing.T, archive bool) *harness {
	t.Helper()

	s, err := store.New(store.Options{
		Root:            t.TempDir(),
		ArchiveExisting: archive,
		Logger:          logger.Nop(),
		Now:             func() time.Time { return fixedNow },
	})
	require.NoError(t, err)

	spans := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(spans))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	recorder := &transport.Recorder{}
	node, err := NewPlotNode(Options{
		Store:     s,
		Submitter: recorder,
		Tracer:    provider.Tracer("test"),
		Logger:    logger.Nop(),
		Now:       func() time.Time { return fixedNow },
		NewRunID:  func() string { return "run-1" },
	})
	require.NoError(t, err)

	return &harness{node: node, store: s, recorder: recorder, spans: spans}
}

func prompt(t *testing.T) graph.Document {
	t.Helper()
	doc, err := graph.Parse([]byte(promptJSON))
	require.NoError(t, err)
	return doc
}

func images(n int) []image.Image {
	out := make([]image.Image, n)
	for i := range out {
		img := image.NewRGBA(image.Rect(0, 0, 8, 8))
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				img.Set(x, y, color.RGBA{R: uint8(40 * i), G: 120, B: 200, A: 255})
			}
		}
		out[i] = img
	}
	return out
}

func inputs2D() sweep.Inputs {
	return sweep.Inputs{
		OutputFolderName: "sweep",
		InputX:           "3::KSampler::cfg",
		ValueX:           "a; b",
		InputY:           "3::KSampler::steps",
		ValueY:           "1; 2",
		InputZ:           "none",
	}
}

func planInvocation(t *testing.T, in sweep.Inputs, batch int) Invocation {
	return Invocation{
		Inputs: in,
		Images: images(batch),
		Hidden: Hidden{Prompt: prompt(t), UniqueID: "12", ClientID: "client-1"},
	}
}

func TestNewPlotNodeRequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := NewPlotNode(Options{Submitter: &transport.Recorder{}})
	require.Error(t, err)

	s, err := store.New(store.Options{Root: t.TempDir()})
	require.NoError(t, err)
	_, err = NewPlotNode(Options{Store: s})
	require.Error(t, err)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	phase, _, err := Classify(Invocation{})
	require.NoError(t, err)
	require.Equal(t, PhasePlan, phase)
	require.Equal(t, "plan", phase.String())

	inv := planInvocation(t, inputs2D(), 1)
	phase, _, err = Classify(inv)
	require.NoError(t, err)
	require.Equal(t, PhasePlan, phase)

	require.NoError(t, inv.Hidden.Prompt.StampCellAssignment("12", graph.CellAssignment{OutputFolderName: "f", XIndex: 1, ZIndex: -1}))
	phase, assignment, err := Classify(inv)
	require.NoError(t, err)
	require.Equal(t, PhaseComplete, phase)
	require.Equal(t, "complete", phase.String())
	require.Equal(t, 1, assignment.XIndex)

	inv.Hidden.UniqueID = "77"
	_, _, err = Classify(inv)
	require.ErrorIs(t, err, xyzerrors.ErrNodeNotFound)

	inv = planInvocation(t, inputs2D(), 1)
	inv.Hidden.Prompt["12"].Inputs[graph.CellAssignmentKey] = "garbage"
	_, _, err = Classify(inv)
	var validationErr *xyzerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestPlanFansOutTwoByTwo(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	inv := planInvocation(t, inputs2D(), 1)
	original := inv.Hidden.Prompt.Clone()

	out, err := h.node.Execute(context.Background(), inv)
	require.NoError(t, err)

	require.Equal(t, "sweep", out.Data.FolderName)
	require.Equal(t, h.store.FolderPath("sweep"), out.Data.FolderPath)
	require.Equal(t, filepath.Join(h.store.FolderPath("sweep"), manifest.FileName), out.Data.ResultPath)
	require.Equal(t, 4, *out.Data.QueuedJobs)
	require.Equal(t, 1, *out.Data.BatchSize)
	require.Equal(t, []string{"sweep"}, out.UI.PlotFolder)
	require.Equal(t, []int{4}, out.UI.QueuedJobs)

	subs := h.recorder.Submissions()
	require.Len(t, subs, 5, "four cells plus the viewer refresh")

	wantValues := [][2]string{{"a", "1"}, {"a", "2"}, {"b", "1"}, {"b", "2"}}
	for i, sub := range subs[:4] {
		require.Equal(t, []string{"12"}, sub.PartialExecutionTargets)
		require.Equal(t, "client-1", sub.ClientID)
		require.Equal(t, wantValues[i][0], sub.Prompt["3"].Inputs["cfg"])
		require.Equal(t, wantValues[i][1], sub.Prompt["3"].Inputs["steps"])

		assignment, ok, err := sub.Prompt["12"].CellAssignment()
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, graph.CellAssignment{
			SourceUniqueID:   "12",
			OutputFolderName: "sweep",
			XIndex:           i / 2,
			YIndex:           i % 2,
			ZIndex:           -1,
		}, assignment)
	}

	// The invoking graph is never mutated.
	if diff := cmp.Diff(original, inv.Hidden.Prompt); diff != "" {
		t.Fatalf("source graph changed (-want +got):\n%s", diff)
	}

	meta, err := manifest.Read(out.Data.FolderPath)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, meta.ValuesX)
	require.Equal(t, []string{"1", "2"}, meta.ValuesY)
	require.Equal(t, 1, meta.BatchSize)
	require.False(t, meta.HasZ())
}

func TestCompletionWritesOnlyItsCell(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	out, err := h.node.Execute(context.Background(), planInvocation(t, inputs2D(), 1))
	require.NoError(t, err)

	manifestBefore, err := os.ReadFile(out.Data.ResultPath)
	require.NoError(t, err)

	cellCopy := h.recorder.Submissions()[2].Prompt
	complete, err := h.node.Execute(context.Background(), Invocation{
		Inputs: inputs2D(),
		Images: images(1),
		Hidden: Hidden{Prompt: cellCopy, UniqueID: "12"},
	})
	require.NoError(t, err)
	require.Equal(t, "sweep", complete.Data.FolderName)
	require.Nil(t, complete.Data.QueuedJobs)
	require.Nil(t, complete.Data.BatchSize)
	require.Nil(t, complete.UI)

	entries, err := os.ReadDir(out.Data.FolderPath)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.ElementsMatch(t, []string{manifest.FileName, "x1_y0_0.jpeg"}, names)

	manifestAfter, err := os.ReadFile(out.Data.ResultPath)
	require.NoError(t, err)
	require.Equal(t, manifestBefore, manifestAfter)
	require.Len(t, h.recorder.Submissions(), 5, "completion never submits")
}

func TestCompletionIsIdempotent(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	doc := prompt(t)
	require.NoError(t, doc.StampCellAssignment("12", graph.CellAssignment{OutputFolderName: `nested\other`, XIndex: 0, YIndex: 1, ZIndex: 2}))
	inv := Invocation{Inputs: inputs2D(), Images: images(2), Hidden: Hidden{Prompt: doc, UniqueID: "12"}}

	for i := 0; i < 2; i++ {
		out, err := h.node.Execute(context.Background(), inv)
		require.NoError(t, err)
		require.Equal(t, "nested/other", out.Data.FolderName)
	}
	require.FileExists(t, filepath.Join(h.store.FolderPath("nested/other"), "x0_y1_z2_0.jpeg"))
	require.FileExists(t, filepath.Join(h.store.FolderPath("nested/other"), "x0_y1_z2_1.jpeg"))
}

func TestPlanArchivesExistingFolderFirst(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	folder := h.store.FolderPath("sweep")
	require.NoError(t, os.MkdirAll(folder, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "x0_y0_0.jpeg"), []byte("stale"), 0o644))

	_, err := h.node.Execute(context.Background(), planInvocation(t, inputs2D(), 1))
	require.NoError(t, err)

	archived := fmt.Sprintf("%s_old_%d", folder, fixedNow.Unix())
	require.FileExists(t, filepath.Join(archived, "x0_y0_0.jpeg"))
	require.NoFileExists(t, filepath.Join(folder, "x0_y0_0.jpeg"))
	require.FileExists(t, filepath.Join(folder, manifest.FileName))
}

func TestPlanThreeAxesWithWorkflowAndViewers(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	in := inputs2D()
	in.OutputFolderName = "%date:yyMMdd%_%inputz_widget_name%"
	in.InputZ = "3::KSampler::sampler_name"
	in.ValueZ = "euler, heun"

	inv := planInvocation(t, in, 2)
	inv.Hidden.ExtraPNGInfo = map[string]any{"workflow": map[string]any{"nodes": []any{}}}

	out, err := h.node.Execute(context.Background(), inv)
	require.NoError(t, err)
	require.Equal(t, "240309_sampler_name", out.Data.FolderName)
	require.Equal(t, 8, *out.Data.QueuedJobs)
	require.Equal(t, 2, *out.Data.BatchSize)

	subs := h.recorder.Submissions()
	require.Len(t, subs, 9)
	require.Equal(t, "heun", subs[1].Prompt["3"].Inputs["sampler_name"])

	refresh := subs[8]
	require.Equal(t, []string{"15"}, refresh.PartialExecutionTargets)
	require.Equal(t, out.Data.FolderRef(), refresh.Prompt["15"].Inputs[graph.ViewerInputKey])
	_, stamped, err := refresh.Prompt["12"].CellAssignment()
	require.NoError(t, err)
	require.False(t, stamped, "refresh copy carries no cell assignment")

	require.FileExists(t, filepath.Join(out.Data.FolderPath, manifest.WorkflowFileName))
	doc, err := manifest.LoadDocument(out.Data.FolderPath)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"filename": manifest.WorkflowFileName}, doc["workflow"])
	require.Equal(t, "run-1", doc["run_id"])

	meta, err := manifest.Read(out.Data.FolderPath)
	require.NoError(t, err)
	require.Equal(t, []string{"euler", "heun"}, meta.ValuesZ)
	require.Equal(t, 2, meta.BatchSize)
}

func TestPlanWithoutGraphOnlyWritesManifest(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	out, err := h.node.Execute(context.Background(), Invocation{Inputs: inputs2D(), Images: images(1)})
	require.NoError(t, err)

	require.Equal(t, 0, *out.Data.QueuedJobs)
	require.Equal(t, []int{0}, out.UI.QueuedJobs)
	require.FileExists(t, out.Data.ResultPath)
	require.Zero(t, h.recorder.Calls())
}

func TestPlanWithoutImagesUsesDeclaredBatchSize(t *testing.T) {
	t.Parallel()

	h := newHarness(t, false)
	inv := planInvocation(t, inputs2D(), 0)
	inv.BatchSize = 3

	out, err := h.node.Execute(context.Background(), inv)
	require.NoError(t, err)
	require.Equal(t, 3, *out.Data.BatchSize)
	require.Equal(t, 4, *out.Data.QueuedJobs)

	meta, err := manifest.Read(out.Data.FolderPath)
	require.NoError(t, err)
	require.Equal(t, 3, meta.BatchSize)
}

func TestPlanValidationHasNoSideEffects(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	in := inputs2D()
	in.ValueZ = "euler"

	_, err := h.node.Execute(context.Background(), planInvocation(t, in, 1))
	var validationErr *xyzerrors.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.False(t, h.store.Exists("sweep"))
	require.Zero(t, h.recorder.Calls())
}

func TestPlanUnknownWidgetAbortsBeforeSubmitting(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	in := inputs2D()
	in.InputY = "3::KSampler::denoise"

	_, err := h.node.Execute(context.Background(), planInvocation(t, in, 1))
	require.ErrorIs(t, err, xyzerrors.ErrWidgetNotFound)
	require.ErrorContains(t, err, "widget 'denoise' was not found on node #3 (KSampler)")
	require.Zero(t, h.recorder.Calls())
}

func TestPlanTransportFailureStopsSubmitting(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	h.recorder.FailAt = 3
	h.recorder.Err = xyzerrors.NewTransportError(500, "queue full", nil)

	_, err := h.node.Execute(context.Background(), planInvocation(t, inputs2D(), 1))
	var transportErr *xyzerrors.TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Equal(t, 500, transportErr.Status)

	require.Equal(t, 3, h.recorder.Calls())
	require.Len(t, h.recorder.Submissions(), 2)
	require.True(t, h.store.Exists("sweep"), "manifest stays in place")

	var failed int
	for _, span := range h.spans.GetSpans() {
		if span.Status.Code.String() == "Error" {
			failed++
		}
	}
	require.Equal(t, 2, failed, "failing submit span and the plan span")
}

func TestPlanRecordsSpans(t *testing.T) {
	t.Parallel()

	h := newHarness(t, true)
	_, err := h.node.Execute(context.Background(), planInvocation(t, inputs2D(), 1))
	require.NoError(t, err)

	spans := h.spans.GetSpans()
	require.Len(t, spans, 6)

	plan := spans[len(spans)-1]
	require.Equal(t, tracing.SpanPlan, plan.Name)
	attrs := map[string]string{}
	for _, kv := range plan.Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	require.Equal(t, "sweep", attrs[tracing.AttrFolder])
	require.Equal(t, "4", attrs[tracing.AttrCellCount])

	for _, span := range spans[:5] {
		require.Equal(t, tracing.SpanSubmit, span.Name)
		require.Equal(t, plan.SpanContext.SpanID(), span.Parent.SpanID())
	}
}

func TestPlanPropagatesContextCancellation(t *testing.T) {
	t.Parallel()

	s, err := store.New(store.Options{Root: t.TempDir()})
	require.NoError(t, err)
	cancelled := errors.New("submit cancelled")
	node, err := NewPlotNode(Options{Store: s, Submitter: submitFunc(func(ctx context.Context, _ transport.Submission) error {
		if ctx.Err() != nil {
			return cancelled
		}
		return nil
	})})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = node.Execute(ctx, planInvocation(t, inputs2D(), 1))
	require.ErrorIs(t, err, cancelled)
}

type submitFunc func(context.Context, transport.Submission) error

func (f submitFunc) Submit(ctx context.Context, s transport.Submission) error { return f(ctx, s) }
