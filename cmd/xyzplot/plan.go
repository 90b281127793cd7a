package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/xyzplot/internal/codec"
	"github.com/alexisbeaulieu97/xyzplot/internal/config"
	"github.com/alexisbeaulieu97/xyzplot/internal/engine"
	"github.com/alexisbeaulieu97/xyzplot/internal/graph"
	"github.com/alexisbeaulieu97/xyzplot/internal/model"
	"github.com/alexisbeaulieu97/xyzplot/internal/transport"
	xyzerrors "github.com/alexisbeaulieu97/xyzplot/pkg/errors"
)

type planOptions struct {
	SweepPath string
	DryRun    bool
	JSON      bool
}

func newPlanCmd(root *rootFlags) *cobra.Command {
	opts := planOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a sweep file, write its manifest and queue every cell on the host",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePlanOptions(opts); err != nil {
				return err
			}
			app, err := root.app(cmd)
			if err != nil {
				return err
			}
			return runPlan(cmd.Context(), cmd.OutOrStdout(), app, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SweepPath, "file", "f", "", "Path to sweep file")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Write the manifest and count submissions without contacting the host")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the plot node output as JSON")
	cmd.MarkFlagRequired("file") //nolint:errcheck

	return cmd
}

func validatePlanOptions(opts planOptions) error {
	if strings.TrimSpace(opts.SweepPath) == "" {
		return fmt.Errorf("sweep file is required")
	}

	abs, err := filepath.Abs(opts.SweepPath)
	if err != nil {
		return fmt.Errorf("resolve sweep path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("sweep file does not exist: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("sweep path %s is a directory", abs)
	}

	return nil
}

func runPlan(ctx context.Context, out io.Writer, app *AppContext, opts planOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	sw, err := config.ParseSweep(opts.SweepPath)
	if err != nil {
		return err
	}
	inv, err := sweepInvocation(sw)
	if err != nil {
		return err
	}

	results, err := app.Store()
	if err != nil {
		return err
	}

	var (
		submitter transport.Submitter
		recorder  *transport.Recorder
	)
	if opts.DryRun {
		recorder = &transport.Recorder{}
		submitter = recorder
	} else {
		client := app.Client()
		defer client.Close()
		submitter = client
	}

	provider, err := app.Tracing()
	if err != nil {
		return err
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()

	node, err := engine.NewPlotNode(engine.Options{
		Store:     results,
		Submitter: submitter,
		Tracer:    provider.Tracer(),
		Logger:    app.Log,
	})
	if err != nil {
		return err
	}

	output, err := node.Execute(ctx, inv)
	if err != nil {
		return err
	}

	if opts.JSON {
		data, err := codec.MarshalIndent(output)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}
	return printPlan(out, output.Data, recorder)
}

// sweepInvocation builds the invocation the plot node would receive inside the graph.
func sweepInvocation(sw *config.Sweep) (engine.Invocation, error) {
	data, err := os.ReadFile(sw.GraphPath())
	if err != nil {
		return engine.Invocation{}, fmt.Errorf("read graph: %w", err)
	}
	doc, err := graph.Parse(data)
	if err != nil {
		return engine.Invocation{}, xyzerrors.NewParseError(sw.GraphPath(), 0, err)
	}
	if _, _, err := doc.Lookup(sw.SourceNode); err != nil {
		return engine.Invocation{}, err
	}

	hidden := engine.Hidden{Prompt: doc, UniqueID: sw.SourceNode, ClientID: sw.ClientID}
	if path := sw.WorkflowPath(); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return engine.Invocation{}, fmt.Errorf("read workflow: %w", err)
		}
		var workflow any
		if err := codec.JSON.Unmarshal(raw, &workflow); err != nil {
			return engine.Invocation{}, xyzerrors.NewParseError(path, 0, err)
		}
		hidden.ExtraPNGInfo = map[string]any{"workflow": workflow}
	}

	return engine.Invocation{Inputs: sw.Inputs(), BatchSize: sw.Batch(), Hidden: hidden}, nil
}

func printPlan(out io.Writer, data model.PlotData, recorder *transport.Recorder) error {
	queued, batch := 0, 1
	if data.QueuedJobs != nil {
		queued = *data.QueuedJobs
	}
	if data.BatchSize != nil {
		batch = *data.BatchSize
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Planned %s\n", data.FolderName)
	fmt.Fprintf(&b, "  folder:   %s\n", data.FolderPath)
	fmt.Fprintf(&b, "  manifest: %s\n", data.ResultPath)
	fmt.Fprintf(&b, "  queued:   %s cells, %s images expected\n", humanize.Comma(int64(queued)), humanize.Comma(int64(queued*batch)))
	if recorder != nil {
		fmt.Fprintf(&b, "Dry run: %d submissions recorded, none sent\n", len(recorder.Submissions()))
	}
	_, err := io.WriteString(out, b.String())
	return err
}
