package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
	"github.com/alexisbeaulieu97/xyzplot/internal/viewer"
)

type previewOptions struct {
	Output   string
	Z        int
	Batch    int
	NoLabels bool
	CellSize int
}

func newPreviewCmd(root *rootFlags) *cobra.Command {
	opts := previewOptions{}

	cmd := &cobra.Command{
		Use:   "preview FOLDER",
		Short: "Compose one z slice of a result folder into a PNG contact sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.app(cmd)
			if err != nil {
				return err
			}
			return runPreview(cmd.Context(), cmd.OutOrStdout(), app, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "PNG file to write (default: ./<folder>_preview.png)")
	cmd.Flags().IntVar(&opts.Z, "z", 0, "Z slice position")
	cmd.Flags().IntVar(&opts.Batch, "batch", 0, "Batch image index")
	cmd.Flags().BoolVar(&opts.NoLabels, "no-labels", false, "Omit axis labels")
	cmd.Flags().IntVar(&opts.CellSize, "cell-size", viewer.DefaultCellSize, "Edge length of each cell in pixels")

	return cmd
}

func runPreview(ctx context.Context, out io.Writer, app *AppContext, name string, opts previewOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	folder, path, err := app.FolderPath(name)
	if err != nil {
		return err
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return fmt.Errorf("folder not found: '%s'", folder)
	}

	meta, err := manifest.Read(path)
	if err != nil {
		return err
	}

	img, err := viewer.NewCompositor(opts.CellSize, 0).Render(ctx, path, meta, viewer.RenderOptions{
		Folder: folder,
		Z:      opts.Z,
		Batch:  opts.Batch,
		Labels: !opts.NoLabels,
	})
	if err != nil {
		return err
	}

	target := opts.Output
	if target == "" {
		target = strings.ReplaceAll(folder, "/", "_") + "_preview.png"
	}
	file, err := os.Create(target)
	if err != nil {
		return err
	}
	if err := viewer.EncodePNG(file, img); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	info, err := os.Stat(target)
	if err != nil {
		return err
	}
	b := img.Bounds()
	_, err = fmt.Fprintf(out, "Wrote %s (%dx%d, %s)\n", target, b.Dx(), b.Dy(), humanize.Bytes(uint64(info.Size())))
	return err
}
