package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/xyzplot/internal/codec"
	"github.com/alexisbeaulieu97/xyzplot/internal/tui"
)

func newStatusCmd(root *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status FOLDER",
		Short: "Show which images of a result folder have been saved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.app(cmd)
			if err != nil {
				return err
			}
			return runStatus(cmd.OutOrStdout(), app, args[0], asJSON, time.Now)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the cell summary as JSON")

	return cmd
}

func runStatus(out io.Writer, app *AppContext, name string, asJSON bool, now func() time.Time) error {
	folder, path, err := app.FolderPath(name)
	if err != nil {
		return err
	}

	snapshot, err := tui.FolderLoader(path, nil, now)()
	if err != nil {
		return err
	}

	if asJSON {
		data, err := codec.MarshalIndent(snapshot.Summary)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	_, err = fmt.Fprintln(out, tui.RenderStatus(folder, snapshot, now()))
	return err
}
