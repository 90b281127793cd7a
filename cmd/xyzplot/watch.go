package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
	"github.com/alexisbeaulieu97/xyzplot/internal/tui"
	"github.com/alexisbeaulieu97/xyzplot/internal/watcher"
)

type watchOptions struct {
	Debounce       time.Duration
	ExitOnComplete bool
}

func newWatchCmd(root *rootFlags) *cobra.Command {
	opts := watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch FOLDER",
		Short: "Follow a result folder live while its cells are rendered",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.app(cmd)
			if err != nil {
				return err
			}
			if !isTerminal(cmd.OutOrStdout()) {
				// Without a terminal fall back to a one-shot report.
				return runStatus(cmd.OutOrStdout(), app, args[0], false, time.Now)
			}
			return runWatch(app, args[0], opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", watcher.DefaultDebounce, "Quiet period before the view refreshes")
	cmd.Flags().BoolVar(&opts.ExitOnComplete, "exit", false, "Exit once every expected image is saved")

	return cmd
}

func runWatch(app *AppContext, name string, opts watchOptions) error {
	folder, path, err := app.FolderPath(name)
	if err != nil {
		return err
	}

	w, err := watcher.New(watcher.Config{Folder: path, Debounce: opts.Debounce, Logger: app.Log})
	if err != nil {
		return err
	}
	changes, err := w.Start()
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Stop(); err != nil {
			app.Log.Error(err, "failed to stop watcher")
		}
	}()

	cache := manifest.NewCache(0, 0, app.Log)
	m := tui.NewModel(tui.Options{
		Folder:         folder,
		Load:           tui.FolderLoader(path, cache, time.Now),
		Changes:        changes,
		ExitOnComplete: opts.ExitOnComplete,
	})

	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("failed to run watch view: %w", err)
	}

	if state, ok := final.(tui.Model); ok {
		fmt.Fprintln(os.Stdout, tui.RenderStatus(folder, state.Snapshot(), time.Now()))
		if err := state.Err(); err != nil {
			return err
		}
	}
	return nil
}
