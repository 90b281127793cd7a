package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/xyzplot/internal/engine"
	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
	"github.com/alexisbeaulieu97/xyzplot/internal/server"
	"github.com/alexisbeaulieu97/xyzplot/internal/viewer"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the result routes and the plot and viewer node endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.app(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, app)
		},
	}

	cmd.Flags().String("listen", "", "Address for the HTTP API (default from server.listen)")
	cmd.Flags().Int("host-port", 0, "Port of the execution host (default from host.port)")
	_ = root.viper.BindPFlag("server.listen", cmd.Flags().Lookup("listen"))
	_ = root.viper.BindPFlag("host.port", cmd.Flags().Lookup("host-port"))

	return cmd
}

func runServe(ctx context.Context, app *AppContext) error {
	results, err := app.Store()
	if err != nil {
		return err
	}

	provider, err := app.Tracing()
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			app.Log.Error(err, "failed to flush traces")
		}
	}()

	client := app.Client()
	defer client.Close()

	cache := manifest.NewCache(0, 0, app.Log)
	plot, err := engine.NewPlotNode(engine.Options{
		Store:     results,
		Submitter: client,
		Tracer:    provider.Tracer(),
		Logger:    app.Log,
	})
	if err != nil {
		return err
	}

	handler, err := server.NewHandler(server.HandlerConfig{
		Store:      results,
		Cache:      cache,
		Plot:       plot,
		Viewer:     viewer.NewNode(results, cache, app.Log),
		Compositor: viewer.NewCompositor(0, 0),
		Logger:     app.Log,
	})
	if err != nil {
		return err
	}

	srv, err := server.NewServer(server.ServerConfig{Addr: app.Settings.Server.Listen, Handler: handler})
	if err != nil {
		return err
	}

	app.Log.WithFields(map[string]any{
		"addr":       srv.Addr(),
		"host":       client.Endpoint(),
		"output_dir": results.Root(),
		"tracing":    provider.Enabled(),
	}).Info("xyzplot server ready")

	return srv.Serve(ctx, shutdownTimeout)
}
