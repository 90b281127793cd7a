package main

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/alexisbeaulieu97/xyzplot/internal/config"
	"github.com/alexisbeaulieu97/xyzplot/internal/logger"
	"github.com/alexisbeaulieu97/xyzplot/internal/naming"
	"github.com/alexisbeaulieu97/xyzplot/internal/store"
	"github.com/alexisbeaulieu97/xyzplot/internal/tracing"
	"github.com/alexisbeaulieu97/xyzplot/internal/transport"
)

// AppContext bundles the settings and services shared by commands.
type AppContext struct {
	Settings   *config.Settings
	ConfigPath string
	Log        *logger.Logger
}

// Store opens the result store under the configured output directory.
func (a *AppContext) Store() (*store.Store, error) {
	return store.New(store.Options{
		Root:            a.Settings.OutputDir,
		JPEGQuality:     a.Settings.Image.JPEGQuality,
		ArchiveExisting: a.Settings.ArchiveExisting,
		Logger:          a.Log,
	})
}

// FolderPath resolves a folder name argument against the output directory.
func (a *AppContext) FolderPath(name string) (folder, path string, err error) {
	results, err := a.Store()
	if err != nil {
		return "", "", err
	}
	folder = naming.SanitizeFolderName(name)
	return folder, results.FolderPath(folder), nil
}

// Client creates the submission client for the configured host.
func (a *AppContext) Client() *transport.HTTPClient {
	s := a.Settings
	return transport.NewHTTPClient(transport.Options{
		Host:    s.Host.Listen,
		Port:    s.Host.Port,
		Timeout: s.Submit.Timeout,
		Retries: s.Submit.Retries,
		Backoff: s.Submit.Backoff,
		Logger:  a.Log,
	})
}

// Tracing creates the trace provider. Callers must Shutdown it.
func (a *AppContext) Tracing() (*tracing.Provider, error) {
	cfg := tracing.DefaultConfig()
	cfg.Enabled = a.Settings.Tracing.Enabled
	cfg.Exporter = a.Settings.Tracing.Exporter
	return tracing.NewProvider(cfg)
}

func newLogger(s *config.Settings, verbose bool, out io.Writer) (*logger.Logger, error) {
	level := s.Log.Level
	if verbose {
		level = "debug"
	}
	return logger.New(logger.Options{Level: level, HumanReadable: isTerminal(out), Writer: out, Service: "xyzplot"})
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
