// Package tui renders the live progress of a result folder while its cells are rendered.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
	"github.com/alexisbeaulieu97/xyzplot/internal/model"
)

// Snapshot is one read of the result folder. Meta is nil while the folder does not exist.
type Snapshot struct {
	Meta    *manifest.Metadata
	Summary model.GridSummary
	At      time.Time
}

// LoadFunc reads the current state of the watched folder.
type LoadFunc func() (Snapshot, error)

// SnapshotMsg carries the outcome of a folder read.
type SnapshotMsg struct {
	Snapshot Snapshot
	Err      error
}

// FolderChangedMsg reports that the watcher saw new files.
type FolderChangedMsg struct{}

// Options configure the watch model.
type Options struct {
	Folder string
	Load   LoadFunc
	// Changes delivers folder change notifications; nil disables live refresh.
	Changes <-chan struct{}
	// ExitOnComplete quits once every expected image is saved.
	ExitOnComplete bool
	Now            func() time.Time
}

// Model contains the Bubbletea state for the folder watch.
type Model struct {
	folder         string
	load           LoadFunc
	changes        <-chan struct{}
	exitOnComplete bool
	now            func() time.Time

	spinner   spinner.Model
	snapshot  Snapshot
	loaded    bool
	zPos      int
	err       error
	finished  bool
	cancelled bool
}

// NewModel constructs a watch model.
func NewModel(opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = runningStyle

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return Model{
		folder:         opts.Folder,
		load:           opts.Load,
		changes:        opts.Changes,
		exitOnComplete: opts.ExitOnComplete,
		now:            now,
		spinner:        s,
	}
}

// Init reads the folder, starts the spinner and begins listening for changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadCmd(m.load), waitForChangeCmd(m.changes))
}

// Snapshot returns the latest successful read.
func (m Model) Snapshot() Snapshot {
	return m.snapshot
}

// IsFinished reports whether the watch has ended.
func (m Model) IsFinished() bool {
	return m.finished
}

// Cancelled reports whether the user quit before the grid completed.
func (m Model) Cancelled() bool {
	return m.cancelled
}

// Err returns the error of the latest read, if it failed.
func (m Model) Err() error {
	return m.err
}

func (m Model) zCount() int {
	if m.snapshot.Meta == nil {
		return 0
	}
	return len(m.snapshot.Meta.ZSlots)
}

func (m *Model) shiftZ(delta int) {
	n := m.zCount()
	if n == 0 {
		m.zPos = 0
		return
	}
	m.zPos = max(0, min(m.zPos+delta, n-1))
}

func (m *Model) complete() bool {
	return m.snapshot.Meta != nil && m.snapshot.Summary.Total > 0 && m.snapshot.Summary.Complete()
}
