package tui

import (
	"errors"
	"io/fs"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
	"github.com/alexisbeaulieu97/xyzplot/internal/viewer"
)

// FolderLoader reads folderPath through cache (nil reads directly) and summarizes which
// images exist.
func FolderLoader(folderPath string, cache *manifest.Cache, now func() time.Time) LoadFunc {
	if now == nil {
		now = time.Now
	}
	return func() (Snapshot, error) {
		if _, err := os.Stat(folderPath); errors.Is(err, fs.ErrNotExist) {
			return Snapshot{At: now()}, nil
		}

		var (
			meta *manifest.Metadata
			err  error
		)
		if cache != nil {
			meta, err = cache.Metadata(folderPath)
		} else {
			meta, err = manifest.Read(folderPath)
		}
		if err != nil {
			return Snapshot{}, err
		}
		return Snapshot{Meta: meta, Summary: viewer.Status(folderPath, meta), At: now()}, nil
	}
}

func loadCmd(load LoadFunc) tea.Cmd {
	if load == nil {
		return nil
	}
	return func() tea.Msg {
		snapshot, err := load()
		return SnapshotMsg{Snapshot: snapshot, Err: err}
	}
}

// waitForChangeCmd blocks until the next change notification. It must be re-issued after
// every FolderChangedMsg.
func waitForChangeCmd(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return FolderChangedMsg{}
	}
}
