package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case SnapshotMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.loaded = true
		m.snapshot = msg.Snapshot
		m.shiftZ(0)
		if m.complete() {
			m.finished = true
			if m.exitOnComplete {
				return m, tea.Quit
			}
		}
		return m, nil
	case FolderChangedMsg:
		return m, tea.Batch(loadCmd(m.load), waitForChangeCmd(m.changes))
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancelled = !m.complete()
			m.finished = true
			return m, tea.Quit
		case "r":
			return m, loadCmd(m.load)
		case "left", "h":
			m.shiftZ(-1)
		case "right", "l":
			m.shiftZ(1)
		}
		return m, nil
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
