package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/xyzplot/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render(fmt.Sprintf("XYZ Plot • %s", m.title())))

	meta := m.snapshot.Meta
	switch {
	case !m.loaded && m.err == nil:
		sections = append(sections, m.spinner.View()+" reading result folder")
	case m.loaded && meta == nil:
		sections = append(sections, m.spinner.View()+" waiting for the result folder to be created")
	case meta != nil:
		summary := m.snapshot.Summary
		sections = append(sections, sectionStyle.Render("Progress"), components.NewProgress(summary.Total).View(summary.Done))

		heading := "Grid"
		if meta.HasZ() {
			heading = fmt.Sprintf("Grid • Z %s (%d/%d)", meta.ValuesZ[m.zPos], m.zPos+1, len(meta.ZSlots))
		}
		sections = append(sections, sectionStyle.Render(heading), components.NewGrid(meta, summary, m.zPos).View())
	}

	summary := components.NewSummary(components.SummaryData{
		Total:     m.snapshot.Summary.Total,
		Done:      m.snapshot.Summary.Done,
		Finished:  m.finished,
		Cancelled: m.cancelled,
		Updated:   m.snapshot.At,
		Now:       m.now(),
		Err:       m.err,
	}).View()
	if strings.TrimSpace(summary) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	if !m.finished {
		help := "r refresh • q quit"
		if m.zCount() > 1 {
			help = "←/→ z slice • " + help
		}
		sections = append(sections, helpStyle.Render(help))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) title() string {
	if strings.TrimSpace(m.folder) != "" {
		return m.folder
	}
	return "result folder"
}

// RenderStatus renders every z slice of snapshot without any interactive chrome.
func RenderStatus(folder string, snapshot Snapshot, now time.Time) string {
	sections := []string{titleStyle.Render(fmt.Sprintf("XYZ Plot • %s", folder))}

	meta := snapshot.Meta
	if meta == nil {
		sections = append(sections, "result folder does not exist yet")
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	summary := snapshot.Summary
	sections = append(sections, components.NewProgress(summary.Total).View(summary.Done))
	for zPos := range meta.ZSlots {
		heading := "Grid"
		if meta.HasZ() {
			heading = fmt.Sprintf("Z %s", meta.ValuesZ[zPos])
		}
		sections = append(sections, sectionStyle.Render(heading), components.NewGrid(meta, summary, zPos).View())
	}

	sections = append(sections, summaryStyle.Render(components.NewSummary(components.SummaryData{
		Total:    summary.Total,
		Done:     summary.Done,
		Finished: summary.Complete(),
		Updated:  snapshot.At,
		Now:      now,
	}).View()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
