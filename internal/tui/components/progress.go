package components

import (
	"fmt"
	"math"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// DefaultProgressWidth is the bar width in cells.
const DefaultProgressWidth = 30

// Progress renders how many of the expected images are saved.
type Progress struct {
	bar   progress.Model
	total int
}

// NewProgress creates a progress component for the given total.
func NewProgress(total int) Progress {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = DefaultProgressWidth
	return Progress{bar: bar, total: total}
}

// Ratio is the completed share in [0, 1].
func (p Progress) Ratio(completed int) float64 {
	if p.total <= 0 {
		return 0
	}
	return math.Max(0, math.Min(1.0, float64(completed)/float64(p.total)))
}

// View renders "done/total", the bar and the percentage.
func (p Progress) View(completed int) string {
	ratio := p.Ratio(completed)
	label := lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%d/%d", completed, p.total))
	percent := fmt.Sprintf("%3.0f%%", ratio*100)
	return lipgloss.JoinHorizontal(lipgloss.Left, label, " ", p.bar.ViewAs(ratio), " ", percent)
}
