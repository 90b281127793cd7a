package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// SummaryData aggregates counts for rendering summaries.
type SummaryData struct {
	Total     int
	Done      int
	Finished  bool
	Cancelled bool
	// Updated is when the folder was last read; Now anchors the relative time.
	Updated time.Time
	Now     time.Time
	Err     error
}

// Summary renders a textual watch summary.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	var lines []string
	if s.data.Total > 0 {
		lines = append(lines, fmt.Sprintf("Images: %d/%d saved, %d pending", s.data.Done, s.data.Total, s.data.Total-s.data.Done))
	}

	if s.data.Cancelled {
		lines = append(lines, "Watch cancelled")
	} else if s.data.Finished && s.data.Total > 0 {
		if s.data.Done >= s.data.Total {
			lines = append(lines, "Grid complete")
		} else {
			lines = append(lines, "Stopped with pending images")
		}
	}

	if !s.data.Updated.IsZero() {
		now := s.data.Now
		if now.IsZero() {
			now = time.Now()
		}
		lines = append(lines, "Updated "+humanize.RelTime(s.data.Updated, now, "ago", "from now"))
	}

	if s.data.Err != nil {
		lines = append(lines, "Error: "+s.data.Err.Error())
	}

	return strings.Join(lines, "\n")
}
