package model

// CellStatus describes whether an expected image has been written.
type CellStatus string

const (
	// CellPending marks an image that is not on disk yet.
	CellPending CellStatus = "pending"
	// CellDone marks an image that exists in the result folder.
	CellDone CellStatus = "done"
)

// IsValid reports whether the status is one of the known values.
func (s CellStatus) IsValid() bool {
	switch s {
	case CellPending, CellDone:
		return true
	default:
		return false
	}
}

// CellResult is the status of one expected image.
type CellResult struct {
	X        int        `json:"x"`
	Y        int        `json:"y"`
	Z        int        `json:"z"`
	Batch    int        `json:"batch"`
	Filename string     `json:"filename"`
	Status   CellStatus `json:"status"`
}

// GridSummary aggregates cell results.
type GridSummary struct {
	Total   int          `json:"total"`
	Done    int          `json:"done"`
	Pending int          `json:"pending"`
	Cells   []CellResult `json:"cells,omitempty"`
}

// Add appends a result and updates counters.
func (s *GridSummary) Add(result CellResult) {
	s.Cells = append(s.Cells, result)
	s.Total++
	if result.Status == CellDone {
		s.Done++
	} else {
		s.Pending++
	}
}

// Complete reports whether every expected image exists.
func (s GridSummary) Complete() bool {
	return s.Pending == 0
}

// Fraction is Done/Total in [0, 1]; an empty grid counts as complete.
func (s GridSummary) Fraction() float64 {
	if s.Total == 0 {
		return 1
	}
	return float64(s.Done) / float64(s.Total)
}
