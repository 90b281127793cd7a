package model

// PlotData is the Plot node's output. QueuedJobs and BatchSize are only set by a PLAN
// pass; a COMPLETE pass returns the folder fields alone.
type PlotData struct {
	FolderName string `json:"folder_name"`
	FolderPath string `json:"folder_path"`
	ResultPath string `json:"result_path"`
	QueuedJobs *int   `json:"queued_jobs,omitempty"`
	BatchSize  *int   `json:"batch_size,omitempty"`
}

// FolderRef returns the folder fields only, the form handed to viewer nodes.
func (p PlotData) FolderRef() PlotData {
	return PlotData{FolderName: p.FolderName, FolderPath: p.FolderPath, ResultPath: p.ResultPath}
}

// PlotUI carries the hints shown on the Plot node after it runs.
type PlotUI struct {
	PlotFolder []string `json:"plot_folder"`
	QueuedJobs []int    `json:"queued_jobs,omitempty"`
}

// PlotOutput is everything a Plot node invocation returns.
type PlotOutput struct {
	Data PlotData `json:"xyz_plot"`
	UI   *PlotUI  `json:"ui,omitempty"`
}

// ViewerData summarizes a result folder for the viewer. The counts are only present
// when the folder exists on disk.
type ViewerData struct {
	FolderName string `json:"folder_name"`
	FolderPath string `json:"folder_path,omitempty"`
	ResultPath string `json:"result_path,omitempty"`
	BatchSize  int    `json:"batch_size,omitempty"`
	XCount     int    `json:"x_count,omitempty"`
	YCount     int    `json:"y_count,omitempty"`
	ZCount     int    `json:"z_count"`
}

// ViewerOutput mirrors the viewer node's UI payload. PlotFolder is empty when no folder
// was supplied and PlotData is nil when the folder does not exist yet.
type ViewerOutput struct {
	PlotFolder []string    `json:"plot_folder"`
	PlotData   *ViewerData `json:"plot_data,omitempty"`
}

// IntPtr is a convenience for the optional PlotData counters.
func IntPtr(v int) *int {
	return &v
}
