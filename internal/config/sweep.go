package config

import (
	"path/filepath"

	"github.com/alexisbeaulieu97/xyzplot/internal/sweep"
)

// SweepVersion is the only sweep file version understood.
const SweepVersion = "1"

// Sweep describes an offline sweep: the graph to fan out, the plot node inside it and the
// same axis widgets the node exposes.
type Sweep struct {
	Version          string `yaml:"version" validate:"required,oneof=1"`
	Graph            string `yaml:"graph" validate:"required,file_ref"`
	Workflow         string `yaml:"workflow,omitempty" validate:"omitempty,file_ref"`
	SourceNode       string `yaml:"source_node" validate:"required,node_id"`
	ClientID         string `yaml:"client_id,omitempty"`
	BatchSize        int    `yaml:"batch_size,omitempty" validate:"omitempty,min=1,max=64"`
	OutputFolderName string `yaml:"output_folder_name,omitempty"`
	InputX           string `yaml:"input_x" validate:"required,axis_ref"`
	ValueX           string `yaml:"value_x" validate:"required"`
	InputY           string `yaml:"input_y" validate:"required,axis_ref"`
	ValueY           string `yaml:"value_y" validate:"required"`
	InputZ           string `yaml:"input_z,omitempty" validate:"omitempty,axis_ref_or_none"`
	ValueZ           string `yaml:"value_z,omitempty"`

	// dir is the directory of the sweep file; relative paths resolve against it.
	dir string
}

// Inputs returns the plot node widget values the sweep describes.
func (s *Sweep) Inputs() sweep.Inputs {
	in := sweep.Inputs{
		OutputFolderName: s.OutputFolderName,
		InputX:           s.InputX,
		ValueX:           s.ValueX,
		InputY:           s.InputY,
		ValueY:           s.ValueY,
		ValueZ:           s.ValueZ,
	}
	if s.InputZ != "" {
		in.InputZ = s.InputZ
	}
	return in
}

// Batch is the declared image batch size, 1 when unset.
func (s *Sweep) Batch() int {
	if s.BatchSize < 1 {
		return 1
	}
	return s.BatchSize
}

// GraphPath is the graph document path resolved against the sweep file.
func (s *Sweep) GraphPath() string {
	return s.resolve(s.Graph)
}

// WorkflowPath is the workflow snapshot path, or "" when none is configured.
func (s *Sweep) WorkflowPath() string {
	if s.Workflow == "" {
		return ""
	}
	return s.resolve(s.Workflow)
}

func (s *Sweep) resolve(path string) string {
	if filepath.IsAbs(path) || s.dir == "" {
		return path
	}
	return filepath.Join(s.dir, path)
}
