package sweep

import (
	"github.com/alexisbeaulieu97/xyzplot/internal/axis"
	xyzerrors "github.com/alexisbeaulieu97/xyzplot/pkg/errors"
)

// Inputs are the widget values of a plot node as the user entered them. The Input*
// fields hold either a reference string ("id::title::widget", "none") or structured
// axis data from an upstream node.
type Inputs struct {
	OutputFolderName string `json:"output_folder_name"`
	InputX           any    `json:"input_x"`
	ValueX           string `json:"value_x"`
	InputY           any    `json:"input_y"`
	ValueY           string `json:"value_y"`
	InputZ           any    `json:"input_z,omitempty"`
	ValueZ           string `json:"value_z,omitempty"`
}

// Resolve validates inputs and builds the plan. Every rejection happens here, before the
// caller touches the output folder or submits anything.
func Resolve(in Inputs, batchSize int) (*Plan, error) {
	refX, okX := axis.FromValue(in.InputX)
	refY, okY := axis.FromValue(in.InputY)
	refZ, okZ := axis.FromValue(in.InputZ)

	if !okX || !okY {
		return nil, xyzerrors.NewValidationError("input_x/input_y", "input_x and input_y must be selected to valid graph widget references.", nil)
	}

	valuesX := axis.SplitValues(in.ValueX)
	valuesY := axis.SplitValues(in.ValueY)
	valuesZ := axis.SplitValues(in.ValueZ)

	if len(valuesX) == 0 || len(valuesY) == 0 {
		return nil, xyzerrors.NewValidationError("value_x/value_y", "value_x and value_y must each contain at least one semicolon-separated value.", nil)
	}
	if len(valuesZ) > 0 && !okZ {
		return nil, xyzerrors.NewValidationError("value_z", "value_z was provided, but input_z is not selected.", nil)
	}
	if batchSize < 1 {
		return nil, xyzerrors.NewValidationError("images", "image batch must contain at least one image.", nil)
	}

	plan := &Plan{
		X:         Axis{Ref: refX, Values: valuesX},
		Y:         Axis{Ref: refY, Values: valuesY},
		BatchSize: batchSize,
	}
	// A bound Z reference without values is ignored: the sweep stays 2D.
	if okZ && len(valuesZ) > 0 {
		plan.Z = &Axis{Ref: refZ, Values: valuesZ}
	}
	return plan, nil
}
