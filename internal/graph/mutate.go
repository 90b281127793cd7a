package graph

import (
	"github.com/alexisbeaulieu97/xyzplot/internal/axis"
	xyzerrors "github.com/alexisbeaulieu97/xyzplot/pkg/errors"
)

// SetAxisValue pins the referenced widget to value. The widget must already exist on the
// node: a sweep overrides inputs, it never adds new ones.
func (d Document) SetAxisValue(ref axis.Reference, value string) error {
	node, _, err := d.Lookup(ref.NodeID())
	if err != nil {
		return err
	}
	if node.Inputs == nil {
		node.Inputs = map[string]any{}
	}

	widget := ref.WidgetName()
	if _, ok := node.Inputs[widget]; !ok {
		title := ref.NodeTitle()
		if title == "" {
			title = node.Title()
		}
		return xyzerrors.NewWidgetNotFoundError(ref.NodeID(), title, widget)
	}

	node.Inputs[widget] = value
	return nil
}
