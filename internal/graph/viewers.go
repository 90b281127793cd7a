package graph

// ViewerClassType is the class type of the grid viewer node.
const ViewerClassType = "ArtifyXYZViewer"

// ViewerInputKey is the viewer input that links to a plot node's output.
const ViewerInputKey = "xyz_plot"

// FindViewers lists viewer nodes whose xyz_plot input links to plotNodeID.
func (d Document) FindViewers(plotNodeID string) []string {
	var ids []string
	for _, id := range d.SortedIDs() {
		node := d[id]
		if node == nil || node.ClassType != ViewerClassType {
			continue
		}
		source, ok := linkSource(node.Inputs[ViewerInputKey])
		if ok && source == plotNodeID {
			ids = append(ids, id)
		}
	}
	return ids
}

// PointViewersAt replaces the xyz_plot input of every listed viewer with a literal value,
// so the viewer reads the given folder instead of waiting on the plot node.
func (d Document) PointViewersAt(viewerIDs []string, value any) error {
	for _, id := range viewerIDs {
		node, _, err := d.Lookup(id)
		if err != nil {
			return err
		}
		if node.Inputs == nil {
			node.Inputs = map[string]any{}
		}
		node.Inputs[ViewerInputKey] = value
	}
	return nil
}
