package graph

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexisbeaulieu97/xyzplot/internal/codec"
)

// CellAssignmentKey is the input key under which a fanned-out copy carries its cell.
const CellAssignmentKey = "xyz_data"

// CellAssignment tells a re-invoked plot node which cell of which sweep it is rendering.
type CellAssignment struct {
	SourceUniqueID   string `json:"source_unique_id"`
	OutputFolderName string `json:"output_folder_name"`
	XIndex           int    `json:"x_index"`
	YIndex           int    `json:"y_index"`
	ZIndex           int    `json:"z_index"`
}

// StampCellAssignment writes the assignment onto the inputs of nodeID.
func (d Document) StampCellAssignment(nodeID string, assignment CellAssignment) error {
	node, _, err := d.Lookup(nodeID)
	if err != nil {
		return err
	}
	if node.Inputs == nil {
		node.Inputs = map[string]any{}
	}
	node.Inputs[CellAssignmentKey] = assignment
	return nil
}

// CellAssignment reads the stamped assignment from the node inputs. A missing, null or
// empty value reports ok=false. Indices absent from a decoded record default to x=0, y=0
// and z=-1; indices sent as numeric strings or whole floats are accepted.
func (n *Node) CellAssignment() (assignment CellAssignment, ok bool, err error) {
	if n == nil || n.Inputs == nil {
		return CellAssignment{}, false, nil
	}

	switch raw := n.Inputs[CellAssignmentKey].(type) {
	case nil:
		return CellAssignment{}, false, nil
	case CellAssignment:
		return raw, true, nil
	case *CellAssignment:
		if raw == nil {
			return CellAssignment{}, false, nil
		}
		return *raw, true, nil
	case map[string]any:
		if len(raw) == 0 {
			return CellAssignment{}, false, nil
		}
		return decodeAssignment(raw)
	default:
		var record map[string]any
		data, err := codec.JSON.Marshal(raw)
		if err != nil {
			return CellAssignment{}, false, err
		}
		if err := codec.JSON.Unmarshal(data, &record); err != nil {
			return CellAssignment{}, false, err
		}
		return decodeAssignment(record)
	}
}

func decodeAssignment(record map[string]any) (CellAssignment, bool, error) {
	assignment := CellAssignment{
		SourceUniqueID:   textField(record["source_unique_id"]),
		OutputFolderName: textField(record["output_folder_name"]),
	}
	var err error
	if assignment.XIndex, err = indexField(record, "x_index", 0); err != nil {
		return CellAssignment{}, false, err
	}
	if assignment.YIndex, err = indexField(record, "y_index", 0); err != nil {
		return CellAssignment{}, false, err
	}
	if assignment.ZIndex, err = indexField(record, "z_index", -1); err != nil {
		return CellAssignment{}, false, err
	}
	return assignment, true, nil
}

func textField(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func indexField(record map[string]any, key string, fallback int) (int, error) {
	switch v := record[key].(type) {
	case nil:
		return fallback, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return wholeIndex(key, v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return wholeIndex(key, f)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not an integer", key, v)
		}
		return n, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("%s: unsupported type %T", key, v)
	}
}

func wholeIndex(key string, f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s: %v is not an integer", key, f)
	}
	return int(math.Trunc(f)), nil
}
