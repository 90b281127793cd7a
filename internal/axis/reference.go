// Package axis parses the user-facing axis bindings of an XYZ sweep: which widget on which
// node an axis drives, and the ordered list of values it sweeps through.
package axis

import (
	"fmt"
	"strings"
)

// Splitter separates the node id, node title and widget name in a reference string.
const Splitter = "::"

// None is the sentinel selection meaning "no axis bound".
const None = "none"

// Reference points an axis at one widget of one graph node. The zero value is not a valid
// reference; values are produced only by Parse and FromValue.
type Reference struct {
	nodeID     string
	nodeTitle  string
	widgetName string
}

// NodeID returns the referenced node id without any leading '#'.
func (r Reference) NodeID() string { return r.nodeID }

// NodeTitle returns the display title captured with the reference.
func (r Reference) NodeTitle() string { return r.nodeTitle }

// WidgetName returns the input key the axis overwrites.
func (r Reference) WidgetName() string { return r.widgetName }

// String renders the reference back into its "id::title::widget" form.
func (r Reference) String() string {
	return strings.Join([]string{r.nodeID, r.nodeTitle, r.widgetName}, Splitter)
}

// Parse decodes "[#]<node_id>::<node_title>::<widget_name>". Empty input, the "none"
// sentinel and anything that does not split into three fields yield ok=false.
func Parse(raw string) (ref Reference, ok bool) {
	value := strings.TrimSpace(raw)
	if value == "" || value == None {
		return Reference{}, false
	}

	// At most three fields; any further splitter stays in the widget name.
	parts := strings.SplitN(value, Splitter, 3)
	if len(parts) != 3 {
		return Reference{}, false
	}

	return build(parts[0], parts[1], parts[2])
}

// FromValue accepts either a reference string or structured axis data produced upstream
// (a map with node_id, node_title and widget_name keys, or a Reference).
func FromValue(v any) (Reference, bool) {
	switch typed := v.(type) {
	case nil:
		return Reference{}, false
	case string:
		return Parse(typed)
	case Reference:
		if typed.nodeID == "" || typed.widgetName == "" {
			return Reference{}, false
		}
		return typed, true
	case *Reference:
		if typed == nil {
			return Reference{}, false
		}
		return FromValue(*typed)
	case map[string]any:
		return build(stringField(typed, "node_id"), stringField(typed, "node_title"), stringField(typed, "widget_name"))
	case map[string]string:
		return build(typed["node_id"], typed["node_title"], typed["widget_name"])
	default:
		return Reference{}, false
	}
}

func build(nodeID, title, widget string) (Reference, bool) {
	nodeID = strings.TrimPrefix(nodeID, "#")
	if nodeID == "" || widget == "" {
		return Reference{}, false
	}
	return Reference{nodeID: nodeID, nodeTitle: title, widgetName: widget}, true
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
