// Package graph models the API-format execution graph submitted to the host: a map of node
// ids to nodes, each with a class type and an input map of widget values and links.
package graph

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/alexisbeaulieu97/xyzplot/internal/codec"
	xyzerrors "github.com/alexisbeaulieu97/xyzplot/pkg/errors"
)

// Node is one entry of a graph document.
type Node struct {
	ClassType string         `json:"class_type"`
	Inputs    map[string]any `json:"inputs"`
	Meta      map[string]any `json:"_meta,omitempty"`
}

// Title returns the display title stored in the node metadata, if any.
func (n *Node) Title() string {
	if n == nil || n.Meta == nil {
		return ""
	}
	title, _ := n.Meta["title"].(string)
	return title
}

// Document is an execution graph keyed by node id.
type Document map[string]*Node

// Parse decodes a graph document. Numbers are kept as json.Number.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := codec.JSON.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	for id, node := range doc {
		if node == nil {
			delete(doc, id)
			continue
		}
		if node.Inputs == nil {
			node.Inputs = map[string]any{}
		}
	}
	return doc, nil
}

// Encode serializes the document with stable key order.
func (d Document) Encode() ([]byte, error) {
	return codec.JSON.Marshal(d)
}

// Lookup finds a node by id. When the id is numeric and not present verbatim, its
// canonical integer spelling is tried as well ("007" finds "7").
func (d Document) Lookup(id string) (*Node, string, error) {
	if node, ok := d[id]; ok && node != nil {
		return node, id, nil
	}
	if n, err := strconv.Atoi(id); err == nil && n >= 0 {
		key := strconv.Itoa(n)
		if node, ok := d[key]; ok && node != nil {
			return node, key, nil
		}
	}
	return nil, "", xyzerrors.NewNodeNotFoundError(id)
}

// SortedIDs returns node ids ordered numerically where possible, then lexically.
func (d Document) SortedIDs() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.Atoi(ids[i])
		b, errB := strconv.Atoi(ids[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Clone returns a fully independent copy: mutating the copy's nodes, input maps or nested
// JSON values never affects the receiver.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for id, node := range d {
		if node == nil {
			continue
		}
		out[id] = &Node{
			ClassType: node.ClassType,
			Inputs:    cloneMap(node.Inputs),
			Meta:      cloneMap(node.Meta),
		}
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	case *CellAssignment:
		if typed == nil {
			return nil
		}
		c := *typed
		return &c
	default:
		// Scalars, json.Number and value-typed records copy by assignment.
		return v
	}
}

// linkSource reports the upstream node id of a link input ([node_id, output_slot]).
func linkSource(v any) (string, bool) {
	link, ok := v.([]any)
	if !ok || len(link) != 2 {
		return "", false
	}
	switch id := link[0].(type) {
	case string:
		return id, true
	case json.Number:
		return id.String(), true
	default:
		return fmt.Sprint(id), true
	}
}
