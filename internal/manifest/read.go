package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/alexisbeaulieu97/xyzplot/internal/codec"
	"github.com/alexisbeaulieu97/xyzplot/internal/grid"
	xyzerrors "github.com/alexisbeaulieu97/xyzplot/pkg/errors"
)

// Metadata is the grid shape a viewer needs to lay out a result folder.
type Metadata struct {
	ValuesX []string
	ValuesY []string
	ValuesZ []string
	// ZSlots are the z indices used in filenames, or [grid.NoZ] for a 2D sweep.
	ZSlots    []int
	BatchSize int
	// Recovered is set when the shape was inferred from filenames.
	Recovered bool
}

// HasZ reports whether the folder holds a 3D sweep.
func (m *Metadata) HasZ() bool {
	return len(m.ZSlots) > 0 && m.ZSlots[0] != grid.NoZ
}

// ZCount is the number of Z slices, zero for a 2D sweep.
func (m *Metadata) ZCount() int {
	if !m.HasZ() {
		return 0
	}
	return len(m.ZSlots)
}

// looseManifest accepts manifests written by other tools: values may be numbers and tree
// nodes may omit fields.
type looseManifest struct {
	Values struct {
		X []any `json:"x"`
		Y []any `json:"y"`
		Z []any `json:"z"`
	} `json:"values"`
	Result []any `json:"result"`
}

// LoadDocument reads result.json as a generic document, preserving unknown keys.
func LoadDocument(folderPath string) (map[string]any, error) {
	data, err := os.ReadFile(filepath.Join(folderPath, FileName))
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := codec.JSON.Unmarshal(data, &doc); err != nil {
		return nil, xyzerrors.NewParseError(filepath.Join(folderPath, FileName), 0, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// Read determines the grid shape of a result folder. The manifest is preferred; when it
// is absent, unreadable or describes no grid, the shape is recovered from filenames.
func Read(folderPath string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(folderPath, FileName))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read manifest: %w", err)
		}
		return Recover(folderPath)
	}

	var loose looseManifest
	if err := codec.JSON.Unmarshal(data, &loose); err != nil {
		return Recover(folderPath)
	}

	meta := fromManifest(loose)
	if len(meta.ValuesX) == 0 || len(meta.ValuesY) == 0 {
		return Recover(folderPath)
	}
	return meta, nil
}

func fromManifest(loose looseManifest) *Metadata {
	valuesX := stringify(loose.Values.X)
	valuesY := stringify(loose.Values.Y)
	valuesZ := stringify(loose.Values.Z)

	treeX, treeY, treeZ, batch := ExtractFromTree(loose.Result)
	// The values block is authoritative when it names both X and Y.
	if len(valuesX) == 0 || len(valuesY) == 0 {
		valuesX, valuesY, valuesZ = treeX, treeY, treeZ
	}

	zSlots := []int{grid.NoZ}
	if len(valuesZ) > 0 {
		zSlots = make([]int, len(valuesZ))
		for i := range zSlots {
			zSlots[i] = i
		}
	}

	return &Metadata{
		ValuesX:   valuesX,
		ValuesY:   valuesY,
		ValuesZ:   valuesZ,
		ZSlots:    zSlots,
		BatchSize: batch,
	}
}

// ExtractFromTree derives axis values and batch size from a result tree. Only the first
// branch at each level is inspected; missing values default to x<i>, y<i> and z<i>.
func ExtractFromTree(tree []any) (valuesX, valuesY, valuesZ []string, batchSize int) {
	valuesX, valuesY, valuesZ = []string{}, []string{}, []string{}
	batchSize = 1
	if len(tree) == 0 {
		return valuesX, valuesY, valuesZ, batchSize
	}

	valuesX = labels(tree, "x")
	firstX := children(tree[0])
	valuesY = labels(firstX, "y")
	if len(firstX) == 0 {
		return valuesX, valuesY, valuesZ, batchSize
	}

	firstCell := children(firstX[0])
	if len(firstCell) > 0 && nodeType(firstCell[0]) == NodeTypeAxis {
		valuesZ = labels(firstCell, "z")
		batchSize = max(1, len(children(firstCell[0])))
	} else {
		batchSize = max(1, len(firstCell))
	}
	return valuesX, valuesY, valuesZ, batchSize
}

// Recover infers the grid shape from cell filenames. Indices are assumed contiguous from
// zero, except Z, whose observed indices are kept as slots.
func Recover(folderPath string) (*Metadata, error) {
	entries, err := os.ReadDir(folderPath)
	if err != nil {
		return nil, xyzerrors.NewRecoveryError(folderPath, err)
	}

	maxX, maxY, maxBatch := -1, -1, -1
	zSeen := map[int]struct{}{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		c, ok := grid.ParseFilename(entry.Name())
		if !ok {
			continue
		}
		maxX = max(maxX, c.X)
		maxY = max(maxY, c.Y)
		maxBatch = max(maxBatch, c.Batch)
		if c.HasZ() {
			zSeen[c.Z] = struct{}{}
		}
	}

	if maxX < 0 || maxY < 0 {
		return nil, xyzerrors.NewRecoveryError(folderPath, xyzerrors.ErrNoImagesFound)
	}

	meta := &Metadata{
		ValuesX:   indexLabels("x", maxX+1),
		ValuesY:   indexLabels("y", maxY+1),
		ValuesZ:   []string{},
		ZSlots:    []int{grid.NoZ},
		BatchSize: maxBatch + 1,
		Recovered: true,
	}
	if len(zSeen) > 0 {
		meta.ZSlots = make([]int, 0, len(zSeen))
		for z := range zSeen {
			meta.ZSlots = append(meta.ZSlots, z)
		}
		sort.Ints(meta.ZSlots)
		for _, z := range meta.ZSlots {
			meta.ValuesZ = append(meta.ValuesZ, fmt.Sprintf("z%d", z))
		}
	}
	return meta, nil
}

func indexLabels(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}

func labels(nodes []any, prefix string) []string {
	out := make([]string, len(nodes))
	for i, node := range nodes {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
		if m, ok := node.(map[string]any); ok {
			if v, ok := m["value"]; ok && v != nil {
				out[i] = fmt.Sprint(v)
			}
		}
	}
	return out
}

func children(node any) []any {
	m, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	list, _ := m["children"].([]any)
	return list
}

func nodeType(node any) string {
	m, ok := node.(map[string]any)
	if !ok {
		return ""
	}
	t, _ := m["type"].(string)
	return t
}

func stringify(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fmt.Sprint(v))
	}
	return out
}
