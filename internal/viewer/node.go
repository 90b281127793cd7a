package viewer

import (
	"strings"

	"github.com/alexisbeaulieu97/xyzplot/internal/logger"
	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
	"github.com/alexisbeaulieu97/xyzplot/internal/model"
	"github.com/alexisbeaulieu97/xyzplot/internal/naming"
	"github.com/alexisbeaulieu97/xyzplot/internal/store"
)

// Node executes the viewer node: given the plot output it summarizes the result folder.
type Node struct {
	store *store.Store
	cache *manifest.Cache
	log   *logger.Logger
}

// NewNode creates a viewer node. A nil cache reads the folder on every call.
func NewNode(s *store.Store, cache *manifest.Cache, log *logger.Logger) *Node {
	return &Node{store: s, cache: cache, log: log.Component("viewer")}
}

// Execute summarizes the folder named by input. input may be model.PlotData, a pointer to
// it, a decoded JSON object or nil. A missing folder name is not an error.
func (n *Node) Execute(input any) (*model.ViewerOutput, error) {
	folder := folderName(input)
	if folder == "" {
		return &model.ViewerOutput{PlotFolder: []string{}}, nil
	}
	folder = naming.SanitizeFolderName(folder)

	out := &model.ViewerOutput{PlotFolder: []string{folder}}
	if !n.store.Exists(folder) {
		n.log.WithField("folder", folder).Debug("result folder not created yet")
		return out, nil
	}

	path := n.store.FolderPath(folder)
	meta, err := n.metadata(path)
	if err != nil {
		return nil, err
	}

	out.PlotData = &model.ViewerData{
		FolderName: folder,
		FolderPath: path,
		ResultPath: n.store.ResultPath(folder),
		BatchSize:  meta.BatchSize,
		XCount:     len(meta.ValuesX),
		YCount:     len(meta.ValuesY),
		ZCount:     meta.ZCount(),
	}
	return out, nil
}

func (n *Node) metadata(path string) (*manifest.Metadata, error) {
	if n.cache != nil {
		return n.cache.Metadata(path)
	}
	return manifest.Read(path)
}

func folderName(input any) string {
	var name string
	switch v := input.(type) {
	case model.PlotData:
		name = v.FolderName
	case *model.PlotData:
		if v != nil {
			name = v.FolderName
		}
	case map[string]any:
		name, _ = v["folder_name"].(string)
	}
	if strings.TrimSpace(name) == "" {
		return ""
	}
	return name
}
