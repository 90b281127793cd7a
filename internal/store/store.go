// Package store lays out result folders under the output directory: one folder per sweep
// holding the manifest, an optional workflow snapshot and one JPEG per cell image.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/xyzplot/internal/codec"
	"github.com/alexisbeaulieu97/xyzplot/internal/grid"
	"github.com/alexisbeaulieu97/xyzplot/internal/logger"
	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
)

// DefaultJPEGQuality is used when Options.JPEGQuality is zero.
const DefaultJPEGQuality = 90

// ImageExtensions are the file extensions listed as images in a result folder.
var ImageExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".webp": {}, ".gif": {}, ".bmp": {}, ".avif": {},
}

// Options configure a Store.
type Options struct {
	Root            string
	JPEGQuality     int
	ArchiveExisting bool
	Logger          *logger.Logger
	Now             func() time.Time
}

// Store resolves folder names against the output directory.
type Store struct {
	root    string
	quality int
	archive bool
	log     *logger.Logger
	now     func() time.Time
}

// New creates a store rooted at opts.Root. The root is made absolute but not created.
func New(opts Options) (*Store, error) {
	if strings.TrimSpace(opts.Root) == "" {
		return nil, errors.New("output directory is required")
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}
	quality := opts.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{root: root, quality: quality, archive: opts.ArchiveExisting, log: opts.Logger.Component("store"), now: now}, nil
}

// Root returns the absolute output directory.
func (s *Store) Root() string {
	return s.root
}

// FolderPath joins a sanitized folder name onto the output directory.
func (s *Store) FolderPath(folder string) string {
	return filepath.Join(s.root, filepath.FromSlash(folder))
}

// ResultPath is the manifest location for a folder.
func (s *Store) ResultPath(folder string) string {
	return filepath.Join(s.FolderPath(folder), manifest.FileName)
}

// Exists reports whether the folder is present as a directory.
func (s *Store) Exists(folder string) bool {
	info, err := os.Stat(s.FolderPath(folder))
	return err == nil && info.IsDir()
}

// Prepare makes room for a new sweep in folder. With archiving enabled an existing folder
// is renamed to <path>_old_<unix seconds> and the new path is returned with the archive
// path; otherwise the folder is reused as is.
func (s *Store) Prepare(folder string) (path string, archived string, err error) {
	path = s.FolderPath(folder)
	if _, statErr := os.Stat(path); statErr != nil {
		if errors.Is(statErr, fs.ErrNotExist) {
			return path, "", nil
		}
		return "", "", fmt.Errorf("inspect %s: %w", path, statErr)
	}
	if !s.archive {
		return path, "", nil
	}

	archived = fmt.Sprintf("%s_old_%d", path, s.now().Unix())
	for i := 1; exists(archived); i++ {
		archived = fmt.Sprintf("%s_old_%d_%d", path, s.now().Unix(), i)
	}
	if err := os.Rename(path, archived); err != nil {
		return "", "", fmt.Errorf("archive %s: %w", path, err)
	}
	s.log.WithFields(map[string]any{"folder": folder, "archived_to": archived}).Info("archived previous result folder")
	return path, archived, nil
}

// WriteWorkflow stores the design-time workflow snapshot beside the manifest.
func (s *Store) WriteWorkflow(folder string, workflow any) error {
	data, err := codec.MarshalIndent(workflow)
	if err != nil {
		return fmt.Errorf("encode workflow: %w", err)
	}
	return manifest.WriteFileAtomic(filepath.Join(s.FolderPath(folder), manifest.WorkflowFileName), data)
}

// SaveImages writes one JPEG per batch image for the cell at (x, y, z) and returns the
// written filenames in batch order.
func (s *Store) SaveImages(folder string, images []image.Image, x, y, z int) ([]string, error) {
	dir := s.FolderPath(folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create folder %s: %w", dir, err)
	}

	names := make([]string, 0, len(images))
	for batch, img := range images {
		name := grid.Filename(x, y, z, batch)
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, toRGB(img), &jpeg.Options{Quality: s.quality}); err != nil {
			return names, fmt.Errorf("encode %s: %w", name, err)
		}
		if err := manifest.WriteFileAtomic(filepath.Join(dir, name), buf.Bytes()); err != nil {
			return names, err
		}
		names = append(names, name)
	}
	return names, nil
}

// ListImages returns the image files of a folder sorted case-insensitively.
func (s *Store) ListImages(folder string) ([]string, error) {
	entries, err := os.ReadDir(s.FolderPath(folder))
	if err != nil {
		return nil, err
	}
	files := []string{}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if _, ok := ImageExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.SliceStable(files, func(i, j int) bool {
		return strings.ToLower(files[i]) < strings.ToLower(files[j])
	})
	return files, nil
}

// toRGB drops the alpha channel without premultiplying, so transparent pixels keep their
// colour instead of turning black.
func toRGB(img image.Image) image.Image {
	if _, ok := img.(*image.YCbCr); ok {
		return img
	}
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return out
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
