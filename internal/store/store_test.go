package store

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/xyzplot/internal/logger"
	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
)

func newStore(t *testing.T, archive bool) *Store {
	t.Helper()
	s, err := New(Options{
		Root:            t.TempDir(),
		ArchiveExisting: archive,
		Logger:          logger.Nop(),
		Now:             func() time.Time { return time.Unix(1700000000, 0) },
	})
	require.NoError(t, err)
	return s
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestNewRequiresRoot(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Root: "  "})
	require.Error(t, err)
}

func TestPaths(t *testing.T) {
	t.Parallel()

	s := newStore(t, true)
	require.True(t, filepath.IsAbs(s.Root()))
	require.Equal(t, filepath.Join(s.Root(), "a", "b"), s.FolderPath("a/b"))
	require.Equal(t, filepath.Join(s.Root(), "a", manifest.FileName), s.ResultPath("a"))
	require.False(t, s.Exists("a"))
}

func TestPrepareArchivesExistingFolder(t *testing.T) {
	t.Parallel()

	s := newStore(t, true)
	path := s.FolderPath("sweep")
	require.NoError(t, os.MkdirAll(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "x0_y0_0.jpeg"), []byte("old"), 0o644))

	got, archived, err := s.Prepare("sweep")
	require.NoError(t, err)
	require.Equal(t, path, got)
	require.Equal(t, path+"_old_1700000000", archived)
	require.NoFileExists(t, filepath.Join(path, "x0_y0_0.jpeg"))
	require.FileExists(t, filepath.Join(archived, "x0_y0_0.jpeg"))

	// A second archive within the same second gets a distinct name.
	require.NoError(t, os.MkdirAll(path, 0o755))
	_, second, err := s.Prepare("sweep")
	require.NoError(t, err)
	require.Equal(t, path+"_old_1700000000_1", second)
	require.DirExists(t, archived)
}

func TestPrepareWithoutArchiving(t *testing.T) {
	t.Parallel()

	s := newStore(t, false)
	path := s.FolderPath("sweep")
	require.NoError(t, os.MkdirAll(path, 0o755))

	_, archived, err := s.Prepare("sweep")
	require.NoError(t, err)
	require.Empty(t, archived)
	require.DirExists(t, path)
}

func TestPrepareMissingFolder(t *testing.T) {
	t.Parallel()

	s := newStore(t, true)
	path, archived, err := s.Prepare("fresh")
	require.NoError(t, err)
	require.Empty(t, archived)
	require.NoDirExists(t, path)
}

func TestSaveImages(t *testing.T) {
	t.Parallel()

	s := newStore(t, true)
	images := []image.Image{
		solid(4, 3, color.NRGBA{R: 200, G: 10, B: 10, A: 255}),
		solid(4, 3, color.NRGBA{R: 10, G: 200, B: 10, A: 0}),
	}

	names, err := s.SaveImages("sweep", images, 1, 0, -1)
	require.NoError(t, err)
	require.Equal(t, []string{"x1_y0_0.jpeg", "x1_y0_1.jpeg"}, names)

	f, err := os.Open(filepath.Join(s.FolderPath("sweep"), "x1_y0_1.jpeg"))
	require.NoError(t, err)
	defer f.Close()
	decoded, err := jpeg.Decode(f)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 4, 3), decoded.Bounds())

	// Fully transparent pixels keep their colour.
	r, g, _, _ := decoded.At(1, 1).RGBA()
	require.Greater(t, g>>8, uint32(150))
	require.Less(t, r>>8, uint32(60))

	names, err = s.SaveImages("sweep", images[:1], 0, 1, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"x0_y1_z2_0.jpeg"}, names)
}

func TestWriteWorkflow(t *testing.T) {
	t.Parallel()

	s := newStore(t, true)
	require.NoError(t, s.WriteWorkflow("sweep", map[string]any{"nodes": []any{}, "version": 0.4}))

	data, err := os.ReadFile(filepath.Join(s.FolderPath("sweep"), manifest.WorkflowFileName))
	require.NoError(t, err)
	require.Contains(t, string(data), `"version": 0.4`)
}

func TestListImages(t *testing.T) {
	t.Parallel()

	s := newStore(t, true)
	dir := s.FolderPath("sweep")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub.png"), 0o755))
	for _, name := range []string{"b.PNG", "A.jpeg", "c.avif", "result.json", "notes.txt", "a.gif"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	files, err := s.ListImages("sweep")
	require.NoError(t, err)
	require.Equal(t, []string{"a.gif", "A.jpeg", "b.PNG", "c.avif"}, files)

	_, err = s.ListImages("missing")
	require.ErrorIs(t, err, os.ErrNotExist)
}
