package tui

import (
	"image"
	"image/color"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/xyzplot/internal/grid"
	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
	"github.com/alexisbeaulieu97/xyzplot/internal/model"
	"github.com/alexisbeaulieu97/xyzplot/internal/store"
	"github.com/alexisbeaulieu97/xyzplot/internal/sweep"
)

var fixedNow = time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

func meta2x2() *manifest.Metadata {
	return &manifest.Metadata{
		ValuesX:   []string{"4", "7"},
		ValuesY:   []string{"10", "20"},
		ZSlots:    []int{grid.NoZ},
		BatchSize: 1,
	}
}

func summaryWith(doneCells int) model.GridSummary {
	var s model.GridSummary
	for i := 0; i < 4; i++ {
		status := model.CellPending
		if i < doneCells {
			status = model.CellDone
		}
		s.Add(model.CellResult{X: i / 2, Y: i % 2, Z: grid.NoZ, Status: status})
	}
	return s
}

func TestNewModelInitialisesState(t *testing.T) {
	t.Parallel()

	m := NewModel(Options{Folder: "sweep"})
	require.Equal(t, "sweep", m.folder)
	require.False(t, m.IsFinished())
	require.False(t, m.loaded)
	require.NotNil(t, m.now)
}

func TestModelInitReturnsCommand(t *testing.T) {
	t.Parallel()

	m := NewModel(Options{Load: func() (Snapshot, error) { return Snapshot{}, nil }})
	require.NotNil(t, m.Init())
}

func TestFolderLoaderBeforeAndAfterPlanning(t *testing.T) {
	t.Parallel()

	s, err := store.New(store.Options{Root: t.TempDir()})
	require.NoError(t, err)
	path := s.FolderPath("sweep")
	load := FolderLoader(path, manifest.NewCache(0, 0, nil), func() time.Time { return fixedNow })

	snap, err := load()
	require.NoError(t, err)
	require.Nil(t, snap.Meta)
	require.Equal(t, fixedNow, snap.At)

	plan, err := sweep.Resolve(sweep.Inputs{
		InputX: "3::KSampler::cfg", ValueX: "4; 7",
		InputY: "3::KSampler::steps", ValueY: "10; 20",
	}, 1)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(path, 0o755))
	require.NoError(t, manifest.Write(path, manifest.Build(manifest.BuildOptions{Folder: "sweep", Plan: plan})))

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	_, err = s.SaveImages("sweep", []image.Image{img}, 1, 1, grid.NoZ)
	require.NoError(t, err)

	snap, err = load()
	require.NoError(t, err)
	require.NotNil(t, snap.Meta)
	require.Equal(t, 4, snap.Summary.Total)
	require.Equal(t, 1, snap.Summary.Done)
}

func TestFolderLoaderReportsRecoveryFailure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := FolderLoader(dir, nil, nil)()
	require.Error(t, err)
}
