package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFilename(t *testing.T) {
	t.Parallel()

	require.Equal(t, "x0_y0_0.jpeg", Filename(0, 0, NoZ, 0))
	require.Equal(t, "x1_y2_z3_4.jpeg", Filename(1, 2, 3, 4))
	require.Equal(t, "x1_y2_z0_0.jpeg", Filename(1, 2, 0, 0))
	require.Equal(t, "x10_y0_7.jpeg", Coordinate{X: 10, Y: 0, Z: NoZ, Batch: 7}.Filename())
}

func TestPreviewURL(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		"/view?filename=x0_y1_0.jpeg&type=output&subfolder=250101_X_cfg",
		PreviewURL("250101_X_cfg", "x0_y1_0.jpeg"))
}

func TestCoordinateUUID(t *testing.T) {
	t.Parallel()

	require.Equal(t, "grid:1:0:-1:2", Coordinate{X: 1, Y: 0, Z: NoZ, Batch: 2}.UUID("grid"))
	require.Equal(t, "grid:1:0:3:0", Coordinate{X: 1, Y: 0, Z: 3}.UUID("grid"))
}

func TestParseFilename(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		want Coordinate
		ok   bool
	}{
		{name: "x0_y0_0.jpeg", want: Coordinate{0, 0, NoZ, 0}, ok: true},
		{name: "x1_y0_0.jpeg", want: Coordinate{1, 0, NoZ, 0}, ok: true},
		{name: "x2_y3_z1_4.jpeg", want: Coordinate{2, 3, 1, 4}, ok: true},
		{name: "X2_Y3_Z1_4.JPG", want: Coordinate{2, 3, 1, 4}, ok: true},
		{name: "x0_y0_1.png", want: Coordinate{0, 0, NoZ, 1}, ok: true},
		{name: "x0_y0_1.webp", want: Coordinate{0, 0, NoZ, 1}, ok: true},
		{name: "x0_y0.jpeg", ok: false},
		{name: "x0_y0_0.gif", ok: false},
		{name: "result.json", ok: false},
		{name: "prefix_x0_y0_0.jpeg", ok: false},
		{name: "x0_y0_0.jpeg.bak", ok: false},
		{name: "x-1_y0_0.jpeg", ok: false},
	}

	for _, tc := range cases {
		got, ok := ParseFilename(tc.name)
		require.Equal(t, tc.ok, ok, tc.name)
		if tc.ok {
			require.Equal(t, tc.want, got, tc.name)
		}
	}
}

func TestFilenameRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		want := Coordinate{
			X:     rapid.IntRange(0, 500).Draw(t, "x"),
			Y:     rapid.IntRange(0, 500).Draw(t, "y"),
			Z:     rapid.IntRange(NoZ, 50).Draw(t, "z"),
			Batch: rapid.IntRange(0, 64).Draw(t, "batch"),
		}

		got, ok := ParseFilename(want.Filename())
		if !ok {
			t.Fatalf("filename %q did not parse", want.Filename())
		}
		if got != want {
			t.Fatalf("round trip mismatch: got %v want %v", got, want)
		}
	})
}
