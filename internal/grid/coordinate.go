// Package grid owns the naming of sweep cells on disk and in viewer URLs. Filename and
// ParseFilename are exact inverses; change them together.
package grid

import (
	"fmt"
	"regexp"
	"strconv"
)

// NoZ is the z component of a coordinate in a sweep without a Z axis.
const NoZ = -1

// Extension is the file extension every cell image is written with.
const Extension = ".jpeg"

// PreviewEndpoint is the host's generic content-retrieval route.
const PreviewEndpoint = "/view"

var filenamePattern = regexp.MustCompile(`(?i)^x(\d+)_y(\d+)(?:_z(\d+))?_(\d+)\.(?:jpg|jpeg|png|webp)$`)

// Coordinate addresses one image of one sweep cell.
type Coordinate struct {
	X     int
	Y     int
	Z     int
	Batch int
}

// HasZ reports whether the coordinate belongs to a sweep with an active Z axis.
func (c Coordinate) HasZ() bool {
	return c.Z >= 0
}

// Filename returns the canonical image filename for the coordinate.
func (c Coordinate) Filename() string {
	return Filename(c.X, c.Y, c.Z, c.Batch)
}

// UUID returns the stable slot identifier recorded in the manifest.
func (c Coordinate) UUID(folder string) string {
	return fmt.Sprintf("%s:%d:%d:%d:%d", folder, c.X, c.Y, c.Z, c.Batch)
}

func (c Coordinate) String() string {
	if c.HasZ() {
		return fmt.Sprintf("(x=%d, y=%d, z=%d, batch=%d)", c.X, c.Y, c.Z, c.Batch)
	}
	return fmt.Sprintf("(x=%d, y=%d, batch=%d)", c.X, c.Y, c.Batch)
}

// Filename renders x{x}_y{y}[_z{z}]_{batch}.jpeg; the z segment is present iff z >= 0.
func Filename(x, y, z, batch int) string {
	if z >= 0 {
		return fmt.Sprintf("x%d_y%d_z%d_%d%s", x, y, z, batch, Extension)
	}
	return fmt.Sprintf("x%d_y%d_%d%s", x, y, batch, Extension)
}

// PreviewURL returns the viewer-facing source of an image inside a result folder.
func PreviewURL(folder, filename string) string {
	return fmt.Sprintf("%s?filename=%s&type=output&subfolder=%s", PreviewEndpoint, filename, folder)
}

// ParseFilename recovers the coordinate encoded in a cell filename. Names without a z
// segment recover Z as NoZ. Besides .jpeg, the .jpg, .png and .webp extensions are
// accepted in any case.
func ParseFilename(name string) (Coordinate, bool) {
	match := filenamePattern.FindStringSubmatch(name)
	if match == nil {
		return Coordinate{}, false
	}

	x, errX := strconv.Atoi(match[1])
	y, errY := strconv.Atoi(match[2])
	batch, errB := strconv.Atoi(match[4])
	if errX != nil || errY != nil || errB != nil {
		return Coordinate{}, false
	}

	z := NoZ
	if match[3] != "" {
		parsed, err := strconv.Atoi(match[3])
		if err != nil {
			return Coordinate{}, false
		}
		z = parsed
	}

	return Coordinate{X: x, Y: y, Z: z, Batch: batch}, true
}
