package viewer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/alexisbeaulieu97/xyzplot/internal/manifest"
)

const (
	DefaultCellSize = 256
	DefaultWorkers  = 4

	cellGap      = 4
	labelWidth   = 120
	headerHeight = 24
	footerHeight = 20
	textInset    = 4
)

var (
	background  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	pendingFill = color.RGBA{R: 0xe4, G: 0xe4, B: 0xe7, A: 0xff}
	pendingMark = color.RGBA{R: 0x9c, G: 0x9c, B: 0xa3, A: 0xff}
	textColor   = color.RGBA{R: 0x18, G: 0x18, B: 0x1b, A: 0xff}
)

// RenderOptions select the slice of the grid to draw. Z indexes the folder's z slots and
// is clamped, as is Batch. Folder is the name shown in the footer; it defaults to the
// base name of the rendered path.
type RenderOptions struct {
	Folder string
	Z      int
	Batch  int
	Labels bool
}

// Compositor draws one z slice of a result folder as a single image: X values across,
// Y values down. Cells that are not on disk yet are drawn as crossed placeholders.
type Compositor struct {
	cellSize int
	workers  int
}

// NewCompositor creates a compositor; non-positive arguments select the defaults.
func NewCompositor(cellSize, workers int) *Compositor {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Compositor{cellSize: cellSize, workers: workers}
}

// Render composes the grid of folderPath described by meta.
func (c *Compositor) Render(ctx context.Context, folderPath string, meta *manifest.Metadata, opts RenderOptions) (*image.RGBA, error) {
	nx, ny := len(meta.ValuesX), len(meta.ValuesY)
	if nx == 0 || ny == 0 {
		return nil, fmt.Errorf("grid of %s has no cells", folderPath)
	}
	zPos := clamp(opts.Z, 0, len(meta.ZSlots)-1)
	batch := clamp(opts.Batch, 0, max(meta.BatchSize-1, 0))

	left, top, bottom := 0, 0, 0
	if opts.Labels {
		left, top, bottom = labelWidth, headerHeight, footerHeight
	}
	pitch := c.cellSize + cellGap
	canvas := image.NewRGBA(image.Rect(0, 0, left+nx*pitch+cellGap, top+ny*pitch+cellGap+bottom))
	xdraw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, xdraw.Src)

	thumbs := make([]image.Image, nx*ny)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for x := 0; x < nx; x++ {
		for y := 0; y < ny; y++ {
			x, y := x, y
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				path := cellFile(folderPath, coordinate(meta, x, y, zPos, batch))
				if path == "" {
					return nil
				}
				thumb, err := c.thumbnail(path)
				if err != nil {
					return err
				}
				thumbs[y*nx+x] = thumb
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	done := 0
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			origin := image.Pt(left+cellGap+x*pitch, top+cellGap+y*pitch)
			cell := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(c.cellSize, c.cellSize))}
			thumb := thumbs[y*nx+x]
			if thumb == nil {
				drawPending(canvas, cell)
				continue
			}
			done++
			b := thumb.Bounds()
			offset := image.Pt((c.cellSize-b.Dx())/2, (c.cellSize-b.Dy())/2)
			xdraw.Draw(canvas, b.Sub(b.Min).Add(origin.Add(offset)), thumb, b.Min, xdraw.Src)
		}
	}

	if opts.Labels {
		for x, label := range meta.ValuesX {
			drawText(canvas, label, left+cellGap+x*pitch+textInset, headerHeight-8, c.cellSize-2*textInset)
		}
		for y, label := range meta.ValuesY {
			drawText(canvas, label, textInset, top+cellGap+y*pitch+c.cellSize/2, labelWidth-2*textInset)
		}
		folder := opts.Folder
		if folder == "" {
			folder = filepath.Base(folderPath)
		}
		footer := folder + "  "
		if meta.HasZ() {
			footer += fmt.Sprintf("z %s  ", meta.ValuesZ[zPos])
		}
		footer += fmt.Sprintf("batch %d/%d  cells %d/%d", batch+1, max(meta.BatchSize, 1), done, nx*ny)
		drawText(canvas, footer, textInset, canvas.Bounds().Dy()-6, canvas.Bounds().Dx()-2*textInset)
	}
	return canvas, nil
}

// thumbnail decodes the image at path and scales it to fit the cell, keeping its aspect
// ratio.
func (c *Compositor) thumbnail(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("decode %s: empty image", path)
	}
	w, h := c.cellSize, c.cellSize
	if b.Dx() >= b.Dy() {
		h = max(1, b.Dy()*c.cellSize/b.Dx())
	} else {
		w = max(1, b.Dx()*c.cellSize/b.Dy())
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst, nil
}

func drawPending(canvas *image.RGBA, cell image.Rectangle) {
	xdraw.Draw(canvas, cell, image.NewUniform(pendingFill), image.Point{}, xdraw.Src)
	size := cell.Dx()
	inset := size / 4
	for i := inset; i < size-inset; i++ {
		for t := 0; t < 2; t++ {
			canvas.SetRGBA(cell.Min.X+i+t, cell.Min.Y+i, pendingMark)
			canvas.SetRGBA(cell.Min.X+size-1-i-t, cell.Min.Y+i, pendingMark)
		}
	}
}

// drawText writes s with its baseline at (x, y), cut to maxWidth pixels.
func drawText(canvas *image.RGBA, s string, x, y, maxWidth int) {
	face := basicfont.Face7x13
	s = fitText(face, s, maxWidth)
	d := font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(textColor),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func fitText(face font.Face, s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if font.MeasureString(face, s).Ceil() <= maxWidth {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if font.MeasureString(face, candidate).Ceil() <= maxWidth {
			return candidate
		}
	}
	return ""
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
