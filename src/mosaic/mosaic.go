// Package mosaic turns rectangular areas of a captured frame into a grid of
// coloured glyph cells.
package mosaic

import (
	"screen-ascii-lens/src/screenshot"
)

// RGB is an averaged cell colour.
type RGB struct {
	R, G, B uint8
}

// Cell is one glyph of the output grid. The zero Cell is blank.
type Cell struct {
	Glyph rune
	// Fg is the gray level the glyph is drawn with.
	Fg uint8
	// Bg is the averaged colour of the block.
	Bg RGB
}

// Blank reports whether the cell was never computed.
func (c Cell) Blank() bool { return c.Glyph == 0 }

const (
	contrastPivot  = 128
	contrastOffset = 80
)

// weightedLuma is 1000 * (0.299R + 0.587G + 0.114B), exact in integers.
func weightedLuma(r, g, b uint8) uint32 {
	return 299*uint32(r) + 587*uint32(g) + 114*uint32(b)
}

// Luma returns 0.299R + 0.587G + 0.114B truncated to an integer, so neutral
// grays map to themselves.
func Luma(r, g, b uint8) uint8 {
	return uint8(weightedLuma(r, g, b) / 1000)
}

// Foreground returns the glyph gray for a block of colour (r, g, b): darker
// on bright blocks and lighter on dark ones. The brightness test uses the
// untruncated luma, so 128.3 counts as bright.
func Foreground(r, g, b uint8) uint8 {
	w := weightedLuma(r, g, b)
	v := int(w / 1000)
	if w > contrastPivot*1000 {
		v -= contrastOffset
	} else {
		v += contrastOffset
	}
	return uint8(min(max(v, 0), 255))
}

// Quantizer converts frame regions into glyph grids.
type Quantizer struct {
	palette *Palette
}

// New returns a quantizer using p; a nil palette selects DefaultPalette.
func New(p *Palette) *Quantizer {
	if p == nil {
		p = MustPalette(DefaultPalette)
	}
	return &Quantizer{palette: p}
}

// Palette returns the palette in use.
func (q *Quantizer) Palette() *Palette { return q.palette }

// GridDims returns the ceiling division of a w x h area by the block size.
func GridDims(w, h, blockW, blockH int) (cols, rows int) {
	if w <= 0 || h <= 0 || blockW <= 0 || blockH <= 0 {
		return 0, 0
	}
	return (w + blockW - 1) / blockW, (h + blockH - 1) / blockH
}

// Convert clips region to the frame and averages each blockW x blockH block
// into a Cell. The grid is row-major with cols*rows cells; a trailing partial
// block is sampled only from pixels inside the clipped region. Degenerate
// input yields an empty grid.
func (q *Quantizer) Convert(frame *screenshot.Frame, region screenshot.Rect, blockW, blockH int) ([]Cell, int, int) {
	if frame == nil || len(frame.Pix) == 0 {
		return nil, 0, 0
	}
	clip := region.Intersect(frame.Rect())
	cols, rows := GridDims(clip.Width(), clip.Height(), blockW, blockH)
	if cols == 0 || rows == 0 {
		return nil, 0, 0
	}

	grid := make([]Cell, cols*rows)
	originX, originY := frame.Bounds.Min.X, frame.Bounds.Min.Y
	for row := 0; row < rows; row++ {
		y0 := clip.Top + row*blockH
		y1 := min(y0+blockH, clip.Bottom)
		for col := 0; col < cols; col++ {
			x0 := clip.Left + col*blockW
			x1 := min(x0+blockW, clip.Right)
			count := (x1 - x0) * (y1 - y0)
			if count <= 0 {
				continue
			}

			var sumR, sumG, sumB int
			for y := y0; y < y1; y++ {
				off := (y-originY)*frame.Stride + (x0-originX)*screenshot.BytesPerPixel
				px := frame.Pix[off : off+(x1-x0)*screenshot.BytesPerPixel]
				for i := 0; i < len(px); i += screenshot.BytesPerPixel {
					sumR += int(px[i])
					sumG += int(px[i+1])
					sumB += int(px[i+2])
				}
			}

			avg := RGB{R: uint8(sumR / count), G: uint8(sumG / count), B: uint8(sumB / count)}
			luma := Luma(avg.R, avg.G, avg.B)
			grid[row*cols+col] = Cell{
				Glyph: q.palette.Glyph(luma),
				Fg:    Foreground(avg.R, avg.G, avg.B),
				Bg:    avg,
			}
		}
	}
	return grid, cols, rows
}
