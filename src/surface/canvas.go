package surface

import (
	"github.com/gdamore/tcell/v2"

	"screen-ascii-lens/src/mosaic"
)

// Cell is one character position of a canvas.
type Cell struct {
	Ch    rune
	Style tcell.Style
}

var blankCell = Cell{Ch: ' ', Style: tcell.StyleDefault}

// Canvas is an off-screen grid of cells.
type Canvas struct {
	width, height int
	cells         []Cell
}

func newCanvas(width, height int) *Canvas {
	c := &Canvas{width: width, height: height, cells: make([]Cell, width*height)}
	c.Clear()
	return c
}

func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }

// Clear resets every cell to a blank with the default style.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = blankCell
	}
}

// At returns the cell at (x, y); out-of-range positions read as blank.
func (c *Canvas) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return blankCell
	}
	return c.cells[y*c.width+x]
}

// DrawRun writes text left to right from (x, y) with one style, clipped to the canvas.
func (c *Canvas) DrawRun(x, y int, text string, style tcell.Style) {
	if y < 0 || y >= c.height {
		return
	}
	row := c.cells[y*c.width : (y+1)*c.width]
	for _, r := range text {
		if x >= c.width {
			return
		}
		if x >= 0 {
			row[x] = Cell{Ch: r, Style: style}
		}
		x++
	}
}

// runStyle maps a glyph run to a tcell style: gray foreground on the block colour.
func runStyle(run mosaic.Run) tcell.Style {
	if run.Blank {
		return tcell.StyleDefault
	}
	fg := int32(run.Fg)
	return tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(fg, fg, fg)).
		Background(tcell.NewRGBColor(int32(run.Bg.R), int32(run.Bg.G), int32(run.Bg.B)))
}
