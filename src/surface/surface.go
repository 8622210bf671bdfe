// Package surface presents glyph grids on a terminal through a ring of three
// off-screen canvases.
package surface

import (
	"errors"
	"fmt"
	"log"

	"github.com/gdamore/tcell/v2"

	"screen-ascii-lens/src/mosaic"
)

// Canvases is the size of the presentation ring.
const Canvases = 3

// ErrEmptyCanvas is returned when there is no drawable area.
var ErrEmptyCanvas = errors.New("canvas has zero area")

// Screen is the subset of tcell.Screen the surface draws to.
type Screen interface {
	Size() (int, int)
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
	Clear()
	Show()
}

var statusStyle = tcell.StyleDefault.Reverse(true)

// Surface owns the canvas ring. Render fills the back canvas and Present
// copies it to the screen, then advances the ring.
type Surface struct {
	screen     Screen
	canvases   [Canvases]*Canvas
	index      int
	showStatus bool
	status     string
}

// New returns a surface without canvases; call Resize before rendering.
func New(screen Screen, showStatus bool) *Surface {
	return &Surface{screen: screen, showStatus: showStatus}
}

// Index returns the back canvas index, always in [0, Canvases).
func (s *Surface) Index() int { return s.index }

// Size returns the canvas dimensions, or 0x0 when no canvas is allocated.
func (s *Surface) Size() (int, int) {
	c := s.canvases[0]
	if c == nil {
		return 0, 0
	}
	return c.Width(), c.Height()
}

// SetStatus sets the text of the status line drawn under the canvas.
func (s *Surface) SetStatus(text string) { s.status = text }

func (s *Surface) statusRows() int {
	if s.showStatus {
		return 1
	}
	return 0
}

// Resize reallocates all canvases for a grid of gridCols x gridRows, cropped
// to the screen. A zero area drops the canvases and returns ErrEmptyCanvas;
// the next Resize retries.
func (s *Surface) Resize(gridCols, gridRows int) error {
	termW, termH := s.screen.Size()
	w := min(gridCols, termW)
	h := min(gridRows, termH-s.statusRows())

	for i := range s.canvases {
		s.canvases[i] = nil
	}
	s.screen.Clear()
	if w <= 0 || h <= 0 {
		log.Printf("SURFACE: no drawable area for grid %dx%d on %dx%d terminal", gridCols, gridRows, termW, termH)
		return fmt.Errorf("%w: grid %dx%d terminal %dx%d", ErrEmptyCanvas, gridCols, gridRows, termW, termH)
	}
	for i := range s.canvases {
		s.canvases[i] = newCanvas(w, h)
	}
	log.Printf("SURFACE: canvases resized to %dx%d (grid %dx%d, terminal %dx%d)", w, h, gridCols, gridRows, termW, termH)
	return nil
}

// Render draws the grid into the back canvas, batching cells of equal colour
// into one run. Cells outside the canvas are cropped.
func (s *Surface) Render(grid []mosaic.Cell, cols, rows int) error {
	c := s.canvases[s.index]
	if c == nil {
		return ErrEmptyCanvas
	}
	if len(grid) < cols*rows {
		return fmt.Errorf("grid has %d cells, want %d", len(grid), cols*rows)
	}
	c.Clear()
	visible := min(cols, c.Width())
	for y := 0; y < rows && y < c.Height(); y++ {
		for _, run := range mosaic.Runs(grid[y*cols : y*cols+visible]) {
			c.DrawRun(run.Col, y, run.Text, runStyle(run))
		}
	}
	return nil
}

// Present copies the back canvas and the status line to the screen, shows it
// and advances the ring.
func (s *Surface) Present() error {
	c := s.canvases[s.index]
	if c == nil {
		return ErrEmptyCanvas
	}
	for y := 0; y < c.Height(); y++ {
		for x := 0; x < c.Width(); x++ {
			cell := c.cells[y*c.width+x]
			s.screen.SetContent(x, y, cell.Ch, nil, cell.Style)
		}
	}
	if s.showStatus {
		s.drawStatus()
	}
	s.screen.Show()
	s.index = (s.index + 1) % Canvases
	return nil
}

func (s *Surface) drawStatus() {
	termW, termH := s.screen.Size()
	y := termH - 1
	if y < 0 {
		return
	}
	runes := []rune(s.status)
	for x := 0; x < termW; x++ {
		ch := ' '
		if x < len(runes) {
			ch = runes[x]
		}
		s.screen.SetContent(x, y, ch, nil, statusStyle)
	}
}

// Close releases the canvases. Present and Render fail afterwards.
func (s *Surface) Close() {
	for i := range s.canvases {
		s.canvases[i] = nil
	}
	s.index = 0
}
