package mosaic

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Run is a horizontal span of cells sharing foreground and background.
type Run struct {
	Col  int
	Text string
	Fg   uint8
	Bg   RGB
	// Blank marks a span of never-computed cells.
	Blank bool
}

// Runs splits one grid row into maximal runs of identical colours. Blank cells
// form their own runs of spaces.
func Runs(row []Cell) []Run {
	var runs []Run
	var sb strings.Builder
	start := 0
	for i := 0; i <= len(row); i++ {
		if i > 0 && (i == len(row) || !sameStyle(row[i-1], row[i])) {
			prev := row[i-1]
			runs = append(runs, Run{Col: start, Text: sb.String(), Fg: prev.Fg, Bg: prev.Bg, Blank: prev.Blank()})
			sb.Reset()
			start = i
		}
		if i < len(row) {
			sb.WriteRune(glyphOf(row[i]))
		}
	}
	return runs
}

func sameStyle(a, b Cell) bool {
	if a.Blank() || b.Blank() {
		return a.Blank() == b.Blank()
	}
	return a.Fg == b.Fg && a.Bg == b.Bg
}

func glyphOf(c Cell) rune {
	if c.Blank() {
		return ' '
	}
	return c.Glyph
}

// Text renders the grid as plain lines without colour.
func Text(grid []Cell, cols, rows int) string {
	var sb strings.Builder
	sb.Grow((cols + 1) * rows)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			sb.WriteRune(glyphOf(grid[row*cols+col]))
		}
		if row < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// WriteANSI writes the grid with 24-bit colour escapes, one escape pair per run.
func WriteANSI(w io.Writer, grid []Cell, cols, rows int) error {
	bw := bufio.NewWriter(w)
	for row := 0; row < rows; row++ {
		for _, run := range Runs(grid[row*cols : (row+1)*cols]) {
			if run.Blank {
				fmt.Fprint(bw, "\x1b[0m", run.Text)
				continue
			}
			fmt.Fprintf(bw, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%s",
				run.Fg, run.Fg, run.Fg, run.Bg.R, run.Bg.G, run.Bg.B, run.Text)
		}
		fmt.Fprint(bw, "\x1b[0m\n")
	}
	return bw.Flush()
}
