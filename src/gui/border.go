package gui

import "screen-ascii-lens/src/screenshot"

// Border draws a frame just outside the captured region so it never appears
// in the capture itself.
type Border interface {
	Move(r screenshot.Rect)
	Close()
}

type noopBorder struct{}

func (noopBorder) Move(screenshot.Rect) {}
func (noopBorder) Close()               {}

// NoBorder returns a Border that draws nothing.
func NoBorder() Border { return noopBorder{} }

// stripRects returns the top, bottom, left and right strips of a frame
// thickness pixels wide around r. Border.Move receives the capture rect, so
// the strips cover the outermost band of a selector with Outset = 2*band.
func stripRects(r screenshot.Rect, thickness int) [4]screenshot.Rect {
	t := thickness
	return [4]screenshot.Rect{
		{Left: r.Left - t, Top: r.Top - t, Right: r.Right + t, Bottom: r.Top},
		{Left: r.Left - t, Top: r.Bottom, Right: r.Right + t, Bottom: r.Bottom + t},
		{Left: r.Left - t, Top: r.Top, Right: r.Left, Bottom: r.Bottom},
		{Left: r.Right, Top: r.Top, Right: r.Right + t, Bottom: r.Bottom},
	}
}
