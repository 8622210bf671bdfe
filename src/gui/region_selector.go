// Package gui holds the region selection state machine and the on-screen
// border that marks the captured region.
package gui

import (
	"log"

	"screen-ascii-lens/src/screenshot"
)

// State is the gesture state of a RegionSelector.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateResizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	}
	return "unknown"
}

// Change describes what a pointer or nudge event did to the region.
type Change int

const (
	ChangeNone Change = iota
	ChangeMoved
	ChangeResized
)

// Options bounds the selector geometry.
type Options struct {
	// Band is the border hit band width in pixels.
	Band int
	// MinWidth and MinHeight bound the region after any resize.
	MinWidth  int
	MinHeight int
	// Outset grows the region before hit testing. With a border drawn around
	// CaptureRect, an outset of twice the band puts the hit band under the
	// drawn strips.
	Outset int
}

// DefaultOptions matches a 4px band and a 60x60 minimum region.
func DefaultOptions() Options {
	return Options{Band: 4, MinWidth: 60, MinHeight: 60}
}

// RegionSelector tracks the captured region and the gesture editing it.
// It is not safe for concurrent use; the event loop owns it.
type RegionSelector struct {
	opts  Options
	rect  screenshot.Rect
	state State
	zone  HitZone

	anchorX, anchorY int
	anchorRect       screenshot.Rect
}

// NewRegionSelector starts Idle with initial grown to the minimum size.
func NewRegionSelector(initial screenshot.Rect, opts Options) *RegionSelector {
	s := &RegionSelector{opts: opts}
	s.rect = s.clamp(initial, false, false)
	return s
}

// Rect returns the current region in screen coordinates.
func (s *RegionSelector) Rect() screenshot.Rect { return s.rect }

// HitRect is the rectangle pointer positions are classified against.
func (s *RegionSelector) HitRect() screenshot.Rect { return grow(s.rect, s.opts.Outset) }

// State returns the current gesture state.
func (s *RegionSelector) State() State { return s.state }

// Zone returns the zone captured by the active gesture.
func (s *RegionSelector) Zone() HitZone { return s.zone }

// PointerDown starts a gesture if (x, y) hits the border band. Top and left
// bands drag the region; the others resize it.
func (s *RegionSelector) PointerDown(x, y int) State {
	zone := DetectHitZone(s.HitRect(), x, y, s.opts.Band)
	switch zone {
	case ZoneNone:
		s.state, s.zone = StateIdle, ZoneNone
		return s.state
	case ZoneTop, ZoneLeft:
		s.state = StateDragging
	default:
		s.state = StateResizing
	}
	s.zone = zone
	s.anchorX, s.anchorY = x, y
	s.anchorRect = s.rect
	log.Printf("SELECT: %s started on %s band at (%d,%d) rect=%s", s.state, zone, x, y, s.rect)
	return s.state
}

// PointerMove applies the pointer delta since PointerDown. Idle moves are ignored.
func (s *RegionSelector) PointerMove(x, y int) Change {
	if s.state == StateIdle {
		return ChangeNone
	}
	dx, dy := x-s.anchorX, y-s.anchorY
	next := s.anchorRect
	if s.state == StateDragging {
		next = next.Offset(dx, dy)
	} else {
		left, top, right, bottom := s.zone.edges()
		if left {
			next.Left += dx
		}
		if right {
			next.Right += dx
		}
		if top {
			next.Top += dy
		}
		if bottom {
			next.Bottom += dy
		}
		next = s.clamp(next, left, top)
	}
	return s.apply(next)
}

// PointerUp ends any gesture.
func (s *RegionSelector) PointerUp() {
	if s.state != StateIdle {
		log.Printf("SELECT: %s finished rect=%s", s.state, s.rect)
	}
	s.state, s.zone = StateIdle, ZoneNone
}

// Nudge moves the region by (dx, dy), or grows its right and bottom edges
// when resize is set. Ignored while a pointer gesture is active.
func (s *RegionSelector) Nudge(dx, dy int, resize bool) Change {
	if s.state != StateIdle {
		return ChangeNone
	}
	next := s.rect
	if resize {
		next.Right += dx
		next.Bottom += dy
		next = s.clamp(next, false, false)
	} else {
		next = next.Offset(dx, dy)
	}
	return s.apply(next)
}

func (s *RegionSelector) apply(next screenshot.Rect) Change {
	prev := s.rect
	s.rect = next
	switch {
	case next.Width() != prev.Width() || next.Height() != prev.Height():
		return ChangeResized
	case next != prev:
		return ChangeMoved
	}
	return ChangeNone
}

// clamp enforces the minimum size by pinning the edge that moved: when the
// left (top) edge is moving it is pushed back, otherwise the right (bottom).
func (s *RegionSelector) clamp(r screenshot.Rect, leftMoving, topMoving bool) screenshot.Rect {
	if r.Width() < s.opts.MinWidth {
		if leftMoving {
			r.Left = r.Right - s.opts.MinWidth
		} else {
			r.Right = r.Left + s.opts.MinWidth
		}
	}
	if r.Height() < s.opts.MinHeight {
		if topMoving {
			r.Top = r.Bottom - s.opts.MinHeight
		} else {
			r.Bottom = r.Top + s.opts.MinHeight
		}
	}
	return r
}

// CaptureRect is r grown by band on every side, the area converted to glyphs.
func CaptureRect(r screenshot.Rect, band int) screenshot.Rect { return grow(r, band) }

func grow(r screenshot.Rect, n int) screenshot.Rect {
	return screenshot.Rect{Left: r.Left - n, Top: r.Top - n, Right: r.Right + n, Bottom: r.Bottom + n}
}

// GridSize returns the glyph grid dimensions for a region whose border band is
// included on every side.
func GridSize(r screenshot.Rect, band, blockW, blockH int) (cols, rows int) {
	w := r.Width() + 2*band
	h := r.Height() + 2*band
	if w <= 0 || h <= 0 || blockW <= 0 || blockH <= 0 {
		return 0, 0
	}
	return (w + blockW - 1) / blockW, (h + blockH - 1) / blockH
}
