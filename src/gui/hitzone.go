package gui

import "screen-ascii-lens/src/screenshot"

// HitZone classifies a pointer position against the border band of a region.
type HitZone int

const (
	ZoneNone HitZone = iota
	ZoneLeft
	ZoneRight
	ZoneTop
	ZoneBottom
	ZoneTopLeft
	ZoneTopRight
	ZoneBottomLeft
	ZoneBottomRight
)

var zoneNames = [...]string{
	ZoneNone:        "none",
	ZoneLeft:        "left",
	ZoneRight:       "right",
	ZoneTop:         "top",
	ZoneBottom:      "bottom",
	ZoneTopLeft:     "top-left",
	ZoneTopRight:    "top-right",
	ZoneBottomLeft:  "bottom-left",
	ZoneBottomRight: "bottom-right",
}

func (z HitZone) String() string {
	if z < 0 || int(z) >= len(zoneNames) {
		return "unknown"
	}
	return zoneNames[z]
}

// edges reports which rect edges a resize in this zone moves.
func (z HitZone) edges() (left, top, right, bottom bool) {
	switch z {
	case ZoneLeft:
		return true, false, false, false
	case ZoneRight:
		return false, false, true, false
	case ZoneTop:
		return false, true, false, false
	case ZoneBottom:
		return false, false, false, true
	case ZoneTopLeft:
		return true, true, false, false
	case ZoneTopRight:
		return false, true, true, false
	case ZoneBottomLeft:
		return true, false, false, true
	case ZoneBottomRight:
		return false, false, true, true
	}
	return false, false, false, false
}

// DetectHitZone returns the zone of (x, y) for region r with a band-pixel
// border on each side. Points outside r are ZoneNone. Corners win over edges.
func DetectHitZone(r screenshot.Rect, x, y, band int) HitZone {
	if !r.Contains(x, y) {
		return ZoneNone
	}
	lx, ly := x-r.Left, y-r.Top
	w, h := r.Width(), r.Height()

	left := lx < band
	right := lx >= w-band
	top := ly < band
	bottom := ly >= h-band

	switch {
	case top && left:
		return ZoneTopLeft
	case top && right:
		return ZoneTopRight
	case bottom && left:
		return ZoneBottomLeft
	case bottom && right:
		return ZoneBottomRight
	case left:
		return ZoneLeft
	case right:
		return ZoneRight
	case top:
		return ZoneTop
	case bottom:
		return ZoneBottom
	}
	return ZoneNone
}
