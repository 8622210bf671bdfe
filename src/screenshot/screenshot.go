package screenshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/kbinani/screenshot"
)

var (
	// ErrNoDisplays is returned when the platform reports no active display.
	ErrNoDisplays = errors.New("no active displays found")
	// ErrBadStride is returned when a grabbed buffer violates stride >= width*4.
	ErrBadStride = errors.New("capture buffer stride smaller than row width")
)

// BytesPerPixel is fixed; channel order is R, G, B, A.
const BytesPerPixel = 4

// Frame is one full-desktop pixel buffer. It is owned by the Source that
// produced it and is replaced on every successful acquisition.
type Frame struct {
	// Bounds is the area covered by Pix, in virtual-screen coordinates.
	Bounds    image.Rectangle
	Stride    int
	Pix       []byte
	Timestamp time.Time
}

func newFrame(img *image.RGBA, origin image.Point, at time.Time) (*Frame, error) {
	size := img.Rect.Size()
	if img.Stride < size.X*BytesPerPixel {
		return nil, fmt.Errorf("%w: stride=%d width=%d", ErrBadStride, img.Stride, size.X)
	}
	return &Frame{
		Bounds:    image.Rectangle{Min: origin, Max: origin.Add(size)},
		Stride:    img.Stride,
		Pix:       img.Pix,
		Timestamp: at,
	}, nil
}

// FrameFromImage copies img into a Frame positioned at img.Bounds().Min.
func FrameFromImage(img image.Image, at time.Time) *Frame {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect != b {
		rgba = image.NewRGBA(b)
		draw.Draw(rgba, b, img, b.Min, draw.Src)
	}
	return &Frame{Bounds: b, Stride: rgba.Stride, Pix: rgba.Pix, Timestamp: at}
}

func (f *Frame) Width() int  { return f.Bounds.Dx() }
func (f *Frame) Height() int { return f.Bounds.Dy() }

// Rect returns the frame bounds as a Rect.
func (f *Frame) Rect() Rect { return FromRectangle(f.Bounds) }

// Release drops the pixel buffer. Safe to call more than once.
func (f *Frame) Release() {
	if f == nil {
		return
	}
	f.Pix = nil
	f.Bounds = image.Rectangle{}
}

// Grabber is the platform capture boundary used by Source.
type Grabber interface {
	// Bounds returns the area a full-desktop grab covers.
	Bounds() (image.Rectangle, error)
	// Grab captures the given area.
	Grab(ctx context.Context, bounds image.Rectangle) (*image.RGBA, error)
}

// DesktopGrabber captures the union of all active displays with kbinani/screenshot.
type DesktopGrabber struct{}

func (DesktopGrabber) Bounds() (image.Rectangle, error) {
	return VirtualBounds()
}

func (DesktopGrabber) Grab(ctx context.Context, bounds image.Rectangle) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture desktop: %w", err)
	}
	return img, nil
}

// VirtualBounds returns the union of all active display bounds.
func VirtualBounds() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, ErrNoDisplays
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	return union, nil
}

// Capture captures the entire virtual screen across all active displays.
func Capture() (*image.RGBA, error) {
	union, err := VirtualBounds()
	if err != nil {
		return nil, err
	}
	return screenshot.CaptureRect(union)
}
