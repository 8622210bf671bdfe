package mosaic

import (
	"errors"
	"fmt"

	"github.com/mattn/go-runewidth"
)

// DefaultPalette is ordered from the darkest glyph (index 0) to the brightest.
const DefaultPalette = " .'`^\",:;Il!i><~+_-?][}{1)(|\\/tfjrxnuvczXYUJCLQ0OZmwqpdbkhao*#MW&8%B@$"

// ErrInvalidPalette is returned for palettes that cannot drive a lookup table.
var ErrInvalidPalette = errors.New("invalid glyph palette")

// Palette maps luma to a glyph through a 256-entry table built once.
type Palette struct {
	glyphs []rune
	index  [256]uint16
}

// NewPalette builds the lookup table for glyphs. The palette needs at least two
// glyphs, each exactly one terminal cell wide.
func NewPalette(glyphs string) (*Palette, error) {
	runes := []rune(glyphs)
	if len(runes) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 glyphs, got %d", ErrInvalidPalette, len(runes))
	}
	for i, r := range runes {
		if runewidth.RuneWidth(r) != 1 {
			return nil, fmt.Errorf("%w: glyph %q at %d is not one cell wide", ErrInvalidPalette, r, i)
		}
	}

	p := &Palette{glyphs: runes}
	last := len(runes) - 1
	for l := 0; l < 256; l++ {
		p.index[l] = uint16(l * last / 255)
	}
	return p, nil
}

// MustPalette is NewPalette for compile-time constant palettes.
func MustPalette(glyphs string) *Palette {
	p, err := NewPalette(glyphs)
	if err != nil {
		panic(err)
	}
	return p
}

// Index returns floor(luma * (len-1) / 255).
func (p *Palette) Index(luma uint8) int { return int(p.index[luma]) }

// Glyph returns the glyph for luma.
func (p *Palette) Glyph(luma uint8) rune { return p.glyphs[p.index[luma]] }

// Len returns the number of glyphs.
func (p *Palette) Len() int { return len(p.glyphs) }

func (p *Palette) String() string { return string(p.glyphs) }
