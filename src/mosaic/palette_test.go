package mosaic

import (
	"errors"
	"testing"
)

func TestPaletteIndexMonotonic(t *testing.T) {
	p := MustPalette(DefaultPalette)
	prev := p.Index(0)
	if prev != 0 {
		t.Fatalf("Index(0) = %d, want 0", prev)
	}
	for l := 1; l < 256; l++ {
		got := p.Index(uint8(l))
		if got < prev {
			t.Fatalf("Index(%d) = %d < Index(%d) = %d", l, got, l-1, prev)
		}
		prev = got
	}
	if prev != p.Len()-1 {
		t.Errorf("Index(255) = %d, want %d", prev, p.Len()-1)
	}
}

func TestPaletteTwoGlyphs(t *testing.T) {
	p := MustPalette(" #")
	if p.Glyph(0) != ' ' || p.Glyph(254) != ' ' || p.Glyph(255) != '#' {
		t.Errorf("unexpected two-glyph mapping: %q %q %q", p.Glyph(0), p.Glyph(254), p.Glyph(255))
	}
}

func TestNewPaletteRejects(t *testing.T) {
	for _, glyphs := range []string{"", "x", "ab漢"} {
		if _, err := NewPalette(glyphs); !errors.Is(err, ErrInvalidPalette) {
			t.Errorf("NewPalette(%q) error = %v, want ErrInvalidPalette", glyphs, err)
		}
	}
}

func TestLumaAndForeground(t *testing.T) {
	tests := []struct {
		r, g, b  uint8
		luma, fg uint8
	}{
		{0, 0, 0, 0, 80},
		{128, 128, 128, 128, 208},
		{129, 129, 129, 129, 49},
		{255, 255, 255, 255, 175},
		{255, 0, 0, 76, 156},
		// Luma 128.299 and 128.114: bright, although both truncate to 128.
		{129, 128, 128, 128, 48},
		{128, 128, 129, 128, 48},
		{127, 128, 128, 127, 207},
	}
	for _, tt := range tests {
		luma := Luma(tt.r, tt.g, tt.b)
		if luma != tt.luma {
			t.Errorf("Luma(%d,%d,%d) = %d, want %d", tt.r, tt.g, tt.b, luma, tt.luma)
		}
		if fg := Foreground(tt.r, tt.g, tt.b); fg != tt.fg {
			t.Errorf("Foreground(%d,%d,%d) = %d, want %d", tt.r, tt.g, tt.b, fg, tt.fg)
		}
	}
}
