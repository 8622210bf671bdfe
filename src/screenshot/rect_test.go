package screenshot

import "testing"

func TestRectIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want Rect
	}{
		{"inside", Rect{10, 10, 20, 20}, Rect{0, 0, 100, 100}, Rect{10, 10, 20, 20}},
		{"clipped negative", Rect{-30, -5, 40, 50}, Rect{0, 0, 100, 100}, Rect{0, 0, 40, 50}},
		{"clipped beyond", Rect{90, 90, 150, 150}, Rect{0, 0, 100, 100}, Rect{90, 90, 100, 100}},
		{"disjoint", Rect{200, 200, 300, 300}, Rect{0, 0, 100, 100}, Rect{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersect(tt.b); got != tt.want {
				t.Fatalf("Intersect = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectContainsExcludesRightAndBottom(t *testing.T) {
	r := Rect{0, 0, 100, 100}
	if !r.Contains(0, 0) || !r.Contains(99, 99) {
		t.Fatal("expected inner corners to be contained")
	}
	if r.Contains(100, 50) || r.Contains(50, 100) {
		t.Fatal("right and bottom edges are exclusive")
	}
}

func TestRectXYWHAndOffset(t *testing.T) {
	r := RectXYWH(100, 100, 400, 300)
	if r.Width() != 400 || r.Height() != 300 {
		t.Fatalf("unexpected size %dx%d", r.Width(), r.Height())
	}
	moved := r.Offset(-150, 20)
	if moved != (Rect{-50, 120, 350, 420}) {
		t.Fatalf("Offset = %v", moved)
	}
	if moved.Width() != r.Width() || moved.Height() != r.Height() {
		t.Fatal("Offset must preserve size")
	}
}
