package surface

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"screen-ascii-lens/src/messages"
	"screen-ascii-lens/src/mosaic"
)

type fakeScreen struct {
	w, h    int
	cells   map[[2]int]Cell
	shows   int
	clears  int
	setCall int
}

func newFakeScreen(w, h int) *fakeScreen {
	return &fakeScreen{w: w, h: h, cells: map[[2]int]Cell{}}
}

func (f *fakeScreen) Size() (int, int) { return f.w, f.h }

func (f *fakeScreen) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	f.setCall++
	f.cells[[2]int{x, y}] = Cell{Ch: mainc, Style: style}
}

func (f *fakeScreen) Clear() {
	f.clears++
	f.cells = map[[2]int]Cell{}
}

func (f *fakeScreen) Show() { f.shows++ }

func uniformGrid(cols, rows int, c mosaic.Cell) []mosaic.Cell {
	grid := make([]mosaic.Cell, cols*rows)
	for i := range grid {
		grid[i] = c
	}
	return grid
}

func TestRingRotation(t *testing.T) {
	scr := newFakeScreen(80, 25)
	s := New(scr, false)
	if err := s.Resize(10, 5); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	grid := uniformGrid(10, 5, mosaic.Cell{Glyph: '#', Fg: 1})

	want := []int{1, 2, 0, 1}
	for i, w := range want {
		if err := s.Render(grid, 10, 5); err != nil {
			t.Fatalf("Render %d: %v", i, err)
		}
		if err := s.Present(); err != nil {
			t.Fatalf("Present %d: %v", i, err)
		}
		if s.Index() != w {
			t.Errorf("after present %d index = %d, want %d", i, s.Index(), w)
		}
	}
	if scr.shows != len(want) {
		t.Errorf("shows = %d, want %d", scr.shows, len(want))
	}
}

func TestResizeCropsToTerminal(t *testing.T) {
	s := New(newFakeScreen(20, 10), true)
	if err := s.Resize(51, 20); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if w, h := s.Size(); w != 20 || h != 9 {
		t.Errorf("Size = %dx%d, want 20x9", w, h)
	}
	if err := s.Resize(5, 3); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if w, h := s.Size(); w != 5 || h != 3 {
		t.Errorf("Size = %dx%d, want 5x3", w, h)
	}
}

func TestZeroAreaSkips(t *testing.T) {
	scr := newFakeScreen(20, 1)
	s := New(scr, true)
	if err := s.Resize(10, 10); !errors.Is(err, ErrEmptyCanvas) {
		t.Fatalf("Resize error = %v, want ErrEmptyCanvas", err)
	}
	if err := s.Render(nil, 0, 0); !errors.Is(err, ErrEmptyCanvas) {
		t.Errorf("Render error = %v, want ErrEmptyCanvas", err)
	}
	if err := s.Present(); !errors.Is(err, ErrEmptyCanvas) {
		t.Errorf("Present error = %v, want ErrEmptyCanvas", err)
	}
	if s.Index() != 0 || scr.shows != 0 {
		t.Errorf("index = %d shows = %d after skipped present", s.Index(), scr.shows)
	}
}

func TestRenderBatchesAndStyles(t *testing.T) {
	scr := newFakeScreen(10, 4)
	s := New(scr, true)
	if err := s.Resize(4, 2); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	a := mosaic.Cell{Glyph: '@', Fg: 208, Bg: mosaic.RGB{R: 128, G: 128, B: 128}}
	grid := []mosaic.Cell{a, a, {}, a, a, a, a, a}
	if err := s.Render(grid, 4, 2); err != nil {
		t.Fatalf("Render: %v", err)
	}
	s.SetStatus("30.0 fps")
	if err := s.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}

	got := scr.cells[[2]int{0, 0}]
	fg, bg, _ := got.Style.Decompose()
	if got.Ch != '@' || fg != tcell.NewRGBColor(208, 208, 208) || bg != tcell.NewRGBColor(128, 128, 128) {
		t.Errorf("cell (0,0) = %q fg=%v bg=%v", got.Ch, fg, bg)
	}
	if blank := scr.cells[[2]int{2, 0}]; blank.Ch != ' ' || blank.Style != tcell.StyleDefault {
		t.Errorf("blank cell = %+v", blank)
	}
	if st := scr.cells[[2]int{0, 3}]; st.Ch != '3' {
		t.Errorf("status line starts with %q, want '3'", st.Ch)
	}
}

func TestRenderRejectsShortGrid(t *testing.T) {
	s := New(newFakeScreen(10, 10), false)
	if err := s.Resize(4, 4); err != nil {
		t.Fatal(err)
	}
	if err := s.Render(make([]mosaic.Cell, 3), 4, 4); err == nil {
		t.Error("expected error for short grid")
	}
}

func TestCloseReleasesCanvases(t *testing.T) {
	s := New(newFakeScreen(10, 10), false)
	if err := s.Resize(4, 4); err != nil {
		t.Fatal(err)
	}
	s.Close()
	if w, h := s.Size(); w != 0 || h != 0 {
		t.Errorf("Size after Close = %dx%d", w, h)
	}
	if err := s.Present(); !errors.Is(err, ErrEmptyCanvas) {
		t.Errorf("Present after Close = %v", err)
	}
}

func TestSimulationScreen(t *testing.T) {
	sim := tcell.NewSimulationScreen("")
	term, err := NewTerminalFromScreen(sim)
	if err != nil {
		t.Fatalf("NewTerminalFromScreen: %v", err)
	}
	defer term.Fini()
	sim.SetSize(30, 10)

	s := New(term, false)
	if err := s.Resize(3, 1); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	c := mosaic.Cell{Glyph: 'x', Fg: 80, Bg: mosaic.RGB{}}
	if err := s.Render([]mosaic.Cell{c, c, c}, 3, 1); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := s.Present(); err != nil {
		t.Fatalf("Present: %v", err)
	}
	for x := 0; x < 3; x++ {
		if r, _, _, _ := sim.GetContent(x, 0); r != 'x' {
			t.Errorf("GetContent(%d,0) = %q, want 'x'", x, r)
		}
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		ev   tcell.Event
		want string
	}{
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), "WindowClose"},
		{"quit rune", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), "WindowClose"},
		{"copy rune", tcell.NewEventKey(tcell.KeyRune, 'c', tcell.ModNone), "CopyFrame"},
		{"arrow", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), "Nudge"},
		{"resize", tcell.NewEventResize(100, 40), "WindowResize"},
	}
	for _, tt := range tests {
		msg := Translate(tt.ev)
		if msg == nil || msg.Type() != tt.want {
			t.Errorf("%s: Translate = %v, want %s", tt.name, msg, tt.want)
		}
	}
	if msg := Translate(tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone)); msg != nil {
		t.Errorf("unbound key translated to %v", msg)
	}
}

func TestPumpPostsKeys(t *testing.T) {
	sim := tcell.NewSimulationScreen("")
	term, err := NewTerminalFromScreen(sim)
	if err != nil {
		t.Fatalf("NewTerminalFromScreen: %v", err)
	}
	defer term.Fini()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got := make(chan messages.Message, 4)
	go term.Pump(ctx, func(msg messages.Message) { got <- msg })

	sim.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case msg := <-got:
		if _, ok := msg.(messages.WindowClose); !ok {
			t.Fatalf("posted %T, want WindowClose", msg)
		}
	case <-ctx.Done():
		t.Fatal("no message posted for injected key")
	}
}
