package surface

import (
	"context"
	"fmt"
	"log"

	"github.com/gdamore/tcell/v2"

	"screen-ascii-lens/src/messages"
)

// Terminal adapts a tcell.Screen to Screen and turns its input into messages.
type Terminal struct {
	screen tcell.Screen
}

// NewTerminal creates and initialises the terminal screen.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create terminal screen: %w", err)
	}
	return NewTerminalFromScreen(screen)
}

// NewTerminalFromScreen wraps an existing screen, e.g. tcell.NewSimulationScreen.
func NewTerminalFromScreen(screen tcell.Screen) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialise terminal screen: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault)
	screen.HideCursor()
	screen.Clear()
	return &Terminal{screen: screen}, nil
}

func (t *Terminal) Size() (int, int) { return t.screen.Size() }

func (t *Terminal) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	t.screen.SetContent(x, y, mainc, combc, style)
}

func (t *Terminal) Clear() { t.screen.Clear() }
func (t *Terminal) Show()  { t.screen.Show() }

// Fini restores the terminal.
func (t *Terminal) Fini() { t.screen.Fini() }

// Underlying exposes the wrapped tcell.Screen.
func (t *Terminal) Underlying() tcell.Screen { return t.screen }

// Pump forwards terminal input to post until ctx is done or the screen is
// finalised. It blocks; run it on its own goroutine.
func (t *Terminal) Pump(ctx context.Context, post func(messages.Message)) {
	events := make(chan tcell.Event, 16)
	go func() {
		defer close(events)
		for {
			// PollEvent returns nil once the screen is finalised.
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if msg := Translate(ev); msg != nil {
				post(msg)
			}
		}
	}
}

// Translate maps one terminal event to a loop message, or nil if it is not
// bound. Arrow keys nudge by one block; Shift+arrows resize.
func Translate(ev tcell.Event) messages.Message {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		w, h := ev.Size()
		return messages.WindowResize{Cols: w, Rows: h}
	case *tcell.EventKey:
		return translateKey(ev)
	}
	return nil
}

func translateKey(ev *tcell.EventKey) messages.Message {
	resize := ev.Modifiers()&tcell.ModShift != 0
	switch ev.Key() {
	case tcell.KeyEscape:
		return messages.WindowClose{Reason: "escape"}
	case tcell.KeyCtrlC:
		return messages.WindowClose{Reason: "interrupt"}
	case tcell.KeyLeft:
		return messages.Nudge{Cols: -1, Resize: resize}
	case tcell.KeyRight:
		return messages.Nudge{Cols: 1, Resize: resize}
	case tcell.KeyUp:
		return messages.Nudge{Rows: -1, Resize: resize}
	case tcell.KeyDown:
		return messages.Nudge{Rows: 1, Resize: resize}
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return messages.WindowClose{Reason: "quit key"}
		case 'c', 'C':
			return messages.CopyFrame{Source: "key"}
		}
	}
	log.Printf("SURFACE: unbound key %s", ev.Name())
	return nil
}
