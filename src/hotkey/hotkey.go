// Package hotkey listens to global mouse and keyboard events and turns them
// into event loop messages.
package hotkey

import (
	"context"
	"log"

	gohook "github.com/robotn/gohook"

	"screen-ascii-lens/src/messages"
)

const leftButton = 1

// Options selects what the listener forwards.
type Options struct {
	// Pointer forwards left-button press, drag and release.
	Pointer bool
	// CopyCombo posts CopyFrame when held, e.g. "Ctrl+Alt+C". Empty disables it.
	CopyCombo string
}

// translator keeps the state needed to map raw hook events.
type translator struct {
	pointer bool
	copy    *combo
	down    bool
}

// translate maps one hook event to a message, or nil.
func (t *translator) translate(ev gohook.Event) messages.Message {
	switch ev.Kind {
	case gohook.MouseHold:
		if !t.pointer || ev.Button != leftButton {
			return nil
		}
		t.down = true
		return messages.PointerDown{X: int(ev.X), Y: int(ev.Y)}
	case gohook.MouseDrag, gohook.MouseMove:
		if !t.pointer || !t.down {
			return nil
		}
		return messages.PointerMove{X: int(ev.X), Y: int(ev.Y)}
	case gohook.MouseUp:
		if !t.pointer || ev.Button != leftButton || !t.down {
			return nil
		}
		t.down = false
		return messages.PointerUp{X: int(ev.X), Y: int(ev.Y)}
	case gohook.KeyDown:
		if t.copy != nil && t.copy.press(ev.Rawcode) {
			return messages.CopyFrame{Source: "hotkey"}
		}
	case gohook.KeyUp:
		if t.copy != nil {
			t.copy.release(ev.Rawcode)
		}
	}
	return nil
}

// Listen starts the global hook and forwards translated events to post until
// ctx is done. An invalid combo is logged and only the pointer is forwarded.
func Listen(ctx context.Context, opts Options, post func(messages.Message)) {
	t := &translator{pointer: opts.Pointer}
	if opts.CopyCombo != "" {
		c, err := newCombo(opts.CopyCombo)
		if err != nil {
			log.Printf("HOOK: copy hotkey disabled: %v", err)
		} else {
			t.copy = c
			log.Printf("HOOK: copy hotkey configured for %s", opts.CopyCombo)
		}
	}
	if !t.pointer && t.copy == nil {
		log.Printf("HOOK: nothing to listen for")
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("HOOK: PANIC in hook goroutine: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("HOOK: gohook.Start() returned nil channel")
			return
		}
		defer gohook.End()
		log.Printf("HOOK: global hook started (pointer=%v)", t.pointer)

		for {
			select {
			case <-ctx.Done():
				log.Printf("HOOK: stopping")
				return
			case ev, ok := <-evChan:
				if !ok {
					log.Printf("HOOK: event channel closed")
					return
				}
				if msg := t.translate(ev); msg != nil {
					post(msg)
				}
			}
		}
	}()
}
