package hotkey

import (
	"fmt"
	"log"
)

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// combo tracks which keys of a hotkey are held.
type combo struct {
	text string
	keys []keyState
}

func newCombo(hotkeyConfig string) (*combo, error) {
	c := &combo{text: hotkeyConfig}
	for _, name := range parseHotkey(hotkeyConfig) {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			return nil, fmt.Errorf("cannot map key %q of hotkey %q", name, hotkeyConfig)
		}
		c.keys = append(c.keys, keyState{name: name, rawcodes: codes})
	}
	if len(c.keys) == 0 {
		return nil, fmt.Errorf("no keys in hotkey %q", hotkeyConfig)
	}
	return c, nil
}

func (c *combo) match(rawcode uint16) *keyState {
	for i := range c.keys {
		for _, code := range c.keys[i].rawcodes {
			if code == rawcode {
				return &c.keys[i]
			}
		}
	}
	return nil
}

// press records a key down and reports whether the whole combination is held.
// A completed combination resets so holding it fires once.
func (c *combo) press(rawcode uint16) bool {
	k := c.match(rawcode)
	if k == nil {
		return false
	}
	k.pressed = true
	for i := range c.keys {
		if !c.keys[i].pressed {
			return false
		}
	}
	log.Printf("HOOK: combination %s detected", c.text)
	for i := range c.keys {
		c.keys[i].pressed = false
	}
	return true
}

func (c *combo) release(rawcode uint16) {
	if k := c.match(rawcode); k != nil {
		k.pressed = false
	}
}
