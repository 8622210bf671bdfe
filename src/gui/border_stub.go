//go:build !windows

package gui

import "log"

// NewBorder is a no-op outside Windows.
func NewBorder(thickness int) Border {
	log.Printf("SELECT: on-screen border not available on this platform")
	return noopBorder{}
}
