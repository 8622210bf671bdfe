// Package tray shows an optional system tray icon with the live frame rate.
package tray

import (
	"fmt"
	"log"
	"sync"

	"github.com/getlantern/systray"
)

const title = "Screen ASCII Lens"

// Actions are invoked from the tray goroutine.
type Actions struct {
	OnCopy func()
	OnQuit func()
}

var (
	mu      sync.Mutex
	running bool
)

// Start runs the tray on its own goroutine.
func Start(actions Actions) {
	mu.Lock()
	if running {
		mu.Unlock()
		return
	}
	running = true
	mu.Unlock()

	go systray.Run(func() { onReady(actions) }, onExit)
}

func onReady(actions Actions) {
	if icon, err := iconBytes(); err != nil {
		log.Printf("Tray: icon unavailable: %v", err)
	} else {
		systray.SetIcon(icon)
	}
	systray.SetTitle(title)
	systray.SetTooltip(title)

	mCopy := systray.AddMenuItem("Copy mosaic", "Copy the current mosaic as text")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit the application")
	log.Printf("Tray: ready")

	go func() {
		for {
			select {
			case <-mCopy.ClickedCh:
				if actions.OnCopy != nil {
					actions.OnCopy()
				}
			case <-mQuit.ClickedCh:
				if actions.OnQuit != nil {
					actions.OnQuit()
				}
				return
			}
		}
	}()
}

func onExit() {
	mu.Lock()
	running = false
	mu.Unlock()
	log.Printf("Tray: exited")
}

// Tooltip formats the tray tooltip for a frame rate.
func Tooltip(fps float64) string {
	return fmt.Sprintf("%s: %.1f fps", title, fps)
}

// UpdateFPS shows fps in the tooltip. It is a no-op when the tray is not running.
func UpdateFPS(fps float64) {
	mu.Lock()
	defer mu.Unlock()
	if running {
		systray.SetTooltip(Tooltip(fps))
	}
}

// Stop removes the tray icon.
func Stop() {
	mu.Lock()
	r := running
	mu.Unlock()
	if r {
		systray.Quit()
	}
}
