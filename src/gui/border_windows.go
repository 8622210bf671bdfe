//go:build windows

package gui

import (
	"fmt"
	"log"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"screen-ascii-lens/src/screenshot"

	"github.com/lxn/win"
)

const wmBorderQuit = win.WM_USER + 0x31

type windowsBorder struct {
	thickness int
	strips    [4]win.HWND
	done      chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewBorder creates four topmost strips on a dedicated UI thread. On failure
// it logs and falls back to a no-op border.
func NewBorder(thickness int) Border {
	b := &windowsBorder{thickness: thickness, done: make(chan struct{})}
	ready := make(chan error, 1)
	go b.run(ready)
	if err := <-ready; err != nil {
		log.Printf("SELECT: border overlay unavailable: %v", err)
		return noopBorder{}
	}
	return b
}

func (b *windowsBorder) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(b.done)

	className := syscall.StringToUTF16Ptr(fmt.Sprintf("LensBorder_%d", time.Now().UnixNano()))
	wndClass := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		LpfnWndProc:   syscall.NewCallback(borderWndProc),
		HInstance:     win.GetModuleHandle(nil),
		HbrBackground: win.HBRUSH(win.COLOR_HIGHLIGHT + 1),
		LpszClassName: className,
	}
	if atom := win.RegisterClassEx(&wndClass); atom == 0 {
		ready <- fmt.Errorf("failed to register border window class")
		return
	}
	defer win.UnregisterClass(className)

	for i := range b.strips {
		hwnd := win.CreateWindowEx(
			win.WS_EX_TOPMOST|win.WS_EX_TOOLWINDOW,
			className,
			nil,
			win.WS_POPUP,
			0, 0, 1, 1,
			0, 0, win.GetModuleHandle(nil), nil,
		)
		if hwnd == 0 {
			for _, h := range b.strips[:i] {
				win.DestroyWindow(h)
			}
			ready <- fmt.Errorf("failed to create border strip %d", i)
			return
		}
		b.strips[i] = hwnd
	}
	log.Printf("SELECT: border overlay created (%d px)", b.thickness)
	ready <- nil

	var msg win.MSG
	for {
		ret := win.GetMessage(&msg, 0, 0, 0)
		if ret == 0 || ret == -1 {
			break
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
	for _, h := range b.strips {
		win.DestroyWindow(h)
	}
}

func (b *windowsBorder) Move(r screenshot.Rect) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for i, s := range stripRects(r, b.thickness) {
		win.SetWindowPos(b.strips[i], win.HWND_TOPMOST,
			int32(s.Left), int32(s.Top), int32(s.Width()), int32(s.Height()),
			win.SWP_NOACTIVATE|win.SWP_SHOWWINDOW)
	}
}

func (b *windowsBorder) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	win.PostMessage(b.strips[0], wmBorderQuit, 0, 0)
	<-b.done
	log.Printf("SELECT: border overlay closed")
}

func borderWndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	switch msg {
	case wmBorderQuit:
		win.PostQuitMessage(0)
		return 0
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}
