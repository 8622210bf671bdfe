// Package eventloop drives capture, conversion and presentation from a single
// goroutine. Other goroutines talk to it only through Post.
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"screen-ascii-lens/src/gui"
	"screen-ascii-lens/src/messages"
	"screen-ascii-lens/src/mosaic"
	"screen-ascii-lens/src/screenshot"
)

// ErrClosed is returned by Post after the loop has shut down.
var ErrClosed = errors.New("event loop closed")

// Capture is the frame source polled on every tick.
type Capture interface {
	Acquire(timeout time.Duration) (*screenshot.Frame, screenshot.Status, error)
	Release()
}

// Presenter draws converted grids.
type Presenter interface {
	Resize(gridCols, gridRows int) error
	Render(grid []mosaic.Cell, cols, rows int) error
	Present() error
	SetStatus(text string)
	Close()
}

// TickStats summarises one tick for the trace hook.
type TickStats struct {
	At         time.Time
	Status     screenshot.Status
	Presented  bool
	Cols, Rows int
	Convert    time.Duration
	FPS        float64
	Err        error
}

// Options configures a Loop.
type Options struct {
	Tick           time.Duration
	CaptureTimeout time.Duration
	BlockWidth     int
	BlockHeight    int
	Band           int
	ShowStatus     bool
	// Trace is called at most once per tick, on the loop goroutine.
	Trace func(TickStats)
	// CopyText receives the mosaic text for CopyFrame.
	CopyText func(text string) error
}

// Loop owns every component of the live view.
type Loop struct {
	opts      Options
	source    Capture
	selector  *gui.RegionSelector
	border    gui.Border
	quantizer *mosaic.Quantizer
	surface   Presenter
	fps       *FPSMeter

	events chan messages.Message
	done   chan struct{}

	grid        []mosaic.Cell
	cols, rows  int
	needResize  bool
	lastStatus  screenshot.Status
	captureErrs int
	closeOnce   sync.Once
}

// New wires the components. A nil border draws nothing.
func New(opts Options, source Capture, selector *gui.RegionSelector, border gui.Border, quantizer *mosaic.Quantizer, surface Presenter) *Loop {
	if opts.Tick <= 0 {
		opts.Tick = 33 * time.Millisecond
	}
	if border == nil {
		border = gui.NoBorder()
	}
	return &Loop{
		opts:       opts,
		source:     source,
		selector:   selector,
		border:     border,
		quantizer:  quantizer,
		surface:    surface,
		fps:        NewFPSMeter(time.Second),
		events:     make(chan messages.Message, 64),
		done:       make(chan struct{}),
		needResize: true,
		lastStatus: screenshot.StatusPending,
	}
}

// Post queues msg for the loop goroutine.
func (l *Loop) Post(ctx context.Context, msg messages.Message) error {
	select {
	case <-l.done:
		return ErrClosed
	default:
	}
	select {
	case l.events <- msg:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPost queues msg without blocking. It reports false when the queue is
// full or the loop has closed.
func (l *Loop) TryPost(msg messages.Message) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.events <- msg:
		return true
	default:
		return false
	}
}

// Run ticks and handles messages until ctx is cancelled or a WindowClose
// message arrives. It releases everything before returning.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Close()

	l.fps.Reset(time.Now())
	l.geometryChanged(gui.ChangeResized)

	ticker := time.NewTicker(l.opts.Tick)
	defer ticker.Stop()
	log.Printf("LOOP: running, tick=%v region=%s", l.opts.Tick, l.selector.Rect())

	for {
		select {
		case <-ctx.Done():
			log.Printf("LOOP: context done: %v", ctx.Err())
			return ctx.Err()
		case msg := <-l.events:
			if !l.Handle(msg) {
				return nil
			}
		case now := <-ticker.C:
			l.Tick(now)
		}
	}
}

// Handle applies one message. It returns false when the loop should stop.
func (l *Loop) Handle(msg messages.Message) bool {
	switch m := msg.(type) {
	case messages.PointerDown:
		l.selector.PointerDown(m.X, m.Y)
	case messages.PointerMove:
		l.geometryChanged(l.selector.PointerMove(m.X, m.Y))
	case messages.PointerUp:
		// The release position stands in for any move dropped on a full queue.
		l.geometryChanged(l.selector.PointerMove(m.X, m.Y))
		l.selector.PointerUp()
	case messages.Nudge:
		dx, dy := m.Cols*l.opts.BlockWidth, m.Rows*l.opts.BlockHeight
		l.geometryChanged(l.selector.Nudge(dx, dy, m.Resize))
	case messages.WindowResize:
		log.Printf("LOOP: terminal resized to %dx%d", m.Cols, m.Rows)
		l.resize()
	case messages.CopyFrame:
		l.copyFrame(m.Source)
	case messages.Snapshot:
		l.snapshot(m.Reply)
	case messages.WindowClose:
		log.Printf("LOOP: close requested (%s)", m.Reason)
		return false
	default:
		log.Printf("LOOP: ignoring message %s", msg.Type())
	}
	return true
}

// Tick runs acquire, convert, render and present in that order. A pending or
// failed capture skips the rest of the tick. It reports whether a frame was
// presented.
func (l *Loop) Tick(now time.Time) bool {
	stats := TickStats{At: now}
	defer func() {
		stats.FPS = l.fps.FPS()
		if l.opts.Trace != nil {
			l.opts.Trace(stats)
		}
	}()

	frame, status, err := l.source.Acquire(l.opts.CaptureTimeout)
	stats.Status = status
	switch status {
	case screenshot.StatusPending:
		return false
	case screenshot.StatusFailed:
		stats.Err = err
		l.captureErrs++
		if l.lastStatus != screenshot.StatusFailed {
			log.Printf("LOOP: capture failed, skipping ticks until it recovers: %v", err)
		}
		l.lastStatus = status
		return false
	}
	if l.lastStatus == screenshot.StatusFailed {
		log.Printf("LOOP: capture recovered after %d failed ticks", l.captureErrs)
		l.captureErrs = 0
	}
	l.lastStatus = status

	if l.needResize && !l.resize() {
		return false
	}

	start := time.Now()
	grid, cols, rows := l.quantizer.Convert(frame, l.captureRect(), l.opts.BlockWidth, l.opts.BlockHeight)
	stats.Convert = time.Since(start)
	stats.Cols, stats.Rows = cols, rows
	if cols == 0 || rows == 0 {
		return false
	}

	if err := l.surface.Render(grid, cols, rows); err != nil {
		stats.Err = err
		return false
	}
	if l.opts.ShowStatus {
		l.surface.SetStatus(l.statusLine(cols, rows))
	}
	if err := l.surface.Present(); err != nil {
		stats.Err = err
		return false
	}
	l.grid, l.cols, l.rows = grid, cols, rows
	l.fps.Frame(now)
	stats.Presented = true
	return true
}

// FPS returns the last measured frame rate.
func (l *Loop) FPS() float64 { return l.fps.FPS() }

// Close releases the capture session, canvases and border. Safe to call more than once.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
		l.source.Release()
		l.surface.Close()
		l.border.Close()
		log.Printf("LOOP: closed")
	})
}

// captureRect is the region grown by the border band on every side.
func (l *Loop) captureRect() screenshot.Rect {
	return gui.CaptureRect(l.selector.Rect(), l.opts.Band)
}

func (l *Loop) geometryChanged(c gui.Change) {
	if c == gui.ChangeNone {
		return
	}
	l.border.Move(l.captureRect())
	if c == gui.ChangeResized {
		l.resize()
	}
}

func (l *Loop) resize() bool {
	cols, rows := gui.GridSize(l.selector.Rect(), l.opts.Band, l.opts.BlockWidth, l.opts.BlockHeight)
	if err := l.surface.Resize(cols, rows); err != nil {
		l.needResize = true
		return false
	}
	l.needResize = false
	return true
}

func (l *Loop) copyFrame(source string) {
	if l.cols == 0 || l.rows == 0 {
		log.Printf("LOOP: copy from %s ignored, nothing rendered yet", source)
		return
	}
	if l.opts.CopyText == nil {
		return
	}
	text := mosaic.Text(l.grid, l.cols, l.rows)
	if err := l.opts.CopyText(text); err != nil {
		log.Printf("LOOP: copy from %s failed: %v", source, err)
		return
	}
	log.Printf("LOOP: copied %dx%d mosaic (%d bytes) from %s", l.cols, l.rows, len(text), source)
}

func (l *Loop) snapshot(reply chan<- string) {
	var text string
	if l.cols > 0 && l.rows > 0 {
		text = mosaic.Text(l.grid, l.cols, l.rows)
	}
	select {
	case reply <- text:
	default:
		log.Printf("LOOP: snapshot reply dropped, receiver not ready")
	}
}

func (l *Loop) statusLine(cols, rows int) string {
	r := l.selector.Rect()
	return fmt.Sprintf(" %5.1f fps | %dx%d at %d,%d | grid %dx%d | arrows move, shift+arrows resize, c copy, q quit",
		l.fps.FPS(), r.Width(), r.Height(), r.Left, r.Top, cols, rows)
}
