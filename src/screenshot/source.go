package screenshot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"screen-ascii-lens/src/worker"
)

// ErrNotInitialized is returned by Acquire when the session could not be (re)established.
var ErrNotInitialized = errors.New("capture session not initialized")

// Status classifies the outcome of Acquire.
type Status int

const (
	// StatusFrame means a new frame was returned.
	StatusFrame Status = iota
	// StatusPending means no new frame arrived within the timeout. Not an error.
	StatusPending
	// StatusFailed means the capture failed; the session has been released.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFrame:
		return "frame"
	case StatusPending:
		return "pending"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type grabResult struct {
	img *image.RGBA
	err error
	at  time.Time
}

// Source owns the capture session. Acquire is a non-blocking poll: grabs run
// on a single background worker and are handed over through a 1-slot mailbox,
// so at most one grab is in flight and the caller never stalls longer than the
// timeout it passes.
//
// Source is not safe for concurrent use; it belongs to the event loop goroutine.
type Source struct {
	grabber Grabber
	now     func() time.Time

	ready    bool
	bounds   image.Rectangle
	pool     *worker.Pool
	results  chan grabResult
	inFlight bool
	ctx      context.Context
	cancel   context.CancelFunc
	current  *Frame
}

// NewSource creates a source around g. Call Init before the first Acquire.
func NewSource(g Grabber) *Source {
	if g == nil {
		g = DesktopGrabber{}
	}
	return &Source{grabber: g, now: time.Now}
}

// Init establishes the capture session. It is a no-op when already initialized.
func (s *Source) Init() error {
	if s.ready {
		return nil
	}
	bounds, err := s.grabber.Bounds()
	if err != nil {
		return fmt.Errorf("failed to query desktop bounds: %w", err)
	}
	if bounds.Empty() {
		return ErrNoDisplays
	}

	s.bounds = bounds
	s.results = make(chan grabResult, 1)
	s.ctx, s.cancel = context.WithCancel(context.Background())
	grabber := s.grabber
	s.pool = worker.New(1, func(ctx context.Context) (*image.RGBA, error) {
		return grabber.Grab(ctx, bounds)
	})
	s.inFlight = false
	s.ready = true
	log.Printf("CAPTURE: session ready, desktop %v", bounds)
	return nil
}

// Bounds returns the desktop area covered by frames of the current session.
func (s *Source) Bounds() image.Rectangle { return s.bounds }

// Acquire returns the newest frame, StatusPending when none arrived within
// timeout, or StatusFailed with the cause. A failed session is released and
// re-established lazily on a later call.
func (s *Source) Acquire(timeout time.Duration) (*Frame, Status, error) {
	if !s.ready {
		if err := s.Init(); err != nil {
			return nil, StatusFailed, fmt.Errorf("%w: %v", ErrNotInitialized, err)
		}
	}
	s.request()

	var res grabResult
	if timeout <= 0 {
		select {
		case res = <-s.results:
		default:
			return nil, StatusPending, nil
		}
	} else {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case res = <-s.results:
		case <-timer.C:
			return nil, StatusPending, nil
		}
	}
	s.inFlight = false

	if res.err != nil {
		s.Release()
		return nil, StatusFailed, fmt.Errorf("capture failed: %w", res.err)
	}
	frame, err := newFrame(res.img, s.bounds.Min, res.at)
	if err != nil {
		s.Release()
		return nil, StatusFailed, err
	}

	s.current.Release()
	s.current = frame
	// Queue the next grab so it is ready by the next poll.
	s.request()
	return frame, StatusFrame, nil
}

func (s *Source) request() {
	if s.inFlight {
		return
	}
	results := s.results
	now := s.now
	if s.pool.Submit(s.ctx, func(img *image.RGBA, err error) {
		results <- grabResult{img: img, err: err, at: now()}
	}) {
		s.inFlight = true
	}
}

// Release tears down the session and drops the current frame. Safe to call more than once.
func (s *Source) Release() {
	if s.current != nil {
		s.current.Release()
		s.current = nil
	}
	if !s.ready {
		return
	}
	s.cancel()
	s.pool.Close()
	s.pool = nil
	s.results = nil
	s.inFlight = false
	s.ready = false
	log.Printf("CAPTURE: session released")
}
