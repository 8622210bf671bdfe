package worker

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"
)

// GrabFunc captures one desktop image. It is only ever called from a worker goroutine.
type GrabFunc func(ctx context.Context) (*image.RGBA, error)

// ResultCallback is invoked on grab completion (from a worker goroutine).
// The owner should pass a closure that posts back into its own goroutine.
type ResultCallback func(img *image.RGBA, err error)

// Pool is a fixed-size capture worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	jobs      chan job
	grab      GrabFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type job struct {
	ctx context.Context
	cb  ResultCallback
}

// New creates a worker pool. Size defaults to 1 when size<=0 because desktop
// capture APIs serialize internally anyway. Queue is 1 slot.
func New(size int, grab GrabFunc) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{jobs: make(chan job, 1), grab: grab}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				img, err := p.grabWithContext(j.ctx)
				j.cb(img, err)
			}
		}()
	}
}

// Submit enqueues a grab if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work. Safe to call more than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}

// grabWithContext runs the grab, converting a panic in the platform layer into an error.
func (p *Pool) grabWithContext(ctx context.Context) (img *image.RGBA, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("CAPTURE: grabber panicked: %v", r)
			img, err = nil, fmt.Errorf("grabber panic: %v", r)
		}
	}()
	return p.grab(ctx)
}
