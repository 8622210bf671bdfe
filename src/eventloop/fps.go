package eventloop

import "time"

// FPSMeter counts presented frames and publishes a rate once per window.
type FPSMeter struct {
	window time.Duration
	start  time.Time
	frames int
	fps    float64
}

// NewFPSMeter returns a meter with a one-second window when window <= 0.
func NewFPSMeter(window time.Duration) *FPSMeter {
	if window <= 0 {
		window = time.Second
	}
	return &FPSMeter{window: window}
}

// Reset starts a new window at now and clears the published rate.
func (m *FPSMeter) Reset(now time.Time) {
	m.start = now
	m.frames = 0
	m.fps = 0
}

// Frame records one presented frame at now.
func (m *FPSMeter) Frame(now time.Time) {
	if m.start.IsZero() {
		m.start = now
	}
	m.frames++
	if elapsed := now.Sub(m.start); elapsed >= m.window {
		m.fps = float64(m.frames) / elapsed.Seconds()
		m.frames = 0
		m.start = now
	}
}

// FPS returns the rate measured over the last completed window.
func (m *FPSMeter) FPS() float64 { return m.fps }
