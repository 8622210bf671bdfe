package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"screen-ascii-lens/src/eventloop"
	"screen-ascii-lens/src/messages"
	"screen-ascii-lens/src/screenshot"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"screen-ascii-lens", "-no-hook", "-region", "0,0,100,100"},
			out:  []string{"screen-ascii-lens", "--no-hook", "--region", "0,0,100,100"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"screen-ascii-lens", "-tick-ms=16", "-env=/tmp/lens.env"},
			out:  []string{"screen-ascii-lens", "--tick-ms=16", "--env=/tmp/lens.env"},
		},
		{
			name: "Leaves other flags unchanged",
			in:   []string{"screen-ascii-lens", "--tray", "--other"},
			out:  []string{"screen-ascii-lens", "--tray", "--other"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--region", "1,2,300,200", "--tick-ms", "16", "--no-border", "--tray"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	lo := opts.loadOptions()
	if lo.RegionOverride != "1,2,300,200" || lo.TickOverride != 16*time.Millisecond {
		t.Fatalf("unexpected load options: %+v", lo)
	}
	if !lo.DisableBorder || !lo.EnableTray || lo.DisableGlobalHook {
		t.Fatalf("unexpected switches: %+v", lo)
	}
}

func TestTickReporter(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := newTickReporter(time.Second)

	ticks := []eventloop.TickStats{
		{At: t0, Status: screenshot.StatusFrame, Presented: true, Convert: 2 * time.Millisecond},
		{At: t0.Add(300 * time.Millisecond), Status: screenshot.StatusPending},
		{At: t0.Add(600 * time.Millisecond), Status: screenshot.StatusFailed},
	}
	for _, s := range ticks {
		if _, ok := r.observe(s); ok {
			t.Fatalf("reported before the interval elapsed at %v", s.At)
		}
	}

	line, ok := r.observe(eventloop.TickStats{
		At: t0.Add(time.Second), Status: screenshot.StatusFrame, Presented: true,
		Convert: 4 * time.Millisecond, FPS: 29.5, Cols: 51, Rows: 20,
	})
	if !ok {
		t.Fatal("no report after one second")
	}
	for _, want := range []string{"29.5 fps", "presented=2", "pending=1", "failed=1", "grid=51x20", "convert=3ms"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
	if _, ok := r.observe(eventloop.TickStats{At: t0.Add(1500 * time.Millisecond)}); ok {
		t.Error("reporter did not restart its window")
	}
}

type fakePoster struct {
	posted    []string
	tried     []string
	queueFull bool
}

func (f *fakePoster) Post(ctx context.Context, msg messages.Message) error {
	f.posted = append(f.posted, msg.Type())
	return nil
}

func (f *fakePoster) TryPost(msg messages.Message) bool {
	f.tried = append(f.tried, msg.Type())
	return !f.queueFull
}

func TestPosterDropsMovesOnFullQueue(t *testing.T) {
	f := &fakePoster{queueFull: true}
	post := newPoster(context.Background(), f)

	post(messages.PointerDown{X: 1, Y: 1})
	post(messages.PointerMove{X: 2, Y: 2})
	post(messages.PointerMove{X: 3, Y: 3})
	post(messages.PointerUp{X: 3, Y: 3})

	if len(f.tried) != 2 {
		t.Errorf("moves tried = %v, want 2 non-blocking attempts", f.tried)
	}
	want := []string{messages.TypePointerDown, messages.TypePointerUp}
	if len(f.posted) != len(want) || f.posted[0] != want[0] || f.posted[1] != want[1] {
		t.Errorf("posted = %v, want %v", f.posted, want)
	}
}
