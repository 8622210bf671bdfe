package main

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewRootCmdDefaults(t *testing.T) {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.n != 50 {
		t.Fatalf("Expected default n=50, got %d", opts.n)
	}
	if opts.mode != "std" {
		t.Fatalf("Expected default mode=std, got %q", opts.mode)
	}
	if opts.deadline != 5*time.Second {
		t.Fatalf("Expected default deadline=5s, got %v", opts.deadline)
	}
}

func TestNewRootCmdCustomFlags(t *testing.T) {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--n", "3", "--mode", "clip", "--deadline", "7s"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.n != 3 || opts.mode != "clip" || opts.deadline != 7*time.Second {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestStressCountsOutcomes(t *testing.T) {
	var calls int32
	outcomes := []func() (bool, string, error){
		func() (bool, string, error) { return true, "#", nil },
		func() (bool, string, error) { return true, "", errors.New("nothing rendered yet") },
		func() (bool, string, error) { return false, "", nil },
		func() (bool, string, error) { return true, "", errors.New("clipboard") },
	}
	got := stress(8, time.Second, func(context.Context) (bool, string, error) {
		i := atomic.AddInt32(&calls, 1) - 1
		return outcomes[i%4]()
	})
	if got.ok != 2 || got.empty != 2 || got.missing != 2 || got.errs != 2 {
		t.Fatalf("tally = %+v", got)
	}

	var out bytes.Buffer
	report(&out, 8, got)
	if out.String() != "launched=8 ok=2 empty=2 missing=2 err=2\n" {
		t.Errorf("report = %q", out.String())
	}
}

func TestRejectsUnknownMode(t *testing.T) {
	cmd := newRootCmd(&stressOptions{})
	cmd.SetArgs([]string{"--mode", "bogus"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("Execute accepted an unknown mode")
	}
}
