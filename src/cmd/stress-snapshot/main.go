package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"screen-ascii-lens/src/config"
	"screen-ascii-lens/src/singleinstance"
)

type stressOptions struct {
	n        int
	mode     string
	deadline time.Duration
}

type tally struct {
	ok, empty, missing, errs int32
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-snapshot",
		Short:         "Fire concurrent snapshot requests at a running lens",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.mode != "std" && opts.mode != "clip" {
				return fmt.Errorf("unknown mode %q (want std or clip)", opts.mode)
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			client := singleinstance.NewClient(singleinstance.PortRange{Start: cfg.SnapshotPortStart, End: cfg.SnapshotPortEnd})
			t := stress(opts.n, opts.deadline, func(ctx context.Context) (bool, string, error) {
				return client.TrySnapshot(ctx, opts.mode == "std")
			})
			report(cmd.OutOrStdout(), opts.n, t)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().StringVar(&opts.mode, "mode", "std", "std|clip: return text or copy on the resident")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

// stress launches n concurrent requests and counts their outcomes.
func stress(n int, deadline time.Duration, try func(ctx context.Context) (bool, string, error)) tally {
	var wg sync.WaitGroup
	var t tally
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), deadline)
			defer cancel()
			delegated, _, err := try(ctx)
			switch {
			case !delegated:
				atomic.AddInt32(&t.missing, 1)
			case err != nil && strings.Contains(err.Error(), "nothing rendered"):
				atomic.AddInt32(&t.empty, 1)
			case err != nil:
				atomic.AddInt32(&t.errs, 1)
			default:
				atomic.AddInt32(&t.ok, 1)
			}
		}()
	}
	wg.Wait()
	return t
}

func report(w io.Writer, n int, t tally) {
	fmt.Fprintf(w, "launched=%d ok=%d empty=%d missing=%d err=%d\n", n, t.ok, t.empty, t.missing, t.errs)
}
