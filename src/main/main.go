package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"screen-ascii-lens/src/clipboard"
	"screen-ascii-lens/src/config"
	"screen-ascii-lens/src/eventloop"
	"screen-ascii-lens/src/gui"
	"screen-ascii-lens/src/hotkey"
	"screen-ascii-lens/src/logutil"
	"screen-ascii-lens/src/messages"
	"screen-ascii-lens/src/runtimeinit"
	"screen-ascii-lens/src/screenshot"
	"screen-ascii-lens/src/singleinstance"
	"screen-ascii-lens/src/surface"
	"screen-ascii-lens/src/tray"
)

type mainOptions struct {
	envPath    string
	region     string
	blockWidth int
	charAspect float64
	palette    string
	tickMS     int
	noHook     bool
	noBorder   bool
	tray       bool
	logFile    bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"screen-ascii-lens"}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-ascii-lens",
		Short:         "Live glyph mosaic of a screen region in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLens(cmd.Context(), *opts)
		},
	}

	cmd.Flags().StringVar(&opts.envPath, "env", "", "Path to a .env config file (highest precedence)")
	cmd.Flags().StringVar(&opts.region, "region", "", "Initial region as x,y,w,h in screen pixels")
	cmd.Flags().IntVar(&opts.blockWidth, "block-width", 0, "Block width in pixels")
	cmd.Flags().Float64Var(&opts.charAspect, "char-aspect", 0, "Character height/width ratio")
	cmd.Flags().StringVar(&opts.palette, "palette", "", "Glyph palette, darkest first")
	cmd.Flags().IntVar(&opts.tickMS, "tick-ms", 0, "Tick interval in milliseconds")
	cmd.Flags().BoolVar(&opts.noHook, "no-hook", false, "Disable the global mouse/keyboard hook")
	cmd.Flags().BoolVar(&opts.noBorder, "no-border", false, "Do not draw the region border on screen")
	cmd.Flags().BoolVar(&opts.tray, "tray", false, "Show a system tray icon")
	cmd.Flags().BoolVar(&opts.logFile, "log-file", false, "Write logs to screen_ascii_lens.log")

	return cmd
}

func (o mainOptions) loadOptions() config.LoadOptions {
	return config.LoadOptions{
		EnvPathOverride:    o.envPath,
		RegionOverride:     o.region,
		BlockWidthOverride: o.blockWidth,
		CharAspectOverride: o.charAspect,
		PaletteOverride:    o.palette,
		TickOverride:       time.Duration(o.tickMS) * time.Millisecond,
		DisableGlobalHook:  o.noHook,
		DisableBorder:      o.noBorder,
		EnableTray:         o.tray,
		EnableFileLogging:  o.logFile,
	}
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	long := []string{"env", "region", "block-width", "char-aspect", "palette", "tick-ms", "no-hook", "no-border", "tray", "log-file"}
	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range long {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}

func runLens(ctx context.Context, opts mainOptions) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal; use the mosaic converter to write to files or pipes")
	}

	// Ensure DPI awareness before creating any windows or querying metrics
	enableDPIAwareness()

	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions:              opts.loadOptions(),
		SetupLogging:             logutil.Setup,
		ShowBlockingCaptureError: true,
	})
	if err != nil {
		return err
	}
	cfg, source := rt.Config, rt.Source
	logMonitorConfiguration()

	terminal, err := surface.NewTerminal()
	if err != nil {
		source.Release()
		return err
	}
	defer terminal.Fini()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	border := gui.NoBorder()
	if cfg.EnableBorder {
		border = gui.NewBorder(cfg.BorderBand)
	}
	selector := gui.NewRegionSelector(cfg.Region, gui.Options{
		Band:      cfg.BorderBand,
		MinWidth:  cfg.MinRegionWidth,
		MinHeight: cfg.MinRegionHeight,
		Outset:    2 * cfg.BorderBand,
	})

	reporter := newTickReporter(time.Second)
	loop := eventloop.New(eventloop.Options{
		Tick:           cfg.TickInterval,
		CaptureTimeout: cfg.CaptureTimeout,
		BlockWidth:     cfg.BlockWidth,
		BlockHeight:    cfg.BlockHeight,
		Band:           cfg.BorderBand,
		ShowStatus:     cfg.ShowStatus,
		Trace: func(s eventloop.TickStats) {
			if line, ok := reporter.observe(s); ok {
				log.Print(line)
				tray.UpdateFPS(s.FPS)
			}
		},
		CopyText: clipboard.Write,
	}, source, selector, border, rt.Quantizer, surface.New(terminal, cfg.ShowStatus))

	post := newPoster(ctx, loop)

	go terminal.Pump(ctx, post)

	// A second lens would react to the same global pointer gestures.
	ports := singleinstance.PortRange{Start: cfg.SnapshotPortStart, End: cfg.SnapshotPortEnd}
	if port, ok := singleinstance.DetectResidentPort(ctx, ports); ok {
		log.Printf("Another lens is resident on port %d, global hook and snapshot server disabled", port)
		cfg.EnableGlobalHook = false
	} else {
		srv := singleinstance.NewServer(ports)
		if err := srv.Start(ctx); err != nil {
			log.Printf("Snapshot server disabled: %v", err)
		} else {
			defer srv.Close()
			go serveSnapshots(ctx, srv, loopFetcher(post), clipboard.Write)
		}
	}
	if cfg.EnableGlobalHook {
		hotkey.Listen(ctx, hotkey.Options{Pointer: true, CopyCombo: cfg.CopyHotkey}, post)
	}
	if cfg.EnableTray {
		tray.Start(tray.Actions{
			OnCopy: func() { post(messages.CopyFrame{Source: "tray"}) },
			OnQuit: func() { post(messages.WindowClose{Reason: "tray"}) },
		})
		defer tray.Stop()
	}

	log.Printf("Screen ASCII Lens initialized: region=%s block=%dx%d tick=%v config=%q",
		cfg.Region, cfg.BlockWidth, cfg.BlockHeight, cfg.TickInterval, cfg.EnvPath)

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("event loop stopped: %w", err)
	}
	return nil
}

// poster is the part of the event loop input sources write to.
type poster interface {
	Post(ctx context.Context, msg messages.Message) error
	TryPost(msg messages.Message) bool
}

// newPoster returns the post function shared by every input source. Pointer
// moves never block the caller, so a slow tick cannot stall the OS hook; the
// loop only needs the latest position since moves are relative to the press.
func newPoster(ctx context.Context, p poster) func(messages.Message) {
	return func(msg messages.Message) {
		if _, ok := msg.(messages.PointerMove); ok {
			p.TryPost(msg)
			return
		}
		if err := p.Post(ctx, msg); err != nil && !errors.Is(err, eventloop.ErrClosed) && ctx.Err() == nil {
			log.Printf("Dropped %s: %v", msg.Type(), err)
		}
	}
}

// tickReporter condenses per-tick stats into one log line per interval.
type tickReporter struct {
	interval  time.Duration
	start     time.Time
	presented int
	pending   int
	failed    int
	convert   time.Duration
}

func newTickReporter(interval time.Duration) *tickReporter {
	return &tickReporter{interval: interval}
}

func (r *tickReporter) observe(s eventloop.TickStats) (string, bool) {
	if r.start.IsZero() {
		r.start = s.At
	}
	switch {
	case s.Presented:
		r.presented++
		r.convert += s.Convert
	case s.Status == screenshot.StatusPending:
		r.pending++
	case s.Status == screenshot.StatusFailed:
		r.failed++
	}
	if s.At.Sub(r.start) < r.interval {
		return "", false
	}

	var avg time.Duration
	if r.presented > 0 {
		avg = r.convert / time.Duration(r.presented)
	}
	line := fmt.Sprintf("LOOP: %.1f fps, presented=%d pending=%d failed=%d grid=%dx%d convert=%v",
		s.FPS, r.presented, r.pending, r.failed, s.Cols, s.Rows, avg)
	*r = tickReporter{interval: r.interval, start: s.At}
	return line, true
}
