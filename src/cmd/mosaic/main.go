package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"screen-ascii-lens/src/config"
	"screen-ascii-lens/src/mosaic"
	"screen-ascii-lens/src/screenshot"
	"screen-ascii-lens/src/singleinstance"
)

const (
	maxFileSizeMB = 32
	maxFileSize   = maxFileSizeMB * 1024 * 1024
)

type cliOptions struct {
	filePath   string
	format     string
	blockWidth int
	charAspect float64
	palette    string
	live       bool
	copy       bool
	verbose    bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args), os.Stdin, os.Stdout)
}

func runWithArgs(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		args = []string{"mosaic"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mosaic",
		Short:         "Convert a PNG or JPEG image to a glyph mosaic",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.live {
				return runLive(cmd.Context(), *opts, cmd.OutOrStdout())
			}
			return runWithOptions(*opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to PNG/JPEG file (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.format, "format", "ansi", "Output format: ansi, text or json")
	cmd.Flags().IntVar(&opts.blockWidth, "block-width", 0, "Block width in pixels (default from config)")
	cmd.Flags().Float64Var(&opts.charAspect, "char-aspect", 0, "Character height/width ratio (default from config)")
	cmd.Flags().StringVar(&opts.palette, "palette", "", "Glyph palette, darkest first (default from config)")
	cmd.Flags().BoolVar(&opts.live, "live", false, "Fetch the current mosaic from a running lens instead of a file")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "With --live, copy to the clipboard of the running lens")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")

	return cmd
}

func runWithOptions(opts cliOptions, stdin io.Reader, stdout io.Writer) error {
	// Configure logging BEFORE any other operations.
	if !opts.verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(os.Stderr)
		fmt.Fprintf(os.Stderr, "[verbose] Starting mosaic converter\n")
	}

	if err := checkFormat(opts.format); err != nil {
		return err
	}
	if opts.filePath == "" {
		return errors.New(`required flag "file" not set (or use --live)`)
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		BlockWidthOverride: opts.blockWidth,
		CharAspectOverride: opts.charAspect,
		PaletteOverride:    opts.palette,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Block %dx%d, palette of %d glyphs\n", cfg.BlockWidth, cfg.BlockHeight, len([]rune(cfg.Palette)))
	}

	imageData, err := readInput(opts.filePath, stdin)
	if err != nil {
		return err
	}
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Read %d bytes\n", len(imageData))
	}

	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return fmt.Errorf("input is not a valid PNG or JPEG image: %w", err)
	}
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[verbose] Decoded %s image %v\n", format, img.Bounds())
	}

	palette, err := mosaic.NewPalette(cfg.Palette)
	if err != nil {
		return err
	}
	startTime := time.Now()
	frame := screenshot.FrameFromImage(img, startTime)
	grid, cols, rows := mosaic.New(palette).Convert(frame, frame.Rect(), cfg.BlockWidth, cfg.BlockHeight)
	elapsed := time.Since(startTime)
	if cols == 0 || rows == 0 {
		return fmt.Errorf("image %v is too small to convert", img.Bounds())
	}

	return outputResult(stdout, opts.format, grid, cols, rows, opts.filePath, elapsed)
}

func checkFormat(format string) error {
	switch format {
	case "ansi", "text", "json":
		return nil
	}
	return fmt.Errorf("unknown format %q (want ansi, text or json)", format)
}

// runLive asks a resident lens for the mosaic it last presented. The resident
// only holds glyphs, so every format prints plain text except json.
func runLive(ctx context.Context, opts cliOptions, stdout io.Writer) error {
	if !opts.verbose {
		log.SetOutput(io.Discard)
	}
	if err := checkFormat(opts.format); err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	ports := singleinstance.PortRange{Start: cfg.SnapshotPortStart, End: cfg.SnapshotPortEnd}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	startTime := time.Now()
	delegated, text, err := singleinstance.NewClient(ports).TrySnapshot(ctx, !opts.copy)
	if !delegated {
		if err != nil {
			return fmt.Errorf("no running lens found on ports %s: %w", ports, err)
		}
		return fmt.Errorf("no running lens found on ports %s", ports)
	}
	if err != nil {
		return fmt.Errorf("running lens refused the snapshot: %w", err)
	}
	if opts.copy {
		if opts.verbose {
			fmt.Fprintf(os.Stderr, "[verbose] Mosaic copied by the running lens\n")
		}
		return nil
	}

	lines := strings.Split(text, "\n")
	if opts.format != "json" {
		fmt.Fprintln(stdout, text)
		return nil
	}
	cols := 0
	if len(lines) > 0 {
		cols = len([]rune(lines[0]))
	}
	return encodeJSON(stdout, MosaicResult{
		Source:    "live",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Duration:  time.Since(startTime).Seconds(),
		Cols:      cols,
		Rows:      len(lines),
		Lines:     lines,
	})
}

func readInput(filePath string, stdin io.Reader) ([]byte, error) {
	var (
		imageData []byte
		err       error
	)
	if filePath == "-" {
		imageData, err = io.ReadAll(io.LimitReader(stdin, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		imageData, err = os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
		}
	}

	if len(imageData) == 0 {
		return nil, fmt.Errorf("input file is empty")
	}
	if len(imageData) > maxFileSize {
		return nil, fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	return imageData, nil
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	long := []string{"file", "format", "block-width", "char-aspect", "palette", "live", "copy", "verbose"}
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

func encodeJSON(w io.Writer, result MosaicResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

type MosaicResult struct {
	Source    string   `json:"source"`
	Timestamp string   `json:"timestamp"`
	Duration  float64  `json:"duration_seconds"`
	Cols      int      `json:"cols"`
	Rows      int      `json:"rows"`
	Lines     []string `json:"lines"`
	Cells     []Cell   `json:"cells,omitempty"`
}

// Cell is the JSON form of one glyph: [r, g, b] background and gray foreground.
type Cell struct {
	Glyph string   `json:"glyph"`
	Fg    uint8    `json:"fg"`
	Bg    [3]uint8 `json:"bg"`
}

func outputResult(w io.Writer, format string, grid []mosaic.Cell, cols, rows int, sourcePath string, elapsed time.Duration) error {
	switch format {
	case "json":
		cells := make([]Cell, len(grid))
		for i, c := range grid {
			cells[i] = Cell{Glyph: string(c.Glyph), Fg: c.Fg, Bg: [3]uint8{c.Bg.R, c.Bg.G, c.Bg.B}}
		}
		result := MosaicResult{
			Source:    sourcePath,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Duration:  elapsed.Seconds(),
			Cols:      cols,
			Rows:      rows,
			Lines:     strings.Split(mosaic.Text(grid, cols, rows), "\n"),
			Cells:     cells,
		}

		return encodeJSON(w, result)
	case "text":
		fmt.Fprintln(w, mosaic.Text(grid, cols, rows))
	default:
		return mosaic.WriteANSI(w, grid, cols, rows)
	}

	return nil
}
