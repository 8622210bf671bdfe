package runtimeinit

import (
	"fmt"
	"log"

	"screen-ascii-lens/src/clipboard"
	"screen-ascii-lens/src/config"
	"screen-ascii-lens/src/mosaic"
	"screen-ascii-lens/src/notification"
	"screen-ascii-lens/src/screenshot"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(bool)
	// Grabber overrides the desktop grabber; nil uses kbinani/screenshot.
	Grabber                  screenshot.Grabber
	ShowBlockingCaptureError bool
}

// Runtime is everything the live view needs before the terminal is taken over.
type Runtime struct {
	Config       *config.Config
	Source       *screenshot.Source
	Quantizer    *mosaic.Quantizer
	ClipboardErr error
}

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg.EnableFileLogging)
	}

	palette, err := mosaic.NewPalette(cfg.Palette)
	if err != nil {
		return nil, err
	}

	source := screenshot.NewSource(opts.Grabber)
	if err := source.Init(); err != nil {
		if opts.ShowBlockingCaptureError {
			notification.ShowBlockingError("Screen capture unavailable", fmt.Sprintf("Desktop capture could not be started: %v\n\nCheck that a display is attached and screen recording is permitted.", err))
		}
		return nil, fmt.Errorf("capture init failed: %w", err)
	}
	log.Printf("Capture session ready: desktop %v", source.Bounds())

	// The live view works without a clipboard, only copying is lost.
	clipErr := clipboard.Init()
	if clipErr != nil {
		log.Printf("Clipboard disabled: %v", clipErr)
	}

	return &Runtime{
		Config:       cfg,
		Source:       source,
		Quantizer:    mosaic.New(palette),
		ClipboardErr: clipErr,
	}, nil
}
