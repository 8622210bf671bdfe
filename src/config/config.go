package config

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"screen-ascii-lens/src/mosaic"
	"screen-ascii-lens/src/screenshot"
)

const (
	// EnvPathEnvVar names a config file used when no .env sits next to the executable.
	EnvPathEnvVar = "SCREEN_ASCII_LENS"

	DefaultTickIntervalMS   = 33
	DefaultCaptureTimeoutMS = 0
	DefaultBlockWidth       = 8
	DefaultCharAspect       = 2.0
	DefaultBorderBand       = 4
	DefaultMinRegionWidth   = 60
	DefaultMinRegionHeight  = 60
	DefaultRegion           = "100,100,400,300"
	DefaultCopyHotkey       = "Ctrl+Alt+C"

	// The resident lens answers snapshot requests on the first free-standing
	// port of this loopback range; clients scan all of it.
	DefaultSnapshotPortStart = 49560
	DefaultSnapshotPortEnd   = 49580
)

// ErrInvalid is wrapped by errors about unusable configuration values.
var ErrInvalid = errors.New("invalid configuration")

// LoadOptions carry command-line overrides; zero values leave the loaded value alone.
type LoadOptions struct {
	EnvPathOverride    string
	RegionOverride     string
	BlockWidthOverride int
	CharAspectOverride float64
	PaletteOverride    string
	TickOverride       time.Duration
	DisableGlobalHook  bool
	DisableBorder      bool
	EnableTray         bool
	EnableFileLogging  bool
}

type Config struct {
	TickInterval    time.Duration
	CaptureTimeout  time.Duration
	BlockWidth      int
	CharAspect      float64
	BlockHeight     int
	BorderBand      int
	MinRegionWidth  int
	MinRegionHeight int
	Region          screenshot.Rect
	Palette         string

	CopyHotkey        string
	EnableGlobalHook  bool
	EnableBorder      bool
	EnableTray        bool
	EnableFileLogging bool
	ShowStatus        bool

	// SnapshotPortStart..SnapshotPortEnd (inclusive) is the loopback range of
	// the snapshot endpoint, always within [1024, 65535] with Start <= End.
	SnapshotPortStart int
	SnapshotPortEnd   int

	// EnvPath is the config file that was read, if any.
	EnvPath string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) explicit --env path
	// 2) .env in the application (executable) directory
	// 3) SCREEN_ASCII_LENS env var as a path to a config file
	// Values already in the environment win over the file.
	envPath := strings.TrimSpace(opts.EnvPathOverride)
	if envPath == "" {
		envPath = resolveEnvPath()
	}
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("%w: cannot read %s: %v", ErrInvalid, envPath, err)
		}
	}

	cfg := &Config{
		TickInterval:      time.Duration(getEnvInt("TICK_INTERVAL_MS", DefaultTickIntervalMS, 1)) * time.Millisecond,
		CaptureTimeout:    time.Duration(getEnvInt("CAPTURE_TIMEOUT_MS", DefaultCaptureTimeoutMS, 0)) * time.Millisecond,
		BlockWidth:        getEnvInt("BLOCK_WIDTH", DefaultBlockWidth, 1),
		CharAspect:        getEnvFloat("CHAR_ASPECT", DefaultCharAspect),
		BorderBand:        getEnvInt("BORDER_BAND", DefaultBorderBand, 0),
		MinRegionWidth:    getEnvInt("MIN_REGION_WIDTH", DefaultMinRegionWidth, 1),
		MinRegionHeight:   getEnvInt("MIN_REGION_HEIGHT", DefaultMinRegionHeight, 1),
		Palette:           getEnvWithDefault("PALETTE", mosaic.DefaultPalette),
		CopyHotkey:        getEnvWithDefault("COPY_HOTKEY", DefaultCopyHotkey),
		EnableGlobalHook:  getEnvBool("ENABLE_GLOBAL_HOOK", true),
		EnableBorder:      getEnvBool("ENABLE_BORDER", true),
		EnableTray:        getEnvBool("ENABLE_TRAY", false),
		EnableFileLogging: getEnvBool("ENABLE_FILE_LOGGING", false),
		ShowStatus:        getEnvBool("SHOW_STATUS", true),
		EnvPath:           envPath,
	}

	cfg.SnapshotPortStart, cfg.SnapshotPortEnd = snapshotPorts()

	region, err := ParseRegion(getEnvWithDefault("REGION", DefaultRegion))
	if err != nil {
		log.Printf("Config: %v, using %s", err, DefaultRegion)
		region, _ = ParseRegion(DefaultRegion)
	}
	cfg.Region = region

	if err := cfg.apply(opts); err != nil {
		return nil, err
	}
	if _, err := mosaic.NewPalette(cfg.Palette); err != nil {
		return nil, fmt.Errorf("%w: PALETTE: %v", ErrInvalid, err)
	}
	cfg.BlockHeight = blockHeight(cfg.BlockWidth, cfg.CharAspect)
	return cfg, nil
}

func (c *Config) apply(opts LoadOptions) error {
	if s := strings.TrimSpace(opts.RegionOverride); s != "" {
		r, err := ParseRegion(s)
		if err != nil {
			return err
		}
		c.Region = r
	}
	if opts.BlockWidthOverride < 0 {
		return fmt.Errorf("%w: block width %d", ErrInvalid, opts.BlockWidthOverride)
	}
	if opts.BlockWidthOverride > 0 {
		c.BlockWidth = opts.BlockWidthOverride
	}
	if opts.CharAspectOverride < 0 || math.IsNaN(opts.CharAspectOverride) {
		return fmt.Errorf("%w: char aspect %v", ErrInvalid, opts.CharAspectOverride)
	}
	if opts.CharAspectOverride > 0 {
		c.CharAspect = opts.CharAspectOverride
	}
	if opts.PaletteOverride != "" {
		c.Palette = opts.PaletteOverride
	}
	if opts.TickOverride < 0 {
		return fmt.Errorf("%w: tick %v", ErrInvalid, opts.TickOverride)
	}
	if opts.TickOverride > 0 {
		c.TickInterval = opts.TickOverride
	}
	if opts.DisableGlobalHook {
		c.EnableGlobalHook = false
	}
	if opts.DisableBorder {
		c.EnableBorder = false
	}
	if opts.EnableTray {
		c.EnableTray = true
	}
	if opts.EnableFileLogging {
		c.EnableFileLogging = true
	}
	return nil
}

// blockHeight is the pixel height of a glyph block for a character cell that
// is aspect times taller than wide.
func blockHeight(blockWidth int, aspect float64) int {
	return max(1, int(math.Round(float64(blockWidth)*aspect)))
}

// ParseRegion parses "x,y,w,h" with positive w and h.
func ParseRegion(s string) (screenshot.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return screenshot.Rect{}, fmt.Errorf("%w: region %q: want x,y,w,h", ErrInvalid, s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return screenshot.Rect{}, fmt.Errorf("%w: region %q: %v", ErrInvalid, s, err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return screenshot.Rect{}, fmt.Errorf("%w: region %q: size must be positive", ErrInvalid, s)
	}
	return screenshot.RectXYWH(v[0], v[1], v[2], v[3]), nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

// snapshotPorts reads LENS_PORT_START and LENS_PORT_END. Out-of-range values
// fall back to the defaults and a reversed range is swapped.
func snapshotPorts() (int, int) {
	start := getEnvPort("LENS_PORT_START", DefaultSnapshotPortStart)
	end := getEnvPort("LENS_PORT_END", DefaultSnapshotPortEnd)
	if end < start {
		start, end = end, start
	}
	return start, end
}

func getEnvPort(key string, defaultValue int) int {
	n := getEnvInt(key, defaultValue, 1024)
	if n > 65535 {
		log.Printf("Config: invalid %s=%d, using %d", key, n, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue, minValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < minValue {
		log.Printf("Config: invalid %s=%q, using %d", key, v, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f <= 0 || math.IsInf(f, 0) {
		log.Printf("Config: invalid %s=%q, using %v", key, v, defaultValue)
		return defaultValue
	}
	return f
}

func getEnvBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		log.Printf("Config: invalid %s=%q, using %v", key, v, defaultValue)
		return defaultValue
	}
	return b
}
