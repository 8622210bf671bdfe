package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestPNG(t *testing.T, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"mosaic", "-file", "a.png", "-block-width", "4"},
			out:  []string{"mosaic", "--file", "a.png", "--block-width", "4"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"mosaic", "-file=a.png", "-format=json"},
			out:  []string{"mosaic", "--file=a.png", "--format=json"},
		},
		{
			name: "Leaves other flags unchanged",
			in:   []string{"mosaic", "--file", "-", "-v"},
			out:  []string{"mosaic", "--file", "-", "-v"},
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
	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--file", "x.png", "--format", "text", "--block-width", "4", "--char-aspect", "1.5"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.filePath != "x.png" || opts.format != "text" || opts.blockWidth != 4 || opts.charAspect != 1.5 {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestConvertText(t *testing.T) {
	t.Setenv("PALETTE", "")
	path := writeTestPNG(t, 16, 32, color.RGBA{255, 255, 255, 255})

	var out bytes.Buffer
	err := runWithArgs([]string{"mosaic", "--file", path, "--format", "text", "--block-width", "8", "--char-aspect", "2", "--palette", " .:#"}, nil, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := out.String(); got != "##\n##\n" {
		t.Errorf("output = %q, want %q", got, "##\n##\n")
	}
}

func TestConvertJSONFromStdin(t *testing.T) {
	path := writeTestPNG(t, 10, 16, color.RGBA{128, 128, 128, 255})
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err = runWithArgs([]string{"mosaic", "--file", "-", "--format", "json", "--block-width", "8", "--char-aspect", "2"}, bytes.NewReader(data), &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var result MosaicResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out.String())
	}
	if result.Cols != 2 || result.Rows != 1 || len(result.Cells) != 2 {
		t.Fatalf("result = %dx%d with %d cells", result.Cols, result.Rows, len(result.Cells))
	}
	if c := result.Cells[0]; c.Fg != 208 || c.Bg != [3]uint8{128, 128, 128} {
		t.Errorf("cell = %+v", c)
	}
}

func TestConvertANSI(t *testing.T) {
	path := writeTestPNG(t, 8, 16, color.RGBA{0, 0, 255, 255})
	var out bytes.Buffer
	if err := runWithArgs([]string{"mosaic", "--file", path, "--block-width", "8", "--char-aspect", "2"}, nil, &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "\x1b[48;2;0;0;255m") {
		t.Errorf("missing background escape: %q", out.String())
	}
}

func TestRejectsBadInput(t *testing.T) {
	notImage := filepath.Join(t.TempDir(), "x.png")
	if err := os.WriteFile(notImage, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(t.TempDir(), "empty.png")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := [][]string{
		{"mosaic"},
		{"mosaic", "--file", notImage},
		{"mosaic", "--file", empty},
		{"mosaic", "--file", notImage, "--format", "xml"},
		{"mosaic", "--file", filepath.Join(t.TempDir(), "missing.png")},
	}
	for _, args := range tests {
		if err := runWithArgs(args, nil, &bytes.Buffer{}); err == nil {
			t.Errorf("runWithArgs(%v) succeeded", args)
		}
	}
}

func TestLiveWithoutResident(t *testing.T) {
	t.Setenv("LENS_PORT_START", "49615")
	t.Setenv("LENS_PORT_END", "49615")
	err := runWithArgs([]string{"mosaic", "--live", "--format", "text"}, nil, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "no running lens found on ports 49615..49615") {
		t.Fatalf("runWithArgs(--live) = %v", err)
	}
}
