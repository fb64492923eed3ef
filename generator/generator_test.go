package generator

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/kacebover/iconset/renderer"
)

// decodeFile decodes a PNG written by the generator
func decodeFile(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Failed to decode %s: %v", path, err)
	}
	return img
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

// TestGenerate_DefaultSet tests the stock 16/48/128 run
func TestGenerate_DefaultSet(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")

	result, err := Generate(context.Background(), dir)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if len(result.Files) != 3 {
		t.Fatalf("Expected 3 files, got %d", len(result.Files))
	}

	for i, size := range []int{16, 48, 128} {
		f := result.Files[i]
		wantPath := filepath.Join(dir, "icon"+strconv.Itoa(size)+".png")
		if f.Path != wantPath {
			t.Errorf("file %d path = %s, want %s", i, f.Path, wantPath)
		}
		if f.Size != size {
			t.Errorf("file %d size = %d, want %d", i, f.Size, size)
		}

		img := decodeFile(t, f.Path)
		if b := img.Bounds(); b.Dx() != size || b.Dy() != size {
			t.Errorf("icon%d.png bounds = %v", size, b)
		}
		if a := nrgbaAt(img, 0, 0).A; a != 0 {
			t.Errorf("icon%d.png corner alpha = %d, want 0", size, a)
		}

		info, err := os.Stat(f.Path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() != f.Bytes {
			t.Errorf("icon%d.png is %d bytes, result says %d", size, info.Size(), f.Bytes)
		}
	}

	img := decodeFile(t, filepath.Join(dir, "icon16.png"))
	if got := nrgbaAt(img, 8, 2); got != (color.NRGBA{66, 133, 244, 255}) {
		t.Errorf("icon16 (8,2) = %v, want background", got)
	}
	if got := nrgbaAt(img, 8, 8); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("icon16 (8,8) = %v, want foreground", got)
	}
}

// TestGenerate_Idempotent tests that a second run overwrites with identical bytes
func TestGenerate_Idempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := Generate(context.Background(), dir)
	if err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}
	before := make(map[string][]byte)
	for _, p := range first.Paths() {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		before[p] = data
	}

	second, err := Generate(context.Background(), dir)
	if err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}
	for _, p := range second.Paths() {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(before[p], data) {
			t.Errorf("%s changed between runs", p)
		}
	}
}

// TestGenerate_Workers tests that concurrent rendering writes the same files
func TestGenerate_Workers(t *testing.T) {
	serialDir, parallelDir := t.TempDir(), t.TempDir()
	sizes := []int{16, 24, 32, 48, 64, 128}

	run := func(dir string, workers int) *Result {
		config := DefaultConfig()
		config.OutputDir = dir
		config.Sizes = sizes
		config.Workers = workers
		g, err := New(config)
		if err != nil {
			t.Fatal(err)
		}
		result, err := g.Generate(context.Background())
		if err != nil {
			t.Fatalf("Generate with %d workers failed: %v", workers, err)
		}
		return result
	}

	serial := run(serialDir, 1)
	parallel := run(parallelDir, 4)

	for i := range sizes {
		if parallel.Files[i].Size != sizes[i] {
			t.Errorf("parallel result out of order at %d: %d", i, parallel.Files[i].Size)
		}
		a, _ := os.ReadFile(serial.Files[i].Path)
		b, _ := os.ReadFile(parallel.Files[i].Path)
		if !bytes.Equal(a, b) {
			t.Errorf("size %d differs between serial and parallel runs", sizes[i])
		}
	}
}

func TestGenerate_Progress(t *testing.T) {
	config := DefaultConfig()
	config.OutputDir = t.TempDir()

	var calls []int
	config.OnProgress = func(done, total int, file File, err error) {
		if err != nil {
			t.Errorf("unexpected error for %d: %v", file.Size, err)
		}
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
		if done != len(calls)+1 {
			t.Errorf("done = %d, want %d", done, len(calls)+1)
		}
		calls = append(calls, file.Size)
	}

	g, err := New(config)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Generate(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(calls) != 3 || calls[0] != 16 || calls[1] != 48 || calls[2] != 128 {
		t.Errorf("progress sizes = %v, want [16 48 128]", calls)
	}
}

// TestGenerate_PartialFailure tests that one unwritable size leaves the others on disk
func TestGenerate_PartialFailure(t *testing.T) {
	dir := t.TempDir()

	// A directory where icon48.png should go makes that write fail
	if err := os.Mkdir(filepath.Join(dir, "icon48.png"), 0755); err != nil {
		t.Fatal(err)
	}

	result, err := Generate(context.Background(), dir)
	if err == nil {
		t.Fatal("Expected error for blocked size")
	}

	var se *SizeError
	if !errors.As(err, &se) || se.Size != 48 {
		t.Errorf("error = %v, want SizeError for 48", err)
	}
	if len(result.Failed) != 1 || result.Failed[0].Size != 48 {
		t.Errorf("Failed = %v", result.Failed)
	}
	if len(result.Files) != 2 {
		t.Fatalf("Expected 2 written files, got %d", len(result.Files))
	}

	for _, name := range []string{"icon16.png", "icon128.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s should exist: %v", name, err)
		}
	}
}

func TestGenerate_CreateDirFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Generate(context.Background(), filepath.Join(blocker, "images"))
	if !errors.Is(err, ErrCreateDir) {
		t.Errorf("error = %v, want ErrCreateDir", err)
	}
}

func TestGenerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	result, err := Generate(ctx, dir)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if len(result.Files) != 0 {
		t.Errorf("cancelled run wrote %d files", len(result.Files))
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cancelled run left %d entries", len(entries))
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"no sizes", func(c *Config) { c.Sizes = nil }, ErrNoSizes},
		{"zero size", func(c *Config) { c.Sizes = []int{16, 0} }, renderer.ErrInvalidSize},
		{"negative size", func(c *Config) { c.Sizes = []int{-4} }, renderer.ErrInvalidSize},
		{"huge size", func(c *Config) { c.Sizes = []int{renderer.MaxSize + 1} }, renderer.ErrInvalidSize},
		{"duplicate", func(c *Config) { c.Sizes = []int{16, 48, 16} }, ErrDuplicateSize},
		{"no verb", func(c *Config) { c.FilePattern = "icon.png" }, ErrInvalidPattern},
		{"two verbs", func(c *Config) { c.FilePattern = "icon%dx%d.png" }, ErrInvalidPattern},
		{"string verb", func(c *Config) { c.FilePattern = "icon%s.png" }, ErrInvalidPattern},
		{"subdir", func(c *Config) { c.FilePattern = "sub/icon%d.png" }, ErrInvalidPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(&config)
			if _, err := New(config); !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	g, err := New(Config{Sizes: []int{32}, Workers: 8})
	if err != nil {
		t.Fatal(err)
	}
	c := g.Config()
	if c.OutputDir != DefaultOutputDir || c.FilePattern != DefaultFilePattern {
		t.Errorf("defaults not applied: %+v", c)
	}
	if c.Workers != 1 {
		t.Errorf("Workers = %d, want clamp to 1 size", c.Workers)
	}
	if c.Renderer == nil {
		t.Error("Renderer should default")
	}
}

func TestFileNamePattern(t *testing.T) {
	config := DefaultConfig()
	config.OutputDir = "out"
	config.FilePattern = "logo-%d.png"
	g, err := New(config)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.FileName(48); got != "logo-48.png" {
		t.Errorf("FileName(48) = %s", got)
	}
	if got := g.Path(48); got != filepath.Join("out", "logo-48.png") {
		t.Errorf("Path(48) = %s", got)
	}
}
