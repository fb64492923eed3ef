// Package generator renders a set of icon sizes and writes them to disk
// as PNG files.
package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kacebover/iconset/renderer"
)

// Common errors
var (
	ErrNoSizes        = errors.New("no icon sizes configured")
	ErrDuplicateSize  = errors.New("duplicate icon size")
	ErrInvalidPattern = errors.New("file pattern must be a base name with exactly one %d verb")
	ErrCreateDir      = errors.New("failed to create output directory")
)

// DefaultOutputDir is where icons go when no directory is configured
const DefaultOutputDir = "images"

// DefaultFilePattern names each file after its size
const DefaultFilePattern = "icon%d.png"

// DefaultSizes returns the sizes a browser extension ships with
func DefaultSizes() []int {
	return []int{16, 48, 128}
}

// ProgressCallback is called after each size is written or fails.
// done counts finished sizes, including failures.
type ProgressCallback func(done, total int, file File, err error)

// Config holds generation configuration
type Config struct {
	// OutputDir receives the files and is created if missing
	OutputDir string

	// Sizes lists the icon sizes, in output order
	Sizes []int

	// FilePattern formats a size into a file name (default: icon%d.png)
	FilePattern string

	// Workers renders sizes concurrently when above 1
	Workers int

	// Renderer draws the icons (default: renderer.DefaultOptions)
	Renderer *renderer.Renderer

	// OnProgress is called once per size
	OnProgress ProgressCallback
}

// DefaultConfig returns a Config that reproduces the stock icon set
func DefaultConfig() Config {
	return Config{
		OutputDir:   DefaultOutputDir,
		Sizes:       DefaultSizes(),
		FilePattern: DefaultFilePattern,
		Workers:     1,
	}
}

// File describes one written icon
type File struct {
	Size  int    `json:"size"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	Bytes int64  `json:"bytes"`

	// Image is the rendered canvas, kept for packaging and previews
	Image *image.RGBA `json:"-"`
}

// SizeError reports a failure for a single size
type SizeError struct {
	Size int
	Err  error
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("icon %d: %v", e.Size, e.Err)
}

func (e *SizeError) Unwrap() error { return e.Err }

// Result contains the outcome of a generation run
type Result struct {
	// Dir is the output directory
	Dir string `json:"dir"`

	// Files lists successfully written icons in configured size order
	Files []File `json:"files"`

	// Failed lists the sizes that could not be written
	Failed []*SizeError `json:"-"`
}

// Paths returns the paths of all written files
func (r *Result) Paths() []string {
	paths := make([]string, len(r.Files))
	for i, f := range r.Files {
		paths[i] = f.Path
	}
	return paths
}

// Generator renders and saves icon sets
type Generator struct {
	config Config

	// Progress tracking
	done atomic.Int32
	mu   sync.Mutex
}

// New creates a Generator, validating and normalizing config
func New(config Config) (*Generator, error) {
	if len(config.Sizes) == 0 {
		return nil, ErrNoSizes
	}

	seen := make(map[int]bool, len(config.Sizes))
	for _, size := range config.Sizes {
		if size <= 0 || size > renderer.MaxSize {
			return nil, fmt.Errorf("%w: %d", renderer.ErrInvalidSize, size)
		}
		if seen[size] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateSize, size)
		}
		seen[size] = true
	}

	if config.FilePattern == "" {
		config.FilePattern = DefaultFilePattern
	}
	if err := ValidatePattern(config.FilePattern); err != nil {
		return nil, err
	}

	if config.OutputDir == "" {
		config.OutputDir = DefaultOutputDir
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Workers > len(config.Sizes) {
		config.Workers = len(config.Sizes)
	}
	if config.Renderer == nil {
		config.Renderer = renderer.New(renderer.DefaultOptions())
	}

	config.Sizes = append([]int(nil), config.Sizes...)

	return &Generator{config: config}, nil
}

// ValidatePattern checks that a file pattern yields one base name per size
func ValidatePattern(pattern string) error {
	if strings.Count(pattern, "%") != 1 || strings.Count(pattern, "%d") != 1 {
		return fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
	if filepath.Base(pattern) != pattern || strings.ContainsAny(pattern, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}
	return nil
}

// Config returns the normalized configuration
func (g *Generator) Config() Config { return g.config }

// FileName returns the file name for a size
func (g *Generator) FileName(size int) string {
	return fmt.Sprintf(g.config.FilePattern, size)
}

// Path returns the output path for a size
func (g *Generator) Path(size int) string {
	return filepath.Join(g.config.OutputDir, g.FileName(size))
}

// Generate renders every configured size and writes it to the output
// directory, overwriting existing files. Sizes succeed or fail on their own:
// files already written stay on disk when a later size fails, and the
// returned error joins every per-size failure.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	g.done.Store(0)

	dir := g.config.OutputDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrCreateDir, dir, err)
	}

	sizes := g.config.Sizes
	files := make([]File, len(sizes))
	errs := make([]error, len(sizes))

	jobs := make(chan int)
	var wg sync.WaitGroup

	for i := 0; i < g.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				files[idx], errs[idx] = g.generateOne(ctx, sizes[idx])
				g.reportProgress(files[idx], errs[idx])
			}
		}()
	}

	for idx := range sizes {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	result := &Result{Dir: dir}
	var joined []error
	for idx, err := range errs {
		if err != nil {
			se := &SizeError{Size: sizes[idx], Err: err}
			result.Failed = append(result.Failed, se)
			joined = append(joined, se)
			continue
		}
		result.Files = append(result.Files, files[idx])
	}

	return result, errors.Join(joined...)
}

func (g *Generator) generateOne(ctx context.Context, size int) (File, error) {
	file := File{Size: size, Name: g.FileName(size), Path: g.Path(size)}

	if err := ctx.Err(); err != nil {
		return file, err
	}

	img, err := g.config.Renderer.Render(size)
	if err != nil {
		return file, err
	}
	file.Image = img

	data, err := EncodePNG(img)
	if err != nil {
		return file, err
	}

	if err := os.WriteFile(file.Path, data, 0644); err != nil {
		return file, fmt.Errorf("failed to write %s: %w", file.Path, err)
	}
	file.Bytes = int64(len(data))

	return file, nil
}

// reportProgress calls the progress callback if configured
func (g *Generator) reportProgress(file File, err error) {
	if g.config.OnProgress == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	done := int(g.done.Add(1))
	g.config.OnProgress(done, len(g.config.Sizes), file, err)
}

// EncodePNG encodes img with the standard PNG encoder settings
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// Generate writes the stock icon set into dir with default settings
func Generate(ctx context.Context, dir string) (*Result, error) {
	config := DefaultConfig()
	config.OutputDir = dir

	g, err := New(config)
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx)
}
