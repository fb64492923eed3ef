// Package controller provides the bridge between the preview UI and the
// icon pipeline
package controller

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/kacebover/iconset/bundle"
	"github.com/kacebover/iconset/config"
	"github.com/kacebover/iconset/generator"
	"github.com/kacebover/iconset/gui/preview"
	"github.com/kacebover/iconset/ico"
	"github.com/kacebover/iconset/sheet"
)

// Common errors
var (
	ErrBusy     = errors.New("generation already running")
	ErrNoResult = errors.New("nothing generated yet")
	ErrNoIcons  = errors.New("no sizes fit in an ICO container")
)

// LogLevel represents log message severity
type LogLevel int

const (
	LogInfo LogLevel = iota
	LogWarning
	LogError
	LogDebug
)

// String returns the level name
func (l LogLevel) String() string {
	switch l {
	case LogInfo:
		return "info"
	case LogWarning:
		return "warning"
	case LogError:
		return "error"
	case LogDebug:
		return "debug"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// IconController manages generation and exports and reports back to the UI
// through callbacks
type IconController struct {
	configPath string
	config     *config.AppConfig
	cancelFunc context.CancelFunc

	// Callbacks
	onLogMessage func(LogLevel, string)
	onProgress   func(done, total int, file generator.File)
	onComplete   func(*generator.Result, error)

	// State
	mu            sync.RWMutex
	currentResult *generator.Result
	resultConfig  *config.AppConfig // settings that produced currentResult
	isGenerating  bool
}

// NewIconController loads configPath (or the per-user default when empty)
func NewIconController(configPath string) (*IconController, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	return &IconController{configPath: configPath, config: cfg}, nil
}

// SetOnLogMessage sets the callback for log messages
func (ic *IconController) SetOnLogMessage(callback func(LogLevel, string)) {
	ic.onLogMessage = callback
}

// SetOnProgress sets the callback for per-file progress
func (ic *IconController) SetOnProgress(callback func(done, total int, file generator.File)) {
	ic.onProgress = callback
}

// SetOnComplete sets the callback for generation completion
func (ic *IconController) SetOnComplete(callback func(*generator.Result, error)) {
	ic.onComplete = callback
}

// GetConfig returns a copy of the current configuration
func (ic *IconController) GetConfig() *config.AppConfig {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return ic.config.Clone()
}

// UpdateConfig validates the configuration, saves it when the controller
// has a config path, and makes it current
func (ic *IconController) UpdateConfig(cfg *config.AppConfig) error {
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if ic.configPath != "" {
		if err := config.SaveConfig(ic.configPath, cfg); err != nil {
			return err
		}
	}

	ic.mu.Lock()
	ic.config = cfg
	ic.mu.Unlock()

	ic.log(LogInfo, "Settings updated")
	return nil
}

// Preview renders the configured sizes in memory
func (ic *IconController) Preview() ([]preview.Tile, error) {
	cfg := ic.GetConfig()
	r, err := cfg.Renderer()
	if err != nil {
		return nil, err
	}
	return preview.Render(r, cfg.Sizes)
}

// Generate renders and writes all configured sizes and remembers the result
func (ic *IconController) Generate(ctx context.Context) (*generator.Result, error) {
	cfg := ic.GetConfig()
	gc, err := cfg.GeneratorConfig()
	if err != nil {
		return nil, err
	}
	gc.OnProgress = func(done, total int, file generator.File, err error) {
		if err != nil {
			ic.log(LogError, fmt.Sprintf("Failed %dpx: %v", file.Size, err))
			return
		}
		ic.log(LogInfo, "Generated "+file.Name)
		if ic.onProgress != nil {
			ic.onProgress(done, total, file)
		}
	}

	g, err := generator.New(gc)
	if err != nil {
		return nil, err
	}

	result, err := g.Generate(ctx)
	if err == nil && cfg.Manifest {
		if err = generator.WriteManifest(cfg.ManifestPath(), result, cfg.ManifestPrefix()); err == nil {
			ic.log(LogInfo, "Wrote "+cfg.ManifestPath())
		}
	}

	ic.mu.Lock()
	if result != nil {
		ic.currentResult = result
		ic.resultConfig = cfg
	}
	ic.mu.Unlock()

	return result, err
}

// StartGenerate runs Generate in the background and reports through the
// completion callback
func (ic *IconController) StartGenerate() error {
	ic.mu.Lock()
	if ic.isGenerating {
		ic.mu.Unlock()
		return ErrBusy
	}
	ic.isGenerating = true
	ctx, cancel := context.WithCancel(context.Background())
	ic.cancelFunc = cancel
	ic.mu.Unlock()

	ic.log(LogInfo, "Starting generation")

	go func() {
		defer cancel()
		result, err := ic.Generate(ctx)

		ic.mu.Lock()
		ic.isGenerating = false
		ic.cancelFunc = nil
		ic.mu.Unlock()

		if err != nil {
			if errors.Is(err, context.Canceled) {
				ic.log(LogInfo, "Generation cancelled by user")
			} else {
				ic.log(LogError, "Generation error: "+err.Error())
			}
		} else {
			ic.log(LogInfo, "Generation completed successfully")
		}

		if ic.onComplete != nil {
			ic.onComplete(result, err)
		}
	}()

	return nil
}

// CancelGenerate cancels the running generation
func (ic *IconController) CancelGenerate() {
	ic.mu.Lock()
	defer ic.mu.Unlock()

	if ic.cancelFunc != nil {
		ic.cancelFunc()
		ic.log(LogInfo, "Generation cancelled")
	}
}

// IsGenerating returns whether a generation is currently running
func (ic *IconController) IsGenerating() bool {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return ic.isGenerating
}

// GetResult returns the last generation result
func (ic *IconController) GetResult() *generator.Result {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return ic.currentResult
}

// requireResult returns the last result with the settings it was generated
// under; exports are placed relative to that output dir even after the
// config has moved on
func (ic *IconController) requireResult() (*generator.Result, *config.AppConfig, error) {
	ic.mu.RLock()
	result, cfg := ic.currentResult, ic.resultConfig
	ic.mu.RUnlock()

	if result == nil || len(result.Files) == 0 {
		return nil, nil, ErrNoResult
	}
	return result, cfg.Clone(), nil
}

// ensureDir creates the parent directory of path
func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0755)
}

// BundleIcons zips the generated files next to the output directory,
// encrypting them when password is set
func (ic *IconController) BundleIcons(password string, onProgress bundle.ProgressCallback) (*bundle.Result, error) {
	result, cfg, err := ic.requireResult()
	if err != nil {
		return nil, err
	}
	if err := ensureDir(cfg.BundlePath()); err != nil {
		return nil, err
	}

	bc := bundle.DefaultConfig()
	bc.OutputPath = cfg.BundlePath()
	bc.Password = password
	bc.Prefix = cfg.ManifestPrefix()
	bc.OnProgress = onProgress

	b, err := bundle.NewBundler(bc)
	if err != nil {
		return nil, err
	}
	res, err := b.Bundle(bundle.EntriesFromPaths(result.Paths()))
	if err != nil {
		ic.log(LogError, "Bundle failed: "+err.Error())
		return nil, err
	}

	ic.log(LogInfo, "Bundle completed: "+res.OutputPath)
	return res, nil
}

// ExportIco writes the generated sizes that fit an ICO container
func (ic *IconController) ExportIco() (string, error) {
	result, cfg, err := ic.requireResult()
	if err != nil {
		return "", err
	}

	var images []image.Image
	for _, f := range result.Files {
		if f.Size <= 256 && f.Image != nil {
			images = append(images, f.Image)
		} else if f.Size > 256 {
			ic.log(LogWarning, fmt.Sprintf("Skipping %dpx: too large for ICO", f.Size))
		}
	}
	if len(images) == 0 {
		return "", ErrNoIcons
	}

	if err := ensureDir(cfg.IcoPath()); err != nil {
		return "", err
	}
	if err := ico.WriteFile(cfg.IcoPath(), images); err != nil {
		return "", err
	}
	ic.log(LogInfo, "Wrote "+cfg.IcoPath())
	return cfg.IcoPath(), nil
}

// ExportSheet writes the contact sheet of the generated sizes
func (ic *IconController) ExportSheet() (string, error) {
	result, cfg, err := ic.requireResult()
	if err != nil {
		return "", err
	}
	// Scale and filter follow the current settings
	current := ic.GetConfig()

	images := make([]image.Image, 0, len(result.Files))
	for _, f := range result.Files {
		images = append(images, f.Image)
	}

	if err := ensureDir(cfg.SheetPath()); err != nil {
		return "", err
	}
	if err := sheet.WriteFile(cfg.SheetPath(), current.SheetConfig(), images); err != nil {
		return "", err
	}
	ic.log(LogInfo, "Wrote "+cfg.SheetPath())
	return cfg.SheetPath(), nil
}

// log emits a log message
func (ic *IconController) log(level LogLevel, message string) {
	if ic.onLogMessage != nil {
		ic.onLogMessage(level, message)
	}
}
