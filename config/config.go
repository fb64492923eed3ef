// Package config loads and saves iconset settings as JSON, TOML or YAML.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/kacebover/iconset/generator"
	"github.com/kacebover/iconset/renderer"
	"github.com/kacebover/iconset/sheet"
)

// Common errors
var (
	ErrUnknownFormat = errors.New("unknown config format")
	ErrUnknownField  = errors.New("unknown config field")
	ErrInvalidConfig = errors.New("invalid config")
)

const (
	appDirName      = "iconset"
	defaultFileName = "config.json"
	maxWorkers      = 64
	maxSheetScale   = 16

	defaultIcoName    = "favicon.ico"
	defaultBundleName = "icons.zip"
	defaultSheetName  = "sheet.png"
)

// AppConfig holds all iconset settings
type AppConfig struct {
	// Render settings
	Sizes      []int  `json:"sizes" toml:"sizes" yaml:"sizes"`
	Background string `json:"background" toml:"background" yaml:"background"`
	Foreground string `json:"foreground" toml:"foreground" yaml:"foreground"`
	Engine     string `json:"engine" toml:"engine" yaml:"engine"` // "aliased", "antialiased", "gg"

	// Output settings
	OutputDir   string `json:"output_dir" toml:"output_dir" yaml:"output_dir"`
	FilePattern string `json:"file_pattern" toml:"file_pattern" yaml:"file_pattern"`
	Workers     int    `json:"workers" toml:"workers" yaml:"workers"`
	Manifest    bool   `json:"manifest" toml:"manifest" yaml:"manifest"`

	// Extra artifacts
	IcoName     string `json:"ico_name" toml:"ico_name" yaml:"ico_name"`
	BundleName  string `json:"bundle_name" toml:"bundle_name" yaml:"bundle_name"`
	SheetName   string `json:"sheet_name" toml:"sheet_name" yaml:"sheet_name"`
	SheetScale  int    `json:"sheet_scale" toml:"sheet_scale" yaml:"sheet_scale"`
	SheetFilter string `json:"sheet_filter" toml:"sheet_filter" yaml:"sheet_filter"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	palette := renderer.DefaultPalette()

	return &AppConfig{
		Sizes:      generator.DefaultSizes(),
		Background: renderer.FormatColor(palette.Background),
		Foreground: renderer.FormatColor(palette.Foreground),
		Engine:     renderer.EngineAliased,

		OutputDir:   generator.DefaultOutputDir,
		FilePattern: generator.DefaultFilePattern,
		Workers:     1,
		Manifest:    false,

		IcoName:     defaultIcoName,
		BundleName:  defaultBundleName,
		SheetName:   defaultSheetName,
		SheetScale:  4,
		SheetFilter: sheet.FilterNearest,
	}
}

// DefaultDir returns the per-user configuration directory
func DefaultDir() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, "Library", "Application Support")
	default: // linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			homeDir, _ := os.UserHomeDir()
			configDir = filepath.Join(homeDir, ".config")
		}
	}

	return filepath.Join(configDir, appDirName)
}

// DefaultPath returns the full path to the per-user config file
func DefaultPath() string {
	return filepath.Join(DefaultDir(), defaultFileName)
}

// Format returns the encoding implied by the file extension
func Format(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return "json", nil
	case ".toml":
		return "toml", nil
	case ".yaml", ".yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
}

// LoadConfig reads path over the defaults and validates the result.
// Fields missing from the file keep their default values.
func LoadConfig(path string) (*AppConfig, error) {
	format, err := Format(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := DefaultConfig()
	if err := decode(format, data, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadOrDefault loads path if it exists and returns defaults otherwise.
// An empty path means DefaultPath.
func LoadOrDefault(path string) (*AppConfig, error) {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

func decode(format string, data []byte, config *AppConfig) error {
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(config); err != nil {
			if strings.HasPrefix(err.Error(), "json: unknown field") {
				return fmt.Errorf("%w: %w", ErrUnknownField, err)
			}
			return err
		}
		return nil

	case "toml":
		md, err := toml.Decode(string(data), config)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("%w: %s", ErrUnknownField, undecoded[0].String())
		}
		return nil

	case "yaml":
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(config); err != nil {
			if strings.Contains(err.Error(), "not found in type") {
				return fmt.Errorf("%w: %w", ErrUnknownField, err)
			}
			return err
		}
		return nil
	}
	return ErrUnknownFormat
}

// Encode serializes the config in the given format
func (c *AppConfig) Encode(format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil

	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case "yaml":
		return yaml.Marshal(c)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// SaveConfig writes config to path, creating parent directories
func SaveConfig(path string, config *AppConfig) error {
	format, err := Format(path)
	if err != nil {
		return err
	}

	data, err := config.Encode(format)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate normalizes configuration values. Out-of-range numbers are
// clamped; values that cannot be repaired are reported.
func (c *AppConfig) Validate() error {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Workers > maxWorkers {
		c.Workers = maxWorkers
	}

	if c.SheetScale < 1 {
		c.SheetScale = 1
	}
	if c.SheetScale > maxSheetScale {
		c.SheetScale = maxSheetScale
	}

	c.Engine = strings.ToLower(strings.TrimSpace(c.Engine))
	if c.Engine == "" {
		c.Engine = renderer.EngineAliased
	}
	if _, err := renderer.EngineByName(c.Engine); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if c.SheetFilter == "" {
		c.SheetFilter = sheet.FilterNearest
	}
	if c.SheetFilter != sheet.FilterNearest && c.SheetFilter != sheet.FilterSmooth {
		return fmt.Errorf("%w: %w: %q", ErrInvalidConfig, sheet.ErrUnknownFilter, c.SheetFilter)
	}

	palette, err := c.Palette()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	// Store colors in canonical form
	c.Background = renderer.FormatColor(palette.Background)
	c.Foreground = renderer.FormatColor(palette.Foreground)

	if strings.TrimSpace(c.OutputDir) == "" {
		c.OutputDir = generator.DefaultOutputDir
	}
	if c.FilePattern == "" {
		c.FilePattern = generator.DefaultFilePattern
	}
	if err := generator.ValidatePattern(c.FilePattern); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	for _, name := range []struct {
		value *string
		def   string
	}{
		{&c.IcoName, defaultIcoName},
		{&c.BundleName, defaultBundleName},
		{&c.SheetName, defaultSheetName},
	} {
		*name.value = strings.TrimSpace(*name.value)
		if *name.value == "" {
			*name.value = name.def
		}
		if err := validateFileName(*name.value); err != nil {
			return err
		}
	}

	if len(c.Sizes) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, generator.ErrNoSizes)
	}
	for _, s := range c.Sizes {
		if s <= 0 || s > renderer.MaxSize {
			return fmt.Errorf("%w: %w: %d", ErrInvalidConfig, renderer.ErrInvalidSize, s)
		}
	}

	return nil
}

// validateFileName accepts plain file names only; artifacts are placed
// relative to the output dir
func validateFileName(name string) error {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q is not a file name", ErrInvalidConfig, name)
	}
	return nil
}

// Palette parses the configured colors
func (c *AppConfig) Palette() (renderer.Palette, error) {
	return renderer.ParsePalette(c.Background, c.Foreground)
}

// Renderer builds a renderer from the palette and engine settings
func (c *AppConfig) Renderer() (*renderer.Renderer, error) {
	palette, err := c.Palette()
	if err != nil {
		return nil, err
	}
	engine, err := renderer.EngineByName(c.Engine)
	if err != nil {
		return nil, err
	}
	return renderer.New(renderer.Options{Palette: palette, Engine: engine}), nil
}

// GeneratorConfig builds a generator config from these settings
func (c *AppConfig) GeneratorConfig() (generator.Config, error) {
	r, err := c.Renderer()
	if err != nil {
		return generator.Config{}, err
	}

	gc := generator.DefaultConfig()
	gc.OutputDir = c.OutputDir
	gc.Sizes = slices.Clone(c.Sizes)
	gc.FilePattern = c.FilePattern
	gc.Workers = c.Workers
	gc.Renderer = r
	return gc, nil
}

// SheetConfig builds the contact sheet settings
func (c *AppConfig) SheetConfig() sheet.Config {
	sc := sheet.DefaultConfig()
	sc.Scale = c.SheetScale
	sc.Filter = c.SheetFilter
	return sc
}

// IcoPath is where the ICO container is written, inside the output dir
func (c *AppConfig) IcoPath() string {
	return filepath.Join(c.OutputDir, c.IcoName)
}

// SheetPath is where the contact sheet is written, inside the output dir
func (c *AppConfig) SheetPath() string {
	return filepath.Join(c.OutputDir, c.SheetName)
}

// BundlePath is where the archive is written, next to the output dir
func (c *AppConfig) BundlePath() string {
	return filepath.Join(filepath.Dir(filepath.Clean(c.OutputDir)), c.BundleName)
}

// ManifestPath is where icons.json is written, next to the output dir
func (c *AppConfig) ManifestPath() string {
	return filepath.Join(filepath.Dir(filepath.Clean(c.OutputDir)), "icons.json")
}

// ManifestPrefix is the output dir as seen from the manifest
func (c *AppConfig) ManifestPrefix() string {
	return filepath.ToSlash(filepath.Base(filepath.Clean(c.OutputDir)))
}

// Clone creates a deep copy of the config
func (c *AppConfig) Clone() *AppConfig {
	clone := *c
	clone.Sizes = slices.Clone(c.Sizes)
	return &clone
}
