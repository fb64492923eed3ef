// Package sheet lays rendered icons side by side on a single preview image.
package sheet

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"
)

// Common errors
var (
	ErrNoImages      = errors.New("sheet: no images")
	ErrInvalidScale  = errors.New("sheet: scale must be between 1 and 16")
	ErrUnknownFilter = errors.New("sheet: unknown filter")
)

// Scaling filters
const (
	FilterNearest = "nearest"
	FilterSmooth  = "smooth"
)

const maxScale = 16

// Config controls the sheet layout
type Config struct {
	// Scale is the integer upscale applied to each icon (default: 4)
	Scale int

	// Padding is the gap in pixels around and between cells
	Padding int

	// Background fills the sheet; nil leaves it transparent
	Background color.Color

	// Filter picks the scaling kernel: "nearest" keeps hard pixel edges
	Filter string
}

// DefaultConfig returns the default sheet settings
func DefaultConfig() Config {
	return Config{
		Scale:   4,
		Padding: 8,
		Filter:  FilterNearest,
	}
}

func (c Config) validate() error {
	if c.Scale < 1 || c.Scale > maxScale {
		return fmt.Errorf("%w: %d", ErrInvalidScale, c.Scale)
	}
	switch c.Filter {
	case "", FilterNearest, FilterSmooth:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFilter, c.Filter)
}

// Cells returns the placement of each image on the sheet. Cells run left
// to right and are centered vertically on the tallest one.
func Cells(config Config, images []image.Image) (image.Rectangle, []image.Rectangle) {
	pad := max(config.Padding, 0)

	height := 0
	for _, img := range images {
		height = max(height, img.Bounds().Dy()*config.Scale)
	}

	cells := make([]image.Rectangle, len(images))
	x := pad
	for i, img := range images {
		w := img.Bounds().Dx() * config.Scale
		h := img.Bounds().Dy() * config.Scale
		y := pad + (height-h)/2
		cells[i] = image.Rect(x, y, x+w, y+h)
		x += w + pad
	}

	return image.Rect(0, 0, x, height+2*pad), cells
}

// Compose builds the sheet image
func Compose(config Config, images []image.Image) (*image.RGBA, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	bounds, cells := Cells(config, images)
	dst := image.NewRGBA(bounds)
	if config.Background != nil {
		xdraw.Draw(dst, bounds, image.NewUniform(config.Background), image.Point{}, xdraw.Src)
	}

	for i, img := range images {
		cell := cells[i]
		switch config.Filter {
		case FilterSmooth:
			xdraw.CatmullRom.Scale(dst, cell, img, img.Bounds(), xdraw.Over, nil)
		default:
			scaled := resize.Resize(uint(cell.Dx()), uint(cell.Dy()), img, resize.NearestNeighbor)
			xdraw.Draw(dst, cell, scaled, scaled.Bounds().Min, xdraw.Over)
		}
	}

	return dst, nil
}

// WriteFile composes the sheet and saves it as PNG
func WriteFile(path string, config Config, images []image.Image) error {
	img, err := Compose(config, images)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode sheet: %w", err)
	}
	return f.Close()
}
