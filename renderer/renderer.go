// Package renderer draws the clock-and-document icon at any pixel size.
//
// The recipe is fixed: a base disc, a clock face, two clock hands and
// three document lines, every measurement derived from the icon size by
// integer division (see Layout). Engines decide how the shapes turn into
// pixels.
package renderer

import (
	"errors"
	"fmt"
	"image"
)

// Common errors
var (
	ErrInvalidSize   = errors.New("icon size must be a positive integer")
	ErrUnknownEngine = errors.New("unknown rendering engine")
	ErrInvalidColor  = errors.New("invalid color")
)

// MaxSize bounds the canvas allocation for a single icon
const MaxSize = 4096

// Options configures a Renderer
type Options struct {
	// Palette colors the icon
	Palette Palette

	// Engine rasterizes the shapes (default: AliasedEngine)
	Engine Engine
}

// DefaultOptions returns the default palette with the aliased engine
func DefaultOptions() Options {
	return Options{
		Palette: DefaultPalette(),
		Engine:  AliasedEngine{},
	}
}

// Renderer draws icons. It holds no per-render state and is safe for
// concurrent use.
type Renderer struct {
	palette Palette
	engine  Engine
}

// New creates a Renderer from opts
func New(opts Options) *Renderer {
	if opts.Engine == nil {
		opts.Engine = AliasedEngine{}
	}
	return &Renderer{
		palette: opts.Palette,
		engine:  opts.Engine,
	}
}

// Palette returns the renderer's colors
func (r *Renderer) Palette() Palette { return r.palette }

// Engine returns the renderer's rasterizer
func (r *Renderer) Engine() Engine { return r.engine }

// Render draws one icon of size x size pixels on a transparent canvas
func (r *Renderer) Render(size int) (*image.RGBA, error) {
	if size > MaxSize {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrInvalidSize, size, MaxSize)
	}
	layout, err := NewLayout(size)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", err, size)
	}

	canvas := r.engine.NewCanvas(size)
	bg, fg := r.palette.Background, r.palette.Foreground

	canvas.FillCircle(layout.Disc(), bg)
	canvas.FillCircle(layout.Face(), fg)

	// Tiny sizes truncate hands and lines to nothing
	for _, hand := range layout.Hands() {
		if !hand.Empty() {
			canvas.StrokeLine(hand, bg)
		}
	}
	for _, line := range layout.Lines() {
		if !line.Empty() {
			canvas.FillRect(line, bg)
		}
	}

	return canvas.Image(), nil
}

// Render draws one icon with the default options
func Render(size int) (*image.RGBA, error) {
	return New(DefaultOptions()).Render(size)
}
