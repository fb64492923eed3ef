package renderer

import (
	"image"
	"image/color"
	"math"
	"sort"
	"strings"
)

// Canvas receives the drawing primitives of the icon recipe
type Canvas interface {
	FillCircle(c Circle, col color.RGBA)
	FillRect(r Rect, col color.RGBA)
	StrokeLine(s Segment, col color.RGBA)

	// Image returns the pixels drawn so far
	Image() *image.RGBA
}

// Engine rasterizes shapes onto a fresh transparent canvas
type Engine interface {
	Name() string
	NewCanvas(size int) Canvas
}

// Engine names accepted by EngineByName
const (
	EngineAliased     = "aliased"
	EngineAntialiased = "antialiased"
	EngineGG          = "gg"
)

var engines = map[string]Engine{
	EngineAliased:     AliasedEngine{},
	EngineAntialiased: AntialiasedEngine{},
	EngineGG:          GGEngine{},
}

// EngineByName looks up a registered engine. An empty name selects the
// aliased engine.
func EngineByName(name string) (Engine, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = EngineAliased
	}
	e, ok := engines[name]
	if !ok {
		return nil, ErrUnknownEngine
	}
	return e, nil
}

// EngineNames lists the registered engines in sorted order
func EngineNames() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AliasedEngine paints a pixel with full opacity when the pixel center
// (x+0.5, y+0.5) lies inside the shape. Shapes are half-open on their
// max edges so adjacent shapes never share a pixel.
type AliasedEngine struct{}

// Name implements Engine
func (AliasedEngine) Name() string { return EngineAliased }

// NewCanvas implements Engine
func (AliasedEngine) NewCanvas(size int) Canvas {
	return &aliasedCanvas{img: image.NewRGBA(image.Rect(0, 0, size, size))}
}

type aliasedCanvas struct {
	img *image.RGBA
}

func (a *aliasedCanvas) Image() *image.RGBA { return a.img }

func (a *aliasedCanvas) FillCircle(c Circle, col color.RGBA) {
	r2 := c.R * c.R
	x0, y0, x1, y1 := a.span(c.CX-c.R, c.CY-c.R, c.CX+c.R, c.CY+c.R)

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			dx := float64(x) + 0.5 - c.CX
			dy := float64(y) + 0.5 - c.CY
			if dx*dx+dy*dy <= r2 {
				a.img.SetRGBA(x, y, col)
			}
		}
	}
}

func (a *aliasedCanvas) FillRect(r Rect, col color.RGBA) {
	x0, y0, x1, y1 := a.span(r.X0, r.Y0, r.X1, r.Y1)

	for y := y0; y < y1; y++ {
		py := float64(y) + 0.5
		if py < r.Y0 || py >= r.Y1 {
			continue
		}
		for x := x0; x < x1; x++ {
			px := float64(x) + 0.5
			if px >= r.X0 && px < r.X1 {
				a.img.SetRGBA(x, y, col)
			}
		}
	}
}

// StrokeLine paints pixels whose centers project onto [0, length) along
// the segment and fall within [-width/2, width/2) across it.
func (a *aliasedCanvas) StrokeLine(s Segment, col color.RGBA) {
	dx, dy := s.X1-s.X0, s.Y1-s.Y0
	length := math.Hypot(dx, dy)
	if length == 0 || s.Width <= 0 {
		return
	}
	ux, uy := dx/length, dy/length
	half := s.Width / 2

	x0, y0, x1, y1 := a.span(
		math.Min(s.X0, s.X1)-half, math.Min(s.Y0, s.Y1)-half,
		math.Max(s.X0, s.X1)+half, math.Max(s.Y0, s.Y1)+half,
	)

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			rx := float64(x) + 0.5 - s.X0
			ry := float64(y) + 0.5 - s.Y0
			along := rx*ux + ry*uy
			across := -rx*uy + ry*ux
			if along >= 0 && along < length && across >= -half && across < half {
				a.img.SetRGBA(x, y, col)
			}
		}
	}
}

// span clips a float bounding box to whole pixels inside the canvas
func (a *aliasedCanvas) span(minX, minY, maxX, maxY float64) (x0, y0, x1, y1 int) {
	b := a.img.Bounds()
	x0 = max(b.Min.X, int(math.Floor(minX)))
	y0 = max(b.Min.Y, int(math.Floor(minY)))
	x1 = min(b.Max.X, int(math.Ceil(maxX))+1)
	y1 = min(b.Max.Y, int(math.Ceil(maxY))+1)
	return
}
