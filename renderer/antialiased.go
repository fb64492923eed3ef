package renderer

import (
	"image"
	"image/color"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// AntialiasedEngine rasterizes the same geometry as AliasedEngine with
// per-pixel coverage, using rasterx scanlines.
type AntialiasedEngine struct{}

// Name implements Engine
func (AntialiasedEngine) Name() string { return EngineAntialiased }

// NewCanvas implements Engine
func (AntialiasedEngine) NewCanvas(size int) Canvas {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	return &smoothCanvas{
		img:     img,
		filler:  rasterx.NewFiller(size, size, scanner),
		stroker: rasterx.NewStroker(size, size, scanner),
	}
}

type smoothCanvas struct {
	img     *image.RGBA
	filler  *rasterx.Filler
	stroker *rasterx.Stroker
}

func (s *smoothCanvas) Image() *image.RGBA { return s.img }

func (s *smoothCanvas) FillCircle(c Circle, col color.RGBA) {
	s.filler.SetColor(col)
	rasterx.AddCircle(c.CX, c.CY, c.R, s.filler)
	s.filler.Draw()
	s.filler.Clear()
}

func (s *smoothCanvas) FillRect(r Rect, col color.RGBA) {
	s.filler.SetColor(col)
	rasterx.AddRect(r.X0, r.Y0, r.X1, r.Y1, 0, s.filler)
	s.filler.Draw()
	s.filler.Clear()
}

func (s *smoothCanvas) StrokeLine(seg Segment, col color.RGBA) {
	s.stroker.SetStroke(fixed.Int26_6(seg.Width*64), fixed.I(4), rasterx.ButtCap, nil, rasterx.FlatGap, rasterx.Miter)
	s.stroker.SetColor(col)
	s.stroker.Start(rasterx.ToFixedP(seg.X0, seg.Y0))
	s.stroker.Line(rasterx.ToFixedP(seg.X1, seg.Y1))
	s.stroker.Stop(false)
	s.stroker.Draw()
	s.stroker.Clear()
}
