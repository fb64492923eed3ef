package renderer

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// GGEngine renders with the gg 2D context, which antialiases like
// AntialiasedEngine but uses freetype's rasterizer.
type GGEngine struct{}

// Name implements Engine
func (GGEngine) Name() string { return EngineGG }

// NewCanvas implements Engine
func (GGEngine) NewCanvas(size int) Canvas {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	return &ggCanvas{img: img, dc: gg.NewContextForRGBA(img)}
}

type ggCanvas struct {
	img *image.RGBA
	dc  *gg.Context
}

func (g *ggCanvas) Image() *image.RGBA { return g.img }

func (g *ggCanvas) FillCircle(c Circle, col color.RGBA) {
	g.dc.SetColor(col)
	g.dc.DrawCircle(c.CX, c.CY, c.R)
	g.dc.Fill()
}

func (g *ggCanvas) FillRect(r Rect, col color.RGBA) {
	g.dc.SetColor(col)
	g.dc.DrawRectangle(r.X0, r.Y0, r.X1-r.X0, r.Y1-r.Y0)
	g.dc.Fill()
}

func (g *ggCanvas) StrokeLine(s Segment, col color.RGBA) {
	g.dc.SetColor(col)
	g.dc.SetLineWidth(s.Width)
	g.dc.SetLineCapButt()
	g.dc.DrawLine(s.X0, s.Y0, s.X1, s.Y1)
	g.dc.Stroke()
}
