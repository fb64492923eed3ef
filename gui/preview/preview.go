// Package preview builds fyne widgets showing rendered icons at native
// size next to a pixel-exact magnification.
package preview

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/kacebover/iconset/renderer"
)

// TargetSize is the on-screen edge of a magnified tile
const TargetSize = 128

// Tile is one rendered size
type Tile struct {
	Size  int
	Image *image.RGBA
}

// Render produces a tile per size with r
func Render(r *renderer.Renderer, sizes []int) ([]Tile, error) {
	tiles := make([]Tile, 0, len(sizes))
	for _, size := range sizes {
		img, err := r.Render(size)
		if err != nil {
			return nil, fmt.Errorf("render %dpx: %w", size, err)
		}
		tiles = append(tiles, Tile{Size: size, Image: img})
	}
	return tiles, nil
}

// Zoom returns the integer magnification that brings size close to
// TargetSize without shrinking it.
func Zoom(size int) int {
	if size <= 0 || size >= TargetSize {
		return 1
	}
	return TargetSize / size
}

// NewTile shows the icon at 1x above a magnified copy and a caption
func NewTile(t Tile) *fyne.Container {
	native := canvas.NewImageFromImage(t.Image)
	native.ScaleMode = canvas.ImageScalePixels
	native.FillMode = canvas.ImageFillContain
	native.SetMinSize(fyne.NewSize(float32(t.Size), float32(t.Size)))

	zoom := Zoom(t.Size)
	edge := float32(t.Size * zoom)
	magnified := canvas.NewImageFromImage(t.Image)
	magnified.ScaleMode = canvas.ImageScalePixels
	magnified.FillMode = canvas.ImageFillContain
	magnified.SetMinSize(fyne.NewSize(edge, edge))

	caption := widget.NewLabel(Caption(t.Size, zoom))
	caption.Alignment = fyne.TextAlignCenter

	return container.NewVBox(
		container.NewCenter(native),
		container.NewCenter(magnified),
		caption,
	)
}

// Caption labels a tile, e.g. "16 px (×8)"
func Caption(size, zoom int) string {
	if zoom <= 1 {
		return fmt.Sprintf("%d px", size)
	}
	return fmt.Sprintf("%d px (×%d)", size, zoom)
}

// NewGrid lays tiles out left to right
func NewGrid(tiles []Tile) *fyne.Container {
	objects := make([]fyne.CanvasObject, len(tiles))
	for i, t := range tiles {
		objects[i] = NewTile(t)
	}
	return container.NewHBox(objects...)
}
