package preview

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kacebover/iconset/renderer"
)

func TestZoom(t *testing.T) {
	assert.Equal(t, 8, Zoom(16))
	assert.Equal(t, 2, Zoom(48))
	assert.Equal(t, 1, Zoom(128))
	assert.Equal(t, 1, Zoom(512))
	assert.Equal(t, 1, Zoom(0))
}

func TestCaption(t *testing.T) {
	assert.Equal(t, "16 px (×8)", Caption(16, 8))
	assert.Equal(t, "128 px", Caption(128, 1))
}

func TestRender(t *testing.T) {
	tiles, err := Render(renderer.New(renderer.DefaultOptions()), []int{16, 48, 128})
	require.NoError(t, err)
	require.Len(t, tiles, 3)

	for i, size := range []int{16, 48, 128} {
		assert.Equal(t, size, tiles[i].Size)
		assert.Equal(t, size, tiles[i].Image.Bounds().Dx())
	}

	_, err = Render(renderer.New(renderer.DefaultOptions()), []int{16, 0})
	assert.ErrorIs(t, err, renderer.ErrInvalidSize)
}

func TestNewTile(t *testing.T) {
	test.NewApp()

	tiles, err := Render(renderer.New(renderer.DefaultOptions()), []int{16})
	require.NoError(t, err)

	tile := NewTile(tiles[0])
	require.Len(t, tile.Objects, 3)

	native := tile.Objects[0].(*fyne.Container).Objects[0].(*canvas.Image)
	assert.Equal(t, fyne.NewSize(16, 16), native.MinSize())
	assert.Equal(t, canvas.ImageScalePixels, native.ScaleMode)

	magnified := tile.Objects[1].(*fyne.Container).Objects[0].(*canvas.Image)
	assert.Equal(t, fyne.NewSize(128, 128), magnified.MinSize())
	assert.Same(t, tiles[0].Image, magnified.Image)

	caption := tile.Objects[2].(*widget.Label)
	assert.Equal(t, "16 px (×8)", caption.Text)
}

func TestNewGrid_InWindow(t *testing.T) {
	test.NewApp()

	tiles, err := Render(renderer.New(renderer.DefaultOptions()), []int{16, 48, 128})
	require.NoError(t, err)

	grid := NewGrid(tiles)
	assert.Len(t, grid.Objects, 3)

	w := test.NewWindow(grid)
	defer w.Close()

	// Every tile fits: the widest is the 128px one
	size := grid.MinSize()
	assert.GreaterOrEqual(t, size.Width, float32(128+96+128))
	assert.GreaterOrEqual(t, size.Height, float32(128+128))
}
