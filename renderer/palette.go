package renderer

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette holds the two colors every icon is drawn with
type Palette struct {
	// Background paints the base disc, the clock hands and the document lines
	Background color.RGBA

	// Foreground paints the clock face
	Foreground color.RGBA
}

// DefaultPalette returns the blue-on-white palette
func DefaultPalette() Palette {
	return Palette{
		Background: color.RGBA{R: 66, G: 133, B: 244, A: 255},
		Foreground: color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

// ParsePalette builds a Palette from two hex strings ("#4285f4" or "4285f4").
// Both colors are forced opaque.
func ParsePalette(background, foreground string) (Palette, error) {
	bg, err := ParseColor(background)
	if err != nil {
		return Palette{}, fmt.Errorf("background: %w", err)
	}
	fg, err := ParseColor(foreground)
	if err != nil {
		return Palette{}, fmt.Errorf("foreground: %w", err)
	}
	return Palette{Background: bg, Foreground: fg}, nil
}

// ParseColor parses a hex color into an opaque color.RGBA
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.RGBA{}, fmt.Errorf("%w: empty color", ErrInvalidColor)
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if n := len(s) - 1; n != 3 && n != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	// colorful.Hex stops at the first non-hex digit without complaint
	if strings.Trim(s[1:], "0123456789abcdefABCDEF") != "" {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// FormatColor renders c as a lowercase "#rrggbb" string
func FormatColor(c color.RGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}.Hex()
}
