package renderer

// DocumentLines is the number of stacked rectangles under the clock face
const DocumentLines = 3

// Layout holds every measurement of the icon recipe for one size.
// All values are derived with truncating integer division.
type Layout struct {
	Size int

	// DiscMargin insets the base disc from the canvas edge (size/10)
	DiscMargin int
	// FaceMargin insets the clock face from the canvas edge (size/4)
	FaceMargin int

	// Center is the integer origin of the hands and the document lines (size/2)
	Center int
	// HandLength is the length of both clock hands (size/4)
	HandLength int
	// HandWidth is the stroke width of the hands, never below one pixel
	HandWidth int

	// LineWidth is the width of every document line (size/2)
	LineWidth int
	// LineHeight is the height of every document line (size/16)
	LineHeight int
	// LineSpacing is both the gap from center to the first line and the
	// pitch between lines (size/8)
	LineSpacing int
}

// NewLayout computes the layout for a size. The size must be positive.
func NewLayout(size int) (Layout, error) {
	if size <= 0 {
		return Layout{}, ErrInvalidSize
	}

	handWidth := size / 32
	if handWidth < 1 {
		handWidth = 1
	}

	return Layout{
		Size:        size,
		DiscMargin:  size / 10,
		FaceMargin:  size / 4,
		Center:      size / 2,
		HandLength:  size / 4,
		HandWidth:   handWidth,
		LineWidth:   size / 2,
		LineHeight:  size / 16,
		LineSpacing: size / 8,
	}, nil
}

// Circle is a disc in canvas coordinates
type Circle struct {
	CX, CY, R float64
}

// Rect is a half-open rectangle [X0,X1) x [Y0,Y1) in canvas coordinates
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Empty reports whether the rectangle covers no area
func (r Rect) Empty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Segment is a stroked line from (X0,Y0) to (X1,Y1)
type Segment struct {
	X0, Y0, X1, Y1 float64
	Width          float64
}

// Empty reports whether the segment has no length or no width
func (s Segment) Empty() bool {
	return (s.X0 == s.X1 && s.Y0 == s.Y1) || s.Width <= 0
}

// Disc returns the base disc inscribed in the canvas with DiscMargin
func (l Layout) Disc() Circle {
	return l.inscribed(l.DiscMargin)
}

// Face returns the clock face inscribed with FaceMargin
func (l Layout) Face() Circle {
	return l.inscribed(l.FaceMargin)
}

func (l Layout) inscribed(margin int) Circle {
	lo, hi := float64(margin), float64(l.Size-margin)
	return Circle{
		CX: (lo + hi) / 2,
		CY: (lo + hi) / 2,
		R:  (hi - lo) / 2,
	}
}

// Hands returns the hour hand (pointing up) and the minute hand (pointing right)
func (l Layout) Hands() [2]Segment {
	c := float64(l.Center)
	n := float64(l.HandLength)
	w := float64(l.HandWidth)
	return [2]Segment{
		{X0: c, Y0: c, X1: c, Y1: c - n, Width: w},
		{X0: c, Y0: c, X1: c + n, Y1: c, Width: w},
	}
}

// Lines returns the document lines from top to bottom
func (l Layout) Lines() [DocumentLines]Rect {
	var rects [DocumentLines]Rect
	c := l.Center
	for i := range rects {
		top := c + l.LineSpacing + i*l.LineSpacing
		rects[i] = Rect{
			X0: float64(c - l.LineWidth/2),
			Y0: float64(top),
			X1: float64(c - l.LineWidth/2 + l.LineWidth),
			Y1: float64(top + l.LineHeight),
		}
	}
	return rects
}
