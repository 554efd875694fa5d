package geometry

import "fmt"

// Corner names one of the four logical corners of a detected rectangle.
type Corner int

const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

// Corners lists the four corners in canonical order.
func Corners() [4]Corner {
	return [4]Corner{TopLeft, TopRight, BottomLeft, BottomRight}
}

func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	default:
		return fmt.Sprintf("corner(%d)", int(c))
	}
}

// ParseCorner is the inverse of Corner.String.
func ParseCorner(s string) (Corner, error) {
	for _, c := range Corners() {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown corner: %q", s)
}

// Valid reports whether c is one of the four corners.
func (c Corner) Valid() bool {
	return c >= TopLeft && c <= BottomRight
}

// IsTop reports whether c lies on the top edge.
func (c Corner) IsTop() bool {
	return c == TopLeft || c == TopRight
}

// IsLeft reports whether c lies on the left edge.
func (c Corner) IsLeft() bool {
	return c == TopLeft || c == BottomLeft
}

// Opposite returns the diagonally opposite corner.
func (c Corner) Opposite() Corner {
	switch c {
	case TopLeft:
		return BottomRight
	case TopRight:
		return BottomLeft
	case BottomLeft:
		return TopRight
	default:
		return TopLeft
	}
}

// NormalizedPoint is a position in normalized camera space. Both axes run
// from 0 to 1 with the origin at the top-left of the frame and Y growing
// downward.
type NormalizedPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// InFrame reports whether the point lies inside the unit frame.
func (p NormalizedPoint) InFrame() bool {
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

// Quad holds the four corners of a rectangle observed in normalized camera
// space.
type Quad struct {
	TopLeft     NormalizedPoint `json:"top_left"`
	TopRight    NormalizedPoint `json:"top_right"`
	BottomLeft  NormalizedPoint `json:"bottom_left"`
	BottomRight NormalizedPoint `json:"bottom_right"`
}

// At returns the point for corner c.
func (q Quad) At(c Corner) NormalizedPoint {
	switch c {
	case TopLeft:
		return q.TopLeft
	case TopRight:
		return q.TopRight
	case BottomLeft:
		return q.BottomLeft
	default:
		return q.BottomRight
	}
}

// Polygon returns the corners in drawing order: top-left, top-right,
// bottom-right, bottom-left.
func (q Quad) Polygon() []NormalizedPoint {
	return []NormalizedPoint{q.TopLeft, q.TopRight, q.BottomRight, q.BottomLeft}
}
