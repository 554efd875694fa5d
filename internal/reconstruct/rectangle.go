package reconstruct

import (
	"math"

	"github.com/ironsheep/planar-rect-mcp/internal/geometry"
	"github.com/ironsheep/planar-rect-mcp/internal/surface"
)

// metersToInches converts reconstructed sizes for display.
const metersToInches = 39.3701

// PlaneRectangle is a rectangle lying on a known surface, in world space.
//
// Yaw is the rotation about world +Y, in radians, within (-pi/2, pi/2].
// Width runs along the rectangle's left-to-right edge and Height along its
// top-to-bottom edge. Values are never mutated after construction.
type PlaneRectangle struct {
	Surface surface.ID      `json:"surface_id"`
	Center  geometry.Point3 `json:"center"`
	Width   float64         `json:"width"`
	Height  float64         `json:"height"`
	Yaw     float64         `json:"yaw"`
}

// Size returns width and height in meters.
func (r PlaneRectangle) Size() (width, height float64) {
	return r.Width, r.Height
}

// WidthInches returns the width in inches.
func (r PlaneRectangle) WidthInches() float64 {
	return r.Width * metersToInches
}

// HeightInches returns the height in inches.
func (r PlaneRectangle) HeightInches() float64 {
	return r.Height * metersToInches
}

// Reconstruct derives the rectangle's pose and size from three corners.
//
// Width is the length of the complete horizontal edge, height that of the
// complete vertical edge, and the center is the midpoint of the diagonal.
// Yaw is -atan(dz/dx) over the horizontal edge projected onto the XZ plane,
// so a rectangle turned by +theta about +Y reports +theta. Surfaces are
// assumed horizontal; pitch and roll are not modeled.
//
// When the horizontal edge has no X extent the yaw is clamped to pi/2, and
// when the edge collapses to a point (or holds NaN) it is 0. Reconstruct is
// total and deterministic.
func Reconstruct(t CornerTriple) PlaneRectangle {
	left, right := t.HorizontalPair()
	top, bottom := t.VerticalPair()
	a, b := t.DiagonalPair()

	return PlaneRectangle{
		Surface: t.Surface,
		Center:  a.Midpoint(b),
		Width:   left.Distance(right),
		Height:  top.Distance(bottom),
		Yaw:     yaw(left, right),
	}
}

func yaw(left, right geometry.Point3) float64 {
	dx := right.X - left.X
	dz := right.Z - left.Z

	switch {
	case math.IsNaN(dx) || math.IsNaN(dz):
		return 0
	case dx == 0 && dz == 0:
		return 0
	case dx == 0:
		return math.Pi / 2
	}

	y := -math.Atan(dz / dx)
	if y <= -math.Pi/2 {
		// atan only reaches -pi/2 through rounding; fold onto the closed end
		y = math.Pi / 2
	}
	return y
}
