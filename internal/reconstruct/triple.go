package reconstruct

import (
	"math"

	"github.com/ironsheep/planar-rect-mcp/internal/geometry"
	"github.com/ironsheep/planar-rect-mcp/internal/surface"
)

// CornerTriple is three of the four rectangle corners, all resolved to world
// points on one surface. Missing names the corner that was left out.
type CornerTriple struct {
	Surface surface.ID
	Missing geometry.Corner
	points  [4]geometry.Point3
}

// NewCornerTriple binds the three corners other than missing. The point
// given for the missing corner, if any, is ignored.
func NewCornerTriple(id surface.ID, missing geometry.Corner, points map[geometry.Corner]geometry.Point3) CornerTriple {
	t := CornerTriple{Surface: id, Missing: missing}
	for _, c := range geometry.Corners() {
		if c != missing {
			t.points[c] = points[c]
		}
	}
	return t
}

// Point returns the world point bound to c. ok is false for the missing
// corner.
func (t CornerTriple) Point(c geometry.Corner) (p geometry.Point3, ok bool) {
	if c == t.Missing || !c.Valid() {
		return p, false
	}
	return t.points[c], true
}

// HorizontalPair returns the left and right points of whichever edge, top or
// bottom, is complete.
func (t CornerTriple) HorizontalPair() (left, right geometry.Point3) {
	if t.Missing.IsTop() {
		return t.points[geometry.BottomLeft], t.points[geometry.BottomRight]
	}
	return t.points[geometry.TopLeft], t.points[geometry.TopRight]
}

// VerticalPair returns the top and bottom points of whichever edge, left or
// right, is complete.
func (t CornerTriple) VerticalPair() (top, bottom geometry.Point3) {
	if t.Missing.IsLeft() {
		return t.points[geometry.TopRight], t.points[geometry.BottomRight]
	}
	return t.points[geometry.TopLeft], t.points[geometry.BottomLeft]
}

// DiagonalPair returns the two bound corners that are not adjacent.
func (t CornerTriple) DiagonalPair() (a, b geometry.Point3) {
	switch t.Missing {
	case geometry.TopLeft, geometry.BottomRight:
		return t.points[geometry.TopRight], t.points[geometry.BottomLeft]
	default:
		return t.points[geometry.TopLeft], t.points[geometry.BottomRight]
	}
}

// Vertex is the bound corner adjacent to both others.
func (t CornerTriple) Vertex() geometry.Corner {
	return t.Missing.Opposite()
}

// CornerAngle returns the angle, in radians, at the vertex corner. A true
// rectangle gives pi/2. An edge of zero length has no angle and gives 0.
func (t CornerTriple) CornerAngle() float64 {
	c := t.points[t.Vertex()]
	a, b := t.DiagonalPair()

	distA := c.Distance(b)
	distB := c.Distance(a)
	distC := a.Distance(b)
	if distA == 0 || distB == 0 {
		return 0
	}

	cos := (distA*distA + distB*distB - distC*distC) / (2 * distA * distB)
	if math.IsNaN(cos) {
		return 0
	}
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}
