package reconstruct

import (
	"github.com/ironsheep/planar-rect-mcp/internal/geometry"
	"github.com/ironsheep/planar-rect-mcp/internal/hittest"
)

// Result is a successful reconstruction together with what produced it.
type Result struct {
	Rectangle   PlaneRectangle `json:"rectangle"`
	Missing     string         `json:"missing_corner"`
	CornerAngle float64        `json:"corner_angle"`
	Triple      CornerTriple   `json:"-"`
}

// HitCorners tests each corner of q against tester.
func HitCorners(q geometry.Quad, tester hittest.Tester) CornerCandidates {
	return CornerCandidates{
		TopLeft:     tester.TestCorner(q.TopLeft),
		TopRight:    tester.TestCorner(q.TopRight),
		BottomLeft:  tester.TestCorner(q.BottomLeft),
		BottomRight: tester.TestCorner(q.BottomRight),
	}
}

// TryReconstruct places an observed rectangle on the known surfaces seen by
// tester. ok is false when no three corners share a surface.
func TryReconstruct(q geometry.Quad, tester hittest.Tester, opts ResolveOptions) (Result, bool) {
	triple, ok := Resolve(HitCorners(q, tester), opts)
	if !ok {
		return Result{}, false
	}
	return Result{
		Rectangle:   Reconstruct(triple),
		Missing:     triple.Missing.String(),
		CornerAngle: triple.CornerAngle(),
		Triple:      triple,
	}, true
}
