package reconstruct

import (
	"github.com/ironsheep/planar-rect-mcp/internal/geometry"
	"github.com/ironsheep/planar-rect-mcp/internal/hittest"
	"github.com/ironsheep/planar-rect-mcp/internal/intersect"
)

// CornerCandidates holds the hit-test results of all four corners.
type CornerCandidates struct {
	TopLeft     []hittest.HitCandidate `json:"top_left"`
	TopRight    []hittest.HitCandidate `json:"top_right"`
	BottomLeft  []hittest.HitCandidate `json:"bottom_left"`
	BottomRight []hittest.HitCandidate `json:"bottom_right"`
}

// For returns the candidates of corner c.
func (cc CornerCandidates) For(c geometry.Corner) []hittest.HitCandidate {
	switch c {
	case geometry.TopLeft:
		return cc.TopLeft
	case geometry.TopRight:
		return cc.TopRight
	case geometry.BottomLeft:
		return cc.BottomLeft
	case geometry.BottomRight:
		return cc.BottomRight
	default:
		return nil
	}
}

// Counts returns the number of candidates per corner, in canonical order.
func (cc CornerCandidates) Counts() [4]int {
	return [4]int{len(cc.TopLeft), len(cc.TopRight), len(cc.BottomLeft), len(cc.BottomRight)}
}

// ResolveOptions tunes how a common surface is chosen.
type ResolveOptions struct {
	// SortByDistance orders each corner's candidates closest first before
	// intersecting, so the first common surface is the nearest one along the
	// first corner's ray. When false, encounter order decides.
	SortByDistance bool
}

// DefaultResolveOptions sorts by distance.
func DefaultResolveOptions() ResolveOptions {
	return ResolveOptions{SortByDistance: true}
}

// triples is the fixed order in which corner subsets are tried.
var triples = [...]struct {
	missing geometry.Corner
	corners [3]geometry.Corner
}{
	{geometry.BottomRight, [3]geometry.Corner{geometry.TopLeft, geometry.TopRight, geometry.BottomLeft}},
	{geometry.BottomLeft, [3]geometry.Corner{geometry.TopLeft, geometry.TopRight, geometry.BottomRight}},
	{geometry.TopRight, [3]geometry.Corner{geometry.TopLeft, geometry.BottomLeft, geometry.BottomRight}},
	{geometry.TopLeft, [3]geometry.Corner{geometry.TopRight, geometry.BottomLeft, geometry.BottomRight}},
}

// Resolve finds a surface struck by at least three corners and binds those
// corners to their hit points on it.
//
// Subsets are tried in a fixed order: top-left/top-right/bottom-left, then
// top-left/top-right/bottom-right, then top-left/bottom-left/bottom-right,
// then top-right/bottom-left/bottom-right. Within a subset the first common
// surface in the first corner's list wins. ok is false when no subset shares
// a surface; that is an ordinary outcome, not an error.
func Resolve(cc CornerCandidates, opts ResolveOptions) (triple CornerTriple, ok bool) {
	lists := make(map[geometry.Corner][]hittest.HitCandidate, 4)
	for _, c := range geometry.Corners() {
		hits := cc.For(c)
		if opts.SortByDistance {
			hits = append([]hittest.HitCandidate(nil), hits...)
			hittest.SortByDistance(hits)
		}
		lists[c] = hits
	}

	for _, tr := range triples {
		subset := [][]hittest.HitCandidate{
			lists[tr.corners[0]],
			lists[tr.corners[1]],
			lists[tr.corners[2]],
		}
		common, found := intersect.FirstCommon(subset, hittest.SameSurface)
		if !found {
			continue
		}

		points := make(map[geometry.Corner]geometry.Point3, 3)
		for i, c := range tr.corners {
			hit, _ := firstOn(subset[i], common)
			points[c] = hit.Point
		}
		return NewCornerTriple(common.Surface, tr.missing, points), true
	}

	return triple, false
}

// firstOn returns the first hit in hits that struck the same surface as ref.
func firstOn(hits []hittest.HitCandidate, ref hittest.HitCandidate) (hittest.HitCandidate, bool) {
	for _, h := range hits {
		if hittest.SameSurface(h, ref) {
			return h, true
		}
	}
	return hittest.HitCandidate{}, false
}
