// Package hittest resolves a point in normalized camera space to the known
// planar surfaces it strikes.
//
// The Tester interface is the seam to whatever provides hit testing (an AR
// tracking session in production). RayCaster is a self-contained
// implementation that casts rays from a pinhole camera against the surfaces
// of a registry, restricted to each surface's extent.
package hittest

import (
	"sort"

	"github.com/ironsheep/planar-rect-mcp/internal/geometry"
	"github.com/ironsheep/planar-rect-mcp/internal/surface"
)

// HitCandidate is one surface struck by the ray through a corner.
type HitCandidate struct {
	Surface  surface.ID      `json:"surface_id"`
	Point    geometry.Point3 `json:"point"`
	Distance float64         `json:"distance"`
}

// Tester tests a single corner against the existing planar surfaces.
//
// Implementations never fail: a corner that strikes nothing yields an empty
// slice. Results must be safe for the caller to reorder.
type Tester interface {
	TestCorner(p geometry.NormalizedPoint) []HitCandidate
}

// TesterFunc adapts an ordinary function to the Tester interface.
type TesterFunc func(p geometry.NormalizedPoint) []HitCandidate

// TestCorner calls f(p).
func (f TesterFunc) TestCorner(p geometry.NormalizedPoint) []HitCandidate {
	return f(p)
}

// SortByDistance orders hits closest first. Equal distances keep their
// original order.
func SortByDistance(hits []HitCandidate) {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
}

// SameSurface reports whether two hits struck the same surface.
func SameSurface(a, b HitCandidate) bool {
	return a.Surface == b.Surface
}
