package hittest

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ironsheep/planar-rect-mcp/internal/geometry"
	"github.com/ironsheep/planar-rect-mcp/internal/surface"
)

// minDirY is the smallest vertical ray component considered non-parallel to
// a horizontal surface.
const minDirY = 1e-9

// Camera is a pinhole camera looking down its local -Z axis with +Y up.
//
// Yaw rotates the camera about world +Y and Pitch about its local +X, both
// in radians; a negative pitch tilts the view toward the floor.
// FieldOfView is the full horizontal angle in radians and AspectRatio is
// frame width divided by frame height.
type Camera struct {
	Position    geometry.Point3 `json:"position"`
	Yaw         float64         `json:"yaw"`
	Pitch       float64         `json:"pitch"`
	FieldOfView float64         `json:"field_of_view"`
	AspectRatio float64         `json:"aspect_ratio"`
}

// DefaultCamera sits at eye height over the origin looking straight down.
func DefaultCamera() Camera {
	return Camera{
		Position:    geometry.P3(0, 1.5, 0),
		Pitch:       -math.Pi / 2,
		FieldOfView: 60 * math.Pi / 180,
		AspectRatio: 4.0 / 3.0,
	}
}

// Rotation returns the camera-to-world rotation Ry(yaw) * Rx(pitch).
func (c Camera) Rotation() *mat.Dense {
	sy, cy := math.Sincos(c.Yaw)
	sp, cp := math.Sincos(c.Pitch)

	ry := mat.NewDense(3, 3, []float64{
		cy, 0, sy,
		0, 1, 0,
		-sy, 0, cy,
	})
	rx := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, cp, -sp,
		0, sp, cp,
	})

	var r mat.Dense
	r.Mul(ry, rx)
	return &r
}

// Ray returns the world-space origin and unit direction of the ray through
// the normalized point p.
func (c Camera) Ray(p geometry.NormalizedPoint) (origin, dir geometry.Point3) {
	aspect := c.AspectRatio
	if aspect <= 0 {
		aspect = 1
	}
	halfW := math.Tan(c.FieldOfView / 2)
	halfH := halfW / aspect

	local := mat.NewVecDense(3, []float64{
		(2*p.X - 1) * halfW,
		(1 - 2*p.Y) * halfH,
		-1,
	})

	var world mat.VecDense
	world.MulVec(c.Rotation(), local)

	d := geometry.P3(world.AtVec(0), world.AtVec(1), world.AtVec(2))
	return c.Position, d.Scale(1 / d.Norm())
}

// SurfaceSource lists the surfaces a RayCaster may strike.
type SurfaceSource interface {
	List() []surface.Surface
}

// RayCaster hit-tests against every surface of a source, honoring extents.
type RayCaster struct {
	Camera   Camera
	Surfaces SurfaceSource
}

// NewRayCaster binds a camera to a set of known surfaces.
func NewRayCaster(cam Camera, surfaces SurfaceSource) *RayCaster {
	return &RayCaster{Camera: cam, Surfaces: surfaces}
}

// TestCorner casts the ray through p and returns every surface it strikes
// within that surface's extent, closest first.
func (rc *RayCaster) TestCorner(p geometry.NormalizedPoint) []HitCandidate {
	hits := make([]HitCandidate, 0)
	if rc.Surfaces == nil {
		return hits
	}

	origin, dir := rc.Camera.Ray(p)
	if math.Abs(dir.Y) < minDirY {
		return hits
	}

	for _, s := range rc.Surfaces.List() {
		t := (s.Center.Y - origin.Y) / dir.Y
		if t <= 0 {
			continue
		}
		point := origin.Add(dir.Scale(t))
		if !s.Contains(point) {
			continue
		}
		hits = append(hits, HitCandidate{
			Surface:  s.ID,
			Point:    point,
			Distance: t,
		})
	}

	SortByDistance(hits)
	return hits
}
