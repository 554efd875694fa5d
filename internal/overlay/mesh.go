package overlay

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/ironsheep/planar-rect-mcp/internal/reconstruct"
)

// DefaultThickness is the slab thickness, in meters, used when MeshRectangle is given
// zero.
const DefaultThickness = 0.002

const (
	minMeshCells = 16
	maxMeshCells = 200

	// thickness is raised to at least this share of the longest side so the
	// slab spans several marching cubes cells
	minThicknessRatio = 1.0 / 50
)

// ErrEmptyRectangle is returned by MeshRectangle for rectangles with no area.
var ErrEmptyRectangle = errors.New("rectangle has no area")

// Mesh is a triangle soup in world coordinates.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// BoundingBox returns the axis-aligned bounds of the vertices.
func (m *Mesh) BoundingBox() (min, max [3]float64) {
	for i := range min {
		min[i] = math.Inf(1)
		max[i] = math.Inf(-1)
	}
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		for k := 0; k < 3; k++ {
			v := float64(m.Vertices[i+k])
			min[k] = math.Min(min[k], v)
			max[k] = math.Max(max[k], v)
		}
	}
	return min, max
}

// MeshRectangle builds a thin slab for r: Width along its local X, Height
// along its local Z, resting on the surface plane (bottom face at
// r.Center.Y), turned by r.Yaw about +Y.
//
// The slab is modeled as a signed distance field and tessellated with
// marching cubes. Thickness is in meters; zero means DefaultThickness.
func MeshRectangle(r reconstruct.PlaneRectangle, thickness float64) (*Mesh, error) {
	if !(r.Width > 0 && r.Height > 0) {
		return nil, ErrEmptyRectangle
	}
	if thickness <= 0 {
		thickness = DefaultThickness
	}
	longest := math.Max(r.Width, r.Height)
	thickness = math.Max(thickness, longest*minThicknessRatio)

	box, err := sdf.Box3D(v3.Vec{X: r.Width, Y: thickness, Z: r.Height}, 0)
	if err != nil {
		return nil, fmt.Errorf("build slab: %w", err)
	}

	m := sdf.Translate3d(v3.Vec{X: r.Center.X, Y: r.Center.Y + thickness/2, Z: r.Center.Z}).
		Mul(sdf.RotateY(r.Yaw))
	slab := sdf.Transform3D(box, m)

	return tessellate(slab, meshCells(slab, thickness)), nil
}

// meshCells picks a marching cubes resolution that keeps at least four cells
// across the slab's thickness.
func meshCells(s sdf.SDF3, thickness float64) int {
	bb := s.BoundingBox()
	longest := math.Max(bb.Max.X-bb.Min.X, math.Max(bb.Max.Y-bb.Min.Y, bb.Max.Z-bb.Min.Z))
	cells := int(math.Ceil(4 * longest / thickness))
	return max(minMeshCells, min(maxMeshCells, cells))
}

func tessellate(s sdf.SDF3, cells int) *Mesh {
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	numVerts := len(triangles) * 3
	mesh := &Mesh{
		Vertices: make([]float32, 0, numVerts*3),
		Normals:  make([]float32, 0, numVerts*3),
		Indices:  make([]uint32, 0, numVerts),
	}

	for i, tri := range triangles {
		n := tri.Normal()
		for j := 0; j < 3; j++ {
			v := tri[j]
			mesh.Vertices = append(mesh.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			mesh.Normals = append(mesh.Normals, float32(n.X), float32(n.Y), float32(n.Z))
			mesh.Indices = append(mesh.Indices, uint32(i*3+j))
		}
	}
	return mesh
}
