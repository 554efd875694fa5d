// Package overlay describes what a renderer should draw over the camera view:
// known surfaces and the rectangles placed on them.
//
// Entities are plain data. A client draws a surface as a horizontal plane of
// Width x Depth centered on Center and turned by Yaw about +Y, textured with
// a grid that repeats GridRepeat times along each side so that one cell is
// one inch. Rectangles are drawn the same way in their own color. Mesh
// produces a triangle mesh for clients that cannot build planes themselves.
package overlay

import (
	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/planar-rect-mcp/internal/geometry"
	"github.com/ironsheep/planar-rect-mcp/internal/reconstruct"
	"github.com/ironsheep/planar-rect-mcp/internal/surface"
)

// Kind distinguishes surface entities from rectangle entities.
type Kind string

const (
	KindSurface   Kind = "surface"
	KindRectangle Kind = "rectangle"
)

// gridCellsPerMeter is the repeat rate of the surface grid texture: the
// texture tile is 0.4064 m and holds 16 one-inch cells.
const gridCellsPerMeter = 1 / 0.4064

// RectangleColor is the stroke and fill color for placed rectangles.
const RectangleColor = "#ff0000"

// Entity is one renderable item.
type Entity struct {
	ID         uuid.UUID       `json:"id"`
	Kind       Kind            `json:"kind"`
	Surface    uuid.UUID       `json:"surface_id"`
	Center     geometry.Point3 `json:"center"`
	Width      float64         `json:"width"`
	Depth      float64         `json:"depth"`
	Yaw        float64         `json:"yaw"`
	Color      string          `json:"color"`
	GridRepeat [2]float64      `json:"grid_repeat,omitempty"`
}

// ForSurface returns the entity for a known surface. The entity ID is the
// surface ID.
func ForSurface(s surface.Surface) Entity {
	return Entity{
		ID:      s.ID,
		Kind:    KindSurface,
		Surface: s.ID,
		Center:  s.Center,
		Width:   s.Extent.X,
		Depth:   s.Extent.Z,
		Yaw:     s.Yaw,
		Color:   SurfaceColor(s.ID),
		GridRepeat: [2]float64{
			gridCellsPerMeter * s.Extent.X,
			gridCellsPerMeter * s.Extent.Z,
		},
	}
}

// ForRectangle returns the entity for a placed rectangle, identified by the
// observation it was reconstructed from.
func ForRectangle(id uuid.UUID, r reconstruct.PlaneRectangle) Entity {
	return Entity{
		ID:      id,
		Kind:    KindRectangle,
		Surface: r.Surface,
		Center:  r.Center,
		Width:   r.Width,
		Depth:   r.Height,
		Yaw:     r.Yaw,
		Color:   RectangleColor,
	}
}

// SurfaceColor derives a stable color from a surface ID so that neighboring
// surfaces are easy to tell apart.
func SurfaceColor(id uuid.UUID) string {
	hue := float64(uint16(id[0])<<8|uint16(id[1])) / 65536 * 360
	return colorful.Hsv(hue, 0.6, 0.9).Hex()
}
