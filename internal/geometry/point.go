// Package geometry holds the world-space value types shared by the
// reconstruction core: 3D points in meters, the four logical rectangle
// corners, and points in normalized camera space.
//
// The world frame is right-handed with Y up. Surfaces are horizontal, so
// rotations of interest happen about the Y axis only.
package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// Point3 is an immutable position in world space, in meters.
type Point3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// P3 is shorthand for building a Point3.
func P3(x, y, z float64) Point3 {
	return Point3{X: x, Y: y, Z: z}
}

// FromVector converts an r3 vector into a Point3.
func FromVector(v r3.Vector) Point3 {
	return Point3{X: v.X, Y: v.Y, Z: v.Z}
}

// Vector returns the point as an r3 vector.
func (p Point3) Vector() r3.Vector {
	return r3.Vector{X: p.X, Y: p.Y, Z: p.Z}
}

// Distance returns the Euclidean distance between p and q.
func (p Point3) Distance(q Point3) float64 {
	return p.Vector().Distance(q.Vector())
}

// Midpoint returns the point halfway between p and q.
func (p Point3) Midpoint(q Point3) Point3 {
	return FromVector(p.Vector().Add(q.Vector()).Mul(0.5))
}

// Add returns p translated by q.
func (p Point3) Add(q Point3) Point3 {
	return FromVector(p.Vector().Add(q.Vector()))
}

// Sub returns the vector from q to p.
func (p Point3) Sub(q Point3) Point3 {
	return FromVector(p.Vector().Sub(q.Vector()))
}

// Scale multiplies every component by s.
func (p Point3) Scale(s float64) Point3 {
	return FromVector(p.Vector().Mul(s))
}

// Norm returns the length of p treated as a vector.
func (p Point3) Norm() float64 {
	return p.Vector().Norm()
}

// Dot returns the dot product of p and q.
func (p Point3) Dot(q Point3) float64 {
	return p.Vector().Dot(q.Vector())
}

// RotateY rotates p about the world Y axis by angle radians (right-handed).
func (p Point3) RotateY(angle float64) Point3 {
	s, c := math.Sincos(angle)
	return Point3{
		X: c*p.X + s*p.Z,
		Y: p.Y,
		Z: -s*p.X + c*p.Z,
	}
}

func (p Point3) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", p.X, p.Y, p.Z)
}
