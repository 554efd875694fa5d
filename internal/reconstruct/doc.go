// Package reconstruct places a rectangle observed in a camera frame onto a
// known planar surface and measures it in world space.
//
// # Pipeline
//
//  1. Hit testing: each of the four corners is tested against the known
//     surfaces (see package hittest), giving zero or more candidates per corner.
//  2. Resolution: Resolve looks for a surface shared by at least three
//     corners, trying corner subsets in a fixed priority order.
//  3. Reconstruction: Reconstruct turns the resolved CornerTriple into a
//     PlaneRectangle (center, width, height, yaw).
//
// TryReconstruct chains the three steps.
//
// # Failure Model
//
// Nothing in this package returns an error. A corner with no hits only
// narrows the search; a rectangle whose corners share no surface yields
// ok == false and the caller decides what to tell the user. Once a
// CornerTriple exists, reconstruction always succeeds.
//
// # Conventions
//
// The world frame is right-handed with Y up and surfaces are horizontal.
// Image "top" corners are the far edge of the rectangle. Yaw is measured
// about +Y: a rectangle turned by +theta reports +theta, and a horizontal
// edge with no X extent is clamped to pi/2.
//
// Every function is pure and synchronous. Callers serialize reconstruction
// with surface registry mutation.
package reconstruct
