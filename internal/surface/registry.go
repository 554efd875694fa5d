// Package surface tracks the planar surfaces reported by the external
// plane-detection system.
//
// Surfaces are keyed by the identity of the plane anchor that produced them
// and follow an explicit add / update / remove lifecycle driven by the
// tracking system's events. The registry never invents or mutates surfaces
// on its own.
//
// # Thread Safety
//
// A Registry is not safe for concurrent mutation. It is owned by a single
// logical thread (the session loop) which also performs reconstruction, so
// reads during a reconstruction never race with an add, update or remove.
package surface

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/ironsheep/planar-rect-mcp/internal/geometry"
)

var (
	// ErrDuplicateSurface is returned by Add when the id is already known.
	ErrDuplicateSurface = errors.New("surface already registered")

	// ErrUnknownSurface is returned by Update for an id that was never added
	// or has been removed.
	ErrUnknownSurface = errors.New("unknown surface")
)

// ID identifies a surface. It is backed by the plane anchor's identity.
type ID = uuid.UUID

// Extent is the size of a surface along its local X and Z axes, in meters.
type Extent struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Surface is a horizontal plane at height Center.Y, centered on Center and
// rotated by Yaw radians about the world Y axis.
type Surface struct {
	ID     ID              `json:"id"`
	Center geometry.Point3 `json:"center"`
	Extent Extent          `json:"extent"`
	Yaw    float64         `json:"yaw"`
}

// Contains reports whether p, projected onto the surface plane, falls within
// the surface extent. The Y component of p is ignored.
func (s Surface) Contains(p geometry.Point3) bool {
	local := p.Sub(s.Center).RotateY(-s.Yaw)
	return math.Abs(local.X) <= s.Extent.X/2 && math.Abs(local.Z) <= s.Extent.Z/2
}

// EventKind tells listeners what happened to a surface.
type EventKind int

const (
	Added EventKind = iota
	Updated
	Removed
)

func (k EventKind) String() string {
	switch k {
	case Added:
		return "added"
	case Updated:
		return "updated"
	case Removed:
		return "removed"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is delivered to the registry listener after each mutation.
type Event struct {
	Kind    EventKind
	Surface Surface
}

// Registry maps surface ids to their latest reported extent and pose.
type Registry struct {
	surfaces map[ID]Surface
	order    []ID
	listener func(Event)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		surfaces: make(map[ID]Surface),
	}
}

// OnChange installs fn to be called after every successful mutation.
// Passing nil removes the listener.
func (r *Registry) OnChange(fn func(Event)) {
	r.listener = fn
}

// Add registers a newly discovered surface.
func (r *Registry) Add(s Surface) error {
	if _, ok := r.surfaces[s.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSurface, s.ID)
	}
	if err := validate(s); err != nil {
		return err
	}
	r.surfaces[s.ID] = s
	r.order = append(r.order, s.ID)
	r.notify(Added, s)
	return nil
}

// Update replaces the extent and pose of a known surface.
func (r *Registry) Update(s Surface) error {
	if _, ok := r.surfaces[s.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSurface, s.ID)
	}
	if err := validate(s); err != nil {
		return err
	}
	r.surfaces[s.ID] = s
	r.notify(Updated, s)
	return nil
}

// Remove forgets a surface. It reports whether the id was known.
func (r *Registry) Remove(id ID) bool {
	s, ok := r.surfaces[id]
	if !ok {
		return false
	}
	delete(r.surfaces, id)
	for i, known := range r.order {
		if known == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.notify(Removed, s)
	return true
}

// Get returns the surface registered under id.
func (r *Registry) Get(id ID) (Surface, bool) {
	s, ok := r.surfaces[id]
	return s, ok
}

// List returns every surface in the order it was first added.
func (r *Registry) List() []Surface {
	out := make([]Surface, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.surfaces[id])
	}
	return out
}

// Len returns the number of registered surfaces.
func (r *Registry) Len() int {
	return len(r.surfaces)
}

// Clear removes every surface, notifying the listener for each one.
func (r *Registry) Clear() {
	for _, s := range r.List() {
		r.Remove(s.ID)
	}
}

func (r *Registry) notify(kind EventKind, s Surface) {
	if r.listener != nil {
		r.listener(Event{Kind: kind, Surface: s})
	}
}

func validate(s Surface) error {
	if s.ID == uuid.Nil {
		return fmt.Errorf("surface id must not be nil")
	}
	if s.Extent.X < 0 || s.Extent.Z < 0 {
		return fmt.Errorf("surface %s: negative extent (%g, %g)", s.ID, s.Extent.X, s.Extent.Z)
	}
	if math.IsNaN(s.Center.X) || math.IsNaN(s.Center.Y) || math.IsNaN(s.Center.Z) || math.IsNaN(s.Yaw) {
		return fmt.Errorf("surface %s: pose contains NaN", s.ID)
	}
	return nil
}
