// Package session holds the state a placement session mutates: the surface
// registry, the camera, the touch generation and the rectangles placed so
// far.
//
// # Thread Safety
//
// A Session is owned by one goroutine (the server loop). Only detection runs
// elsewhere, on a DetectWorker, and its results come back over a channel
// tagged with the generation they were started for. Results whose generation
// is no longer current are discarded rather than merged.
package session

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/planar-rect-mcp/internal/config"
	"github.com/ironsheep/planar-rect-mcp/internal/detection"
	"github.com/ironsheep/planar-rect-mcp/internal/hittest"
	"github.com/ironsheep/planar-rect-mcp/internal/overlay"
	"github.com/ironsheep/planar-rect-mcp/internal/reconstruct"
	"github.com/ironsheep/planar-rect-mcp/internal/surface"
)

// ErrInvalidCamera is returned by SetCamera for unusable intrinsics or NaN
// poses.
var ErrInvalidCamera = errors.New("invalid camera")

// Generation counts touches. Each BeginTouch starts a new one.
type Generation uint64

// Status summarizes what Reconstruct did.
type Status string

const (
	StatusPlaced    Status = "placed"
	StatusNoSurface Status = "no_surface"
	StatusNoRect    Status = "no_rectangle"
	StatusStale     Status = "stale"
	StatusThrottled Status = "throttled"
)

// Outcome is the result of one reconstruction attempt.
type Outcome struct {
	Status        Status              `json:"status"`
	Generation    Generation          `json:"generation"`
	ObservationID uuid.UUID           `json:"observation_id"`
	Result        *reconstruct.Result `json:"result,omitempty"`
	Replaced      *uuid.UUID          `json:"replaced,omitempty"`
	Message       Message             `json:"-"`
}

// Placed is a stored rectangle and the observation it came from.
type Placed struct {
	ObservationID uuid.UUID          `json:"observation_id"`
	Generation    Generation         `json:"generation"`
	Result        reconstruct.Result `json:"result"`
}

// Session is the owning-thread state of a placement session.
type Session struct {
	cfg      *config.Config
	registry *surface.Registry
	camera   hittest.Camera

	gen      Generation
	touching bool
	lastRun  time.Time

	placed map[uuid.UUID]Placed
	order  []uuid.UUID

	// latest rectangle placed during each generation; a newer one replaces it
	latest map[Generation]uuid.UUID
}

// New creates a session configured by cfg. A nil cfg uses defaults.
func New(cfg *config.Config) *Session {
	if cfg == nil {
		cfg = config.Empty()
	}
	s := &Session{
		cfg:      cfg,
		registry: surface.NewRegistry(),
		camera:   cfg.Camera(),
		placed:   make(map[uuid.UUID]Placed),
		latest:   make(map[Generation]uuid.UUID),
	}
	s.registry.OnChange(s.surfaceChanged)
	return s
}

// Config returns the session configuration.
func (s *Session) Config() *config.Config {
	return s.cfg
}

// Surfaces exposes the registry for reads.
func (s *Session) Surfaces() *surface.Registry {
	return s.registry
}

// Camera returns the current camera pose.
func (s *Session) Camera() hittest.Camera {
	return s.camera
}

// SetCamera replaces the camera pose used for hit testing.
func (s *Session) SetCamera(cam hittest.Camera) error {
	if !(cam.FieldOfView > 0 && cam.FieldOfView < math.Pi) {
		return fmt.Errorf("%w: field of view %g", ErrInvalidCamera, cam.FieldOfView)
	}
	if !(cam.AspectRatio > 0) {
		return fmt.Errorf("%w: aspect ratio %g", ErrInvalidCamera, cam.AspectRatio)
	}
	for _, v := range []float64{cam.Position.X, cam.Position.Y, cam.Position.Z, cam.Yaw, cam.Pitch} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: pose is not finite", ErrInvalidCamera)
		}
	}
	s.camera = cam
	return nil
}

// Tester returns a hit tester for the current camera and surfaces.
func (s *Session) Tester() hittest.Tester {
	return hittest.NewRayCaster(s.camera, s.registry)
}

// OnSurfaceAdded registers a surface reported by plane tracking.
func (s *Session) OnSurfaceAdded(sf surface.Surface) error {
	return s.registry.Add(sf)
}

// OnSurfaceUpdated refreshes a tracked surface.
func (s *Session) OnSurfaceUpdated(sf surface.Surface) error {
	return s.registry.Update(sf)
}

// OnSurfaceRemoved forgets a surface and every rectangle placed on it.
func (s *Session) OnSurfaceRemoved(id surface.ID) bool {
	return s.registry.Remove(id)
}

func (s *Session) surfaceChanged(e surface.Event) {
	if e.Kind != surface.Removed {
		return
	}
	for _, id := range append([]uuid.UUID(nil), s.order...) {
		if s.placed[id].Result.Rectangle.Surface == e.Surface.ID {
			s.drop(id)
		}
	}
}

// BeginTouch starts a new touch and returns its generation. Work started
// for earlier generations becomes stale.
func (s *Session) BeginTouch() Generation {
	s.gen++
	s.touching = true
	s.lastRun = time.Time{}
	return s.gen
}

// EndTouch releases the current touch. The generation stays current until
// the next BeginTouch.
func (s *Session) EndTouch() {
	s.touching = false
}

// Touching reports whether a touch is held.
func (s *Session) Touching() bool {
	return s.touching
}

// Current returns the latest generation.
func (s *Session) Current() Generation {
	return s.gen
}

// IsStale reports whether gen has been superseded.
func (s *Session) IsStale(gen Generation) bool {
	return gen != s.gen
}

// ShouldReconstruct reports whether a reconstruction may run at now. While
// a touch is held runs are spaced by the configured interval.
func (s *Session) ShouldReconstruct(now time.Time) bool {
	if !s.touching || s.lastRun.IsZero() {
		return true
	}
	return now.Sub(s.lastRun) >= s.cfg.GetReconstructInterval()
}

// Hint returns the help message that fits the session state.
func (s *Session) Hint() Message {
	switch {
	case s.registry.Len() == 0:
		return HelpFindSurface
	case s.touching:
		return HelpTapReleaseRect
	default:
		return HelpTapHoldRect
	}
}

// Reconstruct places obs on the known surfaces.
//
// Results for a stale generation are dropped, as are runs that come too soon
// after the previous one while the touch is held. A placed rectangle is
// stored under the observation ID and replaces the rectangle placed earlier
// in the same generation.
func (s *Session) Reconstruct(gen Generation, obs detection.Observation, now time.Time) Outcome {
	out := Outcome{Generation: gen, ObservationID: obs.ID}
	if s.IsStale(gen) {
		out.Status = StatusStale
		return out
	}
	if !s.ShouldReconstruct(now) {
		out.Status = StatusThrottled
		return out
	}
	s.lastRun = now

	res, ok := reconstruct.TryReconstruct(obs.Corners, s.Tester(), s.cfg.ResolveOptions())
	if !ok {
		out.Status = StatusNoSurface
		out.Message = ErrNoPlaneForRect
		return out
	}

	if prev, ok := s.latest[gen]; ok && prev != obs.ID {
		s.drop(prev)
		out.Replaced = &prev
	}
	s.store(Placed{ObservationID: obs.ID, Generation: gen, Result: res})

	out.Status = StatusPlaced
	out.Result = &res
	if s.touching {
		out.Message = HelpTapReleaseRect
	}
	return out
}

// ReconstructDetected places the largest observation of a detection run.
// An empty run yields ErrNoRect.
func (s *Session) ReconstructDetected(gen Generation, found *detection.ObservationsResult, now time.Time) Outcome {
	if s.IsStale(gen) {
		return Outcome{Status: StatusStale, Generation: gen}
	}
	if found == nil || len(found.Observations) == 0 {
		return Outcome{Status: StatusNoRect, Generation: gen, Message: ErrNoRect}
	}
	return s.Reconstruct(gen, found.Observations[0], now)
}

func (s *Session) store(p Placed) {
	if _, ok := s.placed[p.ObservationID]; !ok {
		s.order = append(s.order, p.ObservationID)
	}
	s.placed[p.ObservationID] = p
	s.latest[p.Generation] = p.ObservationID
}

func (s *Session) drop(id uuid.UUID) {
	p, ok := s.placed[id]
	if !ok {
		return
	}
	delete(s.placed, id)
	if s.latest[p.Generation] == id {
		delete(s.latest, p.Generation)
	}
	for i, known := range s.order {
		if known == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Rectangles returns placed rectangles in placement order.
func (s *Session) Rectangles() []Placed {
	out := make([]Placed, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.placed[id])
	}
	return out
}

// Rectangle returns the rectangle placed for an observation.
func (s *Session) Rectangle(id uuid.UUID) (Placed, bool) {
	p, ok := s.placed[id]
	return p, ok
}

// RemoveRectangle forgets one placed rectangle.
func (s *Session) RemoveRectangle(id uuid.UUID) bool {
	if _, ok := s.placed[id]; !ok {
		return false
	}
	s.drop(id)
	return true
}

// Overlay lists every surface followed by every placed rectangle.
func (s *Session) Overlay() []overlay.Entity {
	entities := make([]overlay.Entity, 0, s.registry.Len()+len(s.order))
	for _, sf := range s.registry.List() {
		entities = append(entities, overlay.ForSurface(sf))
	}
	for _, p := range s.Rectangles() {
		entities = append(entities, overlay.ForRectangle(p.ObservationID, p.Result.Rectangle))
	}
	return entities
}

// Clear forgets every surface and rectangle and ends any touch. The
// generation keeps counting so in-flight work stays stale.
func (s *Session) Clear() {
	s.registry.Clear()
	s.placed = make(map[uuid.UUID]Placed)
	s.latest = make(map[Generation]uuid.UUID)
	s.order = nil
	s.touching = false
	s.lastRun = time.Time{}
	s.gen++
}
