package session

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/planar-rect-mcp/internal/config"
	"github.com/ironsheep/planar-rect-mcp/internal/detection"
	"github.com/ironsheep/planar-rect-mcp/internal/geometry"
	"github.com/ironsheep/planar-rect-mcp/internal/hittest"
	"github.com/ironsheep/planar-rect-mcp/internal/surface"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }

// overheadSession looks straight down from 1m with a 90 degree square view,
// so the middle half of the frame covers one square meter of floor.
func overheadSession(t *testing.T) (*Session, surface.Surface) {
	t.Helper()
	cfg := &config.Config{
		CameraHeight:       f64(1),
		CameraPitchDegrees: f64(-90),
		FieldOfViewDegrees: f64(90),
		AspectRatio:        f64(1),
	}
	s := New(cfg)
	floor := surface.Surface{ID: uuid.New(), Extent: surface.Extent{X: 4, Z: 4}}
	require.NoError(t, s.OnSurfaceAdded(floor))
	return s, floor
}

func square(lo, hi float64) geometry.Quad {
	return geometry.Quad{
		TopLeft:     geometry.NormalizedPoint{X: lo, Y: lo},
		TopRight:    geometry.NormalizedPoint{X: hi, Y: lo},
		BottomLeft:  geometry.NormalizedPoint{X: lo, Y: hi},
		BottomRight: geometry.NormalizedPoint{X: hi, Y: hi},
	}
}

func observation(q geometry.Quad) detection.Observation {
	return detection.Observation{ID: uuid.New(), Corners: q, Confidence: 1}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	s := New(nil)
	assert.Equal(t, hittest.DefaultCamera(), s.Camera())
	assert.Zero(t, s.Current())
	assert.False(t, s.Touching())
	assert.Empty(t, s.Rectangles())
	assert.Equal(t, HelpFindSurface, s.Hint())
}

func TestReconstruct_Places(t *testing.T) {
	t.Parallel()

	s, floor := overheadSession(t)
	gen := s.BeginTouch()
	obs := observation(square(0.25, 0.75))

	out := s.Reconstruct(gen, obs, t0)
	require.Equal(t, StatusPlaced, out.Status)
	require.NotNil(t, out.Result)
	assert.Equal(t, HelpTapReleaseRect, out.Message)
	assert.Nil(t, out.Replaced)
	assert.Equal(t, floor.ID, out.Result.Rectangle.Surface)
	assert.InDelta(t, 1, out.Result.Rectangle.Width, 1e-9)
	assert.InDelta(t, 1, out.Result.Rectangle.Height, 1e-9)

	placed, ok := s.Rectangle(obs.ID)
	require.True(t, ok)
	assert.Equal(t, gen, placed.Generation)
	assert.Len(t, s.Rectangles(), 1)
}

func TestReconstruct_NoSurface(t *testing.T) {
	t.Parallel()

	s := New(nil)
	gen := s.BeginTouch()
	out := s.Reconstruct(gen, observation(square(0.25, 0.75)), t0)

	assert.Equal(t, StatusNoSurface, out.Status)
	assert.Equal(t, ErrNoPlaneForRect, out.Message)
	assert.Nil(t, out.Result)
	assert.Empty(t, s.Rectangles())
}

func TestReconstruct_StaleGenerationDiscarded(t *testing.T) {
	t.Parallel()

	s, _ := overheadSession(t)
	old := s.BeginTouch()
	s.EndTouch()
	current := s.BeginTouch()
	require.True(t, s.IsStale(old))
	require.False(t, s.IsStale(current))

	out := s.Reconstruct(old, observation(square(0.25, 0.75)), t0)
	assert.Equal(t, StatusStale, out.Status)
	assert.Empty(t, s.Rectangles())
}

func TestReconstruct_ThrottledWhileHeld(t *testing.T) {
	t.Parallel()

	s, _ := overheadSession(t)
	gen := s.BeginTouch()

	first := s.Reconstruct(gen, observation(square(0.25, 0.75)), t0)
	require.Equal(t, StatusPlaced, first.Status)

	soon := s.Reconstruct(gen, observation(square(0.3, 0.7)), t0.Add(400*time.Millisecond))
	assert.Equal(t, StatusThrottled, soon.Status)
	assert.Len(t, s.Rectangles(), 1)

	later := s.Reconstruct(gen, observation(square(0.3, 0.7)), t0.Add(time.Second))
	assert.Equal(t, StatusPlaced, later.Status)
}

func TestShouldReconstruct(t *testing.T) {
	t.Parallel()

	s, _ := overheadSession(t)
	assert.True(t, s.ShouldReconstruct(t0), "idle sessions are never throttled")

	gen := s.BeginTouch()
	assert.True(t, s.ShouldReconstruct(t0), "first run of a touch")
	s.Reconstruct(gen, observation(square(0.25, 0.75)), t0)
	assert.False(t, s.ShouldReconstruct(t0.Add(999*time.Millisecond)))
	assert.True(t, s.ShouldReconstruct(t0.Add(time.Second)))

	s.EndTouch()
	assert.True(t, s.ShouldReconstruct(t0.Add(time.Millisecond)), "released touch")
}

func TestReconstruct_SupersedesWithinGeneration(t *testing.T) {
	t.Parallel()

	s, _ := overheadSession(t)
	gen := s.BeginTouch()
	first := observation(square(0.25, 0.75))
	second := observation(square(0.3, 0.7))

	s.Reconstruct(gen, first, t0)
	out := s.Reconstruct(gen, second, t0.Add(2*time.Second))
	require.Equal(t, StatusPlaced, out.Status)
	require.NotNil(t, out.Replaced)
	assert.Equal(t, first.ID, *out.Replaced)

	_, ok := s.Rectangle(first.ID)
	assert.False(t, ok)
	_, ok = s.Rectangle(second.ID)
	assert.True(t, ok)
	assert.Len(t, s.Rectangles(), 1)

	// a new touch keeps the earlier rectangle
	s.EndTouch()
	next := s.BeginTouch()
	third := observation(square(0.2, 0.4))
	out = s.Reconstruct(next, third, t0.Add(3*time.Second))
	require.Equal(t, StatusPlaced, out.Status)
	assert.Nil(t, out.Replaced)
	assert.Len(t, s.Rectangles(), 2)
	assert.Equal(t, second.ID, s.Rectangles()[0].ObservationID)
	assert.Equal(t, third.ID, s.Rectangles()[1].ObservationID)
}

func TestReconstruct_AfterReleaseHasNoHint(t *testing.T) {
	t.Parallel()

	s, _ := overheadSession(t)
	gen := s.BeginTouch()
	s.EndTouch()

	out := s.Reconstruct(gen, observation(square(0.25, 0.75)), t0)
	assert.Equal(t, StatusPlaced, out.Status)
	assert.Equal(t, NoMessage, out.Message)
}

func TestReconstructDetected(t *testing.T) {
	t.Parallel()

	s, _ := overheadSession(t)
	gen := s.BeginTouch()

	out := s.ReconstructDetected(gen, &detection.ObservationsResult{}, t0)
	assert.Equal(t, StatusNoRect, out.Status)
	assert.Equal(t, ErrNoRect, out.Message)

	out = s.ReconstructDetected(gen, nil, t0)
	assert.Equal(t, StatusNoRect, out.Status)

	big := observation(square(0.25, 0.75))
	small := observation(square(0.4, 0.6))
	out = s.ReconstructDetected(gen, &detection.ObservationsResult{
		Observations: []detection.Observation{big, small},
		Count:        2,
	}, t0)
	require.Equal(t, StatusPlaced, out.Status)
	assert.Equal(t, big.ID, out.ObservationID)

	out = s.ReconstructDetected(gen-1, &detection.ObservationsResult{}, t0)
	assert.Equal(t, StatusStale, out.Status)
}

func TestSurfaceRemovalDropsRectangles(t *testing.T) {
	t.Parallel()

	s, floor := overheadSession(t)
	table := surface.Surface{ID: uuid.New(), Center: geometry.P3(10, 0.7, 10), Extent: surface.Extent{X: 1, Z: 1}}
	require.NoError(t, s.OnSurfaceAdded(table))

	gen := s.BeginTouch()
	obs := observation(square(0.25, 0.75))
	require.Equal(t, StatusPlaced, s.Reconstruct(gen, obs, t0).Status)

	assert.False(t, s.OnSurfaceRemoved(uuid.New()))
	assert.True(t, s.OnSurfaceRemoved(table.ID))
	assert.Len(t, s.Rectangles(), 1, "rectangle lives on the floor")

	assert.True(t, s.OnSurfaceRemoved(floor.ID))
	assert.Empty(t, s.Rectangles())
}

func TestSurfaceUpdate(t *testing.T) {
	t.Parallel()

	s, floor := overheadSession(t)
	floor.Center = geometry.P3(0, 0.5, 0)
	require.NoError(t, s.OnSurfaceUpdated(floor))

	got, ok := s.Surfaces().Get(floor.ID)
	require.True(t, ok)
	assert.Equal(t, 0.5, got.Center.Y)

	err := s.OnSurfaceUpdated(surface.Surface{ID: uuid.New()})
	assert.ErrorIs(t, err, surface.ErrUnknownSurface)
	assert.ErrorIs(t, s.OnSurfaceAdded(floor), surface.ErrDuplicateSurface)
}

func TestRemoveRectangle(t *testing.T) {
	t.Parallel()

	s, _ := overheadSession(t)
	gen := s.BeginTouch()
	obs := observation(square(0.25, 0.75))
	s.Reconstruct(gen, obs, t0)

	assert.True(t, s.RemoveRectangle(obs.ID))
	assert.False(t, s.RemoveRectangle(obs.ID))
	assert.Empty(t, s.Rectangles())

	// the generation slot is free again
	other := observation(square(0.3, 0.7))
	out := s.Reconstruct(gen, other, t0.Add(time.Second))
	assert.Nil(t, out.Replaced)
}

func TestSetCamera(t *testing.T) {
	t.Parallel()

	s := New(nil)
	cam := hittest.DefaultCamera()
	cam.Yaw = 0.3
	require.NoError(t, s.SetCamera(cam))
	assert.Equal(t, 0.3, s.Camera().Yaw)

	for name, bad := range map[string]hittest.Camera{
		"zero fov":   {FieldOfView: 0, AspectRatio: 1},
		"wide fov":   {FieldOfView: math.Pi, AspectRatio: 1},
		"zero ratio": {FieldOfView: 1, AspectRatio: 0},
		"nan pitch":  {FieldOfView: 1, AspectRatio: 1, Pitch: math.NaN()},
		"inf y":      {FieldOfView: 1, AspectRatio: 1, Position: geometry.P3(0, math.Inf(1), 0)},
	} {
		assert.ErrorIs(t, s.SetCamera(bad), ErrInvalidCamera, name)
	}
	assert.Equal(t, 0.3, s.Camera().Yaw, "rejected cameras leave the pose alone")
}

func TestHint(t *testing.T) {
	t.Parallel()

	s := New(nil)
	assert.Equal(t, HelpFindSurface, s.Hint())

	require.NoError(t, s.OnSurfaceAdded(surface.Surface{ID: uuid.New(), Extent: surface.Extent{X: 1, Z: 1}}))
	assert.Equal(t, HelpTapHoldRect, s.Hint())

	s.BeginTouch()
	assert.Equal(t, HelpTapReleaseRect, s.Hint())
	s.EndTouch()
	assert.Equal(t, HelpTapHoldRect, s.Hint())
}

func TestOverlay(t *testing.T) {
	t.Parallel()

	s, floor := overheadSession(t)
	gen := s.BeginTouch()
	obs := observation(square(0.25, 0.75))
	s.Reconstruct(gen, obs, t0)

	entities := s.Overlay()
	require.Len(t, entities, 2)
	assert.Equal(t, floor.ID, entities[0].ID)
	assert.Equal(t, obs.ID, entities[1].ID)
	assert.Equal(t, floor.ID, entities[1].Surface)
}

func TestClear(t *testing.T) {
	t.Parallel()

	s, _ := overheadSession(t)
	gen := s.BeginTouch()
	s.Reconstruct(gen, observation(square(0.25, 0.75)), t0)

	s.Clear()
	assert.Empty(t, s.Rectangles())
	assert.Zero(t, s.Surfaces().Len())
	assert.False(t, s.Touching())
	assert.True(t, s.IsStale(gen), "work from before the clear is stale")
}

func TestMessages(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "help_find_surface", HelpFindSurface.Name())
	assert.Equal(t, "Tap and hold to select a rectangle.", HelpTapHoldRect.Text())
	assert.Contains(t, ErrNoPlaneForRect.Text(), HelpFindSurface.Text())
	assert.True(t, ErrNoRect.IsError())
	assert.False(t, HelpTapReleaseRect.IsError())
	assert.Empty(t, NoMessage.Text())
	assert.Equal(t, "message(42)", Message(42).String())
}
