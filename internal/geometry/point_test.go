package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoint3_Distance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Point3
		want float64
	}{
		{"same point", P3(1, 2, 3), P3(1, 2, 3), 0},
		{"unit x", P3(0, 0, 0), P3(1, 0, 0), 1},
		{"3-4-5 in xz", P3(0, 0, 0), P3(3, 0, 4), 5},
		{"negative coords", P3(-1, -1, -1), P3(1, 1, 1), 2 * math.Sqrt(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.a.Distance(tt.b), 1e-12)
			assert.InDelta(t, tt.want, tt.b.Distance(tt.a), 1e-12, "distance is symmetric")
		})
	}
}

func TestPoint3_Midpoint(t *testing.T) {
	t.Parallel()

	m := P3(0, 0, 0).Midpoint(P3(2, 4, -6))
	assert.Equal(t, P3(1, 2, -3), m)

	// midpoint is equidistant
	a, b := P3(0.3, 0.1, -1.2), P3(-0.4, 0.1, 0.8)
	mid := a.Midpoint(b)
	assert.InDelta(t, a.Distance(mid), b.Distance(mid), 1e-12)
}

func TestPoint3_Arithmetic(t *testing.T) {
	t.Parallel()

	p := P3(1, 2, 3)
	q := P3(0.5, -1, 2)

	assert.Equal(t, P3(1.5, 1, 5), p.Add(q))
	assert.Equal(t, P3(0.5, 3, 1), p.Sub(q))
	assert.Equal(t, P3(2, 4, 6), p.Scale(2))
	assert.InDelta(t, 0.5-2+6, p.Dot(q), 1e-12)
	assert.InDelta(t, math.Sqrt(14), p.Norm(), 1e-12)
}

func TestPoint3_RotateY(t *testing.T) {
	t.Parallel()

	// +X rotated a quarter turn about +Y lands on -Z.
	r := P3(1, 0, 0).RotateY(math.Pi / 2)
	assert.InDelta(t, 0, r.X, 1e-12)
	assert.InDelta(t, 0, r.Y, 1e-12)
	assert.InDelta(t, -1, r.Z, 1e-12)

	// Y is untouched and length preserved.
	p := P3(0.3, 7, -0.9)
	rp := p.RotateY(0.7)
	assert.Equal(t, p.Y, rp.Y)
	assert.InDelta(t, p.Norm(), rp.Norm(), 1e-12)
}

func TestCorner_Strings(t *testing.T) {
	t.Parallel()

	for _, c := range Corners() {
		parsed, err := ParseCorner(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
		assert.True(t, c.Valid())
		assert.Equal(t, c, c.Opposite().Opposite())
	}

	_, err := ParseCorner("middle")
	assert.Error(t, err)
	assert.False(t, Corner(9).Valid())
	assert.Equal(t, "corner(9)", Corner(9).String())
}

func TestCorner_Edges(t *testing.T) {
	t.Parallel()

	assert.True(t, TopLeft.IsTop())
	assert.True(t, TopLeft.IsLeft())
	assert.True(t, TopRight.IsTop())
	assert.False(t, TopRight.IsLeft())
	assert.False(t, BottomLeft.IsTop())
	assert.True(t, BottomLeft.IsLeft())
	assert.False(t, BottomRight.IsTop())
	assert.False(t, BottomRight.IsLeft())
	assert.Equal(t, BottomLeft, TopRight.Opposite())
}

func TestNormalizedPoint_InFrame(t *testing.T) {
	t.Parallel()

	assert.True(t, NormalizedPoint{X: 0, Y: 0}.InFrame())
	assert.True(t, NormalizedPoint{X: 1, Y: 1}.InFrame())
	assert.False(t, NormalizedPoint{X: -0.1, Y: 0.5}.InFrame())
	assert.False(t, NormalizedPoint{X: 0.5, Y: 1.2}.InFrame())
}
