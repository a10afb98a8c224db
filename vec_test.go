package rayverb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, -5, 6}

	require.Equal(t, Vec3{5, -3, 9}, a.Add(b))
	require.Equal(t, Vec3{-3, 7, -3}, a.Sub(b))
	require.Equal(t, Vec3{2, 4, 6}, a.Scale(2))
	require.Equal(t, Vec3{0.5, 1, 1.5}, a.Div(2))
	require.Equal(t, float64(4-10+18), a.Dot(b))
}

func TestVec3Cross(t *testing.T) {
	xhat := Vec3{X: 1}
	yhat := Vec3{Y: 1}
	zhat := Vec3{Z: 1}

	require.Equal(t, zhat, xhat.Cross(yhat))
	require.Equal(t, xhat, yhat.Cross(zhat))
	require.Equal(t, zhat.Scale(-1), yhat.Cross(xhat))

	// parallel vectors have a zero cross product
	require.True(t, xhat.Cross(xhat.Scale(3)).IsZero())
}

func TestVec3MagUnit(t *testing.T) {
	v := Vec3{3, 4, 0}
	require.Equal(t, 5.0, v.Mag())

	u := v.Unit()
	require.InDelta(t, 1.0, u.Mag(), 1e-15)
	require.InDelta(t, 0.6, u.X, 1e-15)
	require.InDelta(t, 0.8, u.Y, 1e-15)
}

func TestVec3UnitOfZeroVector(t *testing.T) {
	// the zero vector has no direction; Unit must not produce NaNs
	zero := Vec3{}
	u := zero.Unit()
	require.True(t, u.IsZero())
	require.True(t, u.IsFinite())
}

func TestVec3Component(t *testing.T) {
	v := Vec3{1.5, 2.5, 3.5}
	require.Equal(t, 1.5, v.Component(0))
	require.Equal(t, 2.5, v.Component(1))
	require.Equal(t, 3.5, v.Component(2))
	require.Equal(t, 0.0, v.Component(7))
	require.Equal(t, []float64{1.5, 2.5, 3.5}, v.Coords())
}

func TestVec3IsFinite(t *testing.T) {
	require.True(t, Vec3{1, 2, 3}.IsFinite())
	require.False(t, Vec3{math.NaN(), 0, 0}.IsFinite())
	require.False(t, Vec3{0, math.Inf(1), 0}.IsFinite())
}
