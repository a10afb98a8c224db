package rayverb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTriangleNorm(t *testing.T) {
	// CCW in the xy-plane as seen from +z
	tri := NewTriangle(Vec3{}, Vec3{X: 1}, Vec3{Y: 1})
	norm := tri.Norm()
	require.InDelta(t, 0.0, norm.X, 1e-15)
	require.InDelta(t, 0.0, norm.Y, 1e-15)
	require.InDelta(t, 1.0, norm.Z, 1e-15)
}

func TestTriangleNormDegenerate(t *testing.T) {
	// collinear vertices have no plane; the normal degrades to zero
	tri := NewTriangle(Vec3{}, Vec3{X: 1}, Vec3{X: 2})
	require.True(t, tri.Norm().IsZero())
}

func TestTriangleIntersectHit(t *testing.T) {
	tri := NewTriangle(Vec3{X: -1, Y: 2, Z: -1}, Vec3{X: 1, Y: 2, Z: -1}, Vec3{Y: 2, Z: 1})

	hit, dist, point := tri.Intersect(Vec3{}, Vec3{Y: 1})
	require.True(t, hit)
	require.InDelta(t, 2.0, dist, 1e-12)
	require.InDelta(t, 0.0, point.X, 1e-12)
	require.InDelta(t, 2.0, point.Y, 1e-12)
}

func TestTriangleIntersectBehind(t *testing.T) {
	// the solver reports negative distances; filtering is the caller's job
	tri := NewTriangle(Vec3{X: -1, Y: -2, Z: -1}, Vec3{X: 1, Y: -2, Z: -1}, Vec3{Y: -2, Z: 1})

	hit, dist, _ := tri.Intersect(Vec3{}, Vec3{Y: 1})
	require.True(t, hit)
	require.Less(t, dist, 0.0)
}

func TestTriangleIntersectParallel(t *testing.T) {
	tri := NewTriangle(Vec3{X: -1, Y: 2}, Vec3{X: 1, Y: 2}, Vec3{Y: 2, Z: 1})

	// direction lies in the triangle's plane; singular system is a miss
	hit, dist, point := tri.Intersect(Vec3{}, Vec3{X: 1})
	require.False(t, hit)
	require.Equal(t, 0.0, dist)
	require.True(t, point.IsZero())
}

func TestTriangleLooseVersusStrict(t *testing.T) {
	// the plane hit lands one edge-length beyond the triangle: the
	// permissive predicate accepts it, the bounded test rejects it
	tri := NewTriangle(Vec3{X: -2, Y: 2, Z: -0.5}, Vec3{X: -1, Y: 2, Z: -0.5}, Vec3{X: -2, Y: 2, Z: 0.5})

	hit, _, _ := tri.Intersect(Vec3{}, Vec3{Y: 1})
	require.True(t, hit, "permissive predicate keeps the plane hit")

	hit, _, _ = tri.IntersectStrict(Vec3{}, Vec3{Y: 1})
	require.False(t, hit, "bounded predicate rejects points outside the triangle")
}

func TestTriangleStrictAcceptsInside(t *testing.T) {
	tri := NewTriangle(Vec3{X: -1, Y: 2, Z: -1}, Vec3{X: 1, Y: 2, Z: -1}, Vec3{Y: 2, Z: 1})

	hit, dist, _ := tri.IntersectStrict(Vec3{}, Vec3{Y: 1})
	require.True(t, hit)
	require.InDelta(t, 2.0, dist, 1e-12)
}

func TestTriangleReflection(t *testing.T) {
	// a wall in the xz-plane reflects the y component
	tri := NewTriangle(Vec3{X: -1, Y: 2, Z: -1}, Vec3{X: 1, Y: 2, Z: -1}, Vec3{Y: 2, Z: 1})

	in := Vec3{X: 1, Y: 1}.Unit()
	out := tri.Reflection(in)
	require.InDelta(t, in.X, out.X, 1e-12)
	require.InDelta(t, -in.Y, out.Y, 1e-12)
	require.InDelta(t, in.Z, out.Z, 1e-12)
	require.InDelta(t, 1.0, out.Mag(), 1e-12)
}

func TestReflectionPreservesAngle(t *testing.T) {
	tri := NewTriangle(Vec3{X: -1, Y: 2, Z: -1}, Vec3{X: 1, Y: 2, Z: -1}, Vec3{Y: 2, Z: 1})
	norm := tri.Norm()

	in := Vec3{X: 0.3, Y: 1, Z: -0.2}.Unit()
	out := tri.Reflection(in)

	// angle of incidence equals angle of reflection
	require.InDelta(t, math.Abs(in.Dot(norm)), math.Abs(out.Dot(norm)), 1e-12)
}
