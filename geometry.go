package rayverb

import "math"

// singular_eps is the determinant threshold below which the triangle
// intersection system is treated as singular (ray parallel to the plane,
// or a degenerate triangle).
const singular_eps = 1e-12

// Triangle is a surface primitive composed of three vertices in
// counter-clockwise order as viewed from the "outside", so that the
// outward normal follows the winding. Triangles are immutable once
// added to a Scene.
type Triangle struct {
	V0 Vec3
	V1 Vec3
	V2 Vec3
}

// NewTriangle constructs a Triangle from three vertices in
// counter-clockwise order.
func NewTriangle(v0, v1, v2 Vec3) Triangle {
	return Triangle{V0: v0, V1: v1, V2: v2}
}

// Norm returns the outward unit normal, (v1-v0) x (v2-v0) normalised.
// Degenerate triangles (collinear or coincident vertices) yield the zero
// vector.
func (t *Triangle) Norm() Vec3 {
	edge1 := t.V1.Sub(t.V0)
	edge2 := t.V2.Sub(t.V0)
	return edge1.Cross(edge2).Unit()
}

// Intersect calculates the distance and point of intersection of a ray
// with the triangle. The 3x3 system
//
//	beta*e1 + gamma*e2 + dist*dir = v0 - origin
//
// is solved by Cramer's rule for the coordinates (beta, gamma) and the
// ray parameter dist. The hit predicate is beta + gamma < 1, keeping the
// permissive behaviour of treating the solved coordinates directly; see
// IntersectStrict for the bounded in-triangle test.
//
// dist may be negative; the caller is responsible for the positive
// distance check. A singular system reports a miss.
func (t *Triangle) Intersect(origin, direction Vec3) (isIntersect bool, distance float64, intersection Vec3) {
	return t.intersect(origin, direction, false)
}

// IntersectStrict behaves as Intersect but only accepts points that fall
// within the triangle bounds.
func (t *Triangle) IntersectStrict(origin, direction Vec3) (isIntersect bool, distance float64, intersection Vec3) {
	return t.intersect(origin, direction, true)
}

func (t *Triangle) intersect(origin, direction Vec3, strict bool) (bool, float64, Vec3) {
	edge1 := t.V1.Sub(t.V0)
	edge2 := t.V2.Sub(t.V0)
	rhs := t.V0.Sub(origin)

	// columns of the system matrix are [e1 e2 dir]
	det := det3(edge1, edge2, direction)
	if math.Abs(det) < singular_eps {
		return false, 0, Vec3{}
	}

	beta := det3(rhs, edge2, direction) / det
	gamma := det3(edge1, rhs, direction) / det
	distance := det3(edge1, edge2, rhs) / det

	var isIntersect bool
	if strict {
		// the solved coordinates carry opposite sign to the conventional
		// barycentric pair, so the bounded test flips accordingly
		isIntersect = beta <= 0 && gamma <= 0 && beta+gamma >= -1
	} else {
		isIntersect = beta+gamma < 1
	}

	return isIntersect, distance, origin.Add(direction.Scale(distance))
}

// Reflection calculates the specular reflection of a direction off the
// triangle's plane: d - 2*(n.d)*n. The direction is expected to be unit
// length.
func (t *Triangle) Reflection(direction Vec3) Vec3 {
	norm := t.Norm()
	return direction.Sub(norm.Scale(2 * norm.Dot(direction)))
}

// det3 evaluates the determinant of the matrix whose columns are a, b, c.
func det3(a, b, c Vec3) float64 {
	return a.X*(b.Y*c.Z-b.Z*c.Y) -
		b.X*(a.Y*c.Z-a.Z*c.Y) +
		c.X*(a.Y*b.Z-a.Z*b.Y)
}
