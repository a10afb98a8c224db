package rayverb

import "math"

// maxBounces caps the reflection walk against pathological geometry.
// The MaxPathLen budget bounds realistic rooms to roughly 50 bounces at
// a metre per bounce, so the cap never binds in practice.
const maxBounces = 128

// Ray describes a ray cast from a receiver towards the sources of a
// scene. Rays have a unit direction, an origin, and the distance
// travelled by the path before reaching the origin (zero for a primary
// ray).
type Ray struct {
	Direction Vec3
	Origin    Vec3
	Distance  float64
}

// NewRay constructs a ray at origin pointing along direction. The
// direction is normalised; distance is the cumulative path length of all
// preceding segments.
func NewRay(direction, origin Vec3, distance float64) *Ray {
	return &Ray{Direction: direction.Unit(), Origin: origin, Distance: distance}
}

// Trace accumulates the sound heard along this ray's reflection path into
// rayData (length numSamples). At each bounce the direct contribution of
// every source is tested, then the walk reflects off the nearest triangle
// and continues until the path budget is exhausted.
//
// A contribution found after k reflections carries the gain
//
//	ReflCoeff^k * exp(-AtmAtten*d/2) * exp(-AtmAtten*(D_1+...+D_k)/2)
//
// where d is the cumulative path length at the source hit and D_j the
// cumulative path length at the j-th reflection. The reflection
// attenuation is tracked as a running product rather than by unwinding a
// call stack, so the walk runs in constant space.
//
// strict selects the bounded triangle hit test; the default tracer uses
// the permissive one.
func (r *Ray) Trace(scene *Scene, numSamples int, rayData []float32, strict bool) {
	if numSamples > len(rayData) {
		numSamples = len(rayData)
	}

	direction := r.Direction
	origin := r.Origin
	distance := r.Distance

	// product of the reflection attenuations enclosing the current bounce
	attenuation := 1.0

	for bounce := 0; bounce < maxBounces; bounce++ {
		// direct path to sources
		for _, source := range scene.Sources {
			isIntersect, src_dist := source.Intersect(origin, direction)
			if !isIntersect || src_dist <= 0 || src_dist+distance >= MaxPathLen {
				continue
			}

			tot_dist := src_dist + distance
			delay_time := src_dist / PropSpeed
			delay_samples := int(math.Round(delay_time * float64(source.SampleRate)))
			if delay_samples >= numSamples || delay_samples < 0 {
				continue
			}

			gain := float32(attenuation * math.Exp(-AtmAtten*tot_dist/2))
			n := len(source.Signal)
			if n > numSamples-delay_samples {
				n = numSamples - delay_samples
			}
			for i := 0; i < n; i++ {
				rayData[delay_samples+i] += gain * source.Signal[i]
			}
		}

		// nearest triangle hit; distances <= 0 are behind the ray
		near_distance := math.Inf(1)
		near_index := -1
		var near_intersect Vec3

		for i := range scene.Triangles {
			thing := &scene.Triangles[i]
			var isIntersect bool
			var dist float64
			var intersection Vec3
			if strict {
				isIntersect, dist, intersection = thing.IntersectStrict(origin, direction)
			} else {
				isIntersect, dist, intersection = thing.Intersect(origin, direction)
			}
			if isIntersect && dist > 0 && dist < near_distance {
				near_distance = dist
				near_index = i
				near_intersect = intersection
			}
		}

		// TODO: find a better calculation for terminating the walk,
		// e.g. cutting when the accumulated attenuation drops below -60dB
		if near_index < 0 || distance+near_distance >= MaxPathLen {
			return
		}

		tot_dist := distance + near_distance
		attenuation *= ReflCoeff * math.Exp(-AtmAtten*tot_dist/2)

		direction = scene.Triangles[near_index].Reflection(direction)
		origin = near_intersect
		distance = tot_dist
	}
}
