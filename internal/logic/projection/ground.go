package projection

import "github.com/golang/geo/r3"

// GroundIntersection intersects a ray cast from (0, 0, alt) with the plane z = 0.
// ok is false when the ray is level or points upward.
func GroundIntersection(alt float64, ray r3.Vector) (r3.Vector, bool) {
	if ray.Z >= 0 {
		return r3.Vector{}, false
	}
	origin := r3.Vector{X: 0, Y: 0, Z: alt}
	p := origin.Add(ray.Mul(alt / -ray.Z))
	p.Z = 0
	return p, true
}
