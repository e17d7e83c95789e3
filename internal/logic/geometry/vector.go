package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// Up is the local vertical in the world frame (z up).
var Up = r3.Vector{X: 0, Y: 0, Z: 1}

// Normalize returns v scaled to unit length.
// The zero vector is returned unchanged so callers can test for it.
// Components are first divided by the largest magnitude so that very large
// or very small vectors neither overflow nor underflow.
func Normalize(v r3.Vector) r3.Vector {
	m := math.Max(math.Abs(v.X), math.Max(math.Abs(v.Y), math.Abs(v.Z)))
	if m == 0 || math.IsInf(m, 0) || math.IsNaN(m) {
		return v
	}
	return r3.Vector{X: v.X / m, Y: v.Y / m, Z: v.Z / m}.Normalize()
}

// AngleBetween returns the angle in radians between a and b, in [0, π].
// ok is false when either vector is zero-length or has a non-finite component;
// the angle is undefined in that case.
func AngleBetween(a, b r3.Vector) (float64, bool) {
	if !isProper(a) || !isProper(b) {
		return 0, false
	}
	d := Normalize(a).Dot(Normalize(b))
	return math.Acos(math.Max(-1, math.Min(1, d))), true
}

// ElevationAngle returns the angle of v above the horizontal plane, in [-π/2, π/2].
// Negative values point below the horizon.
func ElevationAngle(v r3.Vector) (float64, bool) {
	a, ok := AngleBetween(Up, v)
	if !ok {
		return 0, false
	}
	return math.Pi/2 - a, true
}

func isProper(v r3.Vector) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return v.X != 0 || v.Y != 0 || v.Z != 0
}
