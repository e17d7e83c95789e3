package telemetry

import (
	"math"

	"gonum.org/v1/gonum/num/quat"

	"github.com/cjeanneret/FootprintGo/internal/logic/geometry"
)

// EulerFromQuaternion converts a scalar-first attitude quaternion (w, x, y, z)
// into the angles of an extrinsic z-y-x rotation sequence: the returned
// orientation satisfies R = Rx(roll) · Ry(pitch) · Rz(yaw).
// ok is false for the zero or a non-finite quaternion.
func EulerFromQuaternion(q [4]float64) (geometry.Orientation, bool) {
	n := quat.Number{Real: q[0], Imag: q[1], Jmag: q[2], Kmag: q[3]}
	if quat.IsNaN(n) || quat.IsInf(n) {
		return geometry.Orientation{}, false
	}
	abs := quat.Abs(n)
	if abs == 0 {
		return geometry.Orientation{}, false
	}
	n = quat.Scale(1/abs, n)
	w, x, y, z := n.Real, n.Imag, n.Jmag, n.Kmag

	r00 := 1 - 2*(y*y+z*z)
	r01 := 2 * (x*y - w*z)
	r02 := 2 * (x*z + w*y)
	r12 := 2 * (y*z - w*x)
	r22 := 1 - 2*(x*x+y*y)

	return geometry.Orientation{
		Yaw:   math.Atan2(-r01, r00),
		Pitch: math.Asin(math.Max(-1, math.Min(1, r02))),
		Roll:  math.Atan2(-r12, r22),
	}, true
}
