package geometry

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Orientation is a yaw/pitch/roll attitude in radians.
//
// Pitch and roll follow the camera optics convention: they are negated with
// respect to the aerospace frame when the rotation is composed.
type Orientation struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

// IsFinite reports whether all three angles are finite numbers.
func (o Orientation) IsFinite() bool {
	for _, a := range [3]float64{o.Yaw, o.Pitch, o.Roll} {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return false
		}
	}
	return true
}

// Rotation builds the 3x3 matrix Rz(yaw) · Ry(-pitch) · Rx(-roll).
// Roll is applied first and yaw last; the order is not interchangeable.
func Rotation(o Orientation) *mat.Dense {
	var zy, r mat.Dense
	zy.Mul(rotZ(o.Yaw), rotY(-o.Pitch))
	r.Mul(&zy, rotX(-o.Roll))
	return &r
}

// Rotate applies the rotation of o to v.
func Rotate(o Orientation, v r3.Vector) r3.Vector {
	return Apply(Rotation(o), v)
}

// Apply multiplies v by the matrix m.
func Apply(m mat.Matrix, v r3.Vector) r3.Vector {
	out := mat.NewVecDense(3, nil)
	out.MulVec(m, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vector{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

func rotX(a float64) *mat.Dense {
	s, c := math.Sincos(a)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})
}

func rotY(a float64) *mat.Dense {
	s, c := math.Sincos(a)
	return mat.NewDense(3, 3, []float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	})
}

func rotZ(a float64) *mat.Dense {
	s, c := math.Sincos(a)
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}
