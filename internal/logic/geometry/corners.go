package geometry

import (
	"math"

	"github.com/golang/geo/r3"
)

// Axis indices into an AnglePair.
const (
	AxisH = 0 // horizontal half-angle
	AxisV = 1 // vertical half-angle
)

// AnglePair holds the horizontal and vertical half-angles of one FOV corner, in radians.
type AnglePair struct {
	H float64 `json:"h"`
	V float64 `json:"v"`
}

// Axis returns the component for AxisH or AxisV.
func (p AnglePair) Axis(k int) float64 {
	if k == AxisH {
		return p.H
	}
	return p.V
}

// WithAxis returns a copy of p with component k replaced by v.
func (p AnglePair) WithAxis(k int, v float64) AnglePair {
	if k == AxisH {
		p.H = v
	} else {
		p.V = v
	}
	return p
}

// Direction returns the camera-frame ray (1, tan h, tan v), x pointing forward.
func (p AnglePair) Direction() r3.Vector {
	return r3.Vector{X: 1, Y: math.Tan(p.H), Z: math.Tan(p.V)}
}

// Corners are the four FOV corners in cyclic order:
// 0 top-right (+h,+v), 1 top-left (-h,+v), 2 bottom-left (-h,-v), 3 bottom-right (+h,-v).
//
// Corner i and corner i+1 differ on axis i%2 and share axis (i+1)%2.
type Corners [4]AnglePair

// NewCorners builds the corners of a hfov x vfov field of view (full angles, radians).
func NewCorners(hfov, vfov float64) Corners {
	h, v := hfov/2, vfov/2
	return Corners{
		{H: h, V: v},
		{H: -h, V: v},
		{H: -h, V: -v},
		{H: h, V: -v},
	}
}

// Prev returns the index of the corner before i in cyclic order.
func Prev(i int) int { return (i + 3) % 4 }

// Next returns the index of the corner after i in cyclic order.
func Next(i int) int { return (i + 1) % 4 }

// Directions regenerates the four camera-frame rays from the angle pairs.
func (c Corners) Directions() [4]r3.Vector {
	var out [4]r3.Vector
	for i, p := range c {
		out[i] = p.Direction()
	}
	return out
}

// SpreadOK reports whether every pair of adjacent corners is at least minSpread
// radians apart on the axis that separates them.
func (c Corners) SpreadOK(minSpread float64) bool {
	for j := range c {
		k := j % 2
		if math.Abs(c[j].Axis(k)-c[Next(j)].Axis(k)) < minSpread {
			return false
		}
	}
	return true
}
