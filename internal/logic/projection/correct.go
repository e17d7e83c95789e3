package projection

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/cjeanneret/FootprintGo/internal/debug"
	"github.com/cjeanneret/FootprintGo/internal/logic/geometry"
)

// Reason explains an infeasible result.
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonAllAboveCeiling: no corner points below the ceiling.
	ReasonAllAboveCeiling
	// ReasonInsufficientSpread: shrinking the FOV collapsed two adjacent corners.
	ReasonInsufficientSpread
	// ReasonIterationLimit: the correction loop did not converge within Params.MaxIterations.
	ReasonIterationLimit
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonAllAboveCeiling:
		return "all_above_ceiling"
	case ReasonInsufficientSpread:
		return "insufficient_spread"
	case ReasonIterationLimit:
		return "iteration_limit"
	default:
		return "unknown"
	}
}

// pose rotates camera-frame rays into the world frame.
type pose struct {
	camera *mat.Dense
	drone  *mat.Dense // nil when the gimbal reports attitude in the earth frame
}

func newPose(drone, camera geometry.Orientation, earthFrame bool) pose {
	p := pose{camera: geometry.Rotation(camera)}
	if !earthFrame {
		p.drone = geometry.Rotation(drone)
	}
	return p
}

// rotate regenerates the corner rays from c and rotates them, camera first.
func (p pose) rotate(c geometry.Corners) [4]r3.Vector {
	rays := c.Directions()
	for i, v := range rays {
		v = geometry.Apply(p.camera, v)
		if p.drone != nil {
			v = geometry.Apply(p.drone, v)
		}
		rays[i] = v
	}
	return rays
}

// correction is the state the horizon corrector ends with.
type correction struct {
	angles     geometry.Corners
	rays       [4]r3.Vector
	iterations int
	reason     Reason // ReasonNone when all four rays clear the ceiling
}

// correct rotates start and, while a corner ray is at or above the ceiling,
// shrinks the field of view around that corner one step at a time.
func (p Params) correct(start geometry.Corners, ps pose) (correction, error) {
	angles := start
	rays := ps.rotate(angles)
	elev, err := elevations(rays)
	if err != nil {
		return correction{}, err
	}

	switch p.countAbove(elev) {
	case 0:
		return correction{angles: angles, rays: rays}, nil
	case 4:
		return correction{reason: ReasonAllAboveCeiling}, nil
	}

	signs := signsOf(start)
	iter := 0
	// The inner loop shrinks one corner until it clears. The outer loop only
	// enforces that no corner is left at or above the ceiling.
	for {
		i := highest(elev)
		if elev[i] < p.Ceiling {
			break
		}
		debug.Verbose("Correcting corner %d (elevation %.2f°)", i, elev[i]/deg)
		for elev[i] >= p.Ceiling {
			if iter >= p.MaxIterations {
				return correction{iterations: iter, reason: ReasonIterationLimit}, nil
			}
			iter++

			angles = p.shrink(angles, signs, p.above(elev), i)
			if !angles.SpreadOK(p.MinSpread) {
				debug.Correction(iter, i, elev[i])
				return correction{iterations: iter, reason: ReasonInsufficientSpread}, nil
			}

			rays = ps.rotate(angles)
			if elev, err = elevations(rays); err != nil {
				return correction{}, err
			}
			debug.Correction(iter, i, elev[i])
			if p.countAbove(elev) == 4 {
				return correction{iterations: iter, reason: ReasonAllAboveCeiling}, nil
			}
		}
	}
	return correction{angles: angles, rays: rays, iterations: iter}, nil
}

// shrink returns a new corner set with corner i pulled one step toward the
// optical axis. When both neighbours of i are on the same side of the ceiling
// both components move and each neighbour takes the component it shares with
// i; otherwise only the component shared with the offending neighbour moves.
func (p Params) shrink(c geometry.Corners, signs geometry.Corners, above [4]bool, i int) geometry.Corners {
	next := c
	prev, succ := geometry.Prev(i), geometry.Next(i)

	if above[prev] == above[succ] {
		next[i] = geometry.AnglePair{
			H: c[i].H - signs[i].H*p.Step,
			V: c[i].V - signs[i].V*p.Step,
		}
		withPrev, withSucc := i%2, (i+1)%2
		next[prev] = next[prev].WithAxis(withPrev, next[i].Axis(withPrev))
		next[succ] = next[succ].WithAxis(withSucc, next[i].Axis(withSucc))
		return next
	}

	other, k := succ, (i+1)%2
	if above[prev] {
		other, k = prev, i%2
	}
	v := c[i].Axis(k) - signs[i].Axis(k)*p.Step
	next[i] = next[i].WithAxis(k, v)
	next[other] = next[other].WithAxis(k, v)
	return next
}

func (p Params) above(elev [4]float64) [4]bool {
	var out [4]bool
	for i, e := range elev {
		out[i] = e >= p.Ceiling
	}
	return out
}

func (p Params) countAbove(elev [4]float64) int {
	n := 0
	for _, a := range p.above(elev) {
		if a {
			n++
		}
	}
	return n
}

func elevations(rays [4]r3.Vector) ([4]float64, error) {
	var out [4]float64
	for i, v := range rays {
		e, ok := geometry.ElevationAngle(v)
		if !ok {
			return out, &LogicFaultError{Corner: i, Ray: v, Msg: "corner ray has no defined elevation"}
		}
		out[i] = e
	}
	return out, nil
}

// highest returns the index of the largest elevation; the first one wins ties.
func highest(elev [4]float64) int {
	best := 0
	for i := 1; i < len(elev); i++ {
		if elev[i] > elev[best] {
			best = i
		}
	}
	return best
}

func signsOf(c geometry.Corners) geometry.Corners {
	var s geometry.Corners
	for i, p := range c {
		s[i] = geometry.AnglePair{H: sign(p.H), V: sign(p.V)}
	}
	return s
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
