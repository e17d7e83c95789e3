// Package projection computes the ground footprint of a gimbal camera.
//
// The engine builds the four field-of-view corner rays, rotates them through
// the camera and vehicle attitude, shrinks the field of view until every ray
// points safely below the horizon, intersects the rays with a flat ground
// plane at the vehicle's relative altitude, and converts the intersections to
// WGS84 coordinates.
package projection

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/cjeanneret/FootprintGo/internal/debug"
	"github.com/cjeanneret/FootprintGo/internal/logic/geodesy"
	"github.com/cjeanneret/FootprintGo/internal/logic/geometry"
)

var (
	// ErrDegenerateFOV reports a field of view that has no usable extent.
	ErrDegenerateFOV = errors.New("degenerate field of view")
	// ErrInvalidInput reports non-finite positions or attitudes.
	ErrInvalidInput = errors.New("invalid projection input")
	// ErrLogicFault matches every *LogicFaultError.
	ErrLogicFault = errors.New("projection logic fault")
)

// LogicFaultError reports a broken internal invariant, such as a corrected
// corner ray that does not reach the ground. It indicates a bug, not bad input.
type LogicFaultError struct {
	Corner int
	Ray    r3.Vector
	Msg    string
}

func (e *LogicFaultError) Error() string {
	return fmt.Sprintf("projection logic fault: corner %d ray %v: %s", e.Corner, e.Ray, e.Msg)
}

// Is makes errors.Is(err, ErrLogicFault) true.
func (e *LogicFaultError) Is(target error) bool {
	return target == ErrLogicFault
}

// Input is everything one footprint computation needs.
type Input struct {
	Position      geodesy.Position     // vehicle position, Alt is relative altitude (m)
	Drone         geometry.Orientation // vehicle attitude
	Camera        geometry.Orientation // gimbal attitude
	HorizontalFOV float64              // full horizontal angle (rad)
	VerticalFOV   float64              // full vertical angle (rad)
	EarthFrame    bool                 // gimbal attitude is already earth-referenced
}

// Status tells feasible results from infeasible ones.
type Status int

const (
	StatusFeasible Status = iota
	StatusInfeasible
)

func (s Status) String() string {
	if s == StatusFeasible {
		return "feasible"
	}
	return "infeasible"
}

// Result is the outcome of one computation. Corner data is only set when
// Status is StatusFeasible.
type Result struct {
	Status     Status
	Reason     Reason
	Corners    [4]geodesy.Position // geodetic footprint, Alt = 0
	Ground     [4]r3.Vector        // planar points: X north, Y east (m)
	Offsets    [4]Offset
	Frame      FrameSize
	Angles     geometry.Corners // corrected half-angles
	Iterations int
}

// Feasible reports whether a footprint was found.
func (r Result) Feasible() bool {
	return r.Status == StatusFeasible
}

func infeasible(reason Reason, iterations int) Result {
	return Result{Status: StatusInfeasible, Reason: reason, Iterations: iterations}
}

// Engine computes footprints. It is immutable and safe for concurrent use.
type Engine struct {
	params Params
	solver geodesy.Solver
}

// NewEngine validates p and returns an engine that converts ground points with s.
func NewEngine(p Params, s geodesy.Solver) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("projection params: %w", err)
	}
	if s == nil {
		return nil, errors.New("projection: geodetic solver is required")
	}
	return &Engine{params: p, solver: s}, nil
}

// Params returns the engine's tuning parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Compute returns the footprint for in. An infeasible geometry is reported
// through Result.Status with a nil error; errors are reserved for invalid
// input (ErrDegenerateFOV, ErrInvalidInput) and logic faults.
func (e *Engine) Compute(in Input) (Result, error) {
	if err := validate(in); err != nil {
		return Result{}, err
	}

	start := geometry.NewCorners(in.HorizontalFOV, in.VerticalFOV)
	c, err := e.params.correct(start, newPose(in.Drone, in.Camera, in.EarthFrame))
	if err != nil {
		return Result{}, err
	}
	if c.reason != ReasonNone {
		debug.Live("Footprint infeasible: %s after %d iterations", c.reason, c.iterations)
		return infeasible(c.reason, c.iterations), nil
	}

	offsets, err := CropOffsets(start, c.angles)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Status:     StatusFeasible,
		Offsets:    offsets,
		Frame:      FrameSizeOf(offsets),
		Angles:     c.angles,
		Iterations: c.iterations,
	}
	for i, ray := range c.rays {
		p, ok := GroundIntersection(in.Position.Alt, ray)
		if !ok {
			return Result{}, &LogicFaultError{Corner: i, Ray: ray, Msg: "corrected ray does not reach the ground"}
		}
		res.Ground[i] = p
		res.Corners[i] = geodesy.OffsetToPosition(e.solver, in.Position, p.X, p.Y)
	}
	return res, nil
}

func validate(in Input) error {
	for _, fov := range [2]float64{in.HorizontalFOV, in.VerticalFOV} {
		if math.IsNaN(fov) || fov <= 0 || fov >= math.Pi {
			return fmt.Errorf("fov %g rad: %w", fov, ErrDegenerateFOV)
		}
	}
	if !in.Position.IsFinite() {
		return fmt.Errorf("position %+v: %w", in.Position, ErrInvalidInput)
	}
	if !in.Drone.IsFinite() || !in.Camera.IsFinite() {
		return fmt.Errorf("attitude: %w", ErrInvalidInput)
	}
	return nil
}
