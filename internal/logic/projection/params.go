package projection

import (
	"fmt"
	"math"
)

const deg = math.Pi / 180

// Params are the tuning parameters of the footprint engine. Angles are radians.
type Params struct {
	// Ceiling is the elevation at or above which a corner ray is unsafe for
	// ground intersection. Must be negative.
	Ceiling float64 `json:"ceiling"`
	// MinSpread is the smallest allowed angle between adjacent corners on
	// the axis that separates them.
	MinSpread float64 `json:"min_spread"`
	// Step is subtracted from an offending corner's half-angle per iteration.
	Step float64 `json:"step"`
	// MaxIterations bounds the correction loop; reaching it is infeasible.
	MaxIterations int `json:"max_iterations"`
}

// DefaultParams returns -10° ceiling, 4° spread, 3° step, 256 iterations.
func DefaultParams() Params {
	return Params{
		Ceiling:       -10 * deg,
		MinSpread:     4 * deg,
		Step:          3 * deg,
		MaxIterations: 256,
	}
}

// Validate checks that the parameters describe a usable engine.
func (p Params) Validate() error {
	if !(p.Ceiling < 0 && p.Ceiling > -math.Pi/2) {
		return fmt.Errorf("ceiling must be in (-π/2, 0), got %g", p.Ceiling)
	}
	if !(p.MinSpread > 0 && p.MinSpread < math.Pi) {
		return fmt.Errorf("min spread must be in (0, π), got %g", p.MinSpread)
	}
	if !(p.Step > 0 && p.Step < math.Pi/2) {
		return fmt.Errorf("step must be in (0, π/2), got %g", p.Step)
	}
	if p.MaxIterations <= 0 {
		return fmt.Errorf("max iterations must be > 0, got %d", p.MaxIterations)
	}
	return nil
}
