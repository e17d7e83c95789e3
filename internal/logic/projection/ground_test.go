package projection

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
)

func TestGroundIntersection(t *testing.T) {
	tests := []struct {
		name string
		alt  float64
		ray  r3.Vector
		want r3.Vector
		ok   bool
	}{
		{"straight_down", 100, r3.Vector{Z: -1}, r3.Vector{}, true},
		{"forty_five_north", 50, r3.Vector{X: 1, Z: -1}, r3.Vector{X: 50}, true},
		{"scaled_ray", 10, r3.Vector{X: 2, Y: -4, Z: -2}, r3.Vector{X: 10, Y: -20}, true},
		{"ground_level", 0, r3.Vector{X: 1, Z: -1}, r3.Vector{}, true},
		{"level", 100, r3.Vector{X: 1}, r3.Vector{}, false},
		{"upward", 100, r3.Vector{X: 1, Z: 0.1}, r3.Vector{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GroundIntersection(tt.alt, tt.ray)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want.X, got.X, 1e-12)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-12)
			assert.Zero(t, got.Z)
		})
	}
}

func TestGroundIntersection_FailsIffNotDownward(t *testing.T) {
	for _, z := range []float64{-2, -1e-6, 0, 1e-6, 3} {
		_, ok := GroundIntersection(10, r3.Vector{X: 1, Y: 1, Z: z})
		assert.Equal(t, z < 0, ok, "z=%g", z)
	}
	_, ok := GroundIntersection(10, r3.Vector{X: 1, Z: math.Copysign(0, -1)})
	assert.False(t, ok)
}
