package geodesy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

type leg struct {
	lat, lon, bearing, dist float64
}

// recordingSolver moves one unit of degree per meter and records every call.
type recordingSolver struct {
	legs []leg
}

func (r *recordingSolver) Forward(lat, lon, bearing, dist float64) (float64, float64) {
	r.legs = append(r.legs, leg{lat, lon, bearing, dist})
	switch bearing {
	case 0:
		return lat + dist, lon
	case 180:
		return lat - dist, lon
	case 90:
		return lat, lon + dist
	default:
		return lat, lon - dist
	}
}

func TestOffsetToPosition_LegOrder(t *testing.T) {
	tests := []struct {
		name             string
		north, east      float64
		bearings         [2]float64
		wantLat, wantLon float64
	}{
		{"north_east", 3, 4, [2]float64{0, 90}, 13, 24},
		{"south_west", -3, -4, [2]float64{180, 270}, 7, 16},
		{"north_west", 1, -2, [2]float64{0, 270}, 11, 18},
		{"south_east", -1, 2, [2]float64{180, 90}, 9, 22},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recordingSolver{}
			got := OffsetToPosition(r, Position{Lat: 10, Lon: 20, Alt: 55}, tt.north, tt.east)
			assert.Equal(t, Position{Lat: tt.wantLat, Lon: tt.wantLon, Alt: 0}, got)
			if assert.Len(t, r.legs, 2) {
				assert.Equal(t, leg{10, 20, tt.bearings[0], math.Abs(tt.north)}, r.legs[0])
				// the east leg starts from the end of the north leg
				assert.Equal(t, tt.wantLat, r.legs[1].lat)
				assert.Equal(t, tt.bearings[1], r.legs[1].bearing)
				assert.Equal(t, math.Abs(tt.east), r.legs[1].dist)
			}
		})
	}
}

func TestOffsetToPosition_ZeroOffset(t *testing.T) {
	origin := Position{Lat: 59.3293, Lon: 18.0686, Alt: 120}
	got := OffsetToPosition(WGS84{}, origin, 0, 0)
	assert.InDelta(t, origin.Lat, got.Lat, 1e-12)
	assert.InDelta(t, origin.Lon, got.Lon, 1e-12)
	assert.Zero(t, got.Alt)
}

func TestWGS84_Forward(t *testing.T) {
	// one kilometer north at the equator is about 0.009044 degrees of latitude
	lat, lon := WGS84{}.Forward(0, 10, 0, 1000)
	assert.InDelta(t, 0.0090437, lat, 1e-6)
	assert.InDelta(t, 10, lon, 1e-12)

	// east at 60°N the same distance spans about twice as many degrees
	lat, lon = WGS84{}.Forward(60, 10, 90, 1000)
	assert.InDelta(t, 60, lat, 1e-4)
	assert.InDelta(t, 10.017921, lon, 1e-5)
}

func TestPosition_IsFinite(t *testing.T) {
	assert.True(t, Position{Lat: 1, Lon: 2, Alt: 3}.IsFinite())
	assert.False(t, Position{Lat: math.NaN()}.IsFinite())
	assert.False(t, Position{Lon: math.Inf(1)}.IsFinite())
	assert.False(t, Position{Alt: math.Inf(-1)}.IsFinite())
}
