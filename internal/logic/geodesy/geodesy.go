// Package geodesy converts local planar offsets into WGS84 coordinates.
package geodesy

import (
	"math"

	"github.com/tidwall/geodesic"
)

// Position is a geodetic coordinate: degrees, degrees, meters of relative altitude.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Alt float64 `json:"alt"`
}

// IsFinite reports whether all components are finite numbers.
func (p Position) IsFinite() bool {
	for _, c := range [3]float64{p.Lat, p.Lon, p.Alt} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Solver solves the direct geodetic problem: the point reached from
// (lat, lon) after dist meters along the initial bearing (degrees from north).
type Solver interface {
	Forward(lat, lon, bearingDeg, distM float64) (lat2, lon2 float64)
}

// WGS84 is a Solver on the WGS84 ellipsoid (Karney's algorithm).
// It holds no mutable state and is safe for concurrent use.
type WGS84 struct{}

// Forward implements Solver.
func (WGS84) Forward(lat, lon, bearingDeg, distM float64) (float64, float64) {
	var lat2, lon2 float64
	geodesic.WGS84.Direct(lat, lon, bearingDeg, distM, &lat2, &lon2, nil)
	return lat2, lon2
}

// OffsetToPosition moves origin north meters along the meridian (south when
// negative), then east meters from the intermediate point (west when negative).
// The two legs are solved separately; this is not the same as one leg along the
// combined bearing. The returned altitude is 0.
func OffsetToPosition(s Solver, origin Position, north, east float64) Position {
	bearing := 0.0
	if north < 0 {
		bearing = 180
	}
	lat, lon := s.Forward(origin.Lat, origin.Lon, bearing, math.Abs(north))

	bearing = 90
	if east < 0 {
		bearing = 270
	}
	lat, lon = s.Forward(lat, lon, bearing, math.Abs(east))
	return Position{Lat: lat, Lon: lon, Alt: 0}
}
