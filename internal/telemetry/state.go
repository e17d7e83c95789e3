// Package telemetry turns MAVLink vehicle and gimbal telemetry into the
// inputs of the footprint engine.
package telemetry

import (
	"math"
	"sync"
	"time"

	"github.com/cjeanneret/FootprintGo/internal/logic/geodesy"
	"github.com/cjeanneret/FootprintGo/internal/logic/geometry"
	"github.com/cjeanneret/FootprintGo/internal/logic/projection"
)

// Kind identifies the telemetry record that changed.
type Kind int

const (
	KindPosition Kind = iota
	KindAttitude
	KindGimbal
	KindFOV
)

func (k Kind) String() string {
	switch k {
	case KindPosition:
		return "GLOBAL_POSITION_INT"
	case KindAttitude:
		return "ATTITUDE"
	case KindGimbal:
		return "GIMBAL_DEVICE_ATTITUDE_STATUS"
	case KindFOV:
		return "CAMERA_FOV_STATUS"
	default:
		return "UNKNOWN"
	}
}

// Snapshot is a consistent copy of the latest telemetry.
type Snapshot struct {
	Position      geodesy.Position     `json:"position"`
	Drone         geometry.Orientation `json:"drone"`
	Camera        geometry.Orientation `json:"camera"`
	Flags         GimbalFlags          `json:"flags"`
	HorizontalFOV float64              `json:"hfov"` // rad
	VerticalFOV   float64              `json:"vfov"` // rad
	Seen          map[string]bool      `json:"seen"`
	Updated       time.Time            `json:"updated"`
}

// Input converts the snapshot into an engine input.
func (s Snapshot) Input() projection.Input {
	return projection.Input{
		Position:      s.Position,
		Drone:         s.Drone,
		Camera:        s.Camera,
		HorizontalFOV: s.HorizontalFOV,
		VerticalFOV:   s.VerticalFOV,
		EarthFrame:    s.Flags.EarthFrame(),
	}
}

// State aggregates the latest value of every telemetry record.
// It is safe for concurrent use.
type State struct {
	mu   sync.RWMutex
	snap Snapshot
	seen [4]bool
	now  func() time.Time
}

// NewState starts from position (0, 0, 1 m), level attitudes and the given
// default FOV in radians.
func NewState(hfov, vfov float64) *State {
	return &State{
		snap: Snapshot{
			Position:      geodesy.Position{Lat: 0, Lon: 0, Alt: 1},
			HorizontalFOV: hfov,
			VerticalFOV:   vfov,
		},
		now: time.Now,
	}
}

// SetPosition stores a GLOBAL_POSITION_INT: lat/lon in 1e7 degrees,
// relative altitude in millimeters.
func (s *State) SetPosition(latE7, lonE7, relAltMm int32) {
	s.update(KindPosition, func(sn *Snapshot) {
		sn.Position = geodesy.Position{
			Lat: float64(latE7) / 1e7,
			Lon: float64(lonE7) / 1e7,
			Alt: float64(relAltMm) / 1e3,
		}
	})
}

// SetAttitude stores the vehicle ATTITUDE in radians.
func (s *State) SetAttitude(yaw, pitch, roll float64) {
	s.update(KindAttitude, func(sn *Snapshot) {
		sn.Drone = geometry.Orientation{Yaw: yaw, Pitch: pitch, Roll: roll}
	})
}

// SetGimbal stores a GIMBAL_DEVICE_ATTITUDE_STATUS. A quaternion that cannot
// be converted is ignored and false is returned.
func (s *State) SetGimbal(q [4]float64, flags GimbalFlags) bool {
	o, ok := EulerFromQuaternion(q)
	if !ok {
		return false
	}
	s.update(KindGimbal, func(sn *Snapshot) {
		sn.Camera = o
		sn.Flags = flags
	})
	return true
}

// SetFOV stores a CAMERA_FOV_STATUS in degrees. Non-positive or non-finite
// angles are ignored and false is returned.
func (s *State) SetFOV(hfovDeg, vfovDeg float64) bool {
	if !validDeg(hfovDeg) || !validDeg(vfovDeg) {
		return false
	}
	s.update(KindFOV, func(sn *Snapshot) {
		sn.HorizontalFOV = hfovDeg * math.Pi / 180
		sn.VerticalFOV = vfovDeg * math.Pi / 180
	})
	return true
}

// Ready reports whether position, attitude and gimbal attitude were all received.
func (s *State) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seen[KindPosition] && s.seen[KindAttitude] && s.seen[KindGimbal]
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snap
	out.Seen = make(map[string]bool, len(s.seen))
	for k, v := range s.seen {
		out.Seen[Kind(k).String()] = v
	}
	return out
}

func (s *State) update(k Kind, fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
	s.seen[k] = true
	s.snap.Updated = s.now()
}

func validDeg(d float64) bool {
	return !math.IsNaN(d) && !math.IsInf(d, 0) && d > 0 && d < 180
}
