package telemetry

import "strings"

// GimbalFlags is the GIMBAL_DEVICE_FLAGS bitmask of GIMBAL_DEVICE_ATTITUDE_STATUS.
type GimbalFlags uint32

// Bits in MAVLink order.
const (
	FlagRetract GimbalFlags = 1 << iota
	FlagNeutral
	FlagRollLock
	FlagPitchLock
	FlagYawLock
	FlagYawInVehicleFrame
	FlagYawInEarthFrame
	FlagAcceptsYawInEarthFrame
	FlagRCExclusive
	FlagRCMixed
)

var flagNames = [...]string{
	"RETRACT",
	"NEUTRAL",
	"ROLL_LOCK",
	"PITCH_LOCK",
	"YAW_LOCK",
	"YAW_IN_VEHICLE_FRAME",
	"YAW_IN_EARTH_FRAME",
	"ACCEPTS_YAW_IN_EARTH_FRAME",
	"RC_EXCLUSIVE",
	"RC_MIXED",
}

// Has reports whether every bit of x is set in f.
func (f GimbalFlags) Has(x GimbalFlags) bool {
	return f&x == x
}

// Names lists the set flags in bit order, unknown bits excluded.
func (f GimbalFlags) Names() []string {
	var out []string
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			out = append(out, name)
		}
	}
	return out
}

func (f GimbalFlags) String() string {
	names := f.Names()
	if len(names) == 0 {
		return "NONE"
	}
	return strings.Join(names, "|")
}

// EarthFrame decides whether the gimbal attitude is earth-referenced.
// A vehicle-frame yaw wins; otherwise an earth-frame yaw or a yaw lock means
// earth frame.
func (f GimbalFlags) EarthFrame() bool {
	if f.Has(FlagYawInVehicleFrame) {
		return false
	}
	return f.Has(FlagYawInEarthFrame) || f.Has(FlagYawLock)
}
