package geometry

import (
	"fmt"
	"math"

	"github.com/cjeanneret/FootprintGo/internal/config"
)

// FOVCalculator resolves the camera field of view used when the gimbal does not
// report one. Explicit angles from the config win; otherwise the angles are
// derived from the lens focal length and the sensor size.
type FOVCalculator struct {
	cfg *config.Config
}

// NewFOVCalculator creates a new FOV calculator.
// Returns an error if neither explicit angles nor lens and sensor
// information are available.
func NewFOVCalculator(cfg *config.Config) (*FOVCalculator, error) {
	cam := cfg.Camera
	if cam.HorizontalFOVDeg > 0 && cam.VerticalFOVDeg > 0 {
		return &FOVCalculator{cfg: cfg}, nil
	}
	if cam.Lens == nil || cam.Sensor == nil {
		return nil, fmt.Errorf("camera FOV requires hfov_deg/vfov_deg or lens and sensor configuration")
	}
	if cam.Lens.FocalLengthMm <= 0 {
		return nil, fmt.Errorf("lens.focal_length_mm must be > 0")
	}
	return &FOVCalculator{cfg: cfg}, nil
}

// HorizontalFOV returns the full horizontal field of view in degrees.
// Formula: FOV = 2 × arctan(sensor_width / (2 × focal_length))
func (f *FOVCalculator) HorizontalFOV() float64 {
	if deg := f.cfg.Camera.HorizontalFOVDeg; deg > 0 {
		return deg
	}
	return lensFOV(f.cfg.Camera.Sensor.WidthMm, f.cfg.Camera.Lens.FocalLengthMm)
}

// VerticalFOV returns the full vertical field of view in degrees.
// Formula: FOV = 2 × arctan(sensor_height / (2 × focal_length))
func (f *FOVCalculator) VerticalFOV() float64 {
	if deg := f.cfg.Camera.VerticalFOVDeg; deg > 0 {
		return deg
	}
	return lensFOV(f.cfg.Camera.Sensor.HeightMm, f.cfg.Camera.Lens.FocalLengthMm)
}

// HorizontalFOVRad is HorizontalFOV in radians.
func (f *FOVCalculator) HorizontalFOVRad() float64 {
	return f.HorizontalFOV() * math.Pi / 180.0
}

// VerticalFOVRad is VerticalFOV in radians.
func (f *FOVCalculator) VerticalFOVRad() float64 {
	return f.VerticalFOV() * math.Pi / 180.0
}

func lensFOV(sensorMm, focalMm float64) float64 {
	return 2.0 * math.Atan(sensorMm/(2.0*focalMm)) * 180.0 / math.Pi
}
