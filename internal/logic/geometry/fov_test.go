package geometry

import (
	"math"
	"testing"

	"github.com/cjeanneret/FootprintGo/internal/config"
)

const epsilon = 0.01 // tolerance for float comparisons (degrees)

func newOpticsConfig(focalMm, sensorW, sensorH float64) *config.Config {
	return &config.Config{
		Camera: config.CameraConfig{
			Lens:   &config.LensConfig{FocalLengthMm: focalMm},
			Sensor: &config.SensorConfig{WidthMm: sensorW, HeightMm: sensorH},
		},
	}
}

func TestNewFOVCalculator_NilSensor(t *testing.T) {
	cfg := &config.Config{Camera: config.CameraConfig{Lens: &config.LensConfig{FocalLengthMm: 4.5}}}
	if _, err := NewFOVCalculator(cfg); err == nil {
		t.Error("expected error for nil sensor, got nil")
	}
}

func TestNewFOVCalculator_ZeroFocal(t *testing.T) {
	if _, err := NewFOVCalculator(newOpticsConfig(0, 6.17, 4.55)); err == nil {
		t.Error("expected error for zero focal length, got nil")
	}
}

func TestNewFOVCalculator_ExplicitAngles(t *testing.T) {
	cfg := &config.Config{Camera: config.CameraConfig{HorizontalFOVDeg: 84, VerticalFOVDeg: 62}}
	fov, err := NewFOVCalculator(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fov.HorizontalFOV() != 84 || fov.VerticalFOV() != 62 {
		t.Errorf("FOV = %v x %v, want 84 x 62", fov.HorizontalFOV(), fov.VerticalFOV())
	}
}

func TestFOVCalculator_ExplicitAnglesWinOverOptics(t *testing.T) {
	cfg := newOpticsConfig(4.5, 6.17, 4.55)
	cfg.Camera.HorizontalFOVDeg = 90
	cfg.Camera.VerticalFOVDeg = 60
	fov, err := NewFOVCalculator(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fov.HorizontalFOV() != 90 || fov.VerticalFOV() != 60 {
		t.Errorf("FOV = %v x %v, want 90 x 60", fov.HorizontalFOV(), fov.VerticalFOV())
	}
}

// Reference: 1/2.3" sensor (6.17 x 4.55 mm) with a 4.5 mm lens
// HorizontalFOV = 2 * atan(6.17 / (2*4.5)) * 180/pi ~ 68.8 deg
// VerticalFOV   = 2 * atan(4.55 / (2*4.5)) * 180/pi ~ 53.7 deg
func TestFOVCalculator_FromOptics(t *testing.T) {
	fov, err := NewFOVCalculator(newOpticsConfig(4.5, 6.17, 4.55))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantH := 2.0 * math.Atan(6.17/(2.0*4.5)) * 180.0 / math.Pi
	wantV := 2.0 * math.Atan(4.55/(2.0*4.5)) * 180.0 / math.Pi
	if got := fov.HorizontalFOV(); math.Abs(got-wantH) > epsilon {
		t.Errorf("HorizontalFOV() = %v, want ~%v", got, wantH)
	}
	if got := fov.VerticalFOV(); math.Abs(got-wantV) > epsilon {
		t.Errorf("VerticalFOV() = %v, want ~%v", got, wantV)
	}
	if got := fov.HorizontalFOVRad(); math.Abs(got-wantH*math.Pi/180) > 1e-9 {
		t.Errorf("HorizontalFOVRad() = %v, want %v", got, wantH*math.Pi/180)
	}
}

func TestFOVCalculator_FOV_DecreasesWithFocalLength(t *testing.T) {
	prev := math.Inf(1)
	for _, focal := range []float64{2.8, 4.5, 8, 24, 50} {
		fov, _ := NewFOVCalculator(newOpticsConfig(focal, 6.17, 4.55))
		h := fov.HorizontalFOV()
		if h >= prev {
			t.Errorf("focal %v mm: hfov %v should be below %v", focal, h, prev)
		}
		prev = h
	}
}

func TestFOVCalculator_DefaultAnglesInRadians(t *testing.T) {
	cfg := config.Default()
	fov, err := NewFOVCalculator(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := fov.VerticalFOVRad(), config.DefaultVerticalFOVDeg*math.Pi/180; math.Abs(got-want) > 1e-12 {
		t.Errorf("VerticalFOVRad() = %v, want %v", got, want)
	}
}
