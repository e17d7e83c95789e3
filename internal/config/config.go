package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxConfigFileBytes bounds the size of a config file accepted by Load.
const MaxConfigFileBytes = 1 << 20

// Telemetry endpoint kinds.
const (
	EndpointTCP    = "tcp"
	EndpointUDP    = "udp"
	EndpointSerial = "serial"
	EndpointReplay = "replay"
)

// MessageNames are the MAVLink messages the tracker consumes.
var MessageNames = []string{
	"GLOBAL_POSITION_INT",
	"ATTITUDE",
	"GIMBAL_DEVICE_ATTITUDE_STATUS",
	"CAMERA_FOV_STATUS",
}

// DefaultAllowedOrigins lets front-ends served from the local machine open the websocket.
var DefaultAllowedOrigins = []string{"localhost:*", "127.0.0.1:*"}

// Default camera FOV, used when the gimbal never reports CAMERA_FOV_STATUS.
const (
	DefaultHorizontalFOVDeg = 109.17181489731475
	DefaultVerticalFOVDeg   = 122.6
)

// TelemetryConfig selects where MAVLink telemetry is read from.
type TelemetryConfig struct {
	Endpoint         string   `yaml:"endpoint"`           // "tcp" (client), "udp" (server), "serial" or "replay"
	Address          string   `yaml:"address"`            // host:port for tcp/udp
	SerialDevice     string   `yaml:"serial_device"`      // e.g. /dev/ttyUSB0
	BaudRate         int      `yaml:"baud_rate"`          // serial only
	SystemID         int      `yaml:"system_id"`          // MAVLink system id of this node
	ReplayFile       string   `yaml:"replay_file"`        // .tlog file for the replay endpoint
	ReplayIntervalMs int      `yaml:"replay_interval_ms"` // pause after each replayed message (default: 10)
	Messages         []string `yaml:"messages"`           // subset of MessageNames to accept; empty = all
}

// LensConfig describes the mounted lens.
type LensConfig struct {
	Name          string  `yaml:"name"`            // e.g., "wide 4.5mm"
	FocalLengthMm float64 `yaml:"focal_length_mm"` // focal length in use
}

// SensorConfig is the physical sensor size in mm.
type SensorConfig struct {
	WidthMm  float64 `yaml:"width_mm"`
	HeightMm float64 `yaml:"height_mm"`
}

// CameraConfig holds the fallback field of view of the gimbal camera.
// Either set both angles, or give lens and sensor so the angles can be derived.
type CameraConfig struct {
	HorizontalFOVDeg float64       `yaml:"hfov_deg"`
	VerticalFOVDeg   float64       `yaml:"vfov_deg"`
	Lens             *LensConfig   `yaml:"lens,omitempty"`   // optional
	Sensor           *SensorConfig `yaml:"sensor,omitempty"` // optional
}

// ProjectionConfig holds the footprint engine tuning parameters.
type ProjectionConfig struct {
	MinAngleToXYDeg float64 `yaml:"min_angle_to_xy_deg"` // elevation ceiling for corner rays (default: -10°)
	MinFOVAngleDeg  float64 `yaml:"min_fov_angle_deg"`   // minimum spread between adjacent corners (default: 4°)
	StepDeg         float64 `yaml:"step_deg"`            // correction step (default: 3°)
	MaxIterations   int     `yaml:"max_iterations"`      // correction loop bound (default: 256)
}

// WebConfig configures the live footprint server.
type WebConfig struct {
	Port           int      `yaml:"port"`            // default 8777
	AllowedOrigins []string `yaml:"allowed_origins"` // websocket origin patterns; unset = DefaultAllowedOrigins, [] = same origin only
}

// IndicatorConfig drives optional status LEDs.
type IndicatorConfig struct {
	Enabled  bool `yaml:"enabled"`
	OKPin    int  `yaml:"ok_pin"`    // lit while a footprint is available (BCM)
	FaultPin int  `yaml:"fault_pin"` // lit while no footprint can be computed (BCM)
}

// DefaultsConfig contains generic parameters.
type DefaultsConfig struct {
	DebugLevel int  `yaml:"debug_level"` // debug level 0-4 (0=off, 1=info, 2=live, 3=verbose, 4=trace)
	MockGPIO   bool `yaml:"mock_gpio"`   // use mock GPIO (true=dev/test, false=real Raspberry Pi)
}

// Config aggregates all application configuration.
type Config struct {
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Camera     CameraConfig     `yaml:"camera"`
	Projection ProjectionConfig `yaml:"projection"`
	Web        WebConfig        `yaml:"web"`
	Indicator  IndicatorConfig  `yaml:"indicator"`
	Defaults   DefaultsConfig   `yaml:"defaults"`
}

// ValidateConfigPath accepts only .yaml files located directly in a configs/ directory.
func ValidateConfigPath(path string) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == ".." {
			return fmt.Errorf("config path %q must not contain '..'", path)
		}
	}
	if filepath.Ext(path) != ".yaml" {
		return fmt.Errorf("config path %q must have a .yaml extension", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	if filepath.Base(filepath.Dir(abs)) != "configs" {
		return fmt.Errorf("config path %q must be inside a configs/ directory", path)
	}
	return nil
}

// Load reads a YAML file and returns the configuration.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if info.Size() > MaxConfigFileBytes {
		return nil, fmt.Errorf("config file is %d bytes, limit is %d", info.Size(), MaxConfigFileBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	t := &c.Telemetry
	if t.Endpoint == "" {
		t.Endpoint = EndpointTCP
	}
	if t.Address == "" && (t.Endpoint == EndpointTCP || t.Endpoint == EndpointUDP) {
		t.Address = "127.0.0.1:5762" // SITL secondary TCP port
	}
	if t.BaudRate <= 0 {
		t.BaudRate = 57600
	}
	if t.SystemID <= 0 {
		t.SystemID = 254
	}
	if t.ReplayIntervalMs <= 0 {
		t.ReplayIntervalMs = 10
	}

	cam := &c.Camera
	if cam.HorizontalFOVDeg <= 0 && cam.VerticalFOVDeg <= 0 && (cam.Lens == nil || cam.Sensor == nil) {
		cam.HorizontalFOVDeg = DefaultHorizontalFOVDeg
		cam.VerticalFOVDeg = DefaultVerticalFOVDeg
	}

	p := &c.Projection
	if p.MinAngleToXYDeg == 0 {
		p.MinAngleToXYDeg = -10
	}
	if p.MinFOVAngleDeg <= 0 {
		p.MinFOVAngleDeg = 4
	}
	if p.StepDeg <= 0 {
		p.StepDeg = 3
	}
	if p.MaxIterations <= 0 {
		p.MaxIterations = 256
	}

	if c.Web.Port <= 0 {
		c.Web.Port = 8777
	}
	if c.Web.AllowedOrigins == nil {
		c.Web.AllowedOrigins = append([]string(nil), DefaultAllowedOrigins...)
	}
}

// Validate checks ranges after defaults have been applied.
func (c *Config) Validate() error {
	switch c.Telemetry.Endpoint {
	case EndpointTCP, EndpointUDP:
		if c.Telemetry.Address == "" {
			return fmt.Errorf("telemetry.address is required for endpoint %q", c.Telemetry.Endpoint)
		}
	case EndpointSerial:
		if c.Telemetry.SerialDevice == "" {
			return errors.New("telemetry.serial_device is required for endpoint \"serial\"")
		}
	case EndpointReplay:
		if c.Telemetry.ReplayFile == "" {
			return errors.New("telemetry.replay_file is required for endpoint \"replay\"")
		}
	default:
		return fmt.Errorf("telemetry.endpoint must be tcp, udp, serial or replay, got %q", c.Telemetry.Endpoint)
	}
	for _, name := range c.Telemetry.Messages {
		if !slices.Contains(MessageNames, name) {
			return fmt.Errorf("telemetry.messages: unknown message %q, want one of %s", name, strings.Join(MessageNames, ", "))
		}
	}
	if c.Telemetry.SystemID > 255 {
		return fmt.Errorf("telemetry.system_id must be between 1 and 255, got %d", c.Telemetry.SystemID)
	}

	cam := c.Camera
	if err := checkFOV("camera.hfov_deg", cam.HorizontalFOVDeg); err != nil {
		return err
	}
	if err := checkFOV("camera.vfov_deg", cam.VerticalFOVDeg); err != nil {
		return err
	}
	if (cam.HorizontalFOVDeg > 0) != (cam.VerticalFOVDeg > 0) {
		return errors.New("camera.hfov_deg and camera.vfov_deg must be set together")
	}
	if cam.Lens != nil && cam.Lens.FocalLengthMm <= 0 {
		return errors.New("camera.lens.focal_length_mm must be > 0")
	}
	if cam.Sensor != nil && (cam.Sensor.WidthMm <= 0 || cam.Sensor.HeightMm <= 0) {
		return errors.New("camera.sensor width_mm and height_mm must be > 0")
	}

	p := c.Projection
	if p.MinAngleToXYDeg >= 0 || p.MinAngleToXYDeg <= -90 {
		return fmt.Errorf("projection.min_angle_to_xy_deg must be between -90 and 0 (exclusive), got %.2f", p.MinAngleToXYDeg)
	}
	if p.MinFOVAngleDeg >= 180 {
		return fmt.Errorf("projection.min_fov_angle_deg must be < 180, got %.2f", p.MinFOVAngleDeg)
	}
	if p.StepDeg >= 90 {
		return fmt.Errorf("projection.step_deg must be < 90, got %.2f", p.StepDeg)
	}

	if c.Web.Port > 65535 {
		return fmt.Errorf("web.port must be 1-65535, got %d", c.Web.Port)
	}
	if c.Indicator.Enabled && (c.Indicator.OKPin <= 0 || c.Indicator.FaultPin <= 0 || c.Indicator.OKPin == c.Indicator.FaultPin) {
		return errors.New("indicator.ok_pin and indicator.fault_pin must be distinct positive pins")
	}
	if c.Defaults.DebugLevel < 0 || c.Defaults.DebugLevel > 4 {
		return fmt.Errorf("defaults.debug_level must be between 0 and 4, got %d", c.Defaults.DebugLevel)
	}
	return nil
}

func checkFOV(name string, deg float64) error {
	if math.IsNaN(deg) || math.IsInf(deg, 0) || deg < 0 || deg >= 180 {
		return fmt.Errorf("%s must be between 0 and 180, got %g", name, deg)
	}
	return nil
}

// CeilingRad returns the elevation ceiling in radians.
func (c *Config) CeilingRad() float64 {
	return c.Projection.MinAngleToXYDeg * math.Pi / 180.0
}

// MinSpreadRad returns the minimum corner spread in radians.
func (c *Config) MinSpreadRad() float64 {
	return c.Projection.MinFOVAngleDeg * math.Pi / 180.0
}

// StepRad returns the correction step in radians.
func (c *Config) StepRad() float64 {
	return c.Projection.StepDeg * math.Pi / 180.0
}

// WebAddr returns the listen address of the web server.
func (c *Config) WebAddr() string {
	return fmt.Sprintf(":%d", c.Web.Port)
}
