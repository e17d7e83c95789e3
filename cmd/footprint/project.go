package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cjeanneret/FootprintGo/internal/debug"
	"github.com/cjeanneret/FootprintGo/internal/logic/geodesy"
	"github.com/cjeanneret/FootprintGo/internal/logic/geometry"
	"github.com/cjeanneret/FootprintGo/internal/logic/projection"
	"github.com/cjeanneret/FootprintGo/internal/web"
)

// projectCmd represents the project command
var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Compute one footprint and print it as JSON",
	Long: `Compute the footprint for a single pose given on the command line.
Angles are degrees. The camera FOV defaults to the configured one.

Example:
  footprint project --lat 59 --lon 18 --alt 100 --cam-pitch -90 --hfov 60 --vfov 40`,
	RunE: runProject,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	f := projectCmd.Flags()
	f.Float64("lat", 0, "vehicle latitude (deg)")
	f.Float64("lon", 0, "vehicle longitude (deg)")
	f.Float64("alt", 1, "altitude above ground (m)")
	f.Float64("yaw", 0, "vehicle yaw (deg)")
	f.Float64("pitch", 0, "vehicle pitch (deg)")
	f.Float64("roll", 0, "vehicle roll (deg)")
	f.Float64("cam-yaw", 0, "gimbal yaw (deg)")
	f.Float64("cam-pitch", 0, "gimbal pitch (deg)")
	f.Float64("cam-roll", 0, "gimbal roll (deg)")
	f.Float64("hfov", 0, "horizontal FOV (deg), 0 = config")
	f.Float64("vfov", 0, "vertical FOV (deg), 0 = config")
	f.Bool("earth-frame", false, "gimbal attitude is earth-referenced")
}

func runProject(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	debug.Init(cfg.Defaults.DebugLevel)

	fov, err := geometry.NewFOVCalculator(cfg)
	if err != nil {
		return fmt.Errorf("camera FOV: %w", err)
	}
	req, err := projectRequestFromFlags(cmd, fov.HorizontalFOV(), fov.VerticalFOV())
	if err != nil {
		return err
	}

	engine, err := projection.NewEngine(paramsFromConfig(cfg), geodesy.WGS84{})
	if err != nil {
		return err
	}
	in := req.Input()
	res, err := engine.Compute(in)
	if err != nil {
		return err
	}
	return printMessage(cmd.OutOrStdout(), projection.NewMessage(in, res))
}

// projectRequestFromFlags reads the pose flags; zero FOV flags take the given defaults.
func projectRequestFromFlags(cmd *cobra.Command, hfovDeg, vfovDeg float64) (web.ProjectRequest, error) {
	f := cmd.Flags()
	get := func(name string) float64 {
		v, _ := f.GetFloat64(name)
		return v
	}
	req := web.ProjectRequest{
		Lat:     get("lat"),
		Lon:     get("lon"),
		Alt:     get("alt"),
		Drone:   web.AttitudeDeg{Yaw: get("yaw"), Pitch: get("pitch"), Roll: get("roll")},
		Camera:  web.AttitudeDeg{Yaw: get("cam-yaw"), Pitch: get("cam-pitch"), Roll: get("cam-roll")},
		HFOVDeg: getConfigFloat(cmd, "hfov", envPrefix+"HFOV", hfovDeg),
		VFOVDeg: getConfigFloat(cmd, "vfov", envPrefix+"VFOV", vfovDeg),
	}
	req.EarthFrame, _ = f.GetBool("earth-frame")
	if err := web.ValidateRequest(req); err != nil {
		return req, fmt.Errorf("invalid pose: %w", err)
	}
	return req, nil
}

func printMessage(w io.Writer, msg projection.Message) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(msg)
}
