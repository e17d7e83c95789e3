package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cjeanneret/FootprintGo/internal/config"
	"github.com/cjeanneret/FootprintGo/internal/debug"
	"github.com/cjeanneret/FootprintGo/internal/hw/gpio"
	"github.com/cjeanneret/FootprintGo/internal/hw/indicator"
	"github.com/cjeanneret/FootprintGo/internal/logic/geodesy"
	"github.com/cjeanneret/FootprintGo/internal/logic/geometry"
	"github.com/cjeanneret/FootprintGo/internal/logic/projection"
	"github.com/cjeanneret/FootprintGo/internal/logic/tracker"
	"github.com/cjeanneret/FootprintGo/internal/telemetry"
	"github.com/cjeanneret/FootprintGo/internal/web"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Track the footprint from live MAVLink telemetry",
	Long: `Read MAVLink telemetry and publish the camera footprint after every update:
  - /ws                websocket push of every footprint message
  - /footprint/stream  the same messages as server-sent events
  - /footprint         latest footprint message
  - /project           POST a pose, get its footprint
  - /telemetry         latest telemetry snapshot
  - /log/stream        debug console

The websocket is also reachable at / for map front-ends.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("endpoint", "", "telemetry endpoint: tcp, udp, serial or replay")
	serveCmd.Flags().StringP("address", "a", "", "telemetry host:port (tcp client / udp server)")
	serveCmd.Flags().String("serial", "", "serial device for the serial endpoint")
	serveCmd.Flags().Int("baud", 0, "serial baud rate")
	serveCmd.Flags().IntP("port", "p", 0, "web server port")
	serveCmd.Flags().Bool("mock-gpio", false, "use the mock GPIO driver for the status lamps")
	serveCmd.Flags().StringP("replay", "f", "", "replay a .tlog file instead of a live endpoint")
	serveCmd.Flags().StringSliceP("messages", "m", nil, "MAVLink messages to accept (default: all)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Console output goes to stdout and to /log/stream
	logs := web.NewHub()
	debug.Init(cfg.Defaults.DebugLevel)
	debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(logs)))
	debug.Section("Initialization")
	debug.Value("Debug level", cfg.Defaults.DebugLevel)

	debug.Step(1, "Resolving camera field of view")
	fov, err := geometry.NewFOVCalculator(cfg)
	if err != nil {
		return fmt.Errorf("camera FOV: %w", err)
	}
	debug.Value("Default horizontal FOV", fov.HorizontalFOV())
	debug.Value("Default vertical FOV", fov.VerticalFOV())

	debug.Step(2, "Creating footprint engine")
	engine, err := projection.NewEngine(paramsFromConfig(cfg), geodesy.WGS84{})
	if err != nil {
		return err
	}
	debug.PrintStruct("Projection config", cfg.Projection)

	debug.Step(3, "Initializing status indicator")
	lamp, err := newIndicator(cfg)
	if err != nil {
		return fmt.Errorf("init indicator: %w", err)
	}
	defer func() {
		if err := lamp.Close(); err != nil {
			debug.Error(err)
		}
	}()

	state := telemetry.NewState(fov.HorizontalFOVRad(), fov.VerticalFOVRad())
	footprints := web.NewHub()
	track := tracker.New(engine, state, footprints, lamp)
	source := telemetry.NewSource(cfg.Telemetry, state, track.Notify)

	srv, err := web.NewServer(cfg.WebAddr(), web.Deps{
		Footprints:     footprints,
		Logs:           logs,
		Compute:        engine.Compute,
		Telemetry:      func() interface{} { return state.Snapshot() },
		Params:         engine.Params(),
		OriginPatterns: cfg.Web.AllowedOrigins,
	})
	if err != nil {
		return err
	}

	debug.Summary("Footprint tracker running")
	return runAll(ctx, cancel, srv.Run, source.Run, track.Run)
}

// runAll runs every task until ctx ends or one of them fails, then stops the
// others and returns the first failure.
func runAll(ctx context.Context, cancel context.CancelFunc, tasks ...func(context.Context) error) error {
	errCh := make(chan error, len(tasks))
	for _, task := range tasks {
		go func(run func(context.Context) error) {
			errCh <- run(ctx)
		}(task)
	}

	var first error
	for range tasks {
		err := <-errCh
		if err != nil && !errors.Is(err, context.Canceled) && first == nil {
			first = err
		}
		cancel()
	}
	return first
}

// newIndicator returns the GPIO lamps when enabled, otherwise a no-op.
func newIndicator(cfg *config.Config) (indicator.Indicator, error) {
	if !cfg.Indicator.Enabled {
		return indicator.Nop{}, nil
	}
	debug.Value("Mock GPIO", cfg.Defaults.MockGPIO)
	drv, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
	if err != nil {
		return nil, err
	}
	lamp, err := indicator.NewLamp(drv, cfg.Indicator.OKPin, cfg.Indicator.FaultPin)
	if err != nil {
		_ = drv.Close()
		return nil, err
	}
	debug.Value("OK pin", cfg.Indicator.OKPin)
	debug.Value("Fault pin", cfg.Indicator.FaultPin)
	return lamp, nil
}
