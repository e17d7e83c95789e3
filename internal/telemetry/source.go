package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/bluenviron/gomavlib/v3"
	"github.com/bluenviron/gomavlib/v3/pkg/dialects/common"
	"github.com/bluenviron/gomavlib/v3/pkg/message"
	"go.bug.st/serial"

	"github.com/cjeanneret/FootprintGo/internal/config"
	"github.com/cjeanneret/FootprintGo/internal/debug"
)

// Handler is called after every message that changed the state.
type Handler func(Kind)

// Source reads MAVLink telemetry from one endpoint into a State.
type Source struct {
	cfg     config.TelemetryConfig
	state   *State
	handler Handler
	accept  [4]bool // indexed by Kind
}

// NewSource creates a source. handler may be nil. Only the messages named in
// cfg.Messages are applied; an empty list accepts all of them.
func NewSource(cfg config.TelemetryConfig, state *State, handler Handler) *Source {
	s := &Source{cfg: cfg, state: state, handler: handler}
	for k := range s.accept {
		s.accept[k] = len(cfg.Messages) == 0 || slices.Contains(cfg.Messages, Kind(k).String())
	}
	return s
}

// replayFile feeds a telemetry log to the node. Outgoing frames are dropped.
type replayFile struct {
	*os.File
}

func (r replayFile) Write(p []byte) (int, error) {
	return len(p), nil
}

// Run reads telemetry until ctx is cancelled or the node closes.
func (s *Source) Run(ctx context.Context) error {
	ep, err := s.endpoint()
	if err != nil {
		return err
	}

	node, err := gomavlib.NewNode(gomavlib.NodeConf{
		Endpoints:   []gomavlib.EndpointConf{ep},
		Dialect:     common.Dialect,
		OutVersion:  gomavlib.V2,
		OutSystemID: byte(s.cfg.SystemID),
	})
	if err != nil {
		if c, ok := ep.(gomavlib.EndpointCustom); ok {
			_ = c.ReadWriteCloser.Close()
		}
		return fmt.Errorf("create mavlink node: %w", err)
	}
	defer node.Close()

	debug.Info("Reading MAVLink telemetry (%s)", s.describe())
	replay := s.cfg.Endpoint == config.EndpointReplay
	pause := time.Duration(s.cfg.ReplayIntervalMs) * time.Millisecond
	events := node.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-events:
			if !ok {
				return errors.New("mavlink node closed")
			}
			switch e := evt.(type) {
			case *gomavlib.EventFrame:
				if _, ok := s.Handle(e.Message()); ok && replay && !sleepCtx(ctx, pause) {
					return nil
				}
			case *gomavlib.EventChannelOpen:
				debug.Info("MAVLink channel open: %v", e.Channel)
			case *gomavlib.EventChannelClose:
				if replay {
					// Keep serving the last footprint until shutdown.
					debug.Info("Replay of %s finished", s.cfg.ReplayFile)
					<-ctx.Done()
					return nil
				}
				debug.Info("MAVLink channel closed: %v", e.Channel)
			case *gomavlib.EventParseError:
				debug.Trace("MAVLink parse error: %v", e.Error)
			}
		}
	}
}

// Handle applies one decoded message to the state. Messages of other types,
// filtered out by the configuration, or with unusable content are ignored
// and reported as not accepted.
func (s *Source) Handle(msg message.Message) (Kind, bool) {
	kind, known := kindOf(msg)
	if !known || !s.accept[kind] {
		return kind, false
	}

	switch m := msg.(type) {
	case *common.MessageGlobalPositionInt:
		s.state.SetPosition(m.Lat, m.Lon, m.RelativeAlt)
	case *common.MessageAttitude:
		s.state.SetAttitude(float64(m.Yaw), float64(m.Pitch), float64(m.Roll))
	case *common.MessageGimbalDeviceAttitudeStatus:
		q := [4]float64{float64(m.Q[0]), float64(m.Q[1]), float64(m.Q[2]), float64(m.Q[3])}
		if !s.state.SetGimbal(q, GimbalFlags(uint32(m.Flags))) {
			debug.Live("Ignoring gimbal attitude with invalid quaternion %v", m.Q)
			return kind, false
		}
	case *common.MessageCameraFovStatus:
		if !s.state.SetFOV(float64(m.Hfov), float64(m.Vfov)) {
			debug.Live("Ignoring camera FOV %g x %g", m.Hfov, m.Vfov)
			return kind, false
		}
	}

	debug.Telemetry(kind.String(), msg)
	if s.handler != nil {
		s.handler(kind)
	}
	return kind, true
}

func kindOf(msg message.Message) (Kind, bool) {
	switch msg.(type) {
	case *common.MessageGlobalPositionInt:
		return KindPosition, true
	case *common.MessageAttitude:
		return KindAttitude, true
	case *common.MessageGimbalDeviceAttitudeStatus:
		return KindGimbal, true
	case *common.MessageCameraFovStatus:
		return KindFOV, true
	}
	return 0, false
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (s *Source) endpoint() (gomavlib.EndpointConf, error) {
	switch s.cfg.Endpoint {
	case config.EndpointTCP:
		return gomavlib.EndpointTCPClient{Address: s.cfg.Address}, nil
	case config.EndpointUDP:
		return gomavlib.EndpointUDPServer{Address: s.cfg.Address}, nil
	case config.EndpointSerial:
		port, err := serial.Open(s.cfg.SerialDevice, &serial.Mode{
			BaudRate: s.cfg.BaudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		})
		if err != nil {
			return nil, fmt.Errorf("open serial port %s: %w", s.cfg.SerialDevice, err)
		}
		return gomavlib.EndpointCustom{ReadWriteCloser: port}, nil
	case config.EndpointReplay:
		f, err := os.Open(s.cfg.ReplayFile)
		if err != nil {
			return nil, fmt.Errorf("open replay file: %w", err)
		}
		return gomavlib.EndpointCustom{ReadWriteCloser: replayFile{f}}, nil
	default:
		return nil, fmt.Errorf("unsupported telemetry endpoint %q", s.cfg.Endpoint)
	}
}

func (s *Source) describe() string {
	switch s.cfg.Endpoint {
	case config.EndpointSerial:
		return fmt.Sprintf("serial %s @ %d baud", s.cfg.SerialDevice, s.cfg.BaudRate)
	case config.EndpointReplay:
		return "replay " + s.cfg.ReplayFile
	}
	return s.cfg.Endpoint + " " + s.cfg.Address
}
