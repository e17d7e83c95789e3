package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/cjeanneret/FootprintGo/internal/debug"
	"github.com/cjeanneret/FootprintGo/internal/logic/geodesy"
	"github.com/cjeanneret/FootprintGo/internal/logic/geometry"
	"github.com/cjeanneret/FootprintGo/internal/logic/projection"
)

const (
	maxRequestBytes   = 1 << 20
	heartbeatInterval = 30 * time.Second
	wsWriteTimeout    = 5 * time.Second
)

// AttitudeDeg is a yaw/pitch/roll attitude in degrees.
type AttitudeDeg struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}

func (a AttitudeDeg) orientation() geometry.Orientation {
	return geometry.Orientation{Yaw: a.Yaw * deg, Pitch: a.Pitch * deg, Roll: a.Roll * deg}
}

// ProjectRequest describes a one-shot footprint computation. Angles are degrees.
type ProjectRequest struct {
	Lat        float64     `json:"lat"`
	Lon        float64     `json:"lon"`
	Alt        float64     `json:"alt"` // relative altitude (m)
	Drone      AttitudeDeg `json:"drone"`
	Camera     AttitudeDeg `json:"camera"`
	HFOVDeg    float64     `json:"hfov_deg"`
	VFOVDeg    float64     `json:"vfov_deg"`
	EarthFrame bool        `json:"earth_frame"`
}

const deg = math.Pi / 180

// Input converts the request into an engine input.
func (r ProjectRequest) Input() projection.Input {
	return projection.Input{
		Position:      geodesy.Position{Lat: r.Lat, Lon: r.Lon, Alt: r.Alt},
		Drone:         r.Drone.orientation(),
		Camera:        r.Camera.orientation(),
		HorizontalFOV: r.HFOVDeg * deg,
		VerticalFOV:   r.VFOVDeg * deg,
		EarthFrame:    r.EarthFrame,
	}
}

// ValidateRequest checks ranges before a request reaches the engine.
func ValidateRequest(r ProjectRequest) error {
	if err := checkRange("lat", r.Lat, -90, 90); err != nil {
		return err
	}
	if err := checkRange("lon", r.Lon, -180, 180); err != nil {
		return err
	}
	if err := checkRange("alt", r.Alt, 0, 100000); err != nil {
		return err
	}
	for name, v := range map[string]float64{
		"drone.yaw": r.Drone.Yaw, "drone.pitch": r.Drone.Pitch, "drone.roll": r.Drone.Roll,
		"camera.yaw": r.Camera.Yaw, "camera.pitch": r.Camera.Pitch, "camera.roll": r.Camera.Roll,
	} {
		if err := checkRange(name, v, -360, 360); err != nil {
			return err
		}
	}
	if r.HFOVDeg <= 0 || r.HFOVDeg >= 180 || math.IsNaN(r.HFOVDeg) {
		return fmt.Errorf("hfov_deg must be between 0 and 180 (exclusive), got %g", r.HFOVDeg)
	}
	if r.VFOVDeg <= 0 || r.VFOVDeg >= 180 || math.IsNaN(r.VFOVDeg) {
		return fmt.Errorf("vfov_deg must be between 0 and 180 (exclusive), got %g", r.VFOVDeg)
	}
	return nil
}

func checkRange(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < lo || v > hi {
		return fmt.Errorf("%s must be between %g and %g, got %g", name, lo, hi, v)
	}
	return nil
}

// ComputeFunc runs the footprint engine for one input.
type ComputeFunc func(projection.Input) (projection.Result, error)

// TelemetryFunc returns the current telemetry snapshot as a JSON-serializable value.
type TelemetryFunc func() interface{}

// Deps are the dependencies of the HTTP handlers.
type Deps struct {
	Footprints     *Hub // live footprint messages
	Logs           *Hub // debug console
	Compute        ComputeFunc
	Telemetry      TelemetryFunc
	Params         projection.Params
	OriginPatterns []string // websocket origins; empty = same origin only
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	deps     Deps
	staticFS fs.FS
}

// NewHandlers creates handlers with the given dependencies.
// If deps.Compute is nil, POST /project returns 503 Service Unavailable.
func NewHandlers(deps Deps, staticFS fs.FS) *Handlers {
	if deps.Footprints == nil {
		deps.Footprints = NewHub()
	}
	if deps.Logs == nil {
		deps.Logs = NewHub()
	}
	return &Handlers{deps: deps, staticFS: staticFS}
}

// ParamsResponse is the engine configuration in degrees.
type ParamsResponse struct {
	MinAngleToXYDeg float64 `json:"min_angle_to_xy_deg"`
	MinFOVAngleDeg  float64 `json:"min_fov_angle_deg"`
	StepDeg         float64 `json:"step_deg"`
	MaxIterations   int     `json:"max_iterations"`
}

// HandleConfig returns the engine parameters as JSON.
func (h *Handlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	p := h.deps.Params
	writeJSON(w, http.StatusOK, ParamsResponse{
		MinAngleToXYDeg: p.Ceiling / deg,
		MinFOVAngleDeg:  p.MinSpread / deg,
		StepDeg:         p.Step / deg,
		MaxIterations:   p.MaxIterations,
	})
}

// ServeIndex serves the main HTML page (root path only). Websocket upgrades
// on the root path go to HandleWebSocket, where map front-ends connect.
func (h *Handlers) ServeIndex(w http.ResponseWriter, r *http.Request) {
	if isWebSocketUpgrade(r) {
		h.HandleWebSocket(w, r)
		return
	}
	data, err := fs.ReadFile(h.staticFS, "index.html")
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

// HandleProject handles POST /project: one footprint computation, answered synchronously.
func (h *Handlers) HandleProject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.deps.Compute == nil {
		http.Error(w, "projection not configured", http.StatusServiceUnavailable)
		return
	}

	var req ProjectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := ValidateRequest(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	in := req.Input()
	res, err := h.deps.Compute(in)
	switch {
	case errors.Is(err, projection.ErrDegenerateFOV), errors.Is(err, projection.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		debug.Error(err)
		http.Error(w, "projection failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, projection.NewMessage(in, res))
}

// HandleFootprint returns the latest live footprint message, or 204 when none exists yet.
func (h *Handlers) HandleFootprint(w http.ResponseWriter, r *http.Request) {
	msg, ok := h.deps.Footprints.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(msg))
}

// HandleTelemetry returns the current telemetry snapshot.
func (h *Handlers) HandleTelemetry(w http.ResponseWriter, r *http.Request) {
	if h.deps.Telemetry == nil {
		http.Error(w, "telemetry not configured", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Telemetry())
}

// HandleFootprintStream handles GET /footprint/stream for SSE.
func (h *Handlers) HandleFootprintStream(w http.ResponseWriter, r *http.Request) {
	serveSSE(w, r, h.deps.Footprints, true)
}

// HandleLogStream handles GET /log/stream for SSE.
func (h *Handlers) HandleLogStream(w http.ResponseWriter, r *http.Request) {
	serveSSE(w, r, h.deps.Logs, false)
}

func serveSSE(w http.ResponseWriter, r *http.Request, hub *Hub, replayLatest bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // nginx

	_, ch, unsub := hub.Subscribe()
	defer unsub()

	// Send initial comment to establish connection
	w.Write([]byte(": connected\n\n"))
	if latest, ok := hub.Latest(); ok && replayLatest {
		w.Write([]byte("data: " + latest + "\n\n"))
	}
	flusher.Flush()

	// Heartbeat while idle
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			w.Write([]byte("data: " + msg + "\n\n"))
			flusher.Flush()

		case <-ticker.C:
			w.Write([]byte(": heartbeat\n\n"))
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// HandleWebSocket handles GET /ws: every footprint message is pushed as one text frame.
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.deps.OriginPatterns,
	})
	if err != nil {
		debug.Live("websocket accept failed: %v", err)
		return
	}
	defer c.CloseNow()

	id, ch, unsub := h.deps.Footprints.Subscribe()
	defer unsub()
	debug.Live("websocket client %s connected", id)

	// Clients only listen; CloseRead handles their control frames.
	ctx := c.CloseRead(r.Context())

	if latest, ok := h.deps.Footprints.Latest(); ok {
		if err := writeFrame(ctx, c, latest); err != nil {
			return
		}
	}
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := writeFrame(ctx, c, msg); err != nil {
				debug.Live("websocket client %s: %v", id, err)
				return
			}
		case <-ctx.Done():
			debug.Live("websocket client %s disconnected", id)
			c.Close(websocket.StatusNormalClosure, "")
			return
		}
	}
}

func isWebSocketUpgrade(r *http.Request) bool {
	for _, v := range r.Header.Values("Upgrade") {
		for _, tok := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(tok), "websocket") {
				return true
			}
		}
	}
	return false
}

func writeFrame(ctx context.Context, c *websocket.Conn, msg string) error {
	ctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return c.Write(ctx, websocket.MessageText, []byte(msg))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
