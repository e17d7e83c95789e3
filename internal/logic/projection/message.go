package projection

import "encoding/json"

// CornerMessage is one footprint corner as sent to map clients.
type CornerMessage struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Offset Offset  `json:"offset"`
}

// Message is the live-update payload. Corners and frame size are omitted when
// HasProjection is false.
type Message struct {
	Yaw           float64        `json:"yaw"` // vehicle yaw (rad)
	Lat           float64        `json:"lat"`
	Lon           float64        `json:"lon"`
	HasProjection bool           `json:"has_projection"`
	Corner0       *CornerMessage `json:"corner0,omitempty"`
	Corner1       *CornerMessage `json:"corner1,omitempty"`
	Corner2       *CornerMessage `json:"corner2,omitempty"`
	Corner3       *CornerMessage `json:"corner3,omitempty"`
	FrameSize     *FrameSize     `json:"frame_size,omitempty"`
	Reason        string         `json:"reason,omitempty"`
}

// NewMessage builds the payload for in and its result.
func NewMessage(in Input, r Result) Message {
	m := Message{
		Yaw: in.Drone.Yaw,
		Lat: in.Position.Lat,
		Lon: in.Position.Lon,
	}
	if !r.Feasible() {
		m.Reason = r.Reason.String()
		return m
	}
	m.HasProjection = true
	slots := [4]**CornerMessage{&m.Corner0, &m.Corner1, &m.Corner2, &m.Corner3}
	for i, c := range r.Corners {
		*slots[i] = &CornerMessage{Lat: c.Lat, Lon: c.Lon, Offset: r.Offsets[i]}
	}
	fs := r.Frame
	m.FrameSize = &fs
	return m
}

// FaultMessage is the payload sent when the computation failed with an error.
func FaultMessage(in Input, err error) Message {
	return Message{
		Yaw:    in.Drone.Yaw,
		Lat:    in.Position.Lat,
		Lon:    in.Position.Lon,
		Reason: err.Error(),
	}
}

// Encode returns the JSON form of m.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}
