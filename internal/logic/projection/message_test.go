package projection

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjeanneret/FootprintGo/internal/logic/geodesy"
	"github.com/cjeanneret/FootprintGo/internal/logic/geometry"
)

func TestNewMessage_Feasible(t *testing.T) {
	in := Input{Position: geodesy.Position{Lat: 59, Lon: 18, Alt: 50}, Drone: geometry.Orientation{Yaw: 0.3}}
	res := Result{
		Status:  StatusFeasible,
		Corners: [4]geodesy.Position{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}, {Lat: 5, Lon: 6}, {Lat: 7, Lon: 8}},
		Offsets: [4]Offset{{X: 0.1}, {}, {}, {Y: 0.2}},
		Frame:   FrameSize{W: 0.9, H: 0.8},
	}
	m := NewMessage(in, res)
	assert.True(t, m.HasProjection)
	assert.Equal(t, 0.3, m.Yaw)
	require.NotNil(t, m.Corner2)
	assert.Equal(t, CornerMessage{Lat: 5, Lon: 6}, *m.Corner2)
	assert.Equal(t, 0.1, m.Corner0.Offset.X)
	assert.Equal(t, 0.2, m.Corner3.Offset.Y)
	assert.Empty(t, m.Reason)

	data, err := m.Encode()
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, true, raw["has_projection"])
	assert.Equal(t, map[string]interface{}{"w": 0.9, "h": 0.8}, raw["frame_size"])
	assert.Contains(t, raw, "corner3")
	assert.NotContains(t, raw, "reason")
}

func TestNewMessage_Infeasible(t *testing.T) {
	in := Input{Position: geodesy.Position{Lat: 59, Lon: 18}}
	m := NewMessage(in, infeasible(ReasonAllAboveCeiling, 0))
	assert.False(t, m.HasProjection)
	assert.Nil(t, m.Corner0)
	assert.Nil(t, m.FrameSize)
	assert.Equal(t, "all_above_ceiling", m.Reason)

	data, err := m.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"yaw":0,"lat":59,"lon":18,"has_projection":false,"reason":"all_above_ceiling"}`, string(data))
}

func TestFaultMessage(t *testing.T) {
	in := Input{Position: geodesy.Position{Lat: 1, Lon: 2}, Drone: geometry.Orientation{Yaw: -1}}
	m := FaultMessage(in, errors.New("boom"))
	assert.False(t, m.HasProjection)
	assert.Equal(t, "boom", m.Reason)
	assert.Equal(t, -1.0, m.Yaw)
	assert.Equal(t, 1.0, m.Lat)
}
