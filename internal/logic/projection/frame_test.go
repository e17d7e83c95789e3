package projection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cjeanneret/FootprintGo/internal/logic/geometry"
)

func TestCropOffsets_Unchanged(t *testing.T) {
	c := geometry.NewCorners(30*deg, 30*deg)
	off, err := CropOffsets(c, c)
	require.NoError(t, err)
	assert.Equal(t, [4]Offset{}, off)
	assert.Equal(t, FrameSize{W: 1, H: 1}, FrameSizeOf(off))
}

func TestCropOffsets_HalvedTangent(t *testing.T) {
	start := geometry.NewCorners(math.Pi/2, math.Pi/2) // tan of each half-angle is 1
	a := math.Atan(0.5)
	final := geometry.Corners{{H: a, V: a}, {H: -a, V: a}, {H: -a, V: -a}, {H: a, V: -a}}

	off, err := CropOffsets(start, final)
	require.NoError(t, err)
	for i, o := range off {
		assert.InDelta(t, 0.25, o.X, 1e-12, "corner %d", i)
		assert.InDelta(t, 0.25, o.Y, 1e-12, "corner %d", i)
	}
	fs := FrameSizeOf(off)
	assert.InDelta(t, 0.5, fs.W, 1e-12)
	assert.InDelta(t, 0.5, fs.H, 1e-12)
}

func TestCropOffsets_OneSide(t *testing.T) {
	start := geometry.NewCorners(math.Pi/2, math.Pi/2)
	final := start
	final[0].V, final[1].V = 0, 0 // top edge pulled down to the axis

	off, err := CropOffsets(start, final)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, off[0].Y, 1e-12)
	assert.InDelta(t, 0.5, off[1].Y, 1e-12)
	assert.Zero(t, off[2].Y)
	fs := FrameSizeOf(off)
	assert.InDelta(t, 1, fs.W, 1e-12)
	assert.InDelta(t, 0.5, fs.H, 1e-12)
}

func TestCropOffsets_Degenerate(t *testing.T) {
	start := geometry.NewCorners(0, 30*deg)
	_, err := CropOffsets(start, start)
	assert.ErrorIs(t, err, ErrDegenerateFOV)
}
