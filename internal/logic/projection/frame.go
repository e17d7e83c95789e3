package projection

import (
	"fmt"
	"math"

	"github.com/cjeanneret/FootprintGo/internal/logic/geometry"
)

// Offset is the fraction of the image cropped at one corner, per axis.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FrameSize is the fraction of the image width and height that is kept.
type FrameSize struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// CropOffsets compares the tangents of the starting and corrected half-angles.
// Per axis the crop is |tan(orig) - tan(final)| / (2·|tan(orig)|).
func CropOffsets(start, final geometry.Corners) ([4]Offset, error) {
	var out [4]Offset
	for i := range start {
		x, err := cropFraction(start[i].H, final[i].H)
		if err != nil {
			return out, fmt.Errorf("corner %d horizontal: %w", i, err)
		}
		y, err := cropFraction(start[i].V, final[i].V)
		if err != nil {
			return out, fmt.Errorf("corner %d vertical: %w", i, err)
		}
		out[i] = Offset{X: x, Y: y}
	}
	return out, nil
}

func cropFraction(orig, final float64) (float64, error) {
	t := math.Tan(orig)
	if t == 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, ErrDegenerateFOV
	}
	return math.Abs(t-math.Tan(final)) / (2 * math.Abs(t)), nil
}

// FrameSizeOf derives the kept width from the left and right crops (corners 1
// and 0) and the kept height from the bottom and top crops (corners 3 and 0).
func FrameSizeOf(off [4]Offset) FrameSize {
	return FrameSize{
		W: 1 - off[1].X - off[0].X,
		H: 1 - off[3].Y - off[0].Y,
	}
}
