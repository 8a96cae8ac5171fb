package palette

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
)

// RGB is an opaque 8-bit color. It encodes to JSON as a [r, g, b] array.
type RGB struct {
	R, G, B uint8
}

func (c RGB) RGBA() (uint32, uint32, uint32, uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}.RGBA()
}

func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c RGB) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]uint8{c.R, c.G, c.B})
}

// UnmarshalJSON accepts any numbers in [0, 255], rounding fractional channels
// the way averaged metadata is sometimes stored.
func (c *RGB) UnmarshalJSON(b []byte) error {
	var ch []float64
	if err := json.Unmarshal(b, &ch); err != nil {
		return fmt.Errorf("rgb must be an array of 3 numbers: %w", err)
	}
	if len(ch) != 3 {
		return fmt.Errorf("rgb must have 3 channels, got %d", len(ch))
	}

	var out [3]uint8
	for i, v := range ch {
		if math.IsNaN(v) || v < 0 || v > 255 {
			return fmt.Errorf("rgb channel %d out of range [0,255]: %v", i, v)
		}
		out[i] = uint8(math.Round(v))
	}
	c.R, c.G, c.B = out[0], out[1], out[2]
	return nil
}

// Entry is one emoji of the palette together with its precomputed average color.
type Entry struct {
	ID         string `json:"image_id"`
	AverageRGB RGB    `json:"average_rgb"`
}
