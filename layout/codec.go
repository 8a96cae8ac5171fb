package layout

import (
	"encoding/json"
	"fmt"
	"io"
)

// ReadPixels decodes a JSON array of {"x", "y", "rgb": [r, g, b]} records.
func ReadPixels(r io.Reader) ([]Pixel, error) {
	var pixels []Pixel
	if err := json.NewDecoder(r).Decode(&pixels); err != nil {
		return nil, fmt.Errorf("could not decode pixels: %w", err)
	}
	for i, p := range pixels {
		if p.X < 0 || p.Y < 0 {
			return nil, fmt.Errorf("pixel %d has negative position (%d, %d)", i, p.X, p.Y)
		}
	}
	return pixels, nil
}

// WritePlacements encodes placements as a JSON array of
// {"image_id", "x", "y"} records.
func WritePlacements(w io.Writer, placements []Placement) error {
	if placements == nil {
		placements = []Placement{}
	}
	if err := json.NewEncoder(w).Encode(placements); err != nil {
		return fmt.Errorf("could not encode placements: %w", err)
	}
	return nil
}

func ReadPlacements(r io.Reader) ([]Placement, error) {
	var placements []Placement
	if err := json.NewDecoder(r).Decode(&placements); err != nil {
		return nil, fmt.Errorf("could not decode placements: %w", err)
	}
	for i, p := range placements {
		if p.X < 0 || p.Y < 0 {
			return nil, fmt.Errorf("placement %d has negative position (%d, %d)", i, p.X, p.Y)
		}
	}
	return placements, nil
}
