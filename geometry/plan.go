package geometry

import (
	"image"
	"math"

	"github.com/trstruth/gestalt/layout"
)

// Plan holds everything a renderer needs to draw a set of placements.
//
// Scale is the spacing between tile anchors in the tight crop and TileSize is
// the side of each drawn tile. They are independent: a tile larger than its
// spacing overlaps its neighbours, a smaller one leaves gaps.
type Plan struct {
	Box      Box
	Scale    float64
	TileSize float64
	MosaicW  float64
	MosaicH  float64
	Fit      Fit
}

// NewPlan measures placements and fits them into preset with marginRatio.
func NewPlan(placements []layout.Placement, scale, tileSize float64, preset Preset, marginRatio float64) (*Plan, error) {
	if !(tileSize > 0) || math.IsInf(tileSize, 1) {
		return nil, &InvalidScaleError{Scale: tileSize}
	}

	box, err := BoundingBox(placements)
	if err != nil {
		return nil, err
	}

	w, h, err := MosaicSize(box, scale)
	if err != nil {
		return nil, err
	}

	fit, err := FitToCanvas(w, h, float64(preset.Width), float64(preset.Height), marginRatio)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Box:      box,
		Scale:    scale,
		TileSize: tileSize,
		MosaicW:  w,
		MosaicH:  h,
		Fit:      fit,
	}, nil
}

// Anchor is the top-left corner of p's tile in the tight crop.
func (pl *Plan) Anchor(p layout.Placement) (float64, float64) {
	return float64(p.X-pl.Box.MinX) * pl.Scale, float64(p.Y-pl.Box.MinY) * pl.Scale
}

// TileRect is the canvas rectangle p's tile is drawn into, rounded to pixels.
func (pl *Plan) TileRect(p layout.Placement) image.Rectangle {
	x, y := pl.Fit.Apply(pl.Anchor(p))
	side := pl.TileSize * pl.Fit.Scale

	x0, y0 := int(math.Round(x)), int(math.Round(y))
	x1, y1 := int(math.Round(x+side)), int(math.Round(y+side))
	return image.Rect(x0, y0, max(x1, x0+1), max(y1, y0+1))
}

// Canvas is the output surface size in whole pixels.
func (pl *Plan) Canvas() image.Rectangle {
	return image.Rect(0, 0, whole(pl.Fit.CanvasW), whole(pl.Fit.CanvasH))
}

// whole rounds up, ignoring float noise below a millionth of a pixel.
func whole(v float64) int {
	return int(math.Ceil(v - 1e-6))
}
