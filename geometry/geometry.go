// Package geometry turns placements into drawing coordinates: the tight crop
// around every placement, its size at a given spacing, and the uniform scale
// and centering needed to fit it into a fixed canvas.
package geometry

import (
	"math"

	"github.com/trstruth/gestalt/layout"
)

// Box is the inclusive bounding box of a set of placements.
type Box struct {
	MinX, MaxX int
	MinY, MaxY int
}

func (b Box) Width() int {
	return b.MaxX - b.MinX + 1
}

func (b Box) Height() int {
	return b.MaxY - b.MinY + 1
}

func BoundingBox(placements []layout.Placement) (Box, error) {
	if len(placements) == 0 {
		return Box{}, ErrEmptyPlacements
	}

	b := Box{
		MinX: placements[0].X, MaxX: placements[0].X,
		MinY: placements[0].Y, MaxY: placements[0].Y,
	}
	for _, p := range placements[1:] {
		b.MinX = min(b.MinX, p.X)
		b.MaxX = max(b.MaxX, p.X)
		b.MinY = min(b.MinY, p.Y)
		b.MaxY = max(b.MaxY, p.Y)
	}
	return b, nil
}

// MosaicSize is the tight-crop surface size when anchors are scale pixels apart.
func MosaicSize(box Box, scale float64) (width, height float64, err error) {
	if !(scale > 0) || math.IsInf(scale, 1) {
		return 0, 0, &InvalidScaleError{Scale: scale}
	}
	return float64(box.Width()) * scale, float64(box.Height()) * scale, nil
}

// Fit places a mosaic inside a canvas: canvas = mosaic*Scale + 2*offset.
type Fit struct {
	Scale            float64
	OffsetX, OffsetY float64
	CanvasW, CanvasH float64
}

// Apply maps a tight-crop coordinate into the canvas.
func (f Fit) Apply(x, y float64) (float64, float64) {
	return x*f.Scale + f.OffsetX, y*f.Scale + f.OffsetY
}

// FitToCanvas computes the largest uniform scale that keeps the mosaic inside
// the canvas minus marginRatio on every side, and centers it. A zero canvas
// means no fixed size: the canvas is the mosaic itself at scale 1.
func FitToCanvas(mosaicW, mosaicH, canvasW, canvasH, marginRatio float64) (Fit, error) {
	if math.IsNaN(marginRatio) || marginRatio < 0 || marginRatio >= 0.5 {
		return Fit{}, &InvalidMarginError{Margin: marginRatio}
	}
	if !(mosaicW > 0) || !(mosaicH > 0) || math.IsInf(mosaicW, 1) || math.IsInf(mosaicH, 1) {
		return Fit{}, &InvalidSizeError{What: "mosaic", Width: mosaicW, Height: mosaicH}
	}

	if canvasW == 0 && canvasH == 0 {
		return Fit{Scale: 1, CanvasW: mosaicW, CanvasH: mosaicH}, nil
	}
	if !(canvasW > 0) || !(canvasH > 0) || math.IsInf(canvasW, 1) || math.IsInf(canvasH, 1) {
		return Fit{}, &InvalidSizeError{What: "canvas", Width: canvasW, Height: canvasH}
	}

	safeW := canvasW * (1 - 2*marginRatio)
	safeH := canvasH * (1 - 2*marginRatio)
	scale := min(safeW/mosaicW, safeH/mosaicH)

	return Fit{
		Scale:   scale,
		OffsetX: (canvasW - mosaicW*scale) / 2,
		OffsetY: (canvasH - mosaicH*scale) / 2,
		CanvasW: canvasW,
		CanvasH: canvasH,
	}, nil
}
