// Package sampler reads the colors a mosaic is built from out of a source
// image.
package sampler

import (
	"fmt"
	"image"
	"image/color"

	"github.com/trstruth/gestalt/layout"
	"github.com/trstruth/gestalt/palette"
)

// Sample visits every step-th column of every step-th row, starting at the
// image origin, and returns the non-transparent pixels in row-major order.
// Coordinates are relative to the image bounds, so the first pixel is (0, 0).
func Sample(img image.Image, step int) ([]layout.Pixel, error) {
	if step < 1 {
		return nil, fmt.Errorf("invalid sample step: %d", step)
	}

	b := img.Bounds()
	pixels := make([]layout.Pixel, 0, ((b.Dx()+step-1)/step)*((b.Dy()+step-1)/step))
	for y := 0; y < b.Dy(); y += step {
		for x := 0; x < b.Dx(); x += step {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			pixels = append(pixels, layout.Pixel{
				X:   x,
				Y:   y,
				RGB: palette.RGB{R: c.R, G: c.G, B: c.B},
			})
		}
	}
	return pixels, nil
}
