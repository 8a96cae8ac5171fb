package palette

import (
	"errors"
	"image"
	"image/color"
)

var ErrTransparent = errors.New("image has no visible pixels")

// Average returns the alpha-weighted mean color of img. Fully transparent
// pixels do not contribute, so an emoji's empty background does not wash out
// its color.
func Average(img image.Image) (RGB, error) {
	bounds := img.Bounds()

	var rSum, gSum, bSum, aSum uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			a := uint64(c.A)
			rSum += uint64(c.R) * a
			gSum += uint64(c.G) * a
			bSum += uint64(c.B) * a
			aSum += a
		}
	}

	if aSum == 0 {
		return RGB{}, ErrTransparent
	}

	return RGB{
		R: uint8((rSum + aSum/2) / aSum),
		G: uint8((gSum + aSum/2) / aSum),
		B: uint8((bSum + aSum/2) / aSum),
	}, nil
}
