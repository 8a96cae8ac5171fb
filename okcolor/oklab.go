// based on:
// https://bottosson.github.io/posts/oklab/
// https://bottosson.github.io/posts/colorwrong/#what-can-we-do%3F

package okcolor

import "math"

// Lab is a color in the OKLab perceptual space.
type Lab struct {
	L float64 // perceived lightness
	A float64 // how green/red the color is
	B float64 // how blue/yellow the color is
}

// LinearRGB holds gamma-expanded sRGB channels in [0, 1].
type LinearRGB struct {
	R float64
	G float64
	B float64
}

// linear8 maps every 8-bit sRGB channel value to its linear intensity.
var linear8 [256]float64

func init() {
	for i := range linear8 {
		linear8[i] = toLinear(float64(i) / 255)
	}
}

// FromSRGB8 converts an 8-bit sRGB triplet to OKLab.
func FromSRGB8(r, g, b uint8) Lab {
	return LinearRGB{R: linear8[r], G: linear8[g], B: linear8[b]}.Lab()
}

func (lc LinearRGB) Lab() Lab {
	var l, m, s float64
	l = math.Cbrt(0.4122214708*lc.R + 0.5363325363*lc.G + 0.0514459929*lc.B)
	m = math.Cbrt(0.2119034982*lc.R + 0.6806995451*lc.G + 0.1073969566*lc.B)
	s = math.Cbrt(0.0883024619*lc.R + 0.2817188376*lc.G + 0.6299787005*lc.B)

	return Lab{
		L: 0.2104542553*l + 0.7936177850*m - 0.0040720468*s,
		A: 1.9779984951*l - 2.4285922050*m + 0.4505937099*s,
		B: 0.0259040371*l + 0.7827717662*m - 0.8086757660*s,
	}
}

func toLinear(x float64) float64 {
	if x >= 0.04045 {
		return math.Pow((x+0.055)/1.055, 2.4)
	} else {
		return x / 12.92
	}
}
