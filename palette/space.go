package palette

import (
	"fmt"

	"github.com/trstruth/gestalt/okcolor"
)

// Space selects the coordinates colors are compared in.
type Space string

const (
	// SpaceRGB compares raw 8-bit channels, so distances are exact integers.
	SpaceRGB Space = "rgb"
	// SpaceOKLab compares perceptual OKLab coordinates.
	SpaceOKLab Space = "oklab"
)

func ParseSpace(s string) (Space, error) {
	switch Space(s) {
	case "", SpaceRGB:
		return SpaceRGB, nil
	case SpaceOKLab:
		return SpaceOKLab, nil
	}
	return "", fmt.Errorf("unsupported color space: %q", s)
}

type point [3]float64

func (s Space) point(c RGB) point {
	if s == SpaceOKLab {
		lc := okcolor.FromSRGB8(c.R, c.G, c.B)
		return point{lc.L, lc.A, lc.B}
	}
	return point{float64(c.R), float64(c.G), float64(c.B)}
}

func (p point) dist(q point) float64 {
	d0 := p[0] - q[0]
	d1 := p[1] - q[1]
	d2 := p[2] - q[2]
	return d0*d0 + d1*d1 + d2*d2
}
