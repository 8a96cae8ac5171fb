package geometry

import (
	"errors"
	"fmt"
)

var ErrEmptyPlacements = errors.New("no placements to measure")

type InvalidScaleError struct {
	Scale float64
}

func (e *InvalidScaleError) Error() string {
	return fmt.Sprintf("scale must be positive, got %v", e.Scale)
}

type InvalidMarginError struct {
	Margin float64
}

func (e *InvalidMarginError) Error() string {
	return fmt.Sprintf("margin ratio must be in [0, 0.5), got %v", e.Margin)
}

// InvalidSizeError reports a mosaic or canvas dimension that cannot be fitted.
type InvalidSizeError struct {
	What          string
	Width, Height float64
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("invalid %s size %vx%v", e.What, e.Width, e.Height)
}
