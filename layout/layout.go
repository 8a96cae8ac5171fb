// Package layout assigns a palette entry to every sampled pixel of a source
// image.
package layout

import (
	"errors"

	"github.com/trstruth/gestalt/palette"
	"github.com/trstruth/gestalt/parallel"
)

var ErrNoIndex = errors.New("color index has not been built")

// Pixel is one sample of the source image, in source pixel coordinates.
type Pixel struct {
	X   int         `json:"x"`
	Y   int         `json:"y"`
	RGB palette.RGB `json:"rgb"`
}

// Placement is the palette entry chosen for the pixel at (X, Y).
type Placement struct {
	ImageID string `json:"image_id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

// Matcher resolves a color to a palette id. *palette.Index implements it.
type Matcher interface {
	Nearest(palette.RGB) string
}

// minChunk keeps parallel chunks large enough to outweigh scheduling.
const minChunk = 1024

// Generate returns one placement per pixel, in input order.
func Generate(pixels []Pixel, index Matcher) ([]Placement, error) {
	if isNil(index) {
		return nil, ErrNoIndex
	}

	out := make([]Placement, len(pixels))
	fill(out, pixels, index)
	return out, nil
}

// GenerateParallel is Generate with the pixels partitioned across pool.
// Each chunk writes straight into its own slots of the result, so the output
// is identical to Generate's.
func GenerateParallel(pixels []Pixel, index Matcher, pool *parallel.Pool) ([]Placement, error) {
	if isNil(index) {
		return nil, ErrNoIndex
	}
	if pool == nil || pool.Workers() < 2 || len(pixels) < 2*minChunk {
		return Generate(pixels, index)
	}

	out := make([]Placement, len(pixels))
	batch := pool.Batch()
	for _, c := range parallel.Chunks(len(pixels), pool.Workers()*4, minChunk) {
		batch.Go(func() {
			fill(out[c[0]:c[1]], pixels[c[0]:c[1]], index)
		})
	}
	batch.Wait()
	return out, nil
}

func fill(out []Placement, pixels []Pixel, index Matcher) {
	for i, p := range pixels {
		out[i] = Placement{
			ImageID: index.Nearest(p.RGB),
			X:       p.X,
			Y:       p.Y,
		}
	}
}

// isNil reports whether index is missing or a palette.Index that was never
// built.
func isNil(index Matcher) bool {
	if index == nil {
		return true
	}
	idx, ok := index.(*palette.Index)
	return ok && idx.Len() == 0
}
