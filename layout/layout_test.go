package layout

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trstruth/gestalt/palette"
	"github.com/trstruth/gestalt/parallel"
)

func testIndex(t testing.TB) *palette.Index {
	t.Helper()
	idx, err := palette.Build([]palette.Entry{
		{ID: "red", AverageRGB: palette.RGB{R: 255}},
		{ID: "green", AverageRGB: palette.RGB{G: 255}},
		{ID: "blue", AverageRGB: palette.RGB{B: 255}},
		{ID: "white", AverageRGB: palette.RGB{R: 255, G: 255, B: 255}},
	})
	require.NoError(t, err)
	return idx
}

func TestGenerate(t *testing.T) {
	pixels := []Pixel{
		{X: 5, Y: 1, RGB: palette.RGB{R: 200, B: 50}},
		{X: 0, Y: 0, RGB: palette.RGB{R: 240, G: 250, B: 245}},
		{X: 2, Y: 3, RGB: palette.RGB{G: 180}},
		{X: 2, Y: 8, RGB: palette.RGB{B: 99}},
	}

	got, err := Generate(pixels, testIndex(t))
	require.NoError(t, err)
	assert.Equal(t, []Placement{
		{ImageID: "red", X: 5, Y: 1},
		{ImageID: "white", X: 0, Y: 0},
		{ImageID: "green", X: 2, Y: 3},
		{ImageID: "blue", X: 2, Y: 8},
	}, got)
}

func TestGenerateEmpty(t *testing.T) {
	got, err := Generate(nil, testIndex(t))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGenerateWithoutIndex(t *testing.T) {
	pixels := []Pixel{{X: 1, Y: 1}}

	_, err := Generate(pixels, nil)
	require.ErrorIs(t, err, ErrNoIndex)

	var idx *palette.Index
	_, err = Generate(pixels, idx)
	require.ErrorIs(t, err, ErrNoIndex)

	_, err = GenerateParallel(pixels, idx, nil)
	require.ErrorIs(t, err, ErrNoIndex)

	_, err = Generate(pixels, &palette.Index{})
	require.ErrorIs(t, err, ErrNoIndex)
	_, err = GenerateParallel(pixels, &palette.Index{}, nil)
	require.ErrorIs(t, err, ErrNoIndex)
}

func TestGenerateParallelMatchesSequential(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 13))
	entries := make([]palette.Entry, 200)
	for i := range entries {
		entries[i] = palette.Entry{
			ID:         fmt.Sprintf("emoji-%03d", i),
			AverageRGB: palette.RGB{R: uint8(r.IntN(256)), G: uint8(r.IntN(256)), B: uint8(r.IntN(256))},
		}
	}
	idx, err := palette.Build(entries)
	require.NoError(t, err)

	// Unsorted coordinates: the generator must not reorder.
	pixels := make([]Pixel, 10*minChunk+17)
	for i := range pixels {
		pixels[i] = Pixel{
			X:   r.IntN(500),
			Y:   r.IntN(500),
			RGB: palette.RGB{R: uint8(r.IntN(256)), G: uint8(r.IntN(256)), B: uint8(r.IntN(256))},
		}
	}

	want, err := Generate(pixels, idx)
	require.NoError(t, err)
	require.Len(t, want, len(pixels))

	for _, workers := range []int{1, 3, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			pool := parallel.Start(workers)
			defer pool.Close()

			got, err := GenerateParallel(pixels, idx, pool)
			require.NoError(t, err)
			require.Equal(t, want, got)

			for i, p := range pixels {
				require.Equal(t, p.X, got[i].X)
				require.Equal(t, p.Y, got[i].Y)
			}
		})
	}
}

func TestPlacementsJSON(t *testing.T) {
	pixels, err := ReadPixels(strings.NewReader(`[{"x":3,"y":4,"rgb":[250,10,0]},{"x":0,"y":1,"rgb":[1,2,254.6]}]`))
	require.NoError(t, err)
	require.Len(t, pixels, 2)
	assert.Equal(t, palette.RGB{R: 1, G: 2, B: 255}, pixels[1].RGB)

	placements, err := Generate(pixels, testIndex(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePlacements(&buf, placements))
	assert.JSONEq(t, `[{"image_id":"red","x":3,"y":4},{"image_id":"blue","x":0,"y":1}]`, buf.String())

	back, err := ReadPlacements(&buf)
	require.NoError(t, err)
	assert.Equal(t, placements, back)
}

func TestReadPixelsRejectsOutOfRange(t *testing.T) {
	_, err := ReadPixels(strings.NewReader(`[{"x":0,"y":0,"rgb":[256,0,0]}]`))
	require.Error(t, err)

	_, err = ReadPixels(strings.NewReader(`[{"x":-1,"y":0,"rgb":[1,2,3]}]`))
	require.ErrorContains(t, err, "pixel 0")
	_, err = ReadPixels(strings.NewReader(`[{"x":0,"y":0,"rgb":[1,2,3]},{"x":4,"y":-2,"rgb":[1,2,3]}]`))
	require.ErrorContains(t, err, "pixel 1")
	_, err = ReadPlacements(strings.NewReader(`[{"image_id":"a","x":0,"y":-1}]`))
	require.Error(t, err)

	_, err = ReadPixels(strings.NewReader(`[{"x":0,"y":0,"rgb":[-1,0,0]}]`))
	require.Error(t, err)
}
