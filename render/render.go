// Package render draws placements onto an image using the geometry computed
// by package geometry.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"slices"

	"golang.org/x/image/draw"

	"github.com/trstruth/gestalt/geometry"
	"github.com/trstruth/gestalt/layout"
)

// UniqueIDs returns the distinct image ids of placements, sorted.
func UniqueIDs(placements []layout.Placement) []string {
	ids := make([]string, 0, len(placements))
	seen := make(map[string]struct{})
	for _, p := range placements {
		if _, ok := seen[p.ImageID]; !ok {
			seen[p.ImageID] = struct{}{}
			ids = append(ids, p.ImageID)
		}
	}
	slices.Sort(ids)
	return ids
}

type scaledKey struct {
	id   string
	size image.Point
}

// Draw fills dst with background and draws every placement's tile in input
// order, later tiles over earlier ones. Tiles are scaled without smoothing.
func Draw(ctx context.Context, dst draw.Image, plan *geometry.Plan, placements []layout.Placement, tiles TileSource, background color.Color) error {
	if background != nil {
		draw.Draw(dst, dst.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	}

	scaled := make(map[scaledKey]image.Image)
	for i, p := range placements {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		r := plan.TileRect(p)
		if !r.Overlaps(dst.Bounds()) {
			continue
		}

		key := scaledKey{id: p.ImageID, size: r.Size()}
		tile, ok := scaled[key]
		if !ok {
			src, err := tiles.Tile(p.ImageID)
			if err != nil {
				return fmt.Errorf("placement #%d: %w", i, err)
			}
			img := image.NewNRGBA(image.Rectangle{Max: key.size})
			draw.NearestNeighbor.Scale(img, img.Bounds(), src, src.Bounds(), draw.Src, nil)
			scaled[key] = img
			tile = img
		}

		draw.Draw(dst, r, tile, image.Point{}, draw.Over)
	}
	return nil
}

// Render allocates the canvas described by plan and draws onto it.
func Render(ctx context.Context, plan *geometry.Plan, placements []layout.Placement, tiles TileSource, background color.Color) (*image.NRGBA, error) {
	canvas := image.NewNRGBA(plan.Canvas())
	if err := Draw(ctx, canvas, plan, placements, tiles, background); err != nil {
		return nil, err
	}
	return canvas, nil
}
