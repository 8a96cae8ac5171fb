// Package config holds the options that drive mosaic generation.
//
// Options are resolved in layers: Defaults, then a TOML file, then command
// line flags. Each layer is a Partial whose nil fields leave the value below
// untouched.
package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/trstruth/gestalt/geometry"
	"github.com/trstruth/gestalt/palette"
)

type Options struct {
	// SampleStep is the stride, in source pixels, between samples.
	SampleStep int `toml:"sample_step"`
	// RenderScale is the distance, in output pixels, between neighbouring tile anchors.
	RenderScale float64 `toml:"render_scale"`
	// TileSize is the side of every drawn tile in output pixels.
	TileSize float64 `toml:"tile_size"`
	// Background fills the canvas: #RGB, #RGBA, #RRGGBB or #RRGGBBAA.
	Background string `toml:"background"`
	// Preset names the output canvas; "original" keeps the tight crop.
	Preset string `toml:"preset"`
	// Margin is the share of each canvas side kept empty, in [0, 0.5).
	Margin float64 `toml:"margin"`
	// ColorSpace is "rgb" or "oklab".
	ColorSpace string `toml:"color_space"`
	// MaxSource downscales the source so its longer side fits; 0 disables.
	MaxSource int `toml:"max_source"`
}

func Defaults() Options {
	return Options{
		SampleStep:  1,
		RenderScale: 23,
		TileSize:    20,
		Background:  "#ffffff",
		Preset:      geometry.Original,
		Margin:      0.05,
		ColorSpace:  string(palette.SpaceRGB),
		MaxSource:   0,
	}
}

// Partial is a set of option overrides.
type Partial struct {
	SampleStep  *int     `toml:"sample_step"`
	RenderScale *float64 `toml:"render_scale"`
	TileSize    *float64 `toml:"tile_size"`
	Background  *string  `toml:"background"`
	Preset      *string  `toml:"preset"`
	Margin      *float64 `toml:"margin"`
	ColorSpace  *string  `toml:"color_space"`
	MaxSource   *int     `toml:"max_source"`
}

// Overlay returns o with every field set in p replaced.
func (o Options) Overlay(p Partial) Options {
	if p.SampleStep != nil {
		o.SampleStep = *p.SampleStep
	}
	if p.RenderScale != nil {
		o.RenderScale = *p.RenderScale
	}
	if p.TileSize != nil {
		o.TileSize = *p.TileSize
	}
	if p.Background != nil {
		o.Background = *p.Background
	}
	if p.Preset != nil {
		o.Preset = *p.Preset
	}
	if p.Margin != nil {
		o.Margin = *p.Margin
	}
	if p.ColorSpace != nil {
		o.ColorSpace = *p.ColorSpace
	}
	if p.MaxSource != nil {
		o.MaxSource = *p.MaxSource
	}
	return o
}

// Load reads a TOML options file. Keys absent from the file stay unset.
func Load(name string) (Partial, error) {
	var p Partial
	md, err := toml.DecodeFile(name, &p)
	if err != nil {
		return Partial{}, fmt.Errorf("could not read config %q: %w", name, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Partial{}, fmt.Errorf("unknown keys in config %q: %v", name, undecoded)
	}
	return p, nil
}

func (o Options) Validate() error {
	var errs []error
	if o.SampleStep < 1 {
		errs = append(errs, fmt.Errorf("invalid sample step: %d", o.SampleStep))
	}
	if !(o.RenderScale > 0) {
		errs = append(errs, fmt.Errorf("invalid render scale: %v", o.RenderScale))
	}
	if !(o.TileSize > 0) {
		errs = append(errs, fmt.Errorf("invalid tile size: %v", o.TileSize))
	}
	if !(o.Margin >= 0 && o.Margin < 0.5) {
		errs = append(errs, fmt.Errorf("invalid margin: %v", o.Margin))
	}
	if o.MaxSource < 0 {
		errs = append(errs, fmt.Errorf("invalid max source size: %d", o.MaxSource))
	}
	if _, err := ParseHexColor(o.Background); err != nil {
		errs = append(errs, err)
	}
	if _, err := geometry.LookupPreset(o.Preset); err != nil {
		errs = append(errs, err)
	}
	if _, err := palette.ParseSpace(o.ColorSpace); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
