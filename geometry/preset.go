package geometry

import (
	"fmt"
	"slices"
	"strings"
)

// Preset is a named output canvas. The zero size means the tight crop.
type Preset struct {
	Name          string
	Width, Height int
}

func (p Preset) Fixed() bool {
	return p.Width > 0 && p.Height > 0
}

const Original = "original"

var presets = []Preset{
	{Name: Original},
	{Name: "1080p", Width: 1920, Height: 1080},
	{Name: "1440p", Width: 2560, Height: 1440},
	{Name: "4k", Width: 3840, Height: 2160},
	{Name: "square", Width: 2048, Height: 2048},
	{Name: "portrait", Width: 1080, Height: 1920},
}

// LookupPreset finds a preset by case-insensitive name.
func LookupPreset(name string) (Preset, error) {
	if name == "" {
		name = Original
	}
	i := slices.IndexFunc(presets, func(p Preset) bool {
		return strings.EqualFold(p.Name, name)
	})
	if i < 0 {
		return Preset{}, fmt.Errorf("unknown canvas preset %q (want one of %s)", name, strings.Join(PresetNames(), ", "))
	}
	return presets[i], nil
}

func PresetNames() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}
