package mosaic

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trstruth/gestalt/layout"
	"github.com/trstruth/gestalt/palette"
	"github.com/trstruth/gestalt/parallel"
)

func writeImage(t *testing.T, name string, w, h int, at func(x, y int) color.Color) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, at(x, y))
		}
	}
	f, err := os.Create(name)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
}

func fill(c color.Color) func(int, int) color.Color {
	return func(int, int) color.Color { return c }
}

type fixture struct {
	dir     string
	emojis  string
	palette string
	source  string
}

func newFixture(t *testing.T, pool *parallel.Pool, logger *slog.Logger) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:     dir,
		emojis:  filepath.Join(dir, "emojis"),
		palette: filepath.Join(dir, "emoji_metadata.json"),
		source:  filepath.Join(dir, "source.png"),
	}
	require.NoError(t, os.Mkdir(f.emojis, 0o755))

	writeImage(t, filepath.Join(f.emojis, "red.png"), 8, 8, fill(color.NRGBA{R: 0xFF, A: 0xFF}))
	writeImage(t, filepath.Join(f.emojis, "blue.png"), 8, 8, func(x, y int) color.Color {
		if x < 2 {
			return color.NRGBA{}
		}
		return color.NRGBA{B: 0xFF, A: 0xFF}
	})
	require.NoError(t, os.WriteFile(filepath.Join(f.emojis, "notes.txt"), []byte("ignored"), 0o644))

	// Left half red, right half blue, top row transparent.
	writeImage(t, f.source, 4, 3, func(x, y int) color.Color {
		switch {
		case y == 0:
			return color.NRGBA{}
		case x < 2:
			return color.NRGBA{R: 0xEE, G: 0x10, A: 0xFF}
		default:
			return color.NRGBA{G: 0x10, B: 0xDD, A: 0xFF}
		}
	})

	build := palette.BuildCmd{Emojis: f.emojis, Out: f.palette}
	require.NoError(t, build.Run(logger, pool))
	return f
}

func TestGenerateEndToEnd(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pool := parallel.Start(2)
	defer pool.Close()

	f := newFixture(t, pool, logger)

	entries, err := palette.LoadFile(f.palette)
	require.NoError(t, err)
	assert.Equal(t, []palette.Entry{
		{ID: "blue", AverageRGB: palette.RGB{B: 0xFF}},
		{ID: "red", AverageRGB: palette.RGB{R: 0xFF}},
	}, entries)

	preset := "1080p"
	scale := 10.0
	cmd := CLICmd{
		Source:      f.source,
		Palette:     f.palette,
		Emojis:      f.emojis,
		Out:         filepath.Join(f.dir, "mosaic.png"),
		Layout:      filepath.Join(f.dir, "layout.json"),
		OptionFlags: OptionFlags{Preset: &preset, Scale: &scale},
	}
	require.NoError(t, cmd.Validate(nil))
	assert.Equal(t, 10.0, cmd.Options.RenderScale)
	assert.Equal(t, 20.0, cmd.Options.TileSize)
	require.NoError(t, cmd.Run(context.Background(), logger, pool))

	raw, err := os.ReadFile(cmd.Layout)
	require.NoError(t, err)
	var placements []layout.Placement
	require.NoError(t, json.Unmarshal(raw, &placements))
	assert.Equal(t, []layout.Placement{
		{ImageID: "red", X: 0, Y: 1}, {ImageID: "red", X: 1, Y: 1},
		{ImageID: "blue", X: 2, Y: 1}, {ImageID: "blue", X: 3, Y: 1},
		{ImageID: "red", X: 0, Y: 2}, {ImageID: "red", X: 1, Y: 2},
		{ImageID: "blue", X: 2, Y: 2}, {ImageID: "blue", X: 3, Y: 2},
	}, placements)

	out, err := os.Open(cmd.Out)
	require.NoError(t, err)
	defer out.Close()
	img, err := png.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1920, 1080), img.Bounds())

	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, [3]uint32{0xFFFF, 0xFFFF, 0xFFFF}, [3]uint32{r, g, b})
}

func TestValidateLayersConfigAndFlags(t *testing.T) {
	dir := t.TempDir()
	conf := filepath.Join(dir, "gestalt.toml")
	require.NoError(t, os.WriteFile(conf, []byte("sample_step = 3\ntile_size = 8\n"), 0o644))

	tile := 12.0
	cmd := CLICmd{Out: "mosaic.png", OptionFlags: OptionFlags{Config: conf, TileSize: &tile}}
	require.NoError(t, cmd.Validate(nil))
	assert.Equal(t, 3, cmd.Options.SampleStep)
	assert.Equal(t, 12.0, cmd.Options.TileSize)
	assert.Equal(t, 23.0, cmd.Options.RenderScale)
}

func TestValidateRejects(t *testing.T) {
	margin := 0.6
	cmd := CLICmd{Out: "mosaic.png", OptionFlags: OptionFlags{Margin: &margin}}
	require.Error(t, cmd.Validate(nil))

	cmd = CLICmd{Out: "mosaic.webp"}
	require.Error(t, cmd.Validate(nil))
}

func TestGenerateFailsOnMissingTile(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pool := parallel.Start(1)
	defer pool.Close()

	f := newFixture(t, pool, logger)
	require.NoError(t, os.Remove(filepath.Join(f.emojis, "blue.png")))

	cmd := CLICmd{
		Source:  f.source,
		Palette: f.palette,
		Emojis:  f.emojis,
		Out:     filepath.Join(f.dir, "mosaic.png"),
	}
	require.NoError(t, cmd.Validate(nil))
	require.ErrorContains(t, cmd.Run(context.Background(), logger, pool), "blue")

	_, err := os.Stat(cmd.Out)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRenderLayout(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pool := parallel.Start(2)
	defer pool.Close()

	f := newFixture(t, pool, logger)
	layoutFile := filepath.Join(f.dir, "layout.json")
	require.NoError(t, os.WriteFile(layoutFile,
		[]byte(`[{"image_id":"red","x":0,"y":0},{"image_id":"blue","x":1,"y":0}]`), 0o644))

	scale := 8.0
	tile := 8.0
	cmd := RenderCmd{
		Layout:      layoutFile,
		Palette:     f.palette,
		Emojis:      f.emojis,
		Out:         filepath.Join(f.dir, "render.png"),
		OptionFlags: OptionFlags{Scale: &scale, TileSize: &tile},
	}
	require.NoError(t, cmd.Validate(nil))
	require.NoError(t, cmd.Run(context.Background(), logger, pool))

	out, err := os.Open(cmd.Out)
	require.NoError(t, err)
	defer out.Close()
	img, err := png.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())

	r, g, b, _ := img.At(3, 3).RGBA()
	assert.Equal(t, [3]uint32{0xFFFF, 0, 0}, [3]uint32{r, g, b})
	r, g, b, _ = img.At(12, 3).RGBA()
	assert.Equal(t, [3]uint32{0, 0, 0xFFFF}, [3]uint32{r, g, b})
}

func TestRenderRejectsUnknownIDs(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pool := parallel.Start(1)
	defer pool.Close()

	f := newFixture(t, pool, logger)
	layoutFile := filepath.Join(f.dir, "layout.json")
	require.NoError(t, os.WriteFile(layoutFile,
		[]byte(`[{"image_id":"red","x":0,"y":0},{"image_id":"green","x":1,"y":0}]`), 0o644))

	cmd := RenderCmd{
		Layout:  layoutFile,
		Palette: f.palette,
		Emojis:  f.emojis,
		Out:     filepath.Join(f.dir, "render.png"),
	}
	require.NoError(t, cmd.Validate(nil))
	require.ErrorContains(t, cmd.Run(context.Background(), logger, pool), `unknown image id "green"`)

	_, err := os.Stat(cmd.Out)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
