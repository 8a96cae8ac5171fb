package mosaic

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/trstruth/gestalt/config"
	"github.com/trstruth/gestalt/geometry"
	"github.com/trstruth/gestalt/layout"
	"github.com/trstruth/gestalt/palette"
	"github.com/trstruth/gestalt/parallel"
	"github.com/trstruth/gestalt/render"
	"github.com/trstruth/gestalt/sampler"
)

// OptionFlags are the mosaic options shared by the generate and render
// commands. Unset flags fall back to the config file, then to the defaults.
type OptionFlags struct {
	Config string `help:"TOML file with mosaic options; flags take precedence" type:"existingfile"`

	Step       *int     `help:"Sample every n-th source pixel (default 1)" group:"options"`
	Scale      *float64 `help:"Distance between tile anchors in output pixels (default 23)" group:"options"`
	TileSize   *float64 `help:"Side of each drawn tile in output pixels (default 20)" group:"options"`
	Background *string  `help:"Canvas color as #RGB, #RGBA, #RRGGBB or #RRGGBBAA (default #ffffff)" group:"options"`
	Preset     *string  `help:"Output canvas: original, 1080p, 1440p, 4k, square, portrait (default original)" group:"options"`
	Margin     *float64 `help:"Share of each canvas side left empty when fitting a preset (default 0.05)" group:"options"`
	Space      *string  `name:"color-space" help:"Color space to match in: rgb or oklab (default rgb)" group:"options"`
	MaxSource  *int     `help:"Downscale the source so its longer side is at most this many pixels" group:"options"`
}

func (f *OptionFlags) resolve(out string) (config.Options, error) {
	opts := config.Defaults()
	if f.Config != "" {
		file, err := config.Load(f.Config)
		if err != nil {
			return opts, err
		}
		opts = opts.Overlay(file)
	}
	opts = opts.Overlay(config.Partial{
		SampleStep:  f.Step,
		RenderScale: f.Scale,
		TileSize:    f.TileSize,
		Background:  f.Background,
		Preset:      f.Preset,
		Margin:      f.Margin,
		ColorSpace:  f.Space,
		MaxSource:   f.MaxSource,
	})
	if err := opts.Validate(); err != nil {
		return opts, err
	}

	if _, err := render.FormatFor(out); err != nil {
		return opts, err
	}
	return opts, nil
}

type CLICmd struct {
	Source  string `arg:"" help:"Source image" type:"existingfile"`
	Palette string `help:"Palette metadata file" default:"emoji_metadata.json" type:"existingfile"`
	Emojis  string `help:"Folder of emoji images, named <id>.<ext>" default:"emojis" type:"existingdir"`
	Out     string `help:"Destination image, encoded according to its extension (${formats})" short:"o" default:"mosaic.png"`
	Layout  string `help:"Also write the placements as JSON to this file"`

	OptionFlags `embed:""`

	Options config.Options `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	opts, err := c.resolve(c.Out)
	if err != nil {
		return err
	}
	c.Options = opts
	return nil
}

func (c *CLICmd) Run(ctx context.Context, logger *slog.Logger, pool *parallel.Pool) error {
	logger = logger.With("source", c.Source)
	logger.Debug("resolved options", "options", c.Options)

	index, err := loadIndex(logger, c.Palette, c.Options.ColorSpace)
	if err != nil {
		return err
	}

	img, err := decodeFile(c.Source)
	if err != nil {
		return err
	}
	img = sampler.Downscale(logger, img, c.Options.MaxSource)

	pixels, err := sampler.Sample(img, c.Options.SampleStep)
	if err != nil {
		return err
	}

	start := time.Now()
	placements, err := layout.GenerateParallel(pixels, index, pool)
	if err != nil {
		return err
	}
	logger.Info("generated layout", "placements", len(placements), "duration", time.Since(start))

	if c.Layout != "" {
		if err := writeLayout(c.Layout, placements); err != nil {
			return err
		}
	}

	return drawMosaic(ctx, logger, pool, c.Options, placements, c.Emojis, c.Out)
}

// RenderCmd draws a layout written by generate --layout.
type RenderCmd struct {
	Layout  string `arg:"" help:"Placement JSON file" type:"existingfile"`
	Palette string `help:"Palette metadata file the layout was generated from" default:"emoji_metadata.json" type:"existingfile"`
	Emojis  string `help:"Folder of emoji images, named <id>.<ext>" default:"emojis" type:"existingdir"`
	Out     string `help:"Destination image, encoded according to its extension (${formats})" short:"o" default:"mosaic.png"`

	OptionFlags `embed:""`

	Options config.Options `kong:"-"`
}

func (c *RenderCmd) Validate(kctx *kong.Context) error {
	opts, err := c.resolve(c.Out)
	if err != nil {
		return err
	}
	c.Options = opts
	return nil
}

func (c *RenderCmd) Run(ctx context.Context, logger *slog.Logger, pool *parallel.Pool) error {
	logger = logger.With("layout", c.Layout)

	index, err := loadIndex(logger, c.Palette, c.Options.ColorSpace)
	if err != nil {
		return err
	}
	placements, err := readLayout(c.Layout)
	if err != nil {
		return err
	}
	if err := checkPlacements(index, placements); err != nil {
		return fmt.Errorf("layout %q does not match palette %q: %w", c.Layout, c.Palette, err)
	}

	return drawMosaic(ctx, logger, pool, c.Options, placements, c.Emojis, c.Out)
}

func loadIndex(logger *slog.Logger, name, space string) (*palette.Index, error) {
	start := time.Now()
	entries, err := palette.LoadFile(name)
	if err != nil {
		return nil, err
	}
	index, err := palette.BuildSpace(entries, palette.Space(space))
	if err != nil {
		return nil, fmt.Errorf("could not index palette %q: %w", name, err)
	}
	logger.Info("indexed palette", "entries", index.Len(), "space", index.Space(), "duration", time.Since(start))
	return index, nil
}

// checkPlacements fails on the first placement whose id is not in the palette.
func checkPlacements(index *palette.Index, placements []layout.Placement) error {
	for _, id := range render.UniqueIDs(placements) {
		if !index.Has(id) {
			return fmt.Errorf("unknown image id %q", id)
		}
	}
	return nil
}

func drawMosaic(ctx context.Context, logger *slog.Logger, pool *parallel.Pool, opts config.Options, placements []layout.Placement, emojis, out string) error {
	preset, err := geometry.LookupPreset(opts.Preset)
	if err != nil {
		return err
	}
	plan, err := geometry.NewPlan(placements, opts.RenderScale, opts.TileSize, preset, opts.Margin)
	if err != nil {
		return fmt.Errorf("could not lay out mosaic: %w", err)
	}
	logger.Info("planned canvas",
		"preset", preset.Name,
		"width", plan.Canvas().Dx(),
		"height", plan.Canvas().Dy(),
		"scale", plan.Fit.Scale)

	start := time.Now()
	tiles := render.NewDirTiles(emojis)
	ids := render.UniqueIDs(placements)
	if err := render.Preload(ctx, tiles, ids, pool.Workers()); err != nil {
		return err
	}
	logger.Info("loaded tiles", "tiles", len(ids), "duration", time.Since(start))

	background, _ := config.ParseHexColor(opts.Background)
	img, err := render.Render(ctx, plan, placements, tiles, background)
	if err != nil {
		return err
	}

	if err := render.Save(img, out); err != nil {
		return err
	}
	logger.Info("saved mosaic", "file", out)
	return nil
}

func decodeFile(name string) (image.Image, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open image %q: %w", name, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode image %q: %w", name, err)
	}
	return img, nil
}

func readLayout(name string) ([]layout.Placement, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open layout file %q: %w", name, err)
	}
	defer f.Close()

	placements, err := layout.ReadPlacements(f)
	if err != nil {
		return nil, fmt.Errorf("could not read layout file %q: %w", name, err)
	}
	return placements, nil
}

func writeLayout(name string, placements []layout.Placement) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("could not create layout file %q: %w", name, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("could not close layout file %q: %w", name, closeErr)
		}
	}()

	return layout.WritePlacements(f, placements)
}
