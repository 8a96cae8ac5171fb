package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/trstruth/gestalt/mosaic"
	"github.com/trstruth/gestalt/palette"
	"github.com/trstruth/gestalt/parallel"
	"github.com/trstruth/gestalt/render"
)

type CLI struct {
	Verbose bool `help:"Log debug messages" short:"v"`
	Workers int  `help:"Number of worker goroutines, 0 for one per CPU" default:"0"`

	Generate mosaic.CLICmd    `cmd:"" help:"Turn a source image into an emoji mosaic"`
	Render   mosaic.RenderCmd `cmd:"" help:"Draw a saved placement layout"`
	Palette  palette.CLICmd   `cmd:"" help:"Build and query emoji palette metadata"`
}

func newLogger(verbose bool) *slog.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	return slog.New(handler)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("gestalt"),
		kong.Description("Emoji mosaic generator."),
		kong.UsageOnError(),
		kong.Vars{"formats": strings.Join(render.Formats, ", ")},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	logger := newLogger(cli.Verbose)
	slog.SetDefault(logger)

	pool := parallel.Start(cli.Workers)
	logger.Debug("running", "command", kctx.Command(), "workers", pool.Workers())
	err := kctx.Run(logger, pool)
	pool.Close()
	kctx.FatalIfErrorf(err)
}
