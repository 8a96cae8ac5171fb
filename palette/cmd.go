package palette

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/alecthomas/kong"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/trstruth/gestalt/parallel"
)

// ImageExts are the emoji asset extensions that can be decoded, in order of
// preference when one id has several files.
var ImageExts = []string{".png", ".webp", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff"}

type CLICmd struct {
	Build   BuildCmd   `cmd:"" help:"Compute the average color of every emoji image in a folder"`
	Nearest NearestCmd `cmd:"" help:"Print the emoji closest to a color"`
}

type BuildCmd struct {
	Emojis string `help:"Folder of emoji images, named <id>.<ext>" default:"emojis" type:"existingdir"`
	Out    string `help:"Destination metadata file" default:"emoji_metadata.json"`
}

func (c *BuildCmd) Run(logger *slog.Logger, pool *parallel.Pool) error {
	files, err := os.ReadDir(c.Emojis)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Emojis, err)
	}

	// id -> file name as found on disk
	byID := make(map[string]string)
	for _, file := range files {
		if file.IsDir() || extRank(file.Name()) < 0 {
			continue
		}
		id := strings.TrimSuffix(file.Name(), filepath.Ext(file.Name()))
		if prev, ok := byID[id]; ok {
			if extRank(prev) <= extRank(file.Name()) {
				logger.Warn("skipping duplicate emoji id", "id", id, "file", file.Name())
				continue
			}
			logger.Warn("skipping duplicate emoji id", "id", id, "file", prev)
		}
		byID[id] = file.Name()
	}

	var (
		mu       sync.Mutex
		entries  = make([]Entry, 0, len(byID))
		errCount atomic.Uint64
	)
	batch := pool.Batch()
	for id, file := range byID {
		batch.Go(func() {
			name := filepath.Join(c.Emojis, file)
			avg, err := averageFile(name)
			if err != nil {
				errCount.Add(1)
				logger.Error("could not average emoji", "file", name, "error", err)
				return
			}
			logger.Debug("averaged emoji", "id", id, "rgb", avg)

			mu.Lock()
			entries = append(entries, Entry{ID: id, AverageRGB: avg})
			mu.Unlock()
		})
	}
	batch.Wait()

	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.ID, b.ID)
	})
	if err := SaveFile(c.Out, entries); err != nil {
		return err
	}

	errors := errCount.Load()
	logger.Info("wrote palette", "file", c.Out, "entries", len(entries), "errors", errors)
	if errors > 0 {
		return fmt.Errorf("error processing %d emoji files", errors)
	}
	return nil
}

// extRank is the preference of a file name's extension in ImageExts,
// ignoring case, or -1 when it is not an image.
func extRank(name string) int {
	return slices.Index(ImageExts, strings.ToLower(filepath.Ext(name)))
}

func averageFile(name string) (RGB, error) {
	f, err := os.Open(name)
	if err != nil {
		return RGB{}, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return RGB{}, fmt.Errorf("could not decode image: %w", err)
	}
	return Average(img)
}

type NearestCmd struct {
	Palette string   `help:"Palette metadata file" default:"emoji_metadata.json" type:"existingfile"`
	Space   string   `help:"Color space to compare in (rgb, oklab)" default:"rgb" enum:"rgb,oklab"`
	Colors  []string `arg:"" help:"Colors as #RRGGBB"`

	rgbs []RGB `kong:"-"`
}

func (c *NearestCmd) Validate(kctx *kong.Context) error {
	c.rgbs = c.rgbs[:0]
	for _, s := range c.Colors {
		var rgb RGB
		if n, err := fmt.Sscanf(s, "#%2x%2x%2x", &rgb.R, &rgb.G, &rgb.B); err != nil || n != 3 || len(s) != 7 {
			return fmt.Errorf("invalid color %q, should be #RRGGBB", s)
		}
		c.rgbs = append(c.rgbs, rgb)
	}
	return nil
}

func (c *NearestCmd) Run(logger *slog.Logger) error {
	entries, err := LoadFile(c.Palette)
	if err != nil {
		return err
	}
	idx, err := BuildSpace(entries, Space(c.Space))
	if err != nil {
		return fmt.Errorf("could not index palette %q: %w", c.Palette, err)
	}

	for _, rgb := range c.rgbs {
		id, dist := idx.Match(rgb)
		logger.Debug("matched color", "color", rgb, "id", id, "distance", dist)
		fmt.Printf("%s\t%s\n", rgb, id)
	}
	return nil
}
