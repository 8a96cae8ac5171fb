package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/trstruth/gestalt/palette"
)

// TileSource resolves a palette id to its drawable image.
type TileSource interface {
	Tile(id string) (image.Image, error)
}

// TileExts are the asset extensions DirTiles looks for, in order.
var TileExts = palette.ImageExts

// DirTiles loads tiles from <dir>/<id><ext> and keeps every decoded tile
// for the lifetime of the value. Extensions match regardless of case.
type DirTiles struct {
	dir string

	mu    sync.Mutex
	cache map[string]image.Image

	listOnce sync.Once
	files    map[string]string
	listErr  error
}

func NewDirTiles(dir string) *DirTiles {
	return &DirTiles{
		dir:   dir,
		cache: make(map[string]image.Image),
	}
}

func (d *DirTiles) Tile(id string) (image.Image, error) {
	d.mu.Lock()
	img, ok := d.cache[id]
	d.mu.Unlock()
	if ok {
		return img, nil
	}

	img, err := d.load(id)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	if cached, ok := d.cache[id]; ok {
		img = cached
	} else {
		d.cache[id] = img
	}
	d.mu.Unlock()
	return img, nil
}

func (d *DirTiles) load(id string) (image.Image, error) {
	if id == "" || id != filepath.Base(id) {
		return nil, fmt.Errorf("invalid tile id %q", id)
	}

	for _, ext := range TileExts {
		img, err := d.decode(id + ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return img, err
	}

	d.listOnce.Do(d.list)
	if d.listErr != nil {
		return nil, fmt.Errorf("could not list tiles in %q: %w", d.dir, d.listErr)
	}
	if file, ok := d.files[id]; ok {
		return d.decode(file)
	}
	return nil, fmt.Errorf("no tile asset for id %q in %q", id, d.dir)
}

func (d *DirTiles) decode(file string) (image.Image, error) {
	name := filepath.Join(d.dir, file)
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open tile %q: %w", name, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode tile %q: %w", name, err)
	}
	return img, nil
}

// list maps ids to the preferred asset whose extension differs in case
// from TileExts, such as smile.PNG.
func (d *DirTiles) list() {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		d.listErr = err
		return
	}

	d.files = make(map[string]string)
	for _, e := range entries {
		rank := extRank(e.Name())
		if e.IsDir() || rank < 0 {
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if prev, ok := d.files[id]; ok && extRank(prev) <= rank {
			continue
		}
		d.files[id] = e.Name()
	}
}

func extRank(name string) int {
	return slices.Index(TileExts, strings.ToLower(filepath.Ext(name)))
}

// Preload resolves every id concurrently, at most limit at a time, and fails
// on the first tile that cannot be loaded.
func Preload(ctx context.Context, tiles TileSource, ids []string, limit int) error {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := tiles.Tile(id)
			return err
		})
	}
	return g.Wait()
}
