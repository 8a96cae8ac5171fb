package palette

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ReadFrom decodes palette metadata: a JSON array of
// {"image_id": "...", "average_rgb": [r, g, b]} records.
func ReadFrom(r io.Reader) ([]Entry, error) {
	var entries []Entry
	dec := json.NewDecoder(r)
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("could not decode palette metadata: %w", err)
	}

	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("palette entry #%d has no image_id", i)
		}
	}
	return entries, nil
}

// WriteTo encodes entries in the format read by ReadFrom.
func WriteTo(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		return fmt.Errorf("could not encode palette metadata: %w", err)
	}
	return nil
}

func LoadFile(name string) ([]Entry, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open palette metadata %q: %w", name, err)
	}
	defer f.Close()

	entries, err := ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return entries, nil
}

// SaveFile writes entries next to name first and renames into place, so
// readers never observe a partial file.
func SaveFile(name string, entries []Entry) (err error) {
	dir, base := filepath.Split(name)
	if dir == "" {
		dir = "."
	}

	outFile, err := os.CreateTemp(dir, base)
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", name, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", name, defErr)
		}
		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), name); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", name, defErr)
			}
		} else {
			_ = os.Remove(outFile.Name())
		}
	}()

	if err = WriteTo(outFile, entries); err != nil {
		return err
	}
	if err = outFile.Sync(); err != nil {
		return fmt.Errorf("could not flush temporary destination %q: %w", name, err)
	}

	canRename = true
	return nil
}
