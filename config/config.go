/*
Package config reads the TOML configuration file holding the default
slicing parameters.
*/
package config

import (
	"os"

	"github.com/bodgit/spriteslice"
	"github.com/bodgit/spriteslice/metadata"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Filename is the configuration file looked for in the working directory
const Filename = "spriteslice.toml"

// Slice holds the grid parameters
type Slice struct {
	Mode       string `toml:"mode"`
	Columns    int    `toml:"columns"`
	Rows       int    `toml:"rows"`
	CellWidth  int    `toml:"cell_width"`
	CellHeight int    `toml:"cell_height"`
}

// Pivot holds the pivot parameters, X and Y are only used with the custom
// preset
type Pivot struct {
	Preset string  `toml:"preset"`
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	Unit   string  `toml:"unit"`
}

// Batch controls how many sheets and cells are processed concurrently
type Batch struct {
	Workers     int `toml:"workers"`
	CellWorkers int `toml:"cell_workers"`
}

// Database locates the sprite metadata database
type Database struct {
	Path string `toml:"path"`
}

// Config is the complete configuration
type Config struct {
	Slice    Slice    `toml:"slice"`
	Pivot    Pivot    `toml:"pivot"`
	Batch    Batch    `toml:"batch"`
	Database Database `toml:"database"`
}

// Default returns the configuration used when no file is present
func Default() Config {
	return Config{
		Slice: Slice{
			Mode:       spriteslice.CellCount.String(),
			Columns:    4,
			Rows:       4,
			CellWidth:  32,
			CellHeight: 32,
		},
		Pivot: Pivot{
			Preset: spriteslice.Center.String(),
			X:      0.5,
			Y:      0.5,
			Unit:   spriteslice.Normalized.String(),
		},
		Batch: Batch{
			Workers:     4,
			CellWorkers: 1,
		},
		Database: Database{
			Path: metadata.Filename,
		},
	}
}

// Load overlays the file at path onto the defaults. A missing file is not an
// error when missingOK is set.
func Load(path string, missingOK bool) (Config, error) {
	config := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		if missingOK && os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}

	if err := toml.Unmarshal(b, &config); err != nil {
		return config, errors.Wrapf(err, "parsing %s", path)
	}

	return config, nil
}

// SliceSpec converts the slice section
func (c Config) SliceSpec() (spriteslice.SliceSpec, error) {
	mode, err := spriteslice.ParseMode(c.Slice.Mode)
	if err != nil {
		return spriteslice.SliceSpec{}, err
	}
	return spriteslice.SliceSpec{
		Mode:       mode,
		Columns:    c.Slice.Columns,
		Rows:       c.Slice.Rows,
		CellWidth:  c.Slice.CellWidth,
		CellHeight: c.Slice.CellHeight,
	}, nil
}

// PivotSpec converts the pivot section
func (c Config) PivotSpec() (spriteslice.PivotSpec, error) {
	preset, err := spriteslice.ParsePreset(c.Pivot.Preset)
	if err != nil {
		return spriteslice.PivotSpec{}, err
	}
	unit, err := spriteslice.ParseUnit(c.Pivot.Unit)
	if err != nil {
		return spriteslice.PivotSpec{}, err
	}
	return spriteslice.PivotSpec{
		Preset: preset,
		X:      c.Pivot.X,
		Y:      c.Pivot.Y,
		Unit:   unit,
	}, nil
}
