/*
Package spriteslice cuts a sprite sheet into a grid of named sprites.

A sheet is planned into a grid either by cell count or by cell size, each
cell is checked for any pixel that isn't fully transparent and the
surviving cells are turned into sprite descriptors carrying a name, a
rectangle and a pivot. Sprites are named after their position in the full
grid so a sheet re-sliced after a cell is cleared keeps the names of the
other sprites.
*/
package spriteslice

import (
	"context"
	"io/ioutil"
	"log"

	"github.com/pkg/errors"
)

// Slicer runs the slicing pipeline
type Slicer struct {
	logger  *log.Logger
	workers int
}

// Option configures a Slicer
type Option func(*Slicer)

// WithWorkers sets the number of goroutines used to inspect cells. The
// default of 1 inspects every cell on the calling goroutine.
func WithWorkers(n int) Option {
	return func(s *Slicer) {
		s.workers = n
	}
}

// New returns a Slicer that logs to logger. A nil logger discards
// everything.
func New(logger *log.Logger, options ...Option) *Slicer {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	s := &Slicer{
		logger:  logger,
		workers: 1,
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Slice plans a grid over buf, drops any fully transparent cells and
// returns a descriptor for each remaining cell named base_N. A sheet with
// no visible cells returns an empty slice and no error.
func (s *Slicer) Slice(ctx context.Context, buf PixelBuffer, spec SliceSpec, pivot PivotSpec, base string) ([]SpriteDescriptor, error) {
	if buf == nil || buf.Width() <= 0 || buf.Height() <= 0 {
		return nil, errors.Wrap(ErrUnsupportedAsset, "empty image")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := buf.Width(), buf.Height()

	g, err := Plan(spec, w, h)
	if err != nil {
		return nil, err
	}

	p, err := Resolve(pivot, g.CellWidth, g.CellHeight)
	if err != nil {
		return nil, err
	}

	if uw, uh := g.Used(); uw != w || uh != h {
		s.logger.Printf("%s: %dx%d grid of %dx%d cells leaves %dx%d pixels unsliced\n", base, g.Columns, g.Rows, g.CellWidth, g.CellHeight, w-uw, h-uh)
	}

	cells, err := Classify(buf, g.Cells(), s.workers)
	if err != nil {
		return nil, err
	}

	s.logger.Printf("%s: %d of %d cells contain pixels\n", base, len(cells), g.Len())

	return Build(cells, base, p), nil
}
