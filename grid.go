package spriteslice

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Mode selects how a SliceSpec describes the grid
type Mode int

const (
	// CellCount divides the sheet into a fixed number of rows and columns
	CellCount Mode = iota
	// CellSize divides the sheet into cells of a fixed pixel size
	CellSize
)

var modeNames = map[Mode]string{
	CellCount: "count",
	CellSize:  "size",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the Mode named by s, either "count" or "size"
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidSpec, "unknown slice mode %q", s)
}

// SliceSpec describes the grid to cut a sheet into. Columns and Rows are
// used in CellCount mode, CellWidth and CellHeight in CellSize mode.
type SliceSpec struct {
	Mode       Mode
	Columns    int
	Rows       int
	CellWidth  int
	CellHeight int
}

// Grid is a planned grid over a sheet
type Grid struct {
	Rows       int
	Columns    int
	CellWidth  int
	CellHeight int
}

// Plan resolves spec against a sheet of w by h pixels. Any remainder pixels
// on the right and top edges are left outside the grid.
func Plan(spec SliceSpec, w, h int) (Grid, error) {
	if w <= 0 || h <= 0 {
		return Grid{}, errors.Wrapf(ErrInvalidSpec, "sheet is %dx%d", w, h)
	}

	var g Grid
	switch spec.Mode {
	case CellCount:
		if spec.Columns <= 0 || spec.Rows <= 0 {
			return Grid{}, errors.Wrapf(ErrInvalidSpec, "%d columns by %d rows", spec.Columns, spec.Rows)
		}
		g.Columns, g.Rows = spec.Columns, spec.Rows
		g.CellWidth, g.CellHeight = w/spec.Columns, h/spec.Rows
	case CellSize:
		if spec.CellWidth <= 0 || spec.CellHeight <= 0 {
			return Grid{}, errors.Wrapf(ErrInvalidSpec, "cell size %dx%d", spec.CellWidth, spec.CellHeight)
		}
		g.CellWidth, g.CellHeight = spec.CellWidth, spec.CellHeight
		g.Columns, g.Rows = w/spec.CellWidth, h/spec.CellHeight
	default:
		return Grid{}, errors.Wrapf(ErrInvalidSpec, "unknown slice mode %d", int(spec.Mode))
	}

	if g.CellWidth == 0 || g.CellHeight == 0 || g.Columns == 0 || g.Rows == 0 {
		return Grid{}, errors.Wrapf(ErrInvalidSpec, "%dx%d sheet yields %dx%d cells of %dx%d", w, h, g.Columns, g.Rows, g.CellWidth, g.CellHeight)
	}

	return g, nil
}

// Used returns the width and height of the region covered by the grid
func (g Grid) Used() (int, int) {
	return g.Columns * g.CellWidth, g.Rows * g.CellHeight
}

// Len returns the number of cells in the grid
func (g Grid) Len() int {
	return g.Rows * g.Columns
}

// Index returns the row-major index of the cell at row, col
func (g Grid) Index(row, col int) int {
	return row*g.Columns + col
}

// Cells enumerates every cell of the grid in row-major order. Row 0 is the
// bottom of the sheet.
func (g Grid) Cells() []Cell {
	cells := make([]Cell, 0, g.Len())
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Columns; col++ {
			cells = append(cells, Cell{
				Rect: Rect{
					X:      col * g.CellWidth,
					Y:      row * g.CellHeight,
					Width:  g.CellWidth,
					Height: g.CellHeight,
				},
				Row:    row,
				Column: col,
				Index:  g.Index(row, col),
			})
		}
	}
	return cells
}
