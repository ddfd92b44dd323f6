package spriteslice

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// PixelBuffer is a read-only view of a sheet's alpha channel. Row 0 is the
// bottom of the image. An alpha of zero is fully transparent.
type PixelBuffer interface {
	Width() int
	Height() int
	AlphaAt(x, y int) uint8
}

// RowBuffer is implemented by a PixelBuffer that can return a whole row of
// alpha values without copying. The returned slice must not be modified.
type RowBuffer interface {
	PixelBuffer
	Row(y int) []uint8
}

func contains(buf PixelBuffer, r Rect) bool {
	return r.X >= 0 && r.Y >= 0 && r.Width > 0 && r.Height > 0 &&
		r.X+r.Width <= buf.Width() && r.Y+r.Height <= buf.Height()
}

// IsEmpty reports whether every pixel within r is fully transparent. r must
// lie within the buffer.
func IsEmpty(buf PixelBuffer, r Rect) bool {
	if rb, ok := buf.(RowBuffer); ok {
		for y := r.Y; y < r.Y+r.Height; y++ {
			for _, a := range rb.Row(y)[r.X : r.X+r.Width] {
				if a != 0 {
					return false
				}
			}
		}
		return true
	}

	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			if buf.AlphaAt(x, y) != 0 {
				return false
			}
		}
	}
	return true
}

// Classify returns the cells that contain at least one pixel that isn't
// fully transparent, in the order they were given. With more than one
// worker the cells are inspected concurrently.
func Classify(buf PixelBuffer, cells []Cell, workers int) ([]Cell, error) {
	for _, c := range cells {
		if !contains(buf, c.Rect) {
			return nil, errors.Wrapf(ErrInvalidSpec, "cell %d (%+v) outside %dx%d sheet", c.Index, c.Rect, buf.Width(), buf.Height())
		}
	}

	keep := make([]bool, len(cells))

	if workers <= 1 {
		for i, c := range cells {
			keep[i] = !IsEmpty(buf, c.Rect)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(workers)
		for i := range cells {
			i := i
			g.Go(func() error {
				keep[i] = !IsEmpty(buf, cells[i].Rect)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	out := make([]Cell, 0, len(cells))
	for i, c := range cells {
		if keep[i] {
			out = append(out, c)
		}
	}
	return out, nil
}
