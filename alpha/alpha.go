/*
Package alpha extracts the alpha channel of an image into a plane that can
be sliced by spriteslice.

The plane is stored bottom row first so that row 0 is the bottom of the
image, matching the coordinate space sprites are described in. Alpha is
reduced to 8 bits but any pixel that isn't fully transparent in the source
image stays non-zero.
*/
package alpha

import (
	"image"

	"github.com/pkg/errors"
)

// Plane is an 8-bit alpha plane. It implements spriteslice.RowBuffer.
type Plane struct {
	w, h int
	pix  []uint8
}

// New returns a plane of w by h pixels backed by pix, bottom row first. pix
// must hold exactly w*h values.
func New(w, h int, pix []uint8) (*Plane, error) {
	if w < 0 || h < 0 || len(pix) != w*h {
		return nil, errors.Errorf("alpha: %d values for %dx%d plane", len(pix), w, h)
	}
	return &Plane{w: w, h: h, pix: pix}, nil
}

// Width returns the width of the plane in pixels
func (p *Plane) Width() int { return p.w }

// Height returns the height of the plane in pixels
func (p *Plane) Height() int { return p.h }

// AlphaAt returns the alpha at x, y where y is counted from the bottom
func (p *Plane) AlphaAt(x, y int) uint8 {
	return p.pix[y*p.w+x]
}

// Row returns the alpha values of row y, counted from the bottom
func (p *Plane) Row(y int) []uint8 {
	return p.pix[y*p.w : (y+1)*p.w]
}

func reduce(a uint32) uint8 {
	// Keep any trace of opacity
	if a != 0 && a < 0x100 {
		return 1
	}
	return uint8(a >> 8)
}

// FromImage copies the alpha channel of m. Images without an alpha channel
// are treated as opaque by their color model.
func FromImage(m image.Image) *Plane {
	b := m.Bounds()
	w, h := b.Dx(), b.Dy()
	p := &Plane{w: w, h: h, pix: make([]uint8, w*h)}

	switch src := m.(type) {
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			row := p.Row(h - 1 - y)
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := range row {
				row[x] = src.Pix[off+x*4+3]
			}
		}
	case *image.RGBA:
		for y := 0; y < h; y++ {
			row := p.Row(h - 1 - y)
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := range row {
				row[x] = src.Pix[off+x*4+3]
			}
		}
	case *image.Alpha:
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(p.Row(h-1-y), src.Pix[off:off+w])
		}
	case *image.Paletted:
		alphas := make([]uint8, len(src.Palette))
		for i, c := range src.Palette {
			_, _, _, a := c.RGBA()
			alphas[i] = reduce(a)
		}
		for y := 0; y < h; y++ {
			row := p.Row(h - 1 - y)
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			for x := range row {
				if i := int(src.Pix[off+x]); i < len(alphas) {
					row[x] = alphas[i]
				}
			}
		}
	default:
		for y := 0; y < h; y++ {
			row := p.Row(h - 1 - y)
			for x := range row {
				_, _, _, a := m.At(b.Min.X+x, b.Min.Y+y).RGBA()
				row[x] = reduce(a)
			}
		}
	}

	return p
}
