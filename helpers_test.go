package spriteslice

// sparse is a PixelBuffer without a Row method so that the per-pixel path is
// exercised
type sparse struct {
	w, h int
	pix  []uint8
}

func newSparse(w, h int) *sparse {
	return &sparse{w: w, h: h, pix: make([]uint8, w*h)}
}

func (s *sparse) Width() int { return s.w }
func (s *sparse) Height() int { return s.h }
func (s *sparse) AlphaAt(x, y int) uint8 { return s.pix[y*s.w+x] }
func (s *sparse) set(x, y int, a uint8) { s.pix[y*s.w+x] = a }

func (s *sparse) fill(r Rect, a uint8) {
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			s.set(x, y, a)
		}
	}
}

// rows is a RowBuffer over the same layout as sparse
type rows struct {
	*sparse
}

func (r rows) Row(y int) []uint8 { return r.pix[y*r.w : (y+1)*r.w] }
