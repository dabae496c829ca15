package core

// ByteGrid stores one display level per cell in row-major order.
type ByteGrid struct {
	W, H int
	data []uint8
}

// NewByteGrid allocates a grid with the given dimensions.
func NewByteGrid(w, h int) *ByteGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &ByteGrid{W: w, H: h, data: make([]uint8, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *ByteGrid) Cells() []uint8 { return g.data }

// Level maps v from [lo, hi] onto the levels first..last, clamping outside
// the range.
func Level(v, lo, hi float32, first, last uint8) uint8 {
	if hi <= lo || v <= lo {
		return first
	}
	if v >= hi {
		return last
	}
	span := float32(last - first)
	return first + uint8((v-lo)/(hi-lo)*span)
}
