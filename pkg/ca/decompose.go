package ca

import "flood-ca/pkg/lattice"

// summedArea counts data cells of a region in constant time.
type summedArea struct {
	origin lattice.Point
	w      int
	sums   []int32
}

func newSummedArea[T Scalar](g *lattice.Grid, data []T, noData T, region lattice.Box) *summedArea {
	tl := region.TopLeft()
	w, h := region.Width(), region.Height()
	s := &summedArea{origin: tl, w: w, sums: make([]int32, (w+1)*(h+1))}
	for y := 0; y < h; y++ {
		var row int32
		for x := 0; x < w; x++ {
			if data[g.Index(tl.X+x, tl.Y+y)] != noData {
				row++
			}
			s.sums[(y+1)*(w+1)+x+1] = s.sums[y*(w+1)+x+1] + row
		}
	}
	return s
}

func (s *summedArea) count(b lattice.Box) int {
	if b.Empty() {
		return 0
	}
	x1 := b.TopLeft().X - s.origin.X
	y1 := b.TopLeft().Y - s.origin.Y
	x2 := b.BottomRight().X - s.origin.X + 1
	y2 := b.BottomRight().Y - s.origin.Y + 1
	at := func(x, y int) int32 { return s.sums[y*(s.w+1)+x] }
	return int(at(x2, y2) - at(x1, y2) - at(x2, y1) + at(x1, y1))
}

// shrink returns the tight bounds of the data cells in b.
func (s *summedArea) shrink(b lattice.Box) lattice.Box {
	if s.count(b) == 0 {
		return lattice.EmptyBox()
	}
	x1, y1 := b.TopLeft().X, b.TopLeft().Y
	x2, y2 := b.BottomRight().X, b.BottomRight().Y
	for s.count(lattice.Rect(x1, y1, x2, y1)) == 0 {
		y1++
	}
	for s.count(lattice.Rect(x1, y2, x2, y2)) == 0 {
		y2--
	}
	for s.count(lattice.Rect(x1, y1, x1, y2)) == 0 {
		x1++
	}
	for s.count(lattice.Rect(x2, y1, x2, y2)) == 0 {
		x2--
	}
	return lattice.Rect(x1, y1, x2, y2)
}

// Decompose covers the data cells of buf inside box with sub-boxes suitable
// for dispatch. A cell holds data when its value differs from noData.
//
// Each candidate is first shrunk to the bounds of its data. It is kept when
// at least threshold of its cells hold data, or when halving its longer side
// would leave a side shorter than minSide; otherwise it is split at the
// middle of its longer side (X on ties) and the halves are treated the same
// way. Halves without data are dropped. Every data cell ends up in exactly
// one box. Boxes come out in recursion order.
//
// threshold is clamped to [0, 1] and minSide to at least 1. The box is
// clipped to the active lattice; host values of buf must be current.
func Decompose[T Scalar](box lattice.Box, buf *CellBuffer[T], noData T, threshold float64, minSide int) lattice.BoxList {
	g := buf.ctx.grid
	box = box.Intersect(g.Box())
	if box.Empty() {
		return nil
	}
	threshold = min(max(threshold, 0), 1)
	minSide = max(minSide, 1)

	sat := newSummedArea(g, buf.data, noData, box)
	var out lattice.BoxList
	var split func(b lattice.Box)
	split = func(b lattice.Box) {
		b = sat.shrink(b)
		if b.Empty() {
			return
		}
		w, h := b.Width(), b.Height()
		frac := float64(sat.count(b)) / float64(w*h)
		if frac >= threshold || max(w, h)/2 < minSide {
			out.Add(b)
			return
		}
		tl, br := b.TopLeft(), b.BottomRight()
		if w >= h {
			mid := tl.X + w/2 - 1
			split(lattice.Rect(tl.X, tl.Y, mid, br.Y))
			split(lattice.Rect(mid+1, tl.Y, br.X, br.Y))
			return
		}
		mid := tl.Y + h/2 - 1
		split(lattice.Rect(tl.X, tl.Y, br.X, mid))
		split(lattice.Rect(tl.X, mid+1, br.X, br.Y))
	}
	split(box)
	return out
}
