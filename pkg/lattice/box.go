package lattice

import "fmt"

// Box is an inclusive rectangle of lattice indices. The zero value is the
// empty box.
type Box struct {
	min, max Point
	valid    bool
}

// EmptyBox returns a box holding no cells.
func EmptyBox() Box { return Box{} }

// NewBox returns the box spanning the two corners in any order.
func NewBox(a, b Point) Box {
	return Box{
		min:   Pt(min(a.X, b.X), min(a.Y, b.Y)),
		max:   Pt(max(a.X, b.X), max(a.Y, b.Y)),
		valid: true,
	}
}

// Rect returns the box with top-left (x1, y1) and bottom-right (x2, y2).
// The box is empty when x2 < x1 or y2 < y1.
func Rect(x1, y1, x2, y2 int) Box {
	if x2 < x1 || y2 < y1 {
		return EmptyBox()
	}
	return Box{min: Pt(x1, y1), max: Pt(x2, y2), valid: true}
}

// Empty reports whether the box holds no cells.
func (b Box) Empty() bool { return !b.valid }

// TopLeft returns the north-west corner.
func (b Box) TopLeft() Point { return b.min }

// BottomRight returns the south-east corner.
func (b Box) BottomRight() Point { return b.max }

// Width returns the number of columns.
func (b Box) Width() int {
	if !b.valid {
		return 0
	}
	return b.max.X - b.min.X + 1
}

// Height returns the number of rows.
func (b Box) Height() int {
	if !b.valid {
		return 0
	}
	return b.max.Y - b.min.Y + 1
}

// Area returns the number of cells.
func (b Box) Area() int { return b.Width() * b.Height() }

// Contains reports whether p lies inside b.
func (b Box) Contains(p Point) bool {
	if !b.valid {
		return false
	}
	return p.X >= b.min.X && p.X <= b.max.X && p.Y >= b.min.Y && p.Y <= b.max.Y
}

// ContainsBox reports whether o lies entirely inside b. The empty box is
// contained by every box.
func (b Box) ContainsBox(o Box) bool {
	if !o.valid {
		return true
	}
	return b.Contains(o.min) && b.Contains(o.max)
}

// Include returns the smallest box holding b and p.
func (b Box) Include(p Point) Box {
	if !b.valid {
		return NewBox(p, p)
	}
	return NewBox(
		Pt(min(b.min.X, p.X), min(b.min.Y, p.Y)),
		Pt(max(b.max.X, p.X), max(b.max.Y, p.Y)),
	)
}

// Union returns the smallest box holding b and o.
func (b Box) Union(o Box) Box {
	if !o.valid {
		return b
	}
	return b.Include(o.min).Include(o.max)
}

// Intersect returns the overlap of b and o.
func (b Box) Intersect(o Box) Box {
	if !b.valid || !o.valid {
		return EmptyBox()
	}
	return Rect(
		max(b.min.X, o.min.X), max(b.min.Y, o.min.Y),
		min(b.max.X, o.max.X), min(b.max.Y, o.max.Y),
	)
}

// Coos returns the world coordinates of the outer north-west and south-east
// corners of the box.
func (b Box) Coos(g *Grid) (Coo, Coo) {
	if !b.valid {
		return EmptyCoo(), EmptyCoo()
	}
	h := g.CellSize() / 2
	nw := g.Center(b.min).Add(-h, g.rowHeight()/2)
	se := g.Center(b.max).Add(h, -g.rowHeight()/2)
	return nw, se
}

func (b Box) String() string {
	if !b.valid {
		return "[]"
	}
	return fmt.Sprintf("[%v-%v]", b.min, b.max)
}

// BoxList is an ordered set of dispatch regions.
type BoxList []Box

// Add appends b unless it is empty.
func (l *BoxList) Add(b Box) {
	if !b.valid {
		return
	}
	*l = append(*l, b)
}

// Len returns the number of boxes.
func (l BoxList) Len() int { return len(l) }

// Area returns the summed area of all boxes, counting overlaps twice.
func (l BoxList) Area() int {
	n := 0
	for _, b := range l {
		n += b.Area()
	}
	return n
}

// Bounds returns the box enclosing every box in l.
func (l BoxList) Bounds() Box {
	out := EmptyBox()
	for _, b := range l {
		out = out.Union(b)
	}
	return out
}

// Contains reports whether any box holds p.
func (l BoxList) Contains(p Point) bool {
	for _, b := range l {
		if b.Contains(p) {
			return true
		}
	}
	return false
}
