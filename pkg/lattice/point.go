package lattice

import "fmt"

// Point is a lattice index. X counts columns from the west edge and Y counts
// rows from the north edge, so Y grows opposite to world northing. Index 0 on
// either axis is the halo.
//
// A Point either carries indices only or indices plus the world coordinate it
// was located from. Changing an index through WithX or WithY drops the
// coordinate.
type Point struct {
	X, Y int

	coo    Coo
	hasCoo bool
}

// Pt returns an index-only Point.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// WithX returns a copy of p moved to column x.
func (p Point) WithX(x int) Point { return Point{X: x, Y: p.Y} }

// WithY returns a copy of p moved to row y.
func (p Point) WithY(y int) Point { return Point{X: p.X, Y: y} }

// CachedCoo returns the coordinate p was located from, if any.
func (p Point) CachedCoo() (Coo, bool) {
	if !p.hasCoo {
		return EmptyCoo(), false
	}
	return p.coo, true
}

// Coo returns the cached coordinate, or the centre of the cell in g.
func (p Point) Coo(g *Grid) Coo {
	if p.hasCoo {
		return p.coo
	}
	return g.Center(p)
}

// Eq reports whether p and o share indices. Cached coordinates are ignored.
func (p Point) Eq(o Point) bool { return p.X == o.X && p.Y == o.Y }

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// PointList is an ordered collection of sample locations.
type PointList struct {
	points []Point
}

// NewPointList returns a list holding pts in order.
func NewPointList(pts ...Point) PointList {
	return PointList{points: append([]Point(nil), pts...)}
}

// Add appends p.
func (l *PointList) Add(p Point) { l.points = append(l.points, p) }

// Len returns the number of points.
func (l PointList) Len() int { return len(l.points) }

// At returns the i-th point.
func (l PointList) At(i int) Point { return l.points[i] }

// Points exposes the points in insertion order.
func (l PointList) Points() []Point { return l.points }

// Bounds returns the smallest box holding every point.
func (l PointList) Bounds() Box {
	b := EmptyBox()
	for _, p := range l.points {
		b = b.Include(p)
	}
	return b
}
