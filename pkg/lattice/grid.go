// Package lattice describes the 2D lattice a cellular automaton runs on: world
// coordinates, lattice indices, rectangular regions and the grid that maps
// between them.
package lattice

import (
	"errors"
	"fmt"
	"math"
)

// Topology selects the cell shape and neighbourhood.
type Topology uint8

const (
	// Square cells with a von Neumann neighbourhood ordered E, S, W, N.
	Square Topology = iota
	// Hexagonal cells ordered E, SE, SW, W, NW, NE. Rows are spaced
	// size*sqrt(3)/2 apart and even rows are shifted east by half a cell.
	Hexagonal
)

func (t Topology) String() string {
	switch t {
	case Square:
		return "square"
	case Hexagonal:
		return "hexagonal"
	}
	return fmt.Sprintf("topology(%d)", uint8(t))
}

// Neighbors returns the neighbourhood size of t.
func (t Topology) Neighbors() int {
	if t == Hexagonal {
		return 6
	}
	return 4
}

// ParseTopology maps "square" or "hex"/"hexagonal" to a Topology.
func ParseTopology(s string) (Topology, error) {
	switch s {
	case "square", "":
		return Square, nil
	case "hex", "hexagonal":
		return Hexagonal, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrTopology, s)
}

var (
	// ErrTopology reports an unknown cell topology.
	ErrTopology = errors.New("lattice: unknown topology")
	// ErrSpec reports invalid grid dimensions or placement.
	ErrSpec = errors.New("lattice: invalid grid spec")
)

var (
	squareOffsets = [4][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	// hexOffsets[0] applies to odd rows, hexOffsets[1] to the shifted even rows.
	hexOffsets = [2][6][2]int{
		{{1, 0}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}},
		{{1, 0}, {1, 1}, {0, 1}, {-1, 0}, {0, -1}, {1, -1}},
	}
)

// Spec holds the parameters a Grid is built from.
type Spec struct {
	// Origin is the world coordinate of the lower-left lattice corner.
	Origin   Coo
	CellSize float64
	Rows     int
	Cols     int
	Topology Topology
}

// Grid owns lattice metadata and converts between world coordinates and
// lattice indices. Active cells have X in [1, Cols] and Y in [1, Rows]; the
// surrounding ring of indices is the halo.
type Grid struct {
	spec Spec
	rowH float64
}

// NewGrid validates spec and builds a Grid.
func NewGrid(spec Spec) (*Grid, error) {
	if spec.Rows <= 0 || spec.Cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d cells", ErrSpec, spec.Cols, spec.Rows)
	}
	if !(spec.CellSize > 0) || math.IsInf(spec.CellSize, 0) {
		return nil, fmt.Errorf("%w: cell size %v", ErrSpec, spec.CellSize)
	}
	ox, oy := spec.Origin.X(), spec.Origin.Y()
	if math.IsNaN(ox) || math.IsNaN(oy) || math.IsInf(ox, 0) || math.IsInf(oy, 0) {
		return nil, fmt.Errorf("%w: origin (%v, %v)", ErrSpec, ox, oy)
	}
	g := &Grid{spec: spec, rowH: spec.CellSize}
	switch spec.Topology {
	case Square:
	case Hexagonal:
		g.rowH = spec.CellSize * math.Sqrt(3) / 2
	default:
		return nil, fmt.Errorf("%w: %v", ErrTopology, spec.Topology)
	}
	return g, nil
}

// Spec returns the parameters g was built from.
func (g *Grid) Spec() Spec { return g.spec }

// Rows returns the number of active rows.
func (g *Grid) Rows() int { return g.spec.Rows }

// Cols returns the number of active columns.
func (g *Grid) Cols() int { return g.spec.Cols }

// CellSize returns the cell edge length.
func (g *Grid) CellSize() float64 { return g.spec.CellSize }

// Origin returns the lower-left world coordinate.
func (g *Grid) Origin() Coo { return g.spec.Origin }

// Topology returns the cell shape.
func (g *Grid) Topology() Topology { return g.spec.Topology }

// Neighbors returns the number of neighbours per cell.
func (g *Grid) Neighbors() int { return g.spec.Topology.Neighbors() }

// Opposite returns the direction pointing back along direction i.
func (g *Grid) Opposite(i int) int {
	k := g.Neighbors()
	return (i + k/2) % k
}

// Stride returns the padded row length of buffers on g.
func (g *Grid) Stride() int { return g.spec.Cols + 2 }

// Len returns the padded cell count of buffers on g.
func (g *Grid) Len() int { return (g.spec.Cols + 2) * (g.spec.Rows + 2) }

// Index returns the linear buffer index of (x, y).
func (g *Grid) Index(x, y int) int { return y*g.Stride() + x }

// Box returns the active lattice.
func (g *Grid) Box() Box { return Rect(1, 1, g.spec.Cols, g.spec.Rows) }

// Padded returns the active lattice plus its halo.
func (g *Grid) Padded() Box { return Rect(0, 0, g.spec.Cols+1, g.spec.Rows+1) }

// InDomain reports whether p is an active cell.
func (g *Grid) InDomain(p Point) bool {
	return p.X >= 1 && p.X <= g.spec.Cols && p.Y >= 1 && p.Y <= g.spec.Rows
}

// Contains reports whether p addresses buffer storage, halo included.
func (g *Grid) Contains(p Point) bool {
	return p.X >= 0 && p.X <= g.spec.Cols+1 && p.Y >= 0 && p.Y <= g.spec.Rows+1
}

// Neighbor returns the indices of neighbour i of (x, y).
func (g *Grid) Neighbor(x, y, i int) (int, int) {
	var d [2]int
	if g.spec.Topology == Hexagonal {
		d = hexOffsets[1-y&1][i]
	} else {
		d = squareOffsets[i]
	}
	return x + d[0], y + d[1]
}

func (g *Grid) rowHeight() float64 { return g.rowH }

func (g *Grid) shift(y int) float64 {
	if g.spec.Topology == Hexagonal && y&1 == 0 {
		return 0.5
	}
	return 0
}

// Center returns the world coordinate of the centre of cell p.
func (g *Grid) Center(p Point) Coo {
	s := g.spec.CellSize
	x := g.spec.Origin.X() + (float64(p.X-1)+0.5+g.shift(p.Y))*s
	y := g.spec.Origin.Y() + (float64(g.spec.Rows-p.Y)+0.5)*g.rowH
	return NewCoo(x, y)
}

// Locate returns the Point of the cell enclosing (x, y). The Point caches the
// input coordinate unchanged. Indices are clamped to at least 1; coordinates
// beyond the far edges yield indices outside the lattice, which callers
// check with InDomain.
func (g *Grid) Locate(x, y float64) Point {
	var p Point
	if g.spec.Topology == Hexagonal {
		p = g.locateHex(x, y)
	} else {
		s := g.spec.CellSize
		col := int(math.Floor((x - g.spec.Origin.X()) / s))
		row := int(math.Floor((y - g.spec.Origin.Y()) / s))
		p = Pt(col+1, g.spec.Rows-row)
	}
	p.X = max(p.X, 1)
	p.Y = max(p.Y, 1)
	p.coo = NewCoo(x, y)
	p.hasCoo = true
	return p
}

// locateHex checks the centroids of the two rows bracketing y and the two
// columns bracketing x in each, keeping the first nearest.
func (g *Grid) locateHex(x, y float64) Point {
	s := g.spec.CellSize
	target := NewCoo(x, y)
	fy := (y-g.spec.Origin.Y())/g.rowH - 0.5
	r0 := int(math.Floor(fy))

	best := Pt(1, 1)
	bestD := math.Inf(1)
	for _, r := range [2]int{r0, r0 + 1} {
		py := g.spec.Rows - r
		fx := (x-g.spec.Origin.X())/s - 0.5 - g.shift(py)
		c0 := int(math.Floor(fx))
		for _, c := range [2]int{c0, c0 + 1} {
			cand := Pt(c+1, py)
			if d := g.Center(cand).Distance(target); d < bestD {
				best, bestD = cand, d
			}
		}
	}
	return best
}
