package ca

import "flood-ca/pkg/lattice"

// Cell is the lattice position a Func is being applied to. Backends hand one
// to Func.Update per cell; it addresses every buffer on the same grid.
type Cell struct {
	X, Y  int
	Index int

	grid *lattice.Grid
}

func newCell(g *lattice.Grid, x, y int) Cell {
	return Cell{X: x, Y: y, Index: g.Index(x, y), grid: g}
}

// Point returns the lattice index of c.
func (c Cell) Point() lattice.Point { return lattice.Pt(c.X, c.Y) }

// Neighbors returns the neighbourhood size.
func (c Cell) Neighbors() int { return c.grid.Neighbors() }

// Neighbor returns neighbour i of c. Neighbours of edge cells lie in the halo.
func (c Cell) Neighbor(i int) Cell {
	x, y := c.grid.Neighbor(c.X, c.Y, i)
	return newCell(c.grid, x, y)
}

// Opposite returns the direction leading from neighbour i back to c.
func (c Cell) Opposite(i int) int { return c.grid.Opposite(i) }

// InDomain reports whether c is an active cell rather than halo.
func (c Cell) InDomain() bool {
	return c.X >= 1 && c.Y >= 1 && c.X <= c.grid.Cols() && c.Y <= c.grid.Rows()
}

// Grid returns the lattice c belongs to.
func (c Cell) Grid() *lattice.Grid { return c.grid }

func (c Cell) dispatched() bool { return c.grid != nil }
