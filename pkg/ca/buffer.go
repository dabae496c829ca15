package ca

import (
	"fmt"

	"flood-ca/pkg/lattice"
)

// CellBuffer holds one value per lattice cell, halo included.
type CellBuffer[T Scalar] struct {
	name string
	id   uint64
	ctx  *Context
	data []T
}

// NewCellBuffer allocates a zeroed buffer on the context grid.
func NewCellBuffer[T Scalar](ctx *Context, name string) (*CellBuffer[T], error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	return &CellBuffer[T]{
		name: name,
		id:   ctx.id(),
		ctx:  ctx,
		data: make([]T, ctx.grid.Len()),
	}, nil
}

// Name returns the binding name.
func (b *CellBuffer[T]) Name() string { return b.name }

// Len returns the padded cell count.
func (b *CellBuffer[T]) Len() int { return len(b.data) }

// Get returns the value at c.
func (b *CellBuffer[T]) Get(c Cell) T { return b.data[c.Index] }

// Set stores v at c.
func (b *CellBuffer[T]) Set(c Cell, v T) { b.data[c.Index] = v }

// Neighbor returns the value of neighbour i of c.
func (b *CellBuffer[T]) Neighbor(c Cell, i int) T {
	x, y := c.grid.Neighbor(c.X, c.Y, i)
	return b.data[c.grid.Index(x, y)]
}

// Point returns the value at p from host memory. It panics when p is outside
// storage; RetrievePoints is the checked form.
func (b *CellBuffer[T]) Point(p lattice.Point) T {
	return b.data[b.ctx.grid.Index(p.X, p.Y)]
}

// Fill sets every value, halo included.
func (b *CellBuffer[T]) Fill(v T) {
	for i := range b.data {
		b.data[i] = v
	}
}

// FillBox sets every value inside box, clipped to storage.
func (b *CellBuffer[T]) FillBox(box lattice.Box, v T) {
	g := b.ctx.grid
	box = box.Intersect(g.Padded())
	if box.Empty() {
		return
	}
	tl, br := box.TopLeft(), box.BottomRight()
	for y := tl.Y; y <= br.Y; y++ {
		row := b.data[g.Index(tl.X, y) : g.Index(br.X, y)+1]
		for i := range row {
			row[i] = v
		}
	}
}

// Retrieve copies the active cells into dst in row-major order from the top
// row. dst must hold Rows*Cols values.
func (b *CellBuffer[T]) Retrieve(dst []T) error {
	g := b.ctx.grid
	if len(dst) != g.Rows()*g.Cols() {
		return fmt.Errorf("%w: %s retrieve needs %d values, got %d", ErrSizeMismatch, b.name, g.Rows()*g.Cols(), len(dst))
	}
	for y := 1; y <= g.Rows(); y++ {
		copy(dst[(y-1)*g.Cols():y*g.Cols()], b.data[g.Index(1, y):g.Index(g.Cols(), y)+1])
	}
	return nil
}

// Insert is the inverse of Retrieve.
func (b *CellBuffer[T]) Insert(src []T) error {
	g := b.ctx.grid
	if len(src) != g.Rows()*g.Cols() {
		return fmt.Errorf("%w: %s insert needs %d values, got %d", ErrSizeMismatch, b.name, g.Rows()*g.Cols(), len(src))
	}
	for y := 1; y <= g.Rows(); y++ {
		copy(b.data[g.Index(1, y):g.Index(g.Cols(), y)+1], src[(y-1)*g.Cols():y*g.Cols()])
	}
	return nil
}

func (b *CellBuffer[T]) kind() bindingKind    { return kindCell }
func (b *CellBuffer[T]) owner() *Context      { return b.ctx }
func (b *CellBuffer[T]) ident() uint64        { return b.id }
func (b *CellBuffer[T]) elemType() string     { return glslType[T]() }
func (b *CellBuffer[T]) hostData() (any, int) { return b.data, 4 * len(b.data) }

// EdgeBuffer holds one value per cell edge: Neighbors values per cell, edge e
// facing neighbour e.
type EdgeBuffer[T Scalar] struct {
	name string
	id   uint64
	ctx  *Context
	k    int
	data []T
}

// NewEdgeBuffer allocates a zeroed edge buffer on the context grid.
func NewEdgeBuffer[T Scalar](ctx *Context, name string) (*EdgeBuffer[T], error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	k := ctx.grid.Neighbors()
	return &EdgeBuffer[T]{
		name: name,
		id:   ctx.id(),
		ctx:  ctx,
		k:    k,
		data: make([]T, ctx.grid.Len()*k),
	}, nil
}

// Name returns the binding name.
func (b *EdgeBuffer[T]) Name() string { return b.name }

// Get returns edge e of c.
func (b *EdgeBuffer[T]) Get(c Cell, e int) T { return b.data[c.Index*b.k+e] }

// Set stores v on edge e of c.
func (b *EdgeBuffer[T]) Set(c Cell, e int, v T) { b.data[c.Index*b.k+e] = v }

// Neighbor returns the value neighbour e of c holds for the edge it shares
// with c.
func (b *EdgeBuffer[T]) Neighbor(c Cell, e int) T {
	x, y := c.grid.Neighbor(c.X, c.Y, e)
	return b.data[c.grid.Index(x, y)*b.k+c.grid.Opposite(e)]
}

// Fill sets every edge value.
func (b *EdgeBuffer[T]) Fill(v T) {
	for i := range b.data {
		b.data[i] = v
	}
}

// Edge returns edge e of the cell at p from host memory.
func (b *EdgeBuffer[T]) Edge(p lattice.Point, e int) T {
	return b.data[b.ctx.grid.Index(p.X, p.Y)*b.k+e]
}

func (b *EdgeBuffer[T]) kind() bindingKind    { return kindEdge }
func (b *EdgeBuffer[T]) owner() *Context      { return b.ctx }
func (b *EdgeBuffer[T]) ident() uint64        { return b.id }
func (b *EdgeBuffer[T]) elemType() string     { return glslType[T]() }
func (b *EdgeBuffer[T]) hostData() (any, int) { return b.data, 4 * len(b.data) }
