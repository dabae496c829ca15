package ca

import "fmt"

// Table is a fixed-size constant array visible to every cell. It is filled
// from host memory between dispatches and read-only during one.
type Table[T Scalar] struct {
	name    string
	id      uint64
	ctx     *Context
	data    []T
	version uint64
}

// NewTable allocates a zeroed table of size entries.
func NewTable[T Scalar](ctx *Context, name string, size int) (*Table[T], error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: table %s size %d", ErrOption, name, size)
	}
	return &Table[T]{name: name, id: ctx.id(), ctx: ctx, data: make([]T, size)}, nil
}

// Name returns the binding name.
func (t *Table[T]) Name() string { return t.name }

// Len returns the number of entries.
func (t *Table[T]) Len() int { return len(t.data) }

// At returns entry i.
func (t *Table[T]) At(i int) T { return t.data[i] }

// Update copies src into entries [start, stop). The copy is clipped to the
// shorter of the range, src and the table; nothing happens when that leaves
// no values or start is negative.
func (t *Table[T]) Update(start, stop int, src []T) {
	if start < 0 {
		return
	}
	n := min(stop-start, len(src), len(t.data)-start)
	if n <= 0 {
		return
	}
	copy(t.data[start:start+n], src[:n])
	t.version++
}

func (t *Table[T]) tableVersion() uint64 { return t.version }

func (t *Table[T]) kind() bindingKind    { return kindTable }
func (t *Table[T]) owner() *Context      { return t.ctx }
func (t *Table[T]) ident() uint64        { return t.id }
func (t *Table[T]) elemType() string     { return glslType[T]() }
func (t *Table[T]) hostData() (any, int) { return t.data, 4 * len(t.data) }
