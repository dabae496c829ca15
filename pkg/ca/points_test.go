package ca

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flood-ca/pkg/lattice"
)

func TestPointsRoundTrip(t *testing.T) {
	g := testGrid(t, 8, 5, lattice.Hexagonal)
	ctx, err := NewContext(g, Options{OptBackend: "serial"}, nil)
	require.NoError(t, err)
	defer ctx.Close()

	buf, err := NewCellBuffer[State](ctx, "ids")
	require.NoError(t, err)
	pl := lattice.NewPointList(lattice.Pt(1, 1), lattice.Pt(8, 5), lattice.Pt(0, 0), lattice.Pt(3, 2))
	require.NoError(t, InsertPoints(buf, pl, []State{10, 20, 30, 40}))

	out := make([]State, pl.Len())
	require.NoError(t, RetrievePoints(buf, pl, out))
	assert.Equal(t, []State{10, 20, 30, 40}, out)
	assert.Equal(t, State(30), buf.Point(lattice.Pt(0, 0)))

	dup := lattice.NewPointList(lattice.Pt(2, 2), lattice.Pt(2, 2))
	require.NoError(t, InsertPoints(buf, dup, []State{1, 2}))
	assert.Equal(t, State(2), buf.Point(lattice.Pt(2, 2)))
}

func TestPointsErrors(t *testing.T) {
	g := testGrid(t, 4, 4, lattice.Square)
	ctx, err := NewContext(g, Options{OptBackend: "serial"}, nil)
	require.NoError(t, err)
	defer ctx.Close()

	buf, err := NewCellBuffer[Real](ctx, "v")
	require.NoError(t, err)
	pl := lattice.NewPointList(lattice.Pt(1, 1), lattice.Pt(2, 2))

	assert.ErrorIs(t, RetrievePoints(buf, pl, make([]Real, 3)), ErrSizeMismatch)
	assert.ErrorIs(t, InsertPoints(buf, pl, []Real{1}), ErrSizeMismatch)

	far := lattice.NewPointList(lattice.Pt(6, 1))
	assert.ErrorIs(t, RetrievePoints(buf, far, make([]Real, 1)), ErrOutOfGrid)
	assert.ErrorIs(t, InsertPoints(buf, lattice.NewPointList(lattice.Pt(-1, 2)), []Real{1}), ErrOutOfGrid)
}

func TestRetrieveInsertWholeGrid(t *testing.T) {
	g := testGrid(t, 3, 2, lattice.Square)
	ctx, err := NewContext(g, Options{OptBackend: "serial"}, nil)
	require.NoError(t, err)
	defer ctx.Close()

	buf, err := NewCellBuffer[Real](ctx, "v")
	require.NoError(t, err)
	buf.Fill(-1)
	require.NoError(t, buf.Insert([]Real{1, 2, 3, 4, 5, 6}))
	assert.Equal(t, Real(6), buf.Point(lattice.Pt(3, 2)))
	assert.Equal(t, Real(-1), buf.Point(lattice.Pt(0, 2)))

	out := make([]Real, 6)
	require.NoError(t, buf.Retrieve(out))
	assert.Equal(t, []Real{1, 2, 3, 4, 5, 6}, out)
	assert.ErrorIs(t, buf.Retrieve(make([]Real, 5)), ErrSizeMismatch)
	assert.ErrorIs(t, buf.Insert(nil), ErrSizeMismatch)
}
