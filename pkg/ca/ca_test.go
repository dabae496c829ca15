package ca

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flood-ca/pkg/lattice"
)

func testGrid(t *testing.T, cols, rows int, topo lattice.Topology) *lattice.Grid {
	t.Helper()
	g, err := lattice.NewGrid(lattice.Spec{
		Origin:   lattice.NewCoo(0, 0),
		CellSize: 1,
		Rows:     rows,
		Cols:     cols,
		Topology: topo,
	})
	require.NoError(t, err)
	return g
}

// contextsFor opens one context per backend compiled into the build. The gl
// backend is skipped when the machine cannot provide a context.
func contextsFor(t *testing.T, g *lattice.Grid) map[string]*Context {
	t.Helper()
	out := map[string]*Context{}
	for _, name := range Backends() {
		ctx, err := NewContext(g, Options{OptBackend: name, OptWorkers: "3"}, nil)
		if name == "gl" && errors.Is(err, ErrGLUnavailable) {
			t.Logf("skipping gl backend: %v", err)
			continue
		}
		require.NoError(t, err, name)
		t.Cleanup(func() { ctx.Close() })
		out[name] = ctx
	}
	require.Contains(t, out, "serial")
	return out
}

func TestNewContextOptions(t *testing.T) {
	g := testGrid(t, 4, 4, lattice.Square)

	_, err := NewContext(g, Options{OptBackend: "quantum"}, nil)
	assert.ErrorIs(t, err, ErrUnknownBackend)

	_, err = NewContext(g, Options{OptBackend: "threaded", OptWorkers: "zero"}, nil)
	assert.ErrorIs(t, err, ErrOption)

	_, err = NewContext(g, Options{OptBackend: "threaded", OptWorkers: "-2"}, nil)
	assert.ErrorIs(t, err, ErrOption)

	ctx, err := NewContext(g, Options{OptBackend: "serial", OptWorkgroup: "not-used-here", "device": "1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "serial", ctx.Backend())
	require.NoError(t, ctx.Close())

	ctx, err = NewContext(g, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBackend, ctx.Backend())
	require.NoError(t, ctx.Close())
	assert.ErrorIs(t, ctx.Dispatch(lattice.BoxList{g.Box()}, &Func{Name: "noop", Update: func(Cell) {}}), ErrClosed)
}

func TestBindingNames(t *testing.T) {
	g := testGrid(t, 4, 4, lattice.Square)
	ctx, err := NewContext(g, Options{OptBackend: "serial"}, nil)
	require.NoError(t, err)
	defer ctx.Close()

	bad := []string{
		"", "1abc", "with space", "caDepth", "ca_depth", "CA_STRIDE", "gl_Foo", "a__b",
		"p", "idx", "main", "float", "in", "out", "buffer", "uniform", "max",
	}
	for _, name := range bad {
		_, err := NewCellBuffer[Real](ctx, name)
		assert.ErrorIs(t, err, ErrName, name)
	}
	for _, name := range []string{"depth", "catchment", "capacity", "cascade", "inflow", "pressure", "ids"} {
		_, err := NewCellBuffer[Real](ctx, name)
		assert.NoError(t, err, name)
	}

	noop := &Func{Name: "noop", Update: func(Cell) {}}
	assert.ErrorIs(t, ctx.Dispatch(lattice.BoxList{g.Box()}, noop, Uniform("idx", Real(1))), ErrName)
	assert.NoError(t, ctx.Dispatch(lattice.BoxList{g.Box()}, noop, Uniform("capacity", Real(1))))
}

func TestDispatchRejectsForeignBindings(t *testing.T) {
	g := testGrid(t, 4, 4, lattice.Square)
	a, err := NewContext(g, Options{OptBackend: "serial"}, nil)
	require.NoError(t, err)
	defer a.Close()
	b, err := NewContext(g, Options{OptBackend: "serial"}, nil)
	require.NoError(t, err)
	defer b.Close()

	buf, err := NewCellBuffer[Real](b, "v")
	require.NoError(t, err)
	err = a.Dispatch(lattice.BoxList{g.Box()}, &Func{Name: "noop", Update: func(Cell) {}}, buf)
	assert.ErrorIs(t, err, ErrForeignBinding)
}

func TestDispatchClipsToActiveLattice(t *testing.T) {
	g := testGrid(t, 5, 4, lattice.Square)
	for name, ctx := range contextsFor(t, g) {
		buf, err := NewCellBuffer[State](ctx, "hits")
		require.NoError(t, err)
		fn := &Func{
			Name:   "count",
			Update: func(c Cell) { buf.Set(c, buf.Get(c)+1) },
			Kernel: "hits[idx] += 1u;",
		}
		require.NoError(t, ctx.Dispatch(lattice.BoxList{lattice.Rect(-3, -3, 40, 40)}, fn, buf), name)

		for y := 0; y <= g.Rows()+1; y++ {
			for x := 0; x <= g.Cols()+1; x++ {
				want := State(0)
				if g.InDomain(lattice.Pt(x, y)) {
					want = 1
				}
				assert.Equal(t, want, buf.Point(lattice.Pt(x, y)), "%s (%d,%d)", name, x, y)
			}
		}
	}
}

func TestCPUBackendsNeedUpdate(t *testing.T) {
	g := testGrid(t, 3, 3, lattice.Square)
	for _, name := range []string{"serial", "threaded"} {
		ctx, err := NewContext(g, Options{OptBackend: name}, nil)
		require.NoError(t, err)
		err = ctx.Dispatch(lattice.BoxList{g.Box()}, &Func{Name: "gpu-only", Kernel: "return;"})
		assert.ErrorIs(t, err, ErrNoUpdate, name)
		ctx.Close()
	}
}

func TestThreadedPanicsOnCaller(t *testing.T) {
	g := testGrid(t, 8, 8, lattice.Square)
	ctx, err := NewContext(g, Options{OptBackend: "threaded", OptWorkers: "4"}, nil)
	require.NoError(t, err)
	defer ctx.Close()

	fn := &Func{Name: "boom", Update: func(c Cell) {
		if c.X == 5 && c.Y == 6 {
			panic("boom")
		}
	}}
	assert.PanicsWithValue(t, "boom", func() {
		_ = ctx.Dispatch(lattice.BoxList{g.Box()}, fn)
	})
}

func TestRowBands(t *testing.T) {
	bands := rowBands(lattice.Rect(2, 3, 9, 12), 4)
	require.Len(t, bands, 4)
	assert.Equal(t, lattice.Rect(2, 3, 9, 5), bands[0])
	assert.Equal(t, lattice.Rect(2, 6, 9, 8), bands[1])
	assert.Equal(t, lattice.Rect(2, 9, 9, 10), bands[2])
	assert.Equal(t, lattice.Rect(2, 11, 9, 12), bands[3])

	assert.Len(t, rowBands(lattice.Rect(1, 1, 5, 2), 8), 2)
	assert.Len(t, rowBands(lattice.Rect(1, 1, 5, 5), 1), 1)
}
