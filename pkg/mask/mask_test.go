package mask

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flood-ca/pkg/ca"
	"flood-ca/pkg/core"
	"flood-ca/pkg/lattice"
)

func TestBitsRoundTrip(t *testing.T) {
	rng := core.NewRNG(3).Source()
	for i := 0; i < 2000; i++ {
		v := ca.State(rng.Uint32())
		start := rng.IntN(32)
		stop := start + rng.IntN(33-start)
		assert.Equal(t, v, WriteBits(ReadBits(v, start, stop), v, start, stop), "v=%#x [%d,%d)", v, start, stop)
	}
}

func TestReadWriteBits(t *testing.T) {
	assert.Equal(t, ca.State(0b011), ReadBits(0b1010_1100, 2, 5))
	assert.Equal(t, ca.State(0b1011_0100), WriteBits(0b101, 0b1010_1100, 2, 5))
	assert.Equal(t, ca.State(0b1111_0000), WriteBits(0xff, 0b1110_0000, 4, 5))
	assert.Equal(t, ca.State(0xdeadbeef), ReadBits(0xdeadbeef, 0, 32))
	assert.Equal(t, ca.State(7), WriteBits(9, 7, 3, 3))
}

func TestEncode(t *testing.T) {
	m := Encode(true, []bool{true, true, true, true})
	assert.True(t, HasData(m))
	assert.False(t, IsInnerBoundary(m, 4))
	assert.False(t, IsOuterBoundary(m, 4))
	assert.Equal(t, ca.State(0b11111), m)

	m = Encode(true, []bool{true, false, true, true, true, true})
	assert.True(t, IsInnerBoundary(m, 6))
	assert.False(t, IsOuterBoundary(m, 6))
	assert.False(t, NeighborHasData(m, 1))
	assert.True(t, NeighborHasData(m, 5))

	m = Encode(false, []bool{false, false, true, false})
	assert.False(t, HasData(m))
	assert.False(t, IsInnerBoundary(m, 4))
	assert.True(t, IsOuterBoundary(m, 4))

	assert.Equal(t, ca.State(0), Encode(false, make([]bool, 6)))
	assert.Equal(t, 9, Bits(6))
}

func TestSummarizeIsIdempotent(t *testing.T) {
	rng := core.NewRNG(8).Source()
	for _, k := range []int{4, 6} {
		for i := 0; i < 200; i++ {
			m := ca.State(rng.Uint32()) & rangeMask(0, Bits(k))
			once := Summarize(m, k)
			assert.Equal(t, once, Summarize(once, k))
			assert.Equal(t, ReadBits(m, 0, k+1), ReadBits(once, 0, k+1))
		}
	}
}

func contexts(t *testing.T, g *lattice.Grid) map[string]*ca.Context {
	t.Helper()
	out := map[string]*ca.Context{}
	for _, name := range ca.Backends() {
		ctx, err := ca.NewContext(g, ca.Options{ca.OptBackend: name}, nil)
		if errors.Is(err, ca.ErrGLUnavailable) {
			continue
		}
		require.NoError(t, err, name)
		t.Cleanup(func() { ctx.Close() })
		out[name] = ctx
	}
	return out
}

func TestComputeMatchesEncode(t *testing.T) {
	const noData = ca.Real(-9999)
	for _, topo := range []lattice.Topology{lattice.Square, lattice.Hexagonal} {
		g, err := lattice.NewGrid(lattice.Spec{Origin: lattice.NewCoo(0, 0), CellSize: 2, Rows: 9, Cols: 12, Topology: topo})
		require.NoError(t, err)

		for name, ctx := range contexts(t, g) {
			elev, err := ca.NewCellBuffer[ca.Real](ctx, "elev")
			require.NoError(t, err)
			full, err := ca.NewCellBuffer[ca.State](ctx, "full")
			require.NoError(t, err)
			simple, err := ca.NewCellBuffer[ca.State](ctx, "simple")
			require.NoError(t, err)

			vals := make([]ca.Real, g.Rows()*g.Cols())
			core.FillMasked(core.NewRNG(21).Source(), vals, 0.6, 5, noData)
			require.NoError(t, elev.Insert(vals))

			bl := lattice.BoxList{g.Box()}
			require.NoError(t, Compute(ctx, bl, elev, noData, full))
			require.NoError(t, ComputeSimple(ctx, bl, elev, noData, simple))

			has := func(x, y int) bool {
				p := lattice.Pt(x, y)
				return g.InDomain(p) && elev.Point(p) != noData
			}
			for y := 1; y <= g.Rows(); y++ {
				for x := 1; x <= g.Cols(); x++ {
					nbs := make([]bool, g.Neighbors())
					for i := range nbs {
						nbs[i] = has(g.Neighbor(x, y, i))
					}
					want := Encode(has(x, y), nbs)
					p := lattice.Pt(x, y)
					assert.Equal(t, want, full.Point(p), "%s %v %v", name, topo, p)
					assert.Equal(t, want&1, simple.Point(p), "%s %v %v", name, topo, p)
				}
			}
		}
	}
}
