package life

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flood-ca/pkg/ca"
	"flood-ca/pkg/lattice"
)

func alive(t *testing.T, l *Life) map[lattice.Point]bool {
	t.Helper()
	out := map[lattice.Point]bool{}
	for y := 1; y <= l.cfg.Height; y++ {
		for x := 1; x <= l.cfg.Width; x++ {
			if l.Cells()[(y-1)*l.cfg.Width+x-1] == 1 {
				out[lattice.Pt(x, y)] = true
			}
		}
	}
	return out
}

func TestPairOscillation(t *testing.T) {
	for _, backend := range []string{"serial", "threaded"} {
		l, err := New(FromMap(map[string]string{"w": "7", "h": "7", "backend": backend}))
		require.NoError(t, err)
		defer l.Close()
		require.NoError(t, l.Reset(1))

		a, b := lattice.Pt(3, 4), lattice.Pt(4, 4)
		l.cur.Fill(0)
		require.NoError(t, ca.InsertPoints(l.cur, lattice.NewPointList(a, b), []ca.State{1, 1}))

		// The two cells adjacent to both a and b.
		common := map[lattice.Point]bool{}
		g := l.grid
		for i := 0; i < g.Neighbors(); i++ {
			x, y := g.Neighbor(a.X, a.Y, i)
			for j := 0; j < g.Neighbors(); j++ {
				if bx, by := g.Neighbor(b.X, b.Y, j); bx == x && by == y {
					common[lattice.Pt(x, y)] = true
				}
			}
		}
		require.Len(t, common, 2)

		require.NoError(t, l.Step())
		assert.Equal(t, common, alive(t, l), backend)
		require.NoError(t, l.Step())
		assert.Equal(t, map[lattice.Point]bool{a: true, b: true}, alive(t, l), backend)
	}
}

func TestLoneCellDies(t *testing.T) {
	l, err := New(FromMap(map[string]string{"w": "5", "h": "5", "backend": "serial"}))
	require.NoError(t, err)
	defer l.Close()
	l.cur.Fill(0)
	require.NoError(t, ca.InsertPoints(l.cur, lattice.NewPointList(lattice.Pt(3, 3)), []ca.State{1}))
	require.NoError(t, l.Step())
	assert.Empty(t, alive(t, l))
}

func TestResetDensity(t *testing.T) {
	l, err := New(FromMap(map[string]string{"w": "40", "h": "40", "density": "0.5", "backend": "serial"}))
	require.NoError(t, err)
	defer l.Close()
	require.NoError(t, l.Reset(9))
	n := len(alive(t, l))
	assert.InDelta(t, 800, n, 120)
	assert.Len(t, l.Palette(), 2)
}

func TestParameters(t *testing.T) {
	l, err := New(FromMap(map[string]string{"w": "12", "h": "8", "density": "0.25", "backend": "serial"}))
	require.NoError(t, err)
	defer l.Close()
	snap := l.Parameters()
	p, ok := snap.Lookup("density")
	require.True(t, ok)
	assert.Equal(t, "0.25", p.Value)
	p, ok = snap.Lookup("w")
	require.True(t, ok)
	assert.Equal(t, "12", p.Value)
}
