package flood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flood-ca/internal/core"
	"flood-ca/pkg/ca"
	"flood-ca/pkg/lattice"
)

func newWorld(t *testing.T, kv map[string]string) *World {
	t.Helper()
	w, err := New(FromMap(kv), nil)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	require.NoError(t, w.Reset(0))
	return w
}

func TestFromMap(t *testing.T) {
	c := FromMap(map[string]string{
		"w":         "40",
		"h":         "30",
		"topology":  "hex",
		"rain":      "0.1, 0.2,bad",
		"gauges":    "3,4;5,x;7,8",
		"source":    "10,11",
		"backend":   "serial",
		"relax":     "2",
		"threshold": "0.4",
	})
	assert.Equal(t, 40, c.Width)
	assert.Equal(t, 30, c.Height)
	assert.Equal(t, lattice.Hexagonal, c.Topology)
	assert.Equal(t, []float32{0.1, 0.2}, c.Params.Rain)
	assert.Equal(t, []lattice.Point{lattice.Pt(3, 4), lattice.Pt(7, 8)}, c.Gauges)
	assert.Equal(t, lattice.Pt(10, 11), c.Source)
	assert.Equal(t, "serial", c.Backend[ca.OptBackend])
	assert.Equal(t, DefaultConfig().Params.Relax, c.Params.Relax)
	assert.Equal(t, 0.4, c.Threshold)

	assert.Equal(t, DefaultConfig(), FromMap(nil))
}

func TestTerrainCatchment(t *testing.T) {
	a := terrain(40, 30, 5, 10, -9999)
	b := terrain(40, 30, 5, 10, -9999)
	assert.Equal(t, a, b)
	assert.Equal(t, float32(-9999), a[0])
	assert.Equal(t, float32(-9999), a[len(a)-1])
	centre := a[15*40+20]
	assert.GreaterOrEqual(t, centre, float32(0))
	assert.LessOrEqual(t, centre, float32(10))
	assert.NotEqual(t, a, terrain(40, 30, 6, 10, -9999))
}

func TestResetDisplay(t *testing.T) {
	w := newWorld(t, map[string]string{"w": "40", "h": "30", "backend": "serial"})
	cells := w.Cells()
	require.Len(t, cells, 40*30)
	assert.Equal(t, uint8(LevelNoData), cells[0])
	mid := cells[15*40+20]
	assert.GreaterOrEqual(t, mid, uint8(LevelDryFirst))
	assert.LessOrEqual(t, mid, uint8(LevelDryLast))

	assert.NotEmpty(t, w.Boxes())
	for _, b := range w.Boxes() {
		assert.True(t, w.Grid().Box().ContainsBox(b))
	}
}

func TestMassConservation(t *testing.T) {
	for _, topo := range []string{"square", "hex"} {
		w := newWorld(t, map[string]string{
			"w": "48", "h": "36", "topology": topo, "backend": "threaded", "workers": "3",
			"rain": "0.002,0.0", "rain_every": "60",
		})
		for i := 0; i < 150; i++ {
			require.NoError(t, w.Step())
		}
		st, err := w.Stats()
		require.NoError(t, err)
		assert.Equal(t, 150, st.Step)
		assert.True(t, st.Wet, topo)
		assert.InEpsilon(t, st.Added, st.Volume, 1e-3, topo)
	}
}

func TestBackendsAgree(t *testing.T) {
	kv := map[string]string{"w": "40", "h": "32", "topology": "hex", "rain": "0.003"}
	depths := map[string][]ca.Real{}
	for _, name := range []string{"serial", "threaded"} {
		kv[ca.OptBackend] = name
		w := newWorld(t, kv)
		for i := 0; i < 40; i++ {
			require.NoError(t, w.Step())
		}
		out := make([]ca.Real, 40*32)
		require.NoError(t, w.depth.Retrieve(out))
		depths[name] = out
	}
	assert.InDeltaSlice(t, depths["serial"], depths["threaded"], 1e-6)
}

func TestFirstStep(t *testing.T) {
	w := newWorld(t, map[string]string{"w": "40", "h": "30", "backend": "serial", "inflow": "1", "rain": "0"})
	require.NoError(t, w.Step())
	st, err := w.Stats()
	require.NoError(t, err)
	area := w.cellArea()
	assert.InDelta(t, area, st.Volume, 1e-3)
	assert.Greater(t, st.MaxDepth, 0.0)
	assert.LessOrEqual(t, st.MaxDepth, 1.0)
	assert.True(t, st.Wet)
	assert.False(t, st.Spilling)

	require.NoError(t, w.Reset(0))
	st, err = w.Stats()
	require.NoError(t, err)
	assert.Zero(t, st.Volume)
	assert.Zero(t, st.Step)
}

func TestRainRaisesSpillAlarm(t *testing.T) {
	w := newWorld(t, map[string]string{"w": "40", "h": "30", "backend": "serial", "inflow": "0", "rain": "0.01"})
	require.NoError(t, w.Step())
	st, err := w.Stats()
	require.NoError(t, err)
	assert.True(t, st.Wet)
	assert.True(t, st.Spilling)
	assert.False(t, w.alarms.IsAnyActivated())
}

func TestGauges(t *testing.T) {
	w := newWorld(t, map[string]string{"w": "40", "h": "30", "backend": "serial", "gauges": "20,15;99,99;20,22", "rain": "0.05"})
	require.NoError(t, w.Step())
	readings, err := w.Gauges()
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, lattice.Pt(20, 15), readings[0].Point)
	assert.Equal(t, lattice.Pt(20, 22), readings[1].Point)
	for _, r := range readings {
		assert.Greater(t, r.Depth, float32(0))
	}
}

func TestGaugeOutflowAtSource(t *testing.T) {
	w := newWorld(t, map[string]string{
		"w": "40", "h": "30", "backend": "serial",
		"inflow": "1", "rain": "0", "gauges": "20,6",
	})
	require.NoError(t, w.Step())
	readings, err := w.Gauges()
	require.NoError(t, err)
	require.Len(t, readings, 1)
	r := readings[0]
	assert.Greater(t, r.Outflow, float32(0))
	// Dry neighbours send nothing back, so the first step splits the inflow.
	assert.InDelta(t, 1, r.Depth+r.Outflow, 1e-5)
}

func TestRegistered(t *testing.T) {
	factory, ok := core.Sims()["flood"]
	require.True(t, ok)
	sim, err := factory(map[string]string{"w": "24", "h": "16", "backend": "serial"})
	require.NoError(t, err)
	defer sim.Close()
	assert.Equal(t, "flood", sim.Name())
	assert.Equal(t, core.Size{W: 24, H: 16}, sim.Size())
	require.NoError(t, sim.Reset(3))
	require.NoError(t, sim.Step())

	_, err = factory(map[string]string{"backend": "quantum"})
	assert.ErrorIs(t, err, ca.ErrUnknownBackend)
}

func TestPalette(t *testing.T) {
	w := newWorld(t, map[string]string{"w": "16", "h": "16", "backend": "serial"})
	p := w.Palette()
	require.Len(t, p, 256)
	assert.Equal(t, uint8(0), p[LevelNoData].R)
	assert.Greater(t, p[LevelWaterFirst].B, p[LevelWaterFirst].R)
}

func TestStatus(t *testing.T) {
	w := newWorld(t, map[string]string{"w": "24", "h": "20", "backend": "serial"})
	require.NoError(t, w.Step())
	lines := w.Status()
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, lines[0], "serial backend")
	assert.Equal(t, "step 1", lines[1])
	assert.Len(t, w.GaugePoints(), 2)
}
