package flood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flood-ca/internal/core"
)

func TestSetFloatParameterRelax(t *testing.T) {
	w := newWorld(t, map[string]string{"w": "24", "h": "16", "backend": "serial"})

	require.True(t, w.SetFloatParameter("relax", 0.25))
	assert.Equal(t, float32(0.25), w.cfg.Params.Relax)

	require.True(t, w.SetFloatParameter("relax", 1.5), "values above max are clamped")
	assert.Equal(t, float32(1), w.cfg.Params.Relax)

	require.True(t, w.SetFloatParameter("tolerance", -1))
	assert.Equal(t, float32(0), w.cfg.Params.Tolerance)

	assert.False(t, w.SetFloatParameter("relief", 3), "terrain relief is fixed after reset")
	assert.False(t, w.SetFloatParameter("rain_every", 3))
	assert.False(t, w.SetIntParameter("relax", 1))
}

func TestSetIntParameterRainEvery(t *testing.T) {
	w := newWorld(t, map[string]string{"w": "24", "h": "16", "backend": "serial"})

	require.True(t, w.SetIntParameter("rain_every", 75))
	assert.Equal(t, 75, w.cfg.Params.RainEvery)
	require.True(t, w.SetIntParameter("rain_every", 0))
	assert.Equal(t, 1, w.cfg.Params.RainEvery)
}

func TestParameterChangesApplyNextStep(t *testing.T) {
	for _, backend := range []string{"serial", "threaded"} {
		w := newWorld(t, map[string]string{"w": "40", "h": "30", "backend": backend, "inflow": "0", "rain": "0"})

		require.NoError(t, w.Step())
		st, err := w.Stats()
		require.NoError(t, err)
		assert.Zero(t, st.Added, backend)
		assert.Zero(t, st.Volume, backend)

		require.True(t, w.SetFloatParameter("inflow", 0.5))
		require.NoError(t, w.Step())
		st, err = w.Stats()
		require.NoError(t, err)
		area := w.cellArea()
		assert.InDelta(t, 0.5*area, st.Added, 1e-9, backend)
		assert.InEpsilon(t, st.Added, st.Volume, 1e-4, backend)
	}
}

func TestParametersSnapshot(t *testing.T) {
	w := newWorld(t, map[string]string{"w": "24", "h": "16", "backend": "serial", "topology": "hex"})
	require.True(t, w.SetFloatParameter("inflow", 1.2))

	snap := w.Parameters()
	p, ok := snap.Lookup("inflow")
	require.True(t, ok)
	assert.Equal(t, core.ParamTypeFloat, p.Type)
	assert.Equal(t, "1.2", p.Value)

	p, ok = snap.Lookup("topology")
	require.True(t, ok)
	assert.Equal(t, "hexagonal", p.Value)

	p, ok = snap.Lookup("backend")
	require.True(t, ok)
	assert.Equal(t, "serial", p.Value)

	for _, c := range w.ParameterControls() {
		_, ok := snap.Lookup(c.Key)
		assert.True(t, ok, c.Key)
	}
}
