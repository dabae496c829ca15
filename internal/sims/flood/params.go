package flood

import "flood-ca/internal/core"

// Live-adjustable keys. They match the FromMap keys.
const (
	keyInflow    = "inflow"
	keyRelax     = "relax"
	keyTolerance = "tolerance"
	keyRainEvery = "rain_every"
)

var controls = []core.ParameterControl{
	{Key: keyInflow, Label: "Source inflow", Type: core.ParamTypeFloat, Step: 0.1, Min: 0, Max: 5},
	{Key: keyRelax, Label: "Relaxation", Type: core.ParamTypeFloat, Step: 0.05, Min: 0.05, Max: 1},
	{Key: keyTolerance, Label: "Dry tolerance", Type: core.ParamTypeFloat, Step: 0.0005, Min: 0, Max: 0.05},
	{Key: keyRainEvery, Label: "Rain period", Type: core.ParamTypeInt, Step: 25, Min: 1, Max: 5000},
}

func control(key string) (core.ParameterControl, bool) {
	for _, c := range controls {
		if c.Key == key {
			return c, true
		}
	}
	return core.ParameterControl{}, false
}

// ParameterControls lists the flow parameters that may change between steps.
// Each step rebuilds its uniforms from the config, so changes apply on every
// backend from the next step.
func (w *World) ParameterControls() []core.ParameterControl {
	return append([]core.ParameterControl(nil), controls...)
}

// SetFloatParameter sets a float control, clamped to its bounds.
func (w *World) SetFloatParameter(key string, value float64) bool {
	c, ok := control(key)
	if !ok || c.Type != core.ParamTypeFloat {
		return false
	}
	v := float32(c.Clamp(value))
	switch key {
	case keyInflow:
		w.cfg.Params.Inflow = v
	case keyRelax:
		w.cfg.Params.Relax = v
	case keyTolerance:
		w.cfg.Params.Tolerance = v
	}
	w.ctx.Logger().Printf("flood: %s = %v", key, v)
	return true
}

// SetIntParameter sets an integer control, clamped to its bounds.
func (w *World) SetIntParameter(key string, value int) bool {
	c, ok := control(key)
	if !ok || c.Type != core.ParamTypeInt {
		return false
	}
	// rain_every is the only int control.
	v := int(c.Clamp(float64(value)))
	w.cfg.Params.RainEvery = v
	w.ctx.Logger().Printf("flood: %s = %d", key, v)
	return true
}

// Parameters reports the configuration the world is running with.
func (w *World) Parameters() core.ParameterSnapshot {
	cfg := w.cfg
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{
			Name: "Lattice",
			Params: []core.Parameter{
				core.IntParam("w", "Width", int64(cfg.Width)),
				core.IntParam("h", "Height", int64(cfg.Height)),
				core.TextParam("topology", "Topology", cfg.Topology.String()),
				core.IntParam("seed", "Seed", cfg.Seed),
				core.TextParam("backend", "Backend", w.ctx.Backend()),
			},
		},
		{
			Name: "Decomposition",
			Params: []core.Parameter{
				core.FloatParam("threshold", "Fill threshold", cfg.Threshold),
				core.IntParam("min_side", "Minimum side", int64(cfg.MinSide)),
				core.IntParam("boxes", "Boxes", int64(w.boxes.Len())),
			},
		},
		{
			Name: "Flow",
			Params: []core.Parameter{
				core.FloatParam(keyInflow, "Source inflow", cfg.Params.Inflow),
				core.FloatParam(keyRelax, "Relaxation", cfg.Params.Relax),
				core.FloatParam(keyTolerance, "Dry tolerance", cfg.Params.Tolerance),
				core.IntParam(keyRainEvery, "Rain period", int64(cfg.Params.RainEvery)),
			},
		},
	}}
}
