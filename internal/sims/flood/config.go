package flood

import (
	"strconv"
	"strings"

	"flood-ca/pkg/ca"
	"flood-ca/pkg/lattice"
)

// Params holds the numerical knobs of the flood scheme.
type Params struct {
	// Inflow is the depth added at the source cell each step.
	Inflow float32
	// Rain lists per-cell rainfall per step; entry i applies from step
	// i*RainEvery on, the last entry thereafter.
	Rain      []float32
	RainEvery int
	// Relax bounds how much of the surface difference moves per step.
	Relax float32
	// Tolerance is the depth below which a cell counts as dry.
	Tolerance float32
	// Relief is the elevation range of the generated terrain.
	Relief float32
}

// Config controls the flood simulation.
type Config struct {
	Width    int
	Height   int
	CellSize float64
	Topology lattice.Topology

	Seed   int64
	NoData float32

	Source lattice.Point
	Gauges []lattice.Point

	// Threshold and MinSide drive the decomposition of the catchment.
	Threshold float64
	MinSide   int

	Backend ca.Options

	Params Params
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:     192,
		Height:    144,
		CellSize:  10,
		Topology:  lattice.Square,
		Seed:      1337,
		NoData:    -9999,
		Source:    lattice.Pt(96, 30),
		Gauges:    []lattice.Point{lattice.Pt(96, 72), lattice.Pt(96, 110)},
		Threshold: 0.75,
		MinSide:   8,
		Backend:   ca.Options{ca.OptBackend: ca.DefaultBackend},
		Params: Params{
			Inflow:    0.5,
			Rain:      []float32{0.002, 0.004, 0.001, 0},
			RainEvery: 250,
			Relax:     0.5,
			Tolerance: 1e-3,
			Relief:    40,
		},
	}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	sized := false
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
			sized = true
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
			sized = true
		}
	}
	if sized {
		c.Source = lattice.Pt(c.Width/2, max(c.Height/5, 1))
		c.Gauges = []lattice.Point{lattice.Pt(c.Width/2, c.Height/2), lattice.Pt(c.Width/2, c.Height*3/4)}
	}
	if v, ok := cfg["cell"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			c.CellSize = parsed
		}
	}
	if v, ok := cfg["topology"]; ok {
		if parsed, err := lattice.ParseTopology(v); err == nil {
			c.Topology = parsed
		}
	}
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	if v, ok := cfg["nodata"]; ok {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			c.NoData = float32(parsed)
		}
	}
	if v, ok := cfg["source"]; ok {
		if p, ok := parsePoint(v); ok {
			c.Source = p
		}
	}
	if v, ok := cfg["gauges"]; ok {
		var pts []lattice.Point
		for _, part := range strings.Split(v, ";") {
			if p, ok := parsePoint(part); ok {
				pts = append(pts, p)
			}
		}
		if len(pts) > 0 {
			c.Gauges = pts
		}
	}
	if v, ok := cfg["threshold"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.Threshold = parsed
		}
	}
	if v, ok := cfg["min_side"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.MinSide = parsed
		}
	}
	for _, key := range []string{ca.OptBackend, ca.OptWorkers, ca.OptWorkgroup} {
		if v, ok := cfg[key]; ok && v != "" {
			c.Backend[key] = v
		}
	}
	if v, ok := cfg["inflow"]; ok {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil && parsed >= 0 {
			c.Params.Inflow = float32(parsed)
		}
	}
	if v, ok := cfg["rain"]; ok {
		var rain []float32
		for _, part := range strings.Split(v, ",") {
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(part), 32); err == nil && parsed >= 0 {
				rain = append(rain, float32(parsed))
			}
		}
		if len(rain) > 0 {
			c.Params.Rain = rain
		}
	}
	if v, ok := cfg["rain_every"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Params.RainEvery = parsed
		}
	}
	if v, ok := cfg["relax"]; ok {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil && parsed > 0 && parsed <= 1 {
			c.Params.Relax = float32(parsed)
		}
	}
	if v, ok := cfg["tolerance"]; ok {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil && parsed >= 0 {
			c.Params.Tolerance = float32(parsed)
		}
	}
	if v, ok := cfg["relief"]; ok {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil && parsed > 0 {
			c.Params.Relief = float32(parsed)
		}
	}
	return c
}

// parsePoint reads "x,y".
func parsePoint(s string) (lattice.Point, bool) {
	xs, ys, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return lattice.Point{}, false
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return lattice.Point{}, false
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return lattice.Point{}, false
	}
	return lattice.Pt(x, y), true
}
