// Package life runs the hexagonal Game of Life rule B2/S34 on the CA
// substrate. Cells outside the lattice stay dead.
package life

import (
	"fmt"
	"image/color"
	"strconv"

	"flood-ca/internal/core"
	"flood-ca/internal/render"
	"flood-ca/pkg/ca"
	pcore "flood-ca/pkg/core"
	"flood-ca/pkg/lattice"
)

// Config controls the board.
type Config struct {
	Width   int
	Height  int
	Density float64
	Backend ca.Options
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{Width: 160, Height: 120, Density: 0.3, Backend: ca.Options{ca.OptBackend: ca.DefaultBackend}}
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["density"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed <= 1 {
			c.Density = parsed
		}
	}
	for _, key := range []string{ca.OptBackend, ca.OptWorkers, ca.OptWorkgroup} {
		if v, ok := cfg[key]; ok && v != "" {
			c.Backend[key] = v
		}
	}
	return c
}

// Life is a hexagonal Life board.
type Life struct {
	cfg      Config
	grid     *lattice.Grid
	ctx      *ca.Context
	cur, nxt *ca.CellBuffer[ca.State]
	host     []ca.State
	display  []uint8
}

// New returns a board with the provided configuration.
func New(cfg Config) (*Life, error) {
	g, err := lattice.NewGrid(lattice.Spec{
		Origin:   lattice.NewCoo(0, 0),
		CellSize: 1,
		Rows:     cfg.Height,
		Cols:     cfg.Width,
		Topology: lattice.Hexagonal,
	})
	if err != nil {
		return nil, err
	}
	ctx, err := ca.NewContext(g, cfg.Backend, nil)
	if err != nil {
		return nil, err
	}
	l := &Life{
		cfg:     cfg,
		grid:    g,
		ctx:     ctx,
		host:    make([]ca.State, cfg.Width*cfg.Height),
		display: make([]uint8, cfg.Width*cfg.Height),
	}
	if l.cur, err = ca.NewCellBuffer[ca.State](ctx, "alive"); err != nil {
		ctx.Close()
		return nil, err
	}
	if l.nxt, err = ca.NewCellBuffer[ca.State](ctx, "born"); err != nil {
		ctx.Close()
		return nil, err
	}
	return l, nil
}

// Name returns the simulation identifier.
func (l *Life) Name() string { return "life" }

// Size returns the grid dimensions.
func (l *Life) Size() core.Size { return core.Size{W: l.cfg.Width, H: l.cfg.Height} }

// Cells exposes the current grid values.
func (l *Life) Cells() []uint8 { return l.display }

// Palette maps dead and live cells to colours.
func (l *Life) Palette() []color.RGBA { return render.Ramp(2, 130, 70, 12, 80) }

// Close releases the execution backend.
func (l *Life) Close() error { return l.ctx.Close() }

// Parameters reports the board configuration.
func (l *Life) Parameters() core.ParameterSnapshot {
	return core.ParameterSnapshot{Groups: []core.ParameterGroup{{
		Name: "Board",
		Params: []core.Parameter{
			core.IntParam("w", "Width", int64(l.cfg.Width)),
			core.IntParam("h", "Height", int64(l.cfg.Height)),
			core.FloatParam("density", "Density", l.cfg.Density),
			core.TextParam("backend", "Backend", l.ctx.Backend()),
		},
	}}}
}

// Reset randomizes the board using the provided seed.
func (l *Life) Reset(seed int64) error {
	rng := pcore.NewRNG(seed).Source()
	pcore.FillMasked(rng, l.host, l.cfg.Density, 1, 0)
	l.cur.Fill(0)
	l.nxt.Fill(0)
	if err := l.cur.Insert(l.host); err != nil {
		return err
	}
	return l.refresh()
}

// Step advances the simulation by one generation.
func (l *Life) Step() error {
	src, dst := l.cur, l.nxt
	fn := &ca.Func{
		Name: "life",
		Update: func(c ca.Cell) {
			n := ca.State(0)
			for i := 0; i < c.Neighbors(); i++ {
				n += src.Neighbor(c, i)
			}
			alive := src.Get(c) == 1
			var next ca.State
			if (alive && (n == 3 || n == 4)) || (!alive && n == 2) {
				next = 1
			}
			dst.Set(c, next)
		},
		Kernel: fmt.Sprintf(`
	uint n = 0u;
	for (int i = 0; i < CA_NEIGHBORS; i++) {
		n += %[1]s[caIndex(caNeighbor(p, i))];
	}
	bool alive = %[1]s[idx] == 1u;
	%[2]s[idx] = ((alive && (n == 3u || n == 4u)) || (!alive && n == 2u)) ? 1u : 0u;`, src.Name(), dst.Name()),
	}
	if err := l.ctx.Dispatch(lattice.BoxList{l.grid.Box()}, fn, src, dst); err != nil {
		return err
	}
	l.cur, l.nxt = dst, src
	return l.refresh()
}

func (l *Life) refresh() error {
	if err := l.cur.Retrieve(l.host); err != nil {
		return err
	}
	for i, v := range l.host {
		l.display[i] = uint8(v)
	}
	return nil
}

func init() {
	core.Register("life", func(cfg map[string]string) (core.Sim, error) {
		l, err := New(FromMap(cfg))
		if err != nil {
			return nil, err
		}
		return l, nil
	})
}
