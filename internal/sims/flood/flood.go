// Package flood is a shallow-water flood model on the CA substrate: water
// enters at a source cell and as rain, and flows between cells of a
// generated catchment towards lower water surfaces.
package flood

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"math"

	"gonum.org/v1/gonum/floats"

	"flood-ca/internal/core"
	"flood-ca/internal/render"
	"flood-ca/pkg/ca"
	"flood-ca/pkg/lattice"
	"flood-ca/pkg/mask"
)

// maxShownDepth is the depth drawn with the darkest water colour.
const maxShownDepth = 2

// Display levels written to Cells.
const (
	LevelNoData     = 0
	LevelDryFirst   = 1
	LevelDryLast    = 63
	LevelWaterFirst = 64
	LevelWaterLast  = 255
)

// Reading is the state at a gauge. Outflow is the depth that left the cell
// across all of its edges during the last step.
type Reading struct {
	Point   lattice.Point
	Depth   float32
	Outflow float32
}

// Stats summarises the water on the lattice.
type Stats struct {
	Step     int
	Volume   float64
	Added    float64
	MaxDepth float64
	Wet      bool
	Spilling bool
}

// World holds the flood state and the substrate objects it runs on.
type World struct {
	cfg Config

	grid *lattice.Grid
	ctx  *ca.Context

	elev   *ca.CellBuffer[ca.Real]
	depth  *ca.CellBuffer[ca.Real]
	valid  *ca.CellBuffer[ca.State]
	flux   *ca.EdgeBuffer[ca.Real]
	rain   *ca.Table[ca.Real]
	alarms *ca.Alarms

	boxes    lattice.BoxList
	source   lattice.PointList
	sourceOK bool
	gauges   lattice.PointList

	step      int
	rainIdx   int
	dataCells int
	added     float64
	wet       bool
	spilling  bool

	terrain []float32
	elevMin float32
	elevMax float32
	host    []ca.Real
	display *core.ByteGrid
}

// New builds a flood world from cfg. The world must be Reset before it is
// stepped. A nil logger discards progress notes.
func New(cfg Config, logger *log.Logger) (*World, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if len(cfg.Params.Rain) == 0 {
		cfg.Params.Rain = []float32{0}
	}
	grid, err := lattice.NewGrid(lattice.Spec{
		Origin:   lattice.NewCoo(0, 0),
		CellSize: cfg.CellSize,
		Rows:     cfg.Height,
		Cols:     cfg.Width,
		Topology: cfg.Topology,
	})
	if err != nil {
		return nil, fmt.Errorf("flood: %w", err)
	}
	ctx, err := ca.NewContext(grid, cfg.Backend, logger)
	if err != nil {
		return nil, fmt.Errorf("flood: %w", err)
	}
	w := &World{
		cfg:     cfg,
		grid:    grid,
		ctx:     ctx,
		host:    make([]ca.Real, cfg.Width*cfg.Height),
		display: core.NewByteGrid(cfg.Width, cfg.Height),
	}
	if err := w.allocate(); err != nil {
		ctx.Close()
		return nil, err
	}
	for _, p := range cfg.Gauges {
		if grid.InDomain(p) {
			w.gauges.Add(p)
			continue
		}
		logger.Printf("flood: gauge %v outside the lattice, ignored", p)
	}
	w.source = lattice.NewPointList(cfg.Source)
	return w, nil
}

func (w *World) allocate() error {
	var err error
	if w.elev, err = ca.NewCellBuffer[ca.Real](w.ctx, "elev"); err != nil {
		return err
	}
	if w.depth, err = ca.NewCellBuffer[ca.Real](w.ctx, "depth"); err != nil {
		return err
	}
	if w.valid, err = ca.NewCellBuffer[ca.State](w.ctx, "valid"); err != nil {
		return err
	}
	if w.flux, err = ca.NewEdgeBuffer[ca.Real](w.ctx, "flux"); err != nil {
		return err
	}
	if w.rain, err = ca.NewTable[ca.Real](w.ctx, "rain", len(w.cfg.Params.Rain)); err != nil {
		return err
	}
	w.alarms, err = ca.NewAlarms(w.ctx, "alarms", alarmCount)
	return err
}

// Name returns the simulation identifier.
func (w *World) Name() string { return "flood" }

// Size reports the grid dimensions.
func (w *World) Size() core.Size { return core.Size{W: w.cfg.Width, H: w.cfg.Height} }

// Cells exposes the current display buffer.
func (w *World) Cells() []uint8 { return w.display.Cells() }

// Palette maps display levels to colours: black outside the catchment,
// light to dark earth for low to high ground, light to dark blue for
// shallow to deep water.
func (w *World) Palette() []color.RGBA {
	p := make([]color.RGBA, 0, 256)
	p = append(p, color.RGBA{A: 0xff})
	p = append(p, render.Ramp(LevelDryLast-LevelDryFirst+1, 60, 35, 35, 85)...)
	return append(p, render.Ramp(LevelWaterLast-LevelWaterFirst+1, 250, 90, 75, 25)...)
}

// Grid returns the lattice the world runs on.
func (w *World) Grid() *lattice.Grid { return w.grid }

// Boxes returns the decomposition of the catchment.
func (w *World) Boxes() lattice.BoxList { return w.boxes }

// Backend names the execution backend.
func (w *World) Backend() string { return w.ctx.Backend() }

// Close releases the execution backend.
func (w *World) Close() error { return w.ctx.Close() }

// Reset generates the terrain for seed, drains all water and rebuilds the
// decomposition. A zero seed uses the configured one.
func (w *World) Reset(seed int64) error {
	if seed == 0 {
		seed = w.cfg.Seed
	}
	noData := w.cfg.NoData
	w.terrain = terrain(w.cfg.Width, w.cfg.Height, seed, w.cfg.Params.Relief, noData)
	w.elev.Fill(noData)
	if err := w.elev.Insert(w.terrain); err != nil {
		return err
	}
	w.depth.Fill(0)
	w.flux.Fill(0)
	w.valid.Fill(0)

	w.boxes = ca.Decompose(w.grid.Box(), w.elev, noData, w.cfg.Threshold, w.cfg.MinSide)
	if err := mask.Compute(w.ctx, w.boxes, w.elev, noData, w.valid); err != nil {
		return err
	}
	w.rain.Update(0, w.rain.Len(), w.cfg.Params.Rain)
	w.alarms.DeactivateAll()
	if err := w.alarms.Set(); err != nil {
		return err
	}

	w.dataCells = 0
	w.elevMin, w.elevMax = float32(math.Inf(1)), float32(math.Inf(-1))
	for _, v := range w.terrain {
		if v == noData {
			continue
		}
		w.dataCells++
		w.elevMin = min(w.elevMin, v)
		w.elevMax = max(w.elevMax, v)
	}
	w.sourceOK = w.grid.InDomain(w.cfg.Source) && w.elev.Point(w.cfg.Source) != noData
	if !w.sourceOK {
		w.ctx.Logger().Printf("flood: source %v has no data, inflow disabled", w.cfg.Source)
	}
	w.ctx.Logger().Printf("flood: %s backend, %d boxes covering %d cells for %d data cells",
		w.ctx.Backend(), w.boxes.Len(), w.boxes.Area(), w.dataCells)

	w.step, w.rainIdx, w.added = 0, 0, 0
	w.wet, w.spilling = false, false
	return w.refresh()
}

// Step advances the flood by one time step.
func (w *World) Step() error {
	if w.sourceOK && w.cfg.Params.Inflow > 0 {
		in := make([]ca.Real, 1)
		if err := ca.RetrievePoints(w.depth, w.source, in); err != nil {
			return err
		}
		in[0] += w.cfg.Params.Inflow
		if err := ca.InsertPoints(w.depth, w.source, in); err != nil {
			return err
		}
		w.added += float64(w.cfg.Params.Inflow)
	}

	if err := w.ctx.Dispatch(w.boxes, w.outflow(), w.outflowBindings()...); err != nil {
		return err
	}
	w.rainIdx = min(w.step/max(w.cfg.Params.RainEvery, 1), w.rain.Len()-1)
	if err := w.ctx.Dispatch(w.boxes, w.settle(), w.settleBindings()...); err != nil {
		return err
	}
	w.added += float64(w.rain.At(w.rainIdx)) * float64(w.dataCells)

	if err := w.alarms.Get(); err != nil {
		return err
	}
	w.wet = w.alarms.IsActivated(alarmWet)
	spilling := w.alarms.IsActivated(alarmSpill)
	if spilling && !w.spilling {
		w.ctx.Logger().Printf("flood: water reached the catchment edge at step %d", w.step)
	}
	w.spilling = spilling
	w.alarms.DeactivateAll()
	if err := w.alarms.Set(); err != nil {
		return err
	}
	w.step++
	return w.refresh()
}

// Gauges reads depth and outflow at every gauge.
func (w *World) Gauges() ([]Reading, error) {
	depths := make([]ca.Real, w.gauges.Len())
	if err := ca.RetrievePoints(w.depth, w.gauges, depths); err != nil {
		return nil, err
	}
	out := make([]Reading, len(depths))
	for i, d := range depths {
		p := w.gauges.At(i)
		var q ca.Real
		for e := 0; e < w.grid.Neighbors(); e++ {
			q += w.flux.Edge(p, e)
		}
		out[i] = Reading{Point: p, Depth: d, Outflow: q}
	}
	return out, nil
}

// GaugePoints returns the gauge locations in reading order.
func (w *World) GaugePoints() []lattice.Point { return w.gauges.Points() }

// Status returns a few lines describing the run for on-screen display.
func (w *World) Status() []string {
	st, err := w.Stats()
	if err != nil {
		return []string{err.Error()}
	}
	lines := []string{
		fmt.Sprintf("%s backend, %d boxes", w.ctx.Backend(), w.boxes.Len()),
		fmt.Sprintf("step %d", st.Step),
		fmt.Sprintf("volume %.1f of %.1f added", st.Volume, st.Added),
		fmt.Sprintf("max depth %.3f", st.MaxDepth),
	}
	if st.Spilling {
		lines = append(lines, "water at catchment edge")
	}
	return lines
}

// Stats summarises the current water state. Volumes are in depth units
// times cell area.
func (w *World) Stats() (Stats, error) {
	if err := w.depth.Retrieve(w.host); err != nil {
		return Stats{}, err
	}
	depths := make([]float64, len(w.host))
	for i, d := range w.host {
		depths[i] = float64(d)
	}
	area := w.cellArea()
	return Stats{
		Step:     w.step,
		Volume:   floats.Sum(depths) * area,
		Added:    w.added * area,
		MaxDepth: floats.Max(depths),
		Wet:      w.wet,
		Spilling: w.spilling,
	}, nil
}

func (w *World) cellArea() float64 {
	s := w.grid.CellSize()
	if w.grid.Topology() == lattice.Hexagonal {
		return s * s * math.Sqrt(3) / 2
	}
	return s * s
}

// refresh quantises terrain and depth into the display buffer.
func (w *World) refresh() error {
	if err := w.depth.Retrieve(w.host); err != nil {
		return err
	}
	cells := w.display.Cells()
	for i, d := range w.host {
		e := w.terrain[i]
		switch {
		case e == w.cfg.NoData:
			cells[i] = LevelNoData
		case d > w.cfg.Params.Tolerance:
			cells[i] = core.Level(d, 0, maxShownDepth, LevelWaterFirst, LevelWaterLast)
		default:
			cells[i] = core.Level(e, w.elevMin, w.elevMax, LevelDryFirst, LevelDryLast)
		}
	}
	return nil
}

func init() {
	core.Register("flood", func(cfg map[string]string) (core.Sim, error) {
		w, err := New(FromMap(cfg), log.Default())
		if err != nil {
			return nil, err
		}
		return w, nil
	})
}
