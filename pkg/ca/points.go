package ca

import (
	"fmt"

	"flood-ca/pkg/lattice"
)

func checkPoints(g *lattice.Grid, name string, pl lattice.PointList, n int) error {
	if n != pl.Len() {
		return fmt.Errorf("%w: %s has %d points, host slice holds %d", ErrSizeMismatch, name, pl.Len(), n)
	}
	for _, p := range pl.Points() {
		if !g.Contains(p) {
			return fmt.Errorf("%w: %s point %v", ErrOutOfGrid, name, p)
		}
	}
	return nil
}

// RetrievePoints gathers the values of buf at every point of pl into out, in
// list order. len(out) must equal pl.Len(). Values reflect the last
// completed dispatch.
func RetrievePoints[T Scalar](buf *CellBuffer[T], pl lattice.PointList, out []T) error {
	g := buf.ctx.grid
	if err := checkPoints(g, buf.name, pl, len(out)); err != nil {
		return err
	}
	for i, p := range pl.Points() {
		out[i] = buf.data[g.Index(p.X, p.Y)]
	}
	return nil
}

// InsertPoints scatters in into buf at every point of pl. Later points win
// when pl repeats a location.
func InsertPoints[T Scalar](buf *CellBuffer[T], pl lattice.PointList, in []T) error {
	g := buf.ctx.grid
	if err := checkPoints(g, buf.name, pl, len(in)); err != nil {
		return err
	}
	for i, p := range pl.Points() {
		buf.data[g.Index(p.X, p.Y)] = in[i]
	}
	return nil
}
