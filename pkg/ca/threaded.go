package ca

import (
	"fmt"
	"log"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"flood-ca/pkg/lattice"
)

// threaded splits every box into row bands and runs them on a fixed-size
// pool. Wait on the group is the barrier that ends the dispatch.
type threaded struct {
	workers int
}

func newThreaded(_ *lattice.Grid, opts Options, logger *log.Logger) (backend, error) {
	n, err := opts.Int(OptWorkers, runtime.NumCPU())
	if err != nil {
		return nil, err
	}
	logger.Printf("ca: threaded backend with %d workers", n)
	return &threaded{workers: n}, nil
}

func (t *threaded) name() string { return "threaded" }

func (t *threaded) dispatch(g *lattice.Grid, boxes lattice.BoxList, fn *Func, _ []Binding) error {
	if fn.Update == nil {
		return fmt.Errorf("%w: %s", ErrNoUpdate, fn.Name)
	}

	var (
		eg     errgroup.Group
		once   sync.Once
		caught any
	)
	eg.SetLimit(t.workers)
	for _, b := range boxes {
		for _, band := range rowBands(b, t.workers) {
			eg.Go(func() error {
				defer func() {
					if r := recover(); r != nil {
						once.Do(func() { caught = r })
					}
				}()
				runBox(g, band, fn.Update)
				return nil
			})
		}
	}
	err := eg.Wait()
	if caught != nil {
		// Surface the failure on the caller like the serial backend does.
		panic(caught)
	}
	return err
}

func (t *threaded) pullAlarms(*Alarms) error { return nil }
func (t *threaded) pushAlarms(*Alarms) error { return nil }
func (t *threaded) close() error             { return nil }

// rowBands cuts b into at most n bands of contiguous rows, spreading the
// remainder over the first bands.
func rowBands(b lattice.Box, n int) []lattice.Box {
	h := b.Height()
	if n > h {
		n = h
	}
	if n <= 1 {
		return []lattice.Box{b}
	}
	tl, br := b.TopLeft(), b.BottomRight()
	per, extra := h/n, h%n
	bands := make([]lattice.Box, 0, n)
	y := tl.Y
	for i := 0; i < n; i++ {
		rows := per
		if i < extra {
			rows++
		}
		bands = append(bands, lattice.Rect(tl.X, y, br.X, y+rows-1))
		y += rows
	}
	return bands
}

func init() {
	registerBackend("threaded", newThreaded)
}
