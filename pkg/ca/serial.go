package ca

import (
	"fmt"
	"log"

	"flood-ca/pkg/lattice"
)

// serial walks every box in row-major order on the calling goroutine.
type serial struct{}

func newSerial(*lattice.Grid, Options, *log.Logger) (backend, error) { return serial{}, nil }

func (serial) name() string { return "serial" }

func (serial) dispatch(g *lattice.Grid, boxes lattice.BoxList, fn *Func, _ []Binding) error {
	if fn.Update == nil {
		return fmt.Errorf("%w: %s", ErrNoUpdate, fn.Name)
	}
	for _, b := range boxes {
		runBox(g, b, fn.Update)
	}
	return nil
}

func (serial) pullAlarms(*Alarms) error { return nil }
func (serial) pushAlarms(*Alarms) error { return nil }
func (serial) close() error             { return nil }

func runBox(g *lattice.Grid, b lattice.Box, update func(Cell)) {
	tl, br := b.TopLeft(), b.BottomRight()
	for y := tl.Y; y <= br.Y; y++ {
		for x := tl.X; x <= br.X; x++ {
			update(newCell(g, x, y))
		}
	}
}

func init() {
	registerBackend("serial", newSerial)
}
