// Package ca runs cellular-automaton functions over a lattice. A Context
// binds a Grid to one execution backend; buffers, tables and alarms are
// created from it, and Dispatch applies a Func to every cell of a BoxList.
//
// The same Func runs unmodified on the serial, threaded and gl backends. The
// CPU backends call Func.Update; the gl backend compiles Func.Kernel into a
// compute shader.
package ca

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"flood-ca/pkg/lattice"
)

// Option keys understood by the bundled backends. Backends ignore keys they
// do not use.
const (
	OptBackend   = "backend"
	OptWorkers   = "workers"
	OptWorkgroup = "workgroup"
)

// DefaultBackend is used when Options name none.
const DefaultBackend = "threaded"

var (
	// ErrUnknownBackend reports a backend name not compiled into this build.
	ErrUnknownBackend = errors.New("ca: unknown backend")
	// ErrOption reports a malformed option value.
	ErrOption = errors.New("ca: invalid option")
	// ErrName reports a binding name unusable as a kernel identifier.
	ErrName = errors.New("ca: invalid binding name")
	// ErrForeignBinding reports a binding created by another Context.
	ErrForeignBinding = errors.New("ca: binding belongs to another context")
	// ErrNoUpdate reports a Func without a Go rendition on a CPU backend.
	ErrNoUpdate = errors.New("ca: function has no Update")
	// ErrNoKernel reports a Func without a kernel on the gl backend.
	ErrNoKernel = errors.New("ca: function has no Kernel")
	// ErrSizeMismatch reports host slices whose length does not match.
	ErrSizeMismatch = errors.New("ca: size mismatch")
	// ErrOutOfGrid reports a point outside buffer storage.
	ErrOutOfGrid = errors.New("ca: point outside grid")
	// ErrClosed reports use of a closed Context.
	ErrClosed = errors.New("ca: context closed")
)

// Options are backend construction parameters as key/value pairs.
type Options map[string]string

// Int parses key as a positive integer, returning def when it is absent.
func (o Options) Int(key string, def int) (int, error) {
	v, ok := o[key]
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrOption, key, v)
	}
	return n, nil
}

// Func is a per-cell update. Update is the Go rendition run by the CPU
// backends; Kernel is the GLSL body run by the gl backend. Both must compute
// the same thing and write only the cell they are given.
type Func struct {
	Name   string
	Update func(c Cell)
	Kernel string
}

type backend interface {
	name() string
	dispatch(g *lattice.Grid, boxes lattice.BoxList, fn *Func, bindings []Binding) error
	pullAlarms(a *Alarms) error
	pushAlarms(a *Alarms) error
	close() error
}

type backendFactory func(g *lattice.Grid, opts Options, logger *log.Logger) (backend, error)

var backends = map[string]backendFactory{}

func registerBackend(name string, f backendFactory) {
	if name == "" || f == nil {
		return
	}
	backends[name] = f
}

// Backends lists the backends compiled into this build.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for n := range backends {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Context owns the execution backend for one Grid. Buffers, tables and
// alarms created from a Context must not be used after Close.
type Context struct {
	grid   *lattice.Grid
	be     backend
	logger *log.Logger

	nextID atomic.Uint64

	mu     sync.Mutex
	closed bool
}

// NewContext builds the backend named by opts for g. A nil logger discards
// backend notes.
func NewContext(g *lattice.Grid, opts Options, logger *log.Logger) (*Context, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: nil grid", ErrOption)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	name := opts[OptBackend]
	if name == "" {
		name = DefaultBackend
	}
	f, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrUnknownBackend, name, Backends())
	}
	be, err := f(g, opts, logger)
	if err != nil {
		return nil, fmt.Errorf("ca: %s backend: %w", name, err)
	}
	logger.Printf("ca: %s backend on %dx%d %v grid", be.name(), g.Cols(), g.Rows(), g.Topology())
	return &Context{grid: g, be: be, logger: logger}, nil
}

// Grid returns the lattice the context runs on.
func (c *Context) Grid() *lattice.Grid { return c.grid }

// Backend returns the backend name.
func (c *Context) Backend() string { return c.be.name() }

// Logger returns the context logger.
func (c *Context) Logger() *log.Logger { return c.logger }

// Close releases backend resources.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.be.close()
}

func (c *Context) id() uint64 { return c.nextID.Add(1) }

func (c *Context) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Dispatch applies fn to every cell of bl and returns once all cells are
// done. Boxes are clipped to the active lattice. Bindings list every buffer,
// table, alarm set and uniform fn touches.
func (c *Context) Dispatch(bl lattice.BoxList, fn *Func, bindings ...Binding) error {
	if c.isClosed() {
		return ErrClosed
	}
	if fn == nil {
		return fmt.Errorf("%w: nil function", ErrNoUpdate)
	}
	for _, b := range bindings {
		if o := b.owner(); o != nil && o != c {
			return fmt.Errorf("%w: %s", ErrForeignBinding, b.Name())
		}
		if b.kind() == kindUniform {
			if err := checkName(b.Name()); err != nil {
				return err
			}
		}
	}
	active := c.grid.Box()
	var boxes lattice.BoxList
	for _, b := range bl {
		boxes.Add(b.Intersect(active))
	}
	if len(boxes) == 0 {
		return nil
	}
	return c.be.dispatch(c.grid, boxes, fn, bindings)
}
